package mandel

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"image/color"
	"io"
	"math"

	"github.com/spakin/netpbm"
)

// ErrInvalidPGM is returned by DecodePGM for input that is not an 8-bit PGM
// or whose size exceeds the caller's limit.
var ErrInvalidPGM = errors.New("invalid pgm")

const pgmMaxVal = 255

// pgmHeaderPeek bounds how much input DecodePGM inspects to size the image.
const pgmHeaderPeek = 4096

// EncodePGM writes g as a binary PGM (P5): the header
// "P5\n<width> <height>\n255\n" followed by the raw row-major pixels.
func EncodePGM(w io.Writer, g *IntensityGrid) error {
	if err := g.Validate(); err != nil {
		return fmt.Errorf("encode pgm: %w", err)
	}

	bw := bufio.NewWriter(w)
	if _, err := fmt.Fprintf(bw, "P5\n%d %d\n%d\n", g.Width, g.Height, pgmMaxVal); err != nil {
		return fmt.Errorf("encode pgm header: %w", err)
	}
	if _, err := bw.Write(g.Pix); err != nil {
		return fmt.Errorf("encode pgm pixels: %w", err)
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("encode pgm: %w", err)
	}
	return nil
}

// DecodePGM reads a PGM with maxval 255 holding at most maxPixels pixels.
// The size in the header is checked before any pixel memory is allocated.
func DecodePGM(r io.Reader, maxPixels int) (*IntensityGrid, error) {
	br := bufio.NewReaderSize(r, pgmHeaderPeek)
	hdr, err := br.Peek(pgmHeaderPeek)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPGM, err)
	}

	cfg, err := netpbm.DecodeConfig(bytes.NewReader(hdr))
	if err != nil {
		return nil, fmt.Errorf("%w: header: %v", ErrInvalidPGM, err)
	}
	w, h := cfg.Width, cfg.Height
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("%w: size %dx%d", ErrInvalidPGM, w, h)
	}
	if w > math.MaxInt/h {
		return nil, fmt.Errorf("%w: size %dx%d overflows", ErrInvalidPGM, w, h)
	}
	if w*h > maxPixels {
		return nil, fmt.Errorf("%w: %dx%d exceeds %d pixels", ErrInvalidPGM, w, h, maxPixels)
	}

	img, err := netpbm.Decode(br, &netpbm.DecodeOptions{Target: netpbm.PGM, Exact: true})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPGM, err)
	}
	if img.Format() != netpbm.PGM {
		return nil, fmt.Errorf("%w: format %v", ErrInvalidPGM, img.Format())
	}
	if mv := img.MaxValue(); mv != pgmMaxVal {
		return nil, fmt.Errorf("%w: maxval %d", ErrInvalidPGM, mv)
	}

	b := img.Bounds()
	if b.Dx() != w || b.Dy() != h {
		return nil, fmt.Errorf("%w: decoded %v, header said %dx%d", ErrInvalidPGM, b, w, h)
	}
	g := NewIntensityGrid(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			g.Pix[y*w+x] = color.GrayModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.Gray).Y
		}
	}
	return g, nil
}
