package mandel

import (
	"fmt"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"
)

// Format is an output encoding for an IntensityGrid.
type Format int

const (
	FormatPGM Format = iota
	FormatPNG
)

func (f Format) String() string {
	switch f {
	case FormatPNG:
		return "png"
	default:
		return "pgm"
	}
}

// FormatForPath picks the encoding from the file name. A trailing ".zst"
// is reported separately and does not take part in choosing the format.
func FormatForPath(path string) (f Format, compressed bool) {
	name := strings.ToLower(path)
	if strings.HasSuffix(name, ".zst") {
		compressed = true
		name = strings.TrimSuffix(name, ".zst")
	}
	if filepath.Ext(name) == ".png" {
		return FormatPNG, compressed
	}
	return FormatPGM, compressed
}

// Encode writes g to w in format f.
func Encode(w io.Writer, g *IntensityGrid, f Format) error {
	switch f {
	case FormatPNG:
		if err := png.Encode(w, g.Image()); err != nil {
			return fmt.Errorf("encode png: %w", err)
		}
		return nil
	default:
		return EncodePGM(w, g)
	}
}

// EncodeCompressed writes g in format f through a zstd stream.
func EncodeCompressed(w io.Writer, g *IntensityGrid, f Format) error {
	enc, err := zstd.NewWriter(w)
	if err != nil {
		return fmt.Errorf("zstd.NewWriter: %w", err)
	}
	if err := Encode(enc, g, f); err != nil {
		enc.Close()
		return err
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("zstd close: %w", err)
	}
	return nil
}

// WriteFile saves g to path, choosing the encoding with FormatForPath.
func WriteFile(path string, g *IntensityGrid) (err error) {
	f, compressed := FormatForPath(path)

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close output file: %w", cerr)
		}
	}()

	if compressed {
		return EncodeCompressed(file, g, f)
	}
	return Encode(file, g, f)
}
