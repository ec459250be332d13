package mandel

import (
	"fmt"
	"image"
	"math"
)

// IntensityGrid is the final 8-bit grayscale image, row-major.
type IntensityGrid struct {
	Width, Height int
	Pix           []uint8 // len == Width*Height, index y*Width+x
}

// NewIntensityGrid allocates a zeroed w x h grid.
func NewIntensityGrid(w, h int) *IntensityGrid {
	return &IntensityGrid{Width: w, Height: h, Pix: make([]uint8, w*h)}
}

// Validate reports whether the size is positive and matches the pixel buffer.
// Grids received from another process should be checked before use.
func (g *IntensityGrid) Validate() error {
	if g.Width <= 0 || g.Height <= 0 || g.Width > math.MaxInt/g.Height {
		return fmt.Errorf("invalid image size %dx%d", g.Width, g.Height)
	}
	if len(g.Pix) != g.Width*g.Height {
		return fmt.Errorf("%d pixels for %dx%d image", len(g.Pix), g.Width, g.Height)
	}
	return nil
}

// At returns the intensity of pixel (x, y).
func (g *IntensityGrid) At(x, y int) uint8 {
	return g.Pix[y*g.Width+x]
}

// Image exposes the grid as an *image.Gray sharing the same pixel buffer.
func (g *IntensityGrid) Image() *image.Gray {
	return &image.Gray{
		Pix:    g.Pix,
		Stride: g.Width,
		Rect:   image.Rect(0, 0, g.Width, g.Height),
	}
}

// Total is the number of pixels counted by the histogram.
func (h Histogram) Total() uint64 {
	var n uint64
	for _, c := range h {
		n += c
	}
	return n
}

// Cumulative returns the running sums of h: entry k is the number of
// pixels whose escape count is <= k.
func (h Histogram) Cumulative() []uint64 {
	cum := make([]uint64, len(h))
	var sum uint64
	for k, c := range h {
		sum += c
		cum[k] = sum
	}
	return cum
}

// Hue shapes a normalized rank x in [0, 1] with a parabola peaking at 255 for x = 0.5.
// The result is not clamped.
func Hue(x float64) float64 {
	return (x - x*x) * 255 / 0.25
}

// toByte truncates v toward zero and keeps the low 8 bits.
// Out of range values wrap instead of saturating.
func toByte(v float64) uint8 {
	return uint8(int64(v))
}

// Normalize turns escape counts into intensities by histogram equalization.
// h must be the histogram produced together with grid by Escape.
func Normalize(grid *IterationGrid, h Histogram) *IntensityGrid {
	out := NewIntensityGrid(grid.Width, grid.Height)
	cum := h.Cumulative()
	total := float64(len(grid.Counts))

	for i, count := range grid.Counts {
		x := float64(cum[count]) / total
		out.Pix[i] = toByte(Hue(x))
	}

	return out
}
