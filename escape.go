package mandel

// EscapeRadiusSq is the squared magnitude a point may reach and still count as inside.
const EscapeRadiusSq = 4

// IterationGrid holds one escape count per pixel, row-major.
type IterationGrid struct {
	Width, Height int
	Counts        []uint32 // len == Width*Height, index y*Width+x
}

// At returns the escape count of pixel (x, y).
func (g *IterationGrid) At(x, y int) uint32 {
	return g.Counts[y*g.Width+x]
}

// Histogram counts pixels per escape count. Index k holds the number of
// pixels that stopped after exactly k iterations, so len == MaxIterations+1.
type Histogram []uint64

// EscapeCount iterates z = z² + c from z = 0 while |z|² <= 4 and
// returns the number of iterations applied, at most maxIter.
func EscapeCount(c complex128, maxIter int) int {
	cx, cy := real(c), imag(c)
	var x, y float64
	it := 0
	for ; x*x+y*y <= EscapeRadiusSq && it < maxIter; it++ {
		x, y = x*x-y*y+cx, 2*x*y+cy
	}
	return it
}

// Escape runs the escape-time pass over every pixel of cfg in row-major
// order. It returns the per-pixel counts together with their histogram.
// cfg is expected to be valid; see Config.Validate.
func Escape(cfg Config) (*IterationGrid, Histogram) {
	grid := &IterationGrid{
		Width:  cfg.Width,
		Height: cfg.Height,
		Counts: make([]uint32, cfg.Pixels()),
	}
	hist := make(Histogram, cfg.MaxIterations+1)

	i := 0
	for y := 0; y < cfg.Height; y++ {
		for x := 0; x < cfg.Width; x++ {
			it := EscapeCount(cfg.PixelToPlane(x, y), cfg.MaxIterations)
			grid.Counts[i] = uint32(it)
			hist[it]++
			i++
		}
	}

	return grid, hist
}
