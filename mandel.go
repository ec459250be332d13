package mandel

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// ErrInvalidConfig is returned when a Config violates one of its invariants.
var ErrInvalidConfig = errors.New("invalid config")

// Region within the complex plane mapped onto the image
type Region struct {
	Xmin, Xmax float64
	Ymin, Ymax float64
}

// Classic regions / landmarks in the Mandelbrot set
var (
	// Full Set – the whole set, as seen in most textbook pictures
	FullSet = Region{
		Xmin: -2.0,
		Xmax: 0.5,
		Ymin: -1.3,
		Ymax: 1.3,
	}

	// Seahorse Valley – dense filaments and repeating “seahorse” curls
	SeahorseValley = Region{
		Xmin: -0.8,
		Xmax: -0.7,
		Ymin: 0.05,
		Ymax: 0.15,
	}

	// Elephant Valley – large bulb with trunk-like tendrils
	ElephantValley = Region{
		Xmin: -1.85,
		Xmax: -1.75,
		Ymin: -0.10,
		Ymax: -0.02,
	}

	// Spiral Minibrot – small Mandelbrot copy with tight spiral arms
	SpiralMinibrot = Region{
		Xmin: -0.7435,
		Xmax: -0.7420,
		Ymin: 0.1310,
		Ymax: 0.1325,
	}

	// Triple Spiral – threefold symmetric spiral structure
	TripleSpiral = Region{
		Xmin: -0.7480,
		Xmax: -0.7450,
		Ymin: 0.0950,
		Ymax: 0.0980,
	}

	// Valley of the Dragon – deep, highly detailed spiral filaments
	ValleyOfTheDragon = Region{
		Xmin: -0.7400,
		Xmax: -0.7350,
		Ymin: 0.1800,
		Ymax: 0.1850,
	}

	// Minibrot in a Mini-Spiral – self-similar Mandelbrot copy inside a spiral arm
	MinibrotInMiniSpiral = Region{
		Xmin: -1.7390,
		Xmax: -1.7375,
		Ymin: -0.0235,
		Ymax: -0.0220,
	}
)

var landmarks = map[string]Region{
	"full":         FullSet,
	"seahorse":     SeahorseValley,
	"elephant":     ElephantValley,
	"spiral":       SpiralMinibrot,
	"triplespiral": TripleSpiral,
	"dragon":       ValleyOfTheDragon,
	"minispiral":   MinibrotInMiniSpiral,
}

// RegionByName returns the landmark region registered under name.
func RegionByName(name string) (Region, bool) {
	r, ok := landmarks[name]
	return r, ok
}

// RegionNames lists the names accepted by RegionByName, sorted.
func RegionNames() []string {
	names := make([]string, 0, len(landmarks))
	for n := range landmarks {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Width of the region along the real axis.
func (r Region) Width() float64 { return r.Xmax - r.Xmin }

// Height of the region along the imaginary axis.
func (r Region) Height() float64 { return r.Ymax - r.Ymin }

func (r Region) validate() error {
	for _, v := range []float64{r.Xmin, r.Xmax, r.Ymin, r.Ymax} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: region bound %v is not finite", ErrInvalidConfig, v)
		}
	}
	if !(r.Xmin < r.Xmax) {
		return fmt.Errorf("%w: xmin %v must be below xmax %v", ErrInvalidConfig, r.Xmin, r.Xmax)
	}
	if !(r.Ymin < r.Ymax) {
		return fmt.Errorf("%w: ymin %v must be below ymax %v", ErrInvalidConfig, r.Ymin, r.Ymax)
	}
	if math.IsInf(r.Width(), 0) || math.IsInf(r.Height(), 0) {
		return fmt.Errorf("%w: region extent %vx%v overflows", ErrInvalidConfig, r.Width(), r.Height())
	}
	return nil
}

// Config fixes everything a render depends on. It is never changed once rendering starts.
type Config struct {
	Region        Region
	Width, Height int // image size in pixels
	MaxIterations int // recurrence cap per pixel
}

// DefaultConfig mirrors the classic full-set render: 10000x10000 pixels, 1000 iterations.
var DefaultConfig = Config{
	Region:        FullSet,
	Width:         10000,
	Height:        10000,
	MaxIterations: 1000,
}

// Validate checks the config invariants. Errors wrap ErrInvalidConfig.
func (c Config) Validate() error {
	if err := c.Region.validate(); err != nil {
		return err
	}
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("%w: image size %dx%d must be positive", ErrInvalidConfig, c.Width, c.Height)
	}
	if c.Width > math.MaxInt/c.Height {
		return fmt.Errorf("%w: image size %dx%d overflows", ErrInvalidConfig, c.Width, c.Height)
	}
	if c.MaxIterations <= 0 {
		return fmt.Errorf("%w: max iterations %d must be positive", ErrInvalidConfig, c.MaxIterations)
	}
	if uint64(c.MaxIterations) > math.MaxUint32 {
		return fmt.Errorf("%w: max iterations %d exceeds %d", ErrInvalidConfig, c.MaxIterations, uint64(math.MaxUint32))
	}
	return nil
}

// Pixels is the total pixel count of the image.
func (c Config) Pixels() int { return c.Width * c.Height }

// PixelToPlane maps screen pixel (x, y) to its point in the complex plane.
// Each axis is scaled independently; pixel (0, 0) lands on (Xmin, Ymin).
func (c Config) PixelToPlane(x, y int) complex128 {
	re := (c.Region.Width()/float64(c.Width))*float64(x) + c.Region.Xmin
	im := (c.Region.Height()/float64(c.Height))*float64(y) + c.Region.Ymin
	return complex(re, im)
}
