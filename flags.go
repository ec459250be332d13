package mandel

import (
	"flag"
	"fmt"
	"math"
	"strings"
)

// ConfigFlags binds the render settings to a flag set.
type ConfigFlags struct {
	width, height, iter    int
	region                 string
	xmin, xmax, ymin, ymax float64
}

// BindConfigFlags registers -width, -height, -iter, -region and the
// -xmin/-xmax/-ymin/-ymax overrides on fs, defaulting to DefaultConfig.
func BindConfigFlags(fs *flag.FlagSet) *ConfigFlags {
	cf := &ConfigFlags{}
	fs.IntVar(&cf.width, "width", DefaultConfig.Width, "image width in pixels")
	fs.IntVar(&cf.height, "height", DefaultConfig.Height, "image height in pixels")
	fs.IntVar(&cf.iter, "iter", DefaultConfig.MaxIterations, "max iterations per pixel")
	fs.StringVar(&cf.region, "region", "full", "landmark region: "+strings.Join(RegionNames(), "|"))
	// NaN marks "not set"; the landmark bound is used instead.
	for _, b := range []struct {
		p    *float64
		name string
	}{{&cf.xmin, "xmin"}, {&cf.xmax, "xmax"}, {&cf.ymin, "ymin"}, {&cf.ymax, "ymax"}} {
		fs.Float64Var(b.p, b.name, math.NaN(), "override "+b.name+" of the region")
	}
	return cf
}

// Config builds and validates the configuration from the parsed flags.
func (cf *ConfigFlags) Config() (Config, error) {
	region, ok := RegionByName(cf.region)
	if !ok {
		return Config{}, fmt.Errorf("%w: unknown region %q", ErrInvalidConfig, cf.region)
	}
	override := func(dst *float64, v float64) {
		if !math.IsNaN(v) {
			*dst = v
		}
	}
	override(&region.Xmin, cf.xmin)
	override(&region.Xmax, cf.xmax)
	override(&region.Ymin, cf.ymin)
	override(&region.Ymax, cf.ymax)

	cfg := Config{
		Region:        region,
		Width:         cf.width,
		Height:        cf.height,
		MaxIterations: cf.iter,
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
