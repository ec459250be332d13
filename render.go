package mandel

// Render validates cfg, runs the escape-time pass and then normalizes it.
func Render(cfg Config) (*IntensityGrid, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	grid, hist := Escape(cfg)
	return Normalize(grid, hist), nil
}
