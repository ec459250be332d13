package main

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	mandel "github.com/marben/histogram_mandel"
)

// imgRenderer renders one fixed image and serves it to any number of readers.
// Readers block until the render is done.
type imgRenderer struct {
	cfg mandel.Config

	done chan struct{} // closed once the fields below are set

	img *mandel.IntensityGrid
	pgm []byte
	png []byte
	err error

	startOnce sync.Once
}

func newImgRenderer(cfg mandel.Config) *imgRenderer {
	return &imgRenderer{
		cfg:  cfg,
		done: make(chan struct{}),
	}
}

// start renders the image in the background. Later calls are no-ops.
func (ir *imgRenderer) start() {
	ir.startOnce.Do(func() {
		go ir.render()
	})
}

func (ir *imgRenderer) render() {
	defer close(ir.done)

	log.Printf("rendering %dx%d, %d iterations", ir.cfg.Width, ir.cfg.Height, ir.cfg.MaxIterations)
	start := time.Now()
	img, err := mandel.Render(ir.cfg)
	if err != nil {
		ir.err = fmt.Errorf("mandel.Render: %w", err)
		return
	}
	log.Printf("render took %s", time.Since(start))

	var pgm, png bytes.Buffer
	if err := mandel.Encode(&pgm, img, mandel.FormatPGM); err != nil {
		ir.err = err
		return
	}
	if err := mandel.Encode(&png, img, mandel.FormatPNG); err != nil {
		ir.err = err
		return
	}
	ir.img, ir.pgm, ir.png = img, pgm.Bytes(), png.Bytes()
}

// wait blocks until the render finished or ctx is done.
func (ir *imgRenderer) wait(ctx context.Context) error {
	select {
	case <-ir.done:
		return ir.err
	case <-ctx.Done():
		return context.Cause(ctx)
	}
}

// encoded returns the rendered image in format f.
func (ir *imgRenderer) encoded(ctx context.Context, f mandel.Format) ([]byte, error) {
	if err := ir.wait(ctx); err != nil {
		return nil, err
	}
	if f == mandel.FormatPNG {
		return ir.png, nil
	}
	return ir.pgm, nil
}

// GetImage implements mandel.ImgProvider. It backs the irpc service.
func (ir *imgRenderer) GetImage() (mandel.IntensityGrid, error) {
	if err := ir.wait(context.Background()); err != nil {
		return mandel.IntensityGrid{}, err
	}
	return *ir.img, nil
}

var _ mandel.ImgProvider = (*imgRenderer)(nil)
