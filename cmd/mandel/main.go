// mandel renders the Mandelbrot set once with histogram-equalized grayscale
// and writes it as PGM (default), PNG, or either of them zstd-compressed.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	mandel "github.com/marben/histogram_mandel"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		log.Fatalf("run: %+v", err)
	}
}

func run(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("mandel", flag.ContinueOnError)
	cf := mandel.BindConfigFlags(fs)
	out := fs.String("o", "mandel.pgm", `output file (.pgm, .png, optional .zst suffix) or "-" for PGM on stdout`)
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := cf.Config()
	if err != nil {
		return err
	}

	log.Printf("rendering %dx%d, %d iterations, region %+v", cfg.Width, cfg.Height, cfg.MaxIterations, cfg.Region)
	start := time.Now()
	img, err := mandel.Render(cfg)
	if err != nil {
		return fmt.Errorf("mandel.Render: %w", err)
	}
	log.Printf("render took %s", time.Since(start))

	if *out == "-" {
		return mandel.EncodePGM(stdout, img)
	}
	if err := mandel.WriteFile(*out, img); err != nil {
		return err
	}
	log.Printf("image saved to %q", *out)
	return nil
}
