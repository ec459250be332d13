// cliclient connects to the Mandelbrot server over tcp or websocket,
// requests the rendered image and saves it to a file.

package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	mandel "github.com/marben/histogram_mandel"
)

// main is the entry point for the CLI client.
// It runs the client logic and logs any fatal errors.
func main() {
	log.Printf("Starting CLI client...")
	if err := run(os.Args[1:]); err != nil {
		log.Fatalf("FATAL: %v", err)
	}
}

// run fetches the rendered image from the server and saves it.
// The output format follows the file name, see mandel.WriteFile.
func run(args []string) error {
	fs := flag.NewFlagSet("cliclient", flag.ContinueOnError)
	server := fs.String("server", "localhost:8081", "irpc tcp address, ws:// irpc url or http:// url of a pgm image")
	out := fs.String("o", "mandel.png", "output file (.pgm, .png, optional .zst suffix)")
	maxPixels := fs.Int("max-pixels", 1<<28, "largest accepted image in pixels")
	maxBytes := fs.Int64("max-bytes", 1<<30, "largest accepted websocket message in bytes")
	timeout := fs.Duration("timeout", 10*time.Minute, "give up after this long")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	// Step 1: Connect to the server
	log.Printf("Connecting to Mandelbrot server at %s...", *server)
	client, conn, err := dialImgProvider(ctx, *server, limits{maxPixels: *maxPixels, maxBytes: *maxBytes})
	if err != nil {
		return err
	}
	defer conn.Close()

	// Step 2: Request the fully rendered image from the server
	log.Printf("Requesting fully rendered image from server...")
	img, err := client.GetImage()
	if err != nil {
		return fmt.Errorf("client.GetImage: %w", err)
	}
	log.Printf("Received %dx%d image", img.Width, img.Height)

	// Step 3: Save the image
	log.Printf("Saving image to %q...", *out)
	if err := mandel.WriteFile(*out, &img); err != nil {
		return fmt.Errorf("failed to save image: %w", err)
	}

	log.Printf("Image saved to %q", *out)
	return nil
}
