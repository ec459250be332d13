package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	mandel "github.com/marben/histogram_mandel"
)

func TestRun_Stdout(t *testing.T) {
	var stdout bytes.Buffer
	if err := run([]string{"-width", "2", "-height", "2", "-iter", "10", "-o", "-"}, &stdout); err != nil {
		t.Fatalf("run: %v", err)
	}

	want := append([]byte("P5\n2 2\n255\n"), 191, 255, 0, 0)
	if !bytes.Equal(stdout.Bytes(), want) {
		t.Fatalf("got %q, want %q", stdout.Bytes(), want)
	}
}

func TestRun_File(t *testing.T) {
	out := filepath.Join(t.TempDir(), "m.pgm")
	if err := run([]string{"-width", "8", "-height", "6", "-iter", "40", "-region", "dragon", "-o", out}, &bytes.Buffer{}); err != nil {
		t.Fatalf("run: %v", err)
	}

	f, err := os.Open(out)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer f.Close()
	img, err := mandel.DecodePGM(f, 8*6)
	if err != nil {
		t.Fatalf("DecodePGM: %v", err)
	}
	if img.Width != 8 || img.Height != 6 {
		t.Fatalf("size %dx%d", img.Width, img.Height)
	}
}

func TestRun_InvalidConfig(t *testing.T) {
	out := filepath.Join(t.TempDir(), "m.pgm")
	err := run([]string{"-width", "4", "-height", "4", "-ymin", "2", "-o", out}, &bytes.Buffer{})
	if !errors.Is(err, mandel.ErrInvalidConfig) {
		t.Fatalf("err=%v, want ErrInvalidConfig", err)
	}
	if _, err := os.Stat(out); !os.IsNotExist(err) {
		t.Fatalf("output written for invalid config")
	}
}
