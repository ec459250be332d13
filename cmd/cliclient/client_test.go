package main

import (
	"bytes"
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	mandel "github.com/marben/histogram_mandel"
	"github.com/marben/irpc"
)

// staticProvider hands out the same image or error on every call
type staticProvider struct {
	img mandel.IntensityGrid
	err error
}

func (p staticProvider) GetImage() (mandel.IntensityGrid, error) { return p.img, p.err }

// tcpServer serves p over irpc on a loopback port
func tcpServer(t *testing.T, p mandel.ImgProvider) string {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("net.Listen: %v", err)
	}
	irpcServer := irpc.NewServer(irpc.WithServices(mandel.NewImgProviderIrpcService(p)))
	go irpcServer.Serve(l)
	t.Cleanup(func() { irpcServer.Close() })
	return l.Addr().String()
}

// wsServer serves p over irpc on every websocket connection
func wsServer(t *testing.T, p mandel.ImgProvider) string {
	t.Helper()
	svc := mandel.NewImgProviderIrpcService(p)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		ep := irpc.NewEndpoint(websocket.NetConn(context.Background(), c, websocket.MessageBinary), irpc.WithEndpointServices(svc))
		<-ep.Context().Done()
	}))
	t.Cleanup(srv.Close)
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

// httpServer serves body as the response to every request
func httpServer(t *testing.T, status int, body []byte) string {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		w.Write(body)
	}))
	t.Cleanup(srv.Close)
	return srv.URL + "/image.pgm"
}

func renderImage(t *testing.T) *mandel.IntensityGrid {
	t.Helper()
	img, err := mandel.Render(mandel.Config{Region: mandel.SpiralMinibrot, Width: 16, Height: 10, MaxIterations: 90})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	return img
}

func encodePGM(t *testing.T, img *mandel.IntensityGrid) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := mandel.EncodePGM(&buf, img); err != nil {
		t.Fatalf("EncodePGM: %v", err)
	}
	return buf.Bytes()
}

func testCtx(t *testing.T) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	t.Cleanup(cancel)
	return ctx
}

var testLimits = limits{maxPixels: 1 << 20, maxBytes: 1 << 20}

// getImage dials server and fetches one image
func getImage(t *testing.T, server string, lim limits) (mandel.IntensityGrid, error) {
	t.Helper()
	p, conn, err := dialImgProvider(testCtx(t), server, lim)
	if err != nil {
		return mandel.IntensityGrid{}, err
	}
	defer conn.Close()
	return p.GetImage()
}

func sameImage(a *mandel.IntensityGrid, b mandel.IntensityGrid) bool {
	return a.Width == b.Width && a.Height == b.Height && bytes.Equal(a.Pix, b.Pix)
}

func TestGetImage_TCP(t *testing.T) {
	want := renderImage(t)
	addr := tcpServer(t, staticProvider{img: *want})

	img, err := getImage(t, addr, testLimits)
	if err != nil {
		t.Fatalf("GetImage: %v", err)
	}
	if !sameImage(want, img) {
		t.Fatalf("image differs")
	}
}

func TestGetImage_Websocket(t *testing.T) {
	want := renderImage(t)
	url := wsServer(t, staticProvider{img: *want})

	img, err := getImage(t, url, testLimits)
	if err != nil {
		t.Fatalf("GetImage: %v", err)
	}
	if !sameImage(want, img) {
		t.Fatalf("image differs")
	}
}

func TestGetImage_WebsocketReadLimit(t *testing.T) {
	want := renderImage(t)
	url := wsServer(t, staticProvider{img: *want})

	if _, err := getImage(t, url, limits{maxPixels: 1 << 20, maxBytes: 16}); err == nil {
		t.Fatalf("expected read limit error")
	}
}

func TestGetImage_RemoteError(t *testing.T) {
	addr := tcpServer(t, staticProvider{err: errors.New("render failed")})

	_, err := getImage(t, addr, testLimits)
	if err == nil || err.Error() != "render failed" {
		t.Fatalf("err=%v, want remote error", err)
	}
}

func TestGetImage_Rejected(t *testing.T) {
	tests := map[string]mandel.IntensityGrid{
		"short pixels":   {Width: 2, Height: 2, Pix: []uint8{1, 2, 3}},
		"zero size":      {},
		"negative width": {Width: -1, Height: -1, Pix: []uint8{1}},
		"over limit":     {Width: 2048, Height: 1024, Pix: make([]uint8, 2048*1024)},
	}
	for name, img := range tests {
		t.Run(name, func(t *testing.T) {
			addr := tcpServer(t, staticProvider{img: img})
			if _, err := getImage(t, addr, limits{maxPixels: 1 << 20, maxBytes: 1 << 20}); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestGetImage_HTTP(t *testing.T) {
	want := renderImage(t)
	url := httpServer(t, http.StatusOK, encodePGM(t, want))

	img, err := getImage(t, url, testLimits)
	if err != nil {
		t.Fatalf("GetImage: %v", err)
	}
	if !sameImage(want, img) {
		t.Fatalf("image differs")
	}
}

func TestGetImage_HTTPInvalid(t *testing.T) {
	tests := map[string]string{
		"overflowing size": "P5\n3037000500 3037000500\n255\n\x00",
		"huge size":        "P5\n100000 100000\n255\n\x00",
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			url := httpServer(t, http.StatusOK, []byte(body))
			if _, err := getImage(t, url, testLimits); !errors.Is(err, mandel.ErrInvalidPGM) {
				t.Fatalf("err=%v, want ErrInvalidPGM", err)
			}
		})
	}
}

func TestGetImage_HTTPStatus(t *testing.T) {
	url := httpServer(t, http.StatusNotFound, []byte("not found"))

	if _, err := getImage(t, url, testLimits); err == nil {
		t.Fatalf("expected error")
	}
}

func TestRun(t *testing.T) {
	want := renderImage(t)
	addr := tcpServer(t, staticProvider{img: *want})
	out := filepath.Join(t.TempDir(), "fetched.pgm")

	if err := run([]string{"-server", addr, "-o", out, "-timeout", "10s"}); err != nil {
		t.Fatalf("run: %v", err)
	}

	f, err := os.Open(out)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer f.Close()
	got, err := mandel.DecodePGM(f, want.Width*want.Height)
	if err != nil {
		t.Fatalf("DecodePGM: %v", err)
	}
	if !bytes.Equal(got.Pix, want.Pix) {
		t.Fatalf("saved image differs")
	}
}

func TestRun_NoServer(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("net.Listen: %v", err)
	}
	addr := l.Addr().String()
	l.Close()

	out := filepath.Join(t.TempDir(), "fetched.pgm")
	if err := run([]string{"-server", addr, "-o", out, "-timeout", "5s"}); err == nil {
		t.Fatalf("expected dial error")
	}
	if _, err := os.Stat(out); !os.IsNotExist(err) {
		t.Fatalf("output written despite error: %v", err)
	}
}
