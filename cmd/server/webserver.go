package main

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/coder/websocket"
	mandel "github.com/marben/histogram_mandel"
)

// webServer creates the http server publishing the rendered image as /image.pgm and /image.png.
// Upgraded /ws connections are handed to l, where the irpc server accepts them.
func webServer(addr string, ir *imgRenderer, l *WebsocketListener) *http.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /image.pgm", imageHandler(ir, mandel.FormatPGM, "image/x-portable-graymap"))
	mux.HandleFunc("GET /image.png", imageHandler(ir, mandel.FormatPNG, "image/png"))
	mux.HandleFunc("/ws", websocketHandler(l))

	return &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
}

// imageHandler responds with the image encoded as f, waiting for the render if needed
func imageHandler(ir *imgRenderer, f mandel.Format, contentType string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data, err := ir.encoded(r.Context(), f)
		if err != nil {
			if !errors.Is(err, context.Canceled) {
				log.Printf("image %s: %v", f, err)
				http.Error(w, err.Error(), http.StatusInternalServerError)
			}
			return
		}
		w.Header().Set("Content-Type", contentType)
		w.Header().Set("Content-Length", strconv.Itoa(len(data)))
		if _, err := w.Write(data); err != nil {
			log.Printf("image %s write: %v", f, err)
		}
	}
}

// websocketHandler handles the http ws endpoint
// if websocket is succesfully initialized it is passed to WebsocketListener so it can be accepted.
// Cross-origin upgrades are refused; non-browser clients send no Origin and are let through.
func websocketHandler(l *WebsocketListener) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := websocket.Accept(w, r, nil)
		if err != nil {
			log.Println(err)
			return
		}

		select {
		case l.ch <- c:
		case <-l.ctx.Done():
			c.Close(websocket.StatusGoingAway, "server shutting down")
		case <-r.Context().Done():
			c.CloseNow()
		}
	}
}

// WebsocketListener implements net.Listener
// it's a wrapper around websocket.Conn
type WebsocketListener struct {
	ch     chan *websocket.Conn
	ctx    context.Context
	cancel context.CancelFunc
	addr   wsAddr
}

func NewWSListener(ctx context.Context, addr string) *WebsocketListener {
	ctx, cancel := context.WithCancel(ctx)
	return &WebsocketListener{
		ch:     make(chan *websocket.Conn),
		ctx:    ctx,
		cancel: cancel,
		addr:   wsAddr{addr: addr},
	}
}

// Accept waits for the next upgraded connection.
// Connections accepted before Close are torn down by it.
func (l *WebsocketListener) Accept() (net.Conn, error) {
	select {
	case c := <-l.ch:
		return websocket.NetConn(l.ctx, c, websocket.MessageBinary), nil
	case <-l.ctx.Done():
		return nil, net.ErrClosed
	}
}

func (l *WebsocketListener) Addr() net.Addr {
	return l.addr
}

func (l *WebsocketListener) Close() error {
	l.cancel()
	return nil
}

// wsAddrs implements net.Addr
type wsAddr struct {
	addr string
}

func (a wsAddr) Network() string {
	return "ws"
}

func (a wsAddr) String() string {
	return a.addr
}
