package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	mandel "github.com/marben/histogram_mandel"
	"github.com/marben/irpc"
)

// main is the entry point for the Mandelbrot server.
// The image is rendered once in the background; requests arriving earlier wait for it.
func main() {
	if err := run(os.Args[1:]); err != nil {
		log.Fatalf("run: %+v", err)
	}
}

// newIrpcServer serves ir as mandel.ImgProvider to every connected client
func newIrpcServer(ir *imgRenderer) *irpc.Server {
	irpcServer := irpc.NewServer(irpc.WithOnConnect(func(ep *irpc.Endpoint) {
		log.Printf("got connection from: %s", ep.RemoteAddr())
	}))
	irpcServer.AddService(mandel.NewImgProviderIrpcService(ir))
	return irpcServer
}

func run(args []string) error {
	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	cf := mandel.BindConfigFlags(fs)
	addr := fs.String("addr", ":8080", "http listen address (image files and irpc over /ws)")
	tcpAddr := fs.String("tcp", ":8081", "irpc tcp listen address")
	if err := fs.Parse(args); err != nil {
		return err
	}

	// an invalid config fails here, before any pixel work or listening
	cfg, err := cf.Config()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	imgRenderer := newImgRenderer(cfg)
	imgRenderer.start()

	irpcServer := newIrpcServer(imgRenderer)

	// TCP
	tcpListener, err := net.Listen("tcp", *tcpAddr)
	if err != nil {
		return fmt.Errorf("net.Listen: %w", err)
	}
	log.Printf("tcp listening on %s", tcpListener.Addr())

	// WEBSOCKET
	websocketListener := NewWSListener(ctx, *addr+"/ws")
	httpServer := webServer(*addr, imgRenderer, websocketListener)

	errCh := make(chan error, 3)
	go func() {
		log.Printf("listening on http://localhost%s", *addr)
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("httpServer: %w", err)
		}
	}()
	// irpcServer can serve multiple listeners. In this case both tcp and websocket
	go func() {
		if err := irpcServer.Serve(tcpListener); !errors.Is(err, irpc.ErrServerClosed) {
			errCh <- fmt.Errorf("irpcServer.Serve tcp: %w", err)
		}
	}()
	go func() {
		if err := irpcServer.Serve(websocketListener); !errors.Is(err, irpc.ErrServerClosed) {
			errCh <- fmt.Errorf("irpcServer.Serve ws: %w", err)
		}
	}()

	var runErr error
	select {
	case runErr = <-errCh:
	case <-ctx.Done():
	}

	log.Printf("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		runErr = errors.Join(runErr, fmt.Errorf("httpServer.Shutdown: %w", err))
	}
	if err := irpcServer.Close(); err != nil {
		// connections already dropped by their peers report errors here
		log.Printf("irpcServer.Close: %v", err)
	}
	return runErr
}
