package main

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"

	"github.com/coder/websocket"
	mandel "github.com/marben/histogram_mandel"
	"github.com/marben/irpc"
)

// limits bound what the client accepts from a server
type limits struct {
	maxPixels int   // largest accepted image
	maxBytes  int64 // websocket message read limit
}

// dialImgProvider connects to server and returns a mandel.ImgProvider backed by it.
// server is either a tcp address or a ws(s):// url, both speaking irpc,
// or an http(s):// url of a PGM image such as the server's /image.pgm.
// The returned closer ends the connection.
func dialImgProvider(ctx context.Context, server string, lim limits) (mandel.ImgProvider, io.Closer, error) {
	switch {
	case strings.HasPrefix(server, "http://"), strings.HasPrefix(server, "https://"):
		return httpImgProvider{ctx: ctx, url: server, maxPixels: lim.maxPixels}, nopCloser{}, nil

	case strings.HasPrefix(server, "ws://"), strings.HasPrefix(server, "wss://"):
		c, _, err := websocket.Dial(ctx, server, nil)
		if err != nil {
			return nil, nil, fmt.Errorf("websocket.Dial %q: %w", server, err)
		}
		c.SetReadLimit(lim.maxBytes)
		return newIrpcImgProvider(ctx, websocket.NetConn(ctx, c, websocket.MessageBinary), lim)

	default:
		var d net.Dialer
		conn, err := d.DialContext(ctx, "tcp", server)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to server: %w", err)
		}
		return newIrpcImgProvider(ctx, conn, lim)
	}
}

// irpcImgProvider calls mandel.ImgProvider on the server over irpc
// and checks the received image before handing it out.
type irpcImgProvider struct {
	ep        *irpc.Endpoint
	client    *mandel.ImgProviderIrpcClient
	maxPixels int
}

var _ mandel.ImgProvider = (*irpcImgProvider)(nil)

func newIrpcImgProvider(ctx context.Context, conn net.Conn, lim limits) (mandel.ImgProvider, io.Closer, error) {
	ep := irpc.NewEndpoint(conn)
	// the generated client has no context, so ctx ends the connection instead
	context.AfterFunc(ctx, func() { ep.Close() })

	client, err := mandel.NewImgProviderIrpcClient(ep)
	if err != nil {
		ep.Close()
		return nil, nil, fmt.Errorf("failed to create ImgProvider client: %w", err)
	}
	return &irpcImgProvider{ep: ep, client: client, maxPixels: lim.maxPixels}, ep, nil
}

func (p *irpcImgProvider) GetImage() (mandel.IntensityGrid, error) {
	img, err := p.client.GetImage()
	if err != nil {
		return mandel.IntensityGrid{}, err
	}
	if err := img.Validate(); err != nil {
		return mandel.IntensityGrid{}, fmt.Errorf("received image: %w", err)
	}
	if img.Width*img.Height > p.maxPixels {
		return mandel.IntensityGrid{}, fmt.Errorf("received %dx%d image exceeds %d pixels", img.Width, img.Height, p.maxPixels)
	}
	return img, nil
}

// httpImgProvider downloads a PGM image.
type httpImgProvider struct {
	ctx       context.Context
	url       string
	maxPixels int
}

var _ mandel.ImgProvider = httpImgProvider{}

func (p httpImgProvider) GetImage() (mandel.IntensityGrid, error) {
	req, err := http.NewRequestWithContext(p.ctx, http.MethodGet, p.url, nil)
	if err != nil {
		return mandel.IntensityGrid{}, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return mandel.IntensityGrid{}, fmt.Errorf("GET %q: %w", p.url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return mandel.IntensityGrid{}, fmt.Errorf("GET %q: %s", p.url, resp.Status)
	}
	img, err := mandel.DecodePGM(resp.Body, p.maxPixels)
	if err != nil {
		return mandel.IntensityGrid{}, fmt.Errorf("mandel.DecodePGM: %w", err)
	}
	return *img, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
