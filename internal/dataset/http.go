package dataset

import (
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// HTTPConfig points at a base URL serving "<table>.csv" files
type HTTPConfig struct {
	BaseURL string
	// Gzip fetches "<table>.csv.gz" and decompresses it
	Gzip    bool
	Timeout time.Duration
}

// HTTPOpener downloads dataset files over HTTP(S)
type HTTPOpener struct {
	baseURL string
	gzip    bool
	client  *http.Client
}

// NewHTTPOpener creates an opener for files under cfg.BaseURL
func NewHTTPOpener(cfg HTTPConfig) *HTTPOpener {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	return &HTTPOpener{
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		gzip:    cfg.Gzip,
		client:  &http.Client{Timeout: timeout},
	}
}

// Open downloads baseURL/name, decompressing when gzip is enabled
func (o *HTTPOpener) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	url := o.baseURL + "/" + name
	if o.gzip {
		url += ".gz"
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := o.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download file: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("unexpected status code %d for %s", resp.StatusCode, url)
	}

	if !o.gzip {
		return resp.Body, nil
	}

	gzReader, err := gzip.NewReader(resp.Body)
	if err != nil {
		resp.Body.Close()
		return nil, fmt.Errorf("failed to create gzip reader: %w", err)
	}
	return &gzipBody{Reader: gzReader, body: resp.Body}, nil
}

// gzipBody closes both the decompressor and the underlying response body
type gzipBody struct {
	*gzip.Reader
	body io.Closer
}

func (g *gzipBody) Close() error {
	gzErr := g.Reader.Close()
	if err := g.body.Close(); err != nil {
		return err
	}
	return gzErr
}
