// Package model provides retrieval of the sentiment model from a file or url,
// holds the loaded classifier and reloads it on request or on file change.
package model

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/go-pkgz/fileutils"
	"github.com/go-pkgz/repeater"
)

//go:generate moq --out mocks/http_client.go --pkg mocks --skip-ensure . HTTPClient

const maxModelSize = 256 * 1024 * 1024

// HTTPClient is an interface for http client, satisfied by http.Client
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// FileFetcher reads compressed model from a local file
type FileFetcher struct {
	Path string
}

// Fetch reads the whole file
func (f FileFetcher) Fetch(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !fileutils.IsFile(f.Path) {
		return nil, fmt.Errorf("model file %q not found", f.Path)
	}
	fh, err := os.Open(f.Path) //nolint gosec // path is controlled by the app
	if err != nil {
		return nil, fmt.Errorf("failed to open model file %s: %w", f.Path, err)
	}
	defer fh.Close()
	data, err := readLimited(fh, maxModelSize)
	if err != nil {
		return nil, fmt.Errorf("failed to read model file %s: %w", f.Path, err)
	}
	return data, nil
}

// String returns the file path, used as the model source
func (f FileFetcher) String() string { return f.Path }

// HTTPFetcher downloads compressed model from a url. Failed transfers are retried
// Attempts times with Delay between them, non-2xx response is a failed transfer.
type HTTPFetcher struct {
	URL      string
	Client   HTTPClient    // http.DefaultClient if nil
	Attempts int           // 1 if not set
	Delay    time.Duration // delay between attempts
}

// Fetch makes GET request and returns the response body
func (f HTTPFetcher) Fetch(ctx context.Context) ([]byte, error) {
	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	attempts := max(f.Attempts, 1)

	var res []byte
	attempt, done := 0, false
	err := repeater.NewDefault(attempts, f.Delay).Do(ctx, func() error {
		attempt++
		data, err := f.get(ctx, client)
		if err != nil {
			log.Printf("[DEBUG] model download attempt %d/%d from %s failed: %v", attempt, attempts, f.URL, err)
			return err
		}
		res, done = data, true
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to download model from %s: %w", f.URL, err)
	}
	if !done { // repeater stopped by ctx before the first attempt
		return nil, fmt.Errorf("failed to download model from %s: %w", f.URL, ctx.Err())
	}
	log.Printf("[DEBUG] downloaded model from %s, %d bytes", f.URL, len(res))
	return res, nil
}

func (f HTTPFetcher) get(ctx context.Context, client HTTPClient) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.URL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}
	data, err := readLimited(resp.Body, maxModelSize)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	return data, nil
}

// readLimited reads everything from rd, more than limit bytes is an error
func readLimited(rd io.Reader, limit int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(rd, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("model is too large, more than %d bytes", limit)
	}
	return data, nil
}

// String returns the url, used as the model source
func (f HTTPFetcher) String() string { return f.URL }
