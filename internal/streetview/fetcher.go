// Package streetview fetches the triple-angle street-level imagery that
// feeds the visual reconciliation audit.
package streetview

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/sync/errgroup"
)

// angle describes one camera position of the triple-angle capture.
type angle struct {
	fov     int
	heading int
	angled  bool
}

// Front-facing wide shot plus two 40-degree offsets.
var captureAngles = []angle{
	{fov: 100},
	{fov: 90, heading: -40, angled: true},
	{fov: 90, heading: 40, angled: true},
}

// Fetcher retrieves street-level images for an address. All angles are
// fetched in parallel and awaited jointly; a single failed fetch fails the
// whole set so reconciliation never runs on partial imagery.
type Fetcher struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewFetcher builds a fetcher with a bounded per-request timeout.
func NewFetcher(baseURL, apiKey string, timeout time.Duration) *Fetcher {
	return &Fetcher{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Fetch downloads all capture angles for the address.
func (f *Fetcher) Fetch(ctx context.Context, address string) ([][]byte, error) {
	images := make([][]byte, len(captureAngles))

	g, gctx := errgroup.WithContext(ctx)
	for i, a := range captureAngles {
		g.Go(func() error {
			img, err := f.fetchOne(gctx, address, a)
			if err != nil {
				return fmt.Errorf("angle %d: %w", i, err)
			}
			images[i] = img
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return images, nil
}

func (f *Fetcher) fetchOne(ctx context.Context, address string, a angle) ([]byte, error) {
	q := url.Values{}
	q.Set("size", "600x400")
	q.Set("location", address)
	q.Set("fov", fmt.Sprintf("%d", a.fov))
	if a.angled {
		q.Set("heading", fmt.Sprintf("%d", a.heading))
	}
	q.Set("key", f.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	return io.ReadAll(resp.Body)
}
