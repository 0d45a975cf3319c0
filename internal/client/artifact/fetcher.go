// Package artifact downloads the image a completed job produced. Results
// are either served by the API itself (relative or absolute URLs) or live
// in an S3-compatible bucket such as DigitalOcean Spaces.
package artifact

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/dmitrijs2005/neuralart/internal/client/client"
)

// Fetcher opens the artifact behind a job result reference.
type Fetcher interface {
	Fetch(ctx context.Context, ref string) (io.ReadCloser, error)
}

// HTTPFetcher resolves references against the API base URL.
type HTTPFetcher struct {
	base *url.URL
	hc   *http.Client
}

func NewHTTPFetcher(serverURL string, hc *http.Client) (*HTTPFetcher, error) {
	base, err := url.Parse(serverURL)
	if err != nil {
		return nil, fmt.Errorf("parse server url: %w", err)
	}
	if hc == nil {
		hc = http.DefaultClient
	}
	return &HTTPFetcher{base: base, hc: hc}, nil
}

// Resolve turns ref into an absolute URL.
func (f *HTTPFetcher) Resolve(ref string) (*url.URL, error) {
	u, err := url.Parse(ref)
	if err != nil {
		return nil, fmt.Errorf("parse result reference: %w", err)
	}
	return f.base.ResolveReference(u), nil
}

func (f *HTTPFetcher) Fetch(ctx context.Context, ref string) (io.ReadCloser, error) {
	u, err := f.Resolve(ref)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := f.hc.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %v", client.ErrTransport, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_ = resp.Body.Close()
		kind := client.ErrUnexpectedStatus
		if resp.StatusCode == http.StatusNotFound {
			kind = client.ErrNotFound
		}
		return nil, fmt.Errorf("fetch %s: %w (%d)", u.Redacted(), kind, resp.StatusCode)
	}
	return resp.Body, nil
}

// Router sends references that name the configured bucket to S3 and
// everything else over HTTP.
type Router struct {
	S3   *S3Fetcher
	HTTP Fetcher
}

func (r Router) Fetch(ctx context.Context, ref string) (io.ReadCloser, error) {
	if r.S3 != nil {
		if _, ok := r.S3.Match(ref); ok {
			return r.S3.Fetch(ctx, ref)
		}
	}
	return r.HTTP.Fetch(ctx, ref)
}
