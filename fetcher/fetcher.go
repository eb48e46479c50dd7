package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ErrImageTooLarge is wrapped into a FetchError when the remote resource
// exceeds the configured size cap.
var ErrImageTooLarge = errors.New("image exceeds size limit")

// FetchError reports a failure to download an image. StatusCode is zero
// when the request never produced a response.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("failed to fetch %s: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("failed to fetch %s: status %d", e.URL, e.StatusCode)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Fetcher downloads image bytes over HTTP. One instance is shared across
// requests so the underlying client can reuse connections.
type Fetcher struct {
	client   *http.Client
	maxBytes int64
}

// New creates a Fetcher with the given request timeout and response size cap.
func New(timeout time.Duration, maxBytes int64) *Fetcher {
	return &Fetcher{
		client:   &http.Client{Timeout: timeout},
		maxBytes: maxBytes,
	}
}

// Fetch retrieves the resource at url and returns its raw bytes. Unreachable
// hosts, non-2xx statuses and oversized bodies all yield a *FetchError.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &FetchError{URL: url, StatusCode: resp.StatusCode}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		return nil, &FetchError{URL: url, StatusCode: resp.StatusCode, Err: err}
	}
	if int64(len(data)) > f.maxBytes {
		return nil, &FetchError{URL: url, StatusCode: resp.StatusCode, Err: ErrImageTooLarge}
	}

	return data, nil
}
