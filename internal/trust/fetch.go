package trust

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Fetcher retrieves signing-key material from a remote source.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// DefaultFetchTimeout bounds the key download; a slow keyserver must
// not hang the whole registration.
const DefaultFetchTimeout = 30 * time.Second

// maxKeySize caps the download; no real key blob comes close.
const maxKeySize = 1 << 20

// HTTPFetcher fetches keys over HTTP(S).
type HTTPFetcher struct {
	Client  *http.Client
	Timeout time.Duration
}

// Fetch downloads the key blob at url.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	timeout := f.Timeout
	if timeout == 0 {
		timeout = DefaultFetchTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %s fetching key", resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxKeySize))
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("empty response fetching key")
	}
	return data, nil
}
