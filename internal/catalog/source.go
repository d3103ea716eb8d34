package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// Source provides raw catalog data.
type Source interface {
	// Index lists the item paths, e.g. "/data/Swords/crystal-sword".
	Index(ctx context.Context) ([]string, error)
	// Item returns the raw wiki JSON stored under path.
	Item(ctx context.Context, path string) ([]byte, error)
	// ImageExists reports whether an image can be loaded from url.
	ImageExists(ctx context.Context, url string) bool
}

// HTTPSource fetches catalog data over HTTP with bounded fixed-backoff
// retries.
type HTTPSource struct {
	BaseURL  string
	Client   *http.Client
	Attempts uint
	Backoff  time.Duration
}

// NewHTTPSource creates a source rooted at baseURL.
func NewHTTPSource(baseURL string, attempts uint, wait time.Duration) *HTTPSource {
	if attempts == 0 {
		attempts = 1
	}
	return &HTTPSource{
		BaseURL:  strings.TrimRight(baseURL, "/"),
		Client:   &http.Client{Timeout: 10 * time.Second},
		Attempts: attempts,
		Backoff:  wait,
	}
}

var errStatus = errors.New("unexpected status")

func (s *HTTPSource) get(ctx context.Context, path string) ([]byte, error) {
	url := s.BaseURL + path
	op := func() ([]byte, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, backoff.Permanent(err)
		}
		resp, err := s.Client.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()
		switch {
		case resp.StatusCode == http.StatusNotFound:
			return nil, backoff.Permanent(fmt.Errorf("%w: %s %d", errStatus, url, resp.StatusCode))
		case resp.StatusCode != http.StatusOK:
			return nil, fmt.Errorf("%w: %s %d", errStatus, url, resp.StatusCode)
		}
		return io.ReadAll(resp.Body)
	}
	return backoff.Retry(ctx, op,
		backoff.WithBackOff(backoff.NewConstantBackOff(s.Backoff)),
		backoff.WithMaxTries(s.Attempts),
	)
}

// Index fetches /data/index.json.
func (s *HTTPSource) Index(ctx context.Context) ([]string, error) {
	b, err := s.get(ctx, "/data/index.json")
	if err != nil {
		return nil, err
	}
	var paths []string
	if err := json.Unmarshal(b, &paths); err != nil {
		return nil, fmt.Errorf("decode index: %w", err)
	}
	return paths, nil
}

// Item fetches <path>/data.json.
func (s *HTTPSource) Item(ctx context.Context, path string) ([]byte, error) {
	return s.get(ctx, strings.TrimRight(path, "/")+"/data.json")
}

// ImageExists probes url with the same retry budget. Only site-relative
// URLs are probed; anything else is reported missing.
func (s *HTTPSource) ImageExists(ctx context.Context, url string) bool {
	if !strings.HasPrefix(url, "/") {
		return false
	}
	_, err := s.get(ctx, url)
	return err == nil
}
