// Package transport performs the single network call behind each query.
package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/SURENDHAR-1925/Job-Track/internal/scraper"
)

// maxBody caps how much of an upstream response is read.
const maxBody = 16 << 20

// ErrNoTransport is returned by Mux for a request kind nothing handles.
var ErrNoTransport = errors.New("no transport for request kind")

// Fetcher performs one request. Implementations make exactly one attempt.
type Fetcher interface {
	Fetch(ctx context.Context, req scraper.Request) (*scraper.RawResponse, error)
}

// HTTP fetches API requests with net/http.
type HTTP struct {
	client    *http.Client
	userAgent string
	now       func() time.Time
}

// NewHTTP returns an HTTP fetcher. Timeouts come from the caller's context.
func NewHTTP(userAgent string) *HTTP {
	return &HTTP{
		client:    &http.Client{},
		userAgent: userAgent,
		now:       time.Now,
	}
}

// Fetch issues the request once. A non-2xx status returns the response
// together with an error wrapping scraper.ErrTransport, so callers can
// still archive what the upstream sent.
func (h *HTTP) Fetch(ctx context.Context, req scraper.Request) (*scraper.RawResponse, error) {
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}
	httpReq, err := http.NewRequestWithContext(ctx, method, req.URL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	for k, vs := range req.Header {
		for _, v := range vs {
			httpReq.Header.Add(k, v)
		}
	}
	if h.userAgent != "" && httpReq.Header.Get("User-Agent") == "" {
		httpReq.Header.Set("User-Agent", h.userAgent)
	}

	resp, err := h.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", scraper.ErrTransport, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", scraper.ErrTransport, err)
	}

	raw := &scraper.RawResponse{
		URL:         req.URL,
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        body,
		FetchedAt:   h.now(),
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return raw, fmt.Errorf("%w: status %d", scraper.ErrTransport, resp.StatusCode)
	}
	return raw, nil
}
