package transport

import (
	"context"
	"fmt"

	"github.com/SURENDHAR-1925/Job-Track/internal/scraper"
)

// Mux routes a request to the fetcher registered for its kind.
type Mux struct {
	fetchers map[scraper.Kind]Fetcher
}

func NewMux() *Mux {
	return &Mux{fetchers: make(map[scraper.Kind]Fetcher)}
}

// Handle registers f for kind. A nil f removes the kind.
func (m *Mux) Handle(kind scraper.Kind, f Fetcher) {
	if f == nil {
		delete(m.fetchers, kind)
		return
	}
	m.fetchers[kind] = f
}

// Supports reports whether a fetcher is registered for kind.
func (m *Mux) Supports(kind scraper.Kind) bool {
	_, ok := m.fetchers[kind]
	return ok
}

func (m *Mux) Fetch(ctx context.Context, req scraper.Request) (*scraper.RawResponse, error) {
	f, ok := m.fetchers[req.Kind]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoTransport, req.Kind)
	}
	return f.Fetch(ctx, req)
}
