// Shared model for every upstream adapter.
// Adapters turn one raw response into normalized jobs; they never do IO.

package scraper

import (
	"errors"
	"net/http"
	"time"
)

var (
	// ErrTransport marks a failed fetch: network, timeout, non-2xx.
	ErrTransport = errors.New("transport error")
	// ErrMalformed marks a payload an adapter could not parse at all.
	ErrMalformed = errors.New("malformed payload")
)

// Job is the normalized record that flows through the pipeline.
// Every field is a plain string so the zero value is always "".
type Job struct {
	Title         string `json:"title"`
	Company       string `json:"company"`
	Location      string `json:"location"`
	Snippet       string `json:"snippet"`
	Link          string `json:"link"`
	Source        string `json:"source"`
	QueryKeyword  string `json:"query_keyword"`
	QueryLocation string `json:"query_location"`

	// Description is the full text the snippet was cut from.
	Description string `json:"-"`
	PostedAt    string `json:"posted_at,omitempty"`
}

// Kind tells the transport how a request must be fetched.
type Kind int

const (
	KindAPI  Kind = iota // plain HTTP GET, JSON body
	KindPage             // browser-rendered page, HTML body
)

func (k Kind) String() string {
	switch k {
	case KindAPI:
		return "api"
	case KindPage:
		return "page"
	}
	return "unknown"
}

// Query is one planned (keyword, location, source) fetch.
type Query struct {
	Keyword  string
	Location string
	Source   string
}

// Request is what a source wants fetched for a query.
type Request struct {
	Kind   Kind
	Method string
	URL    string
	Header http.Header
	// WaitSelector is an optional selector a page load waits for.
	WaitSelector string
}

// RawResponse is the payload of one fetch. It is consumed once.
type RawResponse struct {
	Query       Query
	URL         string
	StatusCode  int
	ContentType string
	Body        []byte
	FetchedAt   time.Time
}

// Source is implemented by every upstream adapter.
type Source interface {
	// Name is the source id used in config (jsearch, linkedin, ...)
	Name() string

	Kind() Kind

	// Request builds the upstream request for a query. Pure.
	Request(q Query) (Request, error)

	// Normalize maps a raw response to jobs. Missing fields become "".
	// Only a wholly unparseable payload returns an error.
	Normalize(raw *RawResponse) ([]Job, error)
}
