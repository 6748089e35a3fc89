// Package jsearch adapts the RapidAPI JSearch search endpoint.
package jsearch

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/SURENDHAR-1925/Job-Track/internal/scraper"
)

const (
	Name    = "jsearch"
	apiURL  = "https://jsearch.p.rapidapi.com/search"
	apiHost = "jsearch.p.rapidapi.com"
)

// Options configures the adapter.
type Options struct {
	APIKey     string
	Country    string // "in"
	DatePosted string // all, today, 3days, week, month
	Limit      int
}

type JSearchScraper struct {
	opts Options
}

func NewJSearchScraper(opts Options) *JSearchScraper {
	if opts.Country == "" {
		opts.Country = "in"
	}
	if opts.DatePosted == "" {
		opts.DatePosted = "all"
	}
	return &JSearchScraper{opts: opts}
}

func (s *JSearchScraper) Name() string { return Name }

func (s *JSearchScraper) Kind() scraper.Kind { return scraper.KindAPI }

// Request builds "<keyword> jobs in <location>" the way the search box expects it.
func (s *JSearchScraper) Request(q scraper.Query) (scraper.Request, error) {
	keyword := scraper.Clean(q.Keyword)
	if keyword == "" {
		return scraper.Request{}, fmt.Errorf("jsearch: empty keyword")
	}
	text := keyword + " jobs"
	if loc := scraper.Clean(q.Location); loc != "" {
		text += " in " + loc
	}

	params := url.Values{}
	params.Set("query", text)
	params.Set("page", "1")
	params.Set("num_pages", "1")
	params.Set("country", s.opts.Country)
	params.Set("date_posted", s.opts.DatePosted)

	header := http.Header{}
	header.Set("X-RapidAPI-Key", s.opts.APIKey)
	header.Set("X-RapidAPI-Host", apiHost)
	header.Set("Accept", "application/json")

	return scraper.Request{
		Kind:   scraper.KindAPI,
		Method: http.MethodGet,
		URL:    apiURL + "?" + params.Encode(),
		Header: header,
	}, nil
}

type searchResponse struct {
	Status string            `json:"status"`
	Data   []json.RawMessage `json:"data"`
}

// Normalize maps the "data" array. A missing array is zero jobs, not an error.
func (s *JSearchScraper) Normalize(raw *scraper.RawResponse) ([]scraper.Job, error) {
	var resp searchResponse
	if err := json.Unmarshal(raw.Body, &resp); err != nil {
		return nil, fmt.Errorf("jsearch: %w: %v", scraper.ErrMalformed, err)
	}

	var jobs []scraper.Job
	for _, item := range scraper.Objects(resp.Data) {
		if s.opts.Limit > 0 && len(jobs) >= s.opts.Limit {
			break
		}
		desc := scraper.Clean(scraper.Str(item, "job_description"))
		jobs = append(jobs, scraper.Job{
			Title:   scraper.Clean(scraper.Str(item, "job_title")),
			Company: scraper.Clean(scraper.Str(item, "employer_name")),
			Location: scraper.JoinNonEmpty(", ",
				scraper.Str(item, "job_city"),
				scraper.Str(item, "job_state"),
				scraper.Str(item, "job_country"),
			),
			Snippet:       scraper.Snippet(desc),
			Description:   desc,
			Link:          scraper.CanonicalLink(scraper.Str(item, "job_apply_link"), "", false),
			Source:        scraper.Clean(scraper.Str(item, "job_publisher")),
			PostedAt:      strings.TrimSpace(scraper.Str(item, "job_posted_at_datetime_utc")),
			QueryKeyword:  raw.Query.Keyword,
			QueryLocation: raw.Query.Location,
		})
	}
	return jobs, nil
}
