// Package adzuna adapts the Adzuna public job search API.
package adzuna

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/SURENDHAR-1925/Job-Track/internal/scraper"
)

const (
	Name        = "adzuna"
	baseURL     = "https://api.adzuna.com/v1/api/jobs"
	sourceLabel = "Adzuna"
	maxPageSize = 50
)

type Options struct {
	AppID   string
	AppKey  string
	Country string // "in", "gb", "us", ...
	Limit   int
}

// AdzunaScraper only ever asks for the first page; one attempt per query.
type AdzunaScraper struct {
	opts Options
}

func NewAdzunaScraper(opts Options) *AdzunaScraper {
	if opts.Country == "" {
		opts.Country = "in"
	}
	return &AdzunaScraper{opts: opts}
}

func (s *AdzunaScraper) Name() string { return Name }

func (s *AdzunaScraper) Kind() scraper.Kind { return scraper.KindAPI }

func (s *AdzunaScraper) Request(q scraper.Query) (scraper.Request, error) {
	keyword := scraper.Clean(q.Keyword)
	if keyword == "" {
		return scraper.Request{}, fmt.Errorf("adzuna: empty keyword")
	}

	pageSize := maxPageSize
	if s.opts.Limit > 0 && s.opts.Limit < pageSize {
		pageSize = s.opts.Limit
	}

	params := url.Values{}
	params.Set("app_id", s.opts.AppID)
	params.Set("app_key", s.opts.AppKey)
	params.Set("results_per_page", strconv.Itoa(pageSize))
	params.Set("what", keyword)
	if loc := scraper.Clean(q.Location); loc != "" {
		params.Set("where", loc)
	}
	params.Set("sort_by", "date")

	header := http.Header{}
	header.Set("Accept", "application/json")

	return scraper.Request{
		Kind:   scraper.KindAPI,
		Method: http.MethodGet,
		URL:    fmt.Sprintf("%s/%s/search/1?%s", baseURL, s.opts.Country, params.Encode()),
		Header: header,
	}, nil
}

type searchResponse struct {
	Results []json.RawMessage `json:"results"`
	Count   int               `json:"count"`
}

func (s *AdzunaScraper) Normalize(raw *scraper.RawResponse) ([]scraper.Job, error) {
	var resp searchResponse
	if err := json.Unmarshal(raw.Body, &resp); err != nil {
		return nil, fmt.Errorf("adzuna: %w: %v", scraper.ErrMalformed, err)
	}

	var jobs []scraper.Job
	for _, r := range scraper.Objects(resp.Results) {
		if s.opts.Limit > 0 && len(jobs) >= s.opts.Limit {
			break
		}
		desc := scraper.Clean(scraper.Str(r, "description"))
		jobs = append(jobs, scraper.Job{
			Title:         scraper.Clean(scraper.Str(r, "title")),
			Company:       scraper.Clean(scraper.Str(r, "company", "display_name")),
			Location:      scraper.Clean(scraper.Str(r, "location", "display_name")),
			Snippet:       scraper.Snippet(desc),
			Description:   desc,
			Link:          scraper.CanonicalLink(scraper.Str(r, "redirect_url"), "", false),
			Source:        sourceLabel,
			PostedAt:      scraper.Str(r, "created"),
			QueryKeyword:  raw.Query.Keyword,
			QueryLocation: raw.Query.Location,
		})
	}
	return jobs, nil
}
