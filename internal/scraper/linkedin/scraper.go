package linkedin

import (
	"fmt"
	"net/http"
	"net/url"

	"github.com/PuerkitoBio/goquery"

	"github.com/SURENDHAR-1925/Job-Track/internal/scraper"
)

const (
	Name      = "linkedin"
	searchURL = "https://www.linkedin.com/jobs/search"
	baseURL   = "https://www.linkedin.com"
)

type Options struct {
	Limit int
}

// LinkedInScraper reads the public (guest) job search page.
type LinkedInScraper struct {
	opts Options
}

func NewLinkedInScraper(opts Options) *LinkedInScraper {
	return &LinkedInScraper{opts: opts}
}

func (s *LinkedInScraper) Name() string { return Name }

func (s *LinkedInScraper) Kind() scraper.Kind { return scraper.KindPage }

func (s *LinkedInScraper) Request(q scraper.Query) (scraper.Request, error) {
	keyword := scraper.Clean(q.Keyword)
	if keyword == "" {
		return scraper.Request{}, fmt.Errorf("linkedin: empty keyword")
	}
	params := url.Values{}
	params.Set("keywords", keyword)
	if loc := scraper.Clean(q.Location); loc != "" {
		params.Set("location", loc)
	}
	// internship + entry level, posted in the past month
	params.Set("f_E", "1,2")
	params.Set("f_TPR", "r2592000")

	return scraper.Request{
		Kind:         scraper.KindPage,
		Method:       http.MethodGet,
		URL:          searchURL + "?" + params.Encode(),
		WaitSelector: "ul.jobs-search__results-list",
	}, nil
}

func (s *LinkedInScraper) Normalize(raw *scraper.RawResponse) ([]scraper.Job, error) {
	doc, err := scraper.ParseHTML(raw.Body)
	if err != nil {
		return nil, fmt.Errorf("linkedin: %w", err)
	}

	cards := doc.Find("ul.jobs-search__results-list > li")
	if cards.Length() == 0 {
		cards = doc.Find("div.base-search-card")
	}

	var jobs []scraper.Job
	cards.EachWithBreak(func(_ int, card *goquery.Selection) bool {
		if s.opts.Limit > 0 && len(jobs) >= s.opts.Limit {
			return false
		}
		title := scraper.Text(card, ".base-search-card__title", "h3")
		if title == "" {
			return true
		}
		desc := scraper.Text(card, ".job-search-card__snippet", ".job-posting-benefits__text")
		jobs = append(jobs, scraper.Job{
			Title:         title,
			Company:       scraper.Text(card, ".base-search-card__subtitle", "h4"),
			Location:      scraper.Text(card, ".job-search-card__location"),
			Snippet:       scraper.Snippet(desc),
			Description:   desc,
			Link:          scraper.CanonicalLink(scraper.Attr(card, "href", "a.base-card__full-link", "a"), baseURL, true),
			Source:        "LinkedIn",
			PostedAt:      scraper.Attr(card, "datetime", "time"),
			QueryKeyword:  raw.Query.Keyword,
			QueryLocation: raw.Query.Location,
		})
		return true
	})
	return jobs, nil
}
