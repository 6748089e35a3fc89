// Package naukri reads naukri.com search results. The listing is rendered
// client side, so it is fetched through the browser transport.
package naukri

import (
	"fmt"
	"net/http"
	"net/url"

	"github.com/PuerkitoBio/goquery"

	"github.com/SURENDHAR-1925/Job-Track/internal/scraper"
)

const (
	Name    = "naukri"
	baseURL = "https://www.naukri.com"
)

type Options struct {
	Limit int
	// MaxExperience is the years filter passed to the search (0 = freshers).
	MaxExperience int
}

type NaukriScraper struct {
	opts Options
}

func NewNaukriScraper(opts Options) *NaukriScraper {
	return &NaukriScraper{opts: opts}
}

func (s *NaukriScraper) Name() string { return Name }

func (s *NaukriScraper) Kind() scraper.Kind { return scraper.KindPage }

func (s *NaukriScraper) Request(q scraper.Query) (scraper.Request, error) {
	slug := scraper.Slugify(q.Keyword)
	if slug == "" {
		return scraper.Request{}, fmt.Errorf("naukri: empty keyword")
	}
	path := "/" + slug + "-jobs"
	if city := scraper.Slugify(q.Location); city != "" {
		path += "-in-" + city
	}
	params := url.Values{}
	params.Set("experience", fmt.Sprint(s.opts.MaxExperience))

	return scraper.Request{
		Kind:         scraper.KindPage,
		Method:       http.MethodGet,
		URL:          baseURL + path + "?" + params.Encode(),
		WaitSelector: ".srp-jobtuple-wrapper, article.jobTuple",
	}, nil
}

func (s *NaukriScraper) Normalize(raw *scraper.RawResponse) ([]scraper.Job, error) {
	doc, err := scraper.ParseHTML(raw.Body)
	if err != nil {
		return nil, fmt.Errorf("naukri: %w", err)
	}

	var jobs []scraper.Job
	doc.Find(".srp-jobtuple-wrapper, article.jobTuple").EachWithBreak(func(_ int, card *goquery.Selection) bool {
		if s.opts.Limit > 0 && len(jobs) >= s.opts.Limit {
			return false
		}
		title := scraper.Text(card, "a.title", ".title")
		if title == "" {
			return true
		}
		desc := scraper.JoinNonEmpty(" ",
			scraper.Text(card, ".job-desc", ".job-description"),
			scraper.Text(card, ".expwdth", ".exp-wrap", ".experience"),
			scraper.TextAll(card, ".tags-gt li, ul.tags li", " "),
		)
		jobs = append(jobs, scraper.Job{
			Title:         title,
			Company:       scraper.Text(card, "a.comp-name", ".comp-name", ".subTitle"),
			Location:      scraper.Text(card, ".locWdth", ".loc-wrap", ".location"),
			Snippet:       scraper.Snippet(scraper.Text(card, ".job-desc", ".job-description")),
			Description:   desc,
			Link:          scraper.CanonicalLink(scraper.Attr(card, "href", "a.title"), baseURL, true),
			Source:        "Naukri",
			PostedAt:      scraper.Text(card, ".job-post-day", ".type br + span", ".fleft.postedDate"),
			QueryKeyword:  raw.Query.Keyword,
			QueryLocation: raw.Query.Location,
		})
		return true
	})
	return jobs, nil
}
