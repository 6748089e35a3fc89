package internshala

import (
	"fmt"
	"net/http"

	"github.com/PuerkitoBio/goquery"

	"github.com/SURENDHAR-1925/Job-Track/internal/scraper"
)

const (
	Name    = "internshala"
	baseURL = "https://internshala.com"
)

type Options struct {
	Limit int
}

type InternshalaScraper struct {
	opts Options
}

func NewInternshalaScraper(opts Options) *InternshalaScraper {
	return &InternshalaScraper{opts: opts}
}

func (s *InternshalaScraper) Name() string { return Name }

func (s *InternshalaScraper) Kind() scraper.Kind { return scraper.KindPage }

// Request uses the slug listing: /jobs/<keyword>-jobs-in-<city>/
func (s *InternshalaScraper) Request(q scraper.Query) (scraper.Request, error) {
	slug := scraper.Slugify(q.Keyword)
	if slug == "" {
		return scraper.Request{}, fmt.Errorf("internshala: empty keyword")
	}
	path := fmt.Sprintf("/jobs/%s-jobs/", slug)
	if city := scraper.Slugify(q.Location); city != "" {
		path = fmt.Sprintf("/jobs/%s-jobs-in-%s/", slug, city)
	}
	return scraper.Request{
		Kind:         scraper.KindPage,
		Method:       http.MethodGet,
		URL:          baseURL + path,
		WaitSelector: ".individual_internship",
	}, nil
}

func (s *InternshalaScraper) Normalize(raw *scraper.RawResponse) ([]scraper.Job, error) {
	doc, err := scraper.ParseHTML(raw.Body)
	if err != nil {
		return nil, fmt.Errorf("internshala: %w", err)
	}

	var jobs []scraper.Job
	doc.Find(".individual_internship").EachWithBreak(func(_ int, card *goquery.Selection) bool {
		if s.opts.Limit > 0 && len(jobs) >= s.opts.Limit {
			return false
		}
		title := scraper.Text(card, ".job-internship-name", ".heading_4_5 a", "h3")
		if title == "" {
			return true
		}

		location := scraper.TextAll(card, ".locations a", ", ")
		if location == "" {
			location = scraper.Text(card, ".locations", ".location_link")
		}

		// experience lives in the detail row ("0-2 years", "Fresher Job"), keep it searchable
		desc := scraper.JoinNonEmpty(" ",
			scraper.Text(card, ".about_job .text", ".job_description"),
			scraper.TextAll(card, ".detail-row-1 .row-1-item, .other_detail_item", " "),
			scraper.TextAll(card, ".status-container .status, .labels .label", " "),
		)

		href := scraper.Attr(card, "data-href", "")
		if href == "" {
			href = scraper.Attr(card, "href", ".job-internship-name a", "a.view_detail_button", "a")
		}

		jobs = append(jobs, scraper.Job{
			Title:         title,
			Company:       scraper.Text(card, ".company-name", ".company_name a", ".company_name"),
			Location:      location,
			Snippet:       scraper.Snippet(desc),
			Description:   desc,
			Link:          scraper.CanonicalLink(href, baseURL, true),
			Source:        "Internshala",
			PostedAt:      scraper.Text(card, ".status-inactive", ".posted_by_container"),
			QueryKeyword:  raw.Query.Keyword,
			QueryLocation: raw.Query.Location,
		})
		return true
	})
	return jobs, nil
}
