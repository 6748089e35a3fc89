package scraper

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var blockedTitles = []string{"attention required", "just a moment", "cloudflare", "access denied"}

// ParseHTML parses a rendered page. Empty bodies and anti-bot interstitials
// are reported as ErrMalformed; there is nothing to extract from them.
func ParseHTML(body []byte) (*goquery.Document, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, fmt.Errorf("%w: empty page", ErrMalformed)
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	title := strings.ToLower(doc.Find("title").First().Text())
	for _, b := range blockedTitles {
		if strings.Contains(title, b) {
			return nil, fmt.Errorf("%w: blocked page %q", ErrMalformed, Clean(title))
		}
	}
	if doc.Find(".captcha, .recaptcha, [data-captcha]").Length() > 0 {
		return nil, fmt.Errorf("%w: captcha page", ErrMalformed)
	}
	return doc, nil
}

// Text returns the cleaned text of the first selector that yields any.
func Text(s *goquery.Selection, selectors ...string) string {
	for _, sel := range selectors {
		if t := Clean(s.Find(sel).First().Text()); t != "" {
			return t
		}
	}
	return ""
}

// TextAll joins the cleaned text of every match of selector.
func TextAll(s *goquery.Selection, selector, sep string) string {
	var parts []string
	s.Find(selector).Each(func(_ int, n *goquery.Selection) {
		if t := Clean(n.Text()); t != "" {
			parts = append(parts, t)
		}
	})
	return strings.Join(parts, sep)
}

// Attr returns attr of the first selector match that carries it.
// An empty selector means s itself.
func Attr(s *goquery.Selection, attr string, selectors ...string) string {
	for _, sel := range selectors {
		n := s
		if sel != "" {
			n = s.Find(sel).First()
		}
		if v, ok := n.Attr(attr); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
