package scraper

import (
	"net/url"
	"strings"
	"unicode/utf8"
)

// SnippetLength bounds Job.Snippet, in runes.
const SnippetLength = 250

// Clean collapses all whitespace runs into single spaces and trims.
func Clean(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Snippet returns the cleaned text cut to SnippetLength runes.
func Snippet(s string) string {
	s = Clean(s)
	if utf8.RuneCountInString(s) <= SnippetLength {
		return s
	}
	r := []rune(s)
	return strings.TrimSpace(string(r[:SnippetLength]))
}

// JoinNonEmpty joins the cleaned, non-empty parts with sep.
func JoinNonEmpty(sep string, parts ...string) string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = Clean(p); p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, sep)
}

// Slugify turns "golang developer" into "golang-developer".
func Slugify(s string) string {
	return strings.ReplaceAll(strings.ToLower(Clean(s)), " ", "-")
}

// CanonicalLink resolves href against base and drops the fragment.
// With stripQuery the query string goes too (tracking params on job boards
// make one posting look like many). Unparseable input yields "".
func CanonicalLink(href, base string, stripQuery bool) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	u, err := url.Parse(href)
	if err != nil {
		return ""
	}
	if !u.IsAbs() && base != "" {
		b, err := url.Parse(base)
		if err != nil {
			return ""
		}
		u = b.ResolveReference(u)
	}
	u.Fragment = ""
	if stripQuery {
		u.RawQuery = ""
	}
	return u.String()
}

// Host returns the lower-cased host of link, or "".
func Host(link string) string {
	u, err := url.Parse(strings.TrimSpace(link))
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Hostname())
}

// Limit truncates jobs to at most n entries; n <= 0 means no limit.
func Limit(jobs []Job, n int) []Job {
	if n > 0 && len(jobs) > n {
		return jobs[:n]
	}
	return jobs
}
