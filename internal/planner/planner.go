// Package planner expands search terms into the ordered list of queries.
package planner

import (
	"strings"

	"github.com/SURENDHAR-1925/Job-Track/internal/scraper"
)

// Plan returns one query per (keyword, location, source).
//
// Order is keyword (outer), location, source (inner). It is stable for equal
// inputs, which keeps the deduplicator's first-seen choice reproducible.
// No locations means a single query per keyword and source without a
// location facet. Blank and repeated entries (case-insensitive) are dropped.
func Plan(keywords, locations, sources []string) []scraper.Query {
	keywords = unique(keywords)
	sources = unique(sources)
	locations = unique(locations)
	if len(locations) == 0 {
		locations = []string{""}
	}

	queries := make([]scraper.Query, 0, len(keywords)*len(locations)*len(sources))
	for _, kw := range keywords {
		for _, loc := range locations {
			for _, src := range sources {
				queries = append(queries, scraper.Query{Keyword: kw, Location: loc, Source: src})
			}
		}
	}
	return queries
}

func unique(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = scraper.Clean(s)
		key := strings.ToLower(s)
		if s == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, s)
	}
	return out
}
