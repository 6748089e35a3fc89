// Package dedup removes repeated postings within one run.
package dedup

import (
	"fmt"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/SURENDHAR-1925/Job-Track/internal/scraper"
)

// FallbackMode selects the identity used for jobs without a link.
type FallbackMode string

const (
	// TitleCompany keys on title|company across all sources.
	TitleCompany FallbackMode = "title_company"
	// TitleCompanySource keys on title|company|source, so two boards listing
	// an unlinked "Intern" at the same company are kept apart.
	TitleCompanySource FallbackMode = "title_company_source"
)

// ParseFallbackMode maps a configuration value to a mode; "" means
// TitleCompanySource.
func ParseFallbackMode(s string) (FallbackMode, error) {
	switch m := FallbackMode(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return TitleCompanySource, nil
	case TitleCompany, TitleCompanySource:
		return m, nil
	default:
		return "", fmt.Errorf("unknown dedup fallback %q", s)
	}
}

// Key returns the identity of a job: its link when present, otherwise the
// lower-cased fallback tuple. It is "" when the job has no link and neither
// title nor company.
func Key(job scraper.Job, mode FallbackMode) string {
	if link := strings.TrimSpace(job.Link); link != "" {
		return link
	}
	title := strings.ToLower(scraper.Clean(job.Title))
	company := strings.ToLower(scraper.Clean(job.Company))
	if title == "" && company == "" {
		return ""
	}
	if mode == TitleCompany {
		return title + "|" + company
	}
	return title + "|" + company + "|" + strings.ToLower(scraper.Clean(job.Source))
}

// Deduplicate keeps the first job seen for every key, preserving order.
// Jobs with an empty key are never treated as duplicates.
func Deduplicate(jobs []scraper.Job, mode FallbackMode) (kept []scraper.Job, dropped int) {
	seen := mapset.NewThreadUnsafeSet[string]()
	kept = make([]scraper.Job, 0, len(jobs))
	for _, job := range jobs {
		key := Key(job, mode)
		if key != "" && !seen.Add(key) {
			dropped++
			continue
		}
		kept = append(kept, job)
	}
	return kept, dropped
}
