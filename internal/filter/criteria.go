package filter

import (
	"fmt"
	"strings"
	"time"

	"github.com/SURENDHAR-1925/Job-Track/internal/scraper"
)

// Criterion names, also used as the reason prefix.
const (
	CriterionSource     = "source"
	CriterionLocation   = "location"
	CriterionExperience = "experience"
	CriterionExcluded   = "excluded"
	CriterionRecency    = "recency"
)

// SourceCriterion passes when the publisher or the link's host contains an
// allowed token and neither the publisher nor the full link contains a
// denied one. An empty allow-list allows every publisher.
type SourceCriterion struct {
	allowed []string
	denied  []string
}

func NewSourceCriterion(allowed, denied []string) *SourceCriterion {
	return &SourceCriterion{allowed: foldAll(allowed), denied: foldAll(denied)}
}

func (c *SourceCriterion) Name() string { return CriterionSource }

func (c *SourceCriterion) Check(job scraper.Job) (bool, string) {
	source := fold(job.Source)
	link := fold(job.Link)
	host := fold(scraper.Host(job.Link))
	observed := scraper.Clean(job.Source)
	if observed == "" {
		observed = scraper.Host(job.Link)
	}

	for _, text := range []string{source, link} {
		if text != "" && firstContained(text, c.denied) != "" {
			return false, observed
		}
	}
	if len(c.allowed) == 0 {
		return true, ""
	}
	for _, text := range []string{source, host} {
		if text != "" && firstContained(text, c.allowed) != "" {
			return true, ""
		}
	}
	return false, observed
}

// LocationMode selects which location a LocationCriterion tests.
type LocationMode string

const (
	// LocationJob tests the location reported by the source.
	LocationJob LocationMode = "job"
	// LocationQuery tests the location facet the query was issued with.
	LocationQuery LocationMode = "query"
	// LocationEither passes when either matches.
	LocationEither LocationMode = "either"
)

// ParseLocationMode maps a configuration value to a mode; "" means job.
func ParseLocationMode(s string) (LocationMode, error) {
	switch m := LocationMode(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return LocationJob, nil
	case LocationJob, LocationQuery, LocationEither:
		return m, nil
	default:
		return "", fmt.Errorf("unknown location match mode %q", s)
	}
}

type LocationCriterion struct {
	allowed []string
	mode    LocationMode
}

func NewLocationCriterion(allowed []string, mode LocationMode) *LocationCriterion {
	if mode == "" {
		mode = LocationJob
	}
	return &LocationCriterion{allowed: foldAll(allowed), mode: mode}
}

func (c *LocationCriterion) Name() string { return CriterionLocation }

func (c *LocationCriterion) Check(job scraper.Job) (bool, string) {
	if len(c.allowed) == 0 {
		return true, ""
	}
	jobOK := firstContained(fold(job.Location), c.allowed) != ""
	queryOK := firstContained(fold(job.QueryLocation), c.allowed) != ""

	switch c.mode {
	case LocationQuery:
		if queryOK {
			return true, ""
		}
		return false, job.QueryLocation
	case LocationEither:
		if jobOK || queryOK {
			return true, ""
		}
	default:
		if jobOK {
			return true, ""
		}
	}
	return false, job.Location
}

// ExperienceCriterion passes when title, snippet or description contain one
// of the target experience phrases. The observed value is always NONE: no
// matching phrase was found.
type ExperienceCriterion struct {
	phrases []string
}

func NewExperienceCriterion(phrases []string) *ExperienceCriterion {
	return &ExperienceCriterion{phrases: foldAll(phrases)}
}

func (c *ExperienceCriterion) Name() string { return CriterionExperience }

func (c *ExperienceCriterion) Check(job scraper.Job) (bool, string) {
	if len(c.phrases) == 0 {
		return true, ""
	}
	text := fold(scraper.JoinNonEmpty(" ", job.Title, job.Snippet, job.Description))
	if firstContained(text, c.phrases) != "" {
		return true, ""
	}
	return false, ""
}

// ExcludeCriterion rejects jobs whose title, company or description contain
// a red-flag term; the observed value is the term that matched.
type ExcludeCriterion struct {
	terms []string
}

func NewExcludeCriterion(terms []string) *ExcludeCriterion {
	return &ExcludeCriterion{terms: foldAll(terms)}
}

func (c *ExcludeCriterion) Name() string { return CriterionExcluded }

func (c *ExcludeCriterion) Check(job scraper.Job) (bool, string) {
	text := fold(scraper.JoinNonEmpty(" ", job.Title, job.Company, job.Snippet, job.Description))
	if term := firstContained(text, c.terms); term != "" {
		return false, term
	}
	return true, ""
}

// RecencyCriterion rejects postings older than maxAge. Jobs without a
// parseable posting date pass.
type RecencyCriterion struct {
	maxAge time.Duration
	now    func() time.Time
}

func NewRecencyCriterion(maxAge time.Duration, now func() time.Time) *RecencyCriterion {
	if now == nil {
		now = time.Now
	}
	return &RecencyCriterion{maxAge: maxAge, now: now}
}

func (c *RecencyCriterion) Name() string { return CriterionRecency }

func (c *RecencyCriterion) Check(job scraper.Job) (bool, string) {
	if IsRecent(job.PostedAt, c.now(), c.maxAge) {
		return true, ""
	}
	return false, job.PostedAt
}
