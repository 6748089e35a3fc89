// Package filter decides which jobs are reported.
//
// A Policy is a conjunction of named criteria. Every criterion is evaluated
// for every job, so a rejected job carries all of its failing reasons in
// policy order, each formatted "<criterion>: <observed value or NONE>".
package filter

import (
	"fmt"
	"strings"
	"time"

	"github.com/SURENDHAR-1925/Job-Track/internal/scraper"
)

// Criterion is one named accept/reject check.
type Criterion interface {
	Name() string
	// Check returns ok, and the observed value to report when not ok.
	Check(job scraper.Job) (ok bool, observed string)
}

// Decision is the outcome for one job. Reasons is empty iff Accepted.
type Decision struct {
	Job      scraper.Job
	Accepted bool
	Reasons  []string
}

// Reason renders a rejection reason.
func Reason(criterion, observed string) string {
	observed = scraper.Clean(observed)
	if observed == "" {
		observed = "NONE"
	}
	return fmt.Sprintf("%s: %s", criterion, observed)
}

// CriterionOf returns the criterion name a reason was produced by.
func CriterionOf(reason string) string {
	name, _, _ := strings.Cut(reason, ":")
	return name
}

type Policy struct {
	criteria []Criterion
}

// New builds a policy evaluating criteria in the given order.
func New(criteria ...Criterion) *Policy {
	return &Policy{criteria: criteria}
}

// Options is the data a standard policy is built from.
type Options struct {
	AllowedPublishers []string
	DeniedPublishers  []string
	AllowedLocations  []string
	LocationMode      LocationMode
	ExperiencePhrases []string
	ExcludeKeywords   []string
	MaxAgeDays        int
	// Now is the clock for the recency check; nil means time.Now.
	Now func() time.Time
}

// NewPolicy builds the standard policy: source, location, experience, then
// the optional excluded and recency criteria when configured.
func NewPolicy(opts Options) *Policy {
	criteria := []Criterion{
		NewSourceCriterion(opts.AllowedPublishers, opts.DeniedPublishers),
		NewLocationCriterion(opts.AllowedLocations, opts.LocationMode),
		NewExperienceCriterion(opts.ExperiencePhrases),
	}
	if len(opts.ExcludeKeywords) > 0 {
		criteria = append(criteria, NewExcludeCriterion(opts.ExcludeKeywords))
	}
	if opts.MaxAgeDays > 0 {
		criteria = append(criteria, NewRecencyCriterion(time.Duration(opts.MaxAgeDays)*24*time.Hour, opts.Now))
	}
	return New(criteria...)
}

// Criteria lists the criterion names in evaluation order.
func (p *Policy) Criteria() []string {
	names := make([]string, len(p.criteria))
	for i, c := range p.criteria {
		names[i] = c.Name()
	}
	return names
}

// Evaluate runs every criterion; it never short-circuits.
func (p *Policy) Evaluate(job scraper.Job) Decision {
	var reasons []string
	for _, c := range p.criteria {
		if ok, observed := c.Check(job); !ok {
			reasons = append(reasons, Reason(c.Name(), observed))
		}
	}
	return Decision{Job: job, Accepted: len(reasons) == 0, Reasons: reasons}
}

// Partition evaluates jobs in order and splits the decisions.
func (p *Policy) Partition(jobs []scraper.Job) (accepted []scraper.Job, rejected []Decision) {
	for _, job := range jobs {
		d := p.Evaluate(job)
		if d.Accepted {
			accepted = append(accepted, job)
			continue
		}
		rejected = append(rejected, d)
	}
	return accepted, rejected
}
