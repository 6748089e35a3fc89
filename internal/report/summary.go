package report

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/SURENDHAR-1925/Job-Track/internal/scraper"
)

// maxListed bounds how many jobs the summary body lists.
const maxListed = 25

// Summary is what a notifier tells the user about one run.
type Summary struct {
	RunID          string
	StartedAt      time.Time
	Duration       time.Duration
	QueriesPlanned int
	QueriesFailed  int
	Candidates     int
	Accepted       int
	Rejected       int
	Duplicates     int
	RejectReasons  map[string]int
	// Jobs is the final deduplicated accepted set.
	Jobs []scraper.Job
}

func (s Summary) Subject() string {
	switch n := len(s.Jobs); n {
	case 0:
		return "Job-Track: no new jobs"
	case 1:
		return "Job-Track: 1 job found"
	default:
		return fmt.Sprintf("Job-Track: %d jobs found", n)
	}
}

// Text renders the plain-text body.
func (s Summary) Text() string {
	var b strings.Builder

	fmt.Fprintf(&b, "Run %s (%s, took %s)\n", s.RunID, s.StartedAt.Format("2006-01-02 15:04"), s.Duration.Round(time.Second))
	fmt.Fprintf(&b, "Queries: %d planned, %d failed\n", s.QueriesPlanned, s.QueriesFailed)
	fmt.Fprintf(&b, "Candidates: %d (accepted %d, rejected %d)\n", s.Candidates, s.Accepted, s.Rejected)
	fmt.Fprintf(&b, "Duplicates dropped: %d, final: %d\n", s.Duplicates, len(s.Jobs))
	if len(s.RejectReasons) > 0 {
		fmt.Fprintf(&b, "Rejections: %s\n", formatReasons(s.RejectReasons))
	}

	if len(s.Jobs) == 0 {
		b.WriteString("\nNo jobs matched this run.\n")
		return b.String()
	}

	b.WriteString("\n")
	for i, j := range s.Jobs {
		if i == maxListed {
			fmt.Fprintf(&b, "... and %d more in the attached CSV\n", len(s.Jobs)-maxListed)
			break
		}
		fmt.Fprintf(&b, "%d. %s\n", i+1, Headline(j))
		if j.Link != "" {
			fmt.Fprintf(&b, "   %s\n", j.Link)
		}
	}
	return b.String()
}

// Headline is the one-line rendering of a job: title @ company (location) [source].
func Headline(j scraper.Job) string {
	title := j.Title
	if title == "" {
		title = "Untitled"
	}
	out := title
	if j.Company != "" {
		out += " @ " + j.Company
	}
	if j.Location != "" {
		out += " (" + j.Location + ")"
	}
	if j.Source != "" {
		out += " [" + j.Source + "]"
	}
	return out
}

// formatReasons orders counts descending, then by name.
func formatReasons(counts map[string]int) string {
	names := make([]string, 0, len(counts))
	for k := range counts {
		names = append(names, k)
	}
	sort.Slice(names, func(i, j int) bool {
		if counts[names[i]] != counts[names[j]] {
			return counts[names[i]] > counts[names[j]]
		}
		return names[i] < names[j]
	})
	parts := make([]string, len(names))
	for i, n := range names {
		parts[i] = fmt.Sprintf("%s %d", n, counts[n])
	}
	return strings.Join(parts, ", ")
}
