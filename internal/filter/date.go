package filter

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// futureSkew tolerates posting dates slightly ahead of the local clock.
const futureSkew = 2 * 24 * time.Hour

var (
	isoDateRegex  = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}`)
	yearOnlyRegex = regexp.MustCompile(`\b(20\d{2})\b`)
	relativeRegex = regexp.MustCompile(`(\d+)\+?\s*(hour|hr|day|week|month)s?\b`)
)

// IsRecent reports whether a posting date string lies within maxAge of now.
// Unknown or unparseable dates are treated as recent.
func IsRecent(dateStr string, now time.Time, maxAge time.Duration) bool {
	dateStr = strings.TrimSpace(dateStr)
	lower := strings.ToLower(dateStr)
	switch lower {
	case "", "n/a", "recent", "today", "just now", "just posted", "yesterday":
		return true
	}

	// ISO "2026-01-27" or RFC 3339
	if isoDateRegex.MatchString(dateStr) {
		if jobDate, err := time.Parse("2006-01-02", dateStr[:10]); err == nil {
			return within(now, jobDate, maxAge)
		}
	}

	// "3 days ago", "30+ Days Ago", "2 weeks ago"
	if m := relativeRegex.FindStringSubmatch(lower); m != nil {
		n, _ := strconv.Atoi(m[1])
		unit := 24 * time.Hour
		switch m[2] {
		case "hour", "hr":
			unit = time.Hour
		case "week":
			unit = 7 * 24 * time.Hour
		case "month":
			unit = 30 * 24 * time.Hour
		}
		return within(now, now.Add(-time.Duration(n)*unit), maxAge)
	}

	// dd/mm/yyyy
	if strings.Contains(dateStr, "/") {
		parts := strings.Split(dateStr, "/")
		if len(parts) >= 3 {
			day, _ := strconv.Atoi(parts[0])
			month, _ := strconv.Atoi(parts[1])
			year, _ := strconv.Atoi(parts[2])
			jobDate := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
			return within(now, jobDate, maxAge)
		}
	}

	// year only
	if m := yearOnlyRegex.FindStringSubmatch(dateStr); m != nil {
		year, _ := strconv.Atoi(m[1])
		return year == now.Year() || year == now.Year()-1
	}

	return true
}

func within(now, jobDate time.Time, maxAge time.Duration) bool {
	diff := now.Sub(jobDate)
	if diff > maxAge {
		return false
	}
	if diff < -futureSkew {
		return false
	}
	return true
}
