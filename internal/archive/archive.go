// Package archive dumps raw upstream payloads for offline inspection.
package archive

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/SURENDHAR-1925/Job-Track/internal/scraper"
)

// Record is the on-disk shape of one archived response. Raw holds the
// decoded JSON body, or {"text": body} when the body is not JSON.
type Record struct {
	StatusCode int             `json:"status_code"`
	URL        string          `json:"url"`
	Source     string          `json:"source"`
	Keyword    string          `json:"keyword"`
	Location   string          `json:"location"`
	FetchedAt  string          `json:"fetched_at"`
	Raw        json.RawMessage `json:"raw"`
}

type Archive struct {
	dir string
}

// New returns an archive writing into dir. An empty dir disables it.
func New(dir string) *Archive {
	return &Archive{dir: dir}
}

func (a *Archive) Enabled() bool {
	return a != nil && a.dir != ""
}

// Save writes raw to <dir>/<source>_<keyword>_<location>_<unix>.json and
// returns the path.
func (a *Archive) Save(raw *scraper.RawResponse) (string, error) {
	if !a.Enabled() || raw == nil {
		return "", nil
	}
	if err := os.MkdirAll(a.dir, 0o755); err != nil {
		return "", fmt.Errorf("create archive dir: %w", err)
	}

	body := json.RawMessage(raw.Body)
	if !json.Valid(raw.Body) {
		text, err := json.Marshal(map[string]string{"text": string(raw.Body)})
		if err != nil {
			return "", fmt.Errorf("encode body: %w", err)
		}
		body = text
	}

	rec := Record{
		StatusCode: raw.StatusCode,
		URL:        raw.URL,
		Source:     raw.Query.Source,
		Keyword:    raw.Query.Keyword,
		Location:   raw.Query.Location,
		FetchedAt:  raw.FetchedAt.UTC().Format("2006-01-02T15:04:05Z"),
		Raw:        body,
	}
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode archive record: %w", err)
	}

	name := fmt.Sprintf("%s_%s_%s_%d.json",
		part(raw.Query.Source), part(raw.Query.Keyword), part(raw.Query.Location), raw.FetchedAt.Unix())
	path := filepath.Join(a.dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write archive: %w", err)
	}
	return path, nil
}

func part(s string) string {
	s = strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			return r
		}
		return '_'
	}, scraper.Slugify(s))
	if s == "" {
		return "any"
	}
	return s
}
