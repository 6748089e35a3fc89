// Package registry turns configured source ids into adapters.
package registry

import (
	"fmt"
	"sort"
	"strings"

	"github.com/SURENDHAR-1925/Job-Track/internal/config"
	"github.com/SURENDHAR-1925/Job-Track/internal/scraper"
	"github.com/SURENDHAR-1925/Job-Track/internal/scraper/adzuna"
	"github.com/SURENDHAR-1925/Job-Track/internal/scraper/internshala"
	"github.com/SURENDHAR-1925/Job-Track/internal/scraper/jsearch"
	"github.com/SURENDHAR-1925/Job-Track/internal/scraper/linkedin"
	"github.com/SURENDHAR-1925/Job-Track/internal/scraper/naukri"
)

// factory returns the adapter, or a non-empty skip reason when it cannot
// run (missing credentials).
type factory func(cfg *config.Config) (scraper.Source, string)

var factories = map[string]factory{
	jsearch.Name: func(cfg *config.Config) (scraper.Source, string) {
		if cfg.JSearch.APIKey == "" {
			return nil, "RAPIDAPI_KEY not set"
		}
		return jsearch.NewJSearchScraper(jsearch.Options{
			APIKey:     cfg.JSearch.APIKey,
			Country:    cfg.JSearch.Country,
			DatePosted: cfg.JSearch.DatePosted,
			Limit:      cfg.MaxResultsPerQuery,
		}), ""
	},
	adzuna.Name: func(cfg *config.Config) (scraper.Source, string) {
		if cfg.Adzuna.AppID == "" || cfg.Adzuna.AppKey == "" {
			return nil, "ADZUNA_APP_ID / ADZUNA_APP_KEY not set"
		}
		return adzuna.NewAdzunaScraper(adzuna.Options{
			AppID:   cfg.Adzuna.AppID,
			AppKey:  cfg.Adzuna.AppKey,
			Country: cfg.Adzuna.Country,
			Limit:   cfg.MaxResultsPerQuery,
		}), ""
	},
	linkedin.Name: func(cfg *config.Config) (scraper.Source, string) {
		return linkedin.NewLinkedInScraper(linkedin.Options{Limit: cfg.MaxResultsPerQuery}), ""
	},
	internshala.Name: func(cfg *config.Config) (scraper.Source, string) {
		return internshala.NewInternshalaScraper(internshala.Options{Limit: cfg.MaxResultsPerQuery}), ""
	},
	naukri.Name: func(cfg *config.Config) (scraper.Source, string) {
		return naukri.NewNaukriScraper(naukri.Options{Limit: cfg.MaxResultsPerQuery}), ""
	},
}

// Known lists every supported source id.
func Known() []string {
	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Build returns the adapters for cfg.Sources in configured order.
// Sources lacking credentials are reported in skipped (id -> reason);
// an unknown id is a configuration error.
func Build(cfg *config.Config) (sources []scraper.Source, skipped map[string]string, err error) {
	skipped = make(map[string]string)
	seen := make(map[string]bool)
	for _, raw := range cfg.Sources {
		name := strings.ToLower(strings.TrimSpace(raw))
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true

		f, ok := factories[name]
		if !ok {
			return nil, nil, fmt.Errorf("%w: unknown source %q (known: %s)", config.ErrInvalid, raw, strings.Join(Known(), ", "))
		}
		src, reason := f(cfg)
		if reason != "" {
			skipped[name] = reason
			continue
		}
		sources = append(sources, src)
	}
	return sources, skipped, nil
}
