package main

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/SURENDHAR-1925/Job-Track/internal/archive"
	"github.com/SURENDHAR-1925/Job-Track/internal/browser"
	"github.com/SURENDHAR-1925/Job-Track/internal/config"
	"github.com/SURENDHAR-1925/Job-Track/internal/dedup"
	"github.com/SURENDHAR-1925/Job-Track/internal/filter"
	"github.com/SURENDHAR-1925/Job-Track/internal/metrics"
	"github.com/SURENDHAR-1925/Job-Track/internal/notify"
	"github.com/SURENDHAR-1925/Job-Track/internal/pipeline"
	"github.com/SURENDHAR-1925/Job-Track/internal/report"
	"github.com/SURENDHAR-1925/Job-Track/internal/scraper"
	"github.com/SURENDHAR-1925/Job-Track/internal/scraper/registry"
	"github.com/SURENDHAR-1925/Job-Track/internal/transport"
)

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"

// app owns the long-lived collaborators shared by every run.
type app struct {
	cfg      *config.Config
	log      *zap.Logger
	pipeline *pipeline.Pipeline
	metrics  *metrics.Recorder
	renderer *browser.Renderer
}

func newApp(cfg *config.Config, log *zap.Logger, withNotify bool) (*app, error) {
	a := &app{cfg: cfg, log: log, metrics: metrics.NewRecorder()}

	sources, skipped, err := registry.Build(cfg)
	if err != nil {
		return nil, err
	}
	for _, name := range sortedKeys(skipped) {
		log.Warn("⚠️ source skipped", zap.String("source", name), zap.String("reason", skipped[name]))
	}

	mux, renderer := buildTransport(cfg, sources, log)
	a.renderer = renderer
	sources = usable(sources, mux, log)
	if len(sources) == 0 {
		a.Close()
		return nil, fmt.Errorf("%w: no usable sources (configured: %v)", config.ErrInvalid, cfg.Sources)
	}

	policy, err := buildPolicy(cfg)
	if err != nil {
		a.Close()
		return nil, err
	}
	fallback, err := dedup.ParseFallbackMode(cfg.DedupFallback)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("%w: %v", config.ErrInvalid, err)
	}

	var notifier notify.Notifier = notify.Nop{}
	if withNotify {
		notifier = buildNotifier(cfg, log)
	}

	a.pipeline = pipeline.New(pipeline.Deps{
		Sources:  sources,
		Fetcher:  mux,
		Policy:   policy,
		Sink:     report.NewCSVWriter(),
		Notifier: notifier,
		Archive:  archive.New(cfg.Output.DebugDir),
		Metrics:  a.metrics,
		Logger:   log,
	}, pipeline.Options{
		Keywords:           cfg.Keywords,
		Locations:          cfg.Locations,
		MaxResultsPerQuery: cfg.MaxResultsPerQuery,
		RequestTimeout:     time.Duration(cfg.PerRequestTimeoutMs) * time.Millisecond,
		RequestDelay:       time.Duration(cfg.PerRequestDelayMs) * time.Millisecond,
		DedupFallback:      fallback,
		AcceptedPath:       cfg.Output.AcceptedPath,
		RejectedPath:       cfg.Output.RejectedPath,
	})
	return a, nil
}

func (a *app) runOnce(ctx context.Context) error {
	res, err := a.pipeline.Run(ctx)
	if werr := a.metrics.WriteTextfile(a.cfg.Output.MetricsPath); werr != nil {
		a.log.Warn("⚠️ metrics not written", zap.Error(werr))
	}
	if err != nil {
		return err
	}
	a.log.Info("📊 run summary",
		zap.String("run_id", res.RunID),
		zap.Int("queries_failed", res.Stats.QueriesFailed),
		zap.Int("final", res.Stats.Final),
	)
	return nil
}

func (a *app) Close() {
	if a.renderer == nil {
		return
	}
	if err := a.renderer.Close(); err != nil {
		a.log.Warn("⚠️ browser close", zap.Error(err))
	}
}

// buildTransport registers the HTTP fetcher and, when some source renders
// pages, a browser. A browser that fails to start leaves page kinds
// unsupported.
func buildTransport(cfg *config.Config, sources []scraper.Source, log *zap.Logger) (*transport.Mux, *browser.Renderer) {
	mux := transport.NewMux()
	mux.Handle(scraper.KindAPI, transport.NewHTTP(userAgent))
	if !needsBrowser(sources) {
		return mux, nil
	}
	r, err := browser.NewRenderer(browser.Options{
		Headless:   cfg.Browser.Headless == nil || *cfg.Browser.Headless,
		CookiesDir: cfg.Browser.CookiesPath,
		UserAgent:  firstNonEmpty(cfg.Browser.UserAgent, userAgent),
		DebugDir:   cfg.Output.DebugDir,
		Timeout:    time.Duration(cfg.PerRequestTimeoutMs) * time.Millisecond,
		Logger:     log,
	})
	if err != nil {
		log.Warn("⚠️ browser unavailable, page sources disabled", zap.Error(err))
		return mux, nil
	}
	mux.Handle(scraper.KindPage, r)
	return mux, r
}

func buildPolicy(cfg *config.Config) (*filter.Policy, error) {
	mode, err := filter.ParseLocationMode(cfg.LocationMatch)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", config.ErrInvalid, err)
	}
	return filter.NewPolicy(filter.Options{
		AllowedPublishers: cfg.AllowedPublishers,
		DeniedPublishers:  cfg.DeniedPublishers,
		AllowedLocations:  cfg.AllowedLocations,
		LocationMode:      mode,
		ExperiencePhrases: cfg.ExperiencePhrases,
		ExcludeKeywords:   cfg.ExcludeKeywords,
		MaxAgeDays:        cfg.MaxAgeDays,
	}), nil
}

// buildNotifier combines every notifier whose credentials are present.
func buildNotifier(cfg *config.Config, log *zap.Logger) notify.Notifier {
	var ns []notify.Notifier
	if cfg.HasEmail() {
		e, err := notify.NewEmail(notify.EmailOptions{
			Host:     cfg.Email.Host,
			Port:     cfg.Email.Port,
			Username: cfg.Email.Username,
			Password: cfg.Email.Password,
			From:     cfg.Email.From,
			To:       cfg.Email.To,
		})
		if err != nil {
			log.Warn("⚠️ email disabled", zap.Error(err))
		} else {
			ns = append(ns, e)
		}
	} else {
		log.Info("ℹ️ email not configured, skipping")
	}

	if cfg.HasTelegram() {
		tg, err := notify.NewTelegram(notify.TelegramOptions{Token: cfg.Telegram.Token, ChatID: cfg.Telegram.ChatID})
		if err != nil {
			log.Warn("⚠️ telegram disabled", zap.Error(err))
		} else {
			ns = append(ns, tg)
		}
	}
	return notify.Combine(ns...)
}

func needsBrowser(sources []scraper.Source) bool {
	for _, s := range sources {
		if s.Kind() == scraper.KindPage {
			return true
		}
	}
	return false
}

// usable drops sources whose request kind has no transport.
func usable(sources []scraper.Source, mux *transport.Mux, log *zap.Logger) []scraper.Source {
	out := sources[:0:0]
	for _, s := range sources {
		if !mux.Supports(s.Kind()) {
			log.Warn("⚠️ source disabled, no transport", zap.String("source", s.Name()), zap.Stringer("kind", s.Kind()))
			continue
		}
		out = append(out, s)
	}
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
