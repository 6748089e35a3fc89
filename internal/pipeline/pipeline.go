// Package pipeline runs one fetch, filter, dedup and report cycle.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/SURENDHAR-1925/Job-Track/internal/dedup"
	"github.com/SURENDHAR-1925/Job-Track/internal/filter"
	"github.com/SURENDHAR-1925/Job-Track/internal/logger"
	"github.com/SURENDHAR-1925/Job-Track/internal/metrics"
	"github.com/SURENDHAR-1925/Job-Track/internal/notify"
	"github.com/SURENDHAR-1925/Job-Track/internal/planner"
	"github.com/SURENDHAR-1925/Job-Track/internal/report"
	"github.com/SURENDHAR-1925/Job-Track/internal/scraper"
)

// Failure kinds recorded per query.
const (
	FailTransport = metrics.StatusTransport
	FailMalformed = metrics.StatusMalformed
	FailRequest   = metrics.StatusRequest
)

// Fetcher performs one upstream call.
type Fetcher interface {
	Fetch(ctx context.Context, req scraper.Request) (*scraper.RawResponse, error)
}

// Sink persists the result sets.
type Sink interface {
	WriteAccepted(path string, jobs []scraper.Job) error
	WriteRejected(path string, decisions []filter.Decision) error
}

// Archiver keeps a copy of raw responses.
type Archiver interface {
	Save(raw *scraper.RawResponse) (string, error)
}

// Deps are the collaborators of a run. Notifier, Archive, Metrics and
// Logger are optional.
type Deps struct {
	Sources  []scraper.Source
	Fetcher  Fetcher
	Policy   *filter.Policy
	Sink     Sink
	Notifier notify.Notifier
	Archive  Archiver
	Metrics  *metrics.Recorder
	Logger   *zap.Logger
}

type Options struct {
	Keywords           []string
	Locations          []string
	MaxResultsPerQuery int
	RequestTimeout     time.Duration
	// RequestDelay spaces consecutive fetches; the first is immediate.
	RequestDelay  time.Duration
	DedupFallback dedup.FallbackMode
	AcceptedPath  string
	// RejectedPath is optional; empty skips the rejected CSV.
	RejectedPath string
}

// QueryFailure records a query that contributed no jobs.
type QueryFailure struct {
	Query scraper.Query
	Kind  string
	Err   string
}

type Stats struct {
	QueriesPlanned int
	QueriesFailed  int
	Candidates     int
	Accepted       int
	Rejected       int
	// RejectReasons counts failed criteria across rejected jobs.
	RejectReasons map[string]int
	Duplicates    int
	Final         int
	Failures      []QueryFailure
}

type Result struct {
	RunID string
	// Accepted is the final deduplicated set, in processing order.
	Accepted     []scraper.Job
	Rejected     []filter.Decision
	Stats        Stats
	AcceptedPath string
	RejectedPath string
	StartedAt    time.Time
	Duration     time.Duration
}

type Pipeline struct {
	deps    Deps
	opts    Options
	sources map[string]scraper.Source
	order   []string
	log     *zap.Logger
	now     func() time.Time
}

func New(deps Deps, opts Options) *Pipeline {
	if deps.Notifier == nil {
		deps.Notifier = notify.Nop{}
	}
	if opts.DedupFallback == "" {
		opts.DedupFallback = dedup.TitleCompanySource
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 30 * time.Second
	}

	p := &Pipeline{
		deps:    deps,
		opts:    opts,
		sources: make(map[string]scraper.Source, len(deps.Sources)),
		log:     logger.OrNop(deps.Logger).Named("pipeline"),
		now:     time.Now,
	}
	for _, s := range deps.Sources {
		if _, dup := p.sources[s.Name()]; dup {
			continue
		}
		p.sources[s.Name()] = s
		p.order = append(p.order, s.Name())
	}
	return p
}

// Run executes one cycle. Query-level failures are recorded in Stats and
// never returned. The error is non-nil only when a CSV cannot be written or
// ctx ends mid-run; in the latter case the jobs collected so far are still
// written and the partial result is returned with the error.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	if p.deps.Fetcher == nil || p.deps.Policy == nil || p.deps.Sink == nil {
		return nil, errors.New("pipeline: fetcher, policy and sink are required")
	}

	res := &Result{
		RunID:        uuid.NewString(),
		StartedAt:    p.now(),
		AcceptedPath: p.opts.AcceptedPath,
		RejectedPath: p.opts.RejectedPath,
	}
	res.Stats.RejectReasons = make(map[string]int)
	log := p.log.With(zap.String("run_id", res.RunID))

	queries := planner.Plan(p.opts.Keywords, p.opts.Locations, p.order)
	res.Stats.QueriesPlanned = len(queries)
	log.Info("🚀 run started", zap.Int("queries", len(queries)), zap.Strings("sources", p.order))

	candidates, runErr := p.collect(ctx, log, queries, &res.Stats)

	accepted, rejected := p.deps.Policy.Partition(candidates)
	res.Stats.Accepted = len(accepted)
	res.Stats.Rejected = len(rejected)
	for range accepted {
		p.deps.Metrics.Accepted()
	}
	for _, d := range rejected {
		criteria := make([]string, len(d.Reasons))
		for i, r := range d.Reasons {
			criteria[i] = filter.CriterionOf(r)
			res.Stats.RejectReasons[criteria[i]]++
		}
		p.deps.Metrics.Rejected(criteria)
	}

	final, dropped := dedup.Deduplicate(accepted, p.opts.DedupFallback)
	res.Accepted = final
	res.Rejected = rejected
	res.Stats.Duplicates = dropped
	res.Stats.Final = len(final)
	p.deps.Metrics.Duplicates(dropped)

	log.Info("🔍 classified",
		zap.Int("candidates", res.Stats.Candidates),
		zap.Int("accepted", res.Stats.Accepted),
		zap.Int("rejected", res.Stats.Rejected),
		zap.Int("duplicates", dropped),
		zap.Int("final", len(final)),
	)

	if err := p.write(res); err != nil {
		return res, err
	}
	log.Info("📁 results saved", zap.String("accepted", res.AcceptedPath), zap.String("rejected", res.RejectedPath))

	res.Duration = p.now().Sub(res.StartedAt)
	p.deps.Metrics.Finished(p.now())

	if runErr != nil {
		return res, runErr
	}

	if err := p.deps.Notifier.Send(ctx, p.message(res)); err != nil {
		log.Warn("⚠️ notification failed", zap.String("notifier", p.deps.Notifier.Name()), zap.Error(err))
	} else {
		log.Info("📨 summary sent", zap.String("notifier", p.deps.Notifier.Name()))
	}

	log.Info("🏁 run finished", zap.Duration("took", res.Duration))
	return res, nil
}

// collect fetches every query in order. It stops early only when ctx ends.
func (p *Pipeline) collect(ctx context.Context, log *zap.Logger, queries []scraper.Query, stats *Stats) ([]scraper.Job, error) {
	limit := rate.Inf
	if p.opts.RequestDelay > 0 {
		limit = rate.Every(p.opts.RequestDelay)
	}
	limiter := rate.NewLimiter(limit, 1)

	var candidates []scraper.Job
	for i, q := range queries {
		if err := limiter.Wait(ctx); err != nil {
			log.Warn("⏹ run interrupted", zap.Int("done", i), zap.Int("planned", len(queries)), zap.Error(err))
			return candidates, fmt.Errorf("run interrupted after %d of %d queries: %w", i, len(queries), ctxErr(ctx, err))
		}

		src := p.sources[q.Source]
		start := p.now()
		jobs, kind, err := p.fetchOne(ctx, src, q)
		p.deps.Metrics.Query(q.Source, statusOf(kind), p.now().Sub(start))

		qlog := log.With(zap.String("source", q.Source), zap.String("keyword", q.Keyword), zap.String("location", q.Location))
		if err != nil {
			stats.QueriesFailed++
			stats.Failures = append(stats.Failures, QueryFailure{Query: q, Kind: kind, Err: err.Error()})
			qlog.Warn("❌ query failed", zap.String("kind", kind), zap.Error(err))
			continue
		}
		if len(jobs) == 0 {
			qlog.Info("ℹ️ no results")
		} else {
			qlog.Debug("✅ fetched", zap.Int("jobs", len(jobs)))
		}
		p.deps.Metrics.Candidates(q.Source, len(jobs))
		stats.Candidates += len(jobs)
		candidates = append(candidates, jobs...)
	}
	return candidates, nil
}

// Probe fetches a single query and evaluates every job against the policy
// without writing, deduplicating or notifying.
func (p *Pipeline) Probe(ctx context.Context, q scraper.Query) ([]filter.Decision, error) {
	if p.deps.Fetcher == nil || p.deps.Policy == nil {
		return nil, errors.New("pipeline: fetcher and policy are required")
	}
	q.Source = strings.ToLower(strings.TrimSpace(q.Source))
	jobs, kind, err := p.fetchOne(ctx, p.sources[q.Source], q)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", kind, err)
	}
	out := make([]filter.Decision, 0, len(jobs))
	for _, j := range jobs {
		out = append(out, p.deps.Policy.Evaluate(j))
	}
	return out, nil
}

// fetchOne runs request, fetch, archive and normalize for one query. On
// failure it returns the failure kind.
func (p *Pipeline) fetchOne(ctx context.Context, src scraper.Source, q scraper.Query) ([]scraper.Job, string, error) {
	if src == nil {
		return nil, FailRequest, fmt.Errorf("unknown source %q", q.Source)
	}
	req, err := src.Request(q)
	if err != nil {
		return nil, FailRequest, fmt.Errorf("build request: %w", err)
	}

	fctx, cancel := context.WithTimeout(ctx, p.opts.RequestTimeout)
	raw, err := p.deps.Fetcher.Fetch(fctx, req)
	cancel()

	if raw != nil {
		raw.Query = q
		p.archive(raw)
	}
	if err != nil {
		if errors.Is(err, scraper.ErrMalformed) {
			return nil, FailMalformed, err
		}
		return nil, FailTransport, err
	}

	jobs, err := normalize(src, raw)
	if err != nil {
		return nil, FailMalformed, err
	}
	return scraper.Limit(jobs, p.opts.MaxResultsPerQuery), "", nil
}

func (p *Pipeline) archive(raw *scraper.RawResponse) {
	if p.deps.Archive == nil {
		return
	}
	path, err := p.deps.Archive.Save(raw)
	if err != nil {
		p.log.Warn("⚠️ archive failed", zap.Error(err))
		return
	}
	if path != "" {
		p.log.Debug("saved debug", zap.String("path", path), zap.Int("status", raw.StatusCode))
	}
}

// normalize shields the run from adapter panics.
func normalize(src scraper.Source, raw *scraper.RawResponse) (jobs []scraper.Job, err error) {
	defer func() {
		if r := recover(); r != nil {
			jobs = nil
			err = fmt.Errorf("%w: %s adapter panicked: %v", scraper.ErrMalformed, src.Name(), r)
		}
	}()
	return src.Normalize(raw)
}

func (p *Pipeline) write(res *Result) error {
	if err := p.deps.Sink.WriteAccepted(p.opts.AcceptedPath, res.Accepted); err != nil {
		return fmt.Errorf("write accepted csv: %w", err)
	}
	if p.opts.RejectedPath != "" {
		if err := p.deps.Sink.WriteRejected(p.opts.RejectedPath, res.Rejected); err != nil {
			return fmt.Errorf("write rejected csv: %w", err)
		}
	}
	return nil
}

// Summary converts a result into the report summary.
func (res *Result) Summary() report.Summary {
	return report.Summary{
		RunID:          res.RunID,
		StartedAt:      res.StartedAt,
		Duration:       res.Duration,
		QueriesPlanned: res.Stats.QueriesPlanned,
		QueriesFailed:  res.Stats.QueriesFailed,
		Candidates:     res.Stats.Candidates,
		Accepted:       res.Stats.Accepted,
		Rejected:       res.Stats.Rejected,
		Duplicates:     res.Stats.Duplicates,
		RejectReasons:  res.Stats.RejectReasons,
		Jobs:           res.Accepted,
	}
}

func (p *Pipeline) message(res *Result) notify.Message {
	s := res.Summary()
	attachments := []string{res.AcceptedPath}
	if res.RejectedPath != "" {
		attachments = append(attachments, res.RejectedPath)
	}
	return notify.Message{Subject: s.Subject(), Body: s.Text(), Attachments: attachments}
}

func statusOf(kind string) string {
	if kind == "" {
		return metrics.StatusOK
	}
	return kind
}

// ctxErr prefers the context's own error over the limiter's wrapper.
func ctxErr(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}
