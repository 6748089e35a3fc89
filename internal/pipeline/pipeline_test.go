package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SURENDHAR-1925/Job-Track/internal/dedup"
	"github.com/SURENDHAR-1925/Job-Track/internal/filter"
	"github.com/SURENDHAR-1925/Job-Track/internal/metrics"
	"github.com/SURENDHAR-1925/Job-Track/internal/notify"
	"github.com/SURENDHAR-1925/Job-Track/internal/report"
	"github.com/SURENDHAR-1925/Job-Track/internal/scraper"
)

// fakeSource decodes a JSON array of jobs. Body "panic" panics and any
// other non-JSON body is malformed.
type fakeSource struct{ name string }

func (s fakeSource) Name() string       { return s.name }
func (s fakeSource) Kind() scraper.Kind { return scraper.KindAPI }

func (s fakeSource) Request(q scraper.Query) (scraper.Request, error) {
	if q.Keyword == "badreq" {
		return scraper.Request{}, errors.New("cannot build")
	}
	return scraper.Request{Kind: scraper.KindAPI, URL: fmt.Sprintf("fake://%s/%s/%s", s.name, q.Keyword, q.Location)}, nil
}

func (s fakeSource) Normalize(raw *scraper.RawResponse) ([]scraper.Job, error) {
	if string(raw.Body) == "panic" {
		panic("boom")
	}
	var jobs []scraper.Job
	if err := json.Unmarshal(raw.Body, &jobs); err != nil {
		return nil, fmt.Errorf("%w: %v", scraper.ErrMalformed, err)
	}
	for i := range jobs {
		jobs[i].QueryKeyword = raw.Query.Keyword
		jobs[i].QueryLocation = raw.Query.Location
	}
	return jobs, nil
}

type reply struct {
	body string
	err  error
}

type fakeFetcher struct {
	replies map[string]reply
	calls   []string
	onFetch func()
}

func (f *fakeFetcher) Fetch(_ context.Context, req scraper.Request) (*scraper.RawResponse, error) {
	f.calls = append(f.calls, req.URL)
	if f.onFetch != nil {
		f.onFetch()
	}
	r, ok := f.replies[req.URL]
	if !ok {
		return &scraper.RawResponse{URL: req.URL, StatusCode: 200, Body: []byte("[]")}, nil
	}
	if r.err != nil {
		return nil, r.err
	}
	return &scraper.RawResponse{URL: req.URL, StatusCode: 200, Body: []byte(r.body)}, nil
}

type fakeSink struct {
	accepted []scraper.Job
	rejected []filter.Decision
	err      error
	writes   int
}

func (s *fakeSink) WriteAccepted(_ string, jobs []scraper.Job) error {
	s.writes++
	s.accepted = jobs
	return s.err
}

func (s *fakeSink) WriteRejected(_ string, d []filter.Decision) error {
	s.rejected = d
	return s.err
}

type fakeNotifier struct {
	msgs []notify.Message
	err  error
}

func (n *fakeNotifier) Name() string { return "fake" }

func (n *fakeNotifier) Send(_ context.Context, msg notify.Message) error {
	n.msgs = append(n.msgs, msg)
	return n.err
}

type fakeArchive struct{ saved []*scraper.RawResponse }

func (a *fakeArchive) Save(raw *scraper.RawResponse) (string, error) {
	a.saved = append(a.saved, raw)
	return "", nil
}

func jobsJSON(t *testing.T, jobs ...scraper.Job) string {
	t.Helper()
	data, err := json.Marshal(jobs)
	require.NoError(t, err)
	return string(data)
}

func testPolicy() *filter.Policy {
	return filter.NewPolicy(filter.Options{
		AllowedPublishers: []string{"linkedin", "indeed"},
		AllowedLocations:  []string{"chennai"},
		ExperiencePhrases: []string{"fresher"},
	})
}

func TestRun_EndToEnd(t *testing.T) {
	good := scraper.Job{Title: "Fresher Software Engineer", Company: "Acme", Location: "Chennai, India", Link: "https://linkedin.com/jobs/1", Source: "LinkedIn"}
	bad := scraper.Job{Title: "Senior Engineer", Location: "Mumbai", Source: "RandomBoard"}
	shared := scraper.Job{Title: "Fresher QA", Location: "Chennai", Link: "https://indeed.com/job/42", Source: "Indeed"}

	fetcher := &fakeFetcher{replies: map[string]reply{
		"fake://api/qa/chennai":     {body: jobsJSON(t, good, bad, shared)},
		"fake://api/tester/chennai": {body: jobsJSON(t, shared)},
	}}
	sink := &fakeSink{}
	notifier := &fakeNotifier{}
	archive := &fakeArchive{}
	rec := metrics.NewRecorder()

	p := New(Deps{
		Sources:  []scraper.Source{fakeSource{name: "api"}},
		Fetcher:  fetcher,
		Policy:   testPolicy(),
		Sink:     sink,
		Notifier: notifier,
		Archive:  archive,
		Metrics:  rec,
	}, Options{
		Keywords:     []string{"qa", "tester"},
		Locations:    []string{"chennai"},
		AcceptedPath: "accepted.csv",
		RejectedPath: "rejected.csv",
	})

	res, err := p.Run(context.Background())
	require.NoError(t, err)

	assert.NotEmpty(t, res.RunID)
	assert.Equal(t, []string{"fake://api/qa/chennai", "fake://api/tester/chennai"}, fetcher.calls)
	assert.Equal(t, 2, res.Stats.QueriesPlanned)
	assert.Equal(t, 4, res.Stats.Candidates)
	assert.Equal(t, 3, res.Stats.Accepted)
	assert.Equal(t, 1, res.Stats.Rejected)
	assert.Equal(t, res.Stats.Candidates, res.Stats.Accepted+res.Stats.Rejected)
	assert.Equal(t, 1, res.Stats.Duplicates)
	assert.Equal(t, 2, res.Stats.Final)

	// the shared link survives once, from the first query
	require.Len(t, res.Accepted, 2)
	assert.Equal(t, "https://indeed.com/job/42", res.Accepted[1].Link)
	assert.Equal(t, "qa", res.Accepted[1].QueryKeyword)

	require.Len(t, res.Rejected, 1)
	assert.Equal(t, []string{"source: RandomBoard", "location: Mumbai", "experience: NONE"}, res.Rejected[0].Reasons)
	assert.Equal(t, map[string]int{"source": 1, "location": 1, "experience": 1}, res.Stats.RejectReasons)

	assert.Equal(t, res.Accepted, sink.accepted)
	assert.Equal(t, res.Rejected, sink.rejected)

	require.Len(t, notifier.msgs, 1)
	assert.Equal(t, "Job-Track: 2 jobs found", notifier.msgs[0].Subject)
	assert.Equal(t, []string{"accepted.csv", "rejected.csv"}, notifier.msgs[0].Attachments)

	require.Len(t, archive.saved, 2)
	assert.Equal(t, "qa", archive.saved[0].Query.Keyword)

	expected := `
# HELP jobtrack_duplicates_total Accepted jobs dropped as duplicates
# TYPE jobtrack_duplicates_total counter
jobtrack_duplicates_total 1
`
	assert.NoError(t, testutil.GatherAndCompare(rec.Registry(), strings.NewReader(expected), "jobtrack_duplicates_total"))
}

func TestRun_FailureIsolation(t *testing.T) {
	good := scraper.Job{Title: "Fresher dev", Location: "Chennai", Link: "https://linkedin.com/jobs/9", Source: "LinkedIn"}
	fetcher := &fakeFetcher{replies: map[string]reply{
		"fake://api/a/chennai": {err: fmt.Errorf("%w: status 500", scraper.ErrTransport)},
		"fake://api/b/chennai": {body: "<html>not json"},
		"fake://api/c/chennai": {body: "panic"},
		"fake://api/d/chennai": {body: jobsJSON(t, good)},
	}}
	rec := metrics.NewRecorder()

	p := New(Deps{
		Sources: []scraper.Source{fakeSource{name: "api"}},
		Fetcher: fetcher,
		Policy:  testPolicy(),
		Sink:    &fakeSink{},
		Metrics: rec,
	}, Options{Keywords: []string{"a", "b", "c", "badreq", "d"}, Locations: []string{"chennai"}, AcceptedPath: "a.csv"})

	res, err := p.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 5, res.Stats.QueriesPlanned)
	assert.Equal(t, 4, res.Stats.QueriesFailed)
	require.Len(t, res.Stats.Failures, 4)
	kinds := map[string]string{}
	for _, f := range res.Stats.Failures {
		kinds[f.Query.Keyword] = f.Kind
	}
	assert.Equal(t, map[string]string{"a": FailTransport, "b": FailMalformed, "c": FailMalformed, "badreq": FailRequest}, kinds)
	assert.Contains(t, res.Stats.Failures[2].Err, "panicked")

	require.Len(t, res.Accepted, 1)
	assert.Equal(t, good.Link, res.Accepted[0].Link)
	assert.Equal(t, 1, res.Stats.Candidates)
}

func TestRun_ZeroResultsStillWritesAndNotifies(t *testing.T) {
	dir := t.TempDir()
	accepted := filepath.Join(dir, "accepted_jobs.csv")
	notifier := &fakeNotifier{}

	p := New(Deps{
		Sources:  []scraper.Source{fakeSource{name: "api"}},
		Fetcher:  &fakeFetcher{},
		Policy:   testPolicy(),
		Sink:     report.NewCSVWriter(),
		Notifier: notifier,
	}, Options{Keywords: []string{"qa"}, AcceptedPath: accepted})

	res, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, res.Stats.Candidates)
	assert.Empty(t, res.Accepted)

	data, err := os.ReadFile(accepted)
	require.NoError(t, err)
	assert.Equal(t, "title,company,location,snippet,link,source\n", string(data))

	require.Len(t, notifier.msgs, 1)
	assert.Equal(t, "Job-Track: no new jobs", notifier.msgs[0].Subject)
	assert.Equal(t, []string{accepted}, notifier.msgs[0].Attachments)
}

func TestRun_NotifyFailureIsNotAnError(t *testing.T) {
	p := New(Deps{
		Sources:  []scraper.Source{fakeSource{name: "api"}},
		Fetcher:  &fakeFetcher{},
		Policy:   testPolicy(),
		Sink:     &fakeSink{},
		Notifier: &fakeNotifier{err: errors.New("smtp: 535 auth failed")},
	}, Options{Keywords: []string{"qa"}, AcceptedPath: "a.csv"})

	_, err := p.Run(context.Background())
	assert.NoError(t, err)
}

func TestRun_CSVFailureIsFatal(t *testing.T) {
	notifier := &fakeNotifier{}
	p := New(Deps{
		Sources:  []scraper.Source{fakeSource{name: "api"}},
		Fetcher:  &fakeFetcher{},
		Policy:   testPolicy(),
		Sink:     &fakeSink{err: errors.New("disk full")},
		Notifier: notifier,
	}, Options{Keywords: []string{"qa"}, AcceptedPath: "a.csv"})

	res, err := p.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.NotNil(t, res)
	assert.Empty(t, notifier.msgs)
}

func TestRun_PlanOrderAcrossSources(t *testing.T) {
	fetcher := &fakeFetcher{}
	p := New(Deps{
		Sources: []scraper.Source{fakeSource{name: "one"}, fakeSource{name: "two"}, fakeSource{name: "one"}},
		Fetcher: fetcher,
		Policy:  testPolicy(),
		Sink:    &fakeSink{},
	}, Options{Keywords: []string{"k1", "k2"}, Locations: []string{"x", "y"}, AcceptedPath: "a.csv"})

	_, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{
		"fake://one/k1/x", "fake://two/k1/x",
		"fake://one/k1/y", "fake://two/k1/y",
		"fake://one/k2/x", "fake://two/k2/x",
		"fake://one/k2/y", "fake://two/k2/y",
	}, fetcher.calls)
}

func TestRun_Pacing(t *testing.T) {
	var at []time.Time
	fetcher := &fakeFetcher{onFetch: func() { at = append(at, time.Now()) }}
	p := New(Deps{
		Sources: []scraper.Source{fakeSource{name: "api"}},
		Fetcher: fetcher,
		Policy:  testPolicy(),
		Sink:    &fakeSink{},
	}, Options{Keywords: []string{"a", "b", "c"}, RequestDelay: 40 * time.Millisecond, AcceptedPath: "a.csv"})

	start := time.Now()
	_, err := p.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, at, 3)
	assert.Less(t, at[0].Sub(start), 30*time.Millisecond, "first request is immediate")
	assert.GreaterOrEqual(t, at[2].Sub(at[0]), 70*time.Millisecond)
}

func TestRun_CancelledContextKeepsPartialResults(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	good := scraper.Job{Title: "Fresher dev", Location: "Chennai", Link: "https://linkedin.com/jobs/1", Source: "LinkedIn"}
	fetcher := &fakeFetcher{
		replies: map[string]reply{"fake://api/a/": {body: jobsJSON(t, good)}},
		onFetch: cancel,
	}
	sink := &fakeSink{}
	notifier := &fakeNotifier{}
	p := New(Deps{
		Sources:  []scraper.Source{fakeSource{name: "api"}},
		Fetcher:  fetcher,
		Policy:   testPolicy(),
		Sink:     sink,
		Notifier: notifier,
	}, Options{Keywords: []string{"a", "b"}, AcceptedPath: "a.csv"})

	res, err := p.Run(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Len(t, fetcher.calls, 1)
	assert.Len(t, res.Accepted, 1)
	assert.Equal(t, 1, sink.writes)
	assert.Empty(t, notifier.msgs)
}

func TestRun_SourceQualifiedFallback(t *testing.T) {
	unlinked := scraper.Job{Title: "Fresher Intern", Company: "Acme", Location: "Chennai", Source: "LinkedIn"}
	other := unlinked
	other.Source = "Indeed"
	fetcher := &fakeFetcher{replies: map[string]reply{"fake://api/a/": {body: jobsJSON(t, unlinked, other, unlinked)}}}

	run := func(mode dedup.FallbackMode) *Result {
		p := New(Deps{
			Sources: []scraper.Source{fakeSource{name: "api"}},
			Fetcher: fetcher,
			Policy:  testPolicy(),
			Sink:    &fakeSink{},
		}, Options{Keywords: []string{"a"}, DedupFallback: mode, AcceptedPath: "a.csv"})
		res, err := p.Run(context.Background())
		require.NoError(t, err)
		return res
	}

	assert.Len(t, run(dedup.TitleCompanySource).Accepted, 2)
	assert.Len(t, run(dedup.TitleCompany).Accepted, 1)
}

func TestRun_MissingDeps(t *testing.T) {
	_, err := New(Deps{}, Options{}).Run(context.Background())
	assert.Error(t, err)
}

func TestRun_TruncatesPerQuery(t *testing.T) {
	var many []scraper.Job
	for i := 0; i < 5; i++ {
		many = append(many, scraper.Job{Title: "Fresher", Location: "Chennai", Source: "LinkedIn", Link: fmt.Sprintf("https://linkedin.com/%d", i)})
	}
	fetcher := &fakeFetcher{replies: map[string]reply{"fake://api/a/": {body: jobsJSON(t, many...)}}}
	p := New(Deps{
		Sources: []scraper.Source{fakeSource{name: "api"}},
		Fetcher: fetcher,
		Policy:  testPolicy(),
		Sink:    &fakeSink{},
	}, Options{Keywords: []string{"a"}, MaxResultsPerQuery: 3, AcceptedPath: "a.csv"})

	res, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, res.Stats.Candidates)
}

func TestProbe(t *testing.T) {
	good := scraper.Job{Title: "Fresher Developer", Location: "Chennai", Link: "https://linkedin.com/jobs/7", Source: "LinkedIn"}
	bad := scraper.Job{Title: "Lead Developer", Location: "Chennai", Source: "LinkedIn"}
	fetcher := &fakeFetcher{replies: map[string]reply{
		"fake://api/dev/chennai": {body: jobsJSON(t, good, bad)},
		"fake://api/dev/pune":    {err: fmt.Errorf("%w: connection refused", scraper.ErrTransport)},
	}}
	sink := &fakeSink{}
	p := New(Deps{Sources: []scraper.Source{fakeSource{name: "api"}}, Fetcher: fetcher, Policy: testPolicy(), Sink: sink}, Options{})

	got, err := p.Probe(context.Background(), scraper.Query{Keyword: "dev", Location: "chennai", Source: "api"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.True(t, got[0].Accepted)
	assert.False(t, got[1].Accepted)
	assert.Equal(t, []string{"experience: NONE"}, got[1].Reasons)
	assert.Zero(t, sink.writes)

	_, err = p.Probe(context.Background(), scraper.Query{Keyword: "dev", Location: "pune", Source: "api"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, scraper.ErrTransport))
	assert.Contains(t, err.Error(), FailTransport)

	got, err = p.Probe(context.Background(), scraper.Query{Keyword: "dev", Location: "chennai", Source: " API "})
	require.NoError(t, err)
	assert.Len(t, got, 2)

	_, err = p.Probe(context.Background(), scraper.Query{Keyword: "dev", Location: "chennai", Source: "missing"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), FailRequest)
}
