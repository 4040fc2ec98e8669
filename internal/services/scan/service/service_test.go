package service

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	perr "llmo/internal/platform/errors"
	"llmo/internal/platform/testkit"
	"llmo/internal/services/cache/memory"
	cachesvc "llmo/internal/services/cache/service"
	"llmo/internal/services/providers"
	"llmo/internal/services/scan/domain"
	"llmo/internal/services/webaudit"
)

func testConfig() Config {
	return Config{
		CallTimeout: 200 * time.Millisecond,
		Retries:     3,
		BackoffBase: time.Millisecond,
		Workers:     2,
	}
}

func testCache() *cachesvc.Service {
	return cachesvc.New(memory.New(), cachesvc.Config{LLMTTL: time.Hour, AuditTTL: time.Hour})
}

func visibilityRequest() domain.ScanRequest {
	return domain.ScanRequest{
		BrandName:   "Acme",
		Domain:      "acme.example",
		Keywords:    []string{"project management"},
		Competitors: []string{"Globex"},
		ScanType:    domain.TypeVisibility,
	}
}

// recorder captures progress events in order
type recorder struct {
	mu     sync.Mutex
	events []domain.ProgressEvent
}

func (r *recorder) OnProgress(ev domain.ProgressEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recorder) snapshot() []domain.ProgressEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.ProgressEvent, len(r.events))
	copy(out, r.events)
	return out
}

type fakeFetcher struct {
	mu    sync.Mutex
	calls int
	page  webaudit.Page
	err   error
}

func (f *fakeFetcher) Fetch(context.Context, string) (webaudit.Page, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return webaudit.Page{}, f.err
	}
	return f.page, nil
}

func (f *fakeFetcher) fetchCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// blockingQuerier parks every Query until released, so tests can cancel a
// job mid-flight
type blockingQuerier struct {
	started chan struct{}
	release chan struct{}
	once    sync.Once
}

func newBlockingQuerier() *blockingQuerier {
	return &blockingQuerier{started: make(chan struct{}), release: make(chan struct{})}
}

func (b *blockingQuerier) Name() string  { return "blocking" }
func (b *blockingQuerier) Model() string { return "blocking-fake" }

func (b *blockingQuerier) Query(ctx context.Context, _, _ string) (string, error) {
	b.once.Do(func() { close(b.started) })
	select {
	case <-b.release:
		return "Acme is fine.", nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func TestNewRequiresCache(t *testing.T) {
	testkit.MustPanic(t, "New without cache", func() { New(Deps{}, testConfig()) })
}

func TestExecuteVisibilityCompletes(t *testing.T) {
	answer := "Acme is a great choice for project management. Many teams prefer Acme over Globex."
	qs := []providers.Querier{
		providers.NewFake("openai", answer),
		providers.NewFake("anthropic", "Acme works well. Globex is a solid alternative."),
	}
	rec := &recorder{}
	o := New(Deps{Cache: testCache(), Providers: qs, Observer: rec}, testConfig())

	ctx := context.Background()
	job, err := o.Submit(ctx, visibilityRequest())
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if job.Status != domain.StatusPending {
		t.Fatalf("status = %s, want pending", job.Status)
	}

	if err := o.Execute(ctx, job.ID); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	got, err := o.Job(ctx, job.ID)
	if err != nil {
		t.Fatalf("Job: %v", err)
	}
	if got.Status != domain.StatusCompleted {
		t.Fatalf("status = %s (%s), want completed", got.Status, got.Error)
	}
	if got.Progress != 100 {
		t.Fatalf("progress = %d, want 100", got.Progress)
	}

	res, err := o.Result(ctx, job.ID)
	if err != nil {
		t.Fatalf("Result: %v", err)
	}
	if res.Visibility == nil {
		t.Fatal("visibility result missing")
	}
	if res.Visibility.Composite <= 0 {
		t.Fatalf("composite = %v, want > 0", res.Visibility.Composite)
	}
	if len(res.Visibility.Providers) != 2 {
		t.Fatalf("provider scores = %d, want 2", len(res.Visibility.Providers))
	}
	for _, a := range res.Answers {
		if a.Cached {
			t.Fatalf("first run answer for %s reported cached", a.Provider)
		}
	}

	events := rec.snapshot()
	if len(events) == 0 {
		t.Fatal("no progress events")
	}
	prev := -1
	for _, ev := range events {
		if ev.Progress < prev {
			t.Fatalf("progress went backwards: %d after %d", ev.Progress, prev)
		}
		prev = ev.Progress
	}
	if last := events[len(events)-1]; last.Progress != 100 || last.Status != domain.StatusCompleted {
		t.Fatalf("final event = %+v", last)
	}
}

func TestExecuteVisibilitySecondRunHitsCache(t *testing.T) {
	fake := providers.NewFake("openai", "Acme leads the pack.")
	o := New(Deps{Cache: testCache(), Providers: []providers.Querier{fake}}, testConfig())
	ctx := context.Background()

	first, err := o.Submit(ctx, visibilityRequest())
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if err := o.Execute(ctx, first.ID); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if fake.Calls() != 1 {
		t.Fatalf("calls after first run = %d, want 1", fake.Calls())
	}

	second, err := o.Submit(ctx, visibilityRequest())
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if err := o.Execute(ctx, second.ID); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if fake.Calls() != 1 {
		t.Fatalf("calls after second run = %d, want 1 (cache hit)", fake.Calls())
	}

	res, err := o.Result(ctx, second.ID)
	if err != nil {
		t.Fatalf("Result: %v", err)
	}
	if len(res.Answers) != 1 || !res.Answers[0].Cached {
		t.Fatalf("answers = %+v, want one cached answer", res.Answers)
	}
}

func TestExecuteAllProvidersFail(t *testing.T) {
	cfg := testConfig()
	fail := providers.NewFake("openai", "unused").Fail(
		perr.Providerf("boom"), perr.Providerf("boom"), perr.Providerf("boom"),
	)
	o := New(Deps{Cache: testCache(), Providers: []providers.Querier{fail}}, cfg)
	ctx := context.Background()

	job, err := o.Submit(ctx, visibilityRequest())
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if err := o.Execute(ctx, job.ID); err == nil {
		t.Fatal("Execute succeeded, want aggregate failure")
	}

	got, err := o.Job(ctx, job.ID)
	if err != nil {
		t.Fatalf("Job: %v", err)
	}
	if got.Status != domain.StatusFailed {
		t.Fatalf("status = %s, want failed", got.Status)
	}
	if got.Error == "" {
		t.Fatal("failed job carries no error message")
	}
	if fail.Calls() != cfg.Retries {
		t.Fatalf("calls = %d, want %d", fail.Calls(), cfg.Retries)
	}
	if _, err := o.Result(ctx, job.ID); !perr.IsCode(err, perr.ErrorCodeNotFound) {
		t.Fatalf("Result err = %v, want not found", err)
	}
}

func TestExecutePartialProviderFailure(t *testing.T) {
	dead := providers.NewFake("anthropic", "unused").Fail(
		perr.Timeoutf("slow"), perr.Timeoutf("slow"), perr.Timeoutf("slow"),
	)
	alive := providers.NewFake("openai", "Acme is excellent.")
	o := New(Deps{Cache: testCache(), Providers: []providers.Querier{alive, dead}}, testConfig())
	ctx := context.Background()

	job, err := o.Submit(ctx, visibilityRequest())
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if err := o.Execute(ctx, job.ID); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	res, err := o.Result(ctx, job.ID)
	if err != nil {
		t.Fatalf("Result: %v", err)
	}
	if res.Visibility == nil || res.Visibility.Composite <= 0 {
		t.Fatalf("visibility = %+v, want positive composite", res.Visibility)
	}

	var sawFailure bool
	for _, a := range res.Answers {
		if a.Provider == "anthropic" && a.Failed {
			sawFailure = true
			if a.ErrorKind != "timeout" {
				t.Fatalf("error kind = %q, want timeout", a.ErrorKind)
			}
		}
	}
	if !sawFailure {
		t.Fatal("failed provider not recorded in answers")
	}
}

func TestRetryStopsOnValidationError(t *testing.T) {
	fake := providers.NewFake("openai", "unused").Fail(perr.ValidationErrf("bad prompt"))
	o := New(Deps{Cache: testCache(), Providers: []providers.Querier{fake}}, testConfig())
	ctx := context.Background()

	job, err := o.Submit(ctx, visibilityRequest())
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if err := o.Execute(ctx, job.ID); err == nil {
		t.Fatal("Execute succeeded, want failure")
	}
	if fake.Calls() != 1 {
		t.Fatalf("calls = %d, want 1 (no retry on validation)", fake.Calls())
	}
}

func TestRetryRecoversAfterTransientError(t *testing.T) {
	fake := providers.NewFake("openai", "Acme again.").Fail(perr.RateLimitedf("429"))
	o := New(Deps{Cache: testCache(), Providers: []providers.Querier{fake}}, testConfig())
	ctx := context.Background()

	job, err := o.Submit(ctx, visibilityRequest())
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if err := o.Execute(ctx, job.ID); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if fake.Calls() != 2 {
		t.Fatalf("calls = %d, want 2 (one retry)", fake.Calls())
	}

	got, _ := o.Job(ctx, job.ID)
	if got.Status != domain.StatusCompleted {
		t.Fatalf("status = %s, want completed", got.Status)
	}
}

func TestSubmitRejectsInvalidRequest(t *testing.T) {
	o := New(Deps{
		Cache:     testCache(),
		Providers: []providers.Querier{providers.NewFake("openai", "x")},
	}, testConfig())
	ctx := context.Background()

	cases := []struct {
		name string
		mut  func(*domain.ScanRequest)
	}{
		{"missing brand", func(r *domain.ScanRequest) { r.BrandName = "" }},
		{"missing domain", func(r *domain.ScanRequest) { r.Domain = "" }},
		{"bad scan type", func(r *domain.ScanRequest) { r.ScanType = "teleport" }},
		{"too many competitors", func(r *domain.ScanRequest) {
			r.Competitors = []string{"a", "b", "c", "d", "e", "f"}
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := visibilityRequest()
			tc.mut(&req)
			if _, err := o.Submit(ctx, req); err == nil {
				t.Fatal("Submit accepted invalid request")
			}
		})
	}
}

func TestSubmitNeedsProvidersForVisibility(t *testing.T) {
	o := New(Deps{Cache: testCache()}, testConfig())
	if _, err := o.Submit(context.Background(), visibilityRequest()); !perr.IsCode(err, perr.ErrorCodeValidation) {
		t.Fatalf("err = %v, want validation", err)
	}
}

func TestCancelPendingJob(t *testing.T) {
	o := New(Deps{
		Cache:     testCache(),
		Providers: []providers.Querier{providers.NewFake("openai", "x")},
	}, testConfig())
	ctx := context.Background()

	job, err := o.Submit(ctx, visibilityRequest())
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if err := o.Cancel(ctx, job.ID); err != nil {
		t.Fatalf("Cancel: %v", err)
	}

	got, _ := o.Job(ctx, job.ID)
	if got.Status != domain.StatusCancelled {
		t.Fatalf("status = %s, want cancelled", got.Status)
	}
	if err := o.Cancel(ctx, job.ID); !perr.IsCode(err, perr.ErrorCodeConflict) {
		t.Fatalf("second cancel err = %v, want conflict", err)
	}
}

func TestCancelDuringProcessing(t *testing.T) {
	bq := newBlockingQuerier()
	o := New(Deps{Cache: testCache(), Providers: []providers.Querier{bq}}, testConfig())
	ctx := context.Background()

	job, err := o.Submit(ctx, visibilityRequest())
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	done := make(chan error, 1)
	go func() { done <- o.Execute(ctx, job.ID) }()

	select {
	case <-bq.started:
	case <-time.After(2 * time.Second):
		t.Fatal("provider never started")
	}
	if err := o.Cancel(ctx, job.ID); err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	close(bq.release)

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Execute: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Execute never returned")
	}

	got, _ := o.Job(ctx, job.ID)
	if got.Status != domain.StatusCancelled {
		t.Fatalf("status = %s, want cancelled", got.Status)
	}
	// in-flight results are discarded
	if _, err := o.Result(ctx, job.ID); !perr.IsCode(err, perr.ErrorCodeNotFound) {
		t.Fatalf("Result err = %v, want not found", err)
	}
}

func TestExecuteRejectsNonPendingJob(t *testing.T) {
	o := New(Deps{
		Cache:     testCache(),
		Providers: []providers.Querier{providers.NewFake("openai", "Acme.")},
	}, testConfig())
	ctx := context.Background()

	job, err := o.Submit(ctx, visibilityRequest())
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if err := o.Execute(ctx, job.ID); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if err := o.Execute(ctx, job.ID); !perr.IsCode(err, perr.ErrorCodeConflict) {
		t.Fatalf("re-run err = %v, want conflict", err)
	}
}

func TestExecuteAuditScan(t *testing.T) {
	page := webaudit.Page{
		HTML: `<html><head><title>Acme</title>
			<meta name="description" content="Acme builds project management software for busy teams everywhere.">
			</head><body><h1>Acme</h1><h2>FAQ</h2><ul><li>Fast</li></ul>
			<p>` + strings.Repeat("acme tools help teams ship faster and stay aligned ", 40) + `</p>
			</body></html>`,
		StatusCode: 200,
		FinalURL:   "https://acme.example/",
		HTTPS:      true,
		Elapsed:    120 * time.Millisecond,
	}
	ff := &fakeFetcher{page: page}
	o := New(Deps{Cache: testCache(), Fetcher: ff}, testConfig())
	ctx := context.Background()

	req := visibilityRequest()
	req.ScanType = domain.TypeAudit
	job, err := o.Submit(ctx, req)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if err := o.Execute(ctx, job.ID); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	res, err := o.Result(ctx, job.ID)
	if err != nil {
		t.Fatalf("Result: %v", err)
	}
	if res.Audit == nil {
		t.Fatal("audit result missing")
	}
	if res.Audit.Score <= 0 {
		t.Fatalf("audit score = %d, want > 0", res.Audit.Score)
	}

	// a second audit of the same domain reads cached signals
	second, err := o.Submit(ctx, req)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if err := o.Execute(ctx, second.ID); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if ff.fetchCount() != 1 {
		t.Fatalf("fetch count = %d, want 1", ff.fetchCount())
	}
}

func TestExecuteAuditFetchFailure(t *testing.T) {
	ff := &fakeFetcher{err: perr.Unreachablef("connect refused")}
	o := New(Deps{Cache: testCache(), Fetcher: ff}, testConfig())
	ctx := context.Background()

	req := visibilityRequest()
	req.ScanType = domain.TypeAudit
	job, err := o.Submit(ctx, req)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if err := o.Execute(ctx, job.ID); err == nil {
		t.Fatal("Execute succeeded, want fetch failure")
	}
	if ff.fetchCount() != testConfig().Retries {
		t.Fatalf("fetch count = %d, want %d", ff.fetchCount(), testConfig().Retries)
	}

	got, _ := o.Job(ctx, job.ID)
	if got.Status != domain.StatusFailed {
		t.Fatalf("status = %s, want failed", got.Status)
	}
}

func TestExecuteSimulationScan(t *testing.T) {
	fake := providers.NewFake("openai", "I would recommend Acme. Globex also competes here.")
	o := New(Deps{Cache: testCache(), Providers: []providers.Querier{fake}}, testConfig())
	ctx := context.Background()

	req := visibilityRequest()
	req.ScanType = domain.TypeSimulation
	req.Industry = "software"
	req.ProductCategory = "project management"
	job, err := o.Submit(ctx, req)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if err := o.Execute(ctx, job.ID); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	res, err := o.Result(ctx, job.ID)
	if err != nil {
		t.Fatalf("Result: %v", err)
	}
	if res.Visibility == nil {
		t.Fatal("visibility result missing")
	}
	// standard software prompts plus comparison prompts, one answer each
	if len(res.Answers) < 10 {
		t.Fatalf("answers = %d, want at least 10", len(res.Answers))
	}
	if fake.Calls() != len(res.Answers) {
		t.Fatalf("calls = %d, answers = %d, want equal on a cold cache", fake.Calls(), len(res.Answers))
	}
}
