// Package service implements the scan orchestrator
package service

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"llmo/internal/core/visibility"
	"llmo/internal/platform/config"
	perr "llmo/internal/platform/errors"
	"llmo/internal/platform/logger"
	"llmo/internal/platform/net/http/bind"
	cachedom "llmo/internal/services/cache/domain"
	mentionsvc "llmo/internal/services/mentions/service"
	"llmo/internal/services/providers"
	"llmo/internal/services/scan/domain"
	"llmo/internal/services/scan/repo"
	"llmo/internal/services/webaudit"

	"github.com/google/uuid"
)

// Config tunes the orchestrator
type Config struct {
	CallTimeout time.Duration
	Retries     int
	BackoffBase time.Duration
	Workers     int
	Weights     map[string]float64
	Threshold   int
}

// ConfigFromEnv reads CORE_SCAN_* settings
func ConfigFromEnv() Config {
	cfg := config.New().Prefix("CORE_SCAN_")
	return Config{
		CallTimeout: cfg.MayDuration("CALL_TIMEOUT", DefaultCallTimeout),
		Retries:     cfg.MayInt("RETRIES", DefaultRetries),
		BackoffBase: cfg.MayDuration("BACKOFF_BASE", DefaultBackoffBase),
		Workers:     cfg.MayInt("WORKERS", 4),
		Threshold:   cfg.MayInt("REC_THRESHOLD", visibility.DefaultThreshold),
		Weights: map[string]float64{
			"openai":    cfg.MayFloat64("WEIGHT_OPENAI", 0.40),
			"anthropic": cfg.MayFloat64("WEIGHT_ANTHROPIC", 0.35),
		},
	}
}

// Deps wires the orchestrator's collaborators. Repo defaults to the memory
// repo, Fetcher to the plain HTTP fetcher; Archive and Observer may be nil
type Deps struct {
	Repo      domain.JobRepo
	Cache     cachedom.Store
	Providers []providers.Querier
	Fetcher   webaudit.Fetcher
	Archive   *mentionsvc.Service
	Observer  domain.Observer
}

// Orchestrator runs scan jobs through their state machine
type Orchestrator struct {
	cfg    Config
	deps   Deps
	scorer *visibility.Scorer
	log    *logger.Logger

	mu      sync.Mutex
	cancels map[string]*atomic.Bool
}

// New constructs an Orchestrator
func New(deps Deps, cfg Config) *Orchestrator {
	if deps.Cache == nil {
		panic("orchestrator requires a cache store")
	}
	if deps.Repo == nil {
		deps.Repo = repo.NewMemory()
	}
	if deps.Fetcher == nil {
		deps.Fetcher = webaudit.NewFetcher()
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
	return &Orchestrator{
		cfg:     cfg,
		deps:    deps,
		scorer:  visibility.NewWithWeights(cfg.Weights, cfg.Threshold),
		log:     logger.Named("scan"),
		cancels: make(map[string]*atomic.Bool),
	}
}

// LogObserver returns an Observer that logs every milestone
func LogObserver() domain.Observer {
	log := logger.Named("scan.progress")
	return domain.ObserverFunc(func(ev domain.ProgressEvent) {
		log.Info().
			Str("job_id", ev.JobID).
			Str("status", string(ev.Status)).
			Int("progress", ev.Progress).
			Msg(ev.Message)
	})
}

// Submit validates the request and creates a pending job
func (o *Orchestrator) Submit(ctx context.Context, req domain.ScanRequest) (*domain.Job, error) {
	if err := bind.Validate(req); err != nil {
		return nil, err
	}
	if req.ScanType != domain.TypeAudit && len(o.deps.Providers) == 0 {
		return nil, perr.ValidationErrf("no providers configured")
	}

	now := time.Now().UTC()
	job := &domain.Job{
		ID:        uuid.NewString(),
		Request:   req,
		Status:    domain.StatusPending,
		Progress:  0,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := o.deps.Repo.Create(ctx, job); err != nil {
		return nil, err
	}

	o.mu.Lock()
	o.cancels[job.ID] = &atomic.Bool{}
	o.mu.Unlock()

	return job, nil
}

// Start runs the job asynchronously, detached from the caller's context
func (o *Orchestrator) Start(job *domain.Job) {
	go func() {
		ctx := logger.WithJob(context.Background(), job.ID)
		if err := o.Execute(ctx, job.ID); err != nil {
			logger.C(ctx).Error().Err(err).Msg("scan execution failed")
		}
	}()
}

// Execute drives one pending job to a terminal state
func (o *Orchestrator) Execute(ctx context.Context, jobID string) error {
	job, err := o.deps.Repo.Get(ctx, jobID)
	if err != nil {
		return err
	}
	if job.Status != domain.StatusPending {
		return perr.Conflictf("job %s is %s, not pending", jobID, job.Status)
	}
	defer o.dropCancel(jobID)

	o.transition(ctx, job, domain.StatusProcessing, 10, "scan started")

	var result *domain.Result
	switch job.Request.ScanType {
	case domain.TypeAudit:
		result, err = o.runAudit(ctx, job)
	case domain.TypeSimulation:
		result, err = o.runSimulation(ctx, job)
	default:
		result, err = o.runVisibility(ctx, job)
	}

	switch {
	case o.isCancelled(jobID) || ctx.Err() != nil:
		// in-flight results are discarded
		job.Message = "scan cancelled"
		o.transition(ctx, job, domain.StatusCancelled, job.Progress, job.Message)
		return nil
	case err != nil:
		job.Error = err.Error()
		o.transition(ctx, job, domain.StatusFailed, job.Progress, "scan failed")
		return err
	}

	result.JobID = job.ID
	result.Type = job.Request.ScanType
	result.CreatedAt = time.Now().UTC()
	if err := o.deps.Repo.SaveResult(ctx, result); err != nil {
		job.Error = err.Error()
		o.transition(ctx, job, domain.StatusFailed, job.Progress, "scan failed")
		return err
	}

	o.transition(ctx, job, domain.StatusCompleted, 100, "scan completed")
	return nil
}

// Cancel requests cooperative cancellation. Pending jobs cancel immediately;
// processing jobs cancel at the next sub-step boundary
func (o *Orchestrator) Cancel(ctx context.Context, jobID string) error {
	job, err := o.deps.Repo.Get(ctx, jobID)
	if err != nil {
		return err
	}
	if job.Status.Terminal() {
		return perr.Conflictf("job %s already %s", jobID, job.Status)
	}

	o.mu.Lock()
	flag := o.cancels[jobID]
	o.mu.Unlock()
	if flag != nil {
		flag.Store(true)
	}

	if job.Status == domain.StatusPending {
		o.transition(ctx, job, domain.StatusCancelled, job.Progress, "scan cancelled")
	}
	return nil
}

// Job returns the current job state
func (o *Orchestrator) Job(ctx context.Context, jobID string) (*domain.Job, error) {
	return o.deps.Repo.Get(ctx, jobID)
}

// Result returns the final result once the job completed
func (o *Orchestrator) Result(ctx context.Context, jobID string) (*domain.Result, error) {
	return o.deps.Repo.GetResult(ctx, jobID)
}

// Providers lists the configured provider descriptions
func (o *Orchestrator) Providers() []providers.Info {
	return providers.Describe(o.deps.Providers)
}

// transition moves the job, clamps progress to be monotonic, persists, and
// notifies the observer synchronously
func (o *Orchestrator) transition(ctx context.Context, job *domain.Job, st domain.Status, progress int, msg string) {
	if progress < job.Progress {
		progress = job.Progress
	}
	job.Status = st
	job.Progress = progress
	job.Message = msg
	job.UpdatedAt = time.Now().UTC()

	if err := o.deps.Repo.Update(ctx, job); err != nil {
		o.log.Warn().Err(err).Str("job_id", job.ID).Msg("job update failed")
	}
	o.notify(domain.ProgressEvent{
		JobID:    job.ID,
		Progress: job.Progress,
		Status:   st,
		Message:  msg,
	})
}

// advance bumps progress within the processing state
func (o *Orchestrator) advance(ctx context.Context, job *domain.Job, progress int, msg string) {
	o.transition(ctx, job, domain.StatusProcessing, progress, msg)
}

func (o *Orchestrator) notify(ev domain.ProgressEvent) {
	if o.deps.Observer == nil {
		return
	}
	o.deps.Observer.OnProgress(ev)
}

func (o *Orchestrator) isCancelled(jobID string) bool {
	o.mu.Lock()
	flag := o.cancels[jobID]
	o.mu.Unlock()
	return flag != nil && flag.Load()
}

func (o *Orchestrator) dropCancel(jobID string) {
	o.mu.Lock()
	delete(o.cancels, jobID)
	o.mu.Unlock()
}
