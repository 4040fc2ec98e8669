package domain

import "context"

// Observer receives progress milestones synchronously
type Observer interface {
	OnProgress(ev ProgressEvent)
}

// ObserverFunc adapts a function to Observer
type ObserverFunc func(ev ProgressEvent)

// OnProgress implements Observer
func (f ObserverFunc) OnProgress(ev ProgressEvent) { f(ev) }

// JobRepo persists jobs and results
type JobRepo interface {
	Create(ctx context.Context, j *Job) error
	Update(ctx context.Context, j *Job) error
	Get(ctx context.Context, id string) (*Job, error)
	SaveResult(ctx context.Context, r *Result) error
	GetResult(ctx context.Context, jobID string) (*Result, error)
}
