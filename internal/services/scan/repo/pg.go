package repo

import (
	"context"
	"encoding/json"
	"errors"

	perr "llmo/internal/platform/errors"
	"llmo/internal/platform/store"
	"llmo/internal/services/scan/domain"

	"github.com/jackc/pgx/v5"
)

// PG implements JobRepo against scan_jobs and scan_results
type PG struct {
	q store.RowQuerier
}

// NewPG constructs a PG job repo
func NewPG(q store.RowQuerier) *PG {
	if q == nil {
		panic("scan repo requires a RowQuerier")
	}
	return &PG{q: q}
}

// Create implements JobRepo
func (r *PG) Create(ctx context.Context, j *domain.Job) error {
	req, err := json.Marshal(j.Request)
	if err != nil {
		return perr.JSONErrf("marshal scan request: %v", err)
	}
	const sql = `
		INSERT INTO scan_jobs (id, request, status, progress, message, error, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err = r.q.Exec(ctx, sql,
		j.ID, req, string(j.Status), j.Progress, j.Message, j.Error, j.CreatedAt, j.UpdatedAt)
	if err != nil {
		return perr.DBf("create job: %v", err)
	}
	return nil
}

// Update implements JobRepo
func (r *PG) Update(ctx context.Context, j *domain.Job) error {
	const sql = `
		UPDATE scan_jobs
		SET status = $2, progress = $3, message = $4, error = $5, updated_at = $6
		WHERE id = $1`
	ct, err := r.q.Exec(ctx, sql,
		j.ID, string(j.Status), j.Progress, j.Message, j.Error, j.UpdatedAt)
	if err != nil {
		return perr.DBf("update job: %v", err)
	}
	if ct.RowsAffected() == 0 {
		return perr.NotFoundf("job %s", j.ID)
	}
	return nil
}

// Get implements JobRepo
func (r *PG) Get(ctx context.Context, id string) (*domain.Job, error) {
	const sql = `
		SELECT id, request, status, progress, message, error, created_at, updated_at
		FROM scan_jobs WHERE id = $1`

	var j domain.Job
	var req []byte
	var status string
	err := r.q.QueryRow(ctx, sql, id).Scan(
		&j.ID, &req, &status, &j.Progress, &j.Message, &j.Error, &j.CreatedAt, &j.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, perr.NotFoundf("job %s", id)
	}
	if err != nil {
		return nil, perr.DBf("get job: %v", err)
	}
	if err := json.Unmarshal(req, &j.Request); err != nil {
		return nil, perr.JSONErrf("unmarshal scan request: %v", err)
	}
	j.Status = domain.Status(status)
	return &j, nil
}

// SaveResult implements JobRepo
func (r *PG) SaveResult(ctx context.Context, res *domain.Result) error {
	payload, err := json.Marshal(res)
	if err != nil {
		return perr.JSONErrf("marshal scan result: %v", err)
	}
	const sql = `
		INSERT INTO scan_results (job_id, payload, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (job_id) DO UPDATE SET payload = EXCLUDED.payload`
	if _, err := r.q.Exec(ctx, sql, res.JobID, payload, res.CreatedAt); err != nil {
		return perr.DBf("save result: %v", err)
	}
	return nil
}

// GetResult implements JobRepo
func (r *PG) GetResult(ctx context.Context, jobID string) (*domain.Result, error) {
	var payload []byte
	err := r.q.QueryRow(ctx, `SELECT payload FROM scan_results WHERE job_id = $1`, jobID).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, perr.NotFoundf("result for job %s", jobID)
	}
	if err != nil {
		return nil, perr.DBf("get result: %v", err)
	}
	var res domain.Result
	if err := json.Unmarshal(payload, &res); err != nil {
		return nil, perr.JSONErrf("unmarshal scan result: %v", err)
	}
	return &res, nil
}
