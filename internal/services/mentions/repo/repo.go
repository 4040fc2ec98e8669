// Package repo provides the clickhouse mention archive
package repo

import (
	"context"
	"time"

	perr "llmo/internal/platform/errors"
	"llmo/internal/platform/store"
	chx "llmo/internal/platform/store/ch"
	"llmo/internal/services/mentions/domain"
)

// CH implements the mention archive against the mention_events table
type CH struct {
	ch store.Clickhouse
}

// New constructs a CH mention repo
func New(ch store.Clickhouse) *CH {
	if ch == nil {
		panic("mentions repo requires a clickhouse seam")
	}
	return &CH{ch: ch}
}

const insertEvents = `
	INSERT INTO mention_events
	(job_id, brand, provider, prompt, surface, sentiment, is_competitor, position, detected_at)`

// WriteBatch appends events through one prepared batch
func (r *CH) WriteBatch(ctx context.Context, xs []domain.Event) error {
	if len(xs) == 0 {
		return nil
	}
	err := r.ch.InsertBatch(ctx, insertEvents, func(b chx.Batch) error {
		for _, e := range xs {
			if err := b.Append(
				e.JobID, e.Brand, e.Provider, e.Prompt, e.Surface,
				e.Sentiment, e.IsCompetitor, e.Position, e.DetectedAt,
			); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return perr.DBf("mention archive write: %v", err)
	}
	return nil
}

// TopBrands returns the most mentioned brands since the given time
func (r *CH) TopBrands(ctx context.Context, since time.Time, limit int) ([]domain.BrandCount, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := r.ch.Query(ctx, `
		SELECT brand, count() AS mentions
		FROM mention_events
		WHERE detected_at >= ?
		GROUP BY brand
		ORDER BY mentions DESC
		LIMIT ?`, since, limit)
	if err != nil {
		return nil, perr.DBf("mention archive query: %v", err)
	}
	defer func() { _ = rows.Close() }()

	var out []domain.BrandCount
	for rows.Next() {
		var bc domain.BrandCount
		if err := rows.Scan(&bc.Brand, &bc.Mentions); err != nil {
			return nil, perr.DBf("mention archive scan: %v", err)
		}
		out = append(out, bc)
	}
	if err := rows.Err(); err != nil {
		return nil, perr.DBf("mention archive rows: %v", err)
	}
	return out, nil
}

// CountByJob counts archived events for one job
func (r *CH) CountByJob(ctx context.Context, jobID string) (uint64, error) {
	rows, err := r.ch.Query(ctx, `SELECT count() FROM mention_events WHERE job_id = ?`, jobID)
	if err != nil {
		return 0, perr.DBf("mention archive count: %v", err)
	}
	defer func() { _ = rows.Close() }()

	var n uint64
	if rows.Next() {
		if err := rows.Scan(&n); err != nil {
			return 0, perr.DBf("mention archive scan: %v", err)
		}
	}
	return n, rows.Err()
}
