// Package repo provides the postgres cache backend
package repo

import (
	"context"
	"errors"
	"time"

	perr "llmo/internal/platform/errors"
	"llmo/internal/platform/store"

	"github.com/jackc/pgx/v5"
)

// PG implements domain.Backend against the llm_response_cache table
type PG struct {
	q store.RowQuerier
}

// New constructs a PG cache backend
func New(q store.RowQuerier) *PG {
	if q == nil {
		panic("cache repo requires a RowQuerier")
	}
	return &PG{q: q}
}

// Get reads an unexpired entry and bumps its hit count in one statement
func (r *PG) Get(ctx context.Context, key string) ([]byte, bool, error) {
	const sql = `
		UPDATE llm_response_cache
		SET hit_count = hit_count + 1
		WHERE cache_key = $1 AND expires_at > now()
		RETURNING payload`

	var payload []byte
	err := r.q.QueryRow(ctx, sql, key).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, perr.DBf("cache get: %v", err)
	}
	return payload, true, nil
}

// Put upserts the entry, resetting its clock and hit count
func (r *PG) Put(ctx context.Context, key string, payload []byte, expiresAt time.Time) error {
	const sql = `
		INSERT INTO llm_response_cache (cache_key, payload, created_at, expires_at, hit_count)
		VALUES ($1, $2, now(), $3, 0)
		ON CONFLICT (cache_key) DO UPDATE
		SET payload = EXCLUDED.payload,
		    created_at = now(),
		    expires_at = EXCLUDED.expires_at,
		    hit_count = 0`

	if _, err := r.q.Exec(ctx, sql, key, payload, expiresAt); err != nil {
		return perr.DBf("cache put: %v", err)
	}
	return nil
}

// Invalidate deletes entries whose key starts with prefix; empty prefix
// clears the table
func (r *PG) Invalidate(ctx context.Context, prefix string) (int64, error) {
	const sql = `DELETE FROM llm_response_cache WHERE cache_key LIKE $1 || '%'`
	ct, err := r.q.Exec(ctx, sql, prefix)
	if err != nil {
		return 0, perr.DBf("cache invalidate: %v", err)
	}
	return ct.RowsAffected(), nil
}

// Count returns resident entries, expired included
func (r *PG) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.q.QueryRow(ctx, `SELECT count(*) FROM llm_response_cache`).Scan(&n); err != nil {
		return 0, perr.DBf("cache count: %v", err)
	}
	return n, nil
}

// Sweep deletes expired entries and reports how many went
func (r *PG) Sweep(ctx context.Context) (int64, error) {
	ct, err := r.q.Exec(ctx, `DELETE FROM llm_response_cache WHERE expires_at <= now()`)
	if err != nil {
		return 0, perr.DBf("cache sweep: %v", err)
	}
	return ct.RowsAffected(), nil
}
