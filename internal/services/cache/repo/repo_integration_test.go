//go:build integration_pg
// +build integration_pg

package repo

import (
	"context"
	"fmt"
	"testing"
	"time"

	"llmo/internal/platform/store"

	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func startPostgres(t *testing.T) (dsn string, stop func()) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)

	req := tc.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "postgres",
			"POSTGRES_PASSWORD": "postgres",
			"POSTGRES_DB":       "postgres",
		},
		WaitingFor: wait.ForAll(
			wait.ForListeningPort("5432/tcp"),
			wait.ForLog("database system is ready to accept connections"),
		).WithDeadline(2 * time.Minute),
	}
	c, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		cancel()
		t.Fatalf("failed to start postgres container: %v", err)
	}

	host, err := c.Host(ctx)
	if err != nil {
		_ = c.Terminate(context.Background())
		cancel()
		t.Fatalf("failed to get container host: %v", err)
	}
	mapped, err := c.MappedPort(ctx, "5432/tcp")
	if err != nil {
		_ = c.Terminate(context.Background())
		cancel()
		t.Fatalf("failed to get mapped port: %v", err)
	}

	dsn = fmt.Sprintf("postgres://postgres:postgres@%s:%s/postgres?sslmode=disable", host, mapped.Port())
	stop = func() {
		_ = c.Terminate(context.Background())
		cancel()
	}
	return dsn, stop
}

const createTable = `
	CREATE TABLE IF NOT EXISTS llm_response_cache (
		cache_key  text PRIMARY KEY,
		payload    bytea NOT NULL,
		created_at timestamptz NOT NULL DEFAULT now(),
		expires_at timestamptz NOT NULL,
		hit_count  bigint NOT NULL DEFAULT 0
	)`

func TestCacheRepo_Integration(t *testing.T) {
	dsn, stop := startPostgres(t)
	defer stop()

	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	st, err := store.Open(ctx, store.Config{
		AppName: "llmo-cache-integration",
		PG:      store.PGConfig{Enabled: true, URL: dsn},
	})
	if err != nil {
		t.Fatalf("store open: %v", err)
	}
	defer st.Close(ctx)

	if _, err := st.PG.Exec(ctx, createTable); err != nil {
		t.Fatalf("create table: %v", err)
	}

	r := New(st.PG)

	// miss on empty table
	if _, ok, err := r.Get(ctx, "llm_response:deadbeef"); err != nil || ok {
		t.Fatalf("cold read = %v, %v", ok, err)
	}

	// round trip
	if err := r.Put(ctx, "llm_response:deadbeef", []byte("answer"), time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("put: %v", err)
	}
	got, ok, err := r.Get(ctx, "llm_response:deadbeef")
	if err != nil || !ok || string(got) != "answer" {
		t.Fatalf("get = %q, %v, %v", got, ok, err)
	}

	// hit count bumped by the read
	var hits int64
	if err := st.PG.QueryRow(ctx,
		`SELECT hit_count FROM llm_response_cache WHERE cache_key = $1`,
		"llm_response:deadbeef").Scan(&hits); err != nil {
		t.Fatalf("hit count: %v", err)
	}
	if hits != 1 {
		t.Fatalf("hit_count = %d, want 1", hits)
	}

	// upsert replaces and resets
	if err := r.Put(ctx, "llm_response:deadbeef", []byte("fresher"), time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("re-put: %v", err)
	}
	got, _, _ = r.Get(ctx, "llm_response:deadbeef")
	if string(got) != "fresher" {
		t.Fatalf("last writer must win, got %q", got)
	}

	// expired entries read as absent and sweep reclaims them
	if err := r.Put(ctx, "website_audit:cafe", []byte("stale"), time.Now().Add(-time.Minute)); err != nil {
		t.Fatalf("put expired: %v", err)
	}
	if _, ok, _ := r.Get(ctx, "website_audit:cafe"); ok {
		t.Fatal("expired entry must read as absent")
	}
	swept, err := r.Sweep(ctx)
	if err != nil || swept != 1 {
		t.Fatalf("sweep = %d, %v", swept, err)
	}

	// prefix invalidation
	n, err := r.Invalidate(ctx, "llm_response:")
	if err != nil || n != 1 {
		t.Fatalf("invalidate = %d, %v", n, err)
	}
	if c, _ := r.Count(ctx); c != 0 {
		t.Fatalf("count = %d, want 0", c)
	}
}
