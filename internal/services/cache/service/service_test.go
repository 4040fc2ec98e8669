package service

import (
	"context"
	"errors"
	"testing"
	"time"

	dom "llmo/internal/services/cache/domain"
	"llmo/internal/services/cache/memory"
)

func TestRoundTripThroughService(t *testing.T) {
	ctx := context.Background()
	s := New(memory.New(), Config{})

	params := map[string]string{"model": "gpt-4", "prompt": "best crm?"}
	if _, ok, _ := s.Get(ctx, dom.QueryLLM, params); ok {
		t.Fatal("cold cache must miss")
	}
	if err := s.Put(ctx, dom.QueryLLM, params, []byte("answer"), 0); err != nil {
		t.Fatal(err)
	}
	got, ok, err := s.Get(ctx, dom.QueryLLM, params)
	if err != nil || !ok || string(got) != "answer" {
		t.Fatalf("Get = %q, %v, %v", got, ok, err)
	}

	st, _ := s.Stats(ctx)
	if st.Hits != 1 || st.Misses != 1 || st.HitRate != 0.5 {
		t.Fatalf("stats = %+v", st)
	}
}

type failingBackend struct{}

func (failingBackend) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, errors.New("backend down")
}

func (failingBackend) Put(context.Context, string, []byte, time.Time) error {
	return errors.New("backend down")
}

func (failingBackend) Invalidate(context.Context, string) (int64, error) {
	return 0, errors.New("backend down")
}

func (failingBackend) Count(context.Context) (int64, error) {
	return 0, errors.New("backend down")
}

func (failingBackend) Sweep(context.Context) (int64, error) {
	return 0, errors.New("backend down")
}

func TestFailOpen(t *testing.T) {
	ctx := context.Background()
	s := New(failingBackend{}, Config{})

	params := map[string]string{"prompt": "x"}
	payload, ok, err := s.Get(ctx, dom.QueryLLM, params)
	if err != nil || ok || payload != nil {
		t.Fatalf("backend errors must read as a miss: %q, %v, %v", payload, ok, err)
	}
	if err := s.Put(ctx, dom.QueryLLM, params, []byte("v"), 0); err != nil {
		t.Fatalf("backend write errors must be swallowed: %v", err)
	}
	if _, err := s.Stats(ctx); err != nil {
		t.Fatalf("stats must degrade gracefully: %v", err)
	}
}

func TestTTLPolicy(t *testing.T) {
	s := New(memory.New(), Config{LLMTTL: 24 * time.Hour, AuditTTL: 6 * time.Hour})
	if s.TTLFor(dom.QueryLLM) != 24*time.Hour {
		t.Fatal("llm ttl")
	}
	if s.TTLFor(dom.QueryAudit) != 6*time.Hour {
		t.Fatal("audit ttl")
	}

	d := New(memory.New(), Config{})
	if d.TTLFor(dom.QueryLLM) != dom.DefaultLLMTTL || d.TTLFor(dom.QueryAudit) != dom.DefaultAuditTTL {
		t.Fatal("defaults not applied")
	}
}
