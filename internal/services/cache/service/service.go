// Package service implements the fail-open cache store over a backend
package service

import (
	"context"
	"sync/atomic"
	"time"

	"llmo/internal/platform/config"
	"llmo/internal/platform/logger"
	dom "llmo/internal/services/cache/domain"
)

// Config carries the TTL policy per query type
type Config struct {
	LLMTTL   time.Duration
	AuditTTL time.Duration
}

// ConfigFromEnv reads CORE_CACHE_* settings
func ConfigFromEnv() Config {
	cfg := config.New().Prefix("CORE_CACHE_")
	return Config{
		LLMTTL:   cfg.MayDuration("LLM_TTL", dom.DefaultLLMTTL),
		AuditTTL: cfg.MayDuration("AUDIT_TTL", dom.DefaultAuditTTL),
	}
}

// Service implements domain.Store. Backend errors are logged and swallowed:
// a failing cache degrades to a miss, it never fails the caller
type Service struct {
	backend dom.Backend
	cfg     Config
	log     *logger.Logger

	hits   atomic.Int64
	misses atomic.Int64
}

// New constructs a cache service over backend
func New(backend dom.Backend, cfg Config) *Service {
	if backend == nil {
		panic("cache service requires a backend")
	}
	if cfg.LLMTTL <= 0 {
		cfg.LLMTTL = dom.DefaultLLMTTL
	}
	if cfg.AuditTTL <= 0 {
		cfg.AuditTTL = dom.DefaultAuditTTL
	}
	return &Service{backend: backend, cfg: cfg, log: logger.Named("cache")}
}

// TTLFor resolves the configured TTL for a query type
func (s *Service) TTLFor(queryType string) time.Duration {
	switch queryType {
	case dom.QueryAudit:
		return s.cfg.AuditTTL
	default:
		return s.cfg.LLMTTL
	}
}

// Get returns the cached payload when present. Backend errors read as a miss
func (s *Service) Get(ctx context.Context, queryType string, params map[string]string) ([]byte, bool, error) {
	key := dom.StorageKey(queryType, params)
	payload, ok, err := s.backend.Get(ctx, key)
	if err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("cache read failed, treating as miss")
		s.misses.Add(1)
		return nil, false, nil
	}
	if !ok {
		s.misses.Add(1)
		return nil, false, nil
	}
	s.hits.Add(1)
	return payload, true, nil
}

// Put stores payload with the given ttl; ttl <= 0 applies the query type's
// configured default. Backend errors are logged and swallowed
func (s *Service) Put(ctx context.Context, queryType string, params map[string]string, payload []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = s.TTLFor(queryType)
	}
	key := dom.StorageKey(queryType, params)
	if err := s.backend.Put(ctx, key, payload, time.Now().Add(ttl)); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("cache write failed, continuing uncached")
	}
	return nil
}

// Invalidate removes entries matching the storage-key prefix
func (s *Service) Invalidate(ctx context.Context, prefix string) (int64, error) {
	return s.backend.Invalidate(ctx, prefix)
}

// Stats reports process-level hit counters plus backend residency
func (s *Service) Stats(ctx context.Context) (dom.Stats, error) {
	st := dom.Stats{
		Hits:   s.hits.Load(),
		Misses: s.misses.Load(),
	}
	if total := st.Hits + st.Misses; total > 0 {
		st.HitRate = float64(st.Hits) / float64(total)
	}
	n, err := s.backend.Count(ctx)
	if err != nil {
		s.log.Warn().Err(err).Msg("cache count failed")
		return st, nil
	}
	st.Entries = n
	return st, nil
}

// Sweep reclaims expired entries once
func (s *Service) Sweep(ctx context.Context) (int64, error) {
	return s.backend.Sweep(ctx)
}
