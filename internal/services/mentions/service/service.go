// Package service provides the best-effort mention archive facade
package service

import (
	"context"

	"llmo/internal/platform/logger"
	"llmo/internal/services/mentions/domain"
)

// Service archives mention events without ever failing the caller. A nil
// writer turns archiving into a no-op, so scans run fine without clickhouse
type Service struct {
	w   domain.WriterPort
	log *logger.Logger
}

// New constructs the archive facade; w may be nil
func New(w domain.WriterPort) *Service {
	return &Service{w: w, log: logger.Named("mentions")}
}

// Archive writes events, logging and swallowing any failure
func (s *Service) Archive(ctx context.Context, xs []domain.Event) {
	if s == nil || s.w == nil || len(xs) == 0 {
		return
	}
	if err := s.w.WriteBatch(ctx, xs); err != nil {
		s.log.Warn().Err(err).Int("events", len(xs)).Msg("mention archive write failed")
	}
}
