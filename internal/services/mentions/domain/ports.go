package domain

import (
	"context"
	"time"
)

// WriterPort archives mention events
type WriterPort interface {
	WriteBatch(ctx context.Context, xs []Event) error
}

// QueryPort reads aggregations back out of the archive
type QueryPort interface {
	TopBrands(ctx context.Context, since time.Time, limit int) ([]BrandCount, error)
	CountByJob(ctx context.Context, jobID string) (uint64, error)
}
