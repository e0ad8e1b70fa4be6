package localcache

import (
	"context"
	"time"
)

// Repository stores cached rows, one table per kind
type Repository interface {
	// Upsert inserts or replaces rows, last write wins
	Upsert(ctx context.Context, kind Kind, entries []Entry) error
	// FindFresh returns rows cached at or after since
	FindFresh(ctx context.Context, kind Kind, since time.Time) ([]Entry, error)
	DeleteOlderThan(ctx context.Context, kind Kind, cutoff time.Time) (int64, error)
	Clear(ctx context.Context, kind Kind) (int64, error)
	Stats(ctx context.Context, kind Kind, since time.Time) (TableStats, error)
}
