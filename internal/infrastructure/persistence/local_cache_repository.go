package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/autocare/platform/internal/domain/localcache"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormLocalCacheRepository implements localcache.Repository on the agent's SQLite file.
// Every kind shares the Entry shape in its own table.
type GormLocalCacheRepository struct {
	db *gorm.DB
}

// NewGormLocalCacheRepository creates a new GormLocalCacheRepository
func NewGormLocalCacheRepository(db *gorm.DB) *GormLocalCacheRepository {
	return &GormLocalCacheRepository{db: db}
}

func (r *GormLocalCacheRepository) table(ctx context.Context, kind localcache.Kind) (*gorm.DB, error) {
	name := kind.Table()
	if name == "" {
		return nil, fmt.Errorf("unknown cache kind %q", kind)
	}
	return r.db.WithContext(ctx).Table(name), nil
}

// Upsert inserts or replaces rows by remote id
func (r *GormLocalCacheRepository) Upsert(ctx context.Context, kind localcache.Kind, entries []localcache.Entry) error {
	if len(entries) == 0 {
		return nil
	}
	q, err := r.table(ctx, kind)
	if err != nil {
		return err
	}
	return q.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "remote_id"}},
		UpdateAll: true,
	}).CreateInBatches(entries, 200).Error
}

// FindFresh returns rows cached at or after since, ordered by name
func (r *GormLocalCacheRepository) FindFresh(ctx context.Context, kind localcache.Kind, since time.Time) ([]localcache.Entry, error) {
	q, err := r.table(ctx, kind)
	if err != nil {
		return nil, err
	}
	var entries []localcache.Entry
	if err := q.Where("cached_at >= ?", since).Order("name ASC").Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// DeleteOlderThan removes rows cached before cutoff
func (r *GormLocalCacheRepository) DeleteOlderThan(ctx context.Context, kind localcache.Kind, cutoff time.Time) (int64, error) {
	q, err := r.table(ctx, kind)
	if err != nil {
		return 0, err
	}
	result := q.Where("cached_at < ?", cutoff).Delete(&localcache.Entry{})
	return result.RowsAffected, result.Error
}

// Clear empties the table of a kind
func (r *GormLocalCacheRepository) Clear(ctx context.Context, kind localcache.Kind) (int64, error) {
	q, err := r.table(ctx, kind)
	if err != nil {
		return 0, err
	}
	result := q.Where("1 = 1").Delete(&localcache.Entry{})
	return result.RowsAffected, result.Error
}

// Stats reports the size and age of a table. Rows cached at or after since count as fresh.
func (r *GormLocalCacheRepository) Stats(ctx context.Context, kind localcache.Kind, since time.Time) (localcache.TableStats, error) {
	stats := localcache.TableStats{Kind: kind}
	q, err := r.table(ctx, kind)
	if err != nil {
		return stats, err
	}
	if err := q.Count(&stats.Count).Error; err != nil {
		return stats, err
	}
	if stats.Count == 0 {
		return stats, nil
	}
	q, _ = r.table(ctx, kind)
	if err := q.Where("cached_at >= ?", since).Count(&stats.Fresh).Error; err != nil {
		return stats, err
	}
	var oldest localcache.Entry
	q, _ = r.table(ctx, kind)
	if err := q.Order("cached_at ASC").Limit(1).Find(&oldest).Error; err != nil {
		return stats, err
	}
	stats.Oldest = &oldest.CachedAt
	return stats, nil
}

var _ localcache.Repository = (*GormLocalCacheRepository)(nil)
