package localcache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/autocare/platform/internal/domain/localcache"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Fetcher lists every object of a kind from the platform API
type Fetcher interface {
	FetchAll(ctx context.Context, kind localcache.Kind) ([]json.RawMessage, error)
}

// Source tells where a cache read was answered from
const (
	SourceCache  = "cache"
	SourceRemote = "remote"
)

// FetchError is a failed refresh from the platform
type FetchError struct {
	Kind localcache.Kind
	Err  error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("refresh %s cache: %v", e.Kind, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Result is the answer of a cache read
type Result struct {
	Kind   localcache.Kind   `json:"kind"`
	Source string            `json:"source"`
	Count  int               `json:"count"`
	Items  []json.RawMessage `json:"items"`
}

// CleanupResult reports rows removed per kind
type CleanupResult struct {
	Removed map[localcache.Kind]int64 `json:"removed"`
	Total   int64                     `json:"total"`
}

// StatsReport describes every cache table
type StatsReport struct {
	TTLSeconds int64                   `json:"ttl_seconds"`
	Tables     []localcache.TableStats `json:"tables"`
}

// CacheManager serves platform catalog data from the local store,
// refetching a kind once its rows are older than the TTL.
type CacheManager struct {
	repo    localcache.Repository
	fetcher Fetcher
	ttl     time.Duration
	group   singleflight.Group
	now     func() time.Time
	logger  *zap.Logger
}

// NewCacheManager creates a new CacheManager. A non-positive ttl uses the default.
func NewCacheManager(repo localcache.Repository, fetcher Fetcher, ttl time.Duration, logger *zap.Logger) *CacheManager {
	if ttl <= 0 {
		ttl = localcache.DefaultTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CacheManager{
		repo:    repo,
		fetcher: fetcher,
		ttl:     ttl,
		now:     time.Now,
		logger:  logger,
	}
}

// TTL returns the freshness window
func (m *CacheManager) TTL() time.Duration {
	return m.ttl
}

// Get returns the fresh rows of kind, possibly none
func (m *CacheManager) Get(ctx context.Context, kind localcache.Kind) ([]localcache.Entry, error) {
	return m.repo.FindFresh(ctx, kind, m.now().Add(-m.ttl))
}

// Store replaces rows of kind, stamping them as cached now
func (m *CacheManager) Store(ctx context.Context, kind localcache.Kind, raw []json.RawMessage) ([]localcache.Entry, error) {
	now := m.now()
	entries := make([]localcache.Entry, 0, len(raw))
	for _, r := range raw {
		e, err := localcache.EntryFromJSON(kind, r)
		if err != nil {
			m.logger.Warn("Skipping malformed cache row", zap.String("kind", string(kind)), zap.Error(err))
			continue
		}
		e.CachedAt = now
		entries = append(entries, e)
	}
	if len(entries) == 0 {
		return entries, nil
	}
	if err := m.repo.Upsert(ctx, kind, entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// GetOrFetch answers from fresh cached rows, otherwise fetches the kind from
// the platform, stores it and answers with the fetched rows. refresh skips
// the cache lookup. Concurrent fetches of one kind share a single request.
func (m *CacheManager) GetOrFetch(ctx context.Context, kind localcache.Kind, refresh bool) (*Result, error) {
	if !refresh {
		fresh, err := m.Get(ctx, kind)
		if err != nil {
			return nil, err
		}
		if len(fresh) > 0 {
			return toResult(kind, SourceCache, fresh), nil
		}
	}

	v, err, _ := m.group.Do(string(kind), func() (any, error) {
		raw, err := m.fetcher.FetchAll(ctx, kind)
		if err != nil {
			return nil, err
		}
		return m.Store(ctx, kind, raw)
	})
	if err != nil {
		return nil, &FetchError{Kind: kind, Err: err}
	}
	entries := v.([]localcache.Entry)
	m.logger.Info("Cache refreshed", zap.String("kind", string(kind)), zap.Int("rows", len(entries)))
	return toResult(kind, SourceRemote, entries), nil
}

// CleanExpired deletes rows older than the TTL from every table
func (m *CacheManager) CleanExpired(ctx context.Context) (*CleanupResult, error) {
	cutoff := m.now().Add(-m.ttl)
	res := &CleanupResult{Removed: make(map[localcache.Kind]int64, len(localcache.AllKinds))}
	for _, kind := range localcache.AllKinds {
		n, err := m.repo.DeleteOlderThan(ctx, kind, cutoff)
		if err != nil {
			return nil, err
		}
		res.Removed[kind] = n
		res.Total += n
	}
	if res.Total > 0 {
		m.logger.Info("Expired cache rows removed", zap.Int64("rows", res.Total))
	}
	return res, nil
}

// Clear empties one table, or every table when kind is empty
func (m *CacheManager) Clear(ctx context.Context, kind localcache.Kind) (*CleanupResult, error) {
	kinds := localcache.AllKinds
	if kind != "" {
		kinds = []localcache.Kind{kind}
	}
	res := &CleanupResult{Removed: make(map[localcache.Kind]int64, len(kinds))}
	for _, k := range kinds {
		n, err := m.repo.Clear(ctx, k)
		if err != nil {
			return nil, err
		}
		res.Removed[k] = n
		res.Total += n
	}
	return res, nil
}

// Stats reports row counts and the oldest row of every table
func (m *CacheManager) Stats(ctx context.Context) (*StatsReport, error) {
	since := m.now().Add(-m.ttl)
	report := &StatsReport{TTLSeconds: int64(m.ttl / time.Second)}
	for _, kind := range localcache.AllKinds {
		st, err := m.repo.Stats(ctx, kind, since)
		if err != nil {
			return nil, err
		}
		report.Tables = append(report.Tables, st)
	}
	return report, nil
}

func toResult(kind localcache.Kind, source string, entries []localcache.Entry) *Result {
	items := make([]json.RawMessage, len(entries))
	for i := range entries {
		items[i] = entries[i].Payload
	}
	return &Result{Kind: kind, Source: source, Count: len(items), Items: items}
}
