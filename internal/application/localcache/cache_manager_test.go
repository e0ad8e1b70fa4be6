package localcache

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/autocare/platform/internal/domain/localcache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Upsert(ctx context.Context, kind localcache.Kind, entries []localcache.Entry) error {
	args := m.Called(ctx, kind, entries)
	return args.Error(0)
}

func (m *MockRepository) FindFresh(ctx context.Context, kind localcache.Kind, since time.Time) ([]localcache.Entry, error) {
	args := m.Called(ctx, kind, since)
	return args.Get(0).([]localcache.Entry), args.Error(1)
}

func (m *MockRepository) DeleteOlderThan(ctx context.Context, kind localcache.Kind, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, kind, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRepository) Clear(ctx context.Context, kind localcache.Kind) (int64, error) {
	args := m.Called(ctx, kind)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRepository) Stats(ctx context.Context, kind localcache.Kind, since time.Time) (localcache.TableStats, error) {
	args := m.Called(ctx, kind, since)
	return args.Get(0).(localcache.TableStats), args.Error(1)
}

type MockFetcher struct {
	mock.Mock
}

func (m *MockFetcher) FetchAll(ctx context.Context, kind localcache.Kind) ([]json.RawMessage, error) {
	args := m.Called(ctx, kind)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]json.RawMessage), args.Error(1)
}

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newManager() (*CacheManager, *MockRepository, *MockFetcher) {
	repo := new(MockRepository)
	fetcher := new(MockFetcher)
	m := NewCacheManager(repo, fetcher, 0, nil)
	m.now = func() time.Time { return fixedNow }
	return m, repo, fetcher
}

func TestCacheManager_DefaultTTL(t *testing.T) {
	m, _, _ := newManager()
	assert.Equal(t, 24*time.Hour, m.TTL())
}

func TestCacheManager_GetOrFetchServesFreshRows(t *testing.T) {
	ctx := context.Background()
	m, repo, fetcher := newManager()
	repo.On("FindFresh", ctx, localcache.KindParts, fixedNow.Add(-24*time.Hour)).Return([]localcache.Entry{
		{RemoteID: "p1", Name: "Brake pad", Payload: json.RawMessage(`{"id":"p1"}`), CachedAt: fixedNow.Add(-time.Hour)},
	}, nil)

	res, err := m.GetOrFetch(ctx, localcache.KindParts, false)
	require.NoError(t, err)
	assert.Equal(t, SourceCache, res.Source)
	assert.Equal(t, 1, res.Count)
	assert.JSONEq(t, `{"id":"p1"}`, string(res.Items[0]))
	fetcher.AssertNotCalled(t, "FetchAll", mock.Anything, mock.Anything)
}

func TestCacheManager_GetOrFetchFetchesWhenEmpty(t *testing.T) {
	ctx := context.Background()
	m, repo, fetcher := newManager()
	repo.On("FindFresh", ctx, localcache.KindServices, mock.Anything).Return([]localcache.Entry{}, nil)
	fetcher.On("FetchAll", ctx, localcache.KindServices).Return([]json.RawMessage{
		json.RawMessage(`{"id":"s1","code":"OIL","name":"Oil change","category":"maintenance"}`),
		json.RawMessage(`{"name":"no id"}`),
	}, nil)
	repo.On("Upsert", ctx, localcache.KindServices, mock.MatchedBy(func(es []localcache.Entry) bool {
		return len(es) == 1 && es[0].RemoteID == "s1" && es[0].Code == "OIL" &&
			es[0].Category == "maintenance" && es[0].CachedAt.Equal(fixedNow)
	})).Return(nil)

	res, err := m.GetOrFetch(ctx, localcache.KindServices, false)
	require.NoError(t, err)
	assert.Equal(t, SourceRemote, res.Source)
	assert.Equal(t, 1, res.Count)
	repo.AssertExpectations(t)
}

func TestCacheManager_RefreshSkipsLookup(t *testing.T) {
	ctx := context.Background()
	m, repo, fetcher := newManager()
	fetcher.On("FetchAll", ctx, localcache.KindCategories).Return([]json.RawMessage{json.RawMessage(`{"id":"c1","name":"Oils"}`)}, nil)
	repo.On("Upsert", ctx, localcache.KindCategories, mock.Anything).Return(nil)

	res, err := m.GetOrFetch(ctx, localcache.KindCategories, true)
	require.NoError(t, err)
	assert.Equal(t, SourceRemote, res.Source)
	repo.AssertNotCalled(t, "FindFresh", mock.Anything, mock.Anything, mock.Anything)
}

func TestCacheManager_FetchFailure(t *testing.T) {
	ctx := context.Background()
	m, repo, fetcher := newManager()
	upstream := errors.New("connection refused")
	repo.On("FindFresh", ctx, localcache.KindParts, mock.Anything).Return([]localcache.Entry{}, nil)
	fetcher.On("FetchAll", ctx, localcache.KindParts).Return(nil, upstream)

	_, err := m.GetOrFetch(ctx, localcache.KindParts, false)
	assert.ErrorIs(t, err, upstream)
	repo.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything, mock.Anything)
}

func TestCacheManager_CleanExpired(t *testing.T) {
	ctx := context.Background()
	m, repo, _ := newManager()
	cutoff := fixedNow.Add(-24 * time.Hour)
	repo.On("DeleteOlderThan", ctx, localcache.KindParts, cutoff).Return(int64(3), nil)
	repo.On("DeleteOlderThan", ctx, localcache.KindServices, cutoff).Return(int64(0), nil)
	repo.On("DeleteOlderThan", ctx, localcache.KindServiceCenters, cutoff).Return(int64(1), nil)
	repo.On("DeleteOlderThan", ctx, localcache.KindCategories, cutoff).Return(int64(0), nil)

	res, err := m.CleanExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(4), res.Total)
	assert.Equal(t, int64(3), res.Removed[localcache.KindParts])
}

func TestCacheManager_ClearOneKind(t *testing.T) {
	ctx := context.Background()
	m, repo, _ := newManager()
	repo.On("Clear", ctx, localcache.KindParts).Return(int64(5), nil)

	res, err := m.Clear(ctx, localcache.KindParts)
	require.NoError(t, err)
	assert.Equal(t, int64(5), res.Total)
	repo.AssertNumberOfCalls(t, "Clear", 1)
}

func TestCacheManager_ClearAll(t *testing.T) {
	ctx := context.Background()
	m, repo, _ := newManager()
	repo.On("Clear", ctx, mock.Anything).Return(int64(1), nil)

	res, err := m.Clear(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, int64(4), res.Total)
}

func TestCacheManager_Stats(t *testing.T) {
	ctx := context.Background()
	m, repo, _ := newManager()
	repo.On("Stats", ctx, mock.Anything, fixedNow.Add(-24*time.Hour)).Return(localcache.TableStats{Count: 2}, nil)

	report, err := m.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(86400), report.TTLSeconds)
	assert.Len(t, report.Tables, 4)
}
