package reconciler

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mdrrmo/fieldsync/pkg/types"
)

func int64p(v int64) *int64 { return &v }

type fakeFetcher struct {
	incidents []*types.Incident
	err       error
	calls     int
}

func (f *fakeFetcher) FetchAssigned(ctx context.Context, team int64) ([]*types.Incident, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.incidents, nil
}

type fakeCache struct {
	incidents []*types.Incident
	hit       bool
	stored    []*types.Incident
	storeTeam int64
}

func (c *fakeCache) LoadAssigned(team int64) ([]*types.Incident, bool) {
	return c.incidents, c.hit
}

func (c *fakeCache) StoreAssigned(team int64, incidents []*types.Incident) {
	c.storeTeam = team
	c.stored = incidents
}

func online() bool  { return true }
func offline() bool { return false }

// TestRefreshOfflineWithCache tests that an offline refresh adopts the
// cached snapshot without touching the network
func TestRefreshOfflineWithCache(t *testing.T) {
	fetcher := &fakeFetcher{}
	cache := &fakeCache{
		incidents: []*types.Incident{{ID: "inc-1"}},
		hit:       true,
	}
	r := New(7, fetcher, cache, offline)

	result, err := r.Refresh(context.Background(), nil)

	require.NoError(t, err)
	assert.Equal(t, SourceCache, result.Source)
	assert.Len(t, result.Incidents, 1)
	assert.Equal(t, "You're currently offline. Using cached data.", result.Message)
	assert.Equal(t, 0, fetcher.calls)
}

// TestRefreshOfflineNoCache tests the hard-failure path when offline
// with nothing cached
func TestRefreshOfflineNoCache(t *testing.T) {
	fetcher := &fakeFetcher{}
	r := New(7, fetcher, &fakeCache{}, offline)

	_, err := r.Refresh(context.Background(), nil)

	assert.ErrorIs(t, err, ErrOfflineNoData)
	assert.Equal(t, 0, fetcher.calls)
}

// TestRefreshSuccess tests the authoritative path: filter, sort, and
// cache write-through
func TestRefreshSuccess(t *testing.T) {
	fetcher := &fakeFetcher{
		incidents: []*types.Incident{
			{ID: "old", CreatedAt: "2026-08-01T10:00:00Z"},
			{ID: "linked", CreatedAt: "2026-08-02T10:00:00Z", Report: &types.FieldReport{ID: 1, FinalizedReportID: int64p(5)}},
			{ID: "new", CreatedAt: "2026-08-03T10:00:00Z"},
		},
	}
	cache := &fakeCache{}
	r := New(7, fetcher, cache, online)

	result, err := r.Refresh(context.Background(), nil)

	require.NoError(t, err)
	assert.Equal(t, SourceBackend, result.Source)
	assert.Empty(t, result.Message)

	require.Len(t, result.Incidents, 2)
	assert.Equal(t, "new", result.Incidents[0].ID)
	assert.Equal(t, "old", result.Incidents[1].ID)

	assert.Equal(t, int64(7), cache.storeTeam)
	assert.Equal(t, result.Incidents, cache.stored)
	assert.False(t, r.LastRefreshed().IsZero())
}

// TestRefreshFetchFailedKeepsSnapshot tests that a failed fetch keeps
// the caller's in-memory list
func TestRefreshFetchFailedKeepsSnapshot(t *testing.T) {
	fetcher := &fakeFetcher{err: errors.New("connection refused")}
	r := New(7, fetcher, &fakeCache{}, online)

	snapshot := []*types.Incident{{ID: "inc-1"}}
	result, err := r.Refresh(context.Background(), snapshot)

	require.NoError(t, err)
	assert.Equal(t, SourceMemory, result.Source)
	assert.Equal(t, snapshot, result.Incidents)
	assert.Equal(t, "Network error. Using existing data: connection refused", result.Message)
}

// TestRefreshFetchFailedFallsBackToCache tests the cache fallback when
// the in-memory list is empty
func TestRefreshFetchFailedFallsBackToCache(t *testing.T) {
	fetcher := &fakeFetcher{err: errors.New("connection refused")}
	cache := &fakeCache{
		incidents: []*types.Incident{{ID: "cached"}},
		hit:       true,
	}
	r := New(7, fetcher, cache, online)

	result, err := r.Refresh(context.Background(), nil)

	require.NoError(t, err)
	assert.Equal(t, SourceCache, result.Source)
	assert.Equal(t, "cached", result.Incidents[0].ID)
	assert.Equal(t, "Network error. Using cached data: connection refused", result.Message)
}

// TestRefreshFetchFailedNoFallback tests the hard error when every
// fallback is exhausted
func TestRefreshFetchFailedNoFallback(t *testing.T) {
	fetchErr := errors.New("connection refused")
	r := New(7, &fakeFetcher{err: fetchErr}, &fakeCache{}, online)

	_, err := r.Refresh(context.Background(), nil)

	assert.ErrorIs(t, err, fetchErr)
	assert.True(t, r.LastRefreshed().IsZero())
}

// TestRefreshSupersedesInstantWrites tests last-write-wins: a successful
// refresh replaces the list wholesale, including entries the instant
// path added that the backend does not know
func TestRefreshSupersedesInstantWrites(t *testing.T) {
	fetcher := &fakeFetcher{
		incidents: []*types.Incident{{ID: "authoritative", CreatedAt: "2026-08-03T10:00:00Z"}},
	}
	r := New(7, fetcher, &fakeCache{}, online)

	snapshot := []*types.Incident{
		{ID: "instant-only", CreatedAt: "2026-08-04T10:00:00Z", Status: "responding"},
	}
	result, err := r.Refresh(context.Background(), snapshot)

	require.NoError(t, err)
	require.Len(t, result.Incidents, 1)
	assert.Equal(t, "authoritative", result.Incidents[0].ID)
}
