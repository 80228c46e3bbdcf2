package reconciler

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/mdrrmo/fieldsync/pkg/log"
	"github.com/mdrrmo/fieldsync/pkg/metrics"
	"github.com/mdrrmo/fieldsync/pkg/types"
)

// ErrOfflineNoData reports a refresh attempted while offline with no
// cached snapshot to fall back on. In-memory state is left unchanged.
var ErrOfflineNoData = errors.New("offline and no cached data is available")

// Source identifies where a refresh result came from.
type Source string

const (
	// SourceBackend is a fresh authoritative fetch.
	SourceBackend Source = "backend"
	// SourceCache is the durable local fallback.
	SourceCache Source = "cache"
	// SourceMemory is the existing in-memory list, kept after a failure.
	SourceMemory Source = "memory"
)

// Fetcher performs the authoritative fetch of the assigned-incident list.
type Fetcher interface {
	FetchAssigned(ctx context.Context, team int64) ([]*types.Incident, error)
}

// Cache is the advisory local snapshot store.
type Cache interface {
	LoadAssigned(team int64) ([]*types.Incident, bool)
	StoreAssigned(team int64, incidents []*types.Incident)
}

// Result is the outcome of one refresh. Message is a short banner text
// describing degraded mode; it is empty for a fresh backend result so
// callers can clear any prior banner.
type Result struct {
	Incidents []*types.Incident
	Source    Source
	Message   string
}

// Reconciler owns the authoritative refresh: fetch, filter, sort, and the
// cache/memory fallback chain. It re-derives the full list from backend
// state on every successful run, so anything the instant path wrote in
// the meantime is superseded wholesale.
type Reconciler struct {
	fetcher Fetcher
	cache   Cache
	online  func() bool
	team    int64
	logger  zerolog.Logger

	mu            sync.Mutex
	lastRefreshed time.Time
}

// New creates a reconciler for the team. online is read synchronously at
// the start of every run.
func New(team int64, fetcher Fetcher, cache Cache, online func() bool) *Reconciler {
	return &Reconciler{
		fetcher: fetcher,
		cache:   cache,
		online:  online,
		team:    team,
		logger:  log.WithComponent("reconciler"),
	}
}

// LastRefreshed returns when the last successful backend refresh landed.
func (r *Reconciler) LastRefreshed() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastRefreshed
}

// Refresh runs one reconcile cycle. snapshot is the caller's current
// in-memory list, used only for the keep-existing-data fallback. A nil
// error means Result carries an adoptable list (possibly degraded, see
// Result.Message); a non-nil error means state must be left unchanged.
func (r *Reconciler) Refresh(ctx context.Context, snapshot []*types.Incident) (Result, error) {
	timer := metrics.NewTimer()
	outcome := "error"
	defer func() {
		timer.ObserveDuration(metrics.ReconcileDuration)
		metrics.ReconcileCyclesTotal.WithLabelValues(outcome).Inc()
	}()

	if !r.online() {
		if cached, ok := r.cache.LoadAssigned(r.team); ok {
			r.logger.Info().Int("incidents", len(cached)).Msg("offline, adopting cached snapshot")
			outcome = string(SourceCache)
			return Result{
				Incidents: cached,
				Source:    SourceCache,
				Message:   "You're currently offline. Using cached data.",
			}, nil
		}
		return Result{}, ErrOfflineNoData
	}

	incidents, err := r.fetcher.FetchAssigned(ctx, r.team)
	if err != nil {
		r.logger.Warn().Err(err).Msg("authoritative fetch failed")
		if len(snapshot) > 0 {
			outcome = string(SourceMemory)
			return Result{
				Incidents: snapshot,
				Source:    SourceMemory,
				Message:   "Network error. Using existing data: " + err.Error(),
			}, nil
		}
		if cached, ok := r.cache.LoadAssigned(r.team); ok {
			outcome = string(SourceCache)
			return Result{
				Incidents: cached,
				Source:    SourceCache,
				Message:   "Network error. Using cached data: " + err.Error(),
			}, nil
		}
		return Result{}, err
	}

	visible := types.FilterFinalized(incidents)
	types.SortIncidents(visible)

	r.cache.StoreAssigned(r.team, visible)
	r.mu.Lock()
	r.lastRefreshed = time.Now()
	r.mu.Unlock()

	r.logger.Debug().
		Int("fetched", len(incidents)).
		Int("visible", len(visible)).
		Msg("refresh complete")

	outcome = string(SourceBackend)
	return Result{Incidents: visible, Source: SourceBackend}, nil
}
