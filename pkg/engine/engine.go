package engine

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/mdrrmo/fieldsync/pkg/coalesce"
	"github.com/mdrrmo/fieldsync/pkg/feed"
	"github.com/mdrrmo/fieldsync/pkg/log"
	"github.com/mdrrmo/fieldsync/pkg/metrics"
	"github.com/mdrrmo/fieldsync/pkg/notify"
	"github.com/mdrrmo/fieldsync/pkg/reconciler"
	"github.com/mdrrmo/fieldsync/pkg/types"
)

// CacheStore is the engine's view of the durable local cache. All
// operations are advisory and must never fail the caller.
type CacheStore interface {
	LoadAssigned(team int64) ([]*types.Incident, bool)
	StoreAssigned(team int64, incidents []*types.Incident)
	MergeAssigned(team int64, patch types.IncidentPatch)
}

// Callbacks is the surface the engine exposes to its host. Callbacks may
// be invoked from engine goroutines; nil entries are skipped. OnError
// receives a short banner text, with the empty string meaning "clear".
type Callbacks struct {
	OnList                  func([]*types.Incident)
	OnLoading               func(bool)
	OnError                 func(string)
	OnNewDispatch           func(types.Notification)
	OnInstantIncidentUpdate func(types.IncidentPatch)
}

// Config configures one engine instance.
type Config struct {
	// Team is the local team whose assignments are synchronized.
	Team int64

	// ActorID is the local responder's user id.
	ActorID string

	Fetcher   reconciler.Fetcher
	Cache     CacheStore
	Transport feed.Transport

	// Online is the connectivity flag, read at the start of each
	// reconcile run. Nil means always online.
	Online func() bool

	// Window is the coalescing window; zero selects the default.
	Window time.Duration

	// ReconnectDelay is the fixed feed reconnect delay; zero selects the
	// default.
	ReconnectDelay time.Duration

	// Clock drives the coalescer; nil selects the system clock. Exposed
	// for deterministic tests.
	Clock coalesce.Clock

	Callbacks Callbacks
}

// Engine synchronizes one team's assigned-incident list for one session.
// All mutable state lives on the instance; create a new engine per team
// switch rather than reconfiguring a running one.
type Engine struct {
	cfg       Config
	sessionID string
	logger    zerolog.Logger

	rec     *reconciler.Reconciler
	co      *coalesce.Coalescer
	sub     *feed.Subscriber
	emitter *notify.Emitter

	cancel context.CancelFunc

	mu        sync.Mutex
	ctx       context.Context
	incidents []*types.Incident
	loading   bool
	started   bool
	closed    bool
	wg        sync.WaitGroup
}

// New validates the configuration and builds an engine. Start must be
// called before events flow.
func New(cfg Config) (*Engine, error) {
	if cfg.Team == 0 {
		return nil, errors.New("team is required")
	}
	if cfg.Fetcher == nil {
		return nil, errors.New("fetcher is required")
	}
	if cfg.Cache == nil {
		return nil, errors.New("cache is required")
	}
	if cfg.Transport == nil {
		return nil, errors.New("feed transport is required")
	}
	if cfg.Online == nil {
		cfg.Online = func() bool { return true }
	}
	if cfg.Clock == nil {
		cfg.Clock = coalesce.SystemClock()
	}

	e := &Engine{
		cfg:       cfg,
		sessionID: uuid.NewString(),
	}
	e.logger = log.WithComponent("engine").With().
		Int64("team_id", cfg.Team).
		Str("session_id", e.sessionID).
		Logger()

	e.rec = reconciler.New(cfg.Team, cfg.Fetcher, cfg.Cache, cfg.Online)
	e.co = coalesce.NewWithClock(cfg.Window, e.scheduleRefresh, cfg.Clock)
	e.emitter = notify.New(cfg.Team, e.lookupIncident, e.dispatchNotification)
	e.sub = feed.New(feed.Config{
		Transport:      cfg.Transport,
		Team:           cfg.Team,
		ActorID:        cfg.ActorID,
		TrackedIDs:     e.trackedIDs,
		Handler:        e.handleEvent,
		ReconnectDelay: cfg.ReconnectDelay,
	})
	return e, nil
}

// SessionID identifies this (team, session) subscription.
func (e *Engine) SessionID() string { return e.sessionID }

// Start adopts any cached snapshot, opens the feed subscription, and
// kicks off the initial refresh. ctx bounds the engine's lifetime.
func (e *Engine) Start(ctx context.Context) error {
	e.mu.Lock()
	if e.started {
		e.mu.Unlock()
		return errors.New("engine already started")
	}
	e.started = true
	runCtx, cancel := context.WithCancel(ctx)
	e.ctx = runCtx
	e.cancel = cancel

	// Pre-paint from cache so the first render is not blank, then let
	// the initial refresh supersede it.
	if len(e.incidents) == 0 {
		if cached, ok := e.cfg.Cache.LoadAssigned(e.cfg.Team); ok {
			e.incidents = cached
		}
	}
	list := types.CloneIncidents(e.incidents)
	e.mu.Unlock()

	if len(list) > 0 {
		e.publishList(list)
	}

	e.sub.Start(runCtx)
	e.spawn(e.runRefresh)

	e.logger.Info().Msg("engine started")
	return nil
}

// Stop tears the engine down: the feed subscription closes, any pending
// coalesced refresh is cancelled, and late async results are barred from
// mutating state. Safe to call more than once.
func (e *Engine) Stop() {
	e.mu.Lock()
	if !e.started || e.closed {
		e.mu.Unlock()
		return
	}
	e.closed = true
	e.mu.Unlock()

	e.cancel()
	e.co.Stop()
	e.sub.Stop()
	e.wg.Wait()

	e.logger.Info().Msg("engine stopped")
}

// Refresh runs an authoritative refresh immediately, bypassing the
// coalescer. It is the host-facing pull-to-refresh surface and blocks
// until the cycle completes.
func (e *Engine) Refresh() {
	e.runRefresh()
}

// Incidents returns a copy of the current visible list.
func (e *Engine) Incidents() []*types.Incident {
	e.mu.Lock()
	defer e.mu.Unlock()
	return types.CloneIncidents(e.incidents)
}

// Loading reports whether a first-load refresh is in flight.
func (e *Engine) Loading() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.loading
}

// LastRefreshed returns when the last successful backend refresh landed.
func (e *Engine) LastRefreshed() time.Time {
	return e.rec.LastRefreshed()
}

// FeedState exposes the subscription state for health reporting.
func (e *Engine) FeedState() feed.State {
	return e.sub.State()
}

func (e *Engine) isClosed() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.closed
}

// trackedIDs resolves the live relevance set. The feed calls this on
// every dispatch instead of capturing the set at subscription time.
func (e *Engine) trackedIDs() map[string]struct{} {
	e.mu.Lock()
	defer e.mu.Unlock()
	return types.IDSet(e.incidents)
}

func (e *Engine) lookupIncident(id string) (*types.Incident, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, in := range e.incidents {
		if in.ID == id {
			return in, true
		}
	}
	return nil, false
}

func (e *Engine) dispatchNotification(n types.Notification) {
	if cb := e.cfg.Callbacks.OnNewDispatch; cb != nil {
		cb(n)
	}
}

func (e *Engine) publishList(list []*types.Incident) {
	metrics.AssignedIncidents.Set(float64(len(list)))
	if cb := e.cfg.Callbacks.OnList; cb != nil {
		cb(list)
	}
}

// spawn runs fn on a tracked goroutine unless the engine is closed, so
// Stop can wait out background work instead of racing it.
func (e *Engine) spawn(fn func()) {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.wg.Add(1)
	e.mu.Unlock()
	go func() {
		defer e.wg.Done()
		fn()
	}()
}

func (e *Engine) scheduleRefresh() {
	e.spawn(e.runRefresh)
}
