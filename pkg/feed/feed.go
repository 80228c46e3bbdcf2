package feed

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/mdrrmo/fieldsync/pkg/log"
	"github.com/mdrrmo/fieldsync/pkg/metrics"
	"github.com/mdrrmo/fieldsync/pkg/types"
)

// State is the subscriber's connection state
type State string

const (
	StateDisconnected State = "disconnected"
	StateConnecting   State = "connecting"
	StateSubscribed   State = "subscribed"
	StateReconnecting State = "reconnecting"
)

// DefaultReconnectDelay is the fixed delay between reconnect attempts.
// Retry is indefinite at this interval; the dial is cheap and Stop tears
// the loop down, so there is no growth to bound.
const DefaultReconnectDelay = 10 * time.Second

// Handler receives events the classifier judged relevant to the local
// team.
type Handler func(ev types.ChangeEvent)

// Config configures a Subscriber.
type Config struct {
	Transport Transport

	// Team is the local team reference events are classified against.
	Team int64

	// ActorID is the local responder's user id, matched against
	// field-report ownership.
	ActorID string

	// TrackedIDs returns the ids currently in the visible list. It is
	// called at dispatch time for every event so classification always
	// sees live state, never a stale capture.
	TrackedIDs func() map[string]struct{}

	Handler        Handler
	ReconnectDelay time.Duration
	Logger         *zerolog.Logger
}

// Subscriber maintains the long-lived change-feed subscription and
// classifies each event's relevance before handing it on.
type Subscriber struct {
	cfg    Config
	logger zerolog.Logger

	mu     sync.Mutex
	state  State
	cancel context.CancelFunc
	done   chan struct{}
}

// New creates a subscriber in the Disconnected state.
func New(cfg Config) *Subscriber {
	if cfg.ReconnectDelay <= 0 {
		cfg.ReconnectDelay = DefaultReconnectDelay
	}
	logger := log.WithComponent("feed")
	if cfg.Logger != nil {
		logger = *cfg.Logger
	}
	return &Subscriber{
		cfg:    cfg,
		logger: logger,
		state:  StateDisconnected,
	}
}

// State returns the current connection state.
func (s *Subscriber) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Subscriber) setState(state State) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
	s.logger.Debug().Str("state", string(state)).Msg("feed state changed")
}

// Start begins the subscription loop. Calling Start on a running
// subscriber is a no-op.
func (s *Subscriber) Start(ctx context.Context) {
	s.mu.Lock()
	if s.cancel != nil {
		s.mu.Unlock()
		return
	}
	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})
	s.mu.Unlock()

	go s.run(runCtx)
}

// Stop tears the subscription down and releases its resources. The
// subscriber ends in the Disconnected state.
func (s *Subscriber) Stop() {
	s.mu.Lock()
	cancel := s.cancel
	done := s.done
	s.cancel = nil
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (s *Subscriber) run(ctx context.Context) {
	defer close(s.done)
	defer s.setState(StateDisconnected)

	for {
		s.setState(StateConnecting)
		conn, err := s.cfg.Transport.Dial(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			s.logger.Warn().Err(err).Msg("feed dial failed")
			if !s.backoff(ctx) {
				return
			}
			continue
		}

		s.setState(StateSubscribed)
		s.logger.Info().Msg("subscribed to change feed")

		if !s.readLoop(ctx, conn) {
			return
		}
		if !s.backoff(ctx) {
			return
		}
	}
}

// readLoop consumes events until the connection fails. It returns false
// when the subscriber should exit instead of reconnecting.
func (s *Subscriber) readLoop(ctx context.Context, conn Conn) bool {
	defer conn.Close()

	for {
		ev, err := conn.ReadEvent(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return false
			}
			// Transport errors never surface to the user; the cost is
			// staleness until the resubscribe lands.
			s.logger.Warn().Err(err).Msg("feed read failed")
			return true
		}
		s.dispatch(ev)
	}
}

func (s *Subscriber) backoff(ctx context.Context) bool {
	s.setState(StateReconnecting)
	metrics.FeedReconnectsTotal.Inc()

	timer := time.NewTimer(s.cfg.ReconnectDelay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

func (s *Subscriber) dispatch(ev types.ChangeEvent) {
	if !s.relevant(ev) {
		metrics.FeedEventsTotal.WithLabelValues(string(ev.Table), "false").Inc()
		return
	}
	metrics.FeedEventsTotal.WithLabelValues(string(ev.Table), "true").Inc()
	s.cfg.Handler(ev)
}

// relevant applies the per-table classification rules. Events missing a
// usable id are dropped without side effects.
func (s *Subscriber) relevant(ev types.ChangeEvent) bool {
	switch ev.Table {
	case types.TableIncidents:
		oldRow, newRow := ev.IncidentRows()
		if rowID(oldRow, newRow) == "" {
			return false
		}
		// Covers both assignment (new side) and unassignment (old side).
		return newRow.AssignedTo(s.cfg.Team) || oldRow.AssignedTo(s.cfg.Team)

	case types.TableFieldReports:
		oldRow, newRow := ev.FieldReportRows()
		if oldRow == nil && newRow == nil {
			return false
		}
		tracked := s.cfg.TrackedIDs()
		for _, row := range []*types.FieldReportRow{newRow, oldRow} {
			if row == nil {
				continue
			}
			if row.SubmittedBy != "" && row.SubmittedBy == s.cfg.ActorID {
				return true
			}
			if _, ok := tracked[row.IncidentID]; ok && row.IncidentID != "" {
				return true
			}
		}
		return false

	case types.TableFinalizedReports:
		oldRow, newRow := ev.FinalizedReportRows()
		tracked := s.cfg.TrackedIDs()
		for _, row := range []*types.FinalizedReportRow{newRow, oldRow} {
			if row == nil || row.SourceIncidentID == "" {
				continue
			}
			if _, ok := tracked[row.SourceIncidentID]; ok {
				return true
			}
		}
		return false
	}
	return false
}

func rowID(oldRow, newRow *types.IncidentRow) string {
	if newRow != nil && newRow.ID != "" {
		return newRow.ID
	}
	if oldRow != nil {
		return oldRow.ID
	}
	return ""
}
