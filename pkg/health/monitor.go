package health

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/mdrrmo/fieldsync/pkg/log"
)

// Monitor polls a Checker and exposes the latest online/offline verdict.
// The engine reads Online synchronously at the start of each reconcile
// run; it never blocks on a probe.
type Monitor struct {
	checker  Checker
	interval time.Duration
	online   atomic.Bool
	stopCh   chan struct{}
	done     chan struct{}
	logger   zerolog.Logger
}

// NewMonitor creates a monitor polling the checker at the given interval.
// The monitor assumes online until the first probe completes.
func NewMonitor(checker Checker, interval time.Duration) *Monitor {
	if interval <= 0 {
		interval = 15 * time.Second
	}
	m := &Monitor{
		checker:  checker,
		interval: interval,
		stopCh:   make(chan struct{}),
		done:     make(chan struct{}),
		logger:   log.WithComponent("connectivity"),
	}
	m.online.Store(true)
	return m
}

// Start begins the polling loop
func (m *Monitor) Start() {
	go m.run()
}

// Stop stops the polling loop
func (m *Monitor) Stop() {
	close(m.stopCh)
	<-m.done
}

// Online returns the latest connectivity verdict
func (m *Monitor) Online() bool {
	return m.online.Load()
}

func (m *Monitor) run() {
	defer close(m.done)

	m.probe()

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			m.probe()
		case <-m.stopCh:
			return
		}
	}
}

func (m *Monitor) probe() {
	ctx, cancel := context.WithTimeout(context.Background(), m.interval)
	defer cancel()

	result := m.checker.Check(ctx)
	previous := m.online.Swap(result.Reachable)
	if previous != result.Reachable {
		m.logger.Info().
			Bool("online", result.Reachable).
			Str("detail", result.Message).
			Msg("connectivity changed")
	}
}
