package engine

import (
	"github.com/mdrrmo/fieldsync/pkg/types"
)

// runRefresh executes one reconcile cycle and adopts the result. The
// loading signal is raised only when the visible list is empty (first
// load) and is always cleared afterwards, success or failure. If the
// engine was torn down mid-flight no further callbacks fire at all.
func (e *Engine) runRefresh() {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	ctx := e.ctx
	snapshot := types.CloneIncidents(e.incidents)
	first := len(snapshot) == 0
	if first {
		e.loading = true
	}
	e.mu.Unlock()

	if first {
		if cb := e.cfg.Callbacks.OnLoading; cb != nil {
			cb(true)
		}
	}

	result, err := e.rec.Refresh(ctx, snapshot)

	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.loading = false
	var list []*types.Incident
	if err == nil {
		e.incidents = result.Incidents
		list = types.CloneIncidents(e.incidents)
	}
	e.mu.Unlock()

	if cb := e.cfg.Callbacks.OnLoading; cb != nil {
		cb(false)
	}

	if err != nil {
		e.logger.Warn().Err(err).Msg("refresh failed with no adoptable data")
		if cb := e.cfg.Callbacks.OnError; cb != nil {
			cb(err.Error())
		}
		return
	}

	e.publishList(list)
	if cb := e.cfg.Callbacks.OnError; cb != nil {
		// Non-empty for degraded results; empty clears the banner.
		cb(result.Message)
	}
}
