package engine

import (
	"github.com/mdrrmo/fieldsync/pkg/metrics"
	"github.com/mdrrmo/fieldsync/pkg/types"
)

// handleEvent routes one relevant feed event. Notification projection
// runs first and unconditionally; state updates then take either the
// instant path or the coalesced path depending on the event.
func (e *Engine) handleEvent(ev types.ChangeEvent) {
	if e.isClosed() {
		return
	}

	e.emitter.Process(ev)

	switch ev.Table {
	case types.TableIncidents:
		e.handleIncidentEvent(ev)
	case types.TableFieldReports, types.TableFinalizedReports:
		// Report-level changes (including finalization, which removes an
		// incident from scope) always re-derive through a full refresh.
		e.co.Trigger()
	}
}

func (e *Engine) handleIncidentEvent(ev types.ChangeEvent) {
	oldRow, newRow := ev.IncidentRows()

	// A diff that only fills resolved_at changes nothing visible until
	// the next authoritative refresh.
	if resolvedJustSet(oldRow, newRow) {
		return
	}

	switch {
	case newRow.AssignedTo(e.cfg.Team) && !oldRow.AssignedTo(e.cfg.Team):
		// Fresh assignment takes the instant path: the CDC row carries
		// the full snapshot, so the patch can stand in until the next
		// authoritative refresh.
		e.ApplyPatch(newRow.Patch())
	case newRow.AssignedTo(e.cfg.Team):
		// Already tracked; merge the lifecycle fields in place.
		e.ApplyPatch(newRow.StatusPatch())
	case oldRow.AssignedTo(e.cfg.Team):
		// Reassigned away or deleted; only an authoritative refresh can
		// confirm what remains visible.
		e.co.Trigger()
	}
}

func resolvedJustSet(oldRow, newRow *types.IncidentRow) bool {
	if newRow == nil || newRow.ResolvedAt == nil || *newRow.ResolvedAt == "" {
		return false
	}
	return oldRow == nil || oldRow.ResolvedAt == nil || *oldRow.ResolvedAt == ""
}

// ApplyPatch is the instant patch applier. An existing entry gets the
// patch shallow-merged in place; an unknown id is prepended only when the
// patch qualifies as a full new entry. The sort invariant is re-applied
// after every mutation, and the merge is mirrored into the cache on a
// detached background task that cannot fail or block this path.
func (e *Engine) ApplyPatch(patch types.IncidentPatch) {
	if patch.ID == "" {
		return
	}

	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	idx := -1
	for i, in := range e.incidents {
		if in.ID == patch.ID {
			idx = i
			break
		}
	}
	if idx == -1 {
		if !patch.Insertable() {
			e.mu.Unlock()
			e.logger.Debug().Str("incident_id", patch.ID).Msg("dropped non-insertable patch for untracked incident")
			return
		}
		e.incidents = append([]*types.Incident{patch.NewIncident()}, e.incidents...)
	} else {
		patch.Apply(e.incidents[idx])
	}
	types.SortIncidents(e.incidents)
	list := types.CloneIncidents(e.incidents)
	e.mu.Unlock()

	metrics.InstantPatchesTotal.Inc()
	e.logger.Debug().Str("incident_id", patch.ID).Bool("inserted", idx == -1).Msg("instant patch applied")

	if cb := e.cfg.Callbacks.OnInstantIncidentUpdate; cb != nil {
		cb(patch)
	}
	e.publishList(list)

	e.spawn(func() {
		e.cfg.Cache.MergeAssigned(e.cfg.Team, patch)
	})
}
