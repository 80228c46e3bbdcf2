package notify

import (
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/mdrrmo/fieldsync/pkg/log"
	"github.com/mdrrmo/fieldsync/pkg/metrics"
	"github.com/mdrrmo/fieldsync/pkg/types"
)

// terminalStatuses never produce a status-change notification; resolution
// is not news to the responder who resolved it.
var terminalStatuses = map[string]struct{}{
	"resolved":  {},
	"completed": {},
}

func terminal(status string) bool {
	_, ok := terminalStatuses[strings.ToLower(status)]
	return ok
}

// Sink receives emitted notifications.
type Sink func(types.Notification)

// Lookup resolves a tracked incident by id for enriching report-level
// notifications. ok is false when the id is not in the visible list.
type Lookup func(id string) (*types.Incident, bool)

// Emitter projects relevant feed events into classified notifications.
// It never mutates engine state.
type Emitter struct {
	team   int64
	lookup Lookup
	sink   Sink
	logger zerolog.Logger
	now    func() time.Time
}

// New creates an emitter for the local team. A nil sink disables emission
// but diff classification (and its metrics) still runs.
func New(team int64, lookup Lookup, sink Sink) *Emitter {
	return &Emitter{
		team:   team,
		lookup: lookup,
		sink:   sink,
		logger: log.WithComponent("notify"),
		now:    time.Now,
	}
}

// Process classifies one relevant feed event. It runs for every relevant
// event regardless of which path updates state.
func (e *Emitter) Process(ev types.ChangeEvent) {
	switch ev.Table {
	case types.TableIncidents:
		e.processIncident(ev)
	case types.TableFieldReports:
		e.processFieldReport(ev)
	}
	// finalized_reports events remove incidents from scope; nothing to
	// announce.
}

func (e *Emitter) processIncident(ev types.ChangeEvent) {
	oldRow, newRow := ev.IncidentRows()
	if newRow == nil || newRow.ID == "" {
		return
	}

	// A diff whose only material change is resolved_at flipping from
	// absent to present is noise, even when a status rule would match.
	if resolvedAtFilled(oldRow, newRow) {
		metrics.NotificationsSuppressedTotal.Inc()
		e.logger.Debug().Str("incident_id", newRow.ID).Msg("suppressed resolution-only change")
		return
	}

	assigned := newRow.AssignedTo(e.team)
	wasAssigned := oldRow.AssignedTo(e.team)

	var kind types.NotificationKind
	switch {
	case assigned && !wasAssigned:
		kind = types.NotificationAssignment
	case assigned && oldRow != nil && newRow.Status != oldRow.Status && !terminal(newRow.Status):
		kind = types.NotificationStatusChange
	default:
		return
	}

	n := types.Notification{
		ID:              syntheticID("incident", newRow.ID, e.now()),
		Kind:            kind,
		IncidentID:      newRow.ID,
		TeamID:          e.team,
		ReporterName:    reporterName(newRow),
		IncidentType:    newRow.Type,
		LocationAddress: newRow.LocationAddress,
		ReportedAt:      newRow.CreatedAt,
		RespondedAt:     newRow.RespondedAt,
		NewStatus:       newRow.Status,
		EmittedAt:       e.now(),
	}
	if oldRow != nil {
		n.OldStatus = &oldRow.Status
		n.PreviousTeamID = oldRow.TeamID
	}
	e.emit(n)
}

func (e *Emitter) processFieldReport(ev types.ChangeEvent) {
	oldRow, newRow := ev.FieldReportRows()
	if newRow == nil || newRow.IncidentID == "" {
		return
	}
	incident, ok := e.lookup(newRow.IncidentID)
	if !ok {
		return
	}

	var kind types.NotificationKind
	switch {
	case ev.Type == types.EventInsert:
		kind = types.NotificationAssignment
	case ev.Type == types.EventUpdate && oldRow != nil && newRow.Status != oldRow.Status && !terminal(newRow.Status):
		kind = types.NotificationStatusChange
	default:
		return
	}

	n := types.Notification{
		ID:              syntheticID("report", fmt.Sprint(newRow.ID), e.now()),
		Kind:            kind,
		IncidentID:      newRow.IncidentID,
		TeamID:          e.team,
		FieldReportID:   &newRow.ID,
		ReporterName:    incident.ReporterName(),
		IncidentType:    incident.Type,
		LocationAddress: incident.LocationAddress,
		ReportedAt:      incident.CreatedAt,
		RespondedAt:     incident.RespondedAt,
		NewStatus:       newRow.Status,
		EmittedAt:       e.now(),
	}
	if oldRow != nil {
		n.OldStatus = &oldRow.Status
	}
	e.emit(n)
}

func (e *Emitter) emit(n types.Notification) {
	metrics.NotificationsTotal.WithLabelValues(string(n.Kind)).Inc()
	e.logger.Info().
		Str("kind", string(n.Kind)).
		Str("incident_id", n.IncidentID).
		Str("status", n.NewStatus).
		Msg("notification emitted")
	if e.sink != nil {
		e.sink(n)
	}
}

// syntheticID derives a stable id from the source record and emission
// time so downstream consumers can de-duplicate.
func syntheticID(source, id string, at time.Time) string {
	return fmt.Sprintf("%s-%s-%d", source, id, at.UnixMilli())
}

func resolvedAtFilled(oldRow, newRow *types.IncidentRow) bool {
	if newRow.ResolvedAt == nil || *newRow.ResolvedAt == "" {
		return false
	}
	return oldRow == nil || oldRow.ResolvedAt == nil || *oldRow.ResolvedAt == ""
}

func reporterName(row *types.IncidentRow) string {
	name := strings.TrimSpace(strings.TrimSpace(row.ReporterFirst) + " " + strings.TrimSpace(row.ReporterLast))
	if name == "" {
		return "Unknown reporter"
	}
	return name
}
