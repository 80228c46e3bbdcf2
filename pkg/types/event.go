package types

import "encoding/json"

// ChangeEvent is one entry from the change-data-capture stream. Old and
// New carry the raw row snapshots; they are decoded on demand per table
// because the three record families have different shapes.
type ChangeEvent struct {
	Type  EventType       `json:"eventType"`
	Table Table           `json:"table"`
	Old   json.RawMessage `json:"old,omitempty"`
	New   json.RawMessage `json:"new,omitempty"`
}

// IncidentRow is an incidents-table snapshot as carried on the wire.
// TeamID is the assignment reference; nil means unassigned.
type IncidentRow struct {
	ID              string   `json:"id"`
	TeamID          *int64   `json:"team_id"`
	Status          string   `json:"status"`
	Type            string   `json:"incident_type"`
	LocationAddress string   `json:"location_address"`
	Latitude        *float64 `json:"latitude"`
	Longitude       *float64 `json:"longitude"`
	ReporterFirst   string   `json:"reporter_first_name"`
	ReporterLast    string   `json:"reporter_last_name"`
	ReporterContact string   `json:"reporter_contact"`
	CreatedAt       string   `json:"created_at"`
	RespondedAt     *string  `json:"responded_at"`
	ResolvedAt      *string  `json:"resolved_at"`
}

// FieldReportRow is a field_reports-table snapshot.
type FieldReportRow struct {
	ID          int64  `json:"id"`
	IncidentID  string `json:"incident_id"`
	SubmittedBy string `json:"submitted_by"`
	Status      string `json:"status"`
	UpdatedAt   string `json:"updated_at"`
}

// FinalizedReportRow is a finalized_reports-table snapshot. SourceIncidentID
// references the incident the finalized report was produced from.
type FinalizedReportRow struct {
	ID               int64  `json:"id"`
	SourceIncidentID string `json:"source_incident_id"`
}

// IncidentRows decodes the event's snapshots as incident rows. A snapshot
// that is absent or does not decode yields nil.
func (e ChangeEvent) IncidentRows() (oldRow, newRow *IncidentRow) {
	oldRow = decodeRow[IncidentRow](e.Old)
	newRow = decodeRow[IncidentRow](e.New)
	return oldRow, newRow
}

// FieldReportRows decodes the event's snapshots as field-report rows.
func (e ChangeEvent) FieldReportRows() (oldRow, newRow *FieldReportRow) {
	oldRow = decodeRow[FieldReportRow](e.Old)
	newRow = decodeRow[FieldReportRow](e.New)
	return oldRow, newRow
}

// FinalizedReportRows decodes the event's snapshots as finalized-report rows.
func (e ChangeEvent) FinalizedReportRows() (oldRow, newRow *FinalizedReportRow) {
	oldRow = decodeRow[FinalizedReportRow](e.Old)
	newRow = decodeRow[FinalizedReportRow](e.New)
	return oldRow, newRow
}

func decodeRow[T any](raw json.RawMessage) *T {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	var row T
	if err := json.Unmarshal(raw, &row); err != nil {
		return nil
	}
	return &row
}

// AssignedTo reports whether the row references the given team.
func (r *IncidentRow) AssignedTo(team int64) bool {
	return r != nil && r.TeamID != nil && *r.TeamID == team
}

// Patch converts the row into an instant patch carrying every field the
// snapshot provides.
func (r *IncidentRow) Patch() IncidentPatch {
	status := r.Status
	if status == "" {
		status = "pending"
	}
	return IncidentPatch{
		ID:              r.ID,
		Status:          &status,
		Type:            strPtr(r.Type),
		LocationAddress: strPtr(r.LocationAddress),
		Latitude:        r.Latitude,
		Longitude:       r.Longitude,
		ReporterFirst:   strPtr(r.ReporterFirst),
		ReporterLast:    strPtr(r.ReporterLast),
		ReporterContact: strPtr(r.ReporterContact),
		CreatedAt:       strPtr(r.CreatedAt),
		RespondedAt:     r.RespondedAt,
		ResolvedAt:      r.ResolvedAt,
	}
}

// StatusPatch converts the row into a minimal patch for an already-tracked
// incident: status plus the two lifecycle timestamps.
func (r *IncidentRow) StatusPatch() IncidentPatch {
	return IncidentPatch{
		ID:          r.ID,
		Status:      strPtr(r.Status),
		RespondedAt: r.RespondedAt,
		ResolvedAt:  r.ResolvedAt,
	}
}

func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
