package types

import "time"

// NotificationKind classifies a derived dispatch event
type NotificationKind string

const (
	// NotificationAssignment fires when an incident or field report is
	// newly dispatched to the local team
	NotificationAssignment NotificationKind = "assignment"

	// NotificationStatusChange fires when a tracked record's status moves
	// to a non-terminal value
	NotificationStatusChange NotificationKind = "status_change"
)

// Notification is a pure projection of a feed event for the alerting
// layer. ID is synthetic (source id plus emission time) to aid downstream
// de-duplication.
type Notification struct {
	ID              string           `json:"id"`
	Kind            NotificationKind `json:"kind"`
	IncidentID      string           `json:"incident_id"`
	TeamID          int64            `json:"team_id"`
	FieldReportID   *int64           `json:"field_report_id,omitempty"`
	ReporterName    string           `json:"reporter_name"`
	IncidentType    string           `json:"incident_type,omitempty"`
	LocationAddress string           `json:"location_address,omitempty"`
	ReportedAt      string           `json:"reported_at,omitempty"`
	RespondedAt     *string          `json:"responded_at,omitempty"`
	OldStatus       *string          `json:"old_status,omitempty"`
	NewStatus       string           `json:"new_status,omitempty"`
	PreviousTeamID  *int64           `json:"previous_team_id,omitempty"`
	EmittedAt       time.Time        `json:"emitted_at"`
}
