package types

import (
	"encoding/json"
	"sort"
	"time"
)

// EventType represents the kind of change carried by a feed event
type EventType string

const (
	EventInsert EventType = "insert"
	EventUpdate EventType = "update"
	EventDelete EventType = "delete"
)

// Table identifies the record family a change event belongs to
type Table string

const (
	TableIncidents        Table = "incidents"
	TableFieldReports     Table = "field_reports"
	TableFinalizedReports Table = "finalized_reports"
)

// Incident is the core dispatched event entity tracked by the engine.
// Timestamps are kept as the backend's raw strings and parsed only when
// ordering the list, so unparsable values survive a round trip intact.
type Incident struct {
	ID              string       `json:"id"`
	Status          string       `json:"status"`
	Type            string       `json:"incident_type"`
	LocationAddress string       `json:"location_address,omitempty"`
	Latitude        *float64     `json:"latitude,omitempty"`
	Longitude       *float64     `json:"longitude,omitempty"`
	ReporterFirst   string       `json:"reporter_first_name,omitempty"`
	ReporterLast    string       `json:"reporter_last_name,omitempty"`
	ReporterContact string       `json:"reporter_contact,omitempty"`
	CreatedAt       string       `json:"created_at"`
	RespondedAt     *string      `json:"responded_at,omitempty"`
	ResolvedAt      *string      `json:"resolved_at,omitempty"`
	Report          *FieldReport `json:"field_report,omitempty"`
}

// FieldReport is a responder-authored record tied to one incident. Once
// FinalizedReportID is set the incident leaves the engine's visible scope.
type FieldReport struct {
	ID                int64                      `json:"id"`
	Status            string                     `json:"status"`
	Notes             string                     `json:"notes,omitempty"`
	Payloads          map[string]json.RawMessage `json:"payloads,omitempty"`
	UpdatedAt         string                     `json:"updated_at,omitempty"`
	SyncedAt          *string                    `json:"synced_at,omitempty"`
	FinalizedReportID *int64                     `json:"finalized_report_id,omitempty"`
}

// Finalized reports true when the incident's field report has been linked
// to a finalized report.
func (in *Incident) Finalized() bool {
	return in.Report != nil && in.Report.FinalizedReportID != nil
}

// ReporterName returns the reporter display name, or "Unknown reporter"
// when no name fields are present.
func (in *Incident) ReporterName() string {
	name := joinName(in.ReporterFirst, in.ReporterLast)
	if name == "" {
		return "Unknown reporter"
	}
	return name
}

func joinName(first, last string) string {
	switch {
	case first != "" && last != "":
		return first + " " + last
	case first != "":
		return first
	default:
		return last
	}
}

// sortTime resolves the ordering timestamp: responded_at when present,
// falling back to created_at. ok is false when neither parses.
func (in *Incident) sortTime() (time.Time, bool) {
	raw := in.CreatedAt
	if in.RespondedAt != nil && *in.RespondedAt != "" {
		raw = *in.RespondedAt
	}
	return parseTimestamp(raw)
}

func parseTimestamp(raw string) (time.Time, bool) {
	if raw == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// SortIncidents orders the list in place, newest first by responded_at
// falling back to created_at. Entries whose timestamp does not parse sort
// last; ties keep their relative order.
func SortIncidents(list []*Incident) {
	sort.SliceStable(list, func(i, j int) bool {
		ti, oki := list[i].sortTime()
		tj, okj := list[j].sortTime()
		if !oki && !okj {
			return false
		}
		if !oki {
			return false
		}
		if !okj {
			return true
		}
		return ti.After(tj)
	})
}

// FilterFinalized returns the entries whose field report has not been
// linked to a finalized report.
func FilterFinalized(list []*Incident) []*Incident {
	out := make([]*Incident, 0, len(list))
	for _, in := range list {
		if in.Finalized() {
			continue
		}
		out = append(out, in)
	}
	return out
}

// IDSet returns the set of incident ids currently in the list.
func IDSet(list []*Incident) map[string]struct{} {
	ids := make(map[string]struct{}, len(list))
	for _, in := range list {
		ids[in.ID] = struct{}{}
	}
	return ids
}

// CloneIncidents returns a shallow copy of the list. Entries are shared;
// callers that hand the copy across a goroutine boundary must not mutate
// them.
func CloneIncidents(list []*Incident) []*Incident {
	out := make([]*Incident, len(list))
	copy(out, list)
	return out
}
