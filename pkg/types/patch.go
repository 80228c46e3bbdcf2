package types

// IncidentPatch is a partial incident keyed by id. Nil fields are absent
// from the patch and leave the target untouched; applying the same patch
// twice yields the same result as applying it once.
type IncidentPatch struct {
	ID              string   `json:"id"`
	Status          *string  `json:"status,omitempty"`
	Type            *string  `json:"incident_type,omitempty"`
	LocationAddress *string  `json:"location_address,omitempty"`
	Latitude        *float64 `json:"latitude,omitempty"`
	Longitude       *float64 `json:"longitude,omitempty"`
	ReporterFirst   *string  `json:"reporter_first_name,omitempty"`
	ReporterLast    *string  `json:"reporter_last_name,omitempty"`
	ReporterContact *string  `json:"reporter_contact,omitempty"`
	CreatedAt       *string  `json:"created_at,omitempty"`
	RespondedAt     *string  `json:"responded_at,omitempty"`
	ResolvedAt      *string  `json:"resolved_at,omitempty"`
}

// Apply shallow-merges the patch into the incident.
func (p IncidentPatch) Apply(in *Incident) {
	if p.Status != nil {
		in.Status = *p.Status
	}
	if p.Type != nil {
		in.Type = *p.Type
	}
	if p.LocationAddress != nil {
		in.LocationAddress = *p.LocationAddress
	}
	if p.Latitude != nil {
		in.Latitude = p.Latitude
	}
	if p.Longitude != nil {
		in.Longitude = p.Longitude
	}
	if p.ReporterFirst != nil {
		in.ReporterFirst = *p.ReporterFirst
	}
	if p.ReporterLast != nil {
		in.ReporterLast = *p.ReporterLast
	}
	if p.ReporterContact != nil {
		in.ReporterContact = *p.ReporterContact
	}
	if p.CreatedAt != nil {
		in.CreatedAt = *p.CreatedAt
	}
	if p.RespondedAt != nil {
		in.RespondedAt = p.RespondedAt
	}
	if p.ResolvedAt != nil {
		in.ResolvedAt = p.ResolvedAt
	}
}

// Insertable reports whether the patch carries enough fields to stand in
// as a full new entry: an id, an incident type, and a created_at so it can
// take a position under the list ordering.
func (p IncidentPatch) Insertable() bool {
	return p.ID != "" &&
		p.Type != nil && *p.Type != "" &&
		p.CreatedAt != nil && *p.CreatedAt != ""
}

// NewIncident materializes the patch as a full incident. Callers must
// check Insertable first. Status defaults to pending when absent.
func (p IncidentPatch) NewIncident() *Incident {
	in := &Incident{ID: p.ID, Status: "pending"}
	p.Apply(in)
	return in
}
