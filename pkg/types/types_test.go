package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func strp(s string) *string { return &s }

func int64p(v int64) *int64 { return &v }

// TestSortIncidents tests list ordering by responded_at falling back to
// created_at, newest first
func TestSortIncidents(t *testing.T) {
	tests := []struct {
		name  string
		input []*Incident
		want  []string
	}{
		{
			name: "orders by created_at newest first",
			input: []*Incident{
				{ID: "a", CreatedAt: "2026-08-01T10:00:00Z"},
				{ID: "b", CreatedAt: "2026-08-03T10:00:00Z"},
				{ID: "c", CreatedAt: "2026-08-02T10:00:00Z"},
			},
			want: []string{"b", "c", "a"},
		},
		{
			name: "responded_at takes precedence over created_at",
			input: []*Incident{
				{ID: "a", CreatedAt: "2026-08-05T10:00:00Z"},
				{ID: "b", CreatedAt: "2026-08-01T10:00:00Z", RespondedAt: strp("2026-08-06T10:00:00Z")},
			},
			want: []string{"b", "a"},
		},
		{
			name: "empty responded_at falls back to created_at",
			input: []*Incident{
				{ID: "a", CreatedAt: "2026-08-05T10:00:00Z", RespondedAt: strp("")},
				{ID: "b", CreatedAt: "2026-08-04T10:00:00Z"},
			},
			want: []string{"a", "b"},
		},
		{
			name: "unparsable timestamps sort last",
			input: []*Incident{
				{ID: "a", CreatedAt: "not-a-timestamp"},
				{ID: "b", CreatedAt: "2026-08-01T10:00:00Z"},
				{ID: "c", CreatedAt: ""},
			},
			want: []string{"b", "a", "c"},
		},
		{
			name: "unparsable entries keep relative order",
			input: []*Incident{
				{ID: "a", CreatedAt: "garbage"},
				{ID: "b", CreatedAt: "also-garbage"},
				{ID: "c", CreatedAt: "2026-08-01T10:00:00Z"},
			},
			want: []string{"c", "a", "b"},
		},
		{
			name:  "empty list",
			input: []*Incident{},
			want:  []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			SortIncidents(tt.input)
			got := make([]string, 0, len(tt.input))
			for _, in := range tt.input {
				got = append(got, in.ID)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

// TestSortIncidentsIdempotent tests that re-sorting a sorted list does
// not reorder it
func TestSortIncidentsIdempotent(t *testing.T) {
	list := []*Incident{
		{ID: "a", CreatedAt: "2026-08-03T10:00:00Z"},
		{ID: "b", CreatedAt: "2026-08-02T10:00:00Z"},
		{ID: "c", CreatedAt: "bad"},
	}
	SortIncidents(list)
	first := make([]string, len(list))
	for i, in := range list {
		first[i] = in.ID
	}

	SortIncidents(list)
	second := make([]string, len(list))
	for i, in := range list {
		second[i] = in.ID
	}

	assert.Equal(t, first, second)
}

// TestFilterFinalized tests removal of incidents with a finalized report link
func TestFilterFinalized(t *testing.T) {
	list := []*Incident{
		{ID: "open"},
		{ID: "linked", Report: &FieldReport{ID: 1, FinalizedReportID: int64p(9)}},
		{ID: "report-no-link", Report: &FieldReport{ID: 2}},
	}

	visible := FilterFinalized(list)

	assert.Len(t, visible, 2)
	assert.Equal(t, "open", visible[0].ID)
	assert.Equal(t, "report-no-link", visible[1].ID)
}

// TestReporterName tests reporter display name resolution
func TestReporterName(t *testing.T) {
	tests := []struct {
		name     string
		incident Incident
		want     string
	}{
		{
			name:     "first and last",
			incident: Incident{ReporterFirst: "Juan", ReporterLast: "Dela Cruz"},
			want:     "Juan Dela Cruz",
		},
		{
			name:     "first only",
			incident: Incident{ReporterFirst: "Juan"},
			want:     "Juan",
		},
		{
			name:     "last only",
			incident: Incident{ReporterLast: "Dela Cruz"},
			want:     "Dela Cruz",
		},
		{
			name:     "no name fields",
			incident: Incident{},
			want:     "Unknown reporter",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.incident.ReporterName())
		})
	}
}

// TestIDSet tests id set derivation
func TestIDSet(t *testing.T) {
	ids := IDSet([]*Incident{{ID: "a"}, {ID: "b"}})

	assert.Len(t, ids, 2)
	_, ok := ids["a"]
	assert.True(t, ok)
	_, ok = ids["missing"]
	assert.False(t, ok)

	assert.Empty(t, IDSet(nil))
}

// TestCloneIncidents tests that the clone is independent of the source slice
func TestCloneIncidents(t *testing.T) {
	original := []*Incident{{ID: "a"}, {ID: "b"}}

	clone := CloneIncidents(original)
	assert.Equal(t, original, clone)

	clone[0] = &Incident{ID: "replaced"}
	assert.Equal(t, "a", original[0].ID)
}
