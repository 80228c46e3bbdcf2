/*
Package types defines the shared data model for the fieldsync engine.

The model covers three record families mirrored from the central store:

  - Incident: the dispatched event entity, assigned to at most one team
  - FieldReport: the responder-authored record nested under an incident
  - FinalizedReport: the terminal record that removes an incident from view

ChangeEvent wraps one change-data-capture entry. Snapshots arrive as raw
JSON and are decoded per table on demand; a snapshot that is absent or
malformed decodes to nil so callers can drop it without side effects.

Two invariants live here because every component depends on them:

List ordering: SortIncidents orders newest first by responded_at, falling
back to created_at. Unparsable timestamps sort last, and the sort is
stable so ties preserve fetch order.

Visibility filter: FilterFinalized drops any incident whose field report
links to a finalized report.

IncidentPatch is the unit of the instant-update path: a partial record
keyed by id, shallow-merged into in-memory state. Applying a patch is
idempotent.
*/
package types
