// Package notify projects change-feed events into classified dispatch
// notifications for the alerting layer.
//
// Assignment fires when a record is newly dispatched to the local team;
// status-change fires on non-terminal status flips. A diff whose change
// is resolved_at flipping from absent to present emits nothing. The
// emitter is a pure projection: it never mutates engine state.
package notify
