package health

import (
	"context"
	"time"
)

// CheckType represents the type of connectivity check
type CheckType string

const (
	CheckTypeHTTP CheckType = "http"
	CheckTypeTCP  CheckType = "tcp"
)

// Result represents the outcome of a connectivity check
type Result struct {
	Reachable bool
	Message   string
	CheckedAt time.Time
	Duration  time.Duration
}

// Checker is the interface all connectivity checkers implement
type Checker interface {
	// Check performs the connectivity check and returns the result
	Check(ctx context.Context) Result

	// Type returns the type of connectivity check
	Type() CheckType
}
