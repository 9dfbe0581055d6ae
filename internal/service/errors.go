package service

import "errors"

// Common service errors - sentinel errors used across service implementations.
// Callers check for these with errors.Is(); the API layer maps them to HTTP
// status codes.
var (
	// ErrNotOwned indicates a resource is owned by a different user than the
	// one making the request. API layer should map this to HTTP 403 Forbidden.
	ErrNotOwned = errors.New("resource is owned by another user")

	// ErrPlanInProgress indicates a planning call for the user is already
	// running. Concurrent calls are rejected, not queued. API layer should
	// map this to HTTP 409 Conflict.
	ErrPlanInProgress = errors.New("plan generation already in progress for user")
)
