// Package session implements the session planning use case: reading the
// user's history and coverage, driving the pack planner, validating the
// result, and persisting the plan and coverage update atomically.
package session
