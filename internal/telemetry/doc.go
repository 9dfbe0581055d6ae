// Package telemetry records planning outcomes as structured metric events.
//
// Events are strongly typed with a fixed tag vocabulary per metric, so
// emitted telemetry is type-checked rather than free-form. Sinks are
// side-effect-only: nothing in the planning control flow depends on them.
package telemetry
