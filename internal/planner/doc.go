// Package planner assembles 12-question session packs from a scored candidate
// pool. It owns the relaxation ladder, the structural pack constraints, and
// the constraint report that accounts for every constraint on every call.
package planner
