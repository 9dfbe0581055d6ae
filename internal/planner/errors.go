package planner

import "errors"

// Planner-specific errors
var (
	// ErrInfeasiblePack is returned when no valid pack can be assembled even
	// after every permitted relaxation ladder step has been applied.
	ErrInfeasiblePack = errors.New("no feasible pack for candidate pool")

	// ErrConstraintViolation is returned when a finished plan fails the
	// independent structural recount (size, band shape, or PYQ minima).
	ErrConstraintViolation = errors.New("plan violates structural constraint")

	// ErrForbiddenRelaxation is returned when a constraint report records a
	// relaxation of a constraint that may never be relaxed.
	ErrForbiddenRelaxation = errors.New("forbidden constraint relaxation")

	// ErrReportInconsistent is returned when a constraint report does not
	// account for the full constraint set exactly once per constraint.
	ErrReportInconsistent = errors.New("constraint report inconsistent")
)
