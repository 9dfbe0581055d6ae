package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Attempt-specific validation errors
var (
	// ErrAttemptQuestionIDEmpty is returned when an attempt's question ID is empty or nil.
	ErrAttemptQuestionIDEmpty = errors.New("attempt question ID cannot be empty")

	// ErrAttemptUserIDEmpty is returned when an attempt's user ID is empty or nil.
	ErrAttemptUserIDEmpty = errors.New("attempt user ID cannot be empty")

	// ErrAttemptSequenceInvalid is returned when an attempt's session sequence is below 1.
	ErrAttemptSequenceInvalid = errors.New("attempt session sequence must be at least 1")
)

// AttemptEvent is one past answer event for a user, recorded by the external
// attempt-submission flow. Events are immutable once recorded; the kernel
// consumes them read-only to derive readiness per topic pair.
type AttemptEvent struct {
	UserID                 uuid.UUID      `json:"user_id"`
	QuestionID             uuid.UUID      `json:"question_id"`
	WasCorrect             bool           `json:"was_correct"`
	Skipped                bool           `json:"skipped"`
	ResponseTimeMs         uint           `json:"response_time_ms"`
	SessionSequenceAtServe int            `json:"session_sequence_at_serve"`
	Band                   DifficultyBand `json:"difficulty_band"`
	Subcategory            string         `json:"subcategory"`
	TypeOfQuestion         string         `json:"type_of_question"`
	CoreConcepts           []string       `json:"core_concepts,omitempty"`
	PYQFrequencyScore      float64        `json:"pyq_frequency_score"`
	RecordedAt             time.Time      `json:"recorded_at"`
}

// Pair returns the composite topic key for this attempt.
func (e AttemptEvent) Pair() string {
	return PairKey(e.Subcategory, e.TypeOfQuestion)
}

// Validate checks if the AttemptEvent has valid data.
// Returns an error if any field fails validation.
func (e AttemptEvent) Validate() error {
	if e.UserID == uuid.Nil {
		return ErrAttemptUserIDEmpty
	}

	if e.QuestionID == uuid.Nil {
		return ErrAttemptQuestionIDEmpty
	}

	if !e.Band.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidBand, e.Band)
	}

	if e.SessionSequenceAtServe < 1 {
		return ErrAttemptSequenceInvalid
	}

	return nil
}
