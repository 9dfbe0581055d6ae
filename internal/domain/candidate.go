package domain

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// DifficultyBand classifies a question into one of three difficulty buckets.
type DifficultyBand string

// Possible difficulty band values
const (
	BandEasy   DifficultyBand = "easy"
	BandMedium DifficultyBand = "medium"
	BandHard   DifficultyBand = "hard"
)

// Bands lists all difficulty bands in canonical order (easiest first).
func Bands() []DifficultyBand {
	return []DifficultyBand{BandEasy, BandMedium, BandHard}
}

// IsValid reports whether the band is one of the known values.
func (b DifficultyBand) IsValid() bool {
	switch b {
	case BandEasy, BandMedium, BandHard:
		return true
	default:
		return false
	}
}

// Candidate-specific validation errors
var (
	// ErrCandidateIDEmpty is returned when a candidate's question ID is empty or nil.
	ErrCandidateIDEmpty = errors.New("candidate question ID cannot be empty")

	// ErrCandidateSubcategoryEmpty is returned when a candidate has no subcategory.
	ErrCandidateSubcategoryEmpty = errors.New("candidate subcategory cannot be empty")

	// ErrCandidateTypeEmpty is returned when a candidate has no type of question.
	ErrCandidateTypeEmpty = errors.New("candidate type of question cannot be empty")

	// ErrCandidatePYQScoreNegative is returned when a PYQ frequency score is below zero.
	ErrCandidatePYQScoreNegative = errors.New("candidate PYQ frequency score cannot be negative")
)

// PairKey builds the composite topic key used for readiness and coverage
// tracking. The key is stable for identical subcategory/type strings.
func PairKey(subcategory, typeOfQuestion string) string {
	return subcategory + "::" + typeOfQuestion
}

// QuestionCandidate is an eligible question supplied by the question catalog.
// Candidates are value objects identified by QuestionID; all other fields are
// scoring inputs for the planner.
type QuestionCandidate struct {
	QuestionID        uuid.UUID      `json:"question_id"`
	Band              DifficultyBand `json:"difficulty_band"`
	Subcategory       string         `json:"subcategory"`
	TypeOfQuestion    string         `json:"type_of_question"`
	CoreConcepts      []string       `json:"core_concepts,omitempty"`
	PYQFrequencyScore float64        `json:"pyq_frequency_score"`
}

// Pair returns the composite topic key for this candidate.
func (c QuestionCandidate) Pair() string {
	return PairKey(c.Subcategory, c.TypeOfQuestion)
}

// Validate checks if the QuestionCandidate has valid data.
// Returns an error if any field fails validation.
func (c QuestionCandidate) Validate() error {
	if c.QuestionID == uuid.Nil {
		return ErrCandidateIDEmpty
	}

	if !c.Band.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidBand, c.Band)
	}

	if c.Subcategory == "" {
		return ErrCandidateSubcategoryEmpty
	}

	if c.TypeOfQuestion == "" {
		return ErrCandidateTypeEmpty
	}

	if c.PYQFrequencyScore < 0 {
		return ErrCandidatePYQScoreNegative
	}

	return nil
}
