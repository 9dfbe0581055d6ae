package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Coverage-specific validation errors
var (
	// ErrCoverageUserIDEmpty is returned when a coverage record's user ID is empty or nil.
	ErrCoverageUserIDEmpty = errors.New("coverage record user ID cannot be empty")

	// ErrCoveragePairEmpty is returned when a coverage record's pair key is empty.
	ErrCoveragePairEmpty = errors.New("coverage record pair cannot be empty")

	// ErrCoverageSessionsInvalid is returned when sessions_seen is below 1.
	ErrCoverageSessionsInvalid = errors.New("coverage sessions seen must be at least 1")

	// ErrCoverageWindowInvalid is returned when the first/last seen sessions are inconsistent.
	ErrCoverageWindowInvalid = errors.New("coverage first seen session cannot exceed last seen session")
)

// CoverageRecord tracks, per (user, pair), how many sessions have included
// that topic pair and the session window it was seen in. Created on first
// exposure, incremented on every session including the pair, never deleted.
type CoverageRecord struct {
	UserID           uuid.UUID `json:"user_id"`
	Pair             string    `json:"pair"`
	SessionsSeen     int       `json:"sessions_seen"`
	FirstSeenSession int       `json:"first_seen_session"`
	LastSeenSession  int       `json:"last_seen_session"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// NewCoverageRecord creates a record for a pair's first exposure in the
// session with the given sequence number.
func NewCoverageRecord(userID uuid.UUID, pair string, sequence int) (*CoverageRecord, error) {
	now := time.Now().UTC()
	record := &CoverageRecord{
		UserID:           userID,
		Pair:             pair,
		SessionsSeen:     1,
		FirstSeenSession: sequence,
		LastSeenSession:  sequence,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := record.Validate(); err != nil {
		return nil, err
	}

	return record, nil
}

// Validate checks if the CoverageRecord has valid data.
// Returns an error if any field fails validation.
func (r *CoverageRecord) Validate() error {
	if r.UserID == uuid.Nil {
		return ErrCoverageUserIDEmpty
	}

	if r.Pair == "" {
		return ErrCoveragePairEmpty
	}

	if r.SessionsSeen < 1 {
		return ErrCoverageSessionsInvalid
	}

	if r.FirstSeenSession > r.LastSeenSession {
		return ErrCoverageWindowInvalid
	}

	return nil
}

// SeenWithin reports whether the pair was included in any of the lastN
// sessions preceding the session with the given sequence number.
func (r *CoverageRecord) SeenWithin(sequence, lastN int) bool {
	return sequence-r.LastSeenSession <= lastN
}
