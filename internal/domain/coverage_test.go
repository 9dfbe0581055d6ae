package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCoverageRecord(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	record, err := NewCoverageRecord(userID, PairKey("algebra", "linear"), 4)
	require.NoError(t, err)

	assert.Equal(t, 1, record.SessionsSeen)
	assert.Equal(t, 4, record.FirstSeenSession)
	assert.Equal(t, 4, record.LastSeenSession)
}

func TestNewCoverageRecordRejectsInvalid(t *testing.T) {
	t.Parallel()

	_, err := NewCoverageRecord(uuid.Nil, "algebra::linear", 1)
	assert.ErrorIs(t, err, ErrCoverageUserIDEmpty)

	_, err = NewCoverageRecord(uuid.New(), "", 1)
	assert.ErrorIs(t, err, ErrCoveragePairEmpty)
}

func TestCoverageValidateWindow(t *testing.T) {
	t.Parallel()

	record := &CoverageRecord{
		UserID:           uuid.New(),
		Pair:             "algebra::linear",
		SessionsSeen:     2,
		FirstSeenSession: 5,
		LastSeenSession:  3,
	}
	assert.ErrorIs(t, record.Validate(), ErrCoverageWindowInvalid)
}

func TestSeenWithin(t *testing.T) {
	t.Parallel()

	record := &CoverageRecord{LastSeenSession: 7}

	// Planning session 10 with a 3-session window still counts session 7.
	assert.True(t, record.SeenWithin(10, 3))
	assert.False(t, record.SeenWithin(11, 3))
	assert.True(t, record.SeenWithin(8, 3))
}
