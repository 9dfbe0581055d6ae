package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func validAttempt() AttemptEvent {
	return AttemptEvent{
		UserID:                 uuid.New(),
		QuestionID:             uuid.New(),
		WasCorrect:             true,
		SessionSequenceAtServe: 2,
		Band:                   BandMedium,
		Subcategory:            "algebra",
		TypeOfQuestion:         "linear",
	}
}

func TestAttemptValidate(t *testing.T) {
	t.Parallel()

	assert.NoError(t, validAttempt().Validate())

	missingUser := validAttempt()
	missingUser.UserID = uuid.Nil
	assert.ErrorIs(t, missingUser.Validate(), ErrAttemptUserIDEmpty)

	missingQuestion := validAttempt()
	missingQuestion.QuestionID = uuid.Nil
	assert.ErrorIs(t, missingQuestion.Validate(), ErrAttemptQuestionIDEmpty)

	badBand := validAttempt()
	badBand.Band = "brutal"
	assert.ErrorIs(t, badBand.Validate(), ErrInvalidBand)

	badSequence := validAttempt()
	badSequence.SessionSequenceAtServe = 0
	assert.ErrorIs(t, badSequence.Validate(), ErrAttemptSequenceInvalid)
}

func TestAttemptPair(t *testing.T) {
	t.Parallel()

	event := AttemptEvent{Subcategory: "geometry", TypeOfQuestion: "circles"}
	assert.Equal(t, "geometry::circles", event.Pair())
}
