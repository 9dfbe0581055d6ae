package gemini

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/quantprep/quantprep-api/internal/assist"
	"github.com/quantprep/quantprep-api/internal/domain"
)

func TestBuildRerankPrompt(t *testing.T) {
	t.Parallel()

	idA := uuid.New()
	idB := uuid.New()
	req := assist.RerankRequest{
		UserID: uuid.New(),
		Candidates: []domain.QuestionCandidate{
			{
				QuestionID:        idA,
				Band:              domain.BandMedium,
				Subcategory:       "algebra",
				TypeOfQuestion:    "quadratic-equations",
				PYQFrequencyScore: 1.5,
			},
			{
				QuestionID:        idB,
				Band:              domain.BandHard,
				Subcategory:       "geometry",
				TypeOfQuestion:    "circles",
				PYQFrequencyScore: 0,
			},
		},
		Readiness: map[string]domain.ReadinessLevel{
			domain.PairKey("algebra", "quadratic-equations"): domain.ReadinessStrong,
		},
	}

	prompt := buildRerankPrompt(req)

	assert.Contains(t, prompt, `"ranked_question_ids"`)
	assert.Contains(t, prompt,
		"- id="+idA.String()+" band=medium topic=algebra/quadratic-equations readiness=strong pyq_score=1.5")
	// Pairs without a readiness entry default to weak.
	assert.Contains(t, prompt,
		"- id="+idB.String()+" band=hard topic=geometry/circles readiness=weak pyq_score=0.0")

	// Header comes first, one line per candidate after it.
	assert.True(t, strings.HasPrefix(prompt, rerankPromptHeader))
	assert.Equal(t, 2, strings.Count(prompt[len(rerankPromptHeader):], "\n"))
}

func TestBuildRerankPromptEmptyPool(t *testing.T) {
	t.Parallel()

	prompt := buildRerankPrompt(assist.RerankRequest{})
	assert.Equal(t, rerankPromptHeader, prompt)
}
