package gemini

import (
	"fmt"
	"strings"

	"github.com/quantprep/quantprep-api/internal/assist"
	"github.com/quantprep/quantprep-api/internal/domain"
)

// rerankPromptHeader instructs the model to act as an exam-prep tutor and
// constrains the output to a JSON document the parser understands.
const rerankPromptHeader = `You are ranking practice questions for a quantitative exam-prep session.
Order the question IDs below from most to least valuable for the learner right now.
Prefer questions on topics where the learner is weak, and prefer questions with
higher past-exam frequency scores when readiness is equal.

Respond with only a JSON object of the form:
{"ranked_question_ids": ["<id>", "<id>", ...]}

Include every listed ID exactly once. Do not invent IDs.

Questions:
`

// buildRerankPrompt renders the candidate pool and per-topic readiness into
// the rerank prompt.
func buildRerankPrompt(req assist.RerankRequest) string {
	var b strings.Builder
	b.WriteString(rerankPromptHeader)
	for _, c := range req.Candidates {
		level := domain.ReadinessWeak
		if l, ok := req.Readiness[c.Pair()]; ok {
			level = l
		}
		fmt.Fprintf(&b, "- id=%s band=%s topic=%s/%s readiness=%s pyq_score=%.1f\n",
			c.QuestionID, c.Band, c.Subcategory, c.TypeOfQuestion, level, c.PYQFrequencyScore)
	}
	return b.String()
}
