package api

import (
	"time"

	"github.com/google/uuid"
	"github.com/quantprep/quantprep-api/internal/domain"
)

// SelectionReasonResponse explains why one question was selected.
type SelectionReasonResponse struct {
	Score             float64 `json:"score"`
	PYQFrequencyScore float64 `json:"pyq_frequency_score"`
	Readiness         string  `json:"readiness"`
	CoverageBoosted   bool    `json:"coverage_boosted"`
}

// PlanItemResponse is one pack slot in a plan response.
type PlanItemResponse struct {
	QuestionID uuid.UUID               `json:"question_id"`
	Bucket     string                  `json:"bucket"`
	Why        SelectionReasonResponse `json:"why"`
}

// RelaxationResponse records one applied relaxation.
type RelaxationResponse struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

// ConstraintReportResponse is the client-facing constraint accounting.
type ConstraintReportResponse struct {
	Met     []string             `json:"met"`
	Relaxed []RelaxationResponse `json:"relaxed"`
	Meta    ReportMetaResponse   `json:"meta"`
}

// ReportMetaResponse carries processing metadata for the planning call.
type ReportMetaResponse struct {
	ProcessingTimeMs int64 `json:"processing_time_ms"`
	TokensUsed       int   `json:"tokens_used,omitempty"`
	RetryUsed        bool  `json:"retry_used"`
}

// PlanResponse is the response body for plan creation and retrieval.
type PlanResponse struct {
	SessionID uuid.UUID                `json:"session_id"`
	UserID    uuid.UUID                `json:"user_id"`
	Sequence  int                      `json:"sequence"`
	Items     []PlanItemResponse       `json:"items"`
	Report    ConstraintReportResponse `json:"constraint_report"`
	CreatedAt time.Time                `json:"created_at"`
}

// AttemptRequest is the request body for recording an attempt event.
type AttemptRequest struct {
	QuestionID             uuid.UUID `json:"question_id"             validate:"required"`
	WasCorrect             bool      `json:"was_correct"`
	Skipped                bool      `json:"skipped"`
	ResponseTimeMs         uint      `json:"response_time_ms"`
	SessionSequenceAtServe int       `json:"session_sequence_at_serve" validate:"required,gte=1"`
	Band                   string    `json:"difficulty_band"         validate:"required,oneof=easy medium hard"`
	Subcategory            string    `json:"subcategory"             validate:"required"`
	TypeOfQuestion         string    `json:"type_of_question"        validate:"required"`
	CoreConcepts           []string  `json:"core_concepts,omitempty"`
	PYQFrequencyScore      float64   `json:"pyq_frequency_score"     validate:"gte=0"`
}

// NewPlanResponse converts a plan and its report to the response shape.
func NewPlanResponse(plan *domain.SessionPackPlan, report *domain.ConstraintReport) PlanResponse {
	items := make([]PlanItemResponse, 0, len(plan.Items))
	for _, item := range plan.Items {
		items = append(items, PlanItemResponse{
			QuestionID: item.QuestionID,
			Bucket:     string(item.Bucket),
			Why: SelectionReasonResponse{
				Score:             item.Why.Score,
				PYQFrequencyScore: item.Why.PYQFrequencyScore,
				Readiness:         string(item.Why.Readiness),
				CoverageBoosted:   item.Why.CoverageBoosted,
			},
		})
	}

	met := make([]string, 0, len(report.Met))
	for _, name := range report.Met {
		met = append(met, string(name))
	}
	relaxed := make([]RelaxationResponse, 0, len(report.Relaxed))
	for _, rel := range report.Relaxed {
		relaxed = append(relaxed, RelaxationResponse{
			Name:   string(rel.Name),
			Reason: string(rel.Reason),
		})
	}

	return PlanResponse{
		SessionID: plan.SessionID,
		UserID:    plan.UserID,
		Sequence:  plan.Sequence,
		Items:     items,
		Report: ConstraintReportResponse{
			Met:     met,
			Relaxed: relaxed,
			Meta: ReportMetaResponse{
				ProcessingTimeMs: report.Meta.ProcessingTimeMs,
				TokensUsed:       report.Meta.TokensUsed,
				RetryUsed:        report.Meta.RetryUsed,
			},
		},
		CreatedAt: plan.CreatedAt,
	}
}

// ToDomain converts the attempt request into a domain event for the
// authenticated user.
func (r AttemptRequest) ToDomain(userID uuid.UUID) *domain.AttemptEvent {
	return &domain.AttemptEvent{
		UserID:                 userID,
		QuestionID:             r.QuestionID,
		WasCorrect:             r.WasCorrect,
		Skipped:                r.Skipped,
		ResponseTimeMs:         r.ResponseTimeMs,
		SessionSequenceAtServe: r.SessionSequenceAtServe,
		Band:                   domain.DifficultyBand(r.Band),
		Subcategory:            r.Subcategory,
		TypeOfQuestion:         r.TypeOfQuestion,
		CoreConcepts:           r.CoreConcepts,
		PYQFrequencyScore:      r.PYQFrequencyScore,
		RecordedAt:             time.Now().UTC(),
	}
}
