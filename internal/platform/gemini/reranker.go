package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"google.golang.org/genai"

	"github.com/quantprep/quantprep-api/internal/assist"
	"github.com/quantprep/quantprep-api/internal/config"
	"github.com/quantprep/quantprep-api/internal/platform/logger"
)

// GeminiReranker implements the assist.Reranker interface using Google's
// Gemini API. A single call is made per rerank request; retry policy belongs
// to the caller, which treats every failure as recoverable.
type GeminiReranker struct {
	client *genai.Client
	model  string
	logger *slog.Logger
}

// Ensure GeminiReranker implements assist.Reranker interface
var _ assist.Reranker = (*GeminiReranker)(nil)

// NewGeminiReranker creates a reranker from the assist configuration.
// Returns assist.ErrInvalidConfig if the API key or model name is missing.
func NewGeminiReranker(
	ctx context.Context,
	cfg config.AssistConfig,
	log *slog.Logger,
) (*GeminiReranker, error) {
	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("%w: API key is required", assist.ErrInvalidConfig)
	}
	if cfg.ModelName == "" {
		return nil, fmt.Errorf("%w: model name is required", assist.ErrInvalidConfig)
	}
	if log == nil {
		log = slog.Default()
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create client: %v", assist.ErrInvalidConfig, err)
	}

	return &GeminiReranker{
		client: client,
		model:  cfg.ModelName,
		logger: log.With(slog.String("component", "gemini_reranker")),
	}, nil
}

// rerankResponse is the JSON shape the prompt asks the model for.
type rerankResponse struct {
	RankedQuestionIDs []string `json:"ranked_question_ids"`
}

// Rerank implements assist.Reranker.Rerank. The context carries the caller's
// deadline; the API call is aborted when it expires.
func (g *GeminiReranker) Rerank(
	ctx context.Context,
	req assist.RerankRequest,
) (*assist.RerankResult, error) {
	log := logger.FromContextOrDefault(ctx, g.logger)

	if len(req.Candidates) == 0 {
		return nil, fmt.Errorf("%w: empty candidate pool", assist.ErrAssistFailed)
	}

	prompt := buildRerankPrompt(req)
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt),
		&genai.GenerateContentConfig{
			ResponseMIMEType: "application/json",
			Temperature:      genai.Ptr[float32](0.2),
		})
	if err != nil {
		log.Warn("gemini rerank call failed",
			slog.String("error", err.Error()),
			slog.Int("candidates", len(req.Candidates)))
		return nil, fmt.Errorf("%w: %v", assist.ErrAssistFailed, err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return nil, fmt.Errorf("%w: empty response", assist.ErrInvalidResponse)
	}

	var parsed rerankResponse
	if err := json.Unmarshal([]byte(text), &parsed); err != nil {
		log.Warn("gemini rerank response is not valid JSON",
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("%w: %v", assist.ErrInvalidResponse, err)
	}
	if len(parsed.RankedQuestionIDs) == 0 {
		return nil, fmt.Errorf("%w: no ranked IDs", assist.ErrInvalidResponse)
	}

	ids := make([]uuid.UUID, 0, len(parsed.RankedQuestionIDs))
	for _, raw := range parsed.RankedQuestionIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			// Hallucinated or mangled IDs are dropped; the caller appends
			// unmentioned candidates in deterministic order anyway.
			continue
		}
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("%w: no parseable ranked IDs", assist.ErrInvalidResponse)
	}

	tokens := 0
	if resp.UsageMetadata != nil {
		tokens = int(resp.UsageMetadata.TotalTokenCount)
	}

	log.Debug("gemini rerank succeeded",
		slog.Int("ranked", len(ids)),
		slog.Int("tokens", tokens))
	return &assist.RerankResult{
		RankedQuestionIDs: ids,
		TokensUsed:        tokens,
	}, nil
}
