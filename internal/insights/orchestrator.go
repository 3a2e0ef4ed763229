package insights

import (
	"context"
	"fmt"
	"strings"

	"github.com/AngelCh415/insightchat-go/internal/metrics"
	"github.com/AngelCh415/insightchat-go/internal/models"
	"github.com/AngelCh415/insightchat-go/internal/store"
)

const (
	ContextPlaceholder         = "{context}"
	InsightsContextPlaceholder = "{insights_context}"
	QuestionPlaceholder        = "{user_question}"

	analysisTemperature = 0.2
	analysisMaxTokens   = 1200
	chatTemperature     = 0.3
	chatMaxTokens       = 600
)

// Completer is satisfied by *llm.Client.
type Completer interface {
	Complete(ctx context.Context, prompt string, temperature float64, maxTokens int) (string, error)
}

// GenerateInsights computes metrics for t, asks the model for insights using
// promptTemplate and validates the answer. Every failure is *AnalysisError.
func GenerateInsights(ctx context.Context, c Completer, t *store.SessionTable, promptTemplate string) (*models.UXInsightsResponse, error) {
	m, err := metrics.Compute(t)
	if err != nil {
		return nil, fail(StageMetrics, "Failed to compute metrics", err)
	}

	if n := strings.Count(promptTemplate, ContextPlaceholder); n != 1 {
		return nil, fail(StagePrompt, "Invalid analysis prompt template",
			fmt.Errorf("expected exactly one %s placeholder, found %d", ContextPlaceholder, n))
	}
	prompt := strings.Replace(promptTemplate, ContextPlaceholder, BuildAnalysisContext(t, m), 1)

	raw, err := c.Complete(ctx, prompt, analysisTemperature, analysisMaxTokens)
	if err != nil {
		return nil, fail(StageCompletion, "Completion API call failed", err)
	}

	doc, err := parseJSON(raw)
	if err != nil {
		return nil, fail(StageDecode, "LLM returned invalid JSON", err)
	}

	resp, err := buildResponse(doc, m)
	if err != nil {
		return nil, fail(StageValidation, "Failed to validate LLM output structure", err)
	}
	return resp, nil
}

// AnswerQuestion regenerates the analysis on every call (nothing is reused
// between calls), then asks the chat prompt with it as grounding.
func AnswerQuestion(ctx context.Context, c Completer, t *store.SessionTable, analysisTemplate, chatTemplate, question string) (string, error) {
	for _, ph := range []string{InsightsContextPlaceholder, QuestionPlaceholder} {
		if !strings.Contains(chatTemplate, ph) {
			return "", fail(StagePrompt, "Invalid chat prompt template",
				fmt.Errorf("missing %s placeholder", ph))
		}
	}

	resp, err := GenerateInsights(ctx, c, t, analysisTemplate)
	if err != nil {
		return "", fail(StageUpstream, "Failed to generate insights", err)
	}

	prompt := FillChatPrompt(chatTemplate, BuildChatContext(resp), question)

	answer, err := c.Complete(ctx, prompt, chatTemperature, chatMaxTokens)
	if err != nil {
		return "", fail(StageUpstream, "Chat completion failed", err)
	}
	return strings.TrimSpace(answer), nil
}

// FillChatPrompt substitutes the insights context first, then the question.
// Plain substring replacement; braces in either value are not escaped.
func FillChatPrompt(tmpl, insightsContext, question string) string {
	out := strings.ReplaceAll(tmpl, InsightsContextPlaceholder, insightsContext)
	return strings.ReplaceAll(out, QuestionPlaceholder, question)
}
