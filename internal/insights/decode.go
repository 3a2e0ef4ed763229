package insights

import (
	"errors"
	"fmt"
	"strings"

	"github.com/goccy/go-json"

	"github.com/AngelCh415/insightchat-go/internal/models"
	"github.com/AngelCh415/insightchat-go/internal/validation"
)

const defaultSummary = "No summary provided"

// insightPayload mirrors models.UXInsight with pointers so a missing key
// or null fails "required" while an empty string passes.
type insightPayload struct {
	ID                *string `json:"id" validate:"required"`
	Title             *string `json:"title" validate:"required,max=100"`
	Severity          *string `json:"severity" validate:"required,oneof=low medium high"`
	MetricEvidence    *string `json:"metric_evidence" validate:"required"`
	HypothesizedCause *string `json:"hypothesized_cause" validate:"required"`
	Recommendation    *string `json:"recommendation" validate:"required"`
	TargetSegment     *string `json:"target_segment" validate:"required"`
}

func (p insightPayload) insight() models.UXInsight {
	return models.UXInsight{
		ID:                *p.ID,
		Title:             *p.Title,
		Severity:          *p.Severity,
		MetricEvidence:    *p.MetricEvidence,
		HypothesizedCause: *p.HypothesizedCause,
		Recommendation:    *p.Recommendation,
		TargetSegment:     *p.TargetSegment,
	}
}

// parseJSON is the strict syntax pass; it accepts any JSON value.
func parseJSON(raw string) (any, error) {
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return nil, err
	}
	return v, nil
}

// buildResponse maps a parsed LLM document onto the typed response. Every
// problem found is reported together; nothing is coerced or truncated.
func buildResponse(doc any, m models.ComputedMetrics) (*models.UXInsightsResponse, error) {
	obj, ok := doc.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("expected a JSON object, got %s", kind(doc))
	}

	var problems []string

	summary := defaultSummary
	if v, present := obj["summary"]; present {
		s, isStr := v.(string)
		if !isStr {
			problems = append(problems, "summary: expected string, got "+kind(v))
		}
		summary = s
	}

	var items []any
	if v, present := obj["insights"]; present {
		arr, isArr := v.([]any)
		if !isArr {
			problems = append(problems, "insights: expected array, got "+kind(v))
		}
		items = arr
	}

	list := make([]models.UXInsight, 0, len(items))
	for i, it := range items {
		p, errs := toPayload(it)
		if len(errs) == 0 {
			if err := validation.Struct(p); err != nil {
				errs = append(errs, fieldMessages(err)...)
			}
		}
		if len(errs) > 0 {
			for _, e := range errs {
				problems = append(problems, fmt.Sprintf("insights[%d].%s", i, e))
			}
			continue
		}
		list = append(list, p.insight())
	}

	if len(problems) > 0 {
		return nil, errors.New(strings.Join(problems, "; "))
	}

	resp := &models.UXInsightsResponse{Summary: summary, Insights: list, Metrics: m}
	if err := validation.Struct(resp); err != nil {
		return nil, errors.New(strings.Join(fieldMessages(err), "; "))
	}
	return resp, nil
}

var payloadFields = []string{
	"id", "title", "severity", "metric_evidence",
	"hypothesized_cause", "recommendation", "target_segment",
}

// toPayload type-checks one insight object. Absent and null keys stay nil
// and are left to the required rule.
func toPayload(v any) (insightPayload, []string) {
	obj, ok := v.(map[string]any)
	if !ok {
		return insightPayload{}, []string{"expected object, got " + kind(v)}
	}
	vals := make(map[string]*string, len(payloadFields))
	var errs []string
	for _, f := range payloadFields {
		raw, present := obj[f]
		if !present || raw == nil {
			continue
		}
		s, isStr := raw.(string)
		if !isStr {
			errs = append(errs, f+": expected string, got "+kind(raw))
			continue
		}
		vals[f] = &s
	}
	return insightPayload{
		ID:                vals["id"],
		Title:             vals["title"],
		Severity:          vals["severity"],
		MetricEvidence:    vals["metric_evidence"],
		HypothesizedCause: vals["hypothesized_cause"],
		Recommendation:    vals["recommendation"],
		TargetSegment:     vals["target_segment"],
	}, errs
}

func fieldMessages(err error) []string {
	var verr *validation.Error
	if !errors.As(err, &verr) {
		return []string{err.Error()}
	}
	out := make([]string, 0, len(verr.Fields))
	for _, f := range verr.Fields {
		out = append(out, f.Message)
	}
	return out
}

func kind(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "boolean"
	case float64:
		return "number"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	}
	return fmt.Sprintf("%T", v)
}
