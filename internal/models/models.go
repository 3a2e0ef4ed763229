package models

// Severity levels accepted for an insight.
const (
	SeverityLow    = "low"
	SeverityMedium = "medium"
	SeverityHigh   = "high"
)

type VisitorSegment struct {
	Sessions       int     `json:"sessions"`
	ConversionRate float64 `json:"conversion_rate"`
}

type MonthStat struct {
	Month          string  `json:"month"`
	Sessions       int     `json:"sessions"`
	Conversions    int     `json:"conversions"`
	ConversionRate float64 `json:"conversion_rate"`
}

// ComputedMetrics is a snapshot of one session table. Rates are percentages
// rounded to 2 decimals, bounce/exit averages are fractions rounded to 4.
type ComputedMetrics struct {
	TotalSessions         int                       `json:"total_sessions"`
	TotalConversions      int                       `json:"total_conversions"`
	ConversionRate        float64                   `json:"conversion_rate"`
	AvgBounceRate         float64                   `json:"avg_bounce_rate"`
	AvgExitRate           float64                   `json:"avg_exit_rate"`
	AvgPageValue          float64                   `json:"avg_page_value"`
	WeekendSessions       int                       `json:"weekend_sessions"`
	WeekdaySessions       int                       `json:"weekday_sessions"`
	WeekendConversionRate float64                   `json:"weekend_conversion_rate"`
	WeekdayConversionRate float64                   `json:"weekday_conversion_rate"`
	VisitorTypeBreakdown  map[string]VisitorSegment `json:"visitor_type_breakdown"`
	TopConvertingMonths   []MonthStat               `json:"top_converting_months"`
}

// UXInsight is only ever built from validated LLM output.
type UXInsight struct {
	ID                string `json:"id"`
	Title             string `json:"title"`
	Severity          string `json:"severity"`
	MetricEvidence    string `json:"metric_evidence"`
	HypothesizedCause string `json:"hypothesized_cause"`
	Recommendation    string `json:"recommendation"`
	TargetSegment     string `json:"target_segment"`
}

type UXInsightsResponse struct {
	Summary  string          `json:"summary"`
	Insights []UXInsight     `json:"insights" validate:"min=1,max=10"`
	Metrics  ComputedMetrics `json:"metrics"`
}

type ChatRequest struct {
	Question string `json:"question" validate:"min=3,max=500"`
}

type ChatResponse struct {
	Answer       string   `json:"answer"`
	UsedInsights []string `json:"used_insights"`
}

type ErrorResponse struct {
	Error      string `json:"error"`
	Detail     string `json:"detail"`
	Suggestion string `json:"suggestion,omitempty"`
}
