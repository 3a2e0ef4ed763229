package insights

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/AngelCh415/insightchat-go/internal/models"
	"github.com/AngelCh415/insightchat-go/internal/store"
)

// above this average bounce rate the context calls it "high"
const highBounceRate = 0.05

var printer = message.NewPrinter(language.English)

// BuildAnalysisContext renders m (and the table's width) as the plain-text
// block injected into the analysis prompt. Output is deterministic.
func BuildAnalysisContext(t *store.SessionTable, m models.ComputedMetrics) string {
	lines := []string{
		"Dataset Overview:",
		"- Type: E-commerce user session data",
		"- Total sessions: " + thousands(m.TotalSessions),
		fmt.Sprintf("- Data points per session: %d attributes", t.ColumnCount()),
		"",
		"Key Performance Indicators:",
		"- Overall conversion rate: " + rate(m.ConversionRate) + "%",
		"- Total conversions: " + thousands(m.TotalConversions),
		"- Average bounce rate: " + percent(m.AvgBounceRate),
		"- Average exit rate: " + percent(m.AvgExitRate),
		fmt.Sprintf("- Average page value: $%.2f", m.AvgPageValue),
		"",
		"Temporal Patterns:",
		fmt.Sprintf("- Weekend sessions: %s (%s%% conversion)", thousands(m.WeekendSessions), rate(m.WeekendConversionRate)),
		fmt.Sprintf("- Weekday sessions: %s (%s%% conversion)", thousands(m.WeekdaySessions), rate(m.WeekdayConversionRate)),
		"",
		"Top Converting Months:",
	}

	for _, s := range m.TopConvertingMonths {
		lines = append(lines, fmt.Sprintf("  %s: %s%% (%d conversions from %d sessions)",
			s.Month, rate(s.ConversionRate), s.Conversions, s.Sessions))
	}

	lines = append(lines, "", "Visitor Segmentation:")

	labels := make([]string, 0, len(m.VisitorTypeBreakdown))
	for k := range m.VisitorTypeBreakdown {
		labels = append(labels, k)
	}
	sort.Strings(labels)
	for _, k := range labels {
		s := m.VisitorTypeBreakdown[k]
		lines = append(lines, fmt.Sprintf("  %s: %s sessions, %s%% conversion rate",
			k, thousands(s.Sessions), rate(s.ConversionRate)))
	}

	level := "moderate"
	if m.AvgBounceRate > highBounceRate {
		level = "high"
	}
	lines = append(lines,
		"",
		"Notable Observations:",
		fmt.Sprintf("- Bounce rate is %s at %s", level, percent(m.AvgBounceRate)),
		fmt.Sprintf("- Weekend vs weekday conversion differential: %.2f percentage points",
			math.Abs(m.WeekendConversionRate-m.WeekdayConversionRate)),
	)

	return strings.Join(lines, "\n")
}

// BuildChatContext renders a generated analysis as Markdown for the chat
// prompt. Section and field order are fixed.
func BuildChatContext(r *models.UXInsightsResponse) string {
	lines := []string{
		"## Executive Summary",
		r.Summary,
		"",
		"## UX Insights",
		"",
	}

	for _, in := range r.Insights {
		lines = append(lines,
			fmt.Sprintf("### %s (Severity: %s)", in.Title, in.Severity),
			"- **ID**: "+in.ID,
			"- **Evidence**: "+in.MetricEvidence,
			"- **Hypothesis**: "+in.HypothesizedCause,
			"- **Recommendation**: "+in.Recommendation,
			"- **Target Segment**: "+in.TargetSegment,
			"",
		)
	}

	m := r.Metrics
	lines = append(lines,
		"## Key Metrics",
		"- Total Sessions: "+thousands(m.TotalSessions),
		"- Total Conversions: "+thousands(m.TotalConversions),
		"- Conversion Rate: "+rate(m.ConversionRate)+"%",
		"- Average Bounce Rate: "+percent(m.AvgBounceRate),
		"- Average Exit Rate: "+percent(m.AvgExitRate),
		"- Weekend Conversion Rate: "+rate(m.WeekendConversionRate)+"%",
		"- Weekday Conversion Rate: "+rate(m.WeekdayConversionRate)+"%",
		"",
	)

	return strings.Join(lines, "\n")
}

// thousands renders 12330 as "12,330".
func thousands(n int) string { return printer.Sprintf("%d", n) }

// rate prints an already-rounded value in its shortest form, keeping one
// decimal for whole numbers: 50 -> "50.0", 15.47 -> "15.47".
func rate(f float64) string {
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.ContainsAny(s, ".NI") {
		s += ".0"
	}
	return s
}

// percent renders a fraction as a percentage with 2 decimals: 0.0222 -> "2.22%".
func percent(f float64) string { return fmt.Sprintf("%.2f%%", f*100) }
