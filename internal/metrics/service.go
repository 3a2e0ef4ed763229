package metrics

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/AngelCh415/insightchat-go/internal/models"
	"github.com/AngelCh415/insightchat-go/internal/store"
)

const topMonths = 3

// cells read as missing, skipped by the averages
var naValues = map[string]struct{}{
	"": {}, "#N/A": {}, "#N/A N/A": {}, "#NA": {}, "-1.#IND": {}, "-1.#QNAN": {},
	"-NaN": {}, "-nan": {}, "1.#IND": {}, "1.#QNAN": {}, "<NA>": {}, "N/A": {},
	"NA": {}, "NULL": {}, "NaN": {}, "None": {}, "n/a": {}, "nan": {}, "null": {},
}

func isTrue(s string) bool  { return strings.ToUpper(s) == "TRUE" }
func isFalse(s string) bool { return strings.ToUpper(s) == "FALSE" }

// counter tracks sessions and conversions for one partition.
type counter struct{ sessions, conversions int }

func (c *counter) add(converted bool) {
	c.sessions++
	if converted {
		c.conversions++
	}
}

func (c counter) rate() float64 { return pct(c.conversions, c.sessions) }

// grouped keeps first-appearance order so ties sort stably.
type grouped struct {
	order []string
	by    map[string]*counter
}

func newGrouped() *grouped { return &grouped{by: map[string]*counter{}} }

func (g *grouped) add(key string, converted bool) {
	c, ok := g.by[key]
	if !ok {
		c = &counter{}
		g.by[key] = c
		g.order = append(g.order, key)
	}
	c.add(converted)
}

// Compute derives the aggregate snapshot for t. It is pure; the only
// failure is a numeric cell that is neither a number nor a missing marker.
func Compute(t *store.SessionTable) (models.ComputedMetrics, error) {
	n := t.Len()

	var all, weekend, weekday counter
	visitors := newGrouped()
	months := newGrouped()

	revenue := t.Column("Revenue")
	weekendCol := t.Column("Weekend")
	visitorCol := t.Column("VisitorType")
	monthCol := t.Column("Month")

	for i := 0; i < n; i++ {
		conv := isTrue(revenue[i])
		all.add(conv)
		switch {
		case isTrue(weekendCol[i]):
			weekend.add(conv)
		case isFalse(weekendCol[i]):
			weekday.add(conv)
		}
		visitors.add(visitorCol[i], conv)
		months.add(monthCol[i], conv)
	}

	bounce, err := mean(t, "BounceRates")
	if err != nil {
		return models.ComputedMetrics{}, err
	}
	exit, err := mean(t, "ExitRates")
	if err != nil {
		return models.ComputedMetrics{}, err
	}
	pageValue, err := mean(t, "PageValues")
	if err != nil {
		return models.ComputedMetrics{}, err
	}

	breakdown := make(map[string]models.VisitorSegment, len(visitors.order))
	for _, k := range visitors.order {
		c := visitors.by[k]
		breakdown[k] = models.VisitorSegment{Sessions: c.sessions, ConversionRate: round2(c.rate())}
	}

	return models.ComputedMetrics{
		TotalSessions:    n,
		TotalConversions: all.conversions,
		ConversionRate:   round2(all.rate()),
		AvgBounceRate:    round4(bounce),
		AvgExitRate:      round4(exit),
		AvgPageValue:     round2(pageValue),
		WeekendSessions:  weekend.sessions,
		// anything not TRUE counts as a weekday session
		WeekdaySessions:       n - weekend.sessions,
		WeekendConversionRate: round2(weekend.rate()),
		WeekdayConversionRate: round2(weekday.rate()),
		VisitorTypeBreakdown:  breakdown,
		TopConvertingMonths:   rankMonths(months),
	}, nil
}

func rankMonths(g *grouped) []models.MonthStat {
	out := make([]models.MonthStat, 0, len(g.order))
	for _, k := range g.order {
		c := g.by[k]
		out = append(out, models.MonthStat{
			Month:          k,
			Sessions:       c.sessions,
			Conversions:    c.conversions,
			ConversionRate: round2(c.rate()),
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ConversionRate > out[j].ConversionRate })
	if len(out) > topMonths {
		out = out[:topMonths]
	}
	return out
}

func mean(t *store.SessionTable, col string) (float64, error) {
	var sum float64
	var cnt int
	for i, s := range t.Column(col) {
		s = strings.TrimSpace(s)
		if _, na := naValues[s]; na {
			continue
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsInf(v, 0) {
			return 0, fmt.Errorf("column %s row %d: invalid number %q", col, i+1, s)
		}
		if math.IsNaN(v) {
			continue
		}
		sum += v
		cnt++
	}
	return safeDiv(sum, float64(cnt)), nil
}

func pct(part, whole int) float64 {
	return safeDiv(float64(part), float64(whole)) * 100
}

func safeDiv(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	return a / b
}

func round2(f float64) float64 { return roundTo(f, 2) }
func round4(f float64) float64 { return roundTo(f, 4) }

// roundTo rounds the exact binary value half-to-even, so 2.675 gives 2.67.
func roundTo(f float64, places int) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return f
	}
	r, _ := strconv.ParseFloat(strconv.FormatFloat(f, 'f', places, 64), 64)
	return r
}
