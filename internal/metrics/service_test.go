package metrics

import (
	"fmt"
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AngelCh415/insightchat-go/internal/store"
)

var cols = []string{"Revenue", "BounceRates", "ExitRates", "PageValues", "Weekend", "Month", "VisitorType"}

func table(rows ...[]string) *store.SessionTable {
	return store.NewSessionTable(cols, rows)
}

func TestComputeTwoRowScenario(t *testing.T) {
	tbl := table(
		[]string{"TRUE", "0.2", "0.1", "10", "TRUE", "Feb", "New_Visitor"},
		[]string{"FALSE", "0.4", "0.3", "0", "FALSE", "Feb", "Returning_Visitor"},
	)

	m, err := Compute(tbl)
	require.NoError(t, err)

	assert.Equal(t, 2, m.TotalSessions)
	assert.Equal(t, 1, m.TotalConversions)
	assert.Equal(t, 50.0, m.ConversionRate)
	assert.Equal(t, 0.3, m.AvgBounceRate)
	assert.Equal(t, 0.2, m.AvgExitRate)
	assert.Equal(t, 5.0, m.AvgPageValue)
	assert.Equal(t, 1, m.WeekendSessions)
	assert.Equal(t, 1, m.WeekdaySessions)
	assert.Equal(t, 100.0, m.WeekendConversionRate)
	assert.Equal(t, 0.0, m.WeekdayConversionRate)

	require.Len(t, m.TopConvertingMonths, 1)
	assert.Equal(t, "Feb", m.TopConvertingMonths[0].Month)
	assert.Equal(t, 2, m.TopConvertingMonths[0].Sessions)
	assert.Equal(t, 1, m.TopConvertingMonths[0].Conversions)
	assert.Equal(t, 50.0, m.TopConvertingMonths[0].ConversionRate)

	assert.Equal(t, 100.0, m.VisitorTypeBreakdown["New_Visitor"].ConversionRate)
	assert.Equal(t, 1, m.VisitorTypeBreakdown["Returning_Visitor"].Sessions)
}

func TestComputeEmptyTable(t *testing.T) {
	m, err := Compute(table())
	require.NoError(t, err)

	assert.Equal(t, 0, m.TotalSessions)
	assert.Equal(t, 0.0, m.ConversionRate)
	assert.Equal(t, 0.0, m.WeekendConversionRate)
	assert.Equal(t, 0.0, m.WeekdayConversionRate)
	assert.Equal(t, 0.0, m.AvgBounceRate)
	assert.NotNil(t, m.VisitorTypeBreakdown)
	assert.NotNil(t, m.TopConvertingMonths)
	assert.Empty(t, m.TopConvertingMonths)
}

func TestComputeBooleanStrings(t *testing.T) {
	tbl := table(
		[]string{"true", "0", "0", "0", "tRuE", "May", "New_Visitor"},
		[]string{"True", "0", "0", "0", "false", "May", "New_Visitor"},
		[]string{"yes", "0", "0", "0", "", "May", "New_Visitor"},
		[]string{"", "0", "0", "0", "garbage", "May", "New_Visitor"},
	)

	m, err := Compute(tbl)
	require.NoError(t, err)

	assert.Equal(t, 2, m.TotalConversions)
	assert.Equal(t, 1, m.WeekendSessions)
	// weekday count covers every non-TRUE row, the weekday rate only FALSE rows
	assert.Equal(t, 3, m.WeekdaySessions)
	assert.Equal(t, 100.0, m.WeekdayConversionRate)
}

func TestComputeSkipsMissingNumbers(t *testing.T) {
	tbl := table(
		[]string{"FALSE", "0.1", "", "NaN", "FALSE", "Jan", "Other"},
		[]string{"FALSE", "", "0.5", "3.333", "FALSE", "Jan", "Other"},
	)

	m, err := Compute(tbl)
	require.NoError(t, err)
	assert.Equal(t, 0.1, m.AvgBounceRate)
	assert.Equal(t, 0.5, m.AvgExitRate)
	assert.Equal(t, 3.33, m.AvgPageValue)
}

func TestComputeRejectsBadNumber(t *testing.T) {
	tbl := table([]string{"FALSE", "0.1", "0.1", "lots", "FALSE", "Jan", "Other"})

	_, err := Compute(tbl)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PageValues")
}

func TestTopMonthsStableOrder(t *testing.T) {
	var rows [][]string
	add := func(month string, sessions, conv int) {
		for i := 0; i < sessions; i++ {
			rev := "FALSE"
			if i < conv {
				rev = "TRUE"
			}
			rows = append(rows, []string{rev, "0", "0", "0", "FALSE", month, "New_Visitor"})
		}
	}
	add("Feb", 4, 1) // 25
	add("Mar", 2, 1) // 50
	add("Nov", 4, 2) // 50, ties with Mar, appears later
	add("Dec", 5, 1) // 20
	add("May", 3, 3) // 100

	m, err := Compute(table(rows...))
	require.NoError(t, err)

	got := make([]string, 0, 3)
	for _, s := range m.TopConvertingMonths {
		got = append(got, s.Month)
	}
	assert.Equal(t, []string{"May", "Mar", "Nov"}, got)
}

func TestRoundTo(t *testing.T) {
	assert.Equal(t, 2.67, round2(2.675))
	assert.Equal(t, 0.12, round2(0.125))
	assert.Equal(t, 33.33, round2(100.0/3))
	assert.Equal(t, 0.0222, round4(0.02222222))
	assert.Equal(t, 0.3, round4((0.2+0.4)/2))
}

// randomTable builds rows from small value pools so groups collide.
func randomTable(r *rand.Rand, n int) *store.SessionTable {
	bools := []string{"TRUE", "FALSE", "true", "False", "", "x"}
	months := []string{"Feb", "Mar", "May", "June", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}
	visitors := []string{"Returning_Visitor", "New_Visitor", "Other"}
	rows := make([][]string, n)
	for i := range rows {
		rows[i] = []string{
			bools[r.Intn(len(bools))],
			fmt.Sprintf("%.4f", r.Float64()*0.2),
			fmt.Sprintf("%.4f", r.Float64()*0.2),
			fmt.Sprintf("%.2f", r.Float64()*100),
			bools[r.Intn(len(bools))],
			months[r.Intn(len(months))],
			visitors[r.Intn(len(visitors))],
		}
	}
	return table(rows...)
}

func TestComputeInvariants(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	for iter := 0; iter < 200; iter++ {
		m, err := Compute(randomTable(r, r.Intn(60)))
		require.NoError(t, err)

		assert.Equal(t, m.TotalSessions, m.WeekendSessions+m.WeekdaySessions)

		sum := 0
		for _, s := range m.VisitorTypeBreakdown {
			sum += s.Sessions
		}
		assert.Equal(t, m.TotalSessions, sum)

		assert.LessOrEqual(t, len(m.TopConvertingMonths), 3)
		assert.True(t, sort.SliceIsSorted(m.TopConvertingMonths, func(i, j int) bool {
			return m.TopConvertingMonths[i].ConversionRate > m.TopConvertingMonths[j].ConversionRate
		}))
		for _, s := range m.TopConvertingMonths {
			assert.LessOrEqual(t, s.Conversions, s.Sessions)
		}

		if m.TotalSessions == 0 {
			assert.Zero(t, m.ConversionRate)
			assert.Zero(t, m.WeekendConversionRate)
			assert.Zero(t, m.WeekdayConversionRate)
		}
	}
}
