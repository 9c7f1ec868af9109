package reporting

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bagger-lab/internal/domain"
)

func row(ticker string, state domain.BaggerState, current, peak float64, transitions int) *domain.ResultRow {
	return &domain.ResultRow{
		Ticker:                ticker,
		CurrentState:          state,
		CurrentReturnMultiple: current,
		MaxReturnMultiple:     peak,
		TransitionsCount:      transitions,
		TotalDays:             1000,
	}
}

func TestSummarize_Counts(t *testing.T) {
	rows := []*domain.ResultRow{
		row("AAA", domain.StateHundredBagger, 150, 200, 2),
		row("BBB", domain.StateMultibagger, 20, 120, 5),
		row("CCC", domain.StateFallenHundredBagger, 4, 110, 3),
		row("DDD", domain.StateFallenMultibagger, 2, 15, 2),
		row("EEE", domain.StateNoBagger, 1.5, 3, 0),
		row("FFF", domain.StateNoBagger, 0.5, 1, 0),
	}

	s := Summarize(rows, 0)

	assert.Equal(t, 6, s.Total)
	assert.Equal(t, 4, s.Peak10x)
	assert.Equal(t, 3, s.Peak100x)
	assert.Equal(t, 2, s.Current10x)
	assert.Equal(t, 1, s.Current100x)
	assert.Equal(t, 1, s.FallenMultibagger)
	assert.Equal(t, 1, s.FallenHundredBagger)

	require.Len(t, s.StateDistribution, 5)
	assert.Equal(t, domain.StateHundredBagger, s.StateDistribution[0].State)
	assert.Equal(t, domain.StateNoBagger, s.StateDistribution[4].State)
	assert.Equal(t, 2, s.StateDistribution[4].Count)
	assert.InDelta(t, 100.0/3, s.StateDistribution[4].Pct, 1e-9)

	total := 0
	for _, sc := range s.StateDistribution {
		total += sc.Count
	}
	assert.Equal(t, s.Total, total)
}

func TestSummarize_TopPerformers(t *testing.T) {
	rows := []*domain.ResultRow{
		row("LOW", domain.StateMultibagger, 12, 12, 1),
		row("HIGH", domain.StateHundredBagger, 300, 300, 2),
		row("MID", domain.StateMultibagger, 40, 60, 1),
		row("NONE", domain.StateNoBagger, 9.9, 9.9, 0),
		row("TIE", domain.StateMultibagger, 40, 45, 1),
	}

	s := Summarize(rows, 3)

	require.Len(t, s.TopPerformers, 3)
	assert.Equal(t, "HIGH", s.TopPerformers[0].Ticker)
	assert.Equal(t, "MID", s.TopPerformers[1].Ticker)
	assert.Equal(t, "TIE", s.TopPerformers[2].Ticker)
}

func TestSummarize_MostVolatile(t *testing.T) {
	rows := []*domain.ResultRow{
		row("CALM", domain.StateNoBagger, 1, 1, 0),
		row("B", domain.StateMultibagger, 11, 30, 12),
		row("A", domain.StateMultibagger, 11, 30, 12),
		row("C", domain.StateFallenMultibagger, 3, 30, 4),
	}

	s := Summarize(rows, 5)

	require.Len(t, s.MostVolatile, 3)
	assert.Equal(t, "A", s.MostVolatile[0].Ticker)
	assert.Equal(t, "B", s.MostVolatile[1].Ticker)
	assert.Equal(t, "C", s.MostVolatile[2].Ticker)
}

func TestSummarize_Empty(t *testing.T) {
	s := Summarize(nil, 5)

	assert.Equal(t, 0, s.Total)
	require.Len(t, s.StateDistribution, 5)
	for _, sc := range s.StateDistribution {
		assert.Zero(t, sc.Count)
		assert.Zero(t, sc.Pct)
	}
	assert.Empty(t, s.TopPerformers)
	assert.Empty(t, s.MostVolatile)
	assert.Equal(t, Complexity{}, s.Complexity)
}

func TestSummarize_Complexity(t *testing.T) {
	rows := []*domain.ResultRow{
		row("AAA", domain.StateMultibagger, 20, 30, 4),
		row("BBB", domain.StateNoBagger, 1, 2, 0),
		row("CCC", domain.StateMultibagger, 12, 15, 1),
		row("DDD", domain.StateFallenMultibagger, 3, 11, 9),
	}
	for i, hit := range []int{5, 1, 4, 6} {
		rows[i].MilestonesHit = hit
	}

	c := Summarize(rows, 0).Complexity

	assert.InDelta(t, 3.5, c.AvgTransitions, 1e-9)
	assert.InDelta(t, 2.5, c.MedianTransitions, 1e-9, "even sample averages the middle pair")
	assert.Equal(t, 9, c.MaxTransitions)
	assert.InDelta(t, 4.0, c.AvgMilestones, 1e-9)
	assert.InDelta(t, 4.5, c.MedianMilestones, 1e-9)
	assert.Equal(t, 6, c.MaxMilestones)

	c = Summarize(rows[:3], 0).Complexity
	assert.InDelta(t, 1.0, c.MedianTransitions, 1e-9)
}

func TestSummarize_DefaultTopN(t *testing.T) {
	var rows []*domain.ResultRow
	for i := 0; i < 8; i++ {
		rows = append(rows, row(fmt.Sprintf("T%d", i), domain.StateMultibagger, float64(10+i), 50, i+1))
	}

	s := Summarize(rows, 0)

	assert.Len(t, s.TopPerformers, DefaultTopN)
	assert.Len(t, s.MostVolatile, DefaultTopN)
	assert.Equal(t, "T7", s.TopPerformers[0].Ticker)
}
