package reporting

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bagger-lab/internal/domain"
	"bagger-lab/internal/storage"
)

func milestone(ticker string, multiple float64, days, maintained int) storage.TickerMilestone {
	return storage.TickerMilestone{
		Ticker: ticker,
		Milestone: domain.Milestone{
			Multiple:          multiple,
			Date:              time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, days-1),
			DaysFromStart:     days,
			MaintainedForDays: maintained,
		},
	}
}

func transition(ticker string, to domain.BaggerState, date string) storage.TickerTransition {
	d, _ := domain.ParseDate(date)
	return storage.TickerTransition{Ticker: ticker, Transition: domain.Transition{To: to, Date: d}}
}

func TestSummarizeMilestones(t *testing.T) {
	stats := SummarizeMilestones([]storage.TickerMilestone{
		milestone("AAA", 10, 300, 100),
		milestone("AAA", 2, 50, 900),
		milestone("BBB", 10, 100, 20),
		milestone("CCC", 10, 500, 60),
	})

	require.Len(t, stats, 2)
	assert.Equal(t, MilestoneStat{Multiple: 2, Count: 1, AvgDaysToReach: 50, FastestDays: 50, SlowestDays: 50, AvgMaintainedDays: 900}, stats[0])
	assert.Equal(t, MilestoneStat{Multiple: 10, Count: 3, AvgDaysToReach: 300, FastestDays: 100, SlowestDays: 500, AvgMaintainedDays: 60}, stats[1])

	assert.Empty(t, SummarizeMilestones(nil))
}

func TestFastestToMilestones(t *testing.T) {
	fastest := FastestToMilestones([]storage.TickerMilestone{
		milestone("DDD", 10, 400, 1),
		milestone("AAA", 10, 300, 1),
		milestone("CCC", 10, 300, 1),
		milestone("BBB", 10, 100, 1),
		milestone("AAA", 20, 350, 1),
		milestone("AAA", 100, 900, 1),
	})

	require.Len(t, fastest, 2, "only reached headline multiples are listed")
	assert.Equal(t, 10.0, fastest[0].Multiple)
	require.Len(t, fastest[0].Entries, MaxFastestTickers)
	assert.Equal(t, "BBB", fastest[0].Entries[0].Ticker)
	assert.Equal(t, "AAA", fastest[0].Entries[1].Ticker, "ties break by ticker")
	assert.Equal(t, "CCC", fastest[0].Entries[2].Ticker)

	assert.Equal(t, 100.0, fastest[1].Multiple)
	assert.Equal(t, 900, fastest[1].Entries[0].DaysFromStart)
}

func TestCountRecentTransitions(t *testing.T) {
	rt := CountRecentTransitions([]storage.TickerTransition{
		transition("AAA", domain.StateMultibagger, "2020-01-01"),
		transition("AAA", domain.StateFallenMultibagger, "2021-06-01"),
		transition("BBB", domain.StateMultibagger, "2021-06-02"),
		transition("BBB", domain.StateHundredBagger, "2022-06-01"),
		transition("CCC", domain.StateMultibagger, "2022-06-02"),
	})

	assert.Equal(t, "2021-06-02", rt.Since.Format(domain.DateLayout))
	require.Len(t, rt.Counts, 2)
	assert.Equal(t, domain.StateMultibagger, rt.Counts[0].State)
	assert.Equal(t, 2, rt.Counts[0].Count)
	assert.InDelta(t, 66.67, rt.Counts[0].Pct, 0.01)
	assert.Equal(t, domain.StateHundredBagger, rt.Counts[1].State)
	assert.Equal(t, 1, rt.Counts[1].Count)
}

func TestCountRecentTransitions_TiesKeepRankOrder(t *testing.T) {
	rt := CountRecentTransitions([]storage.TickerTransition{
		transition("AAA", domain.StateNoBagger, "2020-01-01"),
		transition("BBB", domain.StateHundredBagger, "2020-01-02"),
	})

	require.Len(t, rt.Counts, 2)
	assert.Equal(t, domain.StateHundredBagger, rt.Counts[0].State)
	assert.Equal(t, domain.StateNoBagger, rt.Counts[1].State)
}

func TestCountRecentTransitions_Empty(t *testing.T) {
	rt := CountRecentTransitions(nil)
	assert.True(t, rt.Since.IsZero())
	assert.Empty(t, rt.Counts)
}
