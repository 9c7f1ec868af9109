package reporting

import (
	"time"

	"bagger-lab/internal/domain"
)

// Report is the batch-level overview of stored bagger results.
type Report struct {
	// Metadata
	GeneratedAt time.Time

	Summary Summary
	Stories []Story

	// Milestone and transition patterns
	MilestoneStats     []MilestoneStat    // ascending by multiple
	FastestToMilestone []FastestMilestone // one entry per reached headline multiple
	RecentTransitions  RecentTransitions
	Patterns           []Pattern

	// Rows sorted by ticker ASC
	Rows []*domain.ResultRow
}

// Summary aggregates current state and peak achievement over all rows.
type Summary struct {
	Total int

	// One entry per state, ordered by achievement rank, zero counts included.
	StateDistribution []StateCount

	// Peak achievements
	Peak10x  int
	Peak100x int

	// Current vs fallen
	Current10x          int
	Current100x         int
	FallenMultibagger   int
	FallenHundredBagger int

	TopPerformers []PerformerRow // current multiple >= 10, highest first
	MostVolatile  []PerformerRow // most transitions first

	Complexity Complexity
}

// Complexity describes how eventful the journeys were.
type Complexity struct {
	AvgTransitions    float64
	MedianTransitions float64
	MaxTransitions    int
	AvgMilestones     float64
	MedianMilestones  float64
	MaxMilestones     int
}

// StateCount is one line of the state distribution.
type StateCount struct {
	State domain.BaggerState
	Count int
	Pct   float64 // 0..100, 0 when Total is 0
}

// PerformerRow lists a ticker in a ranking table.
type PerformerRow struct {
	Ticker                string
	CurrentState          domain.BaggerState
	CurrentReturnMultiple float64
	MaxReturnMultiple     float64
	TransitionsCount      int
	TotalDays             int
	CurrentStreakDays     int
}

// DrawdownFromPeak is the current distance below the peak multiple, in percent.
func (p PerformerRow) DrawdownFromPeak() float64 {
	if p.MaxReturnMultiple <= 0 {
		return 0
	}
	return (1 - p.CurrentReturnMultiple/p.MaxReturnMultiple) * 100
}

// StreakShare is the current streak as a percentage of the whole series.
func (p PerformerRow) StreakShare() float64 {
	return pct(p.CurrentStreakDays, p.TotalDays)
}

// Story groups tickers whose journey matches one narrative category.
type Story struct {
	Category string
	Tickers  []string
}

func performer(r *domain.ResultRow) PerformerRow {
	return PerformerRow{
		Ticker:                r.Ticker,
		CurrentState:          r.CurrentState,
		CurrentReturnMultiple: r.CurrentReturnMultiple,
		MaxReturnMultiple:     r.MaxReturnMultiple,
		TransitionsCount:      r.TransitionsCount,
		TotalDays:             r.TotalDays,
		CurrentStreakDays:     r.CurrentStreakDays,
	}
}
