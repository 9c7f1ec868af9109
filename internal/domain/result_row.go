package domain

import "time"

// ResultRow is the flattened, persistence-ready form of a Result.
// Corresponds to bagger_results table.
type ResultRow struct {
	Ticker string

	StartPrice float64
	FinalPrice float64
	StartDate  time.Time
	FinalDate  time.Time
	TotalDays  int

	CurrentState          BaggerState
	CurrentReturnMultiple float64

	MaxReturnMultiple float64
	MaxPrice          float64
	MaxDate           time.Time
	DaysToPeak        int

	First10xDate  *time.Time
	First100xDate *time.Time
	Last10xDate   *time.Time
	Last100xDate  *time.Time

	MaxDrawdown     float64
	MaxDrawdownDate time.Time

	CurrentStreakState     BaggerState
	CurrentStreakDays      int
	CurrentStreakStartDate time.Time

	// Time in state
	DaysAsNoBagger            int
	DaysAsMultibagger         int
	DaysAsHundredBagger       int
	DaysAsFallenMultibagger   int
	DaysAsFallenHundredBagger int

	// Counts
	MilestonesHit    int
	TransitionsCount int

	// Milestone projections
	First2xDate   *time.Time
	First5xDate   *time.Time
	DaysAbove10x  int // MaintainedForDays of the 10x milestone, 0 if never reached
	DaysAbove100x int // MaintainedForDays of the 100x milestone, 0 if never reached
}

// FlattenResult projects a Result into a ResultRow. Milestone-derived
// fields are read from r.Milestones so they cannot disagree with it.
func FlattenResult(r *Result) *ResultRow {
	row := &ResultRow{
		Ticker:                    r.Ticker,
		StartPrice:                r.StartPrice,
		FinalPrice:                r.FinalPrice,
		StartDate:                 r.StartDate,
		FinalDate:                 r.FinalDate,
		TotalDays:                 r.TotalDays,
		CurrentState:              r.CurrentState,
		CurrentReturnMultiple:     r.CurrentReturnMultiple,
		MaxReturnMultiple:         r.MaxReturnMultiple,
		MaxPrice:                  r.MaxPrice,
		MaxDate:                   r.MaxDate,
		DaysToPeak:                r.DaysToPeak,
		First10xDate:              copyTime(r.First10xDate),
		First100xDate:             copyTime(r.First100xDate),
		Last10xDate:               copyTime(r.Last10xDate),
		Last100xDate:              copyTime(r.Last100xDate),
		MaxDrawdown:               r.MaxDrawdown,
		MaxDrawdownDate:           r.MaxDrawdownDate,
		CurrentStreakState:        r.CurrentStreak.State,
		CurrentStreakDays:         r.CurrentStreak.Days,
		CurrentStreakStartDate:    r.CurrentStreak.StartDate,
		DaysAsNoBagger:            r.DaysIn(StateNoBagger),
		DaysAsMultibagger:         r.DaysIn(StateMultibagger),
		DaysAsHundredBagger:       r.DaysIn(StateHundredBagger),
		DaysAsFallenMultibagger:   r.DaysIn(StateFallenMultibagger),
		DaysAsFallenHundredBagger: r.DaysIn(StateFallenHundredBagger),
		MilestonesHit:             len(r.Milestones),
		TransitionsCount:          len(r.Transitions),
	}

	if m, ok := r.Milestone(2); ok {
		row.First2xDate = copyTime(&m.Date)
	}
	if m, ok := r.Milestone(5); ok {
		row.First5xDate = copyTime(&m.Date)
	}
	if m, ok := r.Milestone(10); ok {
		row.DaysAbove10x = m.MaintainedForDays
	}
	if m, ok := r.Milestone(100); ok {
		row.DaysAbove100x = m.MaintainedForDays
	}

	return row
}

// RestoreResult rebuilds a Result from its persisted parts.
func RestoreResult(row *ResultRow, milestones []Milestone, transitions []Transition) *Result {
	r := &Result{
		Ticker:                row.Ticker,
		StartPrice:            row.StartPrice,
		FinalPrice:            row.FinalPrice,
		StartDate:             row.StartDate,
		FinalDate:             row.FinalDate,
		TotalDays:             row.TotalDays,
		CurrentState:          row.CurrentState,
		CurrentReturnMultiple: row.CurrentReturnMultiple,
		MaxReturnMultiple:     row.MaxReturnMultiple,
		MaxPrice:              row.MaxPrice,
		MaxDate:               row.MaxDate,
		DaysToPeak:            row.DaysToPeak,
		Milestones:            append([]Milestone(nil), milestones...),
		Transitions:           append([]Transition(nil), transitions...),
		TimeInState: map[BaggerState]int{
			StateHundredBagger:       row.DaysAsHundredBagger,
			StateMultibagger:         row.DaysAsMultibagger,
			StateFallenHundredBagger: row.DaysAsFallenHundredBagger,
			StateFallenMultibagger:   row.DaysAsFallenMultibagger,
			StateNoBagger:            row.DaysAsNoBagger,
		},
		First10xDate:    copyTime(row.First10xDate),
		First100xDate:   copyTime(row.First100xDate),
		Last10xDate:     copyTime(row.Last10xDate),
		Last100xDate:    copyTime(row.Last100xDate),
		MaxDrawdown:     row.MaxDrawdown,
		MaxDrawdownDate: row.MaxDrawdownDate,
		CurrentStreak: Streak{
			State:     row.CurrentStreakState,
			Days:      row.CurrentStreakDays,
			StartDate: row.CurrentStreakStartDate,
		},
	}
	return r
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

// Clone returns a deep copy of r.
func (r *ResultRow) Clone() *ResultRow {
	c := *r
	c.First10xDate = copyTime(r.First10xDate)
	c.First100xDate = copyTime(r.First100xDate)
	c.Last10xDate = copyTime(r.Last10xDate)
	c.Last100xDate = copyTime(r.Last100xDate)
	c.First2xDate = copyTime(r.First2xDate)
	c.First5xDate = copyTime(r.First5xDate)
	return &c
}
