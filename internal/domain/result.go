package domain

import "time"

// Milestone records the first day a return multiple threshold was reached.
// Corresponds to bagger_milestones table.
type Milestone struct {
	Multiple          float64   // ladder threshold, e.g. 10 for 10x
	Date              time.Time // first day multiple >= threshold
	Price             float64   // price on that day
	DaysFromStart     int       // 1-indexed day of first hit
	MaintainedForDays int       // consecutive days >= threshold from first hit, inclusive
}

// Transition records a change of classified state between two adjacent days.
// Corresponds to bagger_transitions table.
type Transition struct {
	From           BaggerState
	To             BaggerState
	Date           time.Time // first day the new state holds
	Price          float64
	ReturnMultiple float64
	DaysFromStart  int // 1-indexed day the new state first holds
}

// Streak is the unbroken run of days in one state ending on the last day.
type Streak struct {
	State     BaggerState
	Days      int
	StartDate time.Time
}

// Result is the full bagger analysis of one instrument.
// It is built once by the analyzer and treated as read-only afterwards.
type Result struct {
	Ticker string

	// Basic info
	StartPrice float64
	FinalPrice float64
	StartDate  time.Time
	FinalDate  time.Time
	TotalDays  int

	// Current status
	CurrentState          BaggerState
	CurrentReturnMultiple float64

	// Peak
	MaxReturnMultiple float64
	MaxPrice          float64
	MaxDate           time.Time
	DaysToPeak        int // 1-indexed

	Milestones  []Milestone  // ascending by Multiple
	Transitions []Transition // ascending by DaysFromStart

	// TimeInState holds a count for every state, zero included.
	TimeInState map[BaggerState]int

	// Threshold crossings (nil when never reached)
	First10xDate  *time.Time
	First100xDate *time.Time
	Last10xDate   *time.Time
	Last100xDate  *time.Time

	// Drawdown from running peak, as a fraction in [0, 1)
	MaxDrawdown     float64
	MaxDrawdownDate time.Time

	CurrentStreak Streak
}

// InitialState returns the state classified on the first day.
func (r *Result) InitialState() BaggerState {
	if len(r.Transitions) > 0 {
		return r.Transitions[0].From
	}
	return r.CurrentState
}

// Milestone returns the milestone for the given multiple, if reached.
func (r *Result) Milestone(multiple float64) (Milestone, bool) {
	for _, m := range r.Milestones {
		if m.Multiple == multiple {
			return m, true
		}
	}
	return Milestone{}, false
}

// DaysIn returns the number of days classified as state.
func (r *Result) DaysIn(state BaggerState) int {
	return r.TimeInState[state]
}
