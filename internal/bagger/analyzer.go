package bagger

import (
	"fmt"

	"bagger-lab/internal/domain"
)

// Options configures Analyze.
type Options struct {
	MinDays int // minimum observations; 0 means DefaultMinDays
}

func (o Options) minDays() int {
	if o.MinDays <= 0 {
		return DefaultMinDays
	}
	return o.MinDays
}

// Analyze runs the full engine over one instrument's price series and
// assembles its Result. points must be date-sorted and duplicate-free.
func Analyze(ticker string, points []domain.PricePoint, opts Options) (*domain.Result, error) {
	series, err := NewReturnSeries(points, opts.minDays())
	if err != nil {
		return nil, err
	}
	if err := series.checkPeaks(); err != nil {
		return nil, err
	}

	states, err := ClassifySeries(series)
	if err != nil {
		return nil, err
	}

	result := assemble(ticker, series, states)
	if err := Verify(result); err != nil {
		return nil, fmt.Errorf("%s: %w", ticker, err)
	}
	return result, nil
}

// assemble combines the independent passes over series into a Result.
func assemble(ticker string, series *ReturnSeries, states []domain.BaggerState) *domain.Result {
	n := series.Len()
	last := n - 1
	peakIdx := series.PeakIndex()
	maxDD, maxDDDate := MaxDrawdown(series)

	return &domain.Result{
		Ticker:                ticker,
		StartPrice:            series.Price(0),
		FinalPrice:            series.Price(last),
		StartDate:             series.Date(0),
		FinalDate:             series.Date(last),
		TotalDays:             n,
		CurrentState:          states[last],
		CurrentReturnMultiple: series.Multiples[last],
		MaxReturnMultiple:     series.Multiples[peakIdx],
		MaxPrice:              series.Price(peakIdx),
		MaxDate:               series.Date(peakIdx),
		DaysToPeak:            peakIdx + 1,
		Milestones:            FindMilestones(series),
		Transitions:           TrackTransitions(series, states),
		TimeInState:           TimeInState(states),
		First10xDate:          FirstCrossing(series, MultibaggerThreshold),
		First100xDate:         FirstCrossing(series, HundredBaggerThreshold),
		Last10xDate:           LastCrossing(series, MultibaggerThreshold),
		Last100xDate:          LastCrossing(series, HundredBaggerThreshold),
		MaxDrawdown:           maxDD,
		MaxDrawdownDate:       maxDDDate,
		CurrentStreak:         CurrentStreak(series, states),
	}
}

// Verify checks that the derived metrics of r agree with each other.
// Any disagreement is returned as ErrInvariantViolation.
func Verify(r *domain.Result) error {
	if r.TotalDays < 1 {
		return fmt.Errorf("%w: empty result", ErrInvariantViolation)
	}

	sum := 0
	for _, st := range domain.AllStates() {
		days, ok := r.TimeInState[st]
		if !ok {
			return fmt.Errorf("%w: time in state missing %s", ErrInvariantViolation, st)
		}
		sum += days
	}
	if sum != r.TotalDays {
		return fmt.Errorf("%w: time in state sums to %d, want %d", ErrInvariantViolation, sum, r.TotalDays)
	}

	streak := r.CurrentStreak
	if streak.Days < 1 || streak.Days > r.TotalDays {
		return fmt.Errorf("%w: streak of %d days outside [1, %d]", ErrInvariantViolation, streak.Days, r.TotalDays)
	}
	if streak.State != r.CurrentState {
		return fmt.Errorf("%w: streak state %s differs from current %s", ErrInvariantViolation, streak.State, r.CurrentState)
	}

	prevMultiple := 0.0
	for _, m := range r.Milestones {
		if m.Multiple <= prevMultiple {
			return fmt.Errorf("%w: milestones not ascending at %vx", ErrInvariantViolation, m.Multiple)
		}
		prevMultiple = m.Multiple
		remaining := r.TotalDays - m.DaysFromStart + 1
		if m.MaintainedForDays < 1 || m.MaintainedForDays > remaining {
			return fmt.Errorf("%w: %vx maintained %d days outside [1, %d]",
				ErrInvariantViolation, m.Multiple, m.MaintainedForDays, remaining)
		}
	}

	prevDay := 1
	for i, t := range r.Transitions {
		if t.From == t.To {
			return fmt.Errorf("%w: transition %d does not change state", ErrInvariantViolation, i)
		}
		if t.DaysFromStart <= prevDay || t.DaysFromStart > r.TotalDays {
			return fmt.Errorf("%w: transition %d on day %d out of order", ErrInvariantViolation, i, t.DaysFromStart)
		}
		if i > 0 && r.Transitions[i-1].To != t.From {
			return fmt.Errorf("%w: transition %d does not continue from %s", ErrInvariantViolation, i, r.Transitions[i-1].To)
		}
		prevDay = t.DaysFromStart
	}
	if n := len(r.Transitions); n > 0 && r.Transitions[n-1].To != r.CurrentState {
		return fmt.Errorf("%w: last transition ends in %s, current is %s",
			ErrInvariantViolation, r.Transitions[n-1].To, r.CurrentState)
	}

	if r.MaxDrawdown < 0 || r.MaxDrawdown >= 1 {
		return fmt.Errorf("%w: max drawdown %v outside [0, 1)", ErrInvariantViolation, r.MaxDrawdown)
	}

	return nil
}
