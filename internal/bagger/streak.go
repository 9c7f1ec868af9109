package bagger

import (
	"time"

	"bagger-lab/internal/domain"
)

// TimeInState counts days per state. Every state is present in the result,
// with zero for states never observed.
func TimeInState(states []domain.BaggerState) map[domain.BaggerState]int {
	counts := make(map[domain.BaggerState]int, len(domain.AllStates()))
	for _, st := range domain.AllStates() {
		counts[st] = 0
	}
	for _, st := range states {
		counts[st]++
	}
	return counts
}

// CurrentStreak walks back from the last day while the state is unchanged.
// The last day itself counts, so Days is at least 1 for a non-empty series.
func CurrentStreak(s *ReturnSeries, states []domain.BaggerState) domain.Streak {
	last := len(states) - 1
	if last < 0 {
		return domain.Streak{State: domain.StateNoBagger}
	}

	current := states[last]
	start := last
	for i := last - 1; i >= 0 && states[i] == current; i-- {
		start = i
	}

	return domain.Streak{
		State:     current,
		Days:      last - start + 1,
		StartDate: s.Date(start),
	}
}

// MaxDrawdown returns the largest fractional decline from the running peak
// and the first date it occurred. A series that never declines returns 0
// and its first date.
func MaxDrawdown(s *ReturnSeries) (float64, time.Time) {
	if s.Len() == 0 {
		return 0, time.Time{}
	}

	maxDD := 0.0
	idx := 0
	for i := range s.Multiples {
		dd := drawdown(s.Multiples[i], s.Peaks[i])
		if dd > maxDD {
			maxDD = dd
			idx = i
		}
	}
	return maxDD, s.Date(idx)
}

func drawdown(multiple, peak float64) float64 {
	if peak <= 0 {
		return 0
	}
	return (peak - multiple) / peak
}
