package bagger

import "bagger-lab/internal/domain"

// TrackTransitions emits one Transition per day whose state differs from the
// previous day's. Day 0 only seeds the previous state. No smoothing is
// applied: a one-day excursion produces two transitions.
func TrackTransitions(s *ReturnSeries, states []domain.BaggerState) []domain.Transition {
	var transitions []domain.Transition
	if len(states) == 0 {
		return transitions
	}

	prev := states[0]
	for i := 1; i < len(states); i++ {
		if states[i] == prev {
			continue
		}
		transitions = append(transitions, domain.Transition{
			From:           prev,
			To:             states[i],
			Date:           s.Date(i),
			Price:          s.Price(i),
			ReturnMultiple: s.Multiples[i],
			DaysFromStart:  i + 1,
		})
		prev = states[i]
	}

	return transitions
}

// ReplayTransitions rebuilds the per-day state sequence of a series of
// totalDays days from its initial state and its transitions.
func ReplayTransitions(initial domain.BaggerState, transitions []domain.Transition, totalDays int) []domain.BaggerState {
	states := make([]domain.BaggerState, totalDays)
	current := initial
	next := 0
	for day := 1; day <= totalDays; day++ {
		for next < len(transitions) && transitions[next].DaysFromStart == day {
			current = transitions[next].To
			next++
		}
		states[day-1] = current
	}
	return states
}
