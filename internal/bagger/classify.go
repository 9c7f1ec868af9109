package bagger

import (
	"fmt"

	"bagger-lab/internal/domain"
)

// Classification thresholds (return multiples).
const (
	MultibaggerThreshold   = 10.0
	HundredBaggerThreshold = 100.0
)

// Classify maps the current return multiple and the peak so far to a state.
// Current achievement is checked before the historical peak, so a series
// back at or above 10x reads MULTIBAGGER even after peaking above 100x.
func Classify(multiple, peak float64) domain.BaggerState {
	switch {
	case multiple >= HundredBaggerThreshold:
		return domain.StateHundredBagger
	case multiple >= MultibaggerThreshold:
		return domain.StateMultibagger
	case peak >= HundredBaggerThreshold:
		return domain.StateFallenHundredBagger
	case peak >= MultibaggerThreshold:
		return domain.StateFallenMultibagger
	default:
		return domain.StateNoBagger
	}
}

// ClassifyChecked is Classify for inputs that must satisfy peak >= multiple.
// A violation returns ErrInvariantViolation.
func ClassifyChecked(multiple, peak float64) (domain.BaggerState, error) {
	if peak < multiple {
		return "", fmt.Errorf("%w: peak %v below multiple %v", ErrInvariantViolation, peak, multiple)
	}
	return Classify(multiple, peak), nil
}

// ClassifySeries classifies every day of s. The returned slice is shared by
// the transition, time-in-state and streak passes.
func ClassifySeries(s *ReturnSeries) ([]domain.BaggerState, error) {
	states := make([]domain.BaggerState, s.Len())
	for i := range states {
		st, err := ClassifyChecked(s.Multiples[i], s.Peaks[i])
		if err != nil {
			return nil, fmt.Errorf("day %d: %w", i+1, err)
		}
		states[i] = st
	}
	return states, nil
}
