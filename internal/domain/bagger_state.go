package domain

import "fmt"

// BaggerState classifies where a return trajectory stands relative to the
// 10x and 100x thresholds, both now and at its historical peak.
type BaggerState string

const (
	StateHundredBagger       BaggerState = "100-bagger"
	StateMultibagger         BaggerState = "multibagger"
	StateFallenHundredBagger BaggerState = "fallen_100-bagger"
	StateFallenMultibagger   BaggerState = "fallen_multibagger"
	StateNoBagger            BaggerState = "no_bagger"
)

// allStates is ordered by achievement rank, highest first.
var allStates = [...]BaggerState{
	StateHundredBagger,
	StateMultibagger,
	StateFallenHundredBagger,
	StateFallenMultibagger,
	StateNoBagger,
}

// AllStates returns every state ordered by achievement rank, highest first.
func AllStates() []BaggerState {
	out := make([]BaggerState, len(allStates))
	copy(out, allStates[:])
	return out
}

// String returns the string representation of BaggerState.
func (s BaggerState) String() string {
	return string(s)
}

// IsValid checks if the state is one of the five known values.
func (s BaggerState) IsValid() bool {
	return s.Rank() >= 0
}

// Rank returns the achievement rank: 4 for HUNDRED_BAGGER down to 0 for
// NO_BAGGER, -1 for an unknown value.
func (s BaggerState) Rank() int {
	for i, st := range allStates {
		if st == s {
			return len(allStates) - 1 - i
		}
	}
	return -1
}

// ParseBaggerState parses the persisted representation of a state.
func ParseBaggerState(v string) (BaggerState, error) {
	s := BaggerState(v)
	if !s.IsValid() {
		return "", fmt.Errorf("unknown bagger state %q", v)
	}
	return s, nil
}
