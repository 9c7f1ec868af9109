package bagger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bagger-lab/internal/domain"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		multiple float64
		peak     float64
		want     domain.BaggerState
	}{
		{"start", 1, 1, domain.StateNoBagger},
		{"just below 10x", 9.99, 9.99, domain.StateNoBagger},
		{"exactly 10x", 10, 10, domain.StateMultibagger},
		{"exactly 100x", 100, 100, domain.StateHundredBagger},
		{"recovered above 100x", 120, 300, domain.StateHundredBagger},
		{"fell below 100x but above 10x", 50, 300, domain.StateMultibagger},
		{"exactly 10x after 100x peak", 10, 150, domain.StateMultibagger},
		{"fell below 10x after 100x peak", 8, 150, domain.StateFallenHundredBagger},
		{"fell below 10x after 10x peak", 8, 12, domain.StateFallenMultibagger},
		{"fell below 1x after 10x peak", 0.5, 10, domain.StateFallenMultibagger},
		{"below start", 0.3, 1, domain.StateNoBagger},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.multiple, tt.peak))
		})
	}
}

func TestClassifyChecked_PeakBelowMultiple(t *testing.T) {
	_, err := ClassifyChecked(12, 11)
	assert.ErrorIs(t, err, ErrInvariantViolation)

	st, err := ClassifyChecked(12, 12)
	require.NoError(t, err)
	assert.Equal(t, domain.StateMultibagger, st)
}

func TestClassifySeries_ScenarioA(t *testing.T) {
	s, err := NewReturnSeries(makePoints(1, 5, 12, 150, 90, 8), 1)
	require.NoError(t, err)

	states, err := ClassifySeries(s)
	require.NoError(t, err)
	assert.Equal(t, []domain.BaggerState{
		domain.StateNoBagger,
		domain.StateNoBagger,
		domain.StateMultibagger,
		domain.StateHundredBagger,
		domain.StateMultibagger,
		domain.StateFallenHundredBagger,
	}, states)
}

func TestClassifySeries_CorruptPeaks(t *testing.T) {
	s, err := NewReturnSeries(makePoints(1, 20), 1)
	require.NoError(t, err)
	s.Peaks[1] = 5

	_, err = ClassifySeries(s)
	assert.ErrorIs(t, err, ErrInvariantViolation)
}
