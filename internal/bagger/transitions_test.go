package bagger

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bagger-lab/internal/domain"
)

func classified(t *testing.T, prices ...float64) (*ReturnSeries, []domain.BaggerState) {
	t.Helper()
	s, err := NewReturnSeries(makePoints(prices...), 1)
	require.NoError(t, err)
	states, err := ClassifySeries(s)
	require.NoError(t, err)
	return s, states
}

func TestTrackTransitions_ScenarioA(t *testing.T) {
	s, states := classified(t, 1, 5, 12, 150, 90, 8)

	got := TrackTransitions(s, states)
	require.Len(t, got, 4)

	assert.Equal(t, domain.Transition{
		From: domain.StateNoBagger, To: domain.StateMultibagger,
		Date: day(3), Price: 12, ReturnMultiple: 12, DaysFromStart: 3,
	}, got[0])
	assert.Equal(t, domain.StateHundredBagger, got[1].To)
	assert.Equal(t, 4, got[1].DaysFromStart)
	assert.Equal(t, domain.StateMultibagger, got[2].To)
	assert.Equal(t, 5, got[2].DaysFromStart)
	assert.Equal(t, domain.Transition{
		From: domain.StateMultibagger, To: domain.StateFallenHundredBagger,
		Date: day(6), Price: 8, ReturnMultiple: 8, DaysFromStart: 6,
	}, got[3])
}

func TestTrackTransitions_ScenarioB_NoChange(t *testing.T) {
	s, states := classified(t, 1, 2, 3, 4, 5, 6, 7, 8, 9)

	assert.Empty(t, TrackTransitions(s, states))
}

func TestTrackTransitions_ScenarioC_DailyOscillation(t *testing.T) {
	s, states := classified(t, 1, 11, 9, 11, 9)

	got := TrackTransitions(s, states)
	require.Len(t, got, 4)
	assert.Equal(t, domain.StateNoBagger, got[0].From)
	assert.Equal(t, domain.StateMultibagger, got[0].To)
	assert.Equal(t, domain.StateFallenMultibagger, got[1].To)
	assert.Equal(t, domain.StateMultibagger, got[2].To)
	assert.Equal(t, domain.StateFallenMultibagger, got[3].To)
	for i, tr := range got {
		assert.Equal(t, i+2, tr.DaysFromStart)
	}
}

func TestTrackTransitions_SingleDay(t *testing.T) {
	s, states := classified(t, 3)

	assert.Empty(t, TrackTransitions(s, states))
}

func TestTrackTransitions_ReplayMatchesClassification(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	for run := 0; run < 100; run++ {
		s, states := classified(t, randomWalk(rng, 600)...)
		transitions := TrackTransitions(s, states)

		for i := 1; i < len(transitions); i++ {
			assert.Greater(t, transitions[i].DaysFromStart, transitions[i-1].DaysFromStart)
			assert.Equal(t, transitions[i-1].To, transitions[i].From)
		}
		for _, tr := range transitions {
			assert.NotEqual(t, tr.From, tr.To)
		}

		replayed := ReplayTransitions(states[0], transitions, len(states))
		assert.Equal(t, states, replayed)
	}
}

func TestReplayTransitions_NoTransitions(t *testing.T) {
	got := ReplayTransitions(domain.StateMultibagger, nil, 3)
	assert.Equal(t, []domain.BaggerState{
		domain.StateMultibagger, domain.StateMultibagger, domain.StateMultibagger,
	}, got)
}
