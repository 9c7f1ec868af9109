package reporting

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bagger-lab/internal/domain"
)

func patternByName(t *testing.T, patterns []Pattern, name string) Pattern {
	t.Helper()
	for _, p := range patterns {
		if p.Name == name {
			return p
		}
	}
	t.Fatalf("pattern %s missing", name)
	return Pattern{}
}

func exampleTickers(p Pattern) []string {
	var out []string
	for _, e := range p.Examples {
		out = append(out, e.Ticker)
	}
	return out
}

func TestFindPatterns(t *testing.T) {
	bloomer := row("LATE", domain.StateMultibagger, 12, 12, 1)
	bloomer.CurrentStreakDays = 600

	rows := []*domain.ResultRow{
		row("PHX1", domain.StateMultibagger, 60, 150, 3),
		row("PHX2", domain.StateMultibagger, 90, 400, 4),
		row("FELL", domain.StateFallenHundredBagger, 5, 150, 3),
		row("EDDY", domain.StateMultibagger, 25, 30, 2),
		row("BUSY", domain.StateMultibagger, 40, 45, 8),
		row("WILD", domain.StateNoBagger, 2, 60, 12),
		bloomer,
	}

	patterns := FindPatterns(rows)
	require.Len(t, patterns, 4)
	assert.Equal(t, PatternPhoenix, patterns[0].Name)
	assert.Equal(t, PatternLateBloomer, patterns[3].Name)

	phoenix := patternByName(t, patterns, PatternPhoenix)
	assert.Equal(t, []string{"PHX2", "PHX1"}, exampleTickers(phoenix))
	assert.InDelta(t, 77.5, phoenix.Examples[0].DrawdownFromPeak(), 1e-9)

	assert.Equal(t, []string{"EDDY"}, exampleTickers(patternByName(t, patterns, PatternSteadyEddie)))
	assert.Equal(t, []string{"WILD", "BUSY"}, exampleTickers(patternByName(t, patterns, PatternRollerCoaster)))

	late := patternByName(t, patterns, PatternLateBloomer)
	assert.Equal(t, []string{"LATE"}, exampleTickers(late))
	assert.InDelta(t, 60.0, late.Examples[0].StreakShare(), 1e-9)
}

func TestFindPatterns_HalfStreakIsNotLate(t *testing.T) {
	r := row("HALF", domain.StateMultibagger, 12, 12, 1)
	r.CurrentStreakDays = 500

	late := patternByName(t, FindPatterns([]*domain.ResultRow{r}), PatternLateBloomer)
	assert.Zero(t, late.Total)
	assert.Empty(t, late.Examples)
}

func TestFindPatterns_CapsExamples(t *testing.T) {
	var rows []*domain.ResultRow
	for i := 0; i < MaxPatternExamples+3; i++ {
		rows = append(rows, row(string(rune('A'+i)), domain.StateNoBagger, 1, 2, 8+i))
	}

	rc := patternByName(t, FindPatterns(rows), PatternRollerCoaster)
	assert.Equal(t, MaxPatternExamples+3, rc.Total)
	require.Len(t, rc.Examples, MaxPatternExamples)
	assert.Equal(t, 8+MaxPatternExamples+2, rc.Examples[0].TransitionsCount)
}
