package reporting

import (
	"sort"

	"bagger-lab/internal/domain"
)

// Pattern names.
const (
	PatternPhoenix       = "phoenix"
	PatternSteadyEddie   = "steady_eddie"
	PatternRollerCoaster = "roller_coaster"
	PatternLateBloomer   = "late_bloomer"
)

// MaxPatternExamples caps the examples kept per pattern.
const MaxPatternExamples = 5

// Pattern is a journey shape with the tickers that fit it. Unlike stories,
// a ticker may appear under several patterns.
type Pattern struct {
	Name        string
	Description string
	Total       int            // matching tickers before the cap
	Examples    []PerformerRow // at most MaxPatternExamples
}

type patternRule struct {
	name        string
	description string
	match       func(r *domain.ResultRow) bool
	less        func(a, b PerformerRow) bool
}

var patternRules = []patternRule{
	{
		name:        PatternPhoenix,
		description: "Peaked at 100x+ and still holds 50x+.",
		match: func(r *domain.ResultRow) bool {
			return r.MaxReturnMultiple >= 100 && r.CurrentReturnMultiple >= 50 && r.CurrentReturnMultiple < 100
		},
		less: byCurrentDesc,
	},
	{
		name:        PatternSteadyEddie,
		description: "At most 2 transitions and a 20x+ current return.",
		match: func(r *domain.ResultRow) bool {
			return r.TransitionsCount <= 2 && r.CurrentReturnMultiple >= 20
		},
		less: byCurrentDesc,
	},
	{
		name:        PatternRollerCoaster,
		description: "8 or more transitions.",
		match: func(r *domain.ResultRow) bool {
			return r.TransitionsCount >= 8
		},
		less: func(a, b PerformerRow) bool {
			if a.TransitionsCount != b.TransitionsCount {
				return a.TransitionsCount > b.TransitionsCount
			}
			return a.Ticker < b.Ticker
		},
	},
	{
		name:        PatternLateBloomer,
		description: "10x+ now, with the current streak covering over half the series.",
		match: func(r *domain.ResultRow) bool {
			return r.CurrentReturnMultiple >= 10 && r.TotalDays > 0 &&
				float64(r.CurrentStreakDays)/float64(r.TotalDays) > 0.5
		},
		less: byCurrentDesc,
	},
}

// FindPatterns returns every pattern in a fixed order, empty ones included.
func FindPatterns(rows []*domain.ResultRow) []Pattern {
	patterns := make([]Pattern, 0, len(patternRules))
	for _, rule := range patternRules {
		var matched []PerformerRow
		for _, r := range rows {
			if rule.match(r) {
				matched = append(matched, performer(r))
			}
		}
		sort.Slice(matched, func(i, j int) bool {
			return rule.less(matched[i], matched[j])
		})

		p := Pattern{Name: rule.name, Description: rule.description, Total: len(matched)}
		if len(matched) > MaxPatternExamples {
			matched = matched[:MaxPatternExamples]
		}
		p.Examples = matched
		patterns = append(patterns, p)
	}
	return patterns
}

func byCurrentDesc(a, b PerformerRow) bool {
	if a.CurrentReturnMultiple != b.CurrentReturnMultiple {
		return a.CurrentReturnMultiple > b.CurrentReturnMultiple
	}
	return a.Ticker < b.Ticker
}
