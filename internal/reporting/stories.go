package reporting

import (
	"sort"

	"bagger-lab/internal/domain"
)

// Story categories, in evaluation order.
const (
	StoryComebackKings       = "comeback_kings"
	StoryFallenAngels        = "fallen_angels"
	StorySteadyClimbers      = "steady_climbers"
	StoryVolatileJourneys    = "volatile_journeys"
	StoryRecentBreakthroughs = "recent_breakthroughs"
)

// MaxStoryTickers caps the tickers kept per category.
const MaxStoryTickers = 10

var storyOrder = []string{
	StoryComebackKings,
	StoryFallenAngels,
	StorySteadyClimbers,
	StoryVolatileJourneys,
	StoryRecentBreakthroughs,
}

// FindStories assigns each row to the first category it matches and returns
// every category in evaluation order, empty ones included. Tickers are
// considered in ASC order.
func FindStories(rows []*domain.ResultRow) []Story {
	sorted := make([]*domain.ResultRow, len(rows))
	copy(sorted, rows)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Ticker < sorted[j].Ticker
	})

	byCategory := make(map[string][]string)
	for _, r := range sorted {
		category, ok := storyCategory(r)
		if !ok {
			continue
		}
		if len(byCategory[category]) < MaxStoryTickers {
			byCategory[category] = append(byCategory[category], r.Ticker)
		}
	}

	stories := make([]Story, 0, len(storyOrder))
	for _, c := range storyOrder {
		stories = append(stories, Story{Category: c, Tickers: byCategory[c]})
	}
	return stories
}

// storyCategory returns the first matching category for r.
func storyCategory(r *domain.ResultRow) (string, bool) {
	switch {
	case r.MaxReturnMultiple >= 100 && r.CurrentReturnMultiple >= 10 && r.CurrentReturnMultiple < 100:
		return StoryComebackKings, true
	case r.MaxReturnMultiple >= 50 && r.CurrentReturnMultiple < 10:
		return StoryFallenAngels, true
	case r.TransitionsCount <= 3 && r.CurrentReturnMultiple >= 50:
		return StorySteadyClimbers, true
	case r.TransitionsCount >= 10:
		return StoryVolatileJourneys, true
	case r.CurrentReturnMultiple >= 10 && r.TotalDays > 0 &&
		float64(r.CurrentStreakDays)/float64(r.TotalDays) > 0.3:
		return StoryRecentBreakthroughs, true
	}
	return "", false
}
