package bagger

import (
	"time"

	"bagger-lab/internal/domain"
)

// MilestoneLadder is the fixed set of tracked return multiples, ascending.
var MilestoneLadder = []float64{2, 3, 5, 10, 20, 50, 100, 200, 500, 1000}

// FindMilestones returns one milestone per ladder level the series reached,
// ordered by level. Levels never reached are omitted.
func FindMilestones(s *ReturnSeries) []domain.Milestone {
	var milestones []domain.Milestone

	// The first hit of a higher level can never precede the first hit of a
	// lower one, so each scan resumes where the previous level was found.
	from := 0
	for _, level := range MilestoneLadder {
		first := firstAtOrAbove(s.Multiples, level, from)
		if first < 0 {
			break
		}
		from = first

		milestones = append(milestones, domain.Milestone{
			Multiple:          level,
			Date:              s.Date(first),
			Price:             s.Price(first),
			DaysFromStart:     first + 1,
			MaintainedForDays: runAtOrAbove(s.Multiples, level, first),
		})
	}

	return milestones
}

// firstAtOrAbove returns the first index >= from with values[i] >= level, or -1.
func firstAtOrAbove(values []float64, level float64, from int) int {
	for i := from; i < len(values); i++ {
		if values[i] >= level {
			return i
		}
	}
	return -1
}

// runAtOrAbove counts consecutive values >= level starting at from.
func runAtOrAbove(values []float64, level float64, from int) int {
	n := 0
	for i := from; i < len(values) && values[i] >= level; i++ {
		n++
	}
	return n
}

// FirstCrossing returns the date of the first day at or above level.
func FirstCrossing(s *ReturnSeries, level float64) *time.Time {
	i := firstAtOrAbove(s.Multiples, level, 0)
	if i < 0 {
		return nil
	}
	d := s.Date(i)
	return &d
}

// LastCrossing returns the date of the last day at or above level.
func LastCrossing(s *ReturnSeries, level float64) *time.Time {
	for i := len(s.Multiples) - 1; i >= 0; i-- {
		if s.Multiples[i] >= level {
			d := s.Date(i)
			return &d
		}
	}
	return nil
}
