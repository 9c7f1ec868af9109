package reporting

import (
	"sort"

	"bagger-lab/internal/domain"
)

// DefaultTopN is the length of the ranking tables in a Summary.
const DefaultTopN = 5

// Summarize computes the state distribution and peak/current counts over rows.
// topN <= 0 uses DefaultTopN.
func Summarize(rows []*domain.ResultRow, topN int) Summary {
	if topN <= 0 {
		topN = DefaultTopN
	}

	s := Summary{Total: len(rows)}

	counts := make(map[domain.BaggerState]int)
	for _, r := range rows {
		counts[r.CurrentState]++

		if r.MaxReturnMultiple >= 10 {
			s.Peak10x++
		}
		if r.MaxReturnMultiple >= 100 {
			s.Peak100x++
		}
		if r.CurrentReturnMultiple >= 10 {
			s.Current10x++
		}
		if r.CurrentReturnMultiple >= 100 {
			s.Current100x++
		}
	}
	s.FallenMultibagger = counts[domain.StateFallenMultibagger]
	s.FallenHundredBagger = counts[domain.StateFallenHundredBagger]

	for _, state := range domain.AllStates() {
		sc := StateCount{State: state, Count: counts[state]}
		if s.Total > 0 {
			sc.Pct = float64(sc.Count) / float64(s.Total) * 100
		}
		s.StateDistribution = append(s.StateDistribution, sc)
	}

	s.TopPerformers = topPerformers(rows, topN)
	s.MostVolatile = mostVolatile(rows, topN)
	s.Complexity = complexity(rows)

	return s
}

func complexity(rows []*domain.ResultRow) Complexity {
	if len(rows) == 0 {
		return Complexity{}
	}

	transitions := make([]int, len(rows))
	milestones := make([]int, len(rows))
	for i, r := range rows {
		transitions[i] = r.TransitionsCount
		milestones[i] = r.MilestonesHit
	}

	var c Complexity
	c.AvgTransitions, c.MedianTransitions, c.MaxTransitions = describe(transitions)
	c.AvgMilestones, c.MedianMilestones, c.MaxMilestones = describe(milestones)
	return c
}

// describe returns mean, median and max of a non-empty sample.
// An even-sized sample uses the mean of the two middle values.
func describe(values []int) (mean, median float64, top int) {
	sorted := append([]int(nil), values...)
	sort.Ints(sorted)

	sum := 0
	for _, v := range sorted {
		sum += v
	}
	n := len(sorted)
	mean = float64(sum) / float64(n)
	if n%2 == 1 {
		median = float64(sorted[n/2])
	} else {
		median = float64(sorted[n/2-1]+sorted[n/2]) / 2
	}
	return mean, median, sorted[n-1]
}

// topPerformers returns current multibaggers sorted by current multiple DESC, ticker ASC.
func topPerformers(rows []*domain.ResultRow, n int) []PerformerRow {
	var out []PerformerRow
	for _, r := range rows {
		if r.CurrentReturnMultiple >= 10 {
			out = append(out, performer(r))
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].CurrentReturnMultiple != out[j].CurrentReturnMultiple {
			return out[i].CurrentReturnMultiple > out[j].CurrentReturnMultiple
		}
		return out[i].Ticker < out[j].Ticker
	})

	if len(out) > n {
		out = out[:n]
	}
	return out
}

// mostVolatile returns tickers with at least one transition sorted by
// transitions count DESC, ticker ASC.
func mostVolatile(rows []*domain.ResultRow, n int) []PerformerRow {
	var out []PerformerRow
	for _, r := range rows {
		if r.TransitionsCount > 0 {
			out = append(out, performer(r))
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].TransitionsCount != out[j].TransitionsCount {
			return out[i].TransitionsCount > out[j].TransitionsCount
		}
		return out[i].Ticker < out[j].Ticker
	})

	if len(out) > n {
		out = out[:n]
	}
	return out
}
