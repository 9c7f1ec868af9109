package reporting

import (
	"sort"
	"time"

	"bagger-lab/internal/domain"
	"bagger-lab/internal/storage"
)

// FastestMilestoneMultiples are the multiples ranked by time to reach.
var FastestMilestoneMultiples = []float64{10, 50, 100, 500, 1000}

// MaxFastestTickers caps the tickers listed per fastest-milestone entry.
const MaxFastestTickers = 3

// RecentWindowDays is the look-back for RecentTransitions, counted back
// from the latest transition date.
const RecentWindowDays = 365

// MilestoneStat aggregates every ticker's first hit of one multiple.
type MilestoneStat struct {
	Multiple          float64
	Count             int
	AvgDaysToReach    float64
	FastestDays       int
	SlowestDays       int
	AvgMaintainedDays float64
}

// FastestMilestone lists the quickest tickers to reach Multiple.
type FastestMilestone struct {
	Multiple float64
	Entries  []storage.TickerMilestone // DaysFromStart ASC, ticker ASC
}

// RecentTransitions counts transitions by destination state over the most
// recent window of data.
type RecentTransitions struct {
	Since  time.Time // inclusive; zero when there are no transitions
	Counts []StateCount
}

// SummarizeMilestones groups milestones by multiple.
func SummarizeMilestones(milestones []storage.TickerMilestone) []MilestoneStat {
	byMultiple := make(map[float64]*MilestoneStat)
	maintained := make(map[float64]int)
	reached := make(map[float64]int)

	for _, m := range milestones {
		st, ok := byMultiple[m.Multiple]
		if !ok {
			st = &MilestoneStat{Multiple: m.Multiple, FastestDays: m.DaysFromStart, SlowestDays: m.DaysFromStart}
			byMultiple[m.Multiple] = st
		}
		st.Count++
		reached[m.Multiple] += m.DaysFromStart
		maintained[m.Multiple] += m.MaintainedForDays
		if m.DaysFromStart < st.FastestDays {
			st.FastestDays = m.DaysFromStart
		}
		if m.DaysFromStart > st.SlowestDays {
			st.SlowestDays = m.DaysFromStart
		}
	}

	out := make([]MilestoneStat, 0, len(byMultiple))
	for multiple, st := range byMultiple {
		st.AvgDaysToReach = float64(reached[multiple]) / float64(st.Count)
		st.AvgMaintainedDays = float64(maintained[multiple]) / float64(st.Count)
		out = append(out, *st)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Multiple < out[j].Multiple
	})
	return out
}

// FastestToMilestones returns, for each of FastestMilestoneMultiples that any
// ticker reached, the MaxFastestTickers quickest tickers.
func FastestToMilestones(milestones []storage.TickerMilestone) []FastestMilestone {
	var out []FastestMilestone
	for _, multiple := range FastestMilestoneMultiples {
		var entries []storage.TickerMilestone
		for _, m := range milestones {
			if m.Multiple == multiple {
				entries = append(entries, m)
			}
		}
		if len(entries) == 0 {
			continue
		}

		sort.Slice(entries, func(i, j int) bool {
			if entries[i].DaysFromStart != entries[j].DaysFromStart {
				return entries[i].DaysFromStart < entries[j].DaysFromStart
			}
			return entries[i].Ticker < entries[j].Ticker
		})
		if len(entries) > MaxFastestTickers {
			entries = entries[:MaxFastestTickers]
		}
		out = append(out, FastestMilestone{Multiple: multiple, Entries: entries})
	}
	return out
}

// CountRecentTransitions counts destination states of transitions dated
// within RecentWindowDays of the latest transition. Counts are sorted by
// count DESC, then by state rank.
func CountRecentTransitions(transitions []storage.TickerTransition) RecentTransitions {
	if len(transitions) == 0 {
		return RecentTransitions{}
	}

	latest := transitions[0].Date
	for _, t := range transitions[1:] {
		if t.Date.After(latest) {
			latest = t.Date
		}
	}
	since := latest.AddDate(0, 0, -RecentWindowDays)

	counts := make(map[domain.BaggerState]int)
	total := 0
	for _, t := range transitions {
		if t.Date.Before(since) {
			continue
		}
		counts[t.To]++
		total++
	}

	out := RecentTransitions{Since: since}
	for _, state := range domain.AllStates() {
		if n := counts[state]; n > 0 {
			out.Counts = append(out.Counts, StateCount{State: state, Count: n, Pct: pct(n, total)})
		}
	}
	sort.SliceStable(out.Counts, func(i, j int) bool {
		return out.Counts[i].Count > out.Counts[j].Count
	})
	return out
}
