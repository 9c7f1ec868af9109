package reporting

import (
	"fmt"
	"strings"
	"time"

	"bagger-lab/internal/domain"
	"bagger-lab/internal/storage"
)

// tradingDaysPerYear converts day counts into years for narrative output.
const tradingDaysPerYear = 252

// RenderMarkdown renders report as Markdown string.
func RenderMarkdown(r *Report) string {
	var sb strings.Builder
	s := r.Summary

	// Header
	sb.WriteString("# Bagger Analysis Report\n\n")
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", r.GeneratedAt.Format(time.RFC3339)))
	sb.WriteString(fmt.Sprintf("Tickers analyzed: %d\n\n", s.Total))

	// State distribution
	sb.WriteString("## Current Status Distribution\n\n")
	sb.WriteString("| State | Count | Share |\n")
	sb.WriteString("|-------|-------|-------|\n")
	for _, sc := range s.StateDistribution {
		sb.WriteString(fmt.Sprintf("| %s | %d | %.1f%% |\n", sc.State, sc.Count, sc.Pct))
	}
	sb.WriteString("\n")

	// Peak achievements
	sb.WriteString("## Peak Achievements\n\n")
	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|--------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Ever reached 10x+ | %d (%.1f%%) |\n", s.Peak10x, pct(s.Peak10x, s.Total)))
	sb.WriteString(fmt.Sprintf("| Ever reached 100x+ | %d (%.1f%%) |\n", s.Peak100x, pct(s.Peak100x, s.Total)))
	sb.WriteString("\n")

	// Current vs fallen
	sb.WriteString("## Current vs Fallen\n\n")
	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|--------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Currently 10x+ | %d |\n", s.Current10x))
	sb.WriteString(fmt.Sprintf("| Currently 100x+ | %d |\n", s.Current100x))
	sb.WriteString(fmt.Sprintf("| Fallen from 10x+ | %d |\n", s.FallenMultibagger))
	sb.WriteString(fmt.Sprintf("| Fallen from 100x+ | %d |\n", s.FallenHundredBagger))
	sb.WriteString("\n")

	// Top performers
	sb.WriteString("## Top Current Performers\n\n")
	if len(s.TopPerformers) > 0 {
		sb.WriteString("| Ticker | State | Current | Peak |\n")
		sb.WriteString("|--------|-------|---------|------|\n")
		for _, p := range s.TopPerformers {
			sb.WriteString(fmt.Sprintf("| %s | %s | %.1fx | %.1fx |\n",
				p.Ticker, p.CurrentState, p.CurrentReturnMultiple, p.MaxReturnMultiple))
		}
	} else {
		sb.WriteString("No current multibaggers.\n")
	}
	sb.WriteString("\n")

	// Most volatile
	sb.WriteString("## Most Volatile Journeys\n\n")
	if len(s.MostVolatile) > 0 {
		sb.WriteString("| Ticker | Transitions | State |\n")
		sb.WriteString("|--------|-------------|-------|\n")
		for _, p := range s.MostVolatile {
			sb.WriteString(fmt.Sprintf("| %s | %d | %s |\n", p.Ticker, p.TransitionsCount, p.CurrentState))
		}
	} else {
		sb.WriteString("No state transitions recorded.\n")
	}
	sb.WriteString("\n")

	// Journey complexity
	c := s.Complexity
	sb.WriteString("## Journey Complexity\n\n")
	sb.WriteString("| Metric | Avg | Median | Max |\n")
	sb.WriteString("|--------|-----|--------|-----|\n")
	sb.WriteString(fmt.Sprintf("| Transitions | %.1f | %.0f | %d |\n", c.AvgTransitions, c.MedianTransitions, c.MaxTransitions))
	sb.WriteString(fmt.Sprintf("| Milestones | %.1f | %.0f | %d |\n", c.AvgMilestones, c.MedianMilestones, c.MaxMilestones))
	sb.WriteString("\n")

	writeMilestones(&sb, r)
	writeRecentTransitions(&sb, r.RecentTransitions)

	// Stories
	sb.WriteString("## Interesting Stories\n\n")
	found := false
	for _, story := range r.Stories {
		if len(story.Tickers) == 0 {
			continue
		}
		found = true
		sb.WriteString(fmt.Sprintf("### %s\n\n", storyTitle(story.Category)))
		for _, ticker := range story.Tickers {
			sb.WriteString(fmt.Sprintf("- %s\n", ticker))
		}
		sb.WriteString("\n")
	}
	if !found {
		sb.WriteString("No stories matched.\n\n")
	}

	writePatterns(&sb, r.Patterns)

	return sb.String()
}

func writeMilestones(sb *strings.Builder, r *Report) {
	sb.WriteString("## Milestone Achievement\n\n")
	if len(r.MilestoneStats) == 0 {
		sb.WriteString("No milestones reached.\n\n")
		return
	}
	sb.WriteString("| Multiple | Count | Avg Days | Fastest | Slowest | Avg Maintained |\n")
	sb.WriteString("|----------|-------|----------|---------|---------|----------------|\n")
	for _, m := range r.MilestoneStats {
		sb.WriteString(fmt.Sprintf("| %gx | %d | %.0f | %d | %d | %.0f |\n",
			m.Multiple, m.Count, m.AvgDaysToReach, m.FastestDays, m.SlowestDays, m.AvgMaintainedDays))
	}
	sb.WriteString("\n")

	if len(r.FastestToMilestone) == 0 {
		return
	}
	sb.WriteString("## Fastest to Each Milestone\n\n")
	sb.WriteString("| Milestone | Ticker | Days | Years | Date |\n")
	sb.WriteString("|-----------|--------|------|-------|------|\n")
	for _, f := range r.FastestToMilestone {
		for _, e := range f.Entries {
			sb.WriteString(fmt.Sprintf("| %gx | %s | %d | %.1f | %s |\n",
				f.Multiple, e.Ticker, e.DaysFromStart, years(e.DaysFromStart), formatDate(e.Date)))
		}
	}
	sb.WriteString("\n")
}

func writeRecentTransitions(sb *strings.Builder, rt RecentTransitions) {
	sb.WriteString("## Recent Transitions\n\n")
	if len(rt.Counts) == 0 {
		sb.WriteString("No state transitions recorded.\n\n")
		return
	}
	sb.WriteString(fmt.Sprintf("Since %s (last %d days of data).\n\n", formatDate(rt.Since), RecentWindowDays))
	sb.WriteString("| Became | Count | Share |\n")
	sb.WriteString("|--------|-------|-------|\n")
	for _, sc := range rt.Counts {
		sb.WriteString(fmt.Sprintf("| %s | %d | %.1f%% |\n", sc.State, sc.Count, sc.Pct))
	}
	sb.WriteString("\n")
}

func writePatterns(sb *strings.Builder, patterns []Pattern) {
	sb.WriteString("## Journey Patterns\n\n")
	for _, p := range patterns {
		sb.WriteString(fmt.Sprintf("### The %s\n\n", storyTitle(p.Name)))
		sb.WriteString(fmt.Sprintf("%s Found %d.\n\n", p.Description, p.Total))
		if len(p.Examples) == 0 {
			continue
		}
		sb.WriteString("| Ticker | Current | Peak | Below Peak | Transitions | Streak Share |\n")
		sb.WriteString("|--------|---------|------|------------|-------------|--------------|\n")
		for _, e := range p.Examples {
			sb.WriteString(fmt.Sprintf("| %s | %.1fx | %.1fx | %.0f%% | %d | %.0f%% |\n",
				e.Ticker, e.CurrentReturnMultiple, e.MaxReturnMultiple, e.DrawdownFromPeak(),
				e.TransitionsCount, e.StreakShare()))
		}
		sb.WriteString("\n")
	}
}

// RenderJourney renders the narrative of a single stored result.
func RenderJourney(s *storage.StoredResult) string {
	var sb strings.Builder
	r := s.Row

	sb.WriteString(fmt.Sprintf("# The Journey of %s\n\n", r.Ticker))
	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|--------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Period | %s to %s |\n", formatDate(r.StartDate), formatDate(r.FinalDate)))
	sb.WriteString(fmt.Sprintf("| Price | %.2f to %.2f |\n", r.StartPrice, r.FinalPrice))
	sb.WriteString(fmt.Sprintf("| Return | %.1fx |\n", r.CurrentReturnMultiple))
	sb.WriteString(fmt.Sprintf("| Peak | %.1fx on %s |\n", r.MaxReturnMultiple, formatDate(r.MaxDate)))
	sb.WriteString(fmt.Sprintf("| Current Status | %s |\n", r.CurrentState))
	if r.MaxDrawdown > 0 {
		sb.WriteString(fmt.Sprintf("| Max Drawdown | %.1f%% on %s |\n", r.MaxDrawdown*100, formatDate(r.MaxDrawdownDate)))
	}
	sb.WriteString("\n")

	// Milestones
	sb.WriteString("## Milestones\n\n")
	if len(s.Milestones) > 0 {
		sb.WriteString("| Multiple | Date | Price | Years From Start | Maintained (years) |\n")
		sb.WriteString("|----------|------|-------|------------------|--------------------|\n")
		for _, m := range s.Milestones {
			sb.WriteString(fmt.Sprintf("| %gx | %s | %.2f | %.1f | %.1f |\n",
				m.Multiple, formatDate(m.Date), m.Price, years(m.DaysFromStart), years(m.MaintainedForDays)))
		}
	} else {
		sb.WriteString("No milestones reached.\n")
	}
	sb.WriteString("\n")

	// Transitions
	sb.WriteString("## Status Transitions\n\n")
	if len(s.Transitions) > 0 {
		sb.WriteString(fmt.Sprintf("Start: %s (%.2f)\n\n", s.Transitions[0].From, r.StartPrice))
		sb.WriteString("| Date | Years | From | To | Price | Return |\n")
		sb.WriteString("|------|-------|------|----|-------|--------|\n")
		for _, t := range s.Transitions {
			sb.WriteString(fmt.Sprintf("| %s | %.1f | %s | %s | %.2f | %.1fx |\n",
				formatDate(t.Date), years(t.DaysFromStart), t.From, t.To, t.Price, t.ReturnMultiple))
		}
	} else {
		sb.WriteString(fmt.Sprintf("No transitions: %s throughout.\n", r.CurrentState))
	}
	sb.WriteString("\n")

	// Time distribution
	sb.WriteString("## Time Distribution\n\n")
	sb.WriteString("| State | Days | Share |\n")
	sb.WriteString("|-------|------|-------|\n")
	days := map[domain.BaggerState]int{
		domain.StateHundredBagger:       r.DaysAsHundredBagger,
		domain.StateMultibagger:         r.DaysAsMultibagger,
		domain.StateFallenHundredBagger: r.DaysAsFallenHundredBagger,
		domain.StateFallenMultibagger:   r.DaysAsFallenMultibagger,
		domain.StateNoBagger:            r.DaysAsNoBagger,
	}
	for _, state := range domain.AllStates() {
		sb.WriteString(fmt.Sprintf("| %s | %d | %.1f%% |\n", state, days[state], pct(days[state], r.TotalDays)))
	}
	sb.WriteString("\n")

	// Current streak
	if r.CurrentStreakDays > 0 {
		sb.WriteString("## Current Streak\n\n")
		sb.WriteString(fmt.Sprintf("%s for %.1f years (%d days) since %s\n",
			r.CurrentStreakState, years(r.CurrentStreakDays), r.CurrentStreakDays, formatDate(r.CurrentStreakStartDate)))
	}

	return sb.String()
}

func pct(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(n) / float64(total) * 100
}

func years(days int) float64 {
	return float64(days) / tradingDaysPerYear
}

// storyTitle turns "comeback_kings" into "Comeback Kings".
func storyTitle(category string) string {
	words := strings.Split(category, "_")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}
