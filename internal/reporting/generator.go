package reporting

import (
	"context"
	"fmt"
	"time"

	"bagger-lab/internal/storage"
)

// Generator produces reports from stored results.
type Generator struct {
	resultStore storage.ResultStore
	topN        int
	now         func() time.Time // Injectable clock for deterministic output
}

// NewGenerator creates a new report generator.
func NewGenerator(resultStore storage.ResultStore) *Generator {
	return &Generator{
		resultStore: resultStore,
		topN:        DefaultTopN,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// WithClock sets a custom clock function for deterministic output.
func (g *Generator) WithClock(now func() time.Time) *Generator {
	g.now = now
	return g
}

// WithTopN sets the length of the ranking tables.
func (g *Generator) WithTopN(n int) *Generator {
	g.topN = n
	return g
}

// Generate produces a report over every stored result.
func (g *Generator) Generate(ctx context.Context) (*Report, error) {
	rows, err := g.resultStore.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load results: %w", err)
	}
	milestones, err := g.resultStore.ListMilestones(ctx)
	if err != nil {
		return nil, fmt.Errorf("load milestones: %w", err)
	}
	transitions, err := g.resultStore.ListTransitions(ctx)
	if err != nil {
		return nil, fmt.Errorf("load transitions: %w", err)
	}

	return &Report{
		GeneratedAt:        g.now(),
		Summary:            Summarize(rows, g.topN),
		Stories:            FindStories(rows),
		MilestoneStats:     SummarizeMilestones(milestones),
		FastestToMilestone: FastestToMilestones(milestones),
		RecentTransitions:  CountRecentTransitions(transitions),
		Patterns:           FindPatterns(rows),
		Rows:               rows,
	}, nil
}

// Journey renders the narrative for one ticker.
// Returns storage.ErrNotFound if the ticker has no stored result.
func (g *Generator) Journey(ctx context.Context, ticker string) (string, error) {
	stored, err := g.resultStore.GetByTicker(ctx, ticker)
	if err != nil {
		return "", fmt.Errorf("load result %s: %w", ticker, err)
	}
	return RenderJourney(stored), nil
}
