package bagger

import (
	"math"
	"math/rand"
	"time"

	"bagger-lab/internal/domain"
)

var testStart = time.Date(2000, 1, 3, 0, 0, 0, 0, time.UTC)

// makePoints builds one point per consecutive calendar day.
func makePoints(prices ...float64) []domain.PricePoint {
	points := make([]domain.PricePoint, len(prices))
	for i, p := range prices {
		points[i] = domain.PricePoint{Date: testStart.AddDate(0, 0, i), Price: p}
	}
	return points
}

func day(n int) time.Time {
	return testStart.AddDate(0, 0, n-1)
}

// randomWalk generates a positive geometric random walk with occasional
// large jumps so that all states get exercised.
func randomWalk(rng *rand.Rand, n int) []float64 {
	prices := make([]float64, n)
	price := 1.0 + rng.Float64()*10
	for i := range prices {
		prices[i] = price
		step := rng.NormFloat64() * 0.08
		if rng.Intn(40) == 0 {
			step += rng.NormFloat64() * 1.5
		}
		price *= math.Exp(step)
	}
	return prices
}
