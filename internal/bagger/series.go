// Package bagger classifies the return trajectory of an instrument into
// bagger states and derives milestones, transitions, drawdown and streaks.
package bagger

import (
	"fmt"
	"time"

	"bagger-lab/internal/domain"
)

// DefaultMinDays is roughly one trading year.
const DefaultMinDays = 252

// ReturnSeries holds return multiples relative to the first price and their
// running maximum. All slices have the same length.
type ReturnSeries struct {
	Points    []domain.PricePoint
	Multiples []float64 // price[i] / price[0]
	Peaks     []float64 // max(Multiples[0..i])
}

// NewReturnSeries validates points and derives the return multiple and
// peak-so-far series. points must be sorted by date ascending.
// minDays below 1 is treated as 1.
func NewReturnSeries(points []domain.PricePoint, minDays int) (*ReturnSeries, error) {
	if minDays < 1 {
		minDays = 1
	}
	n := len(points)
	if n < minDays {
		return nil, fmt.Errorf("%w: %d < %d days", ErrInsufficientHistory, n, minDays)
	}

	start := points[0].Price
	if !(start > 0) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidStartPrice, start)
	}

	s := &ReturnSeries{
		Points:    points,
		Multiples: make([]float64, n),
		Peaks:     make([]float64, n),
	}

	peak := 0.0
	for i, p := range points {
		if i > 0 {
			if !(p.Price > 0) {
				return nil, fmt.Errorf("%w: non-positive price %v on %s",
					ErrInvalidSeries, p.Price, p.Date.Format(domain.DateLayout))
			}
			if !p.Date.After(points[i-1].Date) {
				return nil, fmt.Errorf("%w: date %s not after %s",
					ErrInvalidSeries, p.Date.Format(domain.DateLayout), points[i-1].Date.Format(domain.DateLayout))
			}
		}
		m := p.Price / start
		if m > peak {
			peak = m
		}
		s.Multiples[i] = m
		s.Peaks[i] = peak
	}

	return s, nil
}

// Len returns the number of observations.
func (s *ReturnSeries) Len() int {
	return len(s.Points)
}

// Date returns the date of observation i.
func (s *ReturnSeries) Date(i int) time.Time {
	return s.Points[i].Date
}

// Price returns the price of observation i.
func (s *ReturnSeries) Price(i int) float64 {
	return s.Points[i].Price
}

// PeakIndex returns the index of the first maximum return multiple.
func (s *ReturnSeries) PeakIndex() int {
	idx := 0
	for i, m := range s.Multiples {
		if m > s.Multiples[idx] {
			idx = i
		}
	}
	return idx
}

// checkPeaks verifies Peaks is non-decreasing and never below Multiples.
func (s *ReturnSeries) checkPeaks() error {
	for i := range s.Multiples {
		if s.Peaks[i] < s.Multiples[i] {
			return fmt.Errorf("%w: peak %v below multiple %v at day %d",
				ErrInvariantViolation, s.Peaks[i], s.Multiples[i], i+1)
		}
		if i > 0 && s.Peaks[i] < s.Peaks[i-1] {
			return fmt.Errorf("%w: peak decreased at day %d", ErrInvariantViolation, i+1)
		}
	}
	return nil
}
