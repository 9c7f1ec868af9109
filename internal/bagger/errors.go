package bagger

import "errors"

// Per-instrument analysis errors. All of them cause the batch to skip the
// instrument; none of them abort sibling instruments.
var (
	// ErrInsufficientHistory is returned when a series is shorter than the
	// configured minimum number of observations.
	ErrInsufficientHistory = errors.New("insufficient history")

	// ErrInvalidStartPrice is returned when the first price is not positive.
	ErrInvalidStartPrice = errors.New("invalid start price")

	// ErrInvalidSeries is returned when the series breaks the loader contract:
	// a later price is not positive or dates are not strictly ascending.
	ErrInvalidSeries = errors.New("invalid price series")

	// ErrInvariantViolation indicates an internal defect: derived metrics
	// disagree with each other. It is never expected for valid input.
	ErrInvariantViolation = errors.New("computation invariant violation")
)
