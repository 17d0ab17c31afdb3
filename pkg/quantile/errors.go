package quantile

import (
	"errors"
	"fmt"
)

// ErrInvalidLevel indicates a probability level outside the open interval (0, 1).
var ErrInvalidLevel = errors.New("level must be in the open interval (0, 1)")

// ErrEmptySample indicates a zero-length sample.
var ErrEmptySample = errors.New("sample must contain at least one observation")

// RangeDirection reports on which side of the sample's index range a rank fell.
type RangeDirection int

const (
	// BelowLowest means the level maps below the lowest representable rank.
	BelowLowest RangeDirection = iota
	// AboveHighest means the level maps above the highest representable rank.
	AboveHighest
)

// String returns a human-readable direction.
func (d RangeDirection) String() string {
	if d == BelowLowest {
		return "below lowest representable level"
	}
	return "above highest representable level"
}

// RangeError is returned by the strict entry point when the rank implied by
// the level falls outside [1, size]. Callers that want a value anyway should
// use the extrapolated entry point instead.
type RangeError struct {
	Rank      float64
	Size      int
	Direction RangeDirection
}

// Error implements the error interface.
func (e *RangeError) Error() string {
	return fmt.Sprintf("quantile can not be computed %s: rank %g outside [1, %d]",
		e.Direction, e.Rank, e.Size)
}
