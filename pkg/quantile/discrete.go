package quantile

import "math"

// Discrete methods map the level to a whole rank and return that order
// statistic unchanged: no interpolation between neighbours. The rank is
// discretized first and the bounds policy applied to the result, so a
// fractional rank that rounds into [1, size] is in range.

// IndexAbove selects the order statistic at rank ceil(level * size).
var IndexAbove Method = &discreteMethod{
	name: "index-above",
	pick: math.Ceil,
}

// NearestIndex selects the order statistic at rank round(level * size),
// rounding half up.
var NearestIndex Method = &discreteMethod{
	name: "nearest-index",
	pick: func(rank float64) float64 { return math.Floor(rank + 0.5) },
}

type discreteMethod struct {
	name string
	pick func(rank float64) float64
}

func (m *discreteMethod) Name() string {
	return m.name
}

// index discretizes the implied rank and applies the bounds policy.
func (m *discreteMethod) index(level float64, size int, extrapolate bool) (int, error) {
	rank, err := checkIndex(m.pick(level*float64(size)), size, extrapolate)
	if err != nil {
		return 0, err
	}
	return int(rank), nil
}

func (m *discreteMethod) quantile(level float64, s *sortedSample, extrapolate bool) (Result, error) {
	k, err := m.index(level, s.size(), extrapolate)
	if err != nil {
		return Result{}, err
	}
	return Result{
		Value:      s.value(k),
		LowerIndex: s.origin(k),
		UpperIndex: s.origin(k),
	}, nil
}

// expectedShortfall averages the lowest k order statistics, where k is the
// same clamped rank the quantile would use. Each tail observation carries
// equal weight; the boundary statistic contributes fully.
func (m *discreteMethod) expectedShortfall(level float64, s *sortedSample) (Result, error) {
	k, err := m.index(level, s.size(), true)
	if err != nil {
		return Result{}, err
	}
	sum := 0.0
	for i := 1; i <= k; i++ {
		sum += s.value(i)
	}
	return Result{
		Value:      sum / float64(k),
		LowerIndex: s.origin(k),
		UpperIndex: s.origin(k),
	}, nil
}

// Verify interface compliance at compile time.
var _ Method = (*discreteMethod)(nil)
