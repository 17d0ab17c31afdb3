package quantile

// Result summarizes a single quantile or expected shortfall estimation.
// This struct is immutable - all fields are value types. Safe to share
// across goroutines.
//
// LowerIndex and UpperIndex identify the one or two order statistics that
// were combined to produce Value. They are positions in the caller's
// original, unsorted sample, numbered from 0, so downstream consumers can
// attribute the estimate back to individual observations without
// re-sorting.
type Result struct {
	// Value is the estimated quantile or expected shortfall.
	Value float64

	// LowerIndex is the original position of the lower bracketing
	// order statistic.
	LowerIndex int

	// UpperIndex is the original position of the upper bracketing
	// order statistic. Equal to LowerIndex when the estimate landed
	// exactly on one order statistic.
	UpperIndex int

	// Weight is the interpolation weight assigned to the upper order
	// statistic; the lower one received 1 - Weight. Zero for the
	// exact-order-statistic case.
	Weight float64
}
