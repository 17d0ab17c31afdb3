package market

import (
	"fmt"
	"time"
)

// RateObservation describes how a floating rate for an accrual period is
// observed. The set of observation kinds is closed; the marker method keeps
// implementations in this package.
type RateObservation interface {
	rateObservation()
}

// FixedRateObservation is a rate known in advance.
type FixedRateObservation struct {
	Rate float64
}

// IborRateObservation is a term rate observed at a fixing date for a
// forward accrual period.
type IborRateObservation struct {
	FixingDate time.Time
	StartDate  time.Time
	EndDate    time.Time
}

// OvernightCompoundedRateObservation is an overnight rate compounded over
// the accrual period.
type OvernightCompoundedRateObservation struct {
	StartDate time.Time
	EndDate   time.Time
}

func (FixedRateObservation) rateObservation()               {}
func (IborRateObservation) rateObservation()                {}
func (OvernightCompoundedRateObservation) rateObservation() {}

// RateFn computes the rate implied by an observation against a set of
// discount factors.
type RateFn interface {
	Rate(obs RateObservation, dfs *DiscountFactors) (float64, error)
}

// DispatchingRateFn routes each observation kind to its computation.
// The zero value is ready to use.
type DispatchingRateFn struct{}

// Rate implements RateFn.
func (DispatchingRateFn) Rate(obs RateObservation, dfs *DiscountFactors) (float64, error) {
	switch o := obs.(type) {
	case FixedRateObservation:
		return o.Rate, nil
	case IborRateObservation:
		return forwardRate(dfs, o.StartDate, o.EndDate)
	case OvernightCompoundedRateObservation:
		return forwardRate(dfs, o.StartDate, o.EndDate)
	default:
		return 0, fmt.Errorf("unsupported rate observation %T", obs)
	}
}

// forwardRate derives the simple forward rate over [start, end] from the
// discount factor ratio.
func forwardRate(dfs *DiscountFactors, start, end time.Time) (float64, error) {
	accrual := dfs.YearFraction(end) - dfs.YearFraction(start)
	if accrual <= 0 {
		return 0, fmt.Errorf("accrual period must end after it starts: %v to %v", start, end)
	}
	return (dfs.DiscountFactor(start)/dfs.DiscountFactor(end) - 1) / accrual, nil
}

// Verify interface compliance at compile time.
var _ RateFn = DispatchingRateFn{}
