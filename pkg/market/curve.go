// Package market provides market-data curves and discount factor providers.
// Curves are immutable value objects: construction validates once and every
// accessor is a pure read, so they are safe to share across goroutines.
package market

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// ErrNodeMismatch is returned when observed values do not line up with the
// curve's nodes.
var ErrNodeMismatch = errors.New("observed values must match the curve node count")

// ZeroRateCurve is a continuously-compounded zero-rate curve on a grid of
// node times. Rates are interpolated linearly in time between nodes and
// extended flat beyond the first and last node.
type ZeroRateCurve struct {
	name  string
	times []float64 // year fractions, strictly increasing
	rates []float64 // continuously compounded zero rates, decimal
}

// NewZeroRateCurve builds a curve from node times (year fractions from the
// valuation date) and the matching zero rates. The inputs are copied.
func NewZeroRateCurve(name string, times, rates []float64) (*ZeroRateCurve, error) {
	if len(times) == 0 {
		return nil, errors.New("curve requires at least one node")
	}
	if len(times) != len(rates) {
		return nil, fmt.Errorf("node count mismatch: %d times, %d rates", len(times), len(rates))
	}
	for i := 1; i < len(times); i++ {
		if times[i] <= times[i-1] {
			return nil, fmt.Errorf("node times must be strictly increasing at index %d", i)
		}
	}

	c := &ZeroRateCurve{
		name:  name,
		times: make([]float64, len(times)),
		rates: make([]float64, len(rates)),
	}
	copy(c.times, times)
	copy(c.rates, rates)
	return c, nil
}

// Name returns the curve name.
func (c *ZeroRateCurve) Name() string {
	return c.name
}

// ParameterCount returns the number of curve nodes.
func (c *ZeroRateCurve) ParameterCount() int {
	return len(c.times)
}

// ZeroRate returns the interpolated zero rate at time t.
func (c *ZeroRateCurve) ZeroRate(t float64) float64 {
	n := len(c.times)
	if t <= c.times[0] {
		return c.rates[0]
	}
	if t >= c.times[n-1] {
		return c.rates[n-1]
	}
	// Find the bracketing nodes. Node counts are small enough that a
	// linear scan beats the bookkeeping of a binary search.
	i := 1
	for c.times[i] < t {
		i++
	}
	w := (t - c.times[i-1]) / (c.times[i] - c.times[i-1])
	return (1-w)*c.rates[i-1] + w*c.rates[i]
}

// DiscountFactor returns exp(-r*t) for the interpolated zero rate r at t.
func (c *ZeroRateCurve) DiscountFactor(t float64) float64 {
	if t <= 0 {
		return 1
	}
	return math.Exp(-c.ZeroRate(t) * t)
}

// Residuals returns observed minus fitted node rates as a plain sample,
// suitable for feeding the quantile engine. The observed slice must have
// one entry per curve node.
func (c *ZeroRateCurve) Residuals(observed []float64) ([]float64, error) {
	if len(observed) != len(c.rates) {
		return nil, ErrNodeMismatch
	}
	res := make([]float64, len(observed))
	for i, obs := range observed {
		res[i] = obs - c.rates[i]
	}
	return res, nil
}

// DiscountFactors provides date-based discounting for a currency, combining
// a valuation date, a day count and a zero-rate curve.
type DiscountFactors struct {
	currency  string
	valuation time.Time
	curve     *ZeroRateCurve
}

// NewDiscountFactors wraps a curve with a valuation date and currency.
func NewDiscountFactors(currency string, valuation time.Time, curve *ZeroRateCurve) *DiscountFactors {
	return &DiscountFactors{currency: currency, valuation: valuation, curve: curve}
}

// Currency returns the discounting currency.
func (d *DiscountFactors) Currency() string {
	return d.currency
}

// ValuationDate returns the date all factors discount back to.
func (d *DiscountFactors) ValuationDate() time.Time {
	return d.valuation
}

// Curve returns the underlying zero-rate curve.
func (d *DiscountFactors) Curve() *ZeroRateCurve {
	return d.curve
}

// DiscountFactor returns the factor from the given date to the valuation
// date. Dates on or before valuation discount to 1.
func (d *DiscountFactors) DiscountFactor(date time.Time) float64 {
	return d.curve.DiscountFactor(d.YearFraction(date))
}

// ZeroRate returns the interpolated zero rate at the given date.
func (d *DiscountFactors) ZeroRate(date time.Time) float64 {
	return d.curve.ZeroRate(d.YearFraction(date))
}

// YearFraction converts a date to a year fraction from the valuation date
// on an ACT/365F basis.
func (d *DiscountFactors) YearFraction(date time.Time) float64 {
	return date.Sub(d.valuation).Hours() / (24 * 365)
}
