// Package credit models credit default swap contracts as immutable value
// objects. A Cds describes contract terms; Expand produces the pricing
// form the valuation and risk layers consume. Monetary amounts are exact
// decimals until pricing, which works in float64.
package credit

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/branched-services/go-risk/pkg/market"
)

// BuySell identifies which side of the protection the party is on.
type BuySell int

const (
	// Buy means the party buys protection and pays the fee leg.
	Buy BuySell = iota
	// Sell means the party sells protection and receives the fee leg.
	Sell
)

// String returns the conventional side label.
func (b BuySell) String() string {
	if b == Buy {
		return "BUY"
	}
	return "SELL"
}

// ReferenceInformation identifies the single-name entity whose default the
// contract covers.
type ReferenceInformation struct {
	EntityID  string
	Currency  string
	Seniority string
}

// Validate checks the reference fields are present.
func (r ReferenceInformation) Validate() error {
	if r.EntityID == "" {
		return errors.New("reference entity id is required")
	}
	if r.Currency == "" {
		return errors.New("reference currency is required")
	}
	if r.Seniority == "" {
		return errors.New("reference seniority is required")
	}
	return nil
}

// GeneralTerms carries the trade dates, direction and reference entity.
type GeneralTerms struct {
	EffectiveDate time.Time
	MaturityDate  time.Time
	BuySell       BuySell
	Reference     ReferenceInformation
}

// PeriodicPayments describes the running coupon of the fee leg.
type PeriodicPayments struct {
	Notional decimal.Decimal
	Currency string
	// CouponRate is the running coupon as a decimal, e.g. 0.01 for 100bp.
	CouponRate float64
	// FrequencyMonths is the number of months between coupon dates.
	FrequencyMonths int
}

// FeeLeg is the premium side of the contract: an optional upfront fee plus
// the periodic coupon payments.
type FeeLeg struct {
	UpfrontFee decimal.Decimal
	Periodic   PeriodicPayments
}

// Cds is a single-name credit default swap.
type Cds struct {
	GeneralTerms    GeneralTerms
	FeeLeg          FeeLeg
	PayAccOnDefault bool
}

// Validate checks the contract is internally consistent.
func (c Cds) Validate() error {
	if err := c.GeneralTerms.Reference.Validate(); err != nil {
		return err
	}
	if !c.GeneralTerms.MaturityDate.After(c.GeneralTerms.EffectiveDate) {
		return errors.New("maturity must be after the effective date")
	}
	if c.FeeLeg.Periodic.FrequencyMonths <= 0 {
		return errors.New("coupon frequency must be positive")
	}
	if c.FeeLeg.Periodic.Notional.Sign() <= 0 {
		return errors.New("notional must be positive")
	}
	if c.FeeLeg.Periodic.CouponRate < 0 {
		return fmt.Errorf("coupon rate must not be negative: %v", c.FeeLeg.Periodic.CouponRate)
	}
	return nil
}

// PaymentPeriod is one accrual period of the expanded fee leg.
type PaymentPeriod struct {
	StartDate    time.Time
	EndDate      time.Time
	PaymentDate  time.Time
	YearFraction float64
}

// ExpandedCds is the pricing form of a Cds: the rolled-out coupon schedule
// plus the scalar terms valuation needs.
type ExpandedCds struct {
	Periods         []PaymentPeriod
	Notional        float64
	UpfrontFee      float64
	CouponRate      float64
	Currency        string
	BuySell         BuySell
	PayAccOnDefault bool
}

// Expand rolls out the coupon schedule from the effective date to maturity
// at the periodic frequency, with a final stub ending exactly at maturity.
func (c Cds) Expand() (ExpandedCds, error) {
	if err := c.Validate(); err != nil {
		return ExpandedCds{}, err
	}

	var periods []PaymentPeriod
	start := c.GeneralTerms.EffectiveDate
	maturity := c.GeneralTerms.MaturityDate
	for start.Before(maturity) {
		end := start.AddDate(0, c.FeeLeg.Periodic.FrequencyMonths, 0)
		if end.After(maturity) {
			end = maturity
		}
		periods = append(periods, PaymentPeriod{
			StartDate:    start,
			EndDate:      end,
			PaymentDate:  end,
			YearFraction: actual360(start, end),
		})
		start = end
	}

	return ExpandedCds{
		Periods:         periods,
		Notional:        c.FeeLeg.Periodic.Notional.InexactFloat64(),
		UpfrontFee:      c.FeeLeg.UpfrontFee.InexactFloat64(),
		CouponRate:      c.FeeLeg.Periodic.CouponRate,
		Currency:        c.FeeLeg.Periodic.Currency,
		BuySell:         c.GeneralTerms.BuySell,
		PayAccOnDefault: c.PayAccOnDefault,
	}, nil
}

// FeeLegPresentValue discounts the coupon schedule and upfront fee.
// The sign convention is the protection seller's: a seller receives the
// fee leg, a buyer pays it.
func (e ExpandedCds) FeeLegPresentValue(dfs *market.DiscountFactors) float64 {
	pv := e.UpfrontFee
	for _, p := range e.Periods {
		if !p.PaymentDate.After(dfs.ValuationDate()) {
			continue
		}
		pv += e.Notional * e.CouponRate * p.YearFraction * dfs.DiscountFactor(p.PaymentDate)
	}
	if e.BuySell == Buy {
		return -pv
	}
	return pv
}

// actual360 is the standard CDS premium accrual basis.
func actual360(start, end time.Time) float64 {
	return end.Sub(start).Hours() / 24 / 360
}
