// Package workhours turns a day's clock punches into worked and overtime hours.
package workhours

import (
	"time"

	"github.com/shopspring/decimal"
)

// Result holds the hours computed for one day, rounded to two decimals.
type Result struct {
	Worked   float64
	Overtime float64
}

// Raw is the uncapped worked time.
func (r Result) Raw() float64 {
	return decimal.NewFromFloat(r.Worked).Add(decimal.NewFromFloat(r.Overtime)).Round(2).InexactFloat64()
}

// Calculate computes worked and overtime hours. Missing entry or exit yields a
// zero result. An exit before the entry is taken to fall on the next day, and
// the same applies to a lunch_in before lunch_out. Without explicit lunch
// punches, expectedLunch is deducted only when the shift exceeds expectedDaily.
func Calculate(entry, exit, lunchOut, lunchIn *time.Time, expectedDaily, expectedLunch float64) Result {
	if entry == nil || exit == nil {
		return Result{}
	}

	elapsed := hoursBetween(*entry, *exit)
	daily := decimal.NewFromFloat(expectedDaily)

	var lunch decimal.Decimal
	switch {
	case lunchOut != nil && lunchIn != nil:
		lunch = hoursBetween(*lunchOut, *lunchIn)
	case elapsed.GreaterThan(daily):
		lunch = decimal.NewFromFloat(expectedLunch)
	}

	raw := elapsed.Sub(lunch)
	if raw.IsNegative() {
		raw = decimal.Zero
	}

	worked := decimal.Min(raw, daily)
	overtime := decimal.Max(raw.Sub(daily), decimal.Zero)

	return Result{
		Worked:   worked.Round(2).InexactFloat64(),
		Overtime: overtime.Round(2).InexactFloat64(),
	}
}

func hoursBetween(from, to time.Time) decimal.Decimal {
	d := to.Sub(from)
	if d < 0 {
		d += 24 * time.Hour
	}
	return decimal.NewFromInt(int64(d / time.Second)).Div(decimal.NewFromInt(3600))
}
