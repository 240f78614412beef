package hourbank

import (
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	TransactionCredit       TransactionType = "CREDIT"
	TransactionDebit        TransactionType = "DEBIT"
	TransactionCompensation TransactionType = "COMPENSATION"
	TransactionAdjustment   TransactionType = "ADJUSTMENT"
	TransactionExpiration   TransactionType = "EXPIRATION"
)

// IsValid reports whether t is a known transaction type.
func (t TransactionType) IsValid() bool {
	switch t {
	case TransactionCredit, TransactionDebit, TransactionCompensation, TransactionAdjustment, TransactionExpiration:
		return true
	}
	return false
}

// HourBank is the per-user running balance of compensable hours.
// CurrentBalance always equals the sum of the user's transaction hours.
type HourBank struct {
	ID              string
	UserID          string
	CurrentBalance  float64
	TotalCredited   float64
	TotalDebited    float64
	LastTransaction *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// CanDebit reports whether the balance covers hours.
func (b HourBank) CanDebit(hours float64) bool {
	return decimal.NewFromFloat(b.CurrentBalance).GreaterThanOrEqual(decimal.NewFromFloat(hours))
}

// FormattedBalance renders the balance for display, e.g. "+8h30m".
func (b HourBank) FormattedBalance() string {
	return FormatHours(b.CurrentBalance)
}

// Transaction is an append-only audit row. BalanceAfter - BalanceBefore == Hours.
type Transaction struct {
	ID                string
	Sequence          int64
	UserID            string
	Type              TransactionType
	Hours             float64
	BalanceBefore     float64
	BalanceAfter      float64
	Description       string
	OvertimeRequestID *string
	TimeRecordID      *string
	CreatedBy         *string
	CreatedAt         time.Time
}

// RoundHours rounds to two decimal places, half away from zero.
func RoundHours(hours float64) float64 {
	return decimal.NewFromFloat(hours).Round(2).InexactFloat64()
}

// AddHours returns a+b computed in decimal and rounded to two places.
func AddHours(a, b float64) float64 {
	return decimal.NewFromFloat(a).Add(decimal.NewFromFloat(b)).Round(2).InexactFloat64()
}

// FormatHours renders signed hours as "<sign><h>h<mm>m".
func FormatHours(hours float64) string {
	totalMinutes := decimal.NewFromFloat(hours).Mul(decimal.NewFromInt(60)).Round(0).IntPart()
	sign := "+"
	if totalMinutes < 0 {
		sign = "-"
	} else if totalMinutes == 0 {
		sign = ""
	}
	abs := int64(math.Abs(float64(totalMinutes)))
	return fmt.Sprintf("%s%dh%02dm", sign, abs/60, abs%60)
}
