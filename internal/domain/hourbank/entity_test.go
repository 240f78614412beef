package hourbank

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatHours(t *testing.T) {
	cases := []struct {
		hours float64
		want  string
	}{
		{0, "0h00m"},
		{8.5, "+8h30m"},
		{-1.25, "-1h15m"},
		{0.01, "+0h01m"},
		{-0.5, "-0h30m"},
		{100, "+100h00m"},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, FormatHours(c.hours), "hours=%v", c.hours)
	}
}

func TestHourBank_CanDebit(t *testing.T) {
	bank := HourBank{CurrentBalance: 5}
	assert.True(t, bank.CanDebit(5))
	assert.True(t, bank.CanDebit(4.99))
	assert.False(t, bank.CanDebit(5.01))

	negative := HourBank{CurrentBalance: -2}
	assert.False(t, negative.CanDebit(0.5))
}

func TestAddHoursAndRound(t *testing.T) {
	assert.Equal(t, 0.3, AddHours(0.1, 0.2))
	assert.Equal(t, -1.0, AddHours(2, -3))
	assert.Equal(t, 1.24, RoundHours(1.2449))
	assert.Equal(t, 1.25, RoundHours(1.245))
}

func TestTransactionType_IsValid(t *testing.T) {
	assert.True(t, TransactionCompensation.IsValid())
	assert.False(t, TransactionType("REFUND").IsValid())
}

func TestAdjustRequest_Validate(t *testing.T) {
	ok := AdjustRequest{UserID: "u1", Hours: -3, Description: "correction"}
	assert.NoError(t, ok.Validate())

	zero := AdjustRequest{UserID: "u1", Hours: 0.001, Description: "x"}
	assert.Error(t, zero.Validate())

	noDesc := AdjustRequest{UserID: "u1", Hours: 1}
	assert.Error(t, noDesc.Validate())
}
