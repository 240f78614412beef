package overtime

import (
	"testing"
	"time"

	"github.com/skponto/skponto-backend-go/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
)

func clock(h, m int) validator.ClockTime { return validator.ClockTime{Hour: h, Minute: m} }

func TestEstimateHours(t *testing.T) {
	assert.Equal(t, 2.0, EstimateHours(clock(18, 0), clock(20, 0)))
	assert.Equal(t, 1.5, EstimateHours(clock(18, 0), clock(19, 30)))
	assert.Equal(t, 4.0, EstimateHours(clock(22, 0), clock(2, 0)))
	assert.Equal(t, 24.0, EstimateHours(clock(8, 0), clock(8, 0)))
}

func TestRequest_Overlaps(t *testing.T) {
	day := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	existing := Request{Date: day, StartTime: clock(18, 0), EndTime: clock(20, 0)}

	cases := []struct {
		name       string
		start, end validator.ClockTime
		want       bool
	}{
		{"partial overlap", clock(19, 0), clock(21, 0), true},
		{"contained", clock(18, 30), clock(19, 0), true},
		{"touching end is free", clock(20, 0), clock(21, 0), false},
		{"touching start is free", clock(16, 0), clock(18, 0), false},
		{"overnight wraps into window", clock(23, 0), clock(19, 0), false},
		{"earlier morning", clock(6, 0), clock(8, 0), false},
	}
	for _, c := range cases {
		candidate := Request{Date: day, StartTime: c.start, EndTime: c.end}
		assert.Equal(t, c.want, existing.Overlaps(candidate), c.name)
		assert.Equal(t, c.want, candidate.Overlaps(existing), c.name+" (symmetric)")
	}
}

func TestTransitions(t *testing.T) {
	assert.True(t, Transitions.Allows(StatusPending, StatusApproved))
	assert.True(t, Transitions.Allows(StatusPending, StatusCancelled))
	assert.False(t, Transitions.Allows(StatusApproved, StatusCancelled))
	assert.False(t, Transitions.Allows(StatusRejected, StatusApproved))
	assert.True(t, Transitions.IsTerminal(StatusApproved))
}

func TestSettings_MultiplierAndAutoApproval(t *testing.T) {
	s := Settings{
		AutoApprovalLimit: 2,
		RequiresApproval:  false,
		Multipliers:       map[Type]float64{TypeHoliday: 2},
	}
	assert.Equal(t, 2.0, s.MultiplierFor(TypeHoliday))
	assert.Equal(t, DefaultMultiplier, s.MultiplierFor(TypeRegular))
	assert.True(t, s.ShouldAutoApprove(1.5))
	assert.True(t, s.ShouldAutoApprove(2))
	assert.False(t, s.ShouldAutoApprove(2.5))

	s.RequiresApproval = true
	assert.False(t, s.ShouldAutoApprove(1))
}

func TestEffectiveCaps(t *testing.T) {
	four, one, zero := 4.0, 1.0, 0.0
	s := Settings{MaxDailyOvertime: 2, MaxWeeklyOvertime: 0, MaxMonthlyOvertime: 40}
	limits := []Limits{
		{MaxDailyOvertime: &four, MaxWeeklyOvertime: &four, IsActive: true},
		{MaxDailyOvertime: &one, IsActive: false},
		{MaxMonthlyOvertime: &zero, IsActive: true},
	}
	caps := EffectiveCaps(s, limits)
	assert.Equal(t, 2.0, caps.Daily)
	assert.Equal(t, 4.0, caps.Weekly)
	assert.Equal(t, 40.0, caps.Monthly)
}
