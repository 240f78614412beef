package overtime

import (
	"math"
	"time"

	"github.com/skponto/skponto-backend-go/internal/pkg/validator"
	"github.com/skponto/skponto-backend-go/internal/pkg/workflow"
)

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusApproved  Status = "APPROVED"
	StatusRejected  Status = "REJECTED"
	StatusCancelled Status = "CANCELLED"
)

// Transitions is the overtime request state machine. APPROVED, REJECTED and
// CANCELLED are terminal.
var Transitions = workflow.Transitions[Status]{
	StatusPending: {StatusApproved, StatusRejected, StatusCancelled},
}

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected, StatusCancelled:
		return true
	}
	return false
}

// Type of overtime; selects the multiplier.
type Type string

const (
	TypeRegular Type = "regular"
	TypeNight   Type = "night"
	TypeWeekend Type = "weekend"
	TypeHoliday Type = "holiday"
)

func (t Type) IsValid() bool {
	switch t {
	case TypeRegular, TypeNight, TypeWeekend, TypeHoliday:
		return true
	}
	return false
}

// DefaultMultiplier applies when settings carry no multiplier for a type.
const DefaultMultiplier = 1.5

// Request is an employee's ex-ante ask to work beyond scheduled hours.
type Request struct {
	ID                string
	UserID            string
	Date              time.Time
	StartTime         validator.ClockTime
	EndTime           validator.ClockTime
	EstimatedHours    float64
	Type              Type
	Justification     string
	Status            Status
	ApprovedBy        *string
	ApprovedAt        *time.Time
	RejectionReason   *string
	ActualHours       *float64
	MultiplierApplied *float64
	CancelledAt       *time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// IsActive reports whether the request still counts against caps and overlaps.
func (r Request) IsActive() bool {
	return r.Status == StatusPending || r.Status == StatusApproved
}

// Window returns the half-open interval [start, end) covered by the request.
// An end at or before the start falls on the next day.
func (r Request) Window() (time.Time, time.Time) {
	start := r.StartTime.On(r.Date)
	end := r.EndTime.On(r.Date)
	if !end.After(start) {
		end = end.Add(24 * time.Hour)
	}
	return start, end
}

// Overlaps reports whether the windows of r and o intersect.
func (r Request) Overlaps(o Request) bool {
	s1, e1 := r.Window()
	s2, e2 := o.Window()
	return s1.Before(e2) && s2.Before(e1)
}

// EstimateHours returns the hours between start and end, wrapping past
// midnight when end <= start.
func EstimateHours(start, end validator.ClockTime) float64 {
	minutes := end.Minutes() - start.Minutes()
	if minutes <= 0 {
		minutes += 24 * 60
	}
	return math.Round(float64(minutes)/60*100) / 100
}

// Settings is the per-user overtime policy.
type Settings struct {
	ID                 string
	UserID             string
	MaxDailyOvertime   float64
	MaxWeeklyOvertime  float64
	MaxMonthlyOvertime float64
	AutoApprovalLimit  float64
	RequiresApproval   bool
	Multipliers        map[Type]float64
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// MultiplierFor returns the configured multiplier for t or DefaultMultiplier.
func (s Settings) MultiplierFor(t Type) float64 {
	if m, ok := s.Multipliers[t]; ok && m > 0 {
		return m
	}
	return DefaultMultiplier
}

// ShouldAutoApprove reports whether a request of hours skips admin approval.
func (s Settings) ShouldAutoApprove(hours float64) bool {
	return !s.RequiresApproval && s.AutoApprovalLimit > 0 && hours <= s.AutoApprovalLimit
}

// SettingsDefaults seeds OvertimeSettings created on first access.
type SettingsDefaults struct {
	MaxDailyOvertime   float64
	MaxWeeklyOvertime  float64
	MaxMonthlyOvertime float64
	AutoApprovalLimit  float64
	RequiresApproval   bool
	Multipliers        map[Type]float64
}

// NewSettings builds settings for userID from defaults.
func NewSettings(userID string, d SettingsDefaults) Settings {
	multipliers := make(map[Type]float64, len(d.Multipliers))
	for k, v := range d.Multipliers {
		multipliers[k] = v
	}
	return Settings{
		UserID:             userID,
		MaxDailyOvertime:   d.MaxDailyOvertime,
		MaxWeeklyOvertime:  d.MaxWeeklyOvertime,
		MaxMonthlyOvertime: d.MaxMonthlyOvertime,
		AutoApprovalLimit:  d.AutoApprovalLimit,
		RequiresApproval:   d.RequiresApproval,
		Multipliers:        multipliers,
	}
}

type LimitScope string

const (
	LimitScopeRole      LimitScope = "role"
	LimitScopeWorkClass LimitScope = "work_class"
)

// Limits are admin caps scoped to a user role or a work class.
type Limits struct {
	ID                 string
	ScopeType          LimitScope
	ScopeValue         string
	MaxDailyOvertime   *float64
	MaxWeeklyOvertime  *float64
	MaxMonthlyOvertime *float64
	IsActive           bool
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// Caps are the effective overtime caps for one user. Zero means unlimited.
type Caps struct {
	Daily   float64
	Weekly  float64
	Monthly float64
}

// EffectiveCaps takes the tightest cap among the user's settings and every
// active matching limit.
func EffectiveCaps(s Settings, limits []Limits) Caps {
	caps := Caps{Daily: s.MaxDailyOvertime, Weekly: s.MaxWeeklyOvertime, Monthly: s.MaxMonthlyOvertime}
	for _, l := range limits {
		if !l.IsActive {
			continue
		}
		caps.Daily = tighter(caps.Daily, l.MaxDailyOvertime)
		caps.Weekly = tighter(caps.Weekly, l.MaxWeeklyOvertime)
		caps.Monthly = tighter(caps.Monthly, l.MaxMonthlyOvertime)
	}
	return caps
}

func tighter(current float64, candidate *float64) float64 {
	if candidate == nil || *candidate <= 0 {
		return current
	}
	if current <= 0 || *candidate < current {
		return *candidate
	}
	return current
}
