package workclass

import "time"

// Default policy applied when a user has no active work class.
const (
	DefaultDailyWorkHours = 8.0
	DefaultLunchHours     = 1.0
)

// WorkClass is a named policy bundle: expected daily work hours and lunch duration.
type WorkClass struct {
	ID             string
	Name           string
	DailyWorkHours float64
	LunchHours     float64
	IsActive       bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Policy is the expected-hours policy resolved for one user.
type Policy struct {
	WorkClassID    *string
	DailyWorkHours float64
	LunchHours     float64
}

// DefaultPolicy is used for users without an active work class.
func DefaultPolicy() Policy {
	return Policy{DailyWorkHours: DefaultDailyWorkHours, LunchHours: DefaultLunchHours}
}

// PolicyOf resolves the policy for wc, falling back to the default when wc is
// missing, inactive or misconfigured.
func PolicyOf(wc *WorkClass) Policy {
	if wc == nil || !wc.IsActive || wc.DailyWorkHours <= 0 {
		return DefaultPolicy()
	}
	lunch := wc.LunchHours
	if lunch < 0 {
		lunch = 0
	}
	id := wc.ID
	return Policy{WorkClassID: &id, DailyWorkHours: wc.DailyWorkHours, LunchHours: lunch}
}
