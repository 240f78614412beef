package timerecord

import (
	"time"
)

// ClockAction is one of the four punches of a working day.
type ClockAction string

const (
	ActionEntry    ClockAction = "entry"
	ActionLunchOut ClockAction = "lunch_out"
	ActionLunchIn  ClockAction = "lunch_in"
	ActionExit     ClockAction = "exit"
)

// IsValid reports whether a is a known clock action.
func (a ClockAction) IsValid() bool {
	switch a {
	case ActionEntry, ActionLunchOut, ActionLunchIn, ActionExit:
		return true
	}
	return false
}

// TimeRecord holds one user's punches for one calendar day.
type TimeRecord struct {
	ID                   string
	UserID               string
	Date                 time.Time
	Entry                *time.Time
	LunchOut             *time.Time
	LunchIn              *time.Time
	Exit                 *time.Time
	WorkedHours          float64
	OvertimeHours        float64
	MedicalAttestationID *string
	// SettledAt is set once the day has been reconciled against the hour
	// bank, including settlements that booked nothing.
	SettledAt *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsClosed reports whether both entry and exit are present.
func (r TimeRecord) IsClosed() bool {
	return r.Entry != nil && r.Exit != nil
}

// IsNonWorking reports whether a medical attestation overrides the day.
func (r TimeRecord) IsNonWorking() bool {
	return r.MedicalAttestationID != nil
}

// IsSettled reports whether the day was already reconciled.
func (r TimeRecord) IsSettled() bool {
	return r.SettledAt != nil
}

// RawWorkedHours is worked plus overtime, i.e. the uncapped worked time.
func (r TimeRecord) RawWorkedHours() float64 {
	return r.WorkedHours + r.OvertimeHours
}
