package timerecord

import "errors"

var (
	ErrTimeRecordNotFound = errors.New("time record not found")
	ErrAlreadyClockedIn   = errors.New("you have already clocked in today")
	ErrNotClockedIn       = errors.New("you have not clocked in yet")
	ErrAlreadyClockedOut  = errors.New("you have already clocked out today")
	ErrLunchAlreadyTaken  = errors.New("lunch break already registered")
	ErrLunchNotStarted    = errors.New("lunch break has not started")
	ErrLunchNotFinished   = errors.New("lunch break has not finished")
	ErrNonWorkingDay      = errors.New("day is covered by a medical attestation")
	ErrAlreadySettled     = errors.New("day has already been settled against the hour bank")
)
