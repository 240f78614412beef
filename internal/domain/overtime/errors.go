package overtime

import "errors"

var (
	ErrRequestNotFound        = errors.New("overtime request not found")
	ErrSettingsNotFound       = errors.New("overtime settings not found")
	ErrInvalidTransition      = errors.New("overtime request can no longer change to this status")
	ErrNotRequestOwner        = errors.New("overtime request belongs to another user")
	ErrOverlappingRequest     = errors.New("overlaps an existing pending or approved overtime request")
	ErrDailyCapExceeded       = errors.New("daily overtime limit exceeded")
	ErrWeeklyCapExceeded      = errors.New("weekly overtime limit exceeded")
	ErrMonthlyCapExceeded     = errors.New("monthly overtime limit exceeded")
	ErrActualHoursNotEditable = errors.New("actual hours can only be corrected on approved requests")
)
