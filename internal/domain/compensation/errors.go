package compensation

import "errors"

var (
	ErrCompensationNotFound = errors.New("compensation request not found")
	ErrInvalidTransition    = errors.New("compensation request can no longer change to this status")
	ErrNotRequestOwner      = errors.New("compensation request belongs to another user")
	ErrDuplicateForDate     = errors.New("a pending or applied compensation already exists for this date")
)
