package hourbank

import "errors"

var (
	ErrHourBankNotFound    = errors.New("hour bank not found")
	ErrInsufficientBalance = errors.New("insufficient hour bank balance")
	ErrConcurrencyConflict = errors.New("hour bank was modified concurrently, retry the operation")
	ErrTimeRecordNotClosed = errors.New("time record has no entry or exit to settle")
)
