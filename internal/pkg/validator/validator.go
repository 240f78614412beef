package validator

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

type ValidationError struct {
	Field   string
	Message string
	// Err optionally carries a domain sentinel so callers can match with errors.Is.
	Err error
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	var msgs []string
	for _, err := range v {
		msgs = append(msgs, err.Field+": "+err.Message)
	}
	return strings.Join(msgs, "; ")
}

func (v ValidationErrors) ToMap() map[string]string {
	result := make(map[string]string)
	for _, err := range v {
		result[err.Field] = err.Message
	}
	return result
}

// Is reports whether any entry carries target.
func (v ValidationErrors) Is(target error) bool {
	for _, e := range v {
		if e.Err != nil && errors.Is(e.Err, target) {
			return true
		}
	}
	return false
}

// Wrap turns a domain sentinel into a validation failure on field.
func Wrap(field string, err error) ValidationErrors {
	return ValidationErrors{{Field: field, Message: err.Error(), Err: err}}
}

// Single builds a one-entry ValidationErrors.
func Single(field, message string) ValidationErrors {
	return ValidationErrors{{Field: field, Message: message}}
}

// IsEmpty checks if a string is empty after trimming whitespace.
func IsEmpty(s string) bool {
	return strings.TrimSpace(s) == ""
}

var uuidRegex = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-[1-8][0-9a-f]{3}-[89ab][0-9a-f]{3}-[0-9a-f]{12}$`)

// IsValidUUID accepts RFC 4122 UUIDs of any version, case-insensitive.
func IsValidUUID(uuid string) bool {
	return uuidRegex.MatchString(strings.ToLower(uuid))
}

// Date validation
func IsValidDate(dateStr string) (time.Time, bool) {
	date, err := time.Parse("2006-01-02", dateStr)
	return date, err == nil
}

// Slice contains check
func IsInSlice(value string, slice []string) bool {
	for _, item := range slice {
		if item == value {
			return true
		}
	}
	return false
}

// ClockTime is a time of day with minute precision.
type ClockTime struct {
	Hour   int
	Minute int
}

// Minutes returns minutes since midnight.
func (c ClockTime) Minutes() int {
	return c.Hour*60 + c.Minute
}

func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

// On places the clock time on the calendar day of date.
func (c ClockTime) On(date time.Time) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), c.Hour, c.Minute, 0, 0, date.Location())
}

var clockRegex = regexp.MustCompile(`^(\d{1,2}):(\d{2})$`)

// ParseClock parses "HH:MM". Hours must be 0-23 and minutes 0-59.
func ParseClock(s string) (ClockTime, error) {
	m := clockRegex.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return ClockTime{}, fmt.Errorf("invalid time %q, expected HH:MM", s)
	}
	hour, _ := strconv.Atoi(m[1])
	minute, _ := strconv.Atoi(m[2])
	if hour > 23 {
		return ClockTime{}, fmt.Errorf("hour %d out of range 0-23", hour)
	}
	if minute > 59 {
		return ClockTime{}, fmt.Errorf("minutes %d out of range 0-59", minute)
	}
	return ClockTime{Hour: hour, Minute: minute}, nil
}

// IsValidClock reports whether s parses with ParseClock.
func IsValidClock(s string) bool {
	_, err := ParseClock(s)
	return err == nil
}

// IsValidDateTime checks if a string is a valid ISO8601 timestamp.
// Accepts formats like: "2024-01-15T10:30:00Z" or "2024-01-15T10:30:00+07:00"
func IsValidDateTime(dateTimeStr string) (time.Time, bool) {
	t, err := time.Parse(time.RFC3339, dateTimeStr)
	if err == nil {
		return t, true
	}

	t, err = time.Parse(time.RFC3339Nano, dateTimeStr)
	if err == nil {
		return t, true
	}

	return time.Time{}, false
}
