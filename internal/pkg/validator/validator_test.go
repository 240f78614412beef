package validator

import (
	"errors"
	"testing"
	"time"
)

func TestIsEmpty(t *testing.T) {
	cases := []struct {
		input string
		want  bool
	}{
		{"", true},
		{"   ", true},
		{"abc", false},
		{" abc ", false},
	}
	for _, c := range cases {
		got := IsEmpty(c.input)
		if got != c.want {
			t.Errorf("IsEmpty(%q) = %v, want %v", c.input, got, c.want)
		}
	}
}

func TestIsValidUUID(t *testing.T) {
	valid := []string{
		"0188d0f2-7b8c-7b4a-8a2b-6b8b8b8b8b8b",
		"123e4567-e89b-42d3-a456-426614174000",
		"0188D0F2-7B8C-7B4A-8A2B-6B8B8B8B8B8B",
	}
	invalid := []string{
		"0188d0f27b8c7b4a8a2b6b8b8b8b8b8b",
		"g188d0f2-7b8c-7b4a-8a2b-6b8b8b8b8b8b",
		"",
	}
	for _, uuid := range valid {
		if !IsValidUUID(uuid) {
			t.Errorf("IsValidUUID(%q) = false, want true", uuid)
		}
	}
	for _, uuid := range invalid {
		if IsValidUUID(uuid) {
			t.Errorf("IsValidUUID(%q) = true, want false", uuid)
		}
	}
}

func TestIsValidDate(t *testing.T) {
	valid := []string{"2023-01-01", "2000-12-31"}
	invalid := []string{"2023-13-01", "01-01-2023", ""}
	for _, s := range valid {
		if _, ok := IsValidDate(s); !ok {
			t.Errorf("IsValidDate(%q) = false, want true", s)
		}
	}
	for _, s := range invalid {
		if _, ok := IsValidDate(s); ok {
			t.Errorf("IsValidDate(%q) = true, want false", s)
		}
	}
}

func TestParseClock(t *testing.T) {
	cases := []struct {
		input   string
		want    ClockTime
		wantErr bool
	}{
		{"09:00", ClockTime{9, 0}, false},
		{"9:05", ClockTime{9, 5}, false},
		{"23:59", ClockTime{23, 59}, false},
		{"00:00", ClockTime{0, 0}, false},
		{"18:60", ClockTime{}, true},
		{"24:00", ClockTime{}, true},
		{"1800", ClockTime{}, true},
		{"", ClockTime{}, true},
	}
	for _, c := range cases {
		got, err := ParseClock(c.input)
		if c.wantErr {
			if err == nil {
				t.Errorf("ParseClock(%q) expected error", c.input)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseClock(%q) unexpected error: %v", c.input, err)
			continue
		}
		if got != c.want {
			t.Errorf("ParseClock(%q) = %v, want %v", c.input, got, c.want)
		}
	}
}

func TestClockTime_On(t *testing.T) {
	day := time.Date(2024, 5, 1, 13, 45, 10, 0, time.UTC)
	got := ClockTime{Hour: 18, Minute: 30}.On(day)
	want := time.Date(2024, 5, 1, 18, 30, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("On() = %v, want %v", got, want)
	}
	if s := (ClockTime{Hour: 7, Minute: 5}).String(); s != "07:05" {
		t.Errorf("String() = %q, want 07:05", s)
	}
}

func TestIsInSlice(t *testing.T) {
	if !IsInSlice("b", []string{"a", "b"}) {
		t.Error("IsInSlice should find b")
	}
	if IsInSlice("c", []string{"a", "b"}) {
		t.Error("IsInSlice should not find c")
	}
}

func TestValidationErrors_Error(t *testing.T) {
	errs := ValidationErrors{
		{Field: "hours", Message: "must be positive"},
		{Field: "date", Message: "is required"},
	}
	want := "hours: must be positive; date: is required"
	if errs.Error() != want {
		t.Errorf("Error() = %q, want %q", errs.Error(), want)
	}
}

func TestValidationErrors_ToMap(t *testing.T) {
	errs := Single("justification", "justification is required")
	m := errs.ToMap()
	if m["justification"] != "justification is required" {
		t.Errorf("ToMap() = %v", m)
	}
}

func TestValidationErrors_IsMatchesWrappedSentinel(t *testing.T) {
	sentinel := errors.New("overlapping request")
	var err error = Wrap("start_time", sentinel)

	if !errors.Is(err, sentinel) {
		t.Error("errors.Is should match the wrapped sentinel")
	}
	if errors.Is(err, errors.New("other")) {
		t.Error("errors.Is should not match an unrelated error")
	}

	var ve ValidationErrors
	if !errors.As(err, &ve) || ve.ToMap()["start_time"] != "overlapping request" {
		t.Errorf("unexpected validation errors: %v", ve)
	}
}
