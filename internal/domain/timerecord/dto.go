package timerecord

import (
	"time"

	"github.com/skponto/skponto-backend-go/internal/pkg/validator"
)

// EditRecordRequest lets an admin rewrite the punches of a record. Times are
// "HH:MM" on the record's date; an exit earlier than entry means the next day.
type EditRecordRequest struct {
	ID       string  `json:"-"`
	Entry    *string `json:"entry,omitempty"`
	LunchOut *string `json:"lunch_out,omitempty"`
	LunchIn  *string `json:"lunch_in,omitempty"`
	Exit     *string `json:"exit,omitempty"`
}

func (r *EditRecordRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.ID) {
		errs = append(errs, validator.ValidationError{Field: "id", Message: "id is required"})
	}
	fields := map[string]*string{"entry": r.Entry, "lunch_out": r.LunchOut, "lunch_in": r.LunchIn, "exit": r.Exit}
	for field, value := range fields {
		if value == nil || *value == "" {
			continue
		}
		if _, err := validator.ParseClock(*value); err != nil {
			errs = append(errs, validator.ValidationError{Field: field, Message: err.Error()})
		}
	}
	if (r.LunchOut == nil) != (r.LunchIn == nil) {
		errs = append(errs, validator.ValidationError{Field: "lunch", Message: "lunch_out and lunch_in must be given together"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type AttachAttestationRequest struct {
	ID            string `json:"-"`
	AttestationID string `json:"attestation_id"`
}

func (r *AttachAttestationRequest) Validate() error {
	var errs validator.ValidationErrors
	if validator.IsEmpty(r.ID) {
		errs = append(errs, validator.ValidationError{Field: "id", Message: "id is required"})
	}
	if validator.IsEmpty(r.AttestationID) {
		errs = append(errs, validator.ValidationError{Field: "attestation_id", Message: "attestation_id is required"})
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

type RecordFilter struct {
	From *string
	To   *string
}

// Range resolves the filter to a date range, defaulting to the last 31 days up to today.
func (f RecordFilter) Range(today time.Time) (time.Time, time.Time, error) {
	to := today
	from := today.AddDate(0, 0, -31)
	if f.From != nil {
		d, ok := validator.IsValidDate(*f.From)
		if !ok {
			return time.Time{}, time.Time{}, validator.Single("from", "from must be YYYY-MM-DD")
		}
		from = d
	}
	if f.To != nil {
		d, ok := validator.IsValidDate(*f.To)
		if !ok {
			return time.Time{}, time.Time{}, validator.Single("to", "to must be YYYY-MM-DD")
		}
		to = d
	}
	if to.Before(from) {
		return time.Time{}, time.Time{}, validator.Single("to", "to must not be before from")
	}
	return from, to, nil
}

type TimeRecordResponse struct {
	ID                   string  `json:"id"`
	UserID               string  `json:"user_id"`
	Date                 string  `json:"date"`
	Entry                *string `json:"entry,omitempty"`
	LunchOut             *string `json:"lunch_out,omitempty"`
	LunchIn              *string `json:"lunch_in,omitempty"`
	Exit                 *string `json:"exit,omitempty"`
	WorkedHours          float64 `json:"worked_hours"`
	OvertimeHours        float64 `json:"overtime_hours"`
	MedicalAttestationID *string `json:"medical_attestation_id,omitempty"`
	SettledAt            *string `json:"settled_at,omitempty"`
}

func timePtrToString(t *time.Time) *string {
	if t == nil {
		return nil
	}
	format := t.Format("2006-01-02 15:04:05")
	return &format
}

// ToResponse maps a TimeRecord entity to its API shape.
func ToResponse(r TimeRecord) TimeRecordResponse {
	return TimeRecordResponse{
		ID:                   r.ID,
		UserID:               r.UserID,
		Date:                 r.Date.Format("2006-01-02"),
		Entry:                timePtrToString(r.Entry),
		LunchOut:             timePtrToString(r.LunchOut),
		LunchIn:              timePtrToString(r.LunchIn),
		Exit:                 timePtrToString(r.Exit),
		WorkedHours:          r.WorkedHours,
		OvertimeHours:        r.OvertimeHours,
		MedicalAttestationID: r.MedicalAttestationID,
		SettledAt:            timePtrToString(r.SettledAt),
	}
}
