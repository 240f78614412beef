package overtime

import (
	"time"

	"github.com/skponto/skponto-backend-go/internal/pkg/validator"
)

type SubmitRequest struct {
	UserID        string `json:"-"`
	Date          string `json:"date"`
	StartTime     string `json:"start_time"`
	EndTime       string `json:"end_time"`
	Type          string `json:"type"`
	Justification string `json:"justification"`
}

func (r *SubmitRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.UserID) {
		errs = append(errs, validator.ValidationError{Field: "user_id", Message: "user_id is required"})
	}
	if _, ok := validator.IsValidDate(r.Date); !ok {
		errs = append(errs, validator.ValidationError{Field: "date", Message: "date must be YYYY-MM-DD"})
	}
	if _, err := validator.ParseClock(r.StartTime); err != nil {
		errs = append(errs, validator.ValidationError{Field: "start_time", Message: err.Error()})
	}
	if _, err := validator.ParseClock(r.EndTime); err != nil {
		errs = append(errs, validator.ValidationError{Field: "end_time", Message: err.Error()})
	}
	if r.Type == "" {
		r.Type = string(TypeRegular)
	}
	if !Type(r.Type).IsValid() {
		errs = append(errs, validator.ValidationError{Field: "type", Message: "type must be one of regular, night, weekend, holiday"})
	}
	if validator.IsEmpty(r.Justification) {
		errs = append(errs, validator.ValidationError{Field: "justification", Message: "justification is required"})
	}
	if len(r.Justification) > 1000 {
		errs = append(errs, validator.ValidationError{Field: "justification", Message: "justification must not exceed 1000 characters"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type ApproveRequest struct {
	ID          string   `json:"-"`
	ApproverID  string   `json:"-"`
	ActualHours *float64 `json:"actual_hours,omitempty"`
}

func (r *ApproveRequest) Validate() error {
	var errs validator.ValidationErrors
	if validator.IsEmpty(r.ID) {
		errs = append(errs, validator.ValidationError{Field: "id", Message: "id is required"})
	}
	if validator.IsEmpty(r.ApproverID) {
		errs = append(errs, validator.ValidationError{Field: "approver_id", Message: "approver_id is required"})
	}
	if r.ActualHours != nil && *r.ActualHours < 0 {
		errs = append(errs, validator.ValidationError{Field: "actual_hours", Message: "actual_hours must not be negative"})
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

type RejectRequest struct {
	ID         string `json:"-"`
	ApproverID string `json:"-"`
	Reason     string `json:"rejection_reason"`
}

func (r *RejectRequest) Validate() error {
	var errs validator.ValidationErrors
	if validator.IsEmpty(r.ID) {
		errs = append(errs, validator.ValidationError{Field: "id", Message: "id is required"})
	}
	if validator.IsEmpty(r.ApproverID) {
		errs = append(errs, validator.ValidationError{Field: "approver_id", Message: "approver_id is required"})
	}
	if validator.IsEmpty(r.Reason) {
		errs = append(errs, validator.ValidationError{Field: "rejection_reason", Message: "rejection_reason is required"})
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

type CorrectActualHoursRequest struct {
	ID          string  `json:"-"`
	ActualHours float64 `json:"actual_hours"`
}

func (r *CorrectActualHoursRequest) Validate() error {
	var errs validator.ValidationErrors
	if validator.IsEmpty(r.ID) {
		errs = append(errs, validator.ValidationError{Field: "id", Message: "id is required"})
	}
	if r.ActualHours < 0 || r.ActualHours > 24 {
		errs = append(errs, validator.ValidationError{Field: "actual_hours", Message: "actual_hours must be between 0 and 24"})
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

type UpdateSettingsRequest struct {
	UserID             string             `json:"-"`
	MaxDailyOvertime   *float64           `json:"max_daily_overtime,omitempty"`
	MaxWeeklyOvertime  *float64           `json:"max_weekly_overtime,omitempty"`
	MaxMonthlyOvertime *float64           `json:"max_monthly_overtime,omitempty"`
	AutoApprovalLimit  *float64           `json:"auto_approval_limit,omitempty"`
	RequiresApproval   *bool              `json:"requires_approval,omitempty"`
	Multipliers        map[string]float64 `json:"multipliers,omitempty"`
}

func (r *UpdateSettingsRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.UserID) {
		errs = append(errs, validator.ValidationError{Field: "user_id", Message: "user_id is required"})
	}
	nonNegative := map[string]*float64{
		"max_daily_overtime":   r.MaxDailyOvertime,
		"max_weekly_overtime":  r.MaxWeeklyOvertime,
		"max_monthly_overtime": r.MaxMonthlyOvertime,
		"auto_approval_limit":  r.AutoApprovalLimit,
	}
	for field, v := range nonNegative {
		if v != nil && *v < 0 {
			errs = append(errs, validator.ValidationError{Field: field, Message: field + " must not be negative"})
		}
	}
	for k, v := range r.Multipliers {
		if !Type(k).IsValid() {
			errs = append(errs, validator.ValidationError{Field: "multipliers." + k, Message: "unknown overtime type"})
			continue
		}
		if v < 1 {
			errs = append(errs, validator.ValidationError{Field: "multipliers." + k, Message: "multiplier must be at least 1"})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type RequestFilter struct {
	UserID *string
	Status *string
	From   *string
	To     *string
	Page   int
	Limit  int
}

func (f *RequestFilter) Validate() error {
	var errs validator.ValidationErrors
	if f.Status != nil && !Status(*f.Status).IsValid() {
		errs = append(errs, validator.ValidationError{Field: "status", Message: "status is invalid"})
	}
	if f.From != nil {
		if _, ok := validator.IsValidDate(*f.From); !ok {
			errs = append(errs, validator.ValidationError{Field: "from", Message: "from must be YYYY-MM-DD"})
		}
	}
	if f.To != nil {
		if _, ok := validator.IsValidDate(*f.To); !ok {
			errs = append(errs, validator.ValidationError{Field: "to", Message: "to must be YYYY-MM-DD"})
		}
	}
	if f.Page <= 0 {
		f.Page = 1
	}
	if f.Limit <= 0 || f.Limit > 100 {
		f.Limit = 20
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

type RequestResponse struct {
	ID                string   `json:"id"`
	UserID            string   `json:"user_id"`
	Date              string   `json:"date"`
	StartTime         string   `json:"start_time"`
	EndTime           string   `json:"end_time"`
	EstimatedHours    float64  `json:"estimated_hours"`
	Type              Type     `json:"type"`
	Justification     string   `json:"justification"`
	Status            Status   `json:"status"`
	ApprovedBy        *string  `json:"approved_by,omitempty"`
	ApprovedAt        *string  `json:"approved_at,omitempty"`
	RejectionReason   *string  `json:"rejection_reason,omitempty"`
	ActualHours       *float64 `json:"actual_hours,omitempty"`
	MultiplierApplied *float64 `json:"multiplier_applied,omitempty"`
	CreatedAt         string   `json:"created_at"`
}

type ListRequestResponse struct {
	TotalCount int64             `json:"total_count"`
	Page       int               `json:"page"`
	Limit      int               `json:"limit"`
	TotalPages int               `json:"total_pages"`
	Showing    string            `json:"showing"`
	Requests   []RequestResponse `json:"requests"`
}

type SettingsResponse struct {
	UserID             string           `json:"user_id"`
	MaxDailyOvertime   float64          `json:"max_daily_overtime"`
	MaxWeeklyOvertime  float64          `json:"max_weekly_overtime"`
	MaxMonthlyOvertime float64          `json:"max_monthly_overtime"`
	AutoApprovalLimit  float64          `json:"auto_approval_limit"`
	RequiresApproval   bool             `json:"requires_approval"`
	Multipliers        map[Type]float64 `json:"multipliers"`
}

// ToRequestResponse maps a Request entity to its API shape.
func ToRequestResponse(r Request) RequestResponse {
	var approvedAt *string
	if r.ApprovedAt != nil {
		s := r.ApprovedAt.Format(time.RFC3339)
		approvedAt = &s
	}
	return RequestResponse{
		ID:                r.ID,
		UserID:            r.UserID,
		Date:              r.Date.Format("2006-01-02"),
		StartTime:         r.StartTime.String(),
		EndTime:           r.EndTime.String(),
		EstimatedHours:    r.EstimatedHours,
		Type:              r.Type,
		Justification:     r.Justification,
		Status:            r.Status,
		ApprovedBy:        r.ApprovedBy,
		ApprovedAt:        approvedAt,
		RejectionReason:   r.RejectionReason,
		ActualHours:       r.ActualHours,
		MultiplierApplied: r.MultiplierApplied,
		CreatedAt:         r.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}

// ToSettingsResponse maps Settings to its API shape.
func ToSettingsResponse(s Settings) SettingsResponse {
	multipliers := make(map[Type]float64, 4)
	for _, t := range []Type{TypeRegular, TypeNight, TypeWeekend, TypeHoliday} {
		multipliers[t] = s.MultiplierFor(t)
	}
	return SettingsResponse{
		UserID:             s.UserID,
		MaxDailyOvertime:   s.MaxDailyOvertime,
		MaxWeeklyOvertime:  s.MaxWeeklyOvertime,
		MaxMonthlyOvertime: s.MaxMonthlyOvertime,
		AutoApprovalLimit:  s.AutoApprovalLimit,
		RequiresApproval:   s.RequiresApproval,
		Multipliers:        multipliers,
	}
}
