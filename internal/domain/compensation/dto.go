package compensation

import (
	"time"

	"github.com/skponto/skponto-backend-go/internal/pkg/validator"
)

type SubmitRequest struct {
	UserID            string  `json:"-"`
	RequestedDate     string  `json:"requested_date"`
	HoursToCompensate float64 `json:"hours_to_compensate"`
	Justification     string  `json:"justification"`
}

func (r *SubmitRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.UserID) {
		errs = append(errs, validator.ValidationError{Field: "user_id", Message: "user_id is required"})
	}
	if _, ok := validator.IsValidDate(r.RequestedDate); !ok {
		errs = append(errs, validator.ValidationError{Field: "requested_date", Message: "requested_date must be YYYY-MM-DD"})
	}
	if r.HoursToCompensate <= 0 {
		errs = append(errs, validator.ValidationError{Field: "hours_to_compensate", Message: "hours_to_compensate must be greater than zero"})
	}
	if r.HoursToCompensate > 24 {
		errs = append(errs, validator.ValidationError{Field: "hours_to_compensate", Message: "hours_to_compensate must not exceed 24"})
	}
	if validator.IsEmpty(r.Justification) {
		errs = append(errs, validator.ValidationError{Field: "justification", Message: "justification is required"})
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
	if len(errs) > 0 {
		return errs
	}
	return nil
}

type CompensationFilter struct {
	UserID *string
	Status *string
	Page   int
	Limit  int
}

func (f *CompensationFilter) Validate() error {
	if f.Page <= 0 {
		f.Page = 1
	}
	if f.Limit <= 0 || f.Limit > 100 {
		f.Limit = 20
	}
	if f.Status != nil && !Status(*f.Status).IsValid() {
		return validator.Single("status", "status is invalid")
	}
	return nil
}

type CompensationResponse struct {
	ID                string  `json:"id"`
	UserID            string  `json:"user_id"`
	RequestedDate     string  `json:"requested_date"`
	HoursToCompensate float64 `json:"hours_to_compensate"`
	Justification     string  `json:"justification"`
	Status            Status  `json:"status"`
	ApprovedBy        *string `json:"approved_by,omitempty"`
	ApprovedAt        *string `json:"approved_at,omitempty"`
	AppliedAt         *string `json:"applied_at,omitempty"`
	RejectionReason   *string `json:"rejection_reason,omitempty"`
	TransactionID     *string `json:"transaction_id,omitempty"`
	CreatedAt         string  `json:"created_at"`
}

type ListCompensationResponse struct {
	TotalCount    int64                  `json:"total_count"`
	Page          int                    `json:"page"`
	Limit         int                    `json:"limit"`
	TotalPages    int                    `json:"total_pages"`
	Compensations []CompensationResponse `json:"compensations"`
}

func formatTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(time.RFC3339)
	return &s
}

// ToResponse maps a HourCompensation entity to its API shape.
func ToResponse(c HourCompensation) CompensationResponse {
	return CompensationResponse{
		ID:                c.ID,
		UserID:            c.UserID,
		RequestedDate:     c.RequestedDate.Format("2006-01-02"),
		HoursToCompensate: c.HoursToCompensate,
		Justification:     c.Justification,
		Status:            c.Status,
		ApprovedBy:        c.ApprovedBy,
		ApprovedAt:        formatTime(c.ApprovedAt),
		AppliedAt:         formatTime(c.AppliedAt),
		RejectionReason:   c.RejectionReason,
		TransactionID:     c.TransactionID,
		CreatedAt:         c.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}
