package hourbank

import (
	"time"

	"github.com/skponto/skponto-backend-go/internal/pkg/validator"
)

// EntryRequest describes one ledger mutation.
type EntryRequest struct {
	UserID            string
	Hours             float64
	Type              TransactionType
	Description       string
	OvertimeRequestID *string
	TimeRecordID      *string
	CreatedBy         *string
}

func (r *EntryRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.UserID) {
		errs = append(errs, validator.ValidationError{Field: "user_id", Message: "user_id is required"})
	}
	if r.Hours <= 0 {
		errs = append(errs, validator.ValidationError{Field: "hours", Message: "hours must be greater than zero"})
	}
	if !r.Type.IsValid() {
		errs = append(errs, validator.ValidationError{Field: "type", Message: "type is invalid"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// AdjustRequest is an admin correction. Hours may have any sign.
type AdjustRequest struct {
	UserID      string  `json:"-"`
	Hours       float64 `json:"hours"`
	Description string  `json:"description"`
	CreatedBy   string  `json:"-"`
}

func (r *AdjustRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.UserID) {
		errs = append(errs, validator.ValidationError{Field: "user_id", Message: "user_id is required"})
	}
	if RoundHours(r.Hours) == 0 {
		errs = append(errs, validator.ValidationError{Field: "hours", Message: "hours must not be zero"})
	}
	if validator.IsEmpty(r.Description) {
		errs = append(errs, validator.ValidationError{Field: "description", Message: "description is required"})
	}
	if len(r.Description) > 500 {
		errs = append(errs, validator.ValidationError{Field: "description", Message: "description must not exceed 500 characters"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type TransactionFilter struct {
	Type  *string
	From  *string
	To    *string
	Page  int
	Limit int
}

func (f *TransactionFilter) Validate() error {
	var errs validator.ValidationErrors

	if f.Type != nil && !TransactionType(*f.Type).IsValid() {
		errs = append(errs, validator.ValidationError{Field: "type", Message: "type is invalid"})
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

type BalanceResponse struct {
	UserID           string     `json:"user_id"`
	CurrentBalance   float64    `json:"current_balance"`
	FormattedBalance string     `json:"formatted_balance"`
	TotalCredited    float64    `json:"total_credited"`
	TotalDebited     float64    `json:"total_debited"`
	LastTransaction  *time.Time `json:"last_transaction,omitempty"`
}

type TransactionResponse struct {
	ID                string          `json:"id"`
	UserID            string          `json:"user_id"`
	Type              TransactionType `json:"type"`
	Hours             float64         `json:"hours"`
	BalanceBefore     float64         `json:"balance_before"`
	BalanceAfter      float64         `json:"balance_after"`
	Description       string          `json:"description"`
	OvertimeRequestID *string         `json:"overtime_request_id,omitempty"`
	TimeRecordID      *string         `json:"time_record_id,omitempty"`
	CreatedBy         *string         `json:"created_by,omitempty"`
	CreatedAt         string          `json:"created_at"`
}

type ListTransactionResponse struct {
	TotalCount   int64                 `json:"total_count"`
	Page         int                   `json:"page"`
	Limit        int                   `json:"limit"`
	TotalPages   int                   `json:"total_pages"`
	Showing      string                `json:"showing"`
	Transactions []TransactionResponse `json:"transactions"`
}

// ReconcileReport compares a bank's stored balance with its audit trail.
type ReconcileReport struct {
	UserID               string   `json:"user_id"`
	CurrentBalance       float64  `json:"current_balance"`
	TransactionSum       float64  `json:"transaction_sum"`
	TransactionCount     int      `json:"transaction_count"`
	Balanced             bool     `json:"balanced"`
	ChainConsistent      bool     `json:"chain_consistent"`
	BrokenTransactionIDs []string `json:"broken_transaction_ids,omitempty"`
}

// ToTransactionResponse maps a Transaction entity to its API shape.
func ToTransactionResponse(t Transaction) TransactionResponse {
	return TransactionResponse{
		ID:                t.ID,
		UserID:            t.UserID,
		Type:              t.Type,
		Hours:             t.Hours,
		BalanceBefore:     t.BalanceBefore,
		BalanceAfter:      t.BalanceAfter,
		Description:       t.Description,
		OvertimeRequestID: t.OvertimeRequestID,
		TimeRecordID:      t.TimeRecordID,
		CreatedBy:         t.CreatedBy,
		CreatedAt:         t.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}
