package compensation

import (
	"time"

	"github.com/skponto/skponto-backend-go/internal/pkg/workflow"
)

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusApplied   Status = "APPLIED"
	StatusCancelled Status = "CANCELLED"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusApplied, StatusCancelled:
		return true
	}
	return false
}

// Transitions is the compensation state machine. APPLIED and CANCELLED are terminal.
var Transitions = workflow.Transitions[Status]{
	StatusPending: {StatusApplied, StatusCancelled},
}

// HourCompensation is a request to spend hour bank balance as time off.
type HourCompensation struct {
	ID                string
	UserID            string
	RequestedDate     time.Time
	HoursToCompensate float64
	Justification     string
	Status            Status
	ApprovedBy        *string
	ApprovedAt        *time.Time
	AppliedAt         *time.Time
	CancelledAt       *time.Time
	RejectionReason   *string
	TransactionID     *string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}
