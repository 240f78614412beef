package notification

import (
	"time"
)

// NotificationType represents the type of notification
type NotificationType string

const (
	TypeHourBankCredit       NotificationType = "hour_bank_credit"
	TypeHourBankDebit        NotificationType = "hour_bank_debit"
	TypeHourBankAdjustment   NotificationType = "hour_bank_adjustment"
	TypeOvertimeApproved     NotificationType = "overtime_approved"
	TypeOvertimeRejected     NotificationType = "overtime_rejected"
	TypeCompensationApplied  NotificationType = "compensation_applied"
	TypeCompensationRejected NotificationType = "compensation_rejected"
)

// Severity drives how a client renders the notification.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
	SeverityWarning Severity = "warning"
	SeverityDanger  Severity = "danger"
)

// Notification represents a notification entity
type Notification struct {
	ID          string
	RecipientID string
	SenderID    *string
	Type        NotificationType
	Severity    Severity
	Title       string
	Message     string
	Data        map[string]interface{}
	IsRead      bool
	ReadAt      *time.Time
	CreatedAt   time.Time
}
