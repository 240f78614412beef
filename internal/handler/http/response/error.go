package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/skponto/skponto-backend-go/internal/domain/compensation"
	"github.com/skponto/skponto-backend-go/internal/domain/hourbank"
	"github.com/skponto/skponto-backend-go/internal/domain/notification"
	"github.com/skponto/skponto-backend-go/internal/domain/overtime"
	"github.com/skponto/skponto-backend-go/internal/domain/timerecord"
	"github.com/skponto/skponto-backend-go/internal/domain/user"
	"github.com/skponto/skponto-backend-go/internal/domain/workclass"
	"github.com/skponto/skponto-backend-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Policy violations carry their sentinel inside ValidationErrors.
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// User and policy
	case errors.Is(err, user.ErrUserNotFound):
		NotFound(w, "User not found")
	case errors.Is(err, user.ErrUserInactive):
		Forbidden(w, "User is inactive")
	case errors.Is(err, user.ErrAdminPrivilegeRequired),
		errors.Is(err, user.ErrInsufficientPermissions):
		Forbidden(w, err.Error())
	case errors.Is(err, workclass.ErrWorkClassNotFound):
		NotFound(w, "Work class not found")

	// Hour bank
	case errors.Is(err, hourbank.ErrHourBankNotFound):
		NotFound(w, "Hour bank not found")
	case errors.Is(err, hourbank.ErrInsufficientBalance):
		writeError(w, http.StatusBadRequest, "INSUFFICIENT_BALANCE", "Insufficient hour bank balance")
	case errors.Is(err, hourbank.ErrConcurrencyConflict):
		Conflict(w, err.Error())
	case errors.Is(err, hourbank.ErrTimeRecordNotClosed):
		Conflict(w, err.Error())

	// Time records
	case errors.Is(err, timerecord.ErrTimeRecordNotFound):
		NotFound(w, "Time record not found")
	case errors.Is(err, timerecord.ErrAlreadyClockedIn),
		errors.Is(err, timerecord.ErrNotClockedIn),
		errors.Is(err, timerecord.ErrAlreadyClockedOut),
		errors.Is(err, timerecord.ErrLunchAlreadyTaken),
		errors.Is(err, timerecord.ErrLunchNotStarted),
		errors.Is(err, timerecord.ErrLunchNotFinished),
		errors.Is(err, timerecord.ErrNonWorkingDay),
		errors.Is(err, timerecord.ErrAlreadySettled):
		Conflict(w, err.Error())

	// Overtime
	case errors.Is(err, overtime.ErrRequestNotFound):
		NotFound(w, "Overtime request not found")
	case errors.Is(err, overtime.ErrSettingsNotFound):
		NotFound(w, "Overtime settings not found")
	case errors.Is(err, overtime.ErrNotRequestOwner):
		Forbidden(w, err.Error())
	case errors.Is(err, overtime.ErrInvalidTransition),
		errors.Is(err, overtime.ErrActualHoursNotEditable):
		Conflict(w, err.Error())

	// Compensation
	case errors.Is(err, compensation.ErrCompensationNotFound):
		NotFound(w, "Compensation request not found")
	case errors.Is(err, compensation.ErrNotRequestOwner):
		Forbidden(w, err.Error())
	case errors.Is(err, compensation.ErrInvalidTransition),
		errors.Is(err, compensation.ErrDuplicateForDate):
		Conflict(w, err.Error())

	// Notifications
	case errors.Is(err, notification.ErrNotificationNotFound):
		NotFound(w, "Notification not found")

	default:
		slog.Error("unhandled error", "error", err)
		InternalServerError(w, "An unexpected error occurred")
	}
}
