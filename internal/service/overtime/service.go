package overtime

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/shopspring/decimal"
	"github.com/skponto/skponto-backend-go/internal/domain/notification"
	"github.com/skponto/skponto-backend-go/internal/domain/overtime"
	"github.com/skponto/skponto-backend-go/internal/domain/user"
	"github.com/skponto/skponto-backend-go/internal/pkg/database"
	"github.com/skponto/skponto-backend-go/internal/pkg/validator"
)

type OvertimeServiceImpl struct {
	txManager    database.TxManager
	requestRepo  overtime.RequestRepository
	settingsRepo overtime.SettingsRepository
	limitsRepo   overtime.LimitsRepository
	userRepo     user.UserRepository
	notifier     notification.Notifier
	defaults     overtime.SettingsDefaults
}

func NewOvertimeService(
	txManager database.TxManager,
	requestRepo overtime.RequestRepository,
	settingsRepo overtime.SettingsRepository,
	limitsRepo overtime.LimitsRepository,
	userRepo user.UserRepository,
	notifier notification.Notifier,
	defaults overtime.SettingsDefaults,
) overtime.OvertimeService {
	return &OvertimeServiceImpl{
		txManager:    txManager,
		requestRepo:  requestRepo,
		settingsRepo: settingsRepo,
		limitsRepo:   limitsRepo,
		userRepo:     userRepo,
		notifier:     notifier,
		defaults:     defaults,
	}
}

// Submit implements overtime.OvertimeService.
func (s *OvertimeServiceImpl) Submit(ctx context.Context, req overtime.SubmitRequest) (overtime.RequestResponse, error) {
	if err := req.Validate(); err != nil {
		return overtime.RequestResponse{}, err
	}
	date, _ := validator.IsValidDate(req.Date)
	start, _ := validator.ParseClock(req.StartTime)
	end, _ := validator.ParseClock(req.EndTime)

	u, err := s.userRepo.GetByID(ctx, req.UserID)
	if err != nil {
		return overtime.RequestResponse{}, err
	}
	if !u.IsActive {
		return overtime.RequestResponse{}, user.ErrUserInactive
	}

	candidate := overtime.Request{
		UserID:         req.UserID,
		Date:           date,
		StartTime:      start,
		EndTime:        end,
		EstimatedHours: overtime.EstimateHours(start, end),
		Type:           overtime.Type(req.Type),
		Justification:  req.Justification,
		Status:         overtime.StatusPending,
	}

	var created overtime.Request
	err = s.txManager.WithinTx(ctx, func(ctx context.Context) error {
		settings, err := s.getOrCreateSettings(ctx, req.UserID)
		if err != nil {
			return err
		}
		if err := s.checkOverlap(ctx, candidate); err != nil {
			return err
		}
		limits, err := s.limitsRepo.ListActiveForScopes(ctx, string(u.Role), u.WorkClassID)
		if err != nil {
			return fmt.Errorf("list overtime limits: %w", err)
		}
		if err := s.checkCaps(ctx, candidate, overtime.EffectiveCaps(settings, limits)); err != nil {
			return err
		}

		if settings.ShouldAutoApprove(candidate.EstimatedHours) {
			now := time.Now()
			hours := candidate.EstimatedHours
			multiplier := settings.MultiplierFor(candidate.Type)
			candidate.Status = overtime.StatusApproved
			candidate.ApprovedAt = &now
			candidate.ActualHours = &hours
			candidate.MultiplierApplied = &multiplier
		}

		created, err = s.requestRepo.Create(ctx, candidate)
		if err != nil {
			return fmt.Errorf("create overtime request: %w", err)
		}
		return nil
	})
	if err != nil {
		return overtime.RequestResponse{}, err
	}

	slog.Info("overtime request submitted",
		"request_id", created.ID,
		"user_id", created.UserID,
		"estimated_hours", created.EstimatedHours,
		"status", created.Status)

	return overtime.ToRequestResponse(created), nil
}

// checkOverlap rejects a candidate whose window intersects an active request.
// Neighbouring days are included because windows may run past midnight.
func (s *OvertimeServiceImpl) checkOverlap(ctx context.Context, candidate overtime.Request) error {
	for _, day := range []time.Time{candidate.Date.AddDate(0, 0, -1), candidate.Date, candidate.Date.AddDate(0, 0, 1)} {
		existing, err := s.requestRepo.ListActiveByUserAndDate(ctx, candidate.UserID, day)
		if err != nil {
			return fmt.Errorf("list overtime requests: %w", err)
		}
		for _, other := range existing {
			if candidate.Overlaps(other) {
				return validator.Wrap("start_time", overtime.ErrOverlappingRequest)
			}
		}
	}
	return nil
}

func (s *OvertimeServiceImpl) checkCaps(ctx context.Context, candidate overtime.Request, caps overtime.Caps) error {
	date := candidate.Date
	weekStart := date.AddDate(0, 0, -((int(date.Weekday()) + 6) % 7))
	monthStart := time.Date(date.Year(), date.Month(), 1, 0, 0, 0, 0, date.Location())

	windows := []struct {
		cap      float64
		from, to time.Time
		err      error
	}{
		{caps.Daily, date, date, overtime.ErrDailyCapExceeded},
		{caps.Weekly, weekStart, weekStart.AddDate(0, 0, 6), overtime.ErrWeeklyCapExceeded},
		{caps.Monthly, monthStart, monthStart.AddDate(0, 1, -1), overtime.ErrMonthlyCapExceeded},
	}
	for _, w := range windows {
		if w.cap <= 0 {
			continue
		}
		used, err := s.requestRepo.SumActiveHours(ctx, candidate.UserID, w.from, w.to)
		if err != nil {
			return fmt.Errorf("sum overtime hours: %w", err)
		}
		total := decimal.NewFromFloat(used).Add(decimal.NewFromFloat(candidate.EstimatedHours))
		if total.GreaterThan(decimal.NewFromFloat(w.cap)) {
			return validator.Wrap("estimated_hours", w.err)
		}
	}
	return nil
}

// Approve implements overtime.OvertimeService.
func (s *OvertimeServiceImpl) Approve(ctx context.Context, req overtime.ApproveRequest) (overtime.RequestResponse, error) {
	if err := req.Validate(); err != nil {
		return overtime.RequestResponse{}, err
	}
	if err := s.requireApprover(ctx, req.ApproverID); err != nil {
		return overtime.RequestResponse{}, err
	}

	var updated overtime.Request
	err := s.txManager.WithinTx(ctx, func(ctx context.Context) error {
		r, err := s.requestRepo.GetByIDForUpdate(ctx, req.ID)
		if err != nil {
			return err
		}
		if err := overtime.Transitions.Check(r.Status, overtime.StatusApproved, overtime.ErrInvalidTransition); err != nil {
			return err
		}
		settings, err := s.getOrCreateSettings(ctx, r.UserID)
		if err != nil {
			return err
		}

		now := time.Now()
		approver := req.ApproverID
		hours := r.EstimatedHours
		if req.ActualHours != nil {
			hours = *req.ActualHours
		}
		multiplier := settings.MultiplierFor(r.Type)

		r.Status = overtime.StatusApproved
		r.ApprovedBy = &approver
		r.ApprovedAt = &now
		r.ActualHours = &hours
		r.MultiplierApplied = &multiplier
		if err := s.requestRepo.Update(ctx, r); err != nil {
			return fmt.Errorf("update overtime request: %w", err)
		}
		updated = r
		return nil
	})
	if err != nil {
		return overtime.RequestResponse{}, err
	}

	notification.Send(ctx, s.notifier, notification.CreateNotificationRequest{
		RecipientID: updated.UserID,
		SenderID:    updated.ApprovedBy,
		Type:        notification.TypeOvertimeApproved,
		Severity:    notification.SeveritySuccess,
		Title:       "Overtime approved",
		Message: fmt.Sprintf("Your overtime on %s from %s to %s was approved.",
			updated.Date.Format("2006-01-02"), updated.StartTime, updated.EndTime),
		Data: map[string]interface{}{"overtime_request_id": updated.ID},
	})

	return overtime.ToRequestResponse(updated), nil
}

// Reject implements overtime.OvertimeService.
func (s *OvertimeServiceImpl) Reject(ctx context.Context, req overtime.RejectRequest) (overtime.RequestResponse, error) {
	if err := req.Validate(); err != nil {
		return overtime.RequestResponse{}, err
	}
	if err := s.requireApprover(ctx, req.ApproverID); err != nil {
		return overtime.RequestResponse{}, err
	}

	var updated overtime.Request
	err := s.txManager.WithinTx(ctx, func(ctx context.Context) error {
		r, err := s.requestRepo.GetByIDForUpdate(ctx, req.ID)
		if err != nil {
			return err
		}
		if err := overtime.Transitions.Check(r.Status, overtime.StatusRejected, overtime.ErrInvalidTransition); err != nil {
			return err
		}

		now := time.Now()
		approver := req.ApproverID
		reason := req.Reason
		r.Status = overtime.StatusRejected
		r.ApprovedBy = &approver
		r.ApprovedAt = &now
		r.RejectionReason = &reason
		if err := s.requestRepo.Update(ctx, r); err != nil {
			return fmt.Errorf("update overtime request: %w", err)
		}
		updated = r
		return nil
	})
	if err != nil {
		return overtime.RequestResponse{}, err
	}

	notification.Send(ctx, s.notifier, notification.CreateNotificationRequest{
		RecipientID: updated.UserID,
		SenderID:    updated.ApprovedBy,
		Type:        notification.TypeOvertimeRejected,
		Severity:    notification.SeverityDanger,
		Title:       "Overtime rejected",
		Message: fmt.Sprintf("Your overtime on %s was rejected: %s",
			updated.Date.Format("2006-01-02"), req.Reason),
		Data: map[string]interface{}{"overtime_request_id": updated.ID},
	})

	return overtime.ToRequestResponse(updated), nil
}

// Cancel implements overtime.OvertimeService. Only the owner may cancel and
// no notification is sent.
func (s *OvertimeServiceImpl) Cancel(ctx context.Context, requestID, userID string) (overtime.RequestResponse, error) {
	var updated overtime.Request
	err := s.txManager.WithinTx(ctx, func(ctx context.Context) error {
		r, err := s.requestRepo.GetByIDForUpdate(ctx, requestID)
		if err != nil {
			return err
		}
		if r.UserID != userID {
			return overtime.ErrNotRequestOwner
		}
		if err := overtime.Transitions.Check(r.Status, overtime.StatusCancelled, overtime.ErrInvalidTransition); err != nil {
			return err
		}

		now := time.Now()
		r.Status = overtime.StatusCancelled
		r.CancelledAt = &now
		if err := s.requestRepo.Update(ctx, r); err != nil {
			return fmt.Errorf("update overtime request: %w", err)
		}
		updated = r
		return nil
	})
	if err != nil {
		return overtime.RequestResponse{}, err
	}
	return overtime.ToRequestResponse(updated), nil
}

// CorrectActualHours implements overtime.OvertimeService.
func (s *OvertimeServiceImpl) CorrectActualHours(ctx context.Context, req overtime.CorrectActualHoursRequest) (overtime.RequestResponse, error) {
	if err := req.Validate(); err != nil {
		return overtime.RequestResponse{}, err
	}

	var updated overtime.Request
	err := s.txManager.WithinTx(ctx, func(ctx context.Context) error {
		r, err := s.requestRepo.GetByIDForUpdate(ctx, req.ID)
		if err != nil {
			return err
		}
		if r.Status != overtime.StatusApproved {
			return overtime.ErrActualHoursNotEditable
		}
		hours := req.ActualHours
		r.ActualHours = &hours
		if err := s.requestRepo.Update(ctx, r); err != nil {
			return fmt.Errorf("update overtime request: %w", err)
		}
		updated = r
		return nil
	})
	if err != nil {
		return overtime.RequestResponse{}, err
	}
	return overtime.ToRequestResponse(updated), nil
}

// Get implements overtime.OvertimeService.
func (s *OvertimeServiceImpl) Get(ctx context.Context, requestID string) (overtime.RequestResponse, error) {
	r, err := s.requestRepo.GetByID(ctx, requestID)
	if err != nil {
		return overtime.RequestResponse{}, err
	}
	return overtime.ToRequestResponse(r), nil
}

// List implements overtime.OvertimeService.
func (s *OvertimeServiceImpl) List(ctx context.Context, filter overtime.RequestFilter) (overtime.ListRequestResponse, error) {
	if err := filter.Validate(); err != nil {
		return overtime.ListRequestResponse{}, err
	}

	requests, total, err := s.requestRepo.List(ctx, filter)
	if err != nil {
		return overtime.ListRequestResponse{}, fmt.Errorf("failed to list overtime requests: %w", err)
	}

	responses := make([]overtime.RequestResponse, 0, len(requests))
	for _, r := range requests {
		responses = append(responses, overtime.ToRequestResponse(r))
	}

	totalPages := int(math.Ceil(float64(total) / float64(filter.Limit)))
	showing := fmt.Sprintf("%d-%d of %d", (filter.Page-1)*filter.Limit+1, min(filter.Page*filter.Limit, int(total)), total)
	if total == 0 {
		showing = "0 of 0"
	}

	return overtime.ListRequestResponse{
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: totalPages,
		Showing:    showing,
		Requests:   responses,
	}, nil
}

// GetSettings implements overtime.OvertimeService. Settings are created with
// defaults on first access.
func (s *OvertimeServiceImpl) GetSettings(ctx context.Context, userID string) (overtime.SettingsResponse, error) {
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return overtime.SettingsResponse{}, err
	}
	settings, err := s.getOrCreateSettings(ctx, userID)
	if err != nil {
		return overtime.SettingsResponse{}, err
	}
	return overtime.ToSettingsResponse(settings), nil
}

// UpdateSettings implements overtime.OvertimeService.
func (s *OvertimeServiceImpl) UpdateSettings(ctx context.Context, req overtime.UpdateSettingsRequest) (overtime.SettingsResponse, error) {
	if err := req.Validate(); err != nil {
		return overtime.SettingsResponse{}, err
	}
	if _, err := s.userRepo.GetByID(ctx, req.UserID); err != nil {
		return overtime.SettingsResponse{}, err
	}

	var settings overtime.Settings
	err := s.txManager.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		settings, err = s.getOrCreateSettings(ctx, req.UserID)
		if err != nil {
			return err
		}

		if req.MaxDailyOvertime != nil {
			settings.MaxDailyOvertime = *req.MaxDailyOvertime
		}
		if req.MaxWeeklyOvertime != nil {
			settings.MaxWeeklyOvertime = *req.MaxWeeklyOvertime
		}
		if req.MaxMonthlyOvertime != nil {
			settings.MaxMonthlyOvertime = *req.MaxMonthlyOvertime
		}
		if req.AutoApprovalLimit != nil {
			settings.AutoApprovalLimit = *req.AutoApprovalLimit
		}
		if req.RequiresApproval != nil {
			settings.RequiresApproval = *req.RequiresApproval
		}
		if len(req.Multipliers) > 0 {
			multipliers := make(map[overtime.Type]float64, len(settings.Multipliers)+len(req.Multipliers))
			for k, v := range settings.Multipliers {
				multipliers[k] = v
			}
			for k, v := range req.Multipliers {
				multipliers[overtime.Type(k)] = v
			}
			settings.Multipliers = multipliers
		}

		if err := s.settingsRepo.Update(ctx, settings); err != nil {
			return fmt.Errorf("update overtime settings: %w", err)
		}
		return nil
	})
	if err != nil {
		return overtime.SettingsResponse{}, err
	}
	return overtime.ToSettingsResponse(settings), nil
}

func (s *OvertimeServiceImpl) getOrCreateSettings(ctx context.Context, userID string) (overtime.Settings, error) {
	settings, err := s.settingsRepo.GetByUserID(ctx, userID)
	if err == nil {
		return settings, nil
	}
	if !errors.Is(err, overtime.ErrSettingsNotFound) {
		return overtime.Settings{}, fmt.Errorf("get overtime settings: %w", err)
	}
	settings, err = s.settingsRepo.CreateIfNotExists(ctx, overtime.NewSettings(userID, s.defaults))
	if err != nil {
		return overtime.Settings{}, fmt.Errorf("create overtime settings: %w", err)
	}
	return settings, nil
}

func (s *OvertimeServiceImpl) requireApprover(ctx context.Context, approverID string) error {
	approver, err := s.userRepo.GetByID(ctx, approverID)
	if err != nil {
		return err
	}
	if !approver.CanApprove() {
		return user.ErrAdminPrivilegeRequired
	}
	return nil
}
