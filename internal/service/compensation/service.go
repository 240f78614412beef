package compensation

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/skponto/skponto-backend-go/internal/domain/compensation"
	"github.com/skponto/skponto-backend-go/internal/domain/hourbank"
	"github.com/skponto/skponto-backend-go/internal/domain/notification"
	"github.com/skponto/skponto-backend-go/internal/domain/user"
	"github.com/skponto/skponto-backend-go/internal/pkg/database"
	"github.com/skponto/skponto-backend-go/internal/pkg/validator"
)

type CompensationServiceImpl struct {
	txManager database.TxManager
	repo      compensation.CompensationRepository
	ledger    hourbank.Ledger
	userRepo  user.UserRepository
	notifier  notification.Notifier
}

func NewCompensationService(
	txManager database.TxManager,
	repo compensation.CompensationRepository,
	ledger hourbank.Ledger,
	userRepo user.UserRepository,
	notifier notification.Notifier,
) compensation.CompensationService {
	return &CompensationServiceImpl{
		txManager: txManager,
		repo:      repo,
		ledger:    ledger,
		userRepo:  userRepo,
		notifier:  notifier,
	}
}

// Submit implements compensation.CompensationService. The balance must cover
// the requested hours at submission time.
func (s *CompensationServiceImpl) Submit(ctx context.Context, req compensation.SubmitRequest) (compensation.CompensationResponse, error) {
	if err := req.Validate(); err != nil {
		return compensation.CompensationResponse{}, err
	}
	date, _ := validator.IsValidDate(req.RequestedDate)

	u, err := s.userRepo.GetByID(ctx, req.UserID)
	if err != nil {
		return compensation.CompensationResponse{}, err
	}
	if !u.IsActive {
		return compensation.CompensationResponse{}, user.ErrUserInactive
	}

	var created compensation.HourCompensation
	err = s.txManager.WithinTx(ctx, func(ctx context.Context) error {
		exists, err := s.repo.ExistsActiveForDate(ctx, req.UserID, date)
		if err != nil {
			return fmt.Errorf("check compensation date: %w", err)
		}
		if exists {
			return compensation.ErrDuplicateForDate
		}

		ok, err := s.ledger.CanDebit(ctx, req.UserID, req.HoursToCompensate)
		if err != nil {
			return fmt.Errorf("check hour bank balance: %w", err)
		}
		if !ok {
			return fmt.Errorf("%w: requested %s", hourbank.ErrInsufficientBalance, hourbank.FormatHours(req.HoursToCompensate))
		}

		created, err = s.repo.Create(ctx, compensation.HourCompensation{
			UserID:            req.UserID,
			RequestedDate:     date,
			HoursToCompensate: hourbank.RoundHours(req.HoursToCompensate),
			Justification:     req.Justification,
			Status:            compensation.StatusPending,
		})
		if err != nil {
			return fmt.Errorf("create compensation: %w", err)
		}
		return nil
	})
	if err != nil {
		return compensation.CompensationResponse{}, err
	}

	slog.Info("compensation requested",
		"compensation_id", created.ID,
		"user_id", created.UserID,
		"hours", created.HoursToCompensate)

	return compensation.ToResponse(created), nil
}

// Approve implements compensation.CompensationService. The balance is
// re-checked under the bank row lock; on failure the request stays PENDING.
func (s *CompensationServiceImpl) Approve(ctx context.Context, compensationID, approverID string) (compensation.CompensationResponse, error) {
	if err := s.requireApprover(ctx, approverID); err != nil {
		return compensation.CompensationResponse{}, err
	}

	var updated compensation.HourCompensation
	err := s.txManager.WithinTx(ctx, func(ctx context.Context) error {
		c, err := s.repo.GetByIDForUpdate(ctx, compensationID)
		if err != nil {
			return err
		}
		if err := compensation.Transitions.Check(c.Status, compensation.StatusApplied, compensation.ErrInvalidTransition); err != nil {
			return err
		}

		tx, err := s.ledger.DebitHours(ctx, hourbank.EntryRequest{
			UserID:      c.UserID,
			Hours:       c.HoursToCompensate,
			Type:        hourbank.TransactionCompensation,
			Description: fmt.Sprintf("Time off on %s", c.RequestedDate.Format("2006-01-02")),
			CreatedBy:   &approverID,
		}, false)
		if err != nil {
			return err
		}

		now := time.Now()
		c.Status = compensation.StatusApplied
		c.ApprovedBy = &approverID
		c.ApprovedAt = &now
		c.AppliedAt = &now
		c.TransactionID = &tx.ID
		if err := s.repo.Update(ctx, c); err != nil {
			return fmt.Errorf("update compensation: %w", err)
		}
		updated = c
		return nil
	})
	if err != nil {
		return compensation.CompensationResponse{}, err
	}

	notification.Send(ctx, s.notifier, notification.CreateNotificationRequest{
		RecipientID: updated.UserID,
		SenderID:    &approverID,
		Type:        notification.TypeCompensationApplied,
		Severity:    notification.SeveritySuccess,
		Title:       "Compensation approved",
		Message: fmt.Sprintf("%s of time off on %s was approved and debited from your hour bank.",
			hourbank.FormatHours(updated.HoursToCompensate), updated.RequestedDate.Format("2006-01-02")),
		Data: map[string]interface{}{"compensation_id": updated.ID},
	})

	return compensation.ToResponse(updated), nil
}

// Reject implements compensation.CompensationService.
func (s *CompensationServiceImpl) Reject(ctx context.Context, req compensation.RejectRequest) (compensation.CompensationResponse, error) {
	if err := req.Validate(); err != nil {
		return compensation.CompensationResponse{}, err
	}
	if err := s.requireApprover(ctx, req.ApproverID); err != nil {
		return compensation.CompensationResponse{}, err
	}

	updated, err := s.cancel(ctx, req.ID, func(c *compensation.HourCompensation) error {
		approver := req.ApproverID
		c.ApprovedBy = &approver
		if !validator.IsEmpty(req.Reason) {
			reason := req.Reason
			c.RejectionReason = &reason
		}
		return nil
	})
	if err != nil {
		return compensation.CompensationResponse{}, err
	}

	message := fmt.Sprintf("Your time off request for %s was rejected.", updated.RequestedDate.Format("2006-01-02"))
	if updated.RejectionReason != nil {
		message = fmt.Sprintf("Your time off request for %s was rejected: %s",
			updated.RequestedDate.Format("2006-01-02"), *updated.RejectionReason)
	}
	notification.Send(ctx, s.notifier, notification.CreateNotificationRequest{
		RecipientID: updated.UserID,
		SenderID:    updated.ApprovedBy,
		Type:        notification.TypeCompensationRejected,
		Severity:    notification.SeverityDanger,
		Title:       "Compensation rejected",
		Message:     message,
		Data:        map[string]interface{}{"compensation_id": updated.ID},
	})

	return compensation.ToResponse(updated), nil
}

// Cancel implements compensation.CompensationService. Only the owner may cancel.
func (s *CompensationServiceImpl) Cancel(ctx context.Context, compensationID, userID string) (compensation.CompensationResponse, error) {
	updated, err := s.cancel(ctx, compensationID, func(c *compensation.HourCompensation) error {
		if c.UserID != userID {
			return compensation.ErrNotRequestOwner
		}
		return nil
	})
	if err != nil {
		return compensation.CompensationResponse{}, err
	}
	return compensation.ToResponse(updated), nil
}

func (s *CompensationServiceImpl) cancel(ctx context.Context, compensationID string, mutate func(*compensation.HourCompensation) error) (compensation.HourCompensation, error) {
	var updated compensation.HourCompensation
	err := s.txManager.WithinTx(ctx, func(ctx context.Context) error {
		c, err := s.repo.GetByIDForUpdate(ctx, compensationID)
		if err != nil {
			return err
		}
		if err := mutate(&c); err != nil {
			return err
		}
		if err := compensation.Transitions.Check(c.Status, compensation.StatusCancelled, compensation.ErrInvalidTransition); err != nil {
			return err
		}

		now := time.Now()
		c.Status = compensation.StatusCancelled
		c.CancelledAt = &now
		if err := s.repo.Update(ctx, c); err != nil {
			return fmt.Errorf("update compensation: %w", err)
		}
		updated = c
		return nil
	})
	return updated, err
}

// Get implements compensation.CompensationService.
func (s *CompensationServiceImpl) Get(ctx context.Context, compensationID string) (compensation.CompensationResponse, error) {
	c, err := s.repo.GetByID(ctx, compensationID)
	if err != nil {
		return compensation.CompensationResponse{}, err
	}
	return compensation.ToResponse(c), nil
}

// List implements compensation.CompensationService.
func (s *CompensationServiceImpl) List(ctx context.Context, filter compensation.CompensationFilter) (compensation.ListCompensationResponse, error) {
	if err := filter.Validate(); err != nil {
		return compensation.ListCompensationResponse{}, err
	}

	items, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return compensation.ListCompensationResponse{}, fmt.Errorf("failed to list compensations: %w", err)
	}

	responses := make([]compensation.CompensationResponse, 0, len(items))
	for _, c := range items {
		responses = append(responses, compensation.ToResponse(c))
	}

	return compensation.ListCompensationResponse{
		TotalCount:    total,
		Page:          filter.Page,
		Limit:         filter.Limit,
		TotalPages:    int(math.Ceil(float64(total) / float64(filter.Limit))),
		Compensations: responses,
	}, nil
}

func (s *CompensationServiceImpl) requireApprover(ctx context.Context, approverID string) error {
	approver, err := s.userRepo.GetByID(ctx, approverID)
	if err != nil {
		return err
	}
	if !approver.CanApprove() {
		return user.ErrAdminPrivilegeRequired
	}
	return nil
}
