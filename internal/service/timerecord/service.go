package timerecord

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/skponto/skponto-backend-go/internal/domain/hourbank"
	"github.com/skponto/skponto-backend-go/internal/domain/timerecord"
	"github.com/skponto/skponto-backend-go/internal/domain/workclass"
	"github.com/skponto/skponto-backend-go/internal/pkg/database"
	"github.com/skponto/skponto-backend-go/internal/pkg/validator"
	"github.com/skponto/skponto-backend-go/internal/service/workhours"
)

// Settler books a closed day on the ledger.
type Settler interface {
	Settle(ctx context.Context, record timerecord.TimeRecord) (*hourbank.Transaction, error)
	NotifySettled(ctx context.Context, tx hourbank.Transaction)
}

// PolicyResolver returns the expected-hours policy of a user.
type PolicyResolver interface {
	Resolve(ctx context.Context, userID string) (workclass.Policy, error)
}

type TimeRecordServiceImpl struct {
	txManager database.TxManager
	repo      timerecord.TimeRecordRepository
	policies  PolicyResolver
	settler   Settler
	location  *time.Location
	now       func() time.Time
}

func NewTimeRecordService(
	txManager database.TxManager,
	repo timerecord.TimeRecordRepository,
	policies PolicyResolver,
	settler Settler,
	location *time.Location,
) timerecord.TimeRecordService {
	if location == nil {
		location = time.UTC
	}
	return &TimeRecordServiceImpl{
		txManager: txManager,
		repo:      repo,
		policies:  policies,
		settler:   settler,
		location:  location,
		now:       time.Now,
	}
}

// Clock implements timerecord.TimeRecordService. Punches land on today's
// record in the configured timezone; lunch and exit punches fall back to
// yesterday's open record so overnight shifts can close.
func (s *TimeRecordServiceImpl) Clock(ctx context.Context, userID string, action timerecord.ClockAction) (timerecord.TimeRecordResponse, error) {
	if !action.IsValid() {
		return timerecord.TimeRecordResponse{}, validator.Single("action", "action must be one of entry, lunch_out, lunch_in, exit")
	}
	now := s.now().In(s.location).Truncate(time.Second)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.location)

	var (
		record  timerecord.TimeRecord
		settled *hourbank.Transaction
	)
	err := s.txManager.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		if action == timerecord.ActionEntry {
			record, err = s.repo.GetOrCreate(ctx, userID, today)
		} else {
			record, err = s.openRecord(ctx, userID, today)
		}
		if err != nil {
			return err
		}
		if record.IsNonWorking() {
			return timerecord.ErrNonWorkingDay
		}

		if err := punch(&record, action, now); err != nil {
			return err
		}

		if action == timerecord.ActionExit {
			if err := s.computeHours(ctx, &record); err != nil {
				return err
			}
		}
		if err := s.repo.Update(ctx, record); err != nil {
			return fmt.Errorf("update time record: %w", err)
		}

		if action == timerecord.ActionExit {
			settled, err = s.settler.Settle(ctx, record)
			if err != nil {
				return fmt.Errorf("settle time record: %w", err)
			}
			record, err = s.repo.GetByID(ctx, record.ID)
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return timerecord.TimeRecordResponse{}, err
	}

	slog.Info("clock action registered",
		"user_id", userID,
		"action", action,
		"time_record_id", record.ID,
		"at", now.Format(time.RFC3339))

	if settled != nil {
		s.settler.NotifySettled(ctx, *settled)
	}
	return timerecord.ToResponse(record), nil
}

func (s *TimeRecordServiceImpl) openRecord(ctx context.Context, userID string, today time.Time) (timerecord.TimeRecord, error) {
	record, err := s.repo.GetByUserAndDate(ctx, userID, today)
	if err == nil && record.Entry != nil {
		return record, nil
	}
	if err != nil && !errors.Is(err, timerecord.ErrTimeRecordNotFound) {
		return timerecord.TimeRecord{}, err
	}

	yesterday, yErr := s.repo.GetByUserAndDate(ctx, userID, today.AddDate(0, 0, -1))
	if yErr == nil && yesterday.Entry != nil && yesterday.Exit == nil {
		return yesterday, nil
	}
	return timerecord.TimeRecord{}, timerecord.ErrNotClockedIn
}

// punch applies action at time at, enforcing entry, lunch_out, lunch_in, exit order.
func punch(r *timerecord.TimeRecord, action timerecord.ClockAction, at time.Time) error {
	switch action {
	case timerecord.ActionEntry:
		if r.Entry != nil {
			return timerecord.ErrAlreadyClockedIn
		}
		r.Entry = &at
		return nil
	}

	if r.Entry == nil {
		return timerecord.ErrNotClockedIn
	}
	if r.Exit != nil {
		return timerecord.ErrAlreadyClockedOut
	}

	switch action {
	case timerecord.ActionLunchOut:
		if r.LunchOut != nil {
			return timerecord.ErrLunchAlreadyTaken
		}
		r.LunchOut = &at
	case timerecord.ActionLunchIn:
		if r.LunchOut == nil {
			return timerecord.ErrLunchNotStarted
		}
		if r.LunchIn != nil {
			return timerecord.ErrLunchAlreadyTaken
		}
		r.LunchIn = &at
	case timerecord.ActionExit:
		if r.LunchOut != nil && r.LunchIn == nil {
			return timerecord.ErrLunchNotFinished
		}
		r.Exit = &at
	}
	return nil
}

func (s *TimeRecordServiceImpl) computeHours(ctx context.Context, r *timerecord.TimeRecord) error {
	if r.IsNonWorking() || !r.IsClosed() {
		r.WorkedHours, r.OvertimeHours = 0, 0
		return nil
	}
	policy, err := s.policies.Resolve(ctx, r.UserID)
	if err != nil {
		return err
	}
	result := workhours.Calculate(r.Entry, r.Exit, r.LunchOut, r.LunchIn, policy.DailyWorkHours, policy.LunchHours)
	r.WorkedHours = result.Worked
	r.OvertimeHours = result.Overtime
	return nil
}

// ListMine implements timerecord.TimeRecordService.
func (s *TimeRecordServiceImpl) ListMine(ctx context.Context, userID string, filter timerecord.RecordFilter) ([]timerecord.TimeRecordResponse, error) {
	now := s.now().In(s.location)
	from, to, err := filter.Range(time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.location))
	if err != nil {
		return nil, err
	}

	records, err := s.repo.ListByUserID(ctx, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list time records: %w", err)
	}

	responses := make([]timerecord.TimeRecordResponse, 0, len(records))
	for _, r := range records {
		responses = append(responses, timerecord.ToResponse(r))
	}
	return responses, nil
}

// EditRecord implements timerecord.TimeRecordService. Hours are recomputed;
// a day that was already settled is not settled again.
func (s *TimeRecordServiceImpl) EditRecord(ctx context.Context, req timerecord.EditRecordRequest) (timerecord.TimeRecordResponse, error) {
	if err := req.Validate(); err != nil {
		return timerecord.TimeRecordResponse{}, err
	}

	var (
		record  timerecord.TimeRecord
		settled *hourbank.Transaction
	)
	err := s.txManager.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		record, err = s.repo.GetByID(ctx, req.ID)
		if err != nil {
			return err
		}

		day := time.Date(record.Date.Year(), record.Date.Month(), record.Date.Day(), 0, 0, 0, 0, s.location)
		record.Entry = applyClock(record.Entry, req.Entry, day, nil)
		record.Exit = applyClock(record.Exit, req.Exit, day, record.Entry)
		record.LunchOut = applyClock(record.LunchOut, req.LunchOut, day, record.Entry)
		record.LunchIn = applyClock(record.LunchIn, req.LunchIn, day, record.LunchOut)

		if record.Exit != nil && record.Entry == nil {
			return validator.Single("entry", "entry is required when exit is set")
		}
		if (record.LunchOut == nil) != (record.LunchIn == nil) {
			return validator.Single("lunch", "lunch_out and lunch_in must both be set or both be empty")
		}

		if err := s.computeHours(ctx, &record); err != nil {
			return err
		}
		if err := s.repo.Update(ctx, record); err != nil {
			return fmt.Errorf("update time record: %w", err)
		}

		if record.IsClosed() && !record.IsNonWorking() {
			settled, err = s.settler.Settle(ctx, record)
			if err != nil {
				return fmt.Errorf("settle time record: %w", err)
			}
			record, err = s.repo.GetByID(ctx, record.ID)
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return timerecord.TimeRecordResponse{}, err
	}

	if settled != nil {
		s.settler.NotifySettled(ctx, *settled)
	}
	return timerecord.ToResponse(record), nil
}

// applyClock returns the new value of a punch. A nil value keeps current and
// an empty string clears it. A time earlier than after moves to the next day.
func applyClock(current *time.Time, value *string, day time.Time, after *time.Time) *time.Time {
	if value == nil {
		return current
	}
	if *value == "" {
		return nil
	}
	clock, err := validator.ParseClock(*value)
	if err != nil {
		return current
	}
	t := clock.On(day)
	if after != nil && t.Before(*after) {
		t = t.Add(24 * time.Hour)
	}
	return &t
}

// AttachAttestation implements timerecord.TimeRecordService. The day becomes
// non-working and its hours are zeroed. A day already settled against the
// hour bank is refused; the admin reverses it with an adjustment first.
func (s *TimeRecordServiceImpl) AttachAttestation(ctx context.Context, req timerecord.AttachAttestationRequest) (timerecord.TimeRecordResponse, error) {
	if err := req.Validate(); err != nil {
		return timerecord.TimeRecordResponse{}, err
	}

	var record timerecord.TimeRecord
	err := s.txManager.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		record, err = s.repo.GetByID(ctx, req.ID)
		if err != nil {
			return err
		}
		if record.IsSettled() {
			return timerecord.ErrAlreadySettled
		}
		attestation := req.AttestationID
		record.MedicalAttestationID = &attestation
		record.WorkedHours, record.OvertimeHours = 0, 0
		if err := s.repo.Update(ctx, record); err != nil {
			return fmt.Errorf("update time record: %w", err)
		}
		return nil
	})
	if err != nil {
		return timerecord.TimeRecordResponse{}, err
	}

	slog.Info("medical attestation attached",
		"time_record_id", record.ID,
		"user_id", record.UserID,
		"attestation_id", req.AttestationID)

	return timerecord.ToResponse(record), nil
}
