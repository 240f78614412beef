package hourbank

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/skponto/skponto-backend-go/internal/domain/hourbank"
	"github.com/skponto/skponto-backend-go/internal/domain/notification"
	"github.com/skponto/skponto-backend-go/internal/domain/overtime"
	"github.com/skponto/skponto-backend-go/internal/domain/timerecord"
	"github.com/skponto/skponto-backend-go/internal/domain/workclass"
	"github.com/skponto/skponto-backend-go/internal/pkg/database"
)

// PolicyResolver returns the expected-hours policy of a user.
type PolicyResolver interface {
	Resolve(ctx context.Context, userID string) (workclass.Policy, error)
}

type SettlementServiceImpl struct {
	txManager    database.TxManager
	ledger       hourbank.Ledger
	bankRepo     hourbank.HourBankRepository
	recordRepo   timerecord.TimeRecordRepository
	overtimeRepo overtime.RequestRepository
	policies     PolicyResolver
	notifier     notification.Notifier
}

func NewSettlementService(
	txManager database.TxManager,
	ledger hourbank.Ledger,
	bankRepo hourbank.HourBankRepository,
	recordRepo timerecord.TimeRecordRepository,
	overtimeRepo overtime.RequestRepository,
	policies PolicyResolver,
	notifier notification.Notifier,
) *SettlementServiceImpl {
	return &SettlementServiceImpl{
		txManager:    txManager,
		ledger:       ledger,
		bankRepo:     bankRepo,
		recordRepo:   recordRepo,
		overtimeRepo: overtimeRepo,
		policies:     policies,
		notifier:     notifier,
	}
}

// SettleDate implements hourbank.SettlementService.
func (s *SettlementServiceImpl) SettleDate(ctx context.Context, userID string, date time.Time) (*hourbank.TransactionResponse, error) {
	record, err := s.recordRepo.GetByUserAndDate(ctx, userID, date)
	if err != nil {
		return nil, err
	}
	if !record.IsClosed() && !record.IsNonWorking() {
		return nil, hourbank.ErrTimeRecordNotClosed
	}

	tx, err := s.Settle(ctx, record)
	if err != nil {
		return nil, err
	}
	if tx == nil {
		return nil, nil
	}
	s.NotifySettled(ctx, *tx)
	resp := hourbank.ToTransactionResponse(*tx)
	return &resp, nil
}

// SweepUnsettled implements hourbank.SettlementService. A failing record is
// logged and skipped.
func (s *SettlementServiceImpl) SweepUnsettled(ctx context.Context, since time.Time) (int, error) {
	records, err := s.recordRepo.ListUnsettled(ctx, since)
	if err != nil {
		return 0, fmt.Errorf("list unsettled time records: %w", err)
	}

	settled := 0
	for _, record := range records {
		if ctx.Err() != nil {
			return settled, ctx.Err()
		}
		tx, err := s.Settle(ctx, record)
		if err != nil {
			slog.Error("failed to settle time record",
				"time_record_id", record.ID,
				"user_id", record.UserID,
				"date", record.Date.Format("2006-01-02"),
				"error", err)
			continue
		}
		if tx != nil {
			settled++
			s.NotifySettled(ctx, *tx)
		}
	}
	return settled, nil
}

// Settle credits or debits the ledger for a closed record and stamps the
// record as settled, including when nothing was booked. It returns the
// created transaction, or nil. A record that was already settled is left
// alone. Settle joins the caller's transaction and does not notify; call
// NotifySettled after commit.
func (s *SettlementServiceImpl) Settle(ctx context.Context, record timerecord.TimeRecord) (*hourbank.Transaction, error) {
	if record.IsNonWorking() {
		return nil, nil
	}
	if !record.IsClosed() {
		return nil, hourbank.ErrTimeRecordNotClosed
	}

	var created *hourbank.Transaction
	err := s.txManager.WithinTx(ctx, func(ctx context.Context) error {
		// Record row first, then the bank row, the same order as clock-out.
		current, err := s.recordRepo.GetByID(ctx, record.ID)
		if err != nil {
			return err
		}
		if current.IsSettled() {
			slog.Debug("time record already settled", "time_record_id", current.ID)
			return nil
		}
		if current.IsNonWorking() {
			return nil
		}
		if !current.IsClosed() {
			return hourbank.ErrTimeRecordNotClosed
		}

		if err := s.ledger.EnsureBank(ctx, current.UserID); err != nil {
			return err
		}
		bank, err := s.bankRepo.GetByUserIDForUpdate(ctx, current.UserID)
		if err != nil {
			return err
		}

		created, err = s.book(ctx, current, bank)
		if err != nil {
			return err
		}
		if err := s.recordRepo.MarkSettled(ctx, current.ID, time.Now()); err != nil {
			return fmt.Errorf("mark time record settled: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if created != nil {
		slog.Info("time record settled",
			"time_record_id", record.ID,
			"user_id", record.UserID,
			"type", created.Type,
			"hours", created.Hours,
			"balance_after", created.BalanceAfter)
	}
	return created, nil
}

// book writes the settlement transaction of one day. It returns nil when the
// day matched the policy or a deficit met an empty bank.
func (s *SettlementServiceImpl) book(ctx context.Context, record timerecord.TimeRecord, bank hourbank.HourBank) (*hourbank.Transaction, error) {
	policy, err := s.policies.Resolve(ctx, record.UserID)
	if err != nil {
		return nil, err
	}

	day := record.Date.Format("2006-01-02")
	recordID := record.ID
	diff := decimal.NewFromFloat(record.RawWorkedHours()).Sub(decimal.NewFromFloat(policy.DailyWorkHours)).Round(2)

	switch {
	case diff.IsPositive():
		overtimeID, err := s.approvedOvertimeID(ctx, record)
		if err != nil {
			return nil, err
		}
		tx, err := s.ledger.AddHours(ctx, hourbank.EntryRequest{
			UserID:            record.UserID,
			Hours:             diff.InexactFloat64(),
			Type:              hourbank.TransactionCredit,
			Description:       fmt.Sprintf("Overtime on %s", day),
			OvertimeRequestID: overtimeID,
			TimeRecordID:      &recordID,
		})
		if err != nil {
			return nil, err
		}
		return &tx, nil

	case diff.IsNegative():
		balance := decimal.NewFromFloat(bank.CurrentBalance)
		if !balance.IsPositive() {
			slog.Info("deficit not recovered, hour bank empty",
				"time_record_id", record.ID,
				"user_id", record.UserID,
				"deficit", diff.Abs().String())
			return nil, nil
		}
		deficit := diff.Abs()
		amount := decimal.Min(deficit, balance)
		description := fmt.Sprintf("Deficit on %s", day)
		if unrecovered := deficit.Sub(amount); unrecovered.IsPositive() {
			description = fmt.Sprintf("Deficit on %s, %s not recovered", day, strings.TrimPrefix(hourbank.FormatHours(unrecovered.InexactFloat64()), "+"))
		}
		tx, err := s.ledger.DebitHours(ctx, hourbank.EntryRequest{
			UserID:       record.UserID,
			Hours:        amount.InexactFloat64(),
			Type:         hourbank.TransactionDebit,
			Description:  description,
			TimeRecordID: &recordID,
		}, false)
		if err != nil {
			return nil, err
		}
		return &tx, nil
	}
	return nil, nil
}

// approvedOvertimeID returns the approved overtime request covering the
// record's date, if any.
func (s *SettlementServiceImpl) approvedOvertimeID(ctx context.Context, record timerecord.TimeRecord) (*string, error) {
	requests, err := s.overtimeRepo.ListActiveByUserAndDate(ctx, record.UserID, record.Date)
	if err != nil && !errors.Is(err, overtime.ErrRequestNotFound) {
		return nil, fmt.Errorf("list overtime requests: %w", err)
	}
	for _, r := range requests {
		if r.Status == overtime.StatusApproved {
			id := r.ID
			return &id, nil
		}
	}
	return nil, nil
}

// NotifySettled tells the user about a settlement transaction. Failures are logged.
func (s *SettlementServiceImpl) NotifySettled(ctx context.Context, tx hourbank.Transaction) {
	req := notification.CreateNotificationRequest{
		RecipientID: tx.UserID,
		Data:        map[string]interface{}{"transaction_id": tx.ID},
	}
	switch tx.Type {
	case hourbank.TransactionCredit:
		req.Type = notification.TypeHourBankCredit
		req.Severity = notification.SeveritySuccess
		req.Title = "Hours credited"
		req.Message = fmt.Sprintf("%s: %s added to your hour bank. Balance %s.",
			tx.Description, hourbank.FormatHours(tx.Hours), hourbank.FormatHours(tx.BalanceAfter))
	default:
		req.Type = notification.TypeHourBankDebit
		req.Severity = notification.SeverityWarning
		req.Title = "Hours debited"
		req.Message = fmt.Sprintf("%s: %s taken from your hour bank. Balance %s.",
			tx.Description, hourbank.FormatHours(tx.Hours), hourbank.FormatHours(tx.BalanceAfter))
	}
	notification.Send(ctx, s.notifier, req)
}
