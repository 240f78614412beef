package hourbank

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/skponto/skponto-backend-go/internal/domain/hourbank"
	"github.com/skponto/skponto-backend-go/internal/pkg/database"
	"github.com/skponto/skponto-backend-go/internal/pkg/validator"
)

type ledger struct {
	txManager database.TxManager
	bankRepo  hourbank.HourBankRepository
	txRepo    hourbank.TransactionRepository
}

// NewLedger returns the ledger that owns every balance mutation.
func NewLedger(txManager database.TxManager, bankRepo hourbank.HourBankRepository, txRepo hourbank.TransactionRepository) hourbank.Ledger {
	return &ledger{txManager: txManager, bankRepo: bankRepo, txRepo: txRepo}
}

func (l *ledger) EnsureBank(ctx context.Context, userID string) error {
	if err := l.bankRepo.CreateIfNotExists(ctx, userID); err != nil {
		return fmt.Errorf("ensure hour bank: %w", err)
	}
	return nil
}

func (l *ledger) AddHours(ctx context.Context, req hourbank.EntryRequest) (hourbank.Transaction, error) {
	if err := req.Validate(); err != nil {
		return hourbank.Transaction{}, err
	}
	delta, err := roundedHours(req.Hours)
	if err != nil {
		return hourbank.Transaction{}, err
	}
	return l.apply(ctx, req, delta, nil)
}

func (l *ledger) DebitHours(ctx context.Context, req hourbank.EntryRequest, allowNegative bool) (hourbank.Transaction, error) {
	if err := req.Validate(); err != nil {
		return hourbank.Transaction{}, err
	}
	hours, err := roundedHours(req.Hours)
	if err != nil {
		return hourbank.Transaction{}, err
	}

	var guard func(hourbank.HourBank) error
	if !allowNegative {
		guard = func(bank hourbank.HourBank) error {
			if !bank.CanDebit(hours.InexactFloat64()) {
				return fmt.Errorf("%w: balance %s, requested %s",
					hourbank.ErrInsufficientBalance, bank.FormattedBalance(), hourbank.FormatHours(req.Hours))
			}
			return nil
		}
	}
	return l.apply(ctx, req, hours.Neg(), guard)
}

func (l *ledger) CanDebit(ctx context.Context, userID string, hours float64) (bool, error) {
	bank, err := l.bankRepo.GetByUserID(ctx, userID)
	if errors.Is(err, hourbank.ErrHourBankNotFound) {
		return hours <= 0, nil
	}
	if err != nil {
		return false, err
	}
	return bank.CanDebit(hours), nil
}

// Adjust applies an admin correction of any sign. It is the only mutation
// allowed to take the balance below zero.
func (l *ledger) Adjust(ctx context.Context, req hourbank.AdjustRequest) (hourbank.Transaction, error) {
	if err := req.Validate(); err != nil {
		return hourbank.Transaction{}, err
	}
	createdBy := req.CreatedBy
	entry := hourbank.EntryRequest{
		UserID:      req.UserID,
		Type:        hourbank.TransactionAdjustment,
		Description: req.Description,
	}
	if createdBy != "" {
		entry.CreatedBy = &createdBy
	}
	return l.apply(ctx, entry, decimal.NewFromFloat(req.Hours).Round(2), nil)
}

// roundedHours rounds to the ledger's 0.01h granularity. Positive input that
// rounds to zero is refused rather than booked as an empty movement.
func roundedHours(hours float64) (decimal.Decimal, error) {
	if hours <= 0 {
		return decimal.Zero, validator.Single("hours", "hours must be positive")
	}
	d := decimal.NewFromFloat(hours).Round(2)
	if !d.IsPositive() {
		return decimal.Zero, validator.Single("hours", "hours below 0.01 cannot be recorded")
	}
	return d, nil
}

// apply locks the bank row, moves the balance by delta and appends the audit
// transaction, all inside one database transaction.
func (l *ledger) apply(ctx context.Context, req hourbank.EntryRequest, delta decimal.Decimal, guard func(hourbank.HourBank) error) (hourbank.Transaction, error) {
	var created hourbank.Transaction

	err := l.txManager.WithinTx(ctx, func(ctx context.Context) error {
		if err := l.EnsureBank(ctx, req.UserID); err != nil {
			return err
		}
		bank, err := l.bankRepo.GetByUserIDForUpdate(ctx, req.UserID)
		if err != nil {
			return err
		}
		if guard != nil {
			if err := guard(bank); err != nil {
				return err
			}
		}

		before := decimal.NewFromFloat(bank.CurrentBalance)
		after := before.Add(delta).Round(2)
		now := time.Now()

		if delta.IsPositive() {
			bank.TotalCredited = decimal.NewFromFloat(bank.TotalCredited).Add(delta).Round(2).InexactFloat64()
		} else {
			bank.TotalDebited = decimal.NewFromFloat(bank.TotalDebited).Add(delta.Abs()).Round(2).InexactFloat64()
		}
		bank.CurrentBalance = after.InexactFloat64()
		bank.LastTransaction = &now

		created, err = l.txRepo.Create(ctx, hourbank.Transaction{
			UserID:            req.UserID,
			Type:              req.Type,
			Hours:             delta.InexactFloat64(),
			BalanceBefore:     before.InexactFloat64(),
			BalanceAfter:      after.InexactFloat64(),
			Description:       req.Description,
			OvertimeRequestID: req.OvertimeRequestID,
			TimeRecordID:      req.TimeRecordID,
			CreatedBy:         req.CreatedBy,
		})
		if err != nil {
			return fmt.Errorf("create hour bank transaction: %w", err)
		}

		return l.bankRepo.UpdateBalance(ctx, bank)
	})
	if err != nil {
		return hourbank.Transaction{}, err
	}
	return created, nil
}
