package hourbank

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/shopspring/decimal"
	"github.com/skponto/skponto-backend-go/internal/domain/hourbank"
	"github.com/skponto/skponto-backend-go/internal/domain/notification"
	"github.com/skponto/skponto-backend-go/internal/domain/user"
	"golang.org/x/sync/errgroup"
)

// reconcileConcurrency bounds the number of banks checked at once.
const reconcileConcurrency = 4

type HourBankServiceImpl struct {
	ledger   hourbank.Ledger
	bankRepo hourbank.HourBankRepository
	txRepo   hourbank.TransactionRepository
	userRepo user.UserRepository
	notifier notification.Notifier
}

func NewHourBankService(
	ledger hourbank.Ledger,
	bankRepo hourbank.HourBankRepository,
	txRepo hourbank.TransactionRepository,
	userRepo user.UserRepository,
	notifier notification.Notifier,
) hourbank.HourBankService {
	return &HourBankServiceImpl{
		ledger:   ledger,
		bankRepo: bankRepo,
		txRepo:   txRepo,
		userRepo: userRepo,
		notifier: notifier,
	}
}

// GetBalance implements hourbank.HourBankService. The bank is created on first read.
func (s *HourBankServiceImpl) GetBalance(ctx context.Context, userID string) (hourbank.BalanceResponse, error) {
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return hourbank.BalanceResponse{}, err
	}
	if err := s.ledger.EnsureBank(ctx, userID); err != nil {
		return hourbank.BalanceResponse{}, err
	}
	bank, err := s.bankRepo.GetByUserID(ctx, userID)
	if err != nil {
		return hourbank.BalanceResponse{}, fmt.Errorf("get hour bank: %w", err)
	}

	return hourbank.BalanceResponse{
		UserID:           bank.UserID,
		CurrentBalance:   bank.CurrentBalance,
		FormattedBalance: bank.FormattedBalance(),
		TotalCredited:    bank.TotalCredited,
		TotalDebited:     bank.TotalDebited,
		LastTransaction:  bank.LastTransaction,
	}, nil
}

// ListTransactions implements hourbank.HourBankService.
func (s *HourBankServiceImpl) ListTransactions(ctx context.Context, userID string, filter hourbank.TransactionFilter) (hourbank.ListTransactionResponse, error) {
	if err := filter.Validate(); err != nil {
		return hourbank.ListTransactionResponse{}, err
	}

	transactions, total, err := s.txRepo.ListByUserID(ctx, userID, filter)
	if err != nil {
		return hourbank.ListTransactionResponse{}, fmt.Errorf("failed to list hour bank transactions: %w", err)
	}

	responses := make([]hourbank.TransactionResponse, 0, len(transactions))
	for _, t := range transactions {
		responses = append(responses, hourbank.ToTransactionResponse(t))
	}

	totalPages := int(math.Ceil(float64(total) / float64(filter.Limit)))
	showing := fmt.Sprintf("%d-%d of %d", (filter.Page-1)*filter.Limit+1, min(filter.Page*filter.Limit, int(total)), total)
	if total == 0 {
		showing = "0 of 0"
	}

	return hourbank.ListTransactionResponse{
		TotalCount:   total,
		Page:         filter.Page,
		Limit:        filter.Limit,
		TotalPages:   totalPages,
		Showing:      showing,
		Transactions: responses,
	}, nil
}

// AdminAdjust implements hourbank.HourBankService.
func (s *HourBankServiceImpl) AdminAdjust(ctx context.Context, req hourbank.AdjustRequest) (hourbank.TransactionResponse, error) {
	if err := req.Validate(); err != nil {
		return hourbank.TransactionResponse{}, err
	}
	if _, err := s.userRepo.GetByID(ctx, req.UserID); err != nil {
		return hourbank.TransactionResponse{}, err
	}

	tx, err := s.ledger.Adjust(ctx, req)
	if err != nil {
		return hourbank.TransactionResponse{}, err
	}

	slog.Info("hour bank adjusted",
		"user_id", req.UserID,
		"hours", tx.Hours,
		"balance_after", tx.BalanceAfter,
		"created_by", req.CreatedBy)

	severity := notification.SeverityInfo
	if tx.BalanceAfter < 0 {
		severity = notification.SeverityWarning
	}
	var sender *string
	if req.CreatedBy != "" {
		sender = &req.CreatedBy
	}
	notification.Send(ctx, s.notifier, notification.CreateNotificationRequest{
		RecipientID: req.UserID,
		SenderID:    sender,
		Type:        notification.TypeHourBankAdjustment,
		Severity:    severity,
		Title:       "Hour bank adjusted",
		Message: fmt.Sprintf("Your hour bank was adjusted by %s: %s. New balance %s.",
			hourbank.FormatHours(tx.Hours), req.Description, hourbank.FormatHours(tx.BalanceAfter)),
		Data: map[string]interface{}{"transaction_id": tx.ID},
	})

	return hourbank.ToTransactionResponse(tx), nil
}

// Reconcile implements hourbank.HourBankService. It checks the stored balance
// against the sum of the audit trail and walks the before/after chain.
func (s *HourBankServiceImpl) Reconcile(ctx context.Context, userID string) (hourbank.ReconcileReport, error) {
	bank, err := s.bankRepo.GetByUserID(ctx, userID)
	if err != nil {
		return hourbank.ReconcileReport{}, err
	}
	chain, err := s.txRepo.ListChainByUserID(ctx, userID)
	if err != nil {
		return hourbank.ReconcileReport{}, fmt.Errorf("list transaction chain: %w", err)
	}

	sum := decimal.Zero
	previous := decimal.Zero
	var broken []string
	for _, t := range chain {
		hours := decimal.NewFromFloat(t.Hours)
		before := decimal.NewFromFloat(t.BalanceBefore)
		after := decimal.NewFromFloat(t.BalanceAfter)

		if !before.Equal(previous) || !after.Sub(before).Round(2).Equal(hours.Round(2)) {
			broken = append(broken, t.ID)
		}
		sum = sum.Add(hours)
		previous = after
	}
	sum = sum.Round(2)

	report := hourbank.ReconcileReport{
		UserID:               userID,
		CurrentBalance:       bank.CurrentBalance,
		TransactionSum:       sum.InexactFloat64(),
		TransactionCount:     len(chain),
		Balanced:             sum.Equal(decimal.NewFromFloat(bank.CurrentBalance).Round(2)),
		ChainConsistent:      len(broken) == 0,
		BrokenTransactionIDs: broken,
	}
	if !report.Balanced || !report.ChainConsistent {
		slog.Warn("hour bank out of balance",
			"user_id", userID,
			"current_balance", report.CurrentBalance,
			"transaction_sum", report.TransactionSum,
			"broken_transactions", len(broken))
	}
	return report, nil
}

// ReconcileAll implements hourbank.HourBankService.
func (s *HourBankServiceImpl) ReconcileAll(ctx context.Context) ([]hourbank.ReconcileReport, error) {
	userIDs, err := s.bankRepo.ListUserIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("list hour banks: %w", err)
	}

	reports := make([]hourbank.ReconcileReport, len(userIDs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(reconcileConcurrency)
	for i, userID := range userIDs {
		g.Go(func() error {
			report, err := s.Reconcile(gctx, userID)
			if err != nil {
				return fmt.Errorf("reconcile %s: %w", userID, err)
			}
			reports[i] = report
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return reports, nil
}
