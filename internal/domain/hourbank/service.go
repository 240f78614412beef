package hourbank

import (
	"context"
	"time"
)

// Ledger mutates a user's balance together with its audit transaction. Every
// call joins the caller's database transaction when there is one.
type Ledger interface {
	EnsureBank(ctx context.Context, userID string) error
	AddHours(ctx context.Context, req EntryRequest) (Transaction, error)
	// DebitHours fails with ErrInsufficientBalance unless allowNegative or
	// the balance covers req.Hours.
	DebitHours(ctx context.Context, req EntryRequest, allowNegative bool) (Transaction, error)
	CanDebit(ctx context.Context, userID string, hours float64) (bool, error)
	Adjust(ctx context.Context, req AdjustRequest) (Transaction, error)
}

type HourBankService interface {
	GetBalance(ctx context.Context, userID string) (BalanceResponse, error)
	ListTransactions(ctx context.Context, userID string, filter TransactionFilter) (ListTransactionResponse, error)
	AdminAdjust(ctx context.Context, req AdjustRequest) (TransactionResponse, error)
	Reconcile(ctx context.Context, userID string) (ReconcileReport, error)
	ReconcileAll(ctx context.Context) ([]ReconcileReport, error)
}

// SettlementService reconciles a closed day against the ledger exactly once.
type SettlementService interface {
	SettleDate(ctx context.Context, userID string, date time.Time) (*TransactionResponse, error)
	// SweepUnsettled settles every closed record since the given date that has
	// no linked transaction and returns how many were settled.
	SweepUnsettled(ctx context.Context, since time.Time) (int, error)
}
