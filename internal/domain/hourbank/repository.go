package hourbank

import (
	"context"
)

// HourBankRepository - interface for hour_banks table
type HourBankRepository interface {
	GetByUserID(ctx context.Context, userID string) (HourBank, error)
	// GetByUserIDForUpdate locks the row until the surrounding transaction ends.
	GetByUserIDForUpdate(ctx context.Context, userID string) (HourBank, error)
	CreateIfNotExists(ctx context.Context, userID string) error
	UpdateBalance(ctx context.Context, bank HourBank) error
	ListUserIDs(ctx context.Context) ([]string, error)
}

// TransactionRepository - interface for hour_bank_transactions table
type TransactionRepository interface {
	Create(ctx context.Context, tx Transaction) (Transaction, error)
	ListByUserID(ctx context.Context, userID string, filter TransactionFilter) ([]Transaction, int64, error)
	// ListChainByUserID returns every transaction of the user in creation order.
	ListChainByUserID(ctx context.Context, userID string) ([]Transaction, error)
}
