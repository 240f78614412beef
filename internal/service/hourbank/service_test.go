package hourbank

import (
	"context"
	"testing"

	"github.com/skponto/skponto-backend-go/internal/domain/hourbank"
	"github.com/skponto/skponto-backend-go/internal/domain/notification"
	"github.com/skponto/skponto-backend-go/internal/domain/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHourBankService_GetBalanceCreatesBankLazily(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	resp, err := f.service.GetBalance(ctx, "worker-1")
	require.NoError(t, err)
	assert.Equal(t, 0.0, resp.CurrentBalance)
	assert.Equal(t, "0h00m", resp.FormattedBalance)

	_, err = f.service.GetBalance(ctx, "ghost")
	assert.ErrorIs(t, err, user.ErrUserNotFound)
}

func TestHourBankService_AdminAdjustNotifies(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	resp, err := f.service.AdminAdjust(ctx, hourbank.AdjustRequest{
		UserID:      "worker-1",
		Hours:       -1.5,
		Description: "missed clock-out",
		CreatedBy:   "admin-1",
	})
	require.NoError(t, err)
	assert.Equal(t, -1.5, resp.BalanceAfter)
	assert.Equal(t, hourbank.TransactionAdjustment, resp.Type)

	balance, err := f.service.GetBalance(ctx, "worker-1")
	require.NoError(t, err)
	assert.Equal(t, "-1h30m", balance.FormattedBalance)

	sent := f.notifier.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, notification.TypeHourBankAdjustment, sent[0].Type)
	assert.Equal(t, notification.SeverityWarning, sent[0].Severity)
	require.NotNil(t, sent[0].SenderID)
	assert.Equal(t, "admin-1", *sent[0].SenderID)

	_, err = f.service.AdminAdjust(ctx, hourbank.AdjustRequest{UserID: "ghost", Hours: 1, Description: "x"})
	assert.ErrorIs(t, err, user.ErrUserNotFound)
}

func TestHourBankService_NotificationFailureKeepsMutation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.notifier.Err = notification.ErrQueueFull

	_, err := f.service.AdminAdjust(ctx, hourbank.AdjustRequest{UserID: "worker-1", Hours: 2, Description: "bonus"})
	require.NoError(t, err)
	assert.Equal(t, 2.0, f.balance(t, "worker-1"))
}

func TestHourBankService_ListTransactionsPaginates(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	for i := 0; i < 5; i++ {
		_, err := f.ledger.AddHours(ctx, credit("worker-1", 1))
		require.NoError(t, err)
	}

	resp, err := f.service.ListTransactions(ctx, "worker-1", hourbank.TransactionFilter{Page: 2, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(5), resp.TotalCount)
	assert.Equal(t, 3, resp.TotalPages)
	assert.Equal(t, "3-4 of 5", resp.Showing)
	assert.Len(t, resp.Transactions, 2)

	empty, err := f.service.ListTransactions(ctx, "worker-2", hourbank.TransactionFilter{})
	require.NoError(t, err)
	assert.Equal(t, "0 of 0", empty.Showing)

	bad := "REFUND"
	_, err = f.service.ListTransactions(ctx, "worker-1", hourbank.TransactionFilter{Type: &bad})
	assert.Error(t, err)
}

func TestHourBankService_ReconcileAllFlagsTamperedBank(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.ledger.AddHours(ctx, credit("worker-1", 3))
	require.NoError(t, err)
	_, err = f.ledger.AddHours(ctx, credit("worker-2", 2))
	require.NoError(t, err)

	bank, err := f.bankRepo.GetByUserID(ctx, "worker-2")
	require.NoError(t, err)
	bank.CurrentBalance = 10
	require.NoError(t, f.bankRepo.UpdateBalance(ctx, bank))

	reports, err := f.service.ReconcileAll(ctx)
	require.NoError(t, err)
	require.Len(t, reports, 2)

	byUser := map[string]hourbank.ReconcileReport{}
	for _, r := range reports {
		byUser[r.UserID] = r
	}
	assert.True(t, byUser["worker-1"].Balanced)
	assert.False(t, byUser["worker-2"].Balanced)
	assert.True(t, byUser["worker-2"].ChainConsistent)
	assert.Equal(t, 2.0, byUser["worker-2"].TransactionSum)
}
