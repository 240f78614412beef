package hourbank

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/skponto/skponto-backend-go/internal/domain/hourbank"
	"github.com/skponto/skponto-backend-go/internal/domain/notification"
	"github.com/skponto/skponto-backend-go/internal/domain/overtime"
	"github.com/skponto/skponto-backend-go/internal/domain/timerecord"
	"github.com/skponto/skponto-backend-go/internal/domain/workclass"
	"github.com/skponto/skponto-backend-go/internal/pkg/validator"
	"github.com/skponto/skponto-backend-go/internal/repository/memory"
	"github.com/skponto/skponto-backend-go/internal/service/workhours"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var may1 = time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

type settlementFixture struct {
	*fixture
	records      timerecord.TimeRecordRepository
	overtimeRepo overtime.RequestRepository
	settlement   *SettlementServiceImpl
}

func newSettlementFixture(t *testing.T) *settlementFixture {
	f := newFixture(t)
	sf := &settlementFixture{
		fixture:      f,
		records:      memory.NewTimeRecordRepository(f.store),
		overtimeRepo: memory.NewOvertimeRequestRepository(f.store),
	}
	policies := workhours.NewPolicyResolver(memory.NewUserRepository(f.store), memory.NewWorkClassRepository(f.store), workclass.DefaultPolicy())
	sf.settlement = NewSettlementService(memory.NewTxManager(f.store), f.ledger, f.bankRepo, sf.records, sf.overtimeRepo, policies, f.notifier)
	return sf
}

// closedRecord stores a closed record whose uncapped worked time is rawHours
// against the default 8h policy.
func (f *settlementFixture) closedRecord(t *testing.T, userID string, date time.Time, rawHours float64) timerecord.TimeRecord {
	t.Helper()
	ctx := context.Background()
	rec, err := f.records.GetOrCreate(ctx, userID, date)
	require.NoError(t, err)

	entry := date.Add(9 * time.Hour)
	exit := entry.Add(time.Duration(rawHours * float64(time.Hour)))
	rec.Entry = &entry
	rec.Exit = &exit
	rec.WorkedHours = min(rawHours, 8)
	rec.OvertimeHours = max(rawHours-8, 0)
	require.NoError(t, f.records.Update(ctx, rec))
	return rec
}

func TestSettle_CreditsOvertimeExactlyOnce(t *testing.T) {
	ctx := context.Background()
	f := newSettlementFixture(t)
	rec := f.closedRecord(t, "worker-1", may1, 10)

	tx, err := f.settlement.Settle(ctx, rec)
	require.NoError(t, err)
	require.NotNil(t, tx)
	assert.Equal(t, hourbank.TransactionCredit, tx.Type)
	assert.Equal(t, 2.0, tx.Hours)
	require.NotNil(t, tx.TimeRecordID)
	assert.Equal(t, rec.ID, *tx.TimeRecordID)
	assert.Nil(t, tx.OvertimeRequestID)

	again, err := f.settlement.Settle(ctx, rec)
	require.NoError(t, err)
	assert.Nil(t, again)

	linked := 0
	for _, tr := range f.store.Transactions() {
		if tr.TimeRecordID != nil && *tr.TimeRecordID == rec.ID {
			linked++
		}
	}
	assert.Equal(t, 1, linked)
	assert.Equal(t, 2.0, f.balance(t, "worker-1"))
}

func TestSettle_DeficitIsCappedAtBalance(t *testing.T) {
	ctx := context.Background()
	f := newSettlementFixture(t)

	_, err := f.ledger.AddHours(ctx, credit("worker-1", 1))
	require.NoError(t, err)
	rec := f.closedRecord(t, "worker-1", may1, 6)

	tx, err := f.settlement.Settle(ctx, rec)
	require.NoError(t, err)
	require.NotNil(t, tx)
	assert.Equal(t, hourbank.TransactionDebit, tx.Type)
	assert.Equal(t, -1.0, tx.Hours)
	assert.Contains(t, tx.Description, "1h00m not recovered")
	assert.Equal(t, 0.0, f.balance(t, "worker-1"))
	assertLedgerInvariant(t, f.fixture, "worker-1")
}

func TestSettle_DeficitWithoutBalanceBooksNothing(t *testing.T) {
	ctx := context.Background()
	f := newSettlementFixture(t)

	_, err := f.ledger.Adjust(ctx, hourbank.AdjustRequest{UserID: "worker-1", Hours: -2, Description: "owed"})
	require.NoError(t, err)
	rec := f.closedRecord(t, "worker-1", may1, 7)

	tx, err := f.settlement.Settle(ctx, rec)
	require.NoError(t, err)
	assert.Nil(t, tx)
	assert.Equal(t, -2.0, f.balance(t, "worker-1"))
	assert.Len(t, f.store.Transactions(), 1)
}

func TestSettle_ExactDayBooksNothing(t *testing.T) {
	f := newSettlementFixture(t)
	rec := f.closedRecord(t, "worker-1", may1, 8)

	tx, err := f.settlement.Settle(context.Background(), rec)
	require.NoError(t, err)
	assert.Nil(t, tx)
	assert.Empty(t, f.store.Transactions())

	stored, err := f.records.GetByID(context.Background(), rec.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsSettled())
}

func TestSettle_SkipsNonWorkingAndOpenDays(t *testing.T) {
	ctx := context.Background()
	f := newSettlementFixture(t)

	rec := f.closedRecord(t, "worker-1", may1, 10)
	attestation := "attestation-1"
	rec.MedicalAttestationID = &attestation
	tx, err := f.settlement.Settle(ctx, rec)
	require.NoError(t, err)
	assert.Nil(t, tx)

	open, err := f.records.GetOrCreate(ctx, "worker-1", may1.AddDate(0, 0, 1))
	require.NoError(t, err)
	_, err = f.settlement.Settle(ctx, open)
	assert.ErrorIs(t, err, hourbank.ErrTimeRecordNotClosed)
	assert.Empty(t, f.store.Transactions())
}

func TestSettle_LinksApprovedOvertimeRequest(t *testing.T) {
	ctx := context.Background()
	f := newSettlementFixture(t)

	approved, err := f.overtimeRepo.Create(ctx, overtime.Request{
		UserID:         "worker-1",
		Date:           may1,
		StartTime:      validator.ClockTime{Hour: 18},
		EndTime:        validator.ClockTime{Hour: 20},
		EstimatedHours: 2,
		Type:           overtime.TypeRegular,
		Status:         overtime.StatusApproved,
	})
	require.NoError(t, err)
	_, err = f.overtimeRepo.Create(ctx, overtime.Request{
		UserID:    "worker-1",
		Date:      may1,
		StartTime: validator.ClockTime{Hour: 21},
		EndTime:   validator.ClockTime{Hour: 22},
		Status:    overtime.StatusPending,
	})
	require.NoError(t, err)

	rec := f.closedRecord(t, "worker-1", may1, 10)
	tx, err := f.settlement.Settle(ctx, rec)
	require.NoError(t, err)
	require.NotNil(t, tx)
	require.NotNil(t, tx.OvertimeRequestID)
	assert.Equal(t, approved.ID, *tx.OvertimeRequestID)
}

func TestSettleDate_NotifiesAfterCommit(t *testing.T) {
	ctx := context.Background()
	f := newSettlementFixture(t)
	f.closedRecord(t, "worker-1", may1, 9.5)

	resp, err := f.settlement.SettleDate(ctx, "worker-1", may1)
	require.NoError(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, 1.5, resp.Hours)

	sent := f.notifier.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, notification.TypeHourBankCredit, sent[0].Type)
	assert.Equal(t, notification.SeveritySuccess, sent[0].Severity)
	assert.Equal(t, "worker-1", sent[0].RecipientID)

	_, err = f.settlement.SettleDate(ctx, "worker-1", may1.AddDate(0, 0, 3))
	assert.ErrorIs(t, err, timerecord.ErrTimeRecordNotFound)
}

func TestSweepUnsettled_SettlesEachRecordOnce(t *testing.T) {
	ctx := context.Background()
	f := newSettlementFixture(t)
	f.closedRecord(t, "worker-1", may1, 9)
	f.closedRecord(t, "worker-2", may1, 11)
	f.closedRecord(t, "worker-1", may1.AddDate(0, 0, -40), 12)

	n, err := f.settlement.SweepUnsettled(ctx, may1.AddDate(0, 0, -7))
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, 1.0, f.balance(t, "worker-1"))
	assert.Equal(t, 3.0, f.balance(t, "worker-2"))

	n, err = f.settlement.SweepUnsettled(ctx, may1.AddDate(0, 0, -7))
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestSweepUnsettled_SkipsDaysSettledWithoutBooking(t *testing.T) {
	ctx := context.Background()
	f := newSettlementFixture(t)

	short := f.closedRecord(t, "worker-1", may1, 6)
	tx, err := f.settlement.Settle(ctx, short)
	require.NoError(t, err)
	assert.Nil(t, tx)

	long := f.closedRecord(t, "worker-1", may1.AddDate(0, 0, 1), 11)
	tx, err = f.settlement.Settle(ctx, long)
	require.NoError(t, err)
	require.NotNil(t, tx)
	assert.Equal(t, 3.0, f.balance(t, "worker-1"))

	n, err := f.settlement.SweepUnsettled(ctx, may1.AddDate(0, 0, -7))
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Equal(t, 3.0, f.balance(t, "worker-1"))
	assert.Len(t, f.store.Transactions(), 1)

	unsettled, err := f.records.ListUnsettled(ctx, may1.AddDate(0, 0, -7))
	require.NoError(t, err)
	assert.Empty(t, unsettled)
}

func TestSettle_RollsBackSettledMarkOnFailure(t *testing.T) {
	ctx := context.Background()
	f := newSettlementFixture(t)
	rec := f.closedRecord(t, "worker-1", may1, 10)

	err := memory.NewTxManager(f.store).WithinTx(ctx, func(ctx context.Context) error {
		if _, err := f.settlement.Settle(ctx, rec); err != nil {
			return err
		}
		return errors.New("caller failed")
	})
	require.Error(t, err)

	stored, err := f.records.GetByID(ctx, rec.ID)
	require.NoError(t, err)
	assert.False(t, stored.IsSettled())
	assert.Empty(t, f.store.Transactions())
}
