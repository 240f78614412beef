package timerecord

import (
	"context"
	"testing"
	"time"

	"github.com/skponto/skponto-backend-go/internal/domain/hourbank"
	"github.com/skponto/skponto-backend-go/internal/domain/timerecord"
	"github.com/skponto/skponto-backend-go/internal/domain/user"
	"github.com/skponto/skponto-backend-go/internal/domain/workclass"
	"github.com/skponto/skponto-backend-go/internal/repository/memory"
	hourbanksvc "github.com/skponto/skponto-backend-go/internal/service/hourbank"
	"github.com/skponto/skponto-backend-go/internal/service/workhours"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	store    *memory.Store
	notifier *memory.Notifier
	bankRepo hourbank.HourBankRepository
	service  *TimeRecordServiceImpl
	clock    time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	store.AddUser(user.User{ID: "worker-1", Role: user.RoleWorker, IsActive: true})
	store.AddWorkClass(workclass.WorkClass{ID: "six-hours", DailyWorkHours: 6, LunchHours: 0, IsActive: true})
	sixHours := "six-hours"
	store.AddUser(user.User{ID: "worker-6h", Role: user.RoleWorker, WorkClassID: &sixHours, IsActive: true})

	txManager := memory.NewTxManager(store)
	bankRepo := memory.NewHourBankRepository(store)
	txRepo := memory.NewTransactionRepository(store)
	records := memory.NewTimeRecordRepository(store)
	policies := workhours.NewPolicyResolver(memory.NewUserRepository(store), memory.NewWorkClassRepository(store), workclass.DefaultPolicy())
	notifier := &memory.Notifier{}

	ledger := hourbanksvc.NewLedger(txManager, bankRepo, txRepo)
	settlement := hourbanksvc.NewSettlementService(txManager, ledger, bankRepo, records,
		memory.NewOvertimeRequestRepository(store), policies, notifier)

	f := &fixture{store: store, notifier: notifier, bankRepo: bankRepo}
	f.service = NewTimeRecordService(txManager, records, policies, settlement, time.UTC).(*TimeRecordServiceImpl)
	f.service.now = func() time.Time { return f.clock }
	return f
}

func (f *fixture) punch(t *testing.T, userID string, action timerecord.ClockAction, at time.Time) timerecord.TimeRecordResponse {
	t.Helper()
	f.clock = at
	resp, err := f.service.Clock(context.Background(), userID, action)
	require.NoError(t, err)
	return resp
}

func at(day, hour, minute int) time.Time {
	return time.Date(2024, 5, day, hour, minute, 0, 0, time.UTC)
}

func (f *fixture) balance(t *testing.T, userID string) float64 {
	t.Helper()
	bank, err := f.bankRepo.GetByUserID(context.Background(), userID)
	require.NoError(t, err)
	return bank.CurrentBalance
}

func TestClock_FullDayCreditsOvertime(t *testing.T) {
	f := newFixture(t)

	f.punch(t, "worker-1", timerecord.ActionEntry, at(1, 8, 0))
	f.punch(t, "worker-1", timerecord.ActionLunchOut, at(1, 12, 0))
	f.punch(t, "worker-1", timerecord.ActionLunchIn, at(1, 13, 0))
	resp := f.punch(t, "worker-1", timerecord.ActionExit, at(1, 18, 30))

	assert.Equal(t, 8.0, resp.WorkedHours)
	assert.Equal(t, 1.5, resp.OvertimeHours)
	assert.NotNil(t, resp.SettledAt)
	assert.Equal(t, 1.5, f.balance(t, "worker-1"))

	txs := f.store.Transactions()
	require.Len(t, txs, 1)
	require.NotNil(t, txs[0].TimeRecordID)
	assert.Equal(t, resp.ID, *txs[0].TimeRecordID)
	assert.Len(t, f.notifier.Sent(), 1)
}

func TestClock_UsesWorkClassPolicy(t *testing.T) {
	f := newFixture(t)

	f.punch(t, "worker-6h", timerecord.ActionEntry, at(1, 9, 0))
	resp := f.punch(t, "worker-6h", timerecord.ActionExit, at(1, 16, 0))

	// 7h elapsed exceeds the 6h policy; the class has no lunch deduction.
	assert.Equal(t, 6.0, resp.WorkedHours)
	assert.Equal(t, 1.0, resp.OvertimeHours)
	assert.Equal(t, 1.0, f.balance(t, "worker-6h"))
}

func TestClock_EnforcesPunchOrder(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	f.clock = at(1, 8, 0)
	_, err := f.service.Clock(ctx, "worker-1", timerecord.ActionExit)
	assert.ErrorIs(t, err, timerecord.ErrNotClockedIn)

	f.punch(t, "worker-1", timerecord.ActionEntry, at(1, 8, 0))
	_, err = f.service.Clock(ctx, "worker-1", timerecord.ActionEntry)
	assert.ErrorIs(t, err, timerecord.ErrAlreadyClockedIn)

	_, err = f.service.Clock(ctx, "worker-1", timerecord.ActionLunchIn)
	assert.ErrorIs(t, err, timerecord.ErrLunchNotStarted)

	f.punch(t, "worker-1", timerecord.ActionLunchOut, at(1, 12, 0))
	_, err = f.service.Clock(ctx, "worker-1", timerecord.ActionLunchOut)
	assert.ErrorIs(t, err, timerecord.ErrLunchAlreadyTaken)

	_, err = f.service.Clock(ctx, "worker-1", timerecord.ActionExit)
	assert.ErrorIs(t, err, timerecord.ErrLunchNotFinished)

	f.punch(t, "worker-1", timerecord.ActionLunchIn, at(1, 13, 0))
	f.punch(t, "worker-1", timerecord.ActionExit, at(1, 17, 0))

	_, err = f.service.Clock(ctx, "worker-1", timerecord.ActionExit)
	assert.ErrorIs(t, err, timerecord.ErrAlreadyClockedOut)

	_, err = f.service.Clock(ctx, "worker-1", timerecord.ClockAction("nap"))
	assert.Error(t, err)
}

func TestClock_OvernightShiftClosesYesterdaysRecord(t *testing.T) {
	f := newFixture(t)

	entry := f.punch(t, "worker-1", timerecord.ActionEntry, at(1, 22, 0))
	exit := f.punch(t, "worker-1", timerecord.ActionExit, at(2, 6, 0))

	assert.Equal(t, entry.ID, exit.ID)
	assert.Equal(t, "2024-05-01", exit.Date)
	assert.Equal(t, 8.0, exit.WorkedHours)
	assert.Equal(t, 0.0, exit.OvertimeHours)
	assert.Empty(t, f.store.Transactions())
}

func TestClock_ShortDayDebitsOnlyAvailableBalance(t *testing.T) {
	f := newFixture(t)

	f.punch(t, "worker-1", timerecord.ActionEntry, at(1, 8, 0))
	f.punch(t, "worker-1", timerecord.ActionExit, at(1, 18, 0))
	assert.Equal(t, 1.0, f.balance(t, "worker-1"))

	f.punch(t, "worker-1", timerecord.ActionEntry, at(2, 9, 0))
	f.punch(t, "worker-1", timerecord.ActionExit, at(2, 14, 0))
	assert.Equal(t, 0.0, f.balance(t, "worker-1"))
	assert.Len(t, f.store.Transactions(), 2)
}

func TestEditRecord_RecomputesWithoutResettling(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	f.punch(t, "worker-1", timerecord.ActionEntry, at(1, 8, 0))
	closed := f.punch(t, "worker-1", timerecord.ActionExit, at(1, 19, 0))
	assert.Equal(t, 2.0, f.balance(t, "worker-1"))

	exit := "21:00"
	edited, err := f.service.EditRecord(ctx, timerecord.EditRecordRequest{ID: closed.ID, Exit: &exit})
	require.NoError(t, err)
	assert.Equal(t, 4.0, edited.OvertimeHours)

	assert.Equal(t, 2.0, f.balance(t, "worker-1"))
	assert.Len(t, f.store.Transactions(), 1)
}

func TestEditRecord_SettlesNewlyClosedDay(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	open := f.punch(t, "worker-1", timerecord.ActionEntry, at(1, 8, 0))
	exit := "19:00"
	edited, err := f.service.EditRecord(ctx, timerecord.EditRecordRequest{ID: open.ID, Exit: &exit})
	require.NoError(t, err)
	assert.Equal(t, 2.0, edited.OvertimeHours)
	assert.Equal(t, 2.0, f.balance(t, "worker-1"))
}

func TestAttachAttestation_MakesDayNonWorking(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	open := f.punch(t, "worker-1", timerecord.ActionEntry, at(1, 8, 0))
	resp, err := f.service.AttachAttestation(ctx, timerecord.AttachAttestationRequest{ID: open.ID, AttestationID: "att-42"})
	require.NoError(t, err)
	require.NotNil(t, resp.MedicalAttestationID)
	assert.Equal(t, 0.0, resp.WorkedHours)

	f.clock = at(1, 19, 0)
	_, err = f.service.Clock(ctx, "worker-1", timerecord.ActionExit)
	assert.ErrorIs(t, err, timerecord.ErrNonWorkingDay)
	assert.Empty(t, f.store.Transactions())
}

func TestAttachAttestation_RefusesSettledDay(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	f.punch(t, "worker-1", timerecord.ActionEntry, at(1, 8, 0))
	closed := f.punch(t, "worker-1", timerecord.ActionExit, at(1, 19, 0))
	require.NotNil(t, closed.SettledAt)

	_, err := f.service.AttachAttestation(ctx, timerecord.AttachAttestationRequest{ID: closed.ID, AttestationID: "att-7"})
	assert.ErrorIs(t, err, timerecord.ErrAlreadySettled)

	stored, err := memory.NewTimeRecordRepository(f.store).GetByID(ctx, closed.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.MedicalAttestationID)
	assert.Equal(t, 10.0, stored.RawWorkedHours())
	assert.Equal(t, 2.0, f.balance(t, "worker-1"))
}

func TestListMine_DefaultsToLastMonth(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	f.punch(t, "worker-1", timerecord.ActionEntry, at(1, 8, 0))
	f.punch(t, "worker-1", timerecord.ActionEntry, at(20, 8, 0))

	f.clock = at(25, 12, 0)
	records, err := f.service.ListMine(ctx, "worker-1", timerecord.RecordFilter{})
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "2024-05-20", records[0].Date)

	from := "2024-05-10"
	records, err = f.service.ListMine(ctx, "worker-1", timerecord.RecordFilter{From: &from})
	require.NoError(t, err)
	assert.Len(t, records, 1)
}
