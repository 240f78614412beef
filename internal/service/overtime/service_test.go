package overtime

import (
	"context"
	"errors"
	"testing"

	"github.com/skponto/skponto-backend-go/internal/domain/notification"
	"github.com/skponto/skponto-backend-go/internal/domain/overtime"
	"github.com/skponto/skponto-backend-go/internal/domain/user"
	"github.com/skponto/skponto-backend-go/internal/pkg/validator"
	"github.com/skponto/skponto-backend-go/internal/pkg/workflow"
	"github.com/skponto/skponto-backend-go/internal/repository/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testDefaults = overtime.SettingsDefaults{
	MaxDailyOvertime:   4,
	MaxWeeklyOvertime:  10,
	MaxMonthlyOvertime: 40,
	AutoApprovalLimit:  0,
	RequiresApproval:   true,
	Multipliers:        map[overtime.Type]float64{overtime.TypeHoliday: 2},
}

type fixture struct {
	store    *memory.Store
	notifier *memory.Notifier
	settings overtime.SettingsRepository
	service  overtime.OvertimeService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	store.AddUser(user.User{ID: "worker-1", Role: user.RoleWorker, IsActive: true})
	store.AddUser(user.User{ID: "worker-2", Role: user.RoleWorker, IsActive: true})
	store.AddUser(user.User{ID: "intern-1", Role: user.RoleIntern, IsActive: true})
	store.AddUser(user.User{ID: "admin-1", Role: user.RoleAdmin, IsActive: true})

	f := &fixture{
		store:    store,
		notifier: &memory.Notifier{},
		settings: memory.NewOvertimeSettingsRepository(store),
	}
	f.service = NewOvertimeService(
		memory.NewTxManager(store),
		memory.NewOvertimeRequestRepository(store),
		f.settings,
		memory.NewOvertimeLimitsRepository(store),
		memory.NewUserRepository(store),
		f.notifier,
		testDefaults,
	)
	return f
}

func submit(userID, date, start, end string) overtime.SubmitRequest {
	return overtime.SubmitRequest{
		UserID:        userID,
		Date:          date,
		StartTime:     start,
		EndTime:       end,
		Justification: "release night",
	}
}

func (f *fixture) setSettings(t *testing.T, userID string, req overtime.UpdateSettingsRequest) {
	t.Helper()
	req.UserID = userID
	_, err := f.service.UpdateSettings(context.Background(), req)
	require.NoError(t, err)
}

func floatPtr(v float64) *float64 { return &v }
func boolPtr(v bool) *bool        { return &v }

func TestSubmit_AutoApprovesSmallRequests(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.setSettings(t, "worker-1", overtime.UpdateSettingsRequest{
		AutoApprovalLimit: floatPtr(2),
		RequiresApproval:  boolPtr(false),
	})

	resp, err := f.service.Submit(ctx, submit("worker-1", "2024-05-01", "18:00", "19:30"))
	require.NoError(t, err)
	assert.Equal(t, overtime.StatusApproved, resp.Status)
	assert.Nil(t, resp.ApprovedBy)
	assert.NotNil(t, resp.ApprovedAt)
	assert.Equal(t, 1.5, resp.EstimatedHours)
	require.NotNil(t, resp.MultiplierApplied)
	assert.Equal(t, overtime.DefaultMultiplier, *resp.MultiplierApplied)

	large, err := f.service.Submit(ctx, submit("worker-1", "2024-05-02", "18:00", "20:30"))
	require.NoError(t, err)
	assert.Equal(t, overtime.StatusPending, large.Status)
}

func TestSubmit_RequiresApprovalOverridesLimit(t *testing.T) {
	f := newFixture(t)
	f.setSettings(t, "worker-1", overtime.UpdateSettingsRequest{AutoApprovalLimit: floatPtr(2)})

	resp, err := f.service.Submit(context.Background(), submit("worker-1", "2024-05-01", "18:00", "19:00"))
	require.NoError(t, err)
	assert.Equal(t, overtime.StatusPending, resp.Status)
}

func TestSubmit_RejectsOverlappingWindow(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	first, err := f.service.Submit(ctx, submit("worker-1", "2024-05-01", "18:00", "20:00"))
	require.NoError(t, err)
	_, err = f.service.Approve(ctx, overtime.ApproveRequest{ID: first.ID, ApproverID: "admin-1"})
	require.NoError(t, err)

	_, err = f.service.Submit(ctx, submit("worker-1", "2024-05-01", "19:00", "21:00"))
	assert.ErrorIs(t, err, overtime.ErrOverlappingRequest)
	var ve validator.ValidationErrors
	assert.True(t, errors.As(err, &ve))

	// Touching windows are half-open and do not overlap.
	_, err = f.service.Submit(ctx, submit("worker-1", "2024-05-01", "20:00", "21:00"))
	assert.NoError(t, err)

	// Another user is unaffected.
	_, err = f.service.Submit(ctx, submit("worker-2", "2024-05-01", "19:00", "21:00"))
	assert.NoError(t, err)
}

func TestSubmit_OverlapAcrossMidnight(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.service.Submit(ctx, submit("worker-1", "2024-05-01", "23:00", "01:00"))
	require.NoError(t, err)

	_, err = f.service.Submit(ctx, submit("worker-1", "2024-05-02", "00:30", "01:30"))
	assert.ErrorIs(t, err, overtime.ErrOverlappingRequest)
}

func TestSubmit_CancelledRequestsFreeTheWindow(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	first, err := f.service.Submit(ctx, submit("worker-1", "2024-05-01", "18:00", "20:00"))
	require.NoError(t, err)
	_, err = f.service.Cancel(ctx, first.ID, "worker-1")
	require.NoError(t, err)

	_, err = f.service.Submit(ctx, submit("worker-1", "2024-05-01", "18:00", "20:00"))
	assert.NoError(t, err)
}

func TestSubmit_EnforcesCaps(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.service.Submit(ctx, submit("worker-1", "2024-05-01", "17:00", "20:00"))
	require.NoError(t, err)
	_, err = f.service.Submit(ctx, submit("worker-1", "2024-05-01", "21:00", "22:30"))
	assert.ErrorIs(t, err, overtime.ErrDailyCapExceeded)

	// 2024-05-06 is a Monday: 3 + 3 + 3 fit the weekly cap of 10, a fourth does not.
	for _, day := range []string{"2024-05-06", "2024-05-07", "2024-05-08"} {
		_, err := f.service.Submit(ctx, submit("worker-2", day, "18:00", "21:00"))
		require.NoError(t, err)
	}
	_, err = f.service.Submit(ctx, submit("worker-2", "2024-05-12", "18:00", "20:00"))
	assert.ErrorIs(t, err, overtime.ErrWeeklyCapExceeded)
	_, err = f.service.Submit(ctx, submit("worker-2", "2024-05-13", "18:00", "20:00"))
	assert.NoError(t, err)
}

func TestSubmit_ScopedLimitsTightenCaps(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.store.AddOvertimeLimits(overtime.Limits{
		ID:               "interns",
		ScopeType:        overtime.LimitScopeRole,
		ScopeValue:       string(user.RoleIntern),
		MaxDailyOvertime: floatPtr(1),
		IsActive:         true,
	})

	_, err := f.service.Submit(ctx, submit("intern-1", "2024-05-01", "18:00", "20:00"))
	assert.ErrorIs(t, err, overtime.ErrDailyCapExceeded)

	_, err = f.service.Submit(ctx, submit("worker-1", "2024-05-01", "18:00", "20:00"))
	assert.NoError(t, err)
}

func TestSubmit_ValidatesInput(t *testing.T) {
	f := newFixture(t)
	req := submit("worker-1", "2024-05-01", "18:60", "20:00")
	req.Justification = " "

	_, err := f.service.Submit(context.Background(), req)
	var ve validator.ValidationErrors
	require.True(t, errors.As(err, &ve))
	fields := ve.ToMap()
	assert.Contains(t, fields, "start_time")
	assert.Contains(t, fields, "justification")
}

func TestApprove_SetsActualHoursAndMultiplier(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	req := submit("worker-1", "2024-12-25", "09:00", "12:00")
	req.Type = string(overtime.TypeHoliday)
	created, err := f.service.Submit(ctx, req)
	require.NoError(t, err)

	approved, err := f.service.Approve(ctx, overtime.ApproveRequest{ID: created.ID, ApproverID: "admin-1"})
	require.NoError(t, err)
	assert.Equal(t, overtime.StatusApproved, approved.Status)
	require.NotNil(t, approved.ApprovedBy)
	assert.Equal(t, "admin-1", *approved.ApprovedBy)
	require.NotNil(t, approved.ActualHours)
	assert.Equal(t, 3.0, *approved.ActualHours)
	require.NotNil(t, approved.MultiplierApplied)
	assert.Equal(t, 2.0, *approved.MultiplierApplied)

	sent := f.notifier.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, notification.TypeOvertimeApproved, sent[0].Type)
	assert.Equal(t, "worker-1", sent[0].RecipientID)

	_, err = f.service.Approve(ctx, overtime.ApproveRequest{ID: created.ID, ApproverID: "admin-1"})
	assert.ErrorIs(t, err, overtime.ErrInvalidTransition)
	var te *workflow.TransitionError[overtime.Status]
	assert.ErrorAs(t, err, &te)

	_, err = f.service.Cancel(ctx, created.ID, "worker-1")
	assert.ErrorIs(t, err, overtime.ErrInvalidTransition)
}

func TestApprove_RequiresAdmin(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	created, err := f.service.Submit(ctx, submit("worker-1", "2024-05-01", "18:00", "19:00"))
	require.NoError(t, err)

	_, err = f.service.Approve(ctx, overtime.ApproveRequest{ID: created.ID, ApproverID: "worker-2"})
	assert.ErrorIs(t, err, user.ErrAdminPrivilegeRequired)

	_, err = f.service.Approve(ctx, overtime.ApproveRequest{ID: "missing", ApproverID: "admin-1"})
	assert.ErrorIs(t, err, overtime.ErrRequestNotFound)
}

func TestReject_RequiresReasonAndNotifies(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	created, err := f.service.Submit(ctx, submit("worker-1", "2024-05-01", "18:00", "19:00"))
	require.NoError(t, err)

	_, err = f.service.Reject(ctx, overtime.RejectRequest{ID: created.ID, ApproverID: "admin-1"})
	var ve validator.ValidationErrors
	assert.True(t, errors.As(err, &ve))

	rejected, err := f.service.Reject(ctx, overtime.RejectRequest{ID: created.ID, ApproverID: "admin-1", Reason: "budget freeze"})
	require.NoError(t, err)
	assert.Equal(t, overtime.StatusRejected, rejected.Status)
	require.NotNil(t, rejected.RejectionReason)
	assert.Equal(t, "budget freeze", *rejected.RejectionReason)

	sent := f.notifier.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, notification.TypeOvertimeRejected, sent[0].Type)
	assert.Contains(t, sent[0].Message, "budget freeze")
}

func TestCancel_OnlyOwnerWhilePending(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	created, err := f.service.Submit(ctx, submit("worker-1", "2024-05-01", "18:00", "19:00"))
	require.NoError(t, err)

	_, err = f.service.Cancel(ctx, created.ID, "worker-2")
	assert.ErrorIs(t, err, overtime.ErrNotRequestOwner)

	cancelled, err := f.service.Cancel(ctx, created.ID, "worker-1")
	require.NoError(t, err)
	assert.Equal(t, overtime.StatusCancelled, cancelled.Status)
	assert.Empty(t, f.notifier.Sent())

	_, err = f.service.Cancel(ctx, created.ID, "worker-1")
	assert.ErrorIs(t, err, overtime.ErrInvalidTransition)
}

func TestCorrectActualHours_OnlyOnApproved(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	created, err := f.service.Submit(ctx, submit("worker-1", "2024-05-01", "18:00", "20:00"))
	require.NoError(t, err)

	_, err = f.service.CorrectActualHours(ctx, overtime.CorrectActualHoursRequest{ID: created.ID, ActualHours: 1})
	assert.ErrorIs(t, err, overtime.ErrActualHoursNotEditable)

	_, err = f.service.Approve(ctx, overtime.ApproveRequest{ID: created.ID, ApproverID: "admin-1", ActualHours: floatPtr(2.5)})
	require.NoError(t, err)

	corrected, err := f.service.CorrectActualHours(ctx, overtime.CorrectActualHoursRequest{ID: created.ID, ActualHours: 1.75})
	require.NoError(t, err)
	require.NotNil(t, corrected.ActualHours)
	assert.Equal(t, 1.75, *corrected.ActualHours)
	assert.Equal(t, overtime.StatusApproved, corrected.Status)
}

func TestSettings_CreatedWithDefaultsAndMerged(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	got, err := f.service.GetSettings(ctx, "worker-1")
	require.NoError(t, err)
	assert.Equal(t, 4.0, got.MaxDailyOvertime)
	assert.True(t, got.RequiresApproval)
	assert.Equal(t, 2.0, got.Multipliers[overtime.TypeHoliday])
	assert.Equal(t, 1.5, got.Multipliers[overtime.TypeNight])

	updated, err := f.service.UpdateSettings(ctx, overtime.UpdateSettingsRequest{
		UserID:      "worker-1",
		Multipliers: map[string]float64{"night": 1.75},
	})
	require.NoError(t, err)
	assert.Equal(t, 1.75, updated.Multipliers[overtime.TypeNight])
	assert.Equal(t, 2.0, updated.Multipliers[overtime.TypeHoliday])
	assert.Equal(t, 4.0, updated.MaxDailyOvertime)

	_, err = f.service.UpdateSettings(ctx, overtime.UpdateSettingsRequest{
		UserID:      "worker-1",
		Multipliers: map[string]float64{"overnight": 2},
	})
	assert.Error(t, err)

	_, err = f.service.GetSettings(ctx, "ghost")
	assert.ErrorIs(t, err, user.ErrUserNotFound)
}

func TestList_FiltersByUserAndStatus(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	_, err := f.service.Submit(ctx, submit("worker-1", "2024-05-01", "18:00", "19:00"))
	require.NoError(t, err)
	second, err := f.service.Submit(ctx, submit("worker-1", "2024-05-02", "18:00", "19:00"))
	require.NoError(t, err)
	_, err = f.service.Submit(ctx, submit("worker-2", "2024-05-01", "18:00", "19:00"))
	require.NoError(t, err)
	_, err = f.service.Cancel(ctx, second.ID, "worker-1")
	require.NoError(t, err)

	owner := "worker-1"
	pending := string(overtime.StatusPending)
	resp, err := f.service.List(ctx, overtime.RequestFilter{UserID: &owner, Status: &pending})
	require.NoError(t, err)
	assert.Equal(t, int64(1), resp.TotalCount)

	all, err := f.service.List(ctx, overtime.RequestFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(3), all.TotalCount)
}
