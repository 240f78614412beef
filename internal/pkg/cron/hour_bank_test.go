package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/skponto/skponto-backend-go/internal/domain/hourbank"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSettlement struct {
	since   time.Time
	settled int
	err     error
}

func (f *fakeSettlement) SettleDate(ctx context.Context, userID string, date time.Time) (*hourbank.TransactionResponse, error) {
	return nil, nil
}

func (f *fakeSettlement) SweepUnsettled(ctx context.Context, since time.Time) (int, error) {
	f.since = since
	return f.settled, f.err
}

type fakeHourBank struct {
	hourbank.HourBankService
	reports []hourbank.ReconcileReport
}

func (f *fakeHourBank) ReconcileAll(ctx context.Context) ([]hourbank.ReconcileReport, error) {
	return f.reports, nil
}

func TestSettleClosedTimeRecords_UsesLookback(t *testing.T) {
	settlement := &fakeSettlement{settled: 3}
	jobs := NewHourBankJobs(settlement, &fakeHourBank{}, time.Hour, 24*time.Hour, 7)
	now := time.Date(2024, 5, 20, 1, 0, 0, 0, time.UTC)
	jobs.now = func() time.Time { return now }

	require.NoError(t, jobs.SettleClosedTimeRecords(context.Background()))
	assert.Equal(t, now.AddDate(0, 0, -7), settlement.since)

	settlement.err = errors.New("db down")
	assert.Error(t, jobs.SettleClosedTimeRecords(context.Background()))
}

func TestReconcileHourBanks_ReportsDrift(t *testing.T) {
	banks := &fakeHourBank{reports: []hourbank.ReconcileReport{
		{UserID: "a", Balanced: true, ChainConsistent: true},
	}}
	jobs := NewHourBankJobs(&fakeSettlement{}, banks, time.Hour, time.Hour, 7)
	assert.NoError(t, jobs.ReconcileHourBanks(context.Background()))

	banks.reports = append(banks.reports, hourbank.ReconcileReport{UserID: "b", Balanced: false, ChainConsistent: true})
	assert.ErrorContains(t, jobs.ReconcileHourBanks(context.Background()), "1 of 2")
}

func TestScheduler_RunOnce(t *testing.T) {
	settlement := &fakeSettlement{}
	jobs := NewHourBankJobs(settlement, &fakeHourBank{}, time.Hour, time.Hour, 1)
	scheduler := NewScheduler()
	jobs.RegisterJobs(scheduler)

	require.NoError(t, scheduler.RunOnce(context.Background()))
	assert.False(t, settlement.since.IsZero())

	settlement.err = errors.New("db down")
	assert.ErrorContains(t, scheduler.RunOnce(context.Background()), "settle_closed_time_records")
}
