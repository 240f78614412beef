package cron

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/skponto/skponto-backend-go/internal/domain/hourbank"
)

// HourBankJobs settles closed days nobody settled interactively and checks
// every bank against its transaction chain.
type HourBankJobs struct {
	settlementService hourbank.SettlementService
	hourBankService   hourbank.HourBankService
	sweepInterval     time.Duration
	reconcileInterval time.Duration
	lookback          time.Duration
	now               func() time.Time
}

func NewHourBankJobs(
	settlementService hourbank.SettlementService,
	hourBankService hourbank.HourBankService,
	sweepInterval, reconcileInterval time.Duration,
	lookbackDays int,
) *HourBankJobs {
	return &HourBankJobs{
		settlementService: settlementService,
		hourBankService:   hourBankService,
		sweepInterval:     sweepInterval,
		reconcileInterval: reconcileInterval,
		lookback:          time.Duration(lookbackDays) * 24 * time.Hour,
		now:               time.Now,
	}
}

// RegisterJobs adds both jobs. The sweep also runs at boot to catch up on
// days closed while the service was down; reconciliation waits for its first
// tick.
func (j *HourBankJobs) RegisterJobs(scheduler *Scheduler) {
	scheduler.AddJob("settle_closed_time_records", j.sweepInterval, j.SettleClosedTimeRecords,
		WithRunOnStart(), WithTimeout(j.sweepInterval))
	scheduler.AddJob("reconcile_hour_banks", j.reconcileInterval, j.ReconcileHourBanks,
		WithTimeout(j.reconcileInterval))
}

func (j *HourBankJobs) SettleClosedTimeRecords(ctx context.Context) error {
	since := j.now().Add(-j.lookback)
	settled, err := j.settlementService.SweepUnsettled(ctx, since)
	if err != nil {
		return fmt.Errorf("sweep unsettled time records: %w", err)
	}
	if settled > 0 {
		slog.Info("Cron: Settled closed time records", "count", settled, "since", since.Format("2006-01-02"))
	}
	return nil
}

// ReconcileHourBanks returns an error when any bank drifted from its ledger
// so the scheduler logs the failure.
func (j *HourBankJobs) ReconcileHourBanks(ctx context.Context) error {
	reports, err := j.hourBankService.ReconcileAll(ctx)
	if err != nil {
		return fmt.Errorf("reconcile hour banks: %w", err)
	}

	broken := 0
	for _, report := range reports {
		if report.Balanced && report.ChainConsistent {
			continue
		}
		broken++
		slog.Warn("Cron: Hour bank out of balance",
			"user_id", report.UserID,
			"current_balance", report.CurrentBalance,
			"transaction_sum", report.TransactionSum,
			"broken_transactions", report.BrokenTransactionIDs)
	}

	slog.Info("Cron: Reconciled hour banks", "count", len(reports), "broken", broken)
	if broken > 0 {
		return fmt.Errorf("%d of %d hour banks out of balance", broken, len(reports))
	}
	return nil
}
