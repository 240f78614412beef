package cron

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScheduler_SkipsOverlappingRun(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	var calls atomic.Int32

	scheduler := NewScheduler()
	scheduler.AddJob("slow", time.Hour, func(ctx context.Context) error {
		calls.Add(1)
		close(started)
		<-release
		return nil
	})
	job := scheduler.jobs[0]

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = scheduler.execute(context.Background(), job)
	}()
	<-started

	ran, err := scheduler.execute(context.Background(), job)
	assert.False(t, ran)
	assert.NoError(t, err)

	close(release)
	<-done
	assert.Equal(t, int32(1), calls.Load())
}

func TestScheduler_TimeoutCancelsRun(t *testing.T) {
	scheduler := NewScheduler()
	scheduler.AddJob("stuck", time.Hour, func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}, WithTimeout(10*time.Millisecond))

	err := scheduler.RunOnce(context.Background())
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestScheduler_RunOnStartOnlyWhenAsked(t *testing.T) {
	eager := make(chan struct{}, 1)
	var lazy atomic.Int32

	scheduler := NewScheduler()
	scheduler.AddJob("eager", time.Hour, func(ctx context.Context) error {
		eager <- struct{}{}
		return nil
	}, WithRunOnStart())
	scheduler.AddJob("lazy", time.Hour, func(ctx context.Context) error {
		lazy.Add(1)
		return nil
	})

	scheduler.Start()
	select {
	case <-eager:
	case <-time.After(time.Second):
		t.Fatal("eager job did not run on start")
	}
	scheduler.Stop()

	assert.Zero(t, lazy.Load())
}

func TestHourBankJobs_Registration(t *testing.T) {
	scheduler := NewScheduler()
	NewHourBankJobs(&fakeSettlement{}, &fakeHourBank{}, time.Hour, 24*time.Hour, 7).RegisterJobs(scheduler)

	require.Len(t, scheduler.jobs, 2)
	sweep, reconcile := scheduler.jobs[0], scheduler.jobs[1]
	assert.Equal(t, "settle_closed_time_records", sweep.Name)
	assert.True(t, sweep.RunOnStart)
	assert.Equal(t, time.Hour, sweep.Timeout)
	assert.Equal(t, "reconcile_hour_banks", reconcile.Name)
	assert.False(t, reconcile.RunOnStart)
	assert.Equal(t, 24*time.Hour, reconcile.Timeout)
}
