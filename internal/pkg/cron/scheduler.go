package cron

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// Job is an interval job. A run that would overlap a still-running one is
// skipped.
type Job struct {
	Name       string
	Interval   time.Duration
	Timeout    time.Duration
	RunOnStart bool
	Fn         func(ctx context.Context) error

	running atomic.Bool
}

// JobOption tunes a job at registration.
type JobOption func(*Job)

// WithRunOnStart runs the job as soon as the scheduler starts instead of
// waiting for the first tick.
func WithRunOnStart() JobOption {
	return func(j *Job) { j.RunOnStart = true }
}

// WithTimeout bounds a single run.
func WithTimeout(d time.Duration) JobOption {
	return func(j *Job) { j.Timeout = d }
}

// Scheduler runs registered jobs until Stop.
type Scheduler struct {
	jobs   []*Job
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	mu     sync.Mutex
}

func NewScheduler() *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		ctx:    ctx,
		cancel: cancel,
	}
}

// AddJob registers fn to run every interval.
func (s *Scheduler) AddJob(name string, interval time.Duration, fn func(ctx context.Context) error, opts ...JobOption) {
	job := &Job{Name: name, Interval: interval, Fn: fn}
	for _, opt := range opts {
		opt(job)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs = append(s.jobs, job)

	slog.Info("Cron job registered",
		"name", name,
		"interval", interval,
		"timeout", job.Timeout,
		"run_on_start", job.RunOnStart)
}

// Start launches one goroutine per job.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, job := range s.jobs {
		s.wg.Add(1)
		go s.loop(job)
	}

	slog.Info("Cron scheduler started", "job_count", len(s.jobs))
}

// Stop cancels running jobs and waits for them to return.
func (s *Scheduler) Stop() {
	slog.Info("Stopping cron scheduler...")
	s.cancel()
	s.wg.Wait()
	slog.Info("Cron scheduler stopped")
}

func (s *Scheduler) loop(job *Job) {
	defer s.wg.Done()

	ticker := time.NewTicker(job.Interval)
	defer ticker.Stop()

	if job.RunOnStart {
		s.execute(s.ctx, job)
	}

	for {
		select {
		case <-s.ctx.Done():
			slog.Info("Cron job stopping", "name", job.Name)
			return
		case <-ticker.C:
			s.execute(s.ctx, job)
		}
	}
}

// execute runs job once. It returns ran=false when a previous run is still
// in progress.
func (s *Scheduler) execute(ctx context.Context, job *Job) (ran bool, err error) {
	if !job.running.CompareAndSwap(false, true) {
		slog.Warn("Cron job still running, skipping", "name", job.Name)
		return false, nil
	}
	defer job.running.Store(false)

	if job.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, job.Timeout)
		defer cancel()
	}

	start := time.Now()
	slog.Debug("Cron job starting", "name", job.Name)

	if err = job.Fn(ctx); err != nil {
		slog.Error("Cron job failed", "name", job.Name, "error", err, "duration", time.Since(start))
		return true, err
	}
	slog.Debug("Cron job completed", "name", job.Name, "duration", time.Since(start))
	return true, nil
}

// RunOnce runs every job once in registration order and joins their errors.
func (s *Scheduler) RunOnce(ctx context.Context) error {
	s.mu.Lock()
	jobs := append([]*Job(nil), s.jobs...)
	s.mu.Unlock()

	var errs []error
	for _, job := range jobs {
		if _, err := s.execute(ctx, job); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", job.Name, err))
		}
	}
	return errors.Join(errs...)
}
