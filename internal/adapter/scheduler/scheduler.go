// Package scheduler runs durable one-shot campaign activation jobs. Jobs
// live in their own database table and survive process restarts; timers and
// the bounded worker pool are rebuilt from PENDING rows at startup.
package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/juliatong/AI-bee-Meta/internal/config/configs"
	"github.com/juliatong/AI-bee-Meta/internal/core/domain"
	"github.com/juliatong/AI-bee-Meta/internal/core/port"
)

// Activator is the task executed when a job fires. The use case layer
// implements it: flip the remote campaign to ACTIVE, reconcile, persist.
type Activator interface {
	RunActivation(ctx context.Context, campaignID, remoteCampaignID string) error
}

// Scheduler implements port.Scheduler with an explicit Start/Stop
// lifecycle. It is constructed once in the composition root and passed to
// its consumers by reference.
//
// Guarantees: a job fires at most once per process lifetime (the timer
// entry is claimed under lock before execution) and at most once overall
// (the terminal transition in the job table is guarded to happen once). A
// job whose instant passed while the process was down fires immediately
// after Start, exactly once.
type Scheduler struct {
	jobs   port.JobRepository
	store  port.StateStore
	act    Activator
	logger *slog.Logger

	workers chan struct{} // bounds concurrent task execution

	mu     sync.Mutex
	timers map[string]*time.Timer

	stopCh  chan struct{}
	baseCtx context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	now func() time.Time
}

// New builds a stopped scheduler. Call Start to reload pending jobs and
// begin firing.
func New(cfg configs.Scheduler, jobs port.JobRepository, store port.StateStore, act Activator, logger *slog.Logger) *Scheduler {
	workers := cfg.Workers
	if workers <= 0 {
		workers = 10
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		jobs:    jobs,
		store:   store,
		act:     act,
		logger:  logger,
		workers: make(chan struct{}, workers),
		timers:  make(map[string]*time.Timer),
		stopCh:  make(chan struct{}),
		baseCtx: ctx,
		cancel:  cancel,
		now:     time.Now,
	}
}

// Start reloads every PENDING job from the durable table and arms its
// timer. Jobs whose instant already passed fire immediately.
func (s *Scheduler) Start(ctx context.Context) error {
	pending, err := s.jobs.Pending(ctx)
	if err != nil {
		return err
	}
	for _, job := range pending {
		s.arm(job)
	}
	s.logger.Info("scheduler started",
		slog.Int("pending_jobs", len(pending)), slog.Int("workers", cap(s.workers)))
	return nil
}

// Stop prevents not-yet-started jobs from firing and waits for running
// tasks to finish. Stopped jobs stay PENDING in the table and are re-armed
// on the next Start.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	for id, t := range s.timers {
		t.Stop()
		delete(s.timers, id)
	}
	s.mu.Unlock()
	close(s.stopCh)
	s.wg.Wait()
	s.cancel()
	s.logger.Info("scheduler stopped")
}

// Schedule persists job as PENDING and arms its timer. The activation
// instant must be strictly in the future at call time; otherwise nothing is
// persisted.
func (s *Scheduler) Schedule(ctx context.Context, job domain.ScheduledJob) error {
	if !job.ActivateAt.After(s.now()) {
		return &domain.SchedulingError{Msg: "activation time must be in the future"}
	}
	if err := s.jobs.Insert(ctx, job); err != nil {
		return err
	}
	s.arm(job)
	s.logger.Info("job scheduled",
		slog.String("job", job.ID), slog.Time("activate_at", job.ActivateAt))
	return nil
}

// Cancel removes a not-yet-started job. It reports true at most once per
// job; a job that already started or finished is left alone.
func (s *Scheduler) Cancel(ctx context.Context, jobID string) bool {
	s.mu.Lock()
	t, armed := s.timers[jobID]
	if armed {
		t.Stop()
		delete(s.timers, jobID)
	}
	s.mu.Unlock()
	if !armed {
		return false
	}
	if ok, err := s.jobs.Finish(ctx, jobID, domain.JobCancelled, s.now().UTC(), ""); err != nil {
		s.logger.Error("failed to persist cancellation",
			slog.String("job", jobID), slog.Any("error", err))
	} else if !ok {
		s.logger.Warn("cancelled job was no longer pending", slog.String("job", jobID))
	}
	s.logger.Info("job cancelled", slog.String("job", jobID))
	return true
}

// arm registers a timer for the job. A duplicate id keeps the first timer.
func (s *Scheduler) arm(job domain.ScheduledJob) {
	delay := time.Until(job.ActivateAt)
	if delay < 0 {
		delay = 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.timers[job.ID]; exists {
		return
	}
	s.timers[job.ID] = time.AfterFunc(delay, func() { s.fire(job) })
}

// fire claims the job's timer entry and runs the task on the worker pool.
// Claiming under the lock is what makes cancellation and execution mutually
// exclusive: whichever removes the entry first wins.
func (s *Scheduler) fire(job domain.ScheduledJob) {
	s.mu.Lock()
	if _, ok := s.timers[job.ID]; !ok {
		s.mu.Unlock()
		return
	}
	delete(s.timers, job.ID)
	s.wg.Add(1)
	s.mu.Unlock()
	defer s.wg.Done()

	select {
	case s.workers <- struct{}{}:
	case <-s.stopCh:
		// shutting down before the task started: leave the row PENDING so
		// the next Start re-arms it
		return
	}
	defer func() { <-s.workers }()

	s.execute(job)
}

// execute runs the activation task and records the terminal outcome. Any
// task failure becomes a FAILED row with the captured message; a storage
// failure while recording the outcome is logged and must not take the
// scheduler down.
func (s *Scheduler) execute(job domain.ScheduledJob) {
	logger := s.logger.With(slog.String("job", job.ID), slog.String("campaign", job.CampaignID))
	logger.Info("activation job firing")

	taskErr := s.act.RunActivation(s.baseCtx, job.CampaignID, job.RemoteCampaignID)

	status := domain.JobCompleted
	errMsg := ""
	if taskErr != nil {
		status = domain.JobFailed
		errMsg = taskErr.Error()
		logger.Error("activation job failed", slog.Any("error", taskErr))
	}

	executedAt := s.now().UTC()
	ok, err := s.jobs.Finish(s.baseCtx, job.ID, status, executedAt, errMsg)
	if err != nil {
		logger.Error("failed to record job outcome", slog.Any("error", err))
		return
	}
	if !ok {
		logger.Warn("job already terminal, outcome not recorded")
		return
	}
	if ferr := job.Finish(status, executedAt, errMsg); ferr == nil {
		if err := s.store.SaveSchedule(s.baseCtx, job); err != nil {
			logger.Error("failed to mirror job outcome", slog.Any("error", err))
		}
	}
	if taskErr == nil {
		logger.Info("activation job completed")
	}
}
