package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/finrecon/payment_recon_app/internal/apperrors"
	portssvc "github.com/finrecon/payment_recon_app/internal/core/ports/services"
	"github.com/finrecon/payment_recon_app/internal/middleware"
)

// Scheduler triggers a full reconciliation run at a fixed interval. At most
// one schedule is active per Scheduler; runs themselves are serialized by the
// reconciliation service's run lock.
type Scheduler struct {
	BaseService
	recon  portssvc.ReconciliationSvc
	logger *slog.Logger

	mu          sync.Mutex
	stopCh      chan struct{}
	active      bool
	lastSuccess time.Time

	now func() time.Time
}

var _ portssvc.SchedulerSvc = (*Scheduler)(nil)

// NewScheduler creates a new Scheduler. The logger is attached to the
// background run contexts, which have no request scope of their own.
func NewScheduler(recon portssvc.ReconciliationSvc, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		recon:  recon,
		logger: logger,
		now:    time.Now,
	}
}

// ScheduleEvery starts the recurring trigger. Returns a validation error when
// a schedule is already active or the interval is not positive.
func (s *Scheduler) ScheduleEvery(intervalHours int) error {
	if intervalHours <= 0 {
		return fmt.Errorf("%w: interval must be at least one hour", apperrors.ErrValidation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active {
		return fmt.Errorf("%w: schedule already active", apperrors.ErrValidation)
	}

	interval := time.Duration(intervalHours) * time.Hour
	s.stopCh = make(chan struct{})
	s.active = true
	s.lastSuccess = s.now().UTC().Add(-interval)

	go s.loop(interval, s.stopCh)
	s.logger.Info("Reconciliation schedule started", slog.Int("interval_hours", intervalHours))
	return nil
}

// StopSchedule halts the recurring trigger. Safe to call when no schedule is
// active.
func (s *Scheduler) StopSchedule() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.active {
		return
	}
	close(s.stopCh)
	s.active = false
	s.logger.Info("Reconciliation schedule stopped")
}

// Running reports whether a schedule is currently active.
func (s *Scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

func (s *Scheduler) loop(interval time.Duration, stopCh chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			s.runOnce()
		}
	}
}

// runOnce executes a scheduled run over the window since the last successful
// run. A concurrent-run rejection is logged and skipped; other failures are
// logged and left for the next tick, never retried immediately.
func (s *Scheduler) runOnce() {
	ctx := middleware.ContextWithLogger(context.Background(), s.logger)
	now := s.now().UTC()

	s.mu.Lock()
	start := s.lastSuccess
	s.mu.Unlock()

	_, err := s.recon.RunReconciliation(ctx, start, now)
	switch {
	case errors.Is(err, apperrors.ErrConcurrentRun):
		s.logger.Info("Scheduled run skipped, another run is active")
	case err != nil:
		s.logger.Error("Scheduled reconciliation run failed",
			slog.String("error", err.Error()))
	default:
		s.mu.Lock()
		s.lastSuccess = now
		s.mu.Unlock()
	}
}
