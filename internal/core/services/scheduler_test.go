package services

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finrecon/payment_recon_app/internal/apperrors"
	"github.com/finrecon/payment_recon_app/internal/core/domain"
)

// fakeReconSvc records the windows it was asked to reconcile and returns a
// scripted error for each call.
type fakeReconSvc struct {
	mu      sync.Mutex
	windows [][2]time.Time
	errs    []error
}

func (f *fakeReconSvc) RunReconciliation(_ context.Context, start, end time.Time) (*domain.ReconciliationReport, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.windows = append(f.windows, [2]time.Time{start, end})
	var err error
	if len(f.errs) > 0 {
		err = f.errs[0]
		f.errs = f.errs[1:]
	}
	if err != nil {
		return nil, err
	}
	return &domain.ReconciliationReport{}, nil
}

func (f *fakeReconSvc) DetectOrphans(context.Context, time.Time, time.Time) ([]domain.OrphanPayment, error) {
	return nil, nil
}

func (f *fakeReconSvc) calls() [][2]time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([][2]time.Time, len(f.windows))
	copy(out, f.windows)
	return out
}

func newTestScheduler(recon *fakeReconSvc) *Scheduler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewScheduler(recon, logger)
}

func TestScheduleEvery_RejectsNonPositiveInterval(t *testing.T) {
	s := newTestScheduler(&fakeReconSvc{})

	assert.ErrorIs(t, s.ScheduleEvery(0), apperrors.ErrValidation)
	assert.ErrorIs(t, s.ScheduleEvery(-1), apperrors.ErrValidation)
	assert.False(t, s.Running())
}

func TestScheduleEvery_RejectsDoubleSchedule(t *testing.T) {
	s := newTestScheduler(&fakeReconSvc{})

	require.NoError(t, s.ScheduleEvery(1))
	defer s.StopSchedule()

	assert.True(t, s.Running())
	assert.ErrorIs(t, s.ScheduleEvery(1), apperrors.ErrValidation)
}

func TestStopSchedule_Idempotent(t *testing.T) {
	s := newTestScheduler(&fakeReconSvc{})

	require.NoError(t, s.ScheduleEvery(1))
	s.StopSchedule()
	assert.False(t, s.Running())

	// A second stop with no active schedule is a no-op.
	s.StopSchedule()

	// The scheduler can be restarted after a stop.
	require.NoError(t, s.ScheduleEvery(2))
	s.StopSchedule()
}

func TestRunOnce_WindowAnchoredToLastSuccess(t *testing.T) {
	recon := &fakeReconSvc{}
	s := newTestScheduler(recon)

	t0 := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return t0 }
	s.lastSuccess = t0.Add(-time.Hour)

	s.runOnce()

	calls := recon.calls()
	require.Len(t, calls, 1)
	assert.Equal(t, t0.Add(-time.Hour), calls[0][0])
	assert.Equal(t, t0, calls[0][1])
	assert.Equal(t, t0, s.lastSuccess)
}

func TestRunOnce_ConcurrentRejectionSkipsQuietly(t *testing.T) {
	recon := &fakeReconSvc{errs: []error{apperrors.ErrConcurrentRun}}
	s := newTestScheduler(recon)

	t0 := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return t0 }
	s.lastSuccess = t0.Add(-time.Hour)

	s.runOnce()

	// A skipped run does not advance the window; the next tick covers it.
	assert.Equal(t, t0.Add(-time.Hour), s.lastSuccess)
}

func TestRunOnce_FailureDoesNotAdvanceWindow(t *testing.T) {
	recon := &fakeReconSvc{errs: []error{apperrors.ErrFetchFailed, nil}}
	s := newTestScheduler(recon)

	t0 := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return t0 }
	s.lastSuccess = t0.Add(-time.Hour)

	s.runOnce()
	assert.Equal(t, t0.Add(-time.Hour), s.lastSuccess)

	// The following run covers the widened window and advances on success.
	t1 := t0.Add(time.Hour)
	s.now = func() time.Time { return t1 }
	s.runOnce()

	calls := recon.calls()
	require.Len(t, calls, 2)
	assert.Equal(t, t0.Add(-time.Hour), calls[1][0])
	assert.Equal(t, t1, calls[1][1])
	assert.Equal(t, t1, s.lastSuccess)
}
