package locking

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/finrecon/payment_recon_app/internal/core/ports/gateways"
)

// LocalRunLocker enforces the single-active-run invariant within one process
// using an atomic flag. Suitable only for single-instance deployments; use
// RedisRunLocker when the engine runs across multiple processes.
type LocalRunLocker struct {
	held atomic.Bool
}

var _ gateways.RunLocker = (*LocalRunLocker)(nil)

// NewLocalRunLocker creates an in-process run locker.
func NewLocalRunLocker() *LocalRunLocker {
	return &LocalRunLocker{}
}

// TryAcquire flips the flag or reports it already held. The returned release
// is idempotent.
func (l *LocalRunLocker) TryAcquire(_ context.Context) (func(), bool, error) {
	if !l.held.CompareAndSwap(false, true) {
		return nil, false, nil
	}
	var once sync.Once
	release := func() {
		once.Do(func() { l.held.Store(false) })
	}
	return release, true, nil
}
