package notifier

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"
)

// SilentModeBackend resolves the user's silent-mode preference from an
// external settings service.
type SilentModeBackend interface {
	// Lookup blocks until the value is resolved, the service fails, or ctx
	// is cancelled.
	Lookup(ctx context.Context) (bool, error)
	// Watch registers fn to run whenever the value changes later. The
	// returned cancel releases the watch.
	Watch(fn func(bool)) (cancel func())
}

// Gate answers "should the warning sound be suppressed right now?" without
// blocking. Until the backend lookup resolves it reports silent, failing
// toward not disturbing the user.
type Gate struct {
	mu          sync.Mutex
	disabled    bool
	resolved    bool
	value       bool
	cancel      context.CancelFunc
	cancelWatch func()
	closed      bool
}

// NewGate starts a non-blocking lookup against backend and returns
// immediately. A lookup failure leaves the gate pending; only a later value
// change from the watch can resolve it then.
func NewGate(backend SilentModeBackend) *Gate {
	g := &Gate{}

	ctx, cancel := context.WithCancel(context.Background())
	g.cancel = cancel
	g.cancelWatch = backend.Watch(g.resolve)

	go func() {
		value, err := backend.Lookup(ctx)
		if err != nil {
			if ctx.Err() != nil {
				// Cancelled on teardown. Not an error, and the gate
				// must not be touched: it may already be torn down.
				return
			}
			logrus.WithError(err).Warn("silent mode lookup failed, staying pending")
			return
		}
		g.resolve(value)
	}()

	return g
}

// NewDisabledGate returns a gate that never suppresses sound. Used when the
// silent-mode gate is switched off in the configuration.
func NewDisabledGate() *Gate {
	return &Gate{disabled: true}
}

// NewPendingGate returns a gate that stays pending forever, suppressing
// sound. Used when the settings service cannot be reached at all.
func NewPendingGate() *Gate {
	return &Gate{}
}

// Silent reports whether sound should be suppressed.
func (g *Gate) Silent() bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.disabled {
		return false
	}
	if !g.resolved {
		return true
	}
	return g.value
}

func (g *Gate) resolve(value bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.closed {
		return
	}
	g.resolved = true
	g.value = value
}

// Close cancels any in-flight lookup and releases the backend watch. Late
// callbacks become no-ops.
func (g *Gate) Close() {
	g.mu.Lock()
	g.closed = true
	cancel := g.cancel
	cancelWatch := g.cancelWatch
	g.cancel = nil
	g.cancelWatch = nil
	g.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if cancelWatch != nil {
		cancelWatch()
	}
}
