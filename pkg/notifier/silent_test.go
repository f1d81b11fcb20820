package notifier

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type lookupResult struct {
	value bool
	err   error
}

type fakeSilentBackend struct {
	lookup    chan lookupResult
	watchFn   func(bool)
	unwatched int
}

func (b *fakeSilentBackend) Lookup(ctx context.Context) (bool, error) {
	select {
	case r := <-b.lookup:
		return r.value, r.err
	case <-ctx.Done():
		return false, ctx.Err()
	}
}

func (b *fakeSilentBackend) Watch(fn func(bool)) (cancel func()) {
	b.watchFn = fn
	return func() { b.unwatched++ }
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

func TestGatePendingIsSilent(t *testing.T) {
	backend := &fakeSilentBackend{lookup: make(chan lookupResult)}
	gate := NewGate(backend)
	defer gate.Close()

	assert.True(t, gate.Silent(), "pending gate must fail toward silent")
}

func TestGateResolves(t *testing.T) {
	backend := &fakeSilentBackend{lookup: make(chan lookupResult, 1)}
	gate := NewGate(backend)
	defer gate.Close()

	backend.lookup <- lookupResult{value: false}
	waitFor(t, func() bool { return !gate.Silent() })

	// A later change arrives through the watch, not a new lookup.
	require.NotNil(t, backend.watchFn)
	backend.watchFn(true)
	assert.True(t, gate.Silent())
	backend.watchFn(false)
	assert.False(t, gate.Silent())
}

func TestGateLookupFailureStaysPending(t *testing.T) {
	backend := &fakeSilentBackend{lookup: make(chan lookupResult, 1)}
	gate := NewGate(backend)
	defer gate.Close()

	backend.lookup <- lookupResult{err: assert.AnError}

	// Still pending, still silent. Give the goroutine a moment to run.
	time.Sleep(10 * time.Millisecond)
	assert.True(t, gate.Silent())

	// The watch can still resolve it later.
	backend.watchFn(false)
	assert.False(t, gate.Silent())
}

func TestGateCloseCancelsLookup(t *testing.T) {
	backend := &fakeSilentBackend{lookup: make(chan lookupResult)}
	gate := NewGate(backend)

	gate.Close()
	assert.Equal(t, 1, backend.unwatched, "close must release the backend watch")

	// A late callback after close must not mutate state.
	backend.watchFn(false)
	assert.True(t, gate.Silent(), "closed gate keeps its pending value")
}

func TestDisabledGateNeverSilent(t *testing.T) {
	gate := NewDisabledGate()
	assert.False(t, gate.Silent())
	gate.Close()
	assert.False(t, gate.Silent())
}
