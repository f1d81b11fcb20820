package localbatt

import (
	"sync"
	"testing"

	"github.com/battalert/battalert/pkg/power"
)

func newTestPoller() *Poller {
	return &Poller{
		subs: map[int]func(){},
		stop: make(chan struct{}),
	}
}

func TestUpdateNotifiesOnChange(t *testing.T) {
	p := newTestPoller()

	var mu sync.Mutex
	notified := 0
	cancel := p.Subscribe(func() {
		mu.Lock()
		notified++
		mu.Unlock()
	})
	defer cancel()

	p.update(power.Telemetry{Percentage: 50, Discharging: true})
	if notified != 1 {
		t.Fatalf("notified = %d, want 1", notified)
	}

	// Identical sample: no notification.
	p.update(power.Telemetry{Percentage: 50, Discharging: true})
	if notified != 1 {
		t.Fatalf("notified = %d after identical sample, want 1", notified)
	}

	// State flip notifies even with the same percentage.
	p.update(power.Telemetry{Percentage: 50, Discharging: false})
	if notified != 2 {
		t.Fatalf("notified = %d, want 2", notified)
	}
}

func TestSubscribeCancel(t *testing.T) {
	p := newTestPoller()

	notified := 0
	cancel := p.Subscribe(func() { notified++ })
	cancel()

	p.update(power.Telemetry{Percentage: 10, Discharging: true})
	if notified != 0 {
		t.Fatalf("notified = %d after cancel, want 0", notified)
	}
}

func TestPollerKind(t *testing.T) {
	p := newTestPoller()
	if p.Kind() != power.KindBattery {
		t.Fatalf("Kind() = %v, want KindBattery", p.Kind())
	}
}
