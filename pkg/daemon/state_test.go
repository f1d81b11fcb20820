package daemon

import (
	"testing"
	"time"

	"github.com/battalert/battalert/pkg/events"
	"github.com/battalert/battalert/pkg/power"
)

func TestStatePublishesOnlyChanges(t *testing.T) {
	hub := events.NewEventHub()
	ch := hub.Subscribe()
	defer hub.Unsubscribe(ch)

	s := newState(hub)

	s.SetPowerLevel(power.LevelLow)
	s.SetPowerLevel(power.LevelLow)
	s.SetIsWarning(true)
	s.SetIsWarning(true)

	if got := s.Level(); got != power.LevelLow {
		t.Errorf("Level() = %v", got)
	}
	if !s.Warning() {
		t.Error("Warning() = false, want true")
	}

	var got []string
	timeout := time.After(time.Second)
	for len(got) < 2 {
		select {
		case ev := <-ch:
			got = append(got, ev.Name)
		case <-timeout:
			t.Fatalf("expected 2 events, got %v", got)
		}
	}

	select {
	case ev := <-ch:
		t.Fatalf("unexpected extra event %q: repeated values must not republish", ev.Name)
	default:
	}

	if got[0] != events.PowerLevel || got[1] != events.Warning {
		t.Errorf("events = %v", got)
	}
}

func TestStateInitialValues(t *testing.T) {
	s := newState(nil)
	if s.Level() != power.LevelOK {
		t.Errorf("initial Level() = %v, want ok", s.Level())
	}
	if s.Warning() {
		t.Error("initial Warning() = true, want false")
	}

	// Publishing into a nil hub must be safe.
	s.SetPowerLevel(power.LevelCritical)
	s.SetIsWarning(true)
}
