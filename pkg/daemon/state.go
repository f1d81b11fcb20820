package daemon

import (
	"sync"
	"time"

	"github.com/battalert/battalert/pkg/events"
	"github.com/battalert/battalert/pkg/notifier"
	"github.com/battalert/battalert/pkg/power"
)

// state caches the published values for the HTTP handlers and republishes
// changes to the event hub. Like the bus publisher, it only reacts when a
// value actually changes.
type state struct {
	mu      sync.RWMutex
	level   power.Level
	warning bool
	hub     *events.EventHub
}

var _ notifier.Publisher = &state{}

func newState(hub *events.EventHub) *state {
	return &state{hub: hub}
}

func (s *state) SetPowerLevel(l power.Level) {
	s.mu.Lock()
	if s.level == l {
		s.mu.Unlock()
		return
	}
	s.level = l
	s.mu.Unlock()

	s.hub.Publish(events.PowerLevel, events.PowerLevelEvent{
		Level: l.String(),
		Ts:    time.Now().Unix(),
	})
}

func (s *state) SetIsWarning(warning bool) {
	s.mu.Lock()
	if s.warning == warning {
		s.mu.Unlock()
		return
	}
	s.warning = warning
	s.mu.Unlock()

	s.hub.Publish(events.Warning, events.WarningEvent{
		Warning: warning,
		Ts:      time.Now().Unix(),
	})
}

func (s *state) Level() power.Level {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.level
}

func (s *state) Warning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.warning
}
