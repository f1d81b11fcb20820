package notifier

import "github.com/battalert/battalert/pkg/power"

// Publisher receives derived state for external consumers. Calls are
// fire-and-forget: the notifier never waits for acknowledgement and must be
// able to call either method at any point between construction and teardown.
type Publisher interface {
	SetPowerLevel(power.Level)
	SetIsWarning(bool)
}

// MultiPublisher fans updates out to several publishers in order.
type MultiPublisher []Publisher

func (m MultiPublisher) SetPowerLevel(l power.Level) {
	for _, p := range m {
		p.SetPowerLevel(l)
	}
}

func (m MultiPublisher) SetIsWarning(warning bool) {
	for _, p := range m {
		p.SetIsWarning(warning)
	}
}
