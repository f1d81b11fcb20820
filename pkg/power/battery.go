package power

// Telemetry is an immutable snapshot of the watched battery, delivered on
// every change notification.
type Telemetry struct {
	// Percentage is the remaining charge in [0, 100].
	Percentage float64 `json:"percentage"`
	// Discharging reports whether the battery is currently draining.
	Discharging bool `json:"discharging"`
}

// Kind identifies what sort of power device a telemetry source represents.
type Kind int

const (
	// KindUnknown is a device the source could not identify.
	KindUnknown Kind = iota
	// KindBattery is a real (possibly aggregated) battery.
	KindBattery
	// KindLinePower is an AC adapter.
	KindLinePower
)

// Battery is the telemetry source the notifier watches. It may be backed by
// a physical battery or an aggregate of several; aggregation happens before
// the device reaches this interface.
type Battery interface {
	// Kind reports the device kind. Only KindBattery may be attached to a
	// notifier.
	Kind() Kind
	// Telemetry returns the current snapshot.
	Telemetry() Telemetry
	// IconHints returns icon names for the device, most specific first.
	IconHints() []string
	// Subscribe registers fn to run after every percentage or state change.
	// The returned cancel releases the subscription and is safe to call
	// more than once.
	Subscribe(fn func()) (cancel func())
}
