// Package upower watches the UPower display device, the already-aggregated
// canonical battery for the machine.
package upower

import (
	"sync"

	"github.com/godbus/dbus/v5"
	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/battalert/battalert/pkg/power"
)

const (
	upowerDest        = "org.freedesktop.UPower"
	displayDevicePath = dbus.ObjectPath("/org/freedesktop/UPower/devices/DisplayDevice")
	deviceInterface   = "org.freedesktop.UPower.Device"
	propsInterface    = "org.freedesktop.DBus.Properties"
)

// UPower device type values.
const (
	typeLinePower uint32 = 1
	typeBattery   uint32 = 2
)

// UPower device state value for a draining battery.
const stateDischarging uint32 = 2

// Device is the UPower display device as a power.Battery.
type Device struct {
	conn *dbus.Conn
	path dbus.ObjectPath

	mu        sync.Mutex
	telemetry power.Telemetry
	kind      power.Kind
	iconName  string
	subs      map[int]func()
	nextID    int

	signals chan *dbus.Signal
}

var _ power.Battery = &Device{}

// NewDisplayDevice reads the display device's current state and starts
// watching it for percentage and state changes.
func NewDisplayDevice(conn *dbus.Conn) (*Device, error) {
	d := &Device{
		conn:    conn,
		path:    displayDevicePath,
		kind:    power.KindUnknown,
		subs:    map[int]func(){},
		signals: make(chan *dbus.Signal, 16),
	}

	obj := conn.Object(upowerDest, displayDevicePath)
	var props map[string]dbus.Variant
	err := obj.Call(propsInterface+".GetAll", 0, deviceInterface).Store(&props)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "failed to read upower display device")
	}
	d.apply(props)

	err = conn.AddMatchSignal(
		dbus.WithMatchObjectPath(displayDevicePath),
		dbus.WithMatchInterface(propsInterface),
		dbus.WithMatchMember("PropertiesChanged"),
	)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "failed to match upower signals")
	}

	conn.Signal(d.signals)
	go d.watchSignals()

	return d, nil
}

// Kind reports the device kind UPower advertises.
func (d *Device) Kind() power.Kind {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.kind
}

// Telemetry returns the current snapshot.
func (d *Device) Telemetry() power.Telemetry {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.telemetry
}

// IconHints returns the device icon name, most specific first.
func (d *Device) IconHints() []string {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.iconName == "" {
		return []string{"battery"}
	}
	return []string{d.iconName, "battery"}
}

// Subscribe registers fn for percentage and state changes.
func (d *Device) Subscribe(fn func()) (cancel func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	id := d.nextID
	d.nextID++
	d.subs[id] = fn

	return func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		delete(d.subs, id)
	}
}

// Close stops signal delivery.
func (d *Device) Close() {
	d.conn.RemoveSignal(d.signals)
	err := d.conn.RemoveMatchSignal(
		dbus.WithMatchObjectPath(displayDevicePath),
		dbus.WithMatchInterface(propsInterface),
		dbus.WithMatchMember("PropertiesChanged"),
	)
	if err != nil {
		logrus.WithError(err).Debug("failed to remove upower signal match")
	}
}

// apply folds a property map into the device. It reports whether the
// percentage or discharge state changed.
func (d *Device) apply(props map[string]dbus.Variant) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	changed := false

	if v, ok := props["Percentage"]; ok {
		if pct, ok := v.Value().(float64); ok && pct != d.telemetry.Percentage {
			d.telemetry.Percentage = pct
			changed = true
		}
	}
	if v, ok := props["State"]; ok {
		if state, ok := v.Value().(uint32); ok {
			discharging := state == stateDischarging
			if discharging != d.telemetry.Discharging {
				d.telemetry.Discharging = discharging
				changed = true
			}
		}
	}
	if v, ok := props["Type"]; ok {
		if t, ok := v.Value().(uint32); ok {
			switch t {
			case typeBattery:
				d.kind = power.KindBattery
			case typeLinePower:
				d.kind = power.KindLinePower
			default:
				d.kind = power.KindUnknown
			}
		}
	}
	if v, ok := props["IconName"]; ok {
		if name, ok := v.Value().(string); ok {
			d.iconName = name
		}
	}

	return changed
}

func (d *Device) watchSignals() {
	for sig := range d.signals {
		if sig.Name != propsInterface+".PropertiesChanged" || sig.Path != d.path {
			continue
		}
		if len(sig.Body) < 2 {
			continue
		}
		iface, ok := sig.Body[0].(string)
		if !ok || iface != deviceInterface {
			continue
		}
		changed, ok := sig.Body[1].(map[string]dbus.Variant)
		if !ok {
			continue
		}

		if !d.apply(changed) {
			continue
		}

		d.mu.Lock()
		fns := make([]func(), 0, len(d.subs))
		for _, fn := range d.subs {
			fns = append(fns, fn)
		}
		d.mu.Unlock()

		for _, fn := range fns {
			fn()
		}
	}
}
