package upower

import (
	"testing"
	"time"

	"github.com/godbus/dbus/v5"
	"github.com/stretchr/testify/assert"

	"github.com/battalert/battalert/pkg/power"
)

func newTestDevice() *Device {
	return &Device{
		path:    displayDevicePath,
		kind:    power.KindUnknown,
		subs:    map[int]func(){},
		signals: make(chan *dbus.Signal, 4),
	}
}

func TestApplyMapsProperties(t *testing.T) {
	d := newTestDevice()

	changed := d.apply(map[string]dbus.Variant{
		"Percentage": dbus.MakeVariant(42.5),
		"State":      dbus.MakeVariant(stateDischarging),
		"Type":       dbus.MakeVariant(typeBattery),
		"IconName":   dbus.MakeVariant("battery-good-symbolic"),
	})

	assert.True(t, changed)
	assert.Equal(t, power.KindBattery, d.Kind())
	assert.Equal(t, power.Telemetry{Percentage: 42.5, Discharging: true}, d.Telemetry())
	assert.Equal(t, []string{"battery-good-symbolic", "battery"}, d.IconHints())
}

func TestApplyReportsNoChangeForSameValues(t *testing.T) {
	d := newTestDevice()

	d.apply(map[string]dbus.Variant{
		"Percentage": dbus.MakeVariant(42.5),
		"State":      dbus.MakeVariant(stateDischarging),
	})

	changed := d.apply(map[string]dbus.Variant{
		"Percentage": dbus.MakeVariant(42.5),
		"State":      dbus.MakeVariant(stateDischarging),
	})
	assert.False(t, changed, "identical telemetry must not look like a change")

	// Icon-only updates do not count as telemetry changes either.
	changed = d.apply(map[string]dbus.Variant{
		"IconName": dbus.MakeVariant("battery-low-symbolic"),
	})
	assert.False(t, changed)
}

func TestApplyMapsChargingStates(t *testing.T) {
	d := newTestDevice()

	d.apply(map[string]dbus.Variant{"State": dbus.MakeVariant(stateDischarging)})
	assert.True(t, d.Telemetry().Discharging)

	// Any non-discharging state counts as not discharging.
	d.apply(map[string]dbus.Variant{"State": dbus.MakeVariant(uint32(1))})
	assert.False(t, d.Telemetry().Discharging)
}

func TestSignalsNotifySubscribers(t *testing.T) {
	d := newTestDevice()
	go d.watchSignals()

	notified := make(chan struct{}, 4)
	cancel := d.Subscribe(func() { notified <- struct{}{} })
	defer cancel()

	d.signals <- &dbus.Signal{
		Path: d.path,
		Name: propsInterface + ".PropertiesChanged",
		Body: []interface{}{deviceInterface, map[string]dbus.Variant{
			"Percentage": dbus.MakeVariant(8.0),
		}, []string{}},
	}

	select {
	case <-notified:
	case <-time.After(2 * time.Second):
		t.Fatal("subscriber was not notified of a percentage change")
	}
	assert.Equal(t, 8.0, d.Telemetry().Percentage)

	// A signal for another interface is dropped.
	d.signals <- &dbus.Signal{
		Path: d.path,
		Name: propsInterface + ".PropertiesChanged",
		Body: []interface{}{"org.example.Other", map[string]dbus.Variant{
			"Percentage": dbus.MakeVariant(1.0),
		}, []string{}},
	}
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 8.0, d.Telemetry().Percentage)
}
