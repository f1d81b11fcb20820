package silentmode

import (
	"testing"
	"time"

	"github.com/godbus/dbus/v5"
	"github.com/stretchr/testify/assert"
)

func newTestBackend() *AccountsBackend {
	b := &AccountsBackend{
		path:     dbus.ObjectPath("/org/freedesktop/Accounts/User1000"),
		watchers: map[int]func(bool){},
		signals:  make(chan *dbus.Signal, 4),
	}
	go b.watchSignals()
	return b
}

func propertiesChanged(path dbus.ObjectPath, iface string, changed map[string]dbus.Variant) *dbus.Signal {
	return &dbus.Signal{
		Path: path,
		Name: propsInterface + ".PropertiesChanged",
		Body: []interface{}{iface, changed, []string{}},
	}
}

func waitForValues(t *testing.T, got *[]bool, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if len(*got) >= want {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("expected %d watch callbacks, got %d", want, len(*got))
}

func TestWatchDeliversSilentModeChanges(t *testing.T) {
	b := newTestBackend()

	var got []bool
	cancel := b.Watch(func(v bool) { got = append(got, v) })
	defer cancel()

	b.signals <- propertiesChanged(b.path, soundInterface, map[string]dbus.Variant{
		silentModeProperty: dbus.MakeVariant(true),
	})
	waitForValues(t, &got, 1)
	assert.Equal(t, []bool{true}, got)

	b.signals <- propertiesChanged(b.path, soundInterface, map[string]dbus.Variant{
		silentModeProperty: dbus.MakeVariant(false),
	})
	waitForValues(t, &got, 2)
	assert.Equal(t, []bool{true, false}, got)
}

func TestWatchIgnoresUnrelatedSignals(t *testing.T) {
	b := newTestBackend()

	var got []bool
	cancel := b.Watch(func(v bool) { got = append(got, v) })
	defer cancel()

	// Wrong interface, wrong path, wrong property, wrong type.
	b.signals <- propertiesChanged(b.path, "org.example.Other", map[string]dbus.Variant{
		silentModeProperty: dbus.MakeVariant(true),
	})
	b.signals <- propertiesChanged("/org/freedesktop/Accounts/User0", soundInterface, map[string]dbus.Variant{
		silentModeProperty: dbus.MakeVariant(true),
	})
	b.signals <- propertiesChanged(b.path, soundInterface, map[string]dbus.Variant{
		"OtherSetting": dbus.MakeVariant(true),
	})
	b.signals <- propertiesChanged(b.path, soundInterface, map[string]dbus.Variant{
		silentModeProperty: dbus.MakeVariant("not-a-bool"),
	})

	// Then one valid change to prove the loop is still alive.
	b.signals <- propertiesChanged(b.path, soundInterface, map[string]dbus.Variant{
		silentModeProperty: dbus.MakeVariant(true),
	})

	waitForValues(t, &got, 1)
	assert.Equal(t, []bool{true}, got)
}

func TestWatchCancelStopsDelivery(t *testing.T) {
	b := newTestBackend()

	var got []bool
	cancel := b.Watch(func(v bool) { got = append(got, v) })
	cancel()

	b.signals <- propertiesChanged(b.path, soundInterface, map[string]dbus.Variant{
		silentModeProperty: dbus.MakeVariant(true),
	})

	time.Sleep(20 * time.Millisecond)
	assert.Empty(t, got)
}
