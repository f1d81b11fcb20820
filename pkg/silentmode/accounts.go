// Package silentmode resolves the user's silent-mode preference from the
// per-user accounts service on the system bus.
package silentmode

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/godbus/dbus/v5"
	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/battalert/battalert/pkg/notifier"
)

const (
	accountsDest       = "org.freedesktop.Accounts"
	soundInterface     = "com.ubuntu.touch.AccountsService.Sound"
	silentModeProperty = "SilentMode"
	propsInterface     = "org.freedesktop.DBus.Properties"
)

// AccountsBackend reads the SilentMode boolean from the calling user's
// accounts-service object and watches it for changes.
type AccountsBackend struct {
	conn *dbus.Conn
	path dbus.ObjectPath

	mu       sync.Mutex
	watchers map[int]func(bool)
	nextID   int

	signals chan *dbus.Signal
}

var _ notifier.SilentModeBackend = &AccountsBackend{}

// New returns a backend bound to the current user's object path.
func New(conn *dbus.Conn) (*AccountsBackend, error) {
	path := dbus.ObjectPath(fmt.Sprintf("/org/freedesktop/Accounts/User%d", os.Getuid()))

	b := &AccountsBackend{
		conn:     conn,
		path:     path,
		watchers: map[int]func(bool){},
		signals:  make(chan *dbus.Signal, 16),
	}

	err := conn.AddMatchSignal(
		dbus.WithMatchObjectPath(path),
		dbus.WithMatchInterface(propsInterface),
		dbus.WithMatchMember("PropertiesChanged"),
	)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "failed to match accounts service signals")
	}

	conn.Signal(b.signals)
	go b.watchSignals()

	return b, nil
}

// Lookup resolves the current silent-mode value.
func (b *AccountsBackend) Lookup(ctx context.Context) (bool, error) {
	obj := b.conn.Object(accountsDest, b.path)

	var v dbus.Variant
	err := obj.CallWithContext(ctx, propsInterface+".Get", 0, soundInterface, silentModeProperty).Store(&v)
	if err != nil {
		return false, pkgerrors.Wrap(err, "failed to get silent mode property")
	}

	value, ok := v.Value().(bool)
	if !ok {
		return false, pkgerrors.Errorf("silent mode property has unexpected type %T", v.Value())
	}
	return value, nil
}

// Watch registers fn for later value changes.
func (b *AccountsBackend) Watch(fn func(bool)) (cancel func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	b.watchers[id] = fn

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.watchers, id)
	}
}

// Close stops signal delivery.
func (b *AccountsBackend) Close() {
	b.conn.RemoveSignal(b.signals)
	err := b.conn.RemoveMatchSignal(
		dbus.WithMatchObjectPath(b.path),
		dbus.WithMatchInterface(propsInterface),
		dbus.WithMatchMember("PropertiesChanged"),
	)
	if err != nil {
		logrus.WithError(err).Debug("failed to remove accounts service signal match")
	}
}

func (b *AccountsBackend) watchSignals() {
	for sig := range b.signals {
		if sig.Name != propsInterface+".PropertiesChanged" || sig.Path != b.path {
			continue
		}
		if len(sig.Body) < 2 {
			continue
		}

		iface, ok := sig.Body[0].(string)
		if !ok || iface != soundInterface {
			continue
		}
		changed, ok := sig.Body[1].(map[string]dbus.Variant)
		if !ok {
			continue
		}
		v, ok := changed[silentModeProperty]
		if !ok {
			continue
		}
		value, ok := v.Value().(bool)
		if !ok {
			continue
		}

		b.mu.Lock()
		fns := make([]func(bool), 0, len(b.watchers))
		for _, fn := range b.watchers {
			fns = append(fns, fn)
		}
		b.mu.Unlock()

		for _, fn := range fns {
			fn(value)
		}
	}
}
