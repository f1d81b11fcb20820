// Package export publishes the derived battery state as read-only
// properties on the bus.
package export

import (
	"sync"

	"github.com/godbus/dbus/v5"
	"github.com/godbus/dbus/v5/introspect"
	"github.com/godbus/dbus/v5/prop"
	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/battalert/battalert/pkg/notifier"
	"github.com/battalert/battalert/pkg/power"
)

const (
	// BatteryInterface carries the exported battery state.
	BatteryInterface = "com.battalert.Battery"
	// BatteryPath is the object path the state is exported on.
	BatteryPath = dbus.ObjectPath("/com/battalert/Battery")

	powerLevelProperty = "PowerLevel"
	isWarningProperty  = "IsWarning"
)

// Publisher exports `PowerLevel` (one of ok, low, very-low, critical) and
// `IsWarning` on the bus. Updates arrive at any time, also while no
// connection is attached; the latest values are exported on attach.
type Publisher struct {
	mu      sync.Mutex
	conn    *dbus.Conn
	props   *prop.Properties
	level   power.Level
	warning bool
}

var _ notifier.Publisher = &Publisher{}

// NewPublisher returns an unexported publisher.
func NewPublisher() *Publisher {
	return &Publisher{}
}

// SetBus attaches the publisher to conn, exporting the properties, or
// detaches it when conn is nil. Idempotent in both directions.
func (p *Publisher) SetBus(conn *dbus.Conn) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.conn == conn {
		return nil
	}

	if p.conn != nil {
		p.unexportLocked()
	}

	if conn == nil {
		return nil
	}

	propsSpec := map[string]map[string]*prop.Prop{
		BatteryInterface: {
			powerLevelProperty: {
				Value:    p.level.String(),
				Writable: false,
				Emit:     prop.EmitTrue,
			},
			isWarningProperty: {
				Value:    p.warning,
				Writable: false,
				Emit:     prop.EmitTrue,
			},
		},
	}

	props, err := prop.Export(conn, BatteryPath, propsSpec)
	if err != nil {
		return pkgerrors.Wrap(err, "failed to export battery properties")
	}

	node := &introspect.Node{
		Name: string(BatteryPath),
		Interfaces: []introspect.Interface{
			introspect.IntrospectData,
			prop.IntrospectData,
			{
				Name:       BatteryInterface,
				Properties: props.Introspection(BatteryInterface),
			},
		},
	}
	err = conn.Export(introspect.NewIntrospectable(node), BatteryPath,
		"org.freedesktop.DBus.Introspectable")
	if err != nil {
		return pkgerrors.Wrap(err, "failed to export battery introspection")
	}

	p.conn = conn
	p.props = props
	return nil
}

func (p *Publisher) unexportLocked() {
	for _, iface := range []string{
		BatteryInterface,
		"org.freedesktop.DBus.Properties",
		"org.freedesktop.DBus.Introspectable",
	} {
		if err := p.conn.Export(nil, BatteryPath, iface); err != nil {
			logrus.WithError(err).Debug("failed to unexport battery properties")
		}
	}
	p.conn = nil
	p.props = nil
}

// SetPowerLevel publishes the current severity band.
func (p *Publisher) SetPowerLevel(l power.Level) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.level = l
	if p.props != nil {
		p.props.SetMust(BatteryInterface, powerLevelProperty, l.String())
	}
}

// SetIsWarning publishes whether a low-battery warning is on screen.
func (p *Publisher) SetIsWarning(warning bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.warning = warning
	if p.props != nil {
		p.props.SetMust(BatteryInterface, isWarningProperty, warning)
	}
}
