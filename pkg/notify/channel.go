// Package notify implements the notification channel on the session bus,
// talking to org.freedesktop.Notifications.
package notify

import (
	"math"
	"sync"

	"github.com/godbus/dbus/v5"
	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/battalert/battalert/pkg/notifier"
)

const (
	dbusDest      = "org.freedesktop.Notifications"
	dbusPath      = "/org/freedesktop/Notifications"
	dbusInterface = "org.freedesktop.Notifications"
)

// Presentation hints understood by snap-decision capable notification
// servers. Key names must match the server bit-exactly.
const (
	hintSnapDecisions   = "x-canonical-snap-decisions"
	hintSnapTimeout     = "x-canonical-snap-decisions-timeout"
	hintNonShapedIcon   = "x-canonical-non-shaped-icon"
	hintAffirmativeTint = "x-canonical-private-affirmative-tint"
	hintSoundFile       = "sound-file"
)

type pending struct {
	title    string
	body     string
	icon     string
	actions  []notifier.Action
	hints    map[string]dbus.Variant
	serverID uint32
	shown    bool
}

// Channel drives the desktop notification service over D-Bus and reports
// user dismissal and action invocation back through registered handlers.
type Channel struct {
	conn    *dbus.Conn
	obj     dbus.BusObject
	appName string

	mu         sync.Mutex
	next       notifier.Handle
	pendings   map[notifier.Handle]*pending
	byServerID map[uint32]notifier.Handle
	closedFn   func(notifier.Handle)

	signals chan *dbus.Signal
}

var _ notifier.Channel = &Channel{}

// New connects the channel to the notification service on conn and starts
// listening for ActionInvoked and NotificationClosed signals.
func New(conn *dbus.Conn, appName string) (*Channel, error) {
	c := &Channel{
		conn:       conn,
		obj:        conn.Object(dbusDest, dbusPath),
		appName:    appName,
		pendings:   map[notifier.Handle]*pending{},
		byServerID: map[uint32]notifier.Handle{},
		signals:    make(chan *dbus.Signal, 16),
	}

	err := conn.AddMatchSignal(
		dbus.WithMatchObjectPath(dbusPath),
		dbus.WithMatchInterface(dbusInterface),
	)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "failed to match notification signals")
	}

	conn.Signal(c.signals)
	go c.watchSignals()

	return c, nil
}

// Capabilities queries the server's supported feature tokens.
func (c *Channel) Capabilities() (notifier.Capabilities, error) {
	var tokens []string
	err := c.obj.Call(dbusInterface+".GetCapabilities", 0).Store(&tokens)
	if err != nil {
		return notifier.Capabilities{}, pkgerrors.Wrap(err, "failed to query notification server capabilities")
	}

	caps := notifier.Capabilities{}
	for _, token := range tokens {
		if token == "actions" {
			caps.Actions = true
		}
	}
	return caps, nil
}

// Create builds a notification without displaying it.
func (c *Channel) Create(title, body string, iconHints []string) notifier.Handle {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.next++
	h := c.next

	icon := ""
	if len(iconHints) > 0 {
		icon = iconHints[0]
	}

	c.pendings[h] = &pending{
		title: title,
		body:  body,
		icon:  icon,
		hints: map[string]dbus.Variant{},
	}
	return h
}

// AttachActions adds the action buttons and the presentation hints that mark
// the notification as an interactive, high-priority decision surface.
func (c *Channel) AttachActions(h notifier.Handle, actions []notifier.Action) {
	c.mu.Lock()
	defer c.mu.Unlock()

	p, ok := c.pendings[h]
	if !ok {
		return
	}

	p.actions = actions
	p.hints[hintSnapDecisions] = dbus.MakeVariant("true")
	p.hints[hintSnapTimeout] = dbus.MakeVariant(int32(math.MaxInt32))
	p.hints[hintNonShapedIcon] = dbus.MakeVariant("true")
	p.hints[hintAffirmativeTint] = dbus.MakeVariant("true")
}

// AttachSoundHint asks the server to play the sound at uri on display.
func (c *Channel) AttachSoundHint(h notifier.Handle, uri string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	p, ok := c.pendings[h]
	if !ok {
		return
	}
	p.hints[hintSoundFile] = dbus.MakeVariant(uri)
}

// Show displays the notification. On error the handle is forgotten.
func (c *Channel) Show(h notifier.Handle) error {
	c.mu.Lock()
	p, ok := c.pendings[h]
	if !ok {
		c.mu.Unlock()
		return pkgerrors.Errorf("unknown notification handle %d", h)
	}

	actionList := make([]string, 0, len(p.actions)*2)
	for _, a := range p.actions {
		actionList = append(actionList, a.ID, a.Label)
	}

	// Interactive notifications stay up until the user decides; plain ones
	// use the server default timeout.
	timeout := int32(-1)
	if len(p.actions) > 0 {
		timeout = 0
	}

	appName := c.appName
	icon := p.icon
	title := p.title
	body := p.body
	hints := p.hints
	c.mu.Unlock()

	var serverID uint32
	call := c.obj.Call(dbusInterface+".Notify", 0,
		appName,
		uint32(0),
		icon,
		title,
		body,
		actionList,
		hints,
		timeout,
	)
	if call.Err == nil {
		call.Err = call.Store(&serverID)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if call.Err != nil {
		delete(c.pendings, h)
		return pkgerrors.Wrap(call.Err, "failed to show notification")
	}

	p.serverID = serverID
	p.shown = true
	c.byServerID[serverID] = h
	return nil
}

// Clear removes the notification from display. Safe to call on an
// already-cleared or never-shown handle.
func (c *Channel) Clear(h notifier.Handle) {
	c.mu.Lock()
	p, ok := c.pendings[h]
	if ok {
		delete(c.pendings, h)
		delete(c.byServerID, p.serverID)
	}
	c.mu.Unlock()

	if !ok || !p.shown {
		return
	}

	call := c.obj.Call(dbusInterface+".CloseNotification", 0, p.serverID)
	if call.Err != nil {
		logrus.WithError(call.Err).Debug("failed to close notification")
	}
}

// SetClosedHandler registers fn to run when a shown notification is closed
// by the user or the server.
func (c *Channel) SetClosedHandler(fn func(notifier.Handle)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closedFn = fn
}

// Close stops signal delivery. Notifications already on screen stay there.
func (c *Channel) Close() {
	c.conn.RemoveSignal(c.signals)
	err := c.conn.RemoveMatchSignal(
		dbus.WithMatchObjectPath(dbusPath),
		dbus.WithMatchInterface(dbusInterface),
	)
	if err != nil {
		logrus.WithError(err).Debug("failed to remove notification signal match")
	}
}

func (c *Channel) watchSignals() {
	for sig := range c.signals {
		switch sig.Name {
		case dbusInterface + ".ActionInvoked":
			if len(sig.Body) < 2 {
				continue
			}
			serverID, ok := sig.Body[0].(uint32)
			actionID, ok2 := sig.Body[1].(string)
			if !ok || !ok2 {
				continue
			}
			c.dispatchAction(serverID, actionID)

		case dbusInterface + ".NotificationClosed":
			if len(sig.Body) < 1 {
				continue
			}
			serverID, ok := sig.Body[0].(uint32)
			if !ok {
				continue
			}
			c.dispatchClosed(serverID)
		}
	}
}

func (c *Channel) dispatchAction(serverID uint32, actionID string) {
	c.mu.Lock()
	var callback func()
	if h, ok := c.byServerID[serverID]; ok {
		if p, ok := c.pendings[h]; ok {
			for _, a := range p.actions {
				if a.ID == actionID {
					callback = a.Callback
					break
				}
			}
		}
	}
	c.mu.Unlock()

	// Run outside the lock: the callback may re-enter the channel.
	if callback != nil {
		callback()
	}
}

func (c *Channel) dispatchClosed(serverID uint32) {
	c.mu.Lock()
	h, ok := c.byServerID[serverID]
	if ok {
		delete(c.byServerID, serverID)
		delete(c.pendings, h)
	}
	fn := c.closedFn
	c.mu.Unlock()

	if ok && fn != nil {
		fn(h)
	}
}
