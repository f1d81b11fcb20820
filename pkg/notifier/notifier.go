// Package notifier decides, with hysteresis, when to raise or clear the
// low-battery warning and publishes the derived state for external
// consumers.
package notifier

import (
	"fmt"
	"sync"

	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/battalert/battalert/pkg/power"
)

// Notifier watches one battery and drives the notification channel and the
// state publisher. All transitions run as one atomic unit under a mutex: the
// decision depends on the previous level and discharge state read before any
// effect and written after.
type Notifier struct {
	mu sync.Mutex

	channel   Channel
	publisher Publisher
	gate      *Gate
	launcher  SettingsLauncher
	sounds    SoundLocator

	capsOnce sync.Once
	caps     Capabilities

	battery     power.Battery
	unsubscribe func()

	prevLevel       power.Level
	prevDischarging bool
	active          Handle
}

// New returns a notifier with no battery attached. gate must be non-nil;
// use NewDisabledGate when the silent-mode gate is configured off.
func New(channel Channel, publisher Publisher, gate *Gate, launcher SettingsLauncher, sounds SoundLocator) *Notifier {
	n := &Notifier{
		channel:   channel,
		publisher: publisher,
		gate:      gate,
		launcher:  launcher,
		sounds:    sounds,
	}
	channel.SetClosedHandler(n.handleClosed)
	return n
}

// SetBattery replaces the watched battery. Passing nil detaches: the active
// warning is cleared, the published level resets to ok, and internal state
// resets. Attaching runs the transition once immediately, so a just-attached
// battery that is already critical and discharging warns right away.
func (n *Notifier) SetBattery(b power.Battery) error {
	if b != nil && b.Kind() != power.KindBattery {
		return pkgerrors.Errorf("refusing to watch non-battery device of kind %d", b.Kind())
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	if n.battery == b {
		return nil
	}

	if n.battery != nil {
		n.unsubscribe()
		n.unsubscribe = nil
		n.battery = nil
		n.clearLocked()
		n.publisher.SetPowerLevel(power.LevelOK)
		n.prevLevel = power.LevelOK
		n.prevDischarging = false
	}

	if b != nil {
		n.battery = b
		n.unsubscribe = b.Subscribe(n.onBatteryChanged)
		n.transitionLocked(b.Telemetry())
	}

	return nil
}

// Close detaches the battery and cancels any in-flight silent-mode lookup.
func (n *Notifier) Close() {
	_ = n.SetBattery(nil)
	n.gate.Close()
}

func (n *Notifier) onBatteryChanged() {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.battery == nil {
		// Change delivered after detach.
		return
	}
	n.transitionLocked(n.battery.Telemetry())
}

// transitionLocked is the hysteresis rule. Pop up a warning if either:
// a) the battery is discharging and its level worsened, or
// b) the level is already bad and the battery just became discharging.
// Charging, or recovering to ok, always cancels a pending warning. Anything
// else leaves the notification alone so a steady discharge does not nag.
func (n *Notifier) transitionLocked(t power.Telemetry) {
	newLevel := power.ClassifyLevel(t.Percentage)
	newDischarging := t.Discharging

	worsened := newDischarging && newLevel > n.prevLevel
	unpluggedWhileBad := newLevel != power.LevelOK && newDischarging && !n.prevDischarging

	switch {
	case worsened || unpluggedWhileBad:
		n.showLocked(newLevel, t)
	case !newDischarging || newLevel == power.LevelOK:
		n.clearLocked()
	}

	n.publisher.SetPowerLevel(newLevel)
	n.prevLevel = newLevel
	n.prevDischarging = newDischarging
}

func (n *Notifier) showLocked(level power.Level, t power.Telemetry) {
	n.clearLocked()

	title := "Battery Low"
	if level > power.LevelLow {
		title = "Battery Critical"
	}
	body := fmt.Sprintf("%.0f%% charge remaining", t.Percentage)

	var iconHints []string
	if n.battery != nil {
		iconHints = n.battery.IconHints()
	}

	h := n.channel.Create(title, body, iconHints)

	if n.capabilities().Actions {
		n.channel.AttachActions(h, []Action{
			{ID: "dismiss", Label: "OK", Callback: func() {}},
			{ID: "settings", Label: "Battery settings", Callback: n.openSettings},
		})
		if !n.gate.Silent() {
			uri, err := n.sounds.WarningSoundURI()
			if err != nil {
				logrus.WithError(err).Warn("unable to locate warning sound")
			} else {
				n.channel.AttachSoundHint(h, uri)
			}
		}
	}

	if err := n.channel.Show(h); err != nil {
		logrus.WithError(err).Errorf("unable to show low battery warning %q", body)
		return
	}

	n.active = h
	n.publisher.SetIsWarning(true)
}

func (n *Notifier) clearLocked() {
	if n.active == 0 {
		return
	}
	n.publisher.SetIsWarning(false)
	n.channel.Clear(n.active)
	n.active = 0
}

// handleClosed reacts to the user dismissing the notification out-of-band,
// symmetric to an explicit clear.
func (n *Notifier) handleClosed(h Handle) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.active != h {
		return
	}
	n.clearLocked()
}

func (n *Notifier) openSettings() {
	if n.launcher != nil {
		n.launcher.OpenBatterySettings()
	}
}

// capabilities memoizes the backend capability query. A failed query
// degrades to a plain notification without actions and is not retried.
func (n *Notifier) capabilities() Capabilities {
	n.capsOnce.Do(func() {
		caps, err := n.channel.Capabilities()
		if err != nil {
			logrus.WithError(err).Warn("unable to query notification server capabilities, assuming none")
			return
		}
		n.caps = caps
	})
	return n.caps
}
