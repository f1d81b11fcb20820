package notify

import (
	"os/exec"

	"github.com/godbus/dbus/v5"
	"github.com/sirupsen/logrus"
)

const batterySettingsURL = "settings:///system/battery"

const (
	urlDispatcherDest      = "com.canonical.URLDispatcher"
	urlDispatcherPath      = "/com/canonical/URLDispatcher"
	urlDispatcherInterface = "com.canonical.URLDispatcher"
)

// Launcher opens the battery settings through the session URL dispatcher,
// falling back to xdg-open where no dispatcher is on the bus.
type Launcher struct {
	conn *dbus.Conn
}

// NewLauncher returns a launcher on conn.
func NewLauncher(conn *dbus.Conn) *Launcher {
	return &Launcher{conn: conn}
}

// OpenBatterySettings launches the system battery settings page. Failures
// are logged and swallowed: launching settings is best effort.
func (l *Launcher) OpenBatterySettings() {
	obj := l.conn.Object(urlDispatcherDest, urlDispatcherPath)
	call := obj.Call(urlDispatcherInterface+".DispatchURL", 0, batterySettingsURL, "")
	if call.Err == nil {
		return
	}
	logrus.WithError(call.Err).Debug("url dispatcher unavailable, trying xdg-open")

	if err := exec.Command("xdg-open", batterySettingsURL).Start(); err != nil {
		logrus.WithError(err).Warn("unable to open battery settings")
	}
}
