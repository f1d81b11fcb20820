// Package daemon wires the battery watcher together and serves its control
// API on a unix socket.
package daemon

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	sdnotify "github.com/coreos/go-systemd/v22/daemon"
	"github.com/gin-gonic/gin"
	"github.com/godbus/dbus/v5"
	"github.com/sirupsen/logrus"

	"github.com/battalert/battalert/pkg/config"
	"github.com/battalert/battalert/pkg/events"
	"github.com/battalert/battalert/pkg/export"
	"github.com/battalert/battalert/pkg/localbatt"
	"github.com/battalert/battalert/pkg/notifier"
	"github.com/battalert/battalert/pkg/notify"
	"github.com/battalert/battalert/pkg/power"
	"github.com/battalert/battalert/pkg/silentmode"
	"github.com/battalert/battalert/pkg/sounds"
	"github.com/battalert/battalert/pkg/upower"
)

// BusName is the well-known name claimed on the session bus.
const BusName = "com.battalert"

var (
	conf          config.Config
	daemonState   *state
	hub           *events.EventHub
	batterySource power.Battery
	sourceName    string
)

func setupRoutes() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(ginLogger(logrus.StandardLogger()))
	router.GET("/status", getStatus)
	router.GET("/power-level", getPowerLevel)
	router.GET("/is-warning", getIsWarning)
	router.GET("/config", getConfig)
	router.GET("/events", getEvents)
	router.GET("/version", getVersion)
	router.PUT("/sound-file", setSoundFile)
	router.PUT("/silent-mode-gate", setSilentModeGate)

	return router
}

func Run(configPath string, unixSocketPath string, allowNonRoot bool) error {
	router := setupRoutes()

	fileConf, err := config.NewFile(configPath)
	if err != nil {
		logrus.Fatalf("failed to parse config during startup: %v", err)
	}
	conf = fileConf
	logrus.WithFields(fileConf.LogrusFields()).Infof("config loaded")

	// Receive SIGHUP to reload config
	go func() {
		sigc := make(chan os.Signal, 1)
		signal.Notify(sigc, syscall.SIGHUP)
		for range sigc {
			err := conf.Load()
			if err != nil {
				logrus.Errorf("failed to reload config: %v", err)
				continue
			}
			logrus.Infof("config reloaded")
		}
	}()

	hub = events.NewEventHub()
	daemonState = newState(hub)

	// The session bus carries the notification channel, the settings
	// launcher and the exported state. The system bus carries UPower and
	// the accounts service. Either may be missing; the daemon degrades
	// instead of exiting.
	sessionBus, err := dbus.SessionBus()
	if err != nil {
		logrus.Errorf("session bus unavailable, notifications disabled: %v", err)
		sessionBus = nil
	}
	systemBus, err := dbus.SystemBus()
	if err != nil {
		logrus.Errorf("system bus unavailable: %v", err)
		systemBus = nil
	}

	publisher := export.NewPublisher()
	if sessionBus != nil {
		reply, err := sessionBus.RequestName(BusName, dbus.NameFlagDoNotQueue)
		if err != nil || reply != dbus.RequestNameReplyPrimaryOwner {
			logrus.Warnf("could not claim %s on the session bus: %v", BusName, err)
		}
		if err := publisher.SetBus(sessionBus); err != nil {
			logrus.Errorf("failed to export battery state: %v", err)
		}
	}

	var channel notifier.Channel
	var launcher notifier.SettingsLauncher
	var dbusChannel *notify.Channel
	if sessionBus != nil {
		dbusChannel, err = notify.New(sessionBus, conf.NotificationApp())
		if err != nil {
			logrus.Errorf("failed to connect notification channel: %v", err)
		}
	}
	if dbusChannel != nil {
		channel = dbusChannel
		launcher = notify.NewLauncher(sessionBus)
	} else {
		channel = notify.NewStub()
	}

	var gate *notifier.Gate
	var silentBackend *silentmode.AccountsBackend
	if !conf.SilentModeGate() {
		gate = notifier.NewDisabledGate()
	} else if systemBus != nil {
		silentBackend, err = silentmode.New(systemBus)
		if err != nil {
			logrus.Warnf("silent mode backend unavailable, staying silent: %v", err)
			gate = notifier.NewPendingGate()
		} else {
			gate = notifier.NewGate(silentBackend)
		}
	} else {
		// No settings service reachable. Stay pending: no sound is the
		// conservative answer.
		gate = notifier.NewPendingGate()
	}

	n := notifier.New(channel, notifier.MultiPublisher{daemonState, publisher}, gate, launcher, sounds.NewLocator(conf.SoundFile()))

	batterySource, sourceName = chooseBatterySource(systemBus)
	if batterySource != nil {
		if err := n.SetBattery(batterySource); err != nil {
			logrus.Errorf("failed to attach battery: %v", err)
		} else {
			logrus.WithFields(logrus.Fields{
				"source":    sourceName,
				"telemetry": batterySource.Telemetry(),
			}).Info("battery attached")
		}
	} else {
		logrus.Warn("no battery found, only serving the API")
	}

	srv := &http.Server{
		Handler: router,
	}

	// Create the socket to listen on:
	l, err := net.Listen("unix", unixSocketPath)
	if err != nil {
		logrus.Fatal(err)
	}

	if conf.AllowNonRootAccess() || allowNonRoot {
		logrus.Infof("non-root access is allowed, changing permissions of %s to 0777", unixSocketPath)
		err = os.Chmod(unixSocketPath, 0777)
		if err != nil {
			logrus.Fatal(err)
		}
	}

	// Serve HTTP on unix socket
	go func() {
		logrus.Infof("http server listening on %s", l.Addr().String())
		if err := srv.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.Fatal(err)
		}
	}()

	if ok, err := sdnotify.SdNotify(false, sdnotify.SdNotifyReady); err != nil {
		logrus.Debugf("sd_notify ready failed: %v", err)
	} else if ok {
		logrus.Debug("sd_notify ready sent")
	}

	// Handle common process-killing signals, so we can gracefully shut down:
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	// Wait for a SIGINT or SIGTERM:
	sig := <-sigc
	logrus.Infof("caught signal \"%s\": shutting down.", sig)

	if _, err := sdnotify.SdNotify(false, sdnotify.SdNotifyStopping); err != nil {
		logrus.Debugf("sd_notify stopping failed: %v", err)
	}

	logrus.Info("shutting down http server")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	err = srv.Shutdown(ctx)
	if err != nil {
		logrus.Errorf("failed to shutdown http server: %v", err)
	}
	cancel()

	logrus.Info("detaching battery and clearing warnings")
	n.Close()

	if dbusChannel != nil {
		dbusChannel.Close()
	}
	if silentBackend != nil {
		silentBackend.Close()
	}
	closeBatterySource()
	if err := publisher.SetBus(nil); err != nil {
		logrus.Errorf("failed to unexport battery state: %v", err)
	}
	hub.Close()

	logrus.Info("exiting")
	return nil
}

// chooseBatterySource prefers the UPower display device and falls back to
// polling the OS directly.
func chooseBatterySource(systemBus *dbus.Conn) (power.Battery, string) {
	if systemBus != nil {
		dev, err := upower.NewDisplayDevice(systemBus)
		if err != nil {
			logrus.Warnf("upower unavailable: %v", err)
		} else if dev.Kind() != power.KindBattery {
			// Desktops expose a display device that is not a battery.
			logrus.Info("upower display device is not a battery")
			dev.Close()
		} else {
			return dev, "upower"
		}
	}

	p, err := localbatt.NewPoller(conf.PollInterval())
	if err != nil {
		logrus.Warnf("battery poller unavailable: %v", err)
		return nil, ""
	}
	return p, "poller"
}

func closeBatterySource() {
	switch src := batterySource.(type) {
	case *upower.Device:
		src.Close()
	case *localbatt.Poller:
		src.Close()
	}
	batterySource = nil
}
