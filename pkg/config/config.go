package config

import "time"

// Config is the daemon configuration.
type Config interface {
	// PollInterval is how often the fallback battery poller samples.
	PollInterval() time.Duration
	// SilentModeGate reports whether the silent-mode gate is enabled. When
	// disabled the warning sound is never suppressed by the gate.
	SilentModeGate() bool
	// SoundFile overrides the warning sound lookup. Empty means look the
	// sound up in the installed sound directories.
	SoundFile() string
	// NotificationApp is the application name reported to the notification
	// server.
	NotificationApp() string
	AllowNonRootAccess() bool

	SetPollInterval(time.Duration)
	SetSilentModeGate(bool)
	SetSoundFile(string)
	SetNotificationApp(string)
	SetAllowNonRootAccess(bool)

	// Load reads the configuration from the source.
	Load() error
	// Save saves the configuration to the source.
	Save() error
}
