package notifier

// Handle identifies a notification created on a Channel. Handles are opaque
// and nonzero; the zero value means "no notification".
type Handle uint64

// Capabilities is a snapshot of what the notification backend supports. It
// is queried once per process and treated as immutable afterwards.
type Capabilities struct {
	// Actions reports whether the backend can attach interactive actions.
	Actions bool
}

// Action is a button on an interactive notification. The callback runs when
// the user invokes the action; it must not block.
type Action struct {
	ID       string
	Label    string
	Callback func()
}

// Channel is the notification backend the notifier drives. Implementations
// must make Clear idempotent: clearing an already-cleared or never-shown
// handle is a no-op.
type Channel interface {
	// Capabilities queries the backend's supported features.
	Capabilities() (Capabilities, error)
	// Create builds a notification but does not display it.
	Create(title, body string, iconHints []string) Handle
	// AttachActions adds interactive actions to a pending notification.
	// Only called when Capabilities reported action support.
	AttachActions(h Handle, actions []Action)
	// AttachSoundHint asks the backend to play the sound at uri (a file://
	// URI) when the notification is displayed.
	AttachSoundHint(h Handle, uri string)
	// Show makes the notification visible. On error the handle is dead and
	// must not be retained by the caller.
	Show(h Handle) error
	// Clear removes the notification from display.
	Clear(h Handle)
	// SetClosedHandler registers fn to run when a shown notification is
	// closed out-of-band, e.g. dismissed by the user.
	SetClosedHandler(fn func(Handle))
}

// SettingsLauncher opens the system battery settings when the user asks for
// them from the notification.
type SettingsLauncher interface {
	OpenBatterySettings()
}

// SoundLocator resolves the warning sound to a file:// URI.
type SoundLocator interface {
	WarningSoundURI() (string, error)
}
