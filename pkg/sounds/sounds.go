// Package sounds locates the low-battery warning sound on disk.
package sounds

import (
	"net/url"
	"os"
	"path/filepath"
)

// fallbackSound is used when no candidate is found on disk. The
// notification server resolves it; it does not have to exist here.
const fallbackSound = "/usr/share/sounds/battalert/low-battery.ogg"

var searchDirs = []string{
	"/usr/share/sounds/battalert",
	"/usr/local/share/sounds/battalert",
	"/usr/share/sounds/freedesktop/stereo",
}

var candidates = []string{
	"low-battery.ogg",
	"battery-low.oga",
	"dialog-warning.oga",
}

// Locator resolves the warning sound to a file URI.
type Locator struct {
	// Override is an absolute path from the configuration. When set it
	// wins over the search, whether or not it exists.
	Override string

	dirs []string
}

// NewLocator returns a locator honoring the configured override path.
func NewLocator(override string) *Locator {
	return &Locator{Override: override, dirs: searchDirs}
}

// WarningSoundURI returns a file:// URI for the warning sound. Lookup
// failure falls back to the fixed default location and is not an error.
func (l *Locator) WarningSoundURI() (string, error) {
	if l.Override != "" {
		return fileURI(l.Override), nil
	}

	for _, dir := range l.dirs {
		for _, name := range candidates {
			path := filepath.Join(dir, name)
			if _, err := os.Stat(path); err == nil {
				return fileURI(path), nil
			}
		}
	}

	return fileURI(fallbackSound), nil
}

func fileURI(path string) string {
	u := url.URL{Scheme: "file", Path: path}
	return u.String()
}
