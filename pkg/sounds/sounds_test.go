package sounds

import (
	"os"
	"path/filepath"
	"testing"
)

func TestOverrideWins(t *testing.T) {
	l := NewLocator("/opt/sounds/custom.ogg")
	got, err := l.WarningSoundURI()
	if err != nil {
		t.Fatalf("WarningSoundURI() error = %v", err)
	}
	if got != "file:///opt/sounds/custom.ogg" {
		t.Errorf("WarningSoundURI() = %q", got)
	}
}

func TestSearchFindsFirstCandidate(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "battery-low.oga")
	if err := os.WriteFile(path, []byte{}, 0o644); err != nil {
		t.Fatal(err)
	}

	l := &Locator{dirs: []string{dir}}
	got, err := l.WarningSoundURI()
	if err != nil {
		t.Fatalf("WarningSoundURI() error = %v", err)
	}
	if got != "file://"+path {
		t.Errorf("WarningSoundURI() = %q, want file://%s", got, path)
	}
}

func TestSearchPrefersEarlierCandidates(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"low-battery.ogg", "dialog-warning.oga"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte{}, 0o644); err != nil {
			t.Fatal(err)
		}
	}

	l := &Locator{dirs: []string{dir}}
	got, _ := l.WarningSoundURI()
	if got != "file://"+filepath.Join(dir, "low-battery.ogg") {
		t.Errorf("WarningSoundURI() = %q, want low-battery.ogg first", got)
	}
}

func TestLookupFailureFallsBack(t *testing.T) {
	l := &Locator{dirs: []string{filepath.Join(t.TempDir(), "empty")}}
	got, err := l.WarningSoundURI()
	if err != nil {
		t.Fatalf("WarningSoundURI() error = %v", err)
	}
	if got != "file://"+fallbackSound {
		t.Errorf("WarningSoundURI() = %q, want fallback %s", got, fallbackSound)
	}
}
