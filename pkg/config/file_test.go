package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestFileDefaults(t *testing.T) {
	f := NewFileFromConfig(&RawFileConfig{}, "")

	if got := f.PollInterval(); got != 30*time.Second {
		t.Errorf("PollInterval() = %v, want 30s", got)
	}
	if !f.SilentModeGate() {
		t.Error("SilentModeGate() = false, want true by default")
	}
	if got := f.SoundFile(); got != "" {
		t.Errorf("SoundFile() = %q, want empty", got)
	}
	if got := f.NotificationApp(); got != "battalert" {
		t.Errorf("NotificationApp() = %q, want battalert", got)
	}
	if f.AllowNonRootAccess() {
		t.Error("AllowNonRootAccess() = true, want false by default")
	}
}

func TestFileLoadMissing(t *testing.T) {
	f, err := NewFile(filepath.Join(t.TempDir(), "does-not-exist.json"))
	if err != nil {
		t.Fatalf("NewFile() error = %v", err)
	}
	// Missing file behaves as an all-defaults config.
	if got := f.PollInterval(); got != 30*time.Second {
		t.Errorf("PollInterval() = %v, want 30s", got)
	}
}

func TestFileLoadEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "battalert.json")
	if err := os.WriteFile(path, []byte("  \n"), 0o644); err != nil {
		t.Fatal(err)
	}
	f, err := NewFile(path)
	if err != nil {
		t.Fatalf("NewFile() error = %v", err)
	}
	if !f.SilentModeGate() {
		t.Error("SilentModeGate() = false, want default true for empty file")
	}
}

func TestFileSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "battalert.json")
	f := NewFileFromConfig(&RawFileConfig{}, path)

	f.SetPollInterval(10 * time.Second)
	f.SetSilentModeGate(false)
	f.SetSoundFile("/tmp/ding.ogg")
	f.SetAllowNonRootAccess(true)

	if err := f.Save(); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	g, err := NewFile(path)
	if err != nil {
		t.Fatalf("NewFile() error = %v", err)
	}
	if got := g.PollInterval(); got != 10*time.Second {
		t.Errorf("PollInterval() = %v, want 10s", got)
	}
	if g.SilentModeGate() {
		t.Error("SilentModeGate() = true, want false")
	}
	if got := g.SoundFile(); got != "/tmp/ding.ogg" {
		t.Errorf("SoundFile() = %q", got)
	}
	if !g.AllowNonRootAccess() {
		t.Error("AllowNonRootAccess() = false, want true")
	}
}

func TestFileLoadInvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "battalert.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := NewFile(path); err == nil {
		t.Fatal("NewFile() expected error for invalid JSON")
	}
}

func TestSetPollIntervalRejectsSubSecond(t *testing.T) {
	f := NewFileFromConfig(&RawFileConfig{}, "")
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for sub-second poll interval")
		}
	}()
	f.SetPollInterval(100 * time.Millisecond)
}
