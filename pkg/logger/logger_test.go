package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLogger_WritesToFile(t *testing.T) {
	dir := t.TempDir()

	l, err := New(dir, "hooks", false)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	l.Infof("captured %d observations", 3)
	l.Errorf("store unavailable")
	if err := l.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	data, err := os.ReadFile(l.LogPath())
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	text := string(data)
	if !strings.Contains(text, "[hooks] [INFO] captured 3 observations") {
		t.Errorf("info entry missing from log:\n%s", text)
	}
	if !strings.Contains(text, "[ERROR] store unavailable") {
		t.Errorf("error entry missing from log:\n%s", text)
	}
}

func TestLogger_DebugGated(t *testing.T) {
	dir := t.TempDir()

	quiet, err := New(dir, "quiet", false)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	quiet.Debugf("should not appear")
	quiet.Close()

	data, _ := os.ReadFile(quiet.LogPath())
	if strings.Contains(string(data), "should not appear") {
		t.Error("debug entry written with debug disabled")
	}

	loud, err := New(dir, "loud", true)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	loud.Debugf("should appear")
	loud.Close()

	data, err = os.ReadFile(loud.LogPath())
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(data), "[DEBUG] should appear") {
		t.Error("debug entry missing with debug enabled")
	}
}

func TestLogger_FallbackWhenDirUnavailable(t *testing.T) {
	dir := t.TempDir()
	blocked := filepath.Join(dir, "not-a-dir")
	if err := os.WriteFile(blocked, []byte("x"), 0600); err != nil {
		t.Fatalf("setup: %v", err)
	}

	l, err := New(filepath.Join(blocked, "logs"), "hooks", false)
	if err == nil {
		t.Fatal("expected an error when the log directory cannot be created")
	}
	if l == nil {
		t.Fatal("fallback logger must still be returned")
	}
	if l.LogPath() != "" {
		t.Errorf("fallback logger should have no file path, got %q", l.LogPath())
	}
	// Must not panic without a file.
	l.Infof("still usable")
	if err := l.Close(); err != nil {
		t.Errorf("Close on fallback logger: %v", err)
	}
}
