package archive

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func fixedClock(t *testing.T, at time.Time) {
	t.Helper()
	orig := now
	now = func() time.Time { return at }
	t.Cleanup(func() { now = orig })
}

func TestPreviousFile(t *testing.T) {
	tmpDir := t.TempDir()
	fixedClock(t, time.Date(2026, 3, 1, 14, 5, 9, 123456000, time.UTC))

	deck := filepath.Join(tmpDir, "wordsmith.apkg")
	if err := os.WriteFile(deck, []byte("old deck"), 0644); err != nil {
		t.Fatal(err)
	}

	got, err := Previous(deck)
	if err != nil {
		t.Fatalf("Previous() failed: %v", err)
	}

	want := filepath.Join(tmpDir, "archive", "wordsmith-20260301-140509.apkg")
	if got != want {
		t.Errorf("Previous() = %s, want %s", got, want)
	}
	if _, err := os.Stat(deck); !os.IsNotExist(err) {
		t.Error("original file still exists after archiving")
	}
	data, err := os.ReadFile(got)
	if err != nil || string(data) != "old deck" {
		t.Errorf("archived content = %q, %v", data, err)
	}

	// A second archive within the same second gets a finer timestamp.
	os.WriteFile(deck, []byte("newer deck"), 0644)
	second, err := Previous(deck)
	if err != nil {
		t.Fatalf("second Previous() failed: %v", err)
	}
	if second == got || !strings.Contains(second, ".123456") {
		t.Errorf("expected unique microsecond name, got %s", second)
	}
}

func TestPreviousDirectory(t *testing.T) {
	tmpDir := t.TempDir()
	media := filepath.Join(tmpDir, "deck_media")
	os.MkdirAll(media, 0755)
	os.WriteFile(filepath.Join(media, "laconic.mp3"), []byte("audio"), 0644)

	got, err := Previous(media)
	if err != nil {
		t.Fatalf("Previous() failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(got, "laconic.mp3")); err != nil {
		t.Errorf("archived directory lost its files: %v", err)
	}
}

func TestPreviousMissing(t *testing.T) {
	got, err := Previous(filepath.Join(t.TempDir(), "nothing.csv"))
	if err != nil || got != "" {
		t.Errorf("Previous() = %q, %v; want empty, nil", got, err)
	}
}
