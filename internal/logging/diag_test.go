package logging

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type fixedStamper string

func (s fixedStamper) LogStamp() string { return string(s) }

func diagLogger(t *testing.T, stamper Stamper) (*slog.Logger, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "thermometer.log")
	return slog.New(NewDiagHandler(path, slog.LevelInfo, stamper)), path
}

func readLines(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return strings.Split(strings.TrimRight(string(data), "\n"), "\n")
}

func TestDiagHandler_LineFormat(t *testing.T) {
	log, path := diagLogger(t, fixedStamper("2026-03-14T09:26:53"))

	log.Info("WiFi connected", "ssid", "home")

	lines := readLines(t, path)
	if len(lines) != 1 {
		t.Fatalf("got %d lines, want 1: %v", len(lines), lines)
	}
	want := "[2026-03-14T09:26:53] WiFi connected ssid=home"
	if lines[0] != want {
		t.Errorf("line = %q, want %q", lines[0], want)
	}
}

func TestDiagHandler_EmptyStampWhenUnsynced(t *testing.T) {
	log, path := diagLogger(t, fixedStamper(""))

	log.Warn("NTP sync failed")

	lines := readLines(t, path)
	if lines[0] != "[] NTP sync failed" {
		t.Errorf("line = %q, want %q", lines[0], "[] NTP sync failed")
	}
}

func TestDiagHandler_AppendsAcrossWrites(t *testing.T) {
	log, path := diagLogger(t, fixedStamper("ts"))

	log.Info("first")
	log.Info("second")

	lines := readLines(t, path)
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2: %v", len(lines), lines)
	}
	if lines[0] != "[ts] first" || lines[1] != "[ts] second" {
		t.Errorf("lines = %v", lines)
	}
}

func TestDiagHandler_LevelFilter(t *testing.T) {
	log, path := diagLogger(t, fixedStamper("ts"))

	log.Debug("hidden")

	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("debug record should not create the file, stat err = %v", err)
	}
}

func TestDiagHandler_WithAttrs(t *testing.T) {
	log, path := diagLogger(t, fixedStamper("ts"))

	log.With("boot", 3).Info("sleeping")

	lines := readLines(t, path)
	if lines[0] != "[ts] sleeping boot=3" {
		t.Errorf("line = %q, want %q", lines[0], "[ts] sleeping boot=3")
	}
}

func TestDiagHandler_CreatesParentDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "agent.log")
	log := slog.New(NewDiagHandler(path, slog.LevelInfo, fixedStamper("ts")))

	log.Info("hello")

	lines := readLines(t, path)
	if lines[0] != "[ts] hello" {
		t.Errorf("line = %q, want %q", lines[0], "[ts] hello")
	}
}
