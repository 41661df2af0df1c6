package datalog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Pyxl-Jim/ESP32-Wifi-Thermometer/internal/sensor"
)

func readLines(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return strings.Split(strings.TrimRight(string(data), "\n"), "\n")
}

func TestAppend_WritesHeaderOnceLazily(t *testing.T) {
	path := filepath.Join(t.TempDir(), "temperature_data.csv")
	a := NewAppender(path)

	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatal("file must not exist before first append")
	}

	if err := a.Append("2026-03-14T09:26:53", sensor.Reading{TemperatureC: 23.45}); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := a.Append("2026-03-14T09:27:03", sensor.Reading{TemperatureC: 23.5}); err != nil {
		t.Fatalf("Append: %v", err)
	}

	lines := readLines(t, path)
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want header + 2 rows: %v", len(lines), lines)
	}
	if lines[0] != "timestamp,temperature_celsius,humidity_rh" {
		t.Errorf("header = %q", lines[0])
	}
	if lines[1] != "2026-03-14T09:26:53,23.45," {
		t.Errorf("row 1 = %q, want %q", lines[1], "2026-03-14T09:26:53,23.45,")
	}
	if lines[2] != "2026-03-14T09:27:03,23.50," {
		t.Errorf("row 2 = %q, want %q", lines[2], "2026-03-14T09:27:03,23.50,")
	}
}

func TestAppend_HumidityColumn(t *testing.T) {
	path := filepath.Join(t.TempDir(), "temperature_data.csv")
	a := NewAppender(path)

	humidity := 48.25
	if err := a.Append("boot-3", sensor.Reading{TemperatureC: 21.3, HumidityPct: &humidity}); err != nil {
		t.Fatalf("Append: %v", err)
	}

	lines := readLines(t, path)
	if lines[1] != "boot-3,21.30,48.2" {
		t.Errorf("row = %q, want %q (humidity at 1 decimal)", lines[1], "boot-3,21.30,48.2")
	}
}

func TestAppend_NoHeaderRewriteOnExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "temperature_data.csv")
	a := NewAppender(path)

	if err := a.Append("boot-1", sensor.Reading{TemperatureC: 20.0}); err != nil {
		t.Fatalf("Append: %v", err)
	}

	// A fresh Appender over the same file must not write a second header.
	b := NewAppender(path)
	if err := b.Append("boot-2", sensor.Reading{TemperatureC: 20.5}); err != nil {
		t.Fatalf("Append: %v", err)
	}

	lines := readLines(t, path)
	headerCount := 0
	for _, l := range lines {
		if strings.HasPrefix(l, "timestamp,") {
			headerCount++
		}
	}
	if headerCount != 1 {
		t.Errorf("header written %d times, want exactly once", headerCount)
	}
}

func TestAppend_CreatesParentDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deep", "dir", "data.csv")
	a := NewAppender(path)

	if err := a.Append("boot-1", sensor.Reading{TemperatureC: 19.9}); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if lines := readLines(t, path); lines[1] != "boot-1,19.90," {
		t.Errorf("row = %q, want %q", lines[1], "boot-1,19.90,")
	}
}
