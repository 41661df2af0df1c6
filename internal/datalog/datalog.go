// Package datalog is the append-only local store of accepted readings: one
// CSV row per reading, opened and closed per write, header written lazily
// the first time the file is created.
package datalog

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/Pyxl-Jim/ESP32-Wifi-Thermometer/internal/sensor"
)

var header = []string{"timestamp", "temperature_celsius", "humidity_rh"}

type Appender struct {
	path string
}

func NewAppender(path string) *Appender {
	return &Appender{path: path}
}

// Append writes one reading. The humidity column stays blank when the active
// sensor variant has no humidity channel.
func (a *Appender) Append(timestamp string, r sensor.Reading) error {
	if dir := filepath.Dir(a.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir %s: %w", dir, err)
		}
	}

	_, statErr := os.Stat(a.path)
	writeHeader := os.IsNotExist(statErr)

	f, err := os.OpenFile(a.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open data file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if writeHeader {
		if err := w.Write(header); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
	}

	humidity := ""
	if r.HumidityPct != nil {
		humidity = strconv.FormatFloat(*r.HumidityPct, 'f', 1, 64)
	}
	row := []string{
		timestamp,
		strconv.FormatFloat(r.TemperatureC, 'f', 2, 64),
		humidity,
	}
	if err := w.Write(row); err != nil {
		return fmt.Errorf("write row: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush data file: %w", err)
	}
	return nil
}
