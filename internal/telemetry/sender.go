// Package telemetry delivers one reading per wake cycle to the collector.
// One bounded request, success iff the collector answers exactly 200; any
// other status or a timeout is logged as a failure and left for the next
// wake cycle to retry.
package telemetry

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/Pyxl-Jim/ESP32-Wifi-Thermometer/internal/config"
	"github.com/Pyxl-Jim/ESP32-Wifi-Thermometer/internal/sensor"
)

// Payload is the collector's wire schema.
type Payload struct {
	Temperature float64  `json:"temperature"`
	Unit        string   `json:"unit"`
	Timestamp   string   `json:"timestamp"`
	Device      string   `json:"device"`
	Humidity    *float64 `json:"humidity,omitempty"`
}

type Sender struct {
	client *resty.Client
	url    string
	device string
	logger *slog.Logger
}

func NewSender(cfg config.Config, logger *slog.Logger) *Sender {
	client := resty.New().
		SetTimeout(cfg.HTTPTimeout)
	return &Sender{
		client: client,
		url:    cfg.ServerURL,
		device: cfg.DeviceName,
		logger: logger,
	}
}

// Send posts the reading and reports whether the collector accepted it.
func (s *Sender) Send(r sensor.Reading, timestamp string, wakeCount uint64) bool {
	payload := Payload{
		Temperature: r.TemperatureC,
		Unit:        "celsius",
		Timestamp:   timestamp,
		Device:      s.device,
		Humidity:    r.HumidityPct,
	}

	resp, err := s.client.R().
		SetHeader("Content-Type", "application/json").
		SetBody(payload).
		Post(s.url)
	if err != nil {
		s.logger.Error("server unreachable", "error", err)
		return false
	}
	if resp.StatusCode() != http.StatusOK {
		s.logger.Error("server error", "status", resp.StatusCode())
		return false
	}

	s.logger.Info("reading sent",
		"temperature_c", r.TemperatureC,
		"boot", wakeCount,
		"duration", resp.Time().Round(time.Millisecond),
	)
	return true
}
