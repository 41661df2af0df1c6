package telemetry

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Pyxl-Jim/ESP32-Wifi-Thermometer/internal/config"
	"github.com/Pyxl-Jim/ESP32-Wifi-Thermometer/internal/sensor"
)

func testSender(t *testing.T, handler http.HandlerFunc) *Sender {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewSender(config.Config{
		ServerURL:   srv.URL,
		DeviceName:  "test-device",
		HTTPTimeout: 2 * time.Second,
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestSend_SuccessOn200(t *testing.T) {
	var got map[string]any
	var contentType string
	s := testSender(t, func(w http.ResponseWriter, r *http.Request) {
		contentType = r.Header.Get("Content-Type")
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	})

	if !s.Send(sensor.Reading{TemperatureC: 23.45}, "2026-03-14T09:26:53", 1) {
		t.Fatal("Send() = false, want true")
	}

	if contentType != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", contentType)
	}
	if got["temperature"] != 23.45 {
		t.Errorf("temperature = %v, want 23.45", got["temperature"])
	}
	if got["unit"] != "celsius" {
		t.Errorf("unit = %v, want celsius", got["unit"])
	}
	if got["timestamp"] != "2026-03-14T09:26:53" {
		t.Errorf("timestamp = %v", got["timestamp"])
	}
	if got["device"] != "test-device" {
		t.Errorf("device = %v, want test-device", got["device"])
	}
	if _, present := got["humidity"]; present {
		t.Error("humidity present in payload for single-channel reading")
	}
}

func TestSend_HumidityIncludedWhenPresent(t *testing.T) {
	var got map[string]any
	s := testSender(t, func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	})

	humidity := 48.2
	if !s.Send(sensor.Reading{TemperatureC: 21.3, HumidityPct: &humidity}, "boot-2", 2) {
		t.Fatal("Send() = false, want true")
	}
	if got["humidity"] != 48.2 {
		t.Errorf("humidity = %v, want 48.2", got["humidity"])
	}
}

func TestSend_NonSuccessStatusesFail(t *testing.T) {
	for _, status := range []int{http.StatusCreated, http.StatusAccepted, http.StatusInternalServerError, http.StatusNotFound} {
		s := testSender(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
		})
		if s.Send(sensor.Reading{TemperatureC: 20.0}, "boot-1", 1) {
			t.Errorf("Send() = true for status %d, want false (only 200 succeeds)", status)
		}
	}
}

func TestSend_TimeoutFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	t.Cleanup(srv.Close)

	s := NewSender(config.Config{
		ServerURL:   srv.URL,
		DeviceName:  "test-device",
		HTTPTimeout: 20 * time.Millisecond,
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))

	if s.Send(sensor.Reading{TemperatureC: 20.0}, "boot-1", 1) {
		t.Error("Send() = true on timeout, want false")
	}
}
