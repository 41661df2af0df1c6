// Package sensor acquires and validates one environmental reading per wake
// cycle. Two interchangeable probes exist: a single-channel 1-Wire
// thermometer (DS18B20 class) and a dual-channel temperature/humidity sensor
// (BME280 class). Validation is strategy-local; an invalid value rejects the
// whole reading with no retry within the cycle.
package sensor

import (
	"context"
	"fmt"
	"log/slog"

	"periph.io/x/conn/v3/physic"

	"github.com/Pyxl-Jim/ESP32-Wifi-Thermometer/internal/config"
)

// Reading is one accepted measurement. Never mutated after creation.
type Reading struct {
	TemperatureC float64
	HumidityPct  *float64
}

// Probe is the capability the orchestrator programs against. Init reserves
// the hardware; Acquire returns (reading, true) or (zero, false) when the
// sensor produced no trustworthy value this cycle. Close releases the bus
// and is safe after a failed Init.
type Probe interface {
	Init(ctx context.Context) error
	Acquire(ctx context.Context) (Reading, bool)
	Close() error
}

// senser is what both periph devices expose for one measurement.
type senser interface {
	Sense(env *physic.Env) error
}

func senseCelsius(d senser) (float64, error) {
	var env physic.Env
	if err := d.Sense(&env); err != nil {
		return 0, err
	}
	return env.Temperature.Celsius(), nil
}

func senseChannels(d senser) (tempC, humidityPct float64, err error) {
	var env physic.Env
	if err := d.Sense(&env); err != nil {
		return 0, 0, err
	}
	// env.Humidity is fixed point at 0.00001 %rH precision.
	return env.Temperature.Celsius(), float64(env.Humidity) / 100000.0, nil
}

// NewProbe selects the probe strategy once, from configuration.
func NewProbe(cfg config.Config, logger *slog.Logger) (Probe, error) {
	switch cfg.SensorType {
	case "ds18b20":
		return newDS18B20Probe(logger), nil
	case "bme280":
		return newBME280Probe(logger), nil
	default:
		return nil, fmt.Errorf("unknown sensor type %q", cfg.SensorType)
	}
}

// Single-channel (DS18B20) limits. The sensor reports disconnectedC when the
// bus sees no powered device; that sentinel is checked before the range so a
// wiring fault is reported as such rather than as an out-of-range value.
const (
	disconnectedC = -127.0
	singleMinC    = -55.0
	singleMaxC    = 125.0
)

// Dual-channel (BME280/AHT class) limits.
const (
	dualMinC    = -40.0
	dualMaxC    = 85.0
	humidityMin = 0.0
	humidityMax = 100.0
)

// validSingle reports whether a single-channel temperature is trustworthy.
// Sentinel before range: -127 is also out of range, but the distinction
// matters for diagnostics.
func validSingle(tempC float64, logger *slog.Logger) bool {
	if tempC == disconnectedC {
		logger.Error("sensor error: device disconnected")
		return false
	}
	if tempC < singleMinC || tempC > singleMaxC {
		logger.Error("sensor error: reading out of range", "temperature_c", tempC)
		return false
	}
	return true
}

// validDual validates both channels independently; either failing rejects
// the reading.
func validDual(tempC, humidityPct float64, logger *slog.Logger) bool {
	if tempC < dualMinC || tempC > dualMaxC {
		logger.Error("sensor error: temperature out of range", "temperature_c", tempC)
		return false
	}
	if humidityPct < humidityMin || humidityPct > humidityMax {
		logger.Error("sensor error: humidity out of range", "humidity_pct", humidityPct)
		return false
	}
	return true
}
