package sensor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"periph.io/x/conn/v3/onewire"
	"periph.io/x/conn/v3/onewire/onewirereg"
	"periph.io/x/devices/v3/ds18b20"
	"periph.io/x/host/v3"
)

// warmupDelay covers the DS18B20's first conversion after power-up, which
// returns a fixed power-on default instead of a measurement.
const warmupDelay = 800 * time.Millisecond

// ds18b20Probe is the single-channel strategy: temperature only, one warm-up
// acquisition discarded before a value is trusted.
type ds18b20Probe struct {
	logger *slog.Logger

	bus   onewire.BusCloser
	dev   *ds18b20.Dev
	read  func() (float64, error)
	sleep func(time.Duration)
}

func newDS18B20Probe(logger *slog.Logger) *ds18b20Probe {
	return &ds18b20Probe{logger: logger, sleep: time.Sleep}
}

func (p *ds18b20Probe) Init(ctx context.Context) error {
	if _, err := host.Init(); err != nil {
		return fmt.Errorf("host init: %w", err)
	}
	bus, err := onewirereg.Open("")
	if err != nil {
		return fmt.Errorf("open 1-wire bus: %w", err)
	}
	addrs, err := bus.Search(false)
	if err != nil {
		_ = bus.Close()
		return fmt.Errorf("1-wire search: %w", err)
	}
	if len(addrs) == 0 {
		_ = bus.Close()
		return errors.New("no DS18B20 sensor found")
	}
	dev, err := ds18b20.New(bus, addrs[0], 12)
	if err != nil {
		_ = bus.Close()
		return fmt.Errorf("ds18b20 init: %w", err)
	}
	p.bus = bus
	p.dev = dev
	p.read = func() (float64, error) {
		return senseCelsius(dev)
	}
	return nil
}

func (p *ds18b20Probe) Acquire(ctx context.Context) (Reading, bool) {
	// First conversion after power-up is the fixed power-on default; read
	// once, discard, wait out the conversion time, read again.
	if _, err := p.read(); err != nil {
		p.logger.Error("sensor error: warm-up read failed", "error", err)
		return Reading{}, false
	}
	p.sleep(warmupDelay)

	tempC, err := p.read()
	if err != nil {
		p.logger.Error("sensor error: read failed", "error", err)
		return Reading{}, false
	}
	if !validSingle(tempC, p.logger) {
		return Reading{}, false
	}
	return Reading{TemperatureC: tempC}, true
}

// Close releases the 1-wire bus; safe to call after a failed Init.
func (p *ds18b20Probe) Close() error {
	if p.bus == nil {
		return nil
	}
	return p.bus.Close()
}
