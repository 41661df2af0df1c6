package sensor

import (
	"context"
	"fmt"
	"log/slog"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/devices/v3/bmxx80"
	"periph.io/x/host/v3"
)

// bme280Probe is the dual-channel strategy: temperature and relative
// humidity, each channel validated independently.
type bme280Probe struct {
	logger *slog.Logger

	bus  i2c.BusCloser
	dev  *bmxx80.Dev
	read func() (tempC, humidityPct float64, err error)
}

func newBME280Probe(logger *slog.Logger) *bme280Probe {
	return &bme280Probe{logger: logger}
}

func (p *bme280Probe) Init(ctx context.Context) error {
	if _, err := host.Init(); err != nil {
		return fmt.Errorf("host init: %w", err)
	}
	bus, err := i2creg.Open("") // default bus, usually /dev/i2c-1
	if err != nil {
		return fmt.Errorf("open i2c bus: %w", err)
	}
	dev, err := bmxx80.NewI2C(bus, 0x76, &bmxx80.DefaultOpts)
	if err != nil {
		_ = bus.Close()
		return fmt.Errorf("bme280 init: %w", err)
	}
	p.bus = bus
	p.dev = dev
	p.read = func() (float64, float64, error) {
		return senseChannels(dev)
	}
	return nil
}

func (p *bme280Probe) Acquire(ctx context.Context) (Reading, bool) {
	tempC, humidityPct, err := p.read()
	if err != nil {
		p.logger.Error("sensor error: bme280 read failed", "error", err)
		return Reading{}, false
	}
	if !validDual(tempC, humidityPct, p.logger) {
		return Reading{}, false
	}
	return Reading{TemperatureC: tempC, HumidityPct: &humidityPct}, true
}

// Close halts the device and releases the bus; safe after a failed Init.
func (p *bme280Probe) Close() error {
	if p.dev != nil {
		_ = p.dev.Halt()
	}
	if p.bus == nil {
		return nil
	}
	return p.bus.Close()
}
