// Package statusled maps cycle outcomes to blink patterns on a simple
// on/off signal device. The LED is the only user-visible surface besides the
// diagnostic log.
package statusled

import (
	"fmt"
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"
)

// Pattern is a fixed number of on/off pulses of one duration class.
type Pattern struct {
	Count    int
	Interval time.Duration
}

const (
	fast   = 50 * time.Millisecond
	normal = 100 * time.Millisecond
	slow   = 200 * time.Millisecond
)

// The outcome table. One outcome signal per cycle; FirstBoot and Joined are
// event indicators emitted where the event occurs.
var (
	FirstBoot   = Pattern{Count: 1, Interval: slow}
	Joined      = Pattern{Count: 2, Interval: normal}
	Delivered   = Pattern{Count: 1, Interval: normal}
	Degraded    = Pattern{Count: 3, Interval: fast}
	FatalSensor = Pattern{Count: 5, Interval: fast}
)

// Blinker emits one pattern. Implementations must be safe to call with any
// table pattern.
type Blinker interface {
	Blink(p Pattern)
}

// LED drives a GPIO pin through periph.
type LED struct {
	pin   gpio.PinIO
	sleep func(time.Duration)
}

func NewLED(pinName string) (*LED, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("host init: %w", err)
	}
	pin := gpioreg.ByName(pinName)
	if pin == nil {
		return nil, fmt.Errorf("no GPIO pin named %q", pinName)
	}
	return &LED{pin: pin, sleep: time.Sleep}, nil
}

func (l *LED) Blink(p Pattern) {
	for i := 0; i < p.Count; i++ {
		_ = l.pin.Out(gpio.High)
		l.sleep(p.Interval)
		_ = l.pin.Out(gpio.Low)
		l.sleep(p.Interval)
	}
}

// Nop is used when no LED is wired; signals become log-only.
type Nop struct{}

func (Nop) Blink(Pattern) {}
