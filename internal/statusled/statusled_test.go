package statusled

import (
	"testing"
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"
)

func TestPatternTable(t *testing.T) {
	tests := []struct {
		name     string
		pattern  Pattern
		count    int
		interval time.Duration
	}{
		{name: "fatal sensor", pattern: FatalSensor, count: 5, interval: 50 * time.Millisecond},
		{name: "joined", pattern: Joined, count: 2, interval: 100 * time.Millisecond},
		{name: "delivered", pattern: Delivered, count: 1, interval: 100 * time.Millisecond},
		{name: "degraded", pattern: Degraded, count: 3, interval: 50 * time.Millisecond},
		{name: "first boot", pattern: FirstBoot, count: 1, interval: 200 * time.Millisecond},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.pattern.Count != tt.count {
				t.Errorf("Count = %d, want %d", tt.pattern.Count, tt.count)
			}
			if tt.pattern.Interval != tt.interval {
				t.Errorf("Interval = %v, want %v", tt.pattern.Interval, tt.interval)
			}
		})
	}
}

func TestLED_BlinkPulsesPin(t *testing.T) {
	pin := &gpiotest.Pin{N: "TEST1"}
	var slept []time.Duration
	led := &LED{pin: pin, sleep: func(d time.Duration) { slept = append(slept, d) }}

	led.Blink(Degraded)

	// Three pulses, each an on and an off interval.
	if len(slept) != 6 {
		t.Fatalf("got %d sleeps, want 6", len(slept))
	}
	for i, d := range slept {
		if d != 50*time.Millisecond {
			t.Errorf("sleep[%d] = %v, want 50ms", i, d)
		}
	}
	if pin.Read() != gpio.Low {
		t.Error("pin left high after pattern")
	}
}
