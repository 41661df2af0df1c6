// Package agent sequences one wake cycle: load wake state, probe the sensor,
// join WiFi, sync the clock, persist the reading, deliver it, signal the
// outcome, suspend. The cycle is the unit of execution; nothing but the
// persisted wake state crosses the suspension boundary.
package agent

import (
	"context"
	"log/slog"
	"time"

	"github.com/Pyxl-Jim/ESP32-Wifi-Thermometer/internal/config"
	"github.com/Pyxl-Jim/ESP32-Wifi-Thermometer/internal/sensor"
	"github.com/Pyxl-Jim/ESP32-Wifi-Thermometer/internal/statusled"
	"github.com/Pyxl-Jim/ESP32-Wifi-Thermometer/internal/timesync"
	"github.com/Pyxl-Jim/ESP32-Wifi-Thermometer/internal/wakestate"
)

// StateStore persists the wake state across suspension.
type StateStore interface {
	Load() (wakestate.State, error)
	Save(wakestate.State) error
	Close() error
}

// Network joins and releases the wireless link.
type Network interface {
	Join(ctx context.Context) bool
	Release()
}

// TimeSyncer performs one best-effort clock synchronization round.
type TimeSyncer interface {
	Sync() bool
}

// Recorder appends one accepted reading to the local log.
type Recorder interface {
	Append(timestamp string, r sensor.Reading) error
}

// Deliverer ships one reading to the collector.
type Deliverer interface {
	Send(r sensor.Reading, timestamp string, wakeCount uint64) bool
}

type Agent struct {
	logger *slog.Logger
	clock  *timesync.Clock

	store  StateStore
	probe  sensor.Probe
	net    Network
	syncer TimeSyncer
	rec    Recorder
	sender Deliverer
	led    statusled.Blinker

	syncEvery uint64
	interval  time.Duration

	// suspend enters low-power suspension and, in production, never
	// returns. Injected so cycle tests can observe the handoff.
	suspend func(time.Duration)
}

func New(
	cfg config.Config,
	logger *slog.Logger,
	clock *timesync.Clock,
	store StateStore,
	probe sensor.Probe,
	net Network,
	syncer TimeSyncer,
	rec Recorder,
	sender Deliverer,
	led statusled.Blinker,
	suspend func(time.Duration),
) *Agent {
	return &Agent{
		logger:    logger,
		clock:     clock,
		store:     store,
		probe:     probe,
		net:       net,
		syncer:    syncer,
		rec:       rec,
		sender:    sender,
		led:       led,
		syncEvery: cfg.NTPSyncIntervalBoots,
		interval:  cfg.ReadingInterval,
		suspend:   suspend,
	}
}

// RunCycle executes exactly one wake cycle and hands control to the
// suspension primitive on every path.
func (a *Agent) RunCycle(ctx context.Context) {
	st, err := a.store.Load()
	if err != nil {
		// A lost state file is a power-loss reset: start from zero.
		a.logger.Warn("wake state unreadable, starting fresh", "error", err)
		st = wakestate.State{}
	}
	st.WakeCount++
	a.clock.SetBoot(st.WakeCount, st.TimeSynced)

	a.logger.Info("wake", "boot", st.WakeCount)
	if st.WakeCount == 1 {
		a.led.Blink(statusled.FirstBoot)
	}

	if err := a.probe.Init(ctx); err != nil {
		a.logger.Error("sensor not found", "error", err)
		a.led.Blink(statusled.FatalSensor)
		a.sleepCycle(st)
		return
	}

	if !a.net.Join(ctx) {
		a.localOnly(ctx, st)
		return
	}
	a.led.Blink(statusled.Joined)

	if !st.TimeSynced || st.WakeCount%a.syncEvery == 0 {
		if a.syncer.Sync() {
			st.TimeSynced = true
		}
	}

	r, ok := a.probe.Acquire(ctx)
	if !ok {
		a.led.Blink(statusled.FatalSensor)
		a.sleepCycle(st)
		return
	}
	timestamp := a.clock.Timestamp()
	a.logMeasurement(r)

	// Every valid reading lands in the local log exactly once, whatever
	// happens to delivery.
	if err := a.rec.Append(timestamp, r); err != nil {
		a.logger.Error("failed to write data file", "error", err)
	}

	if a.sender.Send(r, timestamp, st.WakeCount) {
		a.led.Blink(statusled.Delivered)
	} else {
		a.led.Blink(statusled.Degraded)
	}
	a.sleepCycle(st)
}

// localOnly is the degraded branch after a join timeout: measure, store,
// signal, suspend. No delivery is attempted.
func (a *Agent) localOnly(ctx context.Context, st wakestate.State) {
	a.logger.Warn("no WiFi, storing reading locally only")
	if r, ok := a.probe.Acquire(ctx); ok {
		if err := a.rec.Append(a.clock.Timestamp(), r); err != nil {
			a.logger.Error("failed to write data file", "error", err)
		} else {
			a.logger.Info("stored locally", "temperature_c", r.TemperatureC)
		}
	}
	a.led.Blink(statusled.Degraded)
	a.sleepCycle(st)
}

// sleepCycle is the single exit: release the radio and the sensor bus,
// persist and close the wake state, enter suspension. Every scoped handle is
// dropped here so nothing stays held through suspension.
func (a *Agent) sleepCycle(st wakestate.State) {
	a.net.Release()
	if err := a.probe.Close(); err != nil {
		a.logger.Warn("failed to release sensor bus", "error", err)
	}
	if err := a.store.Save(st); err != nil {
		a.logger.Error("failed to save wake state", "error", err)
	}
	if err := a.store.Close(); err != nil {
		a.logger.Warn("failed to close wake state store", "error", err)
	}
	a.logger.Info("sleeping", "duration", a.interval)
	a.suspend(a.interval)
}

func (a *Agent) logMeasurement(r sensor.Reading) {
	attrs := []any{
		"temperature_c", r.TemperatureC,
		"temperature_f", r.TemperatureC*9.0/5.0 + 32.0,
	}
	if r.HumidityPct != nil {
		attrs = append(attrs, "humidity_pct", *r.HumidityPct)
	}
	a.logger.Info("measured", attrs...)
}
