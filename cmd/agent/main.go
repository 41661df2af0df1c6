package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Pyxl-Jim/ESP32-Wifi-Thermometer/internal/agent"
	"github.com/Pyxl-Jim/ESP32-Wifi-Thermometer/internal/config"
	"github.com/Pyxl-Jim/ESP32-Wifi-Thermometer/internal/datalog"
	"github.com/Pyxl-Jim/ESP32-Wifi-Thermometer/internal/logging"
	"github.com/Pyxl-Jim/ESP32-Wifi-Thermometer/internal/sensor"
	"github.com/Pyxl-Jim/ESP32-Wifi-Thermometer/internal/statusled"
	"github.com/Pyxl-Jim/ESP32-Wifi-Thermometer/internal/telemetry"
	"github.com/Pyxl-Jim/ESP32-Wifi-Thermometer/internal/timesync"
	"github.com/Pyxl-Jim/ESP32-Wifi-Thermometer/internal/wakestate"
	"github.com/Pyxl-Jim/ESP32-Wifi-Thermometer/internal/wifi"
)

var version = "dev"
var appName = "wifi-thermometer"

func main() {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	clock := timesync.NewClock()
	logger := logging.New(cfg, version, appName, clock)
	slog.SetDefault(logger)

	slog.Info("starting",
		"app", appName,
		"version", version,
		"env", cfg.AppEnv,
		"sensor", cfg.SensorType,
		"device", cfg.DeviceName,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := wakestate.Open(cfg.StateFile)
	if err != nil {
		slog.Error("open wake state", "error", err)
		os.Exit(1)
	}

	probe, err := sensor.NewProbe(cfg, logger)
	if err != nil {
		slog.Error("select sensor probe", "error", err)
		os.Exit(1)
	}

	var blinker statusled.Blinker
	led, err := statusled.NewLED(cfg.LEDPin)
	if err != nil {
		slog.Warn("status LED unavailable, signals are log-only", "error", err)
		blinker = statusled.Nop{}
	} else {
		blinker = led
	}

	a := agent.New(
		cfg,
		logger,
		clock,
		store,
		probe,
		wifi.NewManager(cfg, &wifi.NMCLIRadio{Iface: cfg.WifiIface}, logger),
		timesync.NewSyncer(cfg, clock, logger),
		datalog.NewAppender(cfg.DataFile),
		telemetry.NewSender(cfg, logger),
		blinker,
		func(d time.Duration) { agent.Suspend(logger, d) },
	)

	// One wake cycle per process; the suspend primitive does not return.
	a.RunCycle(ctx)
}
