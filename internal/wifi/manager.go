// Package wifi joins one of a candidate set of wireless networks within a
// single bounded timeout window per wake cycle. There is no retry after the
// window is exhausted; the next wake cycle is the retry.
package wifi

import (
	"context"
	"log/slog"
	"time"

	"github.com/Pyxl-Jim/ESP32-Wifi-Thermometer/internal/config"
)

// Radio is the thin boundary to the wireless hardware. The production
// implementation shells out to nmcli; tests substitute a fake.
type Radio interface {
	// Connected reports whether the station is currently associated.
	Connected() bool
	// Connect attempts association with one candidate network. An error
	// means this candidate is not reachable right now, not a fatal fault.
	Connect(ctx context.Context, n config.WifiNetwork) error
	// Active returns the associated SSID and assigned IP, when connected.
	Active() (ssid, ip string, ok bool)
	// Disconnect drops the association and powers the radio down.
	Disconnect() error
}

type Manager struct {
	networks []config.WifiNetwork
	timeout  time.Duration
	poll     time.Duration
	radio    Radio
	logger   *slog.Logger

	now   func() time.Time
	sleep func(time.Duration)
}

func NewManager(cfg config.Config, radio Radio, logger *slog.Logger) *Manager {
	return &Manager{
		networks: cfg.Networks,
		timeout:  cfg.WifiTimeout,
		poll:     cfg.WifiPollInterval,
		radio:    radio,
		logger:   logger,
		now:      time.Now,
		sleep:    time.Sleep,
	}
}

// Join tries the candidate networks, polling until one associates or the
// timeout window closes. Exactly one window per cycle.
func (m *Manager) Join(ctx context.Context) bool {
	if m.radio.Connected() {
		return true
	}
	if len(m.networks) == 0 {
		m.logger.Warn("no WiFi networks configured")
		return false
	}

	m.logger.Info("connecting to WiFi")
	deadline := m.now().Add(m.timeout)
	for {
		for _, n := range m.networks {
			if err := m.radio.Connect(ctx, n); err != nil {
				m.logger.Debug("join attempt failed", "ssid", n.SSID, "error", err)
				continue
			}
			if m.radio.Connected() {
				ssid, ip, _ := m.radio.Active()
				m.logger.Info("WiFi connected", "ssid", ssid, "ip", ip)
				return true
			}
		}
		if !m.now().Before(deadline) {
			m.logger.Warn("WiFi connection timed out", "timeout", m.timeout)
			return false
		}
		m.sleep(m.poll)
	}
}

// Release disengages the radio before suspension; failures are logged only.
func (m *Manager) Release() {
	if err := m.radio.Disconnect(); err != nil {
		m.logger.Warn("WiFi disconnect failed", "error", err)
	}
}
