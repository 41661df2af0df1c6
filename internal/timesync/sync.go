// Package timesync performs best-effort clock synchronization against a pair
// of NTP hosts. Failure is never fatal; it only degrades timestamp fidelity.
package timesync

import (
	"log/slog"
	"time"

	"github.com/beevik/ntp"

	"github.com/Pyxl-Jim/ESP32-Wifi-Thermometer/internal/config"
)

type Syncer struct {
	servers [2]string
	retries int
	delay   time.Duration
	clock   *Clock
	logger  *slog.Logger

	// query and sleep are swappable so tests run without network or waiting.
	query func(host string) (time.Duration, error)
	sleep func(time.Duration)
}

func NewSyncer(cfg config.Config, clock *Clock, logger *slog.Logger) *Syncer {
	return &Syncer{
		servers: cfg.NTPServers,
		retries: cfg.NTPRetries,
		delay:   cfg.NTPRetryDelay,
		clock:   clock,
		logger:  logger,
		query:   queryNTP,
		sleep:   time.Sleep,
	}
}

// Sync attempts one synchronization round: up to the configured retry count,
// alternating between the two hosts, with a fixed delay between attempts.
// On success it marks the clock synced and returns true.
func (s *Syncer) Sync() bool {
	for attempt := 0; attempt < s.retries; attempt++ {
		host := s.servers[attempt%2]
		offset, err := s.query(host)
		if err != nil {
			s.logger.Debug("ntp query failed", "host", host, "attempt", attempt+1, "error", err)
			if attempt+1 < s.retries {
				s.sleep(s.delay)
			}
			continue
		}
		s.clock.MarkSynced(offset)
		s.logger.Info("time synced", "timestamp", s.clock.Timestamp(), "host", host)
		return true
	}
	s.logger.Warn("ntp sync failed", "attempts", s.retries)
	return false
}

func queryNTP(host string) (time.Duration, error) {
	resp, err := ntp.Query(host)
	if err != nil {
		return 0, err
	}
	if err := resp.Validate(); err != nil {
		return 0, err
	}
	return resp.ClockOffset, nil
}
