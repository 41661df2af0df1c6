package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// WifiNetwork is one candidate access point the agent may join.
type WifiNetwork struct {
	SSID string
	PSK  string
}

type Config struct {
	AppEnv   string
	LogLevel slog.Level

	Networks         []WifiNetwork
	WifiIface        string
	WifiTimeout      time.Duration
	WifiPollInterval time.Duration

	ServerURL   string
	DeviceName  string
	HTTPTimeout time.Duration

	NTPServers           [2]string
	NTPRetries           int
	NTPRetryDelay        time.Duration
	NTPSyncIntervalBoots uint64

	SensorType string
	LEDPin     string

	ReadingInterval time.Duration

	DataFile  string
	LogFile   string
	StateFile string
}

func LoadFromEnv() (Config, error) {
	// Optional .env for dev setups; real deployments set the environment.
	_ = godotenv.Load()

	appEnv := strings.TrimSpace(os.Getenv("APP_ENV"))
	if appEnv == "" {
		appEnv = "dev"
	}
	switch appEnv {
	case "dev", "prod":
	default:
		return Config{}, fmt.Errorf("invalid APP_ENV %q (allowed: dev, prod)", appEnv)
	}

	logLevelStr := strings.TrimSpace(os.Getenv("LOG_LEVEL"))
	if logLevelStr == "" {
		logLevelStr = "info"
	}
	level, err := parseLogLevel(logLevelStr)
	if err != nil {
		return Config{}, err
	}

	networksStr := strings.TrimSpace(os.Getenv("WIFI_NETWORKS"))
	networks, err := parseNetworks(networksStr)
	if err != nil {
		return Config{}, err
	}

	wifiIface := strings.TrimSpace(os.Getenv("WIFI_IFACE"))
	if wifiIface == "" {
		wifiIface = "wlan0"
	}

	wifiTimeout, err := durationVar("WIFI_TIMEOUT", "20s")
	if err != nil {
		return Config{}, err
	}

	wifiPoll, err := durationVar("WIFI_POLL_INTERVAL", "500ms")
	if err != nil {
		return Config{}, err
	}
	if wifiPoll <= 0 {
		return Config{}, fmt.Errorf("WIFI_POLL_INTERVAL must be positive, got %v", wifiPoll)
	}

	serverURL := strings.TrimSpace(os.Getenv("SERVER_URL"))
	if serverURL == "" {
		serverURL = "https://wifitemp.jpmac.com"
	}

	deviceName := strings.TrimSpace(os.Getenv("DEVICE_NAME"))
	if deviceName == "" {
		deviceName = "wifitherm"
	}

	httpTimeout, err := durationVar("HTTP_TIMEOUT", "10s")
	if err != nil {
		return Config{}, err
	}

	ntpServersStr := strings.TrimSpace(os.Getenv("NTP_SERVERS"))
	if ntpServersStr == "" {
		ntpServersStr = "pool.ntp.org,time.nist.gov"
	}
	ntpServers, err := parseNTPServers(ntpServersStr)
	if err != nil {
		return Config{}, err
	}

	ntpRetriesStr := strings.TrimSpace(os.Getenv("NTP_RETRIES"))
	if ntpRetriesStr == "" {
		ntpRetriesStr = "10"
	}
	ntpRetries, err := strconv.Atoi(ntpRetriesStr)
	if err != nil {
		return Config{}, fmt.Errorf("invalid NTP_RETRIES %q: %w", ntpRetriesStr, err)
	}
	if ntpRetries < 1 {
		return Config{}, fmt.Errorf("NTP_RETRIES must be at least 1, got %d", ntpRetries)
	}

	ntpRetryDelay, err := durationVar("NTP_RETRY_DELAY", "500ms")
	if err != nil {
		return Config{}, err
	}

	syncIntervalStr := strings.TrimSpace(os.Getenv("NTP_SYNC_INTERVAL_BOOTS"))
	if syncIntervalStr == "" {
		syncIntervalStr = "20"
	}
	syncInterval, err := strconv.ParseUint(syncIntervalStr, 10, 64)
	if err != nil {
		return Config{}, fmt.Errorf("invalid NTP_SYNC_INTERVAL_BOOTS %q: %w", syncIntervalStr, err)
	}
	if syncInterval == 0 {
		return Config{}, fmt.Errorf("NTP_SYNC_INTERVAL_BOOTS must be positive")
	}

	sensorType := strings.TrimSpace(os.Getenv("SENSOR_TYPE"))
	if sensorType == "" {
		sensorType = "ds18b20"
	}
	switch sensorType {
	case "ds18b20", "bme280":
	default:
		return Config{}, fmt.Errorf("invalid SENSOR_TYPE %q (allowed: ds18b20, bme280)", sensorType)
	}

	ledPin := strings.TrimSpace(os.Getenv("LED_PIN"))
	if ledPin == "" {
		ledPin = "GPIO2"
	}

	readingInterval, err := durationVar("READING_INTERVAL", "10s")
	if err != nil {
		return Config{}, err
	}
	if readingInterval <= 0 {
		return Config{}, fmt.Errorf("READING_INTERVAL must be positive, got %v", readingInterval)
	}

	dataFile := strings.TrimSpace(os.Getenv("DATA_FILE"))
	if dataFile == "" {
		dataFile = "data/temperature_data.csv"
	}

	logFile := strings.TrimSpace(os.Getenv("LOG_FILE"))
	if logFile == "" {
		logFile = "data/thermometer.log"
	}

	stateFile := strings.TrimSpace(os.Getenv("STATE_FILE"))
	if stateFile == "" {
		stateFile = "data/wakestate.db"
	}

	return Config{
		AppEnv:               appEnv,
		LogLevel:             level,
		Networks:             networks,
		WifiIface:            wifiIface,
		WifiTimeout:          wifiTimeout,
		WifiPollInterval:     wifiPoll,
		ServerURL:            serverURL,
		DeviceName:           deviceName,
		HTTPTimeout:          httpTimeout,
		NTPServers:           ntpServers,
		NTPRetries:           ntpRetries,
		NTPRetryDelay:        ntpRetryDelay,
		NTPSyncIntervalBoots: syncInterval,
		SensorType:           sensorType,
		LEDPin:               ledPin,
		ReadingInterval:      readingInterval,
		DataFile:             dataFile,
		LogFile:              logFile,
		StateFile:            stateFile,
	}, nil
}

// parseNetworks parses WIFI_NETWORKS, a comma-separated list of ssid=psk
// pairs. An empty value is allowed; the agent then runs local-only.
func parseNetworks(s string) ([]WifiNetwork, error) {
	if s == "" {
		return nil, nil
	}
	var networks []WifiNetwork
	for _, pair := range strings.Split(s, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		ssid, psk, ok := strings.Cut(pair, "=")
		if !ok || ssid == "" {
			return nil, fmt.Errorf("invalid WIFI_NETWORKS entry %q (want ssid=psk)", pair)
		}
		networks = append(networks, WifiNetwork{SSID: ssid, PSK: psk})
	}
	return networks, nil
}

func parseNTPServers(s string) ([2]string, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return [2]string{}, fmt.Errorf("NTP_SERVERS wants exactly 2 hosts, got %q", s)
	}
	var servers [2]string
	for i, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			return [2]string{}, fmt.Errorf("NTP_SERVERS has an empty host in %q", s)
		}
		servers[i] = p
	}
	return servers, nil
}

func durationVar(name, def string) (time.Duration, error) {
	s := strings.TrimSpace(os.Getenv(name))
	if s == "" {
		s = def
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", name, s, err)
	}
	return d, nil
}

func parseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid LOG_LEVEL %q (allowed: debug, info, warn, error)", s)
	}
}
