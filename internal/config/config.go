package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Sensor names accepted in SENSORS_NOT_INSTALLED. A not-installed sensor
// always renders its placeholder in the beacon, regardless of payload
// contents.
var knownSensors = map[string]bool{
	"wind":        true,
	"temperature": true,
	"humidity":    true,
	"pressure":    true,
	"rain":        true,
}

type Config struct {
	AppEnv   string
	LogLevel slog.Level

	// Station identity and beacon output.
	Callsign    string
	Latitude    float64
	Longitude   float64
	SymbolTable byte
	SymbolCode  byte
	Comment     string

	// BeaconFile is the path the APRS packet file is atomically written
	// to; an external igate/TNC consumes it.
	BeaconFile  string
	MinInterval time.Duration

	SensorsNotInstalled map[string]bool

	MQTTBroker   string
	MQTTPort     int
	MQTTClientID string
	MQTTTopic    string

	SQLiteDriver          string
	SQLiteDSN             string
	SQLitePath            string
	SQLiteMaxOpenConns    int
	SQLiteMaxIdleConns    int
	SQLiteConnMaxLifetime time.Duration
}

func LoadFromEnv() (Config, error) {
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

	callsign := strings.TrimSpace(os.Getenv("BEACON_CALLSIGN"))
	if callsign == "" {
		return Config{}, fmt.Errorf("BEACON_CALLSIGN is required")
	}

	lat, err := parseCoordinate("BEACON_LAT", 90)
	if err != nil {
		return Config{}, err
	}
	lon, err := parseCoordinate("BEACON_LON", 180)
	if err != nil {
		return Config{}, err
	}

	symbol := strings.TrimSpace(os.Getenv("BEACON_SYMBOL"))
	if symbol == "" {
		symbol = "/_"
	}
	if len(symbol) != 2 {
		return Config{}, fmt.Errorf("invalid BEACON_SYMBOL %q (want table and code, e.g. \"/_\")", symbol)
	}

	beaconFile := strings.TrimSpace(os.Getenv("BEACON_FILE"))
	if beaconFile == "" {
		beaconFile = "/var/tmp/aprx_wx.txt"
	}

	minIntervalStr := strings.TrimSpace(os.Getenv("BEACON_MIN_INTERVAL"))
	if minIntervalStr == "" {
		minIntervalStr = "60s"
	}
	minInterval, err := time.ParseDuration(minIntervalStr)
	if err != nil {
		return Config{}, fmt.Errorf("invalid BEACON_MIN_INTERVAL %q: %w", minIntervalStr, err)
	}
	if minInterval < 0 {
		return Config{}, fmt.Errorf("invalid BEACON_MIN_INTERVAL %q: must not be negative", minIntervalStr)
	}

	notInstalled := make(map[string]bool)
	for _, name := range strings.Split(os.Getenv("SENSORS_NOT_INSTALLED"), ",") {
		name = strings.TrimSpace(strings.ToLower(name))
		if name == "" {
			continue
		}
		if !knownSensors[name] {
			return Config{}, fmt.Errorf("invalid SENSORS_NOT_INSTALLED entry %q (allowed: wind, temperature, humidity, pressure, rain)", name)
		}
		notInstalled[name] = true
	}

	mqttBroker := strings.TrimSpace(os.Getenv("MQTT_BROKER"))
	if mqttBroker == "" {
		mqttBroker = "localhost"
	}
	mqttPortStr := strings.TrimSpace(os.Getenv("MQTT_PORT"))
	if mqttPortStr == "" {
		mqttPortStr = "1883"
	}
	mqttPort, err := strconv.Atoi(mqttPortStr)
	if err != nil {
		return Config{}, fmt.Errorf("invalid MQTT_PORT %q: %w", mqttPortStr, err)
	}
	mqttClientID := strings.TrimSpace(os.Getenv("MQTT_CLIENT_ID"))
	if mqttClientID == "" {
		mqttClientID = "weewx-aprx"
	}
	mqttTopic := strings.TrimSpace(os.Getenv("MQTT_TOPIC"))
	if mqttTopic == "" {
		mqttTopic = "weather/observations"
	}

	driver := strings.TrimSpace(os.Getenv("DB_DRIVER"))
	if driver == "" {
		driver = "sqlite3"
	}
	dsn := strings.TrimSpace(os.Getenv("SQLITE_DSN"))
	path := strings.TrimSpace(os.Getenv("SQLITE_PATH"))
	if path == "" {
		path = "aprx-archive.db"
	}

	maxOpenConns, err := envInt("DB_MAX_OPEN_CONNS", 1)
	if err != nil {
		return Config{}, err
	}
	maxIdleConns, err := envInt("DB_MAX_IDLE_CONNS", 1)
	if err != nil {
		return Config{}, err
	}

	connMaxLifetimeStr := strings.TrimSpace(os.Getenv("DB_CONN_MAX_LIFETIME"))
	if connMaxLifetimeStr == "" {
		connMaxLifetimeStr = "0s"
	}
	connMaxLifetime, err := time.ParseDuration(connMaxLifetimeStr)
	if err != nil {
		return Config{}, fmt.Errorf("invalid DB_CONN_MAX_LIFETIME %q: %w", connMaxLifetimeStr, err)
	}

	return Config{
		AppEnv:              appEnv,
		LogLevel:            level,
		Callsign:            callsign,
		Latitude:            lat,
		Longitude:           lon,
		SymbolTable:         symbol[0],
		SymbolCode:          symbol[1],
		Comment:             strings.TrimSpace(os.Getenv("BEACON_COMMENT")),
		BeaconFile:          beaconFile,
		MinInterval:         minInterval,
		SensorsNotInstalled: notInstalled,

		MQTTBroker:   mqttBroker,
		MQTTPort:     mqttPort,
		MQTTClientID: mqttClientID,
		MQTTTopic:    mqttTopic,

		SQLiteDriver:          driver,
		SQLiteDSN:             dsn,
		SQLitePath:            path,
		SQLiteMaxOpenConns:    maxOpenConns,
		SQLiteMaxIdleConns:    maxIdleConns,
		SQLiteConnMaxLifetime: connMaxLifetime,
	}, nil
}

func parseCoordinate(key string, limit float64) (float64, error) {
	s := strings.TrimSpace(os.Getenv(key))
	if s == "" {
		return 0, fmt.Errorf("%s is required", key)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, s, err)
	}
	if v < -limit || v > limit {
		return 0, fmt.Errorf("invalid %s %q: out of range [-%g, %g]", key, s, limit, limit)
	}
	return v, nil
}

func envInt(key string, def int) (int, error) {
	s := strings.TrimSpace(os.Getenv(key))
	if s == "" {
		return def, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, s, err)
	}
	return v, nil
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
