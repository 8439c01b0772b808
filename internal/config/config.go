package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/strefethen/sonos-gateway-go/internal/gateway"
)

// Defaults for the two external collaborators. These match the LAN layout
// the service was originally deployed against.
const (
	DefaultSonosAPIURL    = "http://192.168.0.5:5005"
	DefaultFileServerHost = "192.168.0.6/mp3"
)

// Config holds the full service configuration. Loaded once at startup and
// treated as immutable afterwards.
type Config struct {
	Host         string
	Port         string
	SQLiteDBPath string

	// SonosAPIURL is the node-sonos-http-api base URL.
	SonosAPIURL string
	// FileServerHost is the share host/prefix used to build x-file-cifs URIs.
	FileServerHost string
	// PlaybackStrategy selects how tracks are submitted: "share" or "clip".
	PlaybackStrategy gateway.PlaybackStrategy
	SonosTimeoutMs   int

	HistoryRetentionDays int
	// HistoryPruneSchedule is a 5-field cron expression.
	HistoryPruneSchedule string

	StatePushIntervalMs int
}

// fileConfig is the optional YAML overlay. Every field is optional; unset
// fields keep their default or env value.
type fileConfig struct {
	Host                 string `yaml:"host,omitempty"`
	Port                 string `yaml:"port,omitempty"`
	SQLiteDBPath         string `yaml:"sqlite_db_path,omitempty"`
	SonosAPIURL          string `yaml:"sonos_api_url,omitempty"`
	FileServerHost       string `yaml:"file_server_host,omitempty"`
	PlaybackStrategy     string `yaml:"playback_strategy,omitempty"`
	SonosTimeoutMs       int    `yaml:"sonos_timeout_ms,omitempty"`
	HistoryRetentionDays int    `yaml:"history_retention_days,omitempty"`
	HistoryPruneSchedule string `yaml:"history_prune_schedule,omitempty"`
	StatePushIntervalMs  int    `yaml:"state_push_interval_ms,omitempty"`
}

// Load builds the configuration from defaults, an optional YAML file and
// environment variables, in that order of precedence. The file path comes
// from GATEWAY_CONFIG_PATH and defaults to ./config.yaml; a missing file is
// not an error.
func Load() (Config, error) {
	cfg := Config{
		Host:                 "0.0.0.0",
		Port:                 "9000",
		SQLiteDBPath:         "./data/sonos-gateway.db",
		SonosAPIURL:          DefaultSonosAPIURL,
		FileServerHost:       DefaultFileServerHost,
		PlaybackStrategy:     gateway.StrategyShare,
		SonosTimeoutMs:       5000,
		HistoryRetentionDays: 90,
		HistoryPruneSchedule: "0 3 * * *",
		StatePushIntervalMs:  2000,
	}

	path := envString("GATEWAY_CONFIG_PATH", "./config.yaml")
	if err := applyFile(&cfg, path); err != nil {
		return Config{}, err
	}
	applyEnv(&cfg)

	switch cfg.PlaybackStrategy {
	case gateway.StrategyShare, gateway.StrategyClip:
	default:
		return Config{}, fmt.Errorf("invalid playback strategy %q (want %q or %q)",
			cfg.PlaybackStrategy, gateway.StrategyShare, gateway.StrategyClip)
	}

	if cfg.SonosTimeoutMs <= 0 {
		return Config{}, fmt.Errorf("sonos timeout must be positive, got %d", cfg.SonosTimeoutMs)
	}
	if cfg.HistoryRetentionDays <= 0 {
		return Config{}, fmt.Errorf("history retention must be positive, got %d", cfg.HistoryRetentionDays)
	}
	if cfg.StatePushIntervalMs <= 0 {
		return Config{}, fmt.Errorf("state push interval must be positive, got %d", cfg.StatePushIntervalMs)
	}

	return cfg, nil
}

func applyFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read config file: %w", err)
	}

	var file fileConfig
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	if file.Host != "" {
		cfg.Host = file.Host
	}
	if file.Port != "" {
		cfg.Port = file.Port
	}
	if file.SQLiteDBPath != "" {
		cfg.SQLiteDBPath = file.SQLiteDBPath
	}
	if file.SonosAPIURL != "" {
		cfg.SonosAPIURL = file.SonosAPIURL
	}
	if file.FileServerHost != "" {
		cfg.FileServerHost = file.FileServerHost
	}
	if file.PlaybackStrategy != "" {
		cfg.PlaybackStrategy = gateway.PlaybackStrategy(file.PlaybackStrategy)
	}
	if file.SonosTimeoutMs > 0 {
		cfg.SonosTimeoutMs = file.SonosTimeoutMs
	}
	if file.HistoryRetentionDays > 0 {
		cfg.HistoryRetentionDays = file.HistoryRetentionDays
	}
	if file.HistoryPruneSchedule != "" {
		cfg.HistoryPruneSchedule = file.HistoryPruneSchedule
	}
	if file.StatePushIntervalMs > 0 {
		cfg.StatePushIntervalMs = file.StatePushIntervalMs
	}
	return nil
}

func applyEnv(cfg *Config) {
	cfg.Host = envString("HOST", cfg.Host)
	cfg.Port = envString("PORT", cfg.Port)
	cfg.SQLiteDBPath = envString("SQLITE_DB_PATH", cfg.SQLiteDBPath)
	cfg.SonosAPIURL = envString("SONOS_API_URL", cfg.SonosAPIURL)
	cfg.FileServerHost = envString("FILE_SERVER_HOST", cfg.FileServerHost)
	cfg.PlaybackStrategy = gateway.PlaybackStrategy(envString("PLAYBACK_STRATEGY", string(cfg.PlaybackStrategy)))
	cfg.SonosTimeoutMs = envInt("SONOS_TIMEOUT_MS", cfg.SonosTimeoutMs)
	cfg.HistoryRetentionDays = envInt("HISTORY_RETENTION_DAYS", cfg.HistoryRetentionDays)
	cfg.HistoryPruneSchedule = envString("HISTORY_PRUNE_SCHEDULE", cfg.HistoryPruneSchedule)
	cfg.StatePushIntervalMs = envInt("STATE_PUSH_INTERVAL_MS", cfg.StatePushIntervalMs)
}

func envString(key, fallback string) string {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return fallback
	}
	return val
}

func envInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}
