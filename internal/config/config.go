package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"
	_ "time/tzdata"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Addr           string         `yaml:"addr"`
	APITimeout     time.Duration  `yaml:"timeout"`
	LogLevel       string         `yaml:"log_level"`
	MigrateOnStart bool           `yaml:"migrate_on_start"`
	Database       DatabaseConfig `yaml:"database"`
	Location       LocationConfig `yaml:"location"`
	Metrics        MetricsConfig  `yaml:"metrics"`
}

type DatabaseConfig struct {
	Driver       string        `yaml:"driver"`
	DSN          string        `yaml:"dsn"`
	StoreTimeout time.Duration `yaml:"store_timeout"`
}

// LocationConfig is the single coordinate and civil time zone every prayer
// time and calendar date is computed for.
type LocationConfig struct {
	Latitude  float64 `yaml:"latitude"`
	Longitude float64 `yaml:"longitude"`
	Timezone  string  `yaml:"timezone"`
}

type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

// Dhaka, the deployment the tracker was built for.
const (
	DefaultLatitude  = 23.8103
	DefaultLongitude = 90.4125
	DefaultTimezone  = "Asia/Dhaka"
)

func LoadConfig(path string) (*Config, error) {
	cfg := &Config{
		Addr:           getEnv("SALAH_ADDR", ":8080"),
		APITimeout:     15 * time.Second,
		LogLevel:       getEnv("SALAH_LOG_LEVEL", "info"),
		MigrateOnStart: true,
		Database: DatabaseConfig{
			Driver:       getEnv("SALAH_DB_DRIVER", "sqlite"),
			DSN:          getEnv("SALAH_DATABASE_DSN", "salah.db"),
			StoreTimeout: 5 * time.Second,
		},
		Location: LocationConfig{
			Latitude:  DefaultLatitude,
			Longitude: DefaultLongitude,
			Timezone:  getEnv("SALAH_TIMEZONE", DefaultTimezone),
		},
		Metrics: MetricsConfig{Enabled: true},
	}
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()

		dec := yaml.NewDecoder(f)
		if err := dec.Decode(cfg); err != nil {
			return nil, fmt.Errorf("decode config %s: %w", path, err)
		}
	}

	return cfg, nil
}

// Validate fills zero values with defaults and rejects settings the server
// cannot run with.
func (c *Config) Validate() error {
	if c.Addr == "" {
		c.Addr = ":8080"
	}
	if c.APITimeout <= 0 {
		c.APITimeout = 15 * time.Second
	}
	if c.Database.StoreTimeout <= 0 {
		c.Database.StoreTimeout = 5 * time.Second
	}

	switch c.Database.Driver {
	case "":
		c.Database.Driver = "sqlite"
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("database.driver must be sqlite or postgres, got %q", c.Database.Driver)
	}
	if c.Database.DSN == "" {
		return fmt.Errorf("database.dsn is required")
	}

	if c.Location.Latitude < -90 || c.Location.Latitude > 90 {
		return fmt.Errorf("location.latitude out of range: %v", c.Location.Latitude)
	}
	if c.Location.Longitude < -180 || c.Location.Longitude > 180 {
		return fmt.Errorf("location.longitude out of range: %v", c.Location.Longitude)
	}
	if c.Location.Timezone == "" {
		c.Location.Timezone = DefaultTimezone
	}
	if _, err := time.LoadLocation(c.Location.Timezone); err != nil {
		return fmt.Errorf("location.timezone: %w", err)
	}

	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}

	return nil
}

// TimeZone returns the loaded civil time zone. Call Validate first.
func (c *Config) TimeZone() *time.Location {
	loc, err := time.LoadLocation(c.Location.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// ParseLevel maps a log_level string onto a slog level. Empty means info.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log_level %q", s)
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return def
}
