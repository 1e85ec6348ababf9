package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Addr          string        `yaml:"addr"`
	JWTSecret     string        `yaml:"jwt_secret"`
	APITimeout    time.Duration `yaml:"timeout"`
	DatabasePath  string        `yaml:"database_path"`
	TokenDuration time.Duration `yaml:"token_duration"`
	RedisAddr     string        `yaml:"redis_addr"`
	Fanout        FanoutConfig  `yaml:"fanout"`
	Workers       WorkerConfig  `yaml:"workers"`
	Documents     DocsConfig    `yaml:"documents"`
}

type FanoutConfig struct {
	Buffer         int           `yaml:"buffer"`
	StaleThreshold time.Duration `yaml:"stale_threshold"`
}

type WorkerConfig struct {
	Count int `yaml:"count"`
}

type DocsConfig struct {
	// Cron spec for the expiry scan, robfig/cron format.
	ScanSchedule  string        `yaml:"scan_schedule"`
	WarningWindow time.Duration `yaml:"warning_window"`
}

func LoadConfig(path string) (*Config, error) {
	cfg := &Config{
		Addr:          getEnv("FLEET_ADDR", ":8080"),
		JWTSecret:     getEnv("FLEET_JWT_SECRET", "supersecretkey"),
		APITimeout:    15 * time.Second,
		DatabasePath:  getEnv("FLEET_DATABASE_PATH", "fleet.db"),
		TokenDuration: 24 * time.Hour,
		RedisAddr:     getEnv("FLEET_REDIS_ADDR", ""),
		Fanout: FanoutConfig{
			Buffer:         256,
			StaleThreshold: 90 * time.Second,
		},
		Workers: WorkerConfig{
			Count: 4,
		},
		Documents: DocsConfig{
			ScanSchedule:  "@hourly",
			WarningWindow: 30 * 24 * time.Hour,
		},
	}
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()

		dec := yaml.NewDecoder(f)
		if err := dec.Decode(cfg); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// Validate rejects configurations that would be unsafe to run with outside a
// development environment.
func (c *Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("addr is required")
	}
	if c.DatabasePath == "" {
		return fmt.Errorf("database_path is required")
	}
	if c.APITimeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.TokenDuration <= 0 {
		return fmt.Errorf("token_duration must be positive")
	}
	if c.JWTSecret == "supersecretkey" && getEnv("FLEET_ENV", "development") != "development" {
		return fmt.Errorf("jwt_secret must be changed outside development")
	}
	return nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return def
}
