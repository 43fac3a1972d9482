package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const DefaultPath = "configs/config.yaml"

type Config struct {
	Server struct {
		Port        int      `yaml:"port"`
		CORSOrigins []string `yaml:"cors_origins"`
		Timezone    string   `yaml:"timezone"`
		Environment string   `yaml:"environment"`
	} `yaml:"server"`

	Database struct {
		Path string `yaml:"path"`
	} `yaml:"database"`

	Admin struct {
		Username     string `yaml:"username"`
		Password     string `yaml:"password"`
		PasswordHash string `yaml:"password_hash"`
	} `yaml:"admin"`

	Reservations struct {
		SlotCapacity    int `yaml:"slot_capacity"`
		SlotStepMinutes int `yaml:"slot_step_minutes"`
	} `yaml:"reservations"`

	Redis struct {
		Address         string `yaml:"address"`
		Password        string `yaml:"password"`
		DB              int    `yaml:"db"`
		CacheTTLSeconds int    `yaml:"cache_ttl_seconds"`
	} `yaml:"redis"`

	RateLimit struct {
		RPS   float64 `yaml:"rps"`
		Burst int     `yaml:"burst"`
	} `yaml:"rate_limit"`

	Monitoring struct {
		PrometheusEnabled bool `yaml:"prometheus_enabled"`
		PrometheusPort    int  `yaml:"prometheus_port"`
	} `yaml:"monitoring"`

	Backup struct {
		Enabled       bool   `yaml:"enabled"`
		Schedule      string `yaml:"schedule"`
		Path          string `yaml:"path"`
		RetentionDays int    `yaml:"retention_days"`
	} `yaml:"backup"`

	Logging struct {
		Level string `yaml:"level"`
		JSON  bool   `yaml:"json"`
	} `yaml:"logging"`
}

// Load reads the YAML config at path. A .env file in the working directory,
// when present, is loaded first so ${VAR} placeholders can refer to it.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	// Support ${ENV_VAR} placeholders in YAML config.
	data = []byte(os.ExpandEnv(string(data)))

	var cfg Config
	if err = yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	if cfg.Database.Path == "" {
		cfg.Database.Path = "data/taberna.db"
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the server cannot start with.
func (c *Config) Validate() error {
	var problems []string
	if c.Admin.Username == "" {
		problems = append(problems, "admin.username is required")
	}
	if c.Admin.Password == "" && c.Admin.PasswordHash == "" {
		problems = append(problems, "admin.password or admin.password_hash is required")
	}
	if c.Reservations.SlotCapacity < 0 {
		problems = append(problems, "reservations.slot_capacity must not be negative")
	}
	if c.Reservations.SlotStepMinutes < 0 {
		problems = append(problems, "reservations.slot_step_minutes must not be negative")
	}
	if c.Server.Timezone != "" {
		if _, err := time.LoadLocation(c.Server.Timezone); err != nil {
			problems = append(problems, "server.timezone: "+err.Error())
		}
	}
	if len(problems) > 0 {
		return fmt.Errorf("invalid config: %s", strings.Join(problems, "; "))
	}
	return nil
}

func (c *Config) Port() int {
	if c.Server.Port <= 0 {
		return 8080
	}
	return c.Server.Port
}

func (c *Config) Timezone() string {
	if c.Server.Timezone == "" {
		return "Europe/Madrid"
	}
	return c.Server.Timezone
}

func (c *Config) Environment() string {
	if c.Server.Environment == "" {
		return "production"
	}
	return c.Server.Environment
}

func (c *Config) SlotCapacity() int {
	if c.Reservations.SlotCapacity <= 0 {
		return 10
	}
	return c.Reservations.SlotCapacity
}

func (c *Config) SlotStep() int {
	if c.Reservations.SlotStepMinutes <= 0 {
		return 30
	}
	return c.Reservations.SlotStepMinutes
}

func (c *Config) CacheTTL() time.Duration {
	if c.Redis.CacheTTLSeconds <= 0 {
		return time.Minute
	}
	return time.Duration(c.Redis.CacheTTLSeconds) * time.Second
}

func (c *Config) RateLimits() (rps float64, burst int) {
	rps, burst = c.RateLimit.RPS, c.RateLimit.Burst
	if rps <= 0 {
		rps = 1
	}
	if burst <= 0 {
		burst = 5
	}
	return rps, burst
}

func (c *Config) PrometheusPort() int {
	if c.Monitoring.PrometheusPort <= 0 {
		return 9090
	}
	return c.Monitoring.PrometheusPort
}

func (c *Config) BackupSchedule() string {
	if c.Backup.Schedule == "" {
		return "0 3 * * *"
	}
	return c.Backup.Schedule
}

func (c *Config) BackupPath() string {
	if c.Backup.Path == "" {
		return "backups"
	}
	return c.Backup.Path
}

func (c *Config) BackupRetentionDays() int {
	if c.Backup.RetentionDays <= 0 {
		return 14
	}
	return c.Backup.RetentionDays
}
