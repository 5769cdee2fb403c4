package config

import (
	"fmt"
	"os"

	"github.com/robfig/cron/v3"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Config holds all settlement runner configuration.
type Config struct {
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Schedule struct {
		SettlementCron string `yaml:"settlement_cron"`
	} `yaml:"schedule"`
	Scoring struct {
		AverageStandardGamePoints string `yaml:"average_standard_game_points"`
		AverageCounterPickPoints  string `yaml:"average_counter_pick_points"`
	} `yaml:"scoring"`
}

// Load reads config from a YAML file, then applies environment variable
// overrides and defaults.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("SETTLEMENT_CRON"); v != "" {
		cfg.Schedule.SettlementCron = v
	}

	// Defaults
	if cfg.Database.SQLitePath == "" {
		cfg.Database.SQLitePath = "data/waiverwire.db"
	}
	if cfg.Schedule.SettlementCron == "" {
		// Saturday 20:00, the traditional end of the bidding week.
		cfg.Schedule.SettlementCron = "0 0 20 * * 6"
	}
	if cfg.Scoring.AverageStandardGamePoints == "" {
		cfg.Scoring.AverageStandardGamePoints = "7.5"
	}
	if cfg.Scoring.AverageCounterPickPoints == "" {
		cfg.Scoring.AverageCounterPickPoints = "-2.5"
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the cron expression and scoring averages parse.
func (c *Config) Validate() error {
	parser := cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	if _, err := parser.Parse(c.Schedule.SettlementCron); err != nil {
		return fmt.Errorf("settlement_cron %q: %w", c.Schedule.SettlementCron, err)
	}
	if _, err := decimal.NewFromString(c.Scoring.AverageStandardGamePoints); err != nil {
		return fmt.Errorf("average_standard_game_points %q: %w", c.Scoring.AverageStandardGamePoints, err)
	}
	if _, err := decimal.NewFromString(c.Scoring.AverageCounterPickPoints); err != nil {
		return fmt.Errorf("average_counter_pick_points %q: %w", c.Scoring.AverageCounterPickPoints, err)
	}
	return nil
}
