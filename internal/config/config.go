package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"etfrotate/internal/costs"
	"etfrotate/internal/indicator"
)

// Config is the full run configuration loaded from YAML. CLI flags may
// override individual fields after loading.
type Config struct {
	InitialCash  float64 `yaml:"initial_cash"`
	Cadence      string  `yaml:"cadence"`
	From         string  `yaml:"from"`
	To           string  `yaml:"to"`
	SchedulePath string  `yaml:"schedule_path"`
	DBPath       string  `yaml:"db_path"`
	OutputDir    string  `yaml:"output_dir"`

	Costs costs.Model `yaml:"costs"`
	KAMA  KAMAConfig  `yaml:"kama"`
}

// KAMAConfig mirrors indicator.KAMAParams with yaml tags.
type KAMAConfig struct {
	Window int `yaml:"window"`
	Fast   int `yaml:"fast"`
	Slow   int `yaml:"slow"`
}

// Params converts the config block to indicator parameters.
func (k KAMAConfig) Params() indicator.KAMAParams {
	return indicator.KAMAParams{Window: k.Window, Fast: k.Fast, Slow: k.Slow}
}

// Default returns the configuration used when no file is supplied.
func Default() *Config {
	return &Config{
		InitialCash:  1_000_000,
		Cadence:      "quarterly",
		SchedulePath: "config/schedule.json",
		DBPath:       "data/prices.db",
		OutputDir:    "out",
		Costs:        costs.DefaultModel(),
		KAMA:         KAMAConfig{Window: 10, Fast: 2, Slow: 30},
	}
}

// Load reads a YAML config file on top of the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config YAML: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks field ranges and date formats.
func (c *Config) Validate() error {
	if c.InitialCash <= 0 {
		return fmt.Errorf("initial_cash must be positive, got %v", c.InitialCash)
	}
	if err := c.Costs.Validate(); err != nil {
		return err
	}
	if !c.KAMA.Params().Valid() {
		return fmt.Errorf("kama parameters must be positive: window=%d fast=%d slow=%d",
			c.KAMA.Window, c.KAMA.Fast, c.KAMA.Slow)
	}
	for _, field := range []struct{ name, value string }{
		{"from", c.From},
		{"to", c.To},
	} {
		if field.value == "" {
			continue
		}
		if _, err := time.Parse("2006-01-02", field.value); err != nil {
			return fmt.Errorf("bad %s date %q: %w", field.name, field.value, err)
		}
	}
	return nil
}

// DateRange parses the from/to bounds. Zero times mean unbounded and are
// clamped by the caller to the available data.
func (c *Config) DateRange() (from, to time.Time, err error) {
	if c.From != "" {
		from, err = time.Parse("2006-01-02", c.From)
		if err != nil {
			return from, to, fmt.Errorf("bad from date: %w", err)
		}
	}
	if c.To != "" {
		to, err = time.Parse("2006-01-02", c.To)
		if err != nil {
			return from, to, fmt.Errorf("bad to date: %w", err)
		}
	}
	if !from.IsZero() && !to.IsZero() && to.Before(from) {
		return from, to, fmt.Errorf("to date %s precedes from date %s", c.To, c.From)
	}
	return from, to, nil
}
