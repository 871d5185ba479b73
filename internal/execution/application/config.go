package application

import (
	"errors"
	"os"
	"strconv"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Config defines ledger tuning.
type Config struct {
	// RoundingTolerance is the accepted mismatch between a commitment's
	// declared total and its line-item sum, in currency units.
	RoundingTolerance string `yaml:"rounding_tolerance"`
	// MaxSubmitRetries bounds optimistic-conflict retries before a call
	// fails with contention.
	MaxSubmitRetries int `yaml:"max_submit_retries"`

	tolerance decimal.Decimal
}

// LoadConfig loads ledger tuning from yaml or env. Defaults preserve the
// 0.01 minor-currency-unit tolerance.
func LoadConfig() (Config, error) {
	cfg := Config{
		RoundingTolerance: getenvDefault("LEDGER_ROUNDING_TOLERANCE", "0.01"),
		MaxSubmitRetries:  getenvIntDefault("LEDGER_MAX_SUBMIT_RETRIES", 3),
	}

	if path := os.Getenv("LEDGER_CONFIG"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, err
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, err
		}
	}

	tolerance, err := decimal.NewFromString(cfg.RoundingTolerance)
	if err != nil || tolerance.IsNegative() {
		return cfg, errors.New("ledger config: invalid rounding tolerance")
	}
	cfg.tolerance = tolerance
	if cfg.MaxSubmitRetries <= 0 {
		cfg.MaxSubmitRetries = 3
	}
	return cfg, nil
}

// Tolerance returns the parsed rounding tolerance.
func (c Config) Tolerance() decimal.Decimal {
	if c.tolerance.IsZero() && c.RoundingTolerance != "" {
		if parsed, err := decimal.NewFromString(c.RoundingTolerance); err == nil {
			return parsed
		}
	}
	return c.tolerance
}

// DefaultConfig returns the built-in tuning, used by tests and callers
// that skip LoadConfig.
func DefaultConfig() Config {
	return Config{
		RoundingTolerance: "0.01",
		MaxSubmitRetries:  3,
		tolerance:         decimal.RequireFromString("0.01"),
	}
}

func getenvDefault(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getenvIntDefault(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}
