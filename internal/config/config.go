package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Instrument     string `yaml:"instrument"`
	ReferencePrice string `yaml:"reference_price"`
	LogLevel       string `yaml:"log_level"`
	ActionBuffer   int    `yaml:"action_buffer"`
	KeepTrades     bool   `yaml:"keep_trades"`
}

func defaults() Config {
	return Config{
		Instrument:     "BTCUSD",
		ReferencePrice: "100",
		LogLevel:       "info",
		ActionBuffer:   16384,
		KeepTrades:     true,
	}
}

func Load(path string) (Config, error) {
	cfg := defaults()
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("parse yaml: %w", err)
	}
	if cfg.Instrument == "" {
		return cfg, errors.New("instrument must not be empty")
	}
	if cfg.ActionBuffer < 1 {
		return cfg, errors.New("action_buffer must be >=1")
	}
	if _, err := cfg.Reference(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Reference parses the configured reference price.
func (c Config) Reference() (decimal.Decimal, error) {
	price, err := decimal.NewFromString(c.ReferencePrice)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse reference_price %q: %w", c.ReferencePrice, err)
	}
	if price.Sign() <= 0 {
		return decimal.Zero, errors.New("reference_price must be positive")
	}
	return price, nil
}

func NewLogger(level string) *slog.Logger {
	lvl := slog.LevelInfo
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "info":
		lvl = slog.LevelInfo
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	}
	h := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	return slog.New(h)
}
