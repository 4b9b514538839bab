package config

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/rustyeddy/ksim/market"
	"github.com/rustyeddy/ksim/pkg/logging"
	"github.com/rustyeddy/ksim/sim"
)

// Config represents the complete simulation configuration
type Config struct {
	Account      AccountConfig                `json:"account" yaml:"account"`
	AssetClass   string                       `json:"asset_class" yaml:"asset_class"`
	AssetClasses map[string]market.AssetClass `json:"asset_classes,omitempty" yaml:"asset_classes,omitempty"`
	Fees         map[string]sim.Fees          `json:"fees,omitempty" yaml:"fees,omitempty"`
	Risk         RiskConfig                   `json:"risk" yaml:"risk"`
	Data         DataConfig                   `json:"data" yaml:"data"`
	Journal      JournalConfig                `json:"journal" yaml:"journal"`
	LogLevel     string                       `json:"log_level,omitempty" yaml:"log_level,omitempty"`
	Steps        []Step                       `json:"steps,omitempty" yaml:"steps,omitempty"`
}

type AccountConfig struct {
	InitialCapital float64 `json:"initial_capital" yaml:"initial_capital"`
}

type RiskConfig struct {
	MaxLeverage float64 `json:"max_leverage" yaml:"max_leverage"`
}

// DataConfig selects the price series and the run window.
type DataConfig struct {
	Dir        string `json:"dir" yaml:"dir"`
	Ticker     string `json:"ticker" yaml:"ticker"`
	ViewDays   int    `json:"view_days" yaml:"view_days"`
	MinSimDays int    `json:"min_sim_days" yaml:"min_sim_days"`
	Seed       int64  `json:"seed,omitempty" yaml:"seed,omitempty"` // 0 picks a random seed
}

// JournalConfig contains journaling parameters
type JournalConfig struct {
	Type             string `json:"type" yaml:"type"` // "none", "csv" or "sqlite"
	TransactionsFile string `json:"transactions_file,omitempty" yaml:"transactions_file,omitempty"`
	EquityFile       string `json:"equity_file,omitempty" yaml:"equity_file,omitempty"`
	DBPath           string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
	ReportPath       string `json:"report_path,omitempty" yaml:"report_path,omitempty"`
}

// Step is one scripted action for the run command.
type Step struct {
	Action     string  `json:"action" yaml:"action"`
	Qty        float64 `json:"qty,omitempty" yaml:"qty,omitempty"`
	Percent    float64 `json:"percent,omitempty" yaml:"percent,omitempty"`
	Leverage   float64 `json:"leverage,omitempty" yaml:"leverage,omitempty"`
	Lot        int     `json:"lot,omitempty" yaml:"lot,omitempty"` // 1-based, in open order
	StopLoss   float64 `json:"sl,omitempty" yaml:"sl,omitempty"`
	TakeProfit float64 `json:"tp,omitempty" yaml:"tp,omitempty"`
	Bars       int     `json:"bars,omitempty" yaml:"bars,omitempty"`
}

// Step actions.
const (
	StepBuy     = "buy"
	StepLong    = "long"
	StepShort   = "short"
	StepClose   = "close"
	StepStops   = "stops"
	StepNext    = "next"
	StepFlatten = "flatten"
	StepSettle  = "settle"
)

// LoadFromFile loads configuration from a file (JSON or YAML)
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()
	cfg.Steps = nil

	// Try YAML first, fall back to JSON
	err = yaml.Unmarshal(data, cfg)
	if err != nil {
		err = json.Unmarshal(data, cfg)
		if err != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// SaveToFile writes YAML for .yaml/.yml paths and indented JSON otherwise.
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if !(c.Account.InitialCapital > 0) || math.IsInf(c.Account.InitialCapital, 1) {
		return fmt.Errorf("account.initial_capital must be positive")
	}
	ac, err := market.LookupAssetClass(c.AssetClass, c.AssetClasses)
	if err != nil {
		return fmt.Errorf("asset_class: %w", err)
	}
	if !(ac.MinQty > 0) || math.IsInf(ac.MinQty, 1) {
		return fmt.Errorf("asset class %s: min_qty must be positive", ac.Name)
	}
	fees, err := c.feeTier(ac)
	if err != nil {
		return err
	}
	if !(fees.Spot >= 0) || !(fees.Leveraged >= 0) || math.IsInf(fees.Spot, 1) || math.IsInf(fees.Leveraged, 1) {
		return fmt.Errorf("fees.%s: rates must not be negative", ac.FeeTier)
	}
	if !(c.Risk.MaxLeverage >= 1) || math.IsInf(c.Risk.MaxLeverage, 1) {
		return fmt.Errorf("risk.max_leverage must be at least 1")
	}
	if c.Data.ViewDays < 0 || c.Data.MinSimDays < 1 {
		return fmt.Errorf("data.view_days must be >= 0 and data.min_sim_days >= 1")
	}

	switch c.Journal.Type {
	case "", "none":
	case "csv":
		if c.Journal.TransactionsFile == "" || c.Journal.EquityFile == "" {
			return fmt.Errorf("journal transactions_file and equity_file required for CSV type")
		}
	case "sqlite":
		if c.Journal.DBPath == "" {
			return fmt.Errorf("journal db_path required for SQLite type")
		}
	default:
		return fmt.Errorf("journal.type must be 'none', 'csv' or 'sqlite'")
	}

	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log_level: %w", err)
	}

	for i, s := range c.Steps {
		if err := s.validate(); err != nil {
			return fmt.Errorf("steps[%d]: %w", i, err)
		}
	}
	return nil
}

func (s Step) validate() error {
	switch s.Action {
	case StepBuy, StepLong, StepShort:
		if !s.sized() {
			return fmt.Errorf("%s needs qty or a percent in (0, 100]", s.Action)
		}
		if s.Action != StepBuy && !(s.Leverage >= 1) {
			return fmt.Errorf("%s needs leverage >= 1", s.Action)
		}
	case StepClose:
		if s.Lot < 1 {
			return fmt.Errorf("close needs lot >= 1")
		}
		if !s.sized() {
			return fmt.Errorf("close needs qty or a percent in (0, 100]")
		}
	case StepStops:
		if s.Lot < 1 {
			return fmt.Errorf("stops needs lot >= 1")
		}
		if !(s.StopLoss >= 0) || !(s.TakeProfit >= 0) {
			return fmt.Errorf("stops must not be negative")
		}
	case StepNext:
		if s.Bars < 0 {
			return fmt.Errorf("next bars must not be negative")
		}
	case StepFlatten, StepSettle:
	default:
		return fmt.Errorf("unknown action %q", s.Action)
	}
	return nil
}

// sized reports whether the step carries a usable qty or percent.
func (s Step) sized() bool {
	if s.Qty > 0 && !math.IsInf(s.Qty, 1) {
		return true
	}
	return s.Percent > 0 && s.Percent <= 100
}

func (c *Config) feeTier(ac market.AssetClass) (sim.Fees, error) {
	tier := ac.FeeTier
	if tier == "" {
		tier = market.DefaultFeeTier
	}
	f, ok := c.Fees[tier]
	if !ok {
		return sim.Fees{}, fmt.Errorf("fees: unknown tier %q for asset class %s", tier, ac.Name)
	}
	return f, nil
}

// Engine resolves the asset class and fee tier into an engine configuration.
func (c *Config) Engine() (sim.Config, error) {
	ac, err := market.LookupAssetClass(c.AssetClass, c.AssetClasses)
	if err != nil {
		return sim.Config{}, err
	}
	fees, err := c.feeTier(ac)
	if err != nil {
		return sim.Config{}, err
	}
	return sim.Config{
		InitialCapital: c.Account.InitialCapital,
		Asset:          ac,
		Fees:           &fees,
		MaxLeverage:    c.Risk.MaxLeverage,
	}, nil
}

// Default returns a configuration with sensible defaults
func Default() *Config {
	return &Config{
		Account: AccountConfig{
			InitialCapital: 100000,
		},
		AssetClass: "Stock",
		Fees: map[string]sim.Fees{
			market.DefaultFeeTier: sim.DefaultFees,
		},
		Risk: RiskConfig{
			MaxLeverage: sim.DefaultMaxLeverage,
		},
		Data: DataConfig{
			Dir:        "./data",
			Ticker:     "SPY",
			ViewDays:   250,
			MinSimDays: 720,
		},
		Journal: JournalConfig{
			Type: "none",
		},
		LogLevel: "info",
	}
}
