package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rustyeddy/ksim/config"
	"github.com/rustyeddy/ksim/pkg/logging"
)

var rootCmd = &cobra.Command{
	Use:   "ksim",
	Short: "A day-by-day trading backtest simulator",
	Long: `ksim replays a historical daily price series one bar at a time.

You open spot, margin-long and margin-short lots, set stop-loss and
take-profit levels and step the clock forward. The engine tracks cash,
margin and realized P&L, fires liquidations and stops on each bar, and
ends the run on ruin, on the last bar or when you settle.

Commands:
  play     - interactive session on stdin
  run      - scripted session from the config's steps
  journal  - list journaled runs and transactions
  config   - generate or validate configuration files`,
	SilenceUsage: true,
}

var (
	cfgPath  string
	logLevel string
)

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "f", "", "path to config file (YAML or JSON)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn or error (overrides config)")
}

// loadConfig reads --config, or the defaults when it is unset.
func loadConfig() (*config.Config, error) {
	if cfgPath == "" {
		return config.Default(), nil
	}
	cfg, err := config.LoadFromFile(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	level := cfg.LogLevel
	if logLevel != "" {
		level = logLevel
	}
	return logging.New(level)
}
