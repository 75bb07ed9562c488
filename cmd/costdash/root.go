package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/boddenberg/cost-dashboard-go/internal/config"
	"github.com/boddenberg/cost-dashboard-go/internal/infra/observability"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	flagConfig   string
	flagLogLevel string
)

var rootCmd = &cobra.Command{
	Use:           "costdash",
	Short:         "IT and SaaS cost dashboard",
	Long:          "Track invoices, license plans and prepaid usage, and forecast monthly spend.",
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagConfig, "config", "c", "", "TOML config file (default $COSTDASH_CONFIG)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level override (debug, info, warn, error)")

	rootCmd.AddCommand(serveCmd, migrateCmd, seedCmd, forecastCmd, importTopupsCmd, tokenCmd)
}

// setup loads the configuration and builds the logger shared by every command.
func setup() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, nil, err
	}
	if flagLogLevel != "" {
		cfg.LogLevel = flagLogLevel
	}
	return cfg, observability.NewLogger(cfg.LogLevel), nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return nil
}
