package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/boddenberg/cost-dashboard-go/internal/config"
	"github.com/boddenberg/cost-dashboard-go/internal/infra/sqlite"
	"github.com/boddenberg/cost-dashboard-go/internal/service"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	flagAnchor     string
	flagImportFile string
	flagSubject    string
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending SQLite schema migrations",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, logger, err := setup()
		if err != nil {
			return err
		}
		defer logger.Sync()

		if cfg.StoreBackend != config.StoreSQLite {
			return errors.New("migrations apply only to the sqlite store; the supabase schema is managed remotely")
		}
		if err := sqlite.RunMigrations(cfg.SQLitePath); err != nil {
			return err
		}
		logger.Info("migrations applied", zap.String("path", cfg.SQLitePath))
		return nil
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Insert the default categories, providers and services",
	RunE: withApp(func(ctx context.Context, a *app, out io.Writer) error {
		report, err := a.svc.SeedDefaults(ctx)
		if err != nil {
			return err
		}
		return printJSON(out, report)
	}),
}

var forecastCmd = &cobra.Command{
	Use:   "forecast",
	Short: "Print the six-month cost forecast",
	RunE: withApp(func(ctx context.Context, a *app, out io.Writer) error {
		anchor := a.svc.Options().Now()
		if flagAnchor != "" {
			var err error
			if anchor, err = service.ParseAnchor(flagAnchor); err != nil {
				return err
			}
		}
		res, err := a.svc.CostForecastAt(ctx, anchor)
		if err != nil {
			return err
		}
		return printJSON(out, res)
	}),
}

var importTopupsCmd = &cobra.Command{
	Use:   "import-topups",
	Short: "Import top-ups from CSV lines (service,amount,currency,date)",
	RunE: withApp(func(ctx context.Context, a *app, out io.Writer) error {
		var (
			raw []byte
			err error
		)
		if flagImportFile == "" || flagImportFile == "-" {
			raw, err = io.ReadAll(os.Stdin)
		} else {
			raw, err = os.ReadFile(flagImportFile)
		}
		if err != nil {
			return fmt.Errorf("read import: %w", err)
		}

		res, err := a.svc.ImportTopupText(ctx, string(raw))
		if res != nil {
			if perr := printJSON(out, res); perr != nil {
				return perr
			}
		}
		return err
	}),
}

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue an API token for the write routes",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, logger, err := setup()
		if err != nil {
			return err
		}
		defer logger.Sync()

		issuer := service.NewTokenIssuer(cfg.JWTSecret, cfg.JWTTTL)
		if issuer == nil {
			return errors.New("JWT_SECRET is not configured")
		}
		tok, err := issuer.Issue(flagSubject)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), tok)
		return nil
	},
}

func init() {
	forecastCmd.Flags().StringVar(&flagAnchor, "anchor", "", "Project from this month (YYYY-MM) instead of now")
	importTopupsCmd.Flags().StringVarP(&flagImportFile, "file", "f", "", "CSV file to import (default stdin)")
	tokenCmd.Flags().StringVar(&flagSubject, "subject", "", "Token subject, e.g. the calling system")
	_ = tokenCmd.MarkFlagRequired("subject")
}

// withApp wires the application for one-shot commands and tears it down after.
func withApp(run func(ctx context.Context, a *app, out io.Writer) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		cfg, logger, err := setup()
		if err != nil {
			return err
		}
		defer logger.Sync()

		ctx := cmd.Context()
		a, err := newApp(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer a.Close()

		return run(ctx, a, cmd.OutOrStdout())
	}
}
