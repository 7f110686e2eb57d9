package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/clinicore/registrystats/internal/engine"
	"github.com/clinicore/registrystats/internal/exitcode"
	"github.com/clinicore/registrystats/internal/logging"
	"github.com/clinicore/registrystats/internal/pgstore"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Compute the dashboard metrics and print them as JSON",
	RunE:  runReport,
}

func init() {
	f := reportCmd.Flags()
	f.StringVar(&cfg.Window, "window", "all", "Time window: 30d, 90d, 12mo, or all")
	f.StringVar(&cfg.Domain, "domain", "", "Restrict to one clinical domain")
	f.StringVar(&cfg.BodyRegion, "body-region", "", "Restrict to one body region")
	f.StringVar(&cfg.ClinicianID, "clinician", "", "Restrict to one clinician")
	f.BoolVar(&cfg.IncludeOverrides, "include-overrides", false, "Include overridden care targets in outcome metrics")
	f.StringVar(&cfg.AsOf, "as-of", "", "Reference timestamp for window filtering (defaults to now)")
	rootCmd.AddCommand(reportCmd)
}

func runReport(cmd *cobra.Command, args []string) error {
	log := logging.Setup(cfg.LogFormat)
	ctx := context.Background()

	if err := loadFileConfig(); err != nil {
		log.Error().Err(err).Msg("config file invalid")
		os.Exit(exitcode.ConfigError)
	}
	if err := cfg.ValidateWithDSN(); err != nil {
		log.Error().Err(err).Msg("config validation failed")
		os.Exit(exitcode.UsageError)
	}

	filters, err := cfg.Filters()
	if err != nil {
		log.Error().Err(err).Msg("invalid filters")
		os.Exit(exitcode.UsageError)
	}
	ref, err := cfg.RefTime()
	if err != nil {
		log.Error().Err(err).Msg("invalid reference time")
		os.Exit(exitcode.UsageError)
	}

	pool, err := pgstore.NewPool(ctx, cfg.DSN)
	if err != nil {
		log.Error().Err(err).Msg("database connection failed")
		os.Exit(exitcode.DBConnError)
	}
	defer pool.Close()

	snap, err := pgstore.New(pool).FetchSnapshot(ctx)
	if err != nil {
		log.Error().Err(err).Msg("snapshot fetch failed")
		os.Exit(exitcode.QueryError)
	}

	result, err := engine.Run(log, snap, filters, cfg.Catalog(), ref)
	if err != nil {
		log.Error().Err(err).Msg("analytics run failed")
		os.Exit(exitcode.EngineError)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result.Report); err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	return nil
}
