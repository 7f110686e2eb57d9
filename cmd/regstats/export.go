package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/clinicore/registrystats/internal/engine"
	"github.com/clinicore/registrystats/internal/exitcode"
	"github.com/clinicore/registrystats/internal/export"
	"github.com/clinicore/registrystats/internal/logging"
	"github.com/clinicore/registrystats/internal/pgstore"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the flat registry export (CSV or Parquet)",
	RunE:  runExport,
}

func init() {
	f := exportCmd.Flags()
	f.StringVar(&cfg.OutPath, "out", "", "Output path (default: generated name in the working directory)")
	f.StringVar(&cfg.Format, "format", "csv", "Export format: csv or parquet")
	f.StringVar(&cfg.Window, "window", "all", "Time window: 30d, 90d, 12mo, or all")
	f.StringVar(&cfg.Domain, "domain", "", "Restrict to one clinical domain")
	f.StringVar(&cfg.BodyRegion, "body-region", "", "Restrict to one body region")
	f.StringVar(&cfg.ClinicianID, "clinician", "", "Restrict to one clinician")
	f.BoolVar(&cfg.IncludeOverrides, "include-overrides", false, "Include overridden care targets")
	f.StringVar(&cfg.AsOf, "as-of", "", "Reference timestamp for window filtering (defaults to now)")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
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

	rows := export.Project(result.Set, result.Outcomes, result.Statuses)

	out := cfg.OutPath
	if out == "" {
		out = export.Filename(cfg.Format, time.Now())
	}
	f, err := os.Create(out)
	if err != nil {
		log.Error().Err(err).Msg("create output file")
		os.Exit(exitcode.ExportError)
	}
	defer f.Close()

	switch cfg.Format {
	case "parquet":
		err = export.WriteParquet(f, rows)
	default:
		_, err = f.WriteString(export.CSV(rows))
	}
	if err != nil {
		log.Error().Err(err).Msg("export failed")
		os.Exit(exitcode.ExportError)
	}

	fmt.Printf("Export complete: %d rows written to %s\n", len(rows), out)
	return nil
}
