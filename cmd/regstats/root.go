package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/clinicore/registrystats/internal/config"
)

var cfg config.Config

var rootCmd = &cobra.Command{
	Use:   "regstats",
	Short: "Outcome registry analytics engine",
	Long:  "Computes leadership dashboard metrics and registry exports from per-patient clinical episodes and outcome-measure scores.",
}

func init() {
	// Local development keeps the DSN in .env; absence is fine.
	_ = godotenv.Load()

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfg.DSN, "dsn", os.Getenv("REGISTRY_DB_URL"), "Postgres connection string (or set REGISTRY_DB_URL)")
	pf.StringVar(&cfg.LogFormat, "log-format", "text", "Log format: text or json")
	pf.StringVar(&cfg.ConfigPath, "config", "", "YAML file with instrument overrides and achievement bands")
}

// loadFileConfig merges the optional YAML config file into cfg.
func loadFileConfig() error {
	if cfg.ConfigPath == "" {
		return nil
	}
	return cfg.LoadFromFile(cfg.ConfigPath)
}
