package config

import (
	"fmt"
	"os"
	"sort"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/clinicore/registrystats/internal/catalog"
	"github.com/clinicore/registrystats/internal/classify"
	"github.com/clinicore/registrystats/internal/model"
	"github.com/clinicore/registrystats/internal/normalize"
)

// Config holds all runtime configuration for a regstats invocation.
type Config struct {
	DSN        string
	LogFormat  string // "text" or "json"
	ConfigPath string
	ListenAddr string

	// Export options
	OutPath string
	Format  string // "csv" or "parquet"

	// Filter flags
	Window           string
	Domain           string
	BodyRegion       string
	ClinicianID      string
	IncludeOverrides bool
	AsOf             string

	// Loaded from the YAML config file; empty means builtins/defaults.
	Instruments []catalog.Instrument
	Bands       []classify.Band
}

// yamlConfig is the on-disk YAML structure.
type yamlConfig struct {
	Instruments []catalog.Instrument `yaml:"instruments"`
	Bands       []classify.Band      `yaml:"bands"`
}

// LoadFromFile reads a YAML config file carrying instrument overrides and
// achievement bands, and merges its values into Config.
func (c *Config) LoadFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	var yc yamlConfig
	if err := yaml.Unmarshal(data, &yc); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	c.Instruments = yc.Instruments
	c.Bands = yc.Bands
	return c.validateCatalog()
}

// validateCatalog checks instrument and band entries from the config file.
func (c *Config) validateCatalog() error {
	for i := range c.Instruments {
		ins := &c.Instruments[i]
		ins.Code = normalize.Code(ins.Code)
		if ins.Code == "" {
			return fmt.Errorf("instrument %d: code is required", i)
		}
		if ins.MCID <= 0 {
			return fmt.Errorf("instrument %s: mcid must be positive", ins.Code)
		}
		switch ins.Direction {
		case catalog.LowerIsBetter, catalog.HigherIsBetter:
		default:
			return fmt.Errorf("instrument %s: direction must be %q or %q",
				ins.Code, catalog.LowerIsBetter, catalog.HigherIsBetter)
		}
	}
	for i, b := range c.Bands {
		if b.Label == "" {
			return fmt.Errorf("band %d: label is required", i)
		}
	}
	// Band resolution assumes descending lower bounds.
	sort.SliceStable(c.Bands, func(i, j int) bool {
		return c.Bands[i].MinPercent > c.Bands[j].MinPercent
	})
	return nil
}

// Catalog returns the builtin instruments layered with any file overrides.
func (c *Config) Catalog() *catalog.Catalog {
	if len(c.Instruments) == 0 {
		return catalog.Builtin()
	}
	merged := make([]catalog.Instrument, 0, len(catalog.BuiltinInstruments)+len(c.Instruments))
	merged = append(merged, catalog.BuiltinInstruments...)
	merged = append(merged, c.Instruments...)
	return catalog.New(merged)
}

// AchievementBands returns the configured bands, or the shipped defaults.
func (c *Config) AchievementBands() []classify.Band {
	if len(c.Bands) == 0 {
		return classify.DefaultBands
	}
	return c.Bands
}

// Filters builds the validated filter set from the flag values.
func (c *Config) Filters() (model.Filters, error) {
	f := model.Filters{
		Window:           model.TimeWindow(c.Window),
		Domain:           c.Domain,
		BodyRegion:       c.BodyRegion,
		ClinicianID:      c.ClinicianID,
		IncludeOverrides: c.IncludeOverrides,
	}
	if f.Window == "" {
		f.Window = model.WindowAll
	}
	return f, f.Validate()
}

// RefTime resolves the explicit reference timestamp for window filtering.
// Defaults to the current UTC time when --as-of is not given; the engine
// itself never reads the clock.
func (c *Config) RefTime() (time.Time, error) {
	if c.AsOf == "" {
		return time.Now().UTC(), nil
	}
	t := normalize.ParseDate(c.AsOf)
	if t == nil {
		return time.Time{}, fmt.Errorf("unparseable --as-of value %q", c.AsOf)
	}
	return *t, nil
}

// Validate checks fields every command needs.
func (c *Config) Validate() error {
	if c.Format != "" && c.Format != "csv" && c.Format != "parquet" {
		return fmt.Errorf("unknown format %q (expected csv or parquet)", c.Format)
	}
	if _, err := c.Filters(); err != nil {
		return err
	}
	return nil
}

// ValidateWithDSN checks both the common fields and the DSN.
func (c *Config) ValidateWithDSN() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.DSN == "" {
		return fmt.Errorf("--dsn or REGISTRY_DB_URL is required")
	}
	return nil
}
