package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/clinicore/registrystats/internal/model"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "registry.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadFromFile_InstrumentOverride(t *testing.T) {
	var c Config
	err := c.LoadFromFile(writeConfig(t, `
instruments:
  - code: " odi "
    name: Oswestry (site revision)
    mcid: 12.5
    direction: lower
  - code: grip
    name: Grip Strength
    mcid: 5
    direction: higher
`))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	cat := c.Catalog()
	odi, ok := cat.Lookup("ODI")
	if !ok || odi.MCID != 12.5 {
		t.Errorf("ODI override = %+v, ok=%v", odi, ok)
	}
	grip, ok := cat.Lookup("GRIP")
	if !ok || grip.Direction != "higher" {
		t.Errorf("GRIP = %+v, ok=%v", grip, ok)
	}
	// Builtins not named in the file stay intact.
	if _, ok := cat.Lookup("NPRS"); !ok {
		t.Error("builtin NPRS lost after merge")
	}
}

func TestLoadFromFile_RejectsBadInstruments(t *testing.T) {
	cases := []struct {
		name, body, wantErr string
	}{
		{"missing code", "instruments:\n  - name: X\n    mcid: 5\n    direction: lower\n", "code is required"},
		{"zero mcid", "instruments:\n  - code: X\n    mcid: 0\n    direction: lower\n", "mcid must be positive"},
		{"bad direction", "instruments:\n  - code: X\n    mcid: 5\n    direction: sideways\n", "direction"},
		{"unlabeled band", "bands:\n  - min_percent: 100\n", "label is required"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var c Config
			err := c.LoadFromFile(writeConfig(t, tc.body))
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("err = %v, want %q", err, tc.wantErr)
			}
		})
	}
}

func TestLoadFromFile_SortsBandsDescending(t *testing.T) {
	var c Config
	err := c.LoadFromFile(writeConfig(t, `
bands:
  - min_percent: 0
    label: minimal
  - min_percent: 100
    label: significant
  - min_percent: 50
    label: moderate
`))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	bands := c.AchievementBands()
	if bands[0].Label != "significant" || bands[2].Label != "minimal" {
		t.Errorf("bands not sorted descending: %+v", bands)
	}
}

func TestLoadFromFile_MissingFile(t *testing.T) {
	var c Config
	if err := c.LoadFromFile(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestFilters_DefaultsToAll(t *testing.T) {
	var c Config
	f, err := c.Filters()
	if err != nil {
		t.Fatalf("filters: %v", err)
	}
	if f.Window != model.WindowAll {
		t.Errorf("default window = %q, want %q", f.Window, model.WindowAll)
	}

	c.Window = "45d"
	if _, err := c.Filters(); err == nil {
		t.Error("unknown window must fail validation")
	}
}

func TestRefTime(t *testing.T) {
	c := Config{AsOf: "2025-06-01"}
	got, err := c.RefTime()
	if err != nil {
		t.Fatalf("ref time: %v", err)
	}
	if !got.Equal(time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("ref = %v", got)
	}

	c.AsOf = "yesterday"
	if _, err := c.RefTime(); err == nil {
		t.Error("unparseable --as-of must fail")
	}

	c.AsOf = ""
	now, err := c.RefTime()
	if err != nil || time.Since(now) > time.Minute {
		t.Errorf("empty --as-of should resolve to now, got %v (%v)", now, err)
	}
}

func TestValidate(t *testing.T) {
	c := Config{Format: "xlsx"}
	if err := c.Validate(); err == nil {
		t.Error("unknown format must fail")
	}

	c = Config{Format: "parquet"}
	if err := c.Validate(); err != nil {
		t.Errorf("parquet format: %v", err)
	}
	if err := c.ValidateWithDSN(); err == nil {
		t.Error("missing DSN must fail ValidateWithDSN")
	}

	c.DSN = "postgres://localhost:5432/registry"
	if err := c.ValidateWithDSN(); err != nil {
		t.Errorf("valid config: %v", err)
	}
}
