package export

import (
	"os"
	"path/filepath"
	"testing"
)

func TestParquet_RoundTrip(t *testing.T) {
	res := buildResult(t, true)
	rows := Project(res.Set, res.Outcomes, res.Statuses)

	path := filepath.Join(t.TempDir(), "registry.parquet")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := WriteParquet(f, rows); err != nil {
		t.Fatalf("write parquet: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	back, err := ReadParquet(path)
	if err != nil {
		t.Fatalf("read parquet: %v", err)
	}
	if len(back) != len(rows) {
		t.Fatalf("round-trip rows = %d, want %d", len(back), len(rows))
	}

	byID := make(map[string]Row)
	for _, r := range back {
		byID[r.CareTargetID] = r
	}
	got := byID["ct1"]
	if got.ScoreDelta == nil || *got.ScoreDelta != 24.25 {
		t.Errorf("delta round-trip = %v, want 24.25", got.ScoreDelta)
	}
	if got.DataQualityStatus != "complete" {
		t.Errorf("status round-trip = %s, want complete", got.DataQualityStatus)
	}
	if byID["ct2"].InstrumentCode != nil {
		t.Error("optional fields must stay absent through the round trip")
	}
}

func TestParquet_EmptySet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.parquet")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := WriteParquet(f, nil); err != nil {
		t.Fatalf("write empty parquet: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	back, err := ReadParquet(path)
	if err != nil {
		t.Fatalf("read empty parquet: %v", err)
	}
	if len(back) != 0 {
		t.Fatalf("empty file round-tripped %d rows", len(back))
	}
}
