package export

import (
	"encoding/csv"
	"math"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/clinicore/registrystats/internal/catalog"
	"github.com/clinicore/registrystats/internal/engine"
	"github.com/clinicore/registrystats/internal/model"
)

func day(n int) time.Time {
	return time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, n)
}

// buildResult produces an engine result over a small snapshot with one
// classified target, one scoreless target, and one overridden target.
func buildResult(t *testing.T, includeOverrides bool) *engine.Result {
	t.Helper()

	d1 := day(30)
	reason := "goals met"
	overrideReason := "moved out of state"

	snap := &model.Snapshot{
		Episodes: []model.Episode{{
			ID:          "e1",
			PatientName: "Test Patient",
			Type:        model.EpisodeMusculoskeletal,
			Status:      model.EpisodeClosed,
			StartDate:   day(0),
			CloseDate:   &d1,
			ClinicID:    "clinic-main",
			ClinicianID: "c1",
		}},
		CareTargets: []model.CareTarget{
			{
				ID: "ct1", EpisodeID: "e1", Name: "low back pain",
				Domain: "orthopedic", BodyRegion: "lumbar spine",
				StartDate: day(0), DischargeDate: &d1, DischargeReason: &reason,
			},
			{
				ID: "ct2", EpisodeID: "e1", Name: "knee pain",
				Domain: "orthopedic", BodyRegion: "knee",
				StartDate: day(0),
			},
			{
				ID: "ct3", EpisodeID: "e1", Name: "hip pain",
				Domain: "orthopedic", BodyRegion: "hip",
				StartDate: day(0), Override: true, OverrideReason: &overrideReason,
			},
		},
		Scores: []model.OutcomeScore{
			{CareTargetID: "ct1", InstrumentCode: "ODI", ScoreType: model.ScoreBaseline, Score: 42.5, RecordedAt: day(0)},
			{CareTargetID: "ct1", InstrumentCode: "ODI", ScoreType: model.ScoreDischarge, Score: 18.25, RecordedAt: day(30)},
		},
	}

	res, err := engine.Run(zerolog.Nop(), snap,
		model.Filters{Window: model.WindowAll, IncludeOverrides: includeOverrides},
		catalog.Builtin(), day(31))
	if err != nil {
		t.Fatalf("engine run: %v", err)
	}
	return res
}

func TestProject_RowShapes(t *testing.T) {
	res := buildResult(t, true)
	rows := Project(res.Set, res.Outcomes, res.Statuses)
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want 3 (one per care target)", len(rows))
	}

	byID := make(map[string]Row)
	for _, r := range rows {
		byID[r.CareTargetID] = r
	}

	classified := byID["ct1"]
	if classified.InstrumentCode == nil || *classified.InstrumentCode != "ODI" {
		t.Errorf("ct1 instrument = %v, want ODI", classified.InstrumentCode)
	}
	if classified.ScoreDelta == nil || *classified.ScoreDelta != 24.25 {
		t.Errorf("ct1 delta = %v, want 24.25", classified.ScoreDelta)
	}
	if classified.DurationDays == nil || *classified.DurationDays != 30 {
		t.Errorf("ct1 duration = %v, want 30", classified.DurationDays)
	}
	if classified.DataQualityStatus != "complete" {
		t.Errorf("ct1 status = %s, want complete", classified.DataQualityStatus)
	}
	if classified.StartYear != 2025 || classified.StartQuarter != 1 {
		t.Errorf("ct1 year/quarter = %d/%d, want 2025/1", classified.StartYear, classified.StartQuarter)
	}

	scoreless := byID["ct2"]
	if scoreless.InstrumentCode != nil || scoreless.BaselineScore != nil {
		t.Error("scoreless target must have empty instrument fields")
	}
	if scoreless.DataQualityStatus != "incomplete" {
		t.Errorf("ct2 status = %s, want incomplete", scoreless.DataQualityStatus)
	}

	overridden := byID["ct3"]
	if overridden.DataQualityStatus != "override" {
		t.Errorf("ct3 status = %s, want override", overridden.DataQualityStatus)
	}
	if overridden.OverrideReason == nil || *overridden.OverrideReason != "moved out of state" {
		t.Errorf("ct3 override reason = %v", overridden.OverrideReason)
	}
}

func TestProject_HonorsOverrideEligibility(t *testing.T) {
	res := buildResult(t, false)
	rows := Project(res.Set, res.Outcomes, res.Statuses)
	for _, r := range rows {
		if r.CareTargetID == "ct3" {
			t.Fatal("overridden target must not export when includeOverrides is false")
		}
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}
}

func TestCSV_RoundTrip(t *testing.T) {
	res := buildResult(t, true)
	rows := Project(res.Set, res.Outcomes, res.Statuses)
	text := CSV(rows)

	records, err := csv.NewReader(strings.NewReader(text)).ReadAll()
	if err != nil {
		t.Fatalf("re-parse csv: %v", err)
	}
	if len(records) != len(rows)+1 {
		t.Fatalf("parsed %d records, want %d rows + header", len(records), len(rows))
	}
	if len(records[0]) != len(Columns) {
		t.Fatalf("header has %d columns, want %d", len(records[0]), len(Columns))
	}
	for i, c := range Columns {
		if records[0][i] != c {
			t.Fatalf("column %d = %q, want %q", i, records[0][i], c)
		}
	}

	col := func(name string) int {
		for i, c := range Columns {
			if c == name {
				return i
			}
		}
		t.Fatalf("no column %q", name)
		return -1
	}

	for _, rec := range records[1:] {
		if rec[col("care_target_id")] != "ct1" {
			continue
		}
		for _, name := range []string{"baseline_score", "discharge_score", "score_delta"} {
			v, err := strconv.ParseFloat(rec[col(name)], 64)
			if err != nil {
				t.Fatalf("parse %s: %v", name, err)
			}
			switch name {
			case "baseline_score":
				if math.Abs(v-42.5) > 1e-9 {
					t.Errorf("baseline round-trip = %v, want 42.5", v)
				}
			case "score_delta":
				if math.Abs(v-24.25) > 1e-9 {
					t.Errorf("delta round-trip = %v, want 24.25", v)
				}
			}
		}
	}
}

func TestCSV_NullsRenderEmpty(t *testing.T) {
	res := buildResult(t, true)
	rows := Project(res.Set, res.Outcomes, res.Statuses)
	text := CSV(rows)

	if strings.Contains(text, "null") || strings.Contains(text, "NaN") {
		t.Error("absent values must serialize as empty strings")
	}
	// Every field is quoted.
	for _, line := range strings.Split(text, "\n") {
		if !strings.HasPrefix(line, `"`) || !strings.HasSuffix(line, `"`) {
			t.Fatalf("line not fully quoted: %s", line)
		}
	}
	if strings.HasSuffix(text, "\n") {
		t.Error("csv must not carry a trailing newline")
	}
}

func TestCSV_EmptySet(t *testing.T) {
	text := CSV(nil)
	if lines := strings.Split(text, "\n"); len(lines) != 1 {
		t.Fatalf("empty export should be header-only, got %d lines", len(lines))
	}
}

func TestFilename(t *testing.T) {
	at := time.Date(2025, 3, 4, 5, 6, 7, 0, time.FixedZone("EST", -5*3600))
	got := Filename("csv", at)
	if got != "outcome-registry-20250304T100607Z.csv" {
		t.Errorf("filename = %s (timestamp must be UTC)", got)
	}
}
