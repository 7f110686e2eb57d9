package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/clinicore/registrystats/internal/catalog"
	"github.com/clinicore/registrystats/internal/classify"
	"github.com/clinicore/registrystats/internal/engine"
	"github.com/clinicore/registrystats/internal/model"
)

type fakeSource struct {
	snap *model.Snapshot
	err  error
}

func (f *fakeSource) FetchSnapshot(ctx context.Context) (*model.Snapshot, error) {
	return f.snap, f.err
}

func day(n int) time.Time {
	return time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, n)
}

func testServer(src SnapshotSource) *Server {
	return New(src, catalog.Builtin(), classify.DefaultBands, zerolog.Nop())
}

func testSnapshot() *model.Snapshot {
	d20 := day(20)
	reason := "goals met"
	return &model.Snapshot{
		Episodes: []model.Episode{{
			ID: "e1", PatientName: "P1", Type: model.EpisodeMusculoskeletal,
			Status: model.EpisodeClosed, StartDate: day(0), CloseDate: &d20,
			ClinicID: "clinic-main", ClinicianID: "c1",
		}},
		CareTargets: []model.CareTarget{{
			ID: "ct1", EpisodeID: "e1", Name: "low back pain",
			Domain: "orthopedic", BodyRegion: "lumbar spine",
			StartDate: day(0), DischargeDate: &d20, DischargeReason: &reason,
		}},
		Scores: []model.OutcomeScore{
			{CareTargetID: "ct1", InstrumentCode: "ODI", ScoreType: model.ScoreBaseline, Score: 40, RecordedAt: day(0)},
			{CareTargetID: "ct1", InstrumentCode: "ODI", ScoreType: model.ScoreDischarge, Score: 20, RecordedAt: day(20)},
		},
	}
}

func get(t *testing.T, s *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	s.Routes().ServeHTTP(rec, req)
	return rec
}

func TestReportEndpoint(t *testing.T) {
	s := testServer(&fakeSource{snap: testSnapshot()})

	rec := get(t, s, "/v1/report?window=all&asOf=2025-06-01")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		t.Errorf("content type = %s", ct)
	}

	var report engine.Report
	if err := json.Unmarshal(rec.Body.Bytes(), &report); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if report.Volume.Episodes != 1 || report.Volume.CareTargets != 1 {
		t.Errorf("volume = %+v", report.Volume)
	}
	if report.Outcomes.ByInstrument["ODI"].Improved != 1 {
		t.Errorf("outcomes = %+v", report.Outcomes)
	}
	if !report.GeneratedAt.Equal(day(31)) {
		t.Errorf("generatedAt = %v, want pinned asOf", report.GeneratedAt)
	}
}

func TestMetricsSectionEndpoint(t *testing.T) {
	s := testServer(&fakeSource{snap: testSnapshot()})

	rec := get(t, s, "/v1/metrics/timing?asOf=2025-06-01")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	var timing struct {
		Discharged int      `json:"discharged"`
		MedianDays *float64 `json:"medianDays"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &timing); err != nil {
		t.Fatalf("decode timing: %v", err)
	}
	if timing.Discharged != 1 || timing.MedianDays == nil || *timing.MedianDays != 20 {
		t.Errorf("timing = %+v", timing)
	}

	if rec := get(t, s, "/v1/metrics/velocity"); rec.Code != http.StatusNotFound {
		t.Errorf("unknown section status = %d, want 404", rec.Code)
	}
}

func TestAchievementsEndpoint(t *testing.T) {
	s := testServer(&fakeSource{snap: testSnapshot()})

	rec := get(t, s, "/v1/targets/ct1/achievements")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	var achievements []classify.Achievement
	if err := json.Unmarshal(rec.Body.Bytes(), &achievements); err != nil {
		t.Fatalf("decode achievements: %v", err)
	}
	if len(achievements) != 1 {
		t.Fatalf("achievements = %d, want 1", len(achievements))
	}
	a := achievements[0]
	if a.ScoreChange == nil || *a.ScoreChange != 20 || a.AchievementPercentage != 200 {
		t.Errorf("achievement = %+v", a)
	}
	if a.AchievementLevel != "excellent" {
		t.Errorf("level = %s, want excellent", a.AchievementLevel)
	}

	if rec := get(t, s, "/v1/targets/nope/achievements"); rec.Code != http.StatusNotFound {
		t.Errorf("missing target status = %d, want 404", rec.Code)
	}
}

func TestExportEndpoint(t *testing.T) {
	s := testServer(&fakeSource{snap: testSnapshot()})

	rec := get(t, s, "/v1/export.csv?asOf=2025-06-01")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Errorf("content type = %s", ct)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "attachment") ||
		!strings.Contains(cd, "outcome-registry-") {
		t.Errorf("content disposition = %s", cd)
	}
	if !strings.Contains(rec.Body.String(), `"ct1"`) {
		t.Error("export body missing care target row")
	}
}

func TestBadRequests(t *testing.T) {
	s := testServer(&fakeSource{snap: testSnapshot()})

	for _, path := range []string{
		"/v1/report?window=7d",
		"/v1/report?includeOverrides=maybe",
		"/v1/report?asOf=not-a-date",
	} {
		if rec := get(t, s, path); rec.Code != http.StatusBadRequest {
			t.Errorf("%s status = %d, want 400", path, rec.Code)
		}
	}
}

func TestSourceFailure(t *testing.T) {
	s := testServer(&fakeSource{err: errors.New("connection refused")})
	if rec := get(t, s, "/v1/report"); rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
}
