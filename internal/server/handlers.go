package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/clinicore/registrystats/internal/classify"
	"github.com/clinicore/registrystats/internal/engine"
	"github.com/clinicore/registrystats/internal/export"
	"github.com/clinicore/registrystats/internal/model"
	"github.com/clinicore/registrystats/internal/normalize"
)

// parseFilters builds the filter set and reference timestamp from query
// parameters. asOf pins the window boundary; it defaults to the current UTC
// time, read here at the boundary rather than inside the engine.
func parseFilters(r *http.Request) (model.Filters, time.Time, error) {
	q := r.URL.Query()

	f := model.Filters{
		Window:      model.TimeWindow(q.Get("window")),
		Domain:      q.Get("domain"),
		BodyRegion:  q.Get("bodyRegion"),
		ClinicianID: q.Get("clinician"),
	}
	if f.Window == "" {
		f.Window = model.WindowAll
	}
	if v := q.Get("includeOverrides"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return f, time.Time{}, fmt.Errorf("invalid includeOverrides value %q", v)
		}
		f.IncludeOverrides = b
	}
	if err := f.Validate(); err != nil {
		return f, time.Time{}, err
	}

	ref := time.Now().UTC()
	if v := q.Get("asOf"); v != "" {
		t := normalize.ParseDate(v)
		if t == nil {
			return f, time.Time{}, fmt.Errorf("unparseable asOf value %q", v)
		}
		ref = *t
	}
	return f, ref, nil
}

func (s *Server) run(r *http.Request) (*engine.Result, error) {
	f, ref, err := parseFilters(r)
	if err != nil {
		return nil, &badRequestError{err}
	}
	snap, err := s.src.FetchSnapshot(r.Context())
	if err != nil {
		return nil, fmt.Errorf("fetch snapshot: %w", err)
	}
	return engine.Run(s.log, snap, f, s.cat, ref)
}

type badRequestError struct{ err error }

func (e *badRequestError) Error() string { return e.err.Error() }

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	res, err := s.run(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, res.Report)
}

func (s *Server) handleMetricsSection(w http.ResponseWriter, r *http.Request) {
	res, err := s.run(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	var payload any
	switch chi.URLParam(r, "section") {
	case "volume":
		payload = res.Report.Volume
	case "resolution":
		payload = res.Report.Resolution
	case "timing":
		payload = res.Report.Timing
	case "outcomes":
		payload = res.Report.Outcomes
	case "complexity":
		payload = res.Report.Complexity
	case "integrity":
		payload = res.Report.Integrity
	default:
		http.Error(w, `{"error":"unknown metrics section"}`, http.StatusNotFound)
		return
	}
	s.writeJSON(w, payload)
}

// handleAchievements serves the per-instrument MCID achievement views for
// one care target. Classification runs over the full snapshot: achievement
// cards are a per-patient view, not a cohort metric, so the cohort filters
// do not apply.
func (s *Server) handleAchievements(w http.ResponseWriter, r *http.Request) {
	targetID := chi.URLParam(r, "targetID")

	snap, err := s.src.FetchSnapshot(r.Context())
	if err != nil {
		s.writeError(w, fmt.Errorf("fetch snapshot: %w", err))
		return
	}

	var target *model.CareTarget
	for i := range snap.CareTargets {
		if snap.CareTargets[i].ID == targetID {
			target = &snap.CareTargets[i]
			break
		}
	}
	if target == nil {
		http.Error(w, `{"error":"care target not found"}`, http.StatusNotFound)
		return
	}

	outcomes := classify.Target(target, snap.Scores, s.cat)
	achievements := make([]classify.Achievement, 0, len(outcomes))
	for _, o := range outcomes {
		ins, ok := s.cat.Lookup(o.InstrumentCode)
		if !ok {
			continue
		}
		achievements = append(achievements, classify.NewAchievement(o, ins, s.bands))
	}
	s.writeJSON(w, achievements)
}

func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	res, err := s.run(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	rows := export.Project(res.Set, res.Outcomes, res.Statuses)
	name := export.Filename("csv", time.Now())

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	if _, err := w.Write([]byte(export.CSV(rows))); err != nil {
		s.log.Warn().Err(err).Msg("writing export response")
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.log.Warn().Err(err).Msg("writing json response")
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	var br *badRequestError
	var pe *engine.PhaseError
	if errors.As(err, &br) || errors.As(err, &pe) {
		status = http.StatusBadRequest
	}
	if status == http.StatusInternalServerError {
		s.log.Error().Err(err).Msg("request failed")
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}
