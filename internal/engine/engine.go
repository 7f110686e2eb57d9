// Package engine orchestrates one analytics run: select → classify →
// aggregate over a single immutable snapshot. Every phase is a pure
// computation; data problems degrade locally and never abort the run.
package engine

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/clinicore/registrystats/internal/catalog"
	"github.com/clinicore/registrystats/internal/classify"
	"github.com/clinicore/registrystats/internal/metrics"
	"github.com/clinicore/registrystats/internal/model"
	"github.com/clinicore/registrystats/internal/selector"
)

// PhaseError wraps an error with the phase where it occurred.
type PhaseError struct {
	Phase string
	Err   error
}

func (e *PhaseError) Error() string {
	return fmt.Sprintf("%s: %s", e.Phase, e.Err)
}

func (e *PhaseError) Unwrap() error {
	return e.Err
}

// Report bundles the six dashboard metrics objects with run metadata. Each
// section is independently consumable; none depends on another.
type Report struct {
	GeneratedAt time.Time          `json:"generatedAt"`
	Filters     model.Filters      `json:"filters"`
	Volume      metrics.Volume     `json:"volume"`
	Resolution  metrics.Resolution `json:"resolution"`
	Timing      metrics.Timing     `json:"timing"`
	Outcomes    metrics.Outcomes   `json:"outcomes"`
	Complexity  metrics.Complexity `json:"complexity"`
	Integrity   metrics.Integrity  `json:"integrity"`
}

// Result is the full output of a run: the working set and classifications
// feed the export projector; the report feeds the dashboards.
type Result struct {
	Set      *selector.Set
	Outcomes map[string][]classify.Outcome
	Statuses map[string]classify.IntegrityStatus
	Report   *Report
}

// Classify runs the outcome and integrity classifiers over every eligible
// target in the working set.
func Classify(set *selector.Set, cat *catalog.Catalog) (map[string][]classify.Outcome, map[string]classify.IntegrityStatus) {
	outcomes := make(map[string][]classify.Outcome, len(set.Eligible))
	statuses := make(map[string]classify.IntegrityStatus, len(set.Eligible))
	for i := range set.Eligible {
		t := &set.Eligible[i]
		c := classify.Target(t, set.Scores[t.ID], cat)
		outcomes[t.ID] = c
		statuses[t.ID] = classify.Integrity(t, c)
	}
	return outcomes, statuses
}

// Run executes one full analytics pass over the snapshot at the given
// reference time. Only filter validation can fail; malformed records and
// unknown instruments degrade locally inside their own phase.
func Run(log zerolog.Logger, snap *model.Snapshot, f model.Filters, cat *catalog.Catalog, ref time.Time) (*Result, error) {
	if err := f.Validate(); err != nil {
		return nil, &PhaseError{Phase: "select", Err: err}
	}

	start := time.Now()
	set := selector.Select(log, snap, f, ref)
	log.Info().
		Int("episodes", len(set.Episodes)).
		Int("care_targets", len(set.Targets)).
		Int("eligible", len(set.Eligible)).
		Msg("working set selected")

	outcomes, statuses := Classify(set, cat)

	report := &Report{
		GeneratedAt: ref,
		Filters:     f,
		Volume:      metrics.ComputeVolume(set.Episodes, set.Targets),
		Resolution:  metrics.ComputeResolution(set.Eligible),
		Timing:      metrics.ComputeTiming(set.Eligible),
		Outcomes:    metrics.ComputeOutcomes(outcomes),
		Complexity:  metrics.ComputeComplexity(set.Episodes, set.TargetsByEpisode()),
		Integrity:   metrics.ComputeIntegrity(set.Eligible, outcomes, statuses),
	}

	log.Info().
		Int("episodes", report.Volume.Episodes).
		Int("care_targets", report.Volume.CareTargets).
		Dur("duration", time.Since(start)).
		Msg("analytics run complete")

	return &Result{Set: set, Outcomes: outcomes, Statuses: statuses, Report: report}, nil
}
