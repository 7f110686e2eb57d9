package metrics

import (
	"github.com/clinicore/registrystats/internal/classify"
	"github.com/clinicore/registrystats/internal/model"
)

// Integrity reports outcome-data completeness. "Symmetry" means a target has
// both a baseline and a discharge score for every instrument it attempted.
type Integrity struct {
	CareTargets         int            `json:"careTargets"`
	Complete            int            `json:"complete"`
	CompletePercent     float64        `json:"completePercent"`
	Overrides           int            `json:"overrides"`
	OverridePercent     float64        `json:"overridePercent"`
	MissingByInstrument map[string]int `json:"missingByInstrument"`
}

// ComputeIntegrity tallies integrity statuses and per-instrument missingness.
// A target counts as missing for an instrument when it attempted the
// instrument (has at least one score for it) but lacks a complete
// baseline+discharge pair.
func ComputeIntegrity(targets []model.CareTarget, outcomes map[string][]classify.Outcome, statuses map[string]classify.IntegrityStatus) Integrity {
	m := Integrity{
		CareTargets:         len(targets),
		MissingByInstrument: make(map[string]int),
	}

	for _, t := range targets {
		switch statuses[t.ID] {
		case classify.StatusComplete:
			m.Complete++
		case classify.StatusOverride:
			m.Overrides++
		}
		for _, o := range outcomes[t.ID] {
			if o.Classification == classify.Incomplete {
				m.MissingByInstrument[o.InstrumentCode]++
			}
		}
	}

	m.CompletePercent = Percent(m.Complete, m.CareTargets)
	m.OverridePercent = Percent(m.Overrides, m.CareTargets)
	return m
}
