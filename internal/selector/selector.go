// Package selector applies the filter set to a raw registry snapshot and
// produces the immutable working set every aggregator and the export
// projector consume.
package selector

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/clinicore/registrystats/internal/model"
	"github.com/clinicore/registrystats/internal/normalize"
)

// Set is the filtered working set. Targets carries every care target that
// matched the window and domain/region filters, overrides included; Volume
// and Complexity consume it because they measure caseload. Eligible drops
// overridden targets unless the filter opts in; the outcome-facing
// aggregators and the export projector consume it.
type Set struct {
	Ref      time.Time
	Filters  model.Filters
	Episodes []model.Episode
	Targets  []model.CareTarget
	Eligible []model.CareTarget
	Scores   map[string][]model.OutcomeScore

	// Rejected counts malformed source records excluded from the set.
	Rejected int64
}

// EpisodeByID returns an index of the retained episodes.
func (s *Set) EpisodeByID() map[string]*model.Episode {
	idx := make(map[string]*model.Episode, len(s.Episodes))
	for i := range s.Episodes {
		idx[s.Episodes[i].ID] = &s.Episodes[i]
	}
	return idx
}

// TargetsByEpisode groups the override-included targets by owning episode.
func (s *Set) TargetsByEpisode() map[string][]model.CareTarget {
	grouped := make(map[string][]model.CareTarget)
	for _, t := range s.Targets {
		grouped[t.EpisodeID] = append(grouped[t.EpisodeID], t)
	}
	return grouped
}

// Select filters the snapshot down to the working set. The reference
// timestamp is explicit so two runs over the same snapshot always agree;
// nothing in here reads the wall clock. Malformed records are excluded and
// logged, never fatal. The input snapshot is not mutated.
func Select(log zerolog.Logger, snap *model.Snapshot, f model.Filters, ref time.Time) *Set {
	set := &Set{
		Ref:     ref,
		Filters: f,
		Scores:  make(map[string][]model.OutcomeScore),
	}

	windowStart, bounded := f.Window.Start(ref)

	kept := make(map[string]bool, len(snap.Episodes))
	for _, e := range snap.Episodes {
		if e.ID == "" || e.StartDate.IsZero() {
			set.Rejected++
			log.Warn().Str("episode_id", e.ID).Msg("excluding malformed episode record")
			continue
		}
		if bounded && e.StartDate.Before(windowStart) {
			continue
		}
		if f.ClinicianID != "" && e.ClinicianID != f.ClinicianID {
			continue
		}
		kept[e.ID] = true
		set.Episodes = append(set.Episodes, e)
	}

	domain := normalize.Name(f.Domain)
	region := normalize.Name(f.BodyRegion)

	targetKept := make(map[string]bool, len(snap.CareTargets))
	for _, t := range snap.CareTargets {
		if t.ID == "" || t.EpisodeID == "" || t.StartDate.IsZero() {
			set.Rejected++
			log.Warn().Str("care_target_id", t.ID).Msg("excluding malformed care target record")
			continue
		}
		if !kept[t.EpisodeID] {
			continue
		}
		if domain != "" && normalize.Name(t.Domain) != domain {
			continue
		}
		if region != "" && normalize.Name(t.BodyRegion) != region {
			continue
		}
		targetKept[t.ID] = true
		set.Targets = append(set.Targets, t)
		if f.IncludeOverrides || !t.Override {
			set.Eligible = append(set.Eligible, t)
		}
	}

	for _, s := range snap.Scores {
		if s.CareTargetID == "" || s.InstrumentCode == "" {
			set.Rejected++
			log.Warn().Str("care_target_id", s.CareTargetID).Msg("excluding malformed outcome score record")
			continue
		}
		if !targetKept[s.CareTargetID] {
			continue
		}
		set.Scores[s.CareTargetID] = append(set.Scores[s.CareTargetID], s)
	}

	if set.Rejected > 0 {
		log.Warn().Int64("rejected", set.Rejected).Msg("malformed records excluded from working set")
	}
	return set
}
