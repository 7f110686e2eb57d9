package classify

import (
	"sort"
	"time"

	"github.com/clinicore/registrystats/internal/catalog"
	"github.com/clinicore/registrystats/internal/model"
)

// Classification is the per-instrument outcome verdict for one care target.
type Classification string

const (
	Improved   Classification = "improved"
	Worsened   Classification = "worsened"
	Unchanged  Classification = "unchanged"
	Incomplete Classification = "incomplete"
)

// Outcome is the classified result for one (care target, instrument) pair.
// Results for different instruments on the same target are never combined
// into a single number; everything downstream stays keyed by instrument code.
type Outcome struct {
	CareTargetID   string         `json:"careTargetId"`
	InstrumentCode string         `json:"instrumentCode"`
	Baseline       *float64       `json:"baseline,omitempty"`
	Discharge      *float64       `json:"discharge,omitempty"`
	Delta          *float64       `json:"delta,omitempty"`
	Classification Classification `json:"classification"`
	MCIDAchieved   *bool          `json:"mcidAchieved,omitempty"`
}

// Target classifies every instrument that appears among the care target's
// scores. A target with no scores yields an empty slice. Unknown instrument
// codes classify as incomplete rather than failing the run. The result is a
// pure function of the inputs; instruments are emitted in sorted code order
// so repeated runs are byte-identical.
func Target(t *model.CareTarget, scores []model.OutcomeScore, cat *catalog.Catalog) []Outcome {
	byCode := make(map[string][]model.OutcomeScore)
	var codes []string
	for _, s := range scores {
		if s.CareTargetID != t.ID {
			continue
		}
		if _, seen := byCode[s.InstrumentCode]; !seen {
			codes = append(codes, s.InstrumentCode)
		}
		byCode[s.InstrumentCode] = append(byCode[s.InstrumentCode], s)
	}
	sort.Strings(codes)

	out := make([]Outcome, 0, len(codes))
	for _, code := range codes {
		out = append(out, classifyInstrument(t, code, byCode[code], cat))
	}
	return out
}

func classifyInstrument(t *model.CareTarget, code string, scores []model.OutcomeScore, cat *catalog.Catalog) Outcome {
	o := Outcome{
		CareTargetID:   t.ID,
		InstrumentCode: code,
		Classification: Incomplete,
	}

	ins, ok := cat.Lookup(code)
	if !ok {
		return o
	}

	baseline := pickBaseline(scores)
	discharge := pickDischarge(t, scores)
	if baseline == nil || discharge == nil {
		return o
	}

	b, d := baseline.Score, discharge.Score
	o.Baseline = &b
	o.Discharge = &d

	// Sign-normalize so a positive delta always means improvement.
	var delta float64
	if ins.Direction == catalog.HigherIsBetter {
		delta = d - b
	} else {
		delta = b - d
	}
	o.Delta = &delta

	switch {
	case delta > 0:
		o.Classification = Improved
	case delta < 0:
		o.Classification = Worsened
	default:
		o.Classification = Unchanged
	}

	achieved := delta > 0 && delta >= ins.MCID
	o.MCIDAchieved = &achieved
	return o
}

// pickBaseline selects the earliest baseline-typed administration. Repeat
// baselines can exist when an evaluation is re-done; the intake one wins.
func pickBaseline(scores []model.OutcomeScore) *model.OutcomeScore {
	var best *model.OutcomeScore
	for i := range scores {
		s := &scores[i]
		if s.ScoreType != model.ScoreBaseline {
			continue
		}
		if best == nil || s.RecordedAt.Before(best.RecordedAt) {
			best = s
		}
	}
	return best
}

// pickDischarge selects the authoritative discharge administration:
// the latest discharge-typed score recorded at or before the end of the
// discharge day. When no discharge-typed score exists but the target has a
// discharge date, the latest non-baseline score within that bound is used
// instead. Ties on recordedAt keep the first score seen, so input order is
// the documented tie-break.
func pickDischarge(t *model.CareTarget, scores []model.OutcomeScore) *model.OutcomeScore {
	var cutoff time.Time
	if t.DischargeDate != nil {
		cutoff = endOfDay(*t.DischargeDate)
	}

	latest := func(typed model.ScoreType, anyNonBaseline bool) *model.OutcomeScore {
		var best *model.OutcomeScore
		for i := range scores {
			s := &scores[i]
			if anyNonBaseline {
				if s.ScoreType == model.ScoreBaseline {
					continue
				}
			} else if s.ScoreType != typed {
				continue
			}
			if t.DischargeDate != nil && s.RecordedAt.After(cutoff) {
				continue
			}
			if best == nil || s.RecordedAt.After(best.RecordedAt) {
				best = s
			}
		}
		return best
	}

	if s := latest(model.ScoreDischarge, false); s != nil {
		return s
	}
	if t.DischargeDate == nil {
		return nil
	}
	return latest("", true)
}

func endOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, int(time.Second-time.Nanosecond), t.Location())
}
