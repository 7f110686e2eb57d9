package metrics

import "github.com/clinicore/registrystats/internal/classify"

// MCIDDisclaimer ships with every Outcomes payload. It is part of the data
// contract, not decoration: the percentages below change meaning without it.
const MCIDDisclaimer = "MCID thresholds are interpretive reference points drawn from published literature, not universal clinical cutoffs."

// InstrumentOutcomes is the classification tally for one instrument code.
// Tallies for different instruments are never combined; the per-code map is
// the aggregation boundary.
type InstrumentOutcomes struct {
	Improved    int      `json:"improved"`
	Worsened    int      `json:"worsened"`
	Unchanged   int      `json:"unchanged"`
	Incomplete  int      `json:"incomplete"`
	MedianDelta *float64 `json:"medianDelta"`
	N           int      `json:"n"`
}

// Outcomes is the outcome-improvement metrics object.
type Outcomes struct {
	ByInstrument        map[string]InstrumentOutcomes `json:"byInstrument"`
	PercentImproved     float64                       `json:"percentImproved"`
	PercentMCIDAchieved float64                       `json:"percentMcidAchieved"`
	Disclaimer          string                        `json:"disclaimer"`
}

// ComputeOutcomes tallies classified outcomes per instrument and overall.
// The overall percentages are over complete (baseline+discharge) pairs.
func ComputeOutcomes(outcomes map[string][]classify.Outcome) Outcomes {
	o := Outcomes{
		ByInstrument: make(map[string]InstrumentOutcomes),
		Disclaimer:   MCIDDisclaimer,
	}

	deltas := make(map[string][]float64)
	var complete, improved, achieved int

	for _, targetOutcomes := range outcomes {
		for _, c := range targetOutcomes {
			ins := o.ByInstrument[c.InstrumentCode]
			switch c.Classification {
			case classify.Improved:
				ins.Improved++
			case classify.Worsened:
				ins.Worsened++
			case classify.Unchanged:
				ins.Unchanged++
			default:
				ins.Incomplete++
			}
			if c.Delta != nil {
				ins.N++
				deltas[c.InstrumentCode] = append(deltas[c.InstrumentCode], *c.Delta)
				complete++
				if c.Classification == classify.Improved {
					improved++
				}
				if c.MCIDAchieved != nil && *c.MCIDAchieved {
					achieved++
				}
			}
			o.ByInstrument[c.InstrumentCode] = ins
		}
	}

	for code, ins := range o.ByInstrument {
		ins.MedianDelta = Median(deltas[code])
		o.ByInstrument[code] = ins
	}
	o.PercentImproved = Percent(improved, complete)
	o.PercentMCIDAchieved = Percent(achieved, complete)
	return o
}
