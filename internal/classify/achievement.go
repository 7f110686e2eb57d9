package classify

import (
	"fmt"

	"github.com/clinicore/registrystats/internal/catalog"
)

// Band maps a lower achievement-percentage bound to a display label. Bands
// are presentation configuration supplied by the caller, ordered by
// descending MinPercent; tuning them never touches classification logic.
type Band struct {
	MinPercent float64 `yaml:"min_percent"`
	Label      string  `yaml:"label"`
}

// DefaultBands is the shipped band table for MCID achievement levels.
var DefaultBands = []Band{
	{MinPercent: 150, Label: "excellent"},
	{MinPercent: 100, Label: "significant"},
	{MinPercent: 50, Label: "moderate"},
	{MinPercent: 0, Label: "minimal"},
}

// Achievement is the MCID-achievement view for one (care target, instrument)
// pair, shaped for the dashboard's achievement card.
type Achievement struct {
	ToolName              string   `json:"toolName"`
	MCIDThreshold         float64  `json:"mcidThreshold"`
	ScoreChange           *float64 `json:"scoreChange,omitempty"`
	AchievementPercentage float64  `json:"achievementPercentage"`
	AchievementLevel      string   `json:"achievementLevel"`
	BaselineScore         *float64 `json:"baselineScore,omitempty"`
	DischargeScore        *float64 `json:"dischargeScore,omitempty"`
	Interpretation        string   `json:"interpretation"`
	PercentImprovement    *float64 `json:"percentImprovement,omitempty"`
}

// NewAchievement builds the achievement view for a classified outcome.
// The achievement percentage is delta/MCID*100, left unclamped on the upper
// end, and is never computed for non-improving deltas. Any visual clamping
// is the dashboard's concern.
func NewAchievement(o Outcome, ins catalog.Instrument, bands []Band) Achievement {
	a := Achievement{
		ToolName:       ins.Name,
		MCIDThreshold:  ins.MCID,
		ScoreChange:    o.Delta,
		BaselineScore:  o.Baseline,
		DischargeScore: o.Discharge,
	}

	if o.Classification == Incomplete || o.Delta == nil {
		a.AchievementLevel = "none"
		a.Interpretation = fmt.Sprintf("%s is missing a baseline or discharge score", ins.Name)
		return a
	}

	delta := *o.Delta
	switch {
	case delta < 0:
		a.AchievementLevel = "declined"
		a.Interpretation = fmt.Sprintf("%s worsened by %.1f points", ins.Name, -delta)
	case delta == 0:
		a.AchievementLevel = "none"
		a.Interpretation = fmt.Sprintf("%s showed no change", ins.Name)
	default:
		a.AchievementPercentage = delta / ins.MCID * 100
		a.AchievementLevel = bandLabel(a.AchievementPercentage, bands)
		if delta >= ins.MCID {
			a.Interpretation = fmt.Sprintf("change of %.1f meets the MCID of %.1f for %s", delta, ins.MCID, ins.Name)
		} else {
			a.Interpretation = fmt.Sprintf("change of %.1f does not meet the MCID of %.1f for %s", delta, ins.MCID, ins.Name)
		}
	}

	if o.Baseline != nil && *o.Baseline != 0 {
		pct := delta / abs(*o.Baseline) * 100
		a.PercentImprovement = &pct
	}
	return a
}

// bandLabel resolves the first band whose lower bound the percentage meets.
// Assumes bands are ordered by descending MinPercent, as DefaultBands is.
func bandLabel(pct float64, bands []Band) string {
	if len(bands) == 0 {
		bands = DefaultBands
	}
	for _, b := range bands {
		if pct >= b.MinPercent {
			return b.Label
		}
	}
	return "minimal"
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
