package metrics

import (
	"time"

	"github.com/clinicore/registrystats/internal/model"
)

// Complexity measures multi-complaint caseload shape. Like Volume it
// consumes the override-included target list.
type Complexity struct {
	Episodes                 int      `json:"episodes"`
	MultiTargetEpisodes      int      `json:"multiTargetEpisodes"`
	MultiTargetPercent       float64  `json:"multiTargetPercent"`
	AvgTargetsPerEpisode     float64  `json:"avgTargetsPerEpisode"`
	StaggeredEpisodes        int      `json:"staggeredEpisodes"`
	StaggeredPercent         float64  `json:"staggeredPercent"`
	MedianResolutionSpanDays *float64 `json:"medianResolutionSpanDays"`
}

// ComputeComplexity tallies multi-target episodes and staggered resolution.
// An episode resolves staggered when at least two of its care targets are
// discharged on different dates; the span is max−min discharge date in days.
func ComputeComplexity(episodes []model.Episode, targetsByEpisode map[string][]model.CareTarget) Complexity {
	c := Complexity{Episodes: len(episodes)}
	if len(episodes) == 0 {
		return c
	}

	var totalTargets int
	var spans []float64
	for _, e := range episodes {
		targets := targetsByEpisode[e.ID]
		totalTargets += len(targets)
		if len(targets) > 1 {
			c.MultiTargetEpisodes++
		}

		var minD, maxD *time.Time
		discharged := 0
		for _, t := range targets {
			if t.DischargeDate == nil {
				continue
			}
			discharged++
			d := *t.DischargeDate
			if minD == nil || d.Before(*minD) {
				minD = &d
			}
			if maxD == nil || d.After(*maxD) {
				maxD = &d
			}
		}
		if discharged >= 2 && maxD.After(*minD) {
			c.StaggeredEpisodes++
			spans = append(spans, maxD.Sub(*minD).Hours()/24)
		}
	}

	c.MultiTargetPercent = Percent(c.MultiTargetEpisodes, c.Episodes)
	c.StaggeredPercent = Percent(c.StaggeredEpisodes, c.Episodes)
	c.AvgTargetsPerEpisode = Round1(float64(totalTargets) / float64(c.Episodes))
	c.MedianResolutionSpanDays = Median(spans)
	return c
}
