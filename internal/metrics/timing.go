package metrics

import "github.com/clinicore/registrystats/internal/model"

// Timing reports duration-to-resolution statistics in days for discharged
// care targets. Median, not mean: a handful of long-running neuro episodes
// would otherwise dominate the number.
type Timing struct {
	Discharged int      `json:"discharged"`
	MedianDays *float64 `json:"medianDays"`
	MinDays    *int     `json:"minDays,omitempty"`
	MaxDays    *int     `json:"maxDays,omitempty"`
}

// ComputeTiming reduces start→discharge durations for discharged targets only.
func ComputeTiming(targets []model.CareTarget) Timing {
	var t Timing
	var days []float64
	for _, target := range targets {
		d := target.DurationDays()
		if d == nil {
			continue
		}
		t.Discharged++
		days = append(days, float64(*d))
		if t.MinDays == nil || *d < *t.MinDays {
			v := *d
			t.MinDays = &v
		}
		if t.MaxDays == nil || *d > *t.MaxDays {
			v := *d
			t.MaxDays = &v
		}
	}
	t.MedianDays = Median(days)
	return t
}
