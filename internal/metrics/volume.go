package metrics

import "github.com/clinicore/registrystats/internal/model"

// Volume counts caseload in scope. It deliberately consumes the
// override-included target list: overrides invalidate outcome data, not the
// fact that the complaint was treated.
type Volume struct {
	Episodes      int            `json:"episodes"`
	CareTargets   int            `json:"careTargets"`
	ByDomain      map[string]int `json:"byDomain"`
	ByBodyRegion  map[string]int `json:"byBodyRegion"`
	ByEpisodeType map[string]int `json:"byEpisodeType"`
}

// ComputeVolume tallies episodes and care targets by domain, body region,
// and episode type.
func ComputeVolume(episodes []model.Episode, targets []model.CareTarget) Volume {
	v := Volume{
		Episodes:      len(episodes),
		CareTargets:   len(targets),
		ByDomain:      make(map[string]int),
		ByBodyRegion:  make(map[string]int),
		ByEpisodeType: make(map[string]int),
	}
	for _, e := range episodes {
		v.ByEpisodeType[string(e.Type)]++
	}
	for _, t := range targets {
		v.ByDomain[t.Domain]++
		v.ByBodyRegion[t.BodyRegion]++
	}
	return v
}
