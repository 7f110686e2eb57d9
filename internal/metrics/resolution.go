package metrics

import (
	"sort"

	"github.com/clinicore/registrystats/internal/model"
)

// DomainResolution is the discharge breakdown for one clinical domain.
type DomainResolution struct {
	Targets    int     `json:"targets"`
	Discharged int     `json:"discharged"`
	Rate       float64 `json:"rate"`
}

// ReasonCount is one discharge-reason frequency entry.
type ReasonCount struct {
	Reason string `json:"reason"`
	Count  int    `json:"count"`
}

// Resolution reports discharge status facts. Labels say "discharged", never
// "successful": resolution is a status, not an outcome judgment.
type Resolution struct {
	TotalDischarged     int                         `json:"totalDischarged"`
	DischargeRate       float64                     `json:"dischargeRate"`
	ByDomain            map[string]DomainResolution `json:"byDomain"`
	TopDischargeReasons []ReasonCount               `json:"topDischargeReasons"`
}

const topReasonCount = 5

// ComputeResolution tallies discharged targets overall, per domain, and the
// top discharge-reason frequencies.
func ComputeResolution(targets []model.CareTarget) Resolution {
	r := Resolution{
		ByDomain:            make(map[string]DomainResolution),
		TopDischargeReasons: []ReasonCount{},
	}

	reasons := make(map[string]int)
	for _, t := range targets {
		d := r.ByDomain[t.Domain]
		d.Targets++
		if t.Discharged() {
			d.Discharged++
			r.TotalDischarged++
			if t.DischargeReason != nil && *t.DischargeReason != "" {
				reasons[*t.DischargeReason]++
			}
		}
		r.ByDomain[t.Domain] = d
	}

	for domain, d := range r.ByDomain {
		d.Rate = Percent(d.Discharged, d.Targets)
		r.ByDomain[domain] = d
	}
	r.DischargeRate = Percent(r.TotalDischarged, len(targets))

	for reason, n := range reasons {
		r.TopDischargeReasons = append(r.TopDischargeReasons, ReasonCount{Reason: reason, Count: n})
	}
	sort.Slice(r.TopDischargeReasons, func(i, j int) bool {
		a, b := r.TopDischargeReasons[i], r.TopDischargeReasons[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		return a.Reason < b.Reason
	})
	if len(r.TopDischargeReasons) > topReasonCount {
		r.TopDischargeReasons = r.TopDischargeReasons[:topReasonCount]
	}
	return r
}
