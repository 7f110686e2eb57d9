package model

import (
	"fmt"
	"time"
)

// TimeWindow is the lookback window applied to episode start dates.
type TimeWindow string

const (
	Window30d  TimeWindow = "30d"
	Window90d  TimeWindow = "90d"
	Window12mo TimeWindow = "12mo"
	WindowAll  TimeWindow = "all"
)

// AllWindows lists the supported windows in canonical order.
var AllWindows = []TimeWindow{Window30d, Window90d, Window12mo, WindowAll}

// Valid reports whether w is one of the supported windows.
func (w TimeWindow) Valid() bool {
	for _, known := range AllWindows {
		if w == known {
			return true
		}
	}
	return false
}

// Start returns the inclusive lower bound of the window relative to ref.
// The second return is false for WindowAll, which has no lower bound.
func (w TimeWindow) Start(ref time.Time) (time.Time, bool) {
	switch w {
	case Window30d:
		return ref.AddDate(0, 0, -30), true
	case Window90d:
		return ref.AddDate(0, 0, -90), true
	case Window12mo:
		return ref.AddDate(-1, 0, 0), true
	default:
		return time.Time{}, false
	}
}

// Filters selects the working set every aggregator and the export projector
// consume. The reference timestamp is passed explicitly at selection time so
// results are reproducible; the engine never reads the wall clock.
type Filters struct {
	Window           TimeWindow `json:"window"`
	Domain           string     `json:"domain,omitempty"`
	BodyRegion       string     `json:"bodyRegion,omitempty"`
	ClinicianID      string     `json:"clinicianId,omitempty"`
	IncludeOverrides bool       `json:"includeOverrides"`
}

// Validate checks that the filter set is well-formed.
func (f Filters) Validate() error {
	if !f.Window.Valid() {
		return fmt.Errorf("unknown time window %q (expected one of 30d, 90d, 12mo, all)", f.Window)
	}
	return nil
}
