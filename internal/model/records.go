package model

import "time"

// EpisodeType distinguishes the two clinical tracks the registry covers.
type EpisodeType string

const (
	EpisodeMusculoskeletal EpisodeType = "musculoskeletal"
	EpisodeNeurologic      EpisodeType = "neurologic"
)

// EpisodeStatus is the lifecycle state of an episode. Episodes are never
// deleted, only closed.
type EpisodeStatus string

const (
	EpisodeActive  EpisodeStatus = "active"
	EpisodeClosed  EpisodeStatus = "closed"
	EpisodePending EpisodeStatus = "pending"
)

// Episode is one patient's care relationship with the clinic.
// CloseDate, when present, is always >= StartDate.
type Episode struct {
	ID          string        `json:"id"`
	PatientName string        `json:"patientName"`
	Type        EpisodeType   `json:"type"`
	Status      EpisodeStatus `json:"status"`
	StartDate   time.Time     `json:"startDate"`
	CloseDate   *time.Time    `json:"closeDate,omitempty"`
	ClinicID    string        `json:"clinicId"`
	ClinicianID string        `json:"clinicianId"`
}

// CareTarget is one discrete complaint tracked within an episode. An episode
// may own many care targets; that is what multi-complaint tracking means.
type CareTarget struct {
	ID              string     `json:"id"`
	EpisodeID       string     `json:"episodeId"`
	Name            string     `json:"name"`
	Domain          string     `json:"domain"`
	BodyRegion      string     `json:"bodyRegion"`
	StartDate       time.Time  `json:"startDate"`
	DischargeDate   *time.Time `json:"dischargeDate,omitempty"`
	DischargeReason *string    `json:"dischargeReason,omitempty"`
	Override        bool       `json:"override"`
	OverrideReason  *string    `json:"overrideReason,omitempty"`
}

// Discharged reports whether the target has a discharge date.
func (t *CareTarget) Discharged() bool {
	return t.DischargeDate != nil
}

// DurationDays is the number of whole days from start to discharge.
// Returns nil for undischarged targets. Never negative for valid records.
func (t *CareTarget) DurationDays() *int {
	if t.DischargeDate == nil {
		return nil
	}
	d := int(t.DischargeDate.Sub(t.StartDate).Hours() / 24)
	return &d
}

// ScoreType tags one administration of an instrument.
type ScoreType string

const (
	ScoreBaseline  ScoreType = "baseline"
	ScoreFollowUp  ScoreType = "followup"
	ScoreDischarge ScoreType = "discharge"
)

// OutcomeScore is one scored administration of an instrument against a care target.
type OutcomeScore struct {
	CareTargetID   string    `json:"careTargetId"`
	InstrumentCode string    `json:"instrumentCode"`
	ScoreType      ScoreType `json:"scoreType"`
	Score          float64   `json:"score"`
	RecordedAt     time.Time `json:"recordedAt"`
}

// Snapshot is one immutable materialized view of the registry's source records.
// The engine never fetches data itself; callers hand it a snapshot.
type Snapshot struct {
	Episodes    []Episode
	CareTargets []CareTarget
	Scores      []OutcomeScore
}
