// Package export flattens the filtered, classified working set into the
// registry export: one row per (care target, classified instrument),
// serialized as CSV for spreadsheet consumers or Parquet for warehouse loads.
package export

import (
	"fmt"
	"time"

	"github.com/clinicore/registrystats/internal/classify"
	"github.com/clinicore/registrystats/internal/selector"
)

// Row mirrors one registry export line. Optional fields are pointers so both
// serializers can render absent values as genuinely empty, never "null".
// Dates are pre-formatted strings to keep the two serializations identical.
type Row struct {
	EpisodeID         string   `parquet:"episode_id"`
	CareTargetID      string   `parquet:"care_target_id"`
	EpisodeType       string   `parquet:"episode_type"`
	CareTargetName    string   `parquet:"care_target_name"`
	Domain            string   `parquet:"domain"`
	BodyRegion        string   `parquet:"body_region"`
	StartDate         string   `parquet:"start_date"`
	DischargeDate     *string  `parquet:"discharge_date,optional"`
	DurationDays      *int64   `parquet:"duration_days,optional"`
	DischargeReason   *string  `parquet:"discharge_reason,optional"`
	InstrumentCode    *string  `parquet:"instrument_code,optional"`
	BaselineScore     *float64 `parquet:"baseline_score,optional"`
	DischargeScore    *float64 `parquet:"discharge_score,optional"`
	ScoreDelta        *float64 `parquet:"score_delta,optional"`
	Classification    *string  `parquet:"classification,optional"`
	MCIDAchieved      *bool    `parquet:"mcid_achieved,optional"`
	DataQualityStatus string   `parquet:"data_quality_status"`
	OverrideReason    *string  `parquet:"override_reason,optional"`
	StartYear         int32    `parquet:"start_year"`
	StartQuarter      int32    `parquet:"start_quarter"`
}

const dateLayout = "2006-01-02"

// Project flattens the working set into export rows. Targets with classified
// instruments emit one row per instrument; a target with no scores emits a
// single row with empty instrument fields so it still appears in the registry.
func Project(set *selector.Set, outcomes map[string][]classify.Outcome, statuses map[string]classify.IntegrityStatus) []Row {
	episodes := set.EpisodeByID()

	rows := make([]Row, 0, len(set.Eligible))
	for i := range set.Eligible {
		t := &set.Eligible[i]

		base := Row{
			EpisodeID:         t.EpisodeID,
			CareTargetID:      t.ID,
			CareTargetName:    t.Name,
			Domain:            t.Domain,
			BodyRegion:        t.BodyRegion,
			StartDate:         t.StartDate.Format(dateLayout),
			DischargeReason:   t.DischargeReason,
			DataQualityStatus: string(statuses[t.ID]),
			OverrideReason:    t.OverrideReason,
		}
		if t.DischargeDate != nil {
			d := t.DischargeDate.Format(dateLayout)
			base.DischargeDate = &d
		}
		if days := t.DurationDays(); days != nil {
			v := int64(*days)
			base.DurationDays = &v
		}
		if e := episodes[t.EpisodeID]; e != nil {
			base.EpisodeType = string(e.Type)
			base.StartYear = int32(e.StartDate.Year())
			base.StartQuarter = quarter(e.StartDate)
		}

		classified := outcomes[t.ID]
		if len(classified) == 0 {
			rows = append(rows, base)
			continue
		}
		for _, o := range classified {
			row := base
			code := o.InstrumentCode
			cls := string(o.Classification)
			row.InstrumentCode = &code
			row.Classification = &cls
			row.BaselineScore = o.Baseline
			row.DischargeScore = o.Discharge
			row.ScoreDelta = o.Delta
			row.MCIDAchieved = o.MCIDAchieved
			rows = append(rows, row)
		}
	}
	return rows
}

func quarter(t time.Time) int32 {
	return int32((int(t.Month())-1)/3 + 1)
}

// Filename generates the download filename with a UTC timestamp.
func Filename(ext string, now time.Time) string {
	return fmt.Sprintf("outcome-registry-%s.%s", now.UTC().Format("20060102T150405Z"), ext)
}
