package export

import (
	"strconv"
	"strings"
)

// Columns is the fixed export column order. Downstream spreadsheets key on
// header names, so this order is part of the contract.
var Columns = []string{
	"episode_id",
	"care_target_id",
	"episode_type",
	"care_target_name",
	"domain",
	"body_region",
	"start_date",
	"discharge_date",
	"duration_days",
	"discharge_reason",
	"instrument_code",
	"baseline_score",
	"discharge_score",
	"score_delta",
	"classification",
	"mcid_achieved",
	"data_quality_status",
	"override_reason",
	"start_year",
	"start_quarter",
}

// CSV serializes rows with a header line first, every field double-quoted,
// and rows joined by \n. Absent values render as empty strings, never the
// literal "null" or "NaN". encoding/csv is not used on the write side
// because it only quotes fields that need it.
func CSV(rows []Row) string {
	var b strings.Builder

	line := make([]string, len(Columns))
	for i, c := range Columns {
		line[i] = quote(c)
	}
	b.WriteString(strings.Join(line, ","))

	for i := range rows {
		b.WriteByte('\n')
		b.WriteString(rowLine(&rows[i]))
	}
	return b.String()
}

func rowLine(r *Row) string {
	fields := []string{
		r.EpisodeID,
		r.CareTargetID,
		r.EpisodeType,
		r.CareTargetName,
		r.Domain,
		r.BodyRegion,
		r.StartDate,
		optStr(r.DischargeDate),
		optInt(r.DurationDays),
		optStr(r.DischargeReason),
		optStr(r.InstrumentCode),
		optFloat(r.BaselineScore),
		optFloat(r.DischargeScore),
		optFloat(r.ScoreDelta),
		optStr(r.Classification),
		optBool(r.MCIDAchieved),
		r.DataQualityStatus,
		optStr(r.OverrideReason),
		strconv.FormatInt(int64(r.StartYear), 10),
		strconv.FormatInt(int64(r.StartQuarter), 10),
	}
	for i, f := range fields {
		fields[i] = quote(f)
	}
	return strings.Join(fields, ",")
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

func optStr(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

func optInt(v *int64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatInt(*v, 10)
}

func optFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func optBool(v *bool) string {
	if v == nil {
		return ""
	}
	return strconv.FormatBool(*v)
}
