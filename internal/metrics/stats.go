// Package metrics holds the six independent aggregators. Each is a pure
// reduction over the filtered, classified working set: no mutation, no
// ordering dependency between aggregators, and a well-defined zero state for
// empty input instead of an error.
package metrics

import (
	"math"
	"sort"
)

// Median returns the median of vals, or nil for empty input. The registry
// reports medians rather than means throughout to resist outlier skew.
func Median(vals []float64) *float64 {
	if len(vals) == 0 {
		return nil
	}
	sorted := make([]float64, len(vals))
	copy(sorted, vals)
	sort.Float64s(sorted)

	mid := len(sorted) / 2
	var m float64
	if len(sorted)%2 == 1 {
		m = sorted[mid]
	} else {
		m = (sorted[mid-1] + sorted[mid]) / 2
	}
	return &m
}

// Percent returns part/whole as a percentage rounded to one decimal.
// Zero whole yields 0, never NaN.
func Percent(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return Round1(float64(part) / float64(whole) * 100)
}

// Round1 rounds to one decimal place.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}
