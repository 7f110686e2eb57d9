package classify

import "github.com/clinicore/registrystats/internal/model"

// IntegrityStatus is the completeness label for one care target's outcome data.
type IntegrityStatus string

const (
	// StatusComplete means every instrument attempted for the target has both
	// a baseline and a discharge score ("score symmetry").
	StatusComplete IntegrityStatus = "complete"
	// StatusOverride means the target carries a manual override flag. The
	// label takes precedence over completeness but does not alter the
	// underlying per-instrument classifications.
	StatusOverride   IntegrityStatus = "override"
	StatusIncomplete IntegrityStatus = "incomplete"
)

// Integrity determines the data-quality status for one care target given its
// classified outcomes. A target with no scored instruments is incomplete.
func Integrity(t *model.CareTarget, outcomes []Outcome) IntegrityStatus {
	if t.Override {
		return StatusOverride
	}
	if len(outcomes) == 0 {
		return StatusIncomplete
	}
	for _, o := range outcomes {
		if o.Classification == Incomplete {
			return StatusIncomplete
		}
	}
	return StatusComplete
}
