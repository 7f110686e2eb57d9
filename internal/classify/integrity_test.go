package classify

import "testing"

func TestIntegrity_Complete(t *testing.T) {
	d := day(30)
	tgt := target("ct1", &d)
	outcomes := []Outcome{
		{CareTargetID: "ct1", InstrumentCode: "X", Classification: Improved},
		{CareTargetID: "ct1", InstrumentCode: "F", Classification: Worsened},
	}
	if got := Integrity(tgt, outcomes); got != StatusComplete {
		t.Errorf("status = %s, want complete", got)
	}
}

func TestIntegrity_IncompleteWhenAnyInstrumentMissing(t *testing.T) {
	tgt := target("ct1", nil)
	outcomes := []Outcome{
		{CareTargetID: "ct1", InstrumentCode: "X", Classification: Improved},
		{CareTargetID: "ct1", InstrumentCode: "F", Classification: Incomplete},
	}
	if got := Integrity(tgt, outcomes); got != StatusIncomplete {
		t.Errorf("status = %s, want incomplete", got)
	}
}

func TestIntegrity_ScorelessTargetIncomplete(t *testing.T) {
	tgt := target("ct1", nil)
	if got := Integrity(tgt, nil); got != StatusIncomplete {
		t.Errorf("status = %s, want incomplete for a scoreless target", got)
	}
}

func TestIntegrity_OverrideTakesPrecedence(t *testing.T) {
	d := day(30)
	tgt := target("ct1", &d)
	tgt.Override = true
	reason := "transferred to another clinic"
	tgt.OverrideReason = &reason

	// Override labels the target even when the score pair is complete.
	outcomes := []Outcome{{CareTargetID: "ct1", InstrumentCode: "X", Classification: Improved}}
	if got := Integrity(tgt, outcomes); got != StatusOverride {
		t.Errorf("status = %s, want override", got)
	}

	// The underlying classification is untouched by the override.
	if outcomes[0].Classification != Improved {
		t.Error("override must not alter the outcome classification")
	}
}
