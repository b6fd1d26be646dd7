package pipeline

import "testing"

func TestParseStatusNormalizes(t *testing.T) {
	got, err := ParseStatus("  assessment   SCHEDULED ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != StatusAssessmentScheduled {
		t.Fatalf("expected %q, got %q", StatusAssessmentScheduled, got)
	}
	if _, err := ParseStatus("Hired"); err == nil {
		t.Fatal("expected error for unknown status")
	}
}

func TestAllReturnsCopy(t *testing.T) {
	all := All()
	if len(all) != 12 || all[0] != StatusApplied {
		t.Fatalf("unexpected statuses %v", all)
	}
	all[0] = "mutated"
	if All()[0] != StatusApplied {
		t.Fatal("All must not expose the backing slice")
	}
}

func TestTerminal(t *testing.T) {
	for _, s := range []Status{StatusRejected, StatusRecommended, StatusNotRecommended} {
		if !s.Terminal() {
			t.Errorf("%q should be terminal", s)
		}
	}
	if StatusApproved.Terminal() {
		t.Error("Approved is not terminal")
	}
}

func TestParseDecision(t *testing.T) {
	d, err := ParseDecision("not recommended")
	if err != nil || d != DecisionNotRecommended {
		t.Fatalf("got (%q, %v)", d, err)
	}
	if d.Status() != StatusNotRecommended {
		t.Fatalf("decision maps to %q", d.Status())
	}
	if _, err := ParseDecision("Approved"); err == nil {
		t.Fatal("Approved is a status but not a decision")
	}
}
