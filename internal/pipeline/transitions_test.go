package pipeline

import (
	"errors"
	"testing"
)

func TestCheckAllowedMoves(t *testing.T) {
	tests := []struct {
		action Action
		from   Status
		to     Status
	}{
		{ActionApprove, StatusApplied, StatusApproved},
		{ActionReject, StatusApplied, StatusRejected},
		{ActionBookSlot, StatusApproved, StatusAssessmentScheduled},
		{ActionBookSlot, StatusAssessmentScheduled, StatusAssessmentScheduled},
		{ActionCompleteAssessment, StatusAssessmentScheduled, StatusToBeInterviewed},
		{ActionCompleteAssessment, StatusRescheduled, StatusToBeInterviewed},
		{ActionSubmitFeedback, StatusToBeInterviewed, StatusRecommended},
		{ActionSubmitFeedback, StatusInterviewScheduled, StatusNotRecommended},
		{ActionReviseFeedback, StatusRecommended, StatusNotRecommended},
		{ActionUpdateStatus, StatusRejected, StatusApplied},
	}
	for _, tt := range tests {
		if err := Check(tt.action, tt.from, tt.to); err != nil {
			t.Errorf("%s %q -> %q: unexpected error %v", tt.action, tt.from, tt.to, err)
		}
	}
}

func TestCheckRejectsMoves(t *testing.T) {
	tests := []struct {
		action Action
		from   Status
		to     Status
	}{
		{ActionApprove, StatusApproved, StatusApproved},
		{ActionApprove, StatusRejected, StatusApproved},
		{ActionReject, StatusApproved, StatusRejected},
		{ActionBookSlot, StatusApplied, StatusAssessmentScheduled},
		{ActionBookSlot, StatusToBeInterviewed, StatusAssessmentScheduled},
		{ActionCompleteAssessment, StatusApproved, StatusToBeInterviewed},
		{ActionSubmitFeedback, StatusApplied, StatusRecommended},
		{ActionSubmitFeedback, StatusToBeInterviewed, StatusApproved},
		{ActionReviseFeedback, StatusToBeInterviewed, StatusRecommended},
		{ActionUpdateStatus, StatusApplied, Status("Hired")},
		{Action("promote"), StatusApplied, StatusApproved},
	}
	for _, tt := range tests {
		err := Check(tt.action, tt.from, tt.to)
		if !errors.Is(err, ErrInvalidTransition) {
			t.Errorf("%s %q -> %q: expected ErrInvalidTransition, got %v", tt.action, tt.from, tt.to, err)
		}
	}
}

func TestTransitionErrorNamesTheMove(t *testing.T) {
	err := Check(ActionApprove, StatusRejected, StatusApproved)
	var te *TransitionError
	if !errors.As(err, &te) {
		t.Fatalf("expected *TransitionError, got %T", err)
	}
	if te.From != StatusRejected || te.Action != ActionApprove {
		t.Fatalf("unexpected error fields %+v", te)
	}
}

func TestCanBook(t *testing.T) {
	for _, s := range All() {
		want := s == StatusApproved || s == StatusAssessmentScheduled
		if got := CanBook(s); got != want {
			t.Errorf("CanBook(%q) = %v, want %v", s, got, want)
		}
	}
}

func TestEmailFor(t *testing.T) {
	tests := []struct {
		to   Status
		kind EmailKind
		ok   bool
	}{
		{StatusApproved, EmailAssessmentInvite, true},
		{StatusRecommended, EmailRecommended, true},
		{StatusNotRecommended, EmailNotRecommended, true},
		{StatusRejected, EmailNotRecommended, true},
		{StatusApplied, "", false},
		{StatusAssessmentScheduled, "", false},
		{StatusToBeInterviewed, "", false},
	}
	for _, tt := range tests {
		kind, ok := EmailFor(tt.to)
		if kind != tt.kind || ok != tt.ok {
			t.Errorf("EmailFor(%q) = (%q, %v), want (%q, %v)", tt.to, kind, ok, tt.kind, tt.ok)
		}
		if ok && !kind.Valid() {
			t.Errorf("EmailFor(%q) returned invalid kind %q", tt.to, kind)
		}
	}
	if EmailKind("Welcome").Valid() {
		t.Fatal("unexpected valid kind")
	}
}
