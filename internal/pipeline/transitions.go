package pipeline

import (
	"errors"
	"fmt"
)

type Action string

const (
	ActionApprove            Action = "approve"
	ActionReject             Action = "reject"
	ActionBookSlot           Action = "book_slot"
	ActionCompleteAssessment Action = "complete_assessment"
	ActionSubmitFeedback     Action = "submit_feedback"
	ActionReviseFeedback     Action = "revise_feedback"
	ActionUpdateStatus       Action = "update_status"
	ActionApply              Action = "apply"
)

type rule struct {
	from []Status // empty means any status
	to   []Status
}

var rules = map[Action]rule{
	ActionApprove:            {from: []Status{StatusApplied}, to: []Status{StatusApproved}},
	ActionReject:             {from: []Status{StatusApplied}, to: []Status{StatusRejected}},
	ActionBookSlot:           {from: []Status{StatusApproved, StatusAssessmentScheduled}, to: []Status{StatusAssessmentScheduled}},
	ActionCompleteAssessment: {from: []Status{StatusAssessmentScheduled, StatusConfirmed, StatusRescheduled}, to: []Status{StatusToBeInterviewed}},
	ActionSubmitFeedback:     {from: []Status{StatusToBeInterviewed, StatusInterviewScheduled}, to: []Status{StatusRecommended, StatusNotRecommended}},
	ActionReviseFeedback:     {from: []Status{StatusRecommended, StatusNotRecommended}, to: []Status{StatusRecommended, StatusNotRecommended}},
	ActionUpdateStatus:       {},
}

var ErrInvalidTransition = errors.New("invalid status transition")

// TransitionError names the rejected move.
type TransitionError struct {
	Action Action
	From   Status
	To     Status
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot %s: candidate is %q (target %q)", e.Action, e.From, e.To)
}

func (e *TransitionError) Unwrap() error { return ErrInvalidTransition }

// Check reports whether action may move a candidate from one status to another.
func Check(action Action, from, to Status) error {
	if !to.Valid() {
		return fmt.Errorf("%w: unknown target status %q", ErrInvalidTransition, to)
	}
	r, ok := rules[action]
	if !ok {
		return fmt.Errorf("%w: unknown action %q", ErrInvalidTransition, action)
	}
	if len(r.from) > 0 && !contains(r.from, from) {
		return &TransitionError{Action: action, From: from, To: to}
	}
	if len(r.to) > 0 && !contains(r.to, to) {
		return &TransitionError{Action: action, From: from, To: to}
	}
	return nil
}

// CanBook reports whether the public booking page should accept the candidate.
func CanBook(s Status) bool { return contains(rules[ActionBookSlot].from, s) }

func contains(set []Status, s Status) bool {
	for _, v := range set {
		if v == s {
			return true
		}
	}
	return false
}
