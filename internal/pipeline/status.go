package pipeline

import (
	"fmt"
	"strings"
)

type Status string

const (
	StatusApplied             Status = "Applied"
	StatusRejected            Status = "Rejected"
	StatusApproved            Status = "Approved"
	StatusAssessmentScheduled Status = "Assessment Scheduled"
	StatusConfirmed           Status = "Confirmed"
	StatusRescheduled         Status = "Rescheduled"
	StatusNotComing           Status = "Not Coming"
	StatusAssessmentCompleted Status = "Assessment Completed"
	StatusToBeInterviewed     Status = "To Be Interviewed"
	StatusInterviewScheduled  Status = "Interview Scheduled"
	StatusRecommended         Status = "Recommended"
	StatusNotRecommended      Status = "Not Recommended"
)

var allStatuses = []Status{
	StatusApplied,
	StatusRejected,
	StatusApproved,
	StatusAssessmentScheduled,
	StatusConfirmed,
	StatusRescheduled,
	StatusNotComing,
	StatusAssessmentCompleted,
	StatusToBeInterviewed,
	StatusInterviewScheduled,
	StatusRecommended,
	StatusNotRecommended,
}

// All returns the statuses in pipeline order.
func All() []Status {
	out := make([]Status, len(allStatuses))
	copy(out, allStatuses)
	return out
}

func (s Status) Valid() bool {
	for _, v := range allStatuses {
		if v == s {
			return true
		}
	}
	return false
}

func (s Status) Terminal() bool {
	return s == StatusRejected || s == StatusRecommended || s == StatusNotRecommended
}

// ParseStatus accepts the display form with any casing and surrounding space.
func ParseStatus(raw string) (Status, error) {
	raw = strings.Join(strings.Fields(raw), " ")
	for _, v := range allStatuses {
		if strings.EqualFold(string(v), raw) {
			return v, nil
		}
	}
	return "", fmt.Errorf("unknown status %q", raw)
}

// Decision is the interviewer's verdict.
type Decision string

const (
	DecisionRecommended    Decision = "Recommended"
	DecisionNotRecommended Decision = "Not Recommended"
)

func ParseDecision(raw string) (Decision, error) {
	s, err := ParseStatus(raw)
	if err != nil {
		return "", err
	}
	switch s {
	case StatusRecommended:
		return DecisionRecommended, nil
	case StatusNotRecommended:
		return DecisionNotRecommended, nil
	}
	return "", fmt.Errorf("decision must be %q or %q", DecisionRecommended, DecisionNotRecommended)
}

// Status maps a decision to the candidate status it produces.
func (d Decision) Status() Status { return Status(d) }
