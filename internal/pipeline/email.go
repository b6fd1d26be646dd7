package pipeline

type EmailKind string

const (
	EmailAssessmentInvite EmailKind = "AssessmentInvite"
	EmailRecommended      EmailKind = "Recommended"
	EmailNotRecommended   EmailKind = "NotRecommended"
)

// EmailFor returns the candidate email owed on entering target, if any.
// Rejected reuses the not-recommended template.
func EmailFor(target Status) (EmailKind, bool) {
	switch target {
	case StatusApproved:
		return EmailAssessmentInvite, true
	case StatusRecommended:
		return EmailRecommended, true
	case StatusNotRecommended, StatusRejected:
		return EmailNotRecommended, true
	}
	return "", false
}

func (k EmailKind) Valid() bool {
	switch k {
	case EmailAssessmentInvite, EmailRecommended, EmailNotRecommended:
		return true
	}
	return false
}
