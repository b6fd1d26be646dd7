package models

// DashboardStats feeds the staff landing page.
type DashboardStats struct {
	TotalCandidates     int64            `json:"total_candidates"`
	PendingApproval     int64            `json:"pending_approval"`
	ActiveInterviews    int64            `json:"active_interviews"`
	Recommended         int64            `json:"recommended"`
	RecentCandidates    []Candidate      `json:"recent_candidates"`
	UpcomingAssessments []AssessmentSlot `json:"upcoming_assessments"`
}
