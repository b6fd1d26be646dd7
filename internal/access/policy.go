// Package access maps staff roles to the pages and pipeline actions they may use.
package access

import "strings"

type Role string

const (
	RoleMaster      Role = "Master"
	RoleApprover    Role = "Approver"
	RoleHR          Role = "HR"
	RoleInterviewer Role = "Interviewer"
)

// AllRoles is the seed set for the roles table.
var AllRoles = []Role{RoleMaster, RoleApprover, RoleHR, RoleInterviewer}

func ParseRole(raw string) (Role, bool) {
	raw = strings.TrimSpace(raw)
	for _, r := range AllRoles {
		if strings.EqualFold(string(r), raw) {
			return r, true
		}
	}
	return "", false
}

type Action string

const (
	ViewDashboard      Action = "view_dashboard"
	ViewApplications   Action = "view_applications"
	ApproveCandidate   Action = "approve_candidate"
	UpdateStatus       Action = "update_status"
	DeleteCandidate    Action = "delete_candidate"
	ManageSlots        Action = "manage_slots"
	CompleteAssessment Action = "complete_assessment"
	ViewInterviews     Action = "view_interviews"
	SubmitFeedback     Action = "submit_feedback"
	ReviseFeedback     Action = "revise_feedback"
	ManageUsers        Action = "manage_users"
	ViewOutbox         Action = "view_outbox"
	ViewNotifications  Action = "view_notifications"
)

var policy = map[Action][]Role{
	ViewDashboard:      {RoleMaster, RoleApprover, RoleHR},
	ViewApplications:   {RoleMaster, RoleApprover, RoleHR},
	ApproveCandidate:   {RoleMaster, RoleApprover},
	UpdateStatus:       {RoleMaster, RoleApprover, RoleHR},
	DeleteCandidate:    {RoleMaster},
	ManageSlots:        {RoleMaster, RoleHR},
	CompleteAssessment: {RoleMaster, RoleHR},
	ViewInterviews:     {RoleMaster, RoleInterviewer, RoleHR},
	SubmitFeedback:     {RoleMaster, RoleInterviewer},
	ReviseFeedback:     {RoleMaster},
	ManageUsers:        {RoleMaster},
	ViewOutbox:         {RoleMaster},
	ViewNotifications:  AllRoles,
}

// RequiredRoles lists the roles granted an action. Unknown actions grant nobody.
func RequiredRoles(a Action) []Role {
	return append([]Role(nil), policy[a]...)
}

// IsAllowed reports whether the two role sets intersect.
func IsAllowed(userRoles, requiredRoles []Role) bool {
	for _, req := range requiredRoles {
		for _, have := range userRoles {
			if have == req {
				return true
			}
		}
	}
	return false
}

// Can reports whether p may perform a.
func (p Principal) Can(a Action) bool {
	return IsAllowed(p.Roles, policy[a])
}

// Views returns the staff pages p can open, in sidebar order.
func (p Principal) Views() []Action {
	var out []Action
	for _, a := range []Action{ViewDashboard, ViewApplications, ManageSlots, ViewInterviews, ManageUsers} {
		if p.Can(a) {
			out = append(out, a)
		}
	}
	return out
}
