package access

import (
	"github.com/yoockh/recruitportal/internal/utils"
)

// Principal is the authenticated staff member behind a request. It is passed
// explicitly into every service operation that mutates pipeline state.
type Principal struct {
	UserID   string `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Roles    []Role `json:"roles"`
}

func (p Principal) Authenticated() bool { return p.UserID != "" }

func (p Principal) HasRole(r Role) bool {
	for _, have := range p.Roles {
		if have == r {
			return true
		}
	}
	return false
}

// Authorize returns an UNAUTHORIZED or FORBIDDEN AppError when p may not perform a.
func Authorize(p Principal, a Action, op string) error {
	if !p.Authenticated() {
		return utils.E(utils.CodeUnauthorized, op, "authentication required", nil)
	}
	if !p.Can(a) {
		return utils.E(utils.CodeForbidden, op, "insufficient role for "+string(a), nil)
	}
	return nil
}
