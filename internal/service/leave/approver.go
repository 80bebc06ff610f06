package leave

import (
	"github.com/worknest/intranet-backend-go/internal/domain/leave"
	"github.com/worknest/intranet-backend-go/internal/domain/user"
)

// Approver is the policy view of a user acting on leave requests. It
// replaces scattered role-string branching with one place that answers
// "may this user act on that applicant" and "who reviews after them".
type Approver struct {
	User user.User
}

// NewApprover wraps a user, failing for roles with no approval
// authority.
func NewApprover(u user.User) (Approver, error) {
	if !u.Role.IsApprover() {
		return Approver{}, leave.ErrNotAuthorized
	}
	return Approver{User: u}, nil
}

// CanActOn reports whether the approver may decide requests of the
// given applicant.
//
//	manager     -> only direct reports
//	hr          -> employees and managers
//	super_admin -> everyone
func (a Approver) CanActOn(applicant user.User) bool {
	switch a.User.Role {
	case user.RoleManager:
		return applicant.ReportingManagerID != nil && *applicant.ReportingManagerID == a.User.ID
	case user.RoleHR:
		return applicant.Role == user.RoleEmployee || applicant.Role == user.RoleManager
	case user.RoleSuperAdmin:
		return true
	}
	return false
}

// EscalatesTo returns the role reviewing after this approver, if any.
func (a Approver) EscalatesTo() (user.Role, bool) {
	switch a.User.Role {
	case user.RoleManager:
		return user.RoleHR, true
	case user.RoleHR:
		return user.RoleSuperAdmin, true
	}
	return "", false
}

// Scope is the repository-level guard matching CanActOn. The guard is
// re-applied inside the day UPDATE statements themselves.
func (a Approver) Scope() leave.ApproverScope {
	return leave.ApproverScope{Role: a.User.Role, ActorID: a.User.ID}
}
