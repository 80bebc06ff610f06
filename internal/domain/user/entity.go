package user

import "time"

type Role string

const (
	RoleEmployee   Role = "employee"
	RoleManager    Role = "manager"
	RoleHR         Role = "hr"
	RoleSuperAdmin Role = "super_admin"
)

// IsApprover reports whether the role can act on leave requests.
func (r Role) IsApprover() bool {
	return r == RoleManager || r == RoleHR || r == RoleSuperAdmin
}

// User entity, backed by the users table.
type User struct {
	ID                 string
	FullName           string
	Email              string
	PasswordHash       string
	Role               Role
	ReportingManagerID *string
	IsActive           bool
	CreatedAt          time.Time
	UpdatedAt          time.Time
}
