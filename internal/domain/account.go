package domain

import "time"

// AccountRole enumerates principal roles.
type AccountRole string

const (
	RoleCitizen    AccountRole = "citizen"
	RoleOfficer    AccountRole = "officer"
	RoleDeptAdmin  AccountRole = "dept_admin"
	RoleSuperAdmin AccountRole = "super_admin"
)

// Account is the login identity for citizens, officers and admins.
// TrustScore is a 0-100 reputation counter; rejections decrement it and
// crossing the configured floor deactivates the account.
type Account struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         AccountRole
	TrustScore   int
	IsActive     bool
	LastLoginAt  *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
