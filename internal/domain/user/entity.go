package user

import "time"

type Role string

const (
	RoleAdmin  Role = "admin"  // HR administration, approves requests and adjusts balances
	RoleWorker Role = "worker" // Regular employee
	RoleIntern Role = "intern" // Intern, same self-service access as a worker
)

// IsValid reports whether r is one of the known roles.
func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleWorker, RoleIntern:
		return true
	}
	return false
}

type User struct {
	ID          string
	Name        string
	Email       string
	Role        Role
	WorkClassID *string
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// IsAdmin checks if user has the admin role
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// CanApprove checks if user can approve overtime and compensation requests
func (u *User) CanApprove() bool {
	return u.IsAdmin()
}
