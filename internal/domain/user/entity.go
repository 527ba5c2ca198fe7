package user

import "time"

type Role string

const (
	RoleAdmin    Role = "admin"    // Manages attendance and leave
	RoleHR       Role = "hr"       // Tracked like an employee
	RoleEmployee Role = "employee" // Regular employee
)

// User is a roster entry. Credentials live with the identity provider.
type User struct {
	ID        string
	Name      string
	Email     string
	Role      Role
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsAdmin checks if user can manage attendance and leave
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// IsValidRole reports whether r names a known role.
func IsValidRole(r string) bool {
	switch Role(r) {
	case RoleAdmin, RoleHR, RoleEmployee:
		return true
	}
	return false
}
