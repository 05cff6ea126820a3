package user

import (
	"errors"
	"time"
)

var (
	ErrNotFound           = errors.New("user not found")
	ErrEmailAlreadyUsed   = errors.New("email already used")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInactiveUser       = errors.New("user is inactive")
	ErrEmailRequired      = errors.New("email is required")
	ErrPasswordTooShort   = errors.New("password is too short")
	ErrInvalidRole        = errors.New("invalid role")
)

// Role is the principal's role in the total order
// student < teacher < admin < super_admin.
type Role string

const (
	RoleStudent    Role = "student"
	RoleTeacher    Role = "teacher"
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "super_admin"
)

// rolePriority defines the total order used for authority checks.
var rolePriority = map[Role]int{
	RoleStudent:    1,
	RoleTeacher:    2,
	RoleAdmin:      3,
	RoleSuperAdmin: 4,
}

// Priority returns the rank of the role. Unknown roles rank below student.
func (r Role) Priority() int {
	return rolePriority[r]
}

// Valid reports whether r is one of the defined roles.
func (r Role) Valid() bool {
	_, ok := rolePriority[r]
	return ok
}

// CanReview reports whether the role qualifies as reviewer authority.
// Teacher is the minimum reviewer role; any higher role also qualifies.
func (r Role) CanReview() bool {
	return r.Priority() >= RoleTeacher.Priority()
}

// IsAdmin reports whether the role has administrative authority.
func (r Role) IsAdmin() bool {
	return r.Priority() >= RoleAdmin.Priority()
}

// User represents a principal in the system.
type User struct {
	ID           string // UUID
	Email        string
	PasswordHash string
	DisplayName  *string
	Role         Role
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
	LastLoginAt  *time.Time
}

// Filter defines filter options for listing users.
type Filter struct {
	Email    string
	Role     string
	IsActive *bool // pointer to distinguish false from not set

	Page     int
	PageSize int
}
