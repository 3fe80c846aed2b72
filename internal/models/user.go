package models

import (
	"time"

	"github.com/lib/pq"
)

// Role represents a role membership tag on a user. A user may hold several
// roles at once; the admin capability is a separate flag on the record.
type Role string

const (
	RoleStudent Role = "student"
	RoleTeacher Role = "teacher"
)

// User represents an application user stored in the users table.
type User struct {
	ID           string         `db:"id" json:"id"`
	Username     string         `db:"username" json:"username"`
	Email        string         `db:"email" json:"email"`
	PasswordHash string         `db:"password_hash" json:"-"`
	Roles        pq.StringArray `db:"roles" json:"roles"`
	IsAdmin      bool           `db:"is_admin" json:"is_admin"`
	Active       bool           `db:"active" json:"active"`
	CreatedAt    time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at" json:"updated_at"`
}

// HasRole reports whether the user holds the given role membership.
func (u *User) HasRole(role Role) bool {
	if u == nil {
		return false
	}
	for _, r := range u.Roles {
		if Role(r) == role {
			return true
		}
	}
	return false
}

// IsTeacher reports teacher membership.
func (u *User) IsTeacher() bool { return u.HasRole(RoleTeacher) }

// IsStudent reports student membership.
func (u *User) IsStudent() bool { return u.HasRole(RoleStudent) }

// Profile stores the supplementary signup data for a user.
type Profile struct {
	ID          string     `db:"id" json:"id"`
	UserID      string     `db:"user_id" json:"user_id"`
	DOB         *time.Time `db:"dob" json:"dob,omitempty"`
	ParentEmail string     `db:"parent_email" json:"parent_email,omitempty"`
	Under16     bool       `db:"under_16" json:"under_16"`
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
