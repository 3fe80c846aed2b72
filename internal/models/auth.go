package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SignupRequest holds the self-service account creation payload.
type SignupRequest struct {
	Username    string `json:"username" validate:"required,min=3,max=150"`
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=8"`
	DOB         string `json:"dob,omitempty" validate:"omitempty,datetime=2006-01-02"`
	ParentEmail string `json:"parent_email,omitempty" validate:"omitempty,email"`
	IsTeacher   bool   `json:"is_teacher"`
	InviteCode  string `json:"invite_code,omitempty"`
}

// LoginRequest holds credentials for authenticating a user.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse returns the issued token and user info.
type LoginResponse struct {
	AccessToken string    `json:"access_token"`
	ExpiresIn   int64     `json:"expires_in"`
	User        UserInfo  `json:"user"`
	IssuedAt    time.Time `json:"issued_at"`
}

// UserInfo describes the authenticated user in responses.
type UserInfo struct {
	ID       string   `json:"id"`
	Username string   `json:"username"`
	Roles    []string `json:"roles"`
	IsAdmin  bool     `json:"is_admin"`
}

// MeResponse describes the authenticated account, including profile data
// when one exists.
type MeResponse struct {
	User    UserInfo `json:"user"`
	Email   string   `json:"email"`
	Profile *Profile `json:"profile,omitempty"`
}

// JWTClaims represents the JWT payload for access tokens.
type JWTClaims struct {
	UserID   string   `json:"user_id"`
	Username string   `json:"username"`
	Roles    []string `json:"roles"`
	IsAdmin  bool     `json:"is_admin"`
	jwt.RegisteredClaims
}

// HasRole reports whether the claims carry the given role membership.
func (c *JWTClaims) HasRole(role Role) bool {
	if c == nil {
		return false
	}
	for _, r := range c.Roles {
		if Role(r) == role {
			return true
		}
	}
	return false
}

// IsTeacherRole reports teacher membership on the claims.
func (c *JWTClaims) IsTeacherRole() bool { return c.HasRole(RoleTeacher) }

// IsStudentRole reports student membership on the claims.
func (c *JWTClaims) IsStudentRole() bool { return c.HasRole(RoleStudent) }
