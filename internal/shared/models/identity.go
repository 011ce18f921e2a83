package models

import "github.com/golang-jwt/jwt/v5"

// Role is stored on the user row and fixed when a profile is attached.
type Role string

const (
	RoleOwner    Role = "owner"
	RoleDriver   Role = "driver"
	RoleEmployee Role = "employee"
	RoleUser     Role = "user"
)

func (r Role) Valid() bool {
	switch r {
	case RoleOwner, RoleDriver, RoleEmployee, RoleUser:
		return true
	}
	return false
}

// Identity is the authenticated caller resolved from an access token.
type Identity struct {
	UserID string
	Role   Role
	// ProfileID is the owner, driver or employee profile id. Empty for plain users.
	ProfileID string
	// OwnerUserID is set for employees: the user id of the owner they act for.
	OwnerUserID string
	IsAdmin     bool
}

// ActingUserID is the user whose resources the caller works on. Employees
// act for their owner.
func (i Identity) ActingUserID() string {
	if i.Role == RoleEmployee && i.OwnerUserID != "" {
		return i.OwnerUserID
	}
	return i.UserID
}

const (
	TokenAccess  = "access"
	TokenRefresh = "refresh"
)

type Claims struct {
	Role        Role   `json:"role"`
	ProfileID   string `json:"pid,omitempty"`
	OwnerUserID string `json:"ouid,omitempty"`
	IsAdmin     bool   `json:"adm,omitempty"`
	TokenType   string `json:"typ"`
	jwt.RegisteredClaims
}

func (c *Claims) Identity() Identity {
	return Identity{
		UserID:      c.Subject,
		Role:        c.Role,
		ProfileID:   c.ProfileID,
		OwnerUserID: c.OwnerUserID,
		IsAdmin:     c.IsAdmin,
	}
}
