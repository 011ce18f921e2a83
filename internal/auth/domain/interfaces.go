package domain

import (
	"context"
	"time"

	shared "restaurant-waste/internal/shared/models"
)

type Repository interface {
	CreateUser(ctx context.Context, u *User) error
	UserByID(ctx context.Context, id string) (*User, error)
	UserByUsername(ctx context.Context, username string) (*User, error)
	UserByEmail(ctx context.Context, email string) (*User, error)
	// AttachRole moves a plain user to role. It fails with ErrConflict when
	// the user already holds a role.
	AttachRole(ctx context.Context, userID string, role shared.Role) error
	// ProfileOf returns the profile id for the user's role and, for
	// employees, the owner's user id.
	ProfileOf(ctx context.Context, u *User) (profileID, ownerUserID string, err error)

	InsertOwner(ctx context.Context, o *OwnerProfile) error
	OwnerByUserID(ctx context.Context, userID string) (*OwnerProfile, error)
	OwnerByID(ctx context.Context, id string) (*OwnerProfile, error)
	UpdateOwner(ctx context.Context, o *OwnerProfile) error

	InsertEmployee(ctx context.Context, e *Employee) error
	EmployeeByUserID(ctx context.Context, userID string) (*Employee, error)
	EmployeesByOwner(ctx context.Context, ownerID string) ([]Employee, error)
	UpdateEmployee(ctx context.Context, e *Employee) error
}

// SessionStore keeps one entry per live refresh token.
type SessionStore interface {
	Save(ctx context.Context, tokenID, userID string, ttl time.Duration) error
	// Consume removes the session and returns its user. A missing session is
	// ErrUnauthorized.
	Consume(ctx context.Context, tokenID string) (string, error)
	Delete(ctx context.Context, tokenID string) error
}
