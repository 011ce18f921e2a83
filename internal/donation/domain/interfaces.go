package domain

import (
	"context"
	"errors"
	"time"
)

// ErrAlreadyCompleted is returned when a participation was completed before.
var ErrAlreadyCompleted = errors.New("participation already completed")

type Repository interface {
	// ListDrives returns active drives ending on or after today.
	ListDrives(ctx context.Context, today time.Time) ([]Drive, error)
	Drive(ctx context.Context, id string) (*Drive, error)
	CreateDrive(ctx context.Context, d *Drive) error

	InsertParticipation(ctx context.Context, p *Participation) error
	Participation(ctx context.Context, id string) (*Participation, error)
	ParticipationsByUser(ctx context.Context, userID string) ([]Participation, error)
	// CompleteParticipation moves a not yet completed participation to
	// completed and returns it with drive details filled in.
	CompleteParticipation(ctx context.Context, id string, at time.Time) (*Participation, error)
}
