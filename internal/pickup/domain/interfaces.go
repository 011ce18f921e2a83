package domain

import (
	"context"
	"errors"
	"time"
)

// ErrNotTransitioned is returned by conditional updates that matched no row.
var ErrNotTransitioned = errors.New("pickup not in expected state")

type Repository interface {
	Create(ctx context.Context, p *Pickup) error
	Get(ctx context.Context, id string) (*Pickup, error)
	ListByRequester(ctx context.Context, userID string) ([]Pickup, error)
	ListByDriver(ctx context.Context, driverID string) ([]Pickup, error)
	ListAvailable(ctx context.Context) ([]Pickup, error)
	// UpdatePending saves editable fields only while the pickup is pending.
	UpdatePending(ctx context.Context, p *Pickup) error
	// Assign sets the driver and moves to accepted when the pickup is still
	// pending and unassigned.
	Assign(ctx context.Context, id, driverID string, at time.Time) (*Pickup, error)
	Transition(ctx context.Context, id string, from []Status, to Status, at time.Time) (*Pickup, error)

	Driver(ctx context.Context, driverID string) (*DriverRef, error)
	SetDriverStatus(ctx context.Context, driverID, status string) error
	// CompleteDriverPickup bumps the completed counter and frees the driver.
	CompleteDriverPickup(ctx context.Context, driverID string) error
}

type Publisher interface {
	PublishJSON(ctx context.Context, exchange, routingKey string, data interface{}) error
}
