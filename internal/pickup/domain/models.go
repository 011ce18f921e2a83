package domain

import "time"

type Status string

const (
	StatusPending    Status = "pending"
	StatusAccepted   Status = "accepted"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

type Pickup struct {
	ID              string     `json:"id"`
	RequesterID     string     `json:"requester_id"`
	CreatedBy       string     `json:"created_by"`
	RestaurantName  string     `json:"restaurant_name"`
	WasteType       string     `json:"waste_type"`
	WeightKg        float64    `json:"weight_kg"`
	PickupAddress   string     `json:"pickup_address"`
	Latitude        float64    `json:"latitude"`
	Longitude       float64    `json:"longitude"`
	ScheduledAt     time.Time  `json:"scheduled_at"`
	Status          Status     `json:"status"`
	DriverID        *string    `json:"driver_id"`
	DonationDriveID *string    `json:"donation_drive_id"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
	StartedAt       *time.Time `json:"started_at,omitempty"`
	CompletedAt     *time.Time `json:"completed_at,omitempty"`
	CancelledAt     *time.Time `json:"cancelled_at,omitempty"`
	// DistanceKm is filled in for drivers browsing available pickups.
	DistanceKm *float64 `json:"distance_km,omitempty"`
}

// AssignedTo reports whether driverID holds the pickup.
func (p *Pickup) AssignedTo(driverID string) bool {
	return p.DriverID != nil && *p.DriverID == driverID
}

type CreateRequest struct {
	WasteType       string     `json:"waste_type"`
	WeightKg        float64    `json:"weight_kg"`
	RestaurantName  string     `json:"restaurant_name"`
	PickupAddress   string     `json:"pickup_address"`
	Latitude        *float64   `json:"latitude"`
	Longitude       *float64   `json:"longitude"`
	ScheduledAt     *time.Time `json:"scheduled_at"`
	DonationDriveID *string    `json:"donation_drive_id"`
}

type UpdateRequest struct {
	WasteType     *string    `json:"waste_type"`
	WeightKg      *float64   `json:"weight_kg"`
	PickupAddress *string    `json:"pickup_address"`
	Latitude      *float64   `json:"latitude"`
	Longitude     *float64   `json:"longitude"`
	ScheduledAt   *time.Time `json:"scheduled_at"`
}

// DriverRef is the part of a driver the pickup flow needs.
type DriverRef struct {
	ID        string
	UserID    string
	IsActive  bool
	Status    string
	Latitude  *float64
	Longitude *float64
}

// StatusEvent is published on pickup.status.<status>.
type StatusEvent struct {
	PickupID    string    `json:"pickup_id"`
	Status      Status    `json:"status"`
	RequesterID string    `json:"requester_id"`
	DriverID    string    `json:"driver_id,omitempty"`
	WasteType   string    `json:"waste_type"`
	WeightKg    float64   `json:"weight_kg"`
	Latitude    float64   `json:"latitude"`
	Longitude   float64   `json:"longitude"`
	Timestamp   time.Time `json:"timestamp"`
}

func NewStatusEvent(p *Pickup, at time.Time) StatusEvent {
	e := StatusEvent{
		PickupID:    p.ID,
		Status:      p.Status,
		RequesterID: p.RequesterID,
		WasteType:   p.WasteType,
		WeightKg:    p.WeightKg,
		Latitude:    p.Latitude,
		Longitude:   p.Longitude,
		Timestamp:   at.UTC(),
	}
	if p.DriverID != nil {
		e.DriverID = *p.DriverID
	}
	return e
}
