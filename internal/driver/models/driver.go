package models

import (
	"time"

	shared "restaurant-waste/internal/shared/models"
)

type DriverStatus string

const (
	DriverAvailable DriverStatus = "available"
	DriverOnPickup  DriverStatus = "on_pickup"
	DriverInactive  DriverStatus = "inactive"
)

func (s DriverStatus) Valid() bool {
	switch s {
	case DriverAvailable, DriverOnPickup, DriverInactive:
		return true
	}
	return false
}

const DefaultVehicleType = "motorcycle"

type Driver struct {
	ID                    string       `json:"id"`
	UserID                string       `json:"user_id"`
	FullName              string       `json:"full_name"`
	PhoneNumber           string       `json:"phone_number"`
	LicenseNumber         string       `json:"license_number"`
	VehicleType           string       `json:"vehicle_type"`
	PlateNumber           string       `json:"plate_number"`
	IsActive              bool         `json:"is_active"`
	DateHired             time.Time    `json:"date_hired"`
	Status                DriverStatus `json:"status"`
	TotalCompletedPickups int          `json:"total_completed_pickups"`
	Rating                float64      `json:"rating"`
	CurrentLocation       *Location    `json:"current_location,omitempty"`
}

// Profile is the editable part of a driver record.
type Profile struct {
	FullName      string `json:"full_name"`
	PhoneNumber   string `json:"phone_number"`
	LicenseNumber string `json:"license_number"`
	VehicleType   string `json:"vehicle_type"`
	PlateNumber   string `json:"plate_number"`
}

type RegisterRequest struct {
	shared.NewAccount
	Profile
}

type UpdateRequest struct {
	FullName    *string `json:"full_name"`
	PhoneNumber *string `json:"phone_number"`
	VehicleType *string `json:"vehicle_type"`
	PlateNumber *string `json:"plate_number"`
}

type StatusRequest struct {
	Status DriverStatus `json:"status"`
}
