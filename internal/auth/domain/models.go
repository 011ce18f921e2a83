package domain

import (
	"time"

	shared "restaurant-waste/internal/shared/models"
)

type User struct {
	ID           string      `json:"id"`
	Username     string      `json:"username"`
	Email        string      `json:"email"`
	PasswordHash string      `json:"-"`
	Role         shared.Role `json:"role"`
	IsAdmin      bool        `json:"is_admin"`
	CreatedAt    time.Time   `json:"created_at"`
}

type OwnerProfile struct {
	ID             string    `json:"id"`
	UserID         string    `json:"user_id"`
	RestaurantName string    `json:"restaurant_name"`
	Address        string    `json:"address"`
	Latitude       *float64  `json:"latitude"`
	Longitude      *float64  `json:"longitude"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"created_at"`
}

type Employee struct {
	ID             string    `json:"id"`
	UserID         string    `json:"user_id"`
	OwnerID        string    `json:"owner_id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	Position       string    `json:"position"`
	RestaurantName string    `json:"restaurant_name"`
	Address        string    `json:"address"`
	Status         string    `json:"status"`
	Latitude       *float64  `json:"latitude"`
	Longitude      *float64  `json:"longitude"`
	CreatedAt      time.Time `json:"created_at"`
}

const DefaultPosition = "Staff"

type RegisterOwnerRequest struct {
	shared.NewAccount
	RestaurantName string   `json:"restaurant_name"`
	Address        string   `json:"address"`
	Latitude       *float64 `json:"latitude"`
	Longitude      *float64 `json:"longitude"`
}

type UpdateOwnerRequest struct {
	RestaurantName *string  `json:"restaurant_name"`
	Address        *string  `json:"address"`
	Latitude       *float64 `json:"latitude"`
	Longitude      *float64 `json:"longitude"`
}

// CreateEmployeeRequest is used by owners and by the public employee
// registration, where OwnerID is required.
type CreateEmployeeRequest struct {
	shared.NewAccount
	OwnerID  string `json:"owner_id"`
	Name     string `json:"name"`
	Position string `json:"position"`
}

type UpdateEmployeeRequest struct {
	Name     *string `json:"name"`
	Email    *string `json:"email"`
	Position *string `json:"position"`
}

// LoginRequest accepts a username or an email in Username.
type LoginRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type TokenPair struct {
	AccessToken  string      `json:"access_token"`
	RefreshToken string      `json:"refresh_token"`
	TokenType    string      `json:"token_type"`
	ExpiresAt    time.Time   `json:"expires_at"`
	Role         shared.Role `json:"role"`
	User         *User       `json:"user"`
}
