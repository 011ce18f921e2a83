package models

// NewAccount is the login part of every registration flow.
type NewAccount struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}
