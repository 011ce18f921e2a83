package domain

import "time"

// Drive is a public donation campaign. Start and end are calendar dates.
type Drive struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	TargetItem  string    `json:"target_item"`
	StartDate   time.Time `json:"start_date"`
	EndDate     time.Time `json:"end_date"`
	IsActive    bool      `json:"is_active"`
	IsOngoing   bool      `json:"is_ongoing"`
	CreatedAt   time.Time `json:"created_at"`
}

// Ongoing reports whether the drive is active and today falls inside its
// date range, both ends inclusive.
func (d Drive) Ongoing(today time.Time) bool {
	today = Day(today)
	return d.IsActive && !today.Before(Day(d.StartDate)) && !today.After(Day(d.EndDate))
}

// Day truncates t to midnight UTC of its calendar date.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

type ParticipationStatus string

const (
	ParticipationPending   ParticipationStatus = "pending"
	ParticipationApproved  ParticipationStatus = "approved"
	ParticipationCompleted ParticipationStatus = "completed"
	ParticipationRejected  ParticipationStatus = "rejected"
)

type Participation struct {
	ID               string              `json:"id"`
	UserID           string              `json:"user_id"`
	DriveID          string              `json:"drive"`
	DriveTitle       string              `json:"drive_title"`
	DriveDescription string              `json:"drive_description"`
	DriveTargetItem  string              `json:"drive_target_item"`
	DonatedItem      string              `json:"donated_item"`
	Quantity         float64             `json:"quantity"`
	Remarks          string              `json:"remarks"`
	Status           ParticipationStatus `json:"status"`
	CreatedAt        time.Time           `json:"created_at"`
	CompletedAt      *time.Time          `json:"completed_at,omitempty"`
}

type CreateDriveRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	TargetItem  string `json:"target_item"`
	// StartDate and EndDate use the YYYY-MM-DD layout.
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

type ParticipateRequest struct {
	DriveID     string  `json:"drive"`
	DonatedItem string  `json:"donated_item"`
	Quantity    float64 `json:"quantity"`
	Remarks     string  `json:"remarks"`
}
