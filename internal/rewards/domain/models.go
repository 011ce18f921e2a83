package domain

import "time"

type SourceType string

const (
	SourcePickup     SourceType = "pickup"
	SourceDonation   SourceType = "donation"
	SourceRedemption SourceType = "redemption"
	SourceAdjustment SourceType = "adjustment"
)

// Source links a ledger entry to the event that caused it.
type Source struct {
	Type SourceType
	ID   string
}

type Balance struct {
	UserID    string    `json:"user_id"`
	Points    int       `json:"points"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Transaction is an immutable ledger entry. Points is the requested delta,
// which can exceed what the floored balance actually moved.
type Transaction struct {
	ID          string     `json:"id"`
	UserID      string     `json:"user_id"`
	Points      int        `json:"points"`
	Description string     `json:"description"`
	SourceType  SourceType `json:"source_type"`
	SourceID    *string    `json:"source_id,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

type Voucher struct {
	ID             string     `json:"id"`
	Code           string     `json:"code"`
	Name           string     `json:"name"`
	Description    string     `json:"description"`
	PointsRequired int        `json:"points_required"`
	DiscountAmount float64    `json:"discount_amount"`
	IsActive       bool       `json:"is_active"`
	ExpiresAt      *time.Time `json:"expires_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

// Valid reports whether the voucher can be redeemed or applied at now.
func (v Voucher) Valid(now time.Time) bool {
	if !v.IsActive {
		return false
	}
	return v.ExpiresAt == nil || !now.After(*v.ExpiresAt)
}

type RedemptionStatus string

const (
	RedemptionPending   RedemptionStatus = "pending"
	RedemptionApproved  RedemptionStatus = "approved"
	RedemptionRejected  RedemptionStatus = "rejected"
	RedemptionCompleted RedemptionStatus = "completed"
)

// Redemption snapshots the voucher name and cost so history survives
// catalog edits and deletions.
type Redemption struct {
	ID          string           `json:"id"`
	UserID      string           `json:"user_id"`
	VoucherID   *string          `json:"voucher_id"`
	ItemName    string           `json:"item_name"`
	PointsSpent int              `json:"points_spent"`
	Status      RedemptionStatus `json:"status"`
	IsUsed      bool             `json:"is_used"`
	CreatedAt   time.Time        `json:"created_at"`
}

type CreateVoucherRequest struct {
	Code           string     `json:"code"`
	Name           string     `json:"name"`
	Description    string     `json:"description"`
	PointsRequired int        `json:"points_required"`
	DiscountAmount float64    `json:"discount_amount"`
	ExpiresAt      *time.Time `json:"expires_at"`
}

type RedeemRequest struct {
	VoucherID string `json:"voucher_id"`
}
