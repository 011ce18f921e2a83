package domain

import "time"

type PlanName string

const (
	PlanBasic      PlanName = "basic"
	PlanPremium    PlanName = "premium"
	PlanEnterprise PlanName = "enterprise"
)

func (n PlanName) Valid() bool {
	switch n {
	case PlanBasic, PlanPremium, PlanEnterprise:
		return true
	}
	return false
}

// Display is the human-readable plan name stored on payments.
func (n PlanName) Display() string {
	switch n {
	case PlanBasic:
		return "Basic"
	case PlanPremium:
		return "Premium"
	case PlanEnterprise:
		return "Enterprise"
	}
	return string(n)
}

type Plan struct {
	ID           string   `json:"id"`
	Name         PlanName `json:"name"`
	DisplayName  string   `json:"display_name"`
	Description  string   `json:"description"`
	Price        float64  `json:"price"`
	DurationDays int      `json:"duration_days"`
	IsActive     bool     `json:"is_active"`
}

type Status string

const (
	StatusActive    Status = "active"
	StatusExpired   Status = "expired"
	StatusCancelled Status = "cancelled"
)

type Subscription struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	PlanID    string    `json:"plan_id"`
	PlanName  string    `json:"plan_name"`
	Status    Status    `json:"status"`
	AutoRenew bool      `json:"auto_renew"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	IsActive  bool      `json:"is_active"`
}

// ActiveAt reports whether the subscription is active and not past its end.
func (s Subscription) ActiveAt(now time.Time) bool {
	return s.Status == StatusActive && !s.EndDate.Before(now)
}

type Method string

const (
	MethodGCash Method = "gcash"
	MethodCard  Method = "card"
	MethodBank  Method = "bank"
	MethodCash  Method = "cash"
)

func (m Method) Valid() bool {
	switch m {
	case MethodGCash, MethodCard, MethodBank, MethodCash:
		return true
	}
	return false
}

const PaymentPaid = "paid"

// Payment is immutable once written. Plan name and amounts are snapshots.
type Payment struct {
	ID               string    `json:"id"`
	UserID           string    `json:"user_id"`
	SubscriptionID   string    `json:"subscription_id"`
	PlanNameSnapshot string    `json:"plan_name_snapshot"`
	Amount           float64   `json:"amount"`
	DiscountApplied  float64   `json:"discount_applied"`
	VoucherCode      *string   `json:"voucher_code,omitempty"`
	Method           Method    `json:"method"`
	Status           string    `json:"status"`
	PaidAt           time.Time `json:"paid_at"`
}

type SubscribeRequest struct {
	PlanID      string `json:"plan_id"`
	Method      Method `json:"method"`
	VoucherCode string `json:"voucher_code"`
}

// Receipt is returned by Subscribe.
type Receipt struct {
	PlanName        string    `json:"plan_name"`
	PlanPrice       float64   `json:"plan_price"`
	DiscountApplied float64   `json:"discount_applied"`
	FinalAmount     float64   `json:"final_amount"`
	EndDate         time.Time `json:"end_date"`
	VoucherCode     *string   `json:"voucher_code"`

	Subscription *Subscription `json:"-"`
	Payment      *Payment      `json:"-"`
}

type CreatePlanRequest struct {
	Name         PlanName `json:"name"`
	Description  string   `json:"description"`
	Price        float64  `json:"price"`
	DurationDays int      `json:"duration_days"`
}
