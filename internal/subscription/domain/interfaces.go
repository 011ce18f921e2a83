package domain

import (
	"context"

	rewards "restaurant-waste/internal/rewards/domain"
)

type Repository interface {
	// ActivePlans are ordered by price.
	ActivePlans(ctx context.Context) ([]Plan, error)
	Plan(ctx context.Context, id string) (*Plan, error)
	CreatePlan(ctx context.Context, p *Plan) error

	InsertSubscription(ctx context.Context, s *Subscription) error
	// LatestSubscription returns the most recently started subscription.
	LatestSubscription(ctx context.Context, userID string) (*Subscription, error)
	// LatestActive locks the most recent subscription still marked active.
	LatestActive(ctx context.Context, userID string) (*Subscription, error)
	SetStatus(ctx context.Context, id string, status Status, autoRenew bool) error

	InsertPayment(ctx context.Context, p *Payment) error
	// Payments are newest first.
	Payments(ctx context.Context, userID string) ([]Payment, error)
}

// Vouchers is the slice of the rewards catalog a subscription can consume.
type Vouchers interface {
	LockVoucherByCode(ctx context.Context, code string) (*rewards.Voucher, error)
	DeactivateVoucher(ctx context.Context, id string) error
}
