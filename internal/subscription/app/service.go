package app

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"restaurant-waste/internal/shared/apperrors"
	"restaurant-waste/internal/shared/db"
	"restaurant-waste/internal/shared/util"
	"restaurant-waste/internal/shared/validation"
	"restaurant-waste/internal/subscription/domain"
)

type SubscriptionService struct {
	repo     domain.Repository
	vouchers domain.Vouchers
	tx       db.Transactor
	logger   *util.Logger
	now      func() time.Time
}

func NewSubscriptionService(repo domain.Repository, vouchers domain.Vouchers, tx db.Transactor, logger *util.Logger) *SubscriptionService {
	return &SubscriptionService{repo: repo, vouchers: vouchers, tx: tx, logger: logger, now: time.Now}
}

func (s *SubscriptionService) Plans(ctx context.Context) ([]domain.Plan, error) {
	return s.repo.ActivePlans(ctx)
}

// Mine returns the latest subscription, expiring it first when its end has
// passed.
func (s *SubscriptionService) Mine(ctx context.Context, userID string) (*domain.Subscription, error) {
	sub, err := s.repo.LatestSubscription(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if sub.Status == domain.StatusActive && sub.EndDate.Before(now) {
		if err := s.repo.SetStatus(ctx, sub.ID, domain.StatusExpired, sub.AutoRenew); err != nil {
			return nil, err
		}
		sub.Status = domain.StatusExpired
		s.logger.Info("SubscriptionService.Mine", "subscription expired", "subscription_id", sub.ID)
	}
	sub.IsActive = sub.ActiveAt(now)
	return sub, nil
}

// Subscribe activates a plan. The subscription, payment and voucher
// deactivation are written together or not at all.
func (s *SubscriptionService) Subscribe(ctx context.Context, userID string, req domain.SubscribeRequest) (*domain.Receipt, error) {
	instance := "SubscriptionService.Subscribe"
	start := time.Now()

	if strings.TrimSpace(req.PlanID) == "" {
		return nil, apperrors.Validation("plan_id is required")
	}
	method := req.Method
	if method == "" {
		method = domain.MethodGCash
	}
	if !method.Valid() {
		return nil, apperrors.Validation("method must be one of gcash, card, bank, cash")
	}
	if !validation.IsUUID(req.PlanID) {
		return nil, fmt.Errorf("%w: plan does not exist", apperrors.ErrInvalidPlan)
	}
	code := strings.ToUpper(strings.TrimSpace(req.VoucherCode))

	var receipt *domain.Receipt
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		plan, err := s.repo.Plan(ctx, req.PlanID)
		if errors.Is(err, apperrors.ErrNotFound) {
			return fmt.Errorf("%w: plan does not exist", apperrors.ErrInvalidPlan)
		}
		if err != nil {
			return err
		}
		if !plan.IsActive {
			return fmt.Errorf("%w: plan %s is not available", apperrors.ErrInvalidPlan, plan.Name)
		}

		now := s.now()
		var discount float64
		var voucherCode *string
		if code != "" {
			v, err := s.vouchers.LockVoucherByCode(ctx, code)
			if errors.Is(err, apperrors.ErrNotFound) {
				return fmt.Errorf("%w: invalid or expired voucher", apperrors.ErrInvalidVoucher)
			}
			if err != nil {
				return err
			}
			if !v.Valid(now) {
				return fmt.Errorf("%w: invalid or expired voucher", apperrors.ErrInvalidVoucher)
			}
			if err := s.vouchers.DeactivateVoucher(ctx, v.ID); err != nil {
				return err
			}
			discount = v.DiscountAmount
			voucherCode = &v.Code
		}

		sub := &domain.Subscription{
			ID:        util.GenerateUUID(),
			UserID:    userID,
			PlanID:    plan.ID,
			PlanName:  plan.Name.Display(),
			Status:    domain.StatusActive,
			AutoRenew: true,
			StartDate: now,
			EndDate:   now.AddDate(0, 0, plan.DurationDays),
			IsActive:  true,
		}
		if err := s.repo.InsertSubscription(ctx, sub); err != nil {
			return err
		}

		amount := finalPrice(plan.Price, discount)
		payment := &domain.Payment{
			ID:               util.GenerateUUID(),
			UserID:           userID,
			SubscriptionID:   sub.ID,
			PlanNameSnapshot: plan.Name.Display(),
			Amount:           amount,
			DiscountApplied:  discount,
			VoucherCode:      voucherCode,
			Method:           method,
			Status:           domain.PaymentPaid,
			PaidAt:           now,
		}
		if err := s.repo.InsertPayment(ctx, payment); err != nil {
			return err
		}

		receipt = &domain.Receipt{
			PlanName:        plan.Name.Display(),
			PlanPrice:       plan.Price,
			DiscountApplied: discount,
			FinalAmount:     amount,
			EndDate:         sub.EndDate,
			VoucherCode:     voucherCode,
			Subscription:    sub,
			Payment:         payment,
		}
		return nil
	})
	if err != nil {
		s.logger.Warn(instance, "subscription rejected", "user_id", userID, "plan_id", req.PlanID, "error", err.Error())
		return nil, err
	}

	s.logger.OK(instance, "subscription activated", "user_id", userID, "subscription_id", receipt.Subscription.ID,
		"amount", receipt.FinalAmount, "duration_ms", time.Since(start).Milliseconds())
	return receipt, nil
}

// finalPrice floors at zero and rounds to centavos.
func finalPrice(price, discount float64) float64 {
	return math.Round(math.Max(0, price-discount)*100) / 100
}

// Cancel turns off auto-renew on the latest active subscription.
func (s *SubscriptionService) Cancel(ctx context.Context, userID string) (*domain.Subscription, error) {
	var sub *domain.Subscription
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		sub, err = s.repo.LatestActive(ctx, userID)
		if errors.Is(err, apperrors.ErrNotFound) {
			return apperrors.ErrNoActiveSubscription
		}
		if err != nil {
			return err
		}
		sub.Status = domain.StatusCancelled
		sub.AutoRenew = false
		return s.repo.SetStatus(ctx, sub.ID, sub.Status, sub.AutoRenew)
	})
	if err != nil {
		return nil, err
	}

	s.logger.OK("SubscriptionService.Cancel", "subscription cancelled", "user_id", userID, "subscription_id", sub.ID)
	return sub, nil
}

func (s *SubscriptionService) Payments(ctx context.Context, userID string) ([]domain.Payment, error) {
	return s.repo.Payments(ctx, userID)
}

func (s *SubscriptionService) CreatePlan(ctx context.Context, req domain.CreatePlanRequest) (*domain.Plan, error) {
	name := domain.PlanName(strings.ToLower(strings.TrimSpace(string(req.Name))))
	if !name.Valid() {
		return nil, apperrors.Validation("name must be one of basic, premium, enterprise")
	}
	if req.Price < 0 {
		return nil, apperrors.Validation("price must be non-negative")
	}
	if req.DurationDays == 0 {
		req.DurationDays = 30
	}
	if req.DurationDays < 0 {
		return nil, apperrors.Validation("duration_days must be positive")
	}

	p := &domain.Plan{
		ID:           util.GenerateUUID(),
		Name:         name,
		DisplayName:  name.Display(),
		Description:  strings.TrimSpace(req.Description),
		Price:        req.Price,
		DurationDays: req.DurationDays,
		IsActive:     true,
	}
	if err := s.repo.CreatePlan(ctx, p); err != nil {
		return nil, err
	}
	s.logger.OK("SubscriptionService.CreatePlan", "plan created", "plan_id", p.ID, "name", string(p.Name))
	return p, nil
}
