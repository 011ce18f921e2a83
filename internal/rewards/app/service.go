package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"restaurant-waste/internal/rewards/domain"
	"restaurant-waste/internal/shared/apperrors"
	"restaurant-waste/internal/shared/db"
	"restaurant-waste/internal/shared/util"
	"restaurant-waste/internal/shared/validation"
)

type RewardsService struct {
	repo   domain.Repository
	tx     db.Transactor
	ledger *Ledger
	logger *util.Logger
	now    func() time.Time
}

func NewRewardsService(repo domain.Repository, tx db.Transactor, ledger *Ledger, logger *util.Logger) *RewardsService {
	return &RewardsService{repo: repo, tx: tx, ledger: ledger, logger: logger, now: time.Now}
}

func (s *RewardsService) Balance(ctx context.Context, userID string) (*domain.Balance, error) {
	return s.repo.Balance(ctx, userID)
}

func (s *RewardsService) Transactions(ctx context.Context, userID string) ([]domain.Transaction, error) {
	return s.repo.Transactions(ctx, userID)
}

func (s *RewardsService) Vouchers(ctx context.Context) ([]domain.Voucher, error) {
	return s.repo.ListActiveVouchers(ctx, s.now())
}

func (s *RewardsService) Redemptions(ctx context.Context, userID string) ([]domain.Redemption, error) {
	return s.repo.Redemptions(ctx, userID)
}

// Redeem spends points on a voucher. Nothing is written when the voucher is
// unusable or the balance is too low.
func (s *RewardsService) Redeem(ctx context.Context, userID, voucherID string) (*domain.Redemption, error) {
	instance := "RewardsService.Redeem"
	start := time.Now()

	if err := validation.ValidateStringNotEmpty(voucherID, "voucher_id"); err != nil {
		return nil, err
	}
	if !validation.IsUUID(voucherID) {
		return nil, fmt.Errorf("%w: voucher does not exist", apperrors.ErrInvalidVoucher)
	}

	var redemption *domain.Redemption
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		v, err := s.repo.LockVoucher(ctx, voucherID)
		if errors.Is(err, apperrors.ErrNotFound) {
			return fmt.Errorf("%w: voucher does not exist", apperrors.ErrInvalidVoucher)
		}
		if err != nil {
			return err
		}
		if !v.Valid(s.now()) {
			return fmt.Errorf("%w: voucher %s is inactive or expired", apperrors.ErrInvalidVoucher, v.Code)
		}

		balance, err := s.repo.LockBalance(ctx, userID)
		if err != nil {
			return err
		}
		if balance < v.PointsRequired {
			return fmt.Errorf("%w: have %d, need %d", apperrors.ErrInsufficientPoints, balance, v.PointsRequired)
		}

		id := v.ID
		redemption = &domain.Redemption{
			ID:          util.GenerateUUID(),
			UserID:      userID,
			VoucherID:   &id,
			ItemName:    itemName(v),
			PointsSpent: v.PointsRequired,
			Status:      domain.RedemptionCompleted,
			CreatedAt:   s.now(),
		}
		if err := s.repo.InsertRedemption(ctx, redemption); err != nil {
			return err
		}

		src := domain.Source{Type: domain.SourceRedemption, ID: redemption.ID}
		if v.PointsRequired == 0 {
			// The ledger refuses zero deltas, so free vouchers log directly.
			return s.repo.InsertTransaction(ctx, &domain.Transaction{
				ID:          util.GenerateUUID(),
				UserID:      userID,
				Points:      0,
				Description: "Redeemed voucher " + v.Code,
				SourceType:  src.Type,
				SourceID:    &redemption.ID,
				CreatedAt:   s.now(),
			})
		}
		_, err = s.ledger.AddPoints(ctx, userID, -v.PointsRequired,
			"Redeemed voucher "+v.Code, src)
		return err
	})
	if err != nil {
		s.logger.Warn(instance, "redemption rejected", "user_id", userID, "voucher_id", voucherID, "error", err.Error())
		return nil, err
	}

	s.logger.OK(instance, "voucher redeemed", "user_id", userID, "redemption_id", redemption.ID,
		"points", redemption.PointsSpent, "duration_ms", time.Since(start).Milliseconds())
	return redemption, nil
}

func itemName(v *domain.Voucher) string {
	if v.Name != "" {
		return v.Name
	}
	return v.Code
}

func (s *RewardsService) CreateVoucher(ctx context.Context, req domain.CreateVoucherRequest) (*domain.Voucher, error) {
	instance := "RewardsService.CreateVoucher"

	code := strings.ToUpper(strings.TrimSpace(req.Code))
	if err := validation.ValidateStringNotEmpty(code, "code"); err != nil {
		return nil, err
	}
	if req.PointsRequired < 0 {
		return nil, apperrors.Validation("points_required must be non-negative")
	}
	if err := validation.ValidateNonNegativeFloat(req.DiscountAmount, "discount_amount"); err != nil {
		return nil, err
	}
	if req.ExpiresAt != nil && req.ExpiresAt.Before(s.now()) {
		return nil, apperrors.Validation("expires_at must be in the future")
	}

	v := &domain.Voucher{
		ID:             util.GenerateUUID(),
		Code:           code,
		Name:           strings.TrimSpace(req.Name),
		Description:    req.Description,
		PointsRequired: req.PointsRequired,
		DiscountAmount: req.DiscountAmount,
		IsActive:       true,
		ExpiresAt:      req.ExpiresAt,
		CreatedAt:      s.now(),
	}
	if err := s.repo.CreateVoucher(ctx, v); err != nil {
		s.logger.Warn(instance, "voucher not created", "code", code, "error", err.Error())
		return nil, err
	}

	s.logger.OK(instance, "voucher created", "voucher_id", v.ID, "code", v.Code)
	return v, nil
}

func (s *RewardsService) DeactivateVoucher(ctx context.Context, id string) error {
	if !validation.IsUUID(id) {
		return apperrors.NotFound("voucher")
	}
	if err := s.repo.DeactivateVoucher(ctx, id); err != nil {
		return err
	}
	s.logger.OK("RewardsService.DeactivateVoucher", "voucher deactivated", "voucher_id", id)
	return nil
}
