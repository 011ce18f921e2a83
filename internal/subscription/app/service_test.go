package app

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	rewardsapp "restaurant-waste/internal/rewards/app"
	rewards "restaurant-waste/internal/rewards/domain"
	rewardsrepo "restaurant-waste/internal/rewards/repo"
	"restaurant-waste/internal/shared/apperrors"
	"restaurant-waste/internal/shared/util"
	"restaurant-waste/internal/subscription/domain"
	"restaurant-waste/internal/subscription/repo"
)

type passthroughTx struct{}

func (passthroughTx) WithinTx(ctx context.Context, fn func(context.Context) error) error {
	return fn(ctx)
}

type fixture struct {
	svc      *SubscriptionService
	repo     *repo.MemoryRepo
	vouchers *rewardsrepo.MemoryRepo
	catalog  *rewardsapp.RewardsService
	now      time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger := util.NewWithOptions(io.Discard, "error", "text")
	subs := repo.NewMemoryRepo()
	vouchers := rewardsrepo.NewMemoryRepo()
	catalog := rewardsapp.NewRewardsService(vouchers, passthroughTx{},
		rewardsapp.NewLedger(vouchers, passthroughTx{}, logger), logger)

	f := &fixture{
		svc:      NewSubscriptionService(subs, vouchers, passthroughTx{}, logger),
		repo:     subs,
		vouchers: vouchers,
		catalog:  catalog,
		now:      time.Date(2026, 7, 1, 8, 0, 0, 0, time.UTC),
	}
	f.svc.now = func() time.Time { return f.now }
	return f
}

func (f *fixture) plan(t *testing.T, name domain.PlanName, price float64, days int) *domain.Plan {
	t.Helper()
	p, err := f.svc.CreatePlan(context.Background(), domain.CreatePlanRequest{Name: name, Price: price, DurationDays: days})
	require.NoError(t, err)
	return p
}

func (f *fixture) voucher(t *testing.T, code string, discount float64) *rewards.Voucher {
	t.Helper()
	v, err := f.catalog.CreateVoucher(context.Background(), rewards.CreateVoucherRequest{Code: code, DiscountAmount: discount})
	require.NoError(t, err)
	return v
}

func TestSubscribeWithVoucher(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	basic := f.plan(t, domain.PlanBasic, 100, 30)
	v := f.voucher(t, "SAVE10", 10)

	receipt, err := f.svc.Subscribe(ctx, "user-1", domain.SubscribeRequest{PlanID: basic.ID, VoucherCode: "save10"})
	require.NoError(t, err)

	assert.Equal(t, 90.0, receipt.FinalAmount)
	assert.Equal(t, 10.0, receipt.DiscountApplied)
	assert.Equal(t, "Basic", receipt.PlanName)
	assert.Equal(t, f.now.AddDate(0, 0, 30), receipt.EndDate)
	assert.Equal(t, domain.MethodGCash, receipt.Payment.Method)

	stored, err := f.vouchers.LockVoucher(ctx, v.ID)
	require.NoError(t, err)
	assert.False(t, stored.IsActive)

	payments, err := f.svc.Payments(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, payments, 1)
	assert.Equal(t, 90.0, payments[0].Amount)
	assert.Equal(t, "Basic", payments[0].PlanNameSnapshot)

	_, err = f.svc.Subscribe(ctx, "user-2", domain.SubscribeRequest{PlanID: basic.ID, VoucherCode: "SAVE10"})
	require.ErrorIs(t, err, apperrors.ErrInvalidVoucher, "vouchers are single use")
}

func TestSubscribeDiscountFloorsAtZero(t *testing.T) {
	f := newFixture(t)
	basic := f.plan(t, domain.PlanBasic, 50, 30)
	f.voucher(t, "BIG", 80)

	receipt, err := f.svc.Subscribe(context.Background(), "user-1", domain.SubscribeRequest{PlanID: basic.ID, VoucherCode: "BIG", Method: domain.MethodCash})
	require.NoError(t, err)
	assert.Equal(t, 0.0, receipt.FinalAmount)
}

func TestSubscribeRejections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	basic := f.plan(t, domain.PlanBasic, 100, 30)

	expiry := time.Now().Add(time.Hour)
	_, err := f.catalog.CreateVoucher(ctx, rewards.CreateVoucherRequest{Code: "OLD", DiscountAmount: 5, ExpiresAt: &expiry})
	require.NoError(t, err)
	f.now = expiry.Add(time.Hour)

	cases := []struct {
		name string
		req  domain.SubscribeRequest
		want error
	}{
		{"missing plan id", domain.SubscribeRequest{}, apperrors.ErrValidation},
		{"malformed plan id", domain.SubscribeRequest{PlanID: "nope"}, apperrors.ErrInvalidPlan},
		{"unknown plan", domain.SubscribeRequest{PlanID: util.GenerateUUID()}, apperrors.ErrInvalidPlan},
		{"bad method", domain.SubscribeRequest{PlanID: basic.ID, Method: "crypto"}, apperrors.ErrValidation},
		{"unknown voucher", domain.SubscribeRequest{PlanID: basic.ID, VoucherCode: "NOPE"}, apperrors.ErrInvalidVoucher},
		{"expired voucher", domain.SubscribeRequest{PlanID: basic.ID, VoucherCode: "OLD"}, apperrors.ErrInvalidVoucher},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.Subscribe(ctx, "user-1", tc.req)
			require.ErrorIs(t, err, tc.want)
		})
	}

	payments, err := f.svc.Payments(ctx, "user-1")
	require.NoError(t, err)
	assert.Empty(t, payments)
}

func TestMineExpiresPastSubscription(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	basic := f.plan(t, domain.PlanBasic, 100, 30)

	_, err := f.svc.Mine(ctx, "user-1")
	require.ErrorIs(t, err, apperrors.ErrNotFound)

	_, err = f.svc.Subscribe(ctx, "user-1", domain.SubscribeRequest{PlanID: basic.ID})
	require.NoError(t, err)

	sub, err := f.svc.Mine(ctx, "user-1")
	require.NoError(t, err)
	assert.True(t, sub.IsActive)

	f.now = f.now.AddDate(0, 0, 31)
	sub, err = f.svc.Mine(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusExpired, sub.Status)
	assert.False(t, sub.IsActive)

	_, err = f.svc.Cancel(ctx, "user-1")
	require.ErrorIs(t, err, apperrors.ErrNoActiveSubscription)
}

func TestCancelDisablesAutoRenew(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	premium := f.plan(t, domain.PlanPremium, 250, 90)

	_, err := f.svc.Cancel(ctx, "user-1")
	require.ErrorIs(t, err, apperrors.ErrNoActiveSubscription)

	_, err = f.svc.Subscribe(ctx, "user-1", domain.SubscribeRequest{PlanID: premium.ID, Method: domain.MethodCard})
	require.NoError(t, err)

	sub, err := f.svc.Cancel(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancelled, sub.Status)
	assert.False(t, sub.AutoRenew)

	_, err = f.svc.Cancel(ctx, "user-1")
	require.ErrorIs(t, err, apperrors.ErrNoActiveSubscription)
}

func TestPlansOrderedByPrice(t *testing.T) {
	f := newFixture(t)
	f.plan(t, domain.PlanEnterprise, 900, 365)
	f.plan(t, domain.PlanBasic, 100, 30)

	_, err := f.svc.CreatePlan(context.Background(), domain.CreatePlanRequest{Name: "basic", Price: 1})
	require.ErrorIs(t, err, apperrors.ErrConflict)
	_, err = f.svc.CreatePlan(context.Background(), domain.CreatePlanRequest{Name: "gold", Price: 1})
	require.ErrorIs(t, err, apperrors.ErrValidation)

	plans, err := f.svc.Plans(context.Background())
	require.NoError(t, err)
	require.Len(t, plans, 2)
	assert.Equal(t, domain.PlanBasic, plans[0].Name)
}
