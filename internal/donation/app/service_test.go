package app

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"restaurant-waste/internal/donation/domain"
	"restaurant-waste/internal/donation/repo"
	rewardsapp "restaurant-waste/internal/rewards/app"
	rewardsrepo "restaurant-waste/internal/rewards/repo"
	"restaurant-waste/internal/shared/apperrors"
	"restaurant-waste/internal/shared/models"
	"restaurant-waste/internal/shared/util"
)

type passthroughTx struct{}

func (passthroughTx) WithinTx(ctx context.Context, fn func(context.Context) error) error {
	return fn(ctx)
}

type fixture struct {
	svc     *DonationService
	repo    *repo.MemoryRepo
	rewards *rewardsrepo.MemoryRepo
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger := util.NewWithOptions(io.Discard, "error", "text")
	rewardStore := rewardsrepo.NewMemoryRepo()
	drives := repo.NewMemoryRepo()

	svc := NewDonationService(drives, rewardsapp.NewLedger(rewardStore, passthroughTx{}, logger),
		models.DonationConfig{CompletionPoints: 20}, logger)
	svc.now = func() time.Time { return time.Date(2026, 5, 10, 14, 0, 0, 0, time.UTC) }
	return &fixture{svc: svc, repo: drives, rewards: rewardStore}
}

func (f *fixture) drive(t *testing.T, title, start, end string) *domain.Drive {
	t.Helper()
	d, err := f.svc.CreateDrive(context.Background(), domain.CreateDriveRequest{
		Title: title, TargetItem: "Surplus Food", StartDate: start, EndDate: end,
	})
	require.NoError(t, err)
	return d
}

func TestListDrivesHidesEnded(t *testing.T) {
	f := newFixture(t)
	f.drive(t, "Food", "2026-05-01", "2026-05-31")
	f.drive(t, "Last day", "2026-05-01", "2026-05-10")
	f.drive(t, "Over", "2026-04-01", "2026-04-30")
	upcoming := f.drive(t, "Upcoming", "2026-06-01", "2026-06-30")

	list, err := f.svc.ListDrives(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, upcoming.ID, list[0].ID)
	assert.False(t, list[0].IsOngoing)
	assert.True(t, list[1].IsOngoing)
}

func TestCreateDriveValidatesDates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.CreateDrive(ctx, domain.CreateDriveRequest{Title: "x", TargetItem: "y", StartDate: "2026-05-10", EndDate: "2026-05-01"})
	require.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = f.svc.CreateDrive(ctx, domain.CreateDriveRequest{Title: "x", TargetItem: "y", EndDate: "next week"})
	require.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestCheckOngoing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	open := f.drive(t, "Food", "2026-05-01", "2026-05-31")
	future := f.drive(t, "Later", "2026-06-01", "2026-06-30")

	require.NoError(t, f.svc.CheckOngoing(ctx, open.ID))
	require.ErrorIs(t, f.svc.CheckOngoing(ctx, future.ID), apperrors.ErrValidation)
	require.ErrorIs(t, f.svc.CheckOngoing(ctx, "missing"), apperrors.ErrNotFound)
	require.ErrorIs(t, f.svc.CheckOngoing(ctx, util.GenerateUUID()), apperrors.ErrNotFound)
}

func TestMalformedIDsAreNotFound(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.GetDrive(ctx, "12")
	require.ErrorIs(t, err, apperrors.ErrNotFound)

	_, err = f.svc.GetDrive(ctx, util.GenerateUUID())
	require.ErrorIs(t, err, apperrors.ErrNotFound)

	_, err = f.svc.MarkCompleted(ctx, "12")
	require.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestParticipateRules(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	open := f.drive(t, "Food", "2026-05-01", "2026-05-31")
	future := f.drive(t, "Later", "2026-06-01", "2026-06-30")

	cases := []struct {
		name string
		req  domain.ParticipateRequest
	}{
		{"zero quantity", domain.ParticipateRequest{DriveID: open.ID, DonatedItem: "rice", Quantity: 0}},
		{"no item", domain.ParticipateRequest{DriveID: open.ID, Quantity: 2}},
		{"unknown drive", domain.ParticipateRequest{DriveID: "missing", DonatedItem: "rice", Quantity: 2}},
		{"not started", domain.ParticipateRequest{DriveID: future.ID, DonatedItem: "rice", Quantity: 2}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.Participate(ctx, "user-1", tc.req)
			require.ErrorIs(t, err, apperrors.ErrValidation)
		})
	}

	p, err := f.svc.Participate(ctx, "user-1", domain.ParticipateRequest{DriveID: open.ID, DonatedItem: "rice", Quantity: 5})
	require.NoError(t, err)
	assert.Equal(t, domain.ParticipationPending, p.Status)
	assert.Equal(t, "Food", p.DriveTitle)

	mine, err := f.svc.ListMine(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, mine, 1)
}

func TestMarkCompletedAwardsBonusOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	open := f.drive(t, "Food", "2026-05-01", "2026-05-31")
	p, err := f.svc.Participate(ctx, "user-1", domain.ParticipateRequest{DriveID: open.ID, DonatedItem: "rice", Quantity: 5})
	require.NoError(t, err)

	done, err := f.svc.MarkCompleted(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ParticipationCompleted, done.Status)
	require.NotNil(t, done.CompletedAt)

	balance, err := f.rewards.Balance(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, 20, balance.Points)

	txs, err := f.rewards.Transactions(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, "Donation completed for Food", txs[0].Description)

	_, err = f.svc.MarkCompleted(ctx, p.ID)
	require.ErrorIs(t, err, apperrors.ErrInvalidState)
	balance, _ = f.rewards.Balance(ctx, "user-1")
	assert.Equal(t, 20, balance.Points)

	_, err = f.svc.MarkCompleted(ctx, "missing")
	require.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestMarkCompletedSurvivesLedgerFailure(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	open := f.drive(t, "Food", "2026-05-01", "2026-05-31")
	p, err := f.svc.Participate(ctx, "user-1", domain.ParticipateRequest{DriveID: open.ID, DonatedItem: "rice", Quantity: 5})
	require.NoError(t, err)

	f.rewards.FailAddPoints = errors.New("ledger unavailable")
	done, err := f.svc.MarkCompleted(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ParticipationCompleted, done.Status)

	stored, err := f.repo.Participation(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ParticipationCompleted, stored.Status)

	balance, _ := f.rewards.Balance(ctx, "user-1")
	assert.Equal(t, 0, balance.Points)
}
