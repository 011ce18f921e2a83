package app

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	authdomain "restaurant-waste/internal/auth/domain"
	"restaurant-waste/internal/pickup/domain"
	"restaurant-waste/internal/pickup/repo"
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

type recordingPublisher struct {
	mu   sync.Mutex
	keys []string
}

func (p *recordingPublisher) PublishJSON(_ context.Context, _, key string, _ interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.keys = append(p.keys, key)
	return nil
}

type failingPublisher struct{}

func (failingPublisher) PublishJSON(context.Context, string, string, interface{}) error {
	return errors.New("broker down")
}

type staticRestaurants map[string]*authdomain.OwnerProfile

func (r staticRestaurants) OwnerProfile(_ context.Context, userID string) (*authdomain.OwnerProfile, error) {
	if o, ok := r[userID]; ok {
		return o, nil
	}
	return nil, apperrors.NotFound("owner profile")
}

type staticDrives map[string]error

func (d staticDrives) CheckOngoing(_ context.Context, id string) error {
	if err, ok := d[id]; ok {
		return err
	}
	return apperrors.NotFound("donation drive")
}

var (
	owner    = models.Identity{UserID: "owner-1", Role: models.RoleOwner, ProfileID: "op-1"}
	employee = models.Identity{UserID: "emp-1", Role: models.RoleEmployee, ProfileID: "e-1", OwnerUserID: "owner-1"}
	stranger = models.Identity{UserID: "user-9", Role: models.RoleUser}
	driverD  = models.Identity{UserID: "driver-user-1", Role: models.RoleDriver, ProfileID: "d-1"}
	driverE  = models.Identity{UserID: "driver-user-2", Role: models.RoleDriver, ProfileID: "d-2"}
)

type fixture struct {
	svc     *PickupService
	repo    *repo.MemoryRepo
	rewards *rewardsrepo.MemoryRepo
	pub     *recordingPublisher
	now     time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger := util.NewWithOptions(io.Discard, "error", "text")

	pickups := repo.NewMemoryRepo()
	lat, lng := 7.10, 125.60
	pickups.AddDriver(domain.DriverRef{ID: "d-1", UserID: driverD.UserID, IsActive: true, Status: "available", Latitude: &lat, Longitude: &lng})
	pickups.AddDriver(domain.DriverRef{ID: "d-2", UserID: driverE.UserID, IsActive: true, Status: "available"})

	rewardStore := rewardsrepo.NewMemoryRepo()
	ledger := rewardsapp.NewLedger(rewardStore, passthroughTx{}, logger)
	pub := &recordingPublisher{}

	cfg := models.PickupConfig{
		DefaultLatitude:  7.0731,
		DefaultLongitude: 125.6128,
		DefaultAddress:   "Davao City",
		CompletionPoints: 10,
		PastSchedule:     models.PastScheduleReject,
	}
	svc := NewPickupService(Deps{
		Repo:      pickups,
		Publisher: pub,
		Tx:        passthroughTx{},
		Ledger:    ledger,
		Restaurants: staticRestaurants{
			"owner-1": {ID: "op-1", UserID: "owner-1", RestaurantName: "Kusina", Address: "Roxas Ave"},
		},
		Drives: staticDrives{
			"drive-open":   nil,
			"drive-closed": apperrors.Validation("donation drive is not ongoing"),
		},
	}, cfg, logger)

	f := &fixture{svc: svc, repo: pickups, rewards: rewardStore, pub: pub, now: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
	svc.now = func() time.Time { return f.now }
	return f
}

func (f *fixture) create(t *testing.T, id models.Identity) *domain.Pickup {
	t.Helper()
	p, err := f.svc.CreatePickup(context.Background(), id, domain.CreateRequest{WasteType: "food", WeightKg: 5})
	require.NoError(t, err)
	f.now = f.now.Add(time.Minute)
	return p
}

func (f *fixture) balance(t *testing.T, userID string) int {
	t.Helper()
	b, err := f.rewards.Balance(context.Background(), userID)
	require.NoError(t, err)
	return b.Points
}

func TestCreatePickupDefaults(t *testing.T) {
	f := newFixture(t)
	p := f.create(t, owner)

	assert.Equal(t, domain.StatusPending, p.Status)
	assert.Nil(t, p.DriverID)
	assert.Equal(t, 7.0731, p.Latitude)
	assert.Equal(t, 125.6128, p.Longitude)
	assert.Equal(t, "Kusina", p.RestaurantName)
	assert.Equal(t, "Roxas Ave", p.PickupAddress)
	assert.Equal(t, []string{"pickup.status.pending"}, f.pub.keys)
}

func TestCreatePickupValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	past := f.now.Add(-time.Hour)

	cases := []struct {
		name string
		id   models.Identity
		req  domain.CreateRequest
		want error
	}{
		{"zero weight", owner, domain.CreateRequest{WasteType: "food"}, apperrors.ErrValidation},
		{"missing waste type", owner, domain.CreateRequest{WeightKg: 1}, apperrors.ErrValidation},
		{"past schedule", owner, domain.CreateRequest{WasteType: "food", WeightKg: 1, ScheduledAt: &past}, apperrors.ErrValidation},
		{"driver requester", driverD, domain.CreateRequest{WasteType: "food", WeightKg: 1}, apperrors.ErrForbidden},
		{"closed drive", owner, domain.CreateRequest{WasteType: "food", WeightKg: 1, DonationDriveID: strPtr("drive-closed")}, apperrors.ErrValidation},
		{"unknown drive", owner, domain.CreateRequest{WasteType: "food", WeightKg: 1, DonationDriveID: strPtr("nope")}, apperrors.ErrNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.CreatePickup(ctx, tc.id, tc.req)
			require.ErrorIs(t, err, tc.want)
		})
	}
}

func TestMalformedPickupIDIsNotFound(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.GetPickup(ctx, owner, "abc")
	require.ErrorIs(t, err, apperrors.ErrNotFound)
	_, err = f.svc.AcceptPickup(ctx, driverD, "abc")
	require.ErrorIs(t, err, apperrors.ErrNotFound)
	_, err = f.svc.StartPickup(ctx, driverD, "abc")
	require.ErrorIs(t, err, apperrors.ErrNotFound)
	_, err = f.svc.CompletePickup(ctx, owner, "abc")
	require.ErrorIs(t, err, apperrors.ErrNotFound)
	_, err = f.svc.CancelPickup(ctx, owner, "abc")
	require.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestPastScheduleClampPolicy(t *testing.T) {
	f := newFixture(t)
	f.svc.cfg.PastSchedule = models.PastScheduleClamp
	past := f.now.Add(-time.Hour)

	p, err := f.svc.CreatePickup(context.Background(), owner, domain.CreateRequest{WasteType: "oil", WeightKg: 2, ScheduledAt: &past})
	require.NoError(t, err)
	assert.Equal(t, f.now, p.ScheduledAt)
}

func TestEmployeePickupBelongsToOwner(t *testing.T) {
	f := newFixture(t)
	p := f.create(t, employee)

	assert.Equal(t, "owner-1", p.RequesterID)
	assert.Equal(t, "emp-1", p.CreatedBy)

	list, err := f.svc.ListPickups(context.Background(), owner)
	require.NoError(t, err)
	require.Len(t, list, 1)

	_, err = f.svc.GetPickup(context.Background(), stranger, p.ID)
	require.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestEndToEndPickupLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.create(t, stranger)
	assert.Equal(t, 5.0, p.WeightKg)

	accepted, err := f.svc.AcceptPickup(ctx, driverD, p.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusAccepted, accepted.Status)
	require.NotNil(t, accepted.DriverID)
	assert.Equal(t, "d-1", *accepted.DriverID)

	started, err := f.svc.StartPickup(ctx, driverD, p.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusInProgress, started.Status)

	completed, err := f.svc.CompletePickup(ctx, driverD, p.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, completed.Status)

	assert.Equal(t, 10, f.balance(t, stranger.UserID))
	txs, err := f.rewards.Transactions(ctx, stranger.UserID)
	require.NoError(t, err)
	require.Len(t, txs, 1)
	require.NotNil(t, txs[0].SourceID)
	assert.Equal(t, p.ID, *txs[0].SourceID)

	assert.Equal(t, 1, f.repo.CompletedPickups("d-1"))
	d, err := f.repo.Driver(ctx, "d-1")
	require.NoError(t, err)
	assert.Equal(t, "available", d.Status)

	assert.Equal(t, []string{
		"pickup.status.pending",
		"pickup.status.accepted",
		"pickup.status.in_progress",
		"pickup.status.completed",
	}, f.pub.keys)
}

func TestSecondAcceptConflicts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.create(t, owner)

	_, err := f.svc.AcceptPickup(ctx, driverD, p.ID)
	require.NoError(t, err)

	_, err = f.svc.AcceptPickup(ctx, driverE, p.ID)
	require.ErrorIs(t, err, apperrors.ErrConflict)
	state, ok := apperrors.CurrentState(err)
	require.True(t, ok)
	assert.Equal(t, string(domain.StatusAccepted), state)

	got, err := f.repo.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "d-1", *got.DriverID, "original assignment is untouched")
}

func TestConcurrentAcceptHasOneWinner(t *testing.T) {
	f := newFixture(t)
	p := f.create(t, owner)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, id := range []models.Identity{driverD, driverE} {
		wg.Add(1)
		go func(i int, id models.Identity) {
			defer wg.Done()
			_, errs[i] = f.svc.AcceptPickup(context.Background(), id, p.ID)
		}(i, id)
	}
	wg.Wait()

	wins := 0
	for _, err := range errs {
		if err == nil {
			wins++
			continue
		}
		assert.ErrorIs(t, err, apperrors.ErrConflict)
	}
	assert.Equal(t, 1, wins)
}

func TestAcceptRules(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.create(t, owner)

	_, err := f.svc.AcceptPickup(ctx, owner, p.ID)
	require.ErrorIs(t, err, apperrors.ErrForbidden)

	f.repo.AddDriver(domain.DriverRef{ID: "d-3", IsActive: false, Status: "inactive"})
	_, err = f.svc.AcceptPickup(ctx, models.Identity{UserID: "u-3", Role: models.RoleDriver, ProfileID: "d-3"}, p.ID)
	require.ErrorIs(t, err, apperrors.ErrForbidden)

	_, err = f.svc.CancelPickup(ctx, owner, p.ID)
	require.NoError(t, err)
	_, err = f.svc.AcceptPickup(ctx, driverD, p.ID)
	require.ErrorIs(t, err, apperrors.ErrInvalidState)
}

func TestStartRules(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.create(t, owner)

	_, err := f.svc.StartPickup(ctx, owner, p.ID)
	require.ErrorIs(t, err, apperrors.ErrForbidden)

	_, err = f.svc.AcceptPickup(ctx, driverD, p.ID)
	require.NoError(t, err)

	_, err = f.svc.StartPickup(ctx, driverE, p.ID)
	require.ErrorIs(t, err, apperrors.ErrForbidden)

	_, err = f.svc.StartPickup(ctx, driverD, p.ID)
	require.NoError(t, err)
	_, err = f.svc.StartPickup(ctx, driverD, p.ID)
	require.ErrorIs(t, err, apperrors.ErrInvalidState)
}

func TestCompleteRequiresActiveState(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.create(t, owner)

	_, err := f.svc.CompletePickup(ctx, owner, p.ID)
	require.ErrorIs(t, err, apperrors.ErrInvalidState, "pending cannot complete")

	_, err = f.svc.AcceptPickup(ctx, driverD, p.ID)
	require.NoError(t, err)

	_, err = f.svc.CompletePickup(ctx, stranger, p.ID)
	require.ErrorIs(t, err, apperrors.ErrForbidden)

	_, err = f.svc.CompletePickup(ctx, employee, p.ID)
	require.NoError(t, err, "employees complete for their owner")

	_, err = f.svc.CompletePickup(ctx, owner, p.ID)
	require.ErrorIs(t, err, apperrors.ErrInvalidState)
	assert.Equal(t, 10, f.balance(t, owner.UserID), "completion credits exactly once")
}

func TestCancelCompletedIsRejected(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.create(t, owner)

	_, err := f.svc.AcceptPickup(ctx, driverD, p.ID)
	require.NoError(t, err)
	_, err = f.svc.CompletePickup(ctx, driverD, p.ID)
	require.NoError(t, err)

	_, err = f.svc.CancelPickup(ctx, owner, p.ID)
	require.ErrorIs(t, err, apperrors.ErrInvalidState)
	assert.Equal(t, 10, f.balance(t, owner.UserID))
	assert.Equal(t, 1, f.repo.CompletedPickups("d-1"))
}

func TestCancelReleasesDriver(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.create(t, owner)

	_, err := f.svc.AcceptPickup(ctx, driverD, p.ID)
	require.NoError(t, err)
	d, _ := f.repo.Driver(ctx, "d-1")
	assert.Equal(t, "on_pickup", d.Status)

	_, err = f.svc.CancelPickup(ctx, driverD, p.ID)
	require.ErrorIs(t, err, apperrors.ErrForbidden)

	cancelled, err := f.svc.CancelPickup(ctx, owner, p.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancelled, cancelled.Status)
	d, _ = f.repo.Driver(ctx, "d-1")
	assert.Equal(t, "available", d.Status)
}

func TestCompleteFailsWhenLedgerFails(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.create(t, owner)
	_, err := f.svc.AcceptPickup(ctx, driverD, p.ID)
	require.NoError(t, err)

	f.rewards.FailAddPoints = errors.New("ledger unavailable")
	_, err = f.svc.CompletePickup(ctx, driverD, p.ID)
	require.Error(t, err)
	assert.Equal(t, 0, f.repo.CompletedPickups("d-1"))
	assert.Equal(t, 0, f.balance(t, owner.UserID))
}

func TestUpdateOnlyWhilePending(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.create(t, owner)

	weight := 7.5
	updated, err := f.svc.UpdatePickup(ctx, owner, p.ID, domain.UpdateRequest{WeightKg: &weight})
	require.NoError(t, err)
	assert.Equal(t, 7.5, updated.WeightKg)

	bad := -1.0
	_, err = f.svc.UpdatePickup(ctx, owner, p.ID, domain.UpdateRequest{WeightKg: &bad})
	require.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = f.svc.AcceptPickup(ctx, driverD, p.ID)
	require.NoError(t, err)
	_, err = f.svc.UpdatePickup(ctx, owner, p.ID, domain.UpdateRequest{WeightKg: &weight})
	require.ErrorIs(t, err, apperrors.ErrInvalidState)
}

func TestListAvailableOrdersByDistance(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	far, near := 8.0, 7.11
	farLng, nearLng := 126.0, 125.61
	_, err := f.svc.CreatePickup(ctx, owner, domain.CreateRequest{WasteType: "food", WeightKg: 1, Latitude: &far, Longitude: &farLng})
	require.NoError(t, err)
	f.now = f.now.Add(time.Minute)
	nearP, err := f.svc.CreatePickup(ctx, owner, domain.CreateRequest{WasteType: "food", WeightKg: 1, Latitude: &near, Longitude: &nearLng})
	require.NoError(t, err)

	list, err := f.svc.ListAvailable(ctx, driverD)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, nearP.ID, list[0].ID)
	require.NotNil(t, list[0].DistanceKm)
	assert.Less(t, *list[0].DistanceKm, *list[1].DistanceKm)

	noLocation, err := f.svc.ListAvailable(ctx, driverE)
	require.NoError(t, err)
	require.Len(t, noLocation, 2)
	assert.Nil(t, noLocation[0].DistanceKm)

	_, err = f.svc.ListAvailable(ctx, owner)
	require.ErrorIs(t, err, apperrors.ErrForbidden)
}

func TestPublishFailureDoesNotFailTransition(t *testing.T) {
	f := newFixture(t)
	f.svc.pub = failingPublisher{}

	p, err := f.svc.CreatePickup(context.Background(), owner, domain.CreateRequest{WasteType: "food", WeightKg: 3})
	require.NoError(t, err)
	_, err = f.svc.AcceptPickup(context.Background(), driverD, p.ID)
	require.NoError(t, err)
}

func strPtr(s string) *string { return &s }
