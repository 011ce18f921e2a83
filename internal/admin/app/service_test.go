package app

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"restaurant-waste/internal/admin/repo"
	"restaurant-waste/internal/shared/util"
)

type fakeMetrics struct {
	page, pageSize int
	pickups        []repo.ActivePickup
}

func (f *fakeMetrics) GetSystemMetrics(context.Context) (*repo.SystemMetrics, error) {
	return &repo.SystemMetrics{ActivePickups: len(f.pickups), PointsIssuedToday: 30}, nil
}

func (f *fakeMetrics) GetPickupDistribution(context.Context) (repo.Distribution, error) {
	return repo.Distribution{"pending": 2, "completed": 3}, nil
}

func (f *fakeMetrics) GetDriverDistribution(context.Context) (repo.Distribution, error) {
	return repo.Distribution{"available": 4}, nil
}

func (f *fakeMetrics) GetActivePickups(_ context.Context, page, pageSize int) ([]repo.ActivePickup, int, error) {
	f.page, f.pageSize = page, pageSize
	out := make([]repo.ActivePickup, len(f.pickups))
	copy(out, f.pickups)
	return out, len(f.pickups), nil
}

func TestOverview(t *testing.T) {
	svc := NewAdminService(&fakeMetrics{}, Catalog{}, util.NewWithOptions(io.Discard, "error", "text"))

	overview, err := svc.GetSystemOverview(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 30, overview.Metrics.PointsIssuedToday)
	assert.Equal(t, 3, overview.PickupDistribution["completed"])
	assert.Equal(t, 4, overview.DriverDistribution["available"])
	assert.NotEmpty(t, overview.Timestamp)
}

func TestActivePickupsPaginationAndDistance(t *testing.T) {
	metrics := &fakeMetrics{pickups: []repo.ActivePickup{
		{PickupID: "p-1", Latitude: 7.0731, Longitude: 125.6128,
			CurrentDriverLocation: &repo.Location{Latitude: 7.0731, Longitude: 125.6128}},
		{PickupID: "p-2", Latitude: 7.0731, Longitude: 125.6128},
	}}
	svc := NewAdminService(metrics, Catalog{}, util.NewWithOptions(io.Discard, "error", "text"))

	resp, err := svc.GetActivePickups(context.Background(), 0, 500)
	require.NoError(t, err)
	assert.Equal(t, 1, metrics.page)
	assert.Equal(t, 20, metrics.pageSize)
	assert.Equal(t, 2, resp.TotalCount)

	require.NotNil(t, resp.Pickups[0].DistanceRemainingKm)
	assert.InDelta(t, 0, *resp.Pickups[0].DistanceRemainingKm, 0.001)
	assert.Nil(t, resp.Pickups[1].DistanceRemainingKm)
}
