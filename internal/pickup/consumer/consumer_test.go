package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"restaurant-waste/internal/pickup/domain"
	"restaurant-waste/internal/shared/util"
)

type sent struct {
	to  string
	msg message
}

type fakeNotifier struct {
	users     []sent
	drivers   []sent
	broadcast []message
}

func (n *fakeNotifier) SendToUser(userID string, msg interface{}) {
	n.users = append(n.users, sent{to: userID, msg: msg.(message)})
}

func (n *fakeNotifier) SendToDriver(driverID string, msg interface{}) {
	n.drivers = append(n.drivers, sent{to: driverID, msg: msg.(message)})
}

func (n *fakeNotifier) BroadcastToDrivers(msg interface{}) {
	n.broadcast = append(n.broadcast, msg.(message))
}

type fakeActive struct {
	pickups []domain.Pickup
	err     error
}

func (f fakeActive) ActiveForDriver(context.Context, string) ([]domain.Pickup, error) {
	return f.pickups, f.err
}

func discard() *util.Logger {
	return util.NewWithOptions(io.Discard, "error", "text")
}

func encode(t *testing.T, v interface{}) []byte {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return b
}

func TestStatusConsumerPendingBroadcasts(t *testing.T) {
	n := &fakeNotifier{}
	c := NewStatusConsumer(nil, n, discard())

	err := c.handle(context.Background(), encode(t, domain.StatusEvent{
		PickupID: "p-1", Status: domain.StatusPending, RequesterID: "owner-1", Timestamp: time.Now(),
	}))
	require.NoError(t, err)

	require.Len(t, n.users, 1)
	assert.Equal(t, "owner-1", n.users[0].to)
	assert.Equal(t, "pickup_status_update", n.users[0].msg.Type)
	assert.Empty(t, n.drivers)
	require.Len(t, n.broadcast, 1)
	assert.Equal(t, "pickup_available", n.broadcast[0].Type)
}

func TestStatusConsumerNotifiesAssignedDriver(t *testing.T) {
	n := &fakeNotifier{}
	c := NewStatusConsumer(nil, n, discard())

	err := c.handle(context.Background(), encode(t, domain.StatusEvent{
		PickupID: "p-1", Status: domain.StatusAccepted, RequesterID: "owner-1", DriverID: "d-1",
	}))
	require.NoError(t, err)

	require.Len(t, n.drivers, 1)
	assert.Equal(t, "d-1", n.drivers[0].to)
	assert.Empty(t, n.broadcast)

	data := n.users[0].msg.Data.(map[string]interface{})
	assert.Equal(t, "A driver accepted your pickup", data["message"])
}

func TestStatusConsumerRejectsBadPayload(t *testing.T) {
	c := NewStatusConsumer(nil, &fakeNotifier{}, discard())

	err := c.handle(context.Background(), []byte("{not json"))
	require.Error(t, err)
	assert.False(t, errors.Is(err, errRequeue))

	err = c.handle(context.Background(), encode(t, domain.StatusEvent{Status: domain.StatusPending}))
	require.Error(t, err)
}

func TestLocationConsumerRelaysToRequesters(t *testing.T) {
	n := &fakeNotifier{}
	active := fakeActive{pickups: []domain.Pickup{
		{ID: "p-1", RequesterID: "owner-1", Latitude: 7.07, Longitude: 125.61},
		{ID: "p-2", RequesterID: "owner-2", Latitude: 7.10, Longitude: 125.60},
	}}
	c := NewLocationConsumer(nil, active, n, discard())

	err := c.handle(context.Background(), encode(t, LocationUpdate{DriverID: "d-1", Latitude: 7.07, Longitude: 125.61}))
	require.NoError(t, err)

	require.Len(t, n.users, 2)
	assert.Equal(t, "owner-1", n.users[0].to)
	data := n.users[0].msg.Data.(map[string]interface{})
	assert.Equal(t, "p-1", data["pickup_id"])
	assert.InDelta(t, 0.0, data["distance_to_pickup_km"], 0.001)
}

func TestLocationConsumerRequeuesOnLoadFailure(t *testing.T) {
	c := NewLocationConsumer(nil, fakeActive{err: errors.New("db down")}, &fakeNotifier{}, discard())

	err := c.handle(context.Background(), encode(t, LocationUpdate{DriverID: "d-1"}))
	require.ErrorIs(t, err, errRequeue)
}
