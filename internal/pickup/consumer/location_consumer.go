package consumer

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"restaurant-waste/internal/pickup/domain"
	"restaurant-waste/internal/shared/mq"
	"restaurant-waste/internal/shared/util"
)

// ActivePickups is implemented by app.PickupService.
type ActivePickups interface {
	ActiveForDriver(ctx context.Context, driverID string) ([]domain.Pickup, error)
}

type LocationUpdate struct {
	DriverID   string    `json:"driver_id"`
	Latitude   float64   `json:"latitude"`
	Longitude  float64   `json:"longitude"`
	RecordedAt time.Time `json:"recorded_at"`
}

// LocationConsumer relays driver pings to requesters of that driver's
// active pickups.
type LocationConsumer struct {
	channel  *amqp.Channel
	pickups  ActivePickups
	notifier Notifier
	logger   *util.Logger
}

func NewLocationConsumer(ch *amqp.Channel, pickups ActivePickups, notifier Notifier, logger *util.Logger) *LocationConsumer {
	return &LocationConsumer{channel: ch, pickups: pickups, notifier: notifier, logger: logger}
}

func (c *LocationConsumer) Start(ctx context.Context) error {
	return consume(ctx, c.channel, mq.DriverLocationQueue, c.logger, c.handle)
}

func (c *LocationConsumer) handle(ctx context.Context, body []byte) error {
	var update LocationUpdate
	if err := json.Unmarshal(body, &update); err != nil {
		return fmt.Errorf("invalid location update: %w", err)
	}

	active, err := c.pickups.ActiveForDriver(ctx, update.DriverID)
	if err != nil {
		c.logger.Error("LocationConsumer.handle", "failed to load active pickups", err, "driver_id", update.DriverID)
		return errRequeue
	}

	for _, p := range active {
		c.notifier.SendToUser(p.RequesterID, message{
			Type: "driver_location_update",
			Data: map[string]interface{}{
				"pickup_id": p.ID,
				"driver_id": update.DriverID,
				"driver_location": map[string]float64{
					"latitude":  update.Latitude,
					"longitude": update.Longitude,
				},
				"distance_to_pickup_km": util.Haversine(update.Latitude, update.Longitude, p.Latitude, p.Longitude),
				"recorded_at":           update.RecordedAt,
			},
		})
	}
	return nil
}
