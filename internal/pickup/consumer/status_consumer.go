package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"restaurant-waste/internal/pickup/domain"
	"restaurant-waste/internal/shared/mq"
	"restaurant-waste/internal/shared/util"
)

// StatusConsumer forwards pickup.status.* events to requesters and drivers.
type StatusConsumer struct {
	channel  *amqp.Channel
	notifier Notifier
	logger   *util.Logger
}

func NewStatusConsumer(ch *amqp.Channel, notifier Notifier, logger *util.Logger) *StatusConsumer {
	return &StatusConsumer{channel: ch, notifier: notifier, logger: logger}
}

func (c *StatusConsumer) Start(ctx context.Context) error {
	return consume(ctx, c.channel, mq.PickupStatusQueue, c.logger, c.handle)
}

func (c *StatusConsumer) handle(_ context.Context, body []byte) error {
	var event domain.StatusEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return fmt.Errorf("invalid status event: %w", err)
	}
	if event.PickupID == "" || event.RequesterID == "" {
		return errors.New("status event without pickup or requester")
	}

	update := map[string]interface{}{
		"pickup_id": event.PickupID,
		"status":    event.Status,
		"timestamp": event.Timestamp,
	}
	if event.DriverID != "" {
		update["driver_id"] = event.DriverID
	}
	switch event.Status {
	case domain.StatusAccepted:
		update["message"] = "A driver accepted your pickup"
	case domain.StatusInProgress:
		update["message"] = "Your pickup is on the way"
	case domain.StatusCompleted:
		update["message"] = "Your pickup has been completed"
	case domain.StatusCancelled:
		update["message"] = "The pickup was cancelled"
	}

	msg := message{Type: "pickup_status_update", Data: update}

	c.notifier.SendToUser(event.RequesterID, msg)
	if event.DriverID != "" {
		c.notifier.SendToDriver(event.DriverID, msg)
	}
	if event.Status == domain.StatusPending {
		c.notifier.BroadcastToDrivers(message{Type: "pickup_available", Data: event})
	}

	c.logger.Info("StatusConsumer.handle", "status forwarded", "pickup_id", event.PickupID, "status", string(event.Status))
	return nil
}
