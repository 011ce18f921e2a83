package consumer

import (
	"context"
	"errors"

	amqp "github.com/rabbitmq/amqp091-go"

	"restaurant-waste/internal/shared/util"
)

// Notifier pushes messages to connected clients. Implemented by api.Hub.
type Notifier interface {
	SendToUser(userID string, msg interface{})
	SendToDriver(driverID string, msg interface{})
	BroadcastToDrivers(msg interface{})
}

var errRequeue = errors.New("requeue")

type message struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// handler processes one delivery body. Returning errRequeue asks for a
// redelivery; any other error drops the message.
type handler func(ctx context.Context, body []byte) error

func consume(ctx context.Context, ch *amqp.Channel, queue string, logger *util.Logger, handle handler) error {
	msgs, err := ch.Consume(
		queue,
		"",
		false, // manual acknowledgment
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return err
	}

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					logger.Warn("consumer", "delivery channel closed", "queue", queue)
					return
				}
				dispatch(ctx, msg, queue, logger, handle)
			}
		}
	}()

	logger.Info("consumer", "consumer started", "queue", queue)
	return nil
}

func dispatch(ctx context.Context, msg amqp.Delivery, queue string, logger *util.Logger, handle handler) {
	err := handle(ctx, msg.Body)
	switch {
	case err == nil:
		msg.Ack(false)
	case errors.Is(err, errRequeue):
		msg.Nack(false, !msg.Redelivered)
	default:
		logger.Warn("consumer", "dropping message", "queue", queue, "error", err.Error())
		msg.Nack(false, false)
	}
}
