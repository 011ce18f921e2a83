package rmq

import (
	"context"

	"restaurant-waste/internal/driver/models"
	"restaurant-waste/internal/shared/mq"
)

type broker struct {
	pub *mq.Publisher
}

type Broker interface {
	PublishLocation(ctx context.Context, event models.LocationEvent) error
}

func NewBroker(pub *mq.Publisher) Broker {
	return &broker{pub: pub}
}

func (b *broker) PublishLocation(ctx context.Context, event models.LocationEvent) error {
	return b.pub.PublishJSON(ctx, mq.DriverExchange, mq.DriverLocationRoutingKey(event.DriverID), event)
}
