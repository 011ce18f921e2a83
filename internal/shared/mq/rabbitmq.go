package mq

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/rabbitmq/amqp091-go"

	"restaurant-waste/internal/shared/models"
	"restaurant-waste/internal/shared/util"
)

const (
	PickupExchange      = "pickup_topic"
	PickupStatusQueue   = "pickup_status_updates"
	PickupStatusKey     = "pickup.status.*"
	DriverExchange      = "driver_topic"
	DriverLocationQueue = "driver_location_updates"
	DriverLocationKey   = "driver.location.*"
)

func PickupStatusRoutingKey(status string) string {
	return "pickup.status." + status
}

func DriverLocationRoutingKey(driverID string) string {
	return "driver.location." + driverID
}

type Publisher struct {
	mu sync.RWMutex
	ch *amqp091.Channel
}

func NewPublisher(ch *amqp091.Channel) *Publisher {
	return &Publisher{ch: ch}
}

// SetChannel swaps the channel after a reconnect.
func (p *Publisher) SetChannel(ch *amqp091.Channel) {
	p.mu.Lock()
	p.ch = ch
	p.mu.Unlock()
}

func (p *Publisher) Publish(ctx context.Context, exchange, routingKey string, body []byte) error {
	p.mu.RLock()
	ch := p.ch
	p.mu.RUnlock()

	err := ch.PublishWithContext(ctx,
		exchange,   // exchange
		routingKey, // routing key
		false,      // mandatory
		false,      // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp091.Persistent,
			Timestamp:    time.Now(),
		})
	if err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}
	return nil
}

func (p *Publisher) PublishJSON(ctx context.Context, exchange, routingKey string, data interface{}) error {
	body, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}
	return p.Publish(ctx, exchange, routingKey, body)
}

// DeclareTopology creates the exchanges and queues used by the services.
func DeclareTopology(ch *amqp091.Channel) error {
	for _, ex := range []string{PickupExchange, DriverExchange} {
		if err := ch.ExchangeDeclare(ex, "topic", true, false, false, false, nil); err != nil {
			return fmt.Errorf("declare exchange %s: %w", ex, err)
		}
	}

	bindings := []struct{ queue, key, exchange string }{
		{PickupStatusQueue, PickupStatusKey, PickupExchange},
		{DriverLocationQueue, DriverLocationKey, DriverExchange},
	}
	for _, b := range bindings {
		if _, err := ch.QueueDeclare(b.queue, true, false, false, false, nil); err != nil {
			return fmt.Errorf("declare queue %s: %w", b.queue, err)
		}
		if err := ch.QueueBind(b.queue, b.key, b.exchange, false, nil); err != nil {
			return fmt.Errorf("bind queue %s: %w", b.queue, err)
		}
	}
	return nil
}

func DSN(cfg *models.RabbitMQConfig) string {
	return fmt.Sprintf("amqp://%s:%s@%s:%s/", cfg.User, cfg.Password, cfg.Host, cfg.Port)
}

// ConnectToRMQ dials with retries, declares the topology and keeps the
// publisher's channel fresh across reconnects.
func ConnectToRMQ(cfg *models.RabbitMQConfig, pub *Publisher, logger *util.Logger) (*amqp091.Connection, *amqp091.Channel, error) {
	const instance = "RabbitMQ.Connect"
	dsn := DSN(cfg)

	var conn *amqp091.Connection
	var ch *amqp091.Channel
	var err error

	for i := 0; i < 10; i++ {
		conn, ch, err = dial(dsn)
		if err == nil {
			if pub != nil {
				pub.SetChannel(ch)
			}
			go monitorConnection(conn, dsn, pub, logger)
			return conn, ch, nil
		}
		logger.Warn(instance, fmt.Sprintf("RabbitMQ not ready, retrying... (%d/10)", i+1))
		time.Sleep(3 * time.Second)
	}

	return nil, nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
}

func dial(dsn string) (*amqp091.Connection, *amqp091.Channel, error) {
	conn, err := amqp091.Dial(dsn)
	if err != nil {
		return nil, nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, nil, err
	}
	if err := DeclareTopology(ch); err != nil {
		conn.Close()
		return nil, nil, err
	}
	return conn, ch, nil
}

func monitorConnection(conn *amqp091.Connection, dsn string, pub *Publisher, logger *util.Logger) {
	const instance = "RabbitMQ.Monitor"
	notifyClose := conn.NotifyClose(make(chan *amqp091.Error, 1))

	for {
		closeErr, ok := <-notifyClose
		if !ok || closeErr == nil {
			// closed cleanly
			return
		}

		logger.Warn(instance, "connection lost, reconnecting", "error", closeErr.Error())

		backoff := 5 * time.Second
		maxBackoff := 60 * time.Second
		for {
			time.Sleep(backoff)

			newConn, newCh, err := dial(dsn)
			if err != nil {
				logger.Warn(instance, "reconnection failed", "error", err.Error(), "retry_in", backoff.String())
				backoff = min(backoff*2, maxBackoff)
				continue
			}

			logger.OK(instance, "reconnected to RabbitMQ")
			if pub != nil {
				pub.SetChannel(newCh)
			}
			notifyClose = newConn.NotifyClose(make(chan *amqp091.Error, 1))
			break
		}
	}
}
