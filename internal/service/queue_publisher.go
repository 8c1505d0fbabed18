// Package service holds integrations that sit beside the request path,
// such as publishing domain events to RabbitMQ.
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/iliyamo/theatre-reservation/internal/model"
	"github.com/iliyamo/theatre-reservation/internal/queue"
)

// Publisher sends reservation events to a durable queue.  Each publish
// opens a short-lived connection; reservation writes are rare enough
// for this to be cheap.
type Publisher struct {
	URL         string
	Queue       string
	DialTimeout time.Duration
}

func NewPublisher(url, queueName string) *Publisher {
	if queueName == "" {
		queueName = queue.ReservationCreatedQueue
	}
	return &Publisher{URL: url, Queue: queueName, DialTimeout: 2 * time.Second}
}

// ReservationCreated publishes a ReservationCreatedEvent for r.
// Messages are persistent and carry the event id as MessageId.
func (p *Publisher) ReservationCreated(ctx context.Context, r model.Reservation) error {
	ev := queue.NewReservationCreatedEvent(r)
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	conn, err := amqp.DialConfig(p.URL, amqp.Config{Dial: amqp.DefaultDial(p.DialTimeout)})
	if err != nil {
		return fmt.Errorf("dial broker: %w", err)
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("open channel: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(p.Queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}
	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    ev.EventID,
		Timestamp:    time.Now().UTC(),
		Type:         "reservation.created",
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", p.Queue, false, false, pub); err != nil {
		return fmt.Errorf("publish: %w", err)
	}
	return nil
}
