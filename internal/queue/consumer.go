package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

// Consumer reads ReservationCreatedEvent messages and appends one JSON
// line per reservation to an audit log.
type Consumer struct {
	URL   string
	Queue string
	Audit *logrus.Logger
}

// NewConsumer opens (or creates) the audit log at path.  The returned
// closer releases the file.
func NewConsumer(url, queueName, path string) (*Consumer, io.Closer, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("mkdir audit dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open audit log: %w", err)
	}
	audit := logrus.New()
	audit.SetOutput(f)
	audit.SetFormatter(&logrus.JSONFormatter{})
	return &Consumer{URL: url, Queue: queueName, Audit: audit}, f, nil
}

// Run consumes until ctx is cancelled, reconnecting with exponential
// backoff when the broker goes away.
func (c *Consumer) Run(ctx context.Context) error {
	backoff := time.Second
	for {
		conn, err := amqp.Dial(c.URL)
		if err != nil {
			logrus.WithError(err).Warnf("reservation consumer: dial failed, retrying in %s", backoff)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		err = c.consume(ctx, conn)
		_ = conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		logrus.WithError(err).Warn("reservation consumer: loop ended, reconnecting")
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(2 * time.Second):
		}
	}
}

func (c *Consumer) consume(ctx context.Context, conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		logrus.WithError(err).Warn("reservation consumer: set QoS failed")
	}
	if _, err := ch.QueueDeclare(c.Queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	msgs, err := ch.Consume(c.Queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			if err := c.Handle(d.Body); err != nil {
				logrus.WithError(err).Warn("reservation consumer: bad message")
				_ = d.Nack(false, false) // drop, requeueing would loop
				continue
			}
			_ = d.Ack(false)
		}
	}
}

// Handle decodes one message body and writes the audit entry.
func (c *Consumer) Handle(body []byte) error {
	var ev ReservationCreatedEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	if ev.ReservationID == 0 {
		return errors.New("missing reservation_id")
	}
	c.Audit.WithFields(logrus.Fields{
		"event_id":       ev.EventID,
		"reservation_id": ev.ReservationID,
		"user_id":        ev.UserID,
		"created_at":     ev.CreatedAt,
		"tickets":        ev.Tickets,
	}).Info("reservation created")
	return nil
}
