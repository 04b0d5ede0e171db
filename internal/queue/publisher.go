package queue

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/venue-booking/internal/logging"
)

// Publisher sends domain events to the broker.
type Publisher interface {
	PublishRosterUpdated(ctx context.Context, ev RosterUpdatedEvent) error
}

// NopPublisher drops every message. Used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) PublishRosterUpdated(context.Context, RosterUpdatedEvent) error { return nil }

// AMQPPublisher dials the broker per message, declares the durable queue
// and publishes a persistent JSON message on the default exchange.
type AMQPPublisher struct {
	url string
	log *logrus.Entry
}

func NewAMQPPublisher(url string, log *logrus.Entry) *AMQPPublisher {
	return &AMQPPublisher{url: url, log: log.WithField(logging.FldQueue, RosterQueue)}
}

func (p *AMQPPublisher) PublishRosterUpdated(ctx context.Context, ev RosterUpdatedEvent) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return errors.Wrap(err, "marshal roster event")
	}
	if err := p.publish(ctx, RosterQueue, body); err != nil {
		p.log.WithError(err).WithField(logging.FldEvent, ev.EventID).Warn("publish failed")
		return err
	}
	return nil
}

func (p *AMQPPublisher) publish(ctx context.Context, queue string, body []byte) error {
	conn, err := amqp.Dial(p.url)
	if err != nil {
		return errors.Wrap(err, "dial broker")
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return errors.Wrap(err, "open channel")
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		return errors.Wrap(err, "declare queue")
	}

	return errors.Wrap(ch.PublishWithContext(ctx, "", queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}), "publish")
}
