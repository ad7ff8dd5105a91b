package telemetry

import (
	"context"
	"errors"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"fleet-tracker-backend/config"
)

// Subscriber owns the AMQP connection to the telemetry broker. It binds a
// queue to the vehicle/position topic, parses incoming payloads and
// publishes them onto a bounded channel consumed by the Pipeline. Transport
// reconnection lives entirely here; the ingestion side never sees it.
type Subscriber struct {
	cfg config.TelemetryConfig
	out chan PositionMessage
}

// NewSubscriber creates a subscriber with a bounded buffer of cfg.BufferSize.
func NewSubscriber(cfg config.TelemetryConfig) *Subscriber {
	return &Subscriber{
		cfg: cfg,
		out: make(chan PositionMessage, cfg.BufferSize),
	}
}

// Messages returns the channel of parsed position messages.
func (s *Subscriber) Messages() <-chan PositionMessage {
	return s.out
}

// Run dials the broker and consumes until the context is cancelled,
// redialing with a fixed delay after connection loss. It closes the
// message channel on return.
func (s *Subscriber) Run(ctx context.Context) {
	defer close(s.out)

	for {
		if ctx.Err() != nil {
			return
		}

		conn, err := amqp.Dial(s.cfg.URL)
		if err != nil {
			log.Printf("telemetry: broker dial failed: %v (retrying in %s)", err, s.cfg.Reconnect)
			if !sleepCtx(ctx, s.cfg.Reconnect) {
				return
			}
			continue
		}

		err = s.consume(ctx, conn)
		conn.Close()
		if ctx.Err() != nil {
			return
		}
		log.Printf("telemetry: consumer stopped: %v (reconnecting in %s)", err, s.cfg.Reconnect)
		if !sleepCtx(ctx, s.cfg.Reconnect) {
			return
		}
	}
}

// consume declares the topology and forwards parsed deliveries until the
// context ends or the broker closes the delivery stream.
func (s *Subscriber) consume(ctx context.Context, conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return err
	}
	defer ch.Close()

	if err := ch.ExchangeDeclare(s.cfg.Exchange, "topic", true, false, false, false, nil); err != nil {
		return err
	}

	q, err := ch.QueueDeclare(s.cfg.Queue, true, false, false, false, nil)
	if err != nil {
		return err
	}

	if err := ch.QueueBind(q.Name, s.cfg.RoutingKey, s.cfg.Exchange, false, nil); err != nil {
		return err
	}

	deliveries, err := ch.Consume(
		q.Name,
		"",    // consumer tag
		true,  // auto-ack: at-most-once, a dropped heartbeat is acceptable
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return err
	}

	log.Printf("telemetry: consuming %s (key %s) on exchange %s", q.Name, s.cfg.RoutingKey, s.cfg.Exchange)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-deliveries:
			if !ok {
				return errors.New("delivery stream closed")
			}
			msg, err := ParsePositionMessage(d.Body)
			if err != nil {
				log.Printf("telemetry: dropping message: %v", err)
				continue
			}
			select {
			case s.out <- msg:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
}

// sleepCtx waits d or until ctx is done; reports whether the full delay
// elapsed.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
