package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"

	"bookingmx/internal/domain"
)

// Consume delivers events from queue to handle until ctx is done or the
// channel closes. Messages that fail to decode are rejected without requeue;
// a handler error requeues the message once.
func Consume(ctx context.Context, url, queue string, handle func(context.Context, domain.ReservationEvent) error) error {
	if queue == "" {
		queue = DefaultQueue
	}
	conn, err := dial(url, dialTimeout)
	if err != nil {
		return fmt.Errorf("rabbitmq: dial: %w", err)
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("rabbitmq: channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		log.Warn().Err(err).Msg("rabbitmq: set QoS failed")
	}
	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("rabbitmq: queue declare: %w", err)
	}
	msgs, err := ch.ConsumeWithContext(ctx, queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("rabbitmq: consume: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				return fmt.Errorf("rabbitmq: delivery channel closed")
			}
			var ev domain.ReservationEvent
			if err := json.Unmarshal(d.Body, &ev); err != nil {
				log.Warn().Err(err).Str("message_id", d.MessageId).Msg("rabbitmq: bad event payload")
				_ = d.Reject(false)
				continue
			}
			if err := handle(ctx, ev); err != nil {
				log.Warn().Err(err).Str("event", string(ev.Type)).Msg("rabbitmq: handler failed")
				_ = d.Nack(false, !d.Redelivered)
				continue
			}
			_ = d.Ack(false)
		}
	}
}
