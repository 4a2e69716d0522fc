// Package rabbitmq publishes reservation events to a durable RabbitMQ queue
// and consumes them back for tooling.
package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog/log"

	"bookingmx/internal/adapters/observability"
	"bookingmx/internal/domain"
)

const (
	DefaultQueue = "bookingmx.reservations"

	dialTimeout    = 2 * time.Second
	publishTimeout = 5 * time.Second
	bufferSize     = 256
)

// ErrClosed is returned by Publish after Close.
var ErrClosed = errors.New("rabbitmq: publisher closed")

type outbound struct {
	ev  domain.ReservationEvent
	msg amqp.Publishing
}

// Publisher hands events to a background sender through a bounded buffer, so
// Publish never waits on the broker. The sender keeps one connection and
// channel open and re-dials lazily after either is closed by the broker.
type Publisher struct {
	url         string
	queue       string
	dialTimeout time.Duration

	events    chan outbound
	done      chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once

	mu   sync.Mutex
	conn *amqp.Connection
	ch   *amqp.Channel
}

func NewPublisher(url, queue string) *Publisher {
	p := newPublisher(url, queue, dialTimeout, bufferSize)
	p.wg.Add(1)
	go p.run()
	return p
}

func newPublisher(url, queue string, timeout time.Duration, buffer int) *Publisher {
	if queue == "" {
		queue = DefaultQueue
	}
	return &Publisher{
		url:         url,
		queue:       queue,
		dialTimeout: timeout,
		events:      make(chan outbound, buffer),
		done:        make(chan struct{}),
	}
}

// dial bounds both the TCP connect and the AMQP handshake by timeout.
func dial(url string, timeout time.Duration) (*amqp.Connection, error) {
	return amqp.DialConfig(url, amqp.Config{
		Heartbeat: 10 * time.Second,
		Locale:    "en_US",
		Dial:      amqp.DefaultDial(timeout),
	})
}

// channel returns an open channel, dialing and declaring the queue if needed.
// Caller holds mu.
func (p *Publisher) channel(ctx context.Context) (*amqp.Channel, error) {
	if p.ch != nil && !p.ch.IsClosed() {
		return p.ch, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if p.conn == nil || p.conn.IsClosed() {
		conn, err := dial(p.url, p.dialTimeout)
		if err != nil {
			return nil, fmt.Errorf("rabbitmq: dial: %w", err)
		}
		p.conn = conn
	}
	ch, err := p.conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("rabbitmq: channel open: %w", err)
	}
	// durable so messages survive broker restarts
	if _, err := ch.QueueDeclare(p.queue, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("rabbitmq: queue declare: %w", err)
	}
	p.ch = ch
	return ch, nil
}

// Publish queues ev for delivery and returns at once. A full buffer drops the
// event with an error; delivery failures are only logged.
func (p *Publisher) Publish(ctx context.Context, ev domain.ReservationEvent) error {
	msg, err := toPublishing(ev)
	if err != nil {
		return err
	}
	select {
	case <-p.done:
		return ErrClosed
	default:
	}
	select {
	case p.events <- outbound{ev: ev, msg: msg}:
		return nil
	default:
		observability.ObserveExternal("rabbitmq", "publish", 429, 0)
		return fmt.Errorf("rabbitmq: buffer full, dropped %s", ev.Type)
	}
}

func (p *Publisher) run() {
	defer p.wg.Done()
	for {
		select {
		case o := <-p.events:
			p.deliver(o)
		case <-p.done:
			p.drain()
			return
		}
	}
}

// drain flushes what is still buffered, giving up at the first failure.
func (p *Publisher) drain() {
	for {
		select {
		case o := <-p.events:
			if err := p.deliver(o); err != nil {
				log.Warn().Int("dropped", len(p.events)).Msg("rabbitmq: events dropped on close")
				return
			}
		default:
			return
		}
	}
}

func (p *Publisher) deliver(o outbound) error {
	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()
	err := p.send(ctx, o.msg)
	if err != nil {
		log.Warn().Err(err).Str("event", string(o.ev.Type)).Str("reservation_id", o.ev.ReservationID).Msg("publish event failed")
		return err
	}
	log.Debug().Str("event", string(o.ev.Type)).Str("reservation_id", o.ev.ReservationID).Msg("event published")
	return nil
}

func (p *Publisher) send(ctx context.Context, msg amqp.Publishing) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	start := time.Now()
	ch, err := p.channel(ctx)
	if err != nil {
		observability.ObserveExternal("rabbitmq", "publish", 503, time.Since(start))
		return err
	}
	if err := ch.PublishWithContext(ctx, "", p.queue, false, false, msg); err != nil {
		observability.ObserveExternal("rabbitmq", "publish", 500, time.Since(start))
		return fmt.Errorf("rabbitmq: publish %s: %w", msg.Type, err)
	}
	observability.ObserveExternal("rabbitmq", "publish", 200, time.Since(start))
	return nil
}

func toPublishing(ev domain.ReservationEvent) (amqp.Publishing, error) {
	if ev.Type == "" {
		return amqp.Publishing{}, fmt.Errorf("%w: event type is required", domain.ErrInvalidArgument)
	}
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = time.Now().UTC()
	}
	body, err := json.Marshal(ev)
	if err != nil {
		return amqp.Publishing{}, fmt.Errorf("rabbitmq: marshal event: %w", err)
	}
	return amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    uuid.NewString(),
		Type:         string(ev.Type),
		Timestamp:    ev.OccurredAt,
		Body:         body,
	}, nil
}

// Close stops accepting events, flushes the buffer and closes the connection.
func (p *Publisher) Close() error {
	p.closeOnce.Do(func() { close(p.done) })
	p.wg.Wait()

	p.mu.Lock()
	defer p.mu.Unlock()
	var errs []error
	if p.ch != nil {
		errs = append(errs, p.ch.Close())
		p.ch = nil
	}
	if p.conn != nil {
		errs = append(errs, p.conn.Close())
		p.conn = nil
	}
	return errors.Join(errs...)
}
