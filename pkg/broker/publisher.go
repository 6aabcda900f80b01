package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"travelagency/pkg/apperr"
	"travelagency/pkg/retry"
)

// Publisher sends JSON messages to a durable queue on the default exchange.
// The connection is opened lazily and re-dialled after it closes.
type Publisher struct {
	URL    string
	Queue  string
	Policy retry.Policy

	// DialTimeout bounds each connection attempt.
	DialTimeout time.Duration

	mu   sync.Mutex
	conn *amqp.Connection
	ch   *amqp.Channel
}

func NewPublisher(url, queue string, policy retry.Policy) *Publisher {
	return &Publisher{URL: url, Queue: queue, Policy: policy, DialTimeout: 5 * time.Second}
}

func (p *Publisher) Publish(ctx context.Context, v any) error {
	body, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.ensureChannel(ctx); err != nil {
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := p.ch.PublishWithContext(ctx, "", p.Queue, false, false, pub); err != nil {
		p.closeLocked()
		return fmt.Errorf("publish: %w", err)
	}
	return nil
}

func (p *Publisher) ensureChannel(ctx context.Context) error {
	if p.conn != nil && !p.conn.IsClosed() && p.ch != nil && !p.ch.IsClosed() {
		return nil
	}
	p.closeLocked()

	var conn *amqp.Connection
	err := retry.Do(ctx, p.Policy, "amqp.dial", func(ctx context.Context) error {
		c, err := amqp.DialConfig(p.URL, dialConfig(p.DialTimeout))
		if err != nil {
			return &apperr.TransientNetworkError{Op: "amqp.dial", Err: err}
		}
		conn = c
		return nil
	})
	if err != nil {
		return err
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("channel open: %w", err)
	}
	if _, err := ch.QueueDeclare(p.Queue, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return fmt.Errorf("queue declare: %w", err)
	}

	p.conn, p.ch = conn, ch
	return nil
}

func dialConfig(timeout time.Duration) amqp.Config {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return amqp.Config{
		Heartbeat: 10 * time.Second,
		Locale:    "en_US",
		Dial:      amqp.DefaultDial(timeout),
	}
}

func (p *Publisher) closeLocked() {
	if p.ch != nil {
		_ = p.ch.Close()
		p.ch = nil
	}
	if p.conn != nil {
		_ = p.conn.Close()
		p.conn = nil
	}
}

func (p *Publisher) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closeLocked()
}
