// Package events publishes ATM domain events (committed transactions,
// registrations, blocked cards) to RabbitMQ. When the broker is not
// configured or unreachable the service runs with a logging fallback.
package events

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/rabbitmq/amqp091-go"
	"github.com/shopspring/decimal"
)

// Exchange is the durable topic exchange every ATM event goes to.
const Exchange = "atm_events"

// Routing keys.
const (
	KeyDeposited      = "atm.transaction.deposited"
	KeyWithdrawn      = "atm.transaction.withdrawn"
	KeyRegistered     = "atm.account.registered"
	KeySessionBlocked = "atm.session.blocked"
)

// TransactionEvent is published after a deposit or withdrawal commits.
type TransactionEvent struct {
	TransactionID int64           `json:"transaction_id"`
	UserID        int64           `json:"user_id"`
	Type          string          `json:"type"`
	Amount        decimal.Decimal `json:"amount"`
	Balance       decimal.Decimal `json:"balance"`
	Timestamp     time.Time       `json:"timestamp"`
}

// AccountEvent is published on registration.
type AccountEvent struct {
	UserID    int64     `json:"user_id"`
	Name      string    `json:"name"`
	Timestamp time.Time `json:"timestamp"`
}

// SessionEvent is published when a session gets blocked.
type SessionEvent struct {
	SessionID string    `json:"session_id"`
	Attempts  int       `json:"attempts"`
	Timestamp time.Time `json:"timestamp"`
}

type Publisher interface {
	Publish(ctx context.Context, routingKey string, body any) error
	Close()
}

// Fallback is a no-op publisher used when RabbitMQ is unavailable at startup.
type Fallback struct {
	Log *slog.Logger
}

func (p Fallback) Publish(_ context.Context, routingKey string, _ any) error {
	if p.Log != nil {
		p.Log.Warn("publish skipped", "component", "events", "mode", "fallback", "exchange", Exchange, "routing_key", routingKey)
	}
	return nil
}

func (Fallback) Close() {}

// AMQP publishes JSON bodies to Exchange. amqp channels are not safe for
// concurrent publishing, so Publish is serialised.
type AMQP struct {
	mu      sync.Mutex
	conn    *amqp091.Connection
	channel *amqp091.Channel
	log     *slog.Logger
}

func sanitizeAMQPURL(raw string) (string, error) {
	clean := strings.Trim(strings.TrimSpace(raw), "\"'")
	u, err := url.Parse(clean)
	if err != nil {
		return "", err
	}
	if u.Scheme != "amqp" && u.Scheme != "amqps" {
		return "", errors.New("AMQP scheme must be either 'amqp://' or 'amqps://'")
	}
	return clean, nil
}

// NewAMQP dials the broker and declares Exchange.
func NewAMQP(amqpURL string, log *slog.Logger) (*AMQP, error) {
	cleanURL, err := sanitizeAMQPURL(amqpURL)
	if err != nil {
		return nil, err
	}

	// bounded dial so startup does not hang
	conn, err := amqp091.DialConfig(cleanURL, amqp091.Config{Dial: amqp091.DefaultDial(10 * time.Second)})
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}
	if err := declare(ch); err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}
	return &AMQP{conn: conn, channel: ch, log: log}, nil
}

func declare(ch *amqp091.Channel) error {
	return ch.ExchangeDeclare(
		Exchange, // name
		"topic",  // type
		true,     // durable
		false,    // autoDelete
		false,    // internal
		false,    // noWait
		nil,      // args
	)
}

func (p *AMQP) Publish(ctx context.Context, routingKey string, body any) error {
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return err
	}
	msg := amqp091.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp091.Persistent,
		Timestamp:    time.Now(),
		Body:         jsonBody,
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	err = p.channel.PublishWithContext(ctx, Exchange, routingKey, false, false, msg)
	if err == nil {
		return nil
	}
	p.log.Warn("publish failed; reopening channel", "routing_key", routingKey, "err", err)

	// one-shot retry on a fresh channel
	ch, chErr := p.conn.Channel()
	if chErr != nil {
		return chErr
	}
	p.channel = ch
	if err := declare(ch); err != nil {
		return err
	}
	return ch.PublishWithContext(ctx, Exchange, routingKey, false, false, msg)
}

func (p *AMQP) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.channel != nil {
		p.channel.Close()
	}
	if p.conn != nil {
		p.conn.Close()
	}
}

// Connect returns an AMQP publisher, or Fallback when url is empty or the
// broker cannot be reached.
func Connect(amqpURL string, log *slog.Logger) Publisher {
	if strings.TrimSpace(amqpURL) == "" {
		log.Info("RABBITMQ_URL not set; events disabled")
		return Fallback{Log: log}
	}
	p, err := NewAMQP(amqpURL, log)
	if err != nil {
		log.Warn("rabbitmq unavailable; events disabled", "err", err)
		return Fallback{Log: log}
	}
	log.Info("rabbitmq connected", "exchange", Exchange)
	return p
}

// Message is one publish captured by Recorder.
type Message struct {
	RoutingKey string
	Body       any
}

// Recorder keeps published messages in memory.
type Recorder struct {
	mu   sync.Mutex
	msgs []Message
}

func (r *Recorder) Publish(_ context.Context, routingKey string, body any) error {
	r.mu.Lock()
	r.msgs = append(r.msgs, Message{RoutingKey: routingKey, Body: body})
	r.mu.Unlock()
	return nil
}

func (*Recorder) Close() {}

func (r *Recorder) Messages() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Message(nil), r.msgs...)
}
