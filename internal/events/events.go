package events

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Routing keys on the topic exchange.
const (
	KeyAppointmentStatusChanged = "appointment.status_changed"
	KeyPostCreated              = "post.created"
	KeyUpdateCreated            = "update.created"
)

type AppointmentStatusChanged struct {
	AppointmentID string `json:"appointment_id"`
	UserID        string `json:"user_id"`
	Status        string `json:"status"`
	Date          string `json:"date,omitempty"`
	Time          string `json:"time,omitempty"`
}

type PostCreated struct {
	PostID   string `json:"post_id"`
	Title    string `json:"title"`
	Category string `json:"category"`
	Priority string `json:"priority"`
}

type UpdateCreated struct {
	UpdateID string `json:"update_id"`
	Title    string `json:"title"`
	Priority string `json:"priority"`
}

type Publisher interface {
	PublishJSON(ctx context.Context, key string, v any) error
	Close() error
}

type AMQPPublisher struct {
	conn     *amqp.Connection
	ch       *amqp.Channel
	exchange string
}

func NewPublisher(url, exchange string) (*AMQPPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}
	return &AMQPPublisher{conn: conn, ch: ch, exchange: exchange}, nil
}

func (p *AMQPPublisher) PublishJSON(ctx context.Context, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return p.ch.PublishWithContext(ctx, p.exchange, key, false, false, amqp.Publishing{
		ContentType: "application/json",
		Body:        b,
	})
}

func (p *AMQPPublisher) Close() error {
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}

// NopPublisher drops events. Used when the broker is not configured and in
// tests.
type NopPublisher struct{}

func (NopPublisher) PublishJSON(context.Context, string, any) error { return nil }
func (NopPublisher) Close() error                                   { return nil }
