package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"civic-service/internal/events"
	"civic-service/internal/kvcache"
	"civic-service/pkg/sl"
)

type ConsumerConfig struct {
	AMQPURL     string
	Exchange    string
	Queue       string
	MinInterval time.Duration
}

// Bookkeeper is the slice of the KV mirror the consumer needs: the
// notified-update set and the last-notification timestamp.
type Bookkeeper interface {
	SetString(ctx context.Context, key, value string) error
	GetString(ctx context.Context, key string) (string, bool, error)
	AddToSet(ctx context.Context, key, member string) error
	InSet(ctx context.Context, key, member string) (bool, error)
}

// Consumer drains domain events off the topic exchange and turns them into
// push notifications. Update events are deduped against the
// already-notified set so a replayed event never notifies twice.
type Consumer struct {
	cfg      ConsumerConfig
	notifier Notifier
	cache    Bookkeeper
	log      *slog.Logger

	conn *amqp.Connection
	ch   *amqp.Channel
}

func NewConsumer(cfg ConsumerConfig, n Notifier, cache Bookkeeper, log *slog.Logger) *Consumer {
	return &Consumer{cfg: cfg, notifier: n, cache: cache, log: log}
}

func (c *Consumer) Connect() error {
	conn, err := amqp.Dial(c.cfg.AMQPURL)
	if err != nil {
		return fmt.Errorf("rabbit dial failed: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("open channel failed: %w", err)
	}

	if err := ch.ExchangeDeclare(c.cfg.Exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return fmt.Errorf("declare exchange failed: %w", err)
	}

	q, err := ch.QueueDeclare(c.cfg.Queue, true, false, false, false, nil)
	if err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return fmt.Errorf("declare queue failed: %w", err)
	}

	for _, key := range []string{
		events.KeyAppointmentStatusChanged,
		events.KeyPostCreated,
		events.KeyUpdateCreated,
	} {
		if err := ch.QueueBind(q.Name, key, c.cfg.Exchange, false, nil); err != nil {
			_ = ch.Close()
			_ = conn.Close()
			return fmt.Errorf("bind key=%s failed: %w", key, err)
		}
	}

	if err := ch.Qos(8, 0, false); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return fmt.Errorf("set qos failed: %w", err)
	}

	c.conn = conn
	c.ch = ch
	return nil
}

func (c *Consumer) Run(ctx context.Context) error {
	deliveries, err := c.ch.ConsumeWithContext(ctx, c.cfg.Queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume failed: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-deliveries:
			if !ok {
				return nil
			}
			c.handle(ctx, d)
		}
	}
}

func (c *Consumer) handle(ctx context.Context, d amqp.Delivery) {
	log := c.log.With(slog.String("routing_key", d.RoutingKey))

	n, skip, err := c.build(ctx, d)
	if err != nil {
		log.Error("Failed to build notification", sl.Err(err))
		_ = d.Nack(false, false)
		return
	}
	if skip {
		log.Debug("Notification skipped")
		_ = d.Ack(false)
		return
	}

	if err := c.notifier.Notify(ctx, n); err != nil {
		log.Error("Failed to deliver notification", sl.Err(err))
		_ = d.Nack(false, true)
		return
	}

	// Recorded only after delivery: a failed send stays eligible for the
	// requeued redelivery.
	if d.RoutingKey == events.KeyUpdateCreated {
		if id := n.Data["update_id"]; id != "" {
			if err := c.cache.AddToSet(ctx, kvcache.KeyNotifiedUpdates, id); err != nil {
				log.Error("Failed to record notified update", sl.Err(err))
			}
		}
	}

	if err := c.cache.SetString(ctx, kvcache.KeyLastNotification,
		strconv.FormatInt(time.Now().Unix(), 10)); err != nil {
		log.Error("Failed to record last notification time", sl.Err(err))
	}

	log.Info("Notification delivered", slog.String("title", n.Title))
	_ = d.Ack(false)
}

func (c *Consumer) build(ctx context.Context, d amqp.Delivery) (Notification, bool, error) {
	switch d.RoutingKey {
	case events.KeyAppointmentStatusChanged:
		var ev events.AppointmentStatusChanged
		if err := json.Unmarshal(d.Body, &ev); err != nil {
			return Notification{}, false, err
		}
		body := fmt.Sprintf("Your appointment is now %s.", ev.Status)
		if ev.Date != "" {
			body = fmt.Sprintf("Your appointment on %s is now %s.", ev.Date, ev.Status)
		}
		return Notification{
			Title: "Appointment Update",
			Body:  body,
			Data: map[string]string{
				"appointment_id": ev.AppointmentID,
				"user_id":        ev.UserID,
				"status":         ev.Status,
			},
		}, false, nil

	case events.KeyPostCreated:
		var ev events.PostCreated
		if err := json.Unmarshal(d.Body, &ev); err != nil {
			return Notification{}, false, err
		}
		return Notification{
			Title: "New Announcement",
			Body:  ev.Title,
			Data: map[string]string{
				"post_id":  ev.PostID,
				"category": ev.Category,
				"priority": ev.Priority,
			},
		}, false, nil

	case events.KeyUpdateCreated:
		var ev events.UpdateCreated
		if err := json.Unmarshal(d.Body, &ev); err != nil {
			return Notification{}, false, err
		}

		sent, err := c.cache.InSet(ctx, kvcache.KeyNotifiedUpdates, ev.UpdateID)
		if err != nil {
			return Notification{}, false, err
		}
		if sent {
			return Notification{}, true, nil
		}
		if throttled, err := c.throttled(ctx); err != nil {
			return Notification{}, false, err
		} else if throttled && ev.Priority != "high" {
			return Notification{}, true, nil
		}

		return Notification{
			Title: "New Update",
			Body:  ev.Title,
			Data: map[string]string{
				"update_id": ev.UpdateID,
				"priority":  ev.Priority,
			},
		}, false, nil
	}

	return Notification{}, true, nil
}

// throttled reports whether a notification went out within the minimum
// interval. High-priority updates bypass the throttle.
func (c *Consumer) throttled(ctx context.Context) (bool, error) {
	if c.cfg.MinInterval <= 0 {
		return false, nil
	}

	v, ok, err := c.cache.GetString(ctx, kvcache.KeyLastNotification)
	if err != nil || !ok {
		return false, err
	}

	unix, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		// Unparseable state fails open to sending.
		return false, nil
	}

	return time.Since(time.Unix(unix, 0)) < c.cfg.MinInterval, nil
}

func (c *Consumer) Close() error {
	if c.ch != nil {
		_ = c.ch.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}
