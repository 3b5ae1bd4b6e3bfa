package notify

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"strconv"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"civic-service/internal/events"
	"civic-service/internal/kvcache"
)

type fakeBookkeeper struct {
	strings map[string]string
	sets    map[string]map[string]bool
}

func newFakeBookkeeper() *fakeBookkeeper {
	return &fakeBookkeeper{
		strings: map[string]string{},
		sets:    map[string]map[string]bool{},
	}
}

func (f *fakeBookkeeper) SetString(ctx context.Context, key, value string) error {
	f.strings[key] = value
	return nil
}

func (f *fakeBookkeeper) GetString(ctx context.Context, key string) (string, bool, error) {
	v, ok := f.strings[key]
	return v, ok, nil
}

func (f *fakeBookkeeper) AddToSet(ctx context.Context, key, member string) error {
	if f.sets[key] == nil {
		f.sets[key] = map[string]bool{}
	}
	f.sets[key][member] = true
	return nil
}

func (f *fakeBookkeeper) InSet(ctx context.Context, key, member string) (bool, error) {
	return f.sets[key][member], nil
}

// failingNotifier rejects the first n deliveries, then accepts.
type failingNotifier struct {
	failures  int
	delivered []Notification
}

func (f *failingNotifier) Notify(_ context.Context, n Notification) error {
	if f.failures > 0 {
		f.failures--
		return errors.New("push gateway unavailable")
	}
	f.delivered = append(f.delivered, n)
	return nil
}

func newTestConsumer(cache Bookkeeper, n Notifier, minInterval time.Duration) *Consumer {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewConsumer(ConsumerConfig{MinInterval: minInterval}, n, cache, log)
}

func updateDelivery(t *testing.T, ev events.UpdateCreated) amqp.Delivery {
	t.Helper()
	b, err := json.Marshal(ev)
	if err != nil {
		t.Fatal(err)
	}
	return amqp.Delivery{RoutingKey: events.KeyUpdateCreated, Body: b}
}

func TestConsumerDeliversUpdateOnce(t *testing.T) {
	cache := newFakeBookkeeper()
	notifier := &failingNotifier{}
	c := newTestConsumer(cache, notifier, 0)

	d := updateDelivery(t, events.UpdateCreated{UpdateID: "n1", Title: "Water interruption", Priority: "normal"})

	c.handle(context.Background(), d)
	c.handle(context.Background(), d) // replay of the same event

	if len(notifier.delivered) != 1 {
		t.Fatalf("delivered %d times, want 1", len(notifier.delivered))
	}
	if sent, _ := cache.InSet(context.Background(), kvcache.KeyNotifiedUpdates, "n1"); !sent {
		t.Error("n1 should be in the notified set after delivery")
	}
}

func TestConsumerRetriesFailedDelivery(t *testing.T) {
	cache := newFakeBookkeeper()
	notifier := &failingNotifier{failures: 1}
	c := newTestConsumer(cache, notifier, 0)

	d := updateDelivery(t, events.UpdateCreated{UpdateID: "n1", Title: "Water interruption", Priority: "normal"})

	// first attempt fails at the gateway
	c.handle(context.Background(), d)
	if len(notifier.delivered) != 0 {
		t.Fatalf("delivered %d times after a failed send, want 0", len(notifier.delivered))
	}
	if sent, _ := cache.InSet(context.Background(), kvcache.KeyNotifiedUpdates, "n1"); sent {
		t.Fatal("a failed send must not mark the update as notified")
	}

	// the broker redelivers after the nack
	c.handle(context.Background(), d)
	if len(notifier.delivered) != 1 {
		t.Fatalf("delivered %d times after redelivery, want 1", len(notifier.delivered))
	}
	if sent, _ := cache.InSet(context.Background(), kvcache.KeyNotifiedUpdates, "n1"); !sent {
		t.Error("n1 should be in the notified set after the successful retry")
	}
}

func TestConsumerThrottlesNormalUpdates(t *testing.T) {
	cache := newFakeBookkeeper()
	cache.strings[kvcache.KeyLastNotification] = strconv.FormatInt(time.Now().Unix(), 10)

	notifier := &failingNotifier{}
	c := newTestConsumer(cache, notifier, 30*time.Second)

	c.handle(context.Background(), updateDelivery(t, events.UpdateCreated{UpdateID: "n1", Title: "New office hours", Priority: "normal"}))
	if len(notifier.delivered) != 0 {
		t.Fatalf("normal-priority update should be throttled, delivered %d", len(notifier.delivered))
	}
	if sent, _ := cache.InSet(context.Background(), kvcache.KeyNotifiedUpdates, "n1"); sent {
		t.Error("a throttled update must stay eligible for a later event")
	}

	// high priority bypasses the throttle
	c.handle(context.Background(), updateDelivery(t, events.UpdateCreated{UpdateID: "n2", Title: "Water interruption", Priority: "high"}))
	if len(notifier.delivered) != 1 {
		t.Fatalf("high-priority update should bypass the throttle, delivered %d", len(notifier.delivered))
	}
}

func TestConsumerThrottleFailsOpen(t *testing.T) {
	cache := newFakeBookkeeper()
	cache.strings[kvcache.KeyLastNotification] = "not-a-timestamp"

	notifier := &failingNotifier{}
	c := newTestConsumer(cache, notifier, 30*time.Second)

	c.handle(context.Background(), updateDelivery(t, events.UpdateCreated{UpdateID: "n1", Title: "New office hours", Priority: "normal"}))
	if len(notifier.delivered) != 1 {
		t.Fatalf("unparseable throttle state should not block delivery, delivered %d", len(notifier.delivered))
	}
}

func TestConsumerAppointmentStatusBody(t *testing.T) {
	cache := newFakeBookkeeper()
	notifier := &failingNotifier{}
	c := newTestConsumer(cache, notifier, 0)

	ev := events.AppointmentStatusChanged{
		AppointmentID: "a1",
		UserID:        "u1",
		Status:        "Confirmed",
		Date:          "2024-06-13",
	}
	b, err := json.Marshal(ev)
	if err != nil {
		t.Fatal(err)
	}

	c.handle(context.Background(), amqp.Delivery{RoutingKey: events.KeyAppointmentStatusChanged, Body: b})

	if len(notifier.delivered) != 1 {
		t.Fatalf("delivered %d, want 1", len(notifier.delivered))
	}
	n := notifier.delivered[0]
	if n.Body != "Your appointment on 2024-06-13 is now Confirmed." {
		t.Errorf("body = %q", n.Body)
	}
	if n.Data["user_id"] != "u1" || n.Data["appointment_id"] != "a1" {
		t.Errorf("data = %v", n.Data)
	}

	// delivery stamps the throttle timestamp
	if _, ok := cache.strings[kvcache.KeyLastNotification]; !ok {
		t.Error("last-notification timestamp should be recorded after delivery")
	}
}

func TestConsumerIgnoresUnknownRoutingKey(t *testing.T) {
	cache := newFakeBookkeeper()
	notifier := &failingNotifier{}
	c := newTestConsumer(cache, notifier, 0)

	c.handle(context.Background(), amqp.Delivery{RoutingKey: "concern.created", Body: []byte(`{}`)})

	if len(notifier.delivered) != 0 {
		t.Errorf("unknown routing key should be skipped, delivered %d", len(notifier.delivered))
	}
}
