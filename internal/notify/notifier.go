package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// Notification is the title/body/data payload handed to the external push
// delivery service.
type Notification struct {
	Title string            `json:"title"`
	Body  string            `json:"body"`
	Data  map[string]string `json:"data,omitempty"`
}

type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

// ConsoleNotifier logs instead of delivering. Used for the local env.
type ConsoleNotifier struct {
	log *slog.Logger
}

func NewConsole(log *slog.Logger) *ConsoleNotifier {
	return &ConsoleNotifier{log: log}
}

func (c *ConsoleNotifier) Notify(_ context.Context, n Notification) error {
	c.log.Info("notification",
		slog.String("title", n.Title),
		slog.String("body", n.Body),
		slog.Any("data", n.Data),
	)
	return nil
}

// PushGateway delivers through the external push service's HTTP endpoint.
type PushGateway struct {
	endpoint string
	client   *http.Client
}

func NewPushGateway(endpoint string) *PushGateway {
	return &PushGateway{
		endpoint: endpoint,
		client:   &http.Client{Timeout: 10 * time.Second},
	}
}

func (p *PushGateway) Notify(ctx context.Context, n Notification) error {
	const op = "notify.PushGateway.Notify"

	b, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(b))
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("%s: push gateway returned %d", op, resp.StatusCode)
	}

	return nil
}
