package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sony/gobreaker"

	"stockledger/internal/domain/reports"
	"stockledger/pkg/logger"
)

// ErrCircuitOpen is returned while the breaker rejects calls.
var ErrCircuitOpen = errors.New("notification endpoint unavailable: circuit open")

// WebhookConfig configures WebhookNotifier.
type WebhookConfig struct {
	URL     string
	Timeout time.Duration

	// FailureThreshold consecutive failures open the circuit.
	FailureThreshold uint32
	// OpenTimeout is how long the circuit stays open before a probe.
	OpenTimeout time.Duration
}

// DefaultWebhookConfig returns the standard breaker settings for url.
func DefaultWebhookConfig(url string) WebhookConfig {
	return WebhookConfig{
		URL:              url,
		Timeout:          5 * time.Second,
		FailureThreshold: 5,
		OpenTimeout:      30 * time.Second,
	}
}

// WebhookNotifier POSTs JSON envelopes to a URL through a circuit breaker.
type WebhookNotifier struct {
	url      string
	client   *http.Client
	cb       *gobreaker.CircuitBreaker
	observer Observer
}

var _ reports.Notifier = (*WebhookNotifier)(nil)

// Envelope is the body of every webhook call.
type Envelope struct {
	Type   string    `json:"type"`
	SentAt time.Time `json:"sentAt"`
	Data   any       `json:"data"`
}

// NewWebhookNotifier creates a notifier; observer may be nil.
func NewWebhookNotifier(cfg WebhookConfig, observer Observer) *WebhookNotifier {
	if observer == nil {
		observer = noopObserver{}
	}
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = 5
	}

	name := "notify-webhook"
	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn(context.Background(), "circuit breaker state changed",
				"name", name,
				"from", from.String(),
				"to", to.String(),
			)
			observer.SetCircuitBreakerState(name, int(to))
		},
	}

	return &WebhookNotifier{
		url:      cfg.URL,
		client:   &http.Client{Timeout: cfg.Timeout},
		cb:       gobreaker.NewCircuitBreaker(settings),
		observer: observer,
	}
}

func (w *WebhookNotifier) NotifyLowStock(ctx context.Context, lines []reports.LowStockLine) error {
	if len(lines) == 0 {
		return nil
	}
	return w.send(ctx, TypeLowStock, lines)
}

func (w *WebhookNotifier) NotifySummary(ctx context.Context, s *reports.PeriodSummary) error {
	if s == nil {
		return nil
	}
	return w.send(ctx, TypeSummary, s)
}

// State returns the breaker state.
func (w *WebhookNotifier) State() gobreaker.State {
	return w.cb.State()
}

func (w *WebhookNotifier) send(ctx context.Context, kind string, data any) error {
	body, err := json.Marshal(Envelope{Type: kind, SentAt: time.Now().UTC(), Data: data})
	if err != nil {
		return fmt.Errorf("encode %s notification: %w", kind, err)
	}

	_, err = w.cb.Execute(func() (interface{}, error) {
		return nil, w.post(ctx, body)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		err = ErrCircuitOpen
	}
	w.observer.RecordNotification("webhook", kind, err)
	if err != nil {
		return fmt.Errorf("send %s notification: %w", kind, err)
	}
	return nil
}

func (w *WebhookNotifier) post(ctx context.Context, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 300 {
		return fmt.Errorf("webhook responded %d", resp.StatusCode)
	}
	return nil
}
