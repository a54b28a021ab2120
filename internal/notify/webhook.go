package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/maauso/ffmpeg-service/internal/supabase"
)

// Static errors for webhook delivery.
var (
	// ErrNoDestination is returned when neither a URL nor a default is available.
	ErrNoDestination = errors.New("notify: no webhook destination")
	// ErrDeliveryFailed is returned when the webhook answers with a non-2xx status.
	ErrDeliveryFailed = errors.New("notify: delivery failed")
)

// userAgent identifies the service to webhook receivers.
const userAgent = "FFmpeg-Service/1.0"

// DefaultFunction is the edge function notified when no URL is given.
const DefaultFunction = "ffmpeg-webhook"

// Webhook posts notifications as JSON. It makes exactly one attempt per call.
type Webhook struct {
	httpClient *http.Client
	supabase   *supabase.Client
	defaultURL string
	logger     *slog.Logger
}

// WebhookOption is a function that configures a Webhook.
type WebhookOption func(*Webhook)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) WebhookOption {
	return func(w *Webhook) {
		w.httpClient = c
	}
}

// WithSupabase enables edge-function authentication and makes the project's
// ffmpeg-webhook function the default destination.
func WithSupabase(c *supabase.Client) WebhookOption {
	return func(w *Webhook) {
		w.supabase = c
		if w.defaultURL == "" {
			w.defaultURL = c.FunctionURL(DefaultFunction)
		}
	}
}

// NewWebhook creates a Webhook. The default timeout is 30 seconds.
func NewWebhook(logger *slog.Logger, opts ...WebhookOption) *Webhook {
	if logger == nil {
		logger = slog.Default()
	}
	w := &Webhook{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     logger,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Send posts n to url, or to the default destination when url is empty.
// Credentials are attached only for edge functions of the configured project.
func (w *Webhook) Send(ctx context.Context, url string, n Notification) error {
	if url == "" {
		url = w.defaultURL
	}
	if url == "" {
		return ErrNoDestination
	}

	body, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("notify: marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("notify: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)
	if w.supabase != nil && w.supabase.IsFunctionURL(url) {
		w.supabase.AuthorizeFunction(req)
	}

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("notify: request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w with status %d: %s", ErrDeliveryFailed, resp.StatusCode, string(respBody))
	}

	w.logger.Info("webhook delivered",
		slog.String("processing_id", n.ProcessingID),
		slog.String("status", string(n.Status)),
		slog.Int("http_status", resp.StatusCode),
	)
	return nil
}
