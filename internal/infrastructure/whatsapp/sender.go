// Package whatsapp delivers customer messages for restaurants that have the
// WhatsApp integration enabled.
package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/restaurant/backend/internal/application/notification"
	"github.com/restaurant/backend/internal/domain/restaurant"
	"go.uber.org/zap"
)

const defaultTimeout = 10 * time.Second

// maxErrorBody caps how much of a failed response is kept in the error
const maxErrorBody = 512

var (
	_ notification.Sender = (*LogSender)(nil)
	_ notification.Sender = (*WebhookSender)(nil)
)

// LogSender writes messages to the log instead of sending them
type LogSender struct {
	logger *zap.Logger
}

// NewLogSender creates a new LogSender
func NewLogSender(logger *zap.Logger) *LogSender {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogSender{logger: logger}
}

// Send logs the message
func (s *LogSender) Send(_ context.Context, settings *restaurant.WhatsAppSettings, to, body string) error {
	s.logger.Info("WhatsApp message",
		zap.String("restaurant_id", settings.RestaurantID.String()),
		zap.String("from", settings.PhoneNumber),
		zap.String("to", to),
		zap.String("body", body))
	return nil
}

// webhookPayload is posted to the restaurant's webhook URL
type webhookPayload struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Message string `json:"message"`
}

// WebhookSender posts messages to the webhook URL configured in the
// restaurant's settings. Restaurants without a webhook fall back to the log.
type WebhookSender struct {
	httpClient *http.Client
	fallback   *LogSender
	logger     *zap.Logger
}

// NewWebhookSender creates a new WebhookSender. A nil client gets a 10s timeout.
func NewWebhookSender(client *http.Client, logger *zap.Logger) *WebhookSender {
	if logger == nil {
		logger = zap.NewNop()
	}
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}
	return &WebhookSender{
		httpClient: client,
		fallback:   NewLogSender(logger),
		logger:     logger,
	}
}

// Send posts the message as JSON with the settings' API token as bearer
func (s *WebhookSender) Send(ctx context.Context, settings *restaurant.WhatsAppSettings, to, body string) error {
	if settings.WebhookURL == "" {
		return s.fallback.Send(ctx, settings, to, body)
	}

	payload, err := json.Marshal(webhookPayload{
		From:    settings.PhoneNumber,
		To:      to,
		Message: body,
	})
	if err != nil {
		return fmt.Errorf("marshal webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, settings.WebhookURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if settings.APIToken != "" {
		req.Header.Set("Authorization", "Bearer "+settings.APIToken)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("post webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return fmt.Errorf("webhook returned %d: %s", resp.StatusCode, bytes.TrimSpace(detail))
	}
	_, _ = io.Copy(io.Discard, resp.Body)

	s.logger.Debug("WhatsApp webhook delivered",
		zap.String("restaurant_id", settings.RestaurantID.String()),
		zap.Int("status", resp.StatusCode))
	return nil
}
