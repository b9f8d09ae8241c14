package alerting

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/finrecon/payment_recon_app/internal/core/domain"
	"github.com/finrecon/payment_recon_app/internal/core/ports/gateways"
)

// WebhookSink posts alerts to a configured webhook, fire-and-forget. Delivery
// never blocks the reconciliation path; failures are logged and dropped.
type WebhookSink struct {
	url    string
	http   *http.Client
	logger *slog.Logger
}

var _ gateways.AlertSink = (*WebhookSink)(nil)

// NewWebhookSink creates a webhook-backed alert sink.
func NewWebhookSink(url string, logger *slog.Logger) *WebhookSink {
	return &WebhookSink{
		url:    url,
		http:   &http.Client{Timeout: 10 * time.Second},
		logger: logger,
	}
}

type alertPayload struct {
	Severity string            `json:"severity"`
	Message  string            `json:"message"`
	Context  map[string]string `json:"context,omitempty"`
	RaisedAt time.Time         `json:"raised_at"`
}

// Raise delivers the alert in the background.
func (s *WebhookSink) Raise(severity domain.Severity, message string, alertContext map[string]string) {
	payload := alertPayload{
		Severity: string(severity),
		Message:  message,
		Context:  alertContext,
		RaisedAt: time.Now().UTC(),
	}
	go func() {
		body, err := json.Marshal(payload)
		if err != nil {
			s.logger.Error("Failed to encode alert payload", slog.String("error", err.Error()))
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
		if err != nil {
			s.logger.Error("Failed to build alert request", slog.String("error", err.Error()))
			return
		}
		req.Header.Set("Content-Type", "application/json")
		resp, err := s.http.Do(req)
		if err != nil {
			s.logger.Error("Failed to deliver alert", slog.String("error", err.Error()))
			return
		}
		defer resp.Body.Close()
		if resp.StatusCode >= 300 {
			s.logger.Error("Alert webhook rejected delivery",
				slog.Int("status", resp.StatusCode),
				slog.String("message", message))
		}
	}()
}

// LogSink writes alerts to the structured log. Used in development and as a
// fallback when no webhook is configured.
type LogSink struct {
	logger *slog.Logger
}

var _ gateways.AlertSink = (*LogSink)(nil)

// NewLogSink creates a log-backed alert sink.
func NewLogSink(logger *slog.Logger) *LogSink {
	return &LogSink{logger: logger}
}

// Raise logs the alert at a level matching its severity.
func (s *LogSink) Raise(severity domain.Severity, message string, alertContext map[string]string) {
	args := make([]any, 0, len(alertContext)+1)
	args = append(args, slog.String("severity", string(severity)))
	for k, v := range alertContext {
		args = append(args, slog.String(k, v))
	}
	switch severity {
	case domain.SeverityCritical, domain.SeverityHigh:
		s.logger.Error("ALERT: "+message, args...)
	default:
		s.logger.Warn("ALERT: "+message, args...)
	}
}
