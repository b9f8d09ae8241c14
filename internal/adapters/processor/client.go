package processor

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/finrecon/payment_recon_app/internal/apperrors"
	"github.com/finrecon/payment_recon_app/internal/core/domain"
	"github.com/finrecon/payment_recon_app/internal/core/ports/gateways"
)

// Client is the HTTP adapter for the external payment processor. It is
// read-only: the engine never mutates processor state.
type Client struct {
	baseURL   string
	apiKey    string
	apiKeyHdr string
	http      *http.Client
	limiter   <-chan time.Time
}

var _ gateways.PaymentProcessor = (*Client)(nil)

// Config for the processor client.
type Config struct {
	BaseURL         string
	APIKey          string
	APIKeyHeader    string // defaults to X-API-Key
	RateLimitPerMin int    // defaults to 60
	Timeout         time.Duration
}

// NewClient creates a processor client with a request rate limiter so bulk
// fetches respect the processor's limits.
func NewClient(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, fmt.Errorf("%w: processor base URL is empty", apperrors.ErrValidation)
	}
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("%w: processor api key is empty", apperrors.ErrValidation)
	}
	if cfg.APIKeyHeader == "" {
		cfg.APIKeyHeader = "X-API-Key"
	}
	if cfg.RateLimitPerMin <= 0 {
		cfg.RateLimitPerMin = 60
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &Client{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:    cfg.APIKey,
		apiKeyHdr: cfg.APIKeyHeader,
		http:      &http.Client{Timeout: cfg.Timeout},
		limiter:   time.Tick(time.Minute / time.Duration(cfg.RateLimitPerMin)),
	}, nil
}

// eventPayload is the processor's wire representation of one raw event. An
// event is either an intent-level record or a charge linked to an intent.
type eventPayload struct {
	ID         string            `json:"id"`
	Object     string            `json:"object"` // "payment_intent" or "charge"
	Amount     int64             `json:"amount"` // minor units
	Currency   string            `json:"currency"`
	Status     string            `json:"status"`
	Created    int64             `json:"created"` // unix seconds
	IntentID   string            `json:"payment_intent,omitempty"`
	CustomerID string            `json:"customer,omitempty"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

type listResponse struct {
	Data       []eventPayload `json:"data"`
	HasMore    bool           `json:"has_more"`
	NextCursor string         `json:"next_cursor"`
}

// ListPaymentEvents pages through the window [start, end) to completion and
// collapses multi-representation events into one logical record per economic
// event, preferring the intent-level abstraction over its charges. A failure
// on any page fails the whole fetch; a partial list is never returned.
func (c *Client) ListPaymentEvents(ctx context.Context, start, end time.Time) ([]domain.ExternalTransaction, error) {
	var raw []eventPayload
	cursor := ""
	for {
		params := url.Values{}
		params.Set("created_gte", strconv.FormatInt(start.Unix(), 10))
		params.Set("created_lt", strconv.FormatInt(end.Unix(), 10))
		params.Set("limit", "100")
		if cursor != "" {
			params.Set("cursor", cursor)
		}

		var page listResponse
		if err := c.get(ctx, "/v1/payment_events", params, &page); err != nil {
			return nil, fmt.Errorf("listing payment events: %w", err)
		}
		raw = append(raw, page.Data...)
		if !page.HasMore || page.NextCursor == "" {
			break
		}
		cursor = page.NextCursor
	}
	return collapseEvents(raw), nil
}

// GetPaymentEvent looks up one event by reference. Returns ErrNotFound when
// the processor has no trace of it.
func (c *Client) GetPaymentEvent(ctx context.Context, reference string) (*domain.ExternalTransaction, error) {
	var payload eventPayload
	if err := c.get(ctx, "/v1/payment_events/"+url.PathEscape(reference), nil, &payload); err != nil {
		return nil, err
	}
	tx := toExternalTransaction(payload)
	return &tx, nil
}

// Ping checks processor reachability for the health probe.
func (c *Client) Ping(ctx context.Context) error {
	var out struct {
		Status string `json:"status"`
	}
	return c.get(ctx, "/v1/ping", nil, &out)
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	<-c.limiter
	endpoint := c.baseURL + path
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set(c.apiKeyHdr, c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return apperrors.ErrNotFound
	case http.StatusTooManyRequests:
		return apperrors.ErrRateLimited
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("processor returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// collapseEvents folds charges into their parent intents so each economic
// event has exactly one logical record. A charge with no fetched intent still
// surfaces on its own, carrying its intent reference.
func collapseEvents(raw []eventPayload) []domain.ExternalTransaction {
	intents := make(map[string]bool, len(raw))
	for _, ev := range raw {
		if ev.Object == "payment_intent" {
			intents[ev.ID] = true
		}
	}

	events := make([]domain.ExternalTransaction, 0, len(raw))
	for _, ev := range raw {
		if ev.Object != "payment_intent" && ev.IntentID != "" && intents[ev.IntentID] {
			continue // represented by its intent
		}
		events = append(events, toExternalTransaction(ev))
	}
	return events
}

func toExternalTransaction(ev eventPayload) domain.ExternalTransaction {
	tx := domain.ExternalTransaction{
		ExternalID:   ev.ID,
		AmountMinor:  ev.Amount,
		CurrencyCode: strings.ToUpper(ev.Currency),
		Status:       ev.Status,
		CreatedAt:    time.Unix(ev.Created, 0).UTC(),
		Metadata:     ev.Metadata,
	}
	if ev.IntentID != "" {
		intentID := ev.IntentID
		tx.IntentID = &intentID
	}
	if ev.CustomerID != "" {
		customerID := ev.CustomerID
		tx.CustomerID = &customerID
	}
	return tx
}
