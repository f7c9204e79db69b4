package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"tradefy/internal/money"
)

const maxErrorBody = 4 << 10

// Moneroo is a REST client for the Moneroo API.
type Moneroo struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewMoneroo(baseURL, apiKey string, timeout time.Duration) *Moneroo {
	return &Moneroo{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  &http.Client{Timeout: timeout},
	}
}

func (m *Moneroo) Name() string {
	return "moneroo"
}

type monerooCustomer struct {
	Email string `json:"email,omitempty"`
}

type monerooPaymentRequest struct {
	Amount      money.Amount      `json:"amount"`
	Currency    string            `json:"currency"`
	Description string            `json:"description,omitempty"`
	Customer    monerooCustomer   `json:"customer"`
	ReturnURL   string            `json:"return_url,omitempty"`
	WebhookURL  string            `json:"webhook_url"`
	Metadata    map[string]string `json:"metadata"`
}

type monerooPayoutRequest struct {
	Amount      money.Amount      `json:"amount"`
	Currency    string            `json:"currency"`
	Description string            `json:"description,omitempty"`
	Recipient   map[string]string `json:"recipient"`
	Metadata    map[string]string `json:"metadata"`
}

type monerooResponse struct {
	Message string `json:"message"`
	Data    struct {
		ID          string `json:"id"`
		PaymentID   string `json:"payment_id"`
		CheckoutURL string `json:"checkout_url"`
		PaymentURL  string `json:"payment_url"`
		Status      string `json:"status"`
	} `json:"data"`
}

func (m *Moneroo) CreateSession(ctx context.Context, req SessionRequest) (*Session, error) {
	body := monerooPaymentRequest{
		Amount:      req.Amount,
		Currency:    req.Currency,
		Description: req.ProductName,
		Customer:    monerooCustomer{Email: req.BuyerContact},
		ReturnURL:   req.ReturnURL,
		WebhookURL:  req.CallbackURL,
		Metadata: map[string]string{
			"product_id": strconv.FormatUint(uint64(req.ProductID), 10),
			"reference":  req.Reference,
		},
	}

	var resp monerooResponse
	if err := m.post(ctx, "create session", "/payments/initialize", req.Reference, body, &resp); err != nil {
		return nil, err
	}

	id := firstNonEmpty(resp.Data.ID, resp.Data.PaymentID)
	url := firstNonEmpty(resp.Data.CheckoutURL, resp.Data.PaymentURL)
	if id == "" || url == "" {
		return nil, &Error{Provider: m.Name(), Op: "create session", Err: fmt.Errorf("response missing payment id or checkout url")}
	}
	return &Session{ID: id, URL: url}, nil
}

func (m *Moneroo) CreatePayout(ctx context.Context, req PayoutRequest) (*Payout, error) {
	body := monerooPayoutRequest{
		Amount:      req.Amount,
		Currency:    req.Currency,
		Description: "Payout " + req.Reference,
		Recipient:   map[string]string{"id": req.Recipient},
		Metadata:    map[string]string{"reference": req.Reference},
	}

	var resp monerooResponse
	if err := m.post(ctx, "create payout", "/payouts/initialize", "payout-"+req.Reference, body, &resp); err != nil {
		return nil, err
	}
	if resp.Data.ID == "" {
		return nil, &Error{Provider: m.Name(), Op: "create payout", Err: fmt.Errorf("response missing payout id")}
	}
	return &Payout{ID: resp.Data.ID, Status: resp.Data.Status}, nil
}

func (m *Moneroo) post(ctx context.Context, op, path, idempotencyKey string, in, out interface{}) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return &Error{Provider: m.Name(), Op: op, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return &Error{Provider: m.Name(), Op: op, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+m.apiKey)
	if idempotencyKey != "" {
		req.Header.Set("Idempotency-Key", idempotencyKey)
	}

	resp, err := m.client.Do(req)
	if err != nil {
		return &Error{Provider: m.Name(), Op: op, Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody*16))
	if err != nil {
		return &Error{Provider: m.Name(), Op: op, StatusCode: resp.StatusCode, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b := string(respBody)
		if len(b) > maxErrorBody {
			b = b[:maxErrorBody]
		}
		return &Error{Provider: m.Name(), Op: op, StatusCode: resp.StatusCode, Body: b}
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return &Error{Provider: m.Name(), Op: op, StatusCode: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
