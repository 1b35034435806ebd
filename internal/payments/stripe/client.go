// Package stripe speaks the Stripe Checkout Sessions API over HTTP.
//
// Only the two calls the payment flow needs are implemented: creating a
// session and retrieving its outcome. The request body is form-encoded and
// authenticated with the secret key as a bearer token.
package stripe

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
)

// Session is the subset of a checkout session the service consumes.
type Session struct {
	ID            string            `json:"id"`
	URL           string            `json:"url"`
	PaymentStatus string            `json:"payment_status"` // "paid" | "unpaid" | "no_payment_required"
	AmountTotal   int64             `json:"amount_total"`   // minor units
	CustomerEmail string            `json:"customer_email"`
	Metadata      map[string]string `json:"metadata"`
}

// Paid reports whether the processor confirmed the session as paid.
func (s *Session) Paid() bool { return s.PaymentStatus == "paid" }

// CreateParams describes the checkout session to open.
type CreateParams struct {
	CustomerEmail string
	ProductName   string
	UnitAmount    int64 // minor units per item
	Quantity      int64
	SuccessURL    string
	CancelURL     string
	Metadata      map[string]string
}

// Client calls the Stripe API.
type Client struct {
	apiBase string
	secret  string
	http    *http.Client
}

// New builds a client for the given API base and secret key.
func New(apiBase, secret string) *Client {
	return &Client{
		apiBase: strings.TrimRight(apiBase, "/"),
		secret:  secret,
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

// CreateSession opens a checkout session and returns it with the redirect URL.
func (c *Client) CreateSession(ctx context.Context, p CreateParams) (*Session, error) {
	if p.Quantity < 1 {
		p.Quantity = 1
	}

	form := url.Values{}
	form.Set("mode", "payment")
	form.Set("payment_method_types[]", "card")
	form.Set("customer_email", p.CustomerEmail)
	form.Set("success_url", p.SuccessURL)
	form.Set("cancel_url", p.CancelURL)
	form.Set("line_items[0][price_data][currency]", "usd")
	form.Set("line_items[0][price_data][unit_amount]", strconv.FormatInt(p.UnitAmount, 10))
	form.Set("line_items[0][price_data][product_data][name]", p.ProductName)
	form.Set("line_items[0][quantity]", strconv.FormatInt(p.Quantity, 10))
	for k, v := range p.Metadata {
		form.Set(fmt.Sprintf("metadata[%s]", k), v)
	}

	return c.do(ctx, http.MethodPost, "/v1/checkout/sessions", strings.NewReader(form.Encode()))
}

// GetSession retrieves the current state of a checkout session.
func (c *Client) GetSession(ctx context.Context, id string) (*Session, error) {
	return c.do(ctx, http.MethodGet, "/v1/checkout/sessions/"+url.PathEscape(id), nil)
}

type apiError struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader) (*Session, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.apiBase+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.secret)
	if body != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("stripe: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("stripe: read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr apiError
		if json.Unmarshal(raw, &apiErr) == nil && apiErr.Error.Message != "" {
			return nil, fmt.Errorf("stripe: %s (%s)", apiErr.Error.Message, apiErr.Error.Type)
		}
		return nil, fmt.Errorf("stripe: unexpected status %d", resp.StatusCode)
	}

	var session Session
	if err := json.Unmarshal(raw, &session); err != nil {
		return nil, fmt.Errorf("stripe: decode session: %w", err)
	}
	if session.ID == "" {
		return nil, fmt.Errorf("stripe: response missing session id")
	}
	return &session, nil
}
