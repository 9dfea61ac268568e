package stripe

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

const defaultBaseURL = "https://api.stripe.com"

type Config struct {
	SecretKey string `envconfig:"STRIPE_SECRET_KEY"`
	BaseURL   string `envconfig:"STRIPE_BASE_URL"`
}

type Session struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// Client creates Stripe checkout sessions over the REST API.
type Client struct {
	secretKey string
	baseURL   string
	client    *http.Client
}

func NewClient(cfg Config) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		secretKey: cfg.SecretKey,
		baseURL:   baseURL,
		client:    &http.Client{Timeout: time.Minute},
	}
}

// CreateSession opens a one-off card checkout session for the given amount.
// The amount is converted to the smallest currency unit, as Stripe expects.
func (c *Client) CreateSession(ctx context.Context, name string, amount decimal.Decimal, successURL, cancelURL string) (Session, error) {
	form := url.Values{}
	form.Set("mode", "payment")
	form.Set("payment_method_types[0]", "card")
	form.Set("line_items[0][price_data][currency]", "usd")
	form.Set("line_items[0][price_data][product_data][name]", name)
	form.Set("line_items[0][price_data][unit_amount]", strconv.FormatInt(amount.Mul(decimal.NewFromInt(100)).IntPart(), 10))
	form.Set("line_items[0][quantity]", "1")
	form.Set("success_url", successURL)
	form.Set("cancel_url", cancelURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/v1/checkout/sessions", strings.NewReader(form.Encode()))
	if err != nil {
		return Session{}, err
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.client.Do(req)
	if err != nil {
		return Session{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return Session{}, fmt.Errorf("stripe create session failed: %s", resp.Status)
	}

	var out Session
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return Session{}, err
	}
	if out.ID == "" {
		return Session{}, errors.New("stripe: empty session id")
	}
	return out, nil
}
