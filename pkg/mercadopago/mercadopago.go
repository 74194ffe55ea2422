package mercadopago

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

const defaultAPIBase = "https://api.mercadopago.com"

// Config holds the gateway credentials. An empty AccessToken means the
// integration is disabled and every call reports "not configured".
type Config struct {
	AccessToken string
	APIBase     string // defaults to the production API, overridable in tests
}

// Client talks to the Mercado Pago Checkout Pro REST API.
type Client struct {
	accessToken string
	apiBase     string
	httpClient  *http.Client
}

// NewClient creates a Mercado Pago client.
func NewClient(cfg Config) *Client {
	base := cfg.APIBase
	if base == "" {
		base = defaultAPIBase
	}
	return &Client{
		accessToken: cfg.AccessToken,
		apiBase:     base,
		httpClient:  &http.Client{Timeout: 15 * time.Second},
	}
}

// Configured reports whether an access token is present.
func (c *Client) Configured() bool {
	return c != nil && c.accessToken != ""
}

// PreferenceItem is a single line of a hosted-checkout session.
type PreferenceItem struct {
	Title      string  `json:"title"`
	Quantity   int     `json:"quantity"`
	UnitPrice  float64 `json:"unit_price"`
	CurrencyID string  `json:"currency_id"`
}

// BackURLs are the storefront pages the gateway redirects the payer to.
type BackURLs struct {
	Success string `json:"success"`
	Pending string `json:"pending"`
	Failure string `json:"failure"`
}

// PreferenceRequest describes a checkout session to create. ExternalReference
// carries the order ID so the webhook can find the order back.
type PreferenceRequest struct {
	OrderID         string
	PayerEmail      string
	Items           []PreferenceItem
	BackURLs        BackURLs
	NotificationURL string
}

// Preference is the created checkout session. InitPoint is the redirect URL.
type Preference struct {
	ID        string `json:"id"`
	InitPoint string `json:"init_point"`
}

type preferencePayload struct {
	Items             []PreferenceItem `json:"items"`
	Payer             payer            `json:"payer"`
	ExternalReference string           `json:"external_reference"`
	BackURLs          BackURLs         `json:"back_urls"`
	AutoReturn        string           `json:"auto_return"`
	NotificationURL   string           `json:"notification_url,omitempty"`
}

type payer struct {
	Email string `json:"email"`
}

// CreatePreference creates a checkout preference and returns its init_point.
// Any transport error or non-2xx response fails closed with a nil preference.
func (c *Client) CreatePreference(req PreferenceRequest) (*Preference, error) {
	if !c.Configured() {
		return nil, fmt.Errorf("mercadopago: access token not configured")
	}

	for i := range req.Items {
		if len(req.Items[i].Title) > 256 {
			req.Items[i].Title = req.Items[i].Title[:256]
		}
	}

	body := preferencePayload{
		Items:             req.Items,
		Payer:             payer{Email: req.PayerEmail},
		ExternalReference: req.OrderID,
		BackURLs:          req.BackURLs,
		AutoReturn:        "approved",
		NotificationURL:   req.NotificationURL,
	}

	raw, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("mercadopago: marshal preference: %w", err)
	}

	httpReq, err := http.NewRequest(http.MethodPost, c.apiBase+"/checkout/preferences", bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("mercadopago: build request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.accessToken)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("mercadopago: create preference: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		log.Printf("mercadopago: create preference failed: %d %s", resp.StatusCode, string(detail))
		return nil, fmt.Errorf("mercadopago: create preference: status %d", resp.StatusCode)
	}

	var pref Preference
	if err := json.NewDecoder(resp.Body).Decode(&pref); err != nil {
		return nil, fmt.Errorf("mercadopago: decode preference: %w", err)
	}
	if pref.InitPoint == "" {
		return nil, fmt.Errorf("mercadopago: preference response missing init_point")
	}
	return &pref, nil
}

// Payment is the state of a payment as reported by the gateway.
type Payment struct {
	ID                json.Number `json:"id"`
	Status            string      `json:"status"`
	ExternalReference string      `json:"external_reference"`
}

// GetPayment fetches a payment by ID. A transport error, non-2xx response or
// malformed body yields a nil payment ("no payment found"), never a retry.
func (c *Client) GetPayment(paymentID string) (*Payment, error) {
	if !c.Configured() {
		return nil, fmt.Errorf("mercadopago: access token not configured")
	}

	httpReq, err := http.NewRequest(http.MethodGet, c.apiBase+"/v1/payments/"+paymentID, nil)
	if err != nil {
		return nil, fmt.Errorf("mercadopago: build request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.accessToken)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("mercadopago: get payment %s: %w", paymentID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("mercadopago: get payment %s: status %d", paymentID, resp.StatusCode)
	}

	var payment Payment
	if err := json.NewDecoder(resp.Body).Decode(&payment); err != nil {
		return nil, fmt.Errorf("mercadopago: decode payment %s: %w", paymentID, err)
	}
	return &payment, nil
}
