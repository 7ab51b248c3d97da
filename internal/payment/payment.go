package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

var (
	ErrInvalidAmount = errors.New("amount must be greater than zero")
	ErrProviderDown  = errors.New("payment provider unavailable")
)

// Intent is the provider's handle for a pending card payment. The client
// secret goes back to the browser, which completes the charge directly
// with the provider.
type Intent struct {
	ID           string  `json:"id"`
	ClientSecret string  `json:"clientSecret"`
	Amount       float64 `json:"amount"`
	Currency     string  `json:"currency"`
}

// Provider creates payment intents with an external processor.
type Provider interface {
	CreateIntent(ctx context.Context, amount float64, currency string) (Intent, error)
}

// HTTPProvider talks to the payment processor over HTTP.
type HTTPProvider struct {
	endpoint string
	client   *http.Client
}

func NewHTTPProvider(endpoint string) *HTTPProvider {
	return &HTTPProvider{
		endpoint: endpoint,
		client:   &http.Client{Timeout: 30 * time.Second},
	}
}

type intentRequest struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
}

func (p *HTTPProvider) CreateIntent(ctx context.Context, amount float64, currency string) (Intent, error) {
	if amount <= 0 {
		return Intent{}, ErrInvalidAmount
	}
	if currency == "" {
		currency = "usd"
	}

	body, err := json.Marshal(intentRequest{Amount: amount, Currency: currency})
	if err != nil {
		return Intent{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(body))
	if err != nil {
		return Intent{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := p.client.Do(req)
	if err != nil {
		return Intent{}, fmt.Errorf("%w: %v", ErrProviderDown, err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK && res.StatusCode != http.StatusCreated {
		return Intent{}, fmt.Errorf("%w: provider returned %d", ErrProviderDown, res.StatusCode)
	}

	var intent Intent
	if err := json.NewDecoder(res.Body).Decode(&intent); err != nil {
		return Intent{}, err
	}
	intent.Amount = amount
	intent.Currency = currency
	return intent, nil
}
