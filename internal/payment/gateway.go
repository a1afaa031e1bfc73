// Package payment creates payment intents with an external processor.
package payment

import (
	"context"
	"errors"
	"fmt"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
)

// DefaultCurrency is charged when none is configured.
const DefaultCurrency = "usd"

// ErrNotConfigured is returned when no processor key was provided.
var ErrNotConfigured = errors.New("payment processor not configured")

// Intent is a pending charge the client confirms with its secret.
type Intent struct {
	ID           string
	ClientSecret string
	Amount       int64
	Currency     string
}

// Gateway creates payment intents.
type Gateway interface {
	CreateIntent(ctx context.Context, amountInCents int64) (*Intent, error)
}

// StripeGateway implements Gateway with the Stripe API.
type StripeGateway struct {
	api      *client.API
	currency string
}

// StripeOption configures a StripeGateway.
type StripeOption func(*stripeConfig)

type stripeConfig struct {
	currency string
	baseURL  string
}

// WithCurrency sets the ISO currency code for new intents.
func WithCurrency(currency string) StripeOption {
	return func(c *stripeConfig) {
		if currency != "" {
			c.currency = currency
		}
	}
}

// WithBaseURL points the client at a different API host.
func WithBaseURL(url string) StripeOption {
	return func(c *stripeConfig) {
		c.baseURL = url
	}
}

// NewStripeGateway creates a gateway authenticated with the secret key.
func NewStripeGateway(secretKey string, opts ...StripeOption) *StripeGateway {
	cfg := stripeConfig{currency: DefaultCurrency}
	for _, o := range opts {
		o(&cfg)
	}

	var backends *stripe.Backends
	if cfg.baseURL != "" {
		backends = &stripe.Backends{
			API: stripe.GetBackendWithConfig(stripe.APIBackend, &stripe.BackendConfig{
				URL:               stripe.String(cfg.baseURL),
				MaxNetworkRetries: stripe.Int64(0),
				LeveledLogger:     &stripe.LeveledLogger{Level: stripe.LevelNull},
			}),
		}
	}

	api := &client.API{}
	api.Init(secretKey, backends)

	return &StripeGateway{api: api, currency: cfg.currency}
}

// CreateIntent creates a card payment intent for the amount.
func (g *StripeGateway) CreateIntent(ctx context.Context, amountInCents int64) (*Intent, error) {
	params := &stripe.PaymentIntentParams{
		Amount:             stripe.Int64(amountInCents),
		Currency:           stripe.String(g.currency),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
	}
	params.Context = ctx

	pi, err := g.api.PaymentIntents.New(params)
	if err != nil {
		return nil, fmt.Errorf("create payment intent: %w", err)
	}

	return &Intent{
		ID:           pi.ID,
		ClientSecret: pi.ClientSecret,
		Amount:       pi.Amount,
		Currency:     string(pi.Currency),
	}, nil
}

// UnconfiguredGateway fails every call with ErrNotConfigured.
type UnconfiguredGateway struct{}

// CreateIntent always fails.
func (UnconfiguredGateway) CreateIntent(context.Context, int64) (*Intent, error) {
	return nil, ErrNotConfigured
}
