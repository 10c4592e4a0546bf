package integration

import (
	"context"
	"fmt"
	"net/http"
)

// DefaultStripeBaseURL is the production Stripe API endpoint.
const DefaultStripeBaseURL = "https://api.stripe.com"

// StripeClient talks to the Stripe API. Sales arrive via webhook;
// the client exists for credential checks.
type StripeClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

// NewStripeClient creates a Stripe API client.
func NewStripeClient(apiKey, baseURL string, client *http.Client) *StripeClient {
	if baseURL == "" {
		baseURL = DefaultStripeBaseURL
	}
	if client == nil {
		client = NewHTTPClient()
	}
	return &StripeClient{apiKey: apiKey, baseURL: baseURL, http: client}
}

// Ping verifies the secret key against the balance endpoint.
func (c *StripeClient) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/balance", nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d", ErrProviderUnavailable, resp.StatusCode)
	}
	return nil
}
