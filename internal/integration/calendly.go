package integration

import (
	"context"
	"fmt"
	"net/http"
)

// DefaultCalendlyBaseURL is the production Calendly API endpoint.
const DefaultCalendlyBaseURL = "https://api.calendly.com"

// CalendlyClient talks to the Calendly API. Bookings arrive via
// webhook; the client exists for credential checks.
type CalendlyClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

// NewCalendlyClient creates a Calendly API client.
func NewCalendlyClient(apiKey, baseURL string, client *http.Client) *CalendlyClient {
	if baseURL == "" {
		baseURL = DefaultCalendlyBaseURL
	}
	if client == nil {
		client = NewHTTPClient()
	}
	return &CalendlyClient{apiKey: apiKey, baseURL: baseURL, http: client}
}

// Ping verifies the token against the current-user endpoint.
func (c *CalendlyClient) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/users/me", nil)
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
