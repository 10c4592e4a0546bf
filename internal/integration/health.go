package integration

import (
	"context"
	"time"

	"github.com/vidtrack/vidtrack/internal/model"
)

// Provider status values reported by the health checker.
const (
	StatusOK            = "ok"
	StatusError         = "error"
	StatusNotConfigured = "not_configured"
)

// Pinger is a provider client that can verify its credentials.
type Pinger interface {
	Ping(ctx context.Context) error
}

// ProviderHealth is one provider's credential check result.
type ProviderHealth struct {
	Provider string `json:"provider"`
	Status   string `json:"status"`
	Error    string `json:"error,omitempty"`
}

// HealthChecker probes each configured provider with a bounded timeout.
// A nil client reports not_configured instead of failing.
type HealthChecker struct {
	youtube  Pinger
	calendly Pinger
	stripe   Pinger
	timeout  time.Duration
}

// NewHealthChecker creates a HealthChecker. Nil clients are allowed.
func NewHealthChecker(youtube, calendly, stripe Pinger, timeout time.Duration) *HealthChecker {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HealthChecker{
		youtube:  youtube,
		calendly: calendly,
		stripe:   stripe,
		timeout:  timeout,
	}
}

// CheckAll probes every provider. A failing provider never fails the
// whole call; its status carries the error instead.
func (h *HealthChecker) CheckAll(ctx context.Context) []ProviderHealth {
	return []ProviderHealth{
		h.check(ctx, model.ProviderYouTube, h.youtube),
		h.check(ctx, model.ProviderCalendly, h.calendly),
		h.check(ctx, model.ProviderStripe, h.stripe),
	}
}

func (h *HealthChecker) check(ctx context.Context, provider string, client Pinger) ProviderHealth {
	if client == nil {
		return ProviderHealth{Provider: provider, Status: StatusNotConfigured}
	}

	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	if err := client.Ping(ctx); err != nil {
		return ProviderHealth{Provider: provider, Status: StatusError, Error: err.Error()}
	}
	return ProviderHealth{Provider: provider, Status: StatusOK}
}
