// Package model defines domain entities for the application.
package model

import "time"

// Provider identifiers for external integrations.
const (
	ProviderYouTube  = "youtube"
	ProviderCalendly = "calendly"
	ProviderStripe   = "stripe"
)

// ProviderToken is a single-slot OAuth token record for an external
// provider. At most one row per provider is active; Rotate deactivates
// the previous row and inserts the replacement in one transaction.
type ProviderToken struct {
	ID           string     `json:"id"`
	Provider     string     `json:"provider"`
	AccessToken  string     `json:"-"`
	RefreshToken string     `json:"-"`
	ExpiresAt    *time.Time `json:"expires_at,omitempty"`
	IsActive     bool       `json:"is_active"`
	CreatedAt    time.Time  `json:"created_at"`
}

// Expired reports whether the token has a known expiry in the past.
func (t *ProviderToken) Expired() bool {
	return t.ExpiresAt != nil && time.Now().After(*t.ExpiresAt)
}
