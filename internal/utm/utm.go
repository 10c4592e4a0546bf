// Package utm provides pure helpers for tagging and reading UTM query
// parameters on destination URLs.
package utm

import (
	"fmt"
	"net/url"
)

// Params are the recognized UTM query keys, in canonical order.
var Params = []string{"utm_source", "utm_medium", "utm_campaign", "utm_content", "utm_term"}

// Keys for individual parameters.
const (
	KeySource   = "utm_source"
	KeyMedium   = "utm_medium"
	KeyCampaign = "utm_campaign"
	KeyContent  = "utm_content"
	KeyTerm     = "utm_term"
)

// DefaultParams returns the standard tag set for a video campaign.
// The campaign is the video slug, which is what the scheduling webhook
// later joins on.
func DefaultParams(slug string) map[string]string {
	return map[string]string{
		KeySource:   "youtube",
		KeyMedium:   "video",
		KeyCampaign: slug,
		KeyContent:  "description",
	}
}

// Inject merges params into the URL's query string, overwriting any
// existing key of the same name. Non-UTM parameters already on the URL
// are preserved, as is the fragment.
func Inject(rawURL string, params map[string]string) (string, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parse url: %w", err)
	}

	query := parsed.Query()
	for key, value := range params {
		query.Set(key, value)
	}
	parsed.RawQuery = query.Encode()

	return parsed.String(), nil
}

// Extract returns the recognized UTM parameters present in the URL's
// query string. Absent keys are omitted, not null-filled.
func Extract(rawURL string) (map[string]string, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse url: %w", err)
	}

	query := parsed.Query()
	found := make(map[string]string)
	for _, key := range Params {
		if query.Has(key) {
			found[key] = query.Get(key)
		}
	}

	return found, nil
}
