package middleware

import (
	"errors"
	"regexp"
	"strings"
)

// Validation limits.
const (
	// MaxSlugLength is the maximum length for a tracking slug.
	MaxSlugLength = 64

	// MinSlugLength is the minimum length for a tracking slug.
	MinSlugLength = 2

	// MaxDestinationURLLength is the maximum length for destination URLs.
	MaxDestinationURLLength = 2048

	// MaxTitleLength is the maximum length for a link or video title.
	MaxTitleLength = 256
)

// Validation errors.
var (
	ErrSlugTooLong        = errors.New("slug exceeds maximum length")
	ErrSlugTooShort       = errors.New("slug is too short")
	ErrSlugInvalid        = errors.New("slug contains invalid characters")
	ErrSlugReserved       = errors.New("slug is reserved")
	ErrTitleTooLong       = errors.New("title exceeds maximum length")
	ErrDestinationTooLong = errors.New("destination URL exceeds maximum length")
	ErrDestinationInvalid = errors.New("destination URL is invalid")
	ErrDestinationUnsafe  = errors.New("destination URL uses unsafe scheme")
)

// ReservedSlugs contains slugs that cannot be used for tracking links.
// These collide with system routes and common paths.
var ReservedSlugs = map[string]bool{
	// System routes
	"api":      true,
	"go":       true,
	"status":   true,
	"webhooks": true,
	"healthz":  true,
	"readyz":   true,
	"metrics":  true,
	"static":   true,
	"assets":   true,

	// Common abuse targets
	"login":    true,
	"logout":   true,
	"auth":     true,
	"oauth":    true,
	"callback": true,
	"admin":    true,

	// Common file paths
	"robots":     true,
	"sitemap":    true,
	"favicon":    true,
	"well-known": true,
}

// validSlugPattern matches valid slug characters.
// Allowed: a-z, A-Z, 0-9, hyphen, underscore
var validSlugPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// ValidateSlug validates a tracking slug.
func ValidateSlug(slug string) error {
	if len(slug) > MaxSlugLength {
		return ErrSlugTooLong
	}

	if len(slug) < MinSlugLength {
		return ErrSlugTooShort
	}

	if !validSlugPattern.MatchString(slug) {
		return ErrSlugInvalid
	}

	// Reserved slugs are checked case-insensitively
	if ReservedSlugs[strings.ToLower(slug)] {
		return ErrSlugReserved
	}

	return nil
}

// ValidateTitle validates a link or video title.
func ValidateTitle(title string) error {
	if len(title) > MaxTitleLength {
		return ErrTitleTooLong
	}
	return nil
}

// ValidateDestinationURL validates a destination URL for link creation.
func ValidateDestinationURL(url string) error {
	if len(url) > MaxDestinationURLLength {
		return ErrDestinationTooLong
	}

	lowerURL := strings.ToLower(url)
	if !strings.HasPrefix(lowerURL, "http://") && !strings.HasPrefix(lowerURL, "https://") {
		return ErrDestinationInvalid
	}

	// Block dangerous schemes hidden via URL encoding tricks
	forbiddenSchemes := []string{"javascript:", "data:", "vbscript:", "file:"}
	for _, scheme := range forbiddenSchemes {
		if strings.Contains(lowerURL, scheme) {
			return ErrDestinationUnsafe
		}
	}

	return nil
}
