// Package model defines domain entities for the application.
package model

import "time"

// Link represents a tracked campaign link. The slug is the only
// external identifier used for redirection.
type Link struct {
	ID             string    `json:"id"`
	Slug           string    `json:"slug"`
	Title          string    `json:"title"`
	DestinationURL string    `json:"destination_url"`
	CreatedAt      time.Time `json:"created_at"`
}

// CachedLink represents link data stored in Redis for the redirect
// hot path. Uses string types for Redis hash compatibility.
type CachedLink struct {
	Destination string `redis:"destination"`
	Title       string `redis:"title"`
}

// ToLink converts CachedLink to the Link domain model.
func (c *CachedLink) ToLink(slug string) *Link {
	return &Link{
		Slug:           slug,
		Title:          c.Title,
		DestinationURL: c.Destination,
	}
}

// ToCachedLink converts a Link to its cache representation.
func (l *Link) ToCachedLink() *CachedLink {
	return &CachedLink{
		Destination: l.DestinationURL,
		Title:       l.Title,
	}
}
