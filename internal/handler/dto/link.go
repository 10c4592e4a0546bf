// Package dto defines request and response shapes for the HTTP API.
package dto

import (
	"time"

	"github.com/vidtrack/vidtrack/internal/model"
)

// CreateLinkRequest is the request body for creating a tracked link.
type CreateLinkRequest struct {
	Slug           string `json:"slug"`
	Title          string `json:"title"`
	DestinationURL string `json:"destination_url"`
}

// LinkResponse is the API representation of a tracked link.
type LinkResponse struct {
	ID             string    `json:"id"`
	Slug           string    `json:"slug"`
	Title          string    `json:"title"`
	DestinationURL string    `json:"destination_url"`
	ShortURL       string    `json:"short_url"`
	CreatedAt      time.Time `json:"created_at"`
}

// ListLinksResponse wraps a page of links.
type ListLinksResponse struct {
	Links   []LinkResponse `json:"links"`
	Page    int            `json:"page"`
	PerPage int            `json:"per_page"`
}

// ErrorResponse is the standard error envelope.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// ToLinkResponse converts a model Link to its API representation.
func ToLinkResponse(link *model.Link, shortURL string) LinkResponse {
	return LinkResponse{
		ID:             link.ID,
		Slug:           link.Slug,
		Title:          link.Title,
		DestinationURL: link.DestinationURL,
		ShortURL:       shortURL,
		CreatedAt:      link.CreatedAt,
	}
}
