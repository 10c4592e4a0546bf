// Package service provides business logic for the application.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/vidtrack/vidtrack/internal/metrics"
	"github.com/vidtrack/vidtrack/internal/middleware"
	"github.com/vidtrack/vidtrack/internal/model"
	"github.com/vidtrack/vidtrack/internal/repository"
)

// Service errors.
var (
	ErrInvalidSlug        = errors.New("invalid slug")
	ErrInvalidDestination = errors.New("invalid destination URL")
	ErrInvalidTitle       = errors.New("invalid title")
	ErrSlugExists         = errors.New("slug already exists")
	ErrLinkNotFound       = errors.New("link not found")
)

// LinkStore defines the persistence operations LinkService needs.
type LinkStore interface {
	CreateLink(ctx context.Context, link *model.Link) error
	GetLinkBySlug(ctx context.Context, slug string) (*model.Link, error)
	ListLinks(ctx context.Context, offset, limit int) ([]*model.Link, error)
	CreateVideo(ctx context.Context, video *model.Video) error
	GetVideoBySlug(ctx context.Context, slug string) (*model.Video, error)
}

// LinkService handles tracking link management.
type LinkService struct {
	store   LinkStore
	baseURL string
	metrics metrics.Recorder
}

// NewLinkService creates a new LinkService.
func NewLinkService(store LinkStore, baseURL string, recorder metrics.Recorder) *LinkService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &LinkService{
		store:   store,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		metrics: recorder,
	}
}

// CreateLinkInput defines input for creating a tracking link.
type CreateLinkInput struct {
	Slug           string
	Title          string
	DestinationURL string
}

// CreateLink creates a new tracking link and the companion video row
// the funnel attributes clicks to.
func (s *LinkService) CreateLink(ctx context.Context, input CreateLinkInput) (*model.Link, error) {
	if err := middleware.ValidateSlug(input.Slug); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidSlug, err)
	}
	if err := middleware.ValidateTitle(input.Title); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidTitle, err)
	}
	if err := middleware.ValidateDestinationURL(input.DestinationURL); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidDestination, err)
	}

	now := time.Now().UTC()
	link := &model.Link{
		ID:             ulid.Make().String(),
		Slug:           input.Slug,
		Title:          input.Title,
		DestinationURL: input.DestinationURL,
		CreatedAt:      now,
	}

	if err := s.store.CreateLink(ctx, link); err != nil {
		if errors.Is(err, repository.ErrSlugExists) {
			return nil, ErrSlugExists
		}
		return nil, fmt.Errorf("create link: %w", err)
	}

	// The video row carries platform stats for the dashboard. Created
	// eagerly here so stats refresh picks it up before the first click.
	if _, err := s.store.GetVideoBySlug(ctx, input.Slug); errors.Is(err, repository.ErrVideoNotFound) {
		video := &model.Video{
			ID:        ulid.Make().String(),
			Slug:      input.Slug,
			Title:     input.Title,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := s.store.CreateVideo(ctx, video); err != nil && !errors.Is(err, repository.ErrSlugExists) {
			return nil, fmt.Errorf("create companion video: %w", err)
		}
	}

	s.metrics.IncLinkCreated()

	return link, nil
}

// GetLink retrieves a link by slug.
func (s *LinkService) GetLink(ctx context.Context, slug string) (*model.Link, error) {
	link, err := s.store.GetLinkBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, repository.ErrLinkNotFound) {
			return nil, ErrLinkNotFound
		}
		return nil, err
	}
	return link, nil
}

// ListLinksInput defines input for listing links.
type ListLinksInput struct {
	Page    int
	PerPage int
}

// ListLinks retrieves a page of links, newest first.
func (s *LinkService) ListLinks(ctx context.Context, input ListLinksInput) ([]*model.Link, error) {
	if input.PerPage <= 0 || input.PerPage > 100 {
		input.PerPage = 20
	}
	if input.Page < 1 {
		input.Page = 1
	}

	offset := (input.Page - 1) * input.PerPage
	return s.store.ListLinks(ctx, offset, input.PerPage)
}

// ShortURL returns the public tracking URL for a slug.
func (s *LinkService) ShortURL(slug string) string {
	return s.baseURL + "/go/" + slug
}
