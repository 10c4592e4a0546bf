package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/vidtrack/vidtrack/internal/cache"
	"github.com/vidtrack/vidtrack/internal/metrics"
	"github.com/vidtrack/vidtrack/internal/model"
	"github.com/vidtrack/vidtrack/internal/repository"
)

// LedgerStore defines the persistence operations LedgerService needs.
type LedgerStore interface {
	GetLinkBySlug(ctx context.Context, slug string) (*model.Link, error)
	GetVideoBySlug(ctx context.Context, slug string) (*model.Video, error)
	CreateVideo(ctx context.Context, video *model.Video) error
	InsertClick(ctx context.Context, click *model.Click) error
}

// LedgerService records funnel events on the redirect hot path.
type LedgerService struct {
	store   LedgerStore
	cache   *cache.Cache
	metrics metrics.Recorder
}

// NewLedgerService creates a new LedgerService.
func NewLedgerService(store LedgerStore, cache *cache.Cache, recorder metrics.Recorder) *LedgerService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &LedgerService{
		store:   store,
		cache:   cache,
		metrics: recorder,
	}
}

// ResolveRedirect resolves a slug to its link for redirect.
// This is the hot path - cache-first lookup with negative caching.
func (s *LedgerService) ResolveRedirect(ctx context.Context, slug string) (*model.Link, bool, error) {
	start := time.Now()
	defer func() {
		s.metrics.ObserveRedirectDuration(time.Since(start))
	}()

	if s.cache != nil {
		cached, err := s.cache.GetLink(ctx, slug)
		if err == nil {
			s.metrics.IncRedirectCacheHit()
			return cached.ToLink(slug), true, nil
		}

		if errors.Is(err, cache.ErrCacheMiss) {
			s.metrics.IncRedirectCacheMiss()
			if negative, _ := s.cache.IsNegativelyCached(ctx, slug); negative {
				return nil, false, ErrLinkNotFound
			}
		}
		// Redis errors fall through to the database
	}

	link, err := s.store.GetLinkBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, repository.ErrLinkNotFound) {
			if s.cache != nil {
				_ = s.cache.SetNegativeCache(ctx, slug)
			}
			return nil, false, ErrLinkNotFound
		}
		return nil, false, err
	}

	if s.cache != nil {
		_ = s.cache.SetLink(ctx, link)
	}

	return link, false, nil
}

// ClickInput carries the request attributes recorded with a click.
type ClickInput struct {
	Slug      string
	IPAddress string
	UserAgent string
	Referrer  string
}

// RecordClick appends a click for the video behind a slug. The video
// row is created lazily if stats refresh has not seen it yet.
func (s *LedgerService) RecordClick(ctx context.Context, input ClickInput) (*model.Click, error) {
	video, err := s.ensureVideo(ctx, input.Slug)
	if err != nil {
		return nil, err
	}

	click := &model.Click{
		ID:        ulid.Make().String(),
		VideoID:   video.ID,
		IPAddress: input.IPAddress,
		UserAgent: input.UserAgent,
		Referrer:  input.Referrer,
		Timestamp: time.Now().UTC(),
	}

	if err := s.store.InsertClick(ctx, click); err != nil {
		return nil, fmt.Errorf("insert click: %w", err)
	}

	s.metrics.IncClickRecorded()
	s.metrics.IncRedirectServed()

	return click, nil
}

// ensureVideo returns the video for a slug, creating it from the
// link's title when missing.
func (s *LedgerService) ensureVideo(ctx context.Context, slug string) (*model.Video, error) {
	video, err := s.store.GetVideoBySlug(ctx, slug)
	if err == nil {
		return video, nil
	}
	if !errors.Is(err, repository.ErrVideoNotFound) {
		return nil, err
	}

	title := slug
	if link, err := s.store.GetLinkBySlug(ctx, slug); err == nil {
		title = link.Title
	}

	now := time.Now().UTC()
	video = &model.Video{
		ID:        ulid.Make().String(),
		Slug:      slug,
		Title:     title,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.store.CreateVideo(ctx, video); err != nil {
		// Lost a create race; re-read the winner
		if errors.Is(err, repository.ErrSlugExists) {
			return s.store.GetVideoBySlug(ctx, slug)
		}
		return nil, fmt.Errorf("create video: %w", err)
	}

	return video, nil
}
