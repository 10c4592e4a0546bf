package testutil

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/vidtrack/vidtrack/internal/model"
	"github.com/vidtrack/vidtrack/internal/repository"
)

// MemStore is an in-memory stand-in for the Postgres repository.
// It returns the repository's sentinel errors so services behave the
// same as against a real database.
type MemStore struct {
	mu       sync.RWMutex
	links    map[string]*model.Link  // by slug
	videos   map[string]*model.Video // by ID
	clicks   map[string]*model.Click
	bookings map[string]*model.Booking
	sales    map[string]*model.Sale
}

// NewMemStore creates an empty MemStore.
func NewMemStore() *MemStore {
	return &MemStore{
		links:    make(map[string]*model.Link),
		videos:   make(map[string]*model.Video),
		clicks:   make(map[string]*model.Click),
		bookings: make(map[string]*model.Booking),
		sales:    make(map[string]*model.Sale),
	}
}

// CreateLink stores a link keyed by slug.
func (m *MemStore) CreateLink(ctx context.Context, link *model.Link) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.links[link.Slug]; ok {
		return repository.ErrSlugExists
	}
	cp := *link
	m.links[link.Slug] = &cp
	return nil
}

// GetLinkBySlug returns the link for a slug.
func (m *MemStore) GetLinkBySlug(ctx context.Context, slug string) (*model.Link, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	link, ok := m.links[slug]
	if !ok {
		return nil, repository.ErrLinkNotFound
	}
	cp := *link
	return &cp, nil
}

// ListLinks returns links newest first.
func (m *MemStore) ListLinks(ctx context.Context, offset, limit int) ([]*model.Link, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	all := make([]*model.Link, 0, len(m.links))
	for _, link := range m.links {
		cp := *link
		all = append(all, &cp)
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})

	if offset >= len(all) {
		return []*model.Link{}, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

// SlugExists reports whether a link slug is taken.
func (m *MemStore) SlugExists(ctx context.Context, slug string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.links[slug]
	return ok, nil
}

// CreateVideo stores a video.
func (m *MemStore) CreateVideo(ctx context.Context, video *model.Video) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, v := range m.videos {
		if v.Slug == video.Slug {
			return repository.ErrSlugExists
		}
	}
	cp := *video
	m.videos[video.ID] = &cp
	return nil
}

// GetVideoByID returns a video by ID.
func (m *MemStore) GetVideoByID(ctx context.Context, id string) (*model.Video, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	video, ok := m.videos[id]
	if !ok {
		return nil, repository.ErrVideoNotFound
	}
	cp := *video
	return &cp, nil
}

// GetVideoBySlug returns a video by slug.
func (m *MemStore) GetVideoBySlug(ctx context.Context, slug string) (*model.Video, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, video := range m.videos {
		if video.Slug == slug {
			cp := *video
			return &cp, nil
		}
	}
	return nil, repository.ErrVideoNotFound
}

// ListVideos returns all videos sorted by slug.
func (m *MemStore) ListVideos(ctx context.Context) ([]*model.Video, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	videos, _ := m.sortedVideosLocked()
	all := make([]*model.Video, 0, len(videos))
	for _, video := range videos {
		cp := *video
		all = append(all, &cp)
	}
	return all, nil
}

// UpdateVideoStats overwrites a video's platform stats.
func (m *MemStore) UpdateVideoStats(ctx context.Context, id string, stats model.VideoStats) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	video, ok := m.videos[id]
	if !ok {
		return repository.ErrVideoNotFound
	}
	video.Views = stats.Views
	video.Likes = stats.Likes
	video.Comments = stats.Comments
	video.AvgWatchTime = stats.AvgWatchTime
	video.UpdatedAt = time.Now().UTC()
	return nil
}

// InsertClick stores a click.
func (m *MemStore) InsertClick(ctx context.Context, click *model.Click) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *click
	m.clicks[click.ID] = &cp
	return nil
}

// GetClickByID returns a click by ID.
func (m *MemStore) GetClickByID(ctx context.Context, id string) (*model.Click, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	click, ok := m.clicks[id]
	if !ok {
		return nil, repository.ErrClickNotFound
	}
	cp := *click
	return &cp, nil
}

// LatestClickForVideo returns the most recent click for a video.
func (m *MemStore) LatestClickForVideo(ctx context.Context, videoID string) (*model.Click, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var latest *model.Click
	for _, click := range m.clicks {
		if click.VideoID != videoID {
			continue
		}
		if latest == nil || click.Timestamp.After(latest.Timestamp) ||
			(click.Timestamp.Equal(latest.Timestamp) && click.ID > latest.ID) {
			latest = click
		}
	}
	if latest == nil {
		return nil, repository.ErrClickNotFound
	}
	cp := *latest
	return &cp, nil
}

// CountClicksForVideo returns the click count for a video.
func (m *MemStore) CountClicksForVideo(ctx context.Context, videoID string) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var n int64
	for _, click := range m.clicks {
		if click.VideoID == videoID {
			n++
		}
	}
	return n, nil
}

// InsertBooking stores a booking.
func (m *MemStore) InsertBooking(ctx context.Context, booking *model.Booking) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *booking
	m.bookings[booking.ID] = &cp
	return nil
}

// GetBookingByID returns a booking by ID.
func (m *MemStore) GetBookingByID(ctx context.Context, id string) (*model.Booking, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	booking, ok := m.bookings[id]
	if !ok {
		return nil, repository.ErrBookingNotFound
	}
	cp := *booking
	return &cp, nil
}

// LatestBookingByEmail returns the most recent booking for an email,
// compared case-insensitively.
func (m *MemStore) LatestBookingByEmail(ctx context.Context, email string) (*model.Booking, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var latest *model.Booking
	for _, booking := range m.bookings {
		if !strings.EqualFold(booking.Email, email) {
			continue
		}
		if latest == nil || booking.Timestamp.After(latest.Timestamp) ||
			(booking.Timestamp.Equal(latest.Timestamp) && booking.ID > latest.ID) {
			latest = booking
		}
	}
	if latest == nil {
		return nil, repository.ErrBookingNotFound
	}
	cp := *latest
	return &cp, nil
}

// InsertSale stores a sale.
func (m *MemStore) InsertSale(ctx context.Context, sale *model.Sale) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *sale
	m.sales[sale.ID] = &cp
	return nil
}

// GetSaleByID returns a sale by ID.
func (m *MemStore) GetSaleByID(ctx context.Context, id string) (*model.Sale, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	sale, ok := m.sales[id]
	if !ok {
		return nil, repository.ErrSaleNotFound
	}
	cp := *sale
	return &cp, nil
}

// GlobalFunnelTotals aggregates counts and revenue across the ledger.
func (m *MemStore) GlobalFunnelTotals(ctx context.Context) (clicks, bookings, sales int64, revenue float64, err error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	clicks = int64(len(m.clicks))
	bookings = int64(len(m.bookings))
	sales = int64(len(m.sales))
	for _, sale := range m.sales {
		revenue += sale.Amount
	}
	return clicks, bookings, sales, revenue, nil
}

// VideoFunnelRows computes the per-video funnel, sorted by slug.
func (m *MemStore) VideoFunnelRows(ctx context.Context) ([]model.VideoFunnelRow, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rows := make([]model.VideoFunnelRow, 0, len(m.videos))
	for _, video := range m.videos {
		row := model.VideoFunnelRow{
			Slug:         video.Slug,
			Title:        video.Title,
			Views:        video.Views,
			Likes:        video.Likes,
			Comments:     video.Comments,
			AvgWatchTime: video.AvgWatchTime,
		}

		clickIDs := make(map[string]bool)
		for _, click := range m.clicks {
			if click.VideoID == video.ID {
				row.Clicks++
				clickIDs[click.ID] = true
			}
		}

		bookingIDs := make(map[string]bool)
		for _, booking := range m.bookings {
			if clickIDs[booking.ClickID] {
				row.Bookings++
				bookingIDs[booking.ID] = true
			}
		}

		for _, sale := range m.sales {
			if bookingIDs[sale.BookingID] {
				row.Sales++
				row.Revenue += sale.Amount
			}
		}

		rows = append(rows, row)
	}

	// Match the repository's created_at ordering
	order := make(map[string]int, len(m.videos))
	videos, _ := m.sortedVideosLocked()
	for i, v := range videos {
		order[v.Slug] = i
	}
	sort.Slice(rows, func(i, j int) bool { return order[rows[i].Slug] < order[rows[j].Slug] })
	return rows, nil
}

func (m *MemStore) sortedVideosLocked() ([]*model.Video, error) {
	all := make([]*model.Video, 0, len(m.videos))
	for _, video := range m.videos {
		all = append(all, video)
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].ID < all[j].ID
		}
		return all[i].CreatedAt.Before(all[j].CreatedAt)
	})
	return all, nil
}

// ResetLedger clears clicks, bookings, sales, and videos.
func (m *MemStore) ResetLedger(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.videos = make(map[string]*model.Video)
	m.clicks = make(map[string]*model.Click)
	m.bookings = make(map[string]*model.Booking)
	m.sales = make(map[string]*model.Sale)
	return nil
}
