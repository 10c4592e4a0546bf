package service

import (
	"context"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/vidtrack/vidtrack/internal/model"
)

// SeedStore defines the persistence operations SeedService needs.
type SeedStore interface {
	ResetLedger(ctx context.Context) error
	CreateLink(ctx context.Context, link *model.Link) error
	CreateVideo(ctx context.Context, video *model.Video) error
	InsertClick(ctx context.Context, click *model.Click) error
	InsertBooking(ctx context.Context, booking *model.Booking) error
	InsertSale(ctx context.Context, sale *model.Sale) error
}

// SeedService resets and repopulates the funnel ledger with demo
// data. Intended for development and demos only.
type SeedService struct {
	store SeedStore
}

// NewSeedService creates a new SeedService.
func NewSeedService(store SeedStore) *SeedService {
	return &SeedService{store: store}
}

// Reset deletes all funnel data. Links and API keys survive.
func (s *SeedService) Reset(ctx context.Context) error {
	return s.store.ResetLedger(ctx)
}

// Seed resets the ledger and loads a small demo funnel: one video
// with clicks, an attributed booking, and a closed sale.
func (s *SeedService) Seed(ctx context.Context) error {
	if err := s.store.ResetLedger(ctx); err != nil {
		return fmt.Errorf("reset ledger: %w", err)
	}

	now := time.Now().UTC()

	video := &model.Video{
		ID:           ulid.Make().String(),
		Slug:         "demo-launch",
		Title:        "Demo: Spring Launch Walkthrough",
		Views:        12480,
		Likes:        640,
		Comments:     52,
		AvgWatchTime: 286.4,
		CreatedAt:    now.Add(-21 * 24 * time.Hour),
		UpdatedAt:    now,
	}
	if err := s.store.CreateVideo(ctx, video); err != nil {
		return fmt.Errorf("seed video: %w", err)
	}

	var lastClick *model.Click
	for i := 0; i < 5; i++ {
		click := &model.Click{
			ID:        ulid.Make().String(),
			VideoID:   video.ID,
			IPAddress: fmt.Sprintf("203.0.113.%d", 10+i),
			UserAgent: "Mozilla/5.0 (demo)",
			Referrer:  "https://www.youtube.com/watch?v=demo",
			Timestamp: now.Add(time.Duration(-5+i) * 24 * time.Hour),
		}
		if err := s.store.InsertClick(ctx, click); err != nil {
			return fmt.Errorf("seed click: %w", err)
		}
		lastClick = click
	}

	booking := &model.Booking{
		ID:        ulid.Make().String(),
		ClickID:   lastClick.ID,
		Email:     "demo.lead@example.com",
		Name:      "Demo Lead",
		Timestamp: now.Add(-18 * time.Hour),
	}
	if err := s.store.InsertBooking(ctx, booking); err != nil {
		return fmt.Errorf("seed booking: %w", err)
	}

	sale := &model.Sale{
		ID:        ulid.Make().String(),
		BookingID: booking.ID,
		Amount:    2500,
		Timestamp: now.Add(-2 * time.Hour),
	}
	if err := s.store.InsertSale(ctx, sale); err != nil {
		return fmt.Errorf("seed sale: %w", err)
	}

	return nil
}
