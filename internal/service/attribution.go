package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/vidtrack/vidtrack/internal/metrics"
	"github.com/vidtrack/vidtrack/internal/model"
	"github.com/vidtrack/vidtrack/internal/repository"
)

// Attribution errors.
var (
	ErrSaleUnattributed  = errors.New("sale could not be attributed to a booking")
	ErrSaleNotFound      = errors.New("sale not found")
	ErrChainIncomplete   = errors.New("attribution chain is incomplete")
	ErrMissingEmail      = errors.New("email is required")
	ErrInvalidSaleAmount = errors.New("sale amount must be positive")
)

// AttributionStore defines the persistence operations AttributionService needs.
type AttributionStore interface {
	GetClickByID(ctx context.Context, id string) (*model.Click, error)
	LatestClickForVideo(ctx context.Context, videoID string) (*model.Click, error)
	GetVideoBySlug(ctx context.Context, slug string) (*model.Video, error)
	GetVideoByID(ctx context.Context, id string) (*model.Video, error)
	InsertBooking(ctx context.Context, booking *model.Booking) error
	GetBookingByID(ctx context.Context, id string) (*model.Booking, error)
	LatestBookingByEmail(ctx context.Context, email string) (*model.Booking, error)
	InsertSale(ctx context.Context, sale *model.Sale) error
	GetSaleByID(ctx context.Context, id string) (*model.Sale, error)
}

// AttributionService links webhook events back to the click that
// produced them.
type AttributionService struct {
	store   AttributionStore
	metrics metrics.Recorder
}

// NewAttributionService creates a new AttributionService.
func NewAttributionService(store AttributionStore, recorder metrics.Recorder) *AttributionService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &AttributionService{store: store, metrics: recorder}
}

// BookingInput carries the fields extracted from a scheduling webhook.
type BookingInput struct {
	Email       string
	Name        string
	UTMCampaign string // campaign slug carried through the booking page
	UTMTerm     string // click ID embedded by the redirect
	Timestamp   time.Time
}

// AttributeBooking records a booking and attributes it to a click.
// The click ID embedded in utm_term wins when it resolves; otherwise
// the latest click for the campaign's video is used. Bookings that
// cannot be attributed are kept with an empty click ID and flagged
// for review.
func (s *AttributionService) AttributeBooking(ctx context.Context, input BookingInput) (*model.Booking, error) {
	if input.Email == "" {
		return nil, ErrMissingEmail
	}

	clickID := s.resolveBookingClick(ctx, input)

	ts := input.Timestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	booking := &model.Booking{
		ID:          ulid.Make().String(),
		ClickID:     clickID,
		Email:       strings.ToLower(strings.TrimSpace(input.Email)),
		Name:        input.Name,
		NeedsReview: clickID == "",
		Timestamp:   ts,
	}

	if err := s.store.InsertBooking(ctx, booking); err != nil {
		return nil, fmt.Errorf("insert booking: %w", err)
	}

	s.metrics.IncBookingRecorded(booking.Attributed())

	return booking, nil
}

// resolveBookingClick returns the click ID a booking attributes to,
// or empty when no candidate resolves.
func (s *AttributionService) resolveBookingClick(ctx context.Context, input BookingInput) string {
	// Exact match on the click ID the redirect embedded
	if input.UTMTerm != "" {
		if click, err := s.store.GetClickByID(ctx, input.UTMTerm); err == nil {
			return click.ID
		}
	}

	// Last-touch fallback: the most recent click for the campaign's video
	if input.UTMCampaign != "" {
		video, err := s.store.GetVideoBySlug(ctx, input.UTMCampaign)
		if err != nil {
			return ""
		}
		click, err := s.store.LatestClickForVideo(ctx, video.ID)
		if err != nil {
			return ""
		}
		return click.ID
	}

	return ""
}

// SaleInput carries the fields extracted from a payment webhook.
type SaleInput struct {
	Email     string
	Amount    float64
	BookingID string // explicit booking reference from payment metadata
	Timestamp time.Time
}

// AttributeSale records a sale attributed to a booking. An explicit
// booking ID in the payment metadata wins; otherwise the buyer's
// latest booking by email is used. A sale that matches neither is
// not recorded.
func (s *AttributionService) AttributeSale(ctx context.Context, input SaleInput) (*model.Sale, error) {
	if input.Amount <= 0 {
		return nil, ErrInvalidSaleAmount
	}

	booking, err := s.resolveSaleBooking(ctx, input)
	if err != nil {
		s.metrics.IncSaleDropped()
		return nil, err
	}

	ts := input.Timestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	sale := &model.Sale{
		ID:        ulid.Make().String(),
		BookingID: booking.ID,
		Amount:    input.Amount,
		Timestamp: ts,
	}

	if err := s.store.InsertSale(ctx, sale); err != nil {
		return nil, fmt.Errorf("insert sale: %w", err)
	}

	s.metrics.IncSaleRecorded()

	return sale, nil
}

func (s *AttributionService) resolveSaleBooking(ctx context.Context, input SaleInput) (*model.Booking, error) {
	if input.BookingID != "" {
		booking, err := s.store.GetBookingByID(ctx, input.BookingID)
		if err == nil {
			return booking, nil
		}
		if !errors.Is(err, repository.ErrBookingNotFound) {
			return nil, err
		}
		// Stale metadata falls back to the email match
	}

	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" {
		return nil, ErrSaleUnattributed
	}

	booking, err := s.store.LatestBookingByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrBookingNotFound) {
			return nil, ErrSaleUnattributed
		}
		return nil, err
	}

	return booking, nil
}

// ResolveChain walks a sale back to its booking, click, and video.
// The chain resolves fully or not at all.
func (s *AttributionService) ResolveChain(ctx context.Context, saleID string) (*model.AttributionChain, error) {
	sale, err := s.store.GetSaleByID(ctx, saleID)
	if err != nil {
		if errors.Is(err, repository.ErrSaleNotFound) {
			return nil, ErrSaleNotFound
		}
		return nil, err
	}

	booking, err := s.store.GetBookingByID(ctx, sale.BookingID)
	if err != nil {
		if errors.Is(err, repository.ErrBookingNotFound) {
			return nil, ErrChainIncomplete
		}
		return nil, err
	}

	if !booking.Attributed() {
		return nil, ErrChainIncomplete
	}

	click, err := s.store.GetClickByID(ctx, booking.ClickID)
	if err != nil {
		if errors.Is(err, repository.ErrClickNotFound) {
			return nil, ErrChainIncomplete
		}
		return nil, err
	}

	video, err := s.store.GetVideoByID(ctx, click.VideoID)
	if err != nil {
		if errors.Is(err, repository.ErrVideoNotFound) {
			return nil, ErrChainIncomplete
		}
		return nil, err
	}

	return &model.AttributionChain{
		Sale:    sale,
		Booking: booking,
		Click:   click,
		Video:   video,
	}, nil
}
