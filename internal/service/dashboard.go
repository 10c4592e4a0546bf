package service

import (
	"context"
	"fmt"

	"github.com/vidtrack/vidtrack/internal/model"
)

// DashboardStore defines the aggregate queries DashboardService needs.
type DashboardStore interface {
	GlobalFunnelTotals(ctx context.Context) (clicks, bookings, sales int64, revenue float64, err error)
	VideoFunnelRows(ctx context.Context) ([]model.VideoFunnelRow, error)
}

// DashboardService computes the funnel dashboard.
type DashboardService struct {
	store DashboardStore
}

// NewDashboardService creates a new DashboardService.
func NewDashboardService(store DashboardStore) *DashboardService {
	return &DashboardService{store: store}
}

// Summary aggregates the funnel across all videos.
//
// The show-up rate is a fixed heuristic, not measured from data. The
// closing rate divides sales by estimated shows (bookings times the
// multiplier). Zero denominators yield zero rates rather than errors.
func (s *DashboardService) Summary(ctx context.Context) (*model.DashboardSummary, error) {
	clicks, bookings, sales, revenue, err := s.store.GlobalFunnelTotals(ctx)
	if err != nil {
		return nil, fmt.Errorf("funnel totals: %w", err)
	}

	rows, err := s.store.VideoFunnelRows(ctx)
	if err != nil {
		return nil, fmt.Errorf("funnel rows: %w", err)
	}

	summary := &model.DashboardSummary{
		TotalClicks:   clicks,
		TotalBookings: bookings,
		TotalSales:    sales,
		TotalRevenue:  revenue,
		Videos:        rows,
	}

	if bookings > 0 {
		summary.ShowUpRate = model.ShowUpMultiplier * 100
	}
	estimatedShows := float64(bookings) * model.ShowUpMultiplier
	if estimatedShows > 0 {
		summary.ClosingRate = float64(sales) / estimatedShows * 100
	}
	if sales > 0 {
		summary.AverageOrderValue = revenue / float64(sales)
	}

	return summary, nil
}

// MockSummary returns a canned dashboard for frontend development
// against an empty database.
func (s *DashboardService) MockSummary() *model.DashboardSummary {
	videos := []model.VideoFunnelRow{
		{
			Slug:         "spring-launch",
			Title:        "How We Booked 40 Calls In A Week",
			Views:        48210,
			Likes:        2110,
			Comments:     187,
			AvgWatchTime: 312.5,
			Clicks:       1298,
			Bookings:     86,
			Sales:        19,
			Revenue:      47500,
		},
		{
			Slug:         "case-study-mia",
			Title:        "Client Case Study: 0 to 30k/mo",
			Views:        21870,
			Likes:        1430,
			Comments:     96,
			AvgWatchTime: 402.1,
			Clicks:       743,
			Bookings:     52,
			Sales:        11,
			Revenue:      27500,
		},
	}

	summary := &model.DashboardSummary{
		TotalClicks:   2041,
		TotalBookings: 138,
		TotalSales:    30,
		TotalRevenue:  75000,
		ShowUpRate:    model.ShowUpMultiplier * 100,
		Videos:        videos,
	}

	estimatedShows := float64(summary.TotalBookings) * model.ShowUpMultiplier
	summary.ClosingRate = float64(summary.TotalSales) / estimatedShows * 100
	summary.AverageOrderValue = summary.TotalRevenue / float64(summary.TotalSales)

	return summary
}
