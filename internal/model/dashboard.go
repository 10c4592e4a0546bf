// Package model defines domain entities for the application.
package model

// ShowUpMultiplier is the fixed heuristic share of bookings assumed
// to show up for their call. Not derived from data.
const ShowUpMultiplier = 0.75

// VideoFunnelRow is the per-video slice of the funnel dashboard.
type VideoFunnelRow struct {
	Slug         string  `json:"slug"`
	Title        string  `json:"title"`
	Views        int64   `json:"views"`
	Likes        int64   `json:"likes"`
	Comments     int64   `json:"comments"`
	AvgWatchTime float64 `json:"avg_watch_time"`
	Clicks       int64   `json:"clicks"`
	Bookings     int64   `json:"bookings"`
	Sales        int64   `json:"sales"`
	Revenue      float64 `json:"revenue"`
}

// DashboardSummary is the aggregated funnel view across all videos.
type DashboardSummary struct {
	TotalClicks       int64            `json:"total_clicks"`
	TotalBookings     int64            `json:"total_bookings"`
	TotalSales        int64            `json:"total_sales"`
	TotalRevenue      float64          `json:"total_revenue"`
	ShowUpRate        float64          `json:"show_up_rate"`
	ClosingRate       float64          `json:"closing_rate"`
	AverageOrderValue float64          `json:"average_order_value"`
	Videos            []VideoFunnelRow `json:"videos"`
}
