package service

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/vidtrack/vidtrack/internal/model"
	"github.com/vidtrack/vidtrack/internal/testutil"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestDashboardSummary_Empty(t *testing.T) {
	t.Parallel()

	svc := NewDashboardService(testutil.NewMemStore())

	summary, err := svc.Summary(context.Background())
	if err != nil {
		t.Fatalf("Summary() error = %v", err)
	}

	if summary.TotalClicks != 0 || summary.TotalBookings != 0 || summary.TotalSales != 0 {
		t.Errorf("totals not zero: %+v", summary)
	}
	// Zero denominators must not blow up
	if summary.ClosingRate != 0 {
		t.Errorf("ClosingRate = %v, want 0", summary.ClosingRate)
	}
	if summary.AverageOrderValue != 0 {
		t.Errorf("AverageOrderValue = %v, want 0", summary.AverageOrderValue)
	}
	if summary.ShowUpRate != 0 {
		t.Errorf("ShowUpRate = %v, want 0 with no bookings", summary.ShowUpRate)
	}
}

func TestDashboardSummary_Rates(t *testing.T) {
	t.Parallel()

	store := testutil.NewMemStore()
	ctx := context.Background()

	video := testutil.NewTestVideo(t, "spring-launch")
	if err := store.CreateVideo(ctx, video); err != nil {
		t.Fatalf("seed video: %v", err)
	}

	now := time.Now().UTC()
	var clickIDs []string
	for i := 0; i < 10; i++ {
		id := testutil.UniqueID("click")
		clickIDs = append(clickIDs, id)
		if err := store.InsertClick(ctx, &model.Click{
			ID:        id,
			VideoID:   video.ID,
			Timestamp: now.Add(time.Duration(-i) * time.Minute),
		}); err != nil {
			t.Fatalf("seed click: %v", err)
		}
	}

	// 4 bookings, 3 sales totaling 6000
	var bookingIDs []string
	for i := 0; i < 4; i++ {
		id := testutil.UniqueID("booking")
		bookingIDs = append(bookingIDs, id)
		if err := store.InsertBooking(ctx, &model.Booking{
			ID:        id,
			ClickID:   clickIDs[i],
			Email:     "buyer@example.com",
			Timestamp: now,
		}); err != nil {
			t.Fatalf("seed booking: %v", err)
		}
	}
	for i, amount := range []float64{1000, 2000, 3000} {
		if err := store.InsertSale(ctx, &model.Sale{
			ID:        testutil.UniqueID("sale"),
			BookingID: bookingIDs[i],
			Amount:    amount,
			Timestamp: now,
		}); err != nil {
			t.Fatalf("seed sale: %v", err)
		}
	}

	svc := NewDashboardService(store)
	summary, err := svc.Summary(ctx)
	if err != nil {
		t.Fatalf("Summary() error = %v", err)
	}

	if summary.TotalClicks != 10 || summary.TotalBookings != 4 || summary.TotalSales != 3 {
		t.Errorf("totals = %d/%d/%d, want 10/4/3",
			summary.TotalClicks, summary.TotalBookings, summary.TotalSales)
	}
	if !almostEqual(summary.TotalRevenue, 6000) {
		t.Errorf("TotalRevenue = %v, want 6000", summary.TotalRevenue)
	}

	if !almostEqual(summary.ShowUpRate, 75) {
		t.Errorf("ShowUpRate = %v, want 75", summary.ShowUpRate)
	}
	// closing rate = sales / (bookings * 0.75) * 100 = 3 / 3 * 100
	if !almostEqual(summary.ClosingRate, 100) {
		t.Errorf("ClosingRate = %v, want 100", summary.ClosingRate)
	}
	if !almostEqual(summary.AverageOrderValue, 2000) {
		t.Errorf("AverageOrderValue = %v, want 2000", summary.AverageOrderValue)
	}

	if len(summary.Videos) != 1 {
		t.Fatalf("len(Videos) = %d, want 1", len(summary.Videos))
	}
	row := summary.Videos[0]
	if row.Clicks != 10 || row.Bookings != 4 || row.Sales != 3 {
		t.Errorf("row funnel = %d/%d/%d, want 10/4/3", row.Clicks, row.Bookings, row.Sales)
	}
	if !almostEqual(row.Revenue, 6000) {
		t.Errorf("row.Revenue = %v, want 6000", row.Revenue)
	}
}

func TestDashboardSummary_UnattributedExcludedFromRows(t *testing.T) {
	t.Parallel()

	store := testutil.NewMemStore()
	ctx := context.Background()

	video := testutil.NewTestVideo(t, "spring-launch")
	if err := store.CreateVideo(ctx, video); err != nil {
		t.Fatalf("seed video: %v", err)
	}

	// An unattributed booking counts toward global totals but not
	// toward any video row.
	if err := store.InsertBooking(ctx, &model.Booking{
		ID:          "booking-orphan",
		Email:       "orphan@example.com",
		NeedsReview: true,
		Timestamp:   time.Now().UTC(),
	}); err != nil {
		t.Fatalf("seed booking: %v", err)
	}

	summary, err := NewDashboardService(store).Summary(ctx)
	if err != nil {
		t.Fatalf("Summary() error = %v", err)
	}

	if summary.TotalBookings != 1 {
		t.Errorf("TotalBookings = %d, want 1", summary.TotalBookings)
	}
	if summary.Videos[0].Bookings != 0 {
		t.Errorf("row.Bookings = %d, want 0", summary.Videos[0].Bookings)
	}
}

func TestMockSummary(t *testing.T) {
	t.Parallel()

	summary := NewDashboardService(testutil.NewMemStore()).MockSummary()

	if summary.TotalSales == 0 || len(summary.Videos) == 0 {
		t.Fatal("mock summary is empty")
	}
	if summary.ClosingRate <= 0 {
		t.Errorf("ClosingRate = %v, want positive", summary.ClosingRate)
	}
	if !almostEqual(summary.AverageOrderValue, summary.TotalRevenue/float64(summary.TotalSales)) {
		t.Errorf("AverageOrderValue inconsistent with totals")
	}
}
