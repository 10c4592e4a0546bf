//go:build integration

package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/vidtrack/vidtrack/internal/model"
	"github.com/vidtrack/vidtrack/internal/testutil"
)

var schemas = []string{
	"000001_links",
	"000002_videos",
	"000003_events",
	"000004_api_keys",
	"000005_provider_tokens",
}

// newTestRepo connects to the test database, takes the global test
// lock, and rebuilds the schema from the migration files.
func newTestRepo(t *testing.T) (context.Context, *Repository) {
	t.Helper()

	dbURL := testutil.RequireEnv(t, "DATABASE_URL")
	ctx := context.Background()

	repo, err := New(ctx, dbURL)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(repo.Close)

	unlock, err := testutil.AcquireDBLock(ctx, repo.Pool())
	if err != nil {
		t.Fatalf("acquire lock: %v", err)
	}
	t.Cleanup(func() {
		if err := unlock(); err != nil {
			t.Errorf("release lock: %v", err)
		}
	})

	for _, name := range schemas {
		if err := testutil.ResetSchema(ctx, repo.Pool(), name); err != nil {
			t.Fatalf("reset schema %s: %v", name, err)
		}
	}

	return ctx, repo
}

func TestIntegrationLinks_CreateAndGet(t *testing.T) {
	ctx, repo := newTestRepo(t)

	link := testutil.NewTestLink(t, testutil.UniqueSlug("launch"))
	if err := repo.CreateLink(ctx, link); err != nil {
		t.Fatalf("CreateLink: %v", err)
	}

	got, err := repo.GetLinkBySlug(ctx, link.Slug)
	if err != nil {
		t.Fatalf("GetLinkBySlug: %v", err)
	}
	if got.DestinationURL != link.DestinationURL {
		t.Errorf("destination = %q, want %q", got.DestinationURL, link.DestinationURL)
	}

	if _, err := repo.GetLinkBySlug(ctx, "missing"); !errors.Is(err, ErrLinkNotFound) {
		t.Errorf("missing slug error = %v, want ErrLinkNotFound", err)
	}
}

func TestIntegrationLinks_DuplicateSlug(t *testing.T) {
	ctx, repo := newTestRepo(t)

	link := testutil.NewTestLink(t, testutil.UniqueSlug("dup"))
	if err := repo.CreateLink(ctx, link); err != nil {
		t.Fatalf("CreateLink: %v", err)
	}

	dup := testutil.NewTestLink(t, link.Slug)
	dup.ID = testutil.UniqueID("link")
	if err := repo.CreateLink(ctx, dup); !errors.Is(err, ErrSlugExists) {
		t.Errorf("duplicate error = %v, want ErrSlugExists", err)
	}
}

func TestIntegrationLinks_ListPagination(t *testing.T) {
	ctx, repo := newTestRepo(t)

	for i := 0; i < 3; i++ {
		link := testutil.NewTestLink(t, testutil.UniqueSlug("page"))
		link.ID = testutil.UniqueID("link")
		if err := repo.CreateLink(ctx, link); err != nil {
			t.Fatalf("CreateLink: %v", err)
		}
		time.Sleep(time.Millisecond)
	}

	first, err := repo.ListLinks(ctx, 0, 2)
	if err != nil {
		t.Fatalf("ListLinks: %v", err)
	}
	if len(first) != 2 {
		t.Fatalf("len(first page) = %d, want 2", len(first))
	}

	second, err := repo.ListLinks(ctx, 2, 2)
	if err != nil {
		t.Fatalf("ListLinks offset: %v", err)
	}
	if len(second) != 1 {
		t.Fatalf("len(second page) = %d, want 1", len(second))
	}
}

func TestIntegrationVideos_StatsUpdate(t *testing.T) {
	ctx, repo := newTestRepo(t)

	video := testutil.NewTestVideo(t, testutil.UniqueSlug("vid"))
	if err := repo.CreateVideo(ctx, video); err != nil {
		t.Fatalf("CreateVideo: %v", err)
	}

	stats := model.VideoStats{Views: 1200, Likes: 80, Comments: 14, AvgWatchTime: 95.5}
	if err := repo.UpdateVideoStats(ctx, video.ID, stats); err != nil {
		t.Fatalf("UpdateVideoStats: %v", err)
	}

	got, err := repo.GetVideoByID(ctx, video.ID)
	if err != nil {
		t.Fatalf("GetVideoByID: %v", err)
	}
	if got.Views != 1200 || got.AvgWatchTime != 95.5 {
		t.Errorf("stats not applied: %+v", got)
	}
	if !got.UpdatedAt.After(video.UpdatedAt) {
		t.Error("updated_at should advance")
	}
}

func TestIntegrationEvents_AttributionQueries(t *testing.T) {
	ctx, repo := newTestRepo(t)

	video := testutil.NewTestVideo(t, testutil.UniqueSlug("funnel"))
	if err := repo.CreateVideo(ctx, video); err != nil {
		t.Fatalf("CreateVideo: %v", err)
	}

	older := &model.Click{
		ID:        testutil.UniqueID("click-old"),
		VideoID:   video.ID,
		IPAddress: "203.0.113.1",
		UserAgent: "test",
		Timestamp: time.Now().UTC().Add(-time.Hour),
	}
	newer := &model.Click{
		ID:        testutil.UniqueID("click-new"),
		VideoID:   video.ID,
		IPAddress: "203.0.113.2",
		UserAgent: "test",
		Timestamp: time.Now().UTC(),
	}
	for _, c := range []*model.Click{older, newer} {
		if err := repo.InsertClick(ctx, c); err != nil {
			t.Fatalf("InsertClick: %v", err)
		}
	}

	latest, err := repo.LatestClickForVideo(ctx, video.ID)
	if err != nil {
		t.Fatalf("LatestClickForVideo: %v", err)
	}
	if latest.ID != newer.ID {
		t.Errorf("latest click = %s, want %s", latest.ID, newer.ID)
	}

	booking := &model.Booking{
		ID:        testutil.UniqueID("booking"),
		ClickID:   newer.ID,
		Email:     "lead@example.com",
		Name:      "Lead",
		Timestamp: time.Now().UTC(),
	}
	if err := repo.InsertBooking(ctx, booking); err != nil {
		t.Fatalf("InsertBooking: %v", err)
	}

	byEmail, err := repo.LatestBookingByEmail(ctx, "lead@example.com")
	if err != nil {
		t.Fatalf("LatestBookingByEmail: %v", err)
	}
	if byEmail.ID != booking.ID {
		t.Errorf("booking = %s, want %s", byEmail.ID, booking.ID)
	}

	// Email matching is case-insensitive
	mixedCase, err := repo.LatestBookingByEmail(ctx, "Lead@Example.COM")
	if err != nil {
		t.Fatalf("LatestBookingByEmail mixed case: %v", err)
	}
	if mixedCase.ID != booking.ID {
		t.Errorf("mixed-case lookup = %s, want %s", mixedCase.ID, booking.ID)
	}

	sale := &model.Sale{
		ID:        testutil.UniqueID("sale"),
		BookingID: booking.ID,
		Amount:    2500,
		Timestamp: time.Now().UTC(),
	}
	if err := repo.InsertSale(ctx, sale); err != nil {
		t.Fatalf("InsertSale: %v", err)
	}

	clicks, bookings, sales, revenue, err := repo.GlobalFunnelTotals(ctx)
	if err != nil {
		t.Fatalf("GlobalFunnelTotals: %v", err)
	}
	if clicks != 2 || bookings != 1 || sales != 1 {
		t.Errorf("totals = %d/%d/%d, want 2/1/1", clicks, bookings, sales)
	}
	if revenue != 2500 {
		t.Errorf("revenue = %v, want 2500", revenue)
	}

	rows, err := repo.VideoFunnelRows(ctx)
	if err != nil {
		t.Fatalf("VideoFunnelRows: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("len(rows) = %d, want 1", len(rows))
	}
	row := rows[0]
	if row.Clicks != 2 || row.Bookings != 1 || row.Sales != 1 || row.Revenue != 2500 {
		t.Errorf("row = %+v", row)
	}
}

func TestIntegrationEvents_UnattributedBooking(t *testing.T) {
	ctx, repo := newTestRepo(t)

	booking := &model.Booking{
		ID:          testutil.UniqueID("booking"),
		Email:       "cold@example.com",
		Name:        "Cold Lead",
		NeedsReview: true,
		Timestamp:   time.Now().UTC(),
	}
	if err := repo.InsertBooking(ctx, booking); err != nil {
		t.Fatalf("InsertBooking with empty click_id: %v", err)
	}

	got, err := repo.GetBookingByID(ctx, booking.ID)
	if err != nil {
		t.Fatalf("GetBookingByID: %v", err)
	}
	if got.ClickID != "" {
		t.Errorf("click_id = %q, want empty", got.ClickID)
	}
	if !got.NeedsReview {
		t.Error("needs_review flag lost")
	}
}

func TestIntegrationEvents_ResetLedger(t *testing.T) {
	ctx, repo := newTestRepo(t)

	video := testutil.NewTestVideo(t, testutil.UniqueSlug("reset"))
	if err := repo.CreateVideo(ctx, video); err != nil {
		t.Fatalf("CreateVideo: %v", err)
	}
	click := &model.Click{
		ID:        testutil.UniqueID("click"),
		VideoID:   video.ID,
		Timestamp: time.Now().UTC(),
	}
	if err := repo.InsertClick(ctx, click); err != nil {
		t.Fatalf("InsertClick: %v", err)
	}

	if err := repo.ResetLedger(ctx); err != nil {
		t.Fatalf("ResetLedger: %v", err)
	}

	clicks, _, _, _, err := repo.GlobalFunnelTotals(ctx)
	if err != nil {
		t.Fatalf("GlobalFunnelTotals: %v", err)
	}
	if clicks != 0 {
		t.Errorf("clicks after reset = %d, want 0", clicks)
	}
}

func TestIntegrationAPIKeys_Lifecycle(t *testing.T) {
	ctx, repo := newTestRepo(t)

	key := testutil.NewTestAPIKey(t)
	if err := repo.CreateAPIKey(ctx, key); err != nil {
		t.Fatalf("CreateAPIKey: %v", err)
	}

	byPrefix, err := repo.GetAPIKeysByPrefix(ctx, key.KeyPrefix)
	if err != nil {
		t.Fatalf("GetAPIKeysByPrefix: %v", err)
	}
	if len(byPrefix) != 1 || byPrefix[0].ID != key.ID {
		t.Fatalf("prefix lookup = %+v", byPrefix)
	}
	if got := byPrefix[0].Scopes; len(got) != 2 {
		t.Errorf("scopes round-trip = %v", got)
	}

	if err := repo.UpdateAPIKeyLastUsed(ctx, key.ID); err != nil {
		t.Fatalf("UpdateAPIKeyLastUsed: %v", err)
	}

	if err := repo.RevokeAPIKey(ctx, key.ID); err != nil {
		t.Fatalf("RevokeAPIKey: %v", err)
	}
	keys, err := repo.ListAPIKeys(ctx)
	if err != nil {
		t.Fatalf("ListAPIKeys: %v", err)
	}
	if len(keys) != 1 || !keys[0].IsRevoked() {
		t.Errorf("revocation not persisted: %+v", keys)
	}

	if err := repo.RevokeAPIKey(ctx, "missing"); !errors.Is(err, ErrAPIKeyNotFound) {
		t.Errorf("missing key error = %v, want ErrAPIKeyNotFound", err)
	}
}

func TestIntegrationProviderTokens_Rotate(t *testing.T) {
	ctx, repo := newTestRepo(t)

	if _, err := repo.CurrentToken(ctx, model.ProviderYouTube); !errors.Is(err, ErrTokenNotFound) {
		t.Fatalf("empty slot error = %v, want ErrTokenNotFound", err)
	}

	first := &model.ProviderToken{
		ID:          testutil.UniqueID("token"),
		Provider:    model.ProviderYouTube,
		AccessToken: "access-1",
		CreatedAt:   time.Now().UTC(),
	}
	if err := repo.RotateToken(ctx, first); err != nil {
		t.Fatalf("RotateToken first: %v", err)
	}

	second := &model.ProviderToken{
		ID:           testutil.UniqueID("token"),
		Provider:     model.ProviderYouTube,
		AccessToken:  "access-2",
		RefreshToken: "refresh-2",
		CreatedAt:    time.Now().UTC(),
	}
	if err := repo.RotateToken(ctx, second); err != nil {
		t.Fatalf("RotateToken second: %v", err)
	}

	current, err := repo.CurrentToken(ctx, model.ProviderYouTube)
	if err != nil {
		t.Fatalf("CurrentToken: %v", err)
	}
	if current.AccessToken != "access-2" {
		t.Errorf("active token = %q, want access-2", current.AccessToken)
	}
	if current.RefreshToken != "refresh-2" {
		t.Errorf("refresh token = %q", current.RefreshToken)
	}
}
