package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/vidtrack/vidtrack/internal/model"
)

// Common errors for event repository operations.
var (
	ErrClickNotFound   = errors.New("click not found")
	ErrBookingNotFound = errors.New("booking not found")
	ErrSaleNotFound    = errors.New("sale not found")
)

// InsertClick appends a click event. Clicks are immutable after insert.
func (r *Repository) InsertClick(ctx context.Context, click *model.Click) error {
	query := `
		INSERT INTO clicks (id, video_id, ip_address, user_agent, referrer, timestamp)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.pool.Exec(ctx, query,
		click.ID,
		click.VideoID,
		click.IPAddress,
		click.UserAgent,
		nullableString(click.Referrer),
		click.Timestamp,
	)

	if err != nil {
		return fmt.Errorf("failed to insert click: %w", err)
	}

	return nil
}

// GetClickByID retrieves a click by its ID.
func (r *Repository) GetClickByID(ctx context.Context, id string) (*model.Click, error) {
	query := `
		SELECT id, video_id, ip_address, user_agent, COALESCE(referrer, ''), timestamp
		FROM clicks
		WHERE id = $1
	`

	click, err := scanClick(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrClickNotFound
		}
		return nil, fmt.Errorf("failed to get click by ID: %w", err)
	}

	return click, nil
}

// LatestClickForVideo returns the most recent click for a video.
// This backs the last-touch booking attribution heuristic.
func (r *Repository) LatestClickForVideo(ctx context.Context, videoID string) (*model.Click, error) {
	query := `
		SELECT id, video_id, ip_address, user_agent, COALESCE(referrer, ''), timestamp
		FROM clicks
		WHERE video_id = $1
		ORDER BY timestamp DESC, id DESC
		LIMIT 1
	`

	click, err := scanClick(r.pool.QueryRow(ctx, query, videoID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrClickNotFound
		}
		return nil, fmt.Errorf("failed to get latest click for video: %w", err)
	}

	return click, nil
}

// CountClicksForVideo returns the click count for a single video.
func (r *Repository) CountClicksForVideo(ctx context.Context, videoID string) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM clicks WHERE video_id = $1`, videoID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count clicks: %w", err)
	}
	return count, nil
}

// InsertBooking appends a booking event. ClickID may be empty for
// bookings that could not be attributed; those are stored with a NULL
// click reference and flagged for review rather than dropped.
func (r *Repository) InsertBooking(ctx context.Context, booking *model.Booking) error {
	query := `
		INSERT INTO bookings (id, click_id, email, name, needs_review, timestamp)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.pool.Exec(ctx, query,
		booking.ID,
		nullableString(booking.ClickID),
		booking.Email,
		booking.Name,
		booking.NeedsReview,
		booking.Timestamp,
	)

	if err != nil {
		return fmt.Errorf("failed to insert booking: %w", err)
	}

	return nil
}

// GetBookingByID retrieves a booking by its ID.
func (r *Repository) GetBookingByID(ctx context.Context, id string) (*model.Booking, error) {
	query := `
		SELECT id, COALESCE(click_id, ''), email, name, needs_review, timestamp
		FROM bookings
		WHERE id = $1
	`

	booking, err := scanBooking(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrBookingNotFound
		}
		return nil, fmt.Errorf("failed to get booking by ID: %w", err)
	}

	return booking, nil
}

// LatestBookingByEmail returns the most recent booking matching the
// email, compared case-insensitively. Backs the sale attribution
// fallback when the payment metadata carries no booking reference.
func (r *Repository) LatestBookingByEmail(ctx context.Context, email string) (*model.Booking, error) {
	query := `
		SELECT id, COALESCE(click_id, ''), email, name, needs_review, timestamp
		FROM bookings
		WHERE LOWER(email) = LOWER($1)
		ORDER BY timestamp DESC, id DESC
		LIMIT 1
	`

	booking, err := scanBooking(r.pool.QueryRow(ctx, query, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrBookingNotFound
		}
		return nil, fmt.Errorf("failed to get latest booking by email: %w", err)
	}

	return booking, nil
}

// InsertSale appends a sale event.
func (r *Repository) InsertSale(ctx context.Context, sale *model.Sale) error {
	query := `
		INSERT INTO sales (id, booking_id, amount, timestamp)
		VALUES ($1, $2, $3, $4)
	`

	_, err := r.pool.Exec(ctx, query,
		sale.ID,
		sale.BookingID,
		sale.Amount,
		sale.Timestamp,
	)

	if err != nil {
		return fmt.Errorf("failed to insert sale: %w", err)
	}

	return nil
}

// GetSaleByID retrieves a sale by its ID.
func (r *Repository) GetSaleByID(ctx context.Context, id string) (*model.Sale, error) {
	query := `
		SELECT id, booking_id, amount, timestamp
		FROM sales
		WHERE id = $1
	`

	var sale model.Sale
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&sale.ID,
		&sale.BookingID,
		&sale.Amount,
		&sale.Timestamp,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSaleNotFound
		}
		return nil, fmt.Errorf("failed to get sale by ID: %w", err)
	}

	return &sale, nil
}

// GlobalFunnelTotals returns ledger-wide click/booking/sale counts and
// summed revenue in a single round trip.
func (r *Repository) GlobalFunnelTotals(ctx context.Context) (clicks, bookings, sales int64, revenue float64, err error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM clicks),
			(SELECT COUNT(*) FROM bookings),
			(SELECT COUNT(*) FROM sales),
			(SELECT COALESCE(SUM(amount), 0) FROM sales)
	`

	if err = r.pool.QueryRow(ctx, query).Scan(&clicks, &bookings, &sales, &revenue); err != nil {
		return 0, 0, 0, 0, fmt.Errorf("failed to query funnel totals: %w", err)
	}

	return clicks, bookings, sales, revenue, nil
}

// VideoFunnelRows returns the per-video funnel joins: clicks for the
// video, bookings reached through those clicks, and sales reached
// through those bookings.
func (r *Repository) VideoFunnelRows(ctx context.Context) ([]model.VideoFunnelRow, error) {
	query := `
		SELECT
			v.slug,
			v.title,
			v.views,
			v.likes,
			v.comments,
			v.avg_watch_time,
			(SELECT COUNT(*) FROM clicks c WHERE c.video_id = v.id),
			(SELECT COUNT(*)
				FROM bookings b
				JOIN clicks c ON b.click_id = c.id
				WHERE c.video_id = v.id),
			(SELECT COUNT(*)
				FROM sales s
				JOIN bookings b ON s.booking_id = b.id
				JOIN clicks c ON b.click_id = c.id
				WHERE c.video_id = v.id),
			(SELECT COALESCE(SUM(s.amount), 0)
				FROM sales s
				JOIN bookings b ON s.booking_id = b.id
				JOIN clicks c ON b.click_id = c.id
				WHERE c.video_id = v.id)
		FROM videos v
		ORDER BY v.created_at ASC, v.id ASC
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query video funnel rows: %w", err)
	}
	defer rows.Close()

	var result []model.VideoFunnelRow
	for rows.Next() {
		var row model.VideoFunnelRow
		err := rows.Scan(
			&row.Slug,
			&row.Title,
			&row.Views,
			&row.Likes,
			&row.Comments,
			&row.AvgWatchTime,
			&row.Clicks,
			&row.Bookings,
			&row.Sales,
			&row.Revenue,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan video funnel row: %w", err)
		}
		result = append(result, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating video funnel rows: %w", err)
	}

	return result, nil
}

// ResetLedger deletes all sales, bookings, clicks, and videos.
// Destructive bulk clear used only by the demo data generator.
func (r *Repository) ResetLedger(ctx context.Context) error {
	return r.withTx(ctx, func(tx pgx.Tx) error {
		// Children first to satisfy foreign keys.
		for _, table := range []string{"sales", "bookings", "clicks", "videos"} {
			if _, err := tx.Exec(ctx, "DELETE FROM "+table); err != nil {
				return fmt.Errorf("clear %s: %w", table, err)
			}
		}
		return nil
	})
}

// scanClick scans a single row into a Click model.
func scanClick(row pgx.Row) (*model.Click, error) {
	var click model.Click
	err := row.Scan(
		&click.ID,
		&click.VideoID,
		&click.IPAddress,
		&click.UserAgent,
		&click.Referrer,
		&click.Timestamp,
	)
	return &click, err
}

// scanBooking scans a single row into a Booking model.
func scanBooking(row pgx.Row) (*model.Booking, error) {
	var booking model.Booking
	err := row.Scan(
		&booking.ID,
		&booking.ClickID,
		&booking.Email,
		&booking.Name,
		&booking.NeedsReview,
		&booking.Timestamp,
	)
	return &booking, err
}
