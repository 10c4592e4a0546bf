package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/vidtrack/vidtrack/internal/model"
)

// Common errors for video repository operations.
var (
	ErrVideoNotFound = errors.New("video not found")
)

// CreateVideo inserts a new video campaign record.
func (r *Repository) CreateVideo(ctx context.Context, video *model.Video) error {
	query := `
		INSERT INTO videos (id, slug, title, views, likes, comments, avg_watch_time, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.pool.Exec(ctx, query,
		video.ID,
		video.Slug,
		video.Title,
		video.Views,
		video.Likes,
		video.Comments,
		video.AvgWatchTime,
		video.CreatedAt,
		video.UpdatedAt,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return ErrSlugExists
		}
		return fmt.Errorf("failed to create video: %w", err)
	}

	return nil
}

// GetVideoByID retrieves a video by its ID.
func (r *Repository) GetVideoByID(ctx context.Context, id string) (*model.Video, error) {
	query := `
		SELECT id, slug, title, views, likes, comments, avg_watch_time, created_at, updated_at
		FROM videos
		WHERE id = $1
	`

	video, err := scanVideo(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrVideoNotFound
		}
		return nil, fmt.Errorf("failed to get video by ID: %w", err)
	}

	return video, nil
}

// GetVideoBySlug retrieves a video by its campaign slug.
func (r *Repository) GetVideoBySlug(ctx context.Context, slug string) (*model.Video, error) {
	query := `
		SELECT id, slug, title, views, likes, comments, avg_watch_time, created_at, updated_at
		FROM videos
		WHERE slug = $1
	`

	video, err := scanVideo(r.pool.QueryRow(ctx, query, slug))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrVideoNotFound
		}
		return nil, fmt.Errorf("failed to get video by slug: %w", err)
	}

	return video, nil
}

// ListVideos retrieves all video campaign records.
func (r *Repository) ListVideos(ctx context.Context) ([]*model.Video, error) {
	query := `
		SELECT id, slug, title, views, likes, comments, avg_watch_time, created_at, updated_at
		FROM videos
		ORDER BY created_at ASC, id ASC
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list videos: %w", err)
	}
	defer rows.Close()

	var videos []*model.Video
	for rows.Next() {
		video, err := scanVideo(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan video: %w", err)
		}
		videos = append(videos, video)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating videos: %w", err)
	}

	return videos, nil
}

// UpdateVideoStats overwrites a video's engagement counters.
// Last-writer-wins: the stats refresh is idempotent analytics data,
// not a financial record.
func (r *Repository) UpdateVideoStats(ctx context.Context, id string, stats model.VideoStats) error {
	query := `
		UPDATE videos
		SET views = $2, likes = $3, comments = $4, avg_watch_time = $5, updated_at = $6
		WHERE id = $1
	`

	result, err := r.pool.Exec(ctx, query,
		id,
		stats.Views,
		stats.Likes,
		stats.Comments,
		stats.AvgWatchTime,
		time.Now().UTC(),
	)

	if err != nil {
		return fmt.Errorf("failed to update video stats: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrVideoNotFound
	}

	return nil
}

// scanVideo scans a single row into a Video model.
func scanVideo(row pgx.Row) (*model.Video, error) {
	var video model.Video
	err := row.Scan(
		&video.ID,
		&video.Slug,
		&video.Title,
		&video.Views,
		&video.Likes,
		&video.Comments,
		&video.AvgWatchTime,
		&video.CreatedAt,
		&video.UpdatedAt,
	)
	return &video, err
}
