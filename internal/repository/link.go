package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/vidtrack/vidtrack/internal/model"
)

// Common errors for link repository operations.
var (
	ErrLinkNotFound = errors.New("link not found")
	ErrSlugExists   = errors.New("slug already in use")
)

// CreateLink inserts a new link into the database.
func (r *Repository) CreateLink(ctx context.Context, link *model.Link) error {
	query := `
		INSERT INTO links (id, slug, title, destination_url, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.pool.Exec(ctx, query,
		link.ID,
		link.Slug,
		link.Title,
		link.DestinationURL,
		link.CreatedAt,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return ErrSlugExists
		}
		return fmt.Errorf("failed to create link: %w", err)
	}

	return nil
}

// GetLinkBySlug retrieves a link by its slug.
// This is the hot path for redirects.
func (r *Repository) GetLinkBySlug(ctx context.Context, slug string) (*model.Link, error) {
	query := `
		SELECT id, slug, title, destination_url, created_at
		FROM links
		WHERE slug = $1
	`

	link, err := scanLink(r.pool.QueryRow(ctx, query, slug))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrLinkNotFound
		}
		return nil, fmt.Errorf("failed to get link by slug: %w", err)
	}

	return link, nil
}

// ListLinks retrieves links ordered by creation time, newest first.
func (r *Repository) ListLinks(ctx context.Context, offset, limit int) ([]*model.Link, error) {
	query := `
		SELECT id, slug, title, destination_url, created_at
		FROM links
		ORDER BY created_at DESC, id DESC
		OFFSET $1 LIMIT $2
	`

	rows, err := r.pool.Query(ctx, query, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list links: %w", err)
	}
	defer rows.Close()

	var links []*model.Link
	for rows.Next() {
		link, err := scanLink(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan link: %w", err)
		}
		links = append(links, link)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating links: %w", err)
	}

	return links, nil
}

// SlugExists checks if a slug is already registered.
func (r *Repository) SlugExists(ctx context.Context, slug string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM links WHERE slug = $1)`

	var exists bool
	if err := r.pool.QueryRow(ctx, query, slug).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check slug existence: %w", err)
	}

	return exists, nil
}

// scanLink scans a single row into a Link model.
func scanLink(row pgx.Row) (*model.Link, error) {
	var link model.Link
	err := row.Scan(
		&link.ID,
		&link.Slug,
		&link.Title,
		&link.DestinationURL,
		&link.CreatedAt,
	)
	return &link, err
}
