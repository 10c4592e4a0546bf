package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/vidtrack/vidtrack/internal/model"
)

// Common errors for provider token operations.
var (
	ErrTokenNotFound = errors.New("provider token not found")
)

// CurrentToken returns the single active token for a provider.
func (r *Repository) CurrentToken(ctx context.Context, provider string) (*model.ProviderToken, error) {
	query := `
		SELECT id, provider, access_token, COALESCE(refresh_token, ''), expires_at, is_active, created_at
		FROM provider_tokens
		WHERE provider = $1 AND is_active
		ORDER BY created_at DESC
		LIMIT 1
	`

	var token model.ProviderToken
	err := r.pool.QueryRow(ctx, query, provider).Scan(
		&token.ID,
		&token.Provider,
		&token.AccessToken,
		&token.RefreshToken,
		&token.ExpiresAt,
		&token.IsActive,
		&token.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTokenNotFound
		}
		return nil, fmt.Errorf("failed to get current token: %w", err)
	}

	return &token, nil
}

// RotateToken deactivates any active token for the provider and
// inserts the replacement as the new active slot, atomically.
func (r *Repository) RotateToken(ctx context.Context, token *model.ProviderToken) error {
	return r.withTx(ctx, func(tx pgx.Tx) error {
		deactivate := `
			UPDATE provider_tokens
			SET is_active = FALSE
			WHERE provider = $1 AND is_active
		`
		if _, err := tx.Exec(ctx, deactivate, token.Provider); err != nil {
			return fmt.Errorf("deactivate previous token: %w", err)
		}

		insert := `
			INSERT INTO provider_tokens (id, provider, access_token, refresh_token, expires_at, is_active, created_at)
			VALUES ($1, $2, $3, $4, $5, TRUE, $6)
		`
		_, err := tx.Exec(ctx, insert,
			token.ID,
			token.Provider,
			token.AccessToken,
			nullableString(token.RefreshToken),
			token.ExpiresAt,
			token.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("insert token: %w", err)
		}

		return nil
	})
}
