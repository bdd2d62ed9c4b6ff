package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/checkdesk/checkdesk/internal/apperrors"
	"github.com/checkdesk/checkdesk/internal/models"
)

type RefreshTokenRepo struct {
	DB DBTX
}

const saveRefreshToken = `-- name: SaveRefreshToken
INSERT INTO refresh_tokens (id, staff_id, token, created_at, expires_at, used_at)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id
`

func (r *RefreshTokenRepo) Save(ctx context.Context, token models.RefreshToken) error {
	rows, _ := r.DB.Query(ctx, saveRefreshToken,
		token.ID, token.StaffID, token.Token, token.CreatedAt, token.ExpiresAt, token.UsedAt)
	_, err := pgx.CollectOneRow(rows, pgx.RowTo[uuid.UUID])
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

const markTokenUsed = `-- name: MarkTokenUsed
UPDATE refresh_tokens
SET used_at = now()
WHERE token = $1 AND used_at IS NULL
RETURNING id, staff_id, token, created_at, expires_at, used_at
`

const getRefreshToken = `-- name: GetRefreshToken
SELECT id, staff_id, token, created_at, expires_at, used_at
FROM refresh_tokens
WHERE token = $1
`

// GetAndMarkUsed spends the token. The update matches only unspent tokens, so
// concurrent refreshes with the same token can't both win: the loser falls
// through to the lookup and gets ErrRefreshTokenIsUsed.
func (r *RefreshTokenRepo) GetAndMarkUsed(ctx context.Context, tokenString string) (models.RefreshToken, error) {
	rows, _ := r.DB.Query(ctx, markTokenUsed, tokenString)
	token, err := pgx.CollectOneRow(rows, rowToRefreshToken)
	if err == nil {
		return token, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return token, fmt.Errorf("db error: %w", err)
	}

	// Nothing updated: the token is either unknown or already used
	rows, _ = r.DB.Query(ctx, getRefreshToken, tokenString)
	token, err = pgx.CollectOneRow(rows, rowToRefreshToken)

	switch {
	case err == nil:
		return token, apperrors.ErrRefreshTokenIsUsed
	case errors.Is(err, pgx.ErrNoRows):
		return token, apperrors.ErrRefreshTokenNotFound
	default:
		return token, fmt.Errorf("db error: %w", err)
	}
}

func rowToRefreshToken(row pgx.CollectableRow) (models.RefreshToken, error) {
	var t models.RefreshToken
	err := row.Scan(&t.ID, &t.StaffID, &t.Token, &t.CreatedAt, &t.ExpiresAt, &t.UsedAt)
	return t, err
}
