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

type ExternalRefRepo struct {
	DB DBTX
}

const getExternalRef = `-- name: GetExternalRef
SELECT entity_type, local_id, external_id, display_name, created_at
FROM external_refs
WHERE entity_type = $1 AND local_id = $2
`

func (r *ExternalRefRepo) Get(ctx context.Context, entityType string, localID uuid.UUID) (models.ExternalRef, error) {
	rows, _ := r.DB.Query(ctx, getExternalRef, entityType, localID)
	ref, err := pgx.CollectOneRow(rows, rowToExternalRef)

	switch {
	case err == nil:
		return ref, nil
	case errors.Is(err, pgx.ErrNoRows):
		return ref, apperrors.ErrExternalRefNotFound
	default:
		return ref, fmt.Errorf("db error: %w", err)
	}
}

// Save mapping, overwriting any previous one for the same local entity.
// Resolving twice is harmless so last writer wins.
const saveExternalRef = `-- name: SaveExternalRef
INSERT INTO external_refs (entity_type, local_id, external_id, display_name, created_at)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (entity_type, local_id)
DO UPDATE SET external_id = EXCLUDED.external_id, display_name = EXCLUDED.display_name
`

func (r *ExternalRefRepo) Save(ctx context.Context, ref models.ExternalRef) error {
	_, err := r.DB.Exec(ctx, saveExternalRef, ref.EntityType, ref.LocalID, ref.ExternalID, ref.DisplayName, ref.CreatedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

func rowToExternalRef(row pgx.CollectableRow) (models.ExternalRef, error) {
	var ref models.ExternalRef
	err := row.Scan(&ref.EntityType, &ref.LocalID, &ref.ExternalID, &ref.DisplayName, &ref.CreatedAt)
	return ref, err
}
