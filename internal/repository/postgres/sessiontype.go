package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/checkdesk/checkdesk/internal/apperrors"
	"github.com/checkdesk/checkdesk/internal/models"
)

type SessionTypeRepo struct {
	DB DBTX
}

const createSessionType = `-- name: CreateSessionType
INSERT INTO session_types (id, created_at, name, price, duration)
VALUES ($1, $2, $3, $4, $5)
RETURNING id, created_at, name, price, duration
`

func (r *SessionTypeRepo) Create(ctx context.Context, st models.SessionType) (models.SessionType, error) {
	rows, _ := r.DB.Query(ctx, createSessionType, st.ID, st.CreatedAt, st.Name, st.Price, st.Duration)
	created, err := pgx.CollectOneRow(rows, rowToSessionType)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgerrcode.IsIntegrityConstraintViolation(pgErr.Code) {
			return created, apperrors.ErrSessionTypeAlreadyExists
		}
		return created, fmt.Errorf("db error: %w", err)
	}

	return created, nil
}

const getSessionTypeByID = `-- name: GetSessionTypeByID
SELECT id, created_at, name, price, duration FROM session_types
WHERE id = $1
`

func (r *SessionTypeRepo) GetByID(ctx context.Context, id uuid.UUID) (models.SessionType, error) {
	rows, _ := r.DB.Query(ctx, getSessionTypeByID, id)
	return collectSessionType(rows)
}

const getSessionTypeByName = `-- name: GetSessionTypeByName
SELECT id, created_at, name, price, duration FROM session_types
WHERE name = $1
`

func (r *SessionTypeRepo) GetByName(ctx context.Context, name string) (models.SessionType, error) {
	rows, _ := r.DB.Query(ctx, getSessionTypeByName, name)
	return collectSessionType(rows)
}

const listSessionTypes = `-- name: ListSessionTypes
SELECT id, created_at, name, price, duration FROM session_types
ORDER BY name
`

func (r *SessionTypeRepo) List(ctx context.Context) ([]models.SessionType, error) {
	rows, _ := r.DB.Query(ctx, listSessionTypes)
	types, err := pgx.CollectRows(rows, rowToSessionType)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return types, nil
}

const deleteSessionType = `-- name: DeleteSessionType
DELETE FROM session_types
WHERE id = $1
`

func (r *SessionTypeRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.DB.Exec(ctx, deleteSessionType, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrSessionTypeNotFound
	}

	return nil
}

func collectSessionType(rows pgx.Rows) (models.SessionType, error) {
	st, err := pgx.CollectOneRow(rows, rowToSessionType)

	switch {
	case err == nil:
		return st, nil
	case errors.Is(err, pgx.ErrNoRows):
		return st, apperrors.ErrSessionTypeNotFound
	default:
		return st, fmt.Errorf("db error: %w", err)
	}
}

func rowToSessionType(row pgx.CollectableRow) (models.SessionType, error) {
	var st models.SessionType
	err := row.Scan(&st.ID, &st.CreatedAt, &st.Name, &st.Price, &st.Duration)
	return st, err
}
