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

type StaffRepo struct {
	DB DBTX
}

const createStaff = `-- name: CreateStaff
INSERT INTO staff (username, password_hash)
VALUES ($1, $2)
RETURNING id, created_at, username, password_hash
`

func (r *StaffRepo) Create(ctx context.Context, username string, hashedPassword string) (models.Staff, error) {
	rows, _ := r.DB.Query(ctx, createStaff, username, hashedPassword)
	staff, err := pgx.CollectOneRow(rows, rowToStaff)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgerrcode.IsIntegrityConstraintViolation(pgErr.Code) {
			return staff, apperrors.ErrStaffAlreadyExists
		}
		return staff, fmt.Errorf("db error: %w", err)
	}

	return staff, nil
}

const getStaffByID = `-- name: GetStaffByID
SELECT id, created_at, username, password_hash FROM staff
WHERE id = $1
`

func (r *StaffRepo) GetByID(ctx context.Context, id uuid.UUID) (models.Staff, error) {
	rows, _ := r.DB.Query(ctx, getStaffByID, id)
	return collectStaff(rows)
}

const getStaffByUsername = `-- name: GetStaffByUsername
SELECT id, created_at, username, password_hash FROM staff
WHERE username = $1
`

func (r *StaffRepo) GetByUsername(ctx context.Context, username string) (models.Staff, error) {
	rows, _ := r.DB.Query(ctx, getStaffByUsername, username)
	return collectStaff(rows)
}

func collectStaff(rows pgx.Rows) (models.Staff, error) {
	staff, err := pgx.CollectOneRow(rows, rowToStaff)

	switch {
	case err == nil:
		return staff, nil
	case errors.Is(err, pgx.ErrNoRows):
		return staff, apperrors.ErrStaffNotFound
	default:
		return staff, fmt.Errorf("db error: %w", err)
	}
}

func rowToStaff(row pgx.CollectableRow) (models.Staff, error) {
	var s models.Staff
	err := row.Scan(&s.ID, &s.CreatedAt, &s.Username, &s.HashedPassword)
	return s, err
}
