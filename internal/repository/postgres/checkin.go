package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/checkdesk/checkdesk/internal/apperrors"
	"github.com/checkdesk/checkdesk/internal/models"
	"github.com/checkdesk/checkdesk/internal/repository"
)

type CheckInRepo struct {
	DB DBTX
}

const createCheckIn = `-- name: CreateCheckIn
INSERT INTO check_ins (id, customer_id, checked_in_at, session_type, notes, is_manual, invoice_id, billing_status)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING id, customer_id, checked_in_at, session_type, notes, is_manual, invoice_id, billing_status
`

func (r *CheckInRepo) Create(ctx context.Context, c models.CheckIn) (models.CheckIn, error) {
	rows, _ := r.DB.Query(ctx, createCheckIn,
		c.ID, c.CustomerID, c.CheckedInAt, c.SessionType, c.Notes, c.IsManual, c.InvoiceID, c.BillingStatus)
	checkIn, err := pgx.CollectOneRow(rows, rowToCheckIn)
	if err != nil {
		return checkIn, fmt.Errorf("db error: %w", err)
	}

	return checkIn, nil
}

const getCheckInByID = `-- name: GetCheckInByID
SELECT id, customer_id, checked_in_at, session_type, notes, is_manual, invoice_id, billing_status
FROM check_ins
WHERE id = $1
`

func (r *CheckInRepo) GetByID(ctx context.Context, id uuid.UUID) (models.CheckIn, error) {
	rows, _ := r.DB.Query(ctx, getCheckInByID, id)
	checkIn, err := pgx.CollectOneRow(rows, rowToCheckIn)

	switch {
	case err == nil:
		return checkIn, nil
	case errors.Is(err, pgx.ErrNoRows):
		return checkIn, apperrors.ErrCheckInNotFound
	default:
		return checkIn, fmt.Errorf("db error: %w", err)
	}
}

func (r *CheckInRepo) List(ctx context.Context, opts repository.ListCheckInsOpts) ([]models.CheckIn, error) {
	query := strings.Builder{}
	query.WriteString(`
	SELECT id, customer_id, checked_in_at, session_type, notes, is_manual, invoice_id, billing_status
	FROM check_ins
	WHERE TRUE`)

	args := []any{}
	if opts.CustomerID != uuid.Nil {
		args = append(args, opts.CustomerID)
		fmt.Fprintf(&query, " AND customer_id = $%d", len(args))
	}
	if len(opts.BillingStatuses) > 0 {
		args = append(args, opts.BillingStatuses)
		fmt.Fprintf(&query, " AND billing_status = ANY($%d)", len(args))
	}

	query.WriteString(" ORDER BY checked_in_at DESC")

	if opts.Limit > 0 {
		args = append(args, opts.Limit)
		fmt.Fprintf(&query, " LIMIT $%d", len(args))
	}

	rows, _ := r.DB.Query(ctx, query.String(), args...)
	checkIns, err := pgx.CollectRows(rows, rowToCheckIn)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return checkIns, nil
}

const setBillingResult = `-- name: SetBillingResult
UPDATE check_ins
SET invoice_id = $2, billing_status = $3
WHERE id = $1
RETURNING id, customer_id, checked_in_at, session_type, notes, is_manual, invoice_id, billing_status
`

func (r *CheckInRepo) SetBillingResult(ctx context.Context, id uuid.UUID, invoiceID *string, status string) (models.CheckIn, error) {
	rows, _ := r.DB.Query(ctx, setBillingResult, id, invoiceID, status)
	checkIn, err := pgx.CollectOneRow(rows, rowToCheckIn)

	switch {
	case err == nil:
		return checkIn, nil
	case errors.Is(err, pgx.ErrNoRows):
		return checkIn, apperrors.ErrCheckInNotFound
	default:
		return checkIn, fmt.Errorf("db error: %w", err)
	}
}

func rowToCheckIn(row pgx.CollectableRow) (models.CheckIn, error) {
	var c models.CheckIn
	err := row.Scan(&c.ID, &c.CustomerID, &c.CheckedInAt, &c.SessionType, &c.Notes, &c.IsManual, &c.InvoiceID, &c.BillingStatus)
	return c, err
}
