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

type CustomerRepo struct {
	DB DBTX
}

const createCustomer = `-- name: CreateCustomer
INSERT INTO customers (id, created_at, first_name, last_name, email, phone, address, customer_type, qr_code_value)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
RETURNING id, created_at, first_name, last_name, email, phone, address, customer_type, qr_code_value
`

func (r *CustomerRepo) Create(ctx context.Context, c models.Customer) (models.Customer, error) {
	rows, _ := r.DB.Query(ctx, createCustomer,
		c.ID, c.CreatedAt, c.FirstName, c.LastName, c.Email, c.Phone, c.Address, c.CustomerType, c.QRCodeValue)
	customer, err := pgx.CollectOneRow(rows, rowToCustomer)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgerrcode.IsIntegrityConstraintViolation(pgErr.Code) {
			return customer, apperrors.ErrCustomerAlreadyExists
		}
		return customer, fmt.Errorf("db error: %w", err)
	}

	return customer, nil
}

const getCustomerByID = `-- name: GetCustomerByID
SELECT id, created_at, first_name, last_name, email, phone, address, customer_type, qr_code_value
FROM customers
WHERE id = $1
`

func (r *CustomerRepo) GetByID(ctx context.Context, id uuid.UUID) (models.Customer, error) {
	rows, _ := r.DB.Query(ctx, getCustomerByID, id)
	return collectCustomer(rows)
}

const getCustomerByQRCode = `-- name: GetCustomerByQRCode
SELECT id, created_at, first_name, last_name, email, phone, address, customer_type, qr_code_value
FROM customers
WHERE qr_code_value = $1
`

func (r *CustomerRepo) GetByQRCode(ctx context.Context, qrValue string) (models.Customer, error) {
	rows, _ := r.DB.Query(ctx, getCustomerByQRCode, qrValue)
	return collectCustomer(rows)
}

const listCustomers = `-- name: ListCustomers
SELECT id, created_at, first_name, last_name, email, phone, address, customer_type, qr_code_value
FROM customers
ORDER BY created_at
`

func (r *CustomerRepo) List(ctx context.Context) ([]models.Customer, error) {
	rows, _ := r.DB.Query(ctx, listCustomers)
	customers, err := pgx.CollectRows(rows, rowToCustomer)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return customers, nil
}

const updateCustomer = `-- name: UpdateCustomer
UPDATE customers
SET first_name = $2, last_name = $3, email = $4, phone = $5, address = $6, customer_type = $7
WHERE id = $1
RETURNING id, created_at, first_name, last_name, email, phone, address, customer_type, qr_code_value
`

func (r *CustomerRepo) Update(ctx context.Context, c models.Customer) (models.Customer, error) {
	rows, _ := r.DB.Query(ctx, updateCustomer,
		c.ID, c.FirstName, c.LastName, c.Email, c.Phone, c.Address, c.CustomerType)
	return collectCustomer(rows)
}

const deleteCustomer = `-- name: DeleteCustomer
DELETE FROM customers
WHERE id = $1
`

func (r *CustomerRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.DB.Exec(ctx, deleteCustomer, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrCustomerNotFound
	}

	return nil
}

func collectCustomer(rows pgx.Rows) (models.Customer, error) {
	customer, err := pgx.CollectOneRow(rows, rowToCustomer)

	switch {
	case err == nil:
		return customer, nil
	case errors.Is(err, pgx.ErrNoRows):
		return customer, apperrors.ErrCustomerNotFound
	default:
		return customer, fmt.Errorf("db error: %w", err)
	}
}

func rowToCustomer(row pgx.CollectableRow) (models.Customer, error) {
	var c models.Customer
	err := row.Scan(&c.ID, &c.CreatedAt, &c.FirstName, &c.LastName, &c.Email, &c.Phone, &c.Address, &c.CustomerType, &c.QRCodeValue)
	return c, err
}
