package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/checkdesk/checkdesk/internal/models"
)

// Customer repository interface
type CustomerRepo interface {
	// Create customer
	// If customer with the email exists already has to return apperrors.ErrCustomerAlreadyExists
	Create(ctx context.Context, customer models.Customer) (models.Customer, error)

	// Get customer by id or by the value encoded into its QR pass
	// If customer not found must return apperrors.ErrCustomerNotFound
	GetByID(ctx context.Context, id uuid.UUID) (models.Customer, error)
	GetByQRCode(ctx context.Context, qrValue string) (models.Customer, error)

	List(ctx context.Context) ([]models.Customer, error)
	Update(ctx context.Context, customer models.Customer) (models.Customer, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// Session type repository interface
type SessionTypeRepo interface {
	// Create session type
	// If the name is taken already has to return apperrors.ErrSessionTypeAlreadyExists
	Create(ctx context.Context, st models.SessionType) (models.SessionType, error)

	GetByID(ctx context.Context, id uuid.UUID) (models.SessionType, error)
	GetByName(ctx context.Context, name string) (models.SessionType, error)
	List(ctx context.Context) ([]models.SessionType, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// Options to filter check-in listing
type ListCheckInsOpts struct {
	CustomerID      uuid.UUID // zero value means any customer
	BillingStatuses []string
	Limit           int
}

// Check-in repository interface
type CheckInRepo interface {
	Create(ctx context.Context, checkIn models.CheckIn) (models.CheckIn, error)
	GetByID(ctx context.Context, id uuid.UUID) (models.CheckIn, error)
	List(ctx context.Context, opts ListCheckInsOpts) ([]models.CheckIn, error)

	// Record the billing outcome for a check-in.
	// invoiceID may be nil when billing failed or was skipped.
	SetBillingResult(ctx context.Context, id uuid.UUID, invoiceID *string, status string) (models.CheckIn, error)
}

// External reference repository interface
// Local cache of (entity -> accounting service record) mappings
type ExternalRefRepo interface {
	// Get mapping, apperrors.ErrExternalRefNotFound when absent
	Get(ctx context.Context, entityType string, localID uuid.UUID) (models.ExternalRef, error)
	Save(ctx context.Context, ref models.ExternalRef) error
}

// Staff repository interface
type StaffRepo interface {
	// Create staff account
	// If username exists already has to return apperrors.ErrStaffAlreadyExists
	Create(ctx context.Context, username string, hashedPassword string) (models.Staff, error)

	GetByID(ctx context.Context, id uuid.UUID) (models.Staff, error)
	GetByUsername(ctx context.Context, username string) (models.Staff, error)
}

// RefreshToken repository interface
type RefreshTokenRepo interface {
	Save(ctx context.Context, token models.RefreshToken) error

	// Return the token and mark it used in one statement
	// If the token is already used must return apperrors.ErrRefreshTokenIsUsed
	// and must not overwrite the existing used_at
	GetAndMarkUsed(ctx context.Context, tokenString string) (models.RefreshToken, error)
}

// Storage combines all repositories and transaction support
type Storage interface {
	Customer() CustomerRepo
	SessionType() SessionTypeRepo
	CheckIn() CheckInRepo
	ExternalRef() ExternalRefRepo
	Staff() StaffRepo
	Refresh() RefreshTokenRepo

	// Run fn within a database transaction
	InTx(ctx context.Context, fn func(Storage) error) error
}
