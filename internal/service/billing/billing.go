package billing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/checkdesk/checkdesk/internal/apperrors"
	"github.com/checkdesk/checkdesk/internal/logger"
	"github.com/checkdesk/checkdesk/internal/models"
	"github.com/checkdesk/checkdesk/internal/quickbooks"
	"github.com/checkdesk/checkdesk/internal/repository"
)

// Client side of the accounting API the billing service needs
type AccountingClient interface {
	Query(ctx context.Context, query string) (quickbooks.QueryResponse, error)
	CreateCustomer(ctx context.Context, customer quickbooks.Customer) (quickbooks.Customer, error)
	CreateItem(ctx context.Context, item quickbooks.Item) (quickbooks.Item, error)
	CreateInvoice(ctx context.Context, invoice quickbooks.Invoice) (quickbooks.Invoice, error)
	UpdateInvoice(ctx context.Context, invoice quickbooks.Invoice) (quickbooks.Invoice, error)
}

// Service consolidates check-ins onto one invoice per customer per calendar
// month in the external accounting service
type Service struct {
	client  AccountingClient
	storage repository.Storage
	locks   *keyedMutex
	logger  logger.Logger
	now     func() time.Time
}

func NewService(client AccountingClient, storage repository.Storage, l logger.Logger) *Service {
	return &Service{
		client:  client,
		storage: storage,
		locks:   newKeyedMutex(),
		logger:  l,
		now:     time.Now,
	}
}

// ProcessCheckIn bills one check-in and records the outcome on it.
// Outcomes:
//   - invoice created or extended: status BILLED, invoice id set
//   - accounting service not connected: status SKIPPED, no error
//   - transient remote failure: status left PENDING for the retry processor
//   - terminal remote failure: status FAILED
//
// Only unexpected local/storage errors are returned.
func (s *Service) ProcessCheckIn(ctx context.Context, checkIn models.CheckIn) (models.CheckIn, error) {
	customer, err := s.storage.Customer().GetByID(ctx, checkIn.CustomerID)
	if err != nil {
		return checkIn, fmt.Errorf("loading customer: %w", err)
	}

	// Check-ins reference session types by name, not by id
	st, err := s.storage.SessionType().GetByName(ctx, checkIn.SessionType)
	if err != nil {
		if errors.Is(err, apperrors.ErrSessionTypeNotFound) {
			s.logger.Error("Check-in references unknown session type", "check_in_id", checkIn.ID, "session_type", checkIn.SessionType)
			return s.storage.CheckIn().SetBillingResult(ctx, checkIn.ID, nil, models.BillingStatusFailed)
		}
		return checkIn, fmt.Errorf("loading session type: %w", err)
	}

	invoiceID, err := s.Bill(ctx, customer, st, checkIn)

	switch {
	case err == nil:
		return s.storage.CheckIn().SetBillingResult(ctx, checkIn.ID, &invoiceID, models.BillingStatusBilled)

	case errors.Is(err, apperrors.ErrNotConnected):
		s.logger.Info("Accounting service not connected, skipping billing", "check_in_id", checkIn.ID)
		return s.storage.CheckIn().SetBillingResult(ctx, checkIn.ID, nil, models.BillingStatusSkipped)

	case quickbooks.IsTemporary(err):
		// Status stays PENDING so the background processor retries it later
		s.logger.Warn("Transient billing failure", "check_in_id", checkIn.ID, "error", err)
		return checkIn, err

	default:
		s.logger.Error("Billing failed", "check_in_id", checkIn.ID, "error", err)
		return s.storage.CheckIn().SetBillingResult(ctx, checkIn.ID, nil, models.BillingStatusFailed)
	}
}

// Bill runs the monthly consolidation for one check-in and returns the
// invoice id the session ended up on. The whole search-then-write sequence
// holds a per (customer, month) lock: concurrent check-ins would otherwise
// both miss the open invoice and create duplicates.
func (s *Service) Bill(ctx context.Context, customer models.Customer, st models.SessionType, checkIn models.CheckIn) (string, error) {
	unlock := s.locks.Lock(monthKey(customer, checkIn.CheckedInAt))
	defer unlock()

	customerRef, err := s.resolveCustomer(ctx, customer)
	if err != nil {
		return "", err
	}

	itemRef, err := s.resolveItem(ctx, st)
	if err != nil {
		return "", err
	}

	invoice, err := s.findOpenInvoice(ctx, customerRef, checkIn.CheckedInAt)
	if err != nil {
		return "", err
	}

	description := fmt.Sprintf("%s - Check-in %s on %s",
		st.Name, shortID(checkIn.ID), checkIn.CheckedInAt.Format(dateLayout))

	if invoice != nil {
		return s.appendLine(ctx, invoice, itemRef, st, description)
	}

	return s.createInvoice(ctx, customerRef, itemRef, st, checkIn.CheckedInAt, description)
}

func monthKey(customer models.Customer, date time.Time) string {
	return customer.ID.String() + "/" + date.Format("2006-01")
}

func shortID(id uuid.UUID) string {
	return id.String()[:8]
}
