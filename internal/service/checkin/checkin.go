package checkin

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/checkdesk/checkdesk/internal/logger"
	"github.com/checkdesk/checkdesk/internal/models"
	"github.com/checkdesk/checkdesk/internal/repository"
)

// biller is the billing side the orchestrator hands completed check-ins to
type biller interface {
	ProcessCheckIn(ctx context.Context, checkIn models.CheckIn) (models.CheckIn, error)
}

type CheckInService struct {
	storage repository.Storage
	biller  biller
	logger  logger.Logger
	now     func() time.Time
}

func NewService(storage repository.Storage, biller biller, l logger.Logger) *CheckInService {
	return &CheckInService{
		storage: storage,
		biller:  biller,
		logger:  l,
		now:     time.Now,
	}
}

// RecordInput describes one attendance event.
// ManualTime is set for staff-entered past sessions and becomes the
// check-in (and so the billing consolidation) date.
type RecordInput struct {
	QRCodeValue   string
	SessionTypeID uuid.UUID
	Notes         string
	ManualTime    *time.Time
}

// Record persists the check-in and then tries to bill it.
// Attendance is the source of truth: the check-in is stored first and any
// billing failure leaves it recorded with no invoice id. Only local
// validation and storage errors are returned.
func (s *CheckInService) Record(ctx context.Context, in RecordInput) (models.CheckIn, error) {
	customer, err := s.storage.Customer().GetByQRCode(ctx, in.QRCodeValue)
	if err != nil {
		return models.CheckIn{}, fmt.Errorf("looking up customer by QR code: %w", err)
	}

	sessionType, err := s.storage.SessionType().GetByID(ctx, in.SessionTypeID)
	if err != nil {
		return models.CheckIn{}, fmt.Errorf("looking up session type: %w", err)
	}

	checkedInAt := s.now()
	isManual := false
	if in.ManualTime != nil {
		checkedInAt = *in.ManualTime
		isManual = true
	}

	checkIn, err := s.storage.CheckIn().Create(ctx, models.CheckIn{
		ID:            uuid.New(),
		CustomerID:    customer.ID,
		SessionType:   sessionType.Name,
		CheckedInAt:   checkedInAt,
		Notes:         in.Notes,
		IsManual:      isManual,
		InvoiceID:     nil,
		BillingStatus: models.BillingStatusPending,
	})
	if err != nil {
		return checkIn, fmt.Errorf("storing check-in: %w", err)
	}

	s.logger.Info("Check-in recorded",
		"check_in_id", checkIn.ID, "customer", customer.DisplayName(), "session_type", sessionType.Name)

	// Best effort: billing must never block attendance recording
	billed, err := s.biller.ProcessCheckIn(ctx, checkIn)
	if err != nil {
		s.logger.Warn("Billing did not complete for check-in", "check_in_id", checkIn.ID, "error", err)
		return checkIn, nil
	}

	return billed, nil
}

// List returns check-ins, newest first
func (s *CheckInService) List(ctx context.Context, opts repository.ListCheckInsOpts) ([]models.CheckIn, error) {
	return s.storage.CheckIn().List(ctx, opts)
}
