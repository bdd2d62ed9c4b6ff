package catalog

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/checkdesk/checkdesk/internal/apperrors"
	"github.com/checkdesk/checkdesk/internal/logger"
	"github.com/checkdesk/checkdesk/internal/models"
	"github.com/checkdesk/checkdesk/internal/repository"
)

const defaultDuration = 60 // minutes

// CatalogService manages the session types offered by the studio
type CatalogService struct {
	storage repository.Storage
	logger  logger.Logger
}

func NewService(storage repository.Storage, l logger.Logger) *CatalogService {
	return &CatalogService{storage: storage, logger: l}
}

type SessionTypeInput struct {
	Name     string
	Price    decimal.Decimal
	Duration int
}

func (s *CatalogService) Create(ctx context.Context, in SessionTypeInput) (models.SessionType, error) {
	duration := in.Duration
	if duration == 0 {
		duration = defaultDuration
	}

	return s.storage.SessionType().Create(ctx, models.SessionType{
		ID:        uuid.New(),
		CreatedAt: time.Now(),
		Name:      in.Name,
		Price:     in.Price,
		Duration:  duration,
	})
}

func (s *CatalogService) GetByID(ctx context.Context, id uuid.UUID) (models.SessionType, error) {
	return s.storage.SessionType().GetByID(ctx, id)
}

func (s *CatalogService) List(ctx context.Context) ([]models.SessionType, error) {
	return s.storage.SessionType().List(ctx)
}

func (s *CatalogService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.storage.SessionType().Delete(ctx, id)
}

// Import creates the given session types, skipping names that exist already.
// Returns how many were actually created.
func (s *CatalogService) Import(ctx context.Context, inputs []SessionTypeInput) (int, error) {
	created := 0
	for _, in := range inputs {
		_, err := s.Create(ctx, in)
		switch {
		case err == nil:
			created++
		case errors.Is(err, apperrors.ErrSessionTypeAlreadyExists):
			s.logger.Debug("Session type exists, skipping import", "name", in.Name)
		default:
			return created, err
		}
	}

	return created, nil
}
