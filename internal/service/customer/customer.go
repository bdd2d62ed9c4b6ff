package customer

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/checkdesk/checkdesk/internal/logger"
	"github.com/checkdesk/checkdesk/internal/models"
	"github.com/checkdesk/checkdesk/internal/repository"
)

// PassSender delivers the QR pass to the customer, usually by email
type PassSender interface {
	SendPass(ctx context.Context, customer models.Customer) error
}

type CustomerService struct {
	storage repository.Storage
	sender  PassSender
	logger  logger.Logger
}

func NewService(storage repository.Storage, sender PassSender, l logger.Logger) *CustomerService {
	return &CustomerService{
		storage: storage,
		sender:  sender,
		logger:  l,
	}
}

type RegisterInput struct {
	FirstName    string
	LastName     string
	Email        string
	Phone        string
	Address      string
	CustomerType string
}

// Register creates the customer with a fresh QR pass value and sends the
// pass by email. Mail failures are logged only: the registration stands.
func (s *CustomerService) Register(ctx context.Context, in RegisterInput) (models.Customer, error) {
	customerType := in.CustomerType
	if customerType == "" {
		customerType = models.CustomerTypeInPerson
	}

	customer, err := s.storage.Customer().Create(ctx, models.Customer{
		ID:           uuid.New(),
		CreatedAt:    time.Now(),
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Email:        in.Email,
		Phone:        in.Phone,
		Address:      in.Address,
		CustomerType: customerType,
		QRCodeValue:  uuid.NewString(),
	})
	if err != nil {
		return customer, err
	}

	s.logger.Info("Customer registered", "customer_id", customer.ID, "name", customer.DisplayName())

	if s.sender != nil {
		if err := s.sender.SendPass(ctx, customer); err != nil {
			s.logger.Warn("Failed to send QR pass email", "customer_id", customer.ID, "error", err)
		}
	}

	return customer, nil
}

func (s *CustomerService) GetByID(ctx context.Context, id uuid.UUID) (models.Customer, error) {
	return s.storage.Customer().GetByID(ctx, id)
}

func (s *CustomerService) GetByQRCode(ctx context.Context, qrValue string) (models.Customer, error) {
	return s.storage.Customer().GetByQRCode(ctx, qrValue)
}

func (s *CustomerService) List(ctx context.Context) ([]models.Customer, error) {
	return s.storage.Customer().List(ctx)
}

type UpdateInput struct {
	FirstName    *string
	LastName     *string
	Email        *string
	Phone        *string
	Address      *string
	CustomerType *string
}

// Update changes the provided fields only
func (s *CustomerService) Update(ctx context.Context, id uuid.UUID, in UpdateInput) (models.Customer, error) {
	customer, err := s.storage.Customer().GetByID(ctx, id)
	if err != nil {
		return customer, err
	}

	setString := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	setString(&customer.FirstName, in.FirstName)
	setString(&customer.LastName, in.LastName)
	setString(&customer.Email, in.Email)
	setString(&customer.Phone, in.Phone)
	setString(&customer.Address, in.Address)
	setString(&customer.CustomerType, in.CustomerType)

	return s.storage.Customer().Update(ctx, customer)
}

func (s *CustomerService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.storage.Customer().Delete(ctx, id)
}

// SendPass re-sends the QR pass for an existing customer
func (s *CustomerService) SendPass(ctx context.Context, id uuid.UUID) error {
	if s.sender == nil {
		return fmt.Errorf("mail delivery is not configured")
	}

	customer, err := s.storage.Customer().GetByID(ctx, id)
	if err != nil {
		return err
	}

	return s.sender.SendPass(ctx, customer)
}
