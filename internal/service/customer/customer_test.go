package customer

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"

	"github.com/checkdesk/checkdesk/internal/apperrors"
	"github.com/checkdesk/checkdesk/internal/logger"
	"github.com/checkdesk/checkdesk/internal/models"
	"github.com/checkdesk/checkdesk/internal/repository/postgres"
	"github.com/checkdesk/checkdesk/internal/testutil"
)

type stubSender struct {
	err  error
	sent []models.Customer
}

func (s *stubSender) SendPass(ctx context.Context, customer models.Customer) error {
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, customer)
	return nil
}

func Test_CustomerService(t *testing.T) {
	container := testutil.StartPostgresContainer(t)
	defer container.Terminate()

	l := logger.NewNoOpLogger()

	t.Run("register generates pass and sends it", func(t *testing.T) {
		testutil.WithTx(container.Pool, t, func(tx pgx.Tx) {
			sender := &stubSender{}
			service := NewService(postgres.NewStorage(tx), sender, l)

			customer, err := service.Register(t.Context(), RegisterInput{
				FirstName: "Jane",
				LastName:  "Doe",
				Email:     "jane@example.com",
			})

			require.NoError(t, err)
			require.NotEmpty(t, customer.QRCodeValue, "registration should mint a QR pass value")
			require.Equal(t, models.CustomerTypeInPerson, customer.CustomerType, "in-person is the default type")

			require.Len(t, sender.sent, 1, "pass should be sent once")
			require.Equal(t, customer.ID, sender.sent[0].ID)
		})
	})

	t.Run("mail failure does not fail the registration", func(t *testing.T) {
		testutil.WithTx(container.Pool, t, func(tx pgx.Tx) {
			sender := &stubSender{err: errors.New("smtp down")}
			service := NewService(postgres.NewStorage(tx), sender, l)

			customer, err := service.Register(t.Context(), RegisterInput{
				FirstName: "Jane",
				LastName:  "Doe",
				Email:     "jane@example.com",
			})

			require.NoError(t, err, "registration should stand even when mail fails")

			got, err := service.GetByQRCode(t.Context(), customer.QRCodeValue)
			require.NoError(t, err)
			require.Equal(t, customer.ID, got.ID)
		})
	})

	t.Run("register without sender works", func(t *testing.T) {
		testutil.WithTx(container.Pool, t, func(tx pgx.Tx) {
			service := NewService(postgres.NewStorage(tx), nil, l)

			_, err := service.Register(t.Context(), RegisterInput{
				FirstName: "Jane",
				LastName:  "Doe",
				Email:     "jane@example.com",
			})
			require.NoError(t, err)
		})
	})

	t.Run("send pass again for existing customer", func(t *testing.T) {
		testutil.WithTx(container.Pool, t, func(tx pgx.Tx) {
			sender := &stubSender{}
			service := NewService(postgres.NewStorage(tx), sender, l)

			customer, err := service.Register(t.Context(), RegisterInput{
				FirstName: "Jane",
				LastName:  "Doe",
				Email:     "jane@example.com",
			})
			require.NoError(t, err)

			require.NoError(t, service.SendPass(t.Context(), customer.ID))
			require.Len(t, sender.sent, 2, "registration plus re-send")
		})
	})

	t.Run("send pass without sender is an error", func(t *testing.T) {
		testutil.WithTx(container.Pool, t, func(tx pgx.Tx) {
			service := NewService(postgres.NewStorage(tx), nil, l)

			customer, err := service.Register(t.Context(), RegisterInput{
				FirstName: "Jane",
				LastName:  "Doe",
				Email:     "jane@example.com",
			})
			require.NoError(t, err)

			require.Error(t, service.SendPass(t.Context(), customer.ID))
		})
	})

	t.Run("update changes provided fields only", func(t *testing.T) {
		testutil.WithTx(container.Pool, t, func(tx pgx.Tx) {
			service := NewService(postgres.NewStorage(tx), nil, l)

			customer, err := service.Register(t.Context(), RegisterInput{
				FirstName: "Jane",
				LastName:  "Doe",
				Email:     "jane@example.com",
				Phone:     "+1 555 0100",
			})
			require.NoError(t, err)

			phone := "+1 555 0199"
			remote := models.CustomerTypeRemote
			updated, err := service.Update(t.Context(), customer.ID, UpdateInput{
				Phone:        &phone,
				CustomerType: &remote,
			})

			require.NoError(t, err)
			require.Equal(t, "+1 555 0199", updated.Phone)
			require.Equal(t, models.CustomerTypeRemote, updated.CustomerType)
			require.Equal(t, "Jane", updated.FirstName, "untouched fields should stay")
			require.Equal(t, customer.QRCodeValue, updated.QRCodeValue, "QR pass should survive updates")
		})
	})

	t.Run("delete removes the customer", func(t *testing.T) {
		testutil.WithTx(container.Pool, t, func(tx pgx.Tx) {
			service := NewService(postgres.NewStorage(tx), nil, l)

			customer, err := service.Register(t.Context(), RegisterInput{
				FirstName: "Jane",
				LastName:  "Doe",
				Email:     "jane@example.com",
			})
			require.NoError(t, err)

			require.NoError(t, service.Delete(t.Context(), customer.ID))

			_, err = service.GetByID(t.Context(), customer.ID)
			require.ErrorIs(t, err, apperrors.ErrCustomerNotFound)
		})
	})
}
