package postgres

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/checkdesk/checkdesk/internal/apperrors"
	"github.com/checkdesk/checkdesk/internal/models"
	"github.com/checkdesk/checkdesk/internal/testutil"
)

func mustParseTime(value string) time.Time {
	dt, err := time.Parse("2006-01-02 15:04:05Z07:00", value)
	if err != nil {
		panic(err)
	}
	return dt
}

func newTestCustomer() models.Customer {
	return models.Customer{
		ID:           uuid.New(),
		CreatedAt:    mustParseTime("2024-01-01 19:00:01Z"),
		FirstName:    "Jane",
		LastName:     "Doe",
		Email:        "jane.doe@example.com",
		Phone:        "+1 555 0100",
		Address:      "12 Main st",
		CustomerType: models.CustomerTypeInPerson,
		QRCodeValue:  uuid.NewString(),
	}
}

func Test_CustomerRepo(t *testing.T) {
	t.Parallel() // It's ok to run in parallel with other tests, but not with subtests

	pg := testutil.StartPostgresContainer(t)
	t.Cleanup(pg.Terminate)

	t.Run("create customer ok", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			repo := CustomerRepo{DB: tx}
			customer := newTestCustomer()

			got, err := repo.Create(t.Context(), customer)

			require.NoError(t, err)
			require.Equal(t, customer.ID, got.ID)
			require.Equal(t, customer.Email, got.Email)
			require.Equal(t, customer.QRCodeValue, got.QRCodeValue)
			require.Equal(t, models.CustomerTypeInPerson, got.CustomerType)
			require.WithinDuration(t, customer.CreatedAt, got.CreatedAt, time.Microsecond)
		})
	})

	t.Run("create customer with duplicated email fails", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			repo := CustomerRepo{DB: tx}
			customer := newTestCustomer()
			_, err := repo.Create(t.Context(), customer)
			require.NoError(t, err)

			duplicate := newTestCustomer()
			duplicate.ID = uuid.New()
			duplicate.QRCodeValue = uuid.NewString()

			_, err = repo.Create(t.Context(), duplicate)

			require.Error(t, err)
			assert.ErrorIs(t, err, apperrors.ErrCustomerAlreadyExists)
		})
	})

	t.Run("get by qr code", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			repo := CustomerRepo{DB: tx}
			customer := newTestCustomer()
			_, err := repo.Create(t.Context(), customer)
			require.NoError(t, err)

			got, err := repo.GetByQRCode(t.Context(), customer.QRCodeValue)

			require.NoError(t, err)
			require.Equal(t, customer.ID, got.ID)
		})
	})

	t.Run("get unknown customer fails", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			repo := CustomerRepo{DB: tx}

			_, err := repo.GetByID(t.Context(), uuid.New())
			require.ErrorIs(t, err, apperrors.ErrCustomerNotFound)

			_, err = repo.GetByQRCode(t.Context(), "no-such-pass")
			require.ErrorIs(t, err, apperrors.ErrCustomerNotFound)
		})
	})

	t.Run("update customer", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			repo := CustomerRepo{DB: tx}
			customer := newTestCustomer()
			_, err := repo.Create(t.Context(), customer)
			require.NoError(t, err)

			customer.Phone = "+1 555 0101"
			customer.CustomerType = models.CustomerTypeRemote

			got, err := repo.Update(t.Context(), customer)

			require.NoError(t, err)
			require.Equal(t, "+1 555 0101", got.Phone)
			require.Equal(t, models.CustomerTypeRemote, got.CustomerType)
			require.Equal(t, customer.QRCodeValue, got.QRCodeValue, "QR pass must survive updates")
		})
	})

	t.Run("delete customer", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			repo := CustomerRepo{DB: tx}
			customer := newTestCustomer()
			_, err := repo.Create(t.Context(), customer)
			require.NoError(t, err)

			err = repo.Delete(t.Context(), customer.ID)
			require.NoError(t, err)

			_, err = repo.GetByID(t.Context(), customer.ID)
			require.ErrorIs(t, err, apperrors.ErrCustomerNotFound)

			err = repo.Delete(t.Context(), customer.ID)
			require.ErrorIs(t, err, apperrors.ErrCustomerNotFound, "second delete must report not found")
		})
	})

	t.Run("list customers", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			repo := CustomerRepo{DB: tx}

			first := newTestCustomer()
			second := newTestCustomer()
			second.Email = "john.doe@example.com"
			second.QRCodeValue = uuid.NewString()
			second.ID = uuid.New()

			_, err := repo.Create(t.Context(), first)
			require.NoError(t, err)
			_, err = repo.Create(t.Context(), second)
			require.NoError(t, err)

			got, err := repo.List(t.Context())

			require.NoError(t, err)
			assert.Len(t, got, 2)
		})
	})
}
