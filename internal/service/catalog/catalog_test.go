package catalog

import (
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/checkdesk/checkdesk/internal/apperrors"
	"github.com/checkdesk/checkdesk/internal/logger"
	"github.com/checkdesk/checkdesk/internal/repository/postgres"
	"github.com/checkdesk/checkdesk/internal/testutil"
)

func Test_CatalogService(t *testing.T) {
	container := testutil.StartPostgresContainer(t)
	defer container.Terminate()

	l := logger.NewNoOpLogger()

	t.Run("create defaults duration to an hour", func(t *testing.T) {
		testutil.WithTx(container.Pool, t, func(tx pgx.Tx) {
			service := NewService(postgres.NewStorage(tx), l)

			created, err := service.Create(t.Context(), SessionTypeInput{
				Name:  "Piano Lesson",
				Price: decimal.RequireFromString("35.00"),
			})

			require.NoError(t, err)
			require.Equal(t, 60, created.Duration)
			require.True(t, created.Price.Equal(decimal.RequireFromString("35.00")))
		})
	})

	t.Run("duplicate name is rejected", func(t *testing.T) {
		testutil.WithTx(container.Pool, t, func(tx pgx.Tx) {
			service := NewService(postgres.NewStorage(tx), l)

			_, err := service.Create(t.Context(), SessionTypeInput{
				Name:  "Piano Lesson",
				Price: decimal.RequireFromString("35.00"),
			})
			require.NoError(t, err)

			_, err = service.Create(t.Context(), SessionTypeInput{
				Name:  "Piano Lesson",
				Price: decimal.RequireFromString("40.00"),
			})
			require.ErrorIs(t, err, apperrors.ErrSessionTypeAlreadyExists)
		})
	})

	t.Run("import skips existing names", func(t *testing.T) {
		testutil.WithTx(container.Pool, t, func(tx pgx.Tx) {
			service := NewService(postgres.NewStorage(tx), l)

			_, err := service.Create(t.Context(), SessionTypeInput{
				Name:  "Piano Lesson",
				Price: decimal.RequireFromString("35.00"),
			})
			require.NoError(t, err)

			created, err := service.Import(t.Context(), []SessionTypeInput{
				{Name: "Piano Lesson", Price: decimal.RequireFromString("35.00")},
				{Name: "Math Tutoring", Price: decimal.RequireFromString("45.00"), Duration: 90},
				{Name: "Guitar Lesson", Price: decimal.RequireFromString("30.00")},
			})

			require.NoError(t, err)
			require.Equal(t, 2, created, "existing name should be skipped, not fail the import")

			all, err := service.List(t.Context())
			require.NoError(t, err)
			require.Len(t, all, 3)
		})
	})
}
