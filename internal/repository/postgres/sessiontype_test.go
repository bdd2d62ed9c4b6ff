package postgres

import (
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/checkdesk/checkdesk/internal/apperrors"
	"github.com/checkdesk/checkdesk/internal/models"
	"github.com/checkdesk/checkdesk/internal/testutil"
)

func Test_SessionTypeRepo(t *testing.T) {
	t.Parallel() // It's ok to run in parallel with other tests, but not with subtests

	pg := testutil.StartPostgresContainer(t)
	t.Cleanup(pg.Terminate)

	newSessionType := func(name string, price string) models.SessionType {
		return models.SessionType{
			ID:        uuid.New(),
			CreatedAt: mustParseTime("2024-01-01 19:00:01Z"),
			Name:      name,
			Price:     decimal.RequireFromString(price),
			Duration:  60,
		}
	}

	t.Run("create session type ok", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			repo := SessionTypeRepo{DB: tx}

			got, err := repo.Create(t.Context(), newSessionType("Piano Lesson", "35.00"))

			require.NoError(t, err)
			assert.Equal(t, "Piano Lesson", got.Name)
			assert.True(t, got.Price.Equal(decimal.RequireFromString("35.00")), "price expected 35.00, got %s", got.Price)
			assert.Equal(t, 60, got.Duration)
		})
	})

	t.Run("create with duplicated name fails", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			repo := SessionTypeRepo{DB: tx}
			_, err := repo.Create(t.Context(), newSessionType("Math Tutoring", "45.00"))
			require.NoError(t, err)

			_, err = repo.Create(t.Context(), newSessionType("Math Tutoring", "50.00"))

			require.Error(t, err)
			assert.ErrorIs(t, err, apperrors.ErrSessionTypeAlreadyExists)
		})
	})

	t.Run("get by name", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			repo := SessionTypeRepo{DB: tx}
			created, err := repo.Create(t.Context(), newSessionType("Guitar Lesson", "40.00"))
			require.NoError(t, err)

			got, err := repo.GetByName(t.Context(), "Guitar Lesson")

			require.NoError(t, err)
			assert.Equal(t, created.ID, got.ID)

			_, err = repo.GetByName(t.Context(), "Drums Lesson")
			require.ErrorIs(t, err, apperrors.ErrSessionTypeNotFound)
		})
	})

	t.Run("delete session type", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			repo := SessionTypeRepo{DB: tx}
			created, err := repo.Create(t.Context(), newSessionType("Violin Lesson", "55.00"))
			require.NoError(t, err)

			require.NoError(t, repo.Delete(t.Context(), created.ID))

			_, err = repo.GetByID(t.Context(), created.ID)
			require.ErrorIs(t, err, apperrors.ErrSessionTypeNotFound)

			err = repo.Delete(t.Context(), created.ID)
			require.ErrorIs(t, err, apperrors.ErrSessionTypeNotFound, "second delete must report not found")
		})
	})
}
