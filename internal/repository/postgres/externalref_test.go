package postgres

import (
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/checkdesk/checkdesk/internal/apperrors"
	"github.com/checkdesk/checkdesk/internal/models"
	"github.com/checkdesk/checkdesk/internal/testutil"
)

func Test_ExternalRefRepo(t *testing.T) {
	t.Parallel() // It's ok to run in parallel with other tests, but not with subtests

	pg := testutil.StartPostgresContainer(t)
	t.Cleanup(pg.Terminate)

	t.Run("save and get mapping", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			repo := ExternalRefRepo{DB: tx}
			ref := models.ExternalRef{
				EntityType:  models.ExternalEntityCustomer,
				LocalID:     uuid.New(),
				ExternalID:  "58",
				DisplayName: "Jane Doe",
			}

			err := repo.Save(t.Context(), ref)
			require.NoError(t, err)

			got, err := repo.Get(t.Context(), models.ExternalEntityCustomer, ref.LocalID)

			require.NoError(t, err)
			assert.Equal(t, "58", got.ExternalID)
			assert.Equal(t, "Jane Doe", got.DisplayName)
		})
	})

	t.Run("save overwrites previous mapping", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			repo := ExternalRefRepo{DB: tx}
			ref := models.ExternalRef{
				EntityType:  models.ExternalEntityItem,
				LocalID:     uuid.New(),
				ExternalID:  "11",
				DisplayName: "Piano Lesson",
			}
			require.NoError(t, repo.Save(t.Context(), ref))

			ref.ExternalID = "12"
			require.NoError(t, repo.Save(t.Context(), ref))

			got, err := repo.Get(t.Context(), models.ExternalEntityItem, ref.LocalID)

			require.NoError(t, err)
			assert.Equal(t, "12", got.ExternalID)
		})
	})

	t.Run("same local id may map to both entity types", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			repo := ExternalRefRepo{DB: tx}
			localID := uuid.New()

			require.NoError(t, repo.Save(t.Context(), models.ExternalRef{
				EntityType: models.ExternalEntityCustomer, LocalID: localID, ExternalID: "1",
			}))
			require.NoError(t, repo.Save(t.Context(), models.ExternalRef{
				EntityType: models.ExternalEntityItem, LocalID: localID, ExternalID: "2",
			}))

			customer, err := repo.Get(t.Context(), models.ExternalEntityCustomer, localID)
			require.NoError(t, err)
			item, err := repo.Get(t.Context(), models.ExternalEntityItem, localID)
			require.NoError(t, err)

			assert.Equal(t, "1", customer.ExternalID)
			assert.Equal(t, "2", item.ExternalID)
		})
	})

	t.Run("get unknown mapping fails", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			repo := ExternalRefRepo{DB: tx}

			_, err := repo.Get(t.Context(), models.ExternalEntityCustomer, uuid.New())

			require.ErrorIs(t, err, apperrors.ErrExternalRefNotFound)
		})
	})
}
