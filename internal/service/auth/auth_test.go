package auth

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/checkdesk/checkdesk/internal/apperrors"
	"github.com/checkdesk/checkdesk/internal/repository/postgres"
	"github.com/checkdesk/checkdesk/internal/testutil"
)

func Test_AuthService(t *testing.T) {
	t.Parallel() // It's ok to run in parallel with other tests, but not with subtests

	pg := testutil.StartPostgresContainer(t)
	t.Cleanup(pg.Terminate)
	storage := postgres.NewStorage(pg.Pool)

	service, err := NewService(Config{SecretKey: "test-secret"}, storage)
	require.NoError(t, err)

	t.Run("empty secret key is rejected", func(t *testing.T) {
		_, err := NewService(Config{}, storage)
		require.Error(t, err)
	})

	t.Run("create staff and login", func(t *testing.T) {
		_, err := service.CreateStaff(t.Context(), "front-desk", "correct horse battery staple")
		require.NoError(t, err)

		pair, err := service.Login(t.Context(), "front-desk", "correct horse battery staple")

		require.NoError(t, err)
		assert.NotEmpty(t, pair.Access.Value)
		assert.NotEmpty(t, pair.Refresh.Value)
		assert.True(t, pair.Refresh.ExpiresAt.After(pair.Access.ExpiresAt), "refresh must outlive access")
	})

	t.Run("wrong password looks like unknown user", func(t *testing.T) {
		_, err := service.CreateStaff(t.Context(), "manager", "real-password")
		require.NoError(t, err)

		_, err = service.Login(t.Context(), "manager", "guessed-password")
		require.ErrorIs(t, err, apperrors.ErrStaffNotFound)

		_, err = service.Login(t.Context(), "nobody", "real-password")
		require.ErrorIs(t, err, apperrors.ErrStaffNotFound)
	})

	t.Run("access token authenticates requests", func(t *testing.T) {
		created, err := service.CreateStaff(t.Context(), "reception", "password-123")
		require.NoError(t, err)
		pair, err := service.Login(t.Context(), "reception", "password-123")
		require.NoError(t, err)

		req, _ := http.NewRequest(http.MethodGet, "/api/customers", nil)
		req.Header.Set("Authorization", "Bearer "+pair.Access.Value)

		staff, err := service.Auth(t.Context(), req)

		require.NoError(t, err)
		assert.Equal(t, created.ID, staff.ID)
		assert.Equal(t, "reception", staff.Username)
	})

	t.Run("request without bearer token is rejected", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodGet, "/api/customers", nil)

		_, err := service.Auth(t.Context(), req)
		require.Error(t, err)

		req.Header.Set("Authorization", "Bearer not-a-jwt")
		_, err = service.Auth(t.Context(), req)
		require.Error(t, err)
	})

	t.Run("refresh rotates the pair", func(t *testing.T) {
		_, err := service.CreateStaff(t.Context(), "owner", "password-456")
		require.NoError(t, err)
		pair, err := service.Login(t.Context(), "owner", "password-456")
		require.NoError(t, err)

		fresh, err := service.RefreshPair(t.Context(), pair.Refresh.Value)

		require.NoError(t, err)
		assert.NotEqual(t, pair.Refresh.Value, fresh.Refresh.Value, "refresh token must rotate")

		_, err = service.RefreshPair(t.Context(), pair.Refresh.Value)
		require.Error(t, err, "spent refresh token must not work twice")
	})

	t.Run("duplicated username is rejected", func(t *testing.T) {
		_, err := service.CreateStaff(t.Context(), "duplicated", "password-789")
		require.NoError(t, err)

		_, err = service.CreateStaff(t.Context(), "duplicated", "password-789")
		require.ErrorIs(t, err, apperrors.ErrStaffAlreadyExists)
	})
}

func Test_BcryptHasher(t *testing.T) {
	hasher := BcryptHasher{}

	t.Run("hash and compare", func(t *testing.T) {
		hash, err := hasher.Hash("password")
		require.NoError(t, err)

		require.NoError(t, hasher.Compare(hash, "password"))
		require.Error(t, hasher.Compare(hash, "other-password"))
	})

	t.Run("long passwords are fine", func(t *testing.T) {
		long := make([]byte, 200)
		for i := range long {
			long[i] = 'a'
		}

		hash, err := hasher.Hash(string(long))
		require.NoError(t, err)
		require.NoError(t, hasher.Compare(hash, string(long)))
	})
}
