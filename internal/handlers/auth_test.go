package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"

	"github.com/checkdesk/checkdesk/internal/handlers/middleware"
	"github.com/checkdesk/checkdesk/internal/logger"
	"github.com/checkdesk/checkdesk/internal/repository/postgres"
	"github.com/checkdesk/checkdesk/internal/service/auth"
	"github.com/checkdesk/checkdesk/internal/testutil"
)

func Test_AuthHandlers(t *testing.T) {
	container := testutil.StartPostgresContainer(t)
	defer container.Terminate()

	l := logger.NewNoOpLogger()

	// Wire the production auth service over a rolled-back transaction
	newServer := func(t *testing.T, tx pgx.Tx) *httptest.Server {
		t.Helper()

		storage := postgres.NewStorage(tx)
		authService, err := auth.NewService(auth.Config{SecretKey: "test-secret"}, storage)
		require.NoError(t, err, "should create auth service")

		staff, err := authService.CreateStaff(t.Context(), "reception", "front-desk-pwd")
		require.NoError(t, err, "should create staff")
		require.Equal(t, "reception", staff.Username)

		mux := http.NewServeMux()
		mux.Handle("POST /auth/login", handleLogin(authService, l))
		mux.Handle("POST /auth/refresh", handleTokenRefresh(authService, l))
		mux.Handle("GET /auth/me", middleware.AuthMiddleware(authService)(handleStaffMe()))

		return httptest.NewServer(mux)
	}

	login := func(t *testing.T, srv *httptest.Server, username string, password string) (*http.Response, tokenPairResponse) {
		t.Helper()

		body := `{"username": "` + username + `", "password": "` + password + `"}`
		resp, err := http.Post(srv.URL+"/auth/login", "application/json", strings.NewReader(body))
		require.NoError(t, err, "should make login request")
		t.Cleanup(func() { resp.Body.Close() }) // nolint:errcheck

		var pair tokenPairResponse
		if resp.StatusCode == http.StatusOK {
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&pair))
		}
		return resp, pair
	}

	t.Run("login ok returns token pair", func(t *testing.T) {
		testutil.WithTx(container.Pool, t, func(tx pgx.Tx) {
			srv := newServer(t, tx)
			defer srv.Close()

			resp, pair := login(t, srv, "reception", "front-desk-pwd")

			require.Equal(t, http.StatusOK, resp.StatusCode)
			require.NotEmpty(t, pair.AccessToken)
			require.NotEmpty(t, pair.RefreshToken)
			require.True(t, pair.RefreshExpiresAt.After(pair.AccessExpiresAt), "refresh should outlive access")
		})
	})

	t.Run("login with wrong password is unauthorized", func(t *testing.T) {
		testutil.WithTx(container.Pool, t, func(tx pgx.Tx) {
			srv := newServer(t, tx)
			defer srv.Close()

			resp, _ := login(t, srv, "reception", "wrong")
			require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		})
	})

	t.Run("access token authenticates me endpoint", func(t *testing.T) {
		testutil.WithTx(container.Pool, t, func(tx pgx.Tx) {
			srv := newServer(t, tx)
			defer srv.Close()

			_, pair := login(t, srv, "reception", "front-desk-pwd")

			req, err := http.NewRequest(http.MethodGet, srv.URL+"/auth/me", nil)
			require.NoError(t, err)
			req.Header.Set("Authorization", "Bearer "+pair.AccessToken)

			resp, err := http.DefaultClient.Do(req)
			require.NoError(t, err)
			defer resp.Body.Close() // nolint:errcheck

			require.Equal(t, http.StatusOK, resp.StatusCode)

			var me struct {
				Username string `json:"username"`
			}
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&me))
			require.Equal(t, "reception", me.Username)
		})
	})

	t.Run("me without token is unauthorized", func(t *testing.T) {
		testutil.WithTx(container.Pool, t, func(tx pgx.Tx) {
			srv := newServer(t, tx)
			defer srv.Close()

			resp, err := http.Get(srv.URL + "/auth/me")
			require.NoError(t, err)
			defer resp.Body.Close() // nolint:errcheck

			require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		})
	})

	t.Run("refresh rotates the pair and spends the token", func(t *testing.T) {
		testutil.WithTx(container.Pool, t, func(tx pgx.Tx) {
			srv := newServer(t, tx)
			defer srv.Close()

			_, pair := login(t, srv, "reception", "front-desk-pwd")

			refresh := func() *http.Response {
				body := `{"refresh_token": "` + pair.RefreshToken + `"}`
				resp, err := http.Post(srv.URL+"/auth/refresh", "application/json", strings.NewReader(body))
				require.NoError(t, err)
				t.Cleanup(func() { resp.Body.Close() }) // nolint:errcheck
				return resp
			}

			resp := refresh()
			require.Equal(t, http.StatusOK, resp.StatusCode)

			var rotated tokenPairResponse
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&rotated))
			require.NotEqual(t, pair.RefreshToken, rotated.RefreshToken, "refresh token should rotate")

			resp = refresh()
			require.Equal(t, http.StatusUnauthorized, resp.StatusCode, "spent refresh token should be rejected")
		})
	})

	t.Run("unknown refresh token is unauthorized", func(t *testing.T) {
		testutil.WithTx(container.Pool, t, func(tx pgx.Tx) {
			srv := newServer(t, tx)
			defer srv.Close()

			body := `{"refresh_token": "never-issued"}`
			resp, err := http.Post(srv.URL+"/auth/refresh", "application/json", strings.NewReader(body))
			require.NoError(t, err)
			defer resp.Body.Close() // nolint:errcheck

			require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		})
	})
}
