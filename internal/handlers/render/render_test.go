package render

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func doRequest(t *testing.T, handler http.HandlerFunc, body string) (*http.Response, string) {
	t.Helper()

	srv := httptest.NewServer(handler)
	defer srv.Close()

	resp, err := http.Post(srv.URL, "application/json", strings.NewReader(body))
	require.NoError(t, err, "should make request")
	defer resp.Body.Close() // nolint:errcheck

	got, err := io.ReadAll(resp.Body)
	require.NoError(t, err, "should read response body")

	return resp, string(got)
}

func TestJSON(t *testing.T) {
	t.Run("encodes data with json content type", func(t *testing.T) {
		resp, body := doRequest(t, func(w http.ResponseWriter, r *http.Request) {
			JSON(w, map[string]string{"name": "Jane"})
		}, "")

		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.Equal(t, "application/json; charset=utf-8", resp.Header.Get("Content-Type"))
		require.JSONEq(t, `{"name": "Jane"}`, body)
	})

	t.Run("enforces passed status code", func(t *testing.T) {
		resp, body := doRequest(t, func(w http.ResponseWriter, r *http.Request) {
			JSONWithStatus(w, map[string]string{"id": "42"}, http.StatusCreated)
		}, "")

		require.Equal(t, http.StatusCreated, resp.StatusCode)
		require.JSONEq(t, `{"id": "42"}`, body)
	})
}

func TestServiceError(t *testing.T) {
	resp, body := doRequest(t, func(w http.ResponseWriter, r *http.Request) {
		ServiceError(w, "Customer not found", http.StatusNotFound)
	}, "")

	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	require.JSONEq(t, `{"error": "service_error", "message": "Customer not found"}`, body)
}

func TestBindAndValidate(t *testing.T) {
	type request struct {
		Name    string `json:"name" validate:"required"`
		Email   string `json:"email" validate:"required,email"`
		Billing string `json:"billing" validate:"omitempty,oneof=in-person remote"`
	}

	handler := func(w http.ResponseWriter, r *http.Request) {
		value, err := BindAndValidate[request](w, r)
		if err != nil {
			return
		}
		JSON(w, value)
	}

	t.Run("valid body passes through", func(t *testing.T) {
		resp, body := doRequest(t, handler, `{"name": "Jane", "email": "jane@example.com", "billing": "remote"}`)

		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.JSONEq(t, `{"name": "Jane", "email": "jane@example.com", "billing": "remote"}`, body)
	})

	t.Run("broken json responds with decoding error", func(t *testing.T) {
		resp, body := doRequest(t, handler, `{"name": `)

		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
		require.Contains(t, body, `"error":"decoding_failed"`)
	})

	t.Run("wrong field type names the field", func(t *testing.T) {
		resp, body := doRequest(t, handler, `{"name": 42}`)

		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
		require.Contains(t, body, "Invalid data type for field 'name'")
	})

	t.Run("validation errors reported per json tag", func(t *testing.T) {
		resp, body := doRequest(t, handler, `{"email": "not-an-email", "billing": "carrier-pigeon"}`)

		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
		require.JSONEq(t, `{
			"error": "validation_failed",
			"message": "Request validation failed",
			"fields": {
				"name": "This field is required",
				"email": "Must be a valid email address",
				"billing": "Must be one of: in-person remote"
			}
		}`, body)
	})
}
