package handlers

import (
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"sync"
	"time"

	"github.com/checkdesk/checkdesk/internal/handlers/render"
	"github.com/checkdesk/checkdesk/internal/logger"
)

// stateStore holds the outstanding OAuth state value.
// One connect flow at a time is plenty for a single-studio dashboard.
type stateStore struct {
	mu    sync.Mutex
	state string
}

func newStateStore() *stateStore {
	return &stateStore{}
}

func (s *stateStore) Issue() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	state := hex.EncodeToString(b)

	s.mu.Lock()
	s.state = state
	s.mu.Unlock()

	return state
}

// Check consumes the outstanding state, a state is good exactly once
func (s *stateStore) Check(state string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	ok := state != "" && state == s.state
	s.state = ""
	return ok
}

// handleAccountingConnect starts the OAuth flow: the dashboard opens the
// returned URL and the accounting service redirects back to the callback
func handleAccountingConnect(accounting accountingAuth, states *stateStore) http.Handler {
	type response struct {
		AuthorizeURL string `json:"authorize_url"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, response{AuthorizeURL: accounting.AuthorizeURL(states.Issue())})
	})
}

func handleAccountingCallback(accounting accountingAuth, states *stateStore, l logger.Logger) http.Handler {
	type response struct {
		Message string `json:"message"`
		RealmID string `json:"realm_id"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		code := query.Get("code")
		realmID := query.Get("realmId")

		if !states.Check(query.Get("state")) {
			render.ServiceError(w, "Invalid OAuth state", http.StatusForbidden)
			return
		}
		if code == "" || realmID == "" {
			render.ServiceError(w, "Query parameters 'code' and 'realmId' are required", http.StatusBadRequest)
			return
		}

		token, err := accounting.Exchange(r.Context(), code, realmID)
		if err != nil {
			l.Error("Failed to exchange OAuth code", "error", err)
			render.ServiceError(w, "Failed to connect accounting service", http.StatusBadGateway)
			return
		}

		l.Info("Accounting service connected", "realm_id", token.RealmID)
		render.JSON(w, response{Message: "Connected", RealmID: token.RealmID})
	})
}

func handleAccountingStatus(accounting accountingAuth) http.Handler {
	type response struct {
		Connected bool       `json:"connected"`
		RealmID   string     `json:"realm_id,omitempty"`
		ExpiresAt *time.Time `json:"expires_at,omitempty"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, connected := accounting.Connected()
		if !connected {
			render.JSON(w, response{Connected: false})
			return
		}

		render.JSON(w, response{
			Connected: true,
			RealmID:   token.RealmID,
			ExpiresAt: &token.ExpiresAt,
		})
	})
}

func handleAccountingDisconnect(accounting accountingAuth, l logger.Logger) http.Handler {
	type response struct {
		Message string `json:"message"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := accounting.Disconnect(); err != nil {
			l.Error("Failed to disconnect accounting service", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		l.Info("Accounting service disconnected")
		render.JSON(w, response{Message: "Disconnected"})
	})
}
