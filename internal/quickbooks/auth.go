package quickbooks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/checkdesk/checkdesk/internal/apperrors"
	"github.com/checkdesk/checkdesk/internal/logger"
)

const (
	EnvSandbox    = "sandbox"
	EnvProduction = "production"

	authURL  = "https://appcenter.intuit.com/connect/oauth2"
	tokenURL = "https://oauth.platform.intuit.com/oauth2/v1/tokens/bearer"

	oauthScope = "com.intuit.quickbooks.accounting"

	tokenRequestTimeout = 10 * time.Second
)

type Config struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string

	// 'sandbox' or 'production', chooses the API base URL
	Environment string

	// Overrides for tests, normally left empty
	TokenURL   string
	APIBaseURL string
}

func (c Config) tokenURL() string {
	if c.TokenURL != "" {
		return c.TokenURL
	}
	return tokenURL
}

func (c Config) apiBaseURL() string {
	if c.APIBaseURL != "" {
		return c.APIBaseURL
	}
	if c.Environment == EnvProduction {
		return "https://quickbooks.api.intuit.com"
	}
	return "https://sandbox-quickbooks.api.intuit.com"
}

// tokenResponse is the remote token endpoint's reply for both the
// authorization-code and the refresh grant
type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
	TokenType    string `json:"token_type"`
}

// TokenManager owns the OAuth token lifecycle: it hands out valid access
// tokens and refreshes them proactively before they expire.
type TokenManager struct {
	cfg    Config
	store  TokenStore
	client *http.Client
	logger logger.Logger

	// The remote rotates the refresh token on every use, so two concurrent
	// refreshes would invalidate each other. Collapse them into one flight.
	refreshGroup singleflight.Group

	now func() time.Time
}

func NewTokenManager(cfg Config, store TokenStore, l logger.Logger) *TokenManager {
	return &TokenManager{
		cfg:    cfg,
		store:  store,
		client: &http.Client{Timeout: tokenRequestTimeout},
		logger: l,
		now:    time.Now,
	}
}

// AuthorizeURL builds the URL the user is sent to for the consent screen
func (m *TokenManager) AuthorizeURL(state string) string {
	params := url.Values{}
	params.Set("client_id", m.cfg.ClientID)
	params.Set("response_type", "code")
	params.Set("scope", oauthScope)
	params.Set("redirect_uri", m.cfg.RedirectURI)
	params.Set("state", state)

	return authURL + "?" + params.Encode()
}

// Exchange trades the authorization code from the OAuth callback for the
// initial token set and persists it
func (m *TokenManager) Exchange(ctx context.Context, code string, realmID string) (Token, error) {
	form := url.Values{}
	form.Set("grant_type", "authorization_code")
	form.Set("code", code)
	form.Set("redirect_uri", m.cfg.RedirectURI)

	resp, err := m.requestToken(ctx, form)
	if err != nil {
		return Token{}, fmt.Errorf("exchanging authorization code: %w", err)
	}

	return m.saveToken(resp, realmID)
}

// ValidToken returns a token safe to use for API calls.
// A token expiring within the refresh buffer is refreshed synchronously first.
// Returns apperrors.ErrNotConnected when there is no token or the refresh
// failed: the caller must treat that as "reconnect required".
func (m *TokenManager) ValidToken(ctx context.Context) (Token, error) {
	token, err := m.store.Load()
	switch {
	case errors.Is(err, ErrNoToken):
		return Token{}, apperrors.ErrNotConnected
	case err != nil:
		return Token{}, err
	}

	if token.Valid(m.now()) {
		return token, nil
	}

	m.logger.Info("Access token expiring soon, refreshing", "realm_id", token.RealmID, "expires_at", token.ExpiresAt)
	return m.Refresh(ctx)
}

// Refresh exchanges the stored refresh token for a fresh token set.
// The remote invalidates the old refresh token on use, so the rotated one is
// persisted before anything else sees the result. Fails closed: on any error
// the stored state is left untouched and ErrNotConnected is returned.
func (m *TokenManager) Refresh(ctx context.Context) (Token, error) {
	v, err, _ := m.refreshGroup.Do("refresh", func() (any, error) {
		current, err := m.store.Load()
		if errors.Is(err, ErrNoToken) {
			return Token{}, apperrors.ErrNotConnected
		}
		if err != nil {
			return Token{}, err
		}

		// Another flight may have rotated the token while this one waited
		if current.Valid(m.now()) {
			return current, nil
		}

		form := url.Values{}
		form.Set("grant_type", "refresh_token")
		form.Set("refresh_token", current.RefreshToken)

		resp, err := m.requestToken(ctx, form)
		if err != nil {
			m.logger.Error("Token refresh failed, reconnect required", "error", err)
			return Token{}, fmt.Errorf("%w: %s", apperrors.ErrNotConnected, err)
		}

		return m.saveToken(resp, current.RealmID)
	})
	if err != nil {
		return Token{}, err
	}

	return v.(Token), nil
}

// Disconnect drops the stored credentials
func (m *TokenManager) Disconnect() error {
	return m.store.Delete()
}

// Connected reports whether a token set is stored, valid or not
func (m *TokenManager) Connected() (Token, bool) {
	token, err := m.store.Load()
	return token, err == nil
}

func (m *TokenManager) requestToken(ctx context.Context, form url.Values) (tokenResponse, error) {
	var tr tokenResponse

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.cfg.tokenURL(), strings.NewReader(form.Encode()))
	if err != nil {
		return tr, fmt.Errorf("building token request: %w", err)
	}
	req.SetBasicAuth(m.cfg.ClientID, m.cfg.ClientSecret)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := m.client.Do(req)
	if err != nil {
		return tr, fmt.Errorf("token request failed: %w", err)
	}
	defer resp.Body.Close() // nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return tr, fmt.Errorf("token endpoint returned status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return tr, fmt.Errorf("decoding token response: %w", err)
	}

	return tr, nil
}

func (m *TokenManager) saveToken(resp tokenResponse, realmID string) (Token, error) {
	now := m.now().UTC()
	token := Token{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		RealmID:      realmID,
		ExpiresIn:    resp.ExpiresIn,
		ExpiresAt:    now.Add(time.Duration(resp.ExpiresIn) * time.Second),
		CreatedAt:    now,
	}

	if err := m.store.Save(token); err != nil {
		return Token{}, fmt.Errorf("persisting token: %w", err)
	}

	return token, nil
}
