package quickbooks

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// refreshBuffer is how long before expiry a token is already treated as
// expiring. Refreshing proactively keeps API calls from racing the deadline.
const refreshBuffer = 10 * time.Minute

var ErrNoToken = errors.New("no stored token")

// Token is the persisted OAuth credential set for one connected company
type Token struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	RealmID      string    `json:"realm_id"`
	ExpiresIn    int       `json:"expires_in"`
	ExpiresAt    time.Time `json:"expires_at"`
	CreatedAt    time.Time `json:"created_at"`
}

// Valid reports whether the access token is usable at the given moment,
// applying the proactive refresh buffer
func (t Token) Valid(now time.Time) bool {
	return t.ExpiresAt.After(now.Add(refreshBuffer))
}

// TokenStore persists OAuth credentials.
// At most one token set exists: connecting again overwrites the previous one.
type TokenStore interface {
	// Load stored token, ErrNoToken when nothing is stored
	Load() (Token, error)
	Save(token Token) error
	Delete() error
}

// FileTokenStore keeps the token as a JSON file, so a deployment survives
// restarts without reconnecting.
type FileTokenStore struct {
	Path string
}

func (s *FileTokenStore) Load() (Token, error) {
	var token Token

	data, err := os.ReadFile(s.Path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return token, ErrNoToken
	case err != nil:
		return token, fmt.Errorf("reading token file: %w", err)
	}

	if err := json.Unmarshal(data, &token); err != nil {
		return token, fmt.Errorf("decoding token file: %w", err)
	}

	return token, nil
}

func (s *FileTokenStore) Save(token Token) error {
	if err := os.MkdirAll(filepath.Dir(s.Path), 0o700); err != nil {
		return fmt.Errorf("creating token dir: %w", err)
	}

	data, err := json.MarshalIndent(token, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding token: %w", err)
	}

	if err := os.WriteFile(s.Path, data, 0o600); err != nil {
		return fmt.Errorf("writing token file: %w", err)
	}

	return nil
}

func (s *FileTokenStore) Delete() error {
	err := os.Remove(s.Path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("deleting token file: %w", err)
	}

	return nil
}
