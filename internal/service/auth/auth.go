package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/checkdesk/checkdesk/internal/apperrors"
	"github.com/checkdesk/checkdesk/internal/models"
	"github.com/checkdesk/checkdesk/internal/repository"
)

type Config struct {
	// Secret key to sign access tokens, required
	SecretKey string

	// Hasher used to verify staff passwords
	// If not set the bcrypt hasher is used
	Hasher PasswordHasher
}

// AuthService authenticates the staff operating the dashboard
type AuthService struct {
	token   tokenManager
	hasher  PasswordHasher
	storage repository.Storage
}

func NewService(cfg Config, storage repository.Storage) (*AuthService, error) {
	if cfg.SecretKey == "" {
		return nil, errors.New("secret key must not be empty")
	}

	hasher := cfg.Hasher
	if hasher == nil {
		hasher = BcryptHasher{}
	}

	return &AuthService{
		token: tokenManager{
			key:         cfg.SecretKey,
			alg:         jwt.GetSigningMethod(defaultSigningMethod),
			accessTTL:   defaultAccessTokenTTL,
			refreshTTL:  defaultRefreshTokenTTL,
			refreshRepo: storage.Refresh(),
		},
		hasher:  hasher,
		storage: storage,
	}, nil
}

// CreateStaff registers a staff account, used by the bootstrap CLI
func (s *AuthService) CreateStaff(ctx context.Context, username string, password string) (models.Staff, error) {
	if password == "" {
		return models.Staff{}, errors.New("password must not be empty")
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return models.Staff{}, fmt.Errorf("can't use this as password, error=%w", err)
	}

	return s.storage.Staff().Create(ctx, username, hash)
}

// Login checks credentials and issues a token pair.
// Unknown usernames and wrong passwords are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, username string, password string) (models.TokenPair, error) {
	staff, err := s.storage.Staff().GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, apperrors.ErrStaffNotFound) {
			return models.TokenPair{}, apperrors.ErrStaffNotFound
		}
		return models.TokenPair{}, err
	}

	if err := s.hasher.Compare(staff.HashedPassword, password); err != nil {
		return models.TokenPair{}, apperrors.ErrStaffNotFound
	}

	return s.token.GeneratePair(ctx, staff)
}

// RefreshPair rotates the refresh token and issues a fresh pair
func (s *AuthService) RefreshPair(ctx context.Context, refresh string) (models.TokenPair, error) {
	token, err := s.token.UseRefresh(ctx, refresh)
	if err != nil {
		return models.TokenPair{}, err
	}

	staff, err := s.storage.Staff().GetByID(ctx, token.StaffID)
	if err != nil {
		return models.TokenPair{}, err
	}

	return s.token.GeneratePair(ctx, staff)
}

// Auth resolves the staff account from the request's bearer token
func (s *AuthService) Auth(ctx context.Context, r *http.Request) (models.Staff, error) {
	header := r.Header.Get("Authorization")
	access, found := strings.CutPrefix(header, "Bearer ")
	if !found {
		return models.Staff{}, errors.New("no bearer token in request")
	}

	staffID, err := s.token.ParseAccess(access)
	if err != nil {
		return models.Staff{}, err
	}

	return s.storage.Staff().GetByID(ctx, staffID)
}
