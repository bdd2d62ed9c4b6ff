package apperrors

import (
	"errors"
)

var (
	ErrCustomerAlreadyExists = errors.New("customer with this email already exists")
	ErrCustomerNotFound      = errors.New("customer not found")

	ErrSessionTypeAlreadyExists = errors.New("session type already exists")
	ErrSessionTypeNotFound      = errors.New("session type not found")

	ErrCheckInNotFound = errors.New("check-in not found")

	ErrStaffAlreadyExists = errors.New("staff account already exists")
	ErrStaffNotFound      = errors.New("staff account not found")

	ErrRefreshTokenNotFound = errors.New("refresh token not found")
	ErrRefreshTokenIsUsed   = errors.New("refresh token is used")
	ErrRefreshTokenExpired  = errors.New("refresh token is expired")

	ErrExternalRefNotFound = errors.New("external reference not found")

	// The accounting service has no stored token or the stored token can't be
	// refreshed anymore. The only way out is the interactive reconnect flow.
	ErrNotConnected = errors.New("accounting service is not connected")
)
