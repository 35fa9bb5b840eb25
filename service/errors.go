package service

import "errors"

var (
	ErrValidation             = errors.New("validation failed")
	ErrDuplicateIdentity      = errors.New("identity already in use")
	ErrInvalidCredentials     = errors.New("invalid credentials")
	ErrInvalidToken           = errors.New("invalid or expired token")
	ErrServerMisconfigured    = errors.New("server is misconfigured")
	ErrForbidden              = errors.New("forbidden")
	ErrNotFound               = errors.New("not found")
	ErrFederatedLoginDisabled = errors.New("federated login is not enabled")
)

// ErrIdentityProviderUnavailable means Google could not be asked, not that it
// refused the token.
var ErrIdentityProviderUnavailable = errors.New("identity provider unavailable")

// ValidationError carries the client-facing reason. It matches ErrValidation.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

func invalid(message string) error {
	return &ValidationError{Message: message}
}

// DuplicateIdentityError names the field that collided. It matches
// ErrDuplicateIdentity.
type DuplicateIdentityError struct {
	Field string
}

func (e *DuplicateIdentityError) Error() string { return e.Field + " already exists" }

func (e *DuplicateIdentityError) Is(target error) bool { return target == ErrDuplicateIdentity }
