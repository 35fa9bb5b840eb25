package handler

import (
	"errors"
	"go-blog-api/common"
	"go-blog-api/service"
	"net/http"
)

func ErrorHandlingMiddleware(next func(http.ResponseWriter, *http.Request) *common.AppError) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := next(w, r); err != nil {
			err.Send(w)
		}
	}
}

// serviceError maps a service error to the response sent to the client.
// Unknown errors become a generic 500; the cause only reaches the logs.
func serviceError(err error) *common.AppError {
	var validationErr *service.ValidationError
	var duplicateErr *service.DuplicateIdentityError

	switch {
	case errors.As(err, &validationErr):
		return common.NewAppError(http.StatusBadRequest, validationErr.Message, nil)
	case errors.As(err, &duplicateErr):
		return common.NewAppError(http.StatusBadRequest, duplicateErr.Error(), nil)
	case errors.Is(err, service.ErrInvalidCredentials):
		return common.NewAppError(http.StatusUnauthorized, "Invalid credentials", nil)
	case errors.Is(err, service.ErrInvalidToken):
		return common.NewAppError(http.StatusUnauthorized, "Invalid or expired token", nil)
	case errors.Is(err, service.ErrServerMisconfigured):
		return common.NewAppError(http.StatusInternalServerError, "Server misconfigured", err)
	case errors.Is(err, service.ErrForbidden):
		return common.NewAppError(http.StatusForbidden, "You are not allowed to modify this resource", nil)
	case errors.Is(err, service.ErrNotFound):
		return common.NewAppError(http.StatusNotFound, "Resource not found", nil)
	case errors.Is(err, service.ErrFederatedLoginDisabled):
		return common.NewAppError(http.StatusNotImplemented, "Google login is not enabled", nil)
	case errors.Is(err, service.ErrIdentityProviderUnavailable):
		return common.NewAppError(http.StatusBadGateway, "Google login is temporarily unavailable", err)
	default:
		return common.NewAppError(http.StatusInternalServerError, "Internal server error", err)
	}
}
