package handler

import (
	"go-blog-api/common"
	"go-blog-api/model"
	"net/http"
	"strings"
)

// Authenticator resolves a bearer access token. *service.AuthService
// implements it.
type Authenticator interface {
	Authenticate(accessToken string) (*model.Identity, error)
}

// AuthenticatedHandlerFunc receives the verified caller as an argument.
type AuthenticatedHandlerFunc func(w http.ResponseWriter, r *http.Request, identity *model.Identity) *common.AppError

type AuthMiddleware struct {
	auth Authenticator
}

func NewAuthMiddleware(auth Authenticator) *AuthMiddleware {
	return &AuthMiddleware{auth: auth}
}

// RequireAuth rejects requests without a valid access token and hands the
// resolved identity to next.
func (m *AuthMiddleware) RequireAuth(next AuthenticatedHandlerFunc) http.HandlerFunc {
	return ErrorHandlingMiddleware(func(w http.ResponseWriter, r *http.Request) *common.AppError {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			return common.NewAppError(http.StatusUnauthorized, "Authorization header is required", nil)
		}

		scheme, token, found := strings.Cut(authHeader, " ")
		token = strings.TrimSpace(token)
		if !found || !strings.EqualFold(scheme, "bearer") || token == "" {
			return common.NewAppError(http.StatusUnauthorized, "Invalid authorization header format", nil)
		}

		identity, err := m.auth.Authenticate(token)
		if err != nil {
			return serviceError(err)
		}

		return next(w, r, identity)
	})
}
