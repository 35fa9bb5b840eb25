package service

import (
	"context"
	"errors"
	"fmt"
	"go-blog-api/logger"
	"go-blog-api/model"
	"go-blog-api/repository"
	"go-blog-api/security"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
)

var validate = validator.New()

// AuthService implements registration and the session lifecycle.
type AuthService struct {
	users  repository.IUserStore
	hasher *security.PasswordHasher
	tokens *security.TokenIssuer
	google GoogleVerifier

	dummyOnce   sync.Once
	dummyDigest string
}

// NewAuthService wires the session operations. google may be nil, which turns
// federated login off.
func NewAuthService(users repository.IUserStore, hasher *security.PasswordHasher, tokens *security.TokenIssuer, google GoogleVerifier) *AuthService {
	return &AuthService{
		users:  users,
		hasher: hasher,
		tokens: tokens,
		google: google,
	}
}

// Tokens exposes the issuer so the middleware verifies with the same secret.
func (s *AuthService) Tokens() *security.TokenIssuer {
	return s.tokens
}

// Register creates a password account and returns its public profile.
func (s *AuthService) Register(ctx context.Context, username, email, password string) (*model.PublicUser, error) {
	username = strings.TrimSpace(username)
	email = strings.ToLower(strings.TrimSpace(email))

	switch {
	case username == "":
		return nil, invalid("username is required")
	case strings.Contains(username, "@"):
		// Login treats any identifier with "@" as an email.
		return nil, invalid("username must not contain @")
	case email == "":
		return nil, invalid("email is required")
	case password == "":
		return nil, invalid("password is required")
	case validate.Var(email, "email") != nil:
		return nil, invalid("invalid email format")
	case len(password) > security.MaxPasswordBytes:
		return nil, invalid("password must be at most 72 bytes")
	}

	log := logger.Log.WithFields(logrus.Fields{"username": username, "email": email})

	if err := s.ensureAvailable(ctx, username, email); err != nil {
		return nil, err
	}

	digest, err := s.hasher.Hash(ctx, password)
	if err != nil {
		if errors.Is(err, security.ErrPasswordTooLong) {
			return nil, invalid("password must be at most 72 bytes")
		}
		return nil, fmt.Errorf("hash password: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	user := &model.User{Username: username, Email: email, PasswordHash: digest}
	if err := s.users.CreateUser(ctx, user); err != nil {
		if dup := duplicateIdentity(err); dup != nil {
			return nil, dup
		}
		log.WithError(err).Error("Failed to create user")
		return nil, fmt.Errorf("create user: %w", err)
	}

	log.WithField("user_id", user.ID).Info("User registered")
	return user.Public(), nil
}

// ensureAvailable reports a taken username or email before the costly hash.
// The store's unique constraints still decide races.
func (s *AuthService) ensureAvailable(ctx context.Context, username, email string) error {
	if _, err := s.users.GetUserByUsername(ctx, username); err == nil {
		return &DuplicateIdentityError{Field: "username"}
	} else if !errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("lookup username: %w", err)
	}
	if _, err := s.users.GetUserByEmail(ctx, email); err == nil {
		return &DuplicateIdentityError{Field: "email"}
	} else if !errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("lookup email: %w", err)
	}
	return nil
}

func duplicateIdentity(err error) error {
	switch {
	case errors.Is(err, repository.ErrDuplicateUsername):
		return &DuplicateIdentityError{Field: "username"}
	case errors.Is(err, repository.ErrDuplicateEmail):
		return &DuplicateIdentityError{Field: "email"}
	}
	return nil
}

// Login authenticates by email (when identifier contains "@") or username.
// Every failure cause returns the same ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, identifier, password string) (*model.Session, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	var (
		user *model.User
		err  error
	)
	if strings.Contains(identifier, "@") {
		user, err = s.users.GetUserByEmail(ctx, strings.ToLower(identifier))
	} else {
		user, err = s.users.GetUserByUsername(ctx, identifier)
	}
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("lookup user: %w", err)
		}
		// Spend the same bcrypt time as a real check.
		_, _ = s.hasher.Verify(ctx, password, s.dummyHash(ctx))
		return nil, ErrInvalidCredentials
	}

	if user.PasswordHash == "" {
		// Federated account: same bcrypt cost as a wrong password.
		_, _ = s.hasher.Verify(ctx, password, s.dummyHash(ctx))
		return nil, ErrInvalidCredentials
	}

	ok, err := s.hasher.Verify(ctx, password, user.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		logger.Log.WithField("user_id", user.ID).Warn("Failed login attempt")
		return nil, ErrInvalidCredentials
	}

	return s.startSession(ctx, user.ID)
}

func (s *AuthService) dummyHash(ctx context.Context) string {
	s.dummyOnce.Do(func() {
		s.dummyDigest, _ = s.hasher.Hash(context.WithoutCancel(ctx), "not-a-real-password")
	})
	return s.dummyDigest
}

// startSession issues a pair and records its refresh token.
func (s *AuthService) startSession(ctx context.Context, userID string) (*model.Session, error) {
	pair, err := s.issue(userID)
	if err != nil {
		return nil, err
	}
	if err := s.users.RecordRefreshToken(ctx, userID, security.Fingerprint(pair.RefreshToken)); err != nil {
		logger.Log.WithError(err).WithField("user_id", userID).Error("Failed to record refresh token")
		return nil, fmt.Errorf("record refresh token: %w", err)
	}
	return &model.Session{AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken, ID: userID}, nil
}

func (s *AuthService) issue(userID string) (*model.TokenPair, error) {
	pair, err := s.tokens.Issue(userID)
	if err != nil {
		if errors.Is(err, security.ErrSecretNotConfigured) {
			return nil, misconfigured(err)
		}
		return nil, fmt.Errorf("issue tokens: %w", err)
	}
	return pair, nil
}

func misconfigured(err error) error {
	logger.Log.WithField("component", "token_issuer").WithError(err).
		Error("JWT secret is not configured; set JWT_SECRET_KEY")
	return ErrServerMisconfigured
}

// resolveRefresh verifies token as a refresh token and returns its user id.
func (s *AuthService) resolveRefresh(token string) (string, error) {
	if strings.TrimSpace(token) == "" {
		return "", ErrInvalidToken
	}
	claims, err := s.tokens.Verify(token, model.RefreshToken)
	if err != nil {
		if errors.Is(err, security.ErrSecretNotConfigured) {
			return "", misconfigured(err)
		}
		return "", ErrInvalidToken
	}
	return claims.UserID, nil
}

// Refresh exchanges a live refresh token for a new pair. The old token is
// consumed by an atomic rotation; a concurrent or replayed use gets
// ErrInvalidToken.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*model.Session, error) {
	userID, err := s.resolveRefresh(refreshToken)
	if err != nil {
		return nil, err
	}
	log := logger.Log.WithField("user_id", userID)

	oldFP := security.Fingerprint(refreshToken)
	active, err := s.users.HasRefreshToken(ctx, userID, oldFP)
	if err != nil {
		return nil, fmt.Errorf("check refresh token: %w", err)
	}
	if !active {
		log.Warn("Refresh token is not active")
		return nil, ErrInvalidToken
	}

	pair, err := s.issue(userID)
	if err != nil {
		return nil, err
	}

	if err := s.users.RotateRefreshToken(ctx, userID, oldFP, security.Fingerprint(pair.RefreshToken)); err != nil {
		if errors.Is(err, repository.ErrTokenNotFound) {
			log.Warn("Refresh token was consumed concurrently")
			return nil, ErrInvalidToken
		}
		return nil, fmt.Errorf("rotate refresh token: %w", err)
	}

	log.Info("Refresh token rotated")
	return &model.Session{AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken, ID: userID}, nil
}

// Logout revokes refreshToken.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	userID, err := s.resolveRefresh(refreshToken)
	if err != nil {
		return err
	}
	if err := s.users.RevokeRefreshToken(ctx, userID, security.Fingerprint(refreshToken)); err != nil {
		if errors.Is(err, repository.ErrTokenNotFound) {
			return ErrInvalidToken
		}
		return fmt.Errorf("revoke refresh token: %w", err)
	}
	logger.Log.WithField("user_id", userID).Info("User logged out")
	return nil
}

// Authenticate resolves a bearer access token to an identity.
func (s *AuthService) Authenticate(accessToken string) (*model.Identity, error) {
	claims, err := s.tokens.Verify(accessToken, model.AccessToken)
	if err != nil {
		if errors.Is(err, security.ErrSecretNotConfigured) {
			return nil, misconfigured(err)
		}
		return nil, ErrInvalidToken
	}
	return &model.Identity{UserID: claims.UserID}, nil
}
