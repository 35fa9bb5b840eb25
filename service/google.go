package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"go-blog-api/logger"
	"go-blog-api/model"
	"go-blog-api/repository"
	"go-blog-api/security"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// GoogleIdentity is the verified subset of a Google ID token.
type GoogleIdentity struct {
	Subject string
	Email   string
	Picture string
}

// GoogleVerifier checks a Google ID token and returns the identity it asserts.
type GoogleVerifier interface {
	Verify(ctx context.Context, idToken string) (*GoogleIdentity, error)
}

var errGoogleTokenRejected = errors.New("google id token rejected")

// TokenInfoVerifier validates ID tokens against Google's tokeninfo endpoint.
type TokenInfoVerifier struct {
	clientID string
	endpoint string
	client   *http.Client
}

func NewTokenInfoVerifier(clientID, endpoint string, timeout time.Duration) *TokenInfoVerifier {
	return &TokenInfoVerifier{
		clientID: clientID,
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
	}
}

type tokenInfo struct {
	Audience      string `json:"aud"`
	Issuer        string `json:"iss"`
	Subject       string `json:"sub"`
	Email         string `json:"email"`
	EmailVerified any    `json:"email_verified"`
	Expiry        string `json:"exp"`
	Picture       string `json:"picture"`
}

func (v *TokenInfoVerifier) Verify(ctx context.Context, idToken string) (*GoogleIdentity, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.endpoint+"?id_token="+url.QueryEscape(idToken), nil)
	if err != nil {
		return nil, fmt.Errorf("build tokeninfo request: %w", err)
	}

	resp, err := v.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call tokeninfo: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= http.StatusInternalServerError:
		return nil, fmt.Errorf("tokeninfo unavailable: status %d", resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("%w: tokeninfo returned %d", errGoogleTokenRejected, resp.StatusCode)
	}

	var info tokenInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("decode tokeninfo: %w", err)
	}

	switch {
	case info.Audience != v.clientID:
		return nil, fmt.Errorf("%w: audience mismatch", errGoogleTokenRejected)
	case info.Issuer != "accounts.google.com" && info.Issuer != "https://accounts.google.com":
		return nil, fmt.Errorf("%w: unexpected issuer %q", errGoogleTokenRejected, info.Issuer)
	case info.Email == "" || !verifiedFlag(info.EmailVerified):
		return nil, fmt.Errorf("%w: email not verified", errGoogleTokenRejected)
	}
	if exp, err := strconv.ParseInt(info.Expiry, 10, 64); err == nil && time.Unix(exp, 0).Before(time.Now()) {
		return nil, fmt.Errorf("%w: expired", errGoogleTokenRejected)
	}

	return &GoogleIdentity{Subject: info.Subject, Email: strings.ToLower(info.Email), Picture: info.Picture}, nil
}

// tokeninfo encodes booleans as strings.
func verifiedFlag(v any) bool {
	switch b := v.(type) {
	case bool:
		return b
	case string:
		return b == "true"
	}
	return false
}

const maxUsernameAttempts = 20

var nonUsernameChars = regexp.MustCompile(`[^a-z0-9_.-]+`)

// GoogleLogin signs in the owner of a verified Google ID token, creating a
// password-less account on first use. The token is verified before any write.
func (s *AuthService) GoogleLogin(ctx context.Context, idToken string) (*model.Session, error) {
	if s.google == nil {
		return nil, ErrFederatedLoginDisabled
	}
	if !s.tokens.Configured() {
		return nil, misconfigured(security.ErrSecretNotConfigured)
	}

	identity, err := s.google.Verify(ctx, idToken)
	switch {
	case err == nil:
	case errors.Is(err, errGoogleTokenRejected):
		logger.Log.WithError(err).Warn("Google ID token rejected")
		return nil, ErrInvalidToken
	case ctx.Err() != nil:
		return nil, ctx.Err()
	default:
		logger.Log.WithError(err).Error("Google token verification unavailable")
		return nil, fmt.Errorf("%w: %v", ErrIdentityProviderUnavailable, err)
	}

	user, err := s.users.GetUserByEmail(ctx, identity.Email)
	if errors.Is(err, repository.ErrNotFound) {
		user, err = s.createFederatedUser(ctx, identity)
	}
	if err != nil {
		return nil, err
	}

	return s.startSession(ctx, user.ID)
}

func (s *AuthService) createFederatedUser(ctx context.Context, identity *GoogleIdentity) (*model.User, error) {
	base := usernameFromEmail(identity.Email)

	for i := 0; i < maxUsernameAttempts; i++ {
		candidate := base
		if i > 0 {
			candidate = base + strconv.Itoa(i)
		}

		user := &model.User{Username: candidate, Email: identity.Email, ProfileImage: identity.Picture}
		err := s.users.CreateUser(ctx, user)
		switch {
		case err == nil:
			logger.Log.WithField("user_id", user.ID).Info("Federated user created")
			return user, nil
		case errors.Is(err, repository.ErrDuplicateUsername):
			continue
		case errors.Is(err, repository.ErrDuplicateEmail):
			// Another request created the account first.
			return s.users.GetUserByEmail(ctx, identity.Email)
		default:
			return nil, fmt.Errorf("create federated user: %w", err)
		}
	}
	return nil, fmt.Errorf("no free username derived from %q", base)
}

func usernameFromEmail(email string) string {
	local, _, _ := strings.Cut(email, "@")
	name := nonUsernameChars.ReplaceAllString(strings.ToLower(local), "")
	if len(name) < 3 {
		name = "user" + name
	}
	if len(name) > 40 {
		name = name[:40]
	}
	return name
}
