package security

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"go-blog-api/model"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const tokenIssuer = "go-blog-api"

var (
	// ErrSecretNotConfigured means the signing secret is empty. It is an operator
	// error and must surface as a server failure, never as a client error.
	ErrSecretNotConfigured = errors.New("jwt signing secret is not configured")
	ErrTokenExpired        = errors.New("token expired")
	ErrTokenInvalid        = errors.New("token invalid")
)

// TokenIssuer signs and verifies access/refresh JWTs with HS256.
type TokenIssuer struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

// NewTokenIssuer builds an issuer. Non-positive TTLs fall back to the defaults
// (15 minutes for access, 7 days for refresh).
func NewTokenIssuer(secret string, accessTTL, refreshTTL time.Duration) *TokenIssuer {
	if accessTTL <= 0 {
		accessTTL = 15 * time.Minute
	}
	if refreshTTL <= 0 {
		refreshTTL = 7 * 24 * time.Hour
	}
	return &TokenIssuer{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
}

func (t *TokenIssuer) Configured() bool {
	return len(t.secret) > 0
}

func (t *TokenIssuer) AccessTTL() time.Duration  { return t.accessTTL }
func (t *TokenIssuer) RefreshTTL() time.Duration { return t.refreshTTL }

// Issue creates a new token pair for userID. Both tokens carry the same fresh
// nonce and their own expiry.
func (t *TokenIssuer) Issue(userID string) (*model.TokenPair, error) {
	if !t.Configured() {
		return nil, ErrSecretNotConfigured
	}

	now := t.now()
	nonce := uuid.NewString()

	accessExp := now.Add(t.accessTTL)
	access, err := t.sign(userID, nonce, model.AccessToken, now, accessExp)
	if err != nil {
		return nil, err
	}

	refreshExp := now.Add(t.refreshTTL)
	refresh, err := t.sign(userID, nonce, model.RefreshToken, now, refreshExp)
	if err != nil {
		return nil, err
	}

	return &model.TokenPair{
		AccessToken:      access,
		RefreshToken:     refresh,
		AccessExpiresAt:  accessExp,
		RefreshExpiresAt: refreshExp,
	}, nil
}

func (t *TokenIssuer) sign(userID, nonce string, kind model.TokenType, now, exp time.Time) (string, error) {
	claims := &model.AppClaims{
		UserID:    userID,
		Nonce:     nonce,
		TokenType: kind,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign %s token: %w", kind, err)
	}
	return signed, nil
}

// Verify checks the signature, expiry and type of token. Expired tokens yield
// ErrTokenExpired; every other rejection yields ErrTokenInvalid.
func (t *TokenIssuer) Verify(token string, kind model.TokenType) (*model.AppClaims, error) {
	if !t.Configured() {
		return nil, ErrSecretNotConfigured
	}

	claims := &model.AppClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(token *jwt.Token) (interface{}, error) {
		return t.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}
	if !parsed.Valid || claims.TokenType != kind || claims.UserID == "" {
		return nil, ErrTokenInvalid
	}

	return claims, nil
}

// Fingerprint is the value stored in the refresh-token ledger for token.
func Fingerprint(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
