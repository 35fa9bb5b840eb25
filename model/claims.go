package model

import "github.com/golang-jwt/jwt/v5"

type TokenType string

const (
	AccessToken  TokenType = "access"
	RefreshToken TokenType = "refresh"
)

// AppClaims binds a user id and a per-issue nonce. The nonce is shared by the
// access and refresh token of one pair; TokenType keeps them apart.
type AppClaims struct {
	UserID    string    `json:"user_id"`
	Nonce     string    `json:"nonce"`
	TokenType TokenType `json:"token_type"`
	jwt.RegisteredClaims
}
