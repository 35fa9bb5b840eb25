// file: repository/token_repository.go

package repository

import (
	"context"
	"fmt"
	"go-blog-api/logger"

	"github.com/sirupsen/logrus"
)

// MaxRefreshTokens caps the live refresh tokens per user. Recording one more
// drops the oldest, which ends that session.
const MaxRefreshTokens = 10

// IRefreshTokenLedger tracks the refresh tokens that are currently valid for a
// user. Values are token fingerprints, never raw tokens. Every mutation is a
// single conditional write evaluated by the store.
type IRefreshTokenLedger interface {
	RecordRefreshToken(ctx context.Context, userID, token string) error
	RotateRefreshToken(ctx context.Context, userID, oldToken, newToken string) error
	RevokeRefreshToken(ctx context.Context, userID, token string) error
	HasRefreshToken(ctx context.Context, userID, token string) (bool, error)
}

// RecordRefreshToken appends token to the user's ledger, keeping only the
// newest MaxRefreshTokens entries.
func (r *UserRepository) RecordRefreshToken(ctx context.Context, userID, token string) error {
	log := logger.Log.WithField("user_id", userID)
	log.Info("Executing query to record a refresh token")

	query := `UPDATE users
		SET refresh_tokens = (array_append(COALESCE(refresh_tokens, '{}'), $2))[GREATEST(COALESCE(cardinality(refresh_tokens), 0) + 2 - $3, 1):]
		WHERE id = $1`
	res, err := r.DB.ExecContext(ctx, query, userID, token, MaxRefreshTokens)
	if err != nil {
		log.WithError(err).Error("Failed to execute record refresh token query")
		return fmt.Errorf("record refresh token: %w", err)
	}
	return expectOneRow(res, ErrNotFound)
}

// RotateRefreshToken replaces oldToken with newToken in one statement. When
// oldToken is no longer present nothing changes and ErrTokenNotFound is
// returned, so of two concurrent rotations of the same token only one wins.
func (r *UserRepository) RotateRefreshToken(ctx context.Context, userID, oldToken, newToken string) error {
	log := logger.Log.WithFields(logrus.Fields{"user_id": userID})
	log.Info("Executing query to rotate a refresh token")

	query := `UPDATE users
		SET refresh_tokens = array_append(array_remove(refresh_tokens, $2), $3)
		WHERE id = $1 AND $2 = ANY(refresh_tokens)`
	res, err := r.DB.ExecContext(ctx, query, userID, oldToken, newToken)
	if err != nil {
		log.WithError(err).Error("Failed to execute rotate refresh token query")
		return fmt.Errorf("rotate refresh token: %w", err)
	}
	return expectOneRow(res, ErrTokenNotFound)
}

// RevokeRefreshToken removes token from the ledger.
func (r *UserRepository) RevokeRefreshToken(ctx context.Context, userID, token string) error {
	log := logger.Log.WithField("user_id", userID)
	log.Info("Executing query to revoke a refresh token")

	query := `UPDATE users SET refresh_tokens = array_remove(refresh_tokens, $2)
		WHERE id = $1 AND $2 = ANY(refresh_tokens)`
	res, err := r.DB.ExecContext(ctx, query, userID, token)
	if err != nil {
		log.WithError(err).Error("Failed to execute revoke refresh token query")
		return fmt.Errorf("revoke refresh token: %w", err)
	}
	return expectOneRow(res, ErrTokenNotFound)
}

func (r *UserRepository) HasRefreshToken(ctx context.Context, userID, token string) (bool, error) {
	var found bool
	query := `SELECT EXISTS (SELECT 1 FROM users WHERE id = $1 AND $2 = ANY(refresh_tokens))`
	if err := r.DB.GetContext(ctx, &found, query, userID, token); err != nil {
		logger.Log.WithError(err).WithField("user_id", userID).Error("Failed to execute has refresh token query")
		return false, fmt.Errorf("check refresh token: %w", err)
	}
	return found, nil
}

type rowsAffecter interface {
	RowsAffected() (int64, error)
}

func expectOneRow(res rowsAffecter, missing error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return missing
	}
	return nil
}
