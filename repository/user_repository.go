package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"go-blog-api/logger"
	"go-blog-api/model"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/oklog/ulid/v2"
	"github.com/sirupsen/logrus"
)

// IUserRepository defines the contract for credential record operations.
type IUserRepository interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
	UpdateProfileImage(ctx context.Context, id, image string) (*model.User, error)
}

// IUserStore is a credential store that also keeps the refresh-token ledger.
type IUserStore interface {
	IUserRepository
	IRefreshTokenLedger
}

const userColumns = `id, username, email, password_hash, profile_image, created_at`

// UserRepository implements IUserStore on PostgreSQL.
type UserRepository struct {
	DB *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{DB: db}
}

// CreateUser assigns an id and creation time and inserts the record with an
// empty refresh-token set.
func (r *UserRepository) CreateUser(ctx context.Context, user *model.User) error {
	log := logger.Log.WithFields(logrus.Fields{
		"username": user.Username,
		"email":    user.Email,
	})
	log.Info("Executing query to create a new user")

	if user.ID == "" {
		user.ID = ulid.Make().String()
	}
	user.CreatedAt = time.Now().UTC()
	user.RefreshTokens = []string{}

	query := `INSERT INTO users (id, username, email, password_hash, profile_image, refresh_tokens, created_at)
		VALUES ($1, $2, $3, $4, $5, '{}', $6)`
	_, err := r.DB.ExecContext(ctx, query, user.ID, user.Username, user.Email, user.PasswordHash, user.ProfileImage, user.CreatedAt)
	if err != nil {
		if dup := duplicateFromPQ(err); dup != nil {
			log.WithError(err).Info("User violates a unique constraint")
			return dup
		}
		log.WithError(err).Error("Failed to execute create user query")
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (r *UserRepository) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	return r.getBy(ctx, "id", id)
}

func (r *UserRepository) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.getBy(ctx, "email", email)
}

func (r *UserRepository) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	return r.getBy(ctx, "username", username)
}

// getBy loads one user; column is always one of the literals above.
func (r *UserRepository) getBy(ctx context.Context, column, value string) (*model.User, error) {
	user := &model.User{}
	query := `SELECT ` + userColumns + ` FROM users WHERE ` + column + ` = $1`
	if err := r.DB.GetContext(ctx, user, query, value); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		logger.Log.WithError(err).WithField(column, value).Error("Failed to execute get user query")
		return nil, fmt.Errorf("get user by %s: %w", column, err)
	}
	return user, nil
}

// UpdateProfileImage stores a reference to the user's profile image.
func (r *UserRepository) UpdateProfileImage(ctx context.Context, id, image string) (*model.User, error) {
	user := &model.User{}
	query := `UPDATE users SET profile_image = $2 WHERE id = $1 RETURNING ` + userColumns
	if err := r.DB.GetContext(ctx, user, query, id, image); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		logger.Log.WithError(err).WithField("user_id", id).Error("Failed to execute update profile image query")
		return nil, fmt.Errorf("update profile image: %w", err)
	}
	return user, nil
}

// duplicateFromPQ maps a unique_violation on users to the matching sentinel.
func duplicateFromPQ(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) || pqErr.Code != "23505" {
		return nil
	}
	switch {
	case strings.Contains(pqErr.Constraint, "username"):
		return ErrDuplicateUsername
	case strings.Contains(pqErr.Constraint, "email"):
		return ErrDuplicateEmail
	}
	return nil
}
