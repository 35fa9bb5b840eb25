package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-blog-api/model"
)

func newUserRepoWithMock(t *testing.T) (*UserRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewUserRepository(sqlx.NewDb(db, "postgres")), mock
}

func TestUserRepository_CreateUser(t *testing.T) {
	repo, mock := newUserRepoWithMock(t)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users (id, username, email, password_hash, profile_image, refresh_tokens, created_at)")).
		WithArgs(sqlmock.AnyArg(), "dan", "dan@x.com", "$2a$10$hash", "", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	user := &model.User{Username: "dan", Email: "dan@x.com", PasswordHash: "$2a$10$hash"}
	err := repo.CreateUser(context.Background(), user)

	require.NoError(t, err)
	assert.Len(t, user.ID, 26, "ids are ULIDs")
	assert.False(t, user.CreatedAt.IsZero())
	assert.Empty(t, user.RefreshTokens)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_CreateUser_Duplicates(t *testing.T) {
	cases := []struct {
		constraint string
		want       error
	}{
		{"users_username_key", ErrDuplicateUsername},
		{"users_email_key", ErrDuplicateEmail},
	}
	for _, tc := range cases {
		t.Run(tc.constraint, func(t *testing.T) {
			repo, mock := newUserRepoWithMock(t)
			mock.ExpectExec("INSERT INTO users").
				WillReturnError(&pq.Error{Code: "23505", Constraint: tc.constraint})

			err := repo.CreateUser(context.Background(), &model.User{Username: "dan", Email: "dan@x.com"})
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestUserRepository_CreateUser_DBError(t *testing.T) {
	repo, mock := newUserRepoWithMock(t)
	mock.ExpectExec("INSERT INTO users").WillReturnError(errors.New("db down"))

	err := repo.CreateUser(context.Background(), &model.User{Username: "dan", Email: "dan@x.com"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db down")
	assert.False(t, errors.Is(err, ErrDuplicateEmail))
}

func TestUserRepository_GetUserByEmail(t *testing.T) {
	repo, mock := newUserRepoWithMock(t)
	created := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)

	t.Run("found", func(t *testing.T) {
		rows := sqlmock.NewRows([]string{"id", "username", "email", "password_hash", "profile_image", "created_at"}).
			AddRow("u-1", "dan", "dan@x.com", "hash", "", created)
		mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE email = $1")).WithArgs("dan@x.com").WillReturnRows(rows)

		user, err := repo.GetUserByEmail(context.Background(), "dan@x.com")
		require.NoError(t, err)
		assert.Equal(t, "u-1", user.ID)
		assert.Equal(t, "hash", user.PasswordHash)
		assert.Equal(t, created, user.CreatedAt)
	})

	t.Run("missing", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE email = $1")).WithArgs("nobody@x.com").
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		_, err := repo.GetUserByEmail(context.Background(), "nobody@x.com")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestUserRepository_GetUserByUsername(t *testing.T) {
	repo, mock := newUserRepoWithMock(t)
	rows := sqlmock.NewRows([]string{"id", "username", "email", "password_hash", "profile_image", "created_at"}).
		AddRow("u-2", "eve", "eve@x.com", "", "https://img.example.com/eve.png", time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE username = $1")).WithArgs("eve").WillReturnRows(rows)

	user, err := repo.GetUserByUsername(context.Background(), "eve")
	require.NoError(t, err)
	assert.Equal(t, "https://img.example.com/eve.png", user.ProfileImage)
}

func TestUserRepository_UpdateProfileImage_NotFound(t *testing.T) {
	repo, mock := newUserRepoWithMock(t)
	mock.ExpectQuery(regexp.QuoteMeta("UPDATE users SET profile_image = $2 WHERE id = $1")).
		WithArgs("ghost", "https://x.example.com/a.png").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.UpdateProfileImage(context.Background(), "ghost", "https://x.example.com/a.png")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUserRepository_RotateRefreshToken(t *testing.T) {
	rotate := regexp.QuoteMeta("SET refresh_tokens = array_append(array_remove(refresh_tokens, $2), $3) WHERE id = $1 AND $2 = ANY(refresh_tokens)")

	t.Run("present", func(t *testing.T) {
		repo, mock := newUserRepoWithMock(t)
		mock.ExpectExec(rotate).WithArgs("u-1", "old", "new").WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.RotateRefreshToken(context.Background(), "u-1", "old", "new"))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("already rotated", func(t *testing.T) {
		repo, mock := newUserRepoWithMock(t)
		mock.ExpectExec(rotate).WithArgs("u-1", "old", "new").WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.RotateRefreshToken(context.Background(), "u-1", "old", "new")
		assert.ErrorIs(t, err, ErrTokenNotFound)
	})
}

func TestUserRepository_RecordAndRevoke(t *testing.T) {
	repo, mock := newUserRepoWithMock(t)

	mock.ExpectExec(regexp.QuoteMeta("(array_append(COALESCE(refresh_tokens, '{}'), $2))[GREATEST(COALESCE(cardinality(refresh_tokens), 0) + 2 - $3, 1):]")).
		WithArgs("u-1", "fp", MaxRefreshTokens).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("SET refresh_tokens = array_remove(refresh_tokens, $2)")).
		WithArgs("u-1", "fp").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("SET refresh_tokens = array_remove(refresh_tokens, $2)")).
		WithArgs("u-1", "fp").WillReturnResult(sqlmock.NewResult(0, 0))

	ctx := context.Background()
	require.NoError(t, repo.RecordRefreshToken(ctx, "u-1", "fp"))
	require.NoError(t, repo.RevokeRefreshToken(ctx, "u-1", "fp"))
	assert.ErrorIs(t, repo.RevokeRefreshToken(ctx, "u-1", "fp"), ErrTokenNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_HasRefreshToken(t *testing.T) {
	repo, mock := newUserRepoWithMock(t)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS")).WithArgs("u-1", "fp").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	found, err := repo.HasRefreshToken(context.Background(), "u-1", "fp")
	require.NoError(t, err)
	assert.True(t, found)
}
