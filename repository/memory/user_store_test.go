package memory

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-blog-api/model"
	"go-blog-api/repository"
)

func seedUser(t *testing.T, s *UserStore) *model.User {
	t.Helper()
	u := &model.User{Username: "dan", Email: "dan@x.com", PasswordHash: "hash"}
	require.NoError(t, s.CreateUser(context.Background(), u))
	return u
}

func TestUserStore_CreateAndLookup(t *testing.T) {
	s := NewUserStore()
	u := seedUser(t, s)
	ctx := context.Background()

	byID, err := s.GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "dan", byID.Username)

	byEmail, err := s.GetUserByEmail(ctx, "DAN@x.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, byEmail.ID)

	_, err = s.GetUserByUsername(ctx, "eve")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestUserStore_Duplicates(t *testing.T) {
	s := NewUserStore()
	seedUser(t, s)
	ctx := context.Background()

	err := s.CreateUser(ctx, &model.User{Username: "dan", Email: "other@x.com"})
	assert.ErrorIs(t, err, repository.ErrDuplicateUsername)

	err = s.CreateUser(ctx, &model.User{Username: "dan2", Email: "dan@x.com"})
	assert.ErrorIs(t, err, repository.ErrDuplicateEmail)
}

func TestUserStore_ReturnsCopies(t *testing.T) {
	s := NewUserStore()
	u := seedUser(t, s)
	ctx := context.Background()
	require.NoError(t, s.RecordRefreshToken(ctx, u.ID, "a"))

	got, _ := s.GetUserByID(ctx, u.ID)
	got.RefreshTokens[0] = "tampered"

	ok, _ := s.HasRefreshToken(ctx, u.ID, "a")
	assert.True(t, ok)
}

func TestUserStore_Ledger(t *testing.T) {
	s := NewUserStore()
	u := seedUser(t, s)
	ctx := context.Background()

	require.NoError(t, s.RecordRefreshToken(ctx, u.ID, "a"))
	require.NoError(t, s.RotateRefreshToken(ctx, u.ID, "a", "b"))

	has, _ := s.HasRefreshToken(ctx, u.ID, "a")
	assert.False(t, has)
	has, _ = s.HasRefreshToken(ctx, u.ID, "b")
	assert.True(t, has)

	assert.ErrorIs(t, s.RotateRefreshToken(ctx, u.ID, "a", "c"), repository.ErrTokenNotFound)
	require.NoError(t, s.RevokeRefreshToken(ctx, u.ID, "b"))
	assert.ErrorIs(t, s.RevokeRefreshToken(ctx, u.ID, "b"), repository.ErrTokenNotFound)
	assert.ErrorIs(t, s.RecordRefreshToken(ctx, "ghost", "x"), repository.ErrNotFound)
}

func TestUserStore_LedgerKeepsNewestTokens(t *testing.T) {
	s := NewUserStore()
	u := seedUser(t, s)
	ctx := context.Background()

	for i := 0; i <= repository.MaxRefreshTokens; i++ {
		require.NoError(t, s.RecordRefreshToken(ctx, u.ID, fmt.Sprintf("t%d", i)))
	}

	stored, err := s.GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Len(t, stored.RefreshTokens, repository.MaxRefreshTokens)

	has, _ := s.HasRefreshToken(ctx, u.ID, "t0")
	assert.False(t, has, "oldest token is dropped")
	has, _ = s.HasRefreshToken(ctx, u.ID, fmt.Sprintf("t%d", repository.MaxRefreshTokens))
	assert.True(t, has)
	assert.ErrorIs(t, s.RotateRefreshToken(ctx, u.ID, "t0", "next"), repository.ErrTokenNotFound)
}

func TestUserStore_ConcurrentRotateSingleWinner(t *testing.T) {
	s := NewUserStore()
	u := seedUser(t, s)
	ctx := context.Background()
	require.NoError(t, s.RecordRefreshToken(ctx, u.ID, "old"))

	var wins atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if err := s.RotateRefreshToken(ctx, u.ID, "old", string(rune('a'+i))); err == nil {
				wins.Add(1)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), wins.Load())
	stored, _ := s.GetUserByID(ctx, u.ID)
	assert.Len(t, stored.RefreshTokens, 1)
}
