package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-blog-api/model"
	"go-blog-api/repository"
)

func TestStore_CRUD(t *testing.T) {
	s := NewStore(repository.Posts)
	ctx := context.Background()

	post := &model.Post{OwnerID: "u1", Title: "first"}
	require.NoError(t, s.Create(ctx, post))
	require.NotEmpty(t, post.ID)

	got, err := s.GetByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "first", got.Title)

	got.Title = "edited"
	require.NoError(t, s.Update(ctx, got))
	again, _ := s.GetByID(ctx, post.ID)
	assert.Equal(t, "edited", again.Title)
	assert.False(t, again.UpdatedAt.Before(again.CreatedAt))

	require.NoError(t, s.Delete(ctx, post.ID))
	_, err = s.GetByID(ctx, post.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.ErrorIs(t, s.Delete(ctx, post.ID), repository.ErrNotFound)
	assert.ErrorIs(t, s.Update(ctx, &model.Post{ID: "missing"}), repository.ErrNotFound)
}

func TestStore_GetAllNewestFirst(t *testing.T) {
	s := NewStore(repository.Posts)
	ctx := context.Background()

	require.NoError(t, s.Create(ctx, &model.Post{Title: "old"}))
	time.Sleep(2 * time.Millisecond)
	require.NoError(t, s.Create(ctx, &model.Post{Title: "new"}))

	posts, err := s.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, "new", posts[0].Title)
}

func TestStore_FindAndDeleteBy(t *testing.T) {
	s := NewStore(repository.Comments)
	ctx := context.Background()

	require.NoError(t, s.Create(ctx, &model.Comment{PostID: "p1", Content: "a"}))
	require.NoError(t, s.Create(ctx, &model.Comment{PostID: "p1", Content: "b"}))
	require.NoError(t, s.Create(ctx, &model.Comment{PostID: "p2", Content: "c"}))

	found, err := s.FindBy(ctx, "post_id", "p1")
	require.NoError(t, err)
	assert.Len(t, found, 2)

	_, err = s.FindBy(ctx, "content", "a")
	assert.Error(t, err)

	n, err := s.DeleteBy(ctx, "post_id", "p1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	all, _ := s.GetAll(ctx)
	assert.Len(t, all, 1)
}
