package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-blog-api/model"
	"go-blog-api/repository"
	"go-blog-api/repository/memory"
)

func TestCommentService(t *testing.T) {
	posts := memory.NewStore(repository.Posts)
	comments := memory.NewStore(repository.Comments)
	svc := NewCommentService(comments, posts)
	ctx := context.Background()

	post := &model.Post{OwnerID: "u-1", Title: "p"}
	require.NoError(t, posts.Create(ctx, post))

	alice := &model.Identity{UserID: "alice"}
	bob := &model.Identity{UserID: "bob"}

	c, err := svc.Create(ctx, alice, post.ID, model.CommentRequest{Content: "  nice <i>post</i> "})
	require.NoError(t, err)
	assert.Equal(t, "nice post", c.Content)
	assert.Equal(t, "alice", c.OwnerID)

	_, err = svc.Create(ctx, alice, "missing", model.CommentRequest{Content: "x"})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.Update(ctx, bob, c.ID, model.CommentRequest{Content: "hijack"})
	assert.ErrorIs(t, err, ErrForbidden)
	assert.ErrorIs(t, svc.Delete(ctx, bob, c.ID), ErrForbidden)

	updated, err := svc.Update(ctx, alice, c.ID, model.CommentRequest{Content: "edited"})
	require.NoError(t, err)
	assert.Equal(t, "edited", updated.Content)

	list, err := svc.ListForPost(ctx, post.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)

	require.NoError(t, svc.Delete(ctx, alice, c.ID))
	assert.ErrorIs(t, svc.Delete(ctx, alice, c.ID), ErrNotFound)

	_, err = svc.ListForPost(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

// racingCommentStore deletes the post right before the comment lands, as a
// concurrent post delete would.
type racingCommentStore struct {
	repository.IStore[model.Comment]
	posts  repository.IStore[model.Post]
	postID string
}

func (s *racingCommentStore) Create(ctx context.Context, c *model.Comment) error {
	if err := s.posts.Delete(ctx, s.postID); err != nil {
		return err
	}
	return s.IStore.Create(ctx, c)
}

func TestCommentService_CreateOnPostDeletedMeanwhile(t *testing.T) {
	posts := memory.NewStore(repository.Posts)
	comments := memory.NewStore(repository.Comments)
	ctx := context.Background()

	post := &model.Post{OwnerID: "u-1", Title: "p"}
	require.NoError(t, posts.Create(ctx, post))

	svc := NewCommentService(&racingCommentStore{IStore: comments, posts: posts, postID: post.ID}, posts)

	_, err := svc.Create(ctx, &model.Identity{UserID: "alice"}, post.ID, model.CommentRequest{Content: "late"})
	assert.ErrorIs(t, err, ErrNotFound)

	left, err := comments.FindBy(ctx, "post_id", post.ID)
	require.NoError(t, err)
	assert.Empty(t, left, "no orphaned comment")
}

func TestUserService(t *testing.T) {
	users := memory.NewUserStore()
	ctx := context.Background()
	u := &model.User{Username: "dan", Email: "dan@x.com"}
	require.NoError(t, users.CreateUser(ctx, u))
	svc := NewUserService(users)
	me := &model.Identity{UserID: u.ID}

	profile, err := svc.GetMe(ctx, me)
	require.NoError(t, err)
	assert.Equal(t, "dan", profile.Username)

	profile, err = svc.UpdateProfileImage(ctx, me, "https://img.example.com/dan.png")
	require.NoError(t, err)
	assert.Equal(t, "https://img.example.com/dan.png", profile.ProfileImage)

	_, err = svc.GetMe(ctx, &model.Identity{UserID: "ghost"})
	assert.ErrorIs(t, err, ErrNotFound)
}
