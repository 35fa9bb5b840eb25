package service

import (
	"context"
	"errors"
	"fmt"
	"go-blog-api/logger"
	"go-blog-api/model"
	"go-blog-api/repository"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/sirupsen/logrus"
)

const postsCacheKey = "posts:all"

var (
	plainText = bluemonday.StrictPolicy()
	richText  = bluemonday.UGCPolicy()
)

// PostService handles posts. The full list is cached (cache-aside) when a
// cache client is configured and invalidated on every write.
type PostService struct {
	posts    repository.IStore[model.Post]
	comments repository.IStore[model.Comment]
	cache    ICacheClient
	cacheTTL time.Duration
}

// NewPostService creates a PostService. cache may be nil.
func NewPostService(posts repository.IStore[model.Post], comments repository.IStore[model.Comment], cache ICacheClient, cacheTTL time.Duration) *PostService {
	return &PostService{
		posts:    posts,
		comments: comments,
		cache:    cache,
		cacheTTL: cacheTTL,
	}
}

// requireOwner rejects callers that do not own the resource.
func requireOwner(identity *model.Identity, ownerID string) error {
	if identity == nil || identity.UserID != ownerID {
		return ErrForbidden
	}
	return nil
}

func storeError(err error, action string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return ErrNotFound
	}
	return fmt.Errorf("%s: %w", action, err)
}

// List returns every post, newest first.
func (s *PostService) List(ctx context.Context) ([]*model.Post, error) {
	if posts, ok := cacheGet[[]*model.Post](ctx, s.cache, postsCacheKey); ok {
		return posts, nil
	}

	posts, err := s.posts.GetAll(ctx)
	if err != nil {
		return nil, storeError(err, "list posts")
	}

	cacheSet(ctx, s.cache, postsCacheKey, posts, s.cacheTTL)
	return posts, nil
}

func (s *PostService) Get(ctx context.Context, id string) (*model.Post, error) {
	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "get post")
	}
	return post, nil
}

func (s *PostService) Create(ctx context.Context, identity *model.Identity, req model.PostRequest) (*model.Post, error) {
	post := &model.Post{OwnerID: identity.UserID}
	if err := applyPost(post, req); err != nil {
		return nil, err
	}
	if err := s.posts.Create(ctx, post); err != nil {
		return nil, storeError(err, "create post")
	}

	logger.Log.WithFields(logrus.Fields{"post_id": post.ID, "user_id": identity.UserID}).Info("Post created")
	s.invalidate(ctx)
	return post, nil
}

func (s *PostService) Update(ctx context.Context, identity *model.Identity, id string, req model.PostRequest) (*model.Post, error) {
	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "get post")
	}
	if err := requireOwner(identity, post.OwnerID); err != nil {
		return nil, err
	}
	if err := applyPost(post, req); err != nil {
		return nil, err
	}
	if err := s.posts.Update(ctx, post); err != nil {
		return nil, storeError(err, "update post")
	}

	s.invalidate(ctx)
	return post, nil
}

// Delete removes a post and its comments.
func (s *PostService) Delete(ctx context.Context, identity *model.Identity, id string) error {
	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return storeError(err, "get post")
	}
	if err := requireOwner(identity, post.OwnerID); err != nil {
		return err
	}

	removed, err := s.comments.DeleteBy(ctx, "post_id", id)
	if err != nil {
		return storeError(err, "delete comments")
	}
	if err := s.posts.Delete(ctx, id); err != nil {
		return storeError(err, "delete post")
	}

	logger.Log.WithFields(logrus.Fields{"post_id": id, "comments_removed": removed}).Info("Post deleted")
	s.invalidate(ctx)
	return nil
}

func (s *PostService) invalidate(ctx context.Context) {
	cacheDel(ctx, s.cache, postsCacheKey)
}

func applyPost(post *model.Post, req model.PostRequest) error {
	title := strings.TrimSpace(plainText.Sanitize(req.Title))
	if title == "" {
		return invalid("title is required")
	}
	post.Title = title
	post.Description = strings.TrimSpace(richText.Sanitize(req.Description))
	post.ImageURL = strings.TrimSpace(req.ImageURL)
	return nil
}
