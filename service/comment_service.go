package service

import (
	"context"
	"errors"
	"go-blog-api/logger"
	"go-blog-api/model"
	"go-blog-api/repository"
	"strings"
)

type CommentService struct {
	comments repository.IStore[model.Comment]
	posts    repository.IStore[model.Post]
}

func NewCommentService(comments repository.IStore[model.Comment], posts repository.IStore[model.Post]) *CommentService {
	return &CommentService{comments: comments, posts: posts}
}

// ListForPost returns the comments of an existing post, newest first.
func (s *CommentService) ListForPost(ctx context.Context, postID string) ([]*model.Comment, error) {
	if _, err := s.posts.GetByID(ctx, postID); err != nil {
		return nil, storeError(err, "get post")
	}
	comments, err := s.comments.FindBy(ctx, "post_id", postID)
	if err != nil {
		return nil, storeError(err, "list comments")
	}
	return comments, nil
}

func (s *CommentService) Create(ctx context.Context, identity *model.Identity, postID string, req model.CommentRequest) (*model.Comment, error) {
	if _, err := s.posts.GetByID(ctx, postID); err != nil {
		return nil, storeError(err, "get post")
	}
	content, err := commentContent(req)
	if err != nil {
		return nil, err
	}

	comment := &model.Comment{PostID: postID, OwnerID: identity.UserID, Content: content}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, storeError(err, "create comment")
	}

	// The post may have been deleted between the lookup and the insert. Only
	// Postgres enforces that with a foreign key.
	if _, err := s.posts.GetByID(ctx, postID); err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, storeError(err, "get post")
		}
		if err := s.comments.Delete(ctx, comment.ID); err != nil && !errors.Is(err, repository.ErrNotFound) {
			logger.Log.WithError(err).WithField("comment_id", comment.ID).Error("Failed to remove comment on deleted post")
		}
		return nil, ErrNotFound
	}
	return comment, nil
}

func (s *CommentService) Update(ctx context.Context, identity *model.Identity, id string, req model.CommentRequest) (*model.Comment, error) {
	comment, err := s.comments.GetByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "get comment")
	}
	if err := requireOwner(identity, comment.OwnerID); err != nil {
		return nil, err
	}
	content, err := commentContent(req)
	if err != nil {
		return nil, err
	}

	comment.Content = content
	if err := s.comments.Update(ctx, comment); err != nil {
		return nil, storeError(err, "update comment")
	}
	return comment, nil
}

func (s *CommentService) Delete(ctx context.Context, identity *model.Identity, id string) error {
	comment, err := s.comments.GetByID(ctx, id)
	if err != nil {
		return storeError(err, "get comment")
	}
	if err := requireOwner(identity, comment.OwnerID); err != nil {
		return err
	}
	if err := s.comments.Delete(ctx, id); err != nil {
		return storeError(err, "delete comment")
	}
	return nil
}

func commentContent(req model.CommentRequest) (string, error) {
	content := strings.TrimSpace(plainText.Sanitize(req.Content))
	if content == "" {
		return "", invalid("content is required")
	}
	return content, nil
}
