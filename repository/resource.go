package repository

import (
	"context"
	"go-blog-api/model"
	"time"
)

// IStore is the generic CRUD contract shared by posts and comments.
type IStore[T any] interface {
	Create(ctx context.Context, item *T) error
	GetAll(ctx context.Context) ([]*T, error)
	GetByID(ctx context.Context, id string) (*T, error)
	FindBy(ctx context.Context, field, value string) ([]*T, error)
	Update(ctx context.Context, item *T) error
	Delete(ctx context.Context, id string) error
	DeleteBy(ctx context.Context, field, value string) (int64, error)
}

// Resource describes how a record type is persisted. One descriptor drives the
// Postgres, MongoDB and in-memory stores alike.
type Resource[T any] struct {
	Name       string
	Collection string
	// Columns lists every persisted column, id first.
	Columns []string
	// Mutable lists the columns Update rewrites.
	Mutable []string
	Key     func(*T) *string
	// Stamp sets timestamps; created is true on insert.
	Stamp func(item *T, now time.Time, created bool)
	// Filters are the only fields FindBy and DeleteBy accept.
	Filters map[string]func(*T) string
	// Created returns the creation time used for ordering, newest first.
	Created func(*T) time.Time
}

func (r Resource[T]) filterable(field string) bool {
	_, ok := r.Filters[field]
	return ok
}

var Posts = Resource[model.Post]{
	Name:       "post",
	Collection: "posts",
	Columns:    []string{"id", "owner_id", "title", "description", "image_url", "created_at", "updated_at"},
	Mutable:    []string{"title", "description", "image_url", "updated_at"},
	Key:        func(p *model.Post) *string { return &p.ID },
	Stamp: func(p *model.Post, now time.Time, created bool) {
		if created {
			p.CreatedAt = now
		}
		p.UpdatedAt = now
	},
	Filters: map[string]func(*model.Post) string{
		"owner_id": func(p *model.Post) string { return p.OwnerID },
	},
	Created: func(p *model.Post) time.Time { return p.CreatedAt },
}

var Comments = Resource[model.Comment]{
	Name:       "comment",
	Collection: "comments",
	Columns:    []string{"id", "post_id", "owner_id", "content", "created_at", "updated_at"},
	Mutable:    []string{"content", "updated_at"},
	Key:        func(c *model.Comment) *string { return &c.ID },
	Stamp: func(c *model.Comment, now time.Time, created bool) {
		if created {
			c.CreatedAt = now
		}
		c.UpdatedAt = now
	},
	Filters: map[string]func(*model.Comment) string{
		"post_id":  func(c *model.Comment) string { return c.PostID },
		"owner_id": func(c *model.Comment) string { return c.OwnerID },
	},
	Created: func(c *model.Comment) time.Time { return c.CreatedAt },
}
