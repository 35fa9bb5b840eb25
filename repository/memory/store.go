package memory

import (
	"context"
	"fmt"
	"go-blog-api/repository"
	"sort"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// Store implements repository.IStore for a record type described by res.
type Store[T any] struct {
	mu    sync.RWMutex
	res   repository.Resource[T]
	items map[string]T
}

func NewStore[T any](res repository.Resource[T]) *Store[T] {
	return &Store[T]{res: res, items: make(map[string]T)}
}

func (s *Store[T]) Create(ctx context.Context, item *T) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if key := s.res.Key(item); *key == "" {
		*key = ulid.Make().String()
	}
	s.res.Stamp(item, time.Now().UTC(), true)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[*s.res.Key(item)] = *item
	return nil
}

func (s *Store[T]) GetAll(_ context.Context) ([]*T, error) {
	return s.collect(func(*T) bool { return true }), nil
}

func (s *Store[T]) GetByID(_ context.Context, id string) (*T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	item, ok := s.items[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &item, nil
}

func (s *Store[T]) FindBy(_ context.Context, field, value string) ([]*T, error) {
	get, ok := s.res.Filters[field]
	if !ok {
		return nil, fmt.Errorf("%s cannot be filtered by %q", s.res.Name, field)
	}
	return s.collect(func(item *T) bool { return get(item) == value }), nil
}

// collect returns copies of the matching items, newest first.
func (s *Store[T]) collect(match func(*T) bool) []*T {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []*T{}
	for _, item := range s.items {
		if match(&item) {
			out = append(out, &item)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return s.res.Created(out[i]).After(s.res.Created(out[j]))
	})
	return out
}

func (s *Store[T]) Update(_ context.Context, item *T) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := *s.res.Key(item)
	if _, ok := s.items[id]; !ok {
		return repository.ErrNotFound
	}
	s.res.Stamp(item, time.Now().UTC(), false)
	s.items[id] = *item
	return nil
}

func (s *Store[T]) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.items, id)
	return nil
}

func (s *Store[T]) DeleteBy(_ context.Context, field, value string) (int64, error) {
	get, ok := s.res.Filters[field]
	if !ok {
		return 0, fmt.Errorf("%s cannot be filtered by %q", s.res.Name, field)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for id, item := range s.items {
		if get(&item) == value {
			delete(s.items, id)
			n++
		}
	}
	return n, nil
}
