// Package memory keeps records in process memory. It backs the "memory"
// database driver and the service tests.
package memory

import (
	"context"
	"go-blog-api/model"
	"go-blog-api/repository"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// UserStore implements repository.IUserStore. Each method holds the lock for
// its whole read-modify-write, which makes ledger updates atomic.
type UserStore struct {
	mu    sync.Mutex
	users map[string]*model.User
}

func NewUserStore() *UserStore {
	return &UserStore{users: make(map[string]*model.User)}
}

func cloneUser(u *model.User) *model.User {
	c := *u
	c.RefreshTokens = slices.Clone(u.RefreshTokens)
	return &c
}

func (s *UserStore) CreateUser(ctx context.Context, user *model.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Username == user.Username {
			return repository.ErrDuplicateUsername
		}
		if strings.EqualFold(u.Email, user.Email) {
			return repository.ErrDuplicateEmail
		}
	}

	if user.ID == "" {
		user.ID = ulid.Make().String()
	}
	user.CreatedAt = time.Now().UTC()
	user.RefreshTokens = []string{}
	s.users[user.ID] = cloneUser(user)
	return nil
}

func (s *UserStore) GetUserByID(_ context.Context, id string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[id]; ok {
		return cloneUser(u), nil
	}
	return nil, repository.ErrNotFound
}

func (s *UserStore) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	return s.find(func(u *model.User) bool { return strings.EqualFold(u.Email, email) })
}

func (s *UserStore) GetUserByUsername(_ context.Context, username string) (*model.User, error) {
	return s.find(func(u *model.User) bool { return u.Username == username })
}

func (s *UserStore) find(match func(*model.User) bool) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if match(u) {
			return cloneUser(u), nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *UserStore) UpdateProfileImage(_ context.Context, id, image string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	u.ProfileImage = image
	return cloneUser(u), nil
}

func (s *UserStore) RecordRefreshToken(_ context.Context, userID, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return repository.ErrNotFound
	}
	u.RefreshTokens = append(u.RefreshTokens, token)
	if extra := len(u.RefreshTokens) - repository.MaxRefreshTokens; extra > 0 {
		u.RefreshTokens = slices.Delete(u.RefreshTokens, 0, extra)
	}
	return nil
}

func (s *UserStore) RotateRefreshToken(_ context.Context, userID, oldToken, newToken string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok || !slices.Contains(u.RefreshTokens, oldToken) {
		return repository.ErrTokenNotFound
	}
	u.RefreshTokens = append(removeAll(u.RefreshTokens, oldToken), newToken)
	return nil
}

func (s *UserStore) RevokeRefreshToken(_ context.Context, userID, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok || !slices.Contains(u.RefreshTokens, token) {
		return repository.ErrTokenNotFound
	}
	u.RefreshTokens = removeAll(u.RefreshTokens, token)
	return nil
}

func (s *UserStore) HasRefreshToken(_ context.Context, userID, token string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	return ok && slices.Contains(u.RefreshTokens, token), nil
}

func removeAll(tokens []string, token string) []string {
	return slices.DeleteFunc(tokens, func(t string) bool { return t == token })
}
