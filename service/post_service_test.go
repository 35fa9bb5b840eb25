// file: service/post_service_test.go

package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"go-blog-api/model"
	"go-blog-api/repository"
)

// mockPostStore is a mock implementation of repository.IStore[model.Post].
type mockPostStore struct{ mock.Mock }

func (m *mockPostStore) Create(_ context.Context, p *model.Post) error {
	return m.Called(p).Error(0)
}

func (m *mockPostStore) GetAll(context.Context) ([]*model.Post, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Post), args.Error(1)
}

func (m *mockPostStore) GetByID(_ context.Context, id string) (*model.Post, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Post), args.Error(1)
}

func (m *mockPostStore) Update(_ context.Context, p *model.Post) error {
	return m.Called(p).Error(0)
}

func (m *mockPostStore) Delete(_ context.Context, id string) error {
	return m.Called(id).Error(0)
}

// --- Unused methods that are required to satisfy the interface contract ---
func (m *mockPostStore) FindBy(context.Context, string, string) ([]*model.Post, error) {
	return nil, nil
}
func (m *mockPostStore) DeleteBy(context.Context, string, string) (int64, error) { return 0, nil }

type mockCommentStore struct{ mock.Mock }

func (m *mockCommentStore) DeleteBy(_ context.Context, field, value string) (int64, error) {
	args := m.Called(field, value)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockCommentStore) Create(context.Context, *model.Comment) error { return nil }
func (m *mockCommentStore) GetAll(context.Context) ([]*model.Comment, error) {
	return nil, nil
}
func (m *mockCommentStore) GetByID(context.Context, string) (*model.Comment, error) {
	return nil, nil
}
func (m *mockCommentStore) FindBy(context.Context, string, string) ([]*model.Comment, error) {
	return nil, nil
}
func (m *mockCommentStore) Update(context.Context, *model.Comment) error { return nil }
func (m *mockCommentStore) Delete(context.Context, string) error        { return nil }

type mockCache struct{ mock.Mock }

func (m *mockCache) Get(_ context.Context, key string) *redis.StringCmd {
	return m.Called(key).Get(0).(*redis.StringCmd)
}

func (m *mockCache) Set(_ context.Context, key string, value interface{}, ttl time.Duration) *redis.StatusCmd {
	return m.Called(key, value, ttl).Get(0).(*redis.StatusCmd)
}

func (m *mockCache) Del(_ context.Context, keys ...string) *redis.IntCmd {
	return m.Called(keys).Get(0).(*redis.IntCmd)
}

var owner = &model.Identity{UserID: "u-1"}

func TestPostService_List_CacheHit(t *testing.T) {
	posts := new(mockPostStore)
	cache := new(mockCache)
	svc := NewPostService(posts, new(mockCommentStore), cache, time.Minute)

	cached, _ := json.Marshal([]*model.Post{{ID: "p1", Title: "cached"}})
	cache.On("Get", postsCacheKey).Return(redis.NewStringResult(string(cached), nil)).Once()

	got, err := svc.List(context.Background())

	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "cached", got[0].Title)
	posts.AssertNotCalled(t, "GetAll")
}

func TestPostService_List_CacheMiss(t *testing.T) {
	posts := new(mockPostStore)
	cache := new(mockCache)
	svc := NewPostService(posts, new(mockCommentStore), cache, time.Minute)

	fromDB := []*model.Post{{ID: "p1", Title: "db"}}
	cache.On("Get", postsCacheKey).Return(redis.NewStringResult("", redis.Nil)).Once()
	posts.On("GetAll").Return(fromDB, nil).Once()
	cache.On("Set", postsCacheKey, mock.Anything, time.Minute).Return(redis.NewStatusResult("OK", nil)).Once()

	got, err := svc.List(context.Background())

	require.NoError(t, err)
	assert.Equal(t, fromDB, got)
	posts.AssertExpectations(t)
	cache.AssertExpectations(t)
}

func TestPostService_List_UnusableCacheFallsBackToStore(t *testing.T) {
	tests := []struct {
		name   string
		result *redis.StringCmd
	}{
		{"corrupt entry", redis.NewStringResult("{not json", nil)},
		{"cache down", redis.NewStringResult("", errors.New("dial tcp: connection refused"))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			posts := new(mockPostStore)
			cache := new(mockCache)
			svc := NewPostService(posts, new(mockCommentStore), cache, time.Minute)

			fromDB := []*model.Post{{ID: "p1", Title: "db"}}
			cache.On("Get", postsCacheKey).Return(tt.result).Once()
			posts.On("GetAll").Return(fromDB, nil).Once()
			cache.On("Set", postsCacheKey, mock.Anything, time.Minute).Return(redis.NewStatusResult("", errors.New("down"))).Once()

			got, err := svc.List(context.Background())

			require.NoError(t, err)
			assert.Equal(t, fromDB, got)
			posts.AssertExpectations(t)
		})
	}
}

func TestPostService_List_NoCache(t *testing.T) {
	posts := new(mockPostStore)
	svc := NewPostService(posts, new(mockCommentStore), nil, time.Minute)
	posts.On("GetAll").Return([]*model.Post{}, nil).Once()

	got, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestPostService_Create(t *testing.T) {
	posts := new(mockPostStore)
	cache := new(mockCache)
	svc := NewPostService(posts, new(mockCommentStore), cache, time.Minute)

	t.Run("sanitizes and invalidates", func(t *testing.T) {
		posts.On("Create", mock.MatchedBy(func(p *model.Post) bool {
			return p.OwnerID == "u-1" && p.Title == "Hello" && p.Description == "<b>bold</b>"
		})).Return(nil).Once()
		cache.On("Del", []string{postsCacheKey}).Return(redis.NewIntResult(1, nil)).Once()

		post, err := svc.Create(context.Background(), owner, model.PostRequest{
			Title:       "<script>x</script>Hello",
			Description: `<b>bold</b><script>alert(1)</script>`,
		})

		require.NoError(t, err)
		assert.Equal(t, "Hello", post.Title)
		posts.AssertExpectations(t)
		cache.AssertExpectations(t)
	})

	t.Run("title empty after sanitizing", func(t *testing.T) {
		_, err := svc.Create(context.Background(), owner, model.PostRequest{Title: "<script>x</script>"})
		assert.ErrorIs(t, err, ErrValidation)
	})
}

func TestPostService_Update(t *testing.T) {
	posts := new(mockPostStore)
	svc := NewPostService(posts, new(mockCommentStore), nil, time.Minute)

	t.Run("not owner", func(t *testing.T) {
		posts.On("GetByID", "p1").Return(&model.Post{ID: "p1", OwnerID: "someone-else"}, nil).Once()

		_, err := svc.Update(context.Background(), owner, "p1", model.PostRequest{Title: "x"})
		assert.ErrorIs(t, err, ErrForbidden)
		posts.AssertNotCalled(t, "Update", mock.Anything)
	})

	t.Run("missing", func(t *testing.T) {
		posts.On("GetByID", "p2").Return(nil, repository.ErrNotFound).Once()

		_, err := svc.Update(context.Background(), owner, "p2", model.PostRequest{Title: "x"})
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("owner", func(t *testing.T) {
		posts.On("GetByID", "p3").Return(&model.Post{ID: "p3", OwnerID: "u-1", Title: "old"}, nil).Once()
		posts.On("Update", mock.MatchedBy(func(p *model.Post) bool { return p.Title == "new" })).Return(nil).Once()

		post, err := svc.Update(context.Background(), owner, "p3", model.PostRequest{Title: "new"})
		require.NoError(t, err)
		assert.Equal(t, "new", post.Title)
	})
}

func TestPostService_Delete_CascadesToComments(t *testing.T) {
	posts := new(mockPostStore)
	comments := new(mockCommentStore)
	cache := new(mockCache)
	svc := NewPostService(posts, comments, cache, time.Minute)

	posts.On("GetByID", "p1").Return(&model.Post{ID: "p1", OwnerID: "u-1"}, nil).Once()
	comments.On("DeleteBy", "post_id", "p1").Return(int64(2), nil).Once()
	posts.On("Delete", "p1").Return(nil).Once()
	cache.On("Del", []string{postsCacheKey}).Return(redis.NewIntResult(1, nil)).Once()

	require.NoError(t, svc.Delete(context.Background(), owner, "p1"))
	posts.AssertExpectations(t)
	comments.AssertExpectations(t)
	cache.AssertExpectations(t)
}

func TestPostService_StoreErrorsAreWrapped(t *testing.T) {
	posts := new(mockPostStore)
	svc := NewPostService(posts, new(mockCommentStore), nil, time.Minute)
	dbErr := errors.New("connection reset")
	posts.On("GetAll").Return(nil, dbErr).Once()

	_, err := svc.List(context.Background())
	assert.ErrorIs(t, err, dbErr)
	assert.NotErrorIs(t, err, ErrNotFound)
}
