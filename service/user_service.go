package service

import (
	"context"
	"go-blog-api/logger"
	"go-blog-api/model"
	"go-blog-api/repository"
	"strings"
)

// UserService handles profile reads and updates for the caller.
type UserService struct {
	users repository.IUserRepository
}

// NewUserService creates a new UserService.
func NewUserService(users repository.IUserRepository) *UserService {
	return &UserService{users: users}
}

func (s *UserService) GetMe(ctx context.Context, identity *model.Identity) (*model.PublicUser, error) {
	user, err := s.users.GetUserByID(ctx, identity.UserID)
	if err != nil {
		return nil, storeError(err, "get user")
	}
	return user.Public(), nil
}

// UpdateProfileImage stores the image reference; the file itself lives elsewhere.
func (s *UserService) UpdateProfileImage(ctx context.Context, identity *model.Identity, image string) (*model.PublicUser, error) {
	image = strings.TrimSpace(image)
	if image == "" {
		return nil, invalid("profile_image is required")
	}
	user, err := s.users.UpdateProfileImage(ctx, identity.UserID, image)
	if err != nil {
		return nil, storeError(err, "update profile image")
	}
	logger.Log.WithField("user_id", user.ID).Info("Profile image updated")
	return user.Public(), nil
}
