// Package mongostore persists records in MongoDB.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"go-blog-api/logger"
	"go-blog-api/model"
	"go-blog-api/repository"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const (
	usersCollection = "users"

	usernameIndex = "users_username_key"
	emailIndex    = "users_email_key"
)

// UserStore implements repository.IUserStore on a MongoDB collection.
type UserStore struct {
	coll *mongo.Collection
}

func NewUserStore(db *mongo.Database) *UserStore {
	return &UserStore{coll: db.Collection(usersCollection)}
}

// EnsureIndexes creates the unique indexes that back username and email
// uniqueness under concurrent registrations.
func (s *UserStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true).SetName(usernameIndex)},
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true).SetName(emailIndex)},
	})
	if err != nil {
		return fmt.Errorf("create user indexes: %w", err)
	}
	return nil
}

func (s *UserStore) CreateUser(ctx context.Context, user *model.User) error {
	log := logger.Log.WithFields(logrus.Fields{
		"username": user.Username,
		"email":    user.Email,
	})
	log.Info("Inserting a new user document")

	if user.ID == "" {
		user.ID = ulid.Make().String()
	}
	user.CreatedAt = time.Now().UTC()
	user.RefreshTokens = []string{}

	if _, err := s.coll.InsertOne(ctx, user); err != nil {
		if dup := duplicateUserError(err); dup != nil {
			return dup
		}
		log.WithError(err).Error("Failed to insert user document")
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// duplicateUserError names the unique index an E11000 error came from. The
// server message also echoes the duplicate value, so only the "index: <name>"
// part is inspected.
func duplicateUserError(err error) error {
	if !mongo.IsDuplicateKeyError(err) {
		return nil
	}

	messages := []string{err.Error()}
	var writeErr mongo.WriteException
	if errors.As(err, &writeErr) {
		messages = messages[:0]
		for _, we := range writeErr.WriteErrors {
			messages = append(messages, we.Message)
		}
	}

	for _, msg := range messages {
		switch {
		case strings.Contains(msg, "index: "+usernameIndex+" "):
			return repository.ErrDuplicateUsername
		case strings.Contains(msg, "index: "+emailIndex+" "):
			return repository.ErrDuplicateEmail
		}
	}
	return fmt.Errorf("duplicate key: %w", err)
}

func (s *UserStore) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	return s.findOne(ctx, bson.D{{Key: "_id", Value: id}})
}

func (s *UserStore) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	return s.findOne(ctx, bson.D{{Key: "email", Value: email}})
}

func (s *UserStore) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	return s.findOne(ctx, bson.D{{Key: "username", Value: username}})
}

func (s *UserStore) findOne(ctx context.Context, filter bson.D) (*model.User, error) {
	user := &model.User{}
	if err := s.coll.FindOne(ctx, filter).Decode(user); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		logger.Log.WithError(err).Error("Failed to find user document")
		return nil, fmt.Errorf("find user: %w", err)
	}
	return user, nil
}

func (s *UserStore) UpdateProfileImage(ctx context.Context, id, image string) (*model.User, error) {
	user := &model.User{}
	err := s.coll.FindOneAndUpdate(ctx,
		bson.D{{Key: "_id", Value: id}},
		bson.D{{Key: "$set", Value: bson.D{{Key: "profile_image", Value: image}}}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("update profile image: %w", err)
	}
	return user, nil
}

func (s *UserStore) RecordRefreshToken(ctx context.Context, userID, token string) error {
	res, err := s.coll.UpdateOne(ctx,
		bson.D{{Key: "_id", Value: userID}},
		bson.D{{Key: "$push", Value: bson.D{{Key: "refresh_tokens", Value: bson.D{
			{Key: "$each", Value: bson.A{token}},
			{Key: "$slice", Value: -repository.MaxRefreshTokens},
		}}}}},
	)
	if err != nil {
		logger.Log.WithError(err).WithField("user_id", userID).Error("Failed to record refresh token")
		return fmt.Errorf("record refresh token: %w", err)
	}
	if res.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// RotateRefreshToken swaps oldToken for newToken in a single UpdateOne. The
// filter only matches while oldToken is still present.
func (s *UserStore) RotateRefreshToken(ctx context.Context, userID, oldToken, newToken string) error {
	filter := bson.D{{Key: "_id", Value: userID}, {Key: "refresh_tokens", Value: oldToken}}
	res, err := s.coll.UpdateOne(ctx, filter, rotatePipeline(oldToken, newToken))
	if err != nil {
		logger.Log.WithError(err).WithField("user_id", userID).Error("Failed to rotate refresh token")
		return fmt.Errorf("rotate refresh token: %w", err)
	}
	if res.MatchedCount == 0 {
		return repository.ErrTokenNotFound
	}
	return nil
}

func rotatePipeline(oldToken, newToken string) mongo.Pipeline {
	kept := bson.D{{Key: "$filter", Value: bson.D{
		{Key: "input", Value: "$refresh_tokens"},
		{Key: "cond", Value: bson.D{{Key: "$ne", Value: bson.A{"$$this", oldToken}}}},
	}}}
	return mongo.Pipeline{
		{{Key: "$set", Value: bson.D{
			{Key: "refresh_tokens", Value: bson.D{{Key: "$concatArrays", Value: bson.A{kept, bson.A{newToken}}}}},
		}}},
	}
}

func (s *UserStore) RevokeRefreshToken(ctx context.Context, userID, token string) error {
	filter := bson.D{{Key: "_id", Value: userID}, {Key: "refresh_tokens", Value: token}}
	res, err := s.coll.UpdateOne(ctx, filter,
		bson.D{{Key: "$pull", Value: bson.D{{Key: "refresh_tokens", Value: token}}}},
	)
	if err != nil {
		logger.Log.WithError(err).WithField("user_id", userID).Error("Failed to revoke refresh token")
		return fmt.Errorf("revoke refresh token: %w", err)
	}
	if res.MatchedCount == 0 {
		return repository.ErrTokenNotFound
	}
	return nil
}

func (s *UserStore) HasRefreshToken(ctx context.Context, userID, token string) (bool, error) {
	n, err := s.coll.CountDocuments(ctx, bson.D{{Key: "_id", Value: userID}, {Key: "refresh_tokens", Value: token}})
	if err != nil {
		return false, fmt.Errorf("check refresh token: %w", err)
	}
	return n > 0, nil
}
