package db

import (
	"context"
	"fmt"
	"go-blog-api/config"
	"go-blog-api/logger"

	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
)

// ConnectMongo opens a client and returns the configured database.
func ConnectMongo(ctx context.Context, appCfg *config.Config) (*mongo.Client, *mongo.Database, error) {
	cfg := appCfg.Mongo

	client, err := mongo.Connect(options.Client().ApplyURI(cfg.URI))
	if err != nil {
		logger.Log.WithError(err).Error("Failed to create MongoDB client")
		return nil, nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		logger.Log.WithError(err).Error("Failed to ping MongoDB")
		return nil, nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	logger.Log.WithField("database", cfg.Database).Info("MongoDB connection established successfully")
	return client, client.Database(cfg.Database), nil
}
