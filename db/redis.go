package db

import (
	"context"
	"fmt"
	"go-blog-api/config"
	"go-blog-api/logger"
	"net"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// Cache calls sit on the request path, so they fail fast and the caller falls
// back to the database.
const (
	redisDialTimeout = 2 * time.Second
	redisIOTimeout   = 500 * time.Millisecond
)

// ConnectRedis opens the post list cache and checks it answers a PING.
func ConnectRedis(ctx context.Context, cfg *config.Config) (*redis.Client, error) {
	addr := net.JoinHostPort(cfg.Redis.Host, cfg.Redis.Port)

	rdb := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		DialTimeout:  redisDialTimeout,
		ReadTimeout:  redisIOTimeout,
		WriteTimeout: redisIOTimeout,
	})

	pingCtx, cancel := context.WithTimeout(ctx, redisDialTimeout)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to ping redis at %s: %w", addr, err)
	}

	logger.Log.WithFields(logrus.Fields{
		"address": addr,
		"db":      cfg.Redis.DB,
		"ttl":     cfg.Redis.TTL.String(),
	}).Info("Redis cache connected")
	return rdb, nil
}
