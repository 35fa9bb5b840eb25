// File: app/app.go
package app

import (
	"context"
	"errors"
	"fmt"
	"go-blog-api/config"
	"go-blog-api/db"
	"go-blog-api/handler"
	"go-blog-api/logger"
	"go-blog-api/model"
	"go-blog-api/repository"
	"go-blog-api/repository/memory"
	"go-blog-api/repository/mongostore"
	"go-blog-api/router"
	"go-blog-api/security"
	"go-blog-api/service"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
)

// Stores bundles the persistence backends the services run on.
type Stores struct {
	Users    repository.IUserStore
	Posts    repository.IStore[model.Post]
	Comments repository.IStore[model.Comment]
	// Ping reports whether the backend is reachable. Nil for the memory store.
	Ping handler.HealthCheck
}

func NewMemoryStores() Stores {
	return Stores{
		Users:    memory.NewUserStore(),
		Posts:    memory.NewStore(repository.Posts),
		Comments: memory.NewStore(repository.Comments),
	}
}

// App is the wired HTTP application.
type App struct {
	Router http.Handler
	Auth   *service.AuthService
}

// New wires services, handlers and the router. cache and google may be nil.
func New(cfg *config.Config, stores Stores, cache service.ICacheClient, google service.GoogleVerifier) *App {
	tokens := security.NewTokenIssuer(cfg.JWT.SecretKey, cfg.JWT.AccessTokenTTL, cfg.JWT.RefreshTokenTTL)
	if !tokens.Configured() {
		logger.Log.WithField("component", "token_issuer").
			Error("JWT_SECRET_KEY is empty; login, refresh and authenticated routes will fail until it is set")
	}

	authService := service.NewAuthService(stores.Users, security.NewPasswordHasher(), tokens, google)
	userService := service.NewUserService(stores.Users)
	postService := service.NewPostService(stores.Posts, stores.Comments, cache, cfg.Redis.TTL)
	commentService := service.NewCommentService(stores.Comments, stores.Posts)

	checks := map[string]handler.HealthCheck{}
	if stores.Ping != nil {
		checks["database"] = stores.Ping
	}
	if pinger, ok := cache.(interface {
		Ping(ctx context.Context) *redis.StatusCmd
	}); ok {
		checks["cache"] = func(ctx context.Context) error { return pinger.Ping(ctx).Err() }
	}

	r := router.NewRouter(router.Handlers{
		Auth:                  handler.NewAuthHandler(authService),
		Users:                 handler.NewUserHandler(userService),
		Posts:                 handler.NewPostHandler(postService),
		Comments:              handler.NewCommentHandler(commentService),
		Middleware:            handler.NewAuthMiddleware(authService),
		Health:                handler.NewHealthHandler(checks),
		AuthRequestsPerMinute: cfg.RateLimit.AuthRequestsPerMinute,
	})

	return &App{Router: r, Auth: authService}
}

// openStores connects the backend selected by database.driver. The returned
// function releases its connections.
func openStores(ctx context.Context, cfg *config.Config) (Stores, func(), error) {
	switch cfg.Database.Driver {
	case "postgres":
		database, err := db.Connect(ctx, cfg)
		if err != nil {
			return Stores{}, nil, err
		}
		if err := db.RunMigrations(database); err != nil {
			database.Close()
			return Stores{}, nil, err
		}
		return Stores{
			Users:    repository.NewUserRepository(database),
			Posts:    repository.NewPostgresStore(database, repository.Posts),
			Comments: repository.NewPostgresStore(database, repository.Comments),
			Ping:     database.PingContext,
		}, func() { database.Close() }, nil

	case "mongo":
		client, database, err := db.ConnectMongo(ctx, cfg)
		if err != nil {
			return Stores{}, nil, err
		}
		users := mongostore.NewUserStore(database)
		posts := mongostore.NewStore(database, repository.Posts)
		comments := mongostore.NewStore(database, repository.Comments)
		for _, ensure := range []func(context.Context) error{users.EnsureIndexes, posts.EnsureIndexes, comments.EnsureIndexes} {
			if err := ensure(ctx); err != nil {
				_ = client.Disconnect(context.Background())
				return Stores{}, nil, err
			}
		}
		ping := func(ctx context.Context) error { return client.Ping(ctx, readpref.Primary()) }
		return Stores{Users: users, Posts: posts, Comments: comments, Ping: ping},
			func() { _ = client.Disconnect(context.Background()) }, nil

	case "memory":
		logger.Log.Warn("Using the in-memory store; data is lost on restart")
		return NewMemoryStores(), func() {}, nil
	}
	return Stores{}, nil, fmt.Errorf("unknown database driver %q", cfg.Database.Driver)
}

// Run serves the API until SIGINT or SIGTERM. configDir holds the optional
// config.yml and .env files.
func Run(configDir string) {
	logger.Init()
	cfg, err := config.LoadConfig(configDir)
	if err != nil {
		logger.Log.Fatalf("Error loading configuration: %v", err)
	}
	logger.Log.WithField("driver", cfg.Database.Driver).Info("Configuration loaded successfully")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	stores, closeStores, err := openStores(ctx, cfg)
	cancel()
	if err != nil {
		logger.Log.Fatalf("Error connecting to the database: %v", err)
	}
	defer closeStores()

	var cache service.ICacheClient
	if cfg.Redis.Enabled {
		rdb, err := db.ConnectRedis(context.Background(), cfg)
		if err != nil {
			logger.Log.WithError(err).Warn("Redis unavailable, post list caching disabled")
		} else {
			defer rdb.Close()
			cache = rdb
		}
	}

	var google service.GoogleVerifier
	if cfg.Google.ClientID != "" {
		google = service.NewTokenInfoVerifier(cfg.Google.ClientID, cfg.Google.TokenInfoURL, cfg.Google.Timeout)
	}

	application := New(cfg, stores, cache, google)

	// --- Start the Server with Graceful Shutdown ---
	port := cfg.Server.Port
	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      application.Router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Log.Infof("Server starting on port :%s", port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Log.Warn("Shutdown signal received. Starting graceful shutdown...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Errorf("Server forced to shutdown: %v", err)
	}

	logger.Log.Info("Server exited properly")
}
