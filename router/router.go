package router

import (
	"go-blog-api/handler"
	"net/http"
	"time"

	_ "go-blog-api/docs"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger/v2"
)

// Handlers groups everything the router mounts.
type Handlers struct {
	Auth       *handler.AuthHandler
	Users      *handler.UserHandler
	Posts      *handler.PostHandler
	Comments   *handler.CommentHandler
	Middleware *handler.AuthMiddleware
	Health     *handler.HealthHandler
	// AuthRequestsPerMinute limits /api/auth/* per client IP.
	AuthRequestsPerMinute int
}

func NewRouter(h Handlers) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(handler.MetricsMiddleware)

	health := h.Health
	if health == nil {
		health = handler.NewHealthHandler(nil)
	}
	r.Get("/health", health.HealthCheck)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	auth := h.Middleware.RequireAuth
	e := handler.ErrorHandlingMiddleware

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			if h.AuthRequestsPerMinute > 0 {
				r.Use(httprate.LimitByIP(h.AuthRequestsPerMinute, time.Minute))
			}
			r.Post("/register", e(h.Auth.Register))
			r.Post("/login", e(h.Auth.Login))
			r.Post("/refresh", e(h.Auth.Refresh))
			r.Post("/logout", e(h.Auth.Logout))
			r.Post("/google", e(h.Auth.GoogleLogin))
		})

		r.Get("/users/me", auth(h.Users.GetMe))
		r.Put("/users/me/profile-image", auth(h.Users.UpdateProfileImage))

		r.Route("/posts", func(r chi.Router) {
			r.Get("/", e(h.Posts.ListPosts))
			r.Post("/", auth(h.Posts.CreatePost))
			r.Get("/{id}", e(h.Posts.GetPost))
			r.Put("/{id}", auth(h.Posts.UpdatePost))
			r.Delete("/{id}", auth(h.Posts.DeletePost))
			r.Get("/{id}/comments", e(h.Comments.ListComments))
			r.Post("/{id}/comments", auth(h.Comments.CreateComment))
		})

		r.Put("/comments/{id}", auth(h.Comments.UpdateComment))
		r.Delete("/comments/{id}", auth(h.Comments.DeleteComment))
	})

	return r
}
