// Package server sets up the HTTP server, router, and all route definitions.
//
// This package is the composition root: New opens the database, builds the
// geocoder, the region resolver, the upload store, every service and every
// handler, and setupRoutes binds them to URLs. Nothing else in the module
// constructs its own collaborators.
//
// DEPENDENCY INJECTION FLOW:
//
//	config.Config ─┐
//	geocode.Provider ─→ region.Resolver ─┐
//	sqlite.DB ──────────────────────────→ services ─→ handlers ─→ chi routes
//	upload.Store ────────────────────────┘
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sakif/dongne/internal/config"
	"github.com/sakif/dongne/internal/geocode"
	"github.com/sakif/dongne/internal/handler"
	"github.com/sakif/dongne/internal/metrics"
	"github.com/sakif/dongne/internal/middleware"
	"github.com/sakif/dongne/internal/region"
	sqliteRepo "github.com/sakif/dongne/internal/repository/sqlite"
	"github.com/sakif/dongne/internal/service"
	"github.com/sakif/dongne/internal/upload"
)

// shutdownTimeout is how long in-flight requests get to finish after a
// shutdown signal.
const shutdownTimeout = 30 * time.Second

// Server represents the HTTP server and all its dependencies.
//
// The Server owns the database connection and closes it when Start returns.
type Server struct {
	router *chi.Mux
	config *config.Config
	logger *slog.Logger
	db     *sqliteRepo.DB
	images *upload.Store
}

// New wires a server. provider may be nil, in which case a Kakao client is
// built from cfg; tests pass a fake.
func New(cfg *config.Config, logger *slog.Logger, provider geocode.Provider) (*Server, error) {
	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	images, err := upload.NewStore(cfg.UploadDir, cfg.PublicBaseURL, cfg.MaxUploadBytes, logger)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("preparing upload directory: %w", err)
	}

	if provider == nil {
		if cfg.KakaoAPIKey == "" {
			logger.Warn("KAKAO_REST_API_KEY not set; every region will resolve to the call-failed sentinel")
		}
		provider = geocode.NewKakaoClient(geocode.KakaoConfig{
			APIKey:  cfg.KakaoAPIKey,
			BaseURL: cfg.KakaoBaseURL,
			Timeout: cfg.GeocoderTimeout,
		}, logger)
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		db:     db,
		images: images,
	}
	s.setupRoutes(region.NewResolver(provider, cfg.GeocoderTimeout, logger))

	return s, nil
}

// setupRoutes configures middleware and routes.
//
// ROUTE STRUCTURE:
// GET    /healthz                                → DB ping
// GET    /metrics                                → Prometheus exposition
// GET    /uploads/*                              → stored images
// POST   /auth/onboard                           → create user
// POST   /auth/update-location                   → move user
// GET    /auth/check-nickname                    → nickname availability
// POST   /posts                                  → create post (multipart)
// GET    /posts/nearby                           → exact-region feed
// GET    /posts/nearbyupper                      → parent-region feed
// GET    /posts/nearbyviewport                   → viewport feed
// GET    /posts/nearbyradius                     → radius feed
// GET    /posts/user/{userId}                    → posts by user
// PUT    /posts/comments/{commentId}             → edit comment
// DELETE /posts/comments/{commentId}             → delete comment
// GET    /posts/{id}                             → single post
// PUT    /posts/{id}                             → edit post (multipart)
// DELETE /posts/{id}                             → delete post
// POST   /posts/{postId}/comments                → add comment
// GET    /posts/{postId}/comments                → list comments
// POST   /posts/{postId}/likes                   → toggle like
// GET    /posts/{postId}/likes/count             → like count
// GET    /posts/{postId}/likes/status/{userId}   → liked?
//
// chi matches static segments before {params}, so /posts/nearby never reaches
// the /posts/{id} handler.
func (s *Server) setupRoutes(resolver *region.Resolver) {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(chimiddleware.Recoverer)

	users := s.db.Users()
	posts := s.db.Posts()

	userService := service.NewUserService(users, resolver, s.logger)
	postService := service.NewPostService(posts, users, resolver, s.images, s.logger)
	feedService := service.NewNeighborhoodService(posts, resolver, s.config.NearbyRadiusKm, s.logger)
	commentService := service.NewCommentService(s.db.Comments(), posts, users, s.logger)
	likeService := service.NewLikeService(s.db.Likes(), posts, users, s.logger)

	healthHandler := handler.NewHealthHandler(s.db, s.logger)
	authHandler := handler.NewAuthHandler(userService, s.logger)
	postHandler := handler.NewPostHandler(postService, s.images, s.logger)
	nearbyHandler := handler.NewNearbyHandler(feedService, s.logger)
	commentHandler := handler.NewCommentHandler(commentService, s.logger)
	likeHandler := handler.NewLikeHandler(likeService, s.logger)

	s.router.Get("/healthz", healthHandler.HandleHealth)
	s.router.Handle("/metrics", metrics.Handler())
	s.router.Handle(upload.URLPrefix+"*", s.images.Handler())

	s.router.Route("/auth", func(r chi.Router) {
		r.Post("/onboard", authHandler.HandleOnboard)
		r.Post("/update-location", authHandler.HandleUpdateLocation)
		r.Get("/check-nickname", authHandler.HandleCheckNickname)
	})

	s.router.Route("/posts", func(r chi.Router) {
		r.Post("/", postHandler.HandleCreate)

		r.Get("/nearby", nearbyHandler.HandleNearby)
		r.Get("/nearbyupper", nearbyHandler.HandleNearbyUpper)
		r.Get("/nearbyviewport", nearbyHandler.HandleViewport)
		r.Get("/nearbyradius", nearbyHandler.HandleRadius)

		r.Get("/user/{userId}", postHandler.HandleListByUser)

		r.Put("/comments/{commentId}", commentHandler.HandleUpdate)
		r.Delete("/comments/{commentId}", commentHandler.HandleDelete)

		r.Get("/{id}", postHandler.HandleGet)
		r.Put("/{id}", postHandler.HandleUpdate)
		r.Delete("/{id}", postHandler.HandleDelete)

		r.Post("/{postId}/comments", commentHandler.HandleCreate)
		r.Get("/{postId}/comments", commentHandler.HandleList)

		r.Post("/{postId}/likes", likeHandler.HandleToggle)
		r.Get("/{postId}/likes/count", likeHandler.HandleCount)
		r.Get("/{postId}/likes/status/{userId}", likeHandler.HandleStatus)
	})
}

// Handler exposes the router, mainly for httptest.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Close releases the database. Start calls it on the way out; callers that
// never Start (tests) call it themselves.
func (s *Server) Close() error {
	return s.db.Close()
}

// Start serves until SIGINT or SIGTERM, then drains in-flight requests and
// closes the database.
func (s *Server) Start() error {
	defer s.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second, // geocoder calls plus image uploads
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("url", s.config.PublicBaseURL),
			slog.String("database", s.config.DBPath),
			slog.String("uploads", s.config.UploadDir),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
