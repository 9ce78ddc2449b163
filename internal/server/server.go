package server

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"storefront/internal/admin"
	"storefront/internal/catalog"
	"storefront/internal/config"
	"storefront/internal/domain"
	"storefront/internal/gate"
	"storefront/internal/login"
	custommiddleware "storefront/internal/middleware"
	"storefront/internal/repository"
	"storefront/internal/service"
	"storefront/internal/storefront"
	"storefront/internal/transport"

	"github.com/go-chi/chi/v5"
	"github.com/juju/pubsub/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Server struct {
	*http.Server
	config *config.Config
	logger *zap.Logger
	db     *sql.DB
	redis  *redis.Client
	stop   context.CancelFunc
}

// CatalogRepositories returns the product and category repositories of the
// configured backend
func CatalogRepositories(cfg *config.Config, db *sql.DB, redisClient *redis.Client, logger *zap.Logger) (repository.ProductRepository, repository.CategoryRepository, error) {
	switch cfg.Catalog.Backend {
	case config.BackendStatic:
		return repository.NewInMemoryProductRepository(repository.SeedProducts()),
			repository.NewInMemoryCategoryRepository(repository.SeedCategories()), nil
	case config.BackendSnapshot:
		return repository.NewSnapshotProductRepository(redisClient, logger),
			repository.NewSnapshotCategoryRepository(redisClient, logger), nil
	case config.BackendPostgres:
		return repository.NewProductRepository(db), repository.NewCategoryRepository(db), nil
	default:
		return nil, nil, fmt.Errorf("unknown catalog backend %q", cfg.Catalog.Backend)
	}
}

// NewAuthService builds the authentication provider on the users and
// sessions tables
func NewAuthService(cfg *config.Config, db *sql.DB, redisClient *redis.Client, hub *pubsub.SimpleHub, logger *zap.Logger) service.AuthService {
	var limiter service.AttemptLimiter
	if redisClient != nil && cfg.Auth.MaxAttempts > 0 {
		limiter = service.NewRedisAttemptLimiter(redisClient, cfg.Auth.MaxAttempts, cfg.Auth.AttemptWindow)
	}
	return service.NewAuthService(
		repository.NewUserRepository(db),
		repository.NewSessionRepository(db),
		limiter,
		hub,
		service.AuthOptions{
			JWTSecret:             cfg.JWT.Secret,
			SessionExpiry:         time.Duration(cfg.JWT.AccessExpiry) * time.Minute,
			EnumerationProtection: cfg.Auth.EnumerationProtection,
		},
		logger,
	)
}

func NewServer(cfg *config.Config, logger *zap.Logger, db *sql.DB, redisClient *redis.Client) (*Server, error) {
	ctx, stop := context.WithCancel(context.Background())

	// Catalog
	products, categories, err := CatalogRepositories(cfg, db, redisClient, logger)
	if err != nil {
		stop()
		return nil, err
	}
	store := catalog.NewStore(products, categories, logger, catalog.WithPlaceholderImage(cfg.Catalog.PlaceholderImage))
	if err := store.Load(ctx); err != nil {
		logger.Warn("Catalog backend unavailable, serving bundled products", zap.Error(err))
	}

	// Authentication
	hub := pubsub.NewSimpleHub(nil)
	authService := NewAuthService(cfg, db, redisClient, hub, logger)

	views, err := transport.NewViews(logger)
	if err != nil {
		stop()
		return nil, err
	}

	adminSessions := admin.NewSessions(func() *admin.Controller {
		return admin.NewController(store, cfg.Catalog.PageSize, logger)
	})

	throttle := custommiddleware.NewIPThrottle(cfg.Inquiry.RatePerMinute, 5)
	go throttle.Run(ctx, time.Minute)

	// Initialize handlers
	storefrontHandler := transport.NewStorefrontHandler(store, storefront.Inquiry{
		BaseURL:  cfg.Inquiry.BaseURL,
		Phone:    cfg.Inquiry.Phone,
		Currency: cfg.Inquiry.Currency,
	}, views, logger)
	authHandler := transport.NewAuthHandler(
		login.NewFlows(authService, logger),
		authService,
		views,
		!cfg.IsDevelopment(),
		adminSessions.Evict,
		logger,
	)
	catalogHandler := transport.NewCatalogHandler(store, cfg.Catalog.PageSize, logger)
	adminHandler := transport.NewAdminHandler(adminSessions, views, logger)

	authMiddleware := custommiddleware.AuthMiddleware(authService, logger)
	editorsOnly := custommiddleware.RequireRole(logger, custommiddleware.CatalogEditors...)
	sessionGate := custommiddleware.SessionGate(
		func(ctx context.Context, token string) gate.Source { return authService.Subscribe(ctx, token) },
		custommiddleware.SessionGateConfig{Timeout: cfg.Auth.CheckTimeout, LoginPath: "/login"},
		views.Loading(),
		logger,
	)

	// Create router
	router := chi.NewRouter()
	router.Use(custommiddleware.DefaultMiddlewareStack()...)
	router.Use(custommiddleware.LoggingMiddleware(logger))
	router.Use(custommiddleware.ErrorHandlingMiddleware(logger))

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		status := http.StatusOK
		body := map[string]string{"status": "ok", "catalog": cfg.Catalog.Backend}
		if err := db.PingContext(r.Context()); err != nil {
			status = http.StatusServiceUnavailable
			body["status"] = "degraded"
			body["database"] = "down"
		}
		custommiddleware.RespondWithJSON(w, status, body)
	})

	static := transport.StaticHandler()
	router.Handle("/static/*", http.StripPrefix("/static", static))
	router.Handle(domain.PlaceholderImage, static)

	// Register routes
	router.Group(func(r chi.Router) {
		r.Use(custommiddleware.CORSMiddleware(cfg.Server.AllowedOrigins, cfg.IsDevelopment()))
		r.Use(custommiddleware.RateLimitMiddleware(redisClient, custommiddleware.RateLimitConfig{
			RequestsPerWindow: cfg.RateLimit.Requests,
			Window:            cfg.RateLimit.Window,
			KeyPrefix:         "ratelimit",
		}, logger))

		authHandler.RegisterRoutes(r, authMiddleware)
		catalogHandler.RegisterRoutes(r, authMiddleware, editorsOnly)
	})
	storefrontHandler.RegisterRoutes(router, throttle.Middleware(logger))
	adminHandler.RegisterRoutes(router, func(next http.Handler) http.Handler {
		return sessionGate(editorsOnly(next))
	})

	server := &Server{
		Server: &http.Server{
			Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
			Handler:      router,
			IdleTimeout:  time.Minute,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		config: cfg,
		logger: logger,
		db:     db,
		redis:  redisClient,
		stop:   stop,
	}

	return server, nil
}

func (s *Server) Close() error {
	s.logger.Info("Closing server resources")
	s.stop()

	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			s.logger.Error("Failed to close redis client", zap.Error(err))
		}
	}

	// Close database connection
	if s.db != nil {
		if err := s.db.Close(); err != nil {
			s.logger.Error("Failed to close database connection", zap.Error(err))
		}
	}

	s.logger.Sync()
	return nil
}
