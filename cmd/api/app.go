package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"user-profile-api/internal/handlers"
	"user-profile-api/internal/middleware"
	"user-profile-api/internal/repositories"
	"user-profile-api/internal/services"
	"user-profile-api/internal/transformers"
	"user-profile-api/internal/validators"
	"user-profile-api/pkg/auth"
	"user-profile-api/pkg/cache"
	"user-profile-api/pkg/config"
	"user-profile-api/pkg/database"
	"user-profile-api/pkg/logger"
	"user-profile-api/pkg/metrics"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

// App represents the application structure
type App struct {
	Config        *config.Config
	DB            *gorm.DB
	Redis         *redis.Client
	AuthProvider  *auth.Provider
	Router        *gin.Engine
	UserHandler   *handlers.UserHandler
	HealthHandler *handlers.HealthHandler
	RateLimiter   *middleware.RateLimiter
	Server        *http.Server

	stopCleanup context.CancelFunc
}

// NewApp creates and initializes a new App instance
func NewApp(cfg *config.Config) (*App, error) {
	app := &App{Config: cfg}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize infrastructure
	steps := []func() error{
		app.initializeDatabase,
		app.initializeCache,
		app.initializeMetrics,
		app.initializeAuth,
		app.initializeRateLimiter,
	}
	for _, step := range steps {
		if err := step(); err != nil {
			app.cleanup()
			return nil, err
		}
	}

	// Initialize business logic
	app.initializeDependencies()

	// Initialize web layer
	app.initializeRouter()

	return app, nil
}

// initialize the database connection
func (a *App) initializeDatabase() error {
	db, err := database.Open(a.Config)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	a.DB = db
	return nil
}

// initialize the Redis cache when enabled
func (a *App) initializeCache() error {
	if !a.Config.Redis.Enabled {
		logger.GlobalLogger.Println("Redis disabled, user cache is off")
		return nil
	}
	client, err := cache.NewRedis(a.Config)
	if err != nil {
		return fmt.Errorf("failed to initialize Redis: %w", err)
	}
	a.Redis = client
	return nil
}

// initialize Prometheus metrics
func (a *App) initializeMetrics() error {
	metrics.Init()
	return nil
}

// initialize the identity provider once per process
func (a *App) initializeAuth() error {
	if a.Config.Firebase.ProjectID == "" {
		if a.Config.Auth.RequireToken {
			return fmt.Errorf("auth.require_token is set but no identity provider is configured")
		}
		logger.GlobalLogger.Warnf("No Firebase project configured, identity provider disabled")
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	provider, err := auth.NewProvider(ctx, a.Config)
	if err != nil {
		return fmt.Errorf("failed to initialize identity provider: %w", err)
	}
	a.AuthProvider = provider
	logger.GlobalLogger.Printf("Identity provider initialized for project %s", provider.ProjectID)
	return nil
}

// initialize the rate limiter
func (a *App) initializeRateLimiter() error {
	a.RateLimiter = middleware.NewRateLimiter(middleware.PerMinute(a.Config.RateLimit.PerMinute), a.Config.RateLimit.Burst)

	ctx, cancel := context.WithCancel(context.Background())
	a.stopCleanup = cancel
	go a.RateLimiter.Cleanup(ctx, time.Hour)
	return nil
}

// initialize all dependencies
func (a *App) initializeDependencies() {
	// repositories
	userRepo := repositories.NewUserRepository(a.DB)
	userCache := repositories.NewUserCache(nil)
	if a.Redis != nil {
		userCache = repositories.NewUserCache(a.Redis)
	}

	// transformers
	profileTrans := transformers.NewProfileTransformer(transformers.NewAddressTransformer())

	// validators
	userValidator := validators.NewUserValidator()

	// services
	ttl := time.Duration(a.Config.Redis.TTLSeconds) * time.Second
	userService := services.NewUserService(userRepo, userCache, profileTrans, userValidator, ttl)

	// handlers
	a.UserHandler = handlers.NewUserHandler(userService)
	a.HealthHandler = handlers.NewHealthHandler(userService)
}

// set up the Gin router with middleware and routes
func (a *App) initializeRouter() {
	a.Router = gin.New()
	a.setupMiddleware()
	a.setupRoutes()
}

// cleanup operations
func (a *App) cleanup() {
	if a.stopCleanup != nil {
		a.stopCleanup()
	}
	database.Close(a.DB)
	cache.CloseRedis(a.Redis)
}
