package main

import (
	"time"

	"user-profile-api/internal/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// configure all middleware for the router
func (a *App) setupMiddleware() {
	a.Router.Use(gin.Recovery())
	a.Router.Use(middleware.RequestID())
	a.Router.Use(setupCORS(a.Config.IsProduction(), a.Config.CORS.AllowedOrigins))
	a.Router.Use(middleware.MetricsMiddleware())
	a.Router.Use(middleware.LoggingMiddleware())
	if a.Config.RateLimit.PerMinute > 0 {
		a.Router.Use(middleware.RateLimitMiddleware(a.RateLimiter))
	}
	a.Router.Use(middleware.SecureHeaders(a.Config.IsProduction()))
	a.Router.Use(middleware.ErrorHandler())
}

// setupCORS allows the configured origins, or every origin outside production when none are set.
func setupCORS(production bool, allowedOrigins []string) gin.HandlerFunc {
	corsConfig := cors.DefaultConfig()

	switch {
	case len(allowedOrigins) > 0:
		corsConfig.AllowOrigins = allowedOrigins
		corsConfig.AllowCredentials = true
	case production:
		corsConfig.AllowOrigins = []string{"http://localhost:3000"}
		corsConfig.AllowCredentials = true
	default:
		corsConfig.AllowAllOrigins = true
	}

	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "Accept", "X-Requested-With", middleware.RequestIDHeader}
	corsConfig.ExposeHeaders = []string{"Content-Length", middleware.RequestIDHeader}
	corsConfig.MaxAge = 12 * time.Hour

	return cors.New(corsConfig)
}
