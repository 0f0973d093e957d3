package main

import (
	"net/http"
	_ "net/http/pprof"

	"user-profile-api/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// setupRoutes configures all routes
func (a *App) setupRoutes() {
	a.setupOpsRoutes()
	a.setupAPIRoutes()
}

// setupOpsRoutes configures health, metrics and profiling endpoints
func (a *App) setupOpsRoutes() {
	a.Router.GET("/health", a.HealthHandler.Health)
	a.Router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Expose pprof profiling endpoints (disable in production)
	if !a.Config.IsProduction() {
		a.Router.GET("/debug/pprof/*any", gin.WrapH(http.DefaultServeMux))
	}
}

// setupAPIRoutes configures API routes
func (a *App) setupAPIRoutes() {
	users := a.Router.Group("/api/users")
	if a.Config.Auth.RequireToken && a.AuthProvider != nil {
		users.Use(middleware.AuthMiddleware(a.AuthProvider))
	}
	{
		users.POST("", a.UserHandler.CreateOrUpdateUser)
		users.GET("", a.UserHandler.GetUser)
		users.PUT("", a.UserHandler.UpdateUser)
		users.DELETE("", a.UserHandler.DeleteUser)
	}
}
