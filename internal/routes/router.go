package routes

import (
	"context"

	"spacelink-gateway/internal/config"
	"spacelink-gateway/internal/delivery/http/handler"
	"spacelink-gateway/internal/logger"
	"spacelink-gateway/internal/metrics"
	"spacelink-gateway/internal/middleware"

	"github.com/gin-gonic/gin"
)

// SetupRoutes builds the HTTP engine. ctx bounds background work of the
// middlewares such as rate limiter cleanup.
func SetupRoutes(ctx context.Context, cfg *config.Config, storage handler.HealthChecker, svc *Services) *gin.Engine {
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Add middleware in order: recovery, request ID, metrics, logging, security headers, CORS, request size limit, general rate limit
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.MetricsMiddleware())
	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.SecurityHeadersMiddleware())
	router.Use(middleware.CORSMiddleware(&cfg.CORS))
	router.Use(middleware.RequestSizeLimitMiddleware(middleware.DefaultMaxRequestSize))
	router.Use(middleware.RateLimitMiddleware(ctx, cfg.RateLimit.GeneralRPS, cfg.RateLimit.GeneralBurst))

	systemHandler := handler.NewSystemHandler(storage, cfg)
	authHandler := handler.NewAuthHandler(svc.Auth)
	telemetryHandler := handler.NewTelemetryHandler(svc.Telemetry, svc.Health)
	deviceHandler := handler.NewDeviceHandler(svc.Devices)
	networkHandler := handler.NewNetworkHandler(svc.Networks, svc.Health, svc.SLA)
	partnerHandler := handler.NewPartnerHandler(svc.Partners)

	router.GET("/health", systemHandler.Liveness)
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	v1 := router.Group("/v1")
	{
		v1.GET("/status", systemHandler.Status)
		authHandler.RegisterPublicRoutes(v1)

		devices := v1.Group("")
		devices.Use(middleware.APIKeyMiddleware(svc.Auth))
		{
			telemetryHandler.RegisterDeviceRoutes(devices)
		}

		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware(svc.Auth))
		{
			authHandler.RegisterRoutes(protected)
			telemetryHandler.RegisterRoutes(protected)
			deviceHandler.RegisterRoutes(protected)
			networkHandler.RegisterRoutes(protected)
			partnerHandler.RegisterRoutes(protected)
		}
	}

	logger.Info("All routes initialized")
	return router
}
