package routes

import (
	"context"
	"net/http"

	"bloodlink/internal/config"
	"bloodlink/internal/delivery/http/handler"
	"bloodlink/internal/logger"
	"bloodlink/internal/metrics"
	"bloodlink/internal/middleware"
	"bloodlink/internal/usecase/account"
	"bloodlink/internal/usecase/hospital"
	"bloodlink/internal/usecase/request"
	"bloodlink/internal/usecase/search"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// HealthChecker reports whether a backing store is reachable.
type HealthChecker interface {
	Health(ctx context.Context) error
}

// Services bundles the use cases the HTTP layer exposes.
type Services struct {
	Accounts  *account.Service
	Search    *search.Service
	Requests  *request.Service
	Hospitals *hospital.Service
}

type Options struct {
	Health      HealthChecker // database
	Cache       HealthChecker // redis, when configured
	Metrics     *metrics.Metrics
	Gatherer    prometheus.Gatherer
	RateLimiter *middleware.RateLimiter
}

func SetupRoutes(cfg *config.Config, services Services, opts Options) *gin.Engine {
	production := cfg.Server.Environment == "production"
	if production {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Order: recovery, request ID, logging, metrics, security headers, CORS, size limit, rate limit
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.MetricsMiddleware(opts.Metrics))
	router.Use(middleware.SecurityHeadersMiddleware(production))
	router.Use(middleware.CORSMiddleware(&cfg.CORS))
	router.Use(middleware.RequestSizeLimitMiddleware(middleware.DefaultMaxRequestSize))
	if opts.RateLimiter != nil {
		router.Use(middleware.RateLimitMiddleware(opts.RateLimiter))
	}

	router.GET("/health", func(c *gin.Context) {
		if opts.Health != nil {
			if err := opts.Health.Health(c.Request.Context()); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{
					"status":  "unhealthy",
					"message": "Database connection failed",
				})
				return
			}
		}
		if opts.Cache != nil {
			if err := opts.Cache.Health(c.Request.Context()); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{
					"status":  "unhealthy",
					"message": "Redis connection failed",
				})
				return
			}
		}

		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"message": "Blood donation API is running",
		})
	})

	if opts.Gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{})))
	}

	authHandler := handler.NewAuthHandler(services.Accounts)
	donorHandler := handler.NewDonorHandler(services.Accounts, services.Search, services.Requests)
	requestHandler := handler.NewRequestHandler(services.Requests)
	hospitalHandler := handler.NewHospitalHandler(services.Hospitals, services.Search, services.Requests)

	v1 := router.Group("/api/v1")
	{
		authHandler.RegisterRoutes(v1)

		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware(services.Accounts))
		{
			authHandler.RegisterProtectedRoutes(protected)
			donorHandler.RegisterRoutes(protected)
			requestHandler.RegisterRoutes(protected)
			hospitalHandler.RegisterRoutes(protected)
		}
	}

	logger.Info("All routes initialized")
	return router
}
