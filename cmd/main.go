package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bloodlink/internal/config"
	domainAccount "bloodlink/internal/domain/account"
	domainRequest "bloodlink/internal/domain/request"
	"bloodlink/internal/domain/session"
	"bloodlink/internal/infrastructure/database/memory"
	"bloodlink/internal/infrastructure/database/postgres"
	"bloodlink/internal/infrastructure/events"
	redisClient "bloodlink/internal/infrastructure/redis"
	"bloodlink/internal/infrastructure/revocation"
	"bloodlink/internal/logger"
	"bloodlink/internal/metrics"
	"bloodlink/internal/middleware"
	"bloodlink/internal/routes"
	"bloodlink/internal/usecase/account"
	"bloodlink/internal/usecase/hospital"
	"bloodlink/internal/usecase/request"
	"bloodlink/internal/usecase/search"
	"bloodlink/pkg/mqtt"
	"bloodlink/pkg/utils"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("Failed to load configuration: " + err.Error() + "\n")
		os.Exit(1)
	}

	env := cfg.Server.Environment
	if env == "" {
		env = "development"
	}
	if err := logger.Init(env); err != nil {
		os.Stderr.WriteString("Failed to initialize logger: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting application",
		zap.String("environment", env),
		zap.String("db_driver", cfg.Database.Driver),
	)

	if err := cfg.Validate(); err != nil {
		logger.Fatal("Invalid configuration", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var (
		accounts domainAccount.Repository
		requests domainRequest.Repository
		health   routes.HealthChecker
	)
	switch cfg.Database.Driver {
	case "memory":
		logger.Warn("Using in-memory storage; data is lost on restart")
		accounts = memory.NewAccountRepository()
		requests = memory.NewRequestRepository()
	default:
		db, err := postgres.NewDB(cfg)
		if err != nil {
			logger.Fatal("Failed to connect to database", zap.Error(err))
		}
		defer func() {
			if err := db.Close(); err != nil {
				logger.Error("Failed to close database connection", zap.Error(err))
			}
		}()
		if err := db.Migrate(ctx); err != nil {
			logger.Fatal("Failed to run migrations", zap.Error(err))
		}
		accounts = postgres.NewAccountRepository(db)
		requests = postgres.NewRequestRepository(db)
		health = db
	}

	revocations, cache := newRevocationList(ctx, cfg)
	if list, ok := revocations.(*revocation.MemoryList); ok {
		go list.Run(ctx, revocation.DefaultPruneInterval)
	}
	publisher, disconnect := newPublisher(cfg)
	defer disconnect()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry)

	tokens := utils.NewTokenManager(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.TTL())
	accountService := account.NewService(accounts, tokens, revocations, m)
	searchService := search.NewService(accounts, m, cfg.Requests.SearchLimit, cfg.Requests.BulkSearchLimit)
	requestService := request.NewService(requests, accounts, publisher, m, request.Options{
		TTL:           cfg.Requests.TTL(),
		ListLimit:     cfg.Requests.ListLimit,
		RelevantLimit: cfg.Requests.RelevantListLimit,
	})
	hospitalService := hospital.NewService(accounts, requests, requestService)

	go requestService.StartExpirySweeper(ctx, cfg.Requests.SweepInterval, cfg.Requests.ExpiredRetention)

	limiter := middleware.NewRateLimiter(cfg.RateLimit.GeneralRPS, cfg.RateLimit.GeneralBurst)
	go limiter.Run(ctx)

	router := routes.SetupRoutes(cfg, routes.Services{
		Accounts:  accountService,
		Search:    searchService,
		Requests:  requestService,
		Hospitals: hospitalService,
	}, routes.Options{
		Health:      health,
		Cache:       cache,
		Metrics:     m,
		Gatherer:    registry,
		RateLimiter: limiter,
	})

	addr := net.JoinHostPort(cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("Server starting", zap.String("address", addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Failed to shutdown server gracefully", zap.Error(err))
		return
	}

	logger.Info("Server exited properly")
}

// newRevocationList returns the redis client as a health check when redis
// backs the list, nil otherwise.
func newRevocationList(ctx context.Context, cfg *config.Config) (session.RevocationList, routes.HealthChecker) {
	client, err := redisClient.New(ctx, cfg.Redis)
	if err != nil {
		logger.Fatal("Failed to connect to redis", zap.Error(err))
	}
	if client == nil {
		logger.Warn("REDIS_URL not set; token revocations are kept in memory")
		return revocation.NewMemoryList(), nil
	}
	logger.Info("Token revocation list backed by redis")
	return revocation.NewRedisList(client.Client), client
}

func newPublisher(cfg *config.Config) (domainRequest.Publisher, func()) {
	if cfg.MQTT.Broker == "" {
		logger.Info("MQTT_BROKER not set; request events are not published")
		return events.NoopPublisher{}, func() {}
	}

	client := mqtt.NewClient(&mqtt.Config{
		Broker:               cfg.MQTT.Broker,
		ClientID:             cfg.MQTT.ClientID,
		Username:             cfg.MQTT.Username,
		Password:             cfg.MQTT.Password,
		CleanSession:         true,
		KeepAlive:            30 * time.Second,
		ConnectTimeout:       10 * time.Second,
		PublishTimeout:       5 * time.Second,
		AutoReconnect:        true,
		MaxReconnectInterval: time.Minute,
	}, logger.Named("mqtt"))

	if err := client.Connect(); err != nil {
		logger.Error("MQTT unavailable; request events are not published", zap.Error(err))
		return events.NoopPublisher{}, func() {}
	}

	return events.NewMQTTPublisher(client, cfg.MQTT.TopicPrefix, byte(cfg.MQTT.QoS)), client.Disconnect
}
