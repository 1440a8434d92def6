package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/arzfeed/pricegate-api/internal/config"
	"github.com/arzfeed/pricegate-api/internal/domain/apikey"
	"github.com/arzfeed/pricegate-api/internal/domain/plan"
	"github.com/arzfeed/pricegate-api/internal/domain/usage"
	"github.com/arzfeed/pricegate-api/internal/handler"
	"github.com/arzfeed/pricegate-api/internal/handler/middleware"
	"github.com/arzfeed/pricegate-api/internal/ierr"
	"github.com/arzfeed/pricegate-api/internal/ratelimit"
	"github.com/arzfeed/pricegate-api/internal/service"
	"github.com/arzfeed/pricegate-api/internal/storage/memstorage"
	"github.com/arzfeed/pricegate-api/internal/storage/postgres"
	"github.com/arzfeed/pricegate-api/internal/storage/redis"
	"github.com/arzfeed/pricegate-api/internal/upstream"
	"github.com/arzfeed/pricegate-api/internal/worker"
	"github.com/arzfeed/pricegate-api/pkg/logger"
)

func main() {
	configPath := flag.String("config", "./configs/config.dev.yaml", "Path to configuration file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLogger, err := logger.NewZapLogger(cfg.Log.Level)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer appLogger.Sync()

	sugarLogger := appLogger.Sugar()
	sugarLogger.Info("Starting pricegate-api...")
	sugarLogger.Infof("Log level set to: %s", cfg.Log.Level)

	appCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var (
		dbPool      *pgxpool.Pool
		redisClient *goredis.Client
		planRepo    plan.Repository
		keyRepo     apikey.Repository
		usageRepo   usage.Repository
	)

	if cfg.Database.URL != "" {
		dbPool, err = postgres.NewPgxPool(appCtx, &cfg.Database, appLogger)
		if err != nil {
			sugarLogger.Fatalf("Failed to connect to PostgreSQL: %v", err)
		}
		defer dbPool.Close()

		if err := postgres.EnsureSchema(appCtx, dbPool, appLogger); err != nil {
			sugarLogger.Fatalf("Failed to ensure database schema: %v", err)
		}

		pgPlanRepo := postgres.NewPlanRepository(dbPool, appLogger)
		if err := pgPlanRepo.SeedDefaultPlans(appCtx); err != nil {
			sugarLogger.Fatalf("Failed to seed default plans: %v", err)
		}

		planRepo = pgPlanRepo
		keyRepo = postgres.NewAPIKeyRepository(dbPool, appLogger)
		usageRepo = postgres.NewUsageRepository(dbPool, appLogger)
	} else {
		if !cfg.Demo.Enabled {
			sugarLogger.Fatal("DATABASE_URL is required unless demo mode is enabled")
		}
		sugarLogger.Warn("Running with in-memory storage; issued keys do not survive a restart")
		planRepo = memstorage.NewPlanRepository(plan.DefaultPlans)
		keyRepo = memstorage.NewAPIKeyRepository()
		usageRepo = memstorage.NewUsageRepository()
	}

	var limiter ratelimit.Limiter
	var snapshotCache upstream.SnapshotCache
	if cfg.Redis.Addr != "" {
		redisClient, err = redis.NewRedisClient(appCtx, &cfg.Redis, appLogger)
		if err != nil {
			sugarLogger.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer redisClient.Close()

		limiter = ratelimit.NewRedisLimiter(redisClient, cfg.RateLimit.CounterTTL, appLogger)
		snapshotCache = upstream.NewRedisSnapshotCache(redisClient, 10*time.Minute)
	} else {
		sugarLogger.Warn("Redis not configured; using in-process rate limiting and no snapshot cache")
		limiter = ratelimit.NewMemoryLimiter()
	}

	upstreamClient := upstream.NewClient(&cfg.Upstream, appLogger)
	feed := upstream.NewFeed(upstreamClient, snapshotCache, cfg.Upstream.SnapshotMaxAge, appLogger)

	authService, err := service.NewAuthService(&cfg.Auth, appLogger)
	if err != nil {
		sugarLogger.Fatalf("Failed to initialize auth service: %v", err)
	}
	catalogService := service.NewCatalogService(planRepo, appLogger)
	keyService := service.NewKeyService(keyRepo, cfg.Keys.Pepper, appLogger)
	usageService := service.NewUsageService(usageRepo, catalogService, keyService, appLogger)
	provisioningService := service.NewProvisioningService(catalogService, keyRepo, cfg.Keys.Pepper, cfg.Server.PublicBaseURL, cfg.Demo.Enabled, appLogger)
	gatewayService := service.NewGatewayService(keyService, planRepo, usageRepo, limiter, feed, appLogger)

	healthHandler := handler.NewHealthHandler(dbPool, redisClient, appLogger)
	planHandler := handler.NewPlanHandler(catalogService, appLogger)
	purchaseHandler := handler.NewPurchaseHandler(provisioningService, appLogger)
	keysHandler := handler.NewKeysHandler(keyService, usageService, appLogger)
	selfKeyHandler := handler.NewSelfKeyHandler(keyService, usageService, appLogger)
	pricesHandler := handler.NewPricesHandler(gatewayService, appLogger)
	adminHandler := handler.NewAdminHandler(keyService, appLogger)

	authMiddleware := middleware.AuthMiddleware(authService, appLogger)
	apiKeyAuthMiddleware := middleware.APIKeyAuthMiddleware(keyService, appLogger)
	adminAuthMiddleware := middleware.AdminAuthMiddleware(cfg.Admin.Token, appLogger)
	errorMiddleware := middleware.ErrorHandlerMiddleware(appLogger)

	router := gin.New()
	router.Use(gin.LoggerWithFormatter(func(param gin.LogFormatterParams) string {
		return fmt.Sprintf("%s - [%s] \"%s %s %s %d %s \"%s\" %s\"\n",
			param.ClientIP,
			param.TimeStamp.Format(time.RFC1123),
			param.Method,
			param.Path,
			param.Request.Proto,
			param.StatusCode,
			param.Latency,
			param.Request.UserAgent(),
			param.ErrorMessage,
		)
	}))
	router.Use(gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		logMsg := "Panic recovered"
		if err, ok := recovered.(string); ok {
			logMsg = fmt.Sprintf("%s: %s", logMsg, err)
		} else if err, ok := recovered.(error); ok {
			logMsg = fmt.Sprintf("%s: %v", logMsg, err)
		}
		appLogger.Error(logMsg, zap.Stack("stack"))

		_ = c.Error(ierr.ErrInternalServer)
		c.Abort()
	}))

	corsConfig := cors.Config{
		AllowOrigins: []string{"http://localhost:3000"},
		AllowMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders: []string{
			"Origin",
			"Content-Type",
			"Accept",
			"Authorization",
			"X-API-Key",
		},
		ExposeHeaders:    []string{"Content-Length", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	router.Use(cors.New(corsConfig))
	router.Use(errorMiddleware)

	router.GET("/healthz", healthHandler.Check)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api")
	{
		api.GET("/plans", planHandler.List)
		api.POST("/purchase", purchaseHandler.PurchaseDemo)

		me := api.Group("/me")
		me.Use(authMiddleware)
		{
			me.POST("/purchase", purchaseHandler.PurchaseAuthenticated)
			me.GET("/keys", keysHandler.List)
			me.POST("/keys/:id/add-requests", keysHandler.AddRequests)
		}

		self := api.Group("/self")
		self.Use(apiKeyAuthMiddleware)
		{
			self.GET("/usage", selfKeyHandler.Usage)
			self.POST("/rotate", selfKeyHandler.Rotate)
		}

		v1 := api.Group("/v1")
		{
			v1.GET("/prices", pricesHandler.GetPrices)
			v1.GET("/key/:key/prices", pricesHandler.GetPricesByPathKey)
		}

		admin := api.Group("/admin")
		admin.Use(adminAuthMiddleware)
		{
			admin.GET("/keys", adminHandler.ListKeys)
		}
	}

	g, groupCtx := errgroup.WithContext(appCtx)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	g.Go(func() error {
		sugarLogger.Infof("HTTP server listening on port %s", cfg.Server.Port)

		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			sugarLogger.Errorf("HTTP server ListenAndServe error: %v", err)
			return fmt.Errorf("http server failed: %w", err)
		}
		sugarLogger.Info("HTTP server stopped listening.")
		return nil
	})

	g.Go(func() error {
		<-groupCtx.Done()
		sugarLogger.Info("Shutting down HTTP server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownPeriod)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			sugarLogger.Errorf("HTTP server graceful shutdown failed: %v", err)
			return fmt.Errorf("http server shutdown error: %w", err)
		}
		sugarLogger.Info("HTTP server shutdown complete.")
		return nil
	})

	if redisClient != nil {
		g.Go(func() error {
			if err := worker.RunWorkers(groupCtx, cfg, feed, appLogger); err != nil {
				sugarLogger.Error("Asynq worker failed", zap.Error(err))
				return fmt.Errorf("asynq worker error: %w", err)
			}
			sugarLogger.Info("Asynq workers finished gracefully.")
			return nil
		})
	}

	sugarLogger.Info("Application started. Waiting for interrupt signal or component error...")

	waitErr := g.Wait()

	if waitErr != nil {
		if errors.Is(waitErr, context.Canceled) {
			sugarLogger.Info("Shutdown reason: Context canceled (likely due to OS signal).")
		} else if errors.Is(waitErr, http.ErrServerClosed) {
			sugarLogger.Info("Shutdown reason: HTTP server closed normally.")
		} else {
			sugarLogger.Errorf("Application shutdown finished with unexpected error: %v", waitErr)
		}
	} else {
		sugarLogger.Info("Application shutdown successfully.")
	}

	sugarLogger.Info("Application exiting now.")
}
