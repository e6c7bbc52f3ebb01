package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	purchapp "github.com/procurio/backend/internal/application/purchasing"
	"github.com/procurio/backend/internal/domain/purchasing"
	"github.com/procurio/backend/internal/infrastructure/auth"
	"github.com/procurio/backend/internal/infrastructure/config"
	"github.com/procurio/backend/internal/infrastructure/event"
	"github.com/procurio/backend/internal/infrastructure/logger"
	"github.com/procurio/backend/internal/infrastructure/persistence"
	"github.com/procurio/backend/internal/interfaces/http/handler"
	"github.com/procurio/backend/internal/interfaces/http/middleware"
	"github.com/procurio/backend/internal/interfaces/http/router"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting Procurio Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Initialize database with a GORM logger bridged to zap
	gormLogger := logger.NewGormLogger(
		logger.Named(log, "gorm"),
		logger.MapGormLogLevel(cfg.Log.Level),
		logger.WithSlowThreshold(200*time.Millisecond),
	)
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLogger)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Failed to close database", zap.Error(err))
		}
	}()
	log.Info("Database connected",
		zap.String("host", cfg.Database.Host),
		zap.String("database", cfg.Database.DBName),
	)

	// Redis backs token revocation
	redisClient := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer func() {
		_ = redisClient.Close()
	}()
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		log.Warn("Redis unavailable, revoked tokens will not be rejected", zap.Error(err))
	}

	jwtService := auth.NewJWTService(cfg.JWT)
	revocationStore := auth.NewRedisTokenRevocationStore(redisClient)

	// Repositories
	orderRepo := persistence.NewGormPurchaseOrderRepository(db.DB)
	catalogResolver := persistence.NewGormCatalogResolver(db.DB)

	// Application services
	orderService := purchapp.NewPurchaseOrderService(orderRepo, catalogResolver)
	orderService.SetDocumentNumberConfig(purchapp.DocumentNumberConfig{
		Prefix:   cfg.Numbering.Prefix,
		Calendar: purchasing.CalendarKind(cfg.Numbering.Calendar),
	})

	// Domain events: synchronous in-memory bus with a lifecycle audit logger
	eventBus := event.NewInMemoryEventBus(logger.Named(log, "events"))
	eventBus.Subscribe(purchapp.NewOrderLifecycleLogHandler(logger.Named(log, "lifecycle")))
	orderService.SetEventPublisher(eventBus)

	// HTTP handlers
	orderHandler := handler.NewPurchaseOrderHandler(orderService)
	systemHandler := handler.NewSystemHandler()

	// Gin engine
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Fatal("Failed to set trusted proxies", zap.Error(err))
		}
	}

	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())

	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		corsConfig.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		corsConfig.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	if cfg.HTTP.RateLimitEnabled {
		limiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		engine.Use(middleware.RateLimit(limiter))
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
		)
	}

	// Health check stays outside the versioned API and JWT middleware
	engine.GET("/health", healthHandler(db))

	// Routes
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))

	jwtConfig := middleware.DefaultJWTConfig(jwtService)
	jwtConfig.RevocationStore = revocationStore
	jwtConfig.Logger = logger.Named(log, "jwt")
	jwtConfig.SkipPaths = append(jwtConfig.SkipPaths,
		"/api/v1/system/ping",
		"/api/v1/system/info",
	)
	r.Use(middleware.JWTAuthMiddlewareWithConfig(jwtConfig))

	purchasingGroup := router.NewDomainGroup("purchasing", "/purchase-orders").
		POST("", orderHandler.Create).
		GET("", orderHandler.List).
		GET("/summary", orderHandler.StatusSummary).
		GET("/status/:status", orderHandler.ListByStatus).
		GET("/supplier/:supplier_id", orderHandler.ListBySupplier).
		GET("/number/:order_number", orderHandler.GetByOrderNumber).
		GET("/:id", orderHandler.GetByID).
		PUT("/:id", orderHandler.Update).
		PUT("/:id/items/order", orderHandler.Reorder).
		POST("/:id/approve", middleware.RequirePermission("purchase_order:approve"), orderHandler.Approve).
		POST("/:id/reject", middleware.RequirePermission("purchase_order:approve"), orderHandler.Reject).
		POST("/:id/void", middleware.RequirePermission("purchase_order:void"), orderHandler.Void)

	systemGroup := router.NewDomainGroup("system", "/system").
		GET("/info", systemHandler.GetSystemInfo).
		GET("/ping", systemHandler.Ping)

	r.Register(purchasingGroup).
		Register(systemGroup).
		Setup()

	// HTTP server
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("HTTP server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	log.Info("Server exited")
}

func healthHandler(db *persistence.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			logger.GetGinLogger(c).Error("Health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "unhealthy",
				"error":  "database unreachable",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status": "healthy",
			"time":   time.Now().UTC().Format(time.RFC3339),
		})
	}
}
