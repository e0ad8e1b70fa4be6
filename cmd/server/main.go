package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	broadcastapp "github.com/autocare/platform/internal/application/broadcast"
	catalogapp "github.com/autocare/platform/internal/application/catalog"
	customerapp "github.com/autocare/platform/internal/application/customer"
	identityapp "github.com/autocare/platform/internal/application/identity"
	inventoryapp "github.com/autocare/platform/internal/application/inventory"
	revenueapp "github.com/autocare/platform/internal/application/revenue"
	settingsapp "github.com/autocare/platform/internal/application/settings"
	tradeapp "github.com/autocare/platform/internal/application/trade"
	"github.com/autocare/platform/internal/infrastructure/auth"
	"github.com/autocare/platform/internal/infrastructure/cache"
	"github.com/autocare/platform/internal/infrastructure/config"
	"github.com/autocare/platform/internal/infrastructure/event"
	"github.com/autocare/platform/internal/infrastructure/export"
	"github.com/autocare/platform/internal/infrastructure/logger"
	"github.com/autocare/platform/internal/infrastructure/persistence"
	"github.com/autocare/platform/internal/infrastructure/realtime"
	"github.com/autocare/platform/internal/infrastructure/storage"
	"github.com/autocare/platform/internal/infrastructure/telemetry"
	"github.com/autocare/platform/internal/interfaces/http/handler"
	"github.com/autocare/platform/internal/interfaces/http/middleware"
	"github.com/autocare/platform/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	logCfg := &logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	}
	log, err := logger.New(logCfg)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}

	// Telemetry comes first so the log bridge can be teed into the logger
	providers, err := telemetry.Setup(context.Background(), cfg.Telemetry, log)
	if err != nil {
		log.Fatal("Failed to initialize telemetry", zap.Error(err))
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := providers.Shutdown(ctx); err != nil {
			log.Error("Error shutting down telemetry", zap.Error(err))
		}
	}()
	// Rebuild the logger to tee into the OTLP log exporter
	if providers.Logs.IsEnabled() {
		if log, err = logger.New(logCfg, providers.Logs.Core(logger.ParseLevel(cfg.Log.Level))); err != nil {
			panic("Failed to initialize logger: " + err.Error())
		}
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting AutoCare platform",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	// Database with a zap-backed GORM logger
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabase(&cfg.Database, persistence.WithLogger(gormLog))
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	// Enable database tracing if configured
	if cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled {
		if err := telemetry.RegisterDBTracing(db.DB, db.Driver, log); err != nil {
			log.Warn("Database tracing unavailable", zap.Error(err))
		}
	}
	if cfg.Database.AutoMigrate {
		if err := db.AutoMigrate(); err != nil {
			log.Fatal("Failed to auto-migrate database", zap.Error(err))
		}
		log.Warn("Schema created with auto-migrate; run cmd/migrate in production")
	}
	log.Info("Database connected successfully", zap.String("driver", db.Driver))

	// Redis backs the catalog cache, the token blacklist and the broadcast relay.
	// Without it each instance keeps these in memory.
	var (
		redisClient *redis.Client
		readCache   cache.Cache
		blacklist   auth.TokenBlacklist
	)
	if cfg.Redis.Enabled {
		redisClient, err = cache.NewRedisClient(cfg.Redis)
		if err != nil {
			log.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				log.Error("Error closing Redis", zap.Error(err))
			}
		}()
		readCache = cache.NewRedisCache(redisClient, cfg.Cache.KeyPrefix)
		blacklist = auth.NewRedisTokenBlacklist(redisClient, cfg.Cache.KeyPrefix)
		log.Info("Redis connected", zap.String("addr", cfg.Redis.Addr()))
	} else {
		memCache := cache.NewMemoryCache(time.Minute)
		defer func() {
			_ = memCache.Close()
		}()
		readCache = memCache
		blacklist = auth.NewInMemoryTokenBlacklist()
		log.Info("Redis disabled, using in-process cache and token blacklist")
	}
	// Catalog read-through cache
	catalogCache := cache.NewLoader(readCache, cfg.Cache.CatalogTTL, log)

	// Initialize repositories
	partnerRepo := persistence.NewGormPartnerRepository(db.DB)
	userRepo := persistence.NewGormUserRepository(db.DB)
	productRepo := persistence.NewGormProductRepository(db.DB)
	categoryRepo := persistence.NewGormCategoryRepository(db.DB)
	serviceRepo := persistence.NewGormServiceOfferingRepository(db.DB)
	customerRepo := persistence.NewGormCustomerRepository(db.DB)
	saleRepo := persistence.NewGormSaleRepository(db.DB)
	orderRepo := persistence.NewGormPurchaseOrderRepository(db.DB)
	movementRepo := persistence.NewGormMovementRepository(db.DB)
	settingRepo := persistence.NewGormSettingRepository(db.DB)
	revenueRepo := persistence.NewGormRevenueRepository(db.DB)
	syncLogRepo := persistence.NewGormSyncLogRepository(db.DB)
	txScope := persistence.NewGormTransactionScope(db.DB)

	// Identity services
	jwtService := auth.NewJWTService(cfg.JWT)
	authService := identityapp.NewAuthService(userRepo, partnerRepo, jwtService, blacklist, log)
	userService := identityapp.NewUserService(userRepo, partnerRepo, blacklist, cfg.JWT.RefreshTokenExpiration, log)
	partnerService := identityapp.NewPartnerService(partnerRepo, log)

	// Catalog, customers, settings
	productService := catalogapp.NewProductService(productRepo, categoryRepo, catalogCache, log)
	categoryService := catalogapp.NewCategoryService(categoryRepo)
	serviceOfferingService := catalogapp.NewServiceOfferingService(serviceRepo)
	customerService := customerapp.NewCustomerService(customerRepo)
	settingsService := settingsapp.NewSettingsService(settingRepo, log)

	// Trade and inventory
	saleService := tradeapp.NewSaleService(txScope, saleRepo, productRepo, settingsService, log)
	purchaseOrderService := tradeapp.NewPurchaseOrderService(txScope, orderRepo, productRepo, log)
	stockService := inventoryapp.NewStockService(txScope, productRepo, movementRepo, log)
	// Stock changes invalidate cached products
	saleService.SetProductCache(productService)
	purchaseOrderService.SetProductCache(productService)
	stockService.SetProductCache(productService)
	saleService.SetMetrics(providers.Business)

	// Revenue ingest and reporting
	revenueService := revenueapp.NewRevenueService(revenueRepo, syncLogRepo, log)
	revenueService.SetMetrics(providers.Business)
	// Report archive storage
	archive, err := storage.New(context.Background(), &cfg.Storage, log)
	if err != nil {
		log.Fatal("Failed to initialize report storage", zap.Error(err))
	}
	revenueService.SetExporter(export.RevenueWorkbook, export.ContentTypeXLSX, archive)

	// Broadcast router, relayed through Redis when several instances run
	hubOpts := []realtime.HubOption{realtime.WithMetrics(providers.Business)}
	if redisClient != nil {
		hubOpts = append(hubOpts, realtime.WithRelay(realtime.NewRedisRelay(redisClient, cfg.Broadcast.RedisChannel, log)))
	}
	hub := realtime.NewHub(cfg.Broadcast, log, hubOpts...)
	if err := hub.Start(context.Background()); err != nil {
		log.Fatal("Failed to start broadcast hub", zap.Error(err))
	}
	broadcastService := broadcastapp.NewService(hub, log)

	// Domain events fan out to the partner's sockets
	eventBus := event.NewInMemoryEventBus(log)
	forwarder := broadcastapp.NewEventForwarder(hub, log)
	forwarder.SetAlertPolicy(settingsService)
	eventBus.Subscribe(forwarder)
	if err := eventBus.Start(context.Background()); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()
	log.Info("Event handlers registered", zap.Strings("broadcast_events", forwarder.EventTypes()))

	// Wire event publishing into services
	saleService.SetEventPublisher(eventBus)
	purchaseOrderService.SetEventPublisher(eventBus)
	stockService.SetEventPublisher(eventBus)

	// Health checks: the database is critical, Redis only degrades
	checks := []handler.HealthCheck{{Name: "database", Critical: true, Check: db.Ping}}
	if redisClient != nil {
		checks = append(checks, handler.HealthCheck{Name: "redis", Check: func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		}})
	}

	// Set Gin mode based on environment
	if cfg.App.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	// Create Gin engine
	engine := gin.New()

	// Middleware order: request id, recovery, tracing, logging, headers,
	// body limit, rate limit. Auth-dependent middleware runs on the API group.
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(middleware.TracingWithConfig(middleware.TracingConfig{
		ServiceName: cfg.Telemetry.ServiceName,
		Enabled:     cfg.Telemetry.Enabled,
	}))
	engine.Use(middleware.HTTPMetrics(providers.Meter))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())
	engine.Use(middleware.CORSWithConfig(middleware.CORSFromConfig(cfg.HTTP)))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))
	if cfg.HTTP.RateLimitEnabled {
		rateLimiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		engine.Use(middleware.RateLimitByKey(rateLimiter, middleware.PartnerOrIPKey))
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
		)
	}

	// JWT authentication with token blacklist
	jwtMiddleware := middleware.JWTAuthMiddlewareWithConfig(middleware.JWTMiddlewareConfig{
		JWTService:      jwtService,
		TokenBlacklist:  blacklist,
		SkipPaths:       router.PublicAuthPaths,
		QueryTokenPaths: []string{"/ws"},
		Logger:          log,
	})

	// Register routes
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	router.RegisterServerRoutes(r, router.ServerHandlers{
		System:          handler.NewSystemHandler(cfg.App.Name, version, checks...),
		Auth:            handler.NewAuthHandler(authService),
		User:            handler.NewUserHandler(userService),
		Partner:         handler.NewPartnerHandler(partnerService),
		Product:         handler.NewProductHandler(productService),
		Category:        handler.NewCategoryHandler(categoryService),
		ServiceOffering: handler.NewServiceOfferingHandler(serviceOfferingService),
		Customer:        handler.NewCustomerHandler(customerService),
		Sale:            handler.NewSaleHandler(saleService),
		PurchaseOrder:   handler.NewPurchaseOrderHandler(purchaseOrderService),
		Inventory:       handler.NewInventoryHandler(stockService),
		Settings:        handler.NewSettingsHandler(settingsService),
		Revenue:         handler.NewRevenueHandler(revenueService),
		Broadcast:       handler.NewBroadcastHandler(broadcastService, hub),
	}, router.ServerAuth{
		JWT:        jwtMiddleware,
		LoginLimit: middleware.AuthRateLimit(middleware.NewRateLimiter(10, time.Minute)),
		AfterAuth: []gin.HandlerFunc{
			middleware.TracingAttributeInjector(),
			middleware.SpanErrorMarker(),
			middleware.Profiling(middleware.ProfilingConfig{
				Enabled:   providers.Profiler.IsEnabled(),
				SkipPaths: middleware.DefaultProfilingConfig().SkipPaths,
			}),
		},
	})

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Sockets are hijacked connections; Shutdown does not close them
	if err := hub.Stop(ctx); err != nil {
		log.Error("Error stopping broadcast hub", zap.Error(err))
	}
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
