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

	localcacheapp "github.com/autocare/platform/internal/application/localcache"
	revenueapp "github.com/autocare/platform/internal/application/revenue"
	settingsapp "github.com/autocare/platform/internal/application/settings"
	tradeapp "github.com/autocare/platform/internal/application/trade"
	"github.com/autocare/platform/internal/infrastructure/config"
	"github.com/autocare/platform/internal/infrastructure/logger"
	"github.com/autocare/platform/internal/infrastructure/migration"
	"github.com/autocare/platform/internal/infrastructure/persistence"
	"github.com/autocare/platform/internal/infrastructure/remote"
	"github.com/autocare/platform/internal/infrastructure/scheduler"
	"github.com/autocare/platform/internal/infrastructure/telemetry"
	"github.com/autocare/platform/internal/interfaces/http/handler"
	"github.com/autocare/platform/internal/interfaces/http/middleware"
	"github.com/autocare/platform/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

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
	if providers.Logs.IsEnabled() {
		if log, err = logger.New(logCfg, providers.Logs.Core(logger.ParseLevel(cfg.Log.Level))); err != nil {
			panic("Failed to initialize logger: " + err.Error())
		}
	}
	defer func() {
		_ = logger.Sync(log)
	}()
	log = log.With(zap.String("device_id", cfg.Agent.DeviceID))

	if cfg.Agent.PartnerID == "" {
		log.Fatal("agent.partner_id is required")
	}
	partnerID := uuid.MustParse(cfg.Agent.PartnerID)

	log.Info("Starting AutoCare agent",
		zap.String("remote", cfg.Agent.RemoteBaseURL),
		zap.String("port", cfg.Agent.Port),
		zap.String("version", version),
	)

	// Local SQLite store, schema applied from the embedded migrations
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabase(&config.DatabaseConfig{
		Driver: config.DriverSQLite,
		Path:   cfg.Agent.SQLitePath,
	}, persistence.WithLogger(gormLog))
	if err != nil {
		log.Fatal("Failed to open local database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing local database", zap.Error(err))
		}
	}()
	sqlDB, err := db.DB.DB()
	if err != nil {
		log.Fatal("Failed to access local database", zap.Error(err))
	}
	migrator, err := migration.New(sqlDB, config.DriverSQLite, migration.AgentSource(), log)
	if err != nil {
		log.Fatal("Failed to prepare local migrations", zap.Error(err))
	}
	if err := migrator.Up(); err != nil {
		log.Fatal("Failed to migrate local database", zap.Error(err))
	}
	log.Info("Local database ready", zap.String("path", cfg.Agent.SQLitePath))

	client, err := remote.New(cfg.Agent.RemoteBaseURL, remote.Credentials{
		Username: cfg.Agent.Username,
		Password: cfg.Agent.Password,
	}, cfg.Agent.RequestTimeout, remote.WithLogger(log))
	if err != nil {
		log.Fatal("Invalid remote platform address", zap.Error(err))
	}

	saleRepo := persistence.NewGormSaleRepository(db.DB)
	settingRepo := persistence.NewGormSettingRepository(db.DB)
	revenueRepo := persistence.NewGormRevenueRepository(db.DB)
	syncLogRepo := persistence.NewGormSyncLogRepository(db.DB)
	cacheRepo := persistence.NewGormLocalCacheRepository(db.DB)
	txScope := persistence.NewGormTransactionScope(db.DB)

	settingsService := settingsapp.NewSettingsService(settingRepo, log)

	// Stock lives on the platform; the register only records sales.
	// Business days follow business_timezone, else the machine's zone.
	saleService := tradeapp.NewSaleService(txScope, saleRepo, nil, settingsService, log)
	saleService.DisableStockTracking()
	saleService.SetMetrics(providers.Business)

	syncService := revenueapp.NewSyncService(revenueapp.SyncConfig{
		PartnerID:   partnerID,
		DeviceID:    cfg.Agent.DeviceID,
		MaxAttempts: cfg.Agent.SyncMaxAttempts,
		Location:    time.Local,
	}, revenueRepo, syncLogRepo, saleService, client, log)
	syncService.SetMetrics(providers.Business)
	syncService.SetZoneSource(settingsService)

	cacheManager := localcacheapp.NewCacheManager(cacheRepo, client, cfg.Agent.CacheTTL, log)

	tasks := scheduler.New(log)
	for _, task := range []scheduler.Task{
		{
			Name:       "revenue-sync",
			Interval:   cfg.Agent.SyncInterval,
			RunOnStart: true,
			Run:        syncService.Run,
		},
		{
			Name:     "cache-cleanup",
			Interval: cfg.Agent.CleanupInterval,
			Run: func(ctx context.Context) error {
				_, err := cacheManager.CleanExpired(ctx)
				return err
			},
		},
	} {
		if err := tasks.Add(task); err != nil {
			log.Fatal("Failed to register task", zap.String("task", task.Name), zap.Error(err))
		}
	}

	if cfg.App.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := gin.New()
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))

	saleHandler := handler.NewLocalSaleHandler(saleService, partnerID, cfg.Agent.DeviceID, time.Local)
	saleHandler.SetZoneSource(settingsService)

	router.RegisterAgentRoutes(engine, router.AgentHandlers{
		System: handler.NewSystemHandler("autocare-agent", version,
			handler.HealthCheck{Name: "database", Critical: true, Check: db.Ping},
		),
		Settings: handler.NewLocalSettingsHandler(settingsService, partnerID),
		Sale:     saleHandler,
		Sync:     handler.NewLocalSyncHandler(syncService),
		Cache:    handler.NewLocalCacheHandler(cacheManager),
		Proxy:    handler.NewProxyHandler(client, nil, log),
	})

	// Loopback only: the local API has no login
	srv := &http.Server{
		Addr:              net.JoinHostPort("127.0.0.1", cfg.Agent.Port),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	if err := tasks.Start(context.Background()); err != nil {
		log.Fatal("Failed to start scheduler", zap.Error(err))
	}

	go func() {
		log.Info("Agent listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start agent", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down agent...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Agent forced to shutdown", zap.Error(err))
	}
	if err := tasks.Stop(ctx); err != nil {
		log.Error("Error stopping scheduler", zap.Error(err))
	}
	log.Info("Agent exited gracefully")
}
