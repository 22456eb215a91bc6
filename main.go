// Package main provides the main entry point for the MagnetLab signal intake pipeline
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/magnetlab/signal-pipeline/app/handlers"
	"github.com/magnetlab/signal-pipeline/app/middleware"
	"github.com/magnetlab/signal-pipeline/app/router"
	"github.com/magnetlab/signal-pipeline/app/scheduler"
	"github.com/magnetlab/signal-pipeline/app/services"
	businessflow "github.com/magnetlab/signal-pipeline/business_flow"
	"github.com/magnetlab/signal-pipeline/config"
	"github.com/magnetlab/signal-pipeline/models"
	"github.com/magnetlab/signal-pipeline/repository"
)

// Application represents the main application structure
type Application struct {
	router    *router.FiberRouter
	config    *config.ProductionConfig
	server    *fiber.App
	stopFuncs []func()
}

func main() {
	log.Println("Starting signal pipeline application...")

	// Load production configuration
	cfg, err := config.LoadProductionConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize application
	app, err := initializeApplication(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	// Setup routes
	app.router.SetupRoutes()

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// Start server in goroutine
	go func() {
		address := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		log.Printf("Server starting on %s", address)

		if err := app.server.Listen(address); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for shutdown signal
	<-sigChan
	log.Println("Shutting down gracefully...")

	// Stop background workers
	for _, fn := range app.stopFuncs {
		fn()
	}

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := app.server.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}

	log.Println("Server stopped")
}

// initializeDatabase initializes the database connection with connection pooling
func initializeDatabase(cfg config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name, cfg.SSLMode)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Get underlying sql.DB for connection pooling configuration
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	// Configure connection pooling
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	// Test the connection
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Printf("Database connection established with %d max open connections, %d max idle connections",
		cfg.MaxOpenConns, cfg.MaxIdleConns)

	return db, nil
}

// initializeCache initializes the Redis client and verifies connectivity
func initializeCache(cfg config.CacheConfig) (*redis.Client, error) {
	if !cfg.Enabled {
		return nil, nil
	}

	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	// Override DB if provided in config
	opt.DB = cfg.RedisDB

	rc := redis.NewClient(opt)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rc.Ping(ctx).Err(); err != nil {
		_ = rc.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	log.Printf("Redis connection established (db=%d)", cfg.RedisDB)
	return rc, nil
}

// startCacheHealthMonitor starts a background goroutine that periodically pings Redis
// to detect connectivity issues. The returned cancel function stops the monitor.
func startCacheHealthMonitor(parent context.Context, client *redis.Client, interval time.Duration) func() {
	monitorCtx, cancel := context.WithCancel(parent)
	if interval <= 0 {
		interval = 30 * time.Second
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-monitorCtx.Done():
				return
			case <-ticker.C:
				ctx, c := context.WithTimeout(context.Background(), 3*time.Second)
				if err := client.Ping(ctx).Err(); err != nil {
					log.Printf("Redis healthcheck failed: %v", err)
				}
				c()
			}
		}
	}()
	return cancel
}

// initializeApplication initializes the main application components
func initializeApplication(cfg *config.ProductionConfig) (*Application, error) {
	var stopFuncs []func()

	// Initialize database
	db, err := initializeDatabase(cfg.Database)
	if err != nil {
		return nil, err
	}

	if err := models.AutoMigrate(db); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	rc, err := initializeCache(cfg.Cache)
	if err != nil {
		return nil, err
	}
	if rc != nil {
		cancel := startCacheHealthMonitor(context.Background(), rc, 30*time.Second)
		stopFuncs = append(stopFuncs, cancel)
	}

	// Initialize repositories
	monitorRepo := repository.NewSignalMonitorRepository(db)
	leadRepo := repository.NewSignalLeadRepository(db)
	eventRepo := repository.NewSignalEventRepository(db)
	filterSetRepo := repository.NewICPFilterSetRepository(db)
	scanRunRepo := repository.NewScanRunRepository(db)

	// Initialize token service
	tokenService, err := services.NewTokenService(
		cfg.JWT.AccessTokenTTL,
		cfg.JWT.RefreshTokenTTL,
		cfg.JWT.Issuer,
		cfg.JWT.Audience,
		cfg.JWT.SecretKey,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize token service: %w", err)
	}

	log.Printf("Token service initialized with issuer: %s, audience: %s", cfg.JWT.Issuer, cfg.JWT.Audience)

	exportService := services.NewExportService()

	// ICP filters are read on every engager, so they go through the cache
	filterSource := businessflow.NewCachedICPFilterSource(
		filterSetRepo,
		rc,
		cfg.Cache.FilterSetTTL,
		cfg.Cache.RedisPrefix,
		log.Default(),
	)

	// Initialize flows
	signalEngine := businessflow.NewSignalEngineFlow(db, leadRepo, eventRepo, filterSource, log.Default())
	monitorFlow := businessflow.NewMonitorFlow(db, monitorRepo, scanRunRepo, log.Default())
	leadFlow := businessflow.NewLeadFlow(leadRepo, eventRepo, log.Default())
	icpFiltersFlow := businessflow.NewICPFiltersFlow(db, filterSetRepo, filterSource, log.Default())

	outreachClient := scheduler.NewHTTPOutreachClient(cfg.Outreach)
	pushFlow := businessflow.NewOutboundPushFlow(db, leadRepo, outreachClient, cfg.Scheduler.PushBatchSize, log.Default())

	// Scan coordination: redis lock across instances, noop for single-node deployments
	var monitorLock scheduler.MonitorLock
	if rc != nil {
		monitorLock = scheduler.NewRedisMonitorLock(rc, cfg.Cache.RedisPrefix, cfg.Scheduler.ScanLockTTL)
	} else {
		monitorLock = scheduler.NewNoopMonitorLock()
	}

	harvestClient := scheduler.NewHTTPHarvestClient(cfg.Harvest)
	scanScheduler := scheduler.NewScanScheduler(
		monitorRepo,
		scanRunRepo,
		signalEngine,
		harvestClient,
		monitorLock,
		cfg.Scheduler,
		cfg.Harvest,
		cfg.Logging,
	)

	if cfg.Scheduler.EnableScanning {
		stopScan := scanScheduler.Start(context.Background())
		stopFuncs = append(stopFuncs, stopScan)
	}

	if cfg.Scheduler.EnablePushing {
		pushScheduler := scheduler.NewPushScheduler(pushFlow, cfg.Scheduler, cfg.Logging)
		stopPush := pushScheduler.Start(context.Background())
		stopFuncs = append(stopFuncs, stopPush)
	}

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(tokenService, cfg.Security, cfg.JWT)
	monitorHandler := handlers.NewMonitorHandler(monitorFlow, scanScheduler)
	leadHandler := handlers.NewLeadHandler(leadFlow, exportService)
	icpFilterHandler := handlers.NewICPFilterHandler(icpFiltersFlow)

	// Initialize auth middleware
	authMiddleware := middleware.NewAuthMiddleware(tokenService)

	// Initialize router
	appRouter := router.NewFiberRouter(
		cfg,
		authHandler,
		monitorHandler,
		leadHandler,
		icpFilterHandler,
		authMiddleware,
	)

	fiberRouter := appRouter.(*router.FiberRouter)
	application := &Application{
		router:    fiberRouter,
		config:    cfg,
		server:    fiberRouter.GetApp(),
		stopFuncs: stopFuncs,
	}

	return application, nil
}
