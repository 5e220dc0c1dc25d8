package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/e-kondr01/mobile-apps-development-project-backend/internal/cache"
	"github.com/e-kondr01/mobile-apps-development-project-backend/internal/config"
	"github.com/e-kondr01/mobile-apps-development-project-backend/internal/database"
	"github.com/e-kondr01/mobile-apps-development-project-backend/internal/handler"
	"github.com/e-kondr01/mobile-apps-development-project-backend/internal/middleware"
	"github.com/e-kondr01/mobile-apps-development-project-backend/internal/repository"
	"github.com/e-kondr01/mobile-apps-development-project-backend/internal/service"
	"github.com/e-kondr01/mobile-apps-development-project-backend/internal/syncer"
	"github.com/e-kondr01/mobile-apps-development-project-backend/internal/utils"
	"github.com/e-kondr01/mobile-apps-development-project-backend/internal/worker"
	"github.com/e-kondr01/mobile-apps-development-project-backend/pkg/onec"
)

// main is the entrypoint of the catalog sync backend.
func main() {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// 2. Setup logger
	setupLogger(cfg.Env)
	log.Info().Str("env", cfg.Env).Msg("starting catalog sync backend")

	utils.InitJWT(cfg.JWTSecret)

	// 3. Connect database
	db, err := database.Connect(&cfg.DB)
	if err != nil {
		log.Error().Err(err).Msg("database connection failed")
		os.Exit(1)
	}
	defer db.Close()

	// 3a. Run migrations
	if err := runMigrations(db.DB); err != nil {
		log.Error().Err(err).Msg("migration failed")
		os.Exit(1)
	}
	log.Info().Msg("migrations completed successfully")

	// 3b. Connect to Redis
	redisClient, err := cache.NewRedisClient(&cfg.Redis)
	if err != nil {
		log.Error().Err(err).Msg("redis connection failed")
		os.Exit(1)
	}
	defer redisClient.Close()
	log.Info().Msg("redis connected successfully")

	productCache := cache.NewProductCache(redisClient)

	// 4. Initialize the 1C OData client
	onecClient, err := onec.NewClient(onec.Config{
		URL:               cfg.OneC.URL,
		Username:          cfg.OneC.Login,
		Password:          cfg.OneC.Password,
		Timeout:           cfg.OneC.Timeout,
		RequestsPerSecond: cfg.OneC.RequestsPerSecond,
	})
	if err != nil {
		log.Error().Err(err).Msg("onec client initialization failed")
		os.Exit(1)
	}

	// 5. Initialize repositories
	productRepo := repository.NewProductRepository(db)
	barcodeRepo := repository.NewBarcodeRepository(db)
	characteristicRepo := repository.NewCharacteristicRepository(db)
	priceTypeRepo := repository.NewPriceTypeRepository(db)
	movementRepo := repository.NewMovementRepository(db)
	priceChangeRepo := repository.NewPriceChangeRepository(db)
	adminRepo := repository.NewAdminUserRepository(db)
	syncStore := repository.NewSyncStore(db)

	// 6. Initialize services
	authSvc := service.NewAuthService(adminRepo)
	productSvc := service.NewProductService(productRepo, productCache)
	syncSvc := service.NewSyncService(onecClient, syncer.New(syncStore), productCache, cfg.Location)

	// 7. Initialize handlers
	handlers := &Handlers{
		Health:  handler.NewHealthHandler(db),
		Auth:    handler.NewAuthHandler(authSvc),
		Product: handler.NewProductHandler(productSvc),
		Catalog: handler.NewCatalogHandler(barcodeRepo, characteristicRepo, priceTypeRepo, movementRepo, priceChangeRepo),
		Sync:    handler.NewSyncHandler(syncSvc),
	}

	// 8. Setup router
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORSMiddleware(cfg.CORSAllowedHosts))
	router.Use(middleware.LoggingMiddleware())
	setupRoutes(router, handlers, middleware.NewJWTMiddleware())

	// 9. Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 10. Start the sync worker
	go worker.NewSyncWorker(
		syncSvc,
		cfg.Worker.SyncInterval,
		cfg.Worker.RetryAttempts,
		cfg.Worker.RetryBackoff,
	).Start(ctx)

	// 11. Start HTTP server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// 12. Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server exited")
}

// Handlers groups all HTTP handlers used by the server.
type Handlers struct {
	Health  *handler.HealthHandler
	Auth    *handler.AuthHandler
	Product *handler.ProductHandler
	Catalog *handler.CatalogHandler
	Sync    *handler.SyncHandler
}

// setupRoutes registers all routes.
func setupRoutes(router *gin.Engine, handlers *Handlers, jwtMiddleware *middleware.JWTMiddleware) {
	router.GET("/v1/health", handlers.Health.GetHealth)
	router.POST("/v1/auth/login", handlers.Auth.Login)

	v1 := router.Group("/v1")
	v1.Use(jwtMiddleware.Handle())
	{
		v1.GET("/products", handlers.Product.List)
		v1.GET("/products/:ref_key/amounts", handlers.Product.GetAmounts)
		v1.GET("/products/:ref_key/prices", handlers.Product.GetPrices)

		v1.GET("/barcodes", handlers.Catalog.ListBarcodes)
		v1.GET("/characteristics", handlers.Catalog.ListCharacteristics)
		v1.GET("/price-types", handlers.Catalog.ListPriceTypes)
		v1.GET("/product-movements", handlers.Catalog.ListMovements)
		v1.GET("/price-changes", handlers.Catalog.ListPriceChanges)

		v1.POST("/sync", handlers.Sync.TriggerAll)
		v1.POST("/sync/:entity", handlers.Sync.TriggerEntity)
		v1.GET("/sync/status", handlers.Sync.Status)
	}
}

// runMigrations runs database migrations using golang-migrate.
func runMigrations(db *sql.DB) error {
	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("could not create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		"file://migrations",
		"postgres", driver)
	if err != nil {
		return fmt.Errorf("could not create migration instance: %w", err)
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("could not run migrations: %w", err)
	}

	return nil
}

func setupLogger(env string) {
	if env == "production" {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
}
