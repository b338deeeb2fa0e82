package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/needanevo/Handyman-app-sub000/internal/config"
	"github.com/needanevo/Handyman-app-sub000/internal/db"
	"github.com/needanevo/Handyman-app-sub000/internal/geocode"
	httpHandlers "github.com/needanevo/Handyman-app-sub000/internal/http/handlers"
	httpRouter "github.com/needanevo/Handyman-app-sub000/internal/http/router"
	"github.com/needanevo/Handyman-app-sub000/internal/logger"
	"github.com/needanevo/Handyman-app-sub000/internal/notify"
	"github.com/needanevo/Handyman-app-sub000/internal/repository"
	"github.com/needanevo/Handyman-app-sub000/internal/service"
	"github.com/needanevo/Handyman-app-sub000/internal/storage"
	"github.com/needanevo/Handyman-app-sub000/internal/ws"
)

func main() {
	// Context for graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("main: failed to load configuration: %v", err)
	}

	if cfg.Env == "development" {
		logger.Init("debug")
		logger.SetTextFormatter()
	} else {
		logger.Init("info")
	}

	// Database and migrations.
	dbConn, err := db.NewPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("main: failed to connect to database: %v", err)
	}
	defer safeClose(dbConn)

	if err := db.RunMigrations(ctx, dbConn, cfg.MigrationsPath); err != nil {
		log.Fatalf("main: migrations failed: %v", err)
	}

	tokenManager := service.NewTokenManager(cfg.JWTSecret, cfg.RefreshSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)

	photoStorage, err := storage.NewPhotoStorage(cfg.MediaStoragePath, cfg.MaxUploadSizeMB)
	if err != nil {
		log.Fatalf("main: failed to prepare file storage: %v", err)
	}

	geocoder := geocode.NewClient(cfg.GeocodeBaseURL, cfg.GeocodeAPIKey)

	// Repositories.
	userRepo := repository.NewUserRepository(dbConn)
	jobRepo := repository.NewJobRepository(dbConn)
	proposalRepo := repository.NewProposalRepository(dbConn)
	payoutRepo := repository.NewPayoutRepository(dbConn)
	growthRepo := repository.NewGrowthRepository(dbConn)
	mediaRepo := repository.NewMediaRepository(dbConn)
	notificationRepo := repository.NewNotificationRepository(dbConn)

	// Websocket hub and the notification fan-out built on it.
	hub := ws.NewHub(ctx)
	hub.SetNotificationSaver(notify.NewSaverAdapter(notificationRepo))
	go hub.Run()

	notifier := notify.NewService(hub, notificationRepo)

	// Services.
	authService := service.NewAuthService(userRepo, tokenManager)
	jobService := service.NewJobService(jobRepo, geocoder)
	growthService := service.NewGrowthService(growthRepo)
	lifecycleService := service.NewLifecycleService(jobRepo, proposalRepo, growthService, notifier)
	matchingService := service.NewMatchingService(jobRepo, userRepo, cfg.MatchRadiusMiles, cfg.ContractorCapacity)
	proposalService := service.NewProposalService(proposalRepo, jobRepo, notifier)
	payoutService := service.NewPayoutService(payoutRepo)
	profileService := service.NewProfileService(userRepo, geocoder, growthService)

	// HTTP handlers.
	authHandler := httpHandlers.NewAuthHandler(authService)
	jobHandler := httpHandlers.NewJobHandler(jobService, lifecycleService, matchingService)
	proposalHandler := httpHandlers.NewProposalHandler(proposalService)
	walletHandler := httpHandlers.NewWalletHandler(payoutService)
	growthHandler := httpHandlers.NewGrowthHandler(growthService, jobService)
	profileHandler := httpHandlers.NewProfileHandler(profileService)
	mediaHandler := httpHandlers.NewMediaHandler(mediaRepo, photoStorage)
	notificationHandler := httpHandlers.NewNotificationHandler(notificationRepo)
	wsHandler := httpHandlers.NewWSHandler(hub, cfg.AllowedOrigins)
	healthHandler := httpHandlers.NewHealthHandler(dbConn)

	engine := httpRouter.SetupRouter(
		cfg,
		authHandler,
		jobHandler,
		proposalHandler,
		walletHandler,
		growthHandler,
		profileHandler,
		mediaHandler,
		notificationHandler,
		wsHandler,
		healthHandler,
		tokenManager,
	)

	server := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: engine,
	}

	// Stop the server when the signal context fires.
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("main: http server shutdown error: %v", err)
		}
	}()

	log.Printf("main: HTTP server listening on port %s", cfg.HTTPPort)

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("main: server exited with error: %v", err)
	}
}

func safeClose(db *sqlx.DB) {
	if err := db.Close(); err != nil {
		log.Printf("main: error closing database: %v", err)
	}
}
