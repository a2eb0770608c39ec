package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"

	"github.com/clubtoros/toros-backend/api/routes"
	"github.com/clubtoros/toros-backend/internal/config"
	"github.com/clubtoros/toros-backend/internal/handlers"
	"github.com/clubtoros/toros-backend/internal/metrics"
	"github.com/clubtoros/toros-backend/internal/repositories"
	"github.com/clubtoros/toros-backend/internal/repositories/memory"
	mongorepo "github.com/clubtoros/toros-backend/internal/repositories/mongodb"
	"github.com/clubtoros/toros-backend/internal/services"
	"github.com/clubtoros/toros-backend/internal/storage"
	"github.com/clubtoros/toros-backend/internal/wizard"
	"github.com/clubtoros/toros-backend/pkg/jwt"
	"github.com/clubtoros/toros-backend/pkg/mongodb"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel(cfg.LogLevel)})))

	if err := run(cfg); err != nil {
		slog.Error("Server stopped with error", "error", err)
		os.Exit(1)
	}
	slog.Info("Server exiting")
}

func run(cfg *config.Config) error {
	ctx := context.Background()
	if cfg.JWT.Secret == "" {
		return errors.New("JWT secret is not configured")
	}

	checks := map[string]handlers.Pinger{}

	var store repositories.DocumentStore
	switch cfg.Store.Driver {
	case "memory":
		slog.Warn("Using the in-memory document store; data is lost on restart")
		store = memory.NewDocumentStore()
	case "mongodb":
		client, err := mongodb.NewClient(ctx, cfg.MongoDB.URI, cfg.MongoDB.Database, cfg.MongoDB.ConnectTimeout)
		if err != nil {
			return err
		}
		defer func() {
			if err := client.Disconnect(context.Background()); err != nil {
				slog.Error("Error disconnecting from MongoDB", "error", err)
			}
		}()
		checks["mongodb"] = client
		store = mongorepo.NewDocumentStore(client.Database())
	default:
		return errors.New("unknown store driver: " + cfg.Store.Driver)
	}

	var sessionStore wizard.SessionStore
	var sessionSweeper services.SessionSweeper
	switch cfg.Sessions.Backend {
	case "redis":
		rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		defer rdb.Close()
		checks["redis"] = handlers.PingFunc(func(ctx context.Context) error { return rdb.Ping(ctx).Err() })
		sessionStore = wizard.NewRedisSessionStore(rdb, cfg.Sessions.TTL)
	default:
		inMemory := wizard.NewInMemorySessionStore(cfg.Sessions.TTL)
		sessionStore = inMemory
		sessionSweeper = inMemory
	}

	uploader, err := storage.NewUploader(ctx, cfg.Storage)
	if err != nil {
		return err
	}
	spool, err := storage.NewSpool(cfg.Storage.SpoolDir, cfg.Storage.MaxFileSize)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	userRepo := repositories.NewUserRepository(store)
	seasonRepo := repositories.NewSeasonRepository(store)
	categoryRepo := repositories.NewCategoryRepository(store)
	costRepo := repositories.NewCostRepository(store)
	registrantRepo := repositories.NewRegistrantRepository(store)
	paymentRepo := repositories.NewPaymentRepository(store)

	progress := services.NewProgressTracker()
	categories := services.NewCategoryService(seasonRepo, categoryRepo, m)
	payments := services.NewPaymentScheduleService(seasonRepo, costRepo, paymentRepo, m, nil)
	lookup := services.NewRegistrantLookupService(userRepo, seasonRepo, registrantRepo)
	registration := services.NewRegistrationService(services.RegistrationDeps{
		Users:       userRepo,
		Seasons:     seasonRepo,
		Registrants: registrantRepo,
		Uploader:    uploader,
		Files:       spool,
		Payments:    payments,
		Progress:    progress,
		Metrics:     m,
		Folders:     services.UploadFolders{Photos: cfg.Storage.PhotoFolder, Documents: cfg.Storage.DocumentFolder},
	})
	sessions := services.NewWizardSessionService(sessionStore, categories, spool, lookup, registration, nil)

	cleanup := services.NewCleanupService(spool, sessionSweeper, cfg.Sessions.TTL, m, nil).WithProgress(progress)
	if err := cleanup.Start(cfg.Cleanup.Schedule); err != nil {
		return err
	}
	defer func() { <-cleanup.Stop().Done() }()

	deps := routes.Dependencies{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Tokens:         jwt.NewTokenService(cfg.JWT.Secret, cfg.JWT.Issuer, time.Duration(cfg.JWT.ExpiresIn)*time.Second),
		Gatherer:       reg,
		Registration:   handlers.NewRegistrationHandler(sessions, progress),
		Lookup:         handlers.NewLookupHandler(lookup),
		Health:         handlers.NewHealthHandler(checks),
	}
	if local, ok := uploader.(*storage.LocalUploader); ok {
		deps.FilesDir = local.Dir()
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           routes.SetupRouter(deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Server starting", "port", cfg.Server.Port, "store", cfg.Store.Driver, "sessions", cfg.Sessions.Backend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return err
	case <-quit:
	}
	slog.Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func logLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
