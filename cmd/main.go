package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Dosada05/racket-club/brackets"
	"github.com/Dosada05/racket-club/config"
	"github.com/Dosada05/racket-club/db"
	"github.com/Dosada05/racket-club/handlers"
	"github.com/Dosada05/racket-club/repositories"
	api "github.com/Dosada05/racket-club/routes"
	"github.com/Dosada05/racket-club/services"
	"github.com/Dosada05/racket-club/storage"
	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"
)

func main() {
	if err := run(); err != nil {
		slog.Error("application failed", slog.Any("error", err))
		os.Exit(1)
	}
}

func run() error {
	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort), slog.String("store", cfg.StoreDriver))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	var snapshots services.SnapshotPublisher
	if cfg.SnapshotsEnabled() {
		uploader, err := storage.NewCloudflareR2Uploader(ctx, storage.CloudflareR2UploaderConfig{
			AccountID:       cfg.R2AccountID,
			AccessKeyID:     cfg.R2AccessKeyID,
			SecretAccessKey: cfg.R2SecretAccessKey,
			BucketName:      cfg.R2BucketName,
			PublicBaseURL:   cfg.R2PublicBaseURL,
		})
		if err != nil {
			return fmt.Errorf("failed to initialize Cloudflare R2 uploader: %w", err)
		}
		snapshots = storage.NewStandingsSnapshots(uploader, "standings", cfg.SnapshotRetain)
		logger.Info("standings snapshots enabled", slog.String("bucket", cfg.R2BucketName))
	}

	// Инициализация WebSocket Hub
	wsHub := brackets.NewHub(logger)
	go wsHub.Run()
	defer wsHub.Stop()

	competitionService := services.NewCompetitionService(store, wsHub, snapshots, logger)
	matchService := services.NewMatchService(store, wsHub, snapshots, logger)
	standingsService := services.NewStandingsService(store)
	leagueService := services.NewLeagueService(store, wsHub, snapshots, logger)
	authService := services.NewAuthService(cfg.OrganizerEmail, cfg.OrganizerPasswordHash, cfg.JWTSecretKey)

	router := chi.NewRouter()
	api.SetupRoutes(router, api.Handlers{
		Auth:         handlers.NewAuthHandler(authService),
		Competitions: handlers.NewCompetitionHandler(competitionService, standingsService),
		Matches:      handlers.NewMatchHandler(matchService),
		Leagues:      handlers.NewLeagueHandler(leagueService),
		WebSocket:    handlers.NewWebSocketHandler(wsHub, competitionService, cfg.CORSAllowedOrigins, logger),
	}, api.Options{
		JWTSecret:      cfg.JWTSecretKey,
		AllowedOrigins: cfg.CORSAllowedOrigins,
	})

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 35 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", slog.Any("error", err))
		if closeErr := server.Close(); closeErr != nil {
			logger.Error("failed to force close server", slog.Any("error", closeErr))
		}
		return err
	}
	logger.Info("server shutdown complete")
	return nil
}

// openStore selects the entity store; the returned func releases it.
func openStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (repositories.Store, func(), error) {
	if cfg.StoreDriver == config.StoreDriverMemory {
		store := repositories.NewMemoryStore()
		if cfg.MemoryFixture != "" {
			f, err := os.Open(cfg.MemoryFixture)
			if err != nil {
				return nil, nil, fmt.Errorf("failed to open memory fixture: %w", err)
			}
			defer f.Close()
			if err := store.LoadFixture(f); err != nil {
				return nil, nil, err
			}
			logger.Info("memory fixture loaded", slog.String("path", cfg.MemoryFixture))
		}
		logger.Warn("using in-memory store, data is lost on exit")
		return store, func() {}, nil
	}

	// Подключение к базе данных
	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.Migrate(ctx, dbConn, logger); err != nil {
		dbConn.Close()
		return nil, nil, fmt.Errorf("failed to apply migrations: %w", err)
	}
	logger.Info("database connection established")

	closeDB := func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
			return
		}
		logger.Info("database connection closed")
	}
	return repositories.NewPostgresStore(dbConn, logger), closeDB, nil
}
