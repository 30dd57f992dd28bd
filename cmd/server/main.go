// Package main implements the entry point for the TaskNest API server:
// a multi-tenant task manager with tags, recurring tasks, and a background
// reminder sweeper.
package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/mhutchins/tasknest/internal/api"
	"github.com/mhutchins/tasknest/internal/api/middleware"
	"github.com/mhutchins/tasknest/internal/config"
	"github.com/mhutchins/tasknest/internal/events"
	"github.com/mhutchins/tasknest/internal/platform/logger"
	"github.com/mhutchins/tasknest/internal/platform/postgres"
	"github.com/mhutchins/tasknest/internal/service"
	"github.com/mhutchins/tasknest/internal/service/auth"
	"github.com/mhutchins/tasknest/internal/sweeper"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("server exited with error: %v", err)
	}
}

// run wires configuration, storage, services, the sweeper, and the HTTP
// server, then blocks until shutdown completes.
func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	appLogger, err := logger.Setup(cfg.Server.LogLevel)
	if err != nil {
		return fmt.Errorf("setting up logger: %w", err)
	}

	appLogger.Info("configuration loaded",
		slog.Int("port", cfg.Server.Port),
		slog.String("log_level", cfg.Server.LogLevel),
		slog.Duration("sweep_interval", cfg.Sweeper.Interval))

	db, err := openDatabase(cfg.Database)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	if err := postgres.RunMigrations(db, appLogger); err != nil {
		return err
	}

	taskStore := postgres.NewTaskStore(db, appLogger)
	tagStore := postgres.NewTagStore(db, appLogger)
	reminderStore := postgres.NewReminderStore(db, appLogger)
	userStore := postgres.NewUserStore(db, appLogger)

	jwtService, err := auth.NewJWTService(cfg.Auth.JWTSecret, cfg.Auth.TokenLifetime)
	if err != nil {
		return fmt.Errorf("creating jwt service: %w", err)
	}

	sink := events.NewLogSink(appLogger)

	taskService := service.NewTaskService(db, taskStore, reminderStore, sink, appLogger)
	tagService := service.NewTagService(tagStore, appLogger)
	reminderService := service.NewReminderService(reminderStore, appLogger)
	authService := service.NewAuthService(
		userStore,
		auth.NewBcryptVerifier(cfg.Auth.BcryptCost),
		jwtService,
		appLogger,
	)

	reminderSweeper := sweeper.New(
		reminderStore, taskStore, sink, appLogger, cfg.Sweeper.Interval)
	if err := reminderSweeper.Start(); err != nil {
		return fmt.Errorf("starting reminder sweeper: %w", err)
	}

	router := api.NewRouter(api.RouterDeps{
		Auth:      api.NewAuthHandler(authService, appLogger),
		Tasks:     api.NewTaskHandler(taskService, appLogger),
		Tags:      api.NewTagHandler(tagService, appLogger),
		Reminders: api.NewReminderHandler(reminderService, appLogger),
		AuthMW:    middleware.NewAuthMiddleware(jwtService),
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		appLogger.Info("http server listening", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-serverErr:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	appLogger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("http server shutdown failed", slog.String("error", err.Error()))
	}
	if err := reminderSweeper.Stop(shutdownCtx); err != nil {
		appLogger.Error("sweeper shutdown failed", slog.String("error", err.Error()))
	}

	appLogger.Info("server stopped")
	return nil
}

// openDatabase connects to PostgreSQL through the pgx stdlib driver and
// verifies the connection.
func openDatabase(cfg config.DatabaseConfig) (*sql.DB, error) {
	db, err := sql.Open("pgx", cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(time.Hour)

	pingCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	return db, nil
}
