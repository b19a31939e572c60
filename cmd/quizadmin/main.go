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

	"github.com/spf13/pflag"

	"github.com/letsssgooo/quizAdmin/internal/config"
	"github.com/letsssgooo/quizAdmin/internal/lib/slogcustom"
	"github.com/letsssgooo/quizAdmin/internal/quiz"
	"github.com/letsssgooo/quizAdmin/internal/server"
	"github.com/letsssgooo/quizAdmin/internal/storage"
	"github.com/letsssgooo/quizAdmin/internal/storage/mongo"
	"github.com/letsssgooo/quizAdmin/internal/storage/postgres"
)

func main() {
	flagConfig := pflag.String("config", os.Getenv("QUIZ_CONFIG"), "path to YAML config file")
	flagEnvFile := pflag.String("env-file", ".env", "path to .env file")
	flagAddr := pflag.String("addr", "", "HTTP listen address, overrides config")
	flagStorage := pflag.String("storage", "", "storage driver: memory, postgres or mongo")
	flagLogLevel := pflag.String("log-level", "", "log level: debug, info, warn or error")
	pflag.Parse()

	cfg, err := config.Load(*flagConfig, *flagEnvFile, config.Overrides{
		Addr:     *flagAddr,
		Driver:   *flagStorage,
		LogLevel: *flagLogLevel,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	log := setupLogger(cfg.Logging)
	slog.SetDefault(log)

	if err = run(cfg, log); err != nil {
		log.Error("quiz admin stopped with error", "err", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("starting quiz admin...", "addr", cfg.Server.Addr, "storage", cfg.Storage.Driver)

	st, err := openStorage(ctx, cfg.Storage, log)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := st.Close(closeCtx); err != nil {
			log.Error("close storage", "err", err)
		}
	}()

	service := quiz.NewService(st, log.With("component", "quiz"))
	srv := server.New(service, st, log.With("component", "http"), server.Options{
		APIPrefix:      cfg.Server.APIPrefix,
		DefaultKeyword: cfg.Quiz.DefaultKeyword,
	})

	httpServer := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      srv.Handler(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- httpServer.ListenAndServe()
	}()

	select {
	case err = <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err = httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}

	log.Info("quiz admin stopped")

	return nil
}

func openStorage(ctx context.Context, cfg config.StorageConfig, log *slog.Logger) (storage.Storage, error) {
	connectCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()

	switch cfg.Driver {
	case config.DriverMemory:
		return storage.NewMemoryStorage(), nil
	case config.DriverPostgres:
		st, err := postgres.NewStorage(connectCtx, cfg.Postgres.DSN, log.With("storage", "postgres"))
		if err != nil {
			return nil, fmt.Errorf("open postgres storage: %w", err)
		}
		return st, nil
	case config.DriverMongo:
		st, err := mongo.NewStorage(connectCtx, cfg.Mongo.URI, cfg.Mongo.Database, log.With("storage", "mongo"))
		if err != nil {
			return nil, fmt.Errorf("open mongo storage: %w", err)
		}
		return st, nil
	default:
		return nil, fmt.Errorf("unsupported storage driver %q", cfg.Driver)
	}
}

func setupLogger(cfg config.LoggingConfig) *slog.Logger {
	level, err := cfg.SlogLevel()
	if err != nil {
		level = slog.LevelInfo
	}

	if cfg.Format == config.FormatJSON {
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	}

	return slog.New(slogcustom.NewCustomHandler(os.Stdout, level))
}
