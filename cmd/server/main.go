package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/andres10976/keyword-service/internal/config"
	"github.com/andres10976/keyword-service/internal/database"
	"github.com/andres10976/keyword-service/internal/handler"
	"github.com/andres10976/keyword-service/internal/middleware"
	"github.com/andres10976/keyword-service/internal/repository"
)

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()})))

	// Storage
	backend, closer, err := openBackend(cfg)
	if err != nil {
		slog.Error("store open failed", "backend", cfg.StoreBackend, "error", err)
		os.Exit(1)
	}
	defer closer.Close()
	slog.Info("store ready", "backend", cfg.StoreBackend)

	keywordRepo := repository.NewKeywordRepository(backend)
	kwHandler := handler.NewKeywordHandler(keywordRepo)

	// Router
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(middleware.CORS(cfg.CORSAllowOrigin))
	r.Use(middleware.Logger)
	r.Use(middleware.Recovery)

	handler.RegisterHealth(r)
	kwHandler.RegisterRoutes(r)

	// Server with graceful shutdown
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.ServerPort),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		slog.Info("server starting", "port", cfg.ServerPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown incomplete", "error", err)
	}
}

type closeFunc func() error

func (f closeFunc) Close() error { return f() }

func openBackend(cfg *config.Config) (repository.Backend, io.Closer, error) {
	noop := closeFunc(func() error { return nil })

	switch cfg.StoreBackend {
	case config.BackendCSV:
		return repository.NewCSVFile(cfg.CSVPath), noop, nil
	case config.BackendMemory:
		return repository.NewMemory(), noop, nil
	case config.BackendBolt:
		b, err := repository.OpenBolt(cfg.BoltPath)
		if err != nil {
			return nil, nil, err
		}
		return b, b, nil
	case config.BackendPostgres:
		pool, err := database.Connect(cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := database.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, err
		}
		return repository.NewPostgres(pool), closeFunc(func() error { pool.Close(); return nil }), nil
	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}
