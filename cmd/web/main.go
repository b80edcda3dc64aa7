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

	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/glossa/glossa/internal/ai"
	"github.com/glossa/glossa/internal/api"
	"github.com/glossa/glossa/internal/config"
	"github.com/glossa/glossa/internal/core"
	"github.com/glossa/glossa/internal/db"
	"github.com/glossa/glossa/internal/logging"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	loader, err := config.NewConfigLoader(os.Getenv("GLOSSA_CONFIG"))
	if err != nil {
		return err
	}
	cfg, err := loader.Load()
	if err != nil {
		return err
	}

	logger := logging.New(cfg.Log)

	// Initialize database
	database, err := db.Open(cfg.Database)
	if err != nil {
		return fmt.Errorf("initialize database: %w", err)
	}
	defer database.Close()

	if cfg.APIKey() == "" {
		logger.Warn("model API key not configured; detection, translation and dictionary misses will fail",
			"provider", cfg.LLM.Provider)
	}
	gateway := ai.NewGateway(*cfg)
	processor := core.NewProcessor(database, gateway, ai.DefaultModel(*cfg), cfg.LLM.Temperature)

	handler := api.NewHandler(processor).Routes(cfg.Server.CORS.AllowedOrigins)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           h2c.NewHandler(handler, &http2.Server{}),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("starting glossa web server",
			"addr", server.Addr,
			"database", database.DriverName(),
			"provider", cfg.LLM.Provider,
			"model", ai.DefaultModel(*cfg),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	slog.Default().Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
