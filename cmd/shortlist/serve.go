package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/shortlist/internal/db/postgres"
	feedbackrepo "github.com/kailas-cloud/shortlist/internal/repository/feedback"
	chiTransport "github.com/kailas-cloud/shortlist/internal/transport/chi"
	feedbackuc "github.com/kailas-cloud/shortlist/internal/usecase/feedback"
	healthuc "github.com/kailas-cloud/shortlist/internal/usecase/health"
	"github.com/kailas-cloud/shortlist/internal/version"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API server",
	Long:  "Serves ranking, extraction, embedding, candidate and feedback endpoints until SIGINT or SIGTERM.",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := commandContext(cmd)

	a, err := newApp(ctx, true)
	if err != nil {
		return err
	}
	defer a.close()
	logger := a.logger
	cfg := a.cfg

	logger.Info("Starting shortlist API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", a.env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("db_addrs", cfg.Database.Addrs),
	)

	candSvc := a.candidates()
	healthSvc := healthuc.New(a.store, embeddingHealthChecker{embedder: a.queryEmbedder})

	deps := chiTransport.Deps{
		Ranker:     a.ranker,
		Extractor:  a.extractor,
		Embedder:   a.embeddings,
		Candidates: candSvc,
		Health:     healthSvc,
	}

	// Feedback needs PostgreSQL; without a DSN the endpoints answer 503.
	if cfg.Postgres.DSN != "" {
		pool, err := postgres.Connect(ctx, postgres.Config{
			DSN:            cfg.Postgres.DSN,
			MaxConns:       cfg.Postgres.MaxConns,
			ConnectTimeout: time.Duration(cfg.Database.ReadinessTimeout) * time.Second,
		})
		if err != nil {
			return fmt.Errorf("failed to connect to postgres: %w", err)
		}
		defer pool.Close()

		fbRepo := feedbackrepo.New(pool)
		if err := fbRepo.EnsureSchema(ctx); err != nil {
			return fmt.Errorf("failed to ensure feedback schema: %w", err)
		}
		deps.Feedback = feedbackuc.New(fbRepo, candSvc)
		healthSvc.WithFeedback(pool)
		logger.Info("Feedback store enabled")
	} else {
		logger.Info("Feedback store disabled: postgres.dsn is empty")
	}

	server := chiTransport.NewServer(deps, logger)
	handler := chiTransport.NewRouter(server, chiTransport.RouterConfig{
		APIKeys:        cfg.Auth.APIKeys,
		RequestTimeout: time.Duration(cfg.HTTP.RequestTimeoutSec) * time.Second,
		MaxBodyBytes:   int64(cfg.HTTP.MaxBodyKB) << 10,
	}, logger)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(quit)

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-quit:
		logger.Info("Received shutdown signal")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
	return nil
}
