// Package main is the governance core's admin HTTP surface: ingestion,
// lifecycle transitions, dataset composition, and lineage lookups over
// the C1-C10 pipeline.
package main

import (
	"context"
	"crypto/sha256"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/R3E-Network/fin-training-governance/internal/anonymize"
	"github.com/R3E-Network/fin-training-governance/internal/auditchain"
	"github.com/R3E-Network/fin-training-governance/internal/contradiction"
	"github.com/R3E-Network/fin-training-governance/internal/fetcher"
	"github.com/R3E-Network/fin-training-governance/internal/lifecycle"
	"github.com/R3E-Network/fin-training-governance/internal/model"
	"github.com/R3E-Network/fin-training-governance/internal/ratelimit"
	"github.com/R3E-Network/fin-training-governance/internal/resilience"
	"github.com/R3E-Network/fin-training-governance/internal/tokenstore"
	"github.com/R3E-Network/fin-training-governance/pkg/config"
	"github.com/R3E-Network/fin-training-governance/pkg/logger"
	"github.com/R3E-Network/fin-training-governance/pkg/metrics"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log := logger.New(logger.LoggingConfig(cfg.Logging), cfg.Retention)

	chain := auditchain.New(cfg.Retention)

	tokenizationSecret := []byte(cfg.Tokenization.Secret)
	masterKey := sha256.Sum256(tokenizationSecret)
	store, err := tokenstore.New(masterKey[:], chain)
	if err != nil {
		log.Fatalf("construct tokenstore: %v", err)
	}
	anonymizer := anonymize.New(tokenizationSecret, store)

	mgr := lifecycle.New(chain, anonymizer, model.TokenLevel(cfg.Tokenization.DefaultLevel))

	limiter := ratelimit.New(ratelimit.Config{
		RequestsPerSecond: cfg.Fetch.RateLimitPerSecond,
		Burst:             1,
	})
	retryConfig := resilience.RetryConfig{
		MaxAttempts:  cfg.Fetch.MaxRetries,
		InitialDelay: cfg.Fetch.BackoffMinDelay,
		MaxDelay:     cfg.Fetch.BackoffMaxDelay,
		Multiplier:   1.0,
	}
	fetch := fetcher.New(limiter, retryConfig, cfg.Fetch.PerAttemptTimeout, cfg.Fetch.IdentificationHeader)

	detector := contradiction.New(newEmbeddingClient(cfg.Embedding))

	srv := &server{
		mgr:      mgr,
		chain:    chain,
		fetch:    fetch,
		detector: detector,
		log:      log,
	}

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Recoverer)
	router.Use(requestLoggingMiddleware(log))
	router.Use(metrics.InstrumentHandler)

	router.Get("/healthz", srv.handleHealthz)
	router.Get("/metrics", metrics.Handler().ServeHTTP)
	srv.routes(router)

	addr := cfg.Server.Host + ":" + strconv.Itoa(cfg.Server.Port)
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		log.Infof("governanced listening on %s", addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Errorf("shutdown error: %v", err)
	}
}
