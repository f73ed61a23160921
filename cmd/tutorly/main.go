package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/ekaraca/tutorly/internal/config"
	"github.com/ekaraca/tutorly/internal/httpapi"
	"github.com/ekaraca/tutorly/internal/observability"
	"github.com/ekaraca/tutorly/internal/oracle"
	"github.com/ekaraca/tutorly/internal/sessionstate"
	"github.com/ekaraca/tutorly/internal/submission"
	"github.com/ekaraca/tutorly/internal/suggest"
	"github.com/ekaraca/tutorly/internal/tutor"
)

func main() {
	// Local development keeps secrets in .env; absence is not an error.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	metrics := observability.NewMetrics(cfg.MetricsNamespace)

	ctx := context.Background()
	store, err := submission.NewStore(ctx, cfg.DatabaseURL, cfg.SQLitePath)
	if err != nil {
		log.Fatalf("submission store init failed: %v", err)
	}
	defer store.Close()

	var sink tutor.SubmissionSink
	if cfg.SinkURL != "" {
		sink = submission.NewHTTPSink(cfg.SinkURL)
		log.Printf("submission sink: http (%s)", cfg.SinkURL)
	} else {
		sink = submission.NewStoreSink(store)
		log.Printf("submission sink: %s", submissionBackend(cfg))
	}

	client, err := oracle.NewClient(oracle.Config{
		Mode:    cfg.OracleMode,
		BaseURL: cfg.OracleBaseURL,
		APIKey:  cfg.OracleAPIKey,
	})
	if err != nil {
		log.Fatalf("oracle client init failed: %v", err)
	}
	client = oracle.WithMetrics(client, metrics)

	storeFor := func(contextID string) (tutor.StateStore, error) {
		return sessionstate.NewFileStore(filepath.Join(cfg.StateDir, contextID))
	}
	sessions := tutor.NewManager(storeFor, client, cfg.OracleChatModel, sink, cfg.SessionInactivityTimeout)
	sessions.SetExpireHook(func(_ *tutor.Entry) {
		metrics.SessionEvents.WithLabelValues("expired").Inc()
		metrics.ActiveSessions.Set(float64(sessions.ActiveCount()))
	})

	suggestions := suggest.NewService(client, cfg.OracleSuggestModel)

	api := httpapi.New(cfg, sessions, suggestions, store, metrics)
	httpServer := &http.Server{
		Addr:    cfg.BindAddr,
		Handler: api.Router(),
	}

	runCtx, runCancel := context.WithCancel(context.Background())
	defer runCancel()
	sessions.StartJanitor(runCtx, 30*time.Second)

	go func() {
		log.Printf("server listening on %s", cfg.BindAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen error: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	log.Printf("shutdown signal received")

	runCancel()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
		_ = httpServer.Close()
	}

	log.Printf("shutdown complete")
}

func submissionBackend(cfg config.Config) string {
	switch {
	case cfg.DatabaseURL != "":
		return "postgres"
	case cfg.SQLitePath != "":
		return "sqlite"
	default:
		return "in-memory"
	}
}
