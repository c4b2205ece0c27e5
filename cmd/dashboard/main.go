package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"example.com/octofit/internal/api"
	"example.com/octofit/internal/auth"
	"example.com/octofit/internal/backend"
	"example.com/octofit/internal/config"
	"example.com/octofit/internal/outbox"
	httptransport "example.com/octofit/internal/transport/http"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	client := backend.NewClient(cfg.APIBaseURL, cfg.BackendTimeout)
	log.Printf("using OctoFit API at %s", cfg.APIBaseURL)

	var (
		recorder   outbox.Recorder = outbox.NoopRecorder{}
		dispatcher *outbox.Dispatcher
	)
	if cfg.PostgresURL != "" {
		pool, err := pgxpool.New(ctx, cfg.PostgresURL)
		if err != nil {
			log.Fatalf("failed to connect to postgres: %v", err)
		}
		defer pool.Close()

		producer := outbox.NewKafkaProducer(cfg.KafkaBrokers)
		defer producer.Close()

		registry := outbox.NewSchemaRegistryClient(cfg.SchemaRegistryURL)
		dispatcher = outbox.NewDispatcher(pool, producer, registry, cfg.OutboxPollInterval, cfg.OutboxBatchSize)
		go dispatcher.Start(ctx)

		recorder = outbox.NewPostgresRecorder(pool, cfg.OutboxTopic)
	} else {
		log.Printf("POSTGRES_URL not set; user events will not be recorded")
	}

	handler, err := api.NewHandler(client,
		api.WithRecorder(recorder),
		api.WithCloseDelay(cfg.EditCloseDelay),
	)
	if err != nil {
		log.Fatalf("failed to build handler: %v", err)
	}

	mux := http.NewServeMux()
	handler.RegisterRoutes(mux)
	mux.Handle("GET /metrics", promhttp.Handler())

	authMiddleware := auth.NewMiddleware(auth.Config{Secret: cfg.JWTSecret, Issuer: cfg.JWTIssuer}, auth.SkipNonAPI)

	server := httptransport.NewServer(httptransport.DefaultServerConfig(cfg.HTTPAddress), httptransport.Chain(mux,
		authMiddleware.Wrap,
		httptransport.CSRF(httptransport.CSRFConfig{
			Key:            cfg.CSRFKey,
			Secure:         cfg.CSRFSecure,
			TrustedOrigins: cfg.TrustedOrigins,
			ExemptPrefixes: []string{auth.APIPrefix},
		}),
		httptransport.SecurityHeaders,
		httptransport.RequestLogger(nil),
	))

	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("octofit dashboard listening on %s", cfg.HTTPAddress)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	<-shutdownCh
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	if dispatcher != nil {
		dispatcher.Wait()
	}
}
