// Package main provides the entrypoint for the SMS relay background worker.
// It runs the stale claim requeue loop and the callback dispatch loop, and
// exposes a health endpoint for the container platform.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/smsrelay/smsrelay/internal/database"
	"github.com/smsrelay/smsrelay/internal/device"
	"github.com/smsrelay/smsrelay/internal/job"
	"github.com/smsrelay/smsrelay/internal/notify"
	"github.com/smsrelay/smsrelay/internal/worker"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	const serviceName = "smsrelay-worker"

	_ = godotenv.Load()

	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	log.Info().
		Str("build_time", BuildTime).
		Msg("starting SMS relay worker")

	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8081"
	}

	requeueInterval := durationFromEnv("REQUEUE_INTERVAL", time.Minute)
	claimTTL := durationFromEnv("CLAIM_TTL", 5*time.Minute)
	callbackInterval := durationFromEnv("CALLBACK_INTERVAL", 15*time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Connect to database
	dbConfig := database.ConfigFromEnv()
	pool, err := database.Connect(ctx, dbConfig)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	log.Info().
		Str("host", dbConfig.Host).
		Str("database", dbConfig.Database).
		Msg("database connected")

	deviceRepo := device.NewPostgresRepository(pool)
	jobRepo := job.NewPostgresRepository(pool)
	jobService := job.NewService(jobRepo, deviceRepo, nil)

	notifier := notify.NewNotifier(notify.NewClient(notify.ClientConfig{
		Name: "status-callbacks",
	}))

	requeuer := worker.NewRequeuer(jobService, requeueInterval, claimTTL, log)
	dispatcher := worker.NewCallbackDispatcher(jobService, notifier, callbackInterval, log)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		requeuer.Run(ctx)
	}()
	go func() {
		defer wg.Done()
		dispatcher.Run(ctx)
	}()

	// Health endpoint for the container platform
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, `{"status":"ok","version":%q}`, Version)
	})

	server := &http.Server{
		Addr:         ":" + port,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("health server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("health server error")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down worker")
	cancel()
	wg.Wait()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("health server forced to shutdown")
	}

	log.Info().Msg("worker stopped")
}

func durationFromEnv(key string, fallback time.Duration) time.Duration {
	if raw := os.Getenv(key); raw != "" {
		if d, err := time.ParseDuration(raw); err == nil {
			return d
		}
	}
	return fallback
}
