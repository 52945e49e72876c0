package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/Tomlord1122/todo-threads/internal/auth"
	"github.com/Tomlord1122/todo-threads/internal/config"
	"github.com/Tomlord1122/todo-threads/internal/database"
	"github.com/Tomlord1122/todo-threads/internal/events"
	"github.com/Tomlord1122/todo-threads/internal/metrics"
	"github.com/Tomlord1122/todo-threads/internal/ratelimit"
	"github.com/Tomlord1122/todo-threads/internal/repository"
	"github.com/Tomlord1122/todo-threads/internal/server"
	"github.com/Tomlord1122/todo-threads/internal/service"
)

const prunerInterval = 5 * time.Minute

func gracefulShutdown(apiServer *http.Server, dbService database.Service, publisher events.Publisher, stopPruner context.CancelFunc, done chan bool) {
	// Create context that listens for the interrupt signal from the OS.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	log.Println("Shutting down gracefully, press Ctrl+C again to force")
	stop() // Allow Ctrl+C to force shutdown

	// The server has 5 seconds to finish in-flight requests.
	ctxTimeout, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := apiServer.Shutdown(ctxTimeout); err != nil {
		log.Printf("Server forced to shutdown with error: %v", err)
	}
	stopPruner()

	if err := publisher.Close(); err != nil {
		log.Printf("Error closing event publisher: %v", err)
	}

	log.Println("Closing database connection pool...")
	if err := dbService.Close(); err != nil {
		log.Printf("Error closing database connection pool: %v", err)
	} else {
		log.Println("Database connection pool closed.")
	}

	log.Println("Server exiting")

	done <- true
}

func newPublisher(cfg *config.Config) events.Publisher {
	if cfg.NATSURL == "" {
		log.Println("NATS_URL not set, domain events are discarded")
		return events.Nop{}
	}
	publisher, err := events.NewNATSPublisher(cfg.NATSURL, cfg.NATSPrefix)
	if err != nil {
		log.Fatalf("Failed to connect event publisher: %v", err)
	}
	log.Printf("Publishing domain events to %s under %q", cfg.NATSURL, cfg.NATSPrefix)
	return publisher
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// 1. Database
	dbService, err := database.New(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	gormDB := dbService.GetDB()

	log.Println("Running database auto-migration...")
	if err := database.Migrate(gormDB); err != nil {
		log.Fatalf("Failed to auto-migrate database: %v", err)
	}
	log.Println("Database auto-migration complete.")

	// 2. Repositories
	todoRepo := repository.NewGormTodoRepository(gormDB)
	threadRepo := repository.NewGormThreadRepository(gormDB)
	messageRepo := repository.NewGormMessageRepository(gormDB)
	userRepo := repository.NewGormUserRepository(gormDB)

	// 3. Rate limiting, metrics and events
	policies, err := ratelimit.LoadPolicies(cfg.RateLimitsFile)
	if err != nil {
		log.Fatalf("Failed to load rate limit policies: %v", err)
	}
	bucket, err := ratelimit.NewTokenBucket(policies, nil)
	if err != nil {
		log.Fatalf("Invalid rate limit policies: %v", err)
	}
	pruneCtx, stopPruner := context.WithCancel(context.Background())
	go bucket.RunPruner(pruneCtx, prunerInterval)

	m := metrics.New()
	publisher := newPublisher(cfg)

	// 4. Services
	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.SessionTTL)
	pipeline := service.NewPipeline(m.InstrumentLimiter(bucket), nil)

	apiServer := server.NewServer(cfg, server.Dependencies{
		DB:        dbService,
		Metrics:   m,
		Tokens:    tokens,
		Users:     userRepo,
		Auth:      service.NewAuthService(userRepo, tokens, pipeline),
		Todos:     service.NewTodoService(todoRepo, pipeline),
		Threads:   service.NewThreadService(threadRepo, messageRepo, pipeline, publisher),
		Dashboard: service.NewDashboardService(todoRepo, threadRepo, messageRepo, pipeline),
	})

	done := make(chan bool, 1)
	go gracefulShutdown(apiServer, dbService, publisher, stopPruner, done)

	log.Printf("Starting server on %s", apiServer.Addr)
	err = apiServer.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("HTTP server ListenAndServe error: %v", err)
	}

	<-done
	log.Println("Graceful shutdown complete.")
}
