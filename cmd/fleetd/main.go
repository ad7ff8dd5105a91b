package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"fleet-tracker-backend/config"
	"fleet-tracker-backend/internal/api"
	"fleet-tracker-backend/internal/db"
	"fleet-tracker-backend/internal/notification"
	"fleet-tracker-backend/internal/routing"
	"fleet-tracker-backend/internal/store"
	"fleet-tracker-backend/internal/telemetry"
)

func main() {
	logger := log.New(os.Stdout, "fleetd ", log.LstdFlags)

	// Optional .env for local development; config values may reference it.
	_ = godotenv.Load()

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Fatalf("failed to load configuration from %s: %v", configPath, err)
	}
	logger.Printf("configuration loaded successfully from %s", configPath)

	// Initialize database
	gormDB, err := db.Init(&cfg.Database)
	if err != nil {
		logger.Fatalf("failed to initialize database: %v", err)
	}
	logger.Println("database initialized successfully")

	// Create a context that can be cancelled
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Optional Redis latest-position cache
	var rdb *redis.Client
	if cfg.Redis.Enabled {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		pingCtx, pingCancel := context.WithTimeout(ctx, 2*time.Second)
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			logger.Printf("redis unreachable, continuing without latest-position cache: %v", err)
			rdb = nil
		}
		pingCancel()
	}

	appStore := store.NewGormStore(gormDB, rdb)
	logger.Println("data store initialized")

	// Telemetry channel subscriber and ingestion pipeline
	if cfg.Telemetry.Enabled {
		subscriber := telemetry.NewSubscriber(cfg.Telemetry)
		pipeline := telemetry.NewPipeline(appStore, subscriber.Messages())
		go subscriber.Run(ctx)
		go pipeline.Run(ctx)
		logger.Println("telemetry subscriber started")
	}

	// Trip-completion notification worker pool
	var pool *notification.WorkerPool
	var webpushOptions *webpush.Options
	if cfg.Push.PublicKey != "" && cfg.Push.PrivateKey != "" {
		webpushOptions = &webpush.Options{
			VAPIDPublicKey:  cfg.Push.PublicKey,
			VAPIDPrivateKey: cfg.Push.PrivateKey,
			Subscriber:      cfg.Push.Subject,
			TTL:             cfg.Push.TTL,
		}
		pool = notification.NewWorkerPool(cfg.WorkerPool.Size, gormDB, webpushOptions)
		pool.Start(ctx)
		logger.Printf("notification worker pool started (size %d)", cfg.WorkerPool.Size)
	} else {
		logger.Println("VAPID keys not configured, trip-completion notifications disabled")
	}

	// External routing collaborator
	var routeClient *routing.Client
	if cfg.Routing.BaseURL != "" {
		routeClient = routing.NewClient(cfg.Routing.BaseURL, cfg.Routing.Timeout)
	} else {
		logger.Println("routing.base_url not configured, /api/route disabled")
	}

	router := api.NewRouter(appStore, routeClient, pool, webpushOptions, cfg.Server)
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		logger.Printf("HTTP server starting on port %d", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("HTTP server ListenAndServe: %v", err)
		}
	}()

	// Setup signal handling for graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	<-stop
	logger.Println("Shutdown signal received, stopping services...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Fatalf("HTTP server Shutdown: %v", err)
	}

	logger.Println("Server gracefully stopped")
}
