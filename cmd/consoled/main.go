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

	"fieldops-console-backend/config"
	"fieldops-console-backend/internal/console"
	"fieldops-console-backend/internal/draft"
	"fieldops-console-backend/internal/gateway"
	"fieldops-console-backend/internal/identity"
	"fieldops-console-backend/internal/notifier"
	"fieldops-console-backend/internal/roster"
	"fieldops-console-backend/internal/store"

	"github.com/SherClockHolmes/webpush-go"
)

func main() {
	// Setup logger
	logger := log.New(os.Stdout, "fieldops-console ", log.LstdFlags)

	// Load configuration
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config/config.yaml" // Default path for local development
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Fatalf("failed to load configuration from %s: %v", configPath, err)
	}
	logger.Printf("configuration loaded successfully from %s", configPath)

	if cfg.Upstream.BaseURL == "" {
		logger.Fatalf("upstream.base_url must be configured")
	}

	// Push is optional; without VAPID keys the console runs with push off.
	var webpushOptions *webpush.Options
	if cfg.Push.PublicKey != "" && cfg.Push.PrivateKey != "" {
		webpushOptions = &webpush.Options{
			VAPIDPublicKey:  cfg.Push.PublicKey,
			VAPIDPrivateKey: cfg.Push.PrivateKey,
			Subscriber:      cfg.Push.Subject,
			TTL:             cfg.Push.TTL,
		}
	} else {
		logger.Println("VAPID keys not configured, push notifications disabled")
	}

	gw := gateway.New(&cfg.Upstream)
	logger.Printf("upstream gateway targeting %s", gw.BaseURL())

	var rosterClient *roster.Client
	if cfg.Roster.BaseURL != "" {
		rosterClient = roster.New(&cfg.Roster)
	} else {
		logger.Println("roster API not configured, technician directory disabled")
	}

	identityClient := identity.New(&cfg.Identity)
	if !identityClient.Enabled() {
		logger.Println("identity service not configured, operator registration disabled")
	}

	// Create a context that can be cancelled
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	drafts := draft.NewStore()
	subs := store.NewSubscriptionStore()

	// A typed nil roster client must not reach the pool's interface field.
	var rosterNotifier notifier.RosterNotifier
	if rosterClient != nil {
		rosterNotifier = rosterClient
	}
	pool := notifier.NewWorkerPool(cfg.Notifier.Workers, subs, webpushOptions, rosterNotifier)
	pool.Start(ctx)

	// Initialize router
	handler := console.NewHandler(gw, rosterClient, identityClient, drafts, subs, pool, webpushOptions)
	router := console.NewRouter(&cfg.Server, handler)
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	// Start the server in a goroutine
	go func() {
		logger.Printf("HTTP server starting on port %d", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("HTTP server ListenAndServe: %v", err)
		}
	}()

	// Setup signal handling for graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	// Block until a signal is received.
	<-stop
	logger.Println("Shutdown signal received, stopping services...")

	// Create a deadline to wait for.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Fatalf("HTTP server Shutdown: %v", err)
	}

	logger.Println("Server gracefully stopped")
}
