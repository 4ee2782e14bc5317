package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/rmacdonaldsmith/georelay-go/internal/admission"
	"github.com/rmacdonaldsmith/georelay-go/internal/config"
	"github.com/rmacdonaldsmith/georelay-go/internal/httpapi"
	"github.com/rmacdonaldsmith/georelay-go/internal/relaynode"
)

const (
	// Application info
	appName    = "GeoRelay"
	appVersion = "0.1.0"
)

func main() {
	// Command-line flags
	var (
		configPath  = flag.String("config", "", "Path to YAML config file (optional)")
		listenAddr  = flag.String("listen", "", "Listen address for the HTTP API (overrides config)")
		showVersion = flag.Bool("version", false, "Show version and exit")
	)
	flag.Parse()

	// Handle version flag
	if *showVersion {
		fmt.Printf("%s v%s\n", appName, appVersion)
		os.Exit(0)
	}

	// Load .env if present; real environment wins over file values
	if err := godotenv.Load(); err == nil {
		log.Printf("📄 Loaded environment from .env")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("❌ Invalid configuration: %v", err)
	}
	if *listenAddr != "" {
		cfg.ListenAddress = *listenAddr
	}

	// Configure logging
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Printf("🚀 Starting %s v%s", appName, appVersion)
	log.Printf("🔌 Listen: %s", cfg.ListenAddress)
	log.Printf("🌐 Base domain parts: %d", cfg.BaseDomainParts)
	log.Printf("⏱️  Rate limit: %d events/minute per connection", cfg.EventsPerMinute)
	if len(cfg.AllowedTenants) > 0 {
		log.Printf("🔒 Tenant allow-list: %v (geohash bypass: %v)", cfg.AllowedTenants, cfg.GeoTenantsBypassAllowList)
	}
	if cfg.StrictGeoTenants {
		log.Printf("📍 Strict geo-tenant mode enabled")
	}

	// Build the admission policy from the process config
	admissionConfig := admission.NewConfig().
		WithAllowedTenants(cfg.AllowedTenants).
		WithRateLimit(cfg.EventsPerMinute).
		WithAuthRequired(cfg.RequireAuthForWrite, cfg.RequireAuthForRead).
		WithStrictGeoTenants(cfg.StrictGeoTenants)
	admissionConfig.GeoTenantsBypassAllowList = cfg.GeoTenantsBypassAllowList

	log.Printf("🔧 Creating relay node...")
	node, err := relaynode.NewNode(admissionConfig)
	if err != nil {
		log.Fatalf("❌ Failed to create relay node: %v", err)
	}
	defer func() {
		log.Printf("🛑 Closing relay node...")
		if err := node.Close(); err != nil {
			log.Printf("⚠️  Error closing node: %v", err)
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	log.Printf("▶️  Starting relay node...")
	if err := node.Start(ctx); err != nil {
		log.Fatalf("❌ Failed to start relay node: %v", err)
	}

	server := httpapi.NewServer(node, httpapi.Config{
		ListenAddress:   cfg.ListenAddress,
		SecretKey:       cfg.JWTSecret,
		BaseDomainParts: cfg.BaseDomainParts,
	})

	// Run the HTTP server; a clean shutdown surfaces as a nil-ish error
	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.Start()
	}()

	setupGracefulShutdown(cancel, server, node)

	log.Printf("✅ %s started successfully on %s", appName, cfg.ListenAddress)
	log.Printf("💡 Use Ctrl+C to shutdown gracefully")

	select {
	case err := <-serverErr:
		if err != nil && err != http.ErrServerClosed {
			log.Fatalf("❌ HTTP server error: %v", err)
		}
	case <-ctx.Done():
	}
	log.Printf("👋 %s stopped", appName)
}

// setupGracefulShutdown configures signal handling for graceful shutdown
func setupGracefulShutdown(cancel context.CancelFunc, server *httpapi.Server, node *relaynode.Node) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	go func() {
		sig := <-sigChan
		log.Printf("🛑 Received signal %v, shutting down gracefully...", sig)

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := server.Stop(shutdownCtx); err != nil {
			log.Printf("⚠️  Error stopping HTTP server: %v", err)
		}
		if err := node.Stop(shutdownCtx); err != nil {
			log.Printf("⚠️  Error during graceful stop: %v", err)
		}

		cancel()
	}()
}
