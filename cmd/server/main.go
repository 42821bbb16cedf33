/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the retail ledger server.
  Handles configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load .env (if present) and parse command-line flags
  2. Open the snapshot directory and the SQLite store
     (the last snapshot is loaded and migrated to the latest schema)
  3. Optionally seed demo data into an empty database
  4. Start the audit scheduler
  5. Start server with graceful shutdown

COMMAND-LINE FLAGS (environment variable in brackets):
  -port            HTTP server port [LEDGER_PORT] (default: 8080)
  -db              SQLite working database path [LEDGER_DB] (default: in-memory)
  -snapshot-dir    Directory for ledger.db snapshots [LEDGER_SNAPSHOT_DIR]
                   (default: ./data). Empty disables snapshots.
  -audit-interval  Invariant audit interval [LEDGER_AUDIT_INTERVAL]
                   (default: 1h). 0 disables the audit.
  -cors-origin     Allowed CORS origin [LEDGER_CORS_ORIGIN]
  -seed            Load demo data when the database is empty [LEDGER_SEED]

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Stop the audit scheduler, write a final snapshot
  4. Close database connection

EXAMPLES:
  # Run with snapshots in ./data
  ./server

  # Keep snapshots elsewhere and audit every 10 minutes
  ./server -snapshot-dir=/var/lib/ledger -audit-interval=10m

SEE ALSO:
  - api/server.go: Router configuration
  - ledger/ledger.go: Engine
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/warp/retail-ledger/api"
	"github.com/warp/retail-ledger/ledger"
	"github.com/warp/retail-ledger/store/blob"
	"github.com/warp/retail-ledger/store/sqlite"
)

func main() {
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded configuration from .env")
	}

	// Flags
	port := flag.Int("port", getEnvInt("LEDGER_PORT", 8080), "HTTP server port")
	dbPath := flag.String("db", getEnv("LEDGER_DB", ""), "SQLite working database path (empty: in-memory)")
	snapshotDir := flag.String("snapshot-dir", getEnv("LEDGER_SNAPSHOT_DIR", "./data"), "Snapshot directory (empty: no snapshots)")
	auditInterval := flag.Duration("audit-interval", getEnvDuration("LEDGER_AUDIT_INTERVAL", time.Hour), "Invariant audit interval (0: disabled)")
	corsOrigin := flag.String("cors-origin", getEnv("LEDGER_CORS_ORIGIN", ""), "Allowed CORS origin")
	seed := flag.Bool("seed", getEnv("LEDGER_SEED", "") == "true", "Load demo data into an empty database")
	flag.Parse()

	ctx := context.Background()

	// Initialize store
	cfg := sqlite.Config{Path: *dbPath}
	if *snapshotDir != "" {
		snapshots, err := blob.NewFile(*snapshotDir)
		if err != nil {
			log.Fatalf("Failed to open snapshot directory: %v", err)
		}
		cfg.Blob = snapshots
	}
	store, err := sqlite.Open(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer store.Close()

	l := ledger.NewLedger(store)

	if *seed {
		seedIfEmpty(ctx, l)
	}

	// Audit
	scheduler := api.NewAuditScheduler(l)
	scheduler.CheckInterval = *auditInterval
	scheduler.Enabled = *auditInterval > 0
	scheduler.Start()

	// Create router
	routerCfg := api.RouterConfig{}
	if *corsOrigin != "" {
		routerCfg.AllowedOrigins = []string{*corsOrigin}
	}
	router := api.NewRouter(api.NewHandler(l), routerCfg)

	// Create server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", *port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Printf("Server starting on http://localhost:%d", *port)
		log.Printf("API available at http://localhost:%d/api", *port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}
	scheduler.Stop()

	if err := store.Persist(shutdownCtx); err != nil {
		log.Printf("Warning: final snapshot failed: %v", err)
	}

	log.Println("Server stopped")
}

func seedIfEmpty(ctx context.Context, l *ledger.Ledger) {
	products, err := l.ListProducts(ctx, "")
	if err != nil {
		log.Printf("Warning: could not check for existing data: %v", err)
		return
	}
	if len(products) > 0 {
		log.Println("Database not empty, skipping demo seed")
		return
	}
	result, err := api.LoadDemo(ctx, l)
	if err != nil {
		log.Printf("Warning: demo seed failed: %v", err)
		return
	}
	log.Printf("Seeded demo data: %d products, %d clients, %d sales, %d payments",
		result.Products, result.Clients, result.Sales, result.Payments)
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("Warning: invalid %s=%q, using %d", key, v, fallback)
		return fallback
	}
	return n
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Printf("Warning: invalid %s=%q, using %v", key, v, fallback)
		return fallback
	}
	return d
}
