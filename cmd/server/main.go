/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the school portal server. Handles
  configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Parse command-line flags
  2. Load configuration (defaults, env, optional YAML file)
  3. Initialize SQLite store
  4. Create API handler with dependencies
  5. Configure HTTP router
  6. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -config  Path to YAML config file (optional)
  -db      SQLite database path (overrides config)
           Use ":memory:" for an in-memory database
  -addr    Listen address (overrides config)

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Close database connection
  4. Exit

EXAMPLES:
  # Run with file database
  ./server -db="./data/portal.db"

  # Run with in-memory database
  ./server -db=":memory:"

  # Run with a config file
  ./server -config=portal.yaml

ENVIRONMENT:
  PORTAL_ADDR, PORTAL_DB, PORTAL_SCHOOL_NAME, PORTAL_CURRENT_YEAR,
  PORTAL_CURRENT_TERM. Flags win over the file, the file wins over env.

SEE ALSO:
  - config/config.go: Configuration loading
  - api/server.go: Router configuration
  - api/handlers.go: HTTP handlers
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sankore/school-portal/api"
	"github.com/sankore/school-portal/config"
	"github.com/sankore/school-portal/fees"
	"github.com/sankore/school-portal/store/sqlite"
)

func main() {
	// Flags
	cfgPath := flag.String("config", "", "path to YAML config file")
	dbPath := flag.String("db", "", "SQLite database path (overrides config)")
	addr := flag.String("addr", "", "listen address (overrides config)")
	flag.Parse()

	// Configuration
	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *dbPath != "" {
		cfg.DBPath = *dbPath
	}
	if *addr != "" {
		cfg.Addr = *addr
	}

	// Initialize store
	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer store.Close()

	// Initialize handler and router
	handler := api.NewHandler(store, fees.AcademicYear(cfg.CurrentYear), fees.Term(cfg.CurrentTerm))
	router := api.NewRouter(handler)

	// Create server
	server := &http.Server{
		Addr:         cfg.Addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Printf("🏫 %s serving on %s", cfg.SchoolName, cfg.Addr)
		log.Printf("📚 Current session: %s, %s", cfg.CurrentYear, cfg.CurrentTerm)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped")
}
