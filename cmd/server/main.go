/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the shift payroll server.
  Handles configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load configuration (.env, PAYROLL_* variables, then flags)
  2. Build the zap logger
  3. Open the record store (JSON document or SQLite)
  4. Create API handler and router
  5. Start autosave (if configured) and the server

COMMAND-LINE FLAGS (override the environment):
  -port      HTTP server port (PAYROLL_PORT, default: 8080)
  -data      JSON data file (PAYROLL_DATA_FILE, default: salary_data.json)
  -backend   json or sqlite (PAYROLL_BACKEND, default: json)
  -db        SQLite database path (PAYROLL_DB, default: payroll.db)
             Use ":memory:" for in-memory database

BACKENDS:
  json:   In-memory store loaded from the data file at start. A missing or
          unreadable file starts empty. Saved at shutdown.
  sqlite: Every change is written immediately. POST /api/data/save still
          exports the JSON document.

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop autosave
  2. Stop accepting new connections
  3. Wait for active requests to complete (30s timeout)
  4. Save the JSON document (json backend)
  5. Close database connection

EXAMPLES:
  # Run with a data file
  ./server -data="./data/salary_data.json"

  # Run on SQLite
  ./server -backend=sqlite -db="./data/payroll.db"

SEE ALSO:
  - config/config.go: Environment variables
  - api/server.go: Router configuration
  - api/handlers.go: HTTP handlers
*/
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/warp/shift-payroll/api"
	"github.com/warp/shift-payroll/config"
	"github.com/warp/shift-payroll/logging"
	"github.com/warp/shift-payroll/records"
	"github.com/warp/shift-payroll/records/store"
	"github.com/warp/shift-payroll/store/sqlite"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// Flags
	flag.IntVar(&cfg.Port, "port", cfg.Port, "HTTP server port")
	flag.StringVar(&cfg.DataFile, "data", cfg.DataFile, "JSON data file")
	backend := flag.String("backend", string(cfg.Backend), "Record store backend (json or sqlite)")
	flag.StringVar(&cfg.DBPath, "db", cfg.DBPath, "SQLite database path")
	flag.Parse()
	cfg.Backend = config.Backend(*backend)
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.Development)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	// Initialize store
	recordStore, closeStore, err := openStore(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize store", zap.Error(err))
	}
	defer closeStore()

	persist := func(ctx context.Context) error {
		return store.SaveFile(ctx, recordStore, cfg.DataFile, logger)
	}

	handler := api.NewHandler(recordStore, api.WithLogger(logger), api.WithPersist(persist))
	router := api.NewRouter(handler, cfg.CORSOrigins...)

	autosave := api.NewAutosaveScheduler(persist, cfg.Autosave, logger)
	autosave.Start()

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info("Server starting",
			zap.String("addr", fmt.Sprintf("http://localhost:%d", cfg.Port)),
			zap.String("backend", string(cfg.Backend)))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server")
	autosave.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	if cfg.Backend == config.BackendJSON {
		if err := persist(ctx); err != nil {
			logger.Error("Final save failed", zap.Error(err))
		}
	}

	logger.Info("Server stopped")
}

// openStore returns the configured backend and its close function.
func openStore(cfg config.Config, logger *zap.Logger) (records.Store, func(), error) {
	switch cfg.Backend {
	case config.BackendSQLite:
		db, err := sqlite.New(cfg.DBPath, sqlite.WithLogger(logger))
		if err != nil {
			return nil, nil, err
		}
		return db, func() { db.Close() }, nil

	default:
		mem := store.NewMemory(store.WithLogger(logger))
		if err := store.LoadFile(context.Background(), mem, cfg.DataFile, logger); err != nil {
			// start empty; the file is created on the first save
			logger.Warn("Starting with empty data", zap.String("path", cfg.DataFile), zap.Error(err))
		}
		return mem, func() {}, nil
	}
}
