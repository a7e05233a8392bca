/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the payroll engine server.
  Handles configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load configuration (.env, environment), then apply flags
  2. Initialize logger and SQLite store
  3. Install the default component set (file, or standard preset when the
     store has none)
  4. Create payroll service, API handler and router
  5. Start the payroll scheduler if enabled
  6. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -port    HTTP server port (overrides PORT)
  -db      SQLite database path (overrides DB_PATH)
           Use ":memory:" for in-memory database

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop the scheduler
  2. Stop accepting new connections
  3. Wait for active requests to complete (30s timeout)
  4. Close database connection
  5. Exit

EXAMPLES:
  # Run with file database
  ./server -db="./data/payroll.db"

  # Run with in-memory database and JSON logs
  LOG_FORMAT=json ./server -db=":memory:"

  # Run last month's payroll automatically from the 3rd
  SCHEDULER_ENABLED=true SCHEDULER_RUN_DAY=3 ./server

SEE ALSO:
  - config/config.go: Environment keys
  - api/server.go: Router configuration
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/warp/payroll-engine/api"
	"github.com/warp/payroll-engine/config"
	"github.com/warp/payroll-engine/factory"
	"github.com/warp/payroll-engine/payroll"
	"github.com/warp/payroll-engine/store/sqlite"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server failed", "err", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// Flags override configuration only when given
	port := flag.String("port", cfg.Port, "HTTP server port")
	dbPath := flag.String("db", cfg.DBPath, "SQLite database path")
	flag.Parse()
	cfg.Port, cfg.DBPath = *port, *dbPath

	logger := cfg.NewLogger(os.Stdout)
	slog.SetDefault(logger)

	// Initialize store
	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("initialize database: %w", err)
	}
	defer store.Close()

	defaults, err := installDefaultComponents(context.Background(), store, cfg.DefaultComponentsFile, logger)
	if err != nil {
		return err
	}

	svc, err := payroll.NewService(store,
		payroll.WithWorkers(cfg.PayrollWorkers),
		payroll.WithLogger(logger),
	)
	if err != nil {
		return err
	}

	// Initialize handler
	handler := api.NewHandler(store, svc, logger)
	handler.Defaults = defaults
	handler.Company = cfg.CompanyName
	handler.Currency = cfg.Currency

	router, err := api.NewRouter(handler, api.RouterOptions{
		AllowedOrigins: cfg.CORSOrigins,
		RateLimit:      cfg.RateLimit,
		Logger:         logger,
	})
	if err != nil {
		return err
	}

	scheduler := api.NewPayrollScheduler(svc, logger)
	scheduler.Enabled = cfg.SchedulerEnabled
	scheduler.CheckInterval = cfg.SchedulerInterval
	scheduler.RunDay = cfg.SchedulerRunDay
	scheduler.Start()

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("server starting", "addr", "http://localhost:"+cfg.Port, "db", cfg.DBPath)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-serverErr:
		scheduler.Stop()
		return fmt.Errorf("listen: %w", err)
	case <-quit:
	}

	logger.Info("shutting down server")
	scheduler.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("forced shutdown: %w", err)
	}

	logger.Info("server stopped")
	return nil
}

// installDefaultComponents replaces the stored default set with the file's
// set when a file is configured. Without a file, an empty store is seeded
// with the standard preset and an existing set is kept. It returns the set
// that resets should restore.
func installDefaultComponents(ctx context.Context, store payroll.ComponentStore, path string, logger *slog.Logger) ([]payroll.SalaryComponent, error) {
	f := factory.NewComponentFactory()

	if path != "" {
		set, err := f.LoadFile(path)
		if err != nil {
			return nil, fmt.Errorf("load default components: %w", err)
		}
		if err := store.ReplaceDefaultComponents(ctx, set); err != nil {
			return nil, fmt.Errorf("install default components: %w", err)
		}
		logger.Info("default components loaded", "file", path, "count", len(set))
		return set, nil
	}

	current, err := store.DefaultComponents(ctx)
	if err != nil {
		return nil, fmt.Errorf("read default components: %w", err)
	}
	if len(current) > 0 {
		return nil, nil
	}
	set, err := f.ParseJSON(factory.StandardIndiaJSON())
	if err != nil {
		return nil, err
	}
	if err := store.ReplaceDefaultComponents(ctx, set); err != nil {
		return nil, fmt.Errorf("install default components: %w", err)
	}
	logger.Info("default components seeded", "preset", "standard-india")
	return nil, nil
}
