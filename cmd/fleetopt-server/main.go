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

	"github.com/lspgroup/fleetopt-go/internal/adapters/httpapi"
	"github.com/lspgroup/fleetopt-go/internal/adapters/metrics"
	"github.com/lspgroup/fleetopt-go/internal/adapters/persistence"
	"github.com/lspgroup/fleetopt-go/internal/application/assignment"
	"github.com/lspgroup/fleetopt-go/internal/application/common"
	"github.com/lspgroup/fleetopt-go/internal/application/ingest"
	"github.com/lspgroup/fleetopt-go/internal/application/optimizer"
	"github.com/lspgroup/fleetopt-go/internal/application/placement"
	"github.com/lspgroup/fleetopt-go/internal/infrastructure/config"
	"github.com/lspgroup/fleetopt-go/internal/infrastructure/database"
	"github.com/lspgroup/fleetopt-go/internal/infrastructure/pidfile"
)

func main() {
	// Parse command-line flags
	forceFlag := flag.Bool("force", false, "Kill any existing server and start a new one")
	configFlag := flag.String("config", "", "Path to config file (default: search standard paths)")
	pidFlag := flag.String("pidfile", "fleetopt-server.pid", "Path to the PID file")
	flag.Parse()

	fmt.Println("Fleet Optimization Server")
	fmt.Println("=========================")

	// Load configuration
	fmt.Println("Loading configuration...")
	cfg := config.MustLoadConfig(*configFlag)

	// Acquire PID file lock to prevent multiple instances
	fmt.Printf("Acquiring PID file lock: %s\n", *pidFlag)
	pf := pidfile.New(*pidFlag)

	err := pf.Acquire()
	if err != nil {
		if *forceFlag {
			fmt.Println("Force mode enabled - attempting to kill existing server...")
			if killErr := pf.KillExisting(); killErr != nil {
				log.Fatalf("Failed to kill existing server: %v", killErr)
			}
			fmt.Println("Existing server killed")

			if err := pf.Acquire(); err != nil {
				log.Fatalf("Failed to acquire PID file lock after killing existing server: %v", err)
			}
		} else {
			log.Fatalf("Failed to acquire PID file lock: %v\nUse --force to kill the existing server", err)
		}
	}

	defer func() {
		if err := pf.Release(); err != nil {
			log.Printf("Warning: failed to release PID file: %v", err)
		}
	}()
	fmt.Println("PID file lock acquired")

	if err := run(cfg); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run(cfg *config.Config) error {
	// 1. Setup database connection
	fmt.Printf("Connecting to %s database...\n", cfg.Database.Driver)

	db, err := database.NewConnection(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer database.Close(db)

	if err := database.AutoMigrate(db); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	fmt.Println("Database connected")

	// 2. Initialize repositories
	datasetRepo := persistence.NewGormDatasetRepository(db)
	runRepo := persistence.NewGormRunRepository(db)
	fmt.Println("Repositories initialized")

	// 3. Initialize metrics
	registry := metrics.NewRegistry()
	optimizerMetrics := metrics.NewOptimizerCollector()
	if err := optimizerMetrics.Register(registry); err != nil {
		return fmt.Errorf("failed to register optimizer metrics: %w", err)
	}
	commandMetrics := metrics.NewCommandMetricsCollector()
	if err := commandMetrics.Register(registry); err != nil {
		return fmt.Errorf("failed to register command metrics: %w", err)
	}
	fmt.Println("Metrics registered")

	// 4. Initialize the optimizer runner
	runner := optimizer.NewRunner()
	runner.SetMetrics(optimizerMetrics)

	// 5. Initialize mediator (CQRS dispatcher) and middleware
	med := common.NewMediator()
	med.Use(metrics.PrometheusMiddleware(commandMetrics))

	// 6. Register command handlers
	if err := common.RegisterHandler[*placement.PlaceVehiclesCommand](med, placement.NewPlaceVehiclesHandler()); err != nil {
		return fmt.Errorf("failed to register PlaceVehicles handler: %w", err)
	}
	if err := common.RegisterHandler[*assignment.AssignRoutesCommand](med, assignment.NewAssignRoutesHandler()); err != nil {
		return fmt.Errorf("failed to register AssignRoutes handler: %w", err)
	}
	if err := common.RegisterHandler[*optimizer.RunOptimizationCommand](med, optimizer.NewRunOptimizationHandler(runner, runRepo)); err != nil {
		return fmt.Errorf("failed to register RunOptimization handler: %w", err)
	}
	if err := common.RegisterHandler[*ingest.ImportDatasetCommand](med, ingest.NewImportDatasetHandler(datasetRepo)); err != nil {
		return fmt.Errorf("failed to register ImportDataset handler: %w", err)
	}
	fmt.Println("Command handlers registered")

	// 7. Build the HTTP server
	logger := &common.StdLogger{}
	server := httpapi.NewServer(cfg, med, datasetRepo, runRepo, metrics.Handler(registry), logger)

	httpServer := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler: server.Handler(),
	}

	errCh := make(chan error, 1)
	go func() {
		fmt.Printf("\n✓ Server listening on %s\n", httpServer.Addr)
		fmt.Println("Press Ctrl+C to stop")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// Block until a signal or a server error, then drain in-flight requests.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	fmt.Println("\nShutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown error: %w", err)
	}

	fmt.Println("Server stopped")
	return nil
}
