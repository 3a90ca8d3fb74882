package commands

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/tokenscout/internal/api"
	"github.com/wonny/tokenscout/internal/api/handlers"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "API 서버 시작",
	Long: `REST API 서버를 시작합니다. 세션은 프로세스 메모리에 유지됩니다.

Endpoints:
  GET    /health              - Health check
  GET    /metrics             - Prometheus metrics
  POST   /api/discover        - S1 (body: optional config override)
  POST   /api/screen          - S2 over the candidate pool
  POST   /api/evaluate/{id}   - S3 for one token
  POST   /api/dd/{id}         - S4 for one token
  POST   /api/alerts          - ingest one scanner alert
  GET    /api/watchlist       - watchlist
  POST   /api/watchlist       - add {identifier, notes}
  DELETE /api/watchlist/{id}  - remove
  GET    /api/trade-ready     - DD-passed tokens
  GET    /api/session         - session ID and counters
  GET    /api/config          - pipeline config
  PUT    /api/config          - merge a partial config
  GET    /api/snapshot        - export the session
  POST   /api/snapshot        - export and store (DATABASE_URL)
  POST   /api/reset           - start a new session
  GET    /api/reports         - stored reports (DATABASE_URL)

Example:
  go run ./cmd/scout api
  go run ./cmd/scout api --port 8089 --listen --schedule`,
	RunE: runAPIServer,
}

var (
	apiPort     string
	apiListen   bool
	apiSchedule bool
)

func init() {
	rootCmd.AddCommand(apiCmd)

	apiCmd.Flags().StringVar(&apiPort, "port", "", "API 서버 포트 (기본: PORT)")
	apiCmd.Flags().BoolVar(&apiListen, "listen", false, "also consume the scanner alert bridge")
	apiCmd.Flags().BoolVar(&apiSchedule, "schedule", false, "also run the scheduled sweeps")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	if apiPort != "" {
		a.cfg.Port = apiPort
	}

	// Handler: the report store is optional
	var store handlers.ReportStore
	if a.store != nil {
		store = a.store
	}
	var metricsHandler http.Handler
	if a.cfg.MetricsEnabled {
		metricsHandler = a.metrics.Handler()
	}

	router := api.NewRouter(handlers.NewScoutHandler(a.orchestrator, store, a.log), metricsHandler, a.log)
	server := api.New(a.cfg, a.log, router)

	if apiListen {
		a.runListener(ctx)
	}
	if apiSchedule {
		sched, err := a.newScheduler()
		if err != nil {
			return fmt.Errorf("init scheduler: %w", err)
		}
		sched.Start(ctx)
		defer sched.Stop()
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	fmt.Printf("\n✅ Server running on http://localhost:%s\n", a.cfg.Port)
	fmt.Println("\nPress Ctrl+C to stop")

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	a.log.Info("Server stopped")
	return nil
}
