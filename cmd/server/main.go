/*
main.go - Application entry point

PURPOSE:
  Starts the cashback ledger HTTP server. Handles configuration,
  dependency wiring and graceful shutdown.

STARTUP SEQUENCE:
  1. Load config from flags and environment
  2. Build the zerolog logger
  3. Open the SQLite command journal
  4. Create the ledger service with the configured cashback policy
  5. Configure the router and serve

COMMAND-LINE FLAGS:
  See config/config.go. Every flag has an environment fallback.

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Close the journal
  4. Exit

EXAMPLES:
  # Journal to a file, verbose logs
  ./server -db=./data/journal.db -log-level=debug

  # One hour cashback delay at 5%
  ./server -cashback-rate=0.05 -cashback-delay=3600000

SEE ALSO:
  - api/server.go: Router configuration
  - store/sqlite/sqlite.go: Journal implementation
*/
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/warp/cashback-ledger/api"
	"github.com/warp/cashback-ledger/config"
	"github.com/warp/cashback-ledger/logger"
	"github.com/warp/cashback-ledger/store/sqlite"
)

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(2)
	}

	log := logger.New(cfg.LogLevel)

	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Str("db", cfg.DBPath).Msg("failed to open journal")
	}
	defer store.Close()

	svc, err := api.NewService(cfg.Cashback, store, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create ledger")
	}

	router := api.NewRouter(api.NewHandler(svc), log)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().
			Int("port", cfg.Port).
			Str("db", cfg.DBPath).
			Str("cashback_rate", cfg.Cashback.Rate.String()).
			Int64("cashback_delay", int64(cfg.Cashback.Delay)).
			Msg("server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}
