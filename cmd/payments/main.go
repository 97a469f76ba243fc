/*
main.go - Application entry point

PURPOSE:
  Processes one CSV event file through the settlement engine and prints
  the final per-account report to stdout. Diagnostics go to stderr, so the
  report stream stays clean.

COMMAND-LINE:
  payments [flags] <input.csv>

  Zero positional arguments is a silent no-op (exit 0).

FLAGS:
  -serve      Address to serve the snapshot API on after processing
              (default: disabled)
  -log-level  Diagnostic verbosity: debug shows per-record traces
              (default: warn)

ENVIRONMENT:
  A .env file in the working directory may supply LOG_LEVEL and
  SERVE_ADDR. Explicit flags win over the environment.

EXAMPLES:
  # Process a file, report to stdout
  ./payments transactions.csv

  # Show every record and rejection while processing
  ./payments -log-level=debug transactions.csv

  # Keep the snapshot queryable after the run
  ./payments -serve=:8080 transactions.csv

SEE ALSO:
  - ingest/processor.go: The processing loop
  - api/server.go: Snapshot API routes
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/warp/payments-engine/api"
	"github.com/warp/payments-engine/ingest"
	"github.com/warp/payments-engine/ledger"
	"github.com/warp/payments-engine/report"
)

func main() {
	// .env is optional; flags below win over it.
	_ = godotenv.Load()

	serveAddr := flag.String("serve", os.Getenv("SERVE_ADDR"), "serve the snapshot API on this address after processing")
	logLevel := flag.String("log-level", envOr("LOG_LEVEL", "warn"), "diagnostic log level (debug, info, warn, error)")
	flag.Parse()

	logger := newLogger(*logLevel)
	defer logger.Sync()

	log := logger.Sugar()

	if flag.NArg() == 0 {
		return
	}

	engine := ledger.NewEngine()
	processor := ingest.NewProcessor(engine, log)

	file, err := os.Open(flag.Arg(0))
	if err != nil {
		log.Fatalw("cannot open input", "path", flag.Arg(0), "error", err)
	}
	defer file.Close()

	if err := processor.Run(file); err != nil {
		log.Fatalw("processing failed", "path", flag.Arg(0), "error", err)
	}

	if err := report.Render(os.Stdout, engine.Snapshot()); err != nil {
		log.Fatalw("cannot write report", "error", err)
	}

	if *serveAddr != "" {
		serve(log, *serveAddr, engine, processor)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// newLogger builds the diagnostic sink. Diagnostics always go to stderr;
// stdout is reserved for the report.
func newLogger(level string) *zap.Logger {
	cfg := zap.NewDevelopmentConfig()
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	if lvl, err := zap.ParseAtomicLevel(level); err == nil {
		cfg.Level = lvl
	}
	logger, err := cfg.Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "cannot initialize logger: %v\n", err)
		os.Exit(1)
	}
	return logger
}

// serve exposes the finished run over HTTP until SIGINT/SIGTERM.
func serve(log *zap.SugaredLogger, addr string, engine *ledger.Engine, p *ingest.Processor) {
	handler := api.NewHandler(engine, p.RunID(), p.Summary())
	server := &http.Server{
		Addr:         addr,
		Handler:      api.NewRouter(handler),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infow("snapshot API listening", "addr", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalw("server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalw("server forced to shutdown", "error", err)
	}
	log.Infow("server stopped")
}
