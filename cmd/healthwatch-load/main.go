package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/healthwatch/inference/internal/domain/scoring"
	"github.com/healthwatch/inference/internal/loadtest"
)

// Default configuration constants.
const (
	defaultRequests    = 1000
	defaultWorkers     = 2 // multiplier for runtime.NumCPU()
	defaultTimeout     = 30 * time.Second
	defaultTestTimeout = 10 * time.Minute
)

func main() {
	var (
		baseURL    = flag.String("url", "http://localhost:8000", "Base URL of the service")
		prefix     = flag.String("prefix", "/api/v1", "API route prefix")
		requests   = flag.Int("requests", defaultRequests, "Number of samples to generate and submit")
		batchSize  = flag.Int("batch", 0, "Samples per batch request; 0 or 1 uses /predict")
		workers    = flag.Int("workers", runtime.NumCPU()*defaultWorkers, "Number of concurrent workers")
		timeout    = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		outputFile = flag.String("output", "", "Output file for samples and results")
		logFile    = flag.String("log", "", "Log file for test output (default: load_log_TIMESTAMP.log)")
		confidence = flag.Float64("confidence", scoring.DefaultConfidence, "Confidence the server is configured with")
		verbose    = flag.Bool("verbose", false, "Enable verbose logging")
		help       = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		loadtest.ShowHelp()
		return
	}

	// Setup logging
	closer, err := loadtest.SetupLogging(*logFile, *verbose)
	if err != nil {
		_, _ = os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() { _ = closer.Close() }()

	// Create context with timeout, canceled on interrupt
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, defaultTestTimeout)
	defer cancel()

	config := &loadtest.Config{
		BaseURL:     *baseURL,
		APIPrefix:   *prefix,
		NumRequests: *requests,
		BatchSize:   *batchSize,
		Workers:     *workers,
		Timeout:     *timeout,
		OutputFile:  *outputFile,
		Verbose:     *verbose,
		Confidence:  *confidence,
	}

	if _, err := loadtest.Run(ctx, config, nil); err != nil {
		_, _ = os.Stderr.WriteString("Load test failed: " + err.Error() + "\n")
		cancel()
		stop()
		_ = closer.Close()
		os.Exit(1)
	}
}
