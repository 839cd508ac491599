package loadtest

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/healthwatch/inference/pkg/logger"
)

// SetupLogging configures logging to both console and file.
// If logFile is empty, a timestamped filename is generated.
func SetupLogging(logFile string, verbose bool) (io.Closer, error) {
	if logFile == "" {
		timestamp := time.Now().Format("20060102_150405")
		logFile = "load_log_" + timestamp + ".log"
	}

	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, filePermission)
	if err != nil {
		return nil, fmt.Errorf("failed to create log file: %w", err)
	}

	if err := logger.Init(
		logger.WithWriter(io.MultiWriter(os.Stdout, file)),
		logger.WithService("healthwatch-load"),
	); err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	if verbose {
		_ = logger.SetLevelString("debug")
	}
	return file, nil
}

// ShowHelp prints usage information for the load tool.
func ShowHelp() {
	_, _ = os.Stdout.WriteString(`HealthWatch Load Tool
=====================

Submits generated patient metrics to a running inference service and checks
every answer against the local scoring engine.

Usage:
  go run ./cmd/healthwatch-load [options]

Options:
  -url string
        Base URL of the service (default "http://localhost:8000")
  -prefix string
        API route prefix (default "/api/v1")
  -requests int
        Number of samples to generate and submit (default 1000)
  -batch int
        Samples per batch request; 0 or 1 uses /predict (default 0)
  -workers int
        Number of concurrent workers (default CPU cores * 2)
  -timeout duration
        HTTP request timeout (default 30s)
  -output string
        Output file for samples and results (default: none)
  -confidence float
        Confidence the server is configured with (default 0.85)
  -log string
        Log file for test output (default: load_log_TIMESTAMP.log)
  -verbose
        Enable verbose logging
  -help
        Show this help message

Examples:
  # Single predictions with default settings
  go run ./cmd/healthwatch-load

  # Batches of 50 against a remote service
  go run ./cmd/healthwatch-load -requests 20000 -batch 50 -url http://inference:8000
`)
}
