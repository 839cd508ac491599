package loadtest

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/healthwatch/inference/internal/domain/scoring"
	"github.com/healthwatch/inference/pkg/logger"
)

// File permission constants.
const (
	directoryPermission = 0750
	filePermission      = 0600
)

func (c *Config) predictURL() string {
	return strings.TrimSuffix(c.BaseURL, "/") + c.APIPrefix + "/predict"
}

func (c *Config) validate() error {
	switch {
	case strings.TrimSpace(c.BaseURL) == "":
		return fmt.Errorf("%w: base URL must not be empty", ErrInvalidConfig)
	case c.NumRequests <= 0:
		return fmt.Errorf("%w: request count must be positive", ErrInvalidConfig)
	case c.Workers <= 0:
		return fmt.Errorf("%w: worker count must be positive", ErrInvalidConfig)
	case c.BatchSize < 0:
		return fmt.Errorf("%w: batch size must not be negative", ErrInvalidConfig)
	case c.Confidence < 0 || c.Confidence > 1:
		return fmt.Errorf("%w: confidence must be within [0, 1]", ErrInvalidConfig)
	}
	return nil
}

// reference builds the local engine answers are compared against.
func (c *Config) reference() (scoring.Scorer, error) {
	if c.Confidence == 0 {
		return scoring.Default(), nil
	}
	engine, err := scoring.NewEngine(scoring.WithConfidence(c.Confidence))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return engine, nil
}

// Run executes the complete load and parity run. scorer is the local
// reference; nil builds one from config.Confidence.
func Run(ctx context.Context, config *Config, scorer scoring.Scorer) (*Stats, error) {
	if config.APIPrefix == "" {
		config.APIPrefix = defaultAPIPrefix
	}
	if err := config.validate(); err != nil {
		return nil, err
	}
	if scorer == nil {
		var err error
		if scorer, err = config.reference(); err != nil {
			return nil, err
		}
	}

	stats := &Stats{
		StartTime: time.Now(),
	}

	logger.Get().Info(ctx, "starting healthwatch load test",
		logger.String("baseURL", config.BaseURL),
		logger.Int("requests", config.NumRequests),
		logger.Int("workers", config.Workers),
		logger.Int("batchSize", config.BatchSize),
		logger.Duration("timeout", config.Timeout))

	// Step 1: Check service readiness
	if err := checkServiceReady(ctx, config); err != nil {
		return stats, err
	}

	// Step 2: Generate samples
	samples, err := generateSamples(ctx, config.NumRequests)
	if err != nil {
		return stats, fmt.Errorf("sample generation failed: %w", err)
	}
	stats.SamplesGenerated = len(samples)

	// Step 3: Submit samples concurrently
	results, err := submitSamples(ctx, config, samples, stats)
	if err != nil {
		return stats, err
	}

	// Step 4: Verify against the local engine
	_, verr := verifyResults(ctx, config, scorer, results, stats)

	// Step 5: Save samples and results
	if config.OutputFile != "" {
		if err := saveResultsToFile(ctx, config.OutputFile, results); err != nil {
			logger.Get().Warn(ctx, "failed to save results to file", logger.Error(err))
		}
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(ctx, stats)

	if verr != nil {
		return stats, verr
	}
	if stats.Failed > 0 {
		return stats, fmt.Errorf("%w: %d of %d", ErrRequestsFailed, stats.Failed, len(results))
	}
	logger.Get().Info(ctx, "load test completed successfully")
	return stats, nil
}

// checkServiceReady verifies the service accepts predictions.
func checkServiceReady(ctx context.Context, config *Config) error {
	logger.Get().Info(ctx, "checking service readiness")

	client := newHTTPClient(config.Timeout)
	url := strings.TrimSuffix(config.BaseURL, "/") + config.APIPrefix + "/ready"

	resp, err := client.Get(ctx, url)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrServiceUnavailable, err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logger.Get().Error(context.Background(), "failed to close response body", logger.Error(err))
		}
	}()

	if resp.StatusCode != StatusOK {
		return fmt.Errorf("%w: readiness returned status %d", ErrServiceUnavailable, resp.StatusCode)
	}

	logger.Get().Info(ctx, "service is ready")
	return nil
}

// saveResultsToFile writes the results as a JSON array.
func saveResultsToFile(ctx context.Context, filename string, results []Result) error {
	dir := filepath.Dir(filename)
	if dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	if err := os.WriteFile(filename, data, filePermission); err != nil {
		return fmt.Errorf("failed to write results: %w", err)
	}

	logger.Get().Info(ctx, "results saved to file", logger.String("filename", filename))
	return nil
}

// displayFinalStats logs the final run statistics.
func displayFinalStats(ctx context.Context, stats *Stats) {
	var successRate, samplesPerSecond float64

	if stats.SamplesGenerated > 0 {
		successRate = float64(stats.Successful) / float64(stats.SamplesGenerated) * PercentageMultiplier
	}

	if stats.Duration > 0 {
		samplesPerSecond = float64(stats.SamplesGenerated) / stats.Duration.Seconds()
	}

	logger.Get().Info(ctx, "final statistics",
		logger.Int("samplesGenerated", stats.SamplesGenerated),
		logger.Int("requestsSent", stats.RequestsSent),
		logger.Int("successful", stats.Successful),
		logger.Int("failed", stats.Failed),
		logger.Int("verified", stats.Verified),
		logger.Int("mismatches", stats.Mismatches),
		logger.Any("levels", stats.LevelCounts),
		logger.String("duration", stats.Duration.String()),
		logger.Float64("successRate", successRate),
		logger.Float64("samplesPerSecond", samplesPerSecond))
}
