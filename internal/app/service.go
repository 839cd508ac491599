// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/healthwatch/inference/internal/adapters/batch"
	"github.com/healthwatch/inference/internal/adapters/modelstore"
	"github.com/healthwatch/inference/internal/domain/model"
	"github.com/healthwatch/inference/internal/domain/scoring"
	"github.com/healthwatch/inference/pkg/logger"
	"github.com/healthwatch/inference/pkg/metrics"
)

const defaultMaxBatchSize = 100

// Input carries the raw request values for one prediction.
type Input struct {
	Age        int
	BMI        float64
	SystolicBP int
}

// Service implements the API dependencies for the inference system.
type Service struct {
	mu sync.RWMutex

	// Core components
	scorer scoring.Scorer
	pool   *batch.Pool
	models *modelstore.Store

	// Configuration
	name         string
	version      string
	confidence   float64
	batchWorkers int
	maxBatchSize int

	// State
	started   bool
	startedAt time.Time

	predictions atomic.Int64
	rejected    atomic.Int64
	failures    atomic.Int64

	// Logging
	logger logger.Logger
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		name:         "healthwatch-inference",
		version:      "dev",
		confidence:   scoring.DefaultConfidence,
		batchWorkers: runtime.NumCPU(),
		maxBatchSize: defaultMaxBatchSize,
		logger:       nil, // Will be replaced when service starts
	}

	// Apply all options
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start builds the scoring engine and batch pool and loads the model
// artifact when a model store is configured.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	// Initialize logger if not already set
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}

	s.logger.Info(ctx, "starting inference service",
		logger.String("service", s.name),
		logger.String("version", s.version),
	)

	if s.scorer == nil {
		engine, err := scoring.NewEngine(scoring.WithConfidence(s.confidence))
		if err != nil {
			return fmt.Errorf("build scoring engine: %w", err)
		}
		s.scorer = engine
	}

	s.pool = batch.NewPool(s.batchWorkers,
		batch.WithName("predict-batch"),
		batch.WithLogger(s.logger.Named("batch")),
	)

	modelLoaded := false
	if s.models != nil {
		loaded, err := s.models.Load(ctx)
		if err != nil {
			s.logger.Error(ctx, "failed to load model", logger.Error(err))
			return err
		}
		modelLoaded = loaded
	}

	s.started = true
	s.startedAt = time.Now()
	s.logger.Info(ctx, "inference service started",
		logger.Int("batchWorkers", s.pool.Workers()),
		logger.Int("maxBatchSize", s.maxBatchSize),
		logger.Bool("modelLoaded", modelLoaded),
	)

	return nil
}

// Stop gracefully shuts down the service.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	s.logger.Info(context.Background(), "stopping inference service...")

	if s.models != nil {
		s.models.Unload()
	}

	s.started = false
	s.logger.Info(context.Background(), "inference service stopped",
		logger.Int("predictions", int(s.predictions.Load())),
	)
}

// Ready reports whether the service accepts predictions.
func (s *Service) Ready() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.started
}

// ModelLoaded reports whether a model artifact is held.
func (s *Service) ModelLoaded() bool {
	if s.models == nil {
		return false
	}
	return s.models.Loaded()
}

// Name returns the service name.
func (s *Service) Name() string { return s.name }

// Version returns the service version.
func (s *Service) Version() string { return s.version }

// MaxBatchSize returns the largest accepted batch.
func (s *Service) MaxBatchSize() int { return s.maxBatchSize }

// Predict validates in and scores it.
func (s *Service) Predict(ctx context.Context, in Input) (a model.RiskAssessment, err error) {
	scorer, err := s.activeScorer()
	if err != nil {
		return model.RiskAssessment{}, err
	}

	m, err := s.metrics(in)
	if err != nil {
		return model.RiskAssessment{}, err
	}

	defer func() {
		if r := recover(); r != nil {
			err = s.recordFailure(ctx, fmt.Errorf("%w: %v", ErrPrediction, r))
		}
	}()

	return s.score(ctx, scorer, m), nil
}

// PredictBatch validates every input before scoring any of them. The first
// invalid input is reported as a *batch.ItemError carrying its index.
// Results keep the order of inputs.
func (s *Service) PredictBatch(ctx context.Context, inputs []Input) ([]model.RiskAssessment, error) {
	scorer, err := s.activeScorer()
	if err != nil {
		return nil, err
	}

	switch {
	case len(inputs) == 0:
		return nil, ErrEmptyBatch
	case len(inputs) > s.maxBatchSize:
		return nil, fmt.Errorf("%w: %d items, limit %d", ErrBatchTooLarge, len(inputs), s.maxBatchSize)
	}

	validated := make([]model.Metrics, len(inputs))
	for i, in := range inputs {
		m, err := s.metrics(in)
		if err != nil {
			return nil, &batch.ItemError{Index: i, Err: err}
		}
		validated[i] = m
	}

	metrics.RecordBatchSize(len(inputs))
	s.logger.Debug(ctx, "scoring batch", logger.Int("items", len(inputs)))

	results, err := batch.Map(ctx, s.pool, validated, func(ctx context.Context, _ int, m model.Metrics) (model.RiskAssessment, error) {
		return s.score(ctx, scorer, m), nil
	})
	if err != nil {
		if errors.Is(err, batch.ErrPanic) {
			return nil, s.recordFailure(ctx, fmt.Errorf("%w: %w", ErrPrediction, err))
		}
		return nil, err
	}
	return results, nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":      s.started,
		"service":      s.name,
		"version":      s.version,
		"batchWorkers": s.batchWorkers,
		"maxBatchSize": s.maxBatchSize,
		"predictions":  s.predictions.Load(),
		"rejected":     s.rejected.Load(),
		"failures":     s.failures.Load(),
		"modelLoaded":  s.models != nil && s.models.Loaded(),
	}

	if s.started {
		stats["uptimeSeconds"] = time.Since(s.startedAt).Seconds()
	}

	return stats
}

func (s *Service) activeScorer() (scoring.Scorer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return nil, ErrNotStarted
	}
	return s.scorer, nil
}

// metrics builds a validated Metrics value and records rejected fields.
func (s *Service) metrics(in Input) (model.Metrics, error) {
	m, err := model.NewMetrics(in.Age, in.BMI, in.SystolicBP)
	if err != nil {
		s.rejected.Add(1)
		var invalid *model.InvalidInputError
		if errors.As(err, &invalid) {
			for _, field := range invalid.Fields() {
				metrics.RecordValidationFailure(field)
			}
		}
		return model.Metrics{}, err
	}
	return m, nil
}

func (s *Service) score(ctx context.Context, scorer scoring.Scorer, m model.Metrics) model.RiskAssessment {
	s.logger.Debug(ctx, "calculating risk",
		logger.Int("age", m.Age()),
		logger.Float64("bmi", m.BMI()),
		logger.Int("blood_pressure", m.SystolicBP()),
	)

	start := time.Now()
	a := scorer.Score(m)
	metrics.RecordScoringLatency(float64(time.Since(start).Microseconds()) / 1000)
	metrics.RecordPrediction(a.RiskLevel.String(), a.RiskScore)
	s.predictions.Add(1)

	s.logger.Info(ctx, "risk calculated",
		logger.Float64("risk_score", a.RiskScore),
		logger.String("risk_level", a.RiskLevel.String()),
		logger.Int("factors", len(a.ContributingFactors)),
	)
	return a
}

func (s *Service) recordFailure(ctx context.Context, err error) error {
	s.failures.Add(1)
	metrics.RecordPredictionError()
	metrics.RecordErrorByType("prediction_error", "high")
	s.logger.Error(ctx, "prediction failed", logger.Error(err))
	return err
}
