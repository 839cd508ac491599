package service

import (
	"github.com/healthwatch/inference/internal/adapters/modelstore"
	"github.com/healthwatch/inference/internal/domain/scoring"
	"github.com/healthwatch/inference/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithServiceInfo sets the name and version reported by probes.
func WithServiceInfo(name, version string) Option {
	return func(s *Service) {
		if name != "" {
			s.name = name
		}
		if version != "" {
			s.version = version
		}
	}
}

// WithScorer replaces the default scoring engine.
func WithScorer(scorer scoring.Scorer) Option {
	return func(s *Service) {
		if scorer != nil {
			s.scorer = scorer
		}
	}
}

// WithConfidence sets the confidence reported by the default engine.
func WithConfidence(c float64) Option {
	return func(s *Service) {
		s.confidence = c
	}
}

// WithBatchWorkers sets the concurrency limit for batch scoring.
func WithBatchWorkers(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.batchWorkers = count
		}
	}
}

// WithMaxBatchSize sets the largest accepted batch.
func WithMaxBatchSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.maxBatchSize = size
		}
	}
}

// WithModelStore sets the store loaded on Start.
func WithModelStore(store *modelstore.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.models = store
		}
	}
}
