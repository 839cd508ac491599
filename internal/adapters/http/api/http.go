// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	service "github.com/healthwatch/inference/internal/app"
	"github.com/healthwatch/inference/internal/domain/model"
	"github.com/healthwatch/inference/pkg/logger"
)

const maxBodyBytes = 1 << 20

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	Predict(ctx context.Context, in service.Input) (model.RiskAssessment, error)
	PredictBatch(ctx context.Context, inputs []service.Input) ([]model.RiskAssessment, error)

	// Probe data.
	Ready() bool
	ModelLoaded() bool
	Name() string
	Version() string
	MaxBatchSize() int
}

// Server wires HTTP routes for the business API.
type Server struct {
	prefix         string
	infoHandler    *InfoHandler
	healthHandler  *HealthHandler
	statsHandler   *StatsHandler
	predictHandler *PredictHandler
	logger         logger.Logger
}

// NewServer creates a new API server with all handlers. Business routes are
// mounted under prefix, e.g. "/api/v1".
func NewServer(deps Dependencies, statsProvider StatsProvider, prefix string) *Server {
	prefix = strings.TrimSuffix(prefix, "/")
	return &Server{
		prefix:         prefix,
		infoHandler:    NewInfoHandler(deps, prefix),
		healthHandler:  NewHealthHandler(deps),
		statsHandler:   NewStatsHandler(statsProvider),
		predictHandler: NewPredictHandler(deps),
		logger:         logger.Get().Named("http"),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	// Specific paths first (most specific to least specific)
	mux.HandleFunc(s.prefix+"/health", MetricsMiddleware(s.healthHandler.HandleHealth, "health"))
	mux.HandleFunc(s.prefix+"/ready", MetricsMiddleware(s.healthHandler.HandleReady, "ready"))
	mux.HandleFunc(s.prefix+"/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc(s.prefix+"/predict", MetricsMiddleware(s.predictHandler.HandlePredict, "predict"))
	mux.HandleFunc(s.prefix+"/predict/batch", MetricsMiddleware(s.predictHandler.HandlePredictBatch, "predict_batch"))
	mux.HandleFunc("/", MetricsMiddleware(s.infoHandler.HandleInfo, "root"))
}

// Handler wraps h with the cross-cutting middleware shared by every route.
func (s *Server) Handler(h http.Handler) http.Handler {
	return RequestIDMiddleware(CORSMiddleware(RecoverMiddleware(h, s.logger)))
}

type errorResponse struct {
	Code    string       `json:"code"`
	Message string       `json:"message"`
	Index   *int         `json:"index,omitempty"`
	Details []fieldError `json:"details,omitempty"`
}

// fieldError describes one rejected request field.
type fieldError struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Param   string `json:"param,omitempty"`
	Value   any    `json:"value,omitempty"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

func methodNotAllowed(w http.ResponseWriter, op string, allowed ...string) {
	w.Header().Set("Allow", strings.Join(allowed, ", "))
	writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", NewKind(op, ErrMethodNotAllowed))
}

// decodeJSON decodes exactly one JSON value into dst, rejecting unknown
// fields and trailing data.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is empty")
		}
		return err
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return errors.New("request body must contain a single JSON object")
	}
	return nil
}
