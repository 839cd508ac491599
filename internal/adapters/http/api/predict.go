package api

import (
	"errors"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/healthwatch/inference/internal/adapters/batch"
	service "github.com/healthwatch/inference/internal/app"
	"github.com/healthwatch/inference/internal/domain/model"
	"github.com/healthwatch/inference/pkg/logger"
)

// bmiPrecision is the number of decimals BMI is rounded to on input.
const bmiPrecision = 1

// predictRequest mirrors the OpenAPI schema for POST {prefix}/predict.
// Pointers distinguish a missing field from a zero value.
type predictRequest struct {
	Age           *int     `json:"age" validate:"required,gte=0,lte=120"`
	BMI           *float64 `json:"bmi" validate:"required,gte=10,lte=60"`
	BloodPressure *int     `json:"blood_pressure" validate:"required,gte=60,lte=250"`
}

func (p predictRequest) input() service.Input {
	return service.Input{
		Age:        *p.Age,
		BMI:        roundBMI(*p.BMI),
		SystolicBP: *p.BloodPressure,
	}
}

type batchRequest struct {
	Items []predictRequest `json:"items"`
}

type componentsResponse struct {
	Age           float64 `json:"age"`
	BMI           float64 `json:"bmi"`
	BloodPressure float64 `json:"blood_pressure"`
}

type predictResponse struct {
	RiskScore           float64             `json:"risk_score"`
	RiskLevel           model.RiskLevel     `json:"risk_level"`
	Confidence          float64             `json:"confidence"`
	ContributingFactors []string            `json:"contributing_factors"`
	Components          *componentsResponse `json:"components,omitempty"`
}

type batchResponse struct {
	Results []predictResponse `json:"results"`
}

func newPredictResponse(a model.RiskAssessment, explain bool) predictResponse {
	resp := predictResponse{
		RiskScore:           a.RiskScore,
		RiskLevel:           a.RiskLevel,
		Confidence:          a.Confidence,
		ContributingFactors: a.ContributingFactors,
	}
	if explain {
		resp.Components = &componentsResponse{
			Age:           a.Components.Age,
			BMI:           a.Components.BMI,
			BloodPressure: a.Components.SystolicBP,
		}
	}
	return resp
}

// PredictHandler handles single and batch prediction requests.
type PredictHandler struct {
	deps     Dependencies
	validate *validator.Validate
}

// NewPredictHandler creates a new predict handler.
func NewPredictHandler(deps Dependencies) *PredictHandler {
	return &PredictHandler{deps: deps, validate: newValidator()}
}

// HandlePredict handles POST {prefix}/predict requests.
func (h *PredictHandler) HandlePredict(w http.ResponseWriter, r *http.Request) {
	const op = "api.predict"
	if r.Method != http.MethodPost {
		methodNotAllowed(w, op, http.MethodPost)
		return
	}
	var req predictRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if details := h.check(req); len(details) > 0 {
		writeInvalid(w, op, nil, details)
		return
	}

	a, err := h.deps.Predict(r.Context(), req.input())
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, newPredictResponse(a, explain(r)))
}

// HandlePredictBatch handles POST {prefix}/predict/batch requests.
func (h *PredictHandler) HandlePredictBatch(w http.ResponseWriter, r *http.Request) {
	const op = "api.predict_batch"
	if r.Method != http.MethodPost {
		methodNotAllowed(w, op, http.MethodPost)
		return
	}
	var req batchRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if n, limit := len(req.Items), h.deps.MaxBatchSize(); n == 0 || n > limit {
		writeError(w, http.StatusBadRequest, "bad_request",
			WrapKind(op, ErrBadRequest, errors.New("items must contain between 1 and "+strconv.Itoa(limit)+" entries")))
		return
	}

	inputs := make([]service.Input, len(req.Items))
	for i, item := range req.Items {
		if details := h.check(item); len(details) > 0 {
			writeInvalid(w, op, &i, details)
			return
		}
		inputs[i] = item.input()
	}

	results, err := h.deps.PredictBatch(r.Context(), inputs)
	if errors.Is(err, batch.ErrCanceled) {
		// Client is gone; nothing to answer.
		logger.Get().Named("http").Debug(r.Context(), "batch canceled",
			logger.Int("items", len(inputs)), logger.Error(err))
		return
	}
	if err != nil {
		writeServiceError(w, op, err)
		return
	}

	withComponents := explain(r)
	resp := batchResponse{Results: make([]predictResponse, len(results))}
	for i, a := range results {
		resp.Results[i] = newPredictResponse(a, withComponents)
	}
	writeJSON(w, http.StatusOK, resp)
}

// check runs tag validation and returns one entry per failed field.
func (h *PredictHandler) check(req predictRequest) []fieldError {
	err := h.validate.Struct(req)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []fieldError{{Field: "body", Rule: "invalid", Message: err.Error()}}
	}
	details := make([]fieldError, 0, len(verrs))
	for _, fe := range verrs {
		details = append(details, fromFieldError(fe))
	}
	return details
}

func fromFieldError(fe validator.FieldError) fieldError {
	out := fieldError{Field: fe.Field(), Rule: fe.Tag(), Param: fe.Param()}
	switch fe.Tag() {
	case "required":
		out.Message = fe.Field() + " is required"
	case "gte":
		out.Value = fe.Value()
		out.Message = fe.Field() + " must be greater than or equal to " + fe.Param()
	case "lte":
		out.Value = fe.Value()
		out.Message = fe.Field() + " must be less than or equal to " + fe.Param()
	default:
		out.Value = fe.Value()
		out.Message = fe.Field() + " failed " + fe.Tag() + " validation"
	}
	return out
}

func fromViolation(v model.Violation) fieldError {
	return fieldError{
		Field:   v.Field,
		Rule:    "range",
		Param:   "[" + formatFloat(v.Min) + ", " + formatFloat(v.Max) + "]",
		Value:   v.Value,
		Message: v.String(),
	}
}

func writeInvalid(w http.ResponseWriter, op string, index *int, details []fieldError) {
	msg := WrapKind(op, ErrInvalidInput, errors.New(summarize(details))).Error()
	if index != nil {
		msg = WrapKind(op, ErrInvalidInput, errors.New("item "+strconv.Itoa(*index)+": "+summarize(details))).Error()
	}
	writeJSON(w, http.StatusBadRequest, errorResponse{
		Code:    "invalid_input",
		Message: msg,
		Index:   index,
		Details: details,
	})
}

// writeServiceError translates service errors into responses. Unexpected
// errors never leak their text to the client.
func writeServiceError(w http.ResponseWriter, op string, err error) {
	var invalid *model.InvalidInputError
	var itemErr *batch.ItemError
	switch {
	case errors.As(err, &itemErr) && errors.As(itemErr.Err, &invalid):
		details := make([]fieldError, len(invalid.Violations))
		for i, v := range invalid.Violations {
			details[i] = fromViolation(v)
		}
		index := itemErr.Index
		writeInvalid(w, op, &index, details)
	case errors.As(err, &invalid):
		details := make([]fieldError, len(invalid.Violations))
		for i, v := range invalid.Violations {
			details[i] = fromViolation(v)
		}
		writeInvalid(w, op, nil, details)
	case errors.Is(err, service.ErrEmptyBatch), errors.Is(err, service.ErrBatchTooLarge):
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
	case errors.Is(err, service.ErrNotStarted):
		writeError(w, http.StatusServiceUnavailable, "not_ready", NewKind(op, ErrNotReady))
	default:
		writeJSON(w, http.StatusInternalServerError, errorResponse{Code: "internal_error", Message: "Internal server error"})
	}
}

func summarize(details []fieldError) string {
	parts := make([]string, len(details))
	for i, d := range details {
		parts[i] = d.Message
	}
	return strings.Join(parts, "; ")
}

func explain(r *http.Request) bool {
	v, err := strconv.ParseBool(r.URL.Query().Get("explain"))
	return err == nil && v
}

// roundBMI rounds the stored binary value to one decimal, so 29.95
// (29.949999...) becomes 29.9. Exact ties go to even.
func roundBMI(bmi float64) float64 {
	rounded, err := strconv.ParseFloat(strconv.FormatFloat(bmi, 'f', bmiPrecision, 64), 64)
	if err != nil {
		return bmi
	}
	return rounded
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// newValidator reports fields by their JSON names.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}
