package api

import (
	"net/http"
)

// InfoHandler serves the root service description.
type InfoHandler struct {
	deps   ProbeDependencies
	prefix string
}

// NewInfoHandler creates a new info handler.
func NewInfoHandler(deps ProbeDependencies, prefix string) *InfoHandler {
	return &InfoHandler{deps: deps, prefix: prefix}
}

type infoResponse struct {
	Service string `json:"service"`
	Version string `json:"version"`
	Docs    string `json:"docs"`
	Health  string `json:"health"`
	Predict string `json:"predict"`
}

// HandleInfo handles GET / requests. Any other unmatched path is a 404.
func (h *InfoHandler) HandleInfo(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		writeError(w, http.StatusNotFound, "not_found", nil)
		return
	}
	if r.Method != http.MethodGet {
		methodNotAllowed(w, "api.info", http.MethodGet)
		return
	}
	writeJSON(w, http.StatusOK, infoResponse{
		Service: h.deps.Name(),
		Version: h.deps.Version(),
		Docs:    "/api-docs",
		Health:  h.prefix + "/health",
		Predict: h.prefix + "/predict",
	})
}
