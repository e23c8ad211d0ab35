package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"aks-health-guardian/internal/analysis"
	"aks-health-guardian/internal/logs"
	"aks-health-guardian/internal/metrics"
	"aks-health-guardian/internal/store"
)

// Runner triggers an immediate health-check run.
type Runner interface {
	RunOnce(ctx context.Context) (store.Record, error)
}

// History reads completed runs.
type History interface {
	Latest() (store.Record, bool)
	Get(id string) (store.Record, bool)
	List() []store.Record
}

// Handler holds dependencies for HTTP handlers.
type Handler struct {
	history  History
	runner   Runner
	endpoint *analysis.EndpointTracker
	metrics  *metrics.Registry
	logger   *logs.Logger
}

// NewHandler creates a new API handler.
func NewHandler(
	history History,
	runner Runner,
	endpoint *analysis.EndpointTracker,
	reg *metrics.Registry,
	logger *logs.Logger,
) *Handler {
	return &Handler{
		history:  history,
		runner:   runner,
		endpoint: endpoint,
		metrics:  reg,
		logger:   logger,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

/* ---------------- GET /report/latest ---------------- */

func (h *Handler) GetLatestReport(w http.ResponseWriter, r *http.Request) {
	rec, ok := h.history.Latest()
	if !ok {
		http.Error(w, "no report available yet", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

/* ---------------- GET /reports ---------------- */

func (h *Handler) ListReports(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.history.List())
}

/* ---------------- GET /reports/{id} ---------------- */

func (h *Handler) GetReport(w http.ResponseWriter, r *http.Request) {
	id := reportID(r.URL.Path)
	if id == "" {
		http.Error(w, "missing run id", http.StatusBadRequest)
		return
	}
	rec, ok := h.history.Get(id)
	if !ok {
		http.Error(w, "unknown run id", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

/* ---------------- POST /run ---------------- */

func (h *Handler) TriggerRun(w http.ResponseWriter, r *http.Request) {
	h.metrics.Inc(metrics.APIRunsTriggeredTotal)

	rec, err := h.runner.RunOnce(r.Context())
	if err != nil {
		http.Error(w, "health check run failed: "+err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

/* ---------------- GET /health ---------------- */

type healthResponse struct {
	Status             string `json:"status"`
	CompletionEndpoint string `json:"completion_endpoint"`
	LastRunID          string `json:"last_run_id,omitempty"`
	LastHealthScore    *int   `json:"last_health_score,omitempty"`
}

func (h *Handler) GetHealth(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{
		Status:             "ok",
		CompletionEndpoint: string(h.endpoint.State()),
	}
	if rec, ok := h.history.Latest(); ok {
		resp.LastRunID = rec.ID
		score := rec.Result.HealthScore
		resp.LastHealthScore = &score
	}
	writeJSON(w, http.StatusOK, resp)
}

/* ---------------- GET /metrics ---------------- */

func (h *Handler) GetMetrics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.metrics.Snapshot())
}

/* ---------------- GET /admin/logs ---------------- */

func (h *Handler) GetLogs(w http.ResponseWriter, r *http.Request) {
	n := 100
	if raw := r.URL.Query().Get("n"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			http.Error(w, "invalid n parameter", http.StatusBadRequest)
			return
		}
		n = parsed
	}
	writeJSON(w, http.StatusOK, h.logger.GetLast(n))
}
