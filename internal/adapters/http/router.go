package httpadapter

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/mark-aronson/purdue-syllabi-analyzer/internal/core/ports"
	"github.com/mark-aronson/purdue-syllabi-analyzer/internal/observability/metrics"
)

// Router serves the read-only viewer API over stored results.
type Router struct {
	reviews ports.ReviewReader
	logger  *slog.Logger
	metrics *metrics.HTTPServerMetrics
}

func NewRouter(reviews ports.ReviewReader, logger *slog.Logger, httpMetrics *metrics.HTTPServerMetrics) *Router {
	if logger == nil {
		logger = slog.Default()
	}
	return &Router{
		reviews: reviews,
		logger:  logger,
		metrics: httpMetrics,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", rt.healthz)
	mux.HandleFunc("GET /v1/scopes", rt.listScopes)
	mux.HandleFunc("GET /v1/scopes/{scope}/records", rt.scopeRecords)
	mux.HandleFunc("GET /v1/scopes/{scope}/errors", rt.scopeErrors)
	mux.HandleFunc("GET /v1/scopes/{scope}/summary", rt.scopeSummary)
	mux.HandleFunc("GET /v1/programs", rt.listPrograms)
	mux.HandleFunc("GET /v1/programs/{program}", rt.programView)

	var handler http.Handler = mux
	if rt.metrics != nil {
		mux.Handle("GET /metrics", rt.metrics.Handler())
		handler = rt.metrics.Middleware(mux)
	}
	return withRequestID(withAccessLog(rt.logger, handler))
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) listScopes(w http.ResponseWriter, r *http.Request) {
	scopes, err := rt.reviews.Scopes(r.Context())
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"scopes": scopes})
}

func (rt *Router) scopeRecords(w http.ResponseWriter, r *http.Request) {
	records, err := rt.reviews.Records(r.Context(), r.PathValue("scope"))
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func (rt *Router) scopeErrors(w http.ResponseWriter, r *http.Request) {
	failures, err := rt.reviews.Errors(r.Context(), r.PathValue("scope"))
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, failures)
}

func (rt *Router) scopeSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := rt.reviews.Summary(r.Context(), r.PathValue("scope"))
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (rt *Router) listPrograms(w http.ResponseWriter, r *http.Request) {
	programs, err := rt.reviews.Programs(r.Context())
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"programs": programs})
}

func (rt *Router) programView(w http.ResponseWriter, r *http.Request) {
	view, err := rt.reviews.ProgramView(r.Context(), r.PathValue("program"))
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (rt *Router) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := mapErrorToHTTPStatus(err)
	if status >= http.StatusInternalServerError {
		rt.logger.Error("request_failed", "request_id", requestID(r.Context()), "path", r.URL.Path, "error", err)
	}
	writeJSON(w, status, map[string]string{
		"error":      err.Error(),
		"request_id": requestID(r.Context()),
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(payload)
}
