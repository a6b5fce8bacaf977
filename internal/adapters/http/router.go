package httpadapter

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/mlucchetti/rfdrelax/internal/config"
	"github.com/mlucchetti/rfdrelax/internal/core/domain"
	"github.com/mlucchetti/rfdrelax/internal/core/ports"
	"github.com/mlucchetti/rfdrelax/internal/observability/metrics"
)

const (
	serviceName      = "api"
	backpressureWait = 100 * time.Millisecond
)

type Router struct {
	cfg     config.Config
	metrics *metrics.HTTPServerMetrics
	relaxer ports.QueryRelaxer
	lister  ports.CandidateLister
	jobs    ports.RelaxJobService
}

func NewRouter(
	cfg config.Config,
	m *metrics.HTTPServerMetrics,
	relaxer ports.QueryRelaxer,
	lister ports.CandidateLister,
	jobs ports.RelaxJobService,
) *Router {
	return &Router{
		cfg:     cfg,
		metrics: m,
		relaxer: relaxer,
		lister:  lister,
		jobs:    jobs,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", rt.healthz)
	mux.HandleFunc("/v1/relax", rt.relaxQuery)
	mux.HandleFunc("/v1/relaxations", rt.submitRelaxation)
	mux.HandleFunc("/v1/relaxations/", rt.getRelaxationByID)
	mux.HandleFunc("/v1/rfds", rt.listRFDs)
	if rt.metrics != nil {
		mux.Handle("/metrics", rt.metrics.Handler())
	}

	var handler http.Handler = mux
	handler = backpressureMiddleware(handler, rt.cfg.APIMaxInFlight, backpressureWait)
	handler = rateLimitMiddleware(handler, rt.cfg.APIRateLimitRPS, rt.cfg.APIRateLimitBurst)
	handler = authMiddleware(handler, rt.cfg.APIKey)
	if rt.metrics != nil {
		handler = rt.metrics.Middleware(serviceName, handler)
	}
	handler = accessLogMiddleware(handler)
	handler = requestIDMiddleware(handler)
	return handler
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type relaxRequest struct {
	Query      domain.Query `json:"query"`
	MinMatches int          `json:"min_matches"`
	MaxRounds  int          `json:"max_rounds"`
}

func (rt *Router) relaxQuery(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var req relaxRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if req.Query.Len() == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "query is required"})
		return
	}

	start := time.Now()
	result, err := rt.relaxer.Relax(r.Context(), req.Query, domain.RelaxOptions{
		MinMatches: req.MinMatches,
		MaxRounds:  req.MaxRounds,
	})
	if err != nil {
		writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
		return
	}

	if rt.metrics != nil {
		rt.metrics.RecordRelaxation(serviceName, "relax", string(result.Status),
			len(result.Rounds), result.Candidates, result.Matches, time.Since(start))
	}
	writeJSON(w, http.StatusOK, result)
}

func (rt *Router) submitRelaxation(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var req relaxRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if req.Query.Len() == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "query is required"})
		return
	}

	job, err := rt.jobs.Submit(r.Context(), req.Query, domain.RelaxOptions{
		MinMatches: req.MinMatches,
		MaxRounds:  req.MaxRounds,
	})
	if err != nil {
		writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
		return
	}

	if rt.metrics != nil {
		rt.metrics.RecordJobSubmitted(serviceName)
	}
	writeJSON(w, http.StatusAccepted, job)
}

func (rt *Router) getRelaxationByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/v1/relaxations/")
	if id == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "job id is required"})
		return
	}

	job, err := rt.jobs.GetByID(r.Context(), id)
	if err != nil {
		writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, job)
}

type rfdView struct {
	RHS       string `json:"rhs"`
	Rule      string `json:"rule"`
	Wildcards int    `json:"wildcards"`
}

// listRFDs returns the catalog filtered and ranked for the attributes named
// by repeated attr query parameters; with no parameters it lists every
// dependency in generality order.
func (rt *Router) listRFDs(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var bindings []domain.Binding
	for _, attr := range r.URL.Query()["attr"] {
		attr = strings.TrimSpace(attr)
		if attr == "" {
			continue
		}
		bindings = append(bindings, domain.Binding{Attr: attr, Value: domain.Null{}})
	}
	query, err := domain.NewQuery(bindings...)
	if err != nil {
		writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
		return
	}

	rfds, err := rt.lister.Candidates(r.Context(), query)
	if err != nil {
		writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
		return
	}

	views := make([]rfdView, 0, len(rfds))
	for _, rfd := range rfds {
		views = append(views, rfdView{
			RHS:       rfd.RHS(),
			Rule:      rfd.String(),
			Wildcards: rfd.WildcardCount(),
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"count": len(views), "rfds": views})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
