package httpserver

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	appadvisor "github.com/streamdab/eti-monitor/internal/application/advisor"
	"github.com/streamdab/eti-monitor/internal/application/analysis"
	"github.com/streamdab/eti-monitor/internal/application/pipeline"
	domadvisor "github.com/streamdab/eti-monitor/internal/domain/advisor"
	"github.com/streamdab/eti-monitor/internal/domain/compliance"
	"github.com/streamdab/eti-monitor/internal/middleware"
)

// maxUploadBytes caps recording uploads at 64 MiB (~10900 ETI frames).
const maxUploadBytes = 64 << 20

const (
	rateLimitBurst  = 120
	rateLimitPerSec = 20
)

type Router struct {
	analyzer   *analysis.Analyzer
	pipe       *pipeline.Pipeline
	reports    compliance.ReportRepository
	advisorSvc *appadvisor.Service
}

func NewRouter(analyzer *analysis.Analyzer, pipe *pipeline.Pipeline, reports compliance.ReportRepository, advisorSvc *appadvisor.Service, checkers map[string]middleware.HealthChecker) http.Handler {
	r := &Router{analyzer: analyzer, pipe: pipe, reports: reports, advisorSvc: advisorSvc}
	mux := chi.NewRouter()

	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
	}))
	mux.Use(middleware.LoggingMiddleware)
	mux.Use(middleware.MetricsMiddleware)
	// keyed on station+IP; auth runs outside this mux so the station
	// context is already set
	mux.Use(middleware.RateLimitMiddleware(rateLimitBurst, rateLimitPerSec))

	mux.Get("/health", middleware.HealthHandler(checkers))
	mux.Get("/ready", middleware.ReadinessHandler)
	mux.Get("/metrics", middleware.MetricsHandler)

	mux.Route("/v1/{station}", func(rt chi.Router) {
		rt.Post("/analyze", r.wrap(r.handleAnalyze))
		rt.Post("/text", r.wrap(r.handleValidateText))
		rt.Post("/dls", r.wrap(r.handleAnalyzeDLS))
		rt.Get("/reports/latest", r.wrap(r.handleLatest))
		rt.Get("/reports/{id}", r.wrap(r.handleGet))
		rt.Get("/summary", r.wrap(r.handleSummary))
		rt.Get("/stats", r.wrap(r.handleStats))
		rt.Get("/violations", r.wrap(r.handleViolations))
		rt.Get("/streaming/config", r.wrap(r.handleGetStreamingConfig))
		rt.Put("/streaming/config", r.wrap(r.handleUpdateStreamingConfig))
		rt.Post("/ai/summarize", r.wrap(r.handleAISummarize))
		rt.Get("/ai/summarize", r.wrap(r.handleAISummarizeList))
	})

	return mux
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

func (r *Router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		if err := h(w, req); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				http.Error(w, "not found", http.StatusNotFound)
				return
			}
			if errors.Is(err, domadvisor.ErrQuotaExceeded) {
				http.Error(w, "ai quota exceeded", http.StatusTooManyRequests)
				return
			}
			if errors.Is(err, pipeline.ErrQueueFull) {
				http.Error(w, "report queue is full, retry later", http.StatusServiceUnavailable)
				return
			}
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	}
}

// POST /v1/{station}/analyze
// Body: raw ETI(NI) recording bytes. The filename comes from the
// X-Filename header when present.
func (r *Router) handleAnalyze(w http.ResponseWriter, req *http.Request) error {
	station := chi.URLParam(req, "station")
	if err := middleware.ValidateStationID(station); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return nil
	}

	filename := middleware.SanitizeString(req.Header.Get("X-Filename"))
	if err := middleware.ValidateFilename(filename); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return nil
	}
	if filename == "" {
		filename = fmt.Sprintf("upload-%d.eti", time.Now().Unix())
	}

	data, err := io.ReadAll(io.LimitReader(req.Body, maxUploadBytes+1))
	if err != nil {
		return err
	}
	if len(data) == 0 {
		http.Error(w, "empty body", http.StatusBadRequest)
		return nil
	}
	if len(data) > maxUploadBytes {
		http.Error(w, "recording too large", http.StatusRequestEntityTooLarge)
		return nil
	}

	middleware.IncrementAnalyses()
	middleware.IncrementAnalysesRunning()
	defer middleware.DecrementAnalysesRunning()

	rep := r.analyzer.AnalyzeCompleteETI(filename, data)
	rep.StationID = station

	if err := r.pipe.Submit(rep); err != nil {
		middleware.IncrementAnalysesFailed()
		return err
	}
	for _, res := range rep.AllResults() {
		if !res.Passed {
			r.pipe.SubmitViolation(res)
		}
	}
	if rep.ThaiAnalysis != nil {
		r.pipe.SubmitThaiAnalysis(rep.ThaiAnalysis)
	}

	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(rep)
}

// POST /v1/{station}/text
// Body: {"text": "..."}
func (r *Router) handleValidateText(w http.ResponseWriter, req *http.Request) error {
	var body struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return err
	}
	if body.Text == "" {
		return fmt.Errorf("text is required")
	}

	results := r.analyzer.ValidateText(body.Text)
	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(results)
}

// POST /v1/{station}/dls
// Body: {"text": "..."}. Splits bilingual DLS text, enforces the
// 128-character limit, and reports the guidelines in force today.
func (r *Router) handleAnalyzeDLS(w http.ResponseWriter, req *http.Request) error {
	var body struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return err
	}
	if body.Text == "" {
		return fmt.Errorf("text is required")
	}

	res := r.analyzer.AnalyzeDLS(body.Text)
	if res == nil {
		http.Error(w, "thai analysis is not enabled", http.StatusServiceUnavailable)
		return nil
	}
	special, guidelines := r.analyzer.DateGuidelines()

	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(map[string]any{
		"analysis":                res,
		"special_validation_date": special,
		"date_guidelines":         guidelines,
	})
}

// GET /v1/{station}/reports/latest?limit=20
func (r *Router) handleLatest(w http.ResponseWriter, req *http.Request) error {
	station := chi.URLParam(req, "station")
	limit, _ := strconv.Atoi(req.URL.Query().Get("limit"))
	limit = middleware.ValidateLimit(limit)

	list, err := r.reports.Latest(req.Context(), station, limit)
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(list)
}

// GET /v1/{station}/reports/{id}
func (r *Router) handleGet(w http.ResponseWriter, req *http.Request) error {
	station := chi.URLParam(req, "station")
	id := chi.URLParam(req, "id")
	if err := middleware.ValidateReportID(id); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return nil
	}

	rep, err := r.reports.Get(req.Context(), station, compliance.ReportID(id))
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(rep)
}

// GET /v1/{station}/summary?days=7
func (r *Router) handleSummary(w http.ResponseWriter, req *http.Request) error {
	station := chi.URLParam(req, "station")
	days, _ := strconv.Atoi(req.URL.Query().Get("days"))
	days = middleware.ValidateDays(days)

	total, critical, avg, err := r.reports.Summary(req.Context(), station, days)
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(map[string]any{
		"station":       station,
		"days":          days,
		"total_reports": total,
		"critical":      critical,
		"average_score": avg,
	})
}

// GET /v1/{station}/stats
func (r *Router) handleStats(w http.ResponseWriter, req *http.Request) error {
	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(r.pipe.Stats())
}

// GET /v1/{station}/violations
func (r *Router) handleViolations(w http.ResponseWriter, req *http.Request) error {
	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(r.pipe.RecentViolations())
}

// GET /v1/{station}/streaming/config
func (r *Router) handleGetStreamingConfig(w http.ResponseWriter, req *http.Request) error {
	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(r.pipe.GetConfig())
}

// PUT /v1/{station}/streaming/config
func (r *Router) handleUpdateStreamingConfig(w http.ResponseWriter, req *http.Request) error {
	var cfg pipeline.Config
	if err := json.NewDecoder(req.Body).Decode(&cfg); err != nil {
		return err
	}
	if err := r.pipe.UpdateConfig(cfg); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return nil
	}
	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(r.pipe.GetConfig())
}

// POST /v1/{station}/ai/summarize
// Body: {"report_id": "<id>"}
// The server fetches the report's artifact_url and runs the advisor on it.
func (r *Router) handleAISummarize(w http.ResponseWriter, req *http.Request) error {
	station := chi.URLParam(req, "station")
	var body struct {
		ReportID string `json:"report_id"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return err
	}
	if body.ReportID == "" {
		return fmt.Errorf("report_id is required")
	}

	rep, err := r.reports.Get(req.Context(), station, compliance.ReportID(body.ReportID))
	if err != nil {
		return err
	}
	if rep == nil || rep.ArtifactURL == "" {
		return fmt.Errorf("artifact_url not found for report_id: %s", body.ReportID)
	}

	sum, err := r.advisorSvc.SummarizeAndStore(req.Context(), station, body.ReportID, rep.ArtifactURL)
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(sum)
}

// GET /v1/{station}/ai/summarize?page=&page_size=
func (r *Router) handleAISummarizeList(w http.ResponseWriter, req *http.Request) error {
	station := chi.URLParam(req, "station")
	page, _ := strconv.Atoi(req.URL.Query().Get("page"))
	size, _ := strconv.Atoi(req.URL.Query().Get("page_size"))

	list, err := r.advisorSvc.ListSummaries(req.Context(), station, page, size)
	if err != nil {
		return err
	}
	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(list)
}
