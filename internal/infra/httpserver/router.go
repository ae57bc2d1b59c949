package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/sirupsen/logrus"

	appai "github.com/bryanwahyu/forensight/internal/application/ai"
	appanalysis "github.com/bryanwahyu/forensight/internal/application/analysis"
	apppixel "github.com/bryanwahyu/forensight/internal/application/pixelops"
	domai "github.com/bryanwahyu/forensight/internal/domain/ai"
	domain "github.com/bryanwahyu/forensight/internal/domain/media"
	"github.com/bryanwahyu/forensight/internal/middleware"
)

type Router struct {
	analysisSvc *appanalysis.Service
	pixelSvc    *apppixel.Service
	aiSvc       *appai.Service
	log         *logrus.Logger
}

func NewRouter(analysisSvc *appanalysis.Service, pixelSvc *apppixel.Service, aiSvc *appai.Service, checkers map[string]middleware.HealthChecker, log *logrus.Logger) http.Handler {
	r := &Router{analysisSvc: analysisSvc, pixelSvc: pixelSvc, aiSvc: aiSvc, log: log}
	mux := chi.NewRouter()

	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))
	mux.Use(middleware.LoggingMiddleware(log))
	mux.Use(middleware.MetricsMiddleware)

	mux.Get("/health", middleware.HealthHandler(checkers))
	mux.Get("/ready", middleware.ReadinessHandler)
	mux.Get("/metrics", middleware.MetricsHandler)

	mux.Route("/v1/{tenant}", func(rt chi.Router) {
		rt.Post("/webhook/media-analysis", r.wrap(r.handleTriggerAnalysis))
		rt.Get("/metadata/latest", r.wrap(r.handleLatest))
		rt.Get("/metadata/{md5}", r.wrap(r.handleGet))
		rt.Get("/metadata/{md5}/faults", r.wrap(r.handleFaults))
		rt.Get("/summary", r.wrap(r.handleSummary))
		rt.Post("/forensics/ela", r.wrap(r.handleELA))
		rt.Post("/forensics/cfa", r.wrap(r.handleCFA))
		rt.Post("/forensics/copymove", r.wrap(r.handleCopyMove))
		rt.Post("/ai/review", r.wrap(r.handleAIReview))
		rt.Get("/ai/review", r.wrap(r.handleAIReviewList))
	})

	return mux
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

func (r *Router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		if err := h(w, req); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				http.Error(w, "not found", http.StatusNotFound)
				return
			}
			if errors.Is(err, domain.ErrMissingIdentity) {
				http.Error(w, err.Error(), http.StatusUnprocessableEntity)
				return
			}
			if errors.Is(err, domai.ErrQuotaExceeded) {
				http.Error(w, "ai quota exceeded", http.StatusTooManyRequests)
				return
			}
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	}
}

// POST /v1/{tenant}/webhook/media-analysis
func (r *Router) handleTriggerAnalysis(w http.ResponseWriter, req *http.Request) error {
	tenant := chi.URLParam(req, "tenant")

	var item domain.WorkItem
	if err := json.NewDecoder(req.Body).Decode(&item); err != nil {
		return err
	}
	if err := middleware.ValidateFingerprint(item.FileMD5); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return nil
	}
	if err := middleware.ValidateKind(string(item.Kind)); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return nil
	}
	if err := middleware.ValidateObjectKey(item.ObjectKey); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return nil
	}

	// 🚀 Jalankan di background, biar jalan sampai selesai
	go func() {
		middleware.IncrementAnalyses()
		middleware.IncrementAnalysesRunning()
		defer middleware.DecrementAnalysesRunning()

		ctx := context.WithoutCancel(req.Context())
		if err := r.analysisSvc.Process(ctx, tenant, item); err != nil {
			middleware.IncrementAnalysesFailed()
			r.log.WithError(err).WithFields(logrus.Fields{
				"tenant":   tenant,
				"file_md5": item.FileMD5,
			}).Error("background analysis failed")
		}
	}()

	// 🔙 langsung balikin respons ke client
	resp := map[string]any{
		"status":   "queued",
		"tenant":   tenant,
		"file_md5": item.FileMD5,
		"message":  "analysis started in background",
		"queuedAt": time.Now(),
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	return json.NewEncoder(w).Encode(resp)
}

// GET /v1/{tenant}/metadata/latest?limit=20
func (r *Router) handleLatest(w http.ResponseWriter, req *http.Request) error {
	tenant := chi.URLParam(req, "tenant")
	limit, _ := strconv.Atoi(req.URL.Query().Get("limit"))
	limit = middleware.ValidateLimit(limit)

	list, err := r.analysisSvc.Latest(req.Context(), tenant, limit)
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(list)
}

// GET /v1/{tenant}/metadata/{md5}
func (r *Router) handleGet(w http.ResponseWriter, req *http.Request) error {
	tenant := chi.URLParam(req, "tenant")
	md5 := chi.URLParam(req, "md5")
	if err := middleware.ValidateFingerprint(md5); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return nil
	}

	report, err := r.analysisSvc.Report(req.Context(), tenant, md5)
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(report)
}

// GET /v1/{tenant}/metadata/{md5}/faults?limit=20
func (r *Router) handleFaults(w http.ResponseWriter, req *http.Request) error {
	tenant := chi.URLParam(req, "tenant")
	md5 := chi.URLParam(req, "md5")
	limit, _ := strconv.Atoi(req.URL.Query().Get("limit"))

	list, err := r.analysisSvc.Faults(req.Context(), tenant, md5, middleware.ValidateLimit(limit))
	if err != nil {
		return err
	}
	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(list)
}

// GET /v1/{tenant}/summary?days=7
func (r *Router) handleSummary(w http.ResponseWriter, req *http.Request) error {
	tenant := chi.URLParam(req, "tenant")
	days, _ := strconv.Atoi(req.URL.Query().Get("days"))

	summary, err := r.analysisSvc.Summary(req.Context(), tenant, middleware.ValidateDays(days))
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(summary)
}

// POST /v1/{tenant}/forensics/ela
// Body: {"object_key": "...", "quality": 90, "scale": 10}
func (r *Router) handleELA(w http.ResponseWriter, req *http.Request) error {
	tenant := chi.URLParam(req, "tenant")
	var body struct {
		ObjectKey string `json:"object_key"`
		Quality   int    `json:"quality"`
		Scale     int    `json:"scale"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return err
	}
	if body.ObjectKey == "" {
		return fmt.Errorf("object_key is required")
	}

	middleware.IncrementPixelOps()
	rep, err := r.pixelSvc.RunELA(req.Context(), tenant, body.ObjectKey, body.Quality, body.Scale)
	if err != nil {
		return err
	}
	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(rep)
}

// POST /v1/{tenant}/forensics/cfa
// Body: {"object_key": "...", "method": "laplacian|gradient"}
func (r *Router) handleCFA(w http.ResponseWriter, req *http.Request) error {
	tenant := chi.URLParam(req, "tenant")
	var body struct {
		ObjectKey string `json:"object_key"`
		Method    string `json:"method"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return err
	}
	if body.ObjectKey == "" {
		return fmt.Errorf("object_key is required")
	}

	middleware.IncrementPixelOps()
	rep, err := r.pixelSvc.RunCFA(req.Context(), tenant, body.ObjectKey, body.Method)
	if err != nil {
		return err
	}
	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(rep)
}

// POST /v1/{tenant}/forensics/copymove
// Body: {"object_key": "...", "block_size": 16, "threshold": 10}
func (r *Router) handleCopyMove(w http.ResponseWriter, req *http.Request) error {
	tenant := chi.URLParam(req, "tenant")
	var body struct {
		ObjectKey string  `json:"object_key"`
		BlockSize int     `json:"block_size"`
		Threshold float64 `json:"threshold"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return err
	}
	if body.ObjectKey == "" {
		return fmt.Errorf("object_key is required")
	}

	middleware.IncrementPixelOps()
	rep, err := r.pixelSvc.RunCopyMove(req.Context(), tenant, body.ObjectKey, body.BlockSize, body.Threshold)
	if err != nil {
		return err
	}
	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(rep)
}

// POST /v1/{tenant}/ai/review
// Body: {"file_md5": "<fingerprint>"}
// The server fetches the stored report and asks the model for a second opinion.
func (r *Router) handleAIReview(w http.ResponseWriter, req *http.Request) error {
	tenant := chi.URLParam(req, "tenant")
	var body struct {
		FileMD5 string `json:"file_md5"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return err
	}
	if err := middleware.ValidateFingerprint(body.FileMD5); err != nil {
		return err
	}

	report, err := r.analysisSvc.Report(req.Context(), tenant, body.FileMD5)
	if err != nil {
		return err
	}
	reportJSON, err := json.Marshal(report)
	if err != nil {
		return err
	}

	middleware.IncrementAIReviews()
	a, err := r.aiSvc.ReviewAndStore(req.Context(), tenant, body.FileMD5, string(reportJSON))
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(a)
}

// GET /v1/{tenant}/ai/review?page=&page_size=
func (r *Router) handleAIReviewList(w http.ResponseWriter, req *http.Request) error {
	tenant := chi.URLParam(req, "tenant")
	page, _ := strconv.Atoi(req.URL.Query().Get("page"))
	size, _ := strconv.Atoi(req.URL.Query().Get("page_size"))

	list, err := r.aiSvc.List(req.Context(), tenant, page, size)
	if err != nil {
		return err
	}
	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(list)
}
