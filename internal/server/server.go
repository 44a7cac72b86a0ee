// Package server exposes the prediction pipeline over HTTP.
package server

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"smart-retail/internal/recommend"
	"smart-retail/internal/registry"
	"smart-retail/internal/service"
	"smart-retail/internal/store"
	"smart-retail/internal/trends"
	"smart-retail/pkg/api"
	"smart-retail/pkg/errors"
)

// Server is the HTTP API server.
type Server struct {
	registry  *registry.Handle
	svc       *service.Service
	trends    *trends.Analyzer
	recsIndex *recommend.Index // nil when no catalog artifact was loaded
	events    *store.Store     // nil when the event store is disabled
	cache     *goredis.Client  // nil when the trend cache is disabled
	cacheTTL  time.Duration

	version   string
	startTime time.Time
}

// Config carries the server's optional collaborators.
type Config struct {
	Registry  *registry.Handle
	RecsIndex *recommend.Index
	Events    *store.Store
	Cache     *goredis.Client
	CacheTTL  time.Duration
	Version   string
}

// New assembles the server around a loaded registry handle.
func New(cfg Config) *Server {
	return &Server{
		registry:  cfg.Registry,
		svc:       service.New(cfg.Registry),
		trends:    trends.New(),
		recsIndex: cfg.RecsIndex,
		events:    cfg.Events,
		cache:     cfg.Cache,
		cacheTTL:  cfg.CacheTTL,
		version:   cfg.Version,
		startTime: time.Now(),
	}
}

// Router builds the chi router with all routes and middleware.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/health", s.handleHealth)
	r.Get("/health/live", s.handleLiveness)
	r.Get("/health/ready", s.handleReadiness)
	r.Get("/version", s.handleVersion)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/predict", s.handlePredict)
		r.Post("/predict/explain", s.handlePredictExplain)
		r.Post("/recommend", s.handleRecommend)
		r.Get("/trends", s.handleTrendReport)
		r.Get("/trends/colors", s.handleTrendColors)
		r.Get("/trends/styles", s.handleTrendStyles)
		r.Get("/trends/seasonal", s.handleTrendSeasonal)
	})

	return r
}

// =============================================================================
// HEALTH ENDPOINTS
// =============================================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	snap := s.registry.Current()
	recsCount := 0
	if s.recsIndex != nil {
		recsCount = s.recsIndex.Count()
	}
	s.respondJSON(w, http.StatusOK, api.HealthResponse{
		Status:              "ok",
		FastModelsLoaded:    snap.HasTier(api.TierFastMultiModel),
		OriginalModelLoaded: snap.HasTier(api.TierOriginalSingleModel),
		FallbackModelLoaded: snap.HasTier(api.TierFallbackModel),
		RecsIndexLoaded:     s.recsIndex != nil,
		RecsCount:           recsCount,
		ModelTypeInUse:      snap.TierInUse(),
		Version:             s.version,
		Uptime:              time.Since(s.startTime).String(),
	})
}

func (s *Server) handleLiveness(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func (s *Server) handleReadiness(w http.ResponseWriter, r *http.Request) {
	// Ready means at least one model tier can serve predictions.
	if s.registry.Current().TierInUse() == "" {
		s.respondError(w, http.StatusServiceUnavailable, "no model tier loaded")
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("READY"))
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{
		"version": s.version,
		"service": "smart-retail",
	})
}

// =============================================================================
// PREDICTION ENDPOINTS
// =============================================================================

func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	var desc api.ProductDescription
	if err := json.NewDecoder(r.Body).Decode(&desc); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := s.svc.Predict(desc)
	if err != nil {
		s.respondPredictionError(w, err)
		return
	}

	s.recordEvent(desc, result, false)
	s.respondJSON(w, http.StatusOK, api.PredictResponse{
		PredictionResult: result,
		RequestID:        middleware.GetReqID(r.Context()),
		Timestamp:        time.Now(),
	})
}

func (s *Server) handlePredictExplain(w http.ResponseWriter, r *http.Request) {
	var desc api.ProductDescription
	if err := json.NewDecoder(r.Body).Decode(&desc); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, explanation, err := s.svc.PredictWithExplanation(desc)
	if err != nil {
		s.respondPredictionError(w, err)
		return
	}

	s.recordEvent(desc, result, true)
	s.respondJSON(w, http.StatusOK, api.ExplainResponse{
		PredictionResult: result,
		Explanation:      explanation,
		RequestID:        middleware.GetReqID(r.Context()),
		Timestamp:        time.Now(),
	})
}

// respondPredictionError maps pipeline errors onto HTTP statuses. Only
// NoModelAvailable ever reaches here.
func (s *Server) respondPredictionError(w http.ResponseWriter, err error) {
	var perr *errors.PipelineError
	if stderrors.As(err, &perr) && perr.Code == errors.ErrCodeNoModelAvailable {
		s.respondJSON(w, http.StatusServiceUnavailable, map[string]any{
			"success":         false,
			"error":           perr.Message,
			"code":            perr.Code,
			"attempted_tiers": perr.Attempted,
		})
		return
	}
	s.respondError(w, http.StatusInternalServerError, err.Error())
}

// recordEvent writes the served prediction to the event store without
// blocking the response.
func (s *Server) recordEvent(desc api.ProductDescription, result api.PredictionResult, explained bool) {
	if s.events == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.events.RecordPrediction(ctx, desc, result, explained); err != nil {
			log.Debug().Err(err).Msg("failed to record prediction event")
		}
	}()
}

// =============================================================================
// RECOMMENDATION ENDPOINT
// =============================================================================

func (s *Server) handleRecommend(w http.ResponseWriter, r *http.Request) {
	if s.recsIndex == nil {
		s.respondError(w, http.StatusServiceUnavailable, "recommendation index is not available")
		return
	}

	var req api.RecommendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Query == "" {
		s.respondError(w, http.StatusBadRequest, "query is required")
		return
	}

	s.respondJSON(w, http.StatusOK, api.RecommendResponse{
		Results: s.recsIndex.Query(req.Query, req.K),
		Query:   req.Query,
	})
}

// =============================================================================
// TREND ENDPOINTS
// =============================================================================

func (s *Server) handleTrendReport(w http.ResponseWriter, r *http.Request) {
	type reportResponse struct {
		trends.Report
		RecentBuckets []store.BucketStats `json:"recent_buckets,omitempty"`
	}

	if body, ok := s.cacheGet(r.Context(), "trends:report"); ok {
		s.respondRaw(w, body)
		return
	}

	resp := reportResponse{Report: s.trends.Generate()}
	if s.events != nil {
		stats, err := s.events.RecentBucketStats(r.Context(), 24*time.Hour)
		if err != nil {
			log.Warn().Err(err).Msg("failed to load recent bucket stats")
		} else {
			resp.RecentBuckets = stats
		}
	}

	s.respondCached(w, r.Context(), "trends:report", resp)
}

func (s *Server) handleTrendColors(w http.ResponseWriter, r *http.Request) {
	if body, ok := s.cacheGet(r.Context(), "trends:colors"); ok {
		s.respondRaw(w, body)
		return
	}
	s.respondCached(w, r.Context(), "trends:colors", map[string]any{
		"trending_colors": s.trends.TrendingColors(),
	})
}

func (s *Server) handleTrendStyles(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")
	if category == "" {
		category = "all"
	}
	key := "trends:styles:" + category
	if body, ok := s.cacheGet(r.Context(), key); ok {
		s.respondRaw(w, body)
		return
	}
	s.respondCached(w, r.Context(), key, map[string]any{
		"trending_styles": s.trends.TrendingStyles(category),
		"category":        category,
	})
}

func (s *Server) handleTrendSeasonal(w http.ResponseWriter, r *http.Request) {
	season := r.URL.Query().Get("season")
	key := "trends:seasonal:" + season
	if body, ok := s.cacheGet(r.Context(), key); ok {
		s.respondRaw(w, body)
		return
	}
	s.respondCached(w, r.Context(), key, s.trends.Seasonal(season))
}

// =============================================================================
// HELPERS
// =============================================================================

func (s *Server) cacheGet(ctx context.Context, key string) ([]byte, bool) {
	if s.cache == nil {
		return nil, false
	}
	body, err := s.cache.Get(ctx, key).Bytes()
	if err != nil {
		if !stderrors.Is(err, goredis.Nil) {
			log.Debug().Err(err).Str("key", key).Msg("trend cache read failed")
		}
		return nil, false
	}
	return body, true
}

// respondCached serializes data once, stores it in the cache, and writes it.
func (s *Server) respondCached(w http.ResponseWriter, ctx context.Context, key string, data any) {
	body, err := json.Marshal(data)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, fmt.Sprintf("failed to encode response: %v", err))
		return
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, key, body, s.cacheTTL).Err(); err != nil {
			log.Debug().Err(err).Str("key", key).Msg("trend cache write failed")
		}
	}
	s.respondRaw(w, body)
}

func (s *Server) respondRaw(w http.ResponseWriter, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]any{
		"success": false,
		"error":   message,
	})
}
