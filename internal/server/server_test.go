package server

import (
	"bytes"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"smart-retail/internal/features"
	"smart-retail/internal/model"
	"smart-retail/internal/recommend"
	"smart-retail/internal/registry"
	"smart-retail/pkg/api"
)

// fixedModel returns a constant log-scale estimate.
type fixedModel struct {
	logPrice float64
}

func (m fixedModel) Predict(features.Record) float64 { return m.logPrice }

func testRouter(t *testing.T, cfg Config) http.Handler {
	t.Helper()
	if cfg.Registry == nil {
		cfg.Registry = registry.NewHandle(registry.NewSnapshot(registry.Config{
			FastModels: map[api.ProductType]model.Model{
				api.ProductTypeJewelry:         fixedModel{math.Log1p(8000)},
				api.ProductTypeWatch:           fixedModel{math.Log1p(5000)},
				api.ProductTypeLuxuryApparel:   fixedModel{math.Log1p(4000)},
				api.ProductTypeStandardApparel: fixedModel{math.Log1p(900)},
			},
		}))
	}
	if cfg.Version == "" {
		cfg.Version = "test"
	}
	return New(cfg).Router()
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode request: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestHealthEndpoint(t *testing.T) {
	h := testRouter(t, Config{})

	rr := doJSON(t, h, http.MethodGet, "/health", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}

	var resp api.HealthResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode health: %v", err)
	}
	if resp.Status != "ok" {
		t.Errorf("Status = %q, want ok", resp.Status)
	}
	if !resp.FastModelsLoaded {
		t.Error("FastModelsLoaded should be true")
	}
	if resp.ModelTypeInUse != api.TierFastMultiModel {
		t.Errorf("ModelTypeInUse = %q, want fast tier", resp.ModelTypeInUse)
	}
	if resp.Version != "test" {
		t.Errorf("Version = %q, want test", resp.Version)
	}
}

func TestReadinessReflectsRegistry(t *testing.T) {
	h := testRouter(t, Config{})
	if rr := doJSON(t, h, http.MethodGet, "/health/ready", nil); rr.Code != http.StatusOK {
		t.Errorf("ready with models: status = %d, want 200", rr.Code)
	}

	empty := testRouter(t, Config{Registry: registry.NewHandle(registry.NewSnapshot(registry.Config{}))})
	if rr := doJSON(t, empty, http.MethodGet, "/health/ready", nil); rr.Code != http.StatusServiceUnavailable {
		t.Errorf("ready without models: status = %d, want 503", rr.Code)
	}
}

func TestPredictEndpoint(t *testing.T) {
	h := testRouter(t, Config{})

	rr := doJSON(t, h, http.MethodPost, "/api/v1/predict", api.ProductDescription{
		ProductName: "Gold Necklace",
		Brand:       "tanishq",
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rr.Code, rr.Body.String())
	}

	var resp api.PredictResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.ProductType != api.ProductTypeJewelry {
		t.Errorf("ProductType = %q, want jewelry", resp.ProductType)
	}
	if math.Abs(resp.PredictedPrice-8000) > 0.01 {
		t.Errorf("PredictedPrice = %v, want 8000", resp.PredictedPrice)
	}
	if resp.RequestID == "" {
		t.Error("RequestID should be set by the middleware")
	}
	if resp.Timestamp.IsZero() {
		t.Error("Timestamp should be set")
	}
}

func TestPredictEndpointBadBody(t *testing.T) {
	h := testRouter(t, Config{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/predict", strings.NewReader("{not json"))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rr.Code)
	}
}

func TestPredictEndpointNoModels(t *testing.T) {
	h := testRouter(t, Config{Registry: registry.NewHandle(registry.NewSnapshot(registry.Config{}))})

	rr := doJSON(t, h, http.MethodPost, "/api/v1/predict", api.ProductDescription{ProductName: "Casual Shirt"})
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rr.Code)
	}

	var resp struct {
		Success        bool     `json:"success"`
		Code           string   `json:"code"`
		AttemptedTiers []string `json:"attempted_tiers"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	if resp.Success {
		t.Error("success should be false")
	}
	if resp.Code != "NO_MODEL_AVAILABLE" {
		t.Errorf("code = %q, want NO_MODEL_AVAILABLE", resp.Code)
	}
	if len(resp.AttemptedTiers) != 3 {
		t.Errorf("attempted_tiers = %v, want all three", resp.AttemptedTiers)
	}
}

func TestPredictExplainEndpoint(t *testing.T) {
	h := testRouter(t, Config{})

	rr := doJSON(t, h, http.MethodPost, "/api/v1/predict/explain", api.ProductDescription{
		ProductName:     "Casual Shirt",
		Brand:           "roadster",
		Category:        "shirt",
		DiscountPercent: 40,
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rr.Code, rr.Body.String())
	}

	var resp api.ExplainResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Explanation.KeyFactors) == 0 {
		t.Error("expected key factors")
	}
	if resp.Explanation.PriceBreakdown.FinalPrice != resp.PredictedPrice {
		t.Errorf("breakdown FinalPrice = %v, want %v",
			resp.Explanation.PriceBreakdown.FinalPrice, resp.PredictedPrice)
	}
}

func TestRecommendEndpoint(t *testing.T) {
	// Without an index the endpoint degrades to 503.
	h := testRouter(t, Config{})
	rr := doJSON(t, h, http.MethodPost, "/api/v1/recommend", api.RecommendRequest{Query: "denim jeans"})
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("no index: status = %d, want 503", rr.Code)
	}

	path := filepath.Join(t.TempDir(), "catalog_index.json")
	catalog := `[{"id": "p1", "document": "blue denim jeans"}, {"id": "p2", "document": "silk dress"}]`
	if err := os.WriteFile(path, []byte(catalog), 0o644); err != nil {
		t.Fatalf("write catalog: %v", err)
	}
	ix, err := recommend.LoadIndex(path)
	if err != nil {
		t.Fatalf("LoadIndex() failed: %v", err)
	}

	h = testRouter(t, Config{RecsIndex: ix})

	rr = doJSON(t, h, http.MethodPost, "/api/v1/recommend", api.RecommendRequest{Query: "denim jeans", K: 5})
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rr.Code, rr.Body.String())
	}
	var resp api.RecommendResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Results) == 0 || resp.Results[0].ID != "p1" {
		t.Fatalf("results = %+v, want p1 first", resp.Results)
	}

	// A missing query is a client error.
	rr = doJSON(t, h, http.MethodPost, "/api/v1/recommend", api.RecommendRequest{})
	if rr.Code != http.StatusBadRequest {
		t.Errorf("empty query: status = %d, want 400", rr.Code)
	}
}

func TestTrendEndpoints(t *testing.T) {
	h := testRouter(t, Config{})

	rr := doJSON(t, h, http.MethodGet, "/api/v1/trends/seasonal?season=winter", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("seasonal: status = %d, want 200", rr.Code)
	}
	var seasonal struct {
		Season string `json:"season"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &seasonal); err != nil {
		t.Fatalf("decode seasonal: %v", err)
	}
	if seasonal.Season != "winter" {
		t.Errorf("season = %q, want winter", seasonal.Season)
	}

	rr = doJSON(t, h, http.MethodGet, "/api/v1/trends/colors", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("colors: status = %d, want 200", rr.Code)
	}

	rr = doJSON(t, h, http.MethodGet, "/api/v1/trends", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("report: status = %d, want 200", rr.Code)
	}
	var report struct {
		TrendingColors []any `json:"trending_colors"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &report); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if len(report.TrendingColors) == 0 {
		t.Error("report has no trending colors")
	}
}

func TestVersionEndpoint(t *testing.T) {
	h := testRouter(t, Config{Version: "1.2.3"})

	rr := doJSON(t, h, http.MethodGet, "/version", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	var resp map[string]string
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode version: %v", err)
	}
	if resp["version"] != "1.2.3" {
		t.Errorf("version = %q, want 1.2.3", resp["version"])
	}
}
