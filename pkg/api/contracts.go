// Package api defines the wire contracts shared by the HTTP server,
// the CLI, and the prediction core.
package api

import "time"

// ProductType is the closed set of product buckets a description can
// classify into. The set is fixed per deployment.
type ProductType string

const (
	ProductTypeJewelry         ProductType = "jewelry"
	ProductTypeWatch           ProductType = "watch"
	ProductTypeLuxuryApparel   ProductType = "luxury_apparel"
	ProductTypeStandardApparel ProductType = "standard_apparel"
)

// ModelTier identifies which loaded model family served a prediction,
// in strict preference order.
type ModelTier string

const (
	TierFastMultiModel      ModelTier = "fast_multi_model"
	TierOriginalSingleModel ModelTier = "original_single_model"
	TierFallbackModel       ModelTier = "fallback_model"
)

// Confidence is the three-level quality tag attached to every prediction.
// Downstream clients branch on it, so the derivation rules are contractual:
// High inside the typical band, Medium inside the hard bounds, Low when the
// raw estimate had to be clamped.
type Confidence string

const (
	ConfidenceHigh   Confidence = "High"
	ConfidenceMedium Confidence = "Medium"
	ConfidenceLow    Confidence = "Low"
)

// Rank orders confidence levels so callers can compare them (Low < Medium < High).
func (c Confidence) Rank() int {
	switch c {
	case ConfidenceHigh:
		return 2
	case ConfidenceMedium:
		return 1
	default:
		return 0
	}
}

// ProductDescription is the immutable input to the prediction pipeline.
type ProductDescription struct {
	ProductName     string  `json:"product_name"`
	Brand           string  `json:"brand"`
	Gender          string  `json:"gender"`
	Category        string  `json:"category"`
	Fabric          string  `json:"fabric,omitempty"`
	Pattern         string  `json:"pattern,omitempty"`
	Color           string  `json:"color,omitempty"`
	RatingCount     int     `json:"rating_count"`
	DiscountPercent float64 `json:"discount_percent"`
}

// PredictionResult is the output of a price prediction.
type PredictionResult struct {
	PredictedPrice float64     `json:"predicted_price"`
	Currency       string      `json:"currency"`
	ProductType    ProductType `json:"product_type"`
	ModelType      ModelTier   `json:"model_type"`
	Confidence     Confidence  `json:"confidence"`
}

// KeyFactor is one entry of an explanation's ordered factor list.
type KeyFactor struct {
	Factor      string `json:"factor"`
	Value       string `json:"value"`
	Impact      string `json:"impact"`
	Description string `json:"description"`
}

// PriceBreakdown decomposes a predicted price into its pre-discount form.
type PriceBreakdown struct {
	OriginalPrice   float64 `json:"original_price"`
	DiscountAmount  float64 `json:"discount_amount"`
	DiscountPercent float64 `json:"discount_percent"`
	FinalPrice      float64 `json:"final_price"`
}

// Explanation is the best-effort, rule-derived account of a prediction.
type Explanation struct {
	KeyFactors      []KeyFactor    `json:"key_factors"`
	PriceBreakdown  PriceBreakdown `json:"price_breakdown"`
	Recommendations []string       `json:"recommendations"`
}

// PredictResponse is the HTTP body for /api/v1/predict.
type PredictResponse struct {
	PredictionResult
	RequestID string    `json:"request_id"`
	Timestamp time.Time `json:"timestamp"`
}

// ExplainResponse is the HTTP body for /api/v1/predict/explain.
type ExplainResponse struct {
	PredictionResult
	Explanation Explanation `json:"explanation"`
	RequestID   string      `json:"request_id"`
	Timestamp   time.Time   `json:"timestamp"`
}

// HealthResponse reports per-tier capability flags.
type HealthResponse struct {
	Status              string    `json:"status"`
	FastModelsLoaded    bool      `json:"fast_models_loaded"`
	OriginalModelLoaded bool      `json:"original_model_loaded"`
	FallbackModelLoaded bool      `json:"fallback_model_loaded"`
	RecsIndexLoaded     bool      `json:"recs_index_loaded"`
	RecsCount           int       `json:"recs_count"`
	ModelTypeInUse      ModelTier `json:"model_type_in_use"`
	Version             string    `json:"version"`
	Uptime              string    `json:"uptime"`
}

// RecommendRequest asks for products similar to a free-text query.
type RecommendRequest struct {
	Query string `json:"query"`
	K     int    `json:"k"`
}

// RecommendedItem is a single similarity hit.
type RecommendedItem struct {
	ID       string            `json:"id"`
	Document string            `json:"document"`
	Metadata map[string]string `json:"metadata,omitempty"`
	Score    float64           `json:"score"`
}

// RecommendResponse is the HTTP body for /api/v1/recommend.
type RecommendResponse struct {
	Results []RecommendedItem `json:"results"`
	Query   string            `json:"query"`
}
