package service

import (
	stderrors "errors"
	"math"
	"testing"

	"smart-retail/internal/features"
	"smart-retail/internal/model"
	"smart-retail/internal/registry"
	"smart-retail/pkg/api"
	"smart-retail/pkg/errors"
)

// fixedModel returns a constant log-scale estimate.
type fixedModel struct {
	logPrice float64
}

func (m fixedModel) Predict(features.Record) float64 { return m.logPrice }

func logOf(price float64) float64 { return math.Log1p(price) }

func fullHandle() *registry.Handle {
	return registry.NewHandle(registry.NewSnapshot(registry.Config{
		FastModels: map[api.ProductType]model.Model{
			api.ProductTypeJewelry:         fixedModel{logOf(8000)},
			api.ProductTypeWatch:           fixedModel{logOf(5000)},
			api.ProductTypeLuxuryApparel:   fixedModel{logOf(4000)},
			api.ProductTypeStandardApparel: fixedModel{logOf(900)},
		},
	}))
}

func TestPredictEndToEnd(t *testing.T) {
	svc := New(fullHandle())

	tests := []struct {
		name       string
		desc       api.ProductDescription
		wantBucket api.ProductType
		wantPrice  float64
		wantConf   api.Confidence
	}{
		{
			name:       "necklace routes to the jewelry model",
			desc:       api.ProductDescription{ProductName: "Gold Necklace"},
			wantBucket: api.ProductTypeJewelry,
			wantPrice:  8000,
			wantConf:   api.ConfidenceHigh, // inside jewelry typical band
		},
		{
			name:       "gold watch routes to the watch model",
			desc:       api.ProductDescription{ProductName: "Luxury Gold Watch", Category: "watches"},
			wantBucket: api.ProductTypeWatch,
			wantPrice:  5000,
			wantConf:   api.ConfidenceHigh,
		},
		{
			name:       "plain shirt routes to the standard model",
			desc:       api.ProductDescription{ProductName: "Casual Shirt", Brand: "roadster", Category: "shirt"},
			wantBucket: api.ProductTypeStandardApparel,
			wantPrice:  900,
			wantConf:   api.ConfidenceHigh,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := svc.Predict(tt.desc)
			if err != nil {
				t.Fatalf("Predict() failed: %v", err)
			}
			if result.ProductType != tt.wantBucket {
				t.Errorf("ProductType = %q, want %q", result.ProductType, tt.wantBucket)
			}
			if math.Abs(result.PredictedPrice-tt.wantPrice) > 0.01 {
				t.Errorf("PredictedPrice = %v, want %v", result.PredictedPrice, tt.wantPrice)
			}
			if result.Confidence != tt.wantConf {
				t.Errorf("Confidence = %q, want %q", result.Confidence, tt.wantConf)
			}
			if result.ModelType != api.TierFastMultiModel {
				t.Errorf("ModelType = %q, want fast tier", result.ModelType)
			}
			if result.Currency != "INR" {
				t.Errorf("Currency = %q, want INR", result.Currency)
			}
		})
	}
}

func TestPredictIdempotent(t *testing.T) {
	svc := New(fullHandle())
	desc := api.ProductDescription{
		ProductName:     "Designer Silk Saree",
		Brand:           "zara",
		Category:        "saree",
		Fabric:          "silk",
		RatingCount:     150,
		DiscountPercent: 25,
	}

	first, err := svc.Predict(desc)
	if err != nil {
		t.Fatalf("Predict() failed: %v", err)
	}
	for i := 0; i < 10; i++ {
		got, err := svc.Predict(desc)
		if err != nil {
			t.Fatalf("run %d: Predict() failed: %v", i, err)
		}
		if got != first {
			t.Fatalf("run %d: result %+v differs from first %+v", i, got, first)
		}
	}
}

func TestPredictFallbackOnlyCapsConfidence(t *testing.T) {
	h := registry.NewHandle(registry.NewSnapshot(registry.Config{
		Fallback: fixedModel{logOf(3000)},
	}))
	svc := New(h)

	result, err := svc.Predict(api.ProductDescription{ProductName: "Designer Dress", Fabric: "silk"})
	if err != nil {
		t.Fatalf("Predict() failed: %v", err)
	}
	if result.ModelType != api.TierFallbackModel {
		t.Errorf("ModelType = %q, want %q", result.ModelType, api.TierFallbackModel)
	}
	// 3000 is inside the luxury apparel typical band, but generic tiers
	// never report High.
	if result.Confidence != api.ConfidenceMedium {
		t.Errorf("Confidence = %q, want Medium", result.Confidence)
	}
}

func TestPredictNoModels(t *testing.T) {
	svc := New(registry.NewHandle(registry.NewSnapshot(registry.Config{})))

	_, err := svc.Predict(api.ProductDescription{ProductName: "Casual Shirt"})
	if err == nil {
		t.Fatal("Predict() with an empty registry should fail")
	}
	var perr *errors.PipelineError
	if !stderrors.As(err, &perr) || perr.Code != errors.ErrCodeNoModelAvailable {
		t.Fatalf("error = %v, want NO_MODEL_AVAILABLE pipeline error", err)
	}
}

func TestPredictWithExplanation(t *testing.T) {
	svc := New(fullHandle())
	desc := api.ProductDescription{
		ProductName:     "Casual Shirt",
		Brand:           "roadster",
		Category:        "shirt",
		DiscountPercent: 40,
	}

	result, explanation, err := svc.PredictWithExplanation(desc)
	if err != nil {
		t.Fatalf("PredictWithExplanation() failed: %v", err)
	}

	if explanation.PriceBreakdown.FinalPrice != result.PredictedPrice {
		t.Errorf("breakdown FinalPrice = %v, want predicted price %v",
			explanation.PriceBreakdown.FinalPrice, result.PredictedPrice)
	}
	if explanation.PriceBreakdown.OriginalPrice <= result.PredictedPrice {
		t.Errorf("discounted OriginalPrice = %v should exceed final %v",
			explanation.PriceBreakdown.OriginalPrice, result.PredictedPrice)
	}
	if len(explanation.KeyFactors) == 0 {
		t.Error("expected key factors for a described product")
	}

	// The plain prediction must be unchanged by asking for an explanation.
	plain, err := svc.Predict(desc)
	if err != nil {
		t.Fatalf("Predict() failed: %v", err)
	}
	if plain != result {
		t.Errorf("Predict() = %+v differs from PredictWithExplanation() = %+v", plain, result)
	}
}

func TestPredictUsesSnapshotPrestigeTable(t *testing.T) {
	// A snapshot-supplied prestige table overrides the built-in defaults,
	// so an unknown default brand can still classify as luxury.
	h := registry.NewHandle(registry.NewSnapshot(registry.Config{
		FastModels: map[api.ProductType]model.Model{
			api.ProductTypeLuxuryApparel:   fixedModel{logOf(4000)},
			api.ProductTypeStandardApparel: fixedModel{logOf(900)},
		},
		BrandPrestige: map[string]float64{"houseofsilk": 4500},
	}))
	svc := New(h)

	result, err := svc.Predict(api.ProductDescription{ProductName: "Plain Kurta", Brand: "houseofsilk"})
	if err != nil {
		t.Fatalf("Predict() failed: %v", err)
	}
	if result.ProductType != api.ProductTypeLuxuryApparel {
		t.Fatalf("ProductType = %q, want luxury_apparel from snapshot prestige", result.ProductType)
	}
}

func TestPredictObservesRegistrySwap(t *testing.T) {
	h := registry.NewHandle(registry.NewSnapshot(registry.Config{
		Original: fixedModel{logOf(700)},
	}))
	svc := New(h)
	desc := api.ProductDescription{ProductName: "Casual Shirt"}

	before, err := svc.Predict(desc)
	if err != nil {
		t.Fatalf("Predict() failed: %v", err)
	}
	if before.ModelType != api.TierOriginalSingleModel {
		t.Fatalf("ModelType = %q, want original tier", before.ModelType)
	}

	h.Swap(registry.NewSnapshot(registry.Config{
		FastModels: map[api.ProductType]model.Model{
			api.ProductTypeStandardApparel: fixedModel{logOf(1200)},
		},
	}))

	after, err := svc.Predict(desc)
	if err != nil {
		t.Fatalf("Predict() after swap failed: %v", err)
	}
	if after.ModelType != api.TierFastMultiModel {
		t.Fatalf("ModelType = %q, want fast tier after swap", after.ModelType)
	}
	if math.Abs(after.PredictedPrice-1200) > 0.01 {
		t.Fatalf("PredictedPrice = %v, want 1200 from the swapped model", after.PredictedPrice)
	}
}
