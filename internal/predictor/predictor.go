// Package predictor invokes a resolved model and enforces per-bucket
// price constraints on the raw estimate.
package predictor

import (
	"math"

	"github.com/shopspring/decimal"

	"smart-retail/internal/features"
	"smart-retail/internal/registry"
	"smart-retail/pkg/api"
)

// Currency is the unit all predicted prices are denominated in.
const Currency = "INR"

// Constraint bounds a bucket's plausible price range. [Min, Max] is the
// hard band predictions are clamped to; [TypicalMin, TypicalMax] is the
// sub-band inside which confidence is High.
type Constraint struct {
	Min        float64
	Max        float64
	TypicalMin float64
	TypicalMax float64
}

// DefaultConstraints returns the per-bucket price bands. The hard bounds
// come from the deployed model contract; the typical bands are tunable
// estimates pending calibration against reference traffic.
func DefaultConstraints() map[api.ProductType]Constraint {
	return map[api.ProductType]Constraint{
		api.ProductTypeJewelry:         {Min: 100, Max: 200000, TypicalMin: 500, TypicalMax: 50000},
		api.ProductTypeWatch:           {Min: 500, Max: 100000, TypicalMin: 1000, TypicalMax: 30000},
		api.ProductTypeLuxuryApparel:   {Min: 1000, Max: 50000, TypicalMin: 2000, TypicalMax: 20000},
		api.ProductTypeStandardApparel: {Min: 50, Max: 10000, TypicalMin: 200, TypicalMax: 5000},
	}
}

// Predictor turns a resolved model and a feature record into a bounded,
// confidence-tagged price. It is stateless and safe for concurrent use.
type Predictor struct {
	constraints map[api.ProductType]Constraint
}

// New creates a predictor with the default constraint table.
func New() *Predictor {
	return NewWithConstraints(DefaultConstraints())
}

// NewWithConstraints creates a predictor with a custom constraint table.
func NewWithConstraints(constraints map[api.ProductType]Constraint) *Predictor {
	return &Predictor{constraints: constraints}
}

// Predict runs the model, inverts the log-scale estimate, clamps it to
// the bucket's band, and derives the confidence tag. Clamping is never an
// error; it only lowers confidence.
func (p *Predictor) Predict(res registry.Resolution, rec features.Record, bucket api.ProductType) api.PredictionResult {
	c, ok := p.constraints[bucket]
	if !ok {
		c = p.constraints[api.ProductTypeStandardApparel]
	}

	raw := math.Expm1(res.Model.Predict(rec))

	price, confidence := clamp(raw, c)

	// Generic tiers were not trained per bucket, so they never report High.
	if res.Tier != api.TierFastMultiModel && confidence == api.ConfidenceHigh {
		confidence = api.ConfidenceMedium
	}

	return api.PredictionResult{
		PredictedPrice: round2(price),
		Currency:       Currency,
		ProductType:    bucket,
		ModelType:      res.Tier,
		Confidence:     confidence,
	}
}

func clamp(raw float64, c Constraint) (float64, api.Confidence) {
	// A degenerate estimate clamps to the bucket floor.
	if math.IsNaN(raw) || math.IsInf(raw, 0) {
		return c.Min, api.ConfidenceLow
	}
	switch {
	case raw < c.Min:
		return c.Min, api.ConfidenceLow
	case raw > c.Max:
		return c.Max, api.ConfidenceLow
	case raw >= c.TypicalMin && raw <= c.TypicalMax:
		return raw, api.ConfidenceHigh
	default:
		return raw, api.ConfidenceMedium
	}
}

func round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}
