// Package model defines the opaque price-model capability and the
// concrete model kinds the registry can load.
package model

import (
	"fmt"
	"math"

	"smart-retail/internal/features"
)

// Model is the minimal capability a loaded regression model exposes.
// Predictions are on the log scale (log1p of price); the predictor applies
// the expm1 inverse, matching how the models were trained.
type Model interface {
	// Predict returns the log-scale price estimate for a feature record.
	Predict(rec features.Record) float64
}

// Spec is the on-disk JSON form of a trained model.
type Spec struct {
	Type         string             `json:"type"`
	Intercept    float64            `json:"intercept"`
	Coefficients map[string]float64 `json:"coefficients"`
}

// FromSpec instantiates a model from its artifact spec.
func FromSpec(spec Spec) (Model, error) {
	switch spec.Type {
	case "log_linear":
		return &LogLinear{Intercept: spec.Intercept, Coefficients: spec.Coefficients}, nil
	case "baseline":
		return NewBaseline(), nil
	default:
		return nil, fmt.Errorf("unsupported model type: %q", spec.Type)
	}
}

// LogLinear is a linear model over the numeric feature vector, trained
// against log1p(price).
type LogLinear struct {
	Intercept    float64
	Coefficients map[string]float64
}

// Predict computes intercept + Σ coef·feature on the log scale.
func (m *LogLinear) Predict(rec features.Record) float64 {
	sum := m.Intercept
	for name, value := range Vector(rec) {
		if coef, ok := m.Coefficients[name]; ok {
			sum += coef * value
		}
	}
	return sum
}

// Vector flattens a feature record into the named numeric features the
// coefficient models are trained on.
func Vector(rec features.Record) map[string]float64 {
	v := map[string]float64{
		"rating_count":     float64(rec.RatingCount),
		"discount_percent": rec.DiscountPercent,
		"brand_prestige":   rec.BrandPrestige,
		"name_length":      float64(rec.NameLength),
		"word_count":       float64(rec.WordCount),
		"karat":            rec.Karat,
		"has_size":         boolFeature(rec.HasSize),
		"has_discount":     boolFeature(rec.HasDiscount),
		"jewelry_signal":   boolFeature(rec.JewelrySignal),
		"watch_signal":     boolFeature(rec.WatchSignal),
		"luxury_signal":    boolFeature(rec.LuxurySignal),
	}
	v["material_"+string(rec.MaterialTier)] = 1
	v["prestige_"+string(rec.PrestigeTier)] = 1
	return v
}

func boolFeature(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// Baseline is the built-in minimal model used when no trained artifact is
// available. It reproduces the synthetic pricing rule the service was
// bootstrapped with: a base price scaled by brand and category multipliers
// and reduced by the discount, floored at 100.
type Baseline struct {
	basePrice float64
	floor     float64
	brandMult map[string]float64
	catMult   map[string]float64
}

// NewBaseline creates the built-in fallback model.
func NewBaseline() *Baseline {
	return &Baseline{
		basePrice: 1000,
		floor:     100,
		brandMult: map[string]float64{
			"nike":     1.5,
			"adidas":   1.4,
			"zara":     1.2,
			"h&m":      1.0,
			"roadster": 0.8,
		},
		catMult: map[string]float64{
			"shoes": 1.3,
			"dress": 1.2,
			"jeans": 1.1,
			"shirt": 1.0,
		},
	}
}

// Predict returns the log-scale baseline estimate.
func (m *Baseline) Predict(rec features.Record) float64 {
	price := m.basePrice
	if mult, ok := m.brandMult[rec.Brand]; ok {
		price *= mult
	}
	if mult, ok := m.catMult[rec.Category]; ok {
		price *= mult
	}
	price *= 1 - rec.DiscountPercent/100
	if price < m.floor {
		price = m.floor
	}
	return math.Log1p(price)
}
