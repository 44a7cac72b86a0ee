// Package explain derives rule-based explanations for price predictions.
// The model stays opaque: factors and impact levels come from static
// tables over the feature record, not from model internals.
package explain

import (
	"fmt"

	"github.com/shopspring/decimal"

	"smart-retail/internal/features"
	"smart-retail/pkg/api"
)

// Impact levels reported per factor.
const (
	ImpactHigh       = "high"
	ImpactMediumHigh = "medium-high"
	ImpactMedium     = "medium"
	ImpactLow        = "low"
)

// categoryImpact grades how strongly a category drives price.
var categoryImpact = map[string]string{
	"shoes":  ImpactHigh,
	"jacket": ImpactHigh,
	"dress":  ImpactMediumHigh,
	"jeans":  ImpactMedium,
	"shirt":  ImpactMedium,
}

// materialImpact grades how strongly a fabric drives price.
var materialImpact = map[string]string{
	"silk":      ImpactHigh,
	"cashmere":  ImpactHigh,
	"leather":   ImpactHigh,
	"wool":      ImpactMediumHigh,
	"cotton":    ImpactMedium,
	"polyester": ImpactLow,
}

// RecommendationRule emits an advisory string when its condition holds.
type RecommendationRule struct {
	Name string
	When func(rec features.Record, result api.PredictionResult) bool
	Text string
}

// DefaultRecommendationRules returns the static advisory rule table.
func DefaultRecommendationRules() []RecommendationRule {
	return []RecommendationRule{
		{
			Name: "apparel_premium_price",
			When: func(rec features.Record, res api.PredictionResult) bool {
				return res.ProductType == api.ProductTypeStandardApparel && res.PredictedPrice > 5000
			},
			Text: "Consider premium materials or designer brands",
		},
		{
			Name: "apparel_budget_price",
			When: func(rec features.Record, res api.PredictionResult) bool {
				return res.ProductType == api.ProductTypeStandardApparel && res.PredictedPrice < 1000
			},
			Text: "Budget-friendly option with good value",
		},
		{
			Name: "no_discount",
			When: func(rec features.Record, res api.PredictionResult) bool {
				return rec.DiscountPercent == 0
			},
			Text: "No discount applied - consider seasonal sales",
		},
		{
			Name: "deep_discount",
			When: func(rec features.Record, res api.PredictionResult) bool {
				return rec.DiscountPercent > 50
			},
			Text: "High discount - good value for money",
		},
		{
			Name: "premium_brand",
			When: func(rec features.Record, res api.PredictionResult) bool {
				return rec.BrandPrestige >= 2000
			},
			Text: "Premium brand - expect higher prices",
		},
		{
			Name: "budget_brand",
			When: func(rec features.Record, res api.PredictionResult) bool {
				return rec.BrandPrestige > 0 && rec.BrandPrestige < 1000
			},
			Text: "Budget-friendly brand - good value",
		},
		{
			Name: "unproven_high_price",
			When: func(rec features.Record, res api.PredictionResult) bool {
				return rec.RatingCount < 100 && res.PredictedPrice > 5000
			},
			Text: "Few ratings for a high-priced item - highlight quality signals to build trust",
		},
	}
}

// Explainer generates explanations from static rule tables. It is
// stateless and safe for concurrent use.
type Explainer struct {
	rules []RecommendationRule
}

// New creates an explainer with the default rule table.
func New() *Explainer {
	return &Explainer{rules: DefaultRecommendationRules()}
}

// NewWithRules creates an explainer with a custom advisory rule table.
func NewWithRules(rules []RecommendationRule) *Explainer {
	return &Explainer{rules: rules}
}

// Explain builds the full explanation for a prediction. Generation is
// total: factors whose inputs are missing are omitted, never errors.
func (e *Explainer) Explain(rec features.Record, result api.PredictionResult, desc api.ProductDescription) api.Explanation {
	out := api.Explanation{
		KeyFactors:      e.keyFactors(rec, result),
		PriceBreakdown:  breakdown(result.PredictedPrice, rec.DiscountPercent),
		Recommendations: []string{},
	}
	for _, rule := range e.rules {
		if rule.When(rec, result) {
			out.Recommendations = append(out.Recommendations, rule.Text)
		}
	}
	return out
}

// keyFactors walks the fixed factor checklist in order: brand prestige,
// category, discount, material, rating count.
func (e *Explainer) keyFactors(rec features.Record, result api.PredictionResult) []api.KeyFactor {
	factors := make([]api.KeyFactor, 0, 5)

	if rec.Brand != "" {
		impact := ImpactLow
		switch {
		case rec.BrandPrestige >= 2000:
			impact = ImpactHigh
		case rec.BrandPrestige >= 500:
			impact = ImpactMedium
		}
		factors = append(factors, api.KeyFactor{
			Factor:      "Brand",
			Value:       rec.Brand,
			Impact:      impact,
			Description: fmt.Sprintf("Brand %s has a significant impact on price", rec.Brand),
		})
	}

	if rec.Category != "" {
		impact, ok := categoryImpact[rec.Category]
		if !ok {
			impact = ImpactMedium
		}
		factors = append(factors, api.KeyFactor{
			Factor:      "Category",
			Value:       rec.Category,
			Impact:      impact,
			Description: fmt.Sprintf("Category %s places the item in the %s range", rec.Category, result.ProductType),
		})
	}

	if rec.DiscountPercent > 0 {
		impact := ImpactMedium
		if rec.DiscountPercent > 30 {
			impact = ImpactHigh
		}
		reduction := result.PredictedPrice * rec.DiscountPercent / 100
		factors = append(factors, api.KeyFactor{
			Factor:      "Discount",
			Value:       fmt.Sprintf("%.1f%%", rec.DiscountPercent),
			Impact:      impact,
			Description: fmt.Sprintf("%.1f%% discount reduces price by approximately %.2f %s", rec.DiscountPercent, reduction, result.Currency),
		})
	}

	if rec.Fabric != "" {
		impact, ok := materialImpact[rec.Fabric]
		if !ok {
			impact = ImpactMedium
		}
		factors = append(factors, api.KeyFactor{
			Factor:      "Material",
			Value:       rec.Fabric,
			Impact:      impact,
			Description: fmt.Sprintf("Material %s affects price", rec.Fabric),
		})
	}

	if rec.RatingCount > 0 {
		impact := ImpactLow
		switch {
		case rec.RatingCount > 500:
			impact = ImpactHigh
		case rec.RatingCount > 100:
			impact = ImpactMedium
		}
		factors = append(factors, api.KeyFactor{
			Factor:      "Rating Count",
			Value:       fmt.Sprintf("%d", rec.RatingCount),
			Impact:      impact,
			Description: fmt.Sprintf("Product has %d ratings, indicating popularity", rec.RatingCount),
		})
	}

	return factors
}

// breakdown reconstructs the pre-discount price. The extractor clamps the
// discount strictly below 100, so the denominator is always positive.
func breakdown(finalPrice, discountPercent float64) api.PriceBreakdown {
	final := decimal.NewFromFloat(finalPrice)
	if discountPercent <= 0 || discountPercent >= 100 {
		return api.PriceBreakdown{
			OriginalPrice:   round2(final),
			DiscountAmount:  0,
			DiscountPercent: 0,
			FinalPrice:      round2(final),
		}
	}

	denom := decimal.NewFromFloat(1 - discountPercent/100)
	original := final.Div(denom)
	return api.PriceBreakdown{
		OriginalPrice:   round2(original),
		DiscountAmount:  round2(original.Sub(final)),
		DiscountPercent: discountPercent,
		FinalPrice:      round2(final),
	}
}

func round2(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}
