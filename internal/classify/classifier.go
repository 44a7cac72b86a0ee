// Package classify maps feature records onto product-type buckets.
package classify

import (
	"smart-retail/internal/features"
	"smart-retail/pkg/api"
)

// LuxuryPrestigeThreshold is the brand prestige score above which an
// apparel item is treated as luxury even without luxury keywords.
const LuxuryPrestigeThreshold = 2000

// Rule pairs a predicate with the bucket it selects.
type Rule struct {
	Name   string
	Match  func(features.Record) bool
	Bucket api.ProductType
}

// DefaultRules returns the rule cascade in priority order. Ordering is
// load-bearing: a luxury gold watch must classify as a watch, so the
// watch rule has to run before the luxury rule, and jewelry before both.
func DefaultRules() []Rule {
	return []Rule{
		{
			Name:   "jewelry",
			Match:  func(r features.Record) bool { return r.JewelrySignal },
			Bucket: api.ProductTypeJewelry,
		},
		{
			Name:   "watch",
			Match:  func(r features.Record) bool { return r.WatchSignal },
			Bucket: api.ProductTypeWatch,
		},
		{
			Name: "luxury_apparel",
			Match: func(r features.Record) bool {
				return r.LuxurySignal ||
					r.BrandPrestige >= LuxuryPrestigeThreshold ||
					r.MaterialTier == features.MaterialPremium ||
					r.MaterialTier == features.MaterialPrecious
			},
			Bucket: api.ProductTypeLuxuryApparel,
		},
	}
}

// Classifier evaluates an ordered rule list; the first matching rule wins.
// It is pure and safe for concurrent use.
type Classifier struct {
	rules []Rule
}

// New creates a classifier with the default rule cascade.
func New() *Classifier {
	return &Classifier{rules: DefaultRules()}
}

// NewWithRules creates a classifier with a custom ordered rule list.
func NewWithRules(rules []Rule) *Classifier {
	return &Classifier{rules: rules}
}

// Classify returns the bucket of the first matching rule, falling back to
// standard apparel when nothing matches.
func (c *Classifier) Classify(rec features.Record) api.ProductType {
	for _, rule := range c.rules {
		if rule.Match(rec) {
			return rule.Bucket
		}
	}
	return api.ProductTypeStandardApparel
}
