package classify

import (
	"testing"

	"smart-retail/internal/features"
	"smart-retail/pkg/api"
)

func TestClassifyBuckets(t *testing.T) {
	e := features.NewExtractor(nil)
	c := New()

	tests := []struct {
		name string
		desc api.ProductDescription
		want api.ProductType
	}{
		{
			name: "necklace is jewelry",
			desc: api.ProductDescription{ProductName: "Gold Plated Necklace", Category: "jewellery"},
			want: api.ProductTypeJewelry,
		},
		{
			name: "karat mark is jewelry",
			desc: api.ProductDescription{ProductName: "22kt Bangle Set"},
			want: api.ProductTypeJewelry,
		},
		{
			name: "luxury gold watch is a watch",
			desc: api.ProductDescription{ProductName: "Luxury Gold Watch", Category: "watches"},
			want: api.ProductTypeWatch,
		},
		{
			name: "chronograph is a watch",
			desc: api.ProductDescription{ProductName: "Steel Chronograph", Brand: "fossil"},
			want: api.ProductTypeWatch,
		},
		{
			name: "designer keyword is luxury apparel",
			desc: api.ProductDescription{ProductName: "Designer Anarkali Kurta"},
			want: api.ProductTypeLuxuryApparel,
		},
		{
			name: "premium material is luxury apparel",
			desc: api.ProductDescription{ProductName: "Festive Saree", Fabric: "silk"},
			want: api.ProductTypeLuxuryApparel,
		},
		{
			name: "high prestige brand is luxury apparel",
			desc: api.ProductDescription{ProductName: "Running Shoes", Brand: "nike", Category: "shoes"},
			want: api.ProductTypeLuxuryApparel,
		},
		{
			name: "plain cotton shirt is standard apparel",
			desc: api.ProductDescription{ProductName: "Casual Shirt", Brand: "roadster", Category: "shirt", Fabric: "cotton"},
			want: api.ProductTypeStandardApparel,
		},
		{
			name: "empty description is standard apparel",
			desc: api.ProductDescription{},
			want: api.ProductTypeStandardApparel,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Classify(e.Extract(tt.desc))
			if got != tt.want {
				t.Errorf("Classify() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestClassifyRuleOrder(t *testing.T) {
	c := New()

	// Jewelry outranks watch, watch outranks luxury.
	rec := features.Record{JewelrySignal: true, WatchSignal: true, LuxurySignal: true}
	if got := c.Classify(rec); got != api.ProductTypeJewelry {
		t.Errorf("all signals = %q, want %q", got, api.ProductTypeJewelry)
	}

	rec = features.Record{WatchSignal: true, LuxurySignal: true, MaterialTier: features.MaterialPrecious}
	if got := c.Classify(rec); got != api.ProductTypeWatch {
		t.Errorf("watch+luxury = %q, want %q", got, api.ProductTypeWatch)
	}
}

func TestClassifyPrestigeThreshold(t *testing.T) {
	c := New()

	rec := features.Record{BrandPrestige: LuxuryPrestigeThreshold, MaterialTier: features.MaterialStandard}
	if got := c.Classify(rec); got != api.ProductTypeLuxuryApparel {
		t.Errorf("prestige at threshold = %q, want %q", got, api.ProductTypeLuxuryApparel)
	}

	rec.BrandPrestige = LuxuryPrestigeThreshold - 1
	if got := c.Classify(rec); got != api.ProductTypeStandardApparel {
		t.Errorf("prestige below threshold = %q, want %q", got, api.ProductTypeStandardApparel)
	}
}

func TestClassifyDeterministic(t *testing.T) {
	e := features.NewExtractor(nil)
	c := New()
	desc := api.ProductDescription{ProductName: "Luxury Gold Watch", Category: "watches"}

	first := c.Classify(e.Extract(desc))
	for i := 0; i < 10; i++ {
		if got := c.Classify(e.Extract(desc)); got != first {
			t.Fatalf("run %d: Classify() = %q, want %q", i, got, first)
		}
	}
}

func TestClassifyCustomRules(t *testing.T) {
	c := NewWithRules([]Rule{
		{
			Name:   "everything is a watch",
			Match:  func(features.Record) bool { return true },
			Bucket: api.ProductTypeWatch,
		},
	})
	if got := c.Classify(features.Record{}); got != api.ProductTypeWatch {
		t.Fatalf("Classify() = %q, want %q", got, api.ProductTypeWatch)
	}
}
