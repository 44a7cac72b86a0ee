// Package features turns raw product descriptions into normalized
// feature records for classification and price prediction.
package features

import (
	"regexp"
	"strings"

	"smart-retail/pkg/api"
)

// MaterialTier grades the detected material quality.
type MaterialTier string

const (
	MaterialPrecious MaterialTier = "precious"
	MaterialPremium  MaterialTier = "premium"
	MaterialStandard MaterialTier = "standard"
)

// PrestigeTier buckets a brand's prestige score.
type PrestigeTier string

const (
	PrestigeUltraPremium PrestigeTier = "ultra_premium"
	PrestigePremium      PrestigeTier = "premium"
	PrestigeMidRange     PrestigeTier = "mid_range"
	PrestigeBudget       PrestigeTier = "budget"
)

// Record is the normalized view of one product description. It is built
// fresh per request and immutable once returned.
type Record struct {
	ProductName string
	Brand       string
	Gender      string
	Category    string
	Fabric      string
	Pattern     string
	Color       string

	NameTokens []string
	NameLength int
	WordCount  int
	HasSize    bool

	RatingCount     int
	DiscountPercent float64
	HasDiscount     bool

	BrandPrestige float64
	PrestigeTier  PrestigeTier
	MaterialTier  MaterialTier
	Karat         float64

	JewelrySignal bool
	WatchSignal   bool
	LuxurySignal  bool
}

// Keyword vocabularies. Jewelry keys on item words rather than precious
// metals so that a gold watch still classifies as a watch; metals feed the
// material tier instead.
var (
	jewelryKeywords = []string{
		"ring", "chain", "earring", "necklace", "bracelet", "pendant",
		"bangle", "jewel", "jewellery", "jewelry",
	}
	watchKeywords = []string{
		"watch", "chronograph", "automatic", "quartz", "movement", "dial",
		"strap", "timepiece", "wristwatch",
	}
	luxuryKeywords = []string{
		"luxury", "designer", "couture", "premium", "exclusive", "limited", "handmade",
		"embroidered", "sequined", "beaded", "swarovski",
	}
	preciousMaterials = []string{
		"gold", "silver", "platinum", "diamond", "gem", "stone", "pearl",
		"crystal", "karat",
	}
	premiumMaterials = []string{
		"silk", "leather", "cashmere", "wool", "velvet", "pashmina",
		"georgette", "suede",
	}
)

var (
	sizeRe  = regexp.MustCompile(`(?i)\b(?:xs|s|m|l|xl|xxl|xxxl|small|medium|large)\b`)
	karatRe = regexp.MustCompile(`(?i)(\d+)\s*kt`)
)

// DefaultBrandPrestige returns the built-in brand prestige table.
// Scores approximate a brand's average catalog price in INR.
func DefaultBrandPrestige() map[string]float64 {
	return map[string]float64{
		"nike":     2500,
		"adidas":   2200,
		"levis":    1800,
		"zara":     1500,
		"puma":     1200,
		"rebook":   1000,
		"h&m":      800,
		"roadster": 600,
	}
}

// Extractor derives feature records from product descriptions.
// It is stateless after construction and safe for concurrent use.
type Extractor struct {
	brandPrestige map[string]float64
}

// NewExtractor creates an extractor using the given brand prestige table.
// A nil table falls back to the built-in defaults.
func NewExtractor(brandPrestige map[string]float64) *Extractor {
	if brandPrestige == nil {
		brandPrestige = DefaultBrandPrestige()
	}
	return &Extractor{brandPrestige: brandPrestige}
}

// Extract builds a Record from a product description. Malformed numeric
// fields are clamped, unknown brands score zero; extraction never fails.
func (e *Extractor) Extract(p api.ProductDescription) Record {
	name := normalize(p.ProductName)
	category := normalize(p.Category)
	brand := normalize(p.Brand)
	fabric := normalize(p.Fabric)

	rec := Record{
		ProductName: name,
		Brand:       brand,
		Gender:      normalize(p.Gender),
		Category:    category,
		Fabric:      fabric,
		Pattern:     normalize(p.Pattern),
		Color:       normalize(p.Color),
		NameTokens:  strings.Fields(name),
		NameLength:  len(name),
		HasSize:     sizeRe.MatchString(name),
	}
	rec.WordCount = len(rec.NameTokens)

	rec.RatingCount = clampRatingCount(p.RatingCount)
	rec.DiscountPercent = clampDiscount(p.DiscountPercent)
	rec.HasDiscount = rec.DiscountPercent > 0

	rec.BrandPrestige = e.brandPrestige[brand]
	rec.PrestigeTier = prestigeTier(rec.BrandPrestige)

	// Material signals come from the name, fabric, and category together.
	materialText := name + " " + fabric + " " + category
	switch {
	case containsAny(materialText, preciousMaterials):
		rec.MaterialTier = MaterialPrecious
	case containsAny(materialText, premiumMaterials):
		rec.MaterialTier = MaterialPremium
	default:
		rec.MaterialTier = MaterialStandard
	}

	if m := karatRe.FindStringSubmatch(name); m != nil {
		rec.Karat = parseKarat(m[1])
	}

	keywordText := category + " " + name
	rec.JewelrySignal = containsAny(keywordText, jewelryKeywords) || rec.Karat > 0
	rec.WatchSignal = containsAny(keywordText, watchKeywords)
	rec.LuxurySignal = containsAny(name, luxuryKeywords)

	return rec
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

func prestigeTier(score float64) PrestigeTier {
	switch {
	case score >= 5000:
		return PrestigeUltraPremium
	case score >= 2000:
		return PrestigePremium
	case score >= 500:
		return PrestigeMidRange
	default:
		return PrestigeBudget
	}
}

func clampRatingCount(n int) int {
	if n < 0 {
		return 0
	}
	return n
}

// clampDiscount keeps the discount strictly below 100 so the explanation
// breakdown's denominator (1 - discount/100) can never reach zero.
const maxDiscountPercent = 99.9

func clampDiscount(d float64) float64 {
	if d < 0 {
		return 0
	}
	if d > maxDiscountPercent {
		return maxDiscountPercent
	}
	return d
}

func parseKarat(digits string) float64 {
	var k float64
	for _, c := range digits {
		k = k*10 + float64(c-'0')
	}
	return k
}
