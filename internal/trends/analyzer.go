// Package trends serves fashion trend reports from static tables.
package trends

import (
	"time"
)

// ColorTrend is one trending color with its popularity and direction.
type ColorTrend struct {
	Color      string  `json:"color"`
	Popularity float64 `json:"popularity"`
	Trend      string  `json:"trend"`
}

// StyleTrend is one trending style, optionally scoped to a category.
type StyleTrend struct {
	Style      string  `json:"style"`
	Popularity float64 `json:"popularity"`
	Category   string  `json:"category"`
}

// SeasonalTrends groups what is current for a season.
type SeasonalTrends struct {
	Season    string   `json:"season"`
	Colors    []string `json:"colors"`
	Styles    []string `json:"styles"`
	Materials []string `json:"materials"`
}

// Report is the combined trend snapshot served to clients.
type Report struct {
	GeneratedAt    time.Time      `json:"generated_at"`
	TrendingColors []ColorTrend   `json:"trending_colors"`
	TrendingStyles []StyleTrend   `json:"trending_styles"`
	Seasonal       SeasonalTrends `json:"seasonal_trends"`
}

// Analyzer answers trend queries. Data is static per deployment; the
// analyzer is stateless and safe for concurrent use.
type Analyzer struct {
	now func() time.Time
}

// New creates an analyzer using the wall clock for season detection.
func New() *Analyzer {
	return &Analyzer{now: time.Now}
}

// NewWithClock creates an analyzer with an injected clock, for tests.
func NewWithClock(now func() time.Time) *Analyzer {
	return &Analyzer{now: now}
}

// TrendingColors lists the current color trends.
func (a *Analyzer) TrendingColors() []ColorTrend {
	return []ColorTrend{
		{Color: "sage green", Popularity: 0.85, Trend: "rising"},
		{Color: "lavender", Popularity: 0.78, Trend: "stable"},
		{Color: "terracotta", Popularity: 0.72, Trend: "rising"},
		{Color: "navy blue", Popularity: 0.68, Trend: "stable"},
		{Color: "coral", Popularity: 0.65, Trend: "declining"},
	}
}

// TrendingStyles lists current style trends, filtered to the given
// category. "all" (or empty) returns everything.
func (a *Analyzer) TrendingStyles(category string) []StyleTrend {
	styles := []StyleTrend{
		{Style: "minimalist", Popularity: 0.82, Category: "all"},
		{Style: "athleisure", Popularity: 0.88, Category: "apparel"},
		{Style: "vintage", Popularity: 0.75, Category: "apparel"},
		{Style: "oversized", Popularity: 0.73, Category: "apparel"},
		{Style: "sustainable", Popularity: 0.70, Category: "all"},
	}
	if category == "" || category == "all" {
		return styles
	}
	filtered := make([]StyleTrend, 0, len(styles))
	for _, s := range styles {
		if s.Category == category || s.Category == "all" {
			filtered = append(filtered, s)
		}
	}
	return filtered
}

// Seasonal returns the trends for the given season; an empty season
// resolves to the current one from the analyzer's clock.
func (a *Analyzer) Seasonal(season string) SeasonalTrends {
	if season == "" {
		season = currentSeason(a.now().Month())
	}
	table := map[string]SeasonalTrends{
		"spring": {
			Season:    "spring",
			Colors:    []string{"pastel pink", "mint green", "lavender"},
			Styles:    []string{"floral", "light layers", "pastel tones"},
			Materials: []string{"cotton", "linen", "chiffon"},
		},
		"summer": {
			Season:    "summer",
			Colors:    []string{"bright white", "coral", "turquoise"},
			Styles:    []string{"maxi dresses", "shorts", "tank tops"},
			Materials: []string{"cotton", "linen", "rayon"},
		},
		"fall": {
			Season:    "fall",
			Colors:    []string{"burgundy", "mustard", "olive green"},
			Styles:    []string{"layering", "boots", "sweaters"},
			Materials: []string{"wool", "cashmere", "denim"},
		},
		"winter": {
			Season:    "winter",
			Colors:    []string{"navy", "black", "deep red"},
			Styles:    []string{"coats", "sweaters", "boots"},
			Materials: []string{"wool", "cashmere", "leather"},
		},
	}
	if t, ok := table[season]; ok {
		return t
	}
	return table["spring"]
}

// Generate assembles the combined trend report.
func (a *Analyzer) Generate() Report {
	return Report{
		GeneratedAt:    a.now(),
		TrendingColors: a.TrendingColors(),
		TrendingStyles: a.TrendingStyles("all"),
		Seasonal:       a.Seasonal(""),
	}
}

func currentSeason(m time.Month) string {
	switch m {
	case time.December, time.January, time.February:
		return "winter"
	case time.March, time.April, time.May:
		return "spring"
	case time.June, time.July, time.August:
		return "summer"
	default:
		return "fall"
	}
}
