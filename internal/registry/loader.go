package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"smart-retail/internal/model"
	"smart-retail/pkg/api"
)

// Artifact file names inside the artifacts directory.
const (
	fastModelsFile    = "fast_price_models.json"
	originalModelFile = "price_model_improved.json"
	fallbackModelFile = "fallback_model.json"
)

// fastArtifact is the on-disk form of the multi-model artifact: one spec
// per product bucket plus the brand prestige table fitted alongside them.
type fastArtifact struct {
	BrandPrestigeScores map[string]float64    `json:"brand_prestige_scores"`
	Models              map[string]model.Spec `json:"models"`
}

// bucketAliases maps legacy artifact bucket names onto the current enum.
var bucketAliases = map[string]api.ProductType{
	"jewelry":          api.ProductTypeJewelry,
	"watches":          api.ProductTypeWatch,
	"watch":            api.ProductTypeWatch,
	"luxury_apparel":   api.ProductTypeLuxuryApparel,
	"apparel":          api.ProductTypeStandardApparel,
	"standard_apparel": api.ProductTypeStandardApparel,
}

// Load reads model artifacts from dir and builds a snapshot. Each tier is
// optional and a missing or corrupt artifact only clears that tier's
// capability flag. When nothing at all can be loaded, a built-in baseline
// model is installed at the fallback tier so the service stays usable.
func Load(dir string) *Snapshot {
	cfg := Config{}

	if art, err := loadFastArtifact(filepath.Join(dir, fastModelsFile)); err != nil {
		log.Warn().Err(err).Str("file", fastModelsFile).Msg("fast multi-model artifact unavailable")
	} else {
		cfg.FastModels = art.models
		cfg.BrandPrestige = art.prestige
		log.Info().Int("buckets", len(art.models)).Msg("fast multi-model system loaded")
	}

	if m, err := loadModelSpec(filepath.Join(dir, originalModelFile)); err != nil {
		log.Warn().Err(err).Str("file", originalModelFile).Msg("original model artifact unavailable")
	} else {
		cfg.Original = m
		log.Info().Msg("original single model loaded")
	}

	if m, err := loadModelSpec(filepath.Join(dir, fallbackModelFile)); err != nil {
		log.Warn().Err(err).Str("file", fallbackModelFile).Msg("fallback model artifact unavailable")
	} else {
		cfg.Fallback = m
		log.Info().Msg("fallback model loaded")
	}

	if len(cfg.FastModels) == 0 && cfg.Original == nil && cfg.Fallback == nil {
		log.Warn().Msg("no model artifacts found, installing built-in baseline at fallback tier")
		cfg.Fallback = model.NewBaseline()
	}

	return NewSnapshot(cfg)
}

type loadedFast struct {
	models   map[api.ProductType]model.Model
	prestige map[string]float64
}

func loadFastArtifact(path string) (loadedFast, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return loadedFast{}, err
	}
	var art fastArtifact
	if err := json.Unmarshal(data, &art); err != nil {
		return loadedFast{}, fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	if len(art.Models) == 0 {
		return loadedFast{}, fmt.Errorf("%s carries no models", filepath.Base(path))
	}

	out := loadedFast{
		models:   make(map[api.ProductType]model.Model, len(art.Models)),
		prestige: art.BrandPrestigeScores,
	}
	for name, spec := range art.Models {
		bucket, ok := bucketAliases[name]
		if !ok {
			log.Warn().Str("bucket", name).Msg("skipping model for unknown bucket")
			continue
		}
		m, err := model.FromSpec(spec)
		if err != nil {
			return loadedFast{}, fmt.Errorf("bucket %s: %w", name, err)
		}
		out.models[bucket] = m
	}
	if len(out.models) == 0 {
		return loadedFast{}, fmt.Errorf("%s carries no usable models", filepath.Base(path))
	}
	return out, nil
}

func loadModelSpec(path string) (model.Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var spec model.Spec
	if err := json.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	return model.FromSpec(spec)
}
