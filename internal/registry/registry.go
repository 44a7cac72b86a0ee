// Package registry holds the loaded price models and resolves which
// model serves a request. A Snapshot is built once at startup and is
// read-only afterwards; reloads swap in a whole new snapshot.
package registry

import (
	"sync/atomic"

	"smart-retail/internal/model"
	"smart-retail/pkg/api"
	"smart-retail/pkg/errors"
)

// tierOrder is the strict preference order the selector walks.
var tierOrder = []api.ModelTier{
	api.TierFastMultiModel,
	api.TierOriginalSingleModel,
	api.TierFallbackModel,
}

// Config carries the loaded model handles for snapshot construction.
type Config struct {
	// FastModels maps product buckets to their specialized models.
	FastModels map[api.ProductType]model.Model
	// Original is the bucket-agnostic single model.
	Original model.Model
	// Fallback is the bucket-agnostic minimal model.
	Fallback model.Model
	// BrandPrestige is the brand score table shipped with the fast
	// model artifact; nil means the built-in defaults apply.
	BrandPrestige map[string]float64
}

// Snapshot is an immutable view of every loaded model. Concurrent
// requests read it without synchronization.
type Snapshot struct {
	fast          map[api.ProductType]model.Model
	original      model.Model
	fallback      model.Model
	brandPrestige map[string]float64
}

// NewSnapshot builds a snapshot from loaded handles. The maps are copied
// so later mutation of the config cannot leak into the snapshot.
func NewSnapshot(cfg Config) *Snapshot {
	s := &Snapshot{
		original:      cfg.Original,
		fallback:      cfg.Fallback,
		brandPrestige: cfg.BrandPrestige,
	}
	if len(cfg.FastModels) > 0 {
		s.fast = make(map[api.ProductType]model.Model, len(cfg.FastModels))
		for bucket, m := range cfg.FastModels {
			s.fast[bucket] = m
		}
	}
	return s
}

// Resolution names the model instance chosen for a request and the tier
// it came from; the tier feeds the response's model_type and caps its
// confidence.
type Resolution struct {
	Model model.Model
	Tier  api.ModelTier
}

// Resolve walks the tier order and returns the first loaded model that
// can serve the bucket. It never blocks. When no tier is loaded at all it
// returns a NoModelAvailable error listing the tiers attempted — the one
// fatal condition in the pipeline.
func (s *Snapshot) Resolve(bucket api.ProductType) (Resolution, error) {
	if m, ok := s.fast[bucket]; ok {
		return Resolution{Model: m, Tier: api.TierFastMultiModel}, nil
	}
	if s.original != nil {
		return Resolution{Model: s.original, Tier: api.TierOriginalSingleModel}, nil
	}
	if s.fallback != nil {
		return Resolution{Model: s.fallback, Tier: api.TierFallbackModel}, nil
	}
	attempted := make([]string, len(tierOrder))
	for i, t := range tierOrder {
		attempted[i] = string(t)
	}
	return Resolution{}, errors.NewNoModelAvailableError(attempted)
}

// HasTier reports whether any model is loaded for the given tier.
func (s *Snapshot) HasTier(tier api.ModelTier) bool {
	switch tier {
	case api.TierFastMultiModel:
		return len(s.fast) > 0
	case api.TierOriginalSingleModel:
		return s.original != nil
	case api.TierFallbackModel:
		return s.fallback != nil
	default:
		return false
	}
}

// TierInUse returns the highest-preference tier with a loaded model, or
// an empty tier when nothing is loaded.
func (s *Snapshot) TierInUse() api.ModelTier {
	for _, t := range tierOrder {
		if s.HasTier(t) {
			return t
		}
	}
	return ""
}

// BrandPrestige returns the brand score table carried by the snapshot,
// which may be nil when no fast artifact supplied one.
func (s *Snapshot) BrandPrestige() map[string]float64 {
	return s.brandPrestige
}

// Handle is a stable reference to the current snapshot. Reloading swaps
// the whole snapshot atomically; readers never observe a partial update.
type Handle struct {
	current atomic.Pointer[Snapshot]
}

// NewHandle creates a handle around an initial snapshot.
func NewHandle(s *Snapshot) *Handle {
	h := &Handle{}
	h.current.Store(s)
	return h
}

// Current returns the active snapshot.
func (h *Handle) Current() *Snapshot {
	return h.current.Load()
}

// Swap atomically replaces the active snapshot.
func (h *Handle) Swap(s *Snapshot) {
	h.current.Store(s)
}
