// Package service wires the prediction pipeline together and exposes the
// two operations the HTTP layer and CLI call.
package service

import (
	"smart-retail/internal/classify"
	"smart-retail/internal/explain"
	"smart-retail/internal/features"
	"smart-retail/internal/predictor"
	"smart-retail/internal/registry"
	"smart-retail/pkg/api"
)

// Service runs the classify → resolve → predict → explain pipeline.
// Every stage after registry load is pure, so a Service is safe for
// concurrent use without locks.
type Service struct {
	registry   *registry.Handle
	classifier *classify.Classifier
	predictor  *predictor.Predictor
	explainer  *explain.Explainer
}

// New creates a prediction service over the given registry handle.
func New(h *registry.Handle) *Service {
	return &Service{
		registry:   h,
		classifier: classify.New(),
		predictor:  predictor.New(),
		explainer:  explain.New(),
	}
}

// Predict classifies the product, resolves a model for its bucket, and
// returns the bounded, confidence-tagged price. The only possible error
// is NoModelAvailable.
func (s *Service) Predict(desc api.ProductDescription) (api.PredictionResult, error) {
	result, _, err := s.predict(desc)
	return result, err
}

// PredictWithExplanation runs Predict and additionally derives the
// rule-based explanation. The explanation is best-effort and always
// present when the prediction succeeds.
func (s *Service) PredictWithExplanation(desc api.ProductDescription) (api.PredictionResult, api.Explanation, error) {
	result, rec, err := s.predict(desc)
	if err != nil {
		return api.PredictionResult{}, api.Explanation{}, err
	}
	return result, s.explainer.Explain(rec, result, desc), nil
}

func (s *Service) predict(desc api.ProductDescription) (api.PredictionResult, features.Record, error) {
	// The extractor is rebuilt from the current snapshot so the brand
	// table and the models always come from the same registry view.
	snap := s.registry.Current()
	rec := features.NewExtractor(snap.BrandPrestige()).Extract(desc)
	bucket := s.classifier.Classify(rec)

	res, err := snap.Resolve(bucket)
	if err != nil {
		return api.PredictionResult{}, rec, err
	}
	return s.predictor.Predict(res, rec, bucket), rec, nil
}
