// Package errors provides severity-aware error types for the prediction pipeline.
package errors

import "fmt"

// Severity indicates error impact level.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityError
	SeverityFatal
)

func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	case SeverityFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// PipelineError is a structured error with context.
type PipelineError struct {
	Code        string   `json:"code"`
	Message     string   `json:"message"`
	Severity    Severity `json:"severity"`
	Recoverable bool     `json:"recoverable"`
	Attempted   []string `json:"attempted,omitempty"`
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Severity, e.Code, e.Message)
}

// Error codes
const (
	ErrCodeInvalidInput        = "INVALID_INPUT"
	ErrCodeNoModelAvailable    = "NO_MODEL_AVAILABLE"
	ErrCodeConstraintViolation = "CONSTRAINT_VIOLATION"
	ErrCodeExplanationDegraded = "EXPLANATION_DEGRADED"
)

// NewNoModelAvailableError reports that no model tier could serve a request.
// This is the single fatal pipeline condition; Attempted lists the tiers
// tried, in preference order.
func NewNoModelAvailableError(attempted []string) *PipelineError {
	return &PipelineError{
		Code:        ErrCodeNoModelAvailable,
		Message:     "no price prediction models are loaded",
		Severity:    SeverityFatal,
		Recoverable: false,
		Attempted:   attempted,
	}
}

// NewInvalidInputError records a malformed field that was clamped or defaulted.
// It is informational: the extractor recovers locally and never surfaces it.
func NewInvalidInputError(field, reason string) *PipelineError {
	return &PipelineError{
		Code:        ErrCodeInvalidInput,
		Message:     fmt.Sprintf("field %s: %s", field, reason),
		Severity:    SeverityWarning,
		Recoverable: true,
	}
}
