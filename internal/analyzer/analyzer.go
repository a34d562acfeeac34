package analyzer

import (
	"alcyxob/snapfit/internal/domain"
	"context"
	"errors"
)

// --- Error Definitions ---
var (
	// ErrAnalysisFailed covers both transport failures against the vision
	// capability and unparseable responses. It is never retried here; the
	// caller reports it and the user retries manually.
	ErrAnalysisFailed = errors.New("environment analysis failed")
	ErrNoImages       = errors.New("at least one environment photo is required")
	ErrNoWorkoutTypes = errors.New("at least one workout type must be enabled")
)

// Image is a single environment photo ready for the multimodal request.
type Image struct {
	MediaType string // e.g. "image/jpeg"
	Data      []byte
}

// Request carries everything the analyzer needs for one generation call.
type Request struct {
	Images       []Image
	FitnessLevel domain.FitnessLevel
	Duration     int // minutes
	Types        domain.WorkoutTypes
}

// EnvironmentAnalyzer turns photos of a physical space plus preferences into
// a structured workout plan. Implementations are stateless; every call costs
// one external request (no caching, no idempotency key).
type EnvironmentAnalyzer interface {
	Analyze(ctx context.Context, req Request) (*domain.WorkoutPlan, error)
}
