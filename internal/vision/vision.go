// Package vision abstracts the image analysis providers that turn a
// crop photo into a structured detection. The Gemini adapter is the
// production path; the static provider keeps the plane runnable with
// no API key configured.
package vision

import (
	"context"
	"fmt"
)

// Result is the structured output of an image analysis. It carries the
// raw model probability, not the adjusted confidence; the diagnosis
// engine recomputes confidence against the knowledge-table evidence.
type Result struct {
	PestName       string   `json:"pest_name"`
	Confidence     float64  `json:"confidence"`
	LesionPct      float64  `json:"lesion_percentage"`
	VisualSymptoms []string `json:"visual_symptoms"`
	LifecycleStage string   `json:"lifecycle_stage"`
	UrgencyLevel   string   `json:"urgency_level"`
	Reasoning      string   `json:"reasoning"`
}

// Provider analyzes a crop image and returns a detection result.
type Provider interface {
	// Analyze inspects imageData (JPEG or PNG bytes) in the context of
	// the given crop type.
	Analyze(ctx context.Context, imageData []byte, cropType string) (*Result, error)

	// Name identifies the provider in logs and health output.
	Name() string
}

// ProviderError wraps a failure from an upstream vision service so the
// API layer can distinguish upstream faults from bad input.
type ProviderError struct {
	Provider string
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("vision provider %s: %v", e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }
