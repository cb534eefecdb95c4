package vision

import (
	"context"

	"github.com/rs/zerolog/log"
)

// StaticProvider returns a fixed detection regardless of the image. It
// backs zero-configuration deployments and integration tests where no
// Gemini key is available. The canned result exercises the whole
// downstream pipeline: a known pest at moderate coverage with partial
// evidence.
type StaticProvider struct{}

// NewStaticProvider creates the canned-result provider.
func NewStaticProvider() *StaticProvider { return &StaticProvider{} }

// Name implements Provider.
func (s *StaticProvider) Name() string { return "static" }

// Analyze implements Provider.
func (s *StaticProvider) Analyze(ctx context.Context, imageData []byte, cropType string) (*Result, error) {
	log.Debug().Str("crop_type", cropType).Int("image_bytes", len(imageData)).Msg("static vision provider returning canned detection")
	return &Result{
		PestName:       "Fall Armyworm",
		Confidence:     0.88,
		LesionPct:      18.5,
		VisualSymptoms: []string{"ragged leaf holes", "frass deposits"},
		LifecycleStage: "Early Larva",
		UrgencyLevel:   "Medium",
		Reasoning:      "Canned result from the static provider. Configure a Gemini API key for real analysis.",
	}, nil
}
