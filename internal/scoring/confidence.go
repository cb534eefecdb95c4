// Package scoring implements the deterministic scoring functions of
// the diagnostic plane: detection confidence, severity classification,
// progression rate, and weather-risk assessment. Every function here
// is a pure transform over its inputs, with no I/O and no shared state.
package scoring

import (
	"fmt"
	"strings"

	"github.com/agrosage/agrosage/diagnostic-plane/pkg/models"
)

// Confidence blend weights. Raw model probability dominates; evidence
// completeness corrects for hallucinated certainty.
const (
	weightRawProbability = 0.70
	weightEvidence       = 0.30
)

// Confidence computes the adjusted detection confidence:
//
//	confidence = rawProb×0.70 + evidenceCompleteness×0.30
//
// where evidenceCompleteness is the fraction of required symptom
// descriptors actually observed. Matching is exact after lowercasing
// and trimming, no fuzzy matching. The result is clamped to [0,1] to
// absorb floating-point drift.
func Confidence(rawProb float64, observed, required []string) (float64, error) {
	if rawProb < 0 || rawProb > 1 {
		return 0, &models.InvalidInputError{
			Field:  "raw_probability",
			Reason: fmt.Sprintf("%g outside [0, 1]", rawProb),
		}
	}
	requiredSet := normalizeSet(required)
	if len(requiredSet) == 0 {
		// An empty requirement set makes completeness undefined.
		return 0, &models.InvalidInputError{Field: "required_evidence", Reason: "must not be empty"}
	}

	matches := 0
	for e := range normalizeSet(observed) {
		if _, ok := requiredSet[e]; ok {
			matches++
		}
	}
	completeness := float64(matches) / float64(len(requiredSet))

	confidence := rawProb*weightRawProbability + completeness*weightEvidence
	if confidence < 0 {
		return 0, nil
	}
	if confidence > 1 {
		return 1, nil
	}
	return confidence, nil
}

func normalizeSet(items []string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, s := range items {
		s = strings.ToLower(strings.TrimSpace(s))
		if s != "" {
			set[s] = struct{}{}
		}
	}
	return set
}
