package scoring

import (
	"fmt"

	"github.com/agrosage/agrosage/diagnostic-plane/internal/knowledge"
	"github.com/agrosage/agrosage/diagnostic-plane/pkg/models"
)

// StageSensitivity is how vulnerable a crop is to damage at a given
// growth stage. More sensitive stages get tighter severity thresholds:
// the same lesion coverage is judged more severe during germination
// than at maturity.
type StageSensitivity int

const (
	VerySensitive StageSensitivity = iota
	Sensitive
	Moderate
	Tolerant
	VeryTolerant
)

// sensitivityBands holds the ascending (lowMax, mediumMax, highMax)
// boundaries per sensitivity band for the quick stage-band classifier.
var sensitivityBands = map[StageSensitivity][3]float64{
	VerySensitive: {5, 10, 15},
	Sensitive:     {10, 20, 35},
	Moderate:      {15, 30, 50},
	Tolerant:      {20, 40, 60},
	VeryTolerant:  {30, 50, 75},
}

var stageSensitivity = map[models.GrowthStage]StageSensitivity{
	models.StageGermination: VerySensitive,
	models.StageVegetative:  Sensitive,
	models.StageFlowering:   Moderate,
	models.StageFruiting:    Tolerant,
	models.StageMaturity:    VeryTolerant,
}

// SeverityCategory is the quick three-way classifier: lesion coverage
// against growth-stage-sensitive generic thresholds. It emits only
// Low, Medium, or High; the pest-specific AssessSeverity is the one
// that can escalate to Critical.
func SeverityCategory(lesionPct float64, stage models.GrowthStage) (models.SeverityLevel, error) {
	if lesionPct < 0 || lesionPct > 100 {
		return "", &models.InvalidInputError{
			Field:  "lesion_pct",
			Reason: fmt.Sprintf("%g outside [0, 100]", lesionPct),
		}
	}
	sensitivity, ok := stageSensitivity[stage]
	if !ok {
		return "", &models.InvalidInputError{
			Field:  "growth_stage",
			Reason: fmt.Sprintf("unknown growth stage %q", stage),
		}
	}

	bands := sensitivityBands[sensitivity]
	switch {
	case lesionPct <= bands[0]:
		return models.SeverityLow, nil
	case lesionPct <= bands[1]:
		return models.SeverityMedium, nil
	default:
		return models.SeverityHigh, nil
	}
}

// criticalStageMultiplier amplifies lesion coverage during flowering
// and fruiting before threshold comparison.
const criticalStageMultiplier = 1.3

// lowConfidenceFloor is the confidence below which verification is
// recommended as a risk factor.
const lowConfidenceFloor = 0.70

// AssessSeverity is the full four-level assessment used for report
// assembly: lesion coverage against the pest-specific thresholds, with
// critical-stage amplification and a low-confidence warning. Returns
// the level and the ordered risk-factor explanations.
func AssessSeverity(lesionPct, confidence float64, stage models.GrowthStage, thresholds knowledge.SeverityThresholds) (models.SeverityLevel, []string) {
	var riskFactors []string

	if confidence < lowConfidenceFloor {
		riskFactors = append(riskFactors, "Low detection confidence - verification recommended")
	}

	effective := lesionPct
	if stage.IsCritical() {
		riskFactors = append(riskFactors, fmt.Sprintf("Critical growth stage (%s) - higher impact expected", stage))
		effective = lesionPct * criticalStageMultiplier
	}

	var level models.SeverityLevel
	switch {
	case effective <= thresholds.LowMax:
		level = models.SeverityLow
	case effective <= thresholds.MediumMax:
		level = models.SeverityMedium
		riskFactors = append(riskFactors, "Moderate infestation - immediate action recommended")
	case effective <= thresholds.HighMax:
		level = models.SeverityHigh
		riskFactors = append(riskFactors, "Severe infestation - aggressive treatment required")
	default:
		level = models.SeverityCritical
		riskFactors = append(riskFactors, "Critical infestation - crop loss imminent without intervention")
	}

	return level, riskFactors
}
