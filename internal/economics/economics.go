// Package economics converts a severity assessment into financial
// terms: yield loss, revenue at risk, treatment cost spread, ROI for
// the treat/no-treat decision, and a recommendation.
package economics

import (
	"github.com/agrosage/agrosage/diagnostic-plane/internal/knowledge"
	"github.com/agrosage/agrosage/diagnostic-plane/pkg/models"
)

// treatmentRecoveryRate is the assumed fraction of at-risk revenue a
// treatment recovers.
const treatmentRecoveryRate = 0.80

// Default cost range applied when a pest has no tabulated treatments.
// An explicit degenerate case, not an error.
var defaultCostRange = models.CostRange{Min: 500, Max: 1500}

// Estimate computes the economic impact of the diagnosis.
//
// The pest's per-severity base yield-loss fraction is scaled by the
// affected-area share to get the actual loss fraction; revenue loss is
// that fraction of the per-hectare crop value. ROI-if-untreated is the
// projected loss as a negative percentage, kept in ROI units so the
// two outcomes compare directly.
func Estimate(profile *knowledge.PestProfile, severity models.SeverityLevel, cropValuePerHectare, affectedAreaPct float64) models.EconomicImpact {
	baseLoss := profile.YieldLoss[severity]
	actualLoss := baseLoss * (affectedAreaPct / 100)
	revenueLoss := cropValuePerHectare * actualLoss

	costRange := costRangeFor(profile)
	avgCost := costRange.Avg()

	potentialSavings := revenueLoss * treatmentRecoveryRate
	roiIfTreated := ((potentialSavings - avgCost) / avgCost) * 100
	roiIfUntreated := -100 * actualLoss

	breakEven := 0.0
	if cropValuePerHectare > 0 {
		breakEven = avgCost / (cropValuePerHectare * treatmentRecoveryRate)
	}

	return models.EconomicImpact{
		PotentialYieldLossPct: actualLoss * 100,
		EstimatedRevenueLoss:  revenueLoss,
		TreatmentCostRange:    costRange,
		ROIIfTreated:          roiIfTreated,
		ROIIfUntreated:        roiIfUntreated,
		BreakEvenThreshold:    breakEven,
		Recommendation:        recommend(severity, revenueLoss, avgCost),
	}
}

// costRangeFor spans the union of all chemical and organic costs for
// the pest, unfiltered by severity or region. The spread reflects
// what treatment could cost, not what this plan selected.
func costRangeFor(profile *knowledge.PestProfile) models.CostRange {
	var costs []float64
	for _, c := range profile.Chemicals {
		costs = append(costs, c.CostPerHectare)
	}
	for _, o := range profile.Organics {
		costs = append(costs, o.CostPerHectare)
	}
	if len(costs) == 0 {
		return defaultCostRange
	}

	r := models.CostRange{Min: costs[0], Max: costs[0]}
	for _, c := range costs[1:] {
		if c < r.Min {
			r.Min = c
		}
		if c > r.Max {
			r.Max = c
		}
	}
	return r
}

// recommend applies the fixed decision ladder, evaluated in order.
func recommend(severity models.SeverityLevel, revenueLoss, avgCost float64) string {
	switch {
	case severity.IsEmergency():
		return "Treat immediately - economic threshold exceeded"
	case revenueLoss > avgCost*2:
		return "Treat soon - significant economic benefit expected"
	case revenueLoss > avgCost:
		return "Treatment economically justified"
	default:
		return "Monitor closely - economic threshold not yet met"
	}
}
