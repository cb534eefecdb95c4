package economics

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agrosage/agrosage/diagnostic-plane/internal/knowledge"
	"github.com/agrosage/agrosage/diagnostic-plane/pkg/models"
)

func testProfile() *knowledge.PestProfile {
	return &knowledge.PestProfile{
		Name:      "Fall Armyworm",
		YieldLoss: map[models.SeverityLevel]float64{models.SeverityLow: 0.08, models.SeverityMedium: 0.25, models.SeverityHigh: 0.55, models.SeverityCritical: 0.85},
		Chemicals: []models.ChemicalTreatment{
			{ProductName: "A", CostPerHectare: 850},
			{ProductName: "B", CostPerHectare: 1200},
		},
		Organics: []models.OrganicTreatment{
			{MethodName: "Neem", CostPerHectare: 450},
		},
	}
}

func TestEstimate(t *testing.T) {
	impact := Estimate(testProfile(), models.SeverityMedium, 150000, 18.5)

	// 0.25 base loss scaled by 18.5% affected area.
	assert.InDelta(t, 4.625, impact.PotentialYieldLossPct, 1e-9)
	assert.InDelta(t, 6937.5, impact.EstimatedRevenueLoss, 1e-9)

	// Cost range spans all tabulated treatments, cheapest organic to
	// priciest chemical.
	assert.Equal(t, models.CostRange{Min: 450, Max: 1200}, impact.TreatmentCostRange)

	// avg cost 825; savings 6937.5 × 0.8 = 5550.
	assert.InDelta(t, (5550.0-825.0)/825.0*100, impact.ROIIfTreated, 1e-9)
	assert.InDelta(t, -4.625, impact.ROIIfUntreated, 1e-9)
	assert.InDelta(t, 825.0/(150000*0.80), impact.BreakEvenThreshold, 1e-9)
}

func TestEstimateRecommendationLadder(t *testing.T) {
	profile := testProfile()

	tests := []struct {
		name      string
		severity  models.SeverityLevel
		cropValue float64
		areaPct   float64
		want      string
	}{
		{"high severity always treats", models.SeverityHigh, 1000, 1, "Treat immediately"},
		{"critical severity always treats", models.SeverityCritical, 1000, 1, "Treat immediately"},
		{"large loss treats soon", models.SeverityMedium, 150000, 18.5, "Treat soon"},
		{"moderate loss is justified", models.SeverityMedium, 150000, 3, "Treatment economically justified"},
		{"small loss monitors", models.SeverityLow, 10000, 5, "Monitor closely"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			impact := Estimate(profile, tt.severity, tt.cropValue, tt.areaPct)
			assert.True(t, strings.HasPrefix(impact.Recommendation, tt.want),
				"recommendation %q, want prefix %q", impact.Recommendation, tt.want)
		})
	}
}

func TestEstimateDefaultCostRange(t *testing.T) {
	bare := &knowledge.PestProfile{
		Name:      "Mystery Rot",
		YieldLoss: map[models.SeverityLevel]float64{models.SeverityLow: 0.1, models.SeverityMedium: 0.2, models.SeverityHigh: 0.3, models.SeverityCritical: 0.4},
	}

	impact := Estimate(bare, models.SeverityMedium, 100000, 10)
	require.Equal(t, models.CostRange{Min: 500, Max: 1500}, impact.TreatmentCostRange)
	assert.InDelta(t, 1000.0, impact.TreatmentCostRange.Avg(), 1e-9)
	// ROI math still runs against the default midpoint.
	assert.InDelta(t, (100000*0.02*0.8-1000)/1000*100, impact.ROIIfTreated, 1e-9)
}

func TestEstimateZeroCropValue(t *testing.T) {
	impact := Estimate(testProfile(), models.SeverityMedium, 0, 50)
	assert.Zero(t, impact.EstimatedRevenueLoss)
	assert.Zero(t, impact.BreakEvenThreshold)
	assert.True(t, strings.HasPrefix(impact.Recommendation, "Monitor closely"))
}
