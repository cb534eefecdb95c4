package diagnosis

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agrosage/agrosage/diagnostic-plane/internal/knowledge"
	"github.com/agrosage/agrosage/diagnostic-plane/internal/weather"
	"github.com/agrosage/agrosage/diagnostic-plane/pkg/models"
)

// Nagpur scenario: inside Fall Armyworm's optimal temperature and
// humidity bands, light rainfall.
var nagpur = weather.Observation{Temperature: 28.5, Humidity: 75.0, Rainfall7Day: 15.2, WindSpeed: 8.5}

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	kb, err := knowledge.Load()
	require.NoError(t, err)
	return NewEngine(kb)
}

func fawDetection() models.Detection {
	return models.Detection{
		PestName:            "Fall Armyworm",
		RawConfidence:       0.90,
		LesionPct:           18.5,
		GrowthStage:         models.StageVegetative,
		CropType:            "Maize",
		CropValuePerHectare: 150000,
		Location:            "Nagpur, India",
		Region:              "India",
		Symptoms:            []string{"ragged leaf holes", "frass deposits", "window-pane feeding"},
		DetectedAt:          time.Date(2026, 8, 20, 6, 30, 0, 0, time.UTC),
	}
}

func TestDiagnoseKnownPest(t *testing.T) {
	engine := newTestEngine(t)
	report, err := engine.Diagnose(context.Background(), fawDetection(), nagpur)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(report.ID, "DIAG-20260820-"), "ID = %s", report.ID)
	assert.Len(t, report.ID, len("DIAG-20260820-")+8)

	// Confidence: 0.90 × 0.70 + full evidence × 0.30.
	assert.InDelta(t, 0.93, report.Severity.Confidence, 1e-9)
	assert.Equal(t, models.SeverityMedium, report.Severity.Level)
	assert.Equal(t, models.ProgressionModerate, report.Severity.ProgressionRate)
	assert.Contains(t, report.Severity.Reasoning, "classified as Medium")

	// Medium severity: Spinosad (High gate) stays out.
	assert.Equal(t, models.TreatmentChemical, report.TreatmentPlan.PrimaryStrategy)
	assert.Len(t, report.TreatmentPlan.ChemicalOptions, 2)
	assert.Len(t, report.TreatmentPlan.OrganicOptions, 3)
	assert.InDelta(t, 850, report.TreatmentPlan.TotalEstimatedCost, 1e-9)
	require.NotEmpty(t, report.TreatmentPlan.Timeline)
	assert.Equal(t, 0, report.TreatmentPlan.Timeline[0].Day)

	// Optimal conditions without heavy rain for a moderate-rain pest.
	assert.True(t, report.WeatherContext.FavorableForPest)
	assert.Equal(t, "High", report.WeatherContext.RiskLevel)

	assert.InDelta(t, 4.625, report.EconomicImpact.PotentialYieldLossPct, 1e-9)
	assert.InDelta(t, 6937.5, report.EconomicImpact.EstimatedRevenueLoss, 1e-9)

	assert.Empty(t, report.EmergencyActions, "no emergency actions below High")
	assert.Len(t, report.FollowUpSchedule, 4)
	assert.Contains(t, report.ConfidenceNotes, "High confidence")
}

func TestDiagnoseEmergencySeverity(t *testing.T) {
	engine := newTestEngine(t)
	det := fawDetection()
	det.LesionPct = 45
	det.GrowthStage = models.StageFlowering // 45 × 1.3 = 58.5, still High

	report, err := engine.Diagnose(context.Background(), det, nagpur)
	require.NoError(t, err)

	assert.Equal(t, models.SeverityHigh, report.Severity.Level)
	require.Len(t, report.EmergencyActions, 4)
	assert.Contains(t, report.EmergencyActions[2], "Fall Armyworm")

	// Emergency plans lead with chemicals on day 1 and schedule the
	// day-14 follow-up dose.
	var hasEmergencyChemical, hasFollowUp bool
	for _, a := range report.TreatmentPlan.Timeline {
		if a.ActionType == "Chemical Application (Emergency)" && a.Day == 1 {
			hasEmergencyChemical = true
		}
		if a.ActionType == "Follow-up Treatment" && a.Day == 14 {
			hasFollowUp = true
		}
	}
	assert.True(t, hasEmergencyChemical)
	assert.True(t, hasFollowUp)

	// Optimal weather plus emergency pressure: rapid spread.
	assert.Equal(t, models.ProgressionRapid, report.Severity.ProgressionRate)
	assert.True(t, strings.HasPrefix(report.EconomicImpact.Recommendation, "Treat immediately"))
}

func TestDiagnoseUnknownPestFallsBack(t *testing.T) {
	engine := newTestEngine(t)
	det := fawDetection()
	det.PestName = "Martian Leaf Weevil"
	det.Symptoms = []string{"visible lesions", "discoloration"}

	report, err := engine.Diagnose(context.Background(), det, nagpur)
	require.NoError(t, err)

	assert.Equal(t, "generic", report.TreatmentPlan.PestName)
	assert.Equal(t, "Martian Leaf Weevil", report.Input.PestName, "original detection preserved")
	assert.Empty(t, report.TreatmentPlan.ChemicalOptions, "no chemical for an unidentified organism")
	assert.NotEmpty(t, report.TreatmentPlan.OrganicOptions)

	var flagged bool
	for _, rf := range report.Severity.RiskFactors {
		if strings.Contains(rf, "Martian Leaf Weevil") {
			flagged = true
		}
	}
	assert.True(t, flagged, "fallback must surface as a risk factor: %v", report.Severity.RiskFactors)

	// 2 of 3 generic evidence items: 0.90 × 0.70 + (2/3) × 0.30.
	assert.InDelta(t, 0.83, report.Severity.Confidence, 1e-9)
}

func TestDiagnoseLowConfidenceAdvisesLab(t *testing.T) {
	engine := newTestEngine(t)
	det := fawDetection()
	det.RawConfidence = 0.55
	det.Symptoms = []string{"ragged leaf holes"} // 0.55×0.7 + (1/3)×0.3 = 0.485

	report, err := engine.Diagnose(context.Background(), det, nagpur)
	require.NoError(t, err)

	assert.Contains(t, report.ConfidenceNotes, "laboratory confirmation")
	assert.Contains(t, report.Severity.RiskFactors[0], "Low detection confidence")
}

func TestDiagnoseEmptyTreatmentSet(t *testing.T) {
	kb, err := knowledge.Parse([]byte(`
default_profile: Test Blight
pests:
  - name: Test Blight
    evidence: [spots]
    thresholds: {low_max: 10, medium_max: 30, high_max: 60}
    yield_loss: {Low: 0.1, Medium: 0.2, High: 0.3, Critical: 0.4}
    weather: {optimal_temp_min: 20, optimal_temp_max: 30, optimal_humidity_min: 50, optimal_humidity_max: 80}
    chemicals:
      - product_name: RegionLocked
        cost_per_hectare: 100
        approved_regions: [India]
        severity_threshold: Low
`))
	require.NoError(t, err)
	engine := NewEngine(kb)

	det := fawDetection()
	det.PestName = "Test Blight"
	det.Region = "Atlantis"

	_, err = engine.Diagnose(context.Background(), det, nagpur)
	var emptyErr *models.EmptyTreatmentSetError
	require.ErrorAs(t, err, &emptyErr)
	assert.Equal(t, "Test Blight", emptyErr.PestName)
	assert.Equal(t, "Atlantis", emptyErr.Region)
}

func TestDiagnoseInvalidInput(t *testing.T) {
	engine := newTestEngine(t)

	det := fawDetection()
	det.RawConfidence = 1.7
	_, err := engine.Diagnose(context.Background(), det, nagpur)
	var invalidErr *models.InvalidInputError
	require.ErrorAs(t, err, &invalidErr)
	assert.Equal(t, "raw_confidence", invalidErr.Field)

	det = fawDetection()
	det.LesionPct = 140
	_, err = engine.Diagnose(context.Background(), det, nagpur)
	require.ErrorAs(t, err, &invalidErr)
	assert.Equal(t, "lesion_pct", invalidErr.Field)
}

func TestDiagnoseDeterministicScores(t *testing.T) {
	engine := newTestEngine(t)

	first, err := engine.Diagnose(context.Background(), fawDetection(), nagpur)
	require.NoError(t, err)
	second, err := engine.Diagnose(context.Background(), fawDetection(), nagpur)
	require.NoError(t, err)

	// IDs and timestamps differ; every derived number must not.
	assert.Equal(t, first.Severity.Level, second.Severity.Level)
	assert.Equal(t, first.Severity.Confidence, second.Severity.Confidence)
	assert.Equal(t, first.TreatmentPlan.TotalEstimatedCost, second.TreatmentPlan.TotalEstimatedCost)
	assert.Equal(t, first.EconomicImpact, second.EconomicImpact)
	assert.NotEqual(t, first.ID, second.ID)
}
