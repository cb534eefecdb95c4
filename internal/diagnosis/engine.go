// Package diagnosis implements the report assembly pipeline.
//
// The engine is a pure orchestrator over the scoring, treatment,
// schedule, and economics packages:
//
//	normalize detection → resolve pest profile → recompute confidence →
//	assess severity → weather risk + progression → select treatments →
//	build IPM timeline → estimate economics → assemble report
//
// No I/O happens here. Vision and weather resolution belong to the API
// layer; the engine receives already-resolved values, so the same
// inputs always produce the same report (modulo ID and timestamps).
package diagnosis

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/agrosage/agrosage/diagnostic-plane/internal/economics"
	"github.com/agrosage/agrosage/diagnostic-plane/internal/knowledge"
	"github.com/agrosage/agrosage/diagnostic-plane/internal/schedule"
	"github.com/agrosage/agrosage/diagnostic-plane/internal/scoring"
	"github.com/agrosage/agrosage/diagnostic-plane/internal/treatment"
	"github.com/agrosage/agrosage/diagnostic-plane/internal/weather"
	"github.com/agrosage/agrosage/diagnostic-plane/pkg/models"
)

var tracer = otel.Tracer("agrosage-diagnostic-plane")

// labConfirmationFloor is the confidence below which the report advises
// laboratory confirmation.
const labConfirmationFloor = 0.75

// Engine assembles diagnostic reports from resolved detections and
// weather observations. Safe for concurrent use: all state is the
// immutable knowledge base.
type Engine struct {
	kb       *knowledge.Base
	validate *validator.Validate
}

// NewEngine creates a diagnosis engine over the given knowledge base.
func NewEngine(kb *knowledge.Base) *Engine {
	return &Engine{
		kb:       kb,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// Diagnose runs the full pipeline and returns the assembled report.
//
// The detection is normalized in place before use. Unknown pests fall
// back to the generic profile and carry an explanatory risk factor
// rather than failing. A plan with no actionable treatment at all is
// an EmptyTreatmentSetError: the engine refuses to emit a report that
// recommends nothing.
func (e *Engine) Diagnose(ctx context.Context, det models.Detection, obs weather.Observation) (*models.DiagnosticReport, error) {
	_, span := tracer.Start(ctx, "diagnosis.Diagnose")
	defer span.End()

	if err := det.Normalize(); err != nil {
		return nil, err
	}

	profile, known := e.kb.ProfileOrDefault(det.PestName)
	span.SetAttributes(
		attribute.String("pest.name", det.PestName),
		attribute.Bool("pest.known", known),
	)

	confidence, err := scoring.Confidence(det.RawConfidence, det.Symptoms, profile.Evidence)
	if err != nil {
		return nil, fmt.Errorf("score confidence: %w", err)
	}

	severity, riskFactors := scoring.AssessSeverity(det.LesionPct, confidence, det.GrowthStage, profile.Thresholds)
	if !known {
		riskFactors = append(riskFactors, fmt.Sprintf("Unrecognized pest %q - generic management profile applied", det.PestName))
	}

	weatherCtx := scoring.AssessWeatherRisk(profile.Weather, obs)
	progression := scoring.ProgressionRate(profile.Weather, obs, severity)

	assessment := models.SeverityAssessment{
		Level:           severity,
		AffectedAreaPct: det.LesionPct,
		Confidence:      confidence,
		RiskFactors:     riskFactors,
		ProgressionRate: progression,
		Reasoning: fmt.Sprintf("Based on %.1f%% affected area at %s stage, classified as %s. Weather conditions are %s risk for %s.",
			det.LesionPct, det.GrowthStage, severity, weatherCtx.RiskLevel, profile.Name),
	}

	sel := treatment.Select(profile, severity, det.Region)
	if len(sel.Chemicals) == 0 && len(sel.Organics) == 0 {
		return nil, &models.EmptyTreatmentSetError{
			PestName: profile.Name,
			Severity: severity,
			Region:   det.Region,
		}
	}

	plan := models.TreatmentPlan{
		PestName:          profile.Name,
		Severity:          severity,
		PrimaryStrategy:   primaryStrategy(severity),
		ChemicalOptions:   sel.Chemicals,
		OrganicOptions:    sel.Organics,
		CulturalPractices: sel.CulturalPractices,
		MonitoringSchedule: []string{
			"Daily scouting for 7 days",
			"Weekly monitoring for 3 weeks",
			"Record pest counts and damage levels",
		},
		TotalEstimatedCost: sel.MinCost(),
	}
	preferOrganic := !severity.IsEmergency()
	plan.Timeline = schedule.Build(profile.Name, severity, plan, preferOrganic)

	impact := economics.Estimate(profile, severity, det.CropValuePerHectare, det.LesionPct)

	report := &models.DiagnosticReport{
		ID:               newReportID(det.DetectedAt),
		Timestamp:        time.Now().UTC(),
		Input:            det,
		Severity:         assessment,
		TreatmentPlan:    plan,
		EconomicImpact:   impact,
		WeatherContext:   weatherCtx,
		EmergencyActions: emergencyActions(severity, profile.Name),
		FollowUpSchedule: followUpSchedule(),
		ConfidenceNotes:  confidenceNotes(confidence),
	}

	if err := e.validate.Struct(report); err != nil {
		return nil, fmt.Errorf("assembled report failed validation: %w", err)
	}

	span.SetAttributes(
		attribute.String("report.id", report.ID),
		attribute.String("severity.level", string(severity)),
		attribute.Float64("confidence", confidence),
	)
	log.Info().
		Str("report_id", report.ID).
		Str("pest", profile.Name).
		Str("severity", string(severity)).
		Float64("confidence", confidence).
		Str("progression", string(progression)).
		Msg("diagnostic report assembled")

	return report, nil
}

// newReportID formats the external report identifier. The date portion
// reflects the detection day so reports group naturally.
func newReportID(at time.Time) string {
	return fmt.Sprintf("DIAG-%s-%s", at.UTC().Format("20060102"), uuid.New().String()[:8])
}

// primaryStrategy picks the headline intervention type. Low severity
// leads with organics; anything above starts with chemicals.
func primaryStrategy(severity models.SeverityLevel) models.TreatmentType {
	if severity == models.SeverityLow {
		return models.TreatmentOrganic
	}
	return models.TreatmentChemical
}

func emergencyActions(severity models.SeverityLevel, pestName string) []string {
	if !severity.IsEmergency() {
		return nil
	}
	return []string{
		"Immediately isolate affected area to prevent spread",
		"Begin treatment within 24 hours",
		fmt.Sprintf("Notify neighboring farmers if %s is quarantine pest", pestName),
		"Document damage with photos for insurance purposes",
	}
}

func followUpSchedule() []string {
	return []string{
		"Day 3: Check treatment efficacy",
		"Day 7: First detailed assessment",
		"Day 14: Second treatment if needed",
		"Day 21: Final evaluation and preventive planning",
	}
}

func confidenceNotes(confidence float64) string {
	notes := fmt.Sprintf("Detection confidence: %.1f%%. ", confidence*100)
	if confidence < labConfirmationFloor {
		return notes + "Recommend laboratory confirmation for definitive diagnosis."
	}
	return notes + "High confidence - proceed with recommended treatments."
}
