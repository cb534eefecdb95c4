// Package models defines the shared domain types for the AgroSage
// diagnostic plane: detection records coming in from the vision
// provider, the knowledge-table treatment records, and the assembled
// diagnostic report going out to API consumers.
//
// All types here are plain data. Derived entities (assessments, plans,
// reports) are built once by the diagnosis engine and never mutated
// afterwards.
package models

import (
	"fmt"
	"strings"
	"time"
)

// ── Severity ─────────────────────────────────────────────────

// SeverityLevel is the canonical four-level severity vocabulary used
// across the whole plane. The quick stage-band classifier in the
// scoring package only ever emits Low/Medium/High; the pest-specific
// assessment used for report assembly can additionally emit Critical.
type SeverityLevel string

const (
	SeverityLow      SeverityLevel = "Low"
	SeverityMedium   SeverityLevel = "Medium"
	SeverityHigh     SeverityLevel = "High"
	SeverityCritical SeverityLevel = "Critical"
)

// Rank returns the ordinal position used for threshold and eligibility
// comparisons (Low < Medium < High < Critical). Unknown levels rank as
// Medium, matching the treatment tables' default gate.
func (s SeverityLevel) Rank() int {
	switch s {
	case SeverityLow:
		return 1
	case SeverityMedium:
		return 2
	case SeverityHigh:
		return 3
	case SeverityCritical:
		return 4
	default:
		return 2
	}
}

// IsEmergency reports whether the level triggers emergency handling
// (day-1 chemical application, emergency action list, follow-up dose).
func (s SeverityLevel) IsEmergency() bool {
	return s == SeverityHigh || s == SeverityCritical
}

// ParseSeverityLevel converts a severity string to a SeverityLevel.
func ParseSeverityLevel(s string) (SeverityLevel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low":
		return SeverityLow, nil
	case "medium", "moderate":
		return SeverityMedium, nil
	case "high":
		return SeverityHigh, nil
	case "critical":
		return SeverityCritical, nil
	default:
		return "", &InvalidInputError{Field: "severity", Reason: fmt.Sprintf("unknown severity level %q", s)}
	}
}

// ProgressionRate labels how quickly an infestation is expected to
// spread under current weather.
type ProgressionRate string

const (
	ProgressionSlow     ProgressionRate = "Slow"
	ProgressionModerate ProgressionRate = "Moderate"
	ProgressionRapid    ProgressionRate = "Rapid"
)

// ── Growth stage ─────────────────────────────────────────────

// GrowthStage is the crop growth stage at detection time. Severity
// thresholds depend on it, so an unrecognized stage is an input error,
// never a guessed default.
type GrowthStage string

const (
	StageGermination GrowthStage = "Germination"
	StageVegetative  GrowthStage = "Vegetative"
	StageFlowering   GrowthStage = "Flowering"
	StageFruiting    GrowthStage = "Fruiting"
	StageMaturity    GrowthStage = "Maturity"
)

// stageAliases maps the free-text stage labels that vision providers
// emit onto the enumerated stages. Matching is case-insensitive and
// whitespace-trimmed.
var stageAliases = map[string]GrowthStage{
	"germination":       StageGermination,
	"seedling":          StageGermination,
	"vegetative":        StageVegetative,
	"early flowering":   StageFlowering,
	"flowering":         StageFlowering,
	"fruit set":         StageFruiting,
	"fruiting":          StageFruiting,
	"fruit development": StageFruiting,
	"mature":            StageMaturity,
	"maturity":          StageMaturity,
	"pre-harvest":       StageMaturity,
}

// ParseGrowthStage normalizes a stage label at the input boundary.
// Unknown labels return an InvalidInputError.
func ParseGrowthStage(s string) (GrowthStage, error) {
	if stage, ok := stageAliases[strings.ToLower(strings.TrimSpace(s))]; ok {
		return stage, nil
	}
	return "", &InvalidInputError{Field: "growth_stage", Reason: fmt.Sprintf("unknown growth stage %q", s)}
}

// IsCritical reports whether damage during this stage is amplified
// when assessing severity (flowering and fruiting crops lose yield
// fastest).
func (g GrowthStage) IsCritical() bool {
	return g == StageFlowering || g == StageFruiting
}

// ── Treatment strategy ───────────────────────────────────────

// TreatmentType is the primary intervention strategy of a plan.
type TreatmentType string

const (
	TreatmentOrganic    TreatmentType = "Organic"
	TreatmentChemical   TreatmentType = "Chemical"
	TreatmentBiological TreatmentType = "Biological"
	TreatmentCultural   TreatmentType = "Cultural"
	TreatmentMechanical TreatmentType = "Mechanical"
)

// ── Detection (input) ────────────────────────────────────────

// rangeTolerance absorbs floating-point drift on confidence and
// percentage inputs. Values within the tolerance are clamped; values
// beyond it are rejected as malformed input.
const rangeTolerance = 1e-6

// Detection is the input record supplied by the vision provider and
// the request layer. The engine treats it as already resolved: no I/O
// happens after a Detection exists.
type Detection struct {
	PestName            string      `json:"pest_name" validate:"required"`
	RawConfidence       float64     `json:"raw_confidence"`
	LesionPct           float64     `json:"lesion_pct"`
	GrowthStage         GrowthStage `json:"growth_stage" validate:"required"`
	CropType            string      `json:"crop_type" validate:"required"`
	CropValuePerHectare float64     `json:"crop_value_per_hectare" validate:"gte=0"`
	Location            string      `json:"location"`
	Region              string      `json:"region" validate:"required"`
	Symptoms            []string    `json:"symptoms"`
	DetectedAt          time.Time   `json:"detected_at"`
}

// Normalize clamps confidence and lesion percentage to their ranges.
// Drift within tolerance is absorbed silently; anything further out is
// an InvalidInputError: out-of-range inputs indicate a broken caller,
// not noise.
func (d *Detection) Normalize() error {
	var err error
	if d.RawConfidence, err = clampRange(d.RawConfidence, 0, 1, "raw_confidence"); err != nil {
		return err
	}
	if d.LesionPct, err = clampRange(d.LesionPct, 0, 100, "lesion_pct"); err != nil {
		return err
	}
	if d.DetectedAt.IsZero() {
		d.DetectedAt = time.Now().UTC()
	}
	return nil
}

func clampRange(v, lo, hi float64, field string) (float64, error) {
	if v < lo-rangeTolerance || v > hi+rangeTolerance {
		return 0, &InvalidInputError{
			Field:  field,
			Reason: fmt.Sprintf("%g outside [%g, %g]", v, lo, hi),
		}
	}
	if v < lo {
		return lo, nil
	}
	if v > hi {
		return hi, nil
	}
	return v, nil
}

// ── Severity assessment ──────────────────────────────────────

// SeverityAssessment is the derived severity verdict attached to a
// report. Built once by the engine; not mutated afterwards.
type SeverityAssessment struct {
	Level           SeverityLevel   `json:"level" validate:"required"`
	AffectedAreaPct float64         `json:"affected_area_pct" validate:"gte=0,lte=100"`
	Confidence      float64         `json:"confidence" validate:"gte=0,lte=1"`
	RiskFactors     []string        `json:"risk_factors"`
	ProgressionRate ProgressionRate `json:"progression_rate"`
	Reasoning       string          `json:"reasoning"`
}

// ── Treatment records (knowledge-table sourced) ──────────────

// ChemicalTreatment is an immutable reference record from the
// knowledge tables. SeverityThreshold is the minimum severity at which
// the product becomes eligible; ApprovedRegions gates it by geography.
type ChemicalTreatment struct {
	ProductName       string        `json:"product_name" yaml:"product_name"`
	ActiveIngredient  string        `json:"active_ingredient" yaml:"active_ingredient"`
	Dosage            string        `json:"dosage" yaml:"dosage"`
	ApplicationMethod string        `json:"application_method" yaml:"application_method"`
	REIHours          int           `json:"rei_hours" yaml:"rei_hours"`
	PHIDays           int           `json:"phi_days" yaml:"phi_days"`
	PPERequired       []string      `json:"ppe_required" yaml:"ppe_required"`
	CostPerHectare    float64       `json:"cost_per_hectare" yaml:"cost_per_hectare"`
	ApprovedRegions   []string      `json:"approved_regions" yaml:"approved_regions"`
	ToxicityClass     string        `json:"toxicity_class" yaml:"toxicity_class"`
	SeverityThreshold SeverityLevel `json:"severity_threshold" yaml:"severity_threshold"`
}

// ApprovedIn reports whether the product is approved for a region.
func (c ChemicalTreatment) ApprovedIn(region string) bool {
	for _, r := range c.ApprovedRegions {
		if strings.EqualFold(r, region) {
			return true
		}
	}
	return false
}

// OrganicTreatment is an immutable organic/biological method record.
// Organic methods are considered universally safe and are never
// filtered by severity or region.
type OrganicTreatment struct {
	MethodName          string   `json:"method_name" yaml:"method_name"`
	Materials           []string `json:"materials" yaml:"materials"`
	PreparationSteps    []string `json:"preparation_steps" yaml:"preparation_steps"`
	ApplicationMethod   string   `json:"application_method" yaml:"application_method"`
	EffectivenessRating float64  `json:"effectiveness_rating" yaml:"effectiveness_rating"`
	CostPerHectare      float64  `json:"cost_per_hectare" yaml:"cost_per_hectare"`
	CompanionPlants     []string `json:"companion_plants,omitempty" yaml:"companion_plants,omitempty"`
}

// ── Treatment plan ───────────────────────────────────────────

// ScheduledAction is one milestone on the IPM timeline. Day offsets
// are relative to diagnosis day 0 and form a sparse set of milestones,
// not a contiguous range.
type ScheduledAction struct {
	Day           int      `json:"day" validate:"gte=0"`
	ActionType    string   `json:"action_type" validate:"required"`
	Description   string   `json:"description"`
	Materials     []string `json:"materials"`
	EstimatedCost float64  `json:"estimated_cost" validate:"gte=0"`
}

// TreatmentPlan aggregates every intervention recommended for the
// diagnosis. Invariant: ChemicalOptions and OrganicOptions are never
// both empty; the engine refuses to emit a plan with no actionable
// option.
type TreatmentPlan struct {
	PestName           string              `json:"pest_name" validate:"required"`
	Severity           SeverityLevel       `json:"severity" validate:"required"`
	PrimaryStrategy    TreatmentType       `json:"primary_strategy" validate:"required"`
	ChemicalOptions    []ChemicalTreatment `json:"chemical_options"`
	OrganicOptions     []OrganicTreatment  `json:"organic_options"`
	CulturalPractices  []string            `json:"cultural_practices"`
	MonitoringSchedule []string            `json:"monitoring_schedule"`
	Timeline           []ScheduledAction   `json:"timeline" validate:"dive"`
	TotalEstimatedCost float64             `json:"total_estimated_cost" validate:"gte=0"`
}

// HasOptions reports whether at least one actionable treatment exists.
func (p TreatmentPlan) HasOptions() bool {
	return len(p.ChemicalOptions) > 0 || len(p.OrganicOptions) > 0
}

// ── Economic impact ──────────────────────────────────────────

// CostRange is the [min, max] spread over the tabulated treatment
// costs for a pest, per hectare.
type CostRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Avg returns the midpoint used for ROI and break-even math.
func (c CostRange) Avg() float64 { return (c.Min + c.Max) / 2 }

// EconomicImpact quantifies the financial stakes of the diagnosis.
// ROIIfUntreated is the projected loss expressed as a negative
// percentage, not a true return on investment, but kept in the same
// unit so the two numbers compare directly.
type EconomicImpact struct {
	PotentialYieldLossPct float64   `json:"potential_yield_loss_pct"`
	EstimatedRevenueLoss  float64   `json:"estimated_revenue_loss"`
	TreatmentCostRange    CostRange `json:"treatment_cost_range"`
	ROIIfTreated          float64   `json:"roi_if_treated"`
	ROIIfUntreated        float64   `json:"roi_if_untreated"`
	BreakEvenThreshold    float64   `json:"break_even_threshold"`
	Recommendation        string    `json:"recommendation"`
}

// ── Weather context ──────────────────────────────────────────

// WeatherContext records the conditions the assessment was made under
// and whether they favor the identified pest.
type WeatherContext struct {
	Temperature      float64 `json:"temperature"`
	Humidity         float64 `json:"humidity"`
	Rainfall7Day     float64 `json:"rainfall_7day"`
	WindSpeed        float64 `json:"wind_speed"`
	FavorableForPest bool    `json:"favorable_for_pest"`
	RiskLevel        string  `json:"risk_level"`
}

// ── Diagnostic report ────────────────────────────────────────

// DiagnosticReport is the terminal aggregate produced once per
// diagnosis request. It owns all of its derived entities exclusively
// and has no further lifecycle: no update, no delete.
type DiagnosticReport struct {
	ID               string             `json:"id" validate:"required"`
	Timestamp        time.Time          `json:"timestamp" validate:"required"`
	Input            Detection          `json:"input"`
	Severity         SeverityAssessment `json:"severity"`
	TreatmentPlan    TreatmentPlan      `json:"treatment_plan"`
	EconomicImpact   EconomicImpact     `json:"economic_impact"`
	WeatherContext   WeatherContext     `json:"weather_context"`
	EmergencyActions []string           `json:"emergency_actions,omitempty"`
	FollowUpSchedule []string           `json:"follow_up_schedule"`
	ConfidenceNotes  string             `json:"confidence_notes"`
}
