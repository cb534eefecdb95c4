// Package knowledge holds the static reference tables the diagnostic
// engine reads: per-pest severity thresholds, yield-loss factors,
// chemical and organic treatments, cultural practices, lifecycle data,
// and weather preferences.
//
// The tables are parsed once at process start from the embedded YAML
// and are immutable afterwards: every lookup returns data by value or
// from read-only slices, so any number of concurrent diagnoses can
// share one Base with no coordination.
package knowledge

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"

	"github.com/agrosage/agrosage/diagnostic-plane/pkg/models"
	"gopkg.in/yaml.v3"
)

//go:embed data/pests.yaml
var embeddedTables []byte

// SeverityThresholds are the pest-specific ascending boundaries for
// the four-level assessment. Lesion coverage at or below LowMax is
// Low, at or below MediumMax is Medium, at or below HighMax is High,
// and anything beyond is Critical.
type SeverityThresholds struct {
	LowMax    float64 `yaml:"low_max" json:"low_max"`
	MediumMax float64 `yaml:"medium_max" json:"medium_max"`
	HighMax   float64 `yaml:"high_max" json:"high_max"`
}

// LifecycleStage is one stage of a pest's development cycle.
type LifecycleStage struct {
	Name string `yaml:"name" json:"name"`
	Days int    `yaml:"days" json:"days"`
}

// Lifecycle describes a pest's development cycle. The IPM scheduler
// does not consult it, since the milestone template is a fixed
// business rule, but it is served on the pest detail endpoint.
type Lifecycle struct {
	Stages           []LifecycleStage `yaml:"stages" json:"stages"`
	TotalCycleDays   int              `yaml:"total_cycle_days" json:"total_cycle_days"`
	VulnerableStages []string         `yaml:"vulnerable_stages" json:"vulnerable_stages"`
	PeakDamageStage  string           `yaml:"peak_damage_stage" json:"peak_damage_stage"`
}

// WeatherPreferences are the conditions under which a pest thrives.
type WeatherPreferences struct {
	TempMin            float64 `yaml:"optimal_temp_min" json:"optimal_temp_min"`
	TempMax            float64 `yaml:"optimal_temp_max" json:"optimal_temp_max"`
	HumidityMin        float64 `yaml:"optimal_humidity_min" json:"optimal_humidity_min"`
	HumidityMax        float64 `yaml:"optimal_humidity_max" json:"optimal_humidity_max"`
	RainfallPreference string  `yaml:"rainfall_preference" json:"rainfall_preference"`
	WindSensitivity    string  `yaml:"wind_sensitivity" json:"wind_sensitivity"`
}

// PestProfile is the complete knowledge record for one pest or
// disease.
type PestProfile struct {
	Name              string                           `yaml:"name" json:"name"`
	Evidence          []string                         `yaml:"evidence" json:"evidence"`
	Thresholds        SeverityThresholds               `yaml:"thresholds" json:"thresholds"`
	YieldLoss         map[models.SeverityLevel]float64 `yaml:"yield_loss" json:"yield_loss"`
	Lifecycle         Lifecycle                        `yaml:"lifecycle" json:"lifecycle"`
	Weather           WeatherPreferences               `yaml:"weather" json:"weather"`
	Chemicals         []models.ChemicalTreatment       `yaml:"chemicals" json:"chemicals"`
	Organics          []models.OrganicTreatment        `yaml:"organics" json:"organics"`
	CulturalPractices []string                         `yaml:"cultural_practices" json:"cultural_practices"`
}

// Base is the loaded, immutable knowledge base. Construct it once via
// Load (or Parse in tests) and inject it wherever lookups are needed.
type Base struct {
	profiles    map[string]*PestProfile // keyed by lowercased name
	names       []string                // display names, sorted
	defaultName string
}

type tablesFile struct {
	DefaultProfile string        `yaml:"default_profile"`
	Pests          []PestProfile `yaml:"pests"`
}

// Load parses the embedded knowledge tables.
func Load() (*Base, error) {
	return Parse(embeddedTables)
}

// Parse builds a Base from raw YAML. Exposed so tests can substitute
// alternate knowledge bases without touching engine code.
func Parse(raw []byte) (*Base, error) {
	var f tablesFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse knowledge tables: %w", err)
	}
	if len(f.Pests) == 0 {
		return nil, fmt.Errorf("knowledge tables contain no pests")
	}

	b := &Base{
		profiles:    make(map[string]*PestProfile, len(f.Pests)),
		defaultName: f.DefaultProfile,
	}
	for i := range f.Pests {
		p := &f.Pests[i]
		if err := validateProfile(p); err != nil {
			return nil, fmt.Errorf("profile %q: %w", p.Name, err)
		}
		b.profiles[strings.ToLower(p.Name)] = p
		b.names = append(b.names, p.Name)
	}
	sort.Strings(b.names)

	if _, ok := b.profiles[strings.ToLower(f.DefaultProfile)]; !ok {
		return nil, fmt.Errorf("default profile %q not present in tables", f.DefaultProfile)
	}
	return b, nil
}

// validateProfile enforces table sanity at load time so the engine can
// assume it downstream: ascending thresholds, all four yield-loss
// levels, and at least one fallback treatment method.
func validateProfile(p *PestProfile) error {
	if p.Name == "" {
		return fmt.Errorf("missing name")
	}
	t := p.Thresholds
	if !(t.LowMax < t.MediumMax && t.MediumMax < t.HighMax) {
		return fmt.Errorf("thresholds not strictly ascending: %+v", t)
	}
	for _, lvl := range []models.SeverityLevel{models.SeverityLow, models.SeverityMedium, models.SeverityHigh, models.SeverityCritical} {
		if _, ok := p.YieldLoss[lvl]; !ok {
			return fmt.Errorf("yield_loss missing level %s", lvl)
		}
	}
	if len(p.Organics) == 0 && len(p.Chemicals) == 0 {
		return fmt.Errorf("no treatment methods")
	}
	return nil
}

// Pests returns the sorted display names of all tabulated pests.
func (b *Base) Pests() []string {
	out := make([]string, len(b.names))
	copy(out, b.names)
	return out
}

// Profile looks up a pest by name, case-insensitively. The boolean is
// false when the pest is not tabulated.
func (b *Base) Profile(name string) (*PestProfile, bool) {
	p, ok := b.profiles[strings.ToLower(strings.TrimSpace(name))]
	return p, ok
}

// ProfileOrDefault resolves a pest name to its profile, falling back
// to the explicit generic profile for unrecognized pests. The boolean
// reports whether the exact pest was found; callers surface the
// fallback rather than hiding it.
func (b *Base) ProfileOrDefault(name string) (*PestProfile, bool) {
	if p, ok := b.Profile(name); ok {
		return p, true
	}
	p, _ := b.Profile(b.defaultName)
	return p, false
}

// DefaultProfileName returns the name of the generic fallback profile.
func (b *Base) DefaultProfileName() string { return b.defaultName }
