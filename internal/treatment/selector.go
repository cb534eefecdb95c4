// Package treatment filters the knowledge-table treatment records for
// a diagnosis. Selection is a pure function of the pest profile, the
// assessed severity, and the requesting region; calling it twice with
// the same arguments yields identical lists.
package treatment

import (
	"github.com/agrosage/agrosage/diagnostic-plane/internal/knowledge"
	"github.com/agrosage/agrosage/diagnostic-plane/pkg/models"
)

// Selection is the filtered candidate set for one diagnosis.
type Selection struct {
	Chemicals         []models.ChemicalTreatment
	Organics          []models.OrganicTreatment
	CulturalPractices []string
}

// Select returns the treatments applicable at the given severity and
// region.
//
// Chemical entries pass through two independent gates: the entry's
// minimum-severity threshold must rank at or below the current
// severity, and the region must appear in its approved list. An entry
// failing either gate is excluded, never substituted. Organic and
// cultural entries always pass; organic methods are considered
// universally safe.
//
// An empty chemical list is a valid outcome, not an error: callers
// must handle an all-organic plan.
func Select(profile *knowledge.PestProfile, severity models.SeverityLevel, region string) Selection {
	sel := Selection{
		Organics:          append([]models.OrganicTreatment(nil), profile.Organics...),
		CulturalPractices: append([]string(nil), profile.CulturalPractices...),
	}

	rank := severity.Rank()
	for _, chem := range profile.Chemicals {
		if chem.SeverityThreshold.Rank() > rank {
			continue
		}
		if !chem.ApprovedIn(region) {
			continue
		}
		sel.Chemicals = append(sel.Chemicals, chem)
	}
	return sel
}

// MinCost returns the cheapest actionable option across the selection,
// preferring chemicals when any passed the gates (matching the plan's
// primary-strategy costing). Zero when the selection is empty.
func (s Selection) MinCost() float64 {
	if len(s.Chemicals) > 0 {
		min := s.Chemicals[0].CostPerHectare
		for _, c := range s.Chemicals[1:] {
			if c.CostPerHectare < min {
				min = c.CostPerHectare
			}
		}
		return min
	}
	if len(s.Organics) > 0 {
		min := s.Organics[0].CostPerHectare
		for _, o := range s.Organics[1:] {
			if o.CostPerHectare < min {
				min = o.CostPerHectare
			}
		}
		return min
	}
	return 0
}
