// Package schedule builds the IPM (integrated pest management)
// implementation timeline for a treatment plan. Milestones sit on a
// fixed grid of day offsets relative to diagnosis day 0; the grid is
// sparse, not a contiguous range.
package schedule

import (
	"fmt"
	"strings"

	"github.com/agrosage/agrosage/diagnostic-plane/pkg/models"
)

// followUpCostFactor scales the plan total for the day-14 second
// application.
const followUpCostFactor = 0.5

// culturalControlCost is the flat labor estimate for implementing the
// day-3 cultural practices.
const culturalControlCost = 200

// biocontrolPests are the pests with a tabulated beneficial-organism
// release program. Only these get a day-10 biological control step.
var biocontrolPests = map[string]struct{}{
	"fall armyworm": {},
	"aphids":        {},
}

// Build produces the ordered action timeline for a plan.
//
// Fixed milestones: day 0 assessment, day 7 monitoring, and day 21
// final assessment always appear. Day 1 carries an emergency chemical
// application only at High/Critical severity. The first organic option
// lands on day 1 when organics are preferred at Low/Medium severity
// and on day 3 otherwise. Day 10 biological control requires both a
// biocontrol-eligible pest and an organic option whose method name
// contains "Release". Day 14 schedules a half-cost follow-up
// application at High/Critical severity.
func Build(pestName string, severity models.SeverityLevel, plan models.TreatmentPlan, preferOrganic bool) []models.ScheduledAction {
	timeline := []models.ScheduledAction{{
		Day:         0,
		ActionType:  "Assessment & Preparation",
		Description: "Conduct field survey, mark affected areas, procure materials",
		Materials:   []string{"Survey flags", "Notepad", "Camera"},
	}}

	if severity.IsEmergency() && len(plan.ChemicalOptions) > 0 {
		chem := plan.ChemicalOptions[0]
		timeline = append(timeline, models.ScheduledAction{
			Day:           1,
			ActionType:    "Chemical Application (Emergency)",
			Description:   fmt.Sprintf("Apply %s as emergency measure", chem.ProductName),
			Materials:     []string{chem.ProductName, "Sprayer", "PPE", "Water"},
			EstimatedCost: chem.CostPerHectare,
		})
	}

	if preferOrganic && len(plan.OrganicOptions) > 0 {
		organic := plan.OrganicOptions[0]
		organicDay := 1
		if severity.IsEmergency() {
			// Chemical knockdown first, organics follow.
			organicDay = 3
		}
		timeline = append(timeline, models.ScheduledAction{
			Day:           organicDay,
			ActionType:    "Organic Treatment",
			Description:   fmt.Sprintf("Apply %s", organic.MethodName),
			Materials:     organic.Materials,
			EstimatedCost: organic.CostPerHectare,
		})
	}

	timeline = append(timeline, models.ScheduledAction{
		Day:           3,
		ActionType:    "Cultural Control",
		Description:   "Implement cultural practices: " + strings.Join(headPractices(plan.CulturalPractices, 2), ", "),
		Materials:     []string{"Hand tools", "Labor"},
		EstimatedCost: culturalControlCost,
	})

	timeline = append(timeline, models.ScheduledAction{
		Day:         7,
		ActionType:  "Monitoring",
		Description: "Assess treatment effectiveness, scout for re-infestation",
		Materials:   []string{"Monitoring forms", "Hand lens"},
	})

	if biocontrol, ok := biocontrolOption(pestName, plan.OrganicOptions); ok {
		timeline = append(timeline, models.ScheduledAction{
			Day:           10,
			ActionType:    "Biological Control",
			Description:   biocontrol.MethodName,
			Materials:     biocontrol.Materials,
			EstimatedCost: biocontrol.CostPerHectare,
		})
	}

	if severity.IsEmergency() {
		timeline = append(timeline, models.ScheduledAction{
			Day:           14,
			ActionType:    "Follow-up Treatment",
			Description:   "Second application if pest pressure remains high",
			Materials:     []string{"Treatment materials (as per day 1)"},
			EstimatedCost: plan.TotalEstimatedCost * followUpCostFactor,
		})
	}

	timeline = append(timeline, models.ScheduledAction{
		Day:         21,
		ActionType:  "Final Assessment",
		Description: "Evaluate overall control success, plan preventive measures",
		Materials:   []string{"Assessment checklist"},
	})

	return timeline
}

// biocontrolOption returns the first release-based organic method for a
// biocontrol-eligible pest.
func biocontrolOption(pestName string, organics []models.OrganicTreatment) (models.OrganicTreatment, bool) {
	if _, ok := biocontrolPests[strings.ToLower(strings.TrimSpace(pestName))]; !ok {
		return models.OrganicTreatment{}, false
	}
	for _, o := range organics {
		if strings.Contains(o.MethodName, "Release") {
			return o, true
		}
	}
	return models.OrganicTreatment{}, false
}

func headPractices(practices []string, n int) []string {
	if len(practices) <= n {
		return practices
	}
	return practices[:n]
}
