package schedule

import (
	"testing"

	"github.com/agrosage/agrosage/diagnostic-plane/pkg/models"
)

func emergencyPlan() models.TreatmentPlan {
	return models.TreatmentPlan{
		PestName: "Fall Armyworm",
		Severity: models.SeverityHigh,
		ChemicalOptions: []models.ChemicalTreatment{
			{ProductName: "Emamectin Benzoate 5% SG", CostPerHectare: 850},
		},
		OrganicOptions: []models.OrganicTreatment{
			{MethodName: "Neem Oil Spray", CostPerHectare: 450, Materials: []string{"Neem oil (5 mL/L)"}},
			{MethodName: "Trichogramma Wasp Release", CostPerHectare: 800, Materials: []string{"Trichogramma cards"}},
		},
		CulturalPractices:  []string{"Remove egg masses", "Deep plowing", "Pheromone traps"},
		TotalEstimatedCost: 850,
	}
}

func days(actions []models.ScheduledAction) []int {
	out := make([]int, len(actions))
	for i, a := range actions {
		out[i] = a.Day
	}
	return out
}

func findAction(t *testing.T, actions []models.ScheduledAction, actionType string) models.ScheduledAction {
	t.Helper()
	for _, a := range actions {
		if a.ActionType == actionType {
			return a
		}
	}
	t.Fatalf("no action of type %q in %v", actionType, actions)
	return models.ScheduledAction{}
}

func TestBuildEmergencyTimeline(t *testing.T) {
	plan := emergencyPlan()
	timeline := Build("Fall Armyworm", models.SeverityHigh, plan, false)

	want := []int{0, 1, 3, 7, 10, 14, 21}
	got := days(timeline)
	if len(got) != len(want) {
		t.Fatalf("days = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("days = %v, want %v", got, want)
		}
	}

	chem := findAction(t, timeline, "Chemical Application (Emergency)")
	if chem.Day != 1 || chem.EstimatedCost != 850 {
		t.Errorf("emergency chemical on day %d at cost %v, want day 1 at 850", chem.Day, chem.EstimatedCost)
	}

	followUp := findAction(t, timeline, "Follow-up Treatment")
	if followUp.Day != 14 || followUp.EstimatedCost != 425 {
		t.Errorf("follow-up on day %d at cost %v, want day 14 at half the plan total", followUp.Day, followUp.EstimatedCost)
	}

	bio := findAction(t, timeline, "Biological Control")
	if bio.Day != 10 || bio.Description != "Trichogramma Wasp Release" {
		t.Errorf("biocontrol = day %d %q, want day 10 Trichogramma Wasp Release", bio.Day, bio.Description)
	}
}

func TestBuildRoutineTimeline(t *testing.T) {
	plan := emergencyPlan()
	plan.Severity = models.SeverityLow
	timeline := Build("Fall Armyworm", models.SeverityLow, plan, true)

	organic := findAction(t, timeline, "Organic Treatment")
	if organic.Day != 1 {
		t.Errorf("organic treatment on day %d, want day 1 at low severity", organic.Day)
	}

	for _, a := range timeline {
		if a.ActionType == "Chemical Application (Emergency)" {
			t.Error("emergency chemical application present at low severity")
		}
		if a.ActionType == "Follow-up Treatment" {
			t.Error("day-14 follow-up present at low severity")
		}
	}

	// Fixed milestones always present.
	findAction(t, timeline, "Assessment & Preparation")
	findAction(t, timeline, "Monitoring")
	findAction(t, timeline, "Final Assessment")
}

func TestBuildBiocontrolGating(t *testing.T) {
	plan := emergencyPlan()

	// Late Blight is not on the biocontrol list, even with a Release
	// method in the options.
	timeline := Build("Late Blight", models.SeverityHigh, plan, false)
	for _, a := range timeline {
		if a.ActionType == "Biological Control" {
			t.Error("biocontrol scheduled for non-eligible pest")
		}
	}

	// Eligible pest without a Release method gets no biocontrol step.
	plan.OrganicOptions = []models.OrganicTreatment{{MethodName: "Neem Oil Spray"}}
	timeline = Build("Aphids", models.SeverityHigh, plan, false)
	for _, a := range timeline {
		if a.ActionType == "Biological Control" {
			t.Error("biocontrol scheduled without a release method")
		}
	}

	// Pest name matching is case-insensitive.
	plan = emergencyPlan()
	timeline = Build("fall armyworm", models.SeverityHigh, plan, false)
	findAction(t, timeline, "Biological Control")
}

func TestBuildCulturalPracticesTruncated(t *testing.T) {
	plan := emergencyPlan()
	timeline := Build("Fall Armyworm", models.SeverityLow, plan, true)

	cultural := findAction(t, timeline, "Cultural Control")
	if cultural.Day != 3 || cultural.EstimatedCost != 200 {
		t.Errorf("cultural control = day %d cost %v, want day 3 cost 200", cultural.Day, cultural.EstimatedCost)
	}
	want := "Implement cultural practices: Remove egg masses, Deep plowing"
	if cultural.Description != want {
		t.Errorf("description = %q, want %q", cultural.Description, want)
	}
}

func TestBuildOrganicDelayedBehindEmergencyKnockdown(t *testing.T) {
	plan := emergencyPlan()
	timeline := Build("Fall Armyworm", models.SeverityCritical, plan, true)

	organic := findAction(t, timeline, "Organic Treatment")
	if organic.Day != 3 {
		t.Errorf("organic treatment on day %d, want day 3 when chemicals lead", organic.Day)
	}
}
