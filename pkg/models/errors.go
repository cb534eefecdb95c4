package models

import "fmt"

// InvalidInputError reports a malformed request value: out-of-range
// confidence or percentage, an empty required-evidence set, or an
// unrecognized growth-stage label. These are surfaced synchronously
// and never retried; they indicate a broken caller, not a transient
// condition.
type InvalidInputError struct {
	Field  string
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid input: %s: %s", e.Field, e.Reason)
}

// EmptyTreatmentSetError is returned when both the organic and the
// chemical candidate lists are empty after filtering. The engine fails
// loudly instead of emitting a plan with no actionable options; the
// API layer translates this into a "consult an expert" response.
type EmptyTreatmentSetError struct {
	PestName string
	Severity SeverityLevel
	Region   string
}

func (e *EmptyTreatmentSetError) Error() string {
	return fmt.Sprintf("no treatment options for %q at severity %s in region %q", e.PestName, e.Severity, e.Region)
}
