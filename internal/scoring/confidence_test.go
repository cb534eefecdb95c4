package scoring

import (
	"errors"
	"math"
	"testing"

	"github.com/agrosage/agrosage/diagnostic-plane/pkg/models"
)

func TestConfidence(t *testing.T) {
	required := []string{"ragged leaf holes", "frass deposits", "window-pane feeding"}

	tests := []struct {
		name     string
		rawProb  float64
		observed []string
		want     float64
	}{
		{
			name:     "all evidence observed",
			rawProb:  0.90,
			observed: []string{"ragged leaf holes", "frass deposits", "window-pane feeding"},
			want:     0.93,
		},
		{
			name:     "one of three observed",
			rawProb:  0.90,
			observed: []string{"frass deposits"},
			want:     0.73,
		},
		{
			name:     "no evidence observed",
			rawProb:  0.90,
			observed: nil,
			want:     0.63,
		},
		{
			name:     "matching is case and whitespace insensitive",
			rawProb:  0.50,
			observed: []string{"  Ragged Leaf Holes ", "FRASS DEPOSITS", "window-pane feeding"},
			want:     0.65,
		},
		{
			name:     "unrelated symptoms do not count",
			rawProb:  0.80,
			observed: []string{"yellow halo", "stem borers"},
			want:     0.56,
		},
		{
			name:     "duplicate observations count once",
			rawProb:  0.0,
			observed: []string{"frass deposits", "frass deposits", "Frass Deposits"},
			want:     0.10,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Confidence(tt.rawProb, tt.observed, required)
			if err != nil {
				t.Fatalf("Confidence() error = %v", err)
			}
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Confidence() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestConfidenceInvalidInput(t *testing.T) {
	required := []string{"visible lesions"}

	for _, prob := range []float64{-0.1, 1.1} {
		if _, err := Confidence(prob, nil, required); err == nil {
			t.Errorf("Confidence(%v) expected error, got nil", prob)
		}
	}

	_, err := Confidence(0.5, []string{"a"}, nil)
	var invalidErr *models.InvalidInputError
	if !errors.As(err, &invalidErr) {
		t.Fatalf("empty required set: expected InvalidInputError, got %v", err)
	}
	if invalidErr.Field != "required_evidence" {
		t.Errorf("field = %q, want required_evidence", invalidErr.Field)
	}

	// A required set of only blanks is as undefined as an empty one.
	if _, err := Confidence(0.5, []string{"a"}, []string{"", "  "}); err == nil {
		t.Error("blank required set: expected error, got nil")
	}
}

func TestConfidenceClamped(t *testing.T) {
	got, err := Confidence(1.0, []string{"visible lesions"}, []string{"visible lesions"})
	if err != nil {
		t.Fatalf("Confidence() error = %v", err)
	}
	if got > 1.0 {
		t.Errorf("Confidence() = %v, want <= 1.0", got)
	}
}
