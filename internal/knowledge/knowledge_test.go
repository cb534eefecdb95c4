package knowledge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agrosage/agrosage/diagnostic-plane/pkg/models"
)

func TestLoadEmbeddedTables(t *testing.T) {
	b, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"Aphids", "Fall Armyworm", "Late Blight", "generic"}, b.Pests())
	assert.Equal(t, "generic", b.DefaultProfileName())

	faw, ok := b.Profile("Fall Armyworm")
	require.True(t, ok)
	assert.Equal(t, SeverityThresholds{LowMax: 10, MediumMax: 30, HighMax: 60}, faw.Thresholds)
	assert.InDelta(t, 0.25, faw.YieldLoss[models.SeverityMedium], 1e-9)
	assert.Len(t, faw.Chemicals, 3)
	assert.Len(t, faw.Evidence, 3)
	assert.Equal(t, 37, faw.Lifecycle.TotalCycleDays)

	// Every chemical in the shipped tables carries a region list and a
	// severity gate; the engine assumes both.
	for _, name := range b.Pests() {
		p, ok := b.Profile(name)
		require.True(t, ok)
		for _, c := range p.Chemicals {
			assert.NotEmpty(t, c.ApprovedRegions, "%s/%s has no approved regions", name, c.ProductName)
			assert.NotEmpty(t, c.SeverityThreshold, "%s/%s has no severity threshold", name, c.ProductName)
		}
	}
}

func TestProfileLookupCaseInsensitive(t *testing.T) {
	b, err := Load()
	require.NoError(t, err)

	for _, name := range []string{"fall armyworm", "FALL ARMYWORM", " Fall Armyworm "} {
		p, ok := b.Profile(name)
		require.True(t, ok, "lookup %q", name)
		assert.Equal(t, "Fall Armyworm", p.Name)
	}
}

func TestProfileOrDefault(t *testing.T) {
	b, err := Load()
	require.NoError(t, err)

	p, known := b.ProfileOrDefault("Late Blight")
	assert.True(t, known)
	assert.Equal(t, "Late Blight", p.Name)

	p, known = b.ProfileOrDefault("Martian Leaf Weevil")
	assert.False(t, known)
	assert.Equal(t, "generic", p.Name)
	// The fallback carries no chemicals: nothing can be recommended
	// for an unidentified organism.
	assert.Empty(t, p.Chemicals)
	assert.NotEmpty(t, p.Organics)
}

func TestParseRejectsBadTables(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"empty tables", "default_profile: x\npests: []"},
		{
			"thresholds not ascending",
			`
default_profile: A
pests:
  - name: A
    thresholds: {low_max: 30, medium_max: 20, high_max: 60}
    yield_loss: {Low: 0.1, Medium: 0.2, High: 0.3, Critical: 0.4}
    organics: [{method_name: Neem}]
`,
		},
		{
			"missing yield loss level",
			`
default_profile: A
pests:
  - name: A
    thresholds: {low_max: 10, medium_max: 20, high_max: 60}
    yield_loss: {Low: 0.1, Medium: 0.2, High: 0.3}
    organics: [{method_name: Neem}]
`,
		},
		{
			"no treatment methods",
			`
default_profile: A
pests:
  - name: A
    thresholds: {low_max: 10, medium_max: 20, high_max: 60}
    yield_loss: {Low: 0.1, Medium: 0.2, High: 0.3, Critical: 0.4}
`,
		},
		{
			"default profile absent",
			`
default_profile: B
pests:
  - name: A
    thresholds: {low_max: 10, medium_max: 20, high_max: 60}
    yield_loss: {Low: 0.1, Medium: 0.2, High: 0.3, Critical: 0.4}
    organics: [{method_name: Neem}]
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}
