package detection

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 85, cfg.CriticalThreshold)
	assert.Equal(t, 70, cfg.HighThreshold)
	assert.Equal(t, 50, cfg.MediumThreshold)
	assert.Equal(t, 0.80, cfg.InvoicePatternTrigger)
	assert.Equal(t, 7, cfg.DateProximityDays)
	assert.Equal(t, 0.005, cfg.FuzzyAmountTolerance)
	assert.Equal(t, ScopeWithin, cfg.LegalEntityScope)
	require.NoError(t, cfg.Validate())

	cfg.CriticalThreshold = 1
	assert.Equal(t, 85, DefaultConfig().CriticalThreshold, "each call returns a fresh value")
}

func TestDetectionConfigValidate(t *testing.T) {
	tests := []struct {
		name          string
		mutate        func(c *DetectionConfig)
		errorContains string
	}{
		{name: "defaults", mutate: func(c *DetectionConfig) {}},
		{
			name:          "critical above 100",
			mutate:        func(c *DetectionConfig) { c.CriticalThreshold = 101 },
			errorContains: "critical_threshold must be between 0 and 100",
		},
		{
			name:          "negative medium",
			mutate:        func(c *DetectionConfig) { c.MediumThreshold = -1 },
			errorContains: "medium_threshold must be between 0 and 100",
		},
		{
			name:          "medium above high",
			mutate:        func(c *DetectionConfig) { c.MediumThreshold = 75 },
			errorContains: "critical > high > medium",
		},
		{
			name:          "high equals critical",
			mutate:        func(c *DetectionConfig) { c.HighThreshold = 85 },
			errorContains: "critical > high > medium",
		},
		{
			name:          "trigger of one",
			mutate:        func(c *DetectionConfig) { c.InvoicePatternTrigger = 1 },
			errorContains: "invoice_pattern_trigger",
		},
		{
			name:          "negative window",
			mutate:        func(c *DetectionConfig) { c.DateProximityDays = -1 },
			errorContains: "date_proximity_days",
		},
		{
			name:          "zero tolerance",
			mutate:        func(c *DetectionConfig) { c.FuzzyAmountTolerance = 0 },
			errorContains: "fuzzy_amount_tolerance",
		},
		{
			name:          "unknown scope",
			mutate:        func(c *DetectionConfig) { c.LegalEntityScope = "global" },
			errorContains: "legal_entity_scope",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.errorContains == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errorContains)
		})
	}
}

func TestDetectionConfigApply(t *testing.T) {
	critical := 90
	scope := ScopeCross
	patch := &ConfigPatch{CriticalThreshold: &critical, LegalEntityScope: &scope}

	base := DefaultConfig()
	updated := base.Apply(patch)

	assert.Equal(t, 90, updated.CriticalThreshold)
	assert.Equal(t, ScopeCross, updated.LegalEntityScope)
	assert.Equal(t, base.HighThreshold, updated.HighThreshold)
	assert.Equal(t, 85, base.CriticalThreshold, "receiver is not modified")
	assert.Equal(t, base, base.Apply(nil))
}

func TestLegalEntityScopeIsInert(t *testing.T) {
	a := invoice("INV-1", "V-1", "10.00", "2024-01-01")
	a.LegalEntity = "ACME-US"
	b := invoice("INV-1", "V-1", "10.00", "2024-01-01")
	b.LegalEntity = "ACME-DE"

	within := DefaultConfig()
	cross := DefaultConfig()
	cross.LegalEntityScope = ScopeCross

	assert.Equal(t, DetectDuplicate(a, b, within).Score, DetectDuplicate(a, b, cross).Score)
}
