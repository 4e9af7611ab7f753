// Package detection scores pairs of vendor invoices for duplicate-payment
// risk. Every function here is pure: inputs are never mutated and results
// are freshly allocated, so calls may run concurrently without coordination.
package detection

import "fmt"

// LegalEntityScope selects whether comparisons stay within one legal entity
// or span entities. It is carried in configuration but not yet applied by
// the scoring formula.
type LegalEntityScope string

// Legal entity scopes
const (
	ScopeWithin LegalEntityScope = "within"
	ScopeCross  LegalEntityScope = "cross"
)

// Valid reports whether s is a known scope.
func (s LegalEntityScope) Valid() bool {
	return s == ScopeWithin || s == ScopeCross
}

// DetectionConfig holds the thresholds used to score and classify a pair.
// Thresholds are expected to satisfy Critical > High > Medium; the scoring
// functions do not check this, Validate does.
type DetectionConfig struct {
	CriticalThreshold     int              `json:"critical_threshold" mapstructure:"critical_threshold"`
	HighThreshold         int              `json:"high_threshold" mapstructure:"high_threshold"`
	MediumThreshold       int              `json:"medium_threshold" mapstructure:"medium_threshold"`
	InvoicePatternTrigger float64          `json:"invoice_pattern_trigger" mapstructure:"invoice_pattern_trigger"`
	DateProximityDays     int              `json:"date_proximity_days" mapstructure:"date_proximity_days"`
	FuzzyAmountTolerance  float64          `json:"fuzzy_amount_tolerance" mapstructure:"fuzzy_amount_tolerance"`
	LegalEntityScope      LegalEntityScope `json:"legal_entity_scope" mapstructure:"legal_entity_scope"`
}

// Default detection thresholds
const (
	DefaultCriticalThreshold     = 85
	DefaultHighThreshold         = 70
	DefaultMediumThreshold       = 50
	DefaultInvoicePatternTrigger = 0.80
	DefaultDateProximityDays     = 7
	DefaultFuzzyAmountTolerance  = 0.005
	DefaultLegalEntityScope      = ScopeWithin
)

// DefaultConfig returns a fresh copy of the default configuration.
func DefaultConfig() DetectionConfig {
	return DetectionConfig{
		CriticalThreshold:     DefaultCriticalThreshold,
		HighThreshold:         DefaultHighThreshold,
		MediumThreshold:       DefaultMediumThreshold,
		InvoicePatternTrigger: DefaultInvoicePatternTrigger,
		DateProximityDays:     DefaultDateProximityDays,
		FuzzyAmountTolerance:  DefaultFuzzyAmountTolerance,
		LegalEntityScope:      DefaultLegalEntityScope,
	}
}

// Validate ensures thresholds are in range and strictly ordered.
func (c DetectionConfig) Validate() error {
	thresholds := []struct {
		name  string
		value int
	}{
		{"critical_threshold", c.CriticalThreshold},
		{"high_threshold", c.HighThreshold},
		{"medium_threshold", c.MediumThreshold},
	}
	for _, th := range thresholds {
		if th.value < 0 || th.value > 100 {
			return fmt.Errorf("%s must be between 0 and 100, got %d", th.name, th.value)
		}
	}

	if c.CriticalThreshold <= c.HighThreshold || c.HighThreshold <= c.MediumThreshold {
		return fmt.Errorf("thresholds must satisfy critical > high > medium (critical: %d, high: %d, medium: %d)",
			c.CriticalThreshold, c.HighThreshold, c.MediumThreshold)
	}

	if c.InvoicePatternTrigger <= 0 || c.InvoicePatternTrigger >= 1 {
		return fmt.Errorf("invoice_pattern_trigger must be between 0 and 1 exclusive, got %.3f", c.InvoicePatternTrigger)
	}

	if c.DateProximityDays < 0 {
		return fmt.Errorf("date_proximity_days must not be negative, got %d", c.DateProximityDays)
	}

	if c.FuzzyAmountTolerance <= 0 || c.FuzzyAmountTolerance >= 1 {
		return fmt.Errorf("fuzzy_amount_tolerance must be between 0 and 1 exclusive, got %.4f", c.FuzzyAmountTolerance)
	}

	if !c.LegalEntityScope.Valid() {
		return fmt.Errorf("legal_entity_scope must be %q or %q, got %q", ScopeWithin, ScopeCross, c.LegalEntityScope)
	}

	return nil
}

// ConfigPatch is a partial update to a DetectionConfig. Nil fields are left
// unchanged.
type ConfigPatch struct {
	CriticalThreshold     *int              `json:"critical_threshold,omitempty"`
	HighThreshold         *int              `json:"high_threshold,omitempty"`
	MediumThreshold       *int              `json:"medium_threshold,omitempty"`
	InvoicePatternTrigger *float64          `json:"invoice_pattern_trigger,omitempty"`
	DateProximityDays     *int              `json:"date_proximity_days,omitempty"`
	FuzzyAmountTolerance  *float64          `json:"fuzzy_amount_tolerance,omitempty"`
	LegalEntityScope      *LegalEntityScope `json:"legal_entity_scope,omitempty"`
}

// Apply returns a copy of c with the non-nil fields of p applied.
func (c DetectionConfig) Apply(p *ConfigPatch) DetectionConfig {
	if p == nil {
		return c
	}
	if p.CriticalThreshold != nil {
		c.CriticalThreshold = *p.CriticalThreshold
	}
	if p.HighThreshold != nil {
		c.HighThreshold = *p.HighThreshold
	}
	if p.MediumThreshold != nil {
		c.MediumThreshold = *p.MediumThreshold
	}
	if p.InvoicePatternTrigger != nil {
		c.InvoicePatternTrigger = *p.InvoicePatternTrigger
	}
	if p.DateProximityDays != nil {
		c.DateProximityDays = *p.DateProximityDays
	}
	if p.FuzzyAmountTolerance != nil {
		c.FuzzyAmountTolerance = *p.FuzzyAmountTolerance
	}
	if p.LegalEntityScope != nil {
		c.LegalEntityScope = *p.LegalEntityScope
	}
	return c
}
