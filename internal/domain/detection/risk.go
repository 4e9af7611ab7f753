package detection

// RiskLevel is the duplicate-payment risk tier derived from a score.
type RiskLevel string

// Risk tiers, highest first
const (
	RiskCritical RiskLevel = "critical"
	RiskHigh     RiskLevel = "high"
	RiskMedium   RiskLevel = "medium"
	RiskLow      RiskLevel = "low"
)

// Valid reports whether r is one of the four tiers.
func (r RiskLevel) Valid() bool {
	switch r {
	case RiskCritical, RiskHigh, RiskMedium, RiskLow:
		return true
	}
	return false
}

// ClassifyRisk maps a score onto a tier. Each threshold is an inclusive
// lower bound and tiers are checked from critical downwards.
func ClassifyRisk(score int, cfg DetectionConfig) RiskLevel {
	switch {
	case score >= cfg.CriticalThreshold:
		return RiskCritical
	case score >= cfg.HighThreshold:
		return RiskHigh
	case score >= cfg.MediumThreshold:
		return RiskMedium
	default:
		return RiskLow
	}
}

// RiskDisplay is the presentation mapping for a tier.
type RiskDisplay struct {
	Label  string `json:"label"`
	Color  string `json:"color"`
	Action string `json:"action"`
}

var riskDisplays = map[RiskLevel]RiskDisplay{
	RiskCritical: {Label: "Critical", Color: "red", Action: "Auto-hold; immediate review required"},
	RiskHigh:     {Label: "High", Color: "orange", Action: "Conditional review; analyst decision"},
	RiskMedium:   {Label: "Medium", Color: "yellow", Action: "Flag for awareness; allow override"},
	RiskLow:      {Label: "Low", Color: "emerald", Action: "Proceed with standard processing"},
}

// Display returns the label, color and recommended action for r.
// Unknown levels get an empty mapping.
func (r RiskLevel) Display() RiskDisplay {
	return riskDisplays[r]
}
