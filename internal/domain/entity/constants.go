package entity

// GateStatus is the payment-gate disposition of a proposal line.
type GateStatus string

// Payment-gate dispositions
const (
	GateStatusApproved GateStatus = "approved" // release payment
	GateStatusHeld     GateStatus = "held"     // auto-hold, blocked until reviewed
	GateStatusReview   GateStatus = "review"   // analyst decision required
)

// Valid reports whether s is a known disposition.
func (s GateStatus) Valid() bool {
	switch s {
	case GateStatusApproved, GateStatusHeld, GateStatusReview:
		return true
	}
	return false
}

// DefaultConfigID is the key of the single persisted detection configuration.
const DefaultConfigID = "default"
