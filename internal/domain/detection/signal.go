package detection

// SignalName identifies one of the five duplicate signals.
type SignalName string

// Signals in the order they appear in a DetectionResult. Only the first
// three contribute to the score.
const (
	SignalExactAmount    SignalName = "Exact Amount"
	SignalVendorMatch    SignalName = "Vendor Match"
	SignalInvoicePattern SignalName = "Invoice Pattern (Fuzzy)"
	SignalDateProximity  SignalName = "Date Proximity"
	SignalFuzzyAmount    SignalName = "Fuzzy Amount"
)

// SignalOrder lists every signal name in result order.
var SignalOrder = [...]SignalName{
	SignalExactAmount,
	SignalVendorMatch,
	SignalInvoicePattern,
	SignalDateProximity,
	SignalFuzzyAmount,
}

// Valid reports whether n is one of the five signal names.
func (n SignalName) Valid() bool {
	for _, s := range SignalOrder {
		if n == s {
			return true
		}
	}
	return false
}

// Scoring reports whether the signal adds points to the score.
func (n SignalName) Scoring() bool {
	return n == SignalExactAmount || n == SignalVendorMatch || n == SignalInvoicePattern
}

// Signal is one explained observation about an invoice pair.
type Signal struct {
	Name        SignalName `json:"name"`
	Triggered   bool       `json:"triggered"`
	Description string     `json:"description"`
	Value       string     `json:"value,omitempty"`
}

// Triggered returns the triggered subset of signals, preserving order.
func Triggered(signals []Signal) []Signal {
	out := make([]Signal, 0, len(signals))
	for _, s := range signals {
		if s.Triggered {
			out = append(out, s)
		}
	}
	return out
}
