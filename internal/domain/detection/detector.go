package detection

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/MrTurnables/dpps-prototype/internal/domain/entity"
)

// Score weights
const (
	ExactAmountPoints    = 40
	VendorMatchPoints    = 30
	InvoicePatternPoints = 30
	MaxScore             = 100
)

// DetectionResult is the outcome of comparing one invoice to a candidate.
type DetectionResult struct {
	Score          int                  `json:"score"`
	RiskLevel      RiskLevel            `json:"risk_level"`
	AutoHold       bool                 `json:"auto_hold"`
	Signals        []Signal             `json:"signals"`
	MatchedInvoice entity.InvoiceRecord `json:"matched_invoice"`
}

// Signal returns the signal with the given name, if present.
func (r DetectionResult) Signal(name SignalName) (Signal, bool) {
	for _, s := range r.Signals {
		if s.Name == name {
			return s, true
		}
	}
	return Signal{}, false
}

// DetectDuplicate scores candidate as a possible duplicate of current.
//
// Exact amount (40), vendor match (30) and invoice-number similarity (up to
// 30) make up the score, which is rounded and capped at 100. Date proximity
// and fuzzy amount are reported but never scored. Invalid amounts and dates
// never trigger a signal.
func DetectDuplicate(current, candidate entity.InvoiceRecord, cfg DetectionConfig) DetectionResult {
	var score float64
	signals := make([]Signal, 0, len(SignalOrder))

	exactAmount := current.Amount.Equal(candidate.Amount)
	if exactAmount {
		score += ExactAmountPoints
	}
	amountValue := fmt.Sprintf("%s ≠ %s", current.Amount, candidate.Amount)
	if exactAmount {
		amountValue = fmt.Sprintf("%s = %s", current.Amount, candidate.Amount)
	}
	signals = append(signals, Signal{
		Name:        SignalExactAmount,
		Triggered:   exactAmount,
		Description: "Amounts match exactly to the cent",
		Value:       amountValue,
	})

	vendorMatch := current.VendorID == candidate.VendorID
	var vendorValue string
	if vendorMatch {
		score += VendorMatchPoints
		vendorValue = current.VendorID
	}
	signals = append(signals, Signal{
		Name:        SignalVendorMatch,
		Triggered:   vendorMatch,
		Description: "Same vendor ID",
		Value:       vendorValue,
	})

	similarity := LevenshteinSimilarity(current.InvoiceNumber, candidate.InvoiceNumber)
	score += similarity * InvoicePatternPoints
	signals = append(signals, Signal{
		Name:        SignalInvoicePattern,
		Triggered:   similarity > cfg.InvoicePatternTrigger,
		Description: fmt.Sprintf("Invoice similarity > %s%%", percent(cfg.InvoicePatternTrigger)),
		Value:       fmt.Sprintf("%.1f%%", similarity*100),
	})

	days := DaysApart(current.InvoiceDate, candidate.InvoiceDate)
	dateValue := "unknown"
	if !math.IsInf(days, 1) {
		dateValue = fmt.Sprintf("%d days apart", int(math.Round(days)))
	}
	signals = append(signals, Signal{
		Name:        SignalDateProximity,
		Triggered:   days <= float64(cfg.DateProximityDays),
		Description: fmt.Sprintf("Invoice dates within %d days", cfg.DateProximityDays),
		Value:       dateValue,
	})

	amountsUsable := current.Amount.Valid() && candidate.Amount.Valid()
	diff := RelativeDifference(current.Amount, candidate.Amount)
	diffValue := "unknown"
	if amountsUsable {
		diffValue = fmt.Sprintf("%.2f%% difference", diff*100)
	}
	signals = append(signals, Signal{
		Name:        SignalFuzzyAmount,
		Triggered:   !exactAmount && amountsUsable && diff < cfg.FuzzyAmountTolerance,
		Description: fmt.Sprintf("Amount difference < %s%%", percent(cfg.FuzzyAmountTolerance)),
		Value:       diffValue,
	})

	finalScore := int(math.Min(MaxScore, math.Round(score)))

	return DetectionResult{
		Score:          finalScore,
		RiskLevel:      ClassifyRisk(finalScore, cfg),
		AutoHold:       finalScore >= cfg.CriticalThreshold,
		Signals:        signals,
		MatchedInvoice: candidate,
	}
}

// DaysApart returns the absolute difference between two dates in days
// (elapsed time / 24h). An invalid date on either side yields +Inf.
func DaysApart(a, b entity.InvoiceDate) float64 {
	if !a.Valid() || !b.Valid() {
		return math.Inf(1)
	}
	d := a.Time().Sub(b.Time())
	if d < 0 {
		d = -d
	}
	return float64(d) / float64(24*time.Hour)
}

// RelativeDifference returns |a-b| / max(a, b, 0). It is 0 when that maximum
// is 0 or when either amount is invalid.
func RelativeDifference(a, b entity.Amount) float64 {
	if !a.Valid() || !b.Valid() {
		return 0
	}
	x, y := float64(a.Cents()), float64(b.Cents())
	largest := max(x, y, 0)
	if largest == 0 {
		return 0
	}
	return math.Abs(x-y) / largest
}

// percent renders a fraction as a trimmed percentage, 0.005 -> "0.5".
func percent(fraction float64) string {
	return strconv.FormatFloat(math.Round(fraction*100*1000)/1000, 'f', -1, 64)
}
