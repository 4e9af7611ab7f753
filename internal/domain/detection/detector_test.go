package detection

import (
	"math"
	"testing"

	"github.com/MrTurnables/dpps-prototype/internal/domain/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func invoice(number, vendor, amount, date string) entity.InvoiceRecord {
	return entity.InvoiceRecord{
		InvoiceNumber: number,
		VendorID:      vendor,
		Amount:        entity.ParseAmount(amount),
		InvoiceDate:   entity.ParseInvoiceDate(date),
	}
}

func signalOf(t *testing.T, r DetectionResult, name SignalName) Signal {
	t.Helper()
	s, ok := r.Signal(name)
	require.True(t, ok, "signal %q missing", name)
	return s
}

func TestDetectDuplicate_IdenticalInvoices(t *testing.T) {
	current := invoice("INV-2024-001", "V-1", "1250.00", "2024-01-15")
	candidate := current

	result := DetectDuplicate(current, candidate, DefaultConfig())

	assert.Equal(t, 100, result.Score)
	assert.Equal(t, RiskCritical, result.RiskLevel)
	assert.True(t, result.AutoHold)
	assert.True(t, signalOf(t, result, SignalExactAmount).Triggered)
	assert.True(t, signalOf(t, result, SignalVendorMatch).Triggered)

	pattern := signalOf(t, result, SignalInvoicePattern)
	assert.True(t, pattern.Triggered)
	assert.Equal(t, "100.0%", pattern.Value)

	assert.True(t, signalOf(t, result, SignalDateProximity).Triggered)
	assert.False(t, signalOf(t, result, SignalFuzzyAmount).Triggered, "fuzzy amount never fires on exact match")
	assert.Equal(t, candidate, result.MatchedInvoice)
}

func TestDetectDuplicate_OCRSubstitution(t *testing.T) {
	cfg := DefaultConfig()
	current := invoice("INV-2024-002", "V-1", "1250.00", "2024-01-15")

	t.Run("single substitution", func(t *testing.T) {
		candidate := invoice("INV-2024-0O2", "V-1", "1250.00", "2024-01-15")
		result := DetectDuplicate(current, candidate, cfg)

		// 40 + 30 + 11/12*30 = 97.5
		assert.Equal(t, 98, result.Score)
		assert.Equal(t, RiskCritical, result.RiskLevel)
		assert.True(t, result.AutoHold)

		pattern := signalOf(t, result, SignalInvoicePattern)
		assert.True(t, pattern.Triggered)
		assert.Equal(t, "91.7%", pattern.Value)
	})

	t.Run("double substitution", func(t *testing.T) {
		candidate := invoice("INV-2024-OO2", "V-1", "1250.00", "2024-01-15")
		result := DetectDuplicate(current, candidate, cfg)

		// 40 + 30 + 10/12*30 = 95
		assert.Equal(t, 95, result.Score)
		assert.Equal(t, RiskCritical, result.RiskLevel)
		assert.True(t, signalOf(t, result, SignalInvoicePattern).Triggered)
	})
}

func TestDetectDuplicate_SupplementarySignalsDoNotScore(t *testing.T) {
	cfg := DefaultConfig()
	current := invoice("AAAA", "V-1", "1000.00", "2024-01-15")
	candidate := invoice("ZZZZ", "V-2", "1001.00", "2024-01-16")

	result := DetectDuplicate(current, candidate, cfg)

	assert.Equal(t, 0, result.Score)
	assert.Equal(t, RiskLow, result.RiskLevel)
	assert.False(t, result.AutoHold)
	assert.False(t, signalOf(t, result, SignalExactAmount).Triggered)
	assert.False(t, signalOf(t, result, SignalVendorMatch).Triggered)
	assert.False(t, signalOf(t, result, SignalInvoicePattern).Triggered)

	fuzzy := signalOf(t, result, SignalFuzzyAmount)
	assert.True(t, fuzzy.Triggered)
	assert.Equal(t, "0.10% difference", fuzzy.Value)

	date := signalOf(t, result, SignalDateProximity)
	assert.True(t, date.Triggered)
	assert.Equal(t, "1 days apart", date.Value)
}

func TestDetectDuplicate_SignalOrderAndText(t *testing.T) {
	result := DetectDuplicate(
		invoice("INV-1", "V-1", "10.00", "2024-01-01"),
		invoice("INV-2", "V-9", "12.50", "2024-03-01"),
		DefaultConfig(),
	)

	require.Len(t, result.Signals, len(SignalOrder))
	for i, name := range SignalOrder {
		assert.Equal(t, name, result.Signals[i].Name)
	}

	assert.Equal(t, "10.00 ≠ 12.50", result.Signals[0].Value)
	assert.Empty(t, result.Signals[1].Value, "vendor value only set on match")
	assert.Equal(t, "Invoice similarity > 80%", result.Signals[2].Description)
	assert.Equal(t, "Invoice dates within 7 days", result.Signals[3].Description)
	assert.Equal(t, "60 days apart", result.Signals[3].Value)
	assert.Equal(t, "Amount difference < 0.5%", result.Signals[4].Description)
	assert.Equal(t, "20.00% difference", result.Signals[4].Value)
}

func TestDetectDuplicate_DateProximityWindowIsInclusive(t *testing.T) {
	cfg := DefaultConfig()
	base := invoice("X", "V", "1", "2024-01-01")

	atEdge := DetectDuplicate(base, invoice("X", "V", "1", "2024-01-08"), cfg)
	assert.True(t, signalOf(t, atEdge, SignalDateProximity).Triggered)

	beyond := DetectDuplicate(base, invoice("X", "V", "1", "2024-01-09"), cfg)
	assert.False(t, signalOf(t, beyond, SignalDateProximity).Triggered)

	cfg.DateProximityDays = 0
	sameDay := DetectDuplicate(base, invoice("X", "V", "1", "2024-01-01T22:00:00Z"), cfg)
	assert.True(t, signalOf(t, sameDay, SignalDateProximity).Triggered, "time of day is ignored")
}

func TestDetectDuplicate_MalformedInputs(t *testing.T) {
	cfg := DefaultConfig()

	t.Run("invalid amount never matches", func(t *testing.T) {
		a := invoice("INV-1", "V-1", "abc", "2024-01-01")
		b := invoice("INV-1", "V-1", "abc", "2024-01-01")

		result := DetectDuplicate(a, b, cfg)

		assert.False(t, signalOf(t, result, SignalExactAmount).Triggered)
		assert.False(t, signalOf(t, result, SignalFuzzyAmount).Triggered)
		assert.Equal(t, "unknown", signalOf(t, result, SignalFuzzyAmount).Value)
		assert.Equal(t, "NaN ≠ NaN", signalOf(t, result, SignalExactAmount).Value)
		assert.Equal(t, 60, result.Score)
	})

	t.Run("one invalid amount", func(t *testing.T) {
		result := DetectDuplicate(
			invoice("INV-1", "V-1", "100.00", "2024-01-01"),
			invoice("INV-1", "V-1", "n/a", "2024-01-01"),
			cfg,
		)
		assert.False(t, signalOf(t, result, SignalExactAmount).Triggered)
		assert.False(t, signalOf(t, result, SignalFuzzyAmount).Triggered)
	})

	t.Run("invalid date never proximate", func(t *testing.T) {
		result := DetectDuplicate(
			invoice("INV-1", "V-1", "1.00", "not-a-date"),
			invoice("INV-1", "V-1", "1.00", "2024-01-01"),
			cfg,
		)
		date := signalOf(t, result, SignalDateProximity)
		assert.False(t, date.Triggered)
		assert.Equal(t, "unknown", date.Value)
	})

	t.Run("amounts beyond exact cents never match", func(t *testing.T) {
		result := DetectDuplicate(
			invoice("AAA-1", "V-1", "1e17", "2024-01-01"),
			invoice("ZZZ-9", "V-2", "9e300", "2024-06-01"),
			cfg,
		)
		assert.False(t, signalOf(t, result, SignalExactAmount).Triggered)
		assert.False(t, signalOf(t, result, SignalFuzzyAmount).Triggered)
		assert.Equal(t, "NaN ≠ NaN", signalOf(t, result, SignalExactAmount).Value)
		assert.Less(t, result.Score, ExactAmountPoints)

		result = DetectDuplicate(
			invoice("INV-1", "V-1", "1e17", "2024-01-01"),
			invoice("INV-1", "V-1", "1e17", "2024-01-01"),
			cfg,
		)
		assert.False(t, signalOf(t, result, SignalExactAmount).Triggered)
		assert.Equal(t, 60, result.Score)
	})

	t.Run("infinite amounts never match", func(t *testing.T) {
		result := DetectDuplicate(
			invoice("INV-1", "V-1", "Inf", "2024-01-01"),
			invoice("INV-1", "V-1", "+Inf", "2024-01-01"),
			cfg,
		)
		assert.False(t, signalOf(t, result, SignalExactAmount).Triggered)
		assert.Equal(t, 60, result.Score)
	})

	t.Run("empty invoice numbers", func(t *testing.T) {
		result := DetectDuplicate(
			invoice("", "V-1", "1.00", "2024-01-01"),
			invoice("", "V-1", "1.00", "2024-01-01"),
			cfg,
		)
		assert.Equal(t, 100, result.Score)

		result = DetectDuplicate(
			invoice("", "V-1", "1.00", "2024-01-01"),
			invoice("INV-9", "V-1", "1.00", "2024-01-01"),
			cfg,
		)
		assert.Equal(t, 70, result.Score)
		assert.False(t, signalOf(t, result, SignalInvoicePattern).Triggered)
	})
}

func TestDetectDuplicate_Symmetry(t *testing.T) {
	cfg := DefaultConfig()
	pairs := [][2]entity.InvoiceRecord{
		{invoice("INV-2024-001", "V-1", "1250.00", "2024-01-15"), invoice("INV-2024-0O1", "V-1", "1250.00", "2024-01-20")},
		{invoice("A-17", "V-1", "99.99", "2024-02-01"), invoice("A-71", "V-2", "100.00", "2024-01-01")},
		{invoice("", "V-1", "bad", "bad"), invoice("X", "V-1", "1", "2024-01-01")},
		{invoice("INV-1", "V-3", "-50.00", "2024-01-01"), invoice("INV-11", "V-3", "-50.10", "2024-01-03")},
	}

	for _, p := range pairs {
		ab := DetectDuplicate(p[0], p[1], cfg)
		ba := DetectDuplicate(p[1], p[0], cfg)

		assert.Equal(t, ab.Score, ba.Score)
		assert.Equal(t, ab.RiskLevel, ba.RiskLevel)
		for i := range ab.Signals {
			assert.Equal(t, ab.Signals[i].Triggered, ba.Signals[i].Triggered, "signal %s", ab.Signals[i].Name)
		}
		assert.Equal(t, p[1], ab.MatchedInvoice)
		assert.Equal(t, p[0], ba.MatchedInvoice)
	}
}

func TestDetectDuplicate_Idempotent(t *testing.T) {
	cfg := DefaultConfig()
	a := invoice("INV-77", "V-1", "42.00", "2024-05-05")
	b := invoice("INV-78", "V-1", "42.00", "2024-05-07")

	assert.Equal(t, DetectDuplicate(a, b, cfg), DetectDuplicate(a, b, cfg))
	assert.Equal(t, DefaultConfig(), cfg, "config is not mutated")
}

func TestDetectDuplicate_ScoreBounds(t *testing.T) {
	cfg := DefaultConfig()
	numbers := []string{"", "A", "INV-1", "INV-0001", "ZZZZZZZZZZ"}
	vendors := []string{"V-1", "V-2"}
	amounts := []string{"0", "100.00", "100.40", "x"}

	for _, n1 := range numbers {
		for _, n2 := range numbers {
			for _, v := range vendors {
				for _, a1 := range amounts {
					for _, a2 := range amounts {
						r := DetectDuplicate(invoice(n1, "V-1", a1, "2024-01-01"), invoice(n2, v, a2, "2024-01-02"), cfg)
						assert.GreaterOrEqual(t, r.Score, 0)
						assert.LessOrEqual(t, r.Score, MaxScore)
						assert.True(t, r.RiskLevel.Valid())
					}
				}
			}
		}
	}
}

func TestDetectDuplicate_AutoHoldFollowsCriticalThreshold(t *testing.T) {
	cfg := DefaultConfig()
	cfg.CriticalThreshold = 70
	cfg.HighThreshold = 60
	cfg.MediumThreshold = 40

	// amount + vendor, unrelated numbers: exactly 70
	result := DetectDuplicate(
		invoice("AAAA", "V-1", "10.00", "2024-01-01"),
		invoice("BBBB", "V-1", "10.00", "2024-01-01"),
		cfg,
	)
	assert.Equal(t, 70, result.Score)
	assert.Equal(t, RiskCritical, result.RiskLevel)
	assert.True(t, result.AutoHold)
}

func TestDaysApart(t *testing.T) {
	d1 := entity.ParseInvoiceDate("2024-03-01")
	d2 := entity.ParseInvoiceDate("2024-02-28")
	require.True(t, d1.Valid())
	require.True(t, d2.Valid())

	assert.InDelta(t, 2.0, DaysApart(d1, d2), 1e-9, "leap year")
	assert.InDelta(t, 2.0, DaysApart(d2, d1), 1e-9)
	assert.True(t, math.IsInf(DaysApart(entity.InvoiceDate{}, d1), 1))
}

func TestRelativeDifference(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want float64
	}{
		{name: "equal", a: "100", b: "100", want: 0},
		{name: "one percent", a: "100", b: "99", want: 0.01},
		{name: "both zero", a: "0", b: "0", want: 0},
		{name: "both negative", a: "-10", b: "-20", want: 0},
		{name: "opposite signs", a: "-10", b: "10", want: 2},
		{name: "invalid", a: "x", b: "100", want: 0},
		{name: "infinite", a: "Inf", b: "100", want: 0},
		{name: "negative infinite", a: "-Inf", b: "-Inf", want: 0},
		{name: "beyond exact cents", a: "1e17", b: "100", want: 0},
		{name: "large but exact", a: "1e12", b: "2e12", want: 0.5},
		{name: "mixed sign large", a: "-1e12", b: "1e12", want: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RelativeDifference(entity.ParseAmount(tt.a), entity.ParseAmount(tt.b))
			assert.InDelta(t, tt.want, got, 1e-12)
		})
	}
}
