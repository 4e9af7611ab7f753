package entity

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// InvoiceRecord is a vendor invoice line as seen by the duplicate detector.
// Proposal lines that have not been persisted yet carry an empty ID.
type InvoiceRecord struct {
	ID            string      `json:"id,omitempty"`
	InvoiceNumber string      `json:"invoice_number"`
	VendorID      string      `json:"vendor_id"`
	VendorName    string      `json:"vendor_name,omitempty"`
	Amount        Amount      `json:"amount"`
	InvoiceDate   InvoiceDate `json:"invoice_date"`
	LegalEntity   string      `json:"legal_entity,omitempty"`
	Currency      string      `json:"currency,omitempty"`
}

// Amount is a monetary value held in cents.
// The zero Amount is invalid and never equals another amount.
type Amount struct {
	cents int64
	valid bool
}

// NewAmount returns a valid amount of the given cents.
func NewAmount(cents int64) Amount {
	return Amount{cents: cents, valid: true}
}

// MaxExactCents bounds the cent values a float64 holds exactly (2^53).
const MaxExactCents = 1 << 53

// AmountFromFloat rounds f to the nearest cent. NaN, infinities and values
// whose cents reach MaxExactCents in magnitude yield an invalid amount.
func AmountFromFloat(f float64) Amount {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Amount{}
	}
	cents := math.Round(f * 100)
	if math.Abs(cents) >= MaxExactCents {
		return Amount{}
	}
	return NewAmount(int64(cents))
}

// ParseAmount parses a decimal string such as "1250.00". Anything that is not
// a finite number yields an invalid amount.
func ParseAmount(s string) Amount {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return Amount{}
	}
	return AmountFromFloat(f)
}

// Valid reports whether the amount was parsed from a usable number.
func (a Amount) Valid() bool {
	return a.valid
}

// Cents returns the amount in cents. Invalid amounts return 0.
func (a Amount) Cents() int64 {
	return a.cents
}

// Float64 returns the amount in currency units, or NaN when invalid.
func (a Amount) Float64() float64 {
	if !a.valid {
		return math.NaN()
	}
	return float64(a.cents) / 100.0
}

// Equal reports whether both amounts are valid and identical to the cent.
func (a Amount) Equal(other Amount) bool {
	return a.valid && other.valid && a.cents == other.cents
}

// String formats the amount with two decimals, or "NaN" when invalid.
func (a Amount) String() string {
	if !a.valid {
		return "NaN"
	}
	return strconv.FormatFloat(a.Float64(), 'f', 2, 64)
}

// MarshalJSON encodes a valid amount as a JSON number and an invalid one as null.
func (a Amount) MarshalJSON() ([]byte, error) {
	if !a.valid {
		return []byte("null"), nil
	}
	return []byte(a.String()), nil
}

// UnmarshalJSON accepts a JSON number or a numeric string. Non-numeric
// strings and null decode to an invalid amount.
func (a *Amount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*a = Amount{}
		return nil
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("failed to decode amount: %w", err)
		}
		*a = ParseAmount(s)
		return nil
	default:
		var f float64
		if err := json.Unmarshal(data, &f); err != nil {
			return fmt.Errorf("amount must be a number or numeric string: %w", err)
		}
		*a = AmountFromFloat(f)
		return nil
	}
}

// InvoiceDate is a calendar date normalized to midnight UTC.
// The zero InvoiceDate is invalid.
type InvoiceDate struct {
	t     time.Time
	valid bool
}

const dateLayout = "2006-01-02"

var dateTimeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	dateLayout,
}

// NewInvoiceDate keeps the calendar date of t (in t's own location) and drops
// the time of day.
func NewInvoiceDate(t time.Time) InvoiceDate {
	y, m, d := t.Date()
	return InvoiceDate{t: time.Date(y, m, d, 0, 0, 0, 0, time.UTC), valid: true}
}

// ParseInvoiceDate accepts a date ("2024-01-15") or a date-time. Unparseable
// input yields an invalid date.
func ParseInvoiceDate(s string) InvoiceDate {
	s = strings.TrimSpace(s)
	for _, layout := range dateTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return NewInvoiceDate(t)
		}
	}
	return InvoiceDate{}
}

// Valid reports whether the date was parsed successfully.
func (d InvoiceDate) Valid() bool {
	return d.valid
}

// Time returns the date as midnight UTC.
func (d InvoiceDate) Time() time.Time {
	return d.t
}

// String formats the date as YYYY-MM-DD, or "" when invalid.
func (d InvoiceDate) String() string {
	if !d.Valid() {
		return ""
	}
	return d.t.Format(dateLayout)
}

// MarshalJSON encodes the date as "YYYY-MM-DD", or null when invalid.
func (d InvoiceDate) MarshalJSON() ([]byte, error) {
	if !d.Valid() {
		return []byte("null"), nil
	}
	return json.Marshal(d.String())
}

// UnmarshalJSON accepts a date or date-time string. Unparseable strings and
// null decode to an invalid date.
func (d *InvoiceDate) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*d = InvoiceDate{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("invoice date must be a string: %w", err)
	}
	*d = ParseInvoiceDate(s)
	return nil
}
