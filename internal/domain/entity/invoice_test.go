package entity

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantValid bool
		wantCents int64
	}{
		{name: "two decimals", input: "1250.00", wantValid: true, wantCents: 125000},
		{name: "integer", input: "42", wantValid: true, wantCents: 4200},
		{name: "rounds to cent", input: "10.006", wantValid: true, wantCents: 1001},
		{name: "surrounding spaces", input: "  7.5 ", wantValid: true, wantCents: 750},
		{name: "negative credit", input: "-19.99", wantValid: true, wantCents: -1999},
		{name: "not a number", input: "abc", wantValid: false},
		{name: "empty", input: "", wantValid: false},
		{name: "NaN literal", input: "NaN", wantValid: false},
		{name: "infinity", input: "Inf", wantValid: false},
		{name: "negative infinity", input: "-Inf", wantValid: false},
		{name: "overflowing exponent", input: "9e300", wantValid: false},
		{name: "beyond int64 cents", input: "1e17", wantValid: false},
		{name: "negative beyond exact cents", input: "-1e15", wantValid: false},
		{name: "large but exact", input: "1e12", wantValid: true, wantCents: 100000000000000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := ParseAmount(tt.input)
			assert.Equal(t, tt.wantValid, a.Valid())
			if tt.wantValid {
				assert.Equal(t, tt.wantCents, a.Cents())
			} else {
				assert.True(t, math.IsNaN(a.Float64()))
			}
		})
	}
}

func TestAmountFromFloatRange(t *testing.T) {
	assert.False(t, AmountFromFloat(1e17).Valid())
	assert.False(t, AmountFromFloat(-9e300).Valid())
	assert.False(t, AmountFromFloat(1e17).Equal(AmountFromFloat(9e300)), "distinct huge amounts must not collide")
	assert.Equal(t, "NaN", AmountFromFloat(1e17).String())
	assert.True(t, AmountFromFloat(-19.99).Valid())
}

func TestAmountEqual(t *testing.T) {
	assert.True(t, NewAmount(100).Equal(AmountFromFloat(1.0)))
	assert.False(t, NewAmount(100).Equal(NewAmount(101)))
	assert.False(t, Amount{}.Equal(Amount{}), "invalid amounts never match")
	assert.False(t, ParseAmount("x").Equal(NewAmount(0)))
}

func TestAmountJSON(t *testing.T) {
	var rec struct {
		A Amount `json:"a"`
		B Amount `json:"b"`
		C Amount `json:"c"`
		D Amount `json:"d"`
	}
	err := json.Unmarshal([]byte(`{"a":1250,"b":"99.10","c":"n/a","d":null}`), &rec)
	require.NoError(t, err)

	assert.Equal(t, int64(125000), rec.A.Cents())
	assert.Equal(t, int64(9910), rec.B.Cents())
	assert.False(t, rec.C.Valid())
	assert.False(t, rec.D.Valid())

	out, err := json.Marshal(rec)
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":1250.00,"b":99.10,"c":null,"d":null}`, string(out))

	err = json.Unmarshal([]byte(`{"a":true}`), &rec)
	assert.Error(t, err)
}

func TestParseInvoiceDate(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantValid bool
		want      string
	}{
		{name: "date only", input: "2024-01-15", wantValid: true, want: "2024-01-15"},
		{name: "rfc3339 drops time", input: "2024-01-15T18:30:00Z", wantValid: true, want: "2024-01-15"},
		{name: "keeps local calendar day", input: "2024-01-15T23:00:00-05:00", wantValid: true, want: "2024-01-15"},
		{name: "no zone", input: "2024-01-15T08:00:00", wantValid: true, want: "2024-01-15"},
		{name: "space separated", input: "2024-01-15 08:00:00", wantValid: true, want: "2024-01-15"},
		{name: "first representable day", input: "0001-01-01", wantValid: true, want: "0001-01-01"},
		{name: "garbage", input: "not a date", wantValid: false},
		{name: "empty", input: "", wantValid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := ParseInvoiceDate(tt.input)
			assert.Equal(t, tt.wantValid, d.Valid())
			assert.Equal(t, tt.want, d.String())
			if tt.wantValid {
				assert.Equal(t, time.UTC, d.Time().Location())
				assert.Zero(t, d.Time().Hour())
			}
		})
	}
}

func TestInvoiceRecordJSON(t *testing.T) {
	payload := `{
		"invoice_number": "INV-2024-001",
		"vendor_id": "V-1",
		"amount": "1250.00",
		"invoice_date": "2024-01-15T10:00:00Z"
	}`

	var rec InvoiceRecord
	require.NoError(t, json.Unmarshal([]byte(payload), &rec))

	assert.Empty(t, rec.ID)
	assert.Equal(t, "INV-2024-001", rec.InvoiceNumber)
	assert.Equal(t, "V-1", rec.VendorID)
	assert.Equal(t, int64(125000), rec.Amount.Cents())
	assert.Equal(t, "2024-01-15", rec.InvoiceDate.String())

	var bad InvoiceRecord
	require.NoError(t, json.Unmarshal([]byte(`{"invoice_date":"yesterday"}`), &bad))
	assert.False(t, bad.InvoiceDate.Valid())

	assert.Error(t, json.Unmarshal([]byte(`{"invoice_date":20240115}`), &bad))
}

func TestInvoiceDateZeroValue(t *testing.T) {
	var d InvoiceDate
	assert.False(t, d.Valid())
	assert.Equal(t, "", d.String())

	first := NewInvoiceDate(time.Time{})
	assert.True(t, first.Valid(), "the zero time is still a calendar date")
	assert.Equal(t, "0001-01-01", first.String())

	out, err := json.Marshal(ParseInvoiceDate("0001-01-01"))
	require.NoError(t, err)
	assert.Equal(t, `"0001-01-01"`, string(out))
}

func TestGateStatusValid(t *testing.T) {
	assert.True(t, GateStatusHeld.Valid())
	assert.False(t, GateStatus("paid").Valid())
}
