package report

import (
	"bytes"
	"context"
	"testing"

	"github.com/MrTurnables/dpps-prototype/internal/application/service"
	"github.com/MrTurnables/dpps-prototype/internal/domain/detection"
	"github.com/MrTurnables/dpps-prototype/internal/domain/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

type nopLogger struct{}

func (nopLogger) Info(msg string, keysAndValues ...interface{})  {}
func (nopLogger) Error(msg string, keysAndValues ...interface{}) {}

func sampleReport(t *testing.T) *service.ValidationReport {
	t.Helper()
	lines := []entity.InvoiceRecord{
		{InvoiceNumber: "INV-100", VendorID: "V-1", VendorName: "Acme", Amount: entity.ParseAmount("500.00"), InvoiceDate: entity.ParseInvoiceDate("2024-03-01")},
		{InvoiceNumber: "ZZZ-999", VendorID: "V-2", Amount: entity.ParseAmount("oops"), InvoiceDate: entity.ParseInvoiceDate("2024-06-30")},
		{InvoiceNumber: "INV-100", VendorID: "V-1", VendorName: "Acme", Amount: entity.ParseAmount("500.00"), InvoiceDate: entity.ParseInvoiceDate("2024-03-02")},
	}
	rep, err := service.NewPaymentGateService(nil, nopLogger{}).Validate(context.Background(), lines, detection.DefaultConfig())
	require.NoError(t, err)
	return rep
}

func cell(t *testing.T, f *excelize.File, sheet, axis string) string {
	t.Helper()
	v, err := f.GetCellValue(sheet, axis)
	require.NoError(t, err)
	return v
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, sampleReport(t)))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{summarySheet, linesSheet}, f.GetSheetList())

	t.Run("summary", func(t *testing.T) {
		assert.Equal(t, "Total Lines", cell(t, f, summarySheet, "A2"))
		assert.Equal(t, "3", cell(t, f, summarySheet, "B2"))
		assert.Equal(t, "1", cell(t, f, summarySheet, "B3"))
		assert.Equal(t, "2", cell(t, f, summarySheet, "B4"))
		assert.Equal(t, "0", cell(t, f, summarySheet, "B5"))
		assert.Equal(t, "85", cell(t, f, summarySheet, "B9"))
		assert.Equal(t, "within", cell(t, f, summarySheet, "B15"))
	})

	t.Run("lines", func(t *testing.T) {
		assert.Equal(t, "Invoice Number", cell(t, f, linesSheet, "B1"))

		assert.Equal(t, "1", cell(t, f, linesSheet, "A2"))
		assert.Equal(t, "INV-100", cell(t, f, linesSheet, "B2"))
		assert.Equal(t, "500", cell(t, f, linesSheet, "E2"))
		assert.Equal(t, "2024-03-01", cell(t, f, linesSheet, "F2"))
		assert.Equal(t, "held", cell(t, f, linesSheet, "G2"))
		assert.Equal(t, "100", cell(t, f, linesSheet, "H2"))
		assert.Equal(t, "Critical", cell(t, f, linesSheet, "I2"))
		assert.Equal(t, "INV-100", cell(t, f, linesSheet, "L2"))
		assert.Contains(t, cell(t, f, linesSheet, "N2"), string(detection.SignalExactAmount))

		assert.Equal(t, "NaN", cell(t, f, linesSheet, "E3"))
		assert.Equal(t, "approved", cell(t, f, linesSheet, "G3"))
		assert.Empty(t, cell(t, f, linesSheet, "H3"))
	})
}

func TestWriteXLSX_NilReport(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, WriteXLSX(&buf, nil))
	assert.Zero(t, buf.Len())
}
