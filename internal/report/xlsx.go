// Package report renders payment-gate validation results as spreadsheets.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/MrTurnables/dpps-prototype/internal/application/service"
	"github.com/xuri/excelize/v2"
)

const (
	summarySheet = "Summary"
	linesSheet   = "Lines"
)

var lineHeaders = []interface{}{
	"Line", "Invoice Number", "Vendor ID", "Vendor Name", "Amount", "Invoice Date",
	"Status", "Score", "Risk Level", "Action", "Auto Hold", "Matched Invoice", "Matched Vendor", "Signals",
}

// WriteXLSX writes rep as a workbook with a summary sheet and one row per line
func WriteXLSX(w io.Writer, rep *service.ValidationReport) error {
	if rep == nil {
		return fmt.Errorf("report is nil")
	}

	file := excelize.NewFile()
	defer file.Close()

	if err := file.SetSheetName("Sheet1", summarySheet); err != nil {
		return fmt.Errorf("failed to rename summary sheet: %w", err)
	}
	if _, err := file.NewSheet(linesSheet); err != nil {
		return fmt.Errorf("failed to create lines sheet: %w", err)
	}

	bold, err := file.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	if err := fillSummary(file, rep, bold); err != nil {
		return fmt.Errorf("failed to fill summary: %w", err)
	}
	if err := fillLines(file, rep, bold); err != nil {
		return fmt.Errorf("failed to fill lines: %w", err)
	}

	if err := file.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func fillSummary(file *excelize.File, rep *service.ValidationReport, bold int) error {
	cfg := rep.Config
	rows := [][]interface{}{
		{"Metric", "Value"},
		{"Total Lines", rep.TotalLines},
		{"Approved", rep.ApprovedLines},
		{"Held", rep.HeldLines},
		{"Review", rep.ReviewLines},
		{"Duplicates Detected", rep.DuplicatesDetected},
		{},
		{"Setting", "Value"},
		{"Critical Threshold", cfg.CriticalThreshold},
		{"High Threshold", cfg.HighThreshold},
		{"Medium Threshold", cfg.MediumThreshold},
		{"Invoice Pattern Trigger", cfg.InvoicePatternTrigger},
		{"Date Proximity Days", cfg.DateProximityDays},
		{"Fuzzy Amount Tolerance", cfg.FuzzyAmountTolerance},
		{"Legal Entity Scope", string(cfg.LegalEntityScope)},
	}

	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		if err := setRow(file, summarySheet, i+1, row); err != nil {
			return err
		}
	}

	if err := file.SetCellStyle(summarySheet, "A1", "B1", bold); err != nil {
		return err
	}
	if err := file.SetCellStyle(summarySheet, "A8", "B8", bold); err != nil {
		return err
	}
	return file.SetColWidth(summarySheet, "A", "A", 26)
}

func fillLines(file *excelize.File, rep *service.ValidationReport, bold int) error {
	if err := setRow(file, linesSheet, 1, lineHeaders); err != nil {
		return err
	}
	lastHeader, err := excelize.CoordinatesToCellName(len(lineHeaders), 1)
	if err != nil {
		return err
	}
	if err := file.SetCellStyle(linesSheet, "A1", lastHeader, bold); err != nil {
		return err
	}

	for i, line := range rep.Lines {
		inv := line.Invoice
		row := []interface{}{
			line.Index + 1,
			inv.InvoiceNumber,
			inv.VendorID,
			inv.VendorName,
			amountCell(inv.Amount.Valid(), inv.Amount.Float64(), inv.Amount.String()),
			inv.InvoiceDate.String(),
			string(line.Status),
		}

		if d := line.Detection; d != nil {
			var signals []string
			for _, s := range d.Signals {
				if s.Triggered {
					signals = append(signals, string(s.Name))
				}
			}
			row = append(row,
				d.Score,
				d.RiskLevel.Display().Label,
				d.RiskLevel.Display().Action,
				d.AutoHold,
				d.MatchedInvoice.InvoiceNumber,
				d.MatchedInvoice.VendorID,
				strings.Join(signals, ", "),
			)
		}

		if err := setRow(file, linesSheet, i+2, row); err != nil {
			return err
		}
	}

	if err := file.SetColWidth(linesSheet, "B", "D", 18); err != nil {
		return err
	}
	return file.SetPanes(linesSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

func amountCell(valid bool, value float64, text string) interface{} {
	if valid {
		return value
	}
	return text
}

func setRow(file *excelize.File, sheet string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := file.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("failed to set row %d on %s: %w", row, sheet, err)
	}
	return nil
}
