package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/MrTurnables/dpps-prototype/internal/application/service"
	"github.com/MrTurnables/dpps-prototype/internal/report"
)

func scanCmd(a *app) *cobra.Command {
	var file, output string

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Scan a batch for duplicate invoices",
		Long: `Scan validates every line of a batch against the other lines and prints
the gate report: summary counts, the status of each line and the duplicates
that were found.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rep, err := a.validate(cmd, file)
			if err != nil {
				return err
			}
			return writeOutput(cmd.OutOrStdout(), output, rep)
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "JSON or YAML file with the invoice batch")
	cmd.Flags().StringVarP(&output, "output", "o", formatJSON, "output format (json, yaml)")
	return cmd
}

func compareCmd(a *app) *cobra.Command {
	var file, output string

	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Score one invoice against a candidate",
		RunE: func(cmd *cobra.Command, _ []string) error {
			pair, err := readPair(file)
			if err != nil {
				return err
			}
			result, err := a.gate.Compare(pair.Current, pair.Candidate, a.detection.Apply(pair.Config))
			if err != nil {
				return err
			}
			return writeOutput(cmd.OutOrStdout(), output, result)
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "JSON or YAML file with {current, candidate}")
	cmd.Flags().StringVarP(&output, "output", "o", formatJSON, "output format (json, yaml)")
	return cmd
}

func exportCmd(a *app) *cobra.Command {
	var file, out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the gate report of a batch as an Excel workbook",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rep, err := a.validate(cmd, file)
			if err != nil {
				return err
			}
			if out == "" {
				out = fmt.Sprintf("payment-gate-%s.xlsx", time.Now().Format("20060102-150405"))
			}
			if err := writeWorkbook(out, rep); err != nil {
				return err
			}
			a.logger.Info("Report exported", zap.String("path", out), zap.Int("lines", rep.TotalLines))
			fmt.Fprintf(cmd.OutOrStdout(), "%d lines: %d approved, %d held, %d review -> %s\n",
				rep.TotalLines, rep.ApprovedLines, rep.HeldLines, rep.ReviewLines, out)
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "JSON or YAML file with the invoice batch")
	cmd.Flags().StringVar(&out, "out", "", "workbook path (default: payment-gate-<timestamp>.xlsx)")
	return cmd
}

func (a *app) validate(cmd *cobra.Command, file string) (*service.ValidationReport, error) {
	batch, err := readBatch(file)
	if err != nil {
		return nil, err
	}
	return a.gate.Validate(cmd.Context(), batch.Invoices, a.detection.Apply(batch.Config))
}

func writeWorkbook(path string, rep *service.ValidationReport) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := report.WriteXLSX(f, rep); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
