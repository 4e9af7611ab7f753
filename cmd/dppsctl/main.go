package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/MrTurnables/dpps-prototype/internal/application/service"
	"github.com/MrTurnables/dpps-prototype/internal/config"
	"github.com/MrTurnables/dpps-prototype/internal/container"
	"github.com/MrTurnables/dpps-prototype/internal/domain/detection"
	"github.com/MrTurnables/dpps-prototype/pkg/utils"
)

var version = "dev"

// app carries state shared by every subcommand. It is filled in by the root
// command's PersistentPreRunE.
type app struct {
	configFile string
	logLevel   string

	logger    *zap.Logger
	detection detection.DetectionConfig
	gate      service.PaymentGateService
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "dppsctl",
		Short: "Check vendor invoice batches for duplicate payments",
		Long: `dppsctl runs the duplicate payment prevention checks offline.

Invoices are read from a JSON or YAML file. Only duplicates inside the file
are detected; use the HTTP service to check against recorded history.`,
		SilenceUsage:      true,
		PersistentPreRunE: a.init,
	}

	root.PersistentFlags().StringVar(&a.configFile, "config", "", "config file with a detection section (default: built-in thresholds)")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "warn", "log level (debug, info, warn, error)")

	root.AddCommand(scanCmd(a))
	root.AddCommand(compareCmd(a))
	root.AddCommand(exportCmd(a))
	root.AddCommand(versionCmd())
	return root
}

func (a *app) init(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load(a.configFile)
	if err != nil {
		return err
	}

	logger, err := utils.NewLogger(utils.LoggerConfig{
		Level:      a.logLevel,
		OutputPath: "stderr",
		Format:     "console",
	})
	if err != nil {
		return fmt.Errorf("failed to setup logging: %w", err)
	}

	a.logger = logger
	a.detection = cfg.Detection
	a.gate = service.NewPaymentGateService(nil, container.NewLoggerAdapter(logger))
	return nil
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "dppsctl %s\n", version)
		},
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd(&app{}).ExecuteContext(ctx)
	stop()

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
