// File: cmd/run.go
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/droidpilot/droidpilot-cli/internal/agent"
	"github.com/droidpilot/droidpilot-cli/internal/device"
	"github.com/droidpilot/droidpilot-cli/internal/observability"
	"github.com/droidpilot/droidpilot-cli/internal/perception"
	"github.com/droidpilot/droidpilot-cli/internal/planner"
	"github.com/droidpilot/droidpilot-cli/internal/report"
)

func newRunCommand() *cobra.Command {
	var (
		maxSteps        int
		continueOnError bool
		serial          string
		noScreenshot    bool
	)

	runCmd := &cobra.Command{
		Use:   `run "task description" ["another task" ...]`,
		Short: "Run one or more automation tasks against the connected device.",
		Long:  "Each task is driven through its own perceive-plan-act loop until the planner declares it complete, the step budget runs out, or a fatal error occurs. Tasks run one after another because they share the device.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := appConfig
			logger := observability.GetLogger()

			// Flag overrides win over file and environment values.
			if cmd.Flags().Changed("max-steps") {
				cfg.Agent.MaxSteps = maxSteps
			}
			if cmd.Flags().Changed("continue-on-error") {
				cfg.Agent.ContinueOnError = continueOnError
			}
			if cmd.Flags().Changed("serial") {
				cfg.Device.Serial = serial
			}
			if cmd.Flags().Changed("no-screenshot") {
				cfg.Planner.SendScreenshot = !noScreenshot
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			ctx := cmd.Context()

			transport := device.NewADB(cfg.Device, logger)
			if err := transport.Connect(ctx); err != nil {
				return fmt.Errorf("device connection failed: %w", err)
			}

			source := device.NewSource(transport, cfg.Device, logger)
			perceptor := perception.NewBuilder(source, cfg.Perception, logger)
			executor := device.NewExecutor(transport, logger)

			pl, err := planner.New(cfg.Planner, logger)
			if err != nil {
				return fmt.Errorf("planner initialization failed: %w", err)
			}

			runner := agent.NewRunner(cfg.Agent, perceptor, pl, executor, logger)
			results := runner.RunAll(ctx, args)

			writer := report.NewWriter(cfg.Report, logger)
			failed := 0
			for _, result := range results {
				if path, err := writer.Write(result); err != nil {
					logger.Warn("Failed to write task report", zap.Error(err))
				} else if path != "" {
					fmt.Fprintf(cmd.OutOrStdout(), "Report: %s\n", path)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "[%s] %q finished after %d step(s)\n",
					result.Outcome, result.Description, result.Steps)
				if !result.Succeeded() {
					failed++
				}
			}

			if failed > 0 {
				return fmt.Errorf("%d of %d task(s) did not complete", failed, len(results))
			}
			return nil
		},
	}

	runCmd.Flags().IntVar(&maxSteps, "max-steps", 0, "override the per-task step budget")
	runCmd.Flags().BoolVar(&continueOnError, "continue-on-error", false, "record planner and validation failures as steps instead of aborting")
	runCmd.Flags().StringVarP(&serial, "serial", "s", "", "target device serial (as shown by `adb devices`)")
	runCmd.Flags().BoolVar(&noScreenshot, "no-screenshot", false, "do not attach screenshots to planner requests")
	return runCmd
}
