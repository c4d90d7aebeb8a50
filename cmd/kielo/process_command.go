package main

import (
	"fmt"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"kielo/internal/config"
	"kielo/internal/logging"
	"kielo/internal/pipeline"
	"kielo/internal/preflight"
	"kielo/internal/queue"
)

func newProcessCommand(ctx *commandContext) *cobra.Command {
	var skipPreflight bool

	cmd := &cobra.Command{
		Use:   "process",
		Short: "Run the batch pipeline over the source directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *queue.Store) error {
				runCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
				defer stop()

				if !skipPreflight {
					if err := checkRequiredTools(cfg); err != nil {
						return err
					}
				}

				logger, err := logging.New(logging.Options{
					Level:  cfg.Logging.Level,
					Format: cfg.Logging.Format,
					OutputPaths: []string{
						"stdout",
						filepath.Join(cfg.Paths.LogDir, "kielo.log"),
					},
				})
				if err != nil {
					return fmt.Errorf("build logger: %w", err)
				}

				manager := pipeline.NewManager(cfg, store, logger)
				report, err := manager.Run(runCtx)
				if err != nil {
					return err
				}

				printBatchReport(cmd, report)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&skipPreflight, "skip-preflight", false, "Skip readiness checks before the batch")
	return cmd
}

func checkRequiredTools(cfg *config.Config) error {
	var failures []string
	for _, dep := range preflight.CheckSystemDeps(cfg) {
		if !dep.Available && !dep.Optional {
			failures = append(failures, fmt.Sprintf("%s: %s", dep.Name, dep.Detail))
		}
	}
	if len(failures) > 0 {
		return fmt.Errorf("missing required tools:\n  %s", strings.Join(failures, "\n  "))
	}
	return nil
}

func printBatchReport(cmd *cobra.Command, report *pipeline.BatchReport) {
	out := cmd.OutOrStdout()
	if len(report.Items) == 0 {
		fmt.Fprintln(out, "No source videos found")
		return
	}

	rows := make([][]string, 0, len(report.Items))
	for _, item := range report.Items {
		notes := make([]string, 0, len(item.StageErrors))
		for _, stageErr := range item.StageErrors {
			notes = append(notes, fmt.Sprintf("%s: %s", stageErr.Stage, stageErr.Message))
		}
		rows = append(rows, []string{
			fmt.Sprintf("%d", item.ItemID),
			item.Title,
			string(item.Status),
			item.Elapsed.Round(time.Second).String(),
			strings.Join(notes, "; "),
		})
	}

	fmt.Fprintln(out, renderTable(
		[]string{"ID", "Title", "Status", "Elapsed", "Notes"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignRight, alignLeft},
	))
	fmt.Fprintf(out, "Batch %s: %d completed, %d failed in %s\n",
		report.BatchID, report.Completed(), report.Failed(), report.Elapsed.Round(time.Second))
}
