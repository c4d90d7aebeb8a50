package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"kielo/internal/config"
	"kielo/internal/preflight"
	"kielo/internal/queue"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show tool availability, readiness checks, and queue summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *queue.Store) error {
				out := cmd.OutOrStdout()

				depRows := make([][]string, 0, 3)
				for _, dep := range preflight.CheckSystemDeps(cfg) {
					state := "ok"
					if !dep.Available {
						state = "missing"
					}
					detail := dep.Detail
					if detail == "" {
						detail = dep.Description
					}
					depRows = append(depRows, []string{dep.Name, dep.Command, state, detail})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"Tool", "Command", "State", "Detail"},
					depRows,
					[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft},
				))

				checkRows := make([][]string, 0, 6)
				for _, check := range preflight.RunAll(cmd.Context(), cfg) {
					state := "ok"
					if !check.Passed {
						state = "failed"
					}
					checkRows = append(checkRows, []string{check.Name, state, check.Detail})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"Check", "State", "Detail"},
					checkRows,
					[]columnAlignment{alignLeft, alignLeft, alignLeft},
				))

				items, err := store.List(cmd.Context())
				if err != nil {
					return err
				}
				counts := make(map[queue.Status]int)
				for _, item := range items {
					counts[item.Status]++
				}
				if len(items) == 0 {
					fmt.Fprintln(out, "Queue is empty")
					return nil
				}
				statusRows := make([][]string, 0, len(counts))
				for _, status := range queue.AllStatuses() {
					if counts[status] == 0 {
						continue
					}
					statusRows = append(statusRows, []string{string(status), fmt.Sprintf("%d", counts[status])})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"Status", "Count"},
					statusRows,
					[]columnAlignment{alignLeft, alignRight},
				))
				return nil
			})
		},
	}
}
