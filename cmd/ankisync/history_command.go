package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"ankisync/internal/runlog"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			store, err := runlog.Open(cfg)
			if err != nil {
				return fmt.Errorf("open run history: %w", err)
			}
			defer func() { _ = store.Close() }()

			runs, err := store.Recent(cmd.Context(), limit)
			if err != nil {
				return fmt.Errorf("read run history: %w", err)
			}

			out := cmd.OutOrStdout()
			if len(runs) == 0 {
				fmt.Fprintln(out, "No runs recorded yet.")
				return nil
			}

			rows := make([][]string, 0, len(runs))
			for _, run := range runs {
				rows = append(rows, []string{
					run.StartedAt.Local().Format(time.DateTime),
					run.Command,
					run.Query,
					strconv.Itoa(run.Matched),
					strconv.Itoa(run.Planned),
					strconv.Itoa(run.Applied),
					yesNo(run.DryRun),
					run.Status,
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"STARTED", "COMMAND", "QUERY", "MATCHED", "PLANNED", "APPLIED", "DRY", "STATUS"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight, alignLeft, alignLeft},
			))
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of runs to show")
	return cmd
}
