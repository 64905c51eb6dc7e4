package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"ankisync/internal/logging"
	"ankisync/internal/relocate"
	"ankisync/internal/runlog"
)

func newRelocateCommand(ctx *commandContext) *cobra.Command {
	var (
		prefix   string
		moveFrom string
		ord      int
		dryRun   bool
	)

	cmd := &cobra.Command{
		Use:   "relocate",
		Short: "Move cards between parallel deck hierarchies",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.newLogger(cfg)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}

			opts := relocate.Options{
				SourceSegment: cfg.Relocate.SourceSegment,
				TargetSegment: cfg.Relocate.TargetSegment,
				CardOrd:       cfg.Relocate.CardOrd,
				OnlyFromDeck:  cfg.Relocate.OnlyFromDeck,
				DeckPrefix:    cfg.Relocate.DeckPrefix,
				InfoBatch:     cfg.Relocate.InfoBatch,
			}
			if cmd.Flags().Changed("prefix") {
				opts.DeckPrefix = prefix
			}
			if cmd.Flags().Changed("ord") {
				opts.CardOrd = ord
			}
			if cmd.Flags().Changed("move-from") {
				// "any" disables the current-deck safety check.
				if moveFrom == "any" {
					opts.OnlyFromDeck = ""
				} else {
					opts.OnlyFromDeck = moveFrom
				}
			}

			client := ctx.newStoreClient(cfg)
			relocator := relocate.New(client, opts, logger)

			runID := uuid.NewString()
			started := time.Now().UTC()
			execCtx := cmd.Context()

			moves, runErr := relocator.Plan(execCtx)

			moved := 0
			if runErr == nil && !dryRun && len(moves) > 0 {
				lock := flock.New(cfg.LockFilePath())
				locked, lockErr := lock.TryLock()
				switch {
				case lockErr != nil:
					runErr = fmt.Errorf("acquire mutation lock: %w", lockErr)
				case !locked:
					runErr = fmt.Errorf("another ankisync run is already modifying the collection")
				default:
					moved, runErr = relocator.Execute(execCtx, moves)
					_ = lock.Unlock()
				}
			}

			planned := 0
			for _, move := range moves {
				planned += len(move.CardIDs)
			}
			recordRun(execCtx, cfg, logger, runlog.Run{
				RunID:      runID,
				Command:    "relocate",
				StartedAt:  started,
				FinishedAt: time.Now().UTC(),
				Planned:    planned,
				Applied:    moved,
				DryRun:     dryRun,
				Status:     runStatus(runErr),
				Detail:     runDetail(runErr),
			})
			if runErr != nil {
				return runErr
			}

			out := cmd.OutOrStdout()
			if len(moves) == 0 {
				fmt.Fprintln(out, "No cards to move.")
				return nil
			}

			rows := make([][]string, 0, len(moves))
			for _, move := range moves {
				rows = append(rows, []string{
					move.SourceDeck,
					move.TargetDeck,
					strconv.Itoa(len(move.CardIDs)),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"FROM", "TO", "CARDS"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignRight},
			))

			if dryRun {
				fmt.Fprintln(out, "Dry run: no cards were moved.")
				return nil
			}
			fmt.Fprintf(out, "Moved %d card(s)\n", moved)
			logger.Info("relocate finished",
				logging.String(logging.FieldRunID, runID),
				logging.Int("moved", moved),
			)
			return nil
		},
	}

	cmd.Flags().StringVar(&prefix, "prefix", "", "Only consider decks with this name prefix")
	cmd.Flags().StringVar(&moveFrom, "move-from", "", `Only move cards currently in this deck ("any" disables the check)`)
	cmd.Flags().IntVar(&ord, "ord", 0, "Card template ordinal to move")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Plan without moving cards")

	return cmd
}
