package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"ankisync/internal/anki"
	"ankisync/internal/config"
	"ankisync/internal/fieldsync"
	"ankisync/internal/ipa"
	"ankisync/internal/logging"
	"ankisync/internal/runlog"
)

const previewRows = 10

func newSyncCommand(ctx *commandContext) *cobra.Command {
	var (
		deckRoot       string
		noteType       string
		sourceField    string
		targetField    string
		voice          string
		stripZeroWidth bool
		onlyIfEmpty    bool
		dryRun         bool
		limit          int
	)

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Fill the target field from transcriptions of the source field",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.newLogger(cfg)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}

			if sourceField == "" {
				sourceField = cfg.Sync.SourceField
			}
			if targetField == "" {
				targetField = cfg.Sync.TargetField
			}
			if voice == "" {
				voice = cfg.Sync.Voice
			}
			strip := cfg.Sync.StripZeroWidth
			if cmd.Flags().Changed("strip-zero-width") {
				strip = stripZeroWidth
			}

			client := ctx.newStoreClient(cfg)
			cache := ipa.NewCache()
			cliOpts := []ipa.Option{ipa.WithBinary(cfg.Espeak.Binary)}
			if cfg.Espeak.DataDir != "" {
				cliOpts = append(cliOpts, ipa.WithDataDir(cfg.Espeak.DataDir))
			}
			transcriber := ipa.NewCLI(voice, strip, cliOpts...)
			transformer := fieldsync.NewTransformer(fieldsync.Options{
				SourceField: sourceField,
				TargetField: targetField,
				OnlyIfEmpty: onlyIfEmpty,
			}, transcriber, cache)
			planner := fieldsync.NewPlanner(client, transformer, logger, cfg.Sync.NoteBatch, limit)

			query := fieldsync.BuildQuery(deckRoot, noteType)
			runID := uuid.NewString()
			started := time.Now().UTC()
			logger.Info("sync started",
				logging.String(logging.FieldRunID, runID),
				logging.String("query", query),
				logging.String("voice", transcriber.Voice()),
				logging.Bool("dry_run", dryRun),
			)

			execCtx := cmd.Context()
			plan, runErr := planner.Plan(execCtx, query)

			applied := 0
			if runErr == nil && !dryRun && len(plan.Updates) > 0 {
				applied, runErr = applyWithLock(execCtx, cfg, client, logger, plan.Updates)
			}

			logger.Info("transcription cache",
				logging.Int("entries", cache.Len()),
				logging.Int("hits", cache.Hits()),
				logging.Int("misses", cache.Misses()),
			)

			recordRun(execCtx, cfg, logger, runlog.Run{
				RunID:      runID,
				Command:    "sync",
				Query:      query,
				StartedAt:  started,
				FinishedAt: time.Now().UTC(),
				Matched:    planMatched(plan),
				Processed:  planProcessed(plan),
				Planned:    planUpdates(plan),
				Applied:    applied,
				DryRun:     dryRun,
				Status:     runStatus(runErr),
				Detail:     runDetail(runErr),
			})

			if runErr != nil {
				return runErr
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Query: %s\n", query)
			fmt.Fprintf(out, "Matched %d note(s), processed %d, planned %d update(s)\n",
				plan.Matched, plan.Processed, len(plan.Updates))
			if len(plan.Updates) > 0 {
				fmt.Fprintln(out, renderUpdatePreview(plan.Updates, targetField))
			}
			if dryRun {
				fmt.Fprintln(out, "Dry run: no changes were applied.")
				return nil
			}
			fmt.Fprintf(out, "Applied %d update(s)\n", applied)
			return nil
		},
	}

	cmd.Flags().StringVar(&deckRoot, "deck-root", "", "Restrict to decks under this root")
	cmd.Flags().StringVar(&noteType, "note-type", "", "Restrict to notes of this note type")
	cmd.Flags().StringVar(&sourceField, "source-field", "", "Field holding the comma-separated source items")
	cmd.Flags().StringVar(&targetField, "target-field", "", "Field receiving the derived value")
	cmd.Flags().StringVar(&voice, "voice", "", "espeak voice tag")
	cmd.Flags().BoolVar(&stripZeroWidth, "strip-zero-width", false, "Strip zero-width characters before transcribing")
	cmd.Flags().BoolVar(&onlyIfEmpty, "only-if-empty", false, "Skip notes whose target field already has content")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Plan without applying changes")
	cmd.Flags().IntVar(&limit, "limit", 0, "Process at most this many notes (0 = all)")

	return cmd
}

// applyWithLock serializes mutation against other ankisync processes before
// submitting the change set.
func applyWithLock(ctx context.Context, cfg *config.Config, client *anki.Client, logger *slog.Logger, updates []anki.FieldUpdate) (int, error) {
	lock := flock.New(cfg.LockFilePath())
	locked, err := lock.TryLock()
	if err != nil {
		return 0, fmt.Errorf("acquire mutation lock: %w", err)
	}
	if !locked {
		return 0, errors.New("another ankisync run is already modifying the collection")
	}
	defer func() { _ = lock.Unlock() }()

	mutator := fieldsync.NewBatchMutator(client, logger, cfg.Sync.UpdateBatch)
	return mutator.Apply(ctx, updates)
}

// recordRun logs history best-effort; a failed history write never fails the
// command itself.
func recordRun(ctx context.Context, cfg *config.Config, logger *slog.Logger, run runlog.Run) {
	store, err := runlog.Open(cfg)
	if err != nil {
		logger.Warn("run history unavailable", logging.Error(err))
		return
	}
	defer func() { _ = store.Close() }()
	if err := store.Record(ctx, run); err != nil {
		logger.Warn("failed to record run", logging.Error(err))
	}
}

func renderUpdatePreview(updates []anki.FieldUpdate, targetField string) string {
	rows := make([][]string, 0, previewRows)
	for i, update := range updates {
		if i == previewRows {
			break
		}
		rows = append(rows, []string{
			strconv.FormatInt(update.NoteID, 10),
			update.Field,
			update.Value,
		})
	}
	rendered := renderTable(
		[]string{"NOTE", "FIELD", "NEW VALUE"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft},
	)
	if len(updates) > previewRows {
		rendered += fmt.Sprintf("\n(and %d more)", len(updates)-previewRows)
	}
	return rendered
}

func planMatched(plan *fieldsync.Plan) int {
	if plan == nil {
		return 0
	}
	return plan.Matched
}

func planProcessed(plan *fieldsync.Plan) int {
	if plan == nil {
		return 0
	}
	return plan.Processed
}

func planUpdates(plan *fieldsync.Plan) int {
	if plan == nil {
		return 0
	}
	return len(plan.Updates)
}

func runStatus(err error) string {
	if err != nil {
		return runlog.StatusFailed
	}
	return runlog.StatusOK
}

func runDetail(err error) string {
	if err != nil {
		return err.Error()
	}
	return ""
}
