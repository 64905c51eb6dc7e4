package fieldsync

import (
	"context"
	"fmt"
	"log/slog"

	"ankisync/internal/anki"
	"ankisync/internal/logging"
)

// Store is the slice of the AnkiConnect surface the planner reads from.
type Store interface {
	FindNotes(ctx context.Context, query string) ([]int64, error)
	NotesInfo(ctx context.Context, noteIDs []int64) ([]anki.NoteInfo, error)
}

// Plan is the accumulated, not-yet-applied change set of one run.
type Plan struct {
	Query     string
	Matched   int
	Processed int
	Updates   []anki.FieldUpdate
}

// Planner drives paged retrieval and transformation. It never mutates the
// store; executing the plan is the caller's decision.
type Planner struct {
	store       Store
	transformer *Transformer
	logger      *slog.Logger
	noteBatch   int
	limit       int
}

// NewPlanner constructs a planner. noteBatch bounds the ids per notesInfo
// request; limit, when positive, caps the notes processed before paging
// begins (useful for preview runs).
func NewPlanner(store Store, transformer *Transformer, logger *slog.Logger, noteBatch, limit int) *Planner {
	if noteBatch <= 0 {
		noteBatch = 200
	}
	return &Planner{
		store:       store,
		transformer: transformer,
		logger:      logging.NewComponentLogger(logger, "planner"),
		noteBatch:   noteBatch,
		limit:       limit,
	}
}

// Plan selects matching notes and accumulates every candidate update, in
// page order and within-page note order.
func (p *Planner) Plan(ctx context.Context, query string) (*Plan, error) {
	ids, err := p.store.FindNotes(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("find notes: %w", err)
	}

	plan := &Plan{Query: query, Matched: len(ids)}
	p.logger.Info("notes matched", logging.String("query", query), logging.Int("count", len(ids)))

	if p.limit > 0 && len(ids) > p.limit {
		ids = ids[:p.limit]
		p.logger.Info("limiting run", logging.Int("limit", p.limit))
	}

	for start := 0; start < len(ids); start += p.noteBatch {
		end := start + p.noteBatch
		if end > len(ids) {
			end = len(ids)
		}

		infos, err := p.store.NotesInfo(ctx, ids[start:end])
		if err != nil {
			return nil, fmt.Errorf("fetch notes %d-%d: %w", start, end, err)
		}

		for _, info := range infos {
			update, ok, err := p.transformer.Transform(ctx, info)
			if err != nil {
				return nil, fmt.Errorf("transform note %d: %w", info.NoteID, err)
			}
			plan.Processed++
			if ok {
				plan.Updates = append(plan.Updates, update)
			}
		}
		p.logger.Debug("page planned",
			logging.Int("from", start),
			logging.Int("to", end),
			logging.Int("updates", len(plan.Updates)),
		)
	}

	p.logger.Info("plan complete",
		logging.Int("processed", plan.Processed),
		logging.Int("updates", len(plan.Updates)),
	)
	return plan, nil
}
