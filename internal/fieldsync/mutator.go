package fieldsync

import (
	"context"
	"fmt"
	"log/slog"

	"ankisync/internal/anki"
	"ankisync/internal/logging"
)

// BatchWriter is the slice of the AnkiConnect surface the mutator writes to.
type BatchWriter interface {
	UpdateNoteFieldsBatch(ctx context.Context, updates []anki.FieldUpdate) error
}

// MutationError reports a rejected sub-batch. Updates applied by earlier
// sub-batches stay applied; the remaining sub-batches were not attempted.
type MutationError struct {
	Batch   int // zero-based index of the failed sub-batch
	Applied int // updates confirmed before the failure
	Err     error
}

func (e *MutationError) Error() string {
	return fmt.Sprintf("apply sub-batch %d (after %d applied updates): %v", e.Batch, e.Applied, e.Err)
}

func (e *MutationError) Unwrap() error { return e.Err }

// BatchMutator applies a change set in bounded sub-batches.
type BatchMutator struct {
	writer    BatchWriter
	logger    *slog.Logger
	batchSize int
}

// NewBatchMutator constructs a mutator submitting batchSize updates per
// multi request.
func NewBatchMutator(writer BatchWriter, logger *slog.Logger, batchSize int) *BatchMutator {
	if batchSize <= 0 {
		batchSize = 50
	}
	return &BatchMutator{
		writer:    writer,
		logger:    logging.NewComponentLogger(logger, "mutator"),
		batchSize: batchSize,
	}
}

// Apply submits the updates in order and returns how many were applied. The
// first failing sub-batch aborts the remainder; there is no rollback.
func (m *BatchMutator) Apply(ctx context.Context, updates []anki.FieldUpdate) (int, error) {
	applied := 0
	for start, batch := 0, 0; start < len(updates); start, batch = start+m.batchSize, batch+1 {
		end := start + m.batchSize
		if end > len(updates) {
			end = len(updates)
		}

		if err := m.writer.UpdateNoteFieldsBatch(ctx, updates[start:end]); err != nil {
			return applied, &MutationError{Batch: batch, Applied: applied, Err: err}
		}
		applied += end - start
		m.logger.Debug("sub-batch applied", logging.Int("batch", batch), logging.Int("applied", applied))
	}
	return applied, nil
}
