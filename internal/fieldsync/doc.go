// Package fieldsync implements the note transformation pipeline.
//
// A run selects notes with a single search query, pages through their
// contents, derives the target field value from the comma-separated items of
// the source field (one espeak transcription per distinct item, memoized for
// the run), and accumulates only the values that actually differ. The
// planned updates are applied afterwards in bounded sub-batches, or not at
// all on a dry run. Because planning is diff-based the pipeline is
// idempotent: a second run over unchanged notes plans nothing.
package fieldsync
