package fieldsync

import (
	"context"
	"fmt"
	"strings"

	"ankisync/internal/anki"
	"ankisync/internal/ipa"
)

// Transcriber is the per-item transcription capability the transformer
// consumes. ipa.CLI satisfies it; tests inject fakes.
type Transcriber interface {
	Transcribe(ctx context.Context, text string) (string, error)
	CacheKey(text string) ipa.Key
}

// Options parameterizes the field transformation.
type Options struct {
	SourceField string
	TargetField string
	// OnlyIfEmpty skips notes whose target field is already populated.
	OnlyIfEmpty bool
}

// Transformer derives the candidate target value for one note.
type Transformer struct {
	opts        Options
	transcriber Transcriber
	cache       *ipa.Cache
}

// NewTransformer constructs a transformer. The cache is owned by the caller
// and scoped to one run; passing the same cache across notes is what makes
// repeated vocabulary cheap.
func NewTransformer(opts Options, transcriber Transcriber, cache *ipa.Cache) *Transformer {
	if cache == nil {
		cache = ipa.NewCache()
	}
	return &Transformer{opts: opts, transcriber: transcriber, cache: cache}
}

// SplitItems splits a field value on commas, trims each piece, and drops
// empty pieces. Order of first appearance is preserved and duplicates are
// kept; the composed output must mirror the source ordering.
func SplitItems(value string) []string {
	var items []string
	for _, piece := range strings.Split(value, ",") {
		if piece = strings.TrimSpace(piece); piece != "" {
			items = append(items, piece)
		}
	}
	return items
}

// Transform inspects one note and returns the planned update for it. The
// boolean is false when the note needs no change: empty source, populated
// target under OnlyIfEmpty, or a composed value equal to the current target.
func (t *Transformer) Transform(ctx context.Context, note anki.NoteInfo) (anki.FieldUpdate, bool, error) {
	var none anki.FieldUpdate

	source := note.FieldValue(t.opts.SourceField)
	if source == "" {
		return none, false, nil
	}

	target := note.FieldValue(t.opts.TargetField)
	if t.opts.OnlyIfEmpty && target != "" {
		return none, false, nil
	}

	items := SplitItems(source)
	if len(items) == 0 {
		return none, false, nil
	}

	transcriptions := make([]string, 0, len(items))
	for _, item := range items {
		value, err := t.cache.GetOrCompute(t.transcriber.CacheKey(item), func() (string, error) {
			return t.transcriber.Transcribe(ctx, item)
		})
		if err != nil {
			return none, false, err
		}
		if value != "" {
			transcriptions = append(transcriptions, value)
		}
	}

	// When nothing transcribes, the composed value is the bare source: the
	// parenthetical is omitted rather than left empty.
	composed := source
	if len(transcriptions) > 0 {
		composed = fmt.Sprintf("%s (%s)", source, strings.Join(transcriptions, ", "))
	}

	if composed == target {
		return none, false, nil
	}
	return anki.FieldUpdate{NoteID: note.NoteID, Field: t.opts.TargetField, Value: composed}, true, nil
}
