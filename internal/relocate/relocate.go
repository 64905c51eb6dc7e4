package relocate

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"ankisync/internal/anki"
	"ankisync/internal/logging"
)

// Store is the slice of the AnkiConnect surface relocation uses.
type Store interface {
	DeckNames(ctx context.Context) ([]string, error)
	FindNotes(ctx context.Context, query string) ([]int64, error)
	NotesInfo(ctx context.Context, noteIDs []int64) ([]anki.NoteInfo, error)
	CardsInfo(ctx context.Context, cardIDs []int64) ([]anki.CardInfo, error)
	CreateDeck(ctx context.Context, name string) error
	ChangeDeck(ctx context.Context, cardIDs []int64, deck string) error
}

// Options parameterizes one relocation run.
type Options struct {
	SourceSegment string
	TargetSegment string
	// CardOrd is the zero-based card template ordinal to move.
	CardOrd int
	// OnlyFromDeck restricts moves to cards currently in this deck.
	// Empty disables the safety check.
	OnlyFromDeck string
	// DeckPrefix restricts source decks to this name prefix. Empty matches all.
	DeckPrefix string
	// InfoBatch bounds the card ids per cardsInfo request.
	InfoBatch int
}

// Move is one planned relocation: the cards of a source deck bound for its
// target-segment sibling.
type Move struct {
	SourceDeck string
	TargetDeck string
	CardIDs    []int64
}

// Relocator plans and executes card moves.
type Relocator struct {
	store  Store
	opts   Options
	logger *slog.Logger
}

// New constructs a relocator.
func New(store Store, opts Options, logger *slog.Logger) *Relocator {
	if opts.InfoBatch <= 0 {
		opts.InfoBatch = 200
	}
	return &Relocator{
		store:  store,
		opts:   opts,
		logger: logging.NewComponentLogger(logger, "relocate"),
	}
}

// MapDeck rewrites the first source-segment occurrence in a deck name.
func MapDeck(name, sourceSegment, targetSegment string) string {
	return strings.Replace(name, sourceSegment, targetSegment, 1)
}

// Plan inspects every matching source deck and returns the moves it would
// perform, sorted by source deck name. Nothing is mutated.
func (r *Relocator) Plan(ctx context.Context) ([]Move, error) {
	decks, err := r.store.DeckNames(ctx)
	if err != nil {
		return nil, fmt.Errorf("list decks: %w", err)
	}

	sources := r.sourceDecks(decks)
	r.logger.Info("source decks found", logging.Int("count", len(sources)))

	var moves []Move
	for _, deck := range sources {
		cardIDs, err := r.collectCards(ctx, deck)
		if err != nil {
			return nil, err
		}
		if len(cardIDs) == 0 {
			continue
		}
		moves = append(moves, Move{
			SourceDeck: deck,
			TargetDeck: MapDeck(deck, r.opts.SourceSegment, r.opts.TargetSegment),
			CardIDs:    cardIDs,
		})
	}
	return moves, nil
}

// Execute applies the moves, creating each target deck first. It returns the
// number of cards moved; a failed move aborts the remainder.
func (r *Relocator) Execute(ctx context.Context, moves []Move) (int, error) {
	moved := 0
	for _, move := range moves {
		if err := r.store.CreateDeck(ctx, move.TargetDeck); err != nil {
			return moved, fmt.Errorf("create deck %q: %w", move.TargetDeck, err)
		}
		if err := r.store.ChangeDeck(ctx, move.CardIDs, move.TargetDeck); err != nil {
			return moved, fmt.Errorf("move cards to %q: %w", move.TargetDeck, err)
		}
		moved += len(move.CardIDs)
		r.logger.Info("cards moved",
			logging.Int("count", len(move.CardIDs)),
			logging.String("from", move.SourceDeck),
			logging.String("to", move.TargetDeck),
		)
	}
	return moved, nil
}

func (r *Relocator) sourceDecks(names []string) []string {
	var sources []string
	for _, name := range names {
		if !strings.Contains(name, r.opts.SourceSegment) {
			continue
		}
		if r.opts.DeckPrefix != "" && !strings.HasPrefix(name, r.opts.DeckPrefix) {
			continue
		}
		sources = append(sources, name)
	}
	sort.Strings(sources)
	return sources
}

func (r *Relocator) collectCards(ctx context.Context, deck string) ([]int64, error) {
	noteIDs, err := r.store.FindNotes(ctx, fmt.Sprintf("deck:%q", deck))
	if err != nil {
		return nil, fmt.Errorf("find notes in %q: %w", deck, err)
	}
	if len(noteIDs) == 0 {
		return nil, nil
	}

	infos, err := r.store.NotesInfo(ctx, noteIDs)
	if err != nil {
		return nil, fmt.Errorf("fetch notes in %q: %w", deck, err)
	}
	var cardIDs []int64
	for _, info := range infos {
		cardIDs = append(cardIDs, info.Cards...)
	}
	if len(cardIDs) == 0 {
		return nil, nil
	}

	var selected []int64
	for start := 0; start < len(cardIDs); start += r.opts.InfoBatch {
		end := start + r.opts.InfoBatch
		if end > len(cardIDs) {
			end = len(cardIDs)
		}
		cards, err := r.store.CardsInfo(ctx, cardIDs[start:end])
		if err != nil {
			return nil, fmt.Errorf("fetch cards in %q: %w", deck, err)
		}
		for _, card := range cards {
			if card.Ord != r.opts.CardOrd {
				continue
			}
			if r.opts.OnlyFromDeck != "" && card.DeckName != r.opts.OnlyFromDeck {
				continue
			}
			selected = append(selected, card.CardID)
		}
	}
	return selected, nil
}
