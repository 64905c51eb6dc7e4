package relocate_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"ankisync/internal/anki"
	"ankisync/internal/logging"
	"ankisync/internal/relocate"
)

type fakeStore struct {
	decks       []string
	notesByDeck map[string][]anki.NoteInfo
	cards       map[int64]anki.CardInfo

	created   []string
	moves     map[string][]int64
	changeErr error

	cardsInfoSizes []int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		notesByDeck: make(map[string][]anki.NoteInfo),
		cards:       make(map[int64]anki.CardInfo),
		moves:       make(map[string][]int64),
	}
}

func (s *fakeStore) DeckNames(context.Context) ([]string, error) { return s.decks, nil }

func (s *fakeStore) FindNotes(_ context.Context, query string) ([]int64, error) {
	for deck, notes := range s.notesByDeck {
		if query == fmt.Sprintf("deck:%q", deck) {
			ids := make([]int64, 0, len(notes))
			for _, n := range notes {
				ids = append(ids, n.NoteID)
			}
			return ids, nil
		}
	}
	return nil, nil
}

func (s *fakeStore) NotesInfo(_ context.Context, noteIDs []int64) ([]anki.NoteInfo, error) {
	var infos []anki.NoteInfo
	for _, notes := range s.notesByDeck {
		for _, n := range notes {
			for _, id := range noteIDs {
				if n.NoteID == id {
					infos = append(infos, n)
				}
			}
		}
	}
	return infos, nil
}

func (s *fakeStore) CardsInfo(_ context.Context, cardIDs []int64) ([]anki.CardInfo, error) {
	s.cardsInfoSizes = append(s.cardsInfoSizes, len(cardIDs))
	infos := make([]anki.CardInfo, 0, len(cardIDs))
	for _, id := range cardIDs {
		infos = append(infos, s.cards[id])
	}
	return infos, nil
}

func (s *fakeStore) CreateDeck(_ context.Context, name string) error {
	s.created = append(s.created, name)
	return nil
}

func (s *fakeStore) ChangeDeck(_ context.Context, cardIDs []int64, deck string) error {
	if s.changeErr != nil {
		return s.changeErr
	}
	s.moves[deck] = append(s.moves[deck], cardIDs...)
	return nil
}

func (s *fakeStore) addNote(deck string, noteID int64, cards ...anki.CardInfo) {
	info := anki.NoteInfo{NoteID: noteID}
	for _, card := range cards {
		info.Cards = append(info.Cards, card.CardID)
		s.cards[card.CardID] = card
	}
	s.notesByDeck[deck] = append(s.notesByDeck[deck], info)
}

func defaultOptions() relocate.Options {
	return relocate.Options{
		SourceSegment: "::word2mean",
		TargetSegment: "::exercise",
		CardOrd:       2,
		OnlyFromDeck:  "Default",
	}
}

func TestMapDeckReplacesFirstOccurrence(t *testing.T) {
	got := relocate.MapDeck("Vocab::word2mean::Unit1::word2mean", "::word2mean", "::exercise")
	if got != "Vocab::exercise::Unit1::word2mean" {
		t.Fatalf("unexpected mapping: %q", got)
	}
}

func TestPlanSelectsMatchingOrdAndDeck(t *testing.T) {
	store := newFakeStore()
	deck := "Vocab::word2mean::Unit1"
	store.decks = []string{deck, "Vocab::other"}
	store.addNote(deck, 1,
		anki.CardInfo{CardID: 10, Ord: 0, DeckName: "Default"},
		anki.CardInfo{CardID: 11, Ord: 2, DeckName: "Default"},
		anki.CardInfo{CardID: 12, Ord: 2, DeckName: "Elsewhere"},
	)

	relocator := relocate.New(store, defaultOptions(), logging.NewNop())
	moves, err := relocator.Plan(context.Background())
	if err != nil {
		t.Fatalf("Plan returned error: %v", err)
	}

	if len(moves) != 1 {
		t.Fatalf("expected 1 move, got %d", len(moves))
	}
	move := moves[0]
	if move.TargetDeck != "Vocab::exercise::Unit1" {
		t.Fatalf("unexpected target deck: %q", move.TargetDeck)
	}
	if len(move.CardIDs) != 1 || move.CardIDs[0] != 11 {
		t.Fatalf("expected only card 11 (ord match + safety deck), got %v", move.CardIDs)
	}
}

func TestPlanDisabledSafetyMovesFromAnyDeck(t *testing.T) {
	store := newFakeStore()
	deck := "Vocab::word2mean::Unit1"
	store.decks = []string{deck}
	store.addNote(deck, 1,
		anki.CardInfo{CardID: 11, Ord: 2, DeckName: "Default"},
		anki.CardInfo{CardID: 12, Ord: 2, DeckName: "Elsewhere"},
	)

	opts := defaultOptions()
	opts.OnlyFromDeck = ""
	relocator := relocate.New(store, opts, logging.NewNop())
	moves, err := relocator.Plan(context.Background())
	if err != nil {
		t.Fatalf("Plan returned error: %v", err)
	}
	if len(moves) != 1 || len(moves[0].CardIDs) != 2 {
		t.Fatalf("expected both ord-2 cards, got %+v", moves)
	}
}

func TestPlanHonorsDeckPrefix(t *testing.T) {
	store := newFakeStore()
	store.decks = []string{
		"A::word2mean::One",
		"B::word2mean::Two",
	}
	store.addNote("A::word2mean::One", 1, anki.CardInfo{CardID: 10, Ord: 2, DeckName: "Default"})
	store.addNote("B::word2mean::Two", 2, anki.CardInfo{CardID: 20, Ord: 2, DeckName: "Default"})

	opts := defaultOptions()
	opts.DeckPrefix = "A::"
	relocator := relocate.New(store, opts, logging.NewNop())
	moves, err := relocator.Plan(context.Background())
	if err != nil {
		t.Fatalf("Plan returned error: %v", err)
	}
	if len(moves) != 1 || moves[0].SourceDeck != "A::word2mean::One" {
		t.Fatalf("prefix filter failed: %+v", moves)
	}
}

func TestPlanBatchesCardsInfoRequests(t *testing.T) {
	store := newFakeStore()
	deck := "Vocab::word2mean::Big"
	store.decks = []string{deck}
	cards := make([]anki.CardInfo, 0, 5)
	for i := 0; i < 5; i++ {
		cards = append(cards, anki.CardInfo{CardID: int64(100 + i), Ord: 2, DeckName: "Default"})
	}
	store.addNote(deck, 1, cards...)

	opts := defaultOptions()
	opts.InfoBatch = 2
	relocator := relocate.New(store, opts, logging.NewNop())
	if _, err := relocator.Plan(context.Background()); err != nil {
		t.Fatalf("Plan returned error: %v", err)
	}

	want := []int{2, 2, 1}
	if len(store.cardsInfoSizes) != len(want) {
		t.Fatalf("unexpected cardsInfo batching: %v", store.cardsInfoSizes)
	}
	for i, size := range want {
		if store.cardsInfoSizes[i] != size {
			t.Fatalf("batch %d: got %d want %d", i, store.cardsInfoSizes[i], size)
		}
	}
}

func TestExecuteCreatesTargetAndMoves(t *testing.T) {
	store := newFakeStore()
	relocator := relocate.New(store, defaultOptions(), logging.NewNop())

	moves := []relocate.Move{
		{SourceDeck: "A::word2mean", TargetDeck: "A::exercise", CardIDs: []int64{1, 2}},
		{SourceDeck: "B::word2mean", TargetDeck: "B::exercise", CardIDs: []int64{3}},
	}
	moved, err := relocator.Execute(context.Background(), moves)
	if err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if moved != 3 {
		t.Fatalf("expected 3 moved cards, got %d", moved)
	}
	if len(store.created) != 2 || store.created[0] != "A::exercise" {
		t.Fatalf("unexpected deck creation: %v", store.created)
	}
	if len(store.moves["B::exercise"]) != 1 {
		t.Fatalf("unexpected moves: %v", store.moves)
	}
}

func TestExecuteAbortsOnFailure(t *testing.T) {
	store := newFakeStore()
	store.changeErr = errors.New("collection locked")
	relocator := relocate.New(store, defaultOptions(), logging.NewNop())

	moves := []relocate.Move{
		{SourceDeck: "A::word2mean", TargetDeck: "A::exercise", CardIDs: []int64{1}},
		{SourceDeck: "B::word2mean", TargetDeck: "B::exercise", CardIDs: []int64{2}},
	}
	moved, err := relocator.Execute(context.Background(), moves)
	if err == nil {
		t.Fatal("expected error")
	}
	if moved != 0 {
		t.Fatalf("expected no confirmed moves, got %d", moved)
	}
}
