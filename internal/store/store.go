// Package store owns the authoritative in-memory deck collection and its
// persistence. Mutation operations update memory synchronously and return;
// persistence runs afterwards as a side effect through the configured
// Strategy, debounced by the Scheduler when the backend is remote.
package store

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"

	"flashdeck/internal/models"
	"flashdeck/internal/study"
)

// Store is the deck collection plus its persistence status. Every mutation
// installs a brand-new snapshot of the decks slice, so a save (or a
// renderer) can always walk a stable, consistent snapshot without racing
// an in-progress mutation.
type Store struct {
	mu       sync.Mutex
	decks    []models.Deck
	loading  bool
	syncing  bool
	lastErr  *SyncError
	identity string
	gen      int // bumped on every load or identity switch; stale async results are discarded

	strategy Strategy
	sched    Scheduler
	tokens   TokenStore
}

// New creates a store around a persistence strategy. sched may be nil for
// strategies that persist without network latency (saves then run inline
// with the mutation); tokens may be nil when the strategy has no identity
// to remember between sessions.
func New(strategy Strategy, sched Scheduler, tokens TokenStore) *Store {
	if sched == nil {
		sched = immediateScheduler{}
	}
	return &Store{strategy: strategy, sched: sched, tokens: tokens}
}

// Open loads the persisted collection into memory. Persistence errors do
// not propagate: a missing document is a fresh start, a corrupt one falls
// back to an empty collection so the application stays usable, and a
// transport failure surfaces through LastError.
func (s *Store) Open(ctx context.Context) {
	s.mu.Lock()
	s.loading = true
	s.gen++
	gen := s.gen
	identity := s.identity
	s.mu.Unlock()

	if identity == "" && s.tokens != nil {
		tok, err := s.tokens.Get()
		if err != nil {
			log.Printf("failed to read sync token: %v", err)
		} else if tok != "" {
			identity = tok
			s.mu.Lock()
			if gen == s.gen {
				s.identity = tok
			}
			s.mu.Unlock()
		}
	}

	s.finishLoad(ctx, gen, identity)
}

// AdoptSyncIdentity discards the in-memory collection and reloads it under
// the supplied token. This is an explicit, confirmed replacement, not a
// merge. A save still in flight under the old identity is discarded when
// it completes.
func (s *Store) AdoptSyncIdentity(ctx context.Context, token string) {
	token = strings.TrimSpace(token)
	if token == "" {
		return
	}

	s.mu.Lock()
	s.gen++
	gen := s.gen
	s.identity = token
	s.decks = nil
	s.loading = true
	s.syncing = false
	s.lastErr = nil
	s.mu.Unlock()

	if s.tokens != nil {
		if err := s.tokens.Set(token); err != nil {
			log.Printf("failed to persist sync token: %v", err)
		}
	}

	s.finishLoad(ctx, gen, token)
}

// finishLoad fetches the collection for identity and installs the result,
// unless a later load or identity switch superseded this one.
func (s *Store) finishLoad(ctx context.Context, gen int, identity string) {
	col, err := s.strategy.Load(ctx, identity)

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen {
		return
	}
	s.loading = false

	if err == nil {
		s.decks = col.Decks
		s.lastErr = nil
		return
	}
	if errors.Is(err, ErrNotFound) {
		// Fresh identity; nothing to load yet.
		s.decks = nil
		s.lastErr = nil
		return
	}

	syncErr := asSyncError("load", err)
	if syncErr.Kind == KindDecode {
		log.Printf("discarding corrupt saved collection: %v", syncErr)
		s.decks = nil
		s.lastErr = nil
		return
	}
	s.decks = nil
	s.lastErr = syncErr
}

// Decks returns the current snapshot. Mutations never modify a snapshot in
// place, so the returned slice stays consistent after later mutations.
func (s *Store) Decks() []models.Deck {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.decks
}

// Deck returns the deck with the given id from the current snapshot.
func (s *Store) Deck(deckID string) (models.Deck, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, d := range s.decks {
		if d.ID == deckID {
			return d, true
		}
	}
	return models.Deck{}, false
}

// Loading reports whether the initial (or an identity-switch) load is
// still in flight.
func (s *Store) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// Syncing reports whether a save round-trip is underway.
func (s *Store) Syncing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.syncing
}

// LastError returns the most recent persistence failure, or nil. A
// successful save clears it.
func (s *Store) LastError() *SyncError {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// Identity returns the sync token the collection is stored under, or ""
// when none exists yet.
func (s *Store) Identity() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.identity
}

// CreateDeck appends a new empty deck. An empty name after trimming is a
// silent no-op.
func (s *Store) CreateDeck(name string) (models.Deck, bool) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.Deck{}, false
	}
	deck := models.Deck{ID: models.NewDeckID(), Name: name, Cards: []models.Flashcard{}}
	s.mutate(func(decks []models.Deck) ([]models.Deck, bool) {
		return appendDeck(decks, deck), true
	})
	return deck, true
}

// DeleteDeck removes the deck and all its cards. Unknown ids are ignored,
// so repeated deletes are idempotent.
func (s *Store) DeleteDeck(deckID string) {
	s.mutate(func(decks []models.Deck) ([]models.Deck, bool) {
		found := false
		next := make([]models.Deck, 0, len(decks))
		for _, d := range decks {
			if d.ID == deckID {
				found = true
				continue
			}
			next = append(next, d)
		}
		return next, found
	})
}

// RenameDeck changes a deck's name. A no-op when the trimmed name is empty
// or identical to the current one.
func (s *Store) RenameDeck(deckID, name string) {
	name = strings.TrimSpace(name)
	if name == "" {
		return
	}
	s.mutate(func(decks []models.Deck) ([]models.Deck, bool) {
		return updateDeck(decks, deckID, func(d models.Deck) (models.Deck, bool) {
			if d.Name == name {
				return d, false
			}
			d.Name = name
			return d, true
		})
	})
}

// CreateCard appends a card with a fresh id and default mastery fields.
// Returns false when the deck does not exist.
func (s *Store) CreateCard(deckID string, front, back models.CardContent) (models.Flashcard, bool) {
	card := models.Flashcard{ID: models.NewCardID(), Front: front, Back: back}
	ok := s.mutate(func(decks []models.Deck) ([]models.Deck, bool) {
		return updateDeck(decks, deckID, func(d models.Deck) (models.Deck, bool) {
			d.Cards = appendCards(d.Cards, card)
			return d, true
		})
	})
	if !ok {
		return models.Flashcard{}, false
	}
	return card, true
}

// UpdateCard replaces the card matching card.ID within the deck. Other
// cards are untouched; no match is a no-op.
func (s *Store) UpdateCard(deckID string, card models.Flashcard) {
	s.mutate(func(decks []models.Deck) ([]models.Deck, bool) {
		return updateDeck(decks, deckID, func(d models.Deck) (models.Deck, bool) {
			i := d.FindCard(card.ID)
			if i < 0 {
				return d, false
			}
			cards := make([]models.Flashcard, len(d.Cards))
			copy(cards, d.Cards)
			cards[i] = card
			d.Cards = cards
			return d, true
		})
	})
}

// DeleteCard removes the matching card. Idempotent.
func (s *Store) DeleteCard(deckID, cardID string) {
	s.mutate(func(decks []models.Deck) ([]models.Deck, bool) {
		return updateDeck(decks, deckID, func(d models.Deck) (models.Deck, bool) {
			i := d.FindCard(cardID)
			if i < 0 {
				return d, false
			}
			cards := make([]models.Flashcard, 0, len(d.Cards)-1)
			cards = append(cards, d.Cards[:i]...)
			cards = append(cards, d.Cards[i+1:]...)
			d.Cards = cards
			return d, true
		})
	})
}

// RecordStudyResult applies the mastery transition to the matching card.
func (s *Store) RecordStudyResult(deckID, cardID string, isCorrect bool) {
	s.mutate(func(decks []models.Deck) ([]models.Deck, bool) {
		return updateDeck(decks, deckID, func(d models.Deck) (models.Deck, bool) {
			i := d.FindCard(cardID)
			if i < 0 {
				return d, false
			}
			cards := make([]models.Flashcard, len(d.Cards))
			copy(cards, d.Cards)
			cards[i] = study.ApplyFeedback(cards[i], isCorrect)
			d.Cards = cards
			return d, true
		})
	})
}

// ImportCards appends the incoming cards to the deck with fresh ids,
// preserving input order. Mastery fields the document omitted take their
// defaults. Returns false when the deck does not exist.
func (s *Store) ImportCards(deckID string, cards []models.PortableCard) bool {
	if len(cards) == 0 {
		_, ok := s.Deck(deckID)
		return ok
	}
	imported := make([]models.Flashcard, len(cards))
	for i, p := range cards {
		imported[i] = p.Materialize()
	}
	return s.mutate(func(decks []models.Deck) ([]models.Deck, bool) {
		return updateDeck(decks, deckID, func(d models.Deck) (models.Deck, bool) {
			d.Cards = appendCards(d.Cards, imported...)
			return d, true
		})
	})
}

// ImportDeck creates a new deck holding the imported cards, as one
// combined operation. An empty name after trimming is a silent no-op.
func (s *Store) ImportDeck(name string, cards []models.PortableCard) (models.Deck, bool) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.Deck{}, false
	}
	deck := models.Deck{ID: models.NewDeckID(), Name: name, Cards: make([]models.Flashcard, len(cards))}
	for i, p := range cards {
		deck.Cards[i] = p.Materialize()
	}
	s.mutate(func(decks []models.Deck) ([]models.Deck, bool) {
		return appendDeck(decks, deck), true
	})
	return deck, true
}

// mutate installs the snapshot built by fn and schedules a save. fn must
// treat the slice it receives as read-only and return a fresh one when it
// changes anything. A false return means nothing changed, and no save is
// scheduled.
func (s *Store) mutate(fn func(decks []models.Deck) ([]models.Deck, bool)) bool {
	s.mu.Lock()
	next, changed := fn(s.decks)
	if changed {
		s.decks = next
	}
	// The initial load owns the collection until it settles; saving now
	// would persist pre-load state.
	skipSave := !changed || s.loading
	s.mu.Unlock()

	if !skipSave {
		s.sched.Schedule(s.saveNow)
	}
	return changed
}

// saveNow runs when the scheduler fires. It captures the latest snapshot
// at fire time, so a coalesced burst of mutations saves once with the
// final state. A result arriving after the identity changed is discarded.
func (s *Store) saveNow() {
	s.mu.Lock()
	gen := s.gen
	identity := s.identity
	snapshot := models.Collection{Decks: s.decks}
	s.syncing = true
	s.mu.Unlock()

	newIdentity, err := s.strategy.Save(context.Background(), identity, snapshot)

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen {
		// Issued under a superseded identity; the new identity's state is
		// authoritative now.
		return
	}
	s.syncing = false
	if err != nil {
		s.lastErr = asSyncError("save", err)
		return
	}
	s.lastErr = nil
	if newIdentity != "" && newIdentity != s.identity {
		s.identity = newIdentity
		if s.tokens != nil {
			if terr := s.tokens.Set(newIdentity); terr != nil {
				log.Printf("failed to persist sync token: %v", terr)
			}
		}
	}
}

// appendDeck copies the slice and appends, leaving the old snapshot intact.
func appendDeck(decks []models.Deck, deck models.Deck) []models.Deck {
	next := make([]models.Deck, len(decks), len(decks)+1)
	copy(next, decks)
	return append(next, deck)
}

// appendCards copies the slice and appends, leaving the old snapshot intact.
func appendCards(cards []models.Flashcard, extra ...models.Flashcard) []models.Flashcard {
	next := make([]models.Flashcard, len(cards), len(cards)+len(extra))
	copy(next, cards)
	return append(next, extra...)
}

// updateDeck rebuilds the deck slice with the matching deck replaced by
// fn's result. The original slice and its decks are left untouched.
func updateDeck(decks []models.Deck, deckID string, fn func(models.Deck) (models.Deck, bool)) ([]models.Deck, bool) {
	for i := range decks {
		if decks[i].ID != deckID {
			continue
		}
		updated, changed := fn(decks[i])
		if !changed {
			return decks, false
		}
		next := make([]models.Deck, len(decks))
		copy(next, decks)
		next[i] = updated
		return next, true
	}
	return decks, false
}
