package store

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"flashdeck/internal/models"
)

var errInvalid = errors.New("backend unavailable")

// fakeStrategy records saves and serves canned loads, keyed by identity.
type fakeStrategy struct {
	mu             sync.Mutex
	loads          map[string]models.Collection
	loadErr        error
	saveID         string
	saveErr        error
	saveGate       chan struct{} // when non-nil, Save blocks until closed
	saveSnapshots  []models.Collection
	saveIdentities []string
}

func (f *fakeStrategy) Load(ctx context.Context, identity string) (models.Collection, error) {
	if f.loadErr != nil {
		return models.Collection{}, f.loadErr
	}
	f.mu.Lock()
	col, ok := f.loads[identity]
	f.mu.Unlock()
	if !ok {
		return models.Collection{}, ErrNotFound
	}
	return col, nil
}

func (f *fakeStrategy) Save(ctx context.Context, identity string, col models.Collection) (string, error) {
	if f.saveGate != nil {
		<-f.saveGate
	}
	f.mu.Lock()
	f.saveSnapshots = append(f.saveSnapshots, col)
	f.saveIdentities = append(f.saveIdentities, identity)
	f.mu.Unlock()
	return f.saveID, f.saveErr
}

func (f *fakeStrategy) saveCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.saveSnapshots)
}

func (f *fakeStrategy) lastSnapshot() models.Collection {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.saveSnapshots[len(f.saveSnapshots)-1]
}

// manualScheduler holds the latest scheduled save until the test fires it,
// mimicking the debounce window.
type manualScheduler struct {
	pending  func()
	schedule int
}

func (m *manualScheduler) Schedule(fn func()) {
	m.pending = fn
	m.schedule++
}

func (m *manualScheduler) Fire() {
	if m.pending == nil {
		return
	}
	fn := m.pending
	m.pending = nil
	fn()
}

type memTokens struct {
	token string
}

func (m *memTokens) Get() (string, error) { return m.token, nil }

func (m *memTokens) Set(token string) error {
	m.token = token
	return nil
}

func openedStore(t *testing.T) (*Store, *fakeStrategy) {
	t.Helper()
	strategy := &fakeStrategy{}
	s := New(strategy, nil, nil)
	s.Open(context.Background())
	return s, strategy
}

func TestOpenFreshIdentity(t *testing.T) {
	s, _ := openedStore(t)

	if s.Loading() {
		t.Error("Loading() = true after Open settled")
	}
	if len(s.Decks()) != 0 {
		t.Errorf("Decks() has %d decks, want empty collection", len(s.Decks()))
	}
	if s.LastError() != nil {
		t.Errorf("LastError() = %v, want nil for a fresh identity", s.LastError())
	}
}

func TestOpenCorruptPayloadFallsBack(t *testing.T) {
	strategy := &fakeStrategy{loadErr: decodeErr("load", errInvalid)}
	s := New(strategy, nil, nil)
	s.Open(context.Background())

	if len(s.Decks()) != 0 {
		t.Error("corrupt payload should fall back to an empty collection")
	}
	if s.LastError() != nil {
		t.Errorf("LastError() = %v, want nil after decode fallback", s.LastError())
	}
}

func TestOpenTransportFailure(t *testing.T) {
	strategy := &fakeStrategy{loadErr: transportErr("load", errInvalid)}
	s := New(strategy, nil, nil)
	s.Open(context.Background())

	lastErr := s.LastError()
	if lastErr == nil || lastErr.Kind != KindTransport {
		t.Errorf("LastError() = %v, want transport error", lastErr)
	}
}

func TestCreateDeckAndCardDefaults(t *testing.T) {
	s, _ := openedStore(t)

	deck, ok := s.CreateDeck("Spanish")
	if !ok {
		t.Fatal("CreateDeck() rejected a valid name")
	}
	if deck.ID == "" || deck.Name != "Spanish" || len(deck.Cards) != 0 {
		t.Errorf("CreateDeck() = %+v, want named empty deck with id", deck)
	}

	card, ok := s.CreateCard(deck.ID, models.CardContent{Text: "hola"}, models.CardContent{Text: "hello"})
	if !ok {
		t.Fatal("CreateCard() failed for an existing deck")
	}
	if card.NeedsStudy || card.CorrectStreak != 0 {
		t.Errorf("new card mastery fields = (%v, %d), want (false, 0)", card.NeedsStudy, card.CorrectStreak)
	}
	if card.ID == "" || card.ID == deck.ID {
		t.Errorf("new card id %q should be fresh", card.ID)
	}

	second, _ := s.CreateCard(deck.ID, models.CardContent{}, models.CardContent{})
	if second.ID == card.ID {
		t.Error("two created cards share an id")
	}
}

func TestCreateDeckEmptyName(t *testing.T) {
	s, strategy := openedStore(t)

	if _, ok := s.CreateDeck("   "); ok {
		t.Error("CreateDeck() accepted a whitespace-only name")
	}
	if len(s.Decks()) != 0 {
		t.Error("rejected CreateDeck() still added a deck")
	}
	if strategy.saveCount() != 0 {
		t.Error("rejected CreateDeck() still scheduled a save")
	}
}

func TestCreateCardUnknownDeck(t *testing.T) {
	s, strategy := openedStore(t)

	if _, ok := s.CreateCard("missing", models.CardContent{}, models.CardContent{}); ok {
		t.Error("CreateCard() claimed success for an unknown deck")
	}
	if strategy.saveCount() != 0 {
		t.Error("no-op CreateCard() still scheduled a save")
	}
}

func TestDeleteDeckIdempotent(t *testing.T) {
	s, strategy := openedStore(t)

	deck, _ := s.CreateDeck("Spanish")
	s.DeleteDeck(deck.ID)
	saves := strategy.saveCount()
	after := len(s.Decks())

	s.DeleteDeck(deck.ID)
	if len(s.Decks()) != after {
		t.Error("second DeleteDeck() changed state")
	}
	if strategy.saveCount() != saves {
		t.Error("second DeleteDeck() scheduled another save")
	}
}

func TestRenameDeck(t *testing.T) {
	s, strategy := openedStore(t)
	deck, _ := s.CreateDeck("Spanish")
	saves := strategy.saveCount()

	s.RenameDeck(deck.ID, "  ")
	s.RenameDeck(deck.ID, "Spanish")
	if strategy.saveCount() != saves {
		t.Error("no-op renames scheduled saves")
	}

	s.RenameDeck(deck.ID, "Castilian")
	got, _ := s.Deck(deck.ID)
	if got.Name != "Castilian" {
		t.Errorf("deck name = %q, want Castilian", got.Name)
	}
}

func TestUpdateCardReplacesOnlyMatch(t *testing.T) {
	s, _ := openedStore(t)
	deck, _ := s.CreateDeck("Spanish")
	first, _ := s.CreateCard(deck.ID, models.CardContent{Text: "uno"}, models.CardContent{Text: "one"})
	second, _ := s.CreateCard(deck.ID, models.CardContent{Text: "dos"}, models.CardContent{Text: "two"})

	first.Back.Text = "ONE"
	s.UpdateCard(deck.ID, first)

	got, _ := s.Deck(deck.ID)
	if got.Cards[0].Back.Text != "ONE" {
		t.Errorf("updated card back = %q, want ONE", got.Cards[0].Back.Text)
	}
	if got.Cards[1] != second {
		t.Error("UpdateCard() touched a non-matching card")
	}
}

func TestDeleteCardIdempotent(t *testing.T) {
	s, _ := openedStore(t)
	deck, _ := s.CreateDeck("Spanish")
	card, _ := s.CreateCard(deck.ID, models.CardContent{}, models.CardContent{})

	s.DeleteCard(deck.ID, card.ID)
	s.DeleteCard(deck.ID, card.ID)

	got, _ := s.Deck(deck.ID)
	if len(got.Cards) != 0 {
		t.Errorf("deck has %d cards after delete, want 0", len(got.Cards))
	}
}

func TestStudyScenario(t *testing.T) {
	s, _ := openedStore(t)
	deck, _ := s.CreateDeck("Spanish")
	card, _ := s.CreateCard(deck.ID, models.CardContent{Text: "hola"}, models.CardContent{Text: "hello"})

	s.RecordStudyResult(deck.ID, card.ID, false)
	got, _ := s.Deck(deck.ID)
	if !got.Cards[0].NeedsStudy || got.Cards[0].CorrectStreak != 0 {
		t.Fatalf("after incorrect answer: (%v, %d), want (true, 0)",
			got.Cards[0].NeedsStudy, got.Cards[0].CorrectStreak)
	}

	for i := 0; i < 5; i++ {
		s.RecordStudyResult(deck.ID, card.ID, true)
	}
	got, _ = s.Deck(deck.ID)
	if got.Cards[0].NeedsStudy || got.Cards[0].CorrectStreak != 5 {
		t.Errorf("after five correct answers: (%v, %d), want (false, 5)",
			got.Cards[0].NeedsStudy, got.Cards[0].CorrectStreak)
	}
}

func TestImportCardsFreshIDsAndOrder(t *testing.T) {
	s, _ := openedStore(t)
	deck, _ := s.CreateDeck("Spanish")

	streak := 2
	incoming := []models.PortableCard{
		{Front: models.CardContent{Text: "uno"}, CorrectStreak: &streak},
		{Front: models.CardContent{Text: "dos"}},
		{Front: models.CardContent{Text: "tres"}},
	}
	if !s.ImportCards(deck.ID, incoming) {
		t.Fatal("ImportCards() failed for an existing deck")
	}

	got, _ := s.Deck(deck.ID)
	if len(got.Cards) != 3 {
		t.Fatalf("deck has %d cards, want 3", len(got.Cards))
	}
	for i, want := range []string{"uno", "dos", "tres"} {
		if got.Cards[i].Front.Text != want {
			t.Errorf("card %d front = %q, want %q (input order preserved)", i, got.Cards[i].Front.Text, want)
		}
	}
	if got.Cards[0].CorrectStreak != 2 || got.Cards[1].CorrectStreak != 0 {
		t.Error("imported mastery fields not resolved from document")
	}
	seen := map[string]bool{}
	for _, c := range got.Cards {
		if c.ID == "" || seen[c.ID] {
			t.Errorf("imported card id %q is not fresh and distinct", c.ID)
		}
		seen[c.ID] = true
	}
}

func TestImportDeckScenario(t *testing.T) {
	s, _ := openedStore(t)
	original, _ := s.CreateDeck("Spanish")
	s.CreateCard(original.ID, models.CardContent{Text: "uno"}, models.CardContent{Text: "one"})
	s.CreateCard(original.ID, models.CardContent{Text: "dos"}, models.CardContent{Text: "two"})

	source, _ := s.Deck(original.ID)
	exported := make([]models.PortableCard, len(source.Cards))
	for i, c := range source.Cards {
		exported[i] = c.Portable()
	}

	copyDeck, ok := s.ImportDeck("Copy", exported)
	if !ok {
		t.Fatal("ImportDeck() rejected a valid name")
	}
	if copyDeck.Name != "Copy" || len(copyDeck.Cards) != 2 {
		t.Fatalf("ImportDeck() = %q with %d cards, want Copy with 2", copyDeck.Name, len(copyDeck.Cards))
	}
	for i := range copyDeck.Cards {
		if copyDeck.Cards[i].ID == source.Cards[i].ID {
			t.Error("imported card kept the original id")
		}
		if copyDeck.Cards[i].Front != source.Cards[i].Front {
			t.Error("imported card content changed")
		}
	}

	untouched, _ := s.Deck(original.ID)
	if len(untouched.Cards) != 2 || untouched.Name != "Spanish" {
		t.Error("ImportDeck() modified the original deck")
	}
}

func TestDebounceCoalescing(t *testing.T) {
	strategy := &fakeStrategy{}
	sched := &manualScheduler{}
	s := New(strategy, sched, nil)
	s.Open(context.Background())

	deck, _ := s.CreateDeck("Spanish")
	for i := 0; i < 4; i++ {
		s.CreateCard(deck.ID, models.CardContent{Text: "card"}, models.CardContent{})
	}

	if sched.schedule != 5 {
		t.Errorf("scheduled %d times, want 5", sched.schedule)
	}
	if strategy.saveCount() != 0 {
		t.Fatalf("saved %d times before the window elapsed, want 0", strategy.saveCount())
	}

	sched.Fire()
	if strategy.saveCount() != 1 {
		t.Fatalf("saved %d times after the window, want exactly 1", strategy.saveCount())
	}
	snapshot := strategy.lastSnapshot()
	if len(snapshot.Decks) != 1 || len(snapshot.Decks[0].Cards) != 4 {
		t.Error("save did not carry the latest snapshot")
	}
}

func TestSaveAdoptsServerIdentity(t *testing.T) {
	strategy := &fakeStrategy{saveID: "token-123"}
	sched := &manualScheduler{}
	tokens := &memTokens{}
	s := New(strategy, sched, tokens)
	s.Open(context.Background())

	s.CreateDeck("Spanish")
	sched.Fire()

	if s.Identity() != "token-123" {
		t.Errorf("Identity() = %q, want token-123", s.Identity())
	}
	if tokens.token != "token-123" {
		t.Errorf("persisted token = %q, want token-123", tokens.token)
	}

	s.CreateDeck("French")
	sched.Fire()
	if got := strategy.saveIdentities[1]; got != "token-123" {
		t.Errorf("second save used identity %q, want token-123", got)
	}
}

func TestSaveFailureKeepsLocalState(t *testing.T) {
	strategy := &fakeStrategy{saveErr: transportErr("save", errInvalid)}
	sched := &manualScheduler{}
	s := New(strategy, sched, nil)
	s.Open(context.Background())

	deck, _ := s.CreateDeck("Spanish")
	sched.Fire()

	lastErr := s.LastError()
	if lastErr == nil || lastErr.Kind != KindTransport {
		t.Fatalf("LastError() = %v, want transport error", lastErr)
	}
	if _, ok := s.Deck(deck.ID); !ok {
		t.Error("failed save rolled back the in-memory mutation")
	}
	if s.Syncing() {
		t.Error("Syncing() still true after the save settled")
	}

	// The next mutation's save is the retry mechanism.
	strategy.saveErr = nil
	strategy.saveID = "token-after-retry"
	s.CreateDeck("French")
	sched.Fire()
	if s.LastError() != nil {
		t.Errorf("LastError() = %v after successful save, want nil", s.LastError())
	}
}

func TestAdoptSyncIdentityReplacesCollection(t *testing.T) {
	remote := models.Collection{Decks: []models.Deck{{ID: "d-remote", Name: "Remote"}}}
	strategy := &fakeStrategy{loads: map[string]models.Collection{"their-token": remote}}
	tokens := &memTokens{}
	s := New(strategy, &manualScheduler{}, tokens)
	s.Open(context.Background())

	s.CreateDeck("Local work")
	s.AdoptSyncIdentity(context.Background(), "their-token")

	decks := s.Decks()
	if len(decks) != 1 || decks[0].ID != "d-remote" {
		t.Error("AdoptSyncIdentity() did not replace the local collection")
	}
	if s.Identity() != "their-token" || tokens.token != "their-token" {
		t.Error("adopted identity was not recorded")
	}
}

func TestStaleSaveDiscardedAfterIdentitySwitch(t *testing.T) {
	remote := models.Collection{Decks: []models.Deck{{ID: "d-remote", Name: "Remote"}}}
	strategy := &fakeStrategy{
		loads:    map[string]models.Collection{"new-token": remote},
		saveID:   "stale-token",
		saveGate: make(chan struct{}),
	}
	sched := &manualScheduler{}
	s := New(strategy, sched, &memTokens{})
	s.Open(context.Background())

	s.CreateDeck("Pre-switch work")

	done := make(chan struct{})
	go func() {
		sched.Fire() // blocks inside Save until the gate opens
		close(done)
	}()

	s.AdoptSyncIdentity(context.Background(), "new-token")
	close(strategy.saveGate)
	<-done

	if s.Identity() != "new-token" {
		t.Errorf("Identity() = %q, stale save overwrote the adopted identity", s.Identity())
	}
	decks := s.Decks()
	if len(decks) != 1 || decks[0].ID != "d-remote" {
		t.Error("stale save result corrupted the newly loaded collection")
	}
	if s.Syncing() {
		t.Error("Syncing() stuck after a discarded save")
	}
}

func TestSnapshotsAreImmutable(t *testing.T) {
	s, _ := openedStore(t)
	deck, _ := s.CreateDeck("Spanish")
	s.CreateCard(deck.ID, models.CardContent{Text: "uno"}, models.CardContent{})

	before := s.Decks()
	s.CreateCard(deck.ID, models.CardContent{Text: "dos"}, models.CardContent{})
	s.RenameDeck(deck.ID, "Renamed")

	if len(before[0].Cards) != 1 || before[0].Name != "Spanish" {
		t.Error("an earlier snapshot was modified by later mutations")
	}
}

func TestDebounceSchedulerCoalesces(t *testing.T) {
	var mu sync.Mutex
	calls := 0
	sched := NewDebounceScheduler(20 * time.Millisecond)

	for i := 0; i < 5; i++ {
		sched.Schedule(func() {
			mu.Lock()
			calls++
			mu.Unlock()
		})
	}

	time.Sleep(100 * time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	if calls != 1 {
		t.Errorf("debounced function ran %d times, want 1", calls)
	}
}
