package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"flashdeck/internal/codec"
	"flashdeck/internal/config"
	"flashdeck/internal/database"
	"flashdeck/internal/deckio"
	"flashdeck/internal/models"
	"flashdeck/internal/repository"
	"flashdeck/internal/store"
	"flashdeck/internal/validation"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	// Load configuration
	cfg := config.Load()

	st, closeStore, err := openStore(cfg)
	if err != nil {
		log.Fatalf("Failed to open deck store: %v", err)
	}
	defer closeStore()

	ctx := context.Background()
	st.Open(ctx)
	if syncErr := st.LastError(); syncErr != nil {
		log.Printf("Warning: could not load saved decks: %v", syncErr)
	}

	switch os.Args[1] {
	case "decks":
		handleDecks(st)

	case "create":
		createCmd := flag.NewFlagSet("create", flag.ExitOnError)
		name := createCmd.String("name", "", "Deck name (required)")
		createCmd.Parse(os.Args[2:])
		handleCreate(st, *name)

	case "rename":
		renameCmd := flag.NewFlagSet("rename", flag.ExitOnError)
		deckID := renameCmd.String("deck", "", "Deck ID (required)")
		name := renameCmd.String("name", "", "New deck name (required)")
		renameCmd.Parse(os.Args[2:])
		handleRename(st, *deckID, *name)

	case "delete":
		deleteCmd := flag.NewFlagSet("delete", flag.ExitOnError)
		deckID := deleteCmd.String("deck", "", "Deck ID (required)")
		deleteCmd.Parse(os.Args[2:])
		handleDelete(st, *deckID)

	case "cards":
		cardsCmd := flag.NewFlagSet("cards", flag.ExitOnError)
		deckID := cardsCmd.String("deck", "", "Deck ID (required)")
		review := cardsCmd.Bool("review", false, "Only show cards flagged for study")
		cardsCmd.Parse(os.Args[2:])
		handleCards(st, *deckID, *review)

	case "add":
		addCmd := flag.NewFlagSet("add", flag.ExitOnError)
		deckID := addCmd.String("deck", "", "Deck ID (required)")
		front := addCmd.String("front", "", "Front text")
		back := addCmd.String("back", "", "Back text")
		frontImage := addCmd.String("front-image", "", "Image file for the front")
		backImage := addCmd.String("back-image", "", "Image file for the back")
		frontAudio := addCmd.String("front-audio", "", "Audio file for the front")
		backAudio := addCmd.String("back-audio", "", "Audio file for the back")
		addCmd.Parse(os.Args[2:])
		handleAdd(st, *deckID, cardSides{
			frontText: *front, backText: *back,
			frontImage: *frontImage, backImage: *backImage,
			frontAudio: *frontAudio, backAudio: *backAudio,
		})

	case "edit":
		editCmd := flag.NewFlagSet("edit", flag.ExitOnError)
		deckID := editCmd.String("deck", "", "Deck ID (required)")
		cardID := editCmd.String("card", "", "Card ID (required)")
		front := editCmd.String("front", "", "New front text")
		back := editCmd.String("back", "", "New back text")
		frontImage := editCmd.String("front-image", "", "Image file for the front (\"-\" to clear)")
		backImage := editCmd.String("back-image", "", "Image file for the back (\"-\" to clear)")
		editCmd.Parse(os.Args[2:])
		handleEdit(st, *deckID, *cardID, *front, *back, *frontImage, *backImage)

	case "remove":
		removeCmd := flag.NewFlagSet("remove", flag.ExitOnError)
		deckID := removeCmd.String("deck", "", "Deck ID (required)")
		cardID := removeCmd.String("card", "", "Card ID (required)")
		removeCmd.Parse(os.Args[2:])
		st.DeleteCard(*deckID, *cardID)
		fmt.Println("Card removed")

	case "study":
		studyCmd := flag.NewFlagSet("study", flag.ExitOnError)
		deckID := studyCmd.String("deck", "", "Deck ID (required)")
		cardID := studyCmd.String("card", "", "Card ID (required)")
		result := studyCmd.String("result", "", "Answer result: correct or wrong (required)")
		studyCmd.Parse(os.Args[2:])
		handleStudy(st, *deckID, *cardID, *result)

	case "export":
		exportCmd := flag.NewFlagSet("export", flag.ExitOnError)
		deckID := exportCmd.String("deck", "", "Deck ID (required)")
		output := exportCmd.String("output", "", "Output file path (default: <deck-name>-cards.json)")
		exportCmd.Parse(os.Args[2:])
		handleExport(st, *deckID, *output)

	case "import":
		importCmd := flag.NewFlagSet("import", flag.ExitOnError)
		deckID := importCmd.String("deck", "", "Existing deck ID to import into")
		name := importCmd.String("name", "", "Name for a new deck to import into")
		input := importCmd.String("input", "", "Input file path (required)")
		importCmd.Parse(os.Args[2:])
		handleImport(st, *deckID, *name, *input)

	case "sync-id":
		handleSyncID(st)

	case "load-from":
		loadCmd := flag.NewFlagSet("load-from", flag.ExitOnError)
		token := loadCmd.String("token", "", "Sync ID to load decks from (required)")
		yes := loadCmd.Bool("yes", false, "Skip the confirmation prompt")
		loadCmd.Parse(os.Args[2:])
		handleLoadFrom(ctx, st, *token, *yes)

	default:
		printUsage()
		os.Exit(1)
	}

	waitForSync(st, cfg)
}

// openStore builds the persistence stack the configured storage mode needs.
func openStore(cfg *config.Config) (*store.Store, func(), error) {
	switch cfg.StorageMode {
	case "local":
		db, err := database.Initialize(filepath.Join(cfg.DataDir, "flashdeck.db"))
		if err != nil {
			return nil, nil, err
		}
		if err := db.EnsureSchema(); err != nil {
			db.Close()
			return nil, nil, err
		}
		strategy := store.NewLocalStrategy(repository.NewDocumentRepository(db))
		return store.New(strategy, nil, nil), func() { db.Close() }, nil

	case "locator":
		binding := store.FileFragmentBinding{Path: filepath.Join(cfg.DataDir, "locator")}
		return store.New(store.NewLocatorStrategy(binding), nil, nil), func() {}, nil

	case "remote":
		strategy := store.NewRemoteStrategy(store.NewClient(cfg.SyncBaseURL))
		sched := store.NewDebounceScheduler(cfg.SaveDebounce)
		tokens := &store.FileTokenStore{Path: filepath.Join(cfg.DataDir, "sync-token")}
		return store.New(strategy, sched, tokens), func() {}, nil

	default:
		return nil, nil, fmt.Errorf("unknown storage mode %q (want local, locator, or remote)", cfg.StorageMode)
	}
}

// waitForSync lets a debounced remote save fire and settle before the
// process exits. Local and locator saves run inline with the mutation, so
// there is nothing to wait for.
func waitForSync(st *store.Store, cfg *config.Config) {
	if cfg.StorageMode != "remote" {
		return
	}
	deadline := time.Now().Add(cfg.SaveDebounce + 30*time.Second)
	time.Sleep(cfg.SaveDebounce + 50*time.Millisecond)
	for st.Syncing() && time.Now().Before(deadline) {
		time.Sleep(50 * time.Millisecond)
	}
	if syncErr := st.LastError(); syncErr != nil {
		log.Printf("Warning: changes were not saved: %v", syncErr)
	}
}

func handleDecks(st *store.Store) {
	decks := st.Decks()
	if len(decks) == 0 {
		fmt.Println("No decks yet. Create one with: flashdeck create -name <name>")
		return
	}
	for _, d := range decks {
		review := len(d.ReviewCards())
		fmt.Printf("%s  %s (%d cards, %d to review)\n", d.ID, d.Name, len(d.Cards), review)
	}
}

func handleCreate(st *store.Store, name string) {
	name, err := validation.DeckName(name)
	if err != nil {
		fatalUsage(err)
	}
	deck, _ := st.CreateDeck(name)
	fmt.Printf("Created deck %s (%s)\n", deck.Name, deck.ID)
}

func handleRename(st *store.Store, deckID, name string) {
	name, err := validation.DeckName(name)
	if err != nil {
		fatalUsage(err)
	}
	if _, ok := st.Deck(deckID); !ok {
		fatalUsage(fmt.Errorf("no deck with ID %q", deckID))
	}
	st.RenameDeck(deckID, name)
	fmt.Printf("Renamed deck to %s\n", name)
}

func handleDelete(st *store.Store, deckID string) {
	deck, ok := st.Deck(deckID)
	if !ok {
		fatalUsage(fmt.Errorf("no deck with ID %q", deckID))
	}
	st.DeleteDeck(deckID)
	fmt.Printf("Deleted deck %s and its %d cards\n", deck.Name, len(deck.Cards))
}

func handleCards(st *store.Store, deckID string, reviewOnly bool) {
	deck, ok := st.Deck(deckID)
	if !ok {
		fatalUsage(fmt.Errorf("no deck with ID %q", deckID))
	}
	cards := deck.Cards
	if reviewOnly {
		cards = deck.ReviewCards()
	}
	if len(cards) == 0 {
		fmt.Println("No cards")
		return
	}
	for _, c := range cards {
		flag := " "
		if c.NeedsStudy {
			flag = "*"
		}
		fmt.Printf("%s %s  %s -> %s (streak %d)\n", flag, c.ID, sideLabel(c.Front), sideLabel(c.Back), c.CorrectStreak)
	}
}

// sideLabel summarizes a card side for listing, without dumping media
// payloads to the terminal.
func sideLabel(content models.CardContent) string {
	parts := []string{}
	if content.Text != "" {
		parts = append(parts, content.Text)
	}
	if content.Image != "" {
		parts = append(parts, "[image]")
	}
	if content.Audio != "" {
		parts = append(parts, "[audio]")
	}
	if len(parts) == 0 {
		return "(empty)"
	}
	return strings.Join(parts, " ")
}

type cardSides struct {
	frontText, backText   string
	frontImage, backImage string
	frontAudio, backAudio string
}

func handleAdd(st *store.Store, deckID string, sides cardSides) {
	front := models.CardContent{Text: sides.frontText}
	back := models.CardContent{Text: sides.backText}

	var err error
	if front.Image, err = attachMedia(sides.frontImage); err != nil {
		fatalUsage(err)
	}
	if back.Image, err = attachMedia(sides.backImage); err != nil {
		fatalUsage(err)
	}
	if front.Audio, err = attachMedia(sides.frontAudio); err != nil {
		fatalUsage(err)
	}
	if back.Audio, err = attachMedia(sides.backAudio); err != nil {
		fatalUsage(err)
	}

	card, ok := st.CreateCard(deckID, front, back)
	if !ok {
		fatalUsage(fmt.Errorf("no deck with ID %q", deckID))
	}
	fmt.Printf("Added card %s\n", card.ID)
}

func attachMedia(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	encoded, err := codec.EncodeFile(path)
	if err != nil {
		return "", fmt.Errorf("could not attach %s: %w", path, err)
	}
	return encoded, nil
}

func handleEdit(st *store.Store, deckID, cardID, front, back, frontImage, backImage string) {
	deck, ok := st.Deck(deckID)
	if !ok {
		fatalUsage(fmt.Errorf("no deck with ID %q", deckID))
	}
	i := deck.FindCard(cardID)
	if i < 0 {
		fatalUsage(fmt.Errorf("no card with ID %q in deck %s", cardID, deck.Name))
	}

	card := deck.Cards[i]
	if front != "" {
		card.Front.Text = front
	}
	if back != "" {
		card.Back.Text = back
	}
	var err error
	if card.Front.Image, err = editMedia(card.Front.Image, frontImage); err != nil {
		fatalUsage(err)
	}
	if card.Back.Image, err = editMedia(card.Back.Image, backImage); err != nil {
		fatalUsage(err)
	}

	st.UpdateCard(deckID, card)
	fmt.Println("Card updated")
}

// editMedia resolves an edit flag against the current value: empty keeps
// it, "-" clears it, anything else attaches the named file.
func editMedia(current, flagValue string) (string, error) {
	switch flagValue {
	case "":
		return current, nil
	case "-":
		return codec.Clear(), nil
	default:
		return attachMedia(flagValue)
	}
}

func handleStudy(st *store.Store, deckID, cardID, result string) {
	var isCorrect bool
	switch result {
	case "correct":
		isCorrect = true
	case "wrong":
		isCorrect = false
	default:
		fatalUsage(fmt.Errorf("result must be \"correct\" or \"wrong\", got %q", result))
	}

	deck, ok := st.Deck(deckID)
	if !ok {
		fatalUsage(fmt.Errorf("no deck with ID %q", deckID))
	}
	if deck.FindCard(cardID) < 0 {
		fatalUsage(fmt.Errorf("no card with ID %q in deck %s", cardID, deck.Name))
	}

	st.RecordStudyResult(deckID, cardID, isCorrect)
	deck, _ = st.Deck(deckID)
	card := deck.Cards[deck.FindCard(cardID)]
	if card.NeedsStudy {
		fmt.Printf("Recorded. Streak %d, still needs study\n", card.CorrectStreak)
	} else {
		fmt.Printf("Recorded. Streak %d\n", card.CorrectStreak)
	}
}

func handleExport(st *store.Store, deckID, outputPath string) {
	deck, ok := st.Deck(deckID)
	if !ok {
		fatalUsage(fmt.Errorf("no deck with ID %q", deckID))
	}

	if outputPath == "" {
		outputPath = deckio.ExportFileName(deck.Name)
	}
	data, err := deckio.MarshalCards(deck.Cards)
	if err != nil {
		log.Fatalf("Failed to export deck: %v", err)
	}
	if err := os.WriteFile(outputPath, data, 0o644); err != nil {
		log.Fatalf("Failed to write %s: %v", outputPath, err)
	}
	fmt.Printf("Exported %d cards to %s\n", len(deck.Cards), outputPath)
}

func handleImport(st *store.Store, deckID, name, inputPath string) {
	if inputPath == "" {
		fatalUsage(fmt.Errorf("-input flag is required"))
	}
	if (deckID == "") == (name == "") {
		fatalUsage(fmt.Errorf("exactly one of -deck or -name is required"))
	}

	data, err := os.ReadFile(inputPath)
	if err != nil {
		log.Fatalf("Failed to read %s: %v", inputPath, err)
	}
	cards, err := deckio.ParseCards(data)
	if err != nil {
		log.Fatalf("Failed to import %s: %v", inputPath, err)
	}

	if name != "" {
		name, err = validation.DeckName(name)
		if err != nil {
			fatalUsage(err)
		}
		deck, _ := st.ImportDeck(name, cards)
		fmt.Printf("Imported %d cards into new deck %s (%s)\n", len(cards), deck.Name, deck.ID)
		return
	}

	if !st.ImportCards(deckID, cards) {
		fatalUsage(fmt.Errorf("no deck with ID %q", deckID))
	}
	fmt.Printf("Imported %d cards\n", len(cards))
}

func handleSyncID(st *store.Store) {
	if id := st.Identity(); id != "" {
		fmt.Println(id)
		return
	}
	fmt.Println("No sync ID yet. One is issued after the first save in remote mode.")
}

func handleLoadFrom(ctx context.Context, st *store.Store, token string, yes bool) {
	token, err := validation.SyncToken(token)
	if err != nil {
		fatalUsage(err)
	}

	if !yes {
		fmt.Printf("This replaces your current decks with the ones stored under %s.\n", token)
		fmt.Print("Continue? [y/N] ")
		answer, _ := bufio.NewReader(os.Stdin).ReadString('\n')
		if a := strings.ToLower(strings.TrimSpace(answer)); a != "y" && a != "yes" {
			fmt.Println("Cancelled")
			return
		}
	}

	st.AdoptSyncIdentity(ctx, token)
	if syncErr := st.LastError(); syncErr != nil {
		log.Fatalf("Failed to load decks for %s: %v", token, syncErr)
	}
	fmt.Printf("Loaded %d decks from %s\n", len(st.Decks()), token)
}

func fatalUsage(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

func printUsage() {
	fmt.Println("FlashDeck Study Tool")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  flashdeck decks                         List decks")
	fmt.Println("  flashdeck create -name <name>           Create a deck")
	fmt.Println("  flashdeck rename -deck <id> -name <n>   Rename a deck")
	fmt.Println("  flashdeck delete -deck <id>             Delete a deck and its cards")
	fmt.Println("  flashdeck cards -deck <id> [-review]    List cards")
	fmt.Println("  flashdeck add -deck <id> [options]      Add a card")
	fmt.Println("  flashdeck edit -deck <id> -card <id>    Edit a card")
	fmt.Println("  flashdeck remove -deck <id> -card <id>  Remove a card")
	fmt.Println("  flashdeck study -deck <id> -card <id> -result correct|wrong")
	fmt.Println("  flashdeck export -deck <id> [-output <file>]")
	fmt.Println("  flashdeck import -deck <id>|-name <n> -input <file>")
	fmt.Println("  flashdeck sync-id                       Show this collection's sync ID")
	fmt.Println("  flashdeck load-from -token <id> [-yes]  Replace decks with a shared collection")
	fmt.Println()
	fmt.Println("Environment Variables:")
	fmt.Println("  FLASHDECK_STORAGE     Storage mode: local, locator, or remote (default: local)")
	fmt.Println("  FLASHDECK_DATA_DIR    Where local state lives (default: user config dir)")
	fmt.Println("  FLASHDECK_SYNC_URL    Sync server base URL for remote mode")
}
