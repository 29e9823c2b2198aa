// Package deckio implements the portable JSON card document used for
// manual backup and cross-deck copying.
package deckio

import (
	"encoding/json"
	"fmt"
	"strings"

	"flashdeck/internal/models"
)

// Document is the wire shape of an exported card file: a single object
// wrapping the cards under a "cards" key.
type Document struct {
	Cards []models.PortableCard `json:"cards"`
}

// ParseError names the shape expectation a document violated. A document
// that fails to parse is rejected whole; nothing is partially imported.
type ParseError struct {
	Expectation string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid card document: %s", e.Expectation)
}

// ExportCards strips ids from the cards and wraps them in a document.
// Mastery fields are always written so a re-import restores study progress.
func ExportCards(cards []models.Flashcard) Document {
	doc := Document{Cards: make([]models.PortableCard, len(cards))}
	for i, card := range cards {
		doc.Cards[i] = card.Portable()
	}
	return doc
}

// MarshalCards renders the cards as an indented export document.
func MarshalCards(cards []models.Flashcard) ([]byte, error) {
	return json.MarshalIndent(ExportCards(cards), "", "  ")
}

// ExportFileName derives the default export path from the deck's name.
// Path separators are replaced so the name cannot escape the directory.
func ExportFileName(deckName string) string {
	name := strings.TrimSpace(deckName)
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	if name == "" {
		name = "deck"
	}
	return name + "-cards.json"
}

// ParseCards parses an export document, returning its cards in document
// order. The document must be a JSON object with a "cards" array; any
// other shape yields a ParseError naming the violated expectation.
func ParseCards(data []byte) ([]models.PortableCard, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, &ParseError{Expectation: "document is not a JSON object"}
	}

	rawCards, ok := raw["cards"]
	if !ok {
		return nil, &ParseError{Expectation: "missing \"cards\" field"}
	}

	var cards []models.PortableCard
	if err := json.Unmarshal(rawCards, &cards); err != nil {
		return nil, &ParseError{Expectation: "\"cards\" is not an array of cards"}
	}

	return cards, nil
}
