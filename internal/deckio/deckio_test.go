package deckio

import (
	"errors"
	"testing"

	"flashdeck/internal/models"
)

func TestExportImportRoundTrip(t *testing.T) {
	cards := []models.Flashcard{
		{
			ID:            "card-1",
			Front:         models.CardContent{Text: "hola"},
			Back:          models.CardContent{Text: "hello"},
			NeedsStudy:    true,
			CorrectStreak: 2,
		},
		{
			ID:    "card-2",
			Front: models.CardContent{Text: "adeus", Audio: "data:audio/mpeg;base64,AAAA"},
			Back:  models.CardContent{Text: "goodbye"},
		},
	}

	data, err := MarshalCards(cards)
	if err != nil {
		t.Fatalf("MarshalCards() error = %v", err)
	}

	parsed, err := ParseCards(data)
	if err != nil {
		t.Fatalf("ParseCards() error = %v", err)
	}
	if len(parsed) != len(cards) {
		t.Fatalf("ParseCards() returned %d cards, want %d", len(parsed), len(cards))
	}

	for i, p := range parsed {
		got := p.Materialize()
		want := cards[i]
		if got.Front != want.Front || got.Back != want.Back {
			t.Errorf("card %d content changed across round trip", i)
		}
		if got.NeedsStudy != want.NeedsStudy || got.CorrectStreak != want.CorrectStreak {
			t.Errorf("card %d mastery fields changed across round trip", i)
		}
		if got.ID == want.ID {
			t.Errorf("card %d kept its original id %q, want a fresh one", i, got.ID)
		}
	}

	if parsed[0].Materialize().ID == parsed[1].Materialize().ID {
		t.Error("materialized cards share an id")
	}
}

func TestParseCardsRejectsBadShapes(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "not json", input: "not json at all"},
		{name: "not an object", input: `[1, 2, 3]`},
		{name: "missing cards field", input: `{"decks": []}`},
		{name: "cards is not an array", input: `{"cards": "nope"}`},
		{name: "cards entries malformed", input: `{"cards": [42]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cards, err := ParseCards([]byte(tt.input))
			if err == nil {
				t.Fatal("ParseCards() accepted a malformed document")
			}
			var parseErr *ParseError
			if !errors.As(err, &parseErr) {
				t.Errorf("ParseCards() error type = %T, want *ParseError", err)
			}
			if cards != nil {
				t.Error("ParseCards() returned cards alongside an error")
			}
		})
	}
}

func TestExportCardsEmptySlice(t *testing.T) {
	data, err := MarshalCards(nil)
	if err != nil {
		t.Fatalf("MarshalCards() error = %v", err)
	}
	parsed, err := ParseCards(data)
	if err != nil {
		t.Fatalf("ParseCards() error = %v", err)
	}
	if len(parsed) != 0 {
		t.Errorf("round trip of empty export produced %d cards", len(parsed))
	}
}

func TestExportFileName(t *testing.T) {
	tests := []struct {
		deckName string
		want     string
	}{
		{"Spanish", "Spanish-cards.json"},
		{"  Spanish  ", "Spanish-cards.json"},
		{"a/b", "a_b-cards.json"},
		{"", "deck-cards.json"},
	}
	for _, tt := range tests {
		if got := ExportFileName(tt.deckName); got != tt.want {
			t.Errorf("ExportFileName(%q) = %q, want %q", tt.deckName, got, tt.want)
		}
	}
}
