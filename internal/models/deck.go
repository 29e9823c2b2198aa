package models

// Deck is a named, ordered collection of flashcards. Insertion order is the
// canonical display order; nothing ever re-sorts Cards.
type Deck struct {
	ID    string      `json:"id"`
	Name  string      `json:"name"`
	Cards []Flashcard `json:"cards"`
}

// FindCard returns the index of the card with the given id, or -1.
func (d Deck) FindCard(cardID string) int {
	for i := range d.Cards {
		if d.Cards[i].ID == cardID {
			return i
		}
	}
	return -1
}

// ReviewCards returns the cards currently flagged for review, in deck order.
func (d Deck) ReviewCards() []Flashcard {
	var review []Flashcard
	for _, card := range d.Cards {
		if card.NeedsStudy {
			review = append(review, card)
		}
	}
	return review
}

// Collection is the full set of decks owned by one user. It is the unit of
// persistence: strategies always load and save the whole collection, never
// a single deck or card.
type Collection struct {
	Decks []Deck `json:"decks"`
}
