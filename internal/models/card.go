package models

// CardContent is one side of a flashcard. Every field is optional; whether
// a side with nothing filled in counts as "empty" is a display concern,
// not a stored invariant.
type CardContent struct {
	Text  string `json:"text,omitempty"`
	Image string `json:"image,omitempty"` // data URL
	Audio string `json:"audio,omitempty"` // data URL
}

// Flashcard is a front/back pair of content plus the mastery-tracking
// fields. The ID is immutable after creation and unique within the deck.
type Flashcard struct {
	ID            string      `json:"id"`
	Front         CardContent `json:"front"`
	Back          CardContent `json:"back"`
	NeedsStudy    bool        `json:"needsStudy"`
	CorrectStreak int         `json:"correctStreak"`
}

// PortableCard is a flashcard stripped of its id, as it appears in
// import/export documents. NeedsStudy and CorrectStreak are pointers so a
// missing field can be told apart from an explicit zero; defaults are
// resolved once, when the card is imported.
type PortableCard struct {
	Front         CardContent `json:"front"`
	Back          CardContent `json:"back"`
	NeedsStudy    *bool       `json:"needsStudy,omitempty"`
	CorrectStreak *int        `json:"correctStreak,omitempty"`
}

// Portable returns the card without its id, for export.
func (c Flashcard) Portable() PortableCard {
	needsStudy := c.NeedsStudy
	streak := c.CorrectStreak
	return PortableCard{
		Front:         c.Front,
		Back:          c.Back,
		NeedsStudy:    &needsStudy,
		CorrectStreak: &streak,
	}
}

// Materialize turns an imported card into a full flashcard with a fresh id,
// applying defaults for any mastery field the document omitted.
func (p PortableCard) Materialize() Flashcard {
	card := Flashcard{
		ID:    NewCardID(),
		Front: p.Front,
		Back:  p.Back,
	}
	if p.NeedsStudy != nil {
		card.NeedsStudy = *p.NeedsStudy
	}
	if p.CorrectStreak != nil && *p.CorrectStreak > 0 {
		card.CorrectStreak = *p.CorrectStreak
	}
	return card
}
