// Package study implements the mastery-tracking transition applied to a
// card after each study answer.
package study

import "flashdeck/internal/models"

// MasteryThreshold is the consecutive-correct streak at which a card stops
// being flagged for review.
const MasteryThreshold = 5

// ApplyFeedback returns the card with its mastery fields advanced by one
// study result. An incorrect answer resets the streak to zero and flags the
// card for review. A correct answer extends the streak; the review flag is
// cleared only once the streak reaches MasteryThreshold and is never
// touched by any other path.
func ApplyFeedback(card models.Flashcard, isCorrect bool) models.Flashcard {
	if !isCorrect {
		card.CorrectStreak = 0
		card.NeedsStudy = true
		return card
	}

	card.CorrectStreak++
	if card.CorrectStreak >= MasteryThreshold {
		card.NeedsStudy = false
	}
	return card
}
