package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// newID combines a millisecond timestamp with a random UUID suffix. The
// timestamp keeps ids roughly ordered by creation; the suffix removes
// collisions within the same millisecond. Decks are single-owner, so no
// coordination beyond this is needed.
func newID() string {
	return fmt.Sprintf("%d-%s", time.Now().UnixMilli(), uuid.NewString()[:8])
}

// NewDeckID returns an identifier for a new deck, unique within one user's
// collection.
func NewDeckID() string {
	return newID()
}

// NewCardID returns an identifier for a new card, unique within its deck's
// lifetime.
func NewCardID() string {
	return newID()
}
