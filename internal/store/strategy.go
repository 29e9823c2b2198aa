package store

import (
	"context"

	"flashdeck/internal/models"
)

// Strategy persists the whole deck collection to one backend. Load and
// Save always move the entire collection; nothing persists a single deck
// or card in isolation.
//
// The identity is the opaque token naming the user's document for backends
// that have one (the remote sync server); backends without identities
// ignore it and return "" from Save.
type Strategy interface {
	// Load fetches the collection stored under identity. ErrNotFound
	// means the identity is fresh and nothing has been saved yet.
	Load(ctx context.Context, identity string) (models.Collection, error)

	// Save writes a full snapshot and returns the identity it was stored
	// under, which may differ from the one passed in when the backend
	// created a new document.
	Save(ctx context.Context, identity string, col models.Collection) (string, error)
}
