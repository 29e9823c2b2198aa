package store

import (
	"context"
	"encoding/json"
	"errors"

	"flashdeck/internal/models"
	"flashdeck/internal/repository"
)

// LocalSlotKey is the fixed, versioned name of the single slot the local
// strategy keeps the collection under.
const LocalSlotKey = "flashdeck-app-data-v1"

// LocalStrategy persists the collection to one named slot in a local
// database. Saves are synchronous; there is no network latency to
// debounce.
type LocalStrategy struct {
	docs *repository.DocumentRepository
	slot string
}

// NewLocalStrategy creates the local durable-slot strategy.
func NewLocalStrategy(docs *repository.DocumentRepository) *LocalStrategy {
	return &LocalStrategy{docs: docs, slot: LocalSlotKey}
}

func (s *LocalStrategy) Load(ctx context.Context, identity string) (models.Collection, error) {
	body, err := s.docs.Get(s.slot)
	if errors.Is(err, repository.ErrNotFound) {
		return models.Collection{}, ErrNotFound
	}
	if err != nil {
		return models.Collection{}, transportErr("load", err)
	}

	var col models.Collection
	if err := json.Unmarshal([]byte(body), &col); err != nil {
		return models.Collection{}, decodeErr("load", err)
	}
	return col, nil
}

func (s *LocalStrategy) Save(ctx context.Context, identity string, col models.Collection) (string, error) {
	body, err := json.Marshal(col)
	if err != nil {
		return "", transportErr("save", err)
	}
	if err := s.docs.Put(s.slot, string(body)); err != nil {
		return "", transportErr("save", err)
	}
	return "", nil
}
