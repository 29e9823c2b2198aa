package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"flashdeck/internal/database"
)

// ErrNotFound is returned when no document exists under the requested key.
var ErrNotFound = errors.New("document not found")

// DocumentRepository stores whole-collection JSON documents keyed by an
// opaque string. The sync server keys documents by sync token; the local
// persistence slot keys its single document by a fixed slot name.
type DocumentRepository struct {
	db database.DBTX
}

// NewDocumentRepository creates a new document repository
func NewDocumentRepository(db database.DBTX) *DocumentRepository {
	return &DocumentRepository{db: db}
}

// Get retrieves the document body stored under key.
func (r *DocumentRepository) Get(key string) (string, error) {
	query := "SELECT body FROM documents WHERE doc_key = ?"

	var body string
	err := r.db.QueryRow(query, key).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to load document %s: %w", key, err)
	}
	return body, nil
}

// Put inserts the document or replaces its body if the key already exists.
// The write is a full replacement; documents are never patched in place.
func (r *DocumentRepository) Put(key, body string) error {
	if _, err := r.db.Exec(r.db.GetDialect().UpsertDocumentQuery(), key, body); err != nil {
		return fmt.Errorf("failed to store document %s: %w", key, err)
	}
	return nil
}

// Delete removes the document stored under key. Deleting a missing
// document is not an error.
func (r *DocumentRepository) Delete(key string) error {
	query := "DELETE FROM documents WHERE doc_key = ?"
	if _, err := r.db.Exec(query, key); err != nil {
		return fmt.Errorf("failed to delete document %s: %w", key, err)
	}
	return nil
}
