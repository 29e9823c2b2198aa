package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/google/uuid"

	"flashdeck/internal/repository"
)

// maxDocumentBytes caps an uploaded collection. Card media rides inline as
// base64 data URLs, so documents can be large.
const maxDocumentBytes = 10 << 20

// DocumentStore is the persistence surface the decks handler needs.
type DocumentStore interface {
	Get(key string) (string, error)
	Put(key, body string) error
}

// DecksHandler serves the sync boundary: fetch and store whole deck
// collections keyed by sync token.
type DecksHandler struct {
	docs      DocumentStore
	masterKey string
}

// NewDecksHandler creates a new decks handler
func NewDecksHandler(docs DocumentStore, masterKey string) *DecksHandler {
	return &DecksHandler{docs: docs, masterKey: masterKey}
}

// GetDecks returns the collection stored under the syncId query parameter.
func (h *DecksHandler) GetDecks(w http.ResponseWriter, r *http.Request) {
	if h.masterKey == "" {
		respondWithError(w, http.StatusInternalServerError, "Server configuration error", "SYNC_MASTER_KEY is not set", errors.New("missing master key"))
		return
	}

	syncID := r.URL.Query().Get("syncId")
	if syncID == "" {
		respondWithError(w, http.StatusBadRequest, "Sync ID is required", "", nil)
		return
	}

	body, err := h.docs.Get(syncID)
	if errors.Is(err, repository.ErrNotFound) {
		respondWithError(w, http.StatusNotFound, "No data found for this sync ID", "", nil)
		return
	}
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to fetch data", "Error fetching document", err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	io.WriteString(w, body)
}

// SaveDecks stores the posted collection. Without a syncId parameter a new
// token is issued; with one, the stored document is replaced.
func (h *DecksHandler) SaveDecks(w http.ResponseWriter, r *http.Request) {
	if h.masterKey == "" {
		respondWithError(w, http.StatusInternalServerError, "Server configuration error", "SYNC_MASTER_KEY is not set", errors.New("missing master key"))
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxDocumentBytes))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Request body too large or unreadable", "Error reading request body", err)
		return
	}
	if !validCollectionDocument(body) {
		respondWithError(w, http.StatusBadRequest, "Invalid request body", "", nil)
		return
	}

	syncID := r.URL.Query().Get("syncId")
	if syncID == "" {
		syncID = uuid.NewString()
	}

	if err := h.docs.Put(syncID, string(body)); err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to save data", "Error storing document", err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]any{
		"syncId":  syncID,
		"success": true,
	})
}

// validCollectionDocument checks the uploaded body is a JSON object whose
// decks field is an array. Deck contents are the client's business; the
// server only guards the envelope it hands back later.
func validCollectionDocument(body []byte) bool {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(body, &doc); err != nil {
		return false
	}
	decks, ok := doc["decks"]
	if !ok {
		return false
	}
	var arr []json.RawMessage
	return json.Unmarshal(decks, &arr) == nil
}
