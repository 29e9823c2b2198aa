package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"flashdeck/internal/models"
)

// Client calls the sync server's two-endpoint boundary.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client for the sync server at baseURL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// FetchDecks retrieves the collection stored under syncID. ErrNotFound
// means the token has no document yet.
func (c *Client) FetchDecks(ctx context.Context, syncID string) (models.Collection, error) {
	reqURL := fmt.Sprintf("%s/decks?syncId=%s", c.baseURL, url.QueryEscape(syncID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return models.Collection{}, transportErr("load", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return models.Collection{}, transportErr("load", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return models.Collection{}, ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return models.Collection{}, transportErr("load", fmt.Errorf("server returned %s", resp.Status))
	}

	var col models.Collection
	if err := json.NewDecoder(resp.Body).Decode(&col); err != nil {
		return models.Collection{}, decodeErr("load", err)
	}
	return col, nil
}

// SaveDecks writes a full snapshot. An empty syncID asks the server to
// create a new document; the returned token is the identity to keep using
// for subsequent saves.
func (c *Client) SaveDecks(ctx context.Context, syncID string, col models.Collection) (string, error) {
	body, err := json.Marshal(col)
	if err != nil {
		return "", transportErr("save", err)
	}

	reqURL := c.baseURL + "/decks"
	if syncID != "" {
		reqURL += "?syncId=" + url.QueryEscape(syncID)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(body))
	if err != nil {
		return "", transportErr("save", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", transportErr("save", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", transportErr("save", fmt.Errorf("server returned %s", resp.Status))
	}

	var result struct {
		SyncID  string `json:"syncId"`
		Success bool   `json:"success"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", decodeErr("save", err)
	}
	if !result.Success || result.SyncID == "" {
		return "", transportErr("save", errors.New("server did not acknowledge the save"))
	}
	return result.SyncID, nil
}

// RemoteStrategy persists through the sync server, keyed by sync token.
type RemoteStrategy struct {
	client *Client
}

// NewRemoteStrategy creates the remote document-store strategy.
func NewRemoteStrategy(client *Client) *RemoteStrategy {
	return &RemoteStrategy{client: client}
}

func (s *RemoteStrategy) Load(ctx context.Context, identity string) (models.Collection, error) {
	// No token yet means nothing has ever been saved remotely.
	if identity == "" {
		return models.Collection{}, ErrNotFound
	}
	return s.client.FetchDecks(ctx, identity)
}

func (s *RemoteStrategy) Save(ctx context.Context, identity string, col models.Collection) (string, error) {
	return s.client.SaveDecks(ctx, identity, col)
}
