package store

import (
	"os"
	"path/filepath"
	"strings"
)

// TokenStore persists the bare sync token between sessions.
type TokenStore interface {
	Get() (string, error)
	Set(token string) error
}

// FileTokenStore keeps the token in a single file, the dedicated slot the
// sync identity outlives a session in.
type FileTokenStore struct {
	Path string
}

func (f FileTokenStore) Get() (string, error) {
	data, err := os.ReadFile(f.Path)
	if os.IsNotExist(err) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

func (f FileTokenStore) Set(token string) error {
	if err := os.MkdirAll(filepath.Dir(f.Path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(f.Path, []byte(token+"\n"), 0o600)
}
