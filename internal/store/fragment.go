package store

import (
	"bytes"
	"compress/flate"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"flashdeck/internal/models"
)

// FragmentBinding reads and writes the single opaque string the locator
// strategy lives in. In a browser this is the page's address fragment; the
// CLI binds it to a state file, tests bind it to memory.
type FragmentBinding interface {
	Read() (string, error)
	Write(fragment string) error
}

// FileFragmentBinding keeps the locator in a single file.
type FileFragmentBinding struct {
	Path string
}

func (b FileFragmentBinding) Read() (string, error) {
	data, err := os.ReadFile(b.Path)
	if os.IsNotExist(err) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

func (b FileFragmentBinding) Write(fragment string) error {
	if err := os.MkdirAll(filepath.Dir(b.Path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(b.Path, []byte(fragment+"\n"), 0o644)
}

// LocatorStrategy embeds the compressed collection in a shareable locator
// string, updated in place on every save.
type LocatorStrategy struct {
	binding FragmentBinding
}

// NewLocatorStrategy creates the shareable-locator strategy.
func NewLocatorStrategy(binding FragmentBinding) *LocatorStrategy {
	return &LocatorStrategy{binding: binding}
}

func (s *LocatorStrategy) Load(ctx context.Context, identity string) (models.Collection, error) {
	fragment, err := s.binding.Read()
	if err != nil {
		return models.Collection{}, transportErr("load", err)
	}
	if fragment == "" {
		return models.Collection{}, ErrNotFound
	}

	col, err := DecodeLocator(fragment)
	if err != nil {
		return models.Collection{}, decodeErr("load", err)
	}
	return col, nil
}

func (s *LocatorStrategy) Save(ctx context.Context, identity string, col models.Collection) (string, error) {
	// An empty collection clears the locator so a shared or bookmarked
	// link does not carry stale state.
	if len(col.Decks) == 0 {
		if err := s.binding.Write(""); err != nil {
			return "", transportErr("save", err)
		}
		return "", nil
	}

	fragment, err := EncodeLocator(col)
	if err != nil {
		return "", transportErr("save", err)
	}
	if err := s.binding.Write(fragment); err != nil {
		return "", transportErr("save", err)
	}
	return "", nil
}

// EncodeLocator compresses the collection (DEFLATE) and encodes it as an
// unpadded URL-safe base64 string that can ride in an address fragment.
func EncodeLocator(col models.Collection) (string, error) {
	payload, err := json.Marshal(col)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	zw, err := flate.NewWriter(&buf, flate.BestCompression)
	if err != nil {
		return "", err
	}
	if _, err := zw.Write(payload); err != nil {
		return "", err
	}
	if err := zw.Close(); err != nil {
		return "", err
	}

	return base64.RawURLEncoding.EncodeToString(buf.Bytes()), nil
}

// DecodeLocator reverses EncodeLocator.
func DecodeLocator(fragment string) (models.Collection, error) {
	compressed, err := base64.RawURLEncoding.DecodeString(fragment)
	if err != nil {
		return models.Collection{}, fmt.Errorf("invalid locator encoding: %w", err)
	}

	zr := flate.NewReader(bytes.NewReader(compressed))
	defer zr.Close()
	payload, err := io.ReadAll(zr)
	if err != nil {
		return models.Collection{}, fmt.Errorf("invalid locator payload: %w", err)
	}

	var col models.Collection
	if err := json.Unmarshal(payload, &col); err != nil {
		return models.Collection{}, fmt.Errorf("invalid locator document: %w", err)
	}
	return col, nil
}
