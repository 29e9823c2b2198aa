// Package codec converts user-supplied media files into self-contained
// data URLs embeddable in a card side. The encoded reference is directly
// renderable; there is no separate decode step.
package codec

import (
	"encoding/base64"
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"
)

// Encode embeds the file bytes as a data URL. The MIME type comes from the
// file name's extension when recognized, otherwise from sniffing the
// content.
func Encode(name string, data []byte) string {
	mimeType := mime.TypeByExtension(filepath.Ext(name))
	if mimeType == "" {
		mimeType = http.DetectContentType(data)
	}
	return fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(data))
}

// EncodeFile reads the file at path and encodes it. On failure the caller
// keeps whatever reference it already had.
func EncodeFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read media file: %w", err)
	}
	return Encode(path, data), nil
}

// Clear returns the empty reference that detaches media from a card side.
func Clear() string {
	return ""
}
