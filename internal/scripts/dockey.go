package scripts

import (
	"encoding/base64"
	"fmt"
)

// Saved scripts are keyed by the video URL encoded as unpadded
// URL-safe base64 so the key can travel in a path segment.

// EncodeDocKey derives the document key for a video URL
func EncodeDocKey(videoURL string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(videoURL))
}

// DecodeDocKey recovers the video URL from a document key
func DecodeDocKey(docKey string) (string, error) {
	data, err := base64.RawURLEncoding.DecodeString(docKey)
	if err != nil {
		return "", fmt.Errorf("invalid document key: %w", err)
	}
	return string(data), nil
}
