// Package storage keeps uploaded media (post images, profile pictures) behind
// a small key/value Store with local-disk and S3 implementations.
package storage

import (
	"context"
	"errors"
	"path"
	"strings"
)

// Upload prefixes.
const (
	PostImagesPrefix     = "post_images/"
	ProfilePicturePrefix = "profile_pics/"
)

// ErrInvalidKey is returned for keys that escape the media root.
var ErrInvalidKey = errors.New("storage: invalid key")

// Upload is a file received from a multipart form.
type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Store persists media objects by key.
type Store interface {
	Save(ctx context.Context, key string, data []byte, contentType string) error
	Delete(ctx context.Context, key string) error
	URL(key string) string
}

// cleanKey normalizes key and rejects absolute or parent-relative paths.
func cleanKey(key string) (string, error) {
	if key == "" || strings.HasPrefix(key, "/") || strings.Contains(key, "\\") {
		return "", ErrInvalidKey
	}
	cleaned := path.Clean(key)
	if cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", ErrInvalidKey
	}
	return cleaned, nil
}
