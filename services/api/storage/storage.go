// Package storage keeps uploaded plant photographs.
package storage

import (
	"context"
	"errors"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
)

// ErrNotFound is returned when an object does not exist.
var ErrNotFound = errors.New("object not found")

// ErrInvalidKey is returned for keys that could escape the store.
var ErrInvalidKey = errors.New("invalid object key")

// Object is an opened blob. Callers must close it.
type Object struct {
	io.ReadCloser
	Size        int64
	ContentType string
}

// BlobStore stores image bytes under opaque keys.
type BlobStore interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Get(ctx context.Context, key string) (*Object, error)
	Delete(ctx context.Context, key string) error
}

// NewKey returns a fresh object key keeping the file extension of filename.
func NewKey(filename string) string {
	return uuid.New().String() + strings.ToLower(path.Ext(filename))
}

// ValidKey reports whether key is a single path element.
func ValidKey(key string) bool {
	if key == "" || key == "." || key == ".." {
		return false
	}
	return !strings.ContainsAny(key, `/\`)
}

// ContentTypeFor guesses the image content type from the key extension.
func ContentTypeFor(key string) string {
	switch strings.ToLower(path.Ext(key)) {
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".gif":
		return "image/gif"
	default:
		return "application/octet-stream"
	}
}
