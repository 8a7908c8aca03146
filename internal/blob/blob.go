// Package blob stores snapshot files by key on the local filesystem, in memory or in S3.
package blob

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"strings"
)

// ErrNotFound is returned when a blob does not exist.
//
// Implementations return an error that satisfies errors.Is(err, ErrNotFound).
var ErrNotFound = os.ErrNotExist

// Store is a flat key/value blob store. Put replaces an existing blob.
type Store interface {
	Put(ctx context.Context, key string, r io.Reader) error
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	// Delete reports whether the blob existed.
	Delete(ctx context.Context, key string) (bool, error)
	// List returns the sorted keys starting with prefix.
	List(ctx context.Context, prefix string) ([]string, error)
}

// SanitizeKey normalizes a key to a relative slash path and rejects traversal.
func SanitizeKey(key string) (string, error) {
	if strings.TrimSpace(key) == "" {
		return "", fmt.Errorf("empty key")
	}
	if strings.Contains(key, "\\") {
		return "", fmt.Errorf("invalid key %q contains backslash", key)
	}
	if strings.HasPrefix(key, "/") {
		return "", fmt.Errorf("invalid absolute key %q", key)
	}
	clean := path.Clean(key)
	if clean == "." || clean == ".." || strings.HasPrefix(clean, "../") {
		return "", fmt.Errorf("invalid key %q escapes store", key)
	}
	return clean, nil
}
