package blobstore

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/stageworks/backstage/pkg/content"
)

// Compile-time interface check.
var _ Store = (*Local)(nil)

// Local stores blobs under a directory on disk and hands out URLs below
// baseURL + "/blobs/". The HTTP layer serves that prefix from the same
// directory, so the URLs resolve in local mode without any cloud backend.
type Local struct {
	dir     string
	baseURL string
	now     func() time.Time
}

// NewLocal creates the uploads directory if needed.
func NewLocal(dir, baseURL string) (*Local, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create uploads dir: %w", err)
	}
	return &Local{
		dir:     dir,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		now:     time.Now,
	}, nil
}

// Dir returns the uploads directory, for the HTTP file server.
func (l *Local) Dir() string { return l.dir }

// Upload writes the blob to disk and returns its public URL.
func (l *Local) Upload(ctx context.Context, collection, filename string, r io.Reader, size int64, progress Progress) (string, error) {
	if !content.ValidCollection(collection) {
		return "", content.ErrInvalidCollection
	}
	key, err := objectKey(collection, filename, l.now())
	if err != nil {
		return "", err
	}

	dst := filepath.Join(l.dir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", fmt.Errorf("create collection dir: %w", err)
	}

	f, err := os.Create(dst)
	if err != nil {
		return "", fmt.Errorf("create blob file: %w", err)
	}

	pr := newProgressReader(r, size, progress)
	if _, err := io.Copy(f, pr); err != nil {
		f.Close()
		os.Remove(dst)
		return "", fmt.Errorf("write blob: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(dst)
		return "", fmt.Errorf("close blob: %w", err)
	}
	pr.finish()

	return l.baseURL + "/blobs/" + escapeKey(key), nil
}

// Owns reports whether the URL points below this store's /blobs/ prefix.
func (l *Local) Owns(rawURL string) bool {
	return strings.HasPrefix(rawURL, l.baseURL+"/blobs/")
}

// Delete removes the blob behind a store-owned URL. URLs this store does
// not own are skipped without error; an already-missing file is treated
// the same way.
func (l *Local) Delete(ctx context.Context, rawURL string) error {
	if !l.Owns(rawURL) {
		return nil
	}

	key, err := l.keyFromURL(rawURL)
	if err != nil {
		return err
	}

	target := filepath.Join(l.dir, filepath.FromSlash(key))
	if err := os.Remove(target); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete blob %s: %w", key, err)
	}
	return nil
}

// keyFromURL recovers the object key from a store-owned URL and rejects
// anything that would resolve outside the uploads directory.
func (l *Local) keyFromURL(rawURL string) (string, error) {
	escaped := strings.TrimPrefix(rawURL, l.baseURL+"/blobs/")
	key, err := url.PathUnescape(escaped)
	if err != nil {
		return "", fmt.Errorf("parse blob url: %w", err)
	}
	clean := path.Clean(key)
	if clean != key || strings.HasPrefix(clean, "..") || path.IsAbs(clean) {
		return "", fmt.Errorf("parse blob url: invalid key %q", key)
	}
	return clean, nil
}

func escapeKey(key string) string {
	parts := strings.Split(key, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return strings.Join(parts, "/")
}
