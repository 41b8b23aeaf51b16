package blobstore

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"cloud.google.com/go/storage"

	"github.com/stageworks/backstage/pkg/content"
)

// downloadHost is the public Firebase Storage download endpoint. URLs the
// admin panel stores for uploaded assets use this host; Owns recognizes
// them and anything else (YouTube links and the like) is left alone.
const downloadHost = "firebasestorage.googleapis.com"

// Compile-time interface check.
var _ Store = (*GCS)(nil)

// GCS stores blobs in a Firebase Storage (Cloud Storage) bucket and hands
// out URLs in the v0 download format:
//
//	https://firebasestorage.googleapis.com/v0/b/{bucket}/o/{object}?alt=media
type GCS struct {
	bucket *storage.BucketHandle
	name   string
	now    func() time.Time
}

// NewGCS wraps a bucket handle obtained from the Firebase app.
func NewGCS(client *storage.Client, bucketName string) *GCS {
	return &GCS{
		bucket: client.Bucket(bucketName),
		name:   bucketName,
		now:    time.Now,
	}
}

// Upload streams the blob into the bucket and returns its download URL.
func (g *GCS) Upload(ctx context.Context, collection, filename string, r io.Reader, size int64, progress Progress) (string, error) {
	if !content.ValidCollection(collection) {
		return "", content.ErrInvalidCollection
	}
	key, err := objectKey(collection, filename, g.now())
	if err != nil {
		return "", err
	}

	w := g.bucket.Object(key).NewWriter(ctx)
	pr := newProgressReader(r, size, progress)
	if _, err := io.Copy(w, pr); err != nil {
		w.Close()
		return "", fmt.Errorf("write object %s: %w", key, err)
	}
	// The object is not committed until Close succeeds; partial progress
	// must never be mistaken for a stored blob.
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("commit object %s: %w", key, err)
	}
	pr.finish()

	return fmt.Sprintf("https://%s/v0/b/%s/o/%s?alt=media", downloadHost, g.name, url.PathEscape(key)), nil
}

// Owns reports whether the URL is a download URL for this bucket.
func (g *GCS) Owns(rawURL string) bool {
	_, err := g.keyFromURL(rawURL)
	return err == nil
}

// Delete removes the object behind a store-owned download URL. External
// URLs are skipped without error.
func (g *GCS) Delete(ctx context.Context, rawURL string) error {
	key, err := g.keyFromURL(rawURL)
	if err != nil {
		return nil
	}

	if err := g.bucket.Object(key).Delete(ctx); err != nil {
		if err == storage.ErrObjectNotExist {
			return nil
		}
		return fmt.Errorf("delete object %s: %w", key, err)
	}
	return nil
}

// keyFromURL extracts the object key from a v0 download URL for this
// bucket, or errors when the URL belongs to someone else.
func (g *GCS) keyFromURL(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	if u.Host != downloadHost {
		return "", fmt.Errorf("not a storage url: host %q", u.Host)
	}

	prefix := "/v0/b/" + g.name + "/o/"
	if !strings.HasPrefix(u.EscapedPath(), prefix) {
		return "", fmt.Errorf("not a url for bucket %s", g.name)
	}

	key, err := url.PathUnescape(strings.TrimPrefix(u.EscapedPath(), prefix))
	if err != nil {
		return "", err
	}
	if key == "" {
		return "", fmt.Errorf("empty object key")
	}
	return key, nil
}
