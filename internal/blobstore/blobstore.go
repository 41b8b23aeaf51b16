// Package blobstore provides the binary object store contract for uploaded
// assets, with local-filesystem and Firebase Storage drivers.
package blobstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"
)

// Progress receives byte counts during an upload. It is called with the
// running total at least once before the upload completes. total is -1
// when the size is unknown.
type Progress func(transferred, total int64)

// Store is the blob store contract.
//
// Upload stores the file under {collection}/{unixMillis}_{filename} and
// returns a publicly resolvable URL. The timestamp prefix avoids key
// collisions without a lookup.
//
// Owns reports whether a URL belongs to this store. Delete on a URL the
// store does not own is a no-op, never an error: pasted external links
// (video references) flow through the same item records and must not
// trigger storage calls.
type Store interface {
	Upload(ctx context.Context, collection, filename string, r io.Reader, size int64, progress Progress) (string, error)
	Delete(ctx context.Context, url string) error
	Owns(url string) bool
}

// ErrEmptyFilename is returned when an upload has no usable filename.
var ErrEmptyFilename = errors.New("filename must not be empty")

// objectKey builds the storage key for an upload.
func objectKey(collection, filename string, now time.Time) (string, error) {
	name := sanitizeFilename(filename)
	if name == "" {
		return "", ErrEmptyFilename
	}
	return fmt.Sprintf("%s/%d_%s", collection, now.UnixMilli(), name), nil
}

// sanitizeFilename strips any path components from a client-supplied
// filename so it cannot escape the collection prefix.
func sanitizeFilename(filename string) string {
	name := filepath.Base(strings.ReplaceAll(filename, "\\", "/"))
	if name == "." || name == "/" {
		return ""
	}
	return name
}

// progressReader wraps an upload body and reports transferred bytes.
type progressReader struct {
	r           io.Reader
	total       int64
	transferred int64
	report      Progress
}

func newProgressReader(r io.Reader, total int64, report Progress) *progressReader {
	return &progressReader{r: r, total: total, report: report}
}

func (pr *progressReader) Read(p []byte) (int, error) {
	n, err := pr.r.Read(p)
	if n > 0 {
		pr.transferred += int64(n)
		if pr.report != nil {
			pr.report(pr.transferred, pr.total)
		}
	}
	return n, err
}

// finish guarantees the contract's "at least one report" for empty files
// and signals completion for everything else.
func (pr *progressReader) finish() {
	if pr.report != nil {
		pr.report(pr.transferred, pr.total)
	}
}
