// Package admin implements the content mutation transactions exposed to
// the admin panel: upload, link creation, deletion, and settings updates.
// Each transaction is strictly sequential internally and ends with a full
// view refresh; across transactions there is no ordering guarantee and
// last write wins, which a single-operator tool accepts by design.
package admin

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"

	"github.com/stageworks/backstage/internal/blobstore"
	"github.com/stageworks/backstage/internal/contentsync"
	"github.com/stageworks/backstage/internal/docstore"
	"github.com/stageworks/backstage/pkg/content"
)

// Orchestrator errors.
var (
	// ErrDeleteAborted is returned when the confirmation hook declines.
	ErrDeleteAborted = errors.New("delete aborted")

	// ErrBlobDelete marks a blob deletion failure after the metadata
	// delete already succeeded. The item is gone from listings; the
	// orphaned blob is reported, not retried.
	ErrBlobDelete = errors.New("stored file could not be deleted")
)

// Orchestrator runs the CRUD transactions against the two stores and
// triggers the sync manager after every mutation.
type Orchestrator struct {
	docs   docstore.Store
	blobs  blobstore.Store
	sync   *contentsync.Manager
	logger zerolog.Logger
	now    func() time.Time

	// Confirm gates destructive operations. A nil hook means the caller
	// already confirmed (the HTTP admin UI prompts client-side); the CLI
	// wires an interactive prompt here.
	Confirm func(prompt string) bool
}

// New builds an orchestrator.
func New(docs docstore.Store, blobs blobstore.Store, sync *contentsync.Manager, logger zerolog.Logger) *Orchestrator {
	return &Orchestrator{
		docs:   docs,
		blobs:  blobs,
		sync:   sync,
		logger: logger.With().Str("component", "admin").Logger(),
		now:    time.Now,
	}
}

// UploadAsset uploads a file to the blob store, persists its metadata, and
// refreshes the view. A failed upload writes no metadata. A failed
// metadata write after a successful upload leaves the blob orphaned in
// storage; rolling it back would trade a harmless leak for a second
// failure mode, so the leak is logged and accepted.
func (o *Orchestrator) UploadAsset(ctx context.Context, collection, filename string, r io.Reader, size int64, progress blobstore.Progress) (content.Item, error) {
	if !content.ValidCollection(collection) {
		return content.Item{}, content.ErrInvalidCollection
	}

	url, err := o.blobs.Upload(ctx, collection, filename, r, size, progress)
	if err != nil {
		return content.Item{}, fmt.Errorf("uploading %s to %s: %w", filename, collection, err)
	}

	item := content.Item{
		URL:       url,
		Name:      filename,
		CreatedAt: content.NewTimestamp(o.now()),
	}
	id, err := o.docs.Create(ctx, collection, item)
	if err != nil {
		o.logger.Error().Err(err).Str("url", url).Msg("metadata write failed; uploaded blob is orphaned")
		return content.Item{}, fmt.Errorf("saving metadata for %s: %w", filename, err)
	}
	item.ID = id

	o.logger.Info().Str("collection", collection).Str("name", filename).Msg("asset uploaded")
	o.sync.RefreshAll(ctx)
	return item, nil
}

// AddLink persists a metadata-only item for an external URL, such as a
// pasted video link. Nothing touches the blob store.
func (o *Orchestrator) AddLink(ctx context.Context, collection, url string) (content.Item, error) {
	if !content.ValidCollection(collection) {
		return content.Item{}, content.ErrInvalidCollection
	}

	item := content.Item{
		URL:       url,
		CreatedAt: content.NewTimestamp(o.now()),
	}
	if err := item.Validate(); err != nil {
		return content.Item{}, err
	}

	id, err := o.docs.Create(ctx, collection, item)
	if err != nil {
		return content.Item{}, fmt.Errorf("saving link in %s: %w", collection, err)
	}
	item.ID = id

	o.logger.Info().Str("collection", collection).Msg("link saved")
	o.sync.RefreshAll(ctx)
	return item, nil
}

// DeleteAsset removes an item's metadata and, when the URL is recognized
// as store-owned, its blob. Metadata goes first so a user never sees a
// listing pointing at a deleted blob; the reverse failure, an orphaned
// blob behind a deleted listing, only wastes storage.
func (o *Orchestrator) DeleteAsset(ctx context.Context, collection, id, url string) error {
	if !content.ValidCollection(collection) {
		return content.ErrInvalidCollection
	}

	if o.Confirm != nil && !o.Confirm(fmt.Sprintf("delete %s/%s permanently?", collection, id)) {
		return ErrDeleteAborted
	}

	if err := o.docs.DeleteByID(ctx, collection, id); err != nil {
		return fmt.Errorf("deleting %s/%s: %w", collection, id, err)
	}

	var blobErr error
	if url != "" && o.blobs.Owns(url) {
		if err := o.blobs.Delete(ctx, url); err != nil {
			o.logger.Error().Err(err).Str("url", url).Msg("blob delete failed after metadata delete")
			blobErr = fmt.Errorf("%w: %v", ErrBlobDelete, err)
		}
	}

	o.logger.Info().Str("collection", collection).Str("id", id).Msg("asset deleted")
	o.sync.RefreshAll(ctx)
	return blobErr
}

// UpdateSettings fully overwrites the settings document at key and
// refreshes the view. Concurrent editors race unguarded; last write wins.
func (o *Orchestrator) UpdateSettings(ctx context.Context, key string, blob json.RawMessage) error {
	if !content.ValidSettingKey(key) {
		return content.ErrInvalidSettingKey
	}
	if !json.Valid(blob) {
		return fmt.Errorf("updating %s: blob is not valid JSON", key)
	}

	if err := o.docs.PutSingleton(ctx, content.SettingsNamespace, key, blob); err != nil {
		return fmt.Errorf("updating %s: %w", key, err)
	}

	o.logger.Info().Str("key", key).Msg("settings updated")
	o.sync.RefreshAll(ctx)
	return nil
}
