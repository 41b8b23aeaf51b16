// Package docstore provides the document store contract for content item
// metadata and singleton settings documents, with SQLite, Firestore, and
// in-memory drivers.
package docstore

import (
	"context"
	"encoding/json"

	"github.com/stageworks/backstage/pkg/content"
)

// Store is the document store contract.
//
// ListAll makes no ordering guarantee; callers re-sort by CreatedAt. An
// empty collection is a successful empty result, never an error.
// PutSingleton is a full overwrite: no field merging, last write wins.
// GetSingleton returns content.ErrSingletonNotFound when no document
// exists for the key; callers substitute their default.
type Store interface {
	Create(ctx context.Context, collection string, item content.Item) (string, error)
	ListAll(ctx context.Context, collection string) ([]content.Item, error)
	DeleteByID(ctx context.Context, collection, id string) error
	PutSingleton(ctx context.Context, namespace, key string, blob json.RawMessage) error
	GetSingleton(ctx context.Context, namespace, key string) (json.RawMessage, error)
	Close() error
}
