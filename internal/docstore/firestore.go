package docstore

import (
	"context"
	"encoding/json"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/stageworks/backstage/pkg/content"
)

// Compile-time interface check.
var _ Store = (*Firestore)(nil)

// Firestore is the hosted document store driver. Collection names map
// one-to-one onto Firestore collections; settings documents live in a
// collection named after the namespace with one document per key.
type Firestore struct {
	client *firestore.Client
}

// NewFirestore wraps an initialized Firestore client.
func NewFirestore(client *firestore.Client) *Firestore {
	return &Firestore{client: client}
}

// Create adds the item and returns the server-assigned document id.
func (s *Firestore) Create(ctx context.Context, collection string, item content.Item) (string, error) {
	if !content.ValidCollection(collection) {
		return "", content.ErrInvalidCollection
	}
	if err := item.Validate(); err != nil {
		return "", err
	}

	ref, _, err := s.client.Collection(collection).Add(ctx, item)
	if err != nil {
		return "", fmt.Errorf("creating item in %s: %w", collection, err)
	}
	return ref.ID, nil
}

// ListAll reads the whole collection. No server-side ordering is requested;
// missing indexes must never break a read.
func (s *Firestore) ListAll(ctx context.Context, collection string) ([]content.Item, error) {
	if !content.ValidCollection(collection) {
		return nil, content.ErrInvalidCollection
	}

	iter := s.client.Collection(collection).Documents(ctx)
	defer iter.Stop()

	var items []content.Item
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("listing %s: %w", collection, err)
		}

		var it content.Item
		if err := doc.DataTo(&it); err != nil {
			return nil, fmt.Errorf("decoding %s/%s: %w", collection, doc.Ref.ID, err)
		}
		it.ID = doc.Ref.ID
		items = append(items, it)
	}
	return items, nil
}

// DeleteByID removes a document. Firestore deletes are idempotent, so an
// already-missing document is not an error here.
func (s *Firestore) DeleteByID(ctx context.Context, collection, id string) error {
	if !content.ValidCollection(collection) {
		return content.ErrInvalidCollection
	}
	if id == "" {
		return content.ErrInvalidID
	}

	if _, err := s.client.Collection(collection).Doc(id).Delete(ctx); err != nil {
		return fmt.Errorf("deleting %s/%s: %w", collection, id, err)
	}
	return nil
}

// PutSingleton fully replaces the document at namespace/key.
func (s *Firestore) PutSingleton(ctx context.Context, namespace, key string, blob json.RawMessage) error {
	var data map[string]any
	if err := json.Unmarshal(blob, &data); err != nil {
		return fmt.Errorf("putting %s/%s: %w", namespace, key, err)
	}

	// Set without merge options overwrites the whole document.
	if _, err := s.client.Collection(namespace).Doc(key).Set(ctx, data); err != nil {
		return fmt.Errorf("putting %s/%s: %w", namespace, key, err)
	}
	return nil
}

// GetSingleton returns the document at namespace/key as a JSON blob.
func (s *Firestore) GetSingleton(ctx context.Context, namespace, key string) (json.RawMessage, error) {
	doc, err := s.client.Collection(namespace).Doc(key).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, content.ErrSingletonNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting %s/%s: %w", namespace, key, err)
	}

	blob, err := json.Marshal(doc.Data())
	if err != nil {
		return nil, fmt.Errorf("encoding %s/%s: %w", namespace, key, err)
	}
	return blob, nil
}

// Close releases the underlying client.
func (s *Firestore) Close() error {
	return s.client.Close()
}
