package docstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/stageworks/backstage/pkg/content"
)

// Schema DDL. Items are keyed by (collection, id); singleton settings by
// (namespace, key). CreatedAt is stored as the client-assigned ISO-8601
// string, never interpreted by the database.
const (
	createItems = `CREATE TABLE IF NOT EXISTS items (
    id TEXT NOT NULL,
    collection TEXT NOT NULL,
    url TEXT NOT NULL,
    name TEXT NOT NULL DEFAULT '',
    created_at TEXT NOT NULL DEFAULT '',
    PRIMARY KEY (collection, id)
);`

	createSingletons = `CREATE TABLE IF NOT EXISTS singletons (
    namespace TEXT NOT NULL,
    key TEXT NOT NULL,
    blob TEXT NOT NULL,
    PRIMARY KEY (namespace, key)
);`
)

// Compile-time interface check.
var _ Store = (*SQLite)(nil)

// SQLite is the local document store driver. It backs the "local" mode
// where content lives on disk next to the uploads directory.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the content database under dataDir.
func OpenSQLite(dataDir string) (*SQLite, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	dbPath := filepath.Join(dataDir, "content.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	for _, ddl := range []string{createItems, createSingletons} {
		if _, err := db.Exec(ddl); err != nil {
			db.Close()
			return nil, fmt.Errorf("init schema: %w", err)
		}
	}

	return &SQLite{db: db}, nil
}

// Create stores the item under a fresh UUID v7 id and returns the id.
func (s *SQLite) Create(ctx context.Context, collection string, item content.Item) (string, error) {
	if !content.ValidCollection(collection) {
		return "", content.ErrInvalidCollection
	}
	if err := item.Validate(); err != nil {
		return "", err
	}

	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("generating id: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		"INSERT INTO items (id, collection, url, name, created_at) VALUES (?, ?, ?, ?, ?)",
		id.String(), collection, item.URL, item.Name, item.CreatedAt,
	)
	if err != nil {
		return "", fmt.Errorf("creating item in %s: %w", collection, err)
	}
	return id.String(), nil
}

// ListAll returns every item in the collection in unspecified order.
func (s *SQLite) ListAll(ctx context.Context, collection string) ([]content.Item, error) {
	if !content.ValidCollection(collection) {
		return nil, content.ErrInvalidCollection
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, url, name, created_at FROM items WHERE collection = ?",
		collection,
	)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", collection, err)
	}
	defer rows.Close()

	var items []content.Item
	for rows.Next() {
		var it content.Item
		if err := rows.Scan(&it.ID, &it.URL, &it.Name, &it.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning %s row: %w", collection, err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing %s: %w", collection, err)
	}
	return items, nil
}

// DeleteByID removes an item. Returns content.ErrNotFound for unknown ids.
func (s *SQLite) DeleteByID(ctx context.Context, collection, id string) error {
	if !content.ValidCollection(collection) {
		return content.ErrInvalidCollection
	}
	if id == "" {
		return content.ErrInvalidID
	}

	res, err := s.db.ExecContext(ctx,
		"DELETE FROM items WHERE collection = ? AND id = ?", collection, id)
	if err != nil {
		return fmt.Errorf("deleting %s/%s: %w", collection, id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting %s/%s: %w", collection, id, err)
	}
	if n == 0 {
		return content.ErrNotFound
	}
	return nil
}

// PutSingleton fully replaces the settings document for (namespace, key).
func (s *SQLite) PutSingleton(ctx context.Context, namespace, key string, blob json.RawMessage) error {
	if !json.Valid(blob) {
		return fmt.Errorf("putting %s/%s: blob is not valid JSON", namespace, key)
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO singletons (namespace, key, blob) VALUES (?, ?, ?)
		 ON CONFLICT (namespace, key) DO UPDATE SET blob = excluded.blob`,
		namespace, key, string(blob),
	)
	if err != nil {
		return fmt.Errorf("putting %s/%s: %w", namespace, key, err)
	}
	return nil
}

// GetSingleton returns the stored blob, or content.ErrSingletonNotFound.
func (s *SQLite) GetSingleton(ctx context.Context, namespace, key string) (json.RawMessage, error) {
	var blob string
	err := s.db.QueryRowContext(ctx,
		"SELECT blob FROM singletons WHERE namespace = ? AND key = ?", namespace, key,
	).Scan(&blob)
	if err == sql.ErrNoRows {
		return nil, content.ErrSingletonNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting %s/%s: %w", namespace, key, err)
	}
	return json.RawMessage(blob), nil
}

// Close releases the database handle.
func (s *SQLite) Close() error {
	return s.db.Close()
}
