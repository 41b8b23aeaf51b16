// Package integration tests the full service stack: SQLite document store,
// local blob store, auth gate, content sync manager, and orchestrator wired
// the same way the serve command wires them.
package integration

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/stageworks/backstage/internal/admin"
	"github.com/stageworks/backstage/internal/authgate"
	"github.com/stageworks/backstage/internal/blobstore"
	"github.com/stageworks/backstage/internal/contentsync"
	"github.com/stageworks/backstage/internal/docstore"
	"github.com/stageworks/backstage/pkg/content"
)

const adminEmail = "admin@example.com"

type stack struct {
	docs     *docstore.SQLite
	blobs    *blobstore.Local
	provider *authgate.MemoryProvider
	gate     *authgate.Gate
	sync     *contentsync.Manager
	orch     *admin.Orchestrator
	uploads  string
}

// setupStack wires the local-mode services against temp directories.
func setupStack(t *testing.T) *stack {
	t.Helper()

	docs, err := docstore.OpenSQLite(t.TempDir())
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { docs.Close() })

	uploads := t.TempDir()
	blobs, err := blobstore.NewLocal(uploads, "http://localhost:8080")
	if err != nil {
		t.Fatalf("open blob store: %v", err)
	}

	provider := authgate.NewMemoryProvider()
	gate := authgate.New(provider, []string{adminEmail}, "http://localhost:8080/admin", zerolog.Nop())
	mgr := contentsync.NewManager(docs, zerolog.Nop())
	orch := admin.New(docs, blobs, mgr, zerolog.Nop())
	gate.SetOnAuthenticated(func() { mgr.RefreshAll(context.Background()) })

	return &stack{
		docs:     docs,
		blobs:    blobs,
		provider: provider,
		gate:     gate,
		sync:     mgr,
		orch:     orch,
		uploads:  uploads,
	}
}

// signIn walks the full gated flow: request link, return, confirm.
func (s *stack) signIn(t *testing.T) {
	t.Helper()
	ctx := context.Background()

	if err := s.gate.SubmitEmail(ctx, adminEmail); err != nil {
		t.Fatalf("submit email: %v", err)
	}
	token := s.provider.PendingToken(adminEmail)
	if token == "" {
		t.Fatal("no link token issued")
	}
	if !s.gate.HandleReturn(token) {
		t.Fatal("link token not accepted")
	}
	if _, err := s.gate.Confirm(ctx, adminEmail); err != nil {
		t.Fatalf("confirm: %v", err)
	}
}

func TestCarouselPhotoLifecycle(t *testing.T) {
	s := setupStack(t)
	ctx := context.Background()
	s.signIn(t)

	// The sign-in hook refreshed the view; before any upload the carousel
	// lists nothing. The public page substitutes its bundled defaults.
	state := s.sync.Snapshot()
	if len(state.Carousel) != 0 {
		t.Fatalf("expected empty carousel, got %d items", len(state.Carousel))
	}

	// Upload a photo.
	item, err := s.orch.UploadAsset(ctx, content.CollectionCarousel, "photo.jpg",
		strings.NewReader("jpeg bytes"), 10, nil)
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if item.Name != "photo.jpg" {
		t.Fatalf("expected name photo.jpg, got %q", item.Name)
	}

	// The blob is on disk and the view lists exactly one photo.
	files, err := os.ReadDir(filepath.Join(s.uploads, content.CollectionCarousel))
	if err != nil || len(files) != 1 {
		t.Fatalf("expected 1 uploaded file, got %d (err %v)", len(files), err)
	}

	state = s.sync.Snapshot()
	if len(state.Carousel) != 1 || state.Carousel[0].ID != item.ID {
		t.Fatalf("expected view to hold the uploaded item, got %+v", state.Carousel)
	}

	// Delete it. Metadata goes first, then the blob.
	if err := s.orch.DeleteAsset(ctx, content.CollectionCarousel, item.ID, item.URL); err != nil {
		t.Fatalf("delete: %v", err)
	}

	files, _ = os.ReadDir(filepath.Join(s.uploads, content.CollectionCarousel))
	if len(files) != 0 {
		t.Fatalf("expected blob removed, %d files remain", len(files))
	}

	items, err := s.docs.ListAll(ctx, content.CollectionCarousel)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("expected empty collection, got %d items", len(items))
	}

	// After refresh the view is empty again; the public page takes over
	// with its bundled defaults from here.
	s.sync.RefreshAll(ctx)
	state = s.sync.Snapshot()
	if len(state.Carousel) != 0 {
		t.Fatalf("view lists stored items only, got %d", len(state.Carousel))
	}
}

func TestSettingsSurviveRestart(t *testing.T) {
	dataDir := t.TempDir()
	ctx := context.Background()

	docs, err := docstore.OpenSQLite(dataDir)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	blobs, err := blobstore.NewLocal(t.TempDir(), "http://localhost:8080")
	if err != nil {
		t.Fatalf("open blob store: %v", err)
	}
	mgr := contentsync.NewManager(docs, zerolog.Nop())
	orch := admin.New(docs, blobs, mgr, zerolog.Nop())

	blob := []byte(`{"title":"Conciertos","description":"Fechas 2026","bookingEmail":"tour@example.com"}`)
	if err := orch.UpdateSettings(ctx, content.KeyEventsInfo, blob); err != nil {
		t.Fatalf("update settings: %v", err)
	}
	docs.Close()

	// Reopen against the same directory, as a process restart would.
	docs2, err := docstore.OpenSQLite(dataDir)
	if err != nil {
		t.Fatalf("reopen sqlite: %v", err)
	}
	defer docs2.Close()

	mgr2 := contentsync.NewManager(docs2, zerolog.Nop())
	mgr2.RefreshAll(ctx)
	state := mgr2.Snapshot()
	if state.EventsInfo.Title != "Conciertos" {
		t.Fatalf("expected stored events info after restart, got %+v", state.EventsInfo)
	}
}

func TestGateBlocksUnlistedEmail(t *testing.T) {
	s := setupStack(t)
	ctx := context.Background()

	err := s.gate.SubmitEmail(ctx, "stranger@example.com")
	if err == nil {
		t.Fatal("expected unlisted email to be rejected")
	}
	if s.provider.PendingToken("stranger@example.com") != "" {
		t.Fatal("link must not be issued to unlisted email")
	}
}

func TestExternalVideoLinkIsNeverDeletedFromStorage(t *testing.T) {
	s := setupStack(t)
	ctx := context.Background()

	item, err := s.orch.AddLink(ctx, content.CollectionVideos, "https://youtube.com/watch?v=abc")
	if err != nil {
		t.Fatalf("add link: %v", err)
	}

	if err := s.orch.DeleteAsset(ctx, content.CollectionVideos, item.ID, item.URL); err != nil {
		t.Fatalf("delete: %v", err)
	}

	items, err := s.docs.ListAll(ctx, content.CollectionVideos)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("expected metadata removed, got %d items", len(items))
	}
}
