// Package httpapi exposes the admin panel backend and the public site
// content endpoints over HTTP.
//
// The public routes are read-only consumers of the document store and
// always answer, falling back to the bundled defaults when a collection
// or settings document is empty or unreachable. The admin routes wrap the
// auth gate and the CRUD orchestrator.
package httpapi

import (
	"net/http"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/stageworks/backstage/internal/admin"
	"github.com/stageworks/backstage/internal/authgate"
	"github.com/stageworks/backstage/internal/blobstore"
	"github.com/stageworks/backstage/internal/contentsync"
	"github.com/stageworks/backstage/internal/docstore"
)

// Server wires the application services into an http.Handler.
type Server struct {
	docs   docstore.Store
	gate   *authgate.Gate
	sync   *contentsync.Manager
	orch   *admin.Orchestrator
	logger zerolog.Logger

	// blobDir is non-empty only in local mode, where uploaded blobs are
	// served from disk under /blobs/.
	blobDir string
}

// Option configures optional server behavior.
type Option func(*Server)

// WithLocalBlobs serves the local blob store's directory under /blobs/.
func WithLocalBlobs(local *blobstore.Local) Option {
	return func(s *Server) { s.blobDir = local.Dir() }
}

// NewServer builds the HTTP surface over the given services.
func NewServer(docs docstore.Store, gate *authgate.Gate, sync *contentsync.Manager, orch *admin.Orchestrator, logger zerolog.Logger, opts ...Option) *Server {
	s := &Server{
		docs:   docs,
		gate:   gate,
		sync:   sync,
		orch:   orch,
		logger: logger.With().Str("component", "httpapi").Logger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the routed handler with CORS applied. allowedOrigins
// comes from configuration; an empty list allows only same-origin use.
func (s *Server) Handler(allowedOrigins []string) http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)

	api := r.PathPrefix("/api/v1").Subrouter()

	// Auth flow.
	api.HandleFunc("/auth/link", s.handleAuthLink).Methods(http.MethodPost)
	api.HandleFunc("/auth/confirm", s.handleAuthConfirm).Methods(http.MethodPost)
	api.HandleFunc("/auth/signout", s.handleAuthSignOut).Methods(http.MethodPost)

	// Public site reads.
	site := api.PathPrefix("/site").Subrouter()
	site.HandleFunc("/settings/{key}", s.handleSiteSettings).Methods(http.MethodGet)
	site.HandleFunc("/{collection}", s.handleSiteCollection).Methods(http.MethodGet)

	// Gated admin surface.
	adm := api.PathPrefix("/admin").Subrouter()
	adm.Use(s.requireSession)
	adm.HandleFunc("/content", s.handleAdminContent).Methods(http.MethodGet)
	adm.HandleFunc("/refresh", s.handleAdminRefresh).Methods(http.MethodPost)
	adm.HandleFunc("/videos/link", s.handleAdminAddLink).Methods(http.MethodPost)
	adm.HandleFunc("/settings/{key}", s.handleAdminUpdateSettings).Methods(http.MethodPut)
	adm.HandleFunc("/{collection}", s.handleAdminUpload).Methods(http.MethodPost)
	adm.HandleFunc("/{collection}/{id}", s.handleAdminDelete).Methods(http.MethodDelete)

	if s.blobDir != "" {
		r.PathPrefix("/blobs/").Handler(
			http.StripPrefix("/blobs/", http.FileServer(http.Dir(s.blobDir))),
		)
	}

	if len(allowedOrigins) == 0 {
		return r
	}
	return handlers.CORS(
		handlers.AllowedOrigins(allowedOrigins),
		handlers.AllowedMethods([]string{
			http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions,
		}),
		handlers.AllowedHeaders([]string{"Authorization", "Content-Type"}),
	)(r)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
