package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/stageworks/backstage/internal/admin"
	"github.com/stageworks/backstage/internal/blobstore"
	"github.com/stageworks/backstage/pkg/content"
)

// maxUploadBytes bounds multipart parsing memory, not file size.
const maxUploadBytes = 32 << 20

// handleAdminContent returns the synced view state plus the error log.
func (s *Server) handleAdminContent(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.sync.Snapshot())
}

// handleAdminRefresh triggers a manual refresh. A refresh already in
// flight is reported as coalesced, not an error.
func (s *Server) handleAdminRefresh(w http.ResponseWriter, r *http.Request) {
	ran := s.sync.RefreshAll(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{
		"refreshed": ran,
		"state":     s.sync.Snapshot(),
	})
}

// handleAdminUpload accepts a multipart file for a collection.
func (s *Server) handleAdminUpload(w http.ResponseWriter, r *http.Request) {
	collection := mux.Vars(r)["collection"]
	if !content.ValidCollection(collection) {
		writeError(w, http.StatusNotFound, "unknown collection")
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart body")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing file field")
		return
	}
	defer file.Close()

	// Progress goes to the log; the browser already renders its own
	// upload progress from the request body it is sending.
	logger := s.logger.With().Str("collection", collection).Str("name", header.Filename).Logger()
	progress := func(transferred, total int64) {
		logger.Debug().Int64("transferred", transferred).Int64("total", total).Msg("upload progress")
	}

	item, err := s.orch.UploadAsset(r.Context(), collection, header.Filename, file, header.Size, progress)
	if err != nil {
		s.writeOrchestratorError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

// handleAdminAddLink stores an external video link.
func (s *Server) handleAdminAddLink(w http.ResponseWriter, r *http.Request) {
	var req struct {
		URL string `json:"url"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.URL == "" {
		writeError(w, http.StatusBadRequest, "url is required")
		return
	}

	item, err := s.orch.AddLink(r.Context(), content.CollectionVideos, req.URL)
	if err != nil {
		s.writeOrchestratorError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

// handleAdminDelete removes an item. The optional url query parameter
// carries the asset URL so the stored blob can be cleaned up; the admin
// UI confirms the intent with the operator before calling.
func (s *Server) handleAdminDelete(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	collection, id := vars["collection"], vars["id"]
	if !content.ValidCollection(collection) {
		writeError(w, http.StatusNotFound, "unknown collection")
		return
	}

	err := s.orch.DeleteAsset(r.Context(), collection, id, r.URL.Query().Get("url"))
	if errors.Is(err, admin.ErrBlobDelete) {
		// Metadata is gone; the leftover blob is reported, not fatal.
		writeJSON(w, http.StatusOK, map[string]string{
			"message": "elemento borrado; el archivo almacenado no pudo eliminarse",
		})
		return
	}
	if err != nil {
		s.writeOrchestratorError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "elemento borrado"})
}

// handleAdminUpdateSettings fully overwrites a settings document.
func (s *Server) handleAdminUpdateSettings(w http.ResponseWriter, r *http.Request) {
	key := mux.Vars(r)["key"]
	if !content.ValidSettingKey(key) {
		writeError(w, http.StatusNotFound, "unknown settings key")
		return
	}

	blob, err := io.ReadAll(io.LimitReader(r.Body, maxUploadBytes))
	if err != nil || !json.Valid(blob) {
		writeError(w, http.StatusBadRequest, "body must be a JSON document")
		return
	}

	if err := s.orch.UpdateSettings(r.Context(), key, blob); err != nil {
		s.writeOrchestratorError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "configuración guardada"})
}

func (s *Server) writeOrchestratorError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, content.ErrNotFound):
		writeError(w, http.StatusNotFound, "item not found")
	case errors.Is(err, content.ErrInvalidCollection),
		errors.Is(err, content.ErrInvalidSettingKey),
		errors.Is(err, content.ErrInvalidItem),
		errors.Is(err, content.ErrInvalidID),
		errors.Is(err, blobstore.ErrEmptyFilename):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		s.logger.Error().Err(err).Msg("admin operation failed")
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}
